package handlers

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// errBadRequestBody marks a body that could not be decoded at all.
var errBadRequestBody = errors.New("malformed request body")

// parseBody decodes a JSON or form body into out. An empty body leaves out
// untouched so required-field validation reports what is missing. A JSON
// value of the wrong type comes back as a field error map.
func parseBody(c *fiber.Ctx, out any) (map[string]string, error) {
	if len(c.Body()) == 0 {
		return nil, nil
	}

	err := c.BodyParser(out)
	if err == nil {
		return nil, nil
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return map[string]string{typeErr.Field: typeMismatchMessage(typeErr.Type)}, nil
	}

	var formErrs fiber.MultiError
	if errors.As(err, &formErrs) {
		fields := make(map[string]string, len(formErrs))
		for key, fieldErr := range formErrs {
			var conv fiber.ConversionError
			if errors.As(fieldErr, &conv) {
				fields[key] = typeMismatchMessage(conv.Type)
				continue
			}
			fields[key] = fieldErr.Error()
		}
		return fields, nil
	}

	return nil, errBadRequestBody
}

func typeMismatchMessage(t reflect.Type) string {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.Bool:
		return "Must be a valid boolean."
	case reflect.String:
		return "Not a valid string."
	default:
		return "Incorrect type. Expected " + strings.ToLower(t.Kind().String()) + "."
	}
}
