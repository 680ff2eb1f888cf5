package storage

import (
	"errors"
	"path"
	"strings"
)

var ErrInvalidPath = errors.New("invalid storage path")

// cleanKey normalises a storage key and rejects keys escaping the root.
func cleanKey(p string) (string, error) {
	p = strings.ReplaceAll(p, "\\", "/")
	p = strings.TrimPrefix(path.Clean("/"+p), "/")
	if p == "" || p == "." {
		return "", ErrInvalidPath
	}
	return p, nil
}

// cleanPrefix is cleanKey for folder prefixes; the result always ends with "/".
func cleanPrefix(p string) (string, error) {
	key, err := cleanKey(p)
	if err != nil {
		return "", err
	}
	return key + "/", nil
}

func trimBase(baseURL, url string) (string, bool) {
	prefix := baseURL + "/"
	if !strings.HasPrefix(url, prefix) {
		return "", false
	}
	key, err := cleanKey(strings.TrimPrefix(url, prefix))
	if err != nil {
		return "", false
	}
	return key, true
}
