package utils

import (
	"strings"
	"testing"

	"task-api/domain/dto"
)

func strPtr(s string) *string { return &s }

func TestValidateTaskRequest(t *testing.T) {
	tests := []struct {
		name      string
		req       dto.TaskRequest
		wantField string
	}{
		{"valid minimal", dto.TaskRequest{Title: "Testing"}, ""},
		{"valid full", dto.TaskRequest{Title: "Testing", Description: strPtr("Testing Description"), Date: strPtr("2020-12-31")}, ""},
		{"missing title", dto.TaskRequest{Description: strPtr("desc")}, "title"},
		{"title too long", dto.TaskRequest{Title: strings.Repeat("a", 51)}, "title"},
		{"title at limit", dto.TaskRequest{Title: strings.Repeat("a", 50)}, ""},
		{"multibyte title at limit", dto.TaskRequest{Title: strings.Repeat("ท", 50)}, ""},
		{"description too long", dto.TaskRequest{Title: "t", Description: strPtr(strings.Repeat("d", 201))}, "description"},
		{"description empty", dto.TaskRequest{Title: "t", Description: strPtr("")}, ""},
		{"bad date", dto.TaskRequest{Title: "t", Date: strPtr("31/12/2020")}, "date"},
		{"impossible date", dto.TaskRequest{Title: "t", Date: strPtr("2020-02-30")}, "date"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStruct(&tt.req)
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected error on %s", tt.wantField)
			}
			fields := GetValidationErrors(err)
			if _, ok := fields[tt.wantField]; !ok {
				t.Fatalf("expected error on %q, got %v", tt.wantField, fields)
			}
		})
	}
}

func TestValidateRegisterRequestPasswordMismatch(t *testing.T) {
	req := dto.RegisterRequest{
		Username:  "example@example.com",
		Email:     "example@example.com",
		Password1: "password",
		Password2: "passw0rd",
	}

	fields := GetValidationErrors(ValidateStruct(&req))
	if fields["password2"] != "The two password fields didn't match." {
		t.Fatalf("unexpected errors %v", fields)
	}
}

func TestValidateGoogleLoginRequest(t *testing.T) {
	if err := ValidateStruct(&dto.GoogleLoginRequest{}); err == nil {
		t.Fatal("expected error when neither code nor idToken is set")
	}
	if err := ValidateStruct(&dto.GoogleLoginRequest{IDToken: "x"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
