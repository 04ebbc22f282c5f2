package validation

import (
	"testing"

	"github.com/skillsenselab/scribe/errors"
)

type sample struct {
	Endpoint string `mapstructure:"endpoint" validate:"required,url"`
	Mode     string `mapstructure:"mode" validate:"omitempty,oneof=fast slow"`
	Workers  int    `mapstructure:"workers" validate:"min=0,max=16"`
}

func TestValidateOK(t *testing.T) {
	s := sample{Endpoint: "https://example.com", Mode: "fast", Workers: 4}
	if err := Validate(s); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
}

func TestValidateCollectsFieldErrors(t *testing.T) {
	s := sample{Endpoint: "", Mode: "warp", Workers: 99}
	err := Validate(s)
	if err == nil {
		t.Fatal("Validate() = nil, want error")
	}

	appErr, ok := err.(*errors.AppError)
	if !ok {
		t.Fatalf("error type = %T, want *errors.AppError", err)
	}
	if appErr.Code != errors.ErrCodeInvalidInput {
		t.Errorf("code = %s, want %s", appErr.Code, errors.ErrCodeInvalidInput)
	}

	fields, ok := appErr.Details["fields"].([]FieldError)
	if !ok {
		t.Fatalf("details[fields] type = %T", appErr.Details["fields"])
	}
	if len(fields) != 3 {
		t.Fatalf("field errors = %d, want 3: %v", len(fields), fields)
	}
	if fields[0].Field != "endpoint" || fields[0].Message != "is required" {
		t.Errorf("first field error = %+v", fields[0])
	}
}

func TestValidateUsesMapstructureNames(t *testing.T) {
	type nested struct {
		BaseURL string `mapstructure:"base_url" validate:"required"`
	}
	err := Validate(nested{})
	if err == nil {
		t.Fatal("Validate() = nil, want error")
	}
	appErr := err.(*errors.AppError)
	fields := appErr.Details["fields"].([]FieldError)
	if fields[0].Field != "base_url" {
		t.Errorf("field name = %q, want %q", fields[0].Field, "base_url")
	}
}
