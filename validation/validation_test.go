package validation

import (
	"math"
	"testing"

	"github.com/kbukum/modelgate/errors"
)

type backendConfig struct {
	Name    string `mapstructure:"name" validate:"required"`
	BaseURL string `mapstructure:"base_url" validate:"required,url"`
	Dialect string `json:"dialect" validate:"oneof=openai ollama"`
	Retries int    `validate:"gte=0"`
}

func TestValidate_Valid(t *testing.T) {
	cfg := backendConfig{Name: "qwen", BaseURL: "https://dashscope.aliyuncs.com", Dialect: "openai"}
	if err := Validate(cfg); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestValidate_ReportsFieldsByTagName(t *testing.T) {
	err := Validate(backendConfig{BaseURL: "nope", Dialect: "grpc", Retries: -1})
	if !errors.Is(err, errors.ErrCodeInvalidParameter) {
		t.Fatalf("expected INVALID_PARAMETER, got %v", err)
	}
	appErr, _ := errors.AsAppError(err)
	fields, ok := appErr.Details["fields"].([]FieldError)
	if !ok {
		t.Fatalf("fields detail missing: %#v", appErr.Details)
	}

	got := map[string]string{}
	for _, f := range fields {
		got[f.Field] = f.Message
	}
	want := map[string]string{
		"name":     "is required",
		"base_url": "must be a valid URL",
		"dialect":  "must be one of: openai ollama",
		"retries":  "must be at least 0",
	}
	for field, msg := range want {
		if got[field] != msg {
			t.Errorf("%s: got %q, want %q", field, got[field], msg)
		}
	}
}

func TestValidator_Checks(t *testing.T) {
	v := New().
		Required("model", " ").
		Between("temperature", 2.5, 0, 2).
		Positive("max_tokens", 0).
		OneOf("capability", "translate", []string{"text-generation"}).
		Custom(false, "history", "bad role")
	if len(v.Errors()) != 5 {
		t.Errorf("expected 5 errors, got %v", v.Errors())
	}
}

func TestValidator_BetweenRejectsNaN(t *testing.T) {
	if !New().Between("temperature", math.NaN(), 0, 2).HasErrors() {
		t.Error("NaN must fail")
	}
	if New().Between("temperature", 2, 0, 2).HasErrors() {
		t.Error("bounds are inclusive")
	}
}

func TestValidator_ErrNilWhenClean(t *testing.T) {
	if err := New().Required("model", "gpt-4o").Err(); err != nil {
		t.Errorf("expected nil, got %v", err)
	}
}

func TestValidator_SingleFieldDetail(t *testing.T) {
	appErr := New().Positive("max_tokens", -1).Validate()
	if appErr == nil || appErr.Details["parameter"] != "max_tokens" {
		t.Errorf("unexpected %+v", appErr)
	}
}

func TestToSnakeCase(t *testing.T) {
	if got := toSnakeCase("MaxTokens"); got != "max_tokens" {
		t.Errorf("got %q", got)
	}
}
