package validation

import (
	"fmt"
	"slices"
	"strings"

	"github.com/kbukum/modelgate/errors"
)

// Validator collects field errors for hand-written checks.
type Validator struct {
	errors []FieldError
}

// FieldError is one failed check.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// New creates an empty Validator.
func New() *Validator {
	return &Validator{}
}

// AddError records a failure for field.
func (v *Validator) AddError(field, message string) {
	v.errors = append(v.errors, FieldError{Field: field, Message: message})
}

// HasErrors reports whether any check failed.
func (v *Validator) HasErrors() bool {
	return len(v.errors) > 0
}

// Errors returns the recorded failures.
func (v *Validator) Errors() []FieldError {
	return v.errors
}

// Validate returns nil, or an INVALID_PARAMETER AppError with a "fields" detail.
func (v *Validator) Validate() *errors.AppError {
	if !v.HasErrors() {
		return nil
	}
	messages := make([]string, len(v.errors))
	for i, e := range v.errors {
		messages[i] = e.Field + ": " + e.Message
	}
	appErr := errors.New(errors.ErrCodeInvalidParameter, strings.Join(messages, "; "))
	if len(v.errors) == 1 {
		appErr = appErr.WithDetail("parameter", v.errors[0].Field)
	}
	return appErr.WithDetail("fields", v.errors)
}

// Err is Validate as a plain error, so a nil result stays a nil interface.
func (v *Validator) Err() error {
	if appErr := v.Validate(); appErr != nil {
		return appErr
	}
	return nil
}

// Required checks that value is not blank.
func (v *Validator) Required(field, value string) *Validator {
	if strings.TrimSpace(value) == "" {
		v.AddError(field, "is required")
	}
	return v
}

// Between checks lo <= value <= hi. NaN always fails.
func (v *Validator) Between(field string, value, lo, hi float64) *Validator {
	if !(value >= lo && value <= hi) {
		v.AddError(field, fmt.Sprintf("must be between %g and %g", lo, hi))
	}
	return v
}

// Positive checks value > 0.
func (v *Validator) Positive(field string, value int) *Validator {
	if value <= 0 {
		v.AddError(field, "must be greater than 0")
	}
	return v
}

// OneOf checks that a non-empty value is in allowed.
func (v *Validator) OneOf(field, value string, allowed []string) *Validator {
	if value == "" || slices.Contains(allowed, value) {
		return v
	}
	v.AddError(field, "must be one of: "+strings.Join(allowed, ", "))
	return v
}

// Custom records message when condition is false.
func (v *Validator) Custom(condition bool, field, message string) *Validator {
	if !condition {
		v.AddError(field, message)
	}
	return v
}
