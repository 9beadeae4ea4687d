// Package validation checks configuration and request values.
//
// Struct tags are checked with go-playground/validator:
//
//	type ModelConfig struct {
//		Name    string `mapstructure:"name" validate:"required"`
//		BaseURL string `mapstructure:"base_url" validate:"required,url"`
//	}
//	err := validation.Validate(cfg)
//
// Hand-written checks collect errors the same way:
//
//	err := validation.New().
//		Required("model", req.Model).
//		Between("temperature", t, 0, 2).
//		Err()
//
// Both return an INVALID_PARAMETER AppError with a "fields" detail.
package validation
