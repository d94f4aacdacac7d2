// Package validation checks construction arguments and configuration.
//
// Struct tag validation (go-playground/validator) is used for config
// structs; the fluent Validator is used by pipeline constructors that
// must reject bad arguments before any value is pulled.
//
// # Struct Tag Validation
//
//	type GuardConfig struct {
//	    Message string `mapstructure:"message" validate:"omitempty,max=200"`
//	}
//	err := validation.Validate(cfg)
//
// # Programmatic Validation
//
//	err := validation.New().Positive("size", size).Err()
package validation
