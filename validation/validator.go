package validation

import (
	"fmt"
	"strings"

	"github.com/kbukum/iterkit/errors"
)

// Validator collects argument errors for a stage or policy constructor.
type Validator struct {
	errors []FieldError
}

// FieldError is one rejected argument.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// New creates an empty Validator.
func New() *Validator {
	return &Validator{}
}

// AddError records a rejected field.
func (v *Validator) AddError(field, message string) {
	v.errors = append(v.errors, FieldError{Field: field, Message: message})
}

// HasErrors reports whether any check failed.
func (v *Validator) HasErrors() bool { return len(v.errors) > 0 }

// Errors returns the recorded failures in check order.
func (v *Validator) Errors() []FieldError { return v.errors }

// Validate folds the failures into one INVALID_INPUT AppError, or returns nil.
// A single failure keeps its field in Details; several are listed under "fields".
func (v *Validator) Validate() *errors.AppError {
	switch len(v.errors) {
	case 0:
		return nil
	case 1:
		return errors.InvalidInput(v.errors[0].Field, v.errors[0].Message)
	}
	parts := make([]string, len(v.errors))
	for i, e := range v.errors {
		parts[i] = e.Field + ": " + e.Message
	}
	return errors.Validation(strings.Join(parts, "; ")).
		WithDetails(map[string]any{"fields": v.errors})
}

// Err is Validate as a plain error, nil when there are no errors.
func (v *Validator) Err() error {
	if appErr := v.Validate(); appErr != nil {
		return appErr
	}
	return nil
}

// Positive rejects counts and sizes below 1.
func (v *Validator) Positive(field string, value int) *Validator {
	if value <= 0 {
		v.AddError(field, fmt.Sprintf("expected positive finite %s, got %d", field, value))
	}
	return v
}

// Between rejects values outside [lo, hi].
func (v *Validator) Between(field string, value, lo, hi float64) *Validator {
	if value < lo || value > hi {
		v.AddError(field, fmt.Sprintf("must be between %g and %g, got %g", lo, hi, value))
	}
	return v
}

// Custom records message for field unless ok holds.
func (v *Validator) Custom(ok bool, field, message string) *Validator {
	if !ok {
		v.AddError(field, message)
	}
	return v
}
