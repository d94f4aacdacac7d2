package validation

import (
	stderrors "errors"
	"reflect"
	"strings"
	"sync"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/kbukum/iterkit/errors"
)

// structValidator reports fields by their mapstructure key, so messages
// name the same path a config file or env variable would use.
var structValidator = sync.OnceValue(func() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("mapstructure"), ",")
		if name == "" || name == "-" {
			return toSnakeCase(fld.Name)
		}
		return name
	})
	return v
})

// Validate checks s against its `validate` struct tags and returns an
// INVALID_INPUT AppError listing every failing field.
func Validate(s any) error {
	err := structValidator().Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !stderrors.As(err, &fieldErrs) {
		return errors.Validation("validation failed").WithCause(err)
	}

	v := New()
	for _, fe := range fieldErrs {
		v.AddError(fieldPath(fe.Namespace()), describe(fe))
	}
	parts := make([]string, len(v.errors))
	for i, e := range v.errors {
		parts[i] = e.Field + ": " + e.Message
	}
	return errors.Validation(strings.Join(parts, "; ")).
		WithDetails(map[string]any{"fields": v.errors})
}

// fieldPath drops the root struct name from a validator namespace,
// turning "Config.guard.mode" into "guard.mode".
func fieldPath(ns string) string {
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return ns
}

var tagMessages = map[string]string{
	"required": "is required",
	"min":      "must be at least ",
	"gte":      "must be at least ",
	"max":      "must be at most ",
	"lte":      "must be at most ",
	"gt":       "must be greater than ",
	"lt":       "must be less than ",
	"oneof":    "must be one of: ",
}

func describe(fe validator.FieldError) string {
	msg, ok := tagMessages[fe.Tag()]
	if !ok {
		return "is invalid"
	}
	if strings.HasSuffix(msg, " ") {
		return msg + fe.Param()
	}
	return msg
}

// toSnakeCase converts a Go field name to snake_case.
func toSnakeCase(s string) string {
	var b strings.Builder
	for i, r := range s {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('_')
			}
			r = unicode.ToLower(r)
		}
		b.WriteRune(r)
	}
	return b.String()
}
