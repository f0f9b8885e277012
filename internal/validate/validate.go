package validate

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

var v = validator.New(validator.WithRequiredStructEnabled())

func init() {
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

// Map returns field->message errors for struct validation tags.
func Map(s any) map[string]string {
	if err := v.Struct(s); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok {
			m := make(map[string]string, len(verrs))
			for _, fe := range verrs {
				m[fieldName(fe)] = messageFor(fe)
			}
			return m
		}
		return map[string]string{"_error": err.Error()}
	}
	return nil
}

// Range checks that n lies within [min, max].
func Range(n, min, max int) error {
	if err := v.Var(n, fmt.Sprintf("gte=%d,lte=%d", min, max)); err != nil {
		return fmt.Errorf("must be between %d and %d", min, max)
	}
	return nil
}

// Join renders a Map result as one message, fields in sorted order.
func Join(errs map[string]string) string {
	parts := make([]string, 0, len(errs))
	for f, msg := range errs {
		parts = append(parts, f+" "+msg)
	}
	sort.Strings(parts)
	return strings.Join(parts, "; ")
}

func fieldName(fe validator.FieldError) string {
	// json name when tagged, struct field otherwise
	if fe.Field() != "" {
		return toLowerFirst(fe.Field())
	}
	return toLowerFirst(fe.StructField())
}

func toLowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "gte":
		return fmt.Sprintf("must be >= %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be <= %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of %s", fe.Param())
	case "gt":
		return fmt.Sprintf("must be > %s", fe.Param())
	default:
		return fe.Error()
	}
}
