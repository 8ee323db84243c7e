package config

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/jsamuelsen/quotify/internal/domain"
)

// tagFallback flags a batch larger than the static fallback table.
const tagFallback = "fallback"

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Name fields by their config keys so errors read "store.target_size".
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("koanf"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	v.RegisterStructValidation(validateStore, StoreConfig{})

	return v
}

// validateStore checks that every page of a batch has fallback entries.
func validateStore(sl validator.StructLevel) {
	s, ok := sl.Current().Interface().(StoreConfig)
	if !ok {
		return
	}

	if s.TargetSize > domain.FallbackSize {
		sl.ReportError(s.TargetSize, "target_size", "TargetSize", tagFallback, strconv.Itoa(domain.FallbackSize))
	}
}

// Validate checks the whole configuration. Every violation is reported at once.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, e := range fieldErrs {
		msgs = append(msgs, formatFieldError(e))
	}

	return fmt.Errorf("config validation failed:\n  %s", strings.Join(msgs, "\n  "))
}

func formatFieldError(e validator.FieldError) string {
	key := formatFieldPath(e.Namespace())

	switch e.Tag() {
	case "required":
		return key + " is required"
	case "required_if":
		return fmt.Sprintf("%s is required when %s", key, condition(key, e.Param()))
	case "required_unless":
		return fmt.Sprintf("%s is required unless %s", key, condition(key, e.Param()))
	case "ltefield":
		return fmt.Sprintf("%s must not exceed %s", key, siblingKey(key, e.Param()))
	case "min":
		return fmt.Sprintf("%s must be at least %s", key, e.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", key, e.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", key, e.Param())
	case "url":
		return key + " must be a valid URL"
	case tagFallback:
		return fmt.Sprintf("%s must not exceed the %s-entry fallback table", key, e.Param())
	default:
		return fmt.Sprintf("%s failed validation: %s", key, e.Tag())
	}
}

// formatFieldPath drops the root type: "Config.store.target_size" -> "store.target_size".
func formatFieldPath(namespace string) string {
	_, rest, found := strings.Cut(namespace, ".")
	if !found {
		return namespace
	}

	return rest
}

// condition renders a required_if/required_unless param ("Backend memory")
// as "cache.backend is memory".
func condition(key, param string) string {
	field, value, _ := strings.Cut(param, " ")
	return siblingKey(key, field) + " is " + value
}

// siblingKey names the Go field goField next to key: ("store.page_size",
// "TargetSize") -> "store.target_size".
func siblingKey(key, goField string) string {
	name := snakeCase(goField)

	if i := strings.LastIndexByte(key, '.'); i >= 0 {
		return key[:i+1] + name
	}

	return name
}

func snakeCase(s string) string {
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
