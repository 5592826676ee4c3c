package validation

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	// validate is a singleton validator instance
	validate *validator.Validate

	// Validation constants
	MaxIDLength      = 256
	MaxLabelLength   = 1024
	MaxDimensions    = 64
	MaxDimensionName = 64

	dimensionKeyPattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_.\-]*$`)
)

func init() {
	validate = validator.New()

	// Report wire names ("source") rather than Go field names ("Source")
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	_ = validate.RegisterValidation("finite", func(fl validator.FieldLevel) bool {
		f := fl.Field()
		if f.Kind() != reflect.Float64 && f.Kind() != reflect.Float32 {
			return true
		}
		v := f.Float()
		return !math.IsNaN(v) && !math.IsInf(v, 0)
	})
}

// Struct validates v against its `validate` struct tags and returns the
// first failure in a readable form.
func Struct(v any) error {
	if v == nil {
		return errors.New("value cannot be nil")
	}
	if err := validate.Struct(v); err != nil {
		return formatValidationError(err)
	}
	return nil
}

// ValidateDimensions checks a dimension map's size, key syntax and that
// every value is a finite number. Out-of-range values are allowed; they
// are clamped when read.
func ValidateDimensions(owner string, dims map[string]float64) error {
	if len(dims) > MaxDimensions {
		return fmt.Errorf("%s: maximum %d dimensions allowed, got %d", owner, MaxDimensions, len(dims))
	}
	for key, v := range dims {
		if err := ValidateDimensionKey(key); err != nil {
			return fmt.Errorf("%s: %w", owner, err)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%s: dimension %q must be finite, got %v", owner, key, v)
		}
	}
	return nil
}

// ValidateDimensionKey validates a dimension name
func ValidateDimensionKey(key string) error {
	if key == "" {
		return errors.New("dimension name cannot be empty")
	}
	if len(key) > MaxDimensionName {
		return fmt.Errorf("dimension name '%s' exceeds maximum length of %d characters", key, MaxDimensionName)
	}
	if !dimensionKeyPattern.MatchString(key) {
		return fmt.Errorf("dimension name '%s' is invalid (must start with letter or underscore, followed by alphanumeric, '_', '.', or '-')", key)
	}
	return nil
}

// formatValidationError converts validator errors to a more user-friendly format
func formatValidationError(err error) error {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}

	for _, e := range validationErrs {
		field := e.Namespace()
		if i := strings.Index(field, "."); i >= 0 {
			field = field[i+1:]
		}
		param := e.Param()

		switch e.Tag() {
		case "required":
			return fmt.Errorf("%s: field is required", field)
		case "min":
			return fmt.Errorf("%s: must be at least %s", field, param)
		case "max":
			return fmt.Errorf("%s: must not exceed %s", field, param)
		case "finite":
			return fmt.Errorf("%s: must be a finite number", field)
		case "nefield":
			return fmt.Errorf("%s: must differ from %s", field, param)
		default:
			return fmt.Errorf("%s: validation failed (%s)", field, e.Tag())
		}
	}

	return err
}
