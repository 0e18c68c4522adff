package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"

	"github.com/yigit/campusfound/internal/pkg/apperrors"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = Configure(v)
	return v
}

// Configure reports JSON field names and registers the custom tags on v
func Configure(v *validator.Validate) error {
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	custom := map[string]validator.Func{
		"notblank": validators.NotBlank,
		"password": func(fl validator.FieldLevel) bool {
			return ValidPassword(fl.Field().String())
		},
		"phone": func(fl validator.FieldLevel) bool {
			return PhonePattern.MatchString(fl.Field().String())
		},
		"minrunes": func(fl validator.FieldLevel) bool {
			var min int
			if _, err := fmt.Sscanf(fl.Param(), "%d", &min); err != nil {
				return false
			}
			return utf8.RuneCountInString(strings.TrimSpace(fl.Field().String())) >= min
		},
	}
	for tag, fn := range custom {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return fmt.Errorf("registering %s validator: %w", tag, err)
		}
	}
	return nil
}

// Validator returns the shared validator instance
func Validator() *validator.Validate {
	return validate
}

// Struct validates s and converts failures into a ValidationError whose details
// map each offending field to a message
func Struct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validating input: %w", err)
	}
	return FromValidationErrors(verrs)
}

// FromValidationErrors builds the ValidationError for a set of field failures
func FromValidationErrors(verrs validator.ValidationErrors) error {
	details := make(map[string]interface{}, len(verrs))
	messages := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msg := FieldMessage(fe)
		details[fe.Field()] = msg
		messages = append(messages, msg)
	}
	return apperrors.NewValidationError(strings.Join(messages, "; ")).WithDetails(details)
}

// FieldMessage creates a human-readable validation error message
func FieldMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required", "notblank":
		return e.Field() + " is required"
	case "min", "minrunes":
		return e.Field() + " must be at least " + e.Param() + " characters"
	case "max":
		return e.Field() + " must be at most " + e.Param() + " characters"
	case "email":
		return e.Field() + " must be a valid email address"
	case "oneof":
		return e.Field() + " must be one of: " + e.Param()
	case "password":
		return e.Field() + " must be at least 8 characters and contain a letter and a digit"
	case "phone":
		return e.Field() + " must be a valid phone number"
	default:
		return e.Field() + " validation failed: " + e.Tag()
	}
}
