// Package validation checks request payloads with go-playground/validator and
// translates failures into field-keyed application errors.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"critique/internal/models"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// GetValidator returns the shared validator with the custom tags registered.
func GetValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())

		// report json names so field errors line up with the request body
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})

		mustRegister("notme", func(fl validator.FieldLevel) bool {
			return !models.IsReservedUsername(fl.Field().String())
		})
		mustRegister("username", func(fl validator.FieldLevel) bool {
			return ValidateUsername(fl.Field().String()) == nil
		})
		mustRegister("slug", func(fl validator.FieldLevel) bool {
			return ValidateSlug(fl.Field().String()) == nil
		})
		mustRegister("pastyear", func(fl validator.FieldLevel) bool {
			return ValidateYear(int(fl.Field().Int())) == nil
		})
		mustRegister("role", func(fl validator.FieldLevel) bool {
			return models.Role(fl.Field().String()).Valid()
		})
		mustRegister("notblank", func(fl validator.FieldLevel) bool {
			return strings.TrimSpace(fl.Field().String()) != ""
		})
	})
	return validate
}

func mustRegister(tag string, fn validator.Func) {
	if err := validate.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register %s validator: %v", tag, err))
	}
}

// Struct validates s and returns nil or a VALIDATION_ERROR with one entry per failing field.
func Struct(s interface{}) error {
	err := GetValidator().Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return models.NewValidationError(err.Error())
	}

	appErr := models.NewValidationError("Validation failed")
	for _, fe := range fieldErrs {
		appErr.WithField(fieldKey(fe.Field()), translate(fe))
	}
	if len(fieldErrs) == 1 {
		appErr.Message = translate(fieldErrs[0])
	}
	return appErr
}

// fieldKey drops element indexes so "genre[1]" reports under "genre".
func fieldKey(field string) string {
	if i := strings.IndexByte(field, '['); i > 0 {
		return field[:i]
	}
	return field
}

var messages = map[string]string{
	"required": "%s is required",
	"notblank": "%s may not be blank",
	"email":    "%s must be a valid email address",
	"notme":    "%s \"me\" is not allowed",
	"username": "%s may contain only letters, digits and @/./+/-/_",
	"slug":     "%s may contain only letters, numbers, hyphens and underscores",
	"pastyear": "%s cannot be in the future",
	"role":     "%s must be one of: user, moderator, admin",
}

func translate(fe validator.FieldError) string {
	field := fe.Field()
	if tmpl, ok := messages[fe.Tag()]; ok {
		return fmt.Sprintf(tmpl, field)
	}

	isString := fe.Kind() == reflect.String
	switch fe.Tag() {
	case "max":
		if isString {
			return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "min":
		if isString {
			return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "dive":
		return fmt.Sprintf("%s contains an invalid value", field)
	default:
		return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
}
