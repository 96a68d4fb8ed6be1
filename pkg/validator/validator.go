package validator

import (
	"reflect"
	"strings"

	"medverify/internal/domain/entity"

	"github.com/go-playground/validator/v10"
)

type CustomValidator struct {
	validator *validator.Validate
}

func NewValidator() *CustomValidator {
	v := validator.New()

	// Report fields by their JSON name
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	v.RegisterValidation("specialty", validateSpecialty)
	v.RegisterValidation("decision", validateDecision)

	return &CustomValidator{
		validator: v,
	}
}

// validateSpecialty accepts a clinician-selectable specialty, case-insensitively.
func validateSpecialty(fl validator.FieldLevel) bool {
	_, ok := entity.ParseSpecialty(fl.Field().String())
	return ok
}

// validateDecision accepts a final verification status.
func validateDecision(fl validator.FieldLevel) bool {
	status, ok := entity.ParseVerificationStatus(fl.Field().String())
	return ok && status.IsDecision()
}

func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

func (cv *CustomValidator) FormatValidationErrors(err error) map[string]string {
	errors := make(map[string]string)

	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		for _, e := range validationErrors {
			field := e.Field()
			switch e.Tag() {
			case "required":
				errors[field] = field + " is required"
			case "email":
				errors[field] = field + " must be a valid email address"
			case "min":
				errors[field] = field + " must be at least " + e.Param() + " characters"
			case "max":
				errors[field] = field + " must be at most " + e.Param() + " characters"
			case "uuid":
				errors[field] = field + " must be a valid UUID"
			case "specialty":
				errors[field] = field + " must be one of: " + strings.Join(entity.SpecialtyNames(), ", ")
			case "decision":
				errors[field] = field + " must be verified or incorrect"
			default:
				errors[field] = field + " is invalid"
			}
		}
	}

	return errors
}
