package validator

import (
	"reflect"
	"strings"

	apperrors "github.com/SAP-F-2025/interview-service/internal/errors"
	"github.com/SAP-F-2025/interview-service/internal/models"
	"github.com/go-playground/validator/v10"
)

// Validator wraps go-playground/validator with the service's custom rules.
type Validator struct {
	structValidator *validator.Validate
}

func New() *Validator {
	structValidator := validator.New()
	registerCustomValidators(structValidator)

	return &Validator{structValidator: structValidator}
}

// Validate checks struct tags and reports failures as ValidationErrors keyed by JSON name.
func (v *Validator) Validate(s interface{}) error {
	if err := v.structValidator.Struct(s); err != nil {
		if errs := apperrors.ToValidationErrors(err); len(errs) > 0 {
			return errs
		}
		return err
	}
	return nil
}

// Var validates a single value against a tag expression.
func (v *Validator) Var(field string, value interface{}, tag string) error {
	if err := v.structValidator.Var(value, tag); err != nil {
		errs := apperrors.ToValidationErrors(err)
		for i := range errs {
			errs[i].Field = field
		}
		if len(errs) > 0 {
			return errs
		}
		return err
	}
	return nil
}

func registerCustomValidators(validate *validator.Validate) {
	validate.RegisterValidation("user_role", validateUserRole)
	validate.RegisterValidation("evaluation_value", validateEvaluationValue)
	validate.RegisterValidation("keystroke_kind", validateKeystrokeKind)

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

func validateUserRole(fl validator.FieldLevel) bool {
	_, err := models.ParseUserRole(fl.Field().String())
	return err == nil
}

func validateEvaluationValue(fl validator.FieldLevel) bool {
	return models.EvaluationValue(fl.Field().String()).Valid()
}

func validateKeystrokeKind(fl validator.FieldLevel) bool {
	return models.KeystrokeKind(fl.Field().String()).Valid()
}
