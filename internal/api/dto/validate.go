package dto

import (
	"github.com/go-playground/validator/v10"

	apperrors "github.com/opskit/absence-service/pkg/util/errorutil"
)

var validate = validator.New()

// Validate checks struct tags and returns a VALIDATION_FAILED error with
// per-field details.
func Validate(payload any) error {
	err := validate.Struct(payload)
	if err == nil {
		return nil
	}
	fieldErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	details := map[string]any{}
	for _, fe := range fieldErrors {
		details[fe.Field()] = fe.Tag()
	}
	return apperrors.NewValidationError("invalid payload", details)
}
