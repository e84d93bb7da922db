package handlers

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"devmatch-service/internal/apperrors"
	"devmatch-service/internal/models"
)

var registerOnce sync.Once

// RegisterValidators adds the enum tags used in request bindings and makes
// validation errors report JSON field names.
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(field reflect.StructField) string {
			name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		_ = v.RegisterValidation("experience_level", func(fl validator.FieldLevel) bool {
			return models.ExperienceLevel(fl.Field().String()).Valid()
		})
		_ = v.RegisterValidation("intent", func(fl validator.FieldLevel) bool {
			return models.Intent(fl.Field().String()).Valid()
		})
	})
}

// bindError turns a binding failure into a validation error with a readable
// message.
func bindError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return apperrors.Validation("Invalid request body")
	}
	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return apperrors.Validation(fmt.Sprintf("%s is required", fe.Field()))
	case "max":
		return apperrors.Validation(fmt.Sprintf("%s cannot exceed %s characters", fe.Field(), fe.Param()))
	case "experience_level":
		return apperrors.Validation("Invalid experience level")
	case "intent":
		return apperrors.Validation("Invalid lookingFor value")
	default:
		return apperrors.Validation(fmt.Sprintf("Invalid value for %s", fe.Field()))
	}
}
