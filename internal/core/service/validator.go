package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/podserver/console/internal/core/domain"
)

// accountValidator wraps go-playground/validator for domain.User records.
type accountValidator struct {
	v *validator.Validate
}

func newAccountValidator() *accountValidator {
	return &accountValidator{v: validator.New()}
}

// Validate checks the struct tags of an account about to be stored and
// folds every violation into one ErrInvalidAccount.
func (av *accountValidator) Validate(u *domain.User) error {
	if err := av.v.Struct(u); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			msgs := make([]string, 0, len(ve))
			for _, fe := range ve {
				msgs = append(msgs, fieldError(fe))
			}
			return fmt.Errorf("%w: %s", domain.ErrInvalidAccount, strings.Join(msgs, "; "))
		}
		return err
	}
	return nil
}

func fieldError(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "len":
		return fmt.Sprintf("%s must be exactly %s characters", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	case "hexadecimal":
		return field + " must be hexadecimal"
	default:
		return fmt.Sprintf("%s failed validation (%s)", field, fe.Tag())
	}
}
