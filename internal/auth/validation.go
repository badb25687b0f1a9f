package auth

import (
	"errors"
	"regexp"

	"github.com/go-playground/validator/v10"

	"github.com/creatorlink/creatorlink/internal/shared"
)

var basicEmailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Messages follow the order in which registration fields are checked.
var registerFieldMessages = map[string]string{
	"Username": "Username must be at least 3 characters",
	"Password": "Password must be at least 6 characters",
	"Email":    "Invalid email format",
	"Role":     "Invalid role",
}

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("basicemail", func(fl validator.FieldLevel) bool {
		return basicEmailPattern.MatchString(fl.Field().String())
	})
	return v
}

func validateRegister(v *validator.Validate, req RegisterRequest) error {
	err := v.Struct(req)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return shared.Validation("Invalid request")
	}
	for _, fieldErr := range fieldErrs {
		if fieldErr.Tag() == "required" {
			return shared.Validation("Missing required fields")
		}
	}
	if msg, ok := registerFieldMessages[fieldErrs[0].Field()]; ok {
		return shared.Validation(msg)
	}
	return shared.Validation("Invalid request")
}

func validateLogin(v *validator.Validate, req LoginRequest) error {
	if err := v.Struct(req); err != nil {
		return shared.Validation("Missing username or password")
	}
	return nil
}
