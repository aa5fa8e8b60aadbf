package auth

import (
	"unicode"

	"quicktalk/errors"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

type RegisterRequest struct {
	PhoneNumber string `validate:"required,e164"`
	Username    string `validate:"required,min=3,max=15"`
	Password    string `validate:"required,min=12,max=72"`
}

type LoginRequest struct {
	PhoneNumber string `validate:"required,e164"`
	Password    string `validate:"required,max=72"`
}

func ValidateRegister(req RegisterRequest) error {
	if err := validate.Struct(req); err != nil {
		return err
	}

	if !isPasswordComplex(req.Password) {
		return errors.ErrInvalidPassword
	}
	return nil
}

func ValidateLogin(req LoginRequest) error {
	return validate.Struct(req)
}

func isPasswordComplex(s string) bool {
	var (
		hasUpper   = false
		hasLower   = false
		hasNumber  = false
		hasSpecial = false
	)
	for _, char := range s {
		switch {
		case unicode.IsUpper(char):
			hasUpper = true
		case unicode.IsLower(char):
			hasLower = true
		case unicode.IsNumber(char):
			hasNumber = true
		case unicode.IsPunct(char) || unicode.IsSymbol(char):
			hasSpecial = true
		}
	}
	return hasUpper && hasLower && hasNumber && hasSpecial
}

// ValidatePhone checks a phone number used as a lookup key.
func ValidatePhone(phoneNumber string) error {
	return validate.Var(phoneNumber, "required,e164")
}
