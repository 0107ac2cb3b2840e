package service

import (
	"net/mail"
	"regexp"
	"unicode"

	"github.com/inkwell/blog-backend/internal/common/constants"
)

var (
	usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
)

func validateCredentials(username, email, password string) error {
	if len(username) < constants.UsernameMinLength || len(username) > constants.UsernameMaxLength {
		return ErrValidationUsernameLength
	}

	if !isValidUsername(username) {
		return ErrValidationUsernameChars
	}

	if email != "" {
		if err := validateEmail(email); err != nil {
			return err
		}
	}

	return validatePassword(password)
}

func validatePassword(password string) error {
	if len(password) < constants.PasswordMinLength || len(password) > constants.PasswordMaxLength {
		return ErrValidationPasswordLength
	}

	if !isValidPassword(password) {
		return ErrValidationPasswordLatinDigit
	}

	return nil
}

func validateEmail(email string) error {
	if len(email) > constants.EmailMaxLength {
		return ErrValidationEmail
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return ErrValidationEmail
	}
	return nil
}

func isValidUsername(value string) bool {
	if !usernameRegex.MatchString(value) {
		return false
	}

	if !unicode.IsLetter(rune(value[0])) && !unicode.IsDigit(rune(value[0])) {
		return false
	}

	if !unicode.IsLetter(rune(value[len(value)-1])) && !unicode.IsDigit(rune(value[len(value)-1])) {
		return false
	}

	return true
}

func isValidPassword(value string) bool {
	hasLetter := false
	hasDigit := false

	for _, r := range value {
		if unicode.IsLetter(r) {
			hasLetter = true
		}
		if unicode.IsDigit(r) {
			hasDigit = true
		}
		if hasLetter && hasDigit {
			return true
		}
	}

	return false
}
