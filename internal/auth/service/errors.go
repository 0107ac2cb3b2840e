package service

import (
	commonerrors "github.com/inkwell/blog-backend/internal/common/errors"
)

var (
	// ErrInvalidCredentials is deliberately generic: unknown identifier and
	// wrong password produce the exact same error shape.
	ErrInvalidCredentials = commonerrors.NewDomainError(
		"INVALID_CREDENTIALS",
		commonerrors.CategoryUnauthorized,
		401,
		"invalid credentials",
	)

	ErrInvalidRefreshToken = commonerrors.NewDomainError(
		"INVALID_REFRESH_TOKEN",
		commonerrors.CategoryUnauthorized,
		401,
		"invalid refresh token",
	)

	ErrRefreshTokenExpired = commonerrors.NewDomainError(
		"REFRESH_TOKEN_EXPIRED",
		commonerrors.CategoryUnauthorized,
		401,
		"refresh token expired",
	)

	ErrAdminRegistrationDisabled = commonerrors.NewDomainError(
		"ADMIN_REGISTRATION_DISABLED",
		commonerrors.CategoryForbidden,
		403,
		"admin registration is not enabled",
	)

	ErrInvalidMasterKey = commonerrors.NewDomainError(
		"INVALID_MASTER_KEY",
		commonerrors.CategoryForbidden,
		403,
		"invalid master key",
	)

	ErrValidationUsernameLength = commonerrors.NewDomainError(
		"VALIDATION_USERNAME_LENGTH",
		commonerrors.CategoryValidation,
		400,
		"username must be between 3 and 32 characters",
	)

	ErrValidationUsernameChars = commonerrors.NewDomainError(
		"VALIDATION_USERNAME_CHARS",
		commonerrors.CategoryValidation,
		400,
		"username may contain only latin letters, digits, '_' and '-'",
	)

	ErrValidationEmail = commonerrors.NewDomainError(
		"VALIDATION_EMAIL",
		commonerrors.CategoryValidation,
		400,
		"email address is not valid",
	)

	ErrValidationPasswordLength = commonerrors.NewDomainError(
		"VALIDATION_PASSWORD_LENGTH",
		commonerrors.CategoryValidation,
		400,
		"password must be between 8 and 72 characters",
	)

	ErrValidationPasswordLatinDigit = commonerrors.NewDomainError(
		"VALIDATION_PASSWORD_LATIN_DIGIT",
		commonerrors.CategoryValidation,
		400,
		"password must contain at least one letter and one digit",
	)
)
