package service

import "errors"

var (
	ErrInvalidDataProvided = errors.New("invalid data provided")
	ErrWrongPassword       = errors.New("wrong password")

	ErrTokenIsExpiredOrInvalid = errors.New("token is expired or invalid")
	ErrTokenCreationFailed     = errors.New("token creation failed")

	ErrVersionIsNotSpecified = errors.New("app version is not specified")

	// ErrAdminOnly is returned when a non-administrator calls an
	// administrator operation.
	ErrAdminOnly = errors.New("operation requires administrator role")

	ErrCannotDeleteSelf     = errors.New("administrators cannot delete themselves")
	ErrUserNotFound         = errors.New("user not found")
	ErrShareTargetNotFound  = errors.New("share target user does not exist")
	ErrUnsupportedParameter = errors.New("code parameters differ from the server configuration")
	ErrInvalidOTPAuthURI    = errors.New("invalid otpauth URI")
	ErrInvalidTOTPSecret    = errors.New("invalid TOTP secret")
)
