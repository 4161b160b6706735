package totp

import "errors"

var (
	// ErrInvalidEncoding is returned by Decode when the input contains a
	// character outside the Base32 alphabet A-Z2-7.
	ErrInvalidEncoding = errors.New("invalid base32 encoding")
	// ErrInvalidSecret is returned when a secret cannot be used as an HMAC key.
	// It always wraps the underlying codec error.
	ErrInvalidSecret = errors.New("invalid secret")
	// ErrEmptySecret is returned when a secret decodes to zero bytes.
	ErrEmptySecret = errors.New("secret is empty")

	ErrInvalidDigits = errors.New("digits must be between 1 and 10")
	ErrInvalidPeriod = errors.New("period must be a positive number of seconds")
	ErrNegativeTime  = errors.New("time must not be before the unix epoch")

	// ErrInvalidURI is returned by ParseURI for anything that is not an
	// otpauth://totp/ URI.
	ErrInvalidURI    = errors.New("invalid otpauth uri")
	ErrMissingSecret = errors.New("otpauth uri has no secret")
)
