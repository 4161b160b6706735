package access

import (
	"errors"
	"fmt"
)

var (
	// ErrAccessDenied matches every denial produced by this package.
	ErrAccessDenied = errors.New("access denied")

	ErrAlreadyShared      = errors.New("account is already shared with this user")
	ErrShareTargetIsOwner = errors.New("account cannot be shared with its owner")
	ErrShareTargetIsAdmin = errors.New("account cannot be shared with an administrator")
)

// DeniedError is returned by the Authorize methods. It names the rule that
// failed so that the denial can be logged, while callers outside the
// service layer only ever see ErrAccessDenied.
type DeniedError struct {
	Operation string
	UserID    int64
	AccountID string
	Reason    error
}

func (e *DeniedError) Error() string {
	msg := fmt.Sprintf("%s: user %d may not %s account %s", ErrAccessDenied, e.UserID, e.Operation, e.AccountID)
	if e.Reason != nil {
		msg += ": " + e.Reason.Error()
	}
	return msg
}

// Is makes every DeniedError match ErrAccessDenied.
func (e *DeniedError) Is(target error) bool {
	return target == ErrAccessDenied
}

func (e *DeniedError) Unwrap() error {
	return e.Reason
}
