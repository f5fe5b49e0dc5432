package flow

import (
	"errors"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
	"github.com/Southclaws/fault/ftag"
)

// Failure kinds attached to errors with ftag.
const (
	KindTimeout          ftag.Kind = "TIMEOUT"
	KindIdentityMismatch ftag.Kind = "IDENTITY_MISMATCH"
	KindValidation       ftag.Kind = "INVALID_ARGUMENT"
	KindPermission       ftag.Kind = "PERMISSION_DENIED"
	KindExternal         ftag.Kind = "EXTERNAL"
	KindAlreadyActive    ftag.Kind = "ALREADY_EXISTS"
)

var (
	ErrTimedOut      = fault.New("no matching event before the deadline", ftag.With(KindTimeout))
	ErrAlreadyActive = fault.New("session already active", ftag.With(KindAlreadyActive))
	ErrSessionClosed = errors.New("session is closed")
	ErrInvalidStep   = errors.New("step transition not allowed")
)

// Validation builds a ValidationFailure carrying a message safe to show the user
func Validation(userMessage string) error {
	return fault.New(userMessage, ftag.With(KindValidation), fmsg.WithDesc(userMessage, userMessage))
}

// Permission builds a PermissionFailure carrying a message safe to show the user
func Permission(userMessage string) error {
	return fault.New(userMessage, ftag.With(KindPermission), fmsg.WithDesc(userMessage, userMessage))
}

// External wraps a failed side effect with a user-facing description
func External(err error, userMessage string) error {
	if err == nil {
		return nil
	}
	return fault.Wrap(err, ftag.With(KindExternal), fmsg.WithDesc(userMessage, userMessage))
}

// IsTimeout reports whether err is a step timeout
func IsTimeout(err error) bool {
	return err != nil && (errors.Is(err, ErrTimedOut) || ftag.Get(err) == KindTimeout)
}

// IsAlreadyActive reports whether err is a duplicate session rejection
func IsAlreadyActive(err error) bool {
	return err != nil && (errors.Is(err, ErrAlreadyActive) || ftag.Get(err) == KindAlreadyActive)
}

// UserMessage returns the user-facing description attached to err, or fallback
func UserMessage(err error, fallback string) string {
	if err == nil {
		return ""
	}
	if issue := fmsg.GetIssue(err); issue != "" {
		return issue
	}
	return fallback
}
