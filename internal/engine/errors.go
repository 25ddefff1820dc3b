package engine

import (
	"errors"
	"fmt"
)

// SessionError is returned by Registry operations.
type SessionError struct {
	// Code identifies the error category.
	Code SessionErrorCode

	// Message is a human-readable description.
	Message string

	// Token identifies the affected session.
	Token string
}

// SessionErrorCode categorizes session errors.
type SessionErrorCode string

const (
	// ErrCodeUnknownSession indicates no session exists for the token.
	ErrCodeUnknownSession SessionErrorCode = "UNKNOWN_SESSION"

	// ErrCodeDuplicateSession indicates the generator produced a token that
	// is already registered.
	ErrCodeDuplicateSession SessionErrorCode = "DUPLICATE_SESSION"
)

// Error implements the error interface.
func (e *SessionError) Error() string {
	if e.Token != "" {
		return fmt.Sprintf("%s: %s (session=%s)", e.Code, e.Message, e.Token)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsUnknownSession returns true if err is an unknown session error.
// Uses errors.As to handle wrapped errors.
func IsUnknownSession(err error) bool {
	var se *SessionError
	if errors.As(err, &se) {
		return se.Code == ErrCodeUnknownSession
	}
	return false
}

func newUnknownSessionError(token string) *SessionError {
	return &SessionError{Code: ErrCodeUnknownSession, Message: "no such session", Token: token}
}

func newDuplicateSessionError(token string) *SessionError {
	return &SessionError{Code: ErrCodeDuplicateSession, Message: "session token already in use", Token: token}
}
