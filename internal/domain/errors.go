package domain

import (
	"errors"
	"fmt"
)

// Auth failure reasons
const (
	AuthMalformed          = "malformed"
	AuthExpired            = "expired"
	AuthInvalidCredentials = "invalid_credentials"
	AuthNotAuthenticated   = "not_authenticated"
	AuthRevoked            = "revoked"
)

// ValidationError reports input that broke a specific rule
type ValidationError struct {
	Field   string
	Reason  string // e.g. "empty", "length", "format"
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// ConflictError reports a duplicate value in a unique field
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string {
	return e.Message
}

// AuthError reports bad credentials or an unusable token
type AuthError struct {
	Reason string
}

func (e *AuthError) Error() string {
	switch e.Reason {
	case AuthExpired:
		return "Token has expired"
	case AuthMalformed:
		return "Could not validate credentials"
	case AuthInvalidCredentials:
		return "Incorrect username or password"
	case AuthRevoked:
		return "Token has been revoked"
	default:
		return "Not authenticated"
	}
}

// NotFoundError reports a missing entity
type NotFoundError struct {
	Entity string
	Key    string
}

func (e *NotFoundError) Error() string {
	if e.Key == "" {
		return e.Entity + " not found"
	}
	return fmt.Sprintf("%s %s not found", e.Entity, e.Key)
}

// IsNotFound reports whether err is, or wraps, a *NotFoundError
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// HasAuthReason reports whether err is an *AuthError with the given reason
func HasAuthReason(err error, reason string) bool {
	var ae *AuthError
	return errors.As(err, &ae) && ae.Reason == reason
}
