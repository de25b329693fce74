package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidCredentials is returned when the gateway rejects a login (401).
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrNetworkUnavailable indicates the gateway produced no response at all.
	ErrNetworkUnavailable = errors.New("network unavailable")
	// ErrRoleMismatch is returned when valid credentials hit the wrong portal.
	ErrRoleMismatch = errors.New("role does not match portal")
	// ErrUserNotFound indicates an unknown user id on the server side.
	ErrUserNotFound = errors.New("user not found")
	// ErrQuestionNotFound indicates an unknown question id on the server side.
	ErrQuestionNotFound = errors.New("question not found")
	// ErrUsernameTaken is returned when creating a user with a duplicate username.
	ErrUsernameTaken = errors.New("username already exists")

	// ErrAttemptSubmitted rejects answer selection or re-submission after submit.
	ErrAttemptSubmitted = errors.New("attempt already submitted")
	// ErrAttemptNotSubmitted rejects a reset before the attempt was submitted.
	ErrAttemptNotSubmitted = errors.New("attempt not submitted")
	// ErrEmptySubmission rejects a zero-answer submit when policy forbids it.
	ErrEmptySubmission = errors.New("no answers to submit")
)

// ServerError is a gateway response with an unexpected HTTP status.
type ServerError struct {
	Status int
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("server rejected request: status %d", e.Status)
}

// ValidationError reports input that was rejected before reaching the gateway.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation failed: " + e.Reason
	}
	return "validation failed: " + e.Field + ": " + e.Reason
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
