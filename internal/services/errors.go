package services

import (
	"errors"
	"fmt"
)

var (
	// ErrNotTeamMember is returned when the caller does not belong to the team.
	ErrNotTeamMember = errors.New("you are not a member of this team")
	// ErrNotTeamAdmin is returned when the caller is not an admin of the team.
	ErrNotTeamAdmin = errors.New("only team admins can perform this action")

	ErrTeamNotFound       = errors.New("team not found")
	ErrTaskNotFound       = errors.New("task not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrMembershipNotFound = errors.New("user is not a member of this team")

	ErrAlreadyMember = errors.New("user is already a member of this team")
	ErrLastAdmin     = errors.New("cannot remove the last admin")

	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrAIUnavailable      = errors.New("task generation is not configured")
)

// ValidationError reports a rejected request field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func newValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func requiredField(field string) *ValidationError {
	return newValidationError(field, "This field is required.")
}

func invalidChoice(field, value string) *ValidationError {
	return newValidationError(field, fmt.Sprintf("%q is not a valid choice.", value))
}
