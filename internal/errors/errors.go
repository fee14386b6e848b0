// Package errors provides sentinel errors and custom error types for actions-runner-manager.
// Use errors.Is() and errors.As() to check for specific error types.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common conditions
var (
	// ErrNotMaintainer indicates the token owner is not a maintainer of the team
	ErrNotMaintainer = errors.New("not a team maintainer")

	// ErrNotFound indicates a runner group or repository could not be resolved
	ErrNotFound = errors.New("not found")

	// ErrUsage indicates invalid command line arguments
	ErrUsage = errors.New("invalid usage")

	// ErrAborted indicates the user declined a confirmation prompt
	ErrAborted = errors.New("aborted")
)

// Kinds of resources a NotFoundError can refer to
const (
	KindRunnerGroup = "runner group"
	KindRepository  = "repository"
)

// NotMaintainerError represents a failed maintainer check on a team
type NotMaintainerError struct {
	Team  string
	Login string
	Role  string
}

func (e *NotMaintainerError) Error() string {
	return fmt.Sprintf("Provided API key does not belong to a user with maintainer privileges on the team %s", e.Team)
}

// Is returns true if the target error is ErrNotMaintainer
func (e *NotMaintainerError) Is(target error) bool {
	return target == ErrNotMaintainer
}

// NewNotMaintainerError creates a new NotMaintainerError
func NewNotMaintainerError(team, login, role string) *NotMaintainerError {
	return &NotMaintainerError{Team: team, Login: login, Role: role}
}

// NotFoundError represents a runner group or repository name that did not resolve
type NotFoundError struct {
	Kind string
	Name string
}

func (e *NotFoundError) Error() string {
	if e.Kind == KindRepository {
		return fmt.Sprintf("Unable to find matching repository for %s aborting adding repositories to runner group", e.Name)
	}
	return fmt.Sprintf("Unable to find runner group with name %s. Please reach out to GitHub Support if you need help", e.Name)
}

// Is returns true if the target error is ErrNotFound
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// NewRunnerGroupNotFoundError creates a NotFoundError for a runner group
func NewRunnerGroupNotFoundError(name string) *NotFoundError {
	return &NotFoundError{Kind: KindRunnerGroup, Name: name}
}

// NewRepositoryNotFoundError creates a NotFoundError for a repository
func NewRepositoryNotFoundError(name string) *NotFoundError {
	return &NotFoundError{Kind: KindRepository, Name: name}
}

// UsageError represents a command line validation failure
type UsageError struct {
	Message string
}

func (e *UsageError) Error() string {
	return e.Message
}

// Is returns true if the target error is ErrUsage
func (e *UsageError) Is(target error) bool {
	return target == ErrUsage
}

// NewUsageError creates a new UsageError
func NewUsageError(format string, args ...any) *UsageError {
	return &UsageError{Message: fmt.Sprintf(format, args...)}
}

// Exit codes returned by the CLI
const (
	ExitOK            = 0
	ExitFailure       = 1
	ExitUsage         = 2
	ExitNotMaintainer = 3
	ExitNotFound      = 4
)

// ExitCode maps an error returned by a command to the process exit code
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, ErrUsage):
		return ExitUsage
	case errors.Is(err, ErrNotMaintainer):
		return ExitNotMaintainer
	case errors.Is(err, ErrNotFound):
		return ExitNotFound
	default:
		return ExitFailure
	}
}
