package errors

import (
	stderrors "errors"
	"fmt"
)

var (
	ErrNotFound      = fmt.Errorf("not found")
	ErrDuplicateName = fmt.Errorf("duplicate name")
	ErrInvalidInput  = fmt.Errorf("invalid input")

	// ErrTransport means no response reached the caller from the remote store.
	ErrTransport = fmt.Errorf("transport failure")
	// ErrRemote means the remote store answered with an unexpected status.
	ErrRemote = fmt.Errorf("remote failure")
)

// IsFormScoped reports whether err belongs on the create/edit form rather
// than on the listing.
func IsFormScoped(err error) bool {
	return Is(err, ErrInvalidInput) || Is(err, ErrDuplicateName)
}

// Is is a shorthand for the standard errors.Is, kept here so callers that
// alias this package as e do not need a second import.
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}
