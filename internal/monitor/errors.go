package monitor

import (
	"fmt"
)

// ErrInvalidInput reports a missing or malformed request field. It is raised
// before any registry state is touched.
type ErrInvalidInput struct {
	Field string
}

func (e *ErrInvalidInput) Error() string {
	return "invalid input: missing required field " + e.Field
}

func (e *ErrInvalidInput) Is(target error) bool {
	_, ok := target.(*ErrInvalidInput)
	return ok
}

// ErrDuplicateResource reports that a URL is already being monitored.
type ErrDuplicateResource struct {
	URL string
}

func (e *ErrDuplicateResource) Error() string {
	return "resource is already being monitored: " + e.URL
}

func (e *ErrDuplicateResource) Is(target error) bool {
	_, ok := target.(*ErrDuplicateResource)
	return ok
}

// ErrResourceNotFound reports that a URL is not being monitored.
type ErrResourceNotFound struct {
	URL string
}

func (e *ErrResourceNotFound) Error() string {
	return "resource is not being monitored: " + e.URL
}

func (e *ErrResourceNotFound) Is(target error) bool {
	_, ok := target.(*ErrResourceNotFound)
	return ok
}

// ErrFetchFailure wraps a network, timeout, or protocol error from the
// fetcher. A check that fails this way is rejected whole; no state changes.
type ErrFetchFailure struct {
	URL   string
	Cause error
}

func (e *ErrFetchFailure) Error() string {
	return fmt.Sprintf("failed to fetch %s: %v", e.URL, e.Cause)
}

func (e *ErrFetchFailure) Unwrap() error {
	return e.Cause
}

func (e *ErrFetchFailure) Is(target error) bool {
	_, ok := target.(*ErrFetchFailure)
	return ok
}

// ErrMissingContent reports a diff attempted with an absent or empty side.
// Distinct from a diff that simply finds no textual difference.
type ErrMissingContent struct {
	Side string
}

func (e *ErrMissingContent) Error() string {
	return "missing " + e.Side + " content for comparison"
}

func (e *ErrMissingContent) Is(target error) bool {
	_, ok := target.(*ErrMissingContent)
	return ok
}
