package errors

import "fmt"

// ErrNotFound is returned when a resource is not found
type ErrNotFound struct {
	Resource string
	ID       string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ErrAccessDenied is returned when a customer is not entitled to the console,
// e.g. a sign-in without a store-key custom field.
type ErrAccessDenied struct {
	Message string
}

func (e *ErrAccessDenied) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "access denied"
}

// ErrUnauthorized is returned when authentication fails
type ErrUnauthorized struct {
	Message string
}

func (e *ErrUnauthorized) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "unauthorized"
}

// ErrValidation is returned when client-side validation fails before a
// mutation is sent to the platform
type ErrValidation struct {
	Message string
	Fields  map[string]string
}

func (e *ErrValidation) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "validation failed"
}

// ErrVersionConflict is returned when a mutation carried a stale optimistic
// concurrency version. The platform enforces this; we only surface it.
type ErrVersionConflict struct {
	Resource string
	ID       string
	Version  int64
}

func (e *ErrVersionConflict) Error() string {
	return fmt.Sprintf("stale version %d for %s %s", e.Version, e.Resource, e.ID)
}

// ErrRemote wraps a failure reported by the commerce platform (GraphQL errors
// or transport failures). Callers should not retry automatically.
type ErrRemote struct {
	Operation string
	Err       error
}

func (e *ErrRemote) Error() string {
	return fmt.Sprintf("remote %s failed: %v", e.Operation, e.Err)
}

func (e *ErrRemote) Unwrap() error {
	return e.Err
}
