package domain

import (
	"errors"
	"fmt"
)

// Error kinds. Every failure returned by the engine matches exactly one of
// these through errors.Is.
var (
	// ErrNotFound is returned when a workshop, element or context ID is unknown.
	ErrNotFound = errors.New("not found")

	// ErrInvalidReference is returned when an edge or an assignment points at a nonexistent ID.
	ErrInvalidReference = errors.New("invalid reference")

	// ErrInvalidType is returned when an element type is outside the closed set.
	ErrInvalidType = errors.New("invalid element type")

	// ErrValidationFailed is returned when a document or an input violates an invariant.
	ErrValidationFailed = errors.New("validation failed")

	// ErrStorageFailure is returned when the persistence layer could not read or write.
	ErrStorageFailure = errors.New("storage failure")
)

// Error carries the kind of a failure plus the operation and the offending ID.
type Error struct {
	Kind error  // One of the Err* sentinels
	Op   string // Operation that failed, e.g. "add_element"
	ID   string // Offending workshop, element or context ID (optional)
	Msg  string // Human-readable detail
	Err  error  // Underlying cause (optional)
}

func (e *Error) Error() string {
	msg := e.Kind.Error()
	if e.Msg != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Msg)
	}
	if e.ID != "" {
		msg = fmt.Sprintf("%s (%s)", msg, e.ID)
	}
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Is reports whether target is the kind of this error.
func (e *Error) Is(target error) bool {
	return target == e.Kind
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// NotFound builds an ErrNotFound error for the given resource.
func NotFound(resource, id string) *Error {
	return &Error{Kind: ErrNotFound, Msg: resource, ID: id}
}

// InvalidReference builds an ErrInvalidReference error.
func InvalidReference(format string, args ...any) *Error {
	return &Error{Kind: ErrInvalidReference, Msg: fmt.Sprintf(format, args...)}
}

// Validation builds an ErrValidationFailed error.
func Validation(format string, args ...any) *Error {
	return &Error{Kind: ErrValidationFailed, Msg: fmt.Sprintf(format, args...)}
}

// Storage wraps an I/O failure as ErrStorageFailure.
func Storage(op string, err error) *Error {
	return &Error{Kind: ErrStorageFailure, Op: op, Err: err}
}

// KindOf returns the sentinel kind of err, or nil if err carries none.
func KindOf(err error) error {
	for _, kind := range []error{ErrNotFound, ErrInvalidReference, ErrInvalidType, ErrValidationFailed, ErrStorageFailure} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}

// KindName returns a stable machine-readable name for the kind of err.
func KindName(err error) string {
	switch KindOf(err) {
	case ErrNotFound:
		return "not_found"
	case ErrInvalidReference:
		return "invalid_reference"
	case ErrInvalidType:
		return "invalid_type"
	case ErrValidationFailed:
		return "validation_failed"
	case ErrStorageFailure:
		return "storage_failure"
	default:
		return "internal"
	}
}
