package errs

import (
	"errors"
	"fmt"
)

// Taxonomy sentinels. Match with errors.Is; the helpers below wrap them
// with a caller-facing message.
var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
	ErrStorage    = errors.New("storage failure")
)

// Validation reports missing or malformed input. Nothing has been written.
func Validation(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// NotFound reports that a record of the given kind does not exist.
func NotFound(kind string, id uint64) error {
	return fmt.Errorf("%w: %s #%d", ErrNotFound, kind, id)
}

func Conflict(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConflict, fmt.Sprintf(format, args...))
}

// Storage marks an engine failure. Both the sentinel and the engine error
// stay reachable through errors.Is / errors.As.
func Storage(err error, op string) error {
	if err == nil {
		return nil
	}
	return &storageError{op: op, err: err}
}

type storageError struct {
	op  string
	err error
}

func (e *storageError) Error() string {
	return e.op + ": " + ErrStorage.Error() + ": " + e.err.Error()
}

func (e *storageError) Unwrap() []error {
	return []error{ErrStorage, e.err}
}

// Kind names the taxonomy class of err for logs and CLI exit messages.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrConflict):
		return "conflict"
	case errors.Is(err, ErrStorage):
		return "storage"
	default:
		return "internal"
	}
}
