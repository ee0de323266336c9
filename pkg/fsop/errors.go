package fsop

import (
	"errors"
	"fmt"
)

var (
	// ErrOperation means the current filesystem state does not permit the
	// requested mutation.
	ErrOperation = errors.New("operation not applicable")
	// ErrConflict means both alternative states were observed at once.
	// Requires operator intervention, never auto-resolved.
	ErrConflict = fmt.Errorf("conflict found: %w", ErrOperation)
	// ErrNotAllowed means a path resolves outside the allowlist.  Checked
	// before any mutation, so it never leaves side effects.
	ErrNotAllowed = errors.New("path not allowed")
	// ErrInvalidSpec means a persisted operation spec cannot be turned back
	// into an operation.
	ErrInvalidSpec = errors.New("invalid operation spec")
)

// Error names recorded on FAILED records.
const (
	ErrorNameConflict    = "conflict"
	ErrorNameSecurity    = "security"
	ErrorNameInvalidSpec = "invalid_spec"
	ErrorNameOperation   = "operation"
	ErrorNameInternal    = "internal"
)

// ErrorName maps an error chain to its wire name.
func ErrorName(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrConflict):
		return ErrorNameConflict
	case errors.Is(err, ErrNotAllowed):
		return ErrorNameSecurity
	case errors.Is(err, ErrInvalidSpec):
		return ErrorNameInvalidSpec
	case errors.Is(err, ErrOperation):
		return ErrorNameOperation
	default:
		return ErrorNameInternal
	}
}
