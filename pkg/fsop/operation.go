package fsop

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Kind enumerates the supported operation kinds.  The set is closed: a new
// kind means extending FromSpec and every switch that consumes Kind.
type Kind string

const (
	KindRename     Kind = "rename"
	KindSetEnabled Kind = "set_enabled"
)

// State describes one side of an operation on the wire: Path for rename,
// Enabled for set_enabled.
type State struct {
	Path    string `json:"path,omitempty"`
	Enabled *bool  `json:"enabled,omitempty"`
}

// Spec is the wire form of an operation, persisted on INTENT records.  The
// inverse is computed once when the operation is queued and stored verbatim,
// so recovery never re-derives it from partial state.
type Spec struct {
	Kind    Kind   `json:"kind"`
	Target  string `json:"target"`
	Before  State  `json:"before"`
	After   State  `json:"after"`
	Inverse *Spec  `json:"inverse,omitempty"`
}

// Operation is one idempotent, invertible filesystem mutation.
type Operation interface {
	Kind() Kind
	Target() string
	// Spec returns the wire form, inverse included.
	Spec() Spec
	// Invert returns the operation with before and after swapped verbatim.
	Invert() Operation
	// Apply moves the filesystem toward the after state.  Source and
	// destination are both checked against the allowlist first.
	Apply(allowlist Allowlist) error
	// Rollback moves the filesystem back toward the before state.
	Rollback(allowlist Allowlist) error
}

// FromSpec builds the typed operation a persisted spec describes.
func FromSpec(spec Spec) (Operation, error) {
	switch spec.Kind {
	case KindRename:
		if spec.Target == "" || spec.Before.Path == "" || spec.After.Path == "" {
			return nil, fmt.Errorf("rename requires target, before.path and after.path: %w", ErrInvalidSpec)
		}
		return NewRename(spec.Target, spec.Before.Path, spec.After.Path), nil
	case KindSetEnabled:
		if spec.Target == "" || spec.Before.Enabled == nil || spec.After.Enabled == nil {
			return nil, fmt.Errorf("set_enabled requires target, before.enabled and after.enabled: %w", ErrInvalidSpec)
		}
		return NewSetEnabled(spec.Target, *spec.Before.Enabled, *spec.After.Enabled), nil
	default:
		return nil, fmt.Errorf("unknown kind %q: %w", spec.Kind, ErrInvalidSpec)
	}
}

// decision is the outcome of examining the existence pair for a move between
// two mutually exclusive locations.
type decision int

const (
	decisionAlreadyDone decision = iota
	decisionMove
	decisionConflict
	decisionMissing
)

// decide picks the action for a move from src to dst given which of the two
// currently exists.  Pure over the existence pair; error raising is layered
// on top by the callers.
func decide(srcExists, dstExists bool) decision {
	switch {
	case srcExists && dstExists:
		return decisionConflict
	case dstExists:
		return decisionAlreadyDone
	case srcExists:
		return decisionMove
	default:
		return decisionMissing
	}
}

// moveExclusive moves src to dst when exactly one of the two exists.  dst
// existing alone means the move already happened and is a no-op.
func moveExclusive(src, dst string, allowlist Allowlist) error {
	if err := allowlist.Check(src); err != nil {
		return err
	}
	if err := allowlist.Check(dst); err != nil {
		return err
	}
	srcExists, err := pathExists(src)
	if err != nil {
		return fmt.Errorf("stat %s: %w", src, err)
	}
	dstExists, err := pathExists(dst)
	if err != nil {
		return fmt.Errorf("stat %s: %w", dst, err)
	}
	switch decide(srcExists, dstExists) {
	case decisionAlreadyDone:
		return nil
	case decisionConflict:
		return fmt.Errorf("both %s and %s exist: %w", src, dst, ErrConflict)
	case decisionMissing:
		return fmt.Errorf("neither %s nor %s exists: %w", src, dst, ErrOperation)
	case decisionMove:
	}
	if err := ensureParentDir(dst); err != nil {
		return err
	}
	if err := os.Rename(src, dst); err != nil {
		return fmt.Errorf("rename %s to %s: %w", src, dst, err)
	}
	return nil
}

func ensureParentDir(path string) error {
	parentDir := filepath.Dir(path)
	err := os.MkdirAll(parentDir, os.ModePerm)
	if err != nil {
		return fmt.Errorf("creating dir: %w", err)
	}
	return nil
}

func pathExists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, err
}
