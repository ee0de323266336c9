package fsop

import (
	"fmt"
	"os"
)

// DisabledSuffix marks the disabled alternative of a target path.
const DisabledSuffix = ".disabled"

// SetEnabled toggles a component between enabled and disabled through a
// file-existence convention: the target path present means enabled, the
// sibling target + ".disabled" present means disabled.
type SetEnabled struct {
	target string
	before bool
	after  bool
}

func NewSetEnabled(target string, beforeEnabled, afterEnabled bool) SetEnabled {
	return SetEnabled{target: target, before: beforeEnabled, after: afterEnabled}
}

func (s SetEnabled) Kind() Kind     { return KindSetEnabled }
func (s SetEnabled) Target() string { return s.target }

func (s SetEnabled) Spec() Spec {
	spec := s.spec()
	inverse := s.inverted().spec()
	spec.Inverse = &inverse
	return spec
}

func (s SetEnabled) spec() Spec {
	before, after := s.before, s.after
	return Spec{
		Kind:   KindSetEnabled,
		Target: s.target,
		Before: State{Enabled: &before},
		After:  State{Enabled: &after},
	}
}

func (s SetEnabled) inverted() SetEnabled {
	return SetEnabled{target: s.target, before: s.after, after: s.before}
}

func (s SetEnabled) Invert() Operation {
	return s.inverted()
}

func (s SetEnabled) Apply(allowlist Allowlist) error {
	return s.setEnabled(s.after, allowlist)
}

func (s SetEnabled) Rollback(allowlist Allowlist) error {
	return s.setEnabled(s.before, allowlist)
}

// setEnabled drives the marker pair toward the desired state.  The markers
// are siblings, so a successful toggle never needs to create directories.
func (s SetEnabled) setEnabled(enabled bool, allowlist Allowlist) error {
	enabledPath := s.target
	disabledPath := s.target + DisabledSuffix
	if err := allowlist.Check(enabledPath); err != nil {
		return err
	}
	if err := allowlist.Check(disabledPath); err != nil {
		return err
	}
	enabledExists, err := pathExists(enabledPath)
	if err != nil {
		return fmt.Errorf("stat %s: %w", enabledPath, err)
	}
	disabledExists, err := pathExists(disabledPath)
	if err != nil {
		return fmt.Errorf("stat %s: %w", disabledPath, err)
	}

	src, dst := disabledPath, enabledPath
	srcExists, dstExists := disabledExists, enabledExists
	if !enabled {
		src, dst = enabledPath, disabledPath
		srcExists, dstExists = enabledExists, disabledExists
	}

	switch decide(srcExists, dstExists) {
	case decisionAlreadyDone:
		return nil
	case decisionConflict:
		return fmt.Errorf("both %s and %s exist: %w", enabledPath, disabledPath, ErrConflict)
	case decisionMissing:
		if enabled {
			// first enablement, nothing on disk yet: create the target fresh
			return createEmpty(enabledPath)
		}
		return fmt.Errorf("%s does not exist in any state: %w", s.target, ErrOperation)
	case decisionMove:
	}
	if err := os.Rename(src, dst); err != nil {
		return fmt.Errorf("rename %s to %s: %w", src, dst, err)
	}
	return nil
}

func createEmpty(path string) error {
	if err := ensureParentDir(path); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	return f.Close()
}
