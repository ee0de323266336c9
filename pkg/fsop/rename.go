package fsop

// Rename moves a path from a before location to an after location.  The two
// locations are mutually exclusive: observing both is a conflict, observing
// neither leaves nothing to move.
type Rename struct {
	target string
	before string
	after  string
}

func NewRename(target, beforePath, afterPath string) Rename {
	return Rename{target: target, before: beforePath, after: afterPath}
}

func (r Rename) Kind() Kind     { return KindRename }
func (r Rename) Target() string { return r.target }

func (r Rename) Spec() Spec {
	spec := r.spec()
	inverse := r.inverted().spec()
	spec.Inverse = &inverse
	return spec
}

func (r Rename) spec() Spec {
	return Spec{
		Kind:   KindRename,
		Target: r.target,
		Before: State{Path: r.before},
		After:  State{Path: r.after},
	}
}

func (r Rename) inverted() Rename {
	return Rename{target: r.target, before: r.after, after: r.before}
}

func (r Rename) Invert() Operation {
	return r.inverted()
}

func (r Rename) Apply(allowlist Allowlist) error {
	return moveExclusive(r.before, r.after, allowlist)
}

func (r Rename) Rollback(allowlist Allowlist) error {
	return moveExclusive(r.after, r.before, allowlist)
}
