package restrict

import "pkgcraft/pkg/version"

// Version is a leaf predicate over an optional *version.Version target. A
// nil spec matches only an unversioned (nil) target, per spec.md §4.C
// ("None matches unversioned").
type Version struct {
	spec *version.Version
}

// VersionSpec wraps an operator-bearing version (e.g. from
// version.ParseWithOp) as a leaf predicate.
func VersionSpec(v *version.Version) Restriction { return &Version{spec: v} }

// VersionNone matches only an unversioned target.
func VersionNone() Restriction { return &Version{spec: nil} }

func (r *Version) Matches(v any) bool {
	cand, ok := v.(*version.Version)
	if !ok {
		return false
	}
	if r.spec == nil {
		return cand == nil
	}
	if cand == nil {
		return false
	}
	return r.spec.Match(cand)
}
