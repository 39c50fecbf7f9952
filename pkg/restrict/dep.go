package restrict

import (
	"pkgcraft/pkg/atom"
	"pkgcraft/pkg/version"
)

// categoryOf / packageOf extract the shared Cpn fields from whichever
// target type carries them (atom.Cpn, atom.Cpv, *atom.Dep); other types
// yield ok=false so the wrapping leaf matches false per spec.md §4.C.
func categoryOf(v any) (string, bool) {
	switch t := v.(type) {
	case atom.Cpn:
		return t.Category, true
	case atom.Cpv:
		return t.Category, true
	case *atom.Dep:
		return t.Category, true
	default:
		return "", false
	}
}

func packageOf(v any) (string, bool) {
	switch t := v.(type) {
	case atom.Cpn:
		return t.Package, true
	case atom.Cpv:
		return t.Package, true
	case *atom.Dep:
		return t.Package, true
	default:
		return "", false
	}
}

func versionOf(v any) (*version.Version, bool) {
	switch t := v.(type) {
	case atom.Cpv:
		return t.Version, true
	case *atom.Dep:
		return t.Version, true
	default:
		return nil, false
	}
}

func repoOf(v any) (string, bool) {
	d, ok := v.(*atom.Dep)
	if !ok {
		return "", false
	}
	return d.Repo, true
}

func slotOf(v any) (string, bool, bool) {
	d, ok := v.(*atom.Dep)
	if !ok || d.Slot == nil {
		return "", false, ok
	}
	return d.Slot.Slot, true, true
}

func subslotOf(v any) (string, bool, bool) {
	d, ok := v.(*atom.Dep)
	if !ok || d.Slot == nil {
		return "", false, ok
	}
	return d.Slot.Subslot, d.Slot.Subslot != "", true
}

func useDepsOf(v any) ([]atom.UseDep, bool) {
	d, ok := v.(*atom.Dep)
	if !ok {
		return nil, false
	}
	return d.UseDeps, true
}

type fieldWrap struct {
	field   string
	extract func(v any) (string, bool)
	inner   Restriction
}

func (w fieldWrap) Matches(v any) bool {
	s, ok := w.extract(v)
	if !ok {
		return false
	}
	return w.inner.Matches(s)
}

// Category wraps a Str leaf to apply against a target's category field.
func Category(inner Restriction) Restriction {
	return fieldWrap{field: "category", extract: categoryOf, inner: inner}
}

// Package wraps a Str leaf to apply against a target's package field.
func Package(inner Restriction) Restriction {
	return fieldWrap{field: "package", extract: packageOf, inner: inner}
}

// Repo wraps a Str leaf to apply against a Dep's repo field. Targets other
// than *atom.Dep never match; a Dep with no repo is matched as "".
func Repo(inner Restriction) Restriction {
	return fieldWrap{field: "repo", extract: repoOf, inner: inner}
}

type slotWrap struct {
	sub   bool
	inner Restriction
}

func (w slotWrap) Matches(v any) bool {
	var s string
	var present, isDep bool
	if w.sub {
		s, present, isDep = subslotOf(v)
	} else {
		s, present, isDep = slotOf(v)
	}
	if !isDep || !present {
		return false
	}
	return w.inner.Matches(s)
}

// Slot wraps a Str leaf to apply against a Dep's slot name.
func Slot(inner Restriction) Restriction { return slotWrap{inner: inner} }

// Subslot wraps a Str leaf to apply against a Dep's subslot name.
func Subslot(inner Restriction) Restriction { return slotWrap{sub: true, inner: inner} }

// DepVersion wraps a Version leaf to apply against a Cpv/Dep's version
// field (as opposed to restrict.Version, which is handed a *version.Version
// target directly).
func DepVersion(inner Restriction) Restriction {
	return Func(func(v any) bool {
		ver, ok := versionOf(v)
		if !ok {
			return false
		}
		return inner.Matches(ver)
	})
}

// UseDepName matches a Dep carrying a USE-dependency atom whose flag name
// satisfies inner.
func UseDepName(inner Restriction) Restriction {
	return Func(func(v any) bool {
		deps, ok := useDepsOf(v)
		if !ok {
			return false
		}
		for _, u := range deps {
			if inner.Matches(u.Flag) {
				return true
			}
		}
		return false
	})
}

// flattenable is implemented by pkg/dep's Node[T] and Set[T] for every T.
type flattenable interface {
	FlattenAny() []any
}

// Dep matches a dependency tree or set if any flattened leaf matches
// inner, per spec.md §4.C ("Dep(r) matches if any flattened leaf matches
// r").
func Dep(inner Restriction) Restriction {
	return Func(func(v any) bool {
		f, ok := v.(flattenable)
		if !ok {
			return false
		}
		for _, leaf := range f.FlattenAny() {
			if inner.Matches(leaf) {
				return true
			}
		}
		return false
	})
}

// FromCpn returns a Restriction matching exactly cpn's category and
// package, per SPEC_FULL.md supplement 1 (original atom/restrict.rs
// From<&Cpn> impl).
func FromCpn(cpn atom.Cpn) Restriction {
	return And(Category(StrEqual(cpn.Category)), Package(StrEqual(cpn.Package)))
}

// FromCpv returns a Restriction matching exactly cpv's category, package,
// and version.
func FromCpv(cpv atom.Cpv) Restriction {
	return And(
		Category(StrEqual(cpv.Category)),
		Package(StrEqual(cpv.Package)),
		DepVersion(VersionSpec(cpv.Version.WithoutOp())),
	)
}

// FromDep returns a Restriction matching d's category, package, version
// (or no version, if d has none), slot and subslot (if any), and repo (if
// any). d's USE-deps are not part of the restriction.
func FromDep(d *atom.Dep) Restriction {
	parts := []Restriction{
		Category(StrEqual(d.Category)),
		Package(StrEqual(d.Package)),
	}
	if d.Version != nil {
		parts = append(parts, DepVersion(VersionSpec(d.Version)))
	} else {
		parts = append(parts, DepVersion(VersionNone()))
	}
	if d.Slot != nil {
		parts = append(parts, Slot(StrEqual(d.Slot.Slot)))
		if d.Slot.Subslot != "" {
			parts = append(parts, Subslot(StrEqual(d.Slot.Subslot)))
		}
	}
	if d.Repo != "" {
		parts = append(parts, Repo(StrEqual(d.Repo)))
	}
	return And(parts...)
}
