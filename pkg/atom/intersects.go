package atom

import "pkgcraft/pkg/version"

// Intersects reports whether d and other could both match some common
// package: category/package must be equal, version ranges must overlap,
// slots and USE-deps must be non-contradictory, and repos (if both set)
// must match. Per SPEC_FULL.md supplement 3 / original atom/parser.rs
// Dep::intersects.
func (d *Dep) Intersects(other *Dep) bool {
	if d.Cpn != other.Cpn {
		return false
	}
	if !versionRangesOverlap(d.Version, other.Version) {
		return false
	}
	if !slotsCompatible(d.Slot, other.Slot) {
		return false
	}
	if d.Repo != "" && other.Repo != "" && d.Repo != other.Repo {
		return false
	}
	if !useDepsCompatible(d.UseDeps, other.UseDeps) {
		return false
	}
	return true
}

func slotsCompatible(a, b *SlotDep) bool {
	if a == nil || b == nil {
		return true
	}
	if a.Slot != "" && b.Slot != "" && a.Slot != b.Slot {
		return false
	}
	if a.Subslot != "" && b.Subslot != "" && a.Subslot != b.Subslot {
		return false
	}
	return true
}

// useDepsCompatible reports whether the two USE-dep sets never force the
// same flag into contradictory states. Conditional forms ('?'-suffixed)
// never contradict anything since they only constrain the dependency's own
// package, not the depender.
func useDepsCompatible(a, b []UseDep) bool {
	want := make(map[string]bool, len(a))
	for _, u := range a {
		switch u.Kind {
		case UseEnabled, UseEqual:
			want[u.Flag] = true
		case UseDisabled, UseNotEqual:
			want[u.Flag] = false
		}
	}
	for _, u := range b {
		var need bool
		switch u.Kind {
		case UseEnabled, UseEqual:
			need = true
		case UseDisabled, UseNotEqual:
			need = false
		default:
			continue
		}
		if v, ok := want[u.Flag]; ok && v != need {
			return false
		}
	}
	return true
}

// versionRangesOverlap reports whether some version exists satisfying both
// constraints. A nil Version is an unconstrained wildcard.
func versionRangesOverlap(a, b *version.Version) bool {
	if a == nil || b == nil {
		return true
	}

	// Glob and approx constraints aren't simple relational bounds; resolve
	// them against the other side directly rather than via interval math.
	if a.Op == version.OpEqualGlob || b.Op == version.OpEqualGlob ||
		a.Op == version.OpApprox || b.Op == version.OpApprox {
		return specialOverlap(a, b)
	}

	loA, loAClosed, loAInf := lowerBound(a)
	upA, upAClosed, upAInf := upperBound(a)
	loB, loBClosed, loBInf := lowerBound(b)
	upB, upBClosed, upBInf := upperBound(b)

	// [loA,upA] ∩ [loB,upB] is non-empty iff loA <= upB and loB <= upA,
	// with strict comparison whichever side is open.
	if !loAInf && !upBInf {
		c := version.Compare(loA, upB)
		if c > 0 || (c == 0 && (!loAClosed || !upBClosed)) {
			return false
		}
	}
	if !loBInf && !upAInf {
		c := version.Compare(loB, upA)
		if c > 0 || (c == 0 && (!loBClosed || !upAClosed)) {
			return false
		}
	}
	return true
}

func lowerBound(v *version.Version) (val *version.Version, closed bool, inf bool) {
	switch v.Op {
	case version.OpGreater:
		return v.WithoutOp(), false, false
	case version.OpGreaterOrEqual, version.OpEqual:
		return v.WithoutOp(), true, false
	default:
		return nil, false, true
	}
}

func upperBound(v *version.Version) (val *version.Version, closed bool, inf bool) {
	switch v.Op {
	case version.OpLess:
		return v.WithoutOp(), false, false
	case version.OpLessOrEqual, version.OpEqual:
		return v.WithoutOp(), true, false
	default:
		return nil, false, true
	}
}

// specialOverlap handles any pair where at least one side is '~' (approx,
// revision-agnostic equality) or '=*' (glob prefix match), by testing
// representative candidates against both constraints' Match rather than
// interval bounds.
func specialOverlap(a, b *version.Version) bool {
	candidates := []*version.Version{a.WithoutOp(), b.WithoutOp()}
	for _, c := range candidates {
		if a.Match(c) && b.Match(c) {
			return true
		}
	}
	// Two constraints can still overlap without either's bare version
	// satisfying both (e.g. "=1.2*" and ">1.2" share 1.2.1); fall back to
	// prefix compatibility between their rendered bases. The fallback
	// applies to every pair that reaches it, including pairs where only
	// one side is a glob or approx.
	ra, rb := a.WithoutOp().String(), b.WithoutOp().String()
	if len(ra) <= len(rb) {
		return len(ra) > 0 && len(rb) >= len(ra) && rb[:len(ra)] == ra
	}
	return len(rb) > 0 && ra[:len(rb)] == rb
}
