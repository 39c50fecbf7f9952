package version

import "strings"

// Match reports whether candidate satisfies the dependency spec carried by
// v (v's Op and version fields). v.Op must not be OpNone.
func (v *Version) Match(candidate *Version) bool {
	switch v.Op {
	case OpLess:
		return Compare(candidate, v) < 0
	case OpLessOrEqual:
		return Compare(candidate, v) <= 0
	case OpGreaterOrEqual:
		return Compare(candidate, v) >= 0
	case OpGreater:
		return Compare(candidate, v) > 0
	case OpEqual:
		return Compare(candidate, v) == 0
	case OpApprox:
		return approxEqual(candidate, v)
	case OpEqualGlob:
		return equalGlob(candidate, v)
	default:
		return Compare(candidate, v) == 0
	}
}

// approxEqual implements "~": equal in every field except revision.
func approxEqual(candidate, spec *Version) bool {
	cp := candidate.WithoutOp()
	cp.HasRevision = false
	cp.RevisionStr = ""
	cp.Revision = 0
	cp.raw = renderBare(cp)

	sp := spec.WithoutOp()
	sp.HasRevision = false
	sp.RevisionStr = ""
	sp.Revision = 0
	sp.raw = renderBare(sp)

	return Compare(cp, sp) == 0
}

// equalGlob implements EqualGlob: the candidate's rendered, operator-free
// version string must have spec's rendered version as a dotted/suffix
// prefix. Per the Open Question decision recorded in SPEC_FULL.md, this is
// a purely textual prefix test performed against the full rendered string
// (numbers + letter + suffixes + revision), not a field-wise comparison.
func equalGlob(candidate, spec *Version) bool {
	specStr := renderBare(spec)
	candStr := renderBare(candidate)
	if !strings.HasPrefix(candStr, specStr) {
		return false
	}
	if len(candStr) == len(specStr) {
		return true
	}
	// The prefix must end on a component boundary: next rune must not be a
	// digit continuing the last numeric component, so "1.2*" doesn't match
	// "1.20". A boundary is any of '.', a letter, '_', or '-'.
	next := candStr[len(specStr)]
	switch {
	case next >= '0' && next <= '9':
		// only a boundary if the spec's rendered version didn't end mid
		// digit run, i.e. the spec's last char was itself non-digit
		last := specStr[len(specStr)-1]
		return !(last >= '0' && last <= '9')
	default:
		return true
	}
}
