// Package version implements the EAPI-independent version grammar shared by
// every ebuild-style identifier: parsing, canonical rendering, and the total
// order described in spec.md §4.A.
package version

import (
	"strconv"
	"strings"

	"pkgcraft/pkg/perr"
)

// Operator is the optional comparison operator attached to a versioned
// dependency specification (e.g. ">=cat/pkg-1.2").
type Operator int

const (
	// OpNone means the version carries no operator (a bare Cpv version).
	OpNone Operator = iota
	OpLess
	OpLessOrEqual
	OpEqual
	OpEqualGlob // "=" with a trailing "*"
	OpApprox    // "~"
	OpGreaterOrEqual
	OpGreater
)

func (o Operator) String() string {
	switch o {
	case OpLess:
		return "<"
	case OpLessOrEqual:
		return "<="
	case OpEqual, OpEqualGlob:
		return "="
	case OpApprox:
		return "~"
	case OpGreaterOrEqual:
		return ">="
	case OpGreater:
		return ">"
	default:
		return ""
	}
}

// SuffixKind enumerates the release-suffix kinds, ordered per the grammar:
// alpha < beta < pre < rc < (no suffix) < p. noSuffix is never produced by
// the parser; it exists only as the comparison value used when one suffix
// sequence runs out of elements before another.
type SuffixKind int

const (
	SuffixAlpha SuffixKind = iota
	SuffixBeta
	SuffixPre
	SuffixRC
	noSuffix
	SuffixP
)

var suffixNames = map[SuffixKind]string{
	SuffixAlpha: "alpha",
	SuffixBeta:  "beta",
	SuffixPre:   "pre",
	SuffixRC:    "rc",
	SuffixP:     "p",
}

var suffixByName = map[string]SuffixKind{
	"alpha": SuffixAlpha,
	"beta":  SuffixBeta,
	"pre":   SuffixPre,
	"rc":    SuffixRC,
	"p":     SuffixP,
}

// Suffix is one "_alpha"/"_beta"/"_pre"/"_rc"/"_p" release suffix, with an
// optional trailing numeric value (absent means 0 for comparison purposes,
// but the original digit string -- possibly empty -- is kept for exact
// round-trip rendering).
type Suffix struct {
	Kind   SuffixKind
	NumStr string // "" if no number was attached
	Num    uint64
}

func (s Suffix) String() string {
	return "_" + suffixNames[s.Kind] + s.NumStr
}

// Component is one dot-separated numeric version component. Orig is the
// exact digit string as parsed (preserving leading zeros); Value is its
// parsed integer value, used for comparison except when a leading-zero
// tie-break rule applies.
type Component struct {
	Orig  string
	Value uint64
}

// Version is an immutable, fully parsed version string: numeric components,
// an optional single-letter suffix, zero or more release suffixes, an
// optional revision, and an optional comparison operator (absent on a bare
// Cpv version).
type Version struct {
	Numbers     []Component
	HasLetter   bool
	Letter      byte
	Suffixes    []Suffix
	HasRevision bool
	RevisionStr string
	Revision    uint64
	Op          Operator

	raw string // original parsed string, excluding operator/glob
}

// String renders the version. With no operator attached, rendering a parsed
// version always reproduces the original string exactly.
func (v *Version) String() string {
	if v == nil {
		return ""
	}
	var b strings.Builder
	if v.Op != OpNone && v.Op != OpEqualGlob {
		b.WriteString(v.Op.String())
	} else if v.Op == OpEqualGlob {
		b.WriteString("=")
	}
	b.WriteString(v.raw)
	if v.Op == OpEqualGlob {
		b.WriteString("*")
	}
	return b.String()
}

// Unversioned reports whether this is effectively the empty/zero value --
// used as the "None" sentinel in ordering and matching contexts.
func (v *Version) Unversioned() bool { return v == nil }

// WithOp returns a copy of v with the operator replaced.
func (v *Version) WithOp(op Operator) *Version {
	cp := *v
	cp.Op = op
	return &cp
}

// WithoutOp returns a copy of v with no operator attached.
func (v *Version) WithoutOp() *Version {
	return v.WithOp(OpNone)
}

func renderBare(v *Version) string {
	var b strings.Builder
	for i, n := range v.Numbers {
		if i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(n.Orig)
	}
	if v.HasLetter {
		b.WriteByte(v.Letter)
	}
	for _, s := range v.Suffixes {
		b.WriteString(s.String())
	}
	if v.HasRevision {
		b.WriteString("-r")
		b.WriteString(v.RevisionStr)
	}
	return b.String()
}

var suffixOrderRE = `alpha|beta|pre|rc|p`

// Parse parses a bare version string (no leading operator), e.g.
// "1.2.3b_alpha4-r1". Use ParseWithOp for a versioned dependency spec that
// may carry a leading operator.
func Parse(s string) (*Version, error) {
	v, rest, err := parseBare(s)
	if err != nil {
		return nil, err
	}
	if rest != "" {
		return nil, perr.NewInvalidValue("version %q: trailing input %q", s, rest)
	}
	return v, nil
}

// ParseWithOp parses a full versioned spec: an optional operator, a bare
// version, and -- only when the operator is "=" -- an optional trailing "*"
// turning it into EqualGlob.
func ParseWithOp(s string) (*Version, error) {
	op := OpNone
	rest := s
	switch {
	case strings.HasPrefix(rest, "<="):
		op, rest = OpLessOrEqual, rest[2:]
	case strings.HasPrefix(rest, ">="):
		op, rest = OpGreaterOrEqual, rest[2:]
	case strings.HasPrefix(rest, "<"):
		op, rest = OpLess, rest[1:]
	case strings.HasPrefix(rest, ">"):
		op, rest = OpGreater, rest[1:]
	case strings.HasPrefix(rest, "="):
		op, rest = OpEqual, rest[1:]
	case strings.HasPrefix(rest, "~"):
		op, rest = OpApprox, rest[1:]
	}

	glob := false
	if op == OpEqual && strings.HasSuffix(rest, "*") {
		glob = true
		rest = rest[:len(rest)-1]
	} else if strings.HasSuffix(rest, "*") {
		return nil, perr.NewInvalidValue("version %q: trailing glob '*' only valid after '='", s)
	}

	v, tail, err := parseBare(rest)
	if err != nil {
		return nil, err
	}
	if tail != "" {
		return nil, perr.NewInvalidValue("version %q: trailing input %q", s, tail)
	}
	if op == OpNone && s != rest {
		// shouldn't happen, defensive
	}
	v.Op = op
	if glob {
		v.Op = OpEqualGlob
	}
	return v, nil
}

// parseBare parses the version grammar from the front of s, returning the
// unconsumed remainder; Parse and ParseWithOp reject a non-empty one.
func parseBare(s string) (*Version, string, error) {
	orig := s
	v := &Version{}

	// number ('.' number)*
	num, rest, err := scanNumber(s)
	if err != nil {
		return nil, "", perr.WrapInvalidValue(err, "version %q", orig)
	}
	v.Numbers = append(v.Numbers, num)
	s = rest
	for strings.HasPrefix(s, ".") {
		num, rest, err := scanNumber(s[1:])
		if err != nil {
			return nil, "", perr.WrapInvalidValue(err, "version %q", orig)
		}
		v.Numbers = append(v.Numbers, num)
		s = rest
	}

	// letter?
	if len(s) > 0 && s[0] >= 'a' && s[0] <= 'z' {
		// Only consume as the version letter if it's not the start of a
		// release-suffix keyword reachable via '_'; letters are bare,
		// suffixes always start with '_', so no ambiguity.
		v.HasLetter = true
		v.Letter = s[0]
		s = s[1:]
	}

	// suffix*
	for strings.HasPrefix(s, "_") {
		suf, rest, ok, err := scanSuffix(s)
		if err != nil {
			return nil, "", perr.WrapInvalidValue(err, "version %q", orig)
		}
		if !ok {
			break
		}
		v.Suffixes = append(v.Suffixes, suf)
		s = rest
	}

	// revision?
	if strings.HasPrefix(s, "-r") {
		digits, rest := scanDigits(s[2:])
		if digits == "" {
			return nil, "", perr.NewInvalidValue("version %q: malformed revision", orig)
		}
		val, err := strconv.ParseUint(digits, 10, 64)
		if err != nil {
			return nil, "", perr.WrapInvalidValue(err, "version %q: revision overflow", orig)
		}
		v.HasRevision = true
		v.RevisionStr = digits
		v.Revision = val
		s = rest
	}

	v.raw = renderBare(v)
	return v, s, nil
}

func scanDigits(s string) (digits, rest string) {
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	return s[:i], s[i:]
}

func scanNumber(s string) (Component, string, error) {
	digits, rest := scanDigits(s)
	if digits == "" {
		return Component{}, "", perr.NewInvalidValue("expected digits, got %q", s)
	}
	val, err := strconv.ParseUint(digits, 10, 64)
	if err != nil {
		return Component{}, "", perr.WrapInvalidValue(err, "numeric component overflow: %q", digits)
	}
	return Component{Orig: digits, Value: val}, rest, nil
}

// scanSuffix attempts to scan one "_kind[digits]" suffix from the front of
// s. ok is false (with no error) if s starts with '_' but what follows isn't
// a recognized suffix keyword -- that's not a suffix, it belongs to whatever
// comes after the version grammar (e.g. a USE-dependency block).
func scanSuffix(s string) (suf Suffix, rest string, ok bool, err error) {
	body := s[1:]
	for _, name := range []string{"alpha", "beta", "pre", "rc", "p"} {
		if strings.HasPrefix(body, name) {
			kind := suffixByName[name]
			after := body[len(name):]
			digits, tail := scanDigits(after)
			var val uint64
			if digits != "" {
				val, err = strconv.ParseUint(digits, 10, 64)
				if err != nil {
					return Suffix{}, "", false, perr.WrapInvalidValue(err, "suffix number overflow: %q", digits)
				}
			}
			return Suffix{Kind: kind, NumStr: digits, Num: val}, tail, true, nil
		}
	}
	return Suffix{}, s, false, nil
}
