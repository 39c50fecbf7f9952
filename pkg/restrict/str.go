package restrict

import (
	"regexp"
	"strings"

	"pkgcraft/pkg/perr"
)

// StrKind enumerates the Str leaf's predicate forms, per spec.md §4.C.
type StrKind int

const (
	StrEqualKind StrKind = iota
	StrPrefixKind
	StrSuffixKind
	StrContainsKind
	StrRegexKind
	StrLengthKind
)

// Str is a string leaf predicate. Matches false against any non-string
// target.
type Str struct {
	kind StrKind
	val  string
	re   *regexp.Regexp
	n    int
	op   LenOp
}

func (s *Str) Matches(v any) bool {
	sv, ok := v.(string)
	if !ok {
		return false
	}
	switch s.kind {
	case StrEqualKind:
		return sv == s.val
	case StrPrefixKind:
		return strings.HasPrefix(sv, s.val)
	case StrSuffixKind:
		return strings.HasSuffix(sv, s.val)
	case StrContainsKind:
		return strings.Contains(sv, s.val)
	case StrRegexKind:
		return s.re.MatchString(sv)
	case StrLengthKind:
		return s.op.compare(len(sv), s.n)
	default:
		return false
	}
}

func StrEqual(v string) Restriction   { return &Str{kind: StrEqualKind, val: v} }
func StrPrefix(v string) Restriction  { return &Str{kind: StrPrefixKind, val: v} }
func StrSuffix(v string) Restriction  { return &Str{kind: StrSuffixKind, val: v} }
func StrContains(v string) Restriction { return &Str{kind: StrContainsKind, val: v} }

// StrRegex compiles pattern (unanchored, caller decides) as a Str leaf.
func StrRegex(pattern string) (Restriction, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, perr.WrapInvalidValue(err, "invalid regex %q", pattern)
	}
	return &Str{kind: StrRegexKind, re: re}, nil
}

// LenOp is the comparator for StrLength.
type LenOp int

const (
	LenEqual LenOp = iota
	LenLess
	LenLessOrEqual
	LenGreater
	LenGreaterOrEqual
)

func (op LenOp) compare(have, want int) bool {
	switch op {
	case LenEqual:
		return have == want
	case LenLess:
		return have < want
	case LenLessOrEqual:
		return have <= want
	case LenGreater:
		return have > want
	case LenGreaterOrEqual:
		return have >= want
	default:
		return false
	}
}

func StrLength(op LenOp, n int) Restriction { return &Str{kind: StrLengthKind, op: op, n: n} }

// StrGlob converts a glob string (only '*' is a metacharacter; everything
// else is escaped) into an anchored Str regex leaf, per spec.md §4.C's
// canonical target-string parser.
func StrGlob(pattern string) Restriction {
	re := strings.ReplaceAll(regexp.QuoteMeta(pattern), `\*`, ".*")
	return &Str{kind: StrRegexKind, re: regexp.MustCompile("^" + re + "$")}
}
