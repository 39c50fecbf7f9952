package atom

import (
	"strings"

	"pkgcraft/pkg/perr"
	"pkgcraft/pkg/version"
)

// Cpv is a fully versioned package identifier with no operator, slot,
// USE-deps, or repo: category/package-version.
type Cpv struct {
	Cpn
	Version *version.Version
}

func (c Cpv) String() string { return c.Cpn.String() + "-" + c.Version.String() }

// CompareCpv orders by Cpn then by version.Compare.
func CompareCpv(a, b Cpv) int {
	if c := CompareCpn(a.Cpn, b.Cpn); c != 0 {
		return c
	}
	return version.Compare(a.Version, b.Version)
}

// ParseCpv parses exactly "cat/pkg-ver" -- no operator, slot, USE-deps, or
// repo are permitted.
func ParseCpv(s string) (Cpv, error) {
	cat, rest, found := strings.Cut(s, "/")
	if !found {
		return Cpv{}, perr.NewInvalidValue("cpv %q: missing '/'", s)
	}
	if !validCategory(cat) {
		return Cpv{}, perr.NewInvalidValue("cpv %q: invalid category %q", s, cat)
	}

	pkg, ver, ok := splitPackageVersion(rest)
	if !ok {
		return Cpv{}, perr.NewInvalidValue("cpv %q: no valid version suffix", s)
	}
	if !validPackage(pkg) {
		return Cpv{}, perr.NewInvalidValue("cpv %q: invalid package %q", s, pkg)
	}
	v, err := version.Parse(ver)
	if err != nil {
		return Cpv{}, perr.WrapInvalidValue(err, "cpv %q", s)
	}
	return Cpv{Cpn: Cpn{Category: cat, Package: pkg}, Version: v}, nil
}

// splitPackageVersion finds the rightmost '-' in s such that the suffix
// following it is a syntactically valid bare version, preferring the
// longest possible package name (shortest version suffix), matching the
// "package may contain '-' but not followed by something that parses as a
// version" lookahead rule from spec.md §4.B.
func splitPackageVersion(s string) (pkg, ver string, ok bool) {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] != '-' {
			continue
		}
		candidate := s[i+1:]
		if candidate == "" {
			continue
		}
		if _, err := version.Parse(candidate); err == nil {
			return s[:i], candidate, true
		}
	}
	return "", "", false
}
