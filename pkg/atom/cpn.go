// Package atom implements the EAPI-gated package-identity grammar: Cpn
// (category/package), Cpv (category/package-version), and Dep (a full
// versioned, sloted, USE-constrained dependency specification), per
// spec.md §4.B.
package atom

import (
	"regexp"
	"strings"

	"pkgcraft/pkg/perr"
)

var (
	categoryRE = regexp.MustCompile(`^[A-Za-z0-9_][A-Za-z0-9+_.-]*$`)
	packageRE  = regexp.MustCompile(`^[A-Za-z0-9_][A-Za-z0-9+_-]*$`)
	slotNameRE = regexp.MustCompile(`^[A-Za-z0-9_][A-Za-z0-9+_.-]*$`)
	useFlagRE  = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9+_@-]*$`)
	repoNameRE = regexp.MustCompile(`^[A-Za-z0-9_][A-Za-z0-9+_-]*$`)
)

func validCategory(s string) bool { return s != "" && categoryRE.MatchString(s) }
func validPackage(s string) bool  { return s != "" && packageRE.MatchString(s) }
func validSlotName(s string) bool { return s != "" && slotNameRE.MatchString(s) }
func validUseFlag(s string) bool  { return s != "" && useFlagRE.MatchString(s) }
func validRepoName(s string) bool { return s != "" && repoNameRE.MatchString(s) }

// ValidCategory reports whether s is a syntactically valid category name.
// Exported for repo directory-scan filtering.
func ValidCategory(s string) bool { return validCategory(s) }

// ValidPackage reports whether s is a syntactically valid package name.
func ValidPackage(s string) bool { return validPackage(s) }

// Cpn is an unversioned package identifier: category/package.
type Cpn struct {
	Category string
	Package  string
}

func (c Cpn) String() string { return c.Category + "/" + c.Package }

// CompareCpn orders by category then package, both plain string order.
func CompareCpn(a, b Cpn) int {
	if c := strings.Compare(a.Category, b.Category); c != 0 {
		return c
	}
	return strings.Compare(a.Package, b.Package)
}

// ParseCpn parses exactly "category/package" with no version or any other
// trailing component.
func ParseCpn(s string) (Cpn, error) {
	cat, pkg, found := strings.Cut(s, "/")
	if !found {
		return Cpn{}, perr.NewInvalidValue("cpn %q: missing '/'", s)
	}
	if !validCategory(cat) {
		return Cpn{}, perr.NewInvalidValue("cpn %q: invalid category %q", s, cat)
	}
	if !validPackage(pkg) {
		return Cpn{}, perr.NewInvalidValue("cpn %q: invalid package %q", s, pkg)
	}
	return Cpn{Category: cat, Package: pkg}, nil
}
