// Package metadata implements the per-package metadata cache: the decoded
// attribute record (Metadata), the on-disk entry format, its checksum-based
// staleness check, and atomic writes, per spec.md §4.G.
package metadata

import (
	"pkgcraft/pkg/atom"
	"pkgcraft/pkg/dep"
	"pkgcraft/pkg/eapi"
	"pkgcraft/pkg/uri"
)

// IUSEFlag is one IUSE token: a flag name with an optional default state.
type IUSEFlag struct {
	Name    string
	Default bool // true for "+flag", false for "-flag" or bare "flag"
	HasSign bool // false for a bare "flag" with no +/- prefix
}

// Metadata is a package's fully decoded post-parse attribute record, per
// spec.md §3.
type Metadata struct {
	EAPI        *eapi.EAPI
	Description string
	Slot        atom.SlotDep

	BDepend  *dep.Set[*atom.Dep]
	Depend   *dep.Set[*atom.Dep]
	IDepend  *dep.Set[*atom.Dep]
	PDepend  *dep.Set[*atom.Dep]
	RDepend  *dep.Set[*atom.Dep]

	License      *dep.Set[dep.PlainString]
	Properties   *dep.Set[dep.PlainString]
	Restrict     *dep.Set[dep.PlainString]
	RequiredUse  *dep.Set[dep.PlainString]

	SrcURI *dep.Set[uri.Uri]

	Homepage       []string
	DefinedPhases  []string
	Keywords       []string
	IUSE           []IUSEFlag
	Inherit        []string
	Inherited      []string

	Checksum string // "_md5_": hex digest of the source ebuild
}
