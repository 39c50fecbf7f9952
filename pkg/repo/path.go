package repo

import (
	"os"
	"path/filepath"
	"strings"

	"pkgcraft/pkg/atom"
	"pkgcraft/pkg/restrict"
)

// RestrictFromPath converts an absolute filesystem path into the
// restriction that scopes to whatever it names inside the repo -- the
// repo root, a category directory, a package directory, or a single
// ebuild file -- per spec.md §4.J's "interpret it against every
// configured repo via that repo's restrict_from_path." Returns ok=false
// if path does not resolve to any of those four shapes under this repo.
func (r *Repository) RestrictFromPath(path string) (restrict.Restriction, bool) {
	rel, err := filepath.Rel(r.path, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return nil, false
	}
	rel = filepath.ToSlash(rel)

	if rel == "." {
		return restrict.True, true
	}

	if cpv, err := r.CpvFromPath(path); err == nil {
		return restrict.FromCpv(cpv), true
	}

	parts := strings.Split(rel, "/")
	switch len(parts) {
	case 1:
		if !atom.ValidCategory(parts[0]) {
			return nil, false
		}
		if !isDir(path) {
			return nil, false
		}
		return restrict.Category(restrict.StrEqual(parts[0])), true
	case 2:
		if !atom.ValidCategory(parts[0]) || !atom.ValidPackage(parts[1]) {
			return nil, false
		}
		if !isDir(path) {
			return nil, false
		}
		return restrict.FromCpn(atom.Cpn{Category: parts[0], Package: parts[1]}), true
	default:
		return nil, false
	}
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
