package repo

import (
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"pkgcraft/internal/logging"
	"pkgcraft/pkg/atom"
	"pkgcraft/pkg/perr"
	"pkgcraft/pkg/restrict"
)

// Categories returns the union of every tree's profiles/categories file,
// sorted; falls back to a filesystem category-dir scan if no tree declares
// any. Initialize-once.
func (r *Repository) Categories() []string {
	r.categoriesOnce.Do(func() {
		set := make(map[string]bool)
		for _, tree := range r.Trees() {
			for _, cat := range readLines(filepath.Join(tree.path, "profiles", "categories")) {
				set[cat] = true
			}
		}
		if len(set) == 0 {
			r.categoriesCache = r.categoryDirs()
			return
		}
		cats := make([]string, 0, len(set))
		for c := range set {
			cats = append(cats, c)
		}
		sort.Strings(cats)
		r.categoriesCache = cats
	})
	return append([]string(nil), r.categoriesCache...)
}

// categoryDirs scans the repo root for directories that parse as valid
// category names, skipping the repo's own eclass, licenses, metadata,
// profiles and scripts directories.
func (r *Repository) categoryDirs() []string {
	entries, err := os.ReadDir(r.path)
	if err != nil {
		return nil
	}
	var cats []string
	for _, e := range entries {
		name := e.Name()
		if !e.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}
		switch name {
		case "eclass", "licenses", "metadata", "profiles", "scripts":
			continue
		}
		if !atom.ValidCategory(name) {
			continue
		}
		cats = append(cats, name)
	}
	sort.Strings(cats)
	return cats
}

// Packages returns the sorted list of package directories under category
// that parse as valid package names.
func (r *Repository) Packages(category string) []string {
	entries, err := os.ReadDir(filepath.Join(r.path, category))
	if err != nil {
		return nil
	}
	var pkgs []string
	for _, e := range entries {
		name := e.Name()
		if !e.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}
		if !atom.ValidPackage(name) {
			logging.Get(logging.Repo).Sugar().Warnf("%s: invalid package name %q in %s", r.id, name, category)
			continue
		}
		pkgs = append(pkgs, name)
	}
	sort.Strings(pkgs)
	return pkgs
}

// Versions returns the sorted list of versions parsed from
// cat/pkg/pkg-ver.ebuild files; malformed ebuild filenames are logged, not
// fatal.
func (r *Repository) Versions(category, pkg string) []atom.Cpv {
	dir := filepath.Join(r.path, category, pkg)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var cpvs []atom.Cpv
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".ebuild") {
			continue
		}
		stem := strings.TrimSuffix(name, ".ebuild")
		cpv, err := atom.ParseCpv(category + "/" + stem)
		if err != nil || cpv.Package != pkg {
			logging.Get(logging.Repo).Sugar().Warnf("%s: invalid ebuild name %q in %s/%s", r.id, name, category, pkg)
			continue
		}
		cpvs = append(cpvs, cpv)
	}
	sort.Slice(cpvs, func(i, j int) bool { return atom.CompareCpv(cpvs[i], cpvs[j]) < 0 })
	return cpvs
}

var ebuildPathRE = regexp.MustCompile(`^([^/]+)/([^/]+)/([^/]+)\.ebuild$`)

// CpvFromPath converts an ebuild path inside the repo into a Cpv, applying
// spec.md §4.F's anchored path regex and validating that the filename stem
// is "pkg-ver" for the package directory it lives in.
func (r *Repository) CpvFromPath(path string) (atom.Cpv, error) {
	rel, err := filepath.Rel(r.path, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return atom.Cpv{}, perr.NewInvalidValue("ebuild path %q: not under repo root %q", path, r.path)
	}
	rel = filepath.ToSlash(rel)

	m := ebuildPathRE.FindStringSubmatch(rel)
	if m == nil {
		return atom.Cpv{}, perr.NewInvalidValue("ebuild path %q: does not match cat/pkg/p.ebuild", rel)
	}
	cat, pkgDir, stem := m[1], m[2], m[3]

	cpv, err := atom.ParseCpv(cat + "/" + stem)
	if err != nil {
		return atom.Cpv{}, perr.WrapInvalidValue(err, "ebuild path %q", rel)
	}
	if cpv.Package != pkgDir {
		return atom.Cpv{}, perr.NewInvalidValue("ebuild path %q: package dir %q does not match %q", rel, pkgDir, cpv.Package)
	}
	return cpv, nil
}

// Iter produces every Cpv in the repo, ordered (category asc, package asc,
// version by spec.md §4.A).
func (r *Repository) Iter() []atom.Cpv {
	return r.IterRestrict(restrict.True)
}

// IterRestrict is Iter filtered by rst. Callers that already know an exact
// category/package/version (e.g. from pkg/target's path-target resolution)
// should prefer CpvFromPath directly over a full-repo IterRestrict scan,
// matching spec.md §4.F's "opens the exact file, skipping directory scans"
// specialization.
func (r *Repository) IterRestrict(rst restrict.Restriction) []atom.Cpv {
	var out []atom.Cpv
	for _, cat := range r.Categories() {
		for _, pkg := range r.Packages(cat) {
			for _, cpv := range r.Versions(cat, pkg) {
				if rst.Matches(cpv) {
					out = append(out, cpv)
				}
			}
		}
	}
	return out
}

func readLines(path string) []string {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	var out []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line != "" && !strings.HasPrefix(line, "#") {
			out = append(out, line)
		}
	}
	return out
}
