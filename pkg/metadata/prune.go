package metadata

import (
	"os"
	"path/filepath"

	"pkgcraft/pkg/atom"
	"pkgcraft/pkg/perr"
)

// Prune removes cache entry files under cacheDir that no longer correspond
// to any Cpv in valid, then removes category directories left empty by that
// removal. Cache entries are laid out as cacheDir/category/pkg-version,
// mirroring the repo's own category/package tree, per spec.md §4.G.
func Prune(cacheDir string, valid []atom.Cpv) error {
	want := make(map[string]bool, len(valid))
	for _, cpv := range valid {
		want[filepath.Join(cpv.Category, cpv.Package+"-"+cpv.Version.String())] = true
	}

	cats, err := os.ReadDir(cacheDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return perr.WrapIO(err, "reading cache dir %s", cacheDir)
	}

	for _, cat := range cats {
		if !cat.IsDir() {
			continue
		}
		catDir := filepath.Join(cacheDir, cat.Name())
		entries, err := os.ReadDir(catDir)
		if err != nil {
			return perr.WrapIO(err, "reading cache category dir %s", catDir)
		}

		remaining := 0
		for _, e := range entries {
			if e.IsDir() {
				remaining++
				continue
			}
			if want[filepath.Join(cat.Name(), e.Name())] {
				remaining++
				continue
			}
			if err := os.Remove(filepath.Join(catDir, e.Name())); err != nil {
				return perr.WrapIO(err, "removing stale cache entry %s", filepath.Join(catDir, e.Name()))
			}
		}

		if remaining == 0 {
			if err := os.Remove(catDir); err != nil {
				return perr.WrapIO(err, "removing empty cache category dir %s", catDir)
			}
		}
	}
	return nil
}
