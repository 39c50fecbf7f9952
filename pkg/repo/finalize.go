package repo

import (
	"crypto/md5"
	"encoding/hex"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"pkgcraft/internal/logging"
	"pkgcraft/pkg/perr"
)

// Finalize resolves r's declared masters against existing, the set of
// already-constructed sibling repos keyed by id, and builds the cached
// trees list (masters in declaration order, r last). Fails with
// InvalidRepo listing every unconfigured master name, per spec.md §4.F.
// Safe to call more than once; subsequent calls are no-ops.
func (r *Repository) Finalize(existing map[string]*Repository) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.finalized {
		return nil
	}

	var masters []*Repository
	var missing []string
	for _, name := range r.masterNames {
		m, ok := existing[name]
		if !ok {
			missing = append(missing, name)
			continue
		}
		masters = append(masters, m)
	}
	if len(missing) > 0 {
		return perr.NewInvalidRepo(r.id, "unconfigured repos: "+strings.Join(missing, ", "))
	}

	trees := append(append([]*Repository(nil), masters...), r)
	r.masters = masters
	r.trees = trees
	r.finalized = true
	return nil
}

// Masters returns r's resolved master repos in declaration order. Panics if
// Finalize has not yet been called, matching the original's "finalize()
// uncalled" invariant.
func (r *Repository) Masters() []*Repository {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if !r.finalized {
		panic("repo: Masters called before Finalize: " + r.id)
	}
	return append([]*Repository(nil), r.masters...)
}

// Trees returns r's inheritance list including itself: masters first, self
// last.
func (r *Repository) Trees() []*Repository {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if !r.finalized {
		panic("repo: Trees called before Finalize: " + r.id)
	}
	return append([]*Repository(nil), r.trees...)
}

// Eclasses returns the union of every tree's eclass/*.eclass files keyed by
// stem, later trees overriding earlier ones; initialize-once.
func (r *Repository) Eclasses() map[string]Eclass {
	r.eclassOnce.Do(func() {
		m := make(map[string]Eclass)
		for _, tree := range r.Trees() {
			dir := filepath.Join(tree.path, "eclass")
			entries, err := os.ReadDir(dir)
			if err != nil {
				continue
			}
			for _, e := range entries {
				if e.IsDir() {
					continue
				}
				name := e.Name()
				if !strings.HasSuffix(name, ".eclass") {
					continue
				}
				stem := strings.TrimSuffix(name, ".eclass")
				path := filepath.Join(dir, name)
				sum, err := checksumFile(path)
				if err != nil {
					logging.Get(logging.Repo).Warn("failed checksumming eclass: " + path)
					continue
				}
				m[stem] = Eclass{Name: stem, Path: path, Checksum: sum}
			}
		}
		r.eclassCache = m
	})
	return r.eclassCache
}

// WarmCaches triggers r's independent initialize-once lazy caches
// (categories, eclass map) concurrently, so a regeneration driver can
// collapse them before forking workers per spec.md §4.H step 1 ("keeps the
// copy-on-write working set small"). Both caches are read-only after this
// returns; warming is an optimization, never required for correctness.
func (r *Repository) WarmCaches() error {
	var g errgroup.Group
	g.Go(func() error { r.Categories(); return nil })
	g.Go(func() error { r.Eclasses(); return nil })
	return g.Wait()
}

// checksumFile returns the hex-encoded MD5 digest of path's contents, the
// algorithm spec.md §4.G's cache entry format names explicitly (the
// "_md5_" ebuild-checksum key and the "_eclasses_" name/chksum pairs).
func checksumFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := md5.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
