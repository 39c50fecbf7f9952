// Package target implements spec.md §4.J: converting a user-supplied
// target string into a (RepoSet, Restriction) pair, scoping a query or a
// metadata-regen run to the repos and packages the string names.
package target

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"pkgcraft/pkg/perr"
	"pkgcraft/pkg/pkgconfig"
	"pkgcraft/pkg/repo"
	"pkgcraft/pkg/restrict"
)

// Resolved pairs the set of repos a target applies to with the
// restriction scoping it within them.
type Resolved struct {
	Repos    *repo.RepoSet
	Restrict restrict.Restriction
}

// Resolve converts a single target string into a Resolved value, per
// spec.md §4.J's three-step algorithm: existing-path interpretation,
// dep-shaped glob with embedded repo-path scoping, or a plain glob
// filtered against cfg's full repo set. cfg is mutated in place when a
// target names a new external repo.
func Resolve(cfg *pkgconfig.Config, s string) (Resolved, error) {
	if abs, err := filepath.Abs(s); err == nil {
		if _, statErr := os.Stat(abs); statErr == nil {
			return resolvePath(cfg, abs)
		}
	}
	return resolveGlob(cfg, s)
}

// resolvePath handles step 1: abs names an existing filesystem entry.
func resolvePath(cfg *pkgconfig.Config, abs string) (Resolved, error) {
	for _, r := range cfg.Iter() {
		if rst, ok := r.RestrictFromPath(abs); ok {
			return Resolved{Repos: repo.NewRepoSet(r), Restrict: rst}, nil
		}
	}

	root, err := findRepoRoot(abs)
	if err != nil {
		return Resolved{}, perr.WrapInvalidValue(err, "invalid path target: %s", abs)
	}

	r, err := addExternalRepo(cfg, root)
	if err != nil {
		return Resolved{}, err
	}
	rst, ok := r.RestrictFromPath(abs)
	if !ok {
		rst = restrict.True
	}
	return Resolved{Repos: repo.NewRepoSet(r), Restrict: rst}, nil
}

// resolveGlob handles steps 2 and 3: abs does not name an existing path,
// so s is parsed as a dep-shaped glob.
func resolveGlob(cfg *pkgconfig.Config, s string) (Resolved, error) {
	rst := restrict.ParseGlob(s)

	children, isAnd := restrict.AndChildren(rst)
	if isAnd {
		var repoPaths, repoIDs []string
		var rest []restrict.Restriction
		for _, c := range children {
			if v, ok := restrict.RepoPathLeaf(c); ok {
				if strings.Contains(v, "/") {
					repoPaths = append(repoPaths, v)
				} else {
					repoIDs = append(repoIDs, v)
				}
				continue
			}
			rest = append(rest, c)
		}

		if len(repoPaths) == 1 && len(repoIDs) == 0 {
			abs, err := filepath.Abs(repoPaths[0])
			if err != nil {
				return Resolved{}, perr.WrapInvalidValue(err, "invalid repo: %s", repoPaths[0])
			}
			r, ok := findByPath(cfg, abs)
			if !ok {
				r, err = addExternalRepo(cfg, abs)
				if err != nil {
					return Resolved{}, err
				}
			}
			return Resolved{Repos: repo.NewRepoSet(r), Restrict: restrict.And(rest...)}, nil
		}

		for _, id := range repoIDs {
			if _, ok := cfg.Get(id); !ok {
				return Resolved{}, perr.NewInvalidValue("unknown repo: %s", id)
			}
		}
	}

	return Resolved{Repos: cfg.Set(), Restrict: rst}, nil
}

func findByPath(cfg *pkgconfig.Config, path string) (*repo.Repository, bool) {
	for _, r := range cfg.Iter() {
		if r.Path() == path {
			return r, true
		}
	}
	return nil, false
}

// addExternalRepo builds and registers, in memory only, the repo rooted
// at path (keyed by its own path, since it carries no configured id) --
// no config record is persisted, since a target naming an ad hoc
// external repo is not the same request as pkgconfig's durable Add*
// mutations. Finalized standalone: masters declared in its layout.conf
// are not resolvable since no sibling repos are known. Reused if already
// registered under that path.
func addExternalRepo(cfg *pkgconfig.Config, path string) (*repo.Repository, error) {
	if r, ok := findByPath(cfg, path); ok {
		return r, nil
	}
	r, err := repo.New(path, 0, path)
	if err != nil {
		return nil, perr.WrapInvalidValue(err, "invalid repo: %s", path)
	}
	if err := r.Finalize(map[string]*repo.Repository{path: r}); err != nil {
		return nil, perr.WrapInvalidValue(err, "invalid repo: %s", path)
	}
	if err := cfg.Register(r); err != nil {
		return nil, err
	}
	return r, nil
}

// findRepoRoot walks upward from path (or its containing directory, if
// path names a file) looking for a directory with a profiles/
// subdirectory, per spec.md §4.J's "try loading it as an external repo
// root."
func findRepoRoot(path string) (string, error) {
	dir := path
	if info, err := os.Stat(path); err == nil && !info.IsDir() {
		dir = filepath.Dir(path)
	}

	for {
		if info, err := os.Stat(filepath.Join(dir, "profiles")); err == nil && info.IsDir() {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", perr.NewInvalidValue("no repo found above %s", path)
		}
		dir = parent
	}
}

// Batch groups resolved targets whose Resolved.Repos collapsed to the
// same repo set into a single entry, per spec.md §4.J's batch variant.
type Batch struct {
	Repos     *repo.RepoSet
	Restricts []restrict.Restriction
}

// ResolveBatch resolves every target and groups them by repo set,
// preserving first-seen order, unioning each group's restricts.
func ResolveBatch(cfg *pkgconfig.Config, targets []string) ([]Batch, error) {
	var order []string
	groups := make(map[string]*Batch)

	for _, s := range targets {
		res, err := Resolve(cfg, s)
		if err != nil {
			return nil, err
		}

		key := repoSetKey(res.Repos)
		b, ok := groups[key]
		if !ok {
			b = &Batch{Repos: res.Repos}
			groups[key] = b
			order = append(order, key)
		}
		b.Restricts = append(b.Restricts, res.Restrict)
	}

	out := make([]Batch, 0, len(order))
	for _, key := range order {
		out = append(out, *groups[key])
	}
	return out, nil
}

func repoSetKey(s *repo.RepoSet) string {
	ids := make([]string, 0, s.Len())
	for _, r := range s.Repos() {
		ids = append(ids, r.ID())
	}
	sort.Strings(ids)
	return strings.Join(ids, "\x00")
}
