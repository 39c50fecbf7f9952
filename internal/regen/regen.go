// Package regen implements the metadata cache regeneration driver: the
// bounded worker pool that sources every target ebuild through a
// shell.Interpreter and writes (or verifies) its cache entry, per
// spec.md §4.H.
package regen

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"pkgcraft/internal/logging"
	"pkgcraft/pkg/atom"
	"pkgcraft/pkg/eapi"
	"pkgcraft/pkg/metadata"
	"pkgcraft/pkg/perr"
	"pkgcraft/pkg/repo"
	"pkgcraft/pkg/shell"
)

// Options configures one regeneration run.
type Options struct {
	Jobs     int                     // worker parallelism; < 1 treated as 1
	Force    bool                    // regenerate even if the existing entry is valid
	Verify   bool                    // check validity/parse but never write or delete
	Progress func(done, total int)   // optional; called after each completed target
	Targets  []atom.Cpv              // nil/empty means every Cpv in the repo
}

// Run regenerates r's metadata cache using interp to source each target
// ebuild. Per-target failures are logged and accumulated; the run itself
// fails with InvalidValue iff at least one target failed, per spec.md §4.H
// and §7's propagation policy.
func Run(ctx context.Context, r *repo.Repository, interp shell.Interpreter, opts Options) error {
	runID := uuid.New().String()
	log := logging.Get(logging.Regen).With(zap.String("run_id", runID), zap.String("repo", r.ID()))

	// Step 1: collapse the repo's lazy caches before forking workers, so
	// every worker shares the same already-materialized category/eclass
	// state instead of racing to build it.
	if err := r.WarmCaches(); err != nil {
		return perr.WrapBase(err, "warming repo caches before regen")
	}

	targeted := len(opts.Targets) > 0
	cpvs := opts.Targets
	if !targeted {
		cpvs = r.Iter()
	}

	cacheDir := filepath.Join(r.Path(), "metadata", "md5-cache")
	eclassChecksums := eclassChecksumMap(r.Eclasses())

	if _, err := os.Stat(cacheDir); err == nil {
		// Step 2: prune stale entries, then (unless forced) drop targets
		// whose existing entry is already valid.
		if !targeted && !opts.Verify {
			if err := metadata.Prune(cacheDir, cpvs); err != nil {
				return perr.WrapBase(err, "pruning stale cache entries")
			}
		}
		if !opts.Force {
			filtered, err := filterInvalid(cpvs, r, cacheDir, eclassChecksums)
			if err != nil {
				return err
			}
			cpvs = filtered
		}
	}

	if len(cpvs) == 0 {
		return nil
	}

	jobs := opts.Jobs
	if jobs < 1 {
		jobs = 1
	}

	// Step 3: bounded worker pool over the interpreter service.
	sem := semaphore.NewWeighted(int64(jobs))
	var g errgroup.Group

	var mu sync.Mutex
	var errs error
	done := 0
	total := len(cpvs)

	for _, cpv := range cpvs {
		cpv := cpv
		if err := sem.Acquire(ctx, 1); err != nil {
			break
		}
		g.Go(func() error {
			defer sem.Release(1)

			err := regenOne(r, interp, cpv, cacheDir, eclassChecksums, opts.Verify)

			mu.Lock()
			done++
			if opts.Progress != nil {
				opts.Progress(done, total)
			}
			if err != nil {
				errs = multierr.Append(errs, err)
				log.Error("metadata generation failed", zap.String("cpv", cpv.String()), zap.Error(err))
			}
			mu.Unlock()

			// Step 4: per-target failures are captured and logged, never
			// propagated through errgroup -- the pool must not cancel
			// outstanding work over one bad package.
			return nil
		})
	}
	_ = g.Wait()

	if errs != nil {
		return perr.NewInvalidValue("metadata failures occurred, see log for details")
	}
	return nil
}

func filterInvalid(cpvs []atom.Cpv, r *repo.Repository, cacheDir string, eclassChecksums map[string]string) ([]atom.Cpv, error) {
	var out []atom.Cpv
	for _, cpv := range cpvs {
		checksum, err := checksumFile(ebuildPath(r, cpv))
		if err != nil {
			return nil, perr.WrapIO(err, "checksumming %s", ebuildPath(r, cpv))
		}
		valid, err := metadata.IsCacheValid(entryPath(cacheDir, cpv), checksum, eclassChecksums)
		if err != nil {
			return nil, err
		}
		if !valid {
			out = append(out, cpv)
		}
	}
	return out, nil
}

func regenOne(r *repo.Repository, interp shell.Interpreter, cpv atom.Cpv, cacheDir string, eclassChecksums map[string]string, verify bool) error {
	path := ebuildPath(r, cpv)

	checksum, err := checksumFile(path)
	if err != nil {
		return perr.WrapIO(err, "checksumming %s", path)
	}
	if err := interp.SourceFile(path); err != nil {
		return perr.WrapBase(err, "%s: sourcing failed", cpv)
	}

	e := r.EAPI()
	if v, ok := interp.Variable("EAPI"); ok && v.Scalar != "" {
		sourced, err := eapi.Get(v.Scalar)
		if err != nil {
			return perr.WrapInvalidValue(err, "%s: unsupported EAPI %q", cpv, v.Scalar)
		}
		e = sourced
	}

	raw := collectRaw(interp, e)
	m, err := metadata.Decode(raw, e)
	if err != nil {
		return perr.WrapInvalidValue(err, "%s", cpv)
	}
	m.Checksum = checksum

	if verify {
		return nil
	}

	inherited := make(map[string]string, len(m.Inherited))
	for _, name := range m.Inherited {
		if sum, ok := eclassChecksums[name]; ok {
			inherited[name] = sum
		}
	}

	return metadata.WriteAtomic(entryPath(cacheDir, cpv), m, inherited)
}

func collectRaw(interp shell.Interpreter, e *eapi.EAPI) map[string]string {
	raw := make(map[string]string)
	raw["EAPI"] = e.Name()
	keys := append(e.MetadataKeys(), "INHERIT", "INHERITED")
	for _, key := range keys {
		v, ok := interp.Variable(key)
		if !ok {
			continue
		}
		if v.IsArray {
			raw[key] = strings.Join(v.Array, " ")
		} else {
			raw[key] = v.Scalar
		}
	}
	return raw
}

func eclassChecksumMap(eclasses map[string]repo.Eclass) map[string]string {
	out := make(map[string]string, len(eclasses))
	for name, e := range eclasses {
		out[name] = e.Checksum
	}
	return out
}

func ebuildPath(r *repo.Repository, cpv atom.Cpv) string {
	name := cpv.Package + "-" + cpv.Version.String() + ".ebuild"
	return filepath.Join(r.Path(), cpv.Category, cpv.Package, name)
}

func entryPath(cacheDir string, cpv atom.Cpv) string {
	return filepath.Join(cacheDir, cpv.Category, cpv.Package+"-"+cpv.Version.String())
}

// CacheEntryPath returns r's md5-cache path for cpv, per spec.md §4.G's
// on-disk cache layout -- for callers that read an already-generated
// entry (e.g. a "pkg show" front end) without driving a regen run.
func CacheEntryPath(r *repo.Repository, cpv atom.Cpv) string {
	return entryPath(filepath.Join(r.Path(), "metadata", "md5-cache"), cpv)
}

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
