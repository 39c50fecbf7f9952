package pkgconfig

import (
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"pkgcraft/internal/logging"
	"pkgcraft/pkg/perr"
	"pkgcraft/pkg/repo"
)

// Syncer fetches an external repo into location. The core never implements
// a real transport (network fetching is out of scope per spec.md §1); a
// front-end wires in a concrete Syncer, or Add falls back to NoopSyncer.
type Syncer interface {
	Sync(location string, uri string) error
}

// NoopSyncer rejects every sync request; the default when no real
// transport is wired in.
type NoopSyncer struct{}

func (NoopSyncer) Sync(location, uri string) error {
	return perr.NewConfigMissing("no syncer configured for %q", uri)
}

// Config is the toolkit's repo registry: every repo declared under
// <config_dir>/repos/, finalized as a batch, addressable by id.
type Config struct {
	configDir     string
	dataDir       string
	repoConfigDir string
	repoDir       string

	repos map[string]*repo.Repository
	order []string // insertion order, rebuilt on every extend
}

// Load discovers config/data directories from the environment and builds
// a Config from them. Returns an empty, repo-less Config if NoConfig() is
// set, per spec.md §6's "<NAME>_NO_CONFIG" escape hatch.
func Load() (*Config, error) {
	if NoConfig() {
		return &Config{repos: make(map[string]*repo.Repository)}, nil
	}
	return New(ConfigDir(), DataDir())
}

// New builds a Config rooted at configDir/dataDir, loading every repo
// declared under <configDir>/repos/, per spec.md §4.I.
func New(configDir, dataDir string) (*Config, error) {
	c := &Config{
		configDir:     configDir,
		dataDir:       dataDir,
		repoConfigDir: filepath.Join(configDir, "repos"),
		repoDir:       filepath.Join(dataDir, "repos"),
		repos:         make(map[string]*repo.Repository),
	}

	log := logging.Get(logging.Config)

	entries, err := os.ReadDir(c.repoConfigDir)
	if err != nil {
		if os.IsNotExist(err) {
			return c, nil
		}
		return nil, perr.WrapConfig(err, "reading repo config dir %s", c.repoConfigDir)
	}

	type loaded struct {
		id  string
		cfg repoConfig
	}
	var configs []loaded
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		path := filepath.Join(c.repoConfigDir, e.Name())
		rc, err := parseRepoConfigFile(path)
		if err != nil {
			log.Error("skipping malformed repo config", zap.String("path", path), zap.Error(err))
			continue
		}
		configs = append(configs, loaded{id: e.Name(), cfg: rc})
	}

	sort.Slice(configs, func(i, j int) bool {
		if configs[i].cfg.Priority != configs[j].cfg.Priority {
			return configs[i].cfg.Priority < configs[j].cfg.Priority
		}
		return configs[i].cfg.Location < configs[j].cfg.Location
	})

	built := make(map[string]*repo.Repository, len(configs))
	order := make([]string, 0, len(configs))
	for _, lc := range configs {
		if lc.cfg.Format != FormatEbuild {
			log.Error("skipping repo with unimplemented format",
				zap.String("id", lc.id), zap.String("format", string(lc.cfg.Format)))
			continue
		}
		r, err := repo.New(lc.id, lc.cfg.Priority, lc.cfg.Location)
		if err != nil {
			log.Error("skipping invalid repo", zap.String("id", lc.id), zap.Error(err))
			continue
		}
		built[lc.id] = r
		order = append(order, lc.id)
	}

	if err := c.extend(built, order); err != nil {
		return nil, err
	}
	return c, nil
}

// extend finalizes newRepos as a batch against c's existing repos,
// reverting entirely on the first finalization error -- spec.md §4.I's
// "any finalization error reverts to the pre-batch repo map." c.repos is
// only mutated once every new repo finalizes cleanly, so no explicit
// revert step is needed.
func (c *Config) extend(newRepos map[string]*repo.Repository, order []string) error {
	var overriding []string
	for id, r := range newRepos {
		if existing, ok := c.repos[id]; ok {
			if !sameRepo(existing, r) {
				overriding = append(overriding, id)
			}
		}
	}
	if len(overriding) > 0 {
		sort.Strings(overriding)
		return perr.NewConfig("can't override existing repos: %s", strings.Join(overriding, ", "))
	}

	merged := make(map[string]*repo.Repository, len(c.repos)+len(newRepos))
	for k, v := range c.repos {
		merged[k] = v
	}
	for id, r := range newRepos {
		if _, ok := c.repos[id]; !ok {
			merged[id] = r
		}
	}

	for _, id := range order {
		r, ok := newRepos[id]
		if !ok {
			continue
		}
		if _, already := c.repos[id]; already {
			continue
		}
		if err := r.Finalize(merged); err != nil {
			return perr.WrapConfig(err, "%s", id)
		}
	}

	c.repos = merged
	c.order = append(append([]string(nil), c.order...), order...)
	return nil
}

func sameRepo(a, b *repo.Repository) bool {
	return a.Path() == b.Path() && a.Priority() == b.Priority()
}

// Get returns the repo registered under id, if any.
func (c *Config) Get(id string) (*repo.Repository, bool) {
	r, ok := c.repos[id]
	return r, ok
}

// Set builds a RepoSet from every registered repo.
func (c *Config) Set() *repo.RepoSet {
	repos := make([]*repo.Repository, 0, len(c.repos))
	for _, r := range c.repos {
		repos = append(repos, r)
	}
	return repo.NewRepoSet(repos...)
}

// Iter returns every registered repo in load order.
func (c *Config) Iter() []*repo.Repository {
	out := make([]*repo.Repository, 0, len(c.order))
	for _, id := range c.order {
		if r, ok := c.repos[id]; ok {
			out = append(out, r)
		}
	}
	return out
}

// IsEmpty reports whether no repos are registered.
func (c *Config) IsEmpty() bool { return len(c.repos) == 0 }

// ConfigDir returns the directory this Config was loaded from.
func (c *Config) ConfigDir() string { return c.configDir }

// DataDir returns the data directory new repos are created under.
func (c *Config) DataDir() string { return c.dataDir }

// Register adds an already-constructed, already-finalized repo into the
// in-memory config without persisting a config record -- for callers
// (pkg/target) that need to track an ad hoc external repo for the
// duration of a run, as opposed to the durable Add* mutations below.
func (c *Config) Register(r *repo.Repository) error {
	return c.extend(map[string]*repo.Repository{r.ID(): r}, []string{r.ID()})
}

// AddPath registers an existing local repo at path under id.
func (c *Config) AddPath(id string, priority int, path string) (*repo.Repository, error) {
	r, err := repo.New(id, priority, path)
	if err != nil {
		return nil, err
	}
	if err := c.extend(map[string]*repo.Repository{id: r}, []string{id}); err != nil {
		return nil, err
	}
	if err := c.persistRepoConfig(id, repoConfig{Location: path, Format: FormatEbuild, Priority: priority}); err != nil {
		return nil, err
	}
	return r, nil
}

// AddURI syncs uri into <data_dir>/repos/<id> via syncer, then registers
// the result under id.
func (c *Config) AddURI(id string, priority int, uri string, syncer Syncer) (*repo.Repository, error) {
	if syncer == nil {
		syncer = NoopSyncer{}
	}
	location := filepath.Join(c.repoDir, id)
	if err := syncer.Sync(location, uri); err != nil {
		return nil, perr.WrapConfig(err, "syncing %s", uri)
	}

	r, err := repo.New(id, priority, location)
	if err != nil {
		return nil, err
	}
	if err := c.extend(map[string]*repo.Repository{id: r}, []string{id}); err != nil {
		return nil, err
	}
	if err := c.persistRepoConfig(id, repoConfig{Location: location, Format: FormatEbuild, Priority: priority, Sync: mustParseURI(uri)}); err != nil {
		return nil, err
	}
	return r, nil
}

// AddEmpty scaffolds a new, empty ebuild repo under <data_dir>/repos/<id>
// and registers it under id.
func (c *Config) AddEmpty(id string, priority int) (*repo.Repository, error) {
	location := filepath.Join(c.repoDir, id)
	if err := scaffoldEmptyRepo(location, id); err != nil {
		return nil, err
	}

	r, err := repo.New(id, priority, location)
	if err != nil {
		return nil, err
	}
	if err := c.extend(map[string]*repo.Repository{id: r}, []string{id}); err != nil {
		return nil, err
	}
	if err := c.persistRepoConfig(id, repoConfig{Location: location, Format: FormatEbuild, Priority: priority}); err != nil {
		return nil, err
	}
	return r, nil
}

func scaffoldEmptyRepo(location, id string) error {
	if err := os.MkdirAll(filepath.Join(location, "profiles"), 0o755); err != nil {
		return perr.WrapIO(err, "creating %s/profiles", location)
	}
	if err := os.MkdirAll(filepath.Join(location, "metadata"), 0o755); err != nil {
		return perr.WrapIO(err, "creating %s/metadata", location)
	}
	if err := os.WriteFile(filepath.Join(location, "profiles", "repo_name"), []byte(id+"\n"), 0o644); err != nil {
		return perr.WrapIO(err, "writing %s/profiles/repo_name", location)
	}
	if err := os.WriteFile(filepath.Join(location, "profiles", "eapi"), []byte("8\n"), 0o644); err != nil {
		return perr.WrapIO(err, "writing %s/profiles/eapi", location)
	}
	if err := os.WriteFile(filepath.Join(location, "metadata", "layout.conf"), nil, 0o644); err != nil {
		return perr.WrapIO(err, "writing %s/metadata/layout.conf", location)
	}
	return nil
}

func (c *Config) persistRepoConfig(id string, rc repoConfig) error {
	if err := os.MkdirAll(c.repoConfigDir, 0o755); err != nil {
		return perr.WrapIO(err, "creating %s", c.repoConfigDir)
	}
	return writeRepoConfigFile(filepath.Join(c.repoConfigDir, id), rc)
}

func mustParseURI(s string) *url.URL {
	u, err := url.Parse(s)
	if err != nil {
		return nil
	}
	return u
}

// Remove drops the repos named by ids from the config. Missing repo
// configs are not an error -- physical repo files are allowed to already
// be gone. When clean is set, the repo's files and config record are also
// deleted from disk.
func (c *Config) Remove(ids []string, clean bool) error {
	for _, id := range ids {
		r, ok := c.repos[id]
		if !ok {
			continue
		}
		if clean {
			if err := os.RemoveAll(r.Path()); err != nil {
				return perr.WrapConfig(err, "removing repo files %s", r.Path())
			}
			path := filepath.Join(c.repoConfigDir, id)
			if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
				return perr.WrapConfig(err, "removing repo config %s", path)
			}
		}
		delete(c.repos, id)
		for i, o := range c.order {
			if o == id {
				c.order = append(c.order[:i], c.order[i+1:]...)
				break
			}
		}
	}
	return nil
}

// Sync calls syncer against every repo named by ids (or every registered
// repo if ids is empty), aggregating per-repo failures into one Config
// error, per spec.md §4.I.
func (c *Config) Sync(ids []string, syncer Syncer) error {
	if syncer == nil {
		syncer = NoopSyncer{}
	}

	targets := ids
	if len(targets) == 0 {
		targets = append([]string(nil), c.order...)
	}

	var failed []string
	for _, id := range targets {
		r, ok := c.repos[id]
		if !ok {
			continue
		}
		if err := syncer.Sync(r.Path(), id); err != nil {
			failed = append(failed, id+": "+err.Error())
		}
	}

	if len(failed) > 0 {
		return perr.NewConfig("failed syncing:\n\t%s", strings.Join(failed, "\n\t"))
	}
	return nil
}
