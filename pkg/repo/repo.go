// Package repo implements the filesystem-backed ebuild repository: masters
// DAG, eclass map, category/package/version discovery, and ebuild-path to
// Cpv conversion, per spec.md §4.F.
package repo

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"

	"pkgcraft/internal/logging"
	"pkgcraft/pkg/eapi"
	"pkgcraft/pkg/perr"
)

// Repository is a single ebuild repository rooted at a filesystem path.
// Values are safe for concurrent read; lazy caches use initialize-once
// semantics per spec.md §5.
type Repository struct {
	id       string
	path     string
	priority int

	name string // profiles/repo_name, falls back to id
	eapi *eapi.EAPI

	masterNames    []string // raw names from metadata/layout.conf
	thinManifests  bool
	manifestHashes []string

	mu        sync.RWMutex
	masters   []*Repository
	trees     []*Repository
	finalized bool

	categoriesOnce  sync.Once
	categoriesCache []string

	eclassOnce  sync.Once
	eclassCache map[string]Eclass

	manifestMu    sync.Mutex
	manifestCache map[string]*Manifest

	xmlMu    sync.Mutex
	xmlCache map[string]*PkgMetadataXML
}

// Eclass is an inherited eclass file: its resolved path and a content
// checksum used by the metadata cache's staleness check (§4.G).
type Eclass struct {
	Name     string
	Path     string
	Checksum string
}

// New constructs a Repository from a filesystem path with a declared id and
// priority. Reads profiles/repo_name, profiles/eapi, and
// metadata/layout.conf. Masters named in layout.conf are not yet resolved;
// call Finalize once every sibling repo is constructed.
func New(id string, priority int, path string) (*Repository, error) {
	log := logging.Get(logging.Repo)

	name, err := readFirstLine(filepath.Join(path, "profiles", "repo_name"))
	if err != nil {
		return nil, perr.WrapInvalidRepo(err, id, "malformed profiles/repo_name")
	}
	if name == "" {
		name = id
	}

	eapiName, err := readFirstLine(filepath.Join(path, "profiles", "eapi"))
	if err != nil {
		return nil, perr.WrapInvalidRepo(err, id, "malformed profiles/eapi")
	}
	if eapiName == "" {
		eapiName = "0"
	}
	e, err := eapi.Get(eapiName)
	if err != nil {
		log.Warn("unknown profiles/eapi, falling back to EAPI 0",
			zap.String("id", id), zap.String("eapi", eapiName))
		e = eapi.MustGet("0")
	}

	layout, err := parseLayoutConf(filepath.Join(path, "metadata", "layout.conf"))
	if err != nil {
		return nil, perr.WrapInvalidRepo(err, id, "malformed metadata/layout.conf")
	}

	return &Repository{
		id:             id,
		path:           path,
		priority:       priority,
		name:           name,
		eapi:           e,
		masterNames:    layout.masters,
		thinManifests:  layout.thinManifests,
		manifestHashes: layout.manifestHashes,
	}, nil
}

func (r *Repository) ID() string       { return r.id }
func (r *Repository) Name() string     { return r.name }
func (r *Repository) Path() string     { return r.path }
func (r *Repository) Priority() int    { return r.priority }
func (r *Repository) EAPI() *eapi.EAPI { return r.eapi }

// ThinManifests reports metadata/layout.conf's "thin-manifests" setting:
// whether Manifest entries omit EBUILD/AUX/MISC lines (distfiles only).
func (r *Repository) ThinManifests() bool { return r.thinManifests }

// ManifestHashes returns the hash algorithm names metadata/layout.conf's
// "manifest-hashes" declares for this repo's Manifest files.
func (r *Repository) ManifestHashes() []string {
	return append([]string(nil), r.manifestHashes...)
}

func (r *Repository) String() string {
	if r.id == r.path {
		return r.id
	}
	return r.id + ": " + r.path
}

type layoutConf struct {
	masters        []string
	thinManifests  bool
	manifestHashes []string
}

// parseLayoutConf reads a "key = value" file; a missing file is not an
// error (repos without masters are legal), a malformed one is.
func parseLayoutConf(path string) (layoutConf, error) {
	var lc layoutConf

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return lc, nil
		}
		return lc, perr.WrapIO(err, "opening %s", path)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, val, found := strings.Cut(line, "=")
		if !found {
			return lc, perr.NewInvalidValue("layout.conf: malformed line %q", line)
		}
		key = strings.TrimSpace(key)
		val = strings.TrimSpace(val)
		switch key {
		case "masters":
			lc.masters = strings.Fields(val)
		case "thin-manifests":
			lc.thinManifests = val == "true"
		case "manifest-hashes":
			lc.manifestHashes = strings.Fields(val)
		}
	}
	if err := sc.Err(); err != nil {
		return lc, perr.WrapIO(err, "reading %s", path)
	}
	return lc, nil
}

func readFirstLine(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", err
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	if sc.Scan() {
		return strings.TrimSpace(sc.Text()), sc.Err()
	}
	return "", sc.Err()
}
