package repo

import (
	"bufio"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"pkgcraft/pkg/perr"
)

// ManifestKind is the first token of a Manifest line, naming what kind of
// file the entry describes.
type ManifestKind string

const (
	ManifestDist   ManifestKind = "DIST"
	ManifestEbuild ManifestKind = "EBUILD"
	ManifestAux    ManifestKind = "AUX"
	ManifestMisc   ManifestKind = "MISC"
)

// ManifestEntry is one line of a package's Manifest file: "KIND name size
// HASHNAME hash [HASHNAME hash ...]", per SPEC_FULL.md supplement 5.
type ManifestEntry struct {
	Kind   ManifestKind
	Name   string
	Size   int64
	Hashes map[string]string
}

// Manifest is a package's full set of Manifest entries, keyed by (kind,
// name) via Lookup.
type Manifest struct {
	Entries []ManifestEntry
}

// Lookup returns the entry for (kind, name), if present.
func (m *Manifest) Lookup(kind ManifestKind, name string) (ManifestEntry, bool) {
	for _, e := range m.Entries {
		if e.Kind == kind && e.Name == name {
			return e, true
		}
	}
	return ManifestEntry{}, false
}

// Manifest lazily parses and caches cat/pkg/Manifest, initialize-once per
// package.
func (r *Repository) Manifest(category, pkg string) (*Manifest, error) {
	key := category + "/" + pkg

	r.manifestMu.Lock()
	defer r.manifestMu.Unlock()
	if r.manifestCache == nil {
		r.manifestCache = make(map[string]*Manifest)
	}
	if m, ok := r.manifestCache[key]; ok {
		return m, nil
	}

	m, err := parseManifest(filepath.Join(r.path, category, pkg, "Manifest"))
	if err != nil {
		return nil, err
	}
	r.manifestCache[key] = m
	return m, nil
}

func parseManifest(path string) (*Manifest, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Manifest{}, nil
		}
		return nil, perr.WrapIO(err, "opening %s", path)
	}
	defer f.Close()

	var entries []ManifestEntry
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 3 || len(fields)%2 != 1 {
			return nil, perr.NewInvalidValue("manifest %q: malformed line %q", path, line)
		}
		size, err := strconv.ParseInt(fields[2], 10, 64)
		if err != nil {
			return nil, perr.WrapInvalidValue(err, "manifest %q: bad size in %q", path, line)
		}
		hashes := make(map[string]string, (len(fields)-3)/2)
		for i := 3; i+1 < len(fields); i += 2 {
			hashes[fields[i]] = fields[i+1]
		}
		entries = append(entries, ManifestEntry{
			Kind:   ManifestKind(fields[0]),
			Name:   fields[1],
			Size:   size,
			Hashes: hashes,
		})
	}
	if err := sc.Err(); err != nil {
		return nil, perr.WrapIO(err, "reading %s", path)
	}
	return &Manifest{Entries: entries}, nil
}
