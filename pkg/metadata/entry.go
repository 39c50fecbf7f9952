package metadata

import (
	"bufio"
	"errors"
	"io/fs"
	"os"
	"sort"
	"strings"

	"pkgcraft/pkg/atom"
	"pkgcraft/pkg/dep"
	"pkgcraft/pkg/eapi"
	"pkgcraft/pkg/perr"
	"pkgcraft/pkg/uri"
)

// rawEntry is a parsed-but-untyped cache entry: every "KEY=value" line keyed
// by uppercased key, per spec.md §4.G.
type rawEntry map[string]string

// parseRawEntry reads a cache entry file's "KEY=value" lines, one per line,
// keys folded to uppercase. Unknown keys are kept (Decode ignores them).
func parseRawEntry(path string) (rawEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, perr.WrapIO(err, "opening cache entry %s", path)
	}
	defer f.Close()

	raw := make(rawEntry)
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := sc.Text()
		if line == "" {
			continue
		}
		key, val, found := strings.Cut(line, "=")
		if !found {
			return nil, perr.NewInvalidValue("cache entry %s: malformed line %q", path, line)
		}
		raw[strings.ToUpper(strings.TrimSpace(key))] = val
	}
	if err := sc.Err(); err != nil {
		return nil, perr.WrapIO(err, "reading cache entry %s", path)
	}
	return raw, nil
}

// eclassPair is one (name, checksum) entry of a parsed "_eclasses_" field.
type eclassPair struct {
	Name     string
	Checksum string
}

func parseEclassesField(v string) ([]eclassPair, error) {
	if v == "" {
		return nil, nil
	}
	fields := strings.Split(v, "\t")
	if len(fields)%2 != 0 {
		return nil, perr.NewInvalidValue("_eclasses_: odd number of fields in %q", v)
	}
	pairs := make([]eclassPair, 0, len(fields)/2)
	for i := 0; i < len(fields); i += 2 {
		pairs = append(pairs, eclassPair{Name: fields[i], Checksum: fields[i+1]})
	}
	return pairs, nil
}

// Valid reports whether raw's "_md5_" matches ebuildChecksum and every
// "_eclasses_" (name, checksum) pair matches eclassChecksums, without
// decoding any other field -- the cheap check from spec.md §4.G. A missing
// "_md5_" or a name absent from eclassChecksums makes the entry invalid.
func Valid(raw rawEntry, ebuildChecksum string, eclassChecksums map[string]string) bool {
	if raw["_MD5_"] != ebuildChecksum || raw["_MD5_"] == "" {
		return false
	}
	pairs, err := parseEclassesField(raw["_ECLASSES_"])
	if err != nil {
		return false
	}
	for _, p := range pairs {
		sum, ok := eclassChecksums[p.Name]
		if !ok || sum != p.Checksum {
			return false
		}
	}
	return true
}

// IsCacheValid reports whether the cache entry at path still matches
// ebuildChecksum and eclassChecksums. A missing file is invalid, not an
// error -- regeneration is the caller's job, not this function's.
func IsCacheValid(path, ebuildChecksum string, eclassChecksums map[string]string) (bool, error) {
	raw, err := parseRawEntry(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	return Valid(raw, ebuildChecksum, eclassChecksums), nil
}

func comparePlainString(a, b dep.PlainString) int { return strings.Compare(string(a), string(b)) }

// ReadCacheEntry loads and decodes the cache entry at path against
// sourcedEAPI, for read-only consumers (e.g. a "pkg show" front end) that
// consume an already-generated cache without resourcing the ebuild.
func ReadCacheEntry(path string, sourcedEAPI *eapi.EAPI) (*Metadata, error) {
	raw, err := parseRawEntry(path)
	if err != nil {
		return nil, err
	}
	return Decode(raw, sourcedEAPI)
}

// Decode converts raw's recognized fields into a typed Metadata record
// against sourcedEAPI, the EAPI the ebuild actually sourced under. A
// declared "EAPI=" that disagrees with sourcedEAPI is a hard InvalidValue,
// per spec.md §4.G.
func Decode(raw rawEntry, sourcedEAPI *eapi.EAPI) (*Metadata, error) {
	if declared := raw["EAPI"]; declared != "" && declared != sourcedEAPI.Name() {
		return nil, perr.NewInvalidValue(
			"EAPI=%q in cache entry does not match sourced EAPI %q", declared, sourcedEAPI.Name())
	}

	m := &Metadata{
		EAPI:        sourcedEAPI,
		Description: raw["DESCRIPTION"],
		Homepage:    strings.Fields(raw["HOMEPAGE"]),
		Keywords:    strings.Fields(raw["KEYWORDS"]),
		Inherit:     strings.Fields(raw["INHERIT"]),
		Inherited:   strings.Fields(raw["INHERITED"]),
		Checksum:    raw["_MD5_"],
	}

	if phases := raw["DEFINED_PHASES"]; phases != "" && phases != "-" {
		m.DefinedPhases = strings.Fields(phases)
	}

	if slotStr := raw["SLOT"]; slotStr != "" {
		sd, err := atom.ParseSlot(slotStr, sourcedEAPI)
		if err != nil {
			return nil, perr.WrapInvalidValue(err, "SLOT=%q", slotStr)
		}
		m.Slot = *sd
	}

	if iuseStr := raw["IUSE"]; iuseStr != "" {
		for _, tok := range strings.Fields(iuseStr) {
			m.IUSE = append(m.IUSE, parseIUSEFlag(tok))
		}
	}

	var err error
	if m.BDepend, err = parseDepSet(raw["BDEPEND"], sourcedEAPI); err != nil {
		return nil, perr.WrapInvalidValue(err, "BDEPEND")
	}
	if m.Depend, err = parseDepSet(raw["DEPEND"], sourcedEAPI); err != nil {
		return nil, perr.WrapInvalidValue(err, "DEPEND")
	}
	if m.IDepend, err = parseDepSet(raw["IDEPEND"], sourcedEAPI); err != nil {
		return nil, perr.WrapInvalidValue(err, "IDEPEND")
	}
	if m.PDepend, err = parseDepSet(raw["PDEPEND"], sourcedEAPI); err != nil {
		return nil, perr.WrapInvalidValue(err, "PDEPEND")
	}
	if m.RDepend, err = parseDepSet(raw["RDEPEND"], sourcedEAPI); err != nil {
		return nil, perr.WrapInvalidValue(err, "RDEPEND")
	}

	if m.License, err = parsePlainSet(raw["LICENSE"]); err != nil {
		return nil, perr.WrapInvalidValue(err, "LICENSE")
	}
	if m.Properties, err = parsePlainSet(raw["PROPERTIES"]); err != nil {
		return nil, perr.WrapInvalidValue(err, "PROPERTIES")
	}
	if m.Restrict, err = parsePlainSet(raw["RESTRICT"]); err != nil {
		return nil, perr.WrapInvalidValue(err, "RESTRICT")
	}
	if m.RequiredUse, err = parsePlainSet(raw["REQUIRED_USE"]); err != nil {
		return nil, perr.WrapInvalidValue(err, "REQUIRED_USE")
	}

	if m.SrcURI, err = parseURISet(raw["SRC_URI"]); err != nil {
		return nil, perr.WrapInvalidValue(err, "SRC_URI")
	}

	return m, nil
}

func parseDepSet(s string, e *eapi.EAPI) (*dep.Set[*atom.Dep], error) {
	if s == "" {
		return dep.NewSet(atom.CompareDep), nil
	}
	return dep.Parse(s, atom.CompareDep, dep.DepLeafParser(e))
}

func parsePlainSet(s string) (*dep.Set[dep.PlainString], error) {
	if s == "" {
		return dep.NewSet(comparePlainString), nil
	}
	return dep.Parse(s, comparePlainString, dep.PlainStringLeafParser())
}

func parseURISet(s string) (*dep.Set[uri.Uri], error) {
	if s == "" {
		return dep.NewSet(uri.Compare), nil
	}
	return dep.Parse(s, uri.Compare, dep.UriLeafParser())
}

func parseIUSEFlag(tok string) IUSEFlag {
	switch {
	case strings.HasPrefix(tok, "+"):
		return IUSEFlag{Name: tok[1:], Default: true, HasSign: true}
	case strings.HasPrefix(tok, "-"):
		return IUSEFlag{Name: tok[1:], Default: false, HasSign: true}
	default:
		return IUSEFlag{Name: tok}
	}
}

// encodeEclassesField renders eclass checksums back into the "_eclasses_"
// line format, names sorted for deterministic output.
func encodeEclassesField(eclasses map[string]string) string {
	names := make([]string, 0, len(eclasses))
	for n := range eclasses {
		names = append(names, n)
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names)*2)
	for _, n := range names {
		parts = append(parts, n, eclasses[n])
	}
	return strings.Join(parts, "\t")
}
