package metadata

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pkgcraft/pkg/atom"
	"pkgcraft/pkg/eapi"
)

func writeRaw(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "entry")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestParseRawEntrySplitsKeyValue(t *testing.T) {
	path := writeRaw(t, "DESCRIPTION=a test package\nSLOT=0\n")
	raw, err := parseRawEntry(path)
	require.NoError(t, err)
	assert.Equal(t, "a test package", raw["DESCRIPTION"])
	assert.Equal(t, "0", raw["SLOT"])
}

func TestParseRawEntryMalformedLine(t *testing.T) {
	path := writeRaw(t, "not-a-kv-pair\n")
	_, err := parseRawEntry(path)
	require.Error(t, err)
}

func TestValidChecksMd5AndEclasses(t *testing.T) {
	raw := rawEntry{
		"_MD5_":      "abc123",
		"_ECLASSES_": "base\tdeadbeef\tfoo\tcafef00d",
	}
	eclasses := map[string]string{"base": "deadbeef", "foo": "cafef00d"}
	assert.True(t, Valid(raw, "abc123", eclasses))
}

func TestValidFailsOnMd5Mismatch(t *testing.T) {
	raw := rawEntry{"_MD5_": "abc123"}
	assert.False(t, Valid(raw, "different", nil))
}

func TestValidFailsOnMissingMd5(t *testing.T) {
	raw := rawEntry{}
	assert.False(t, Valid(raw, "abc123", nil))
}

func TestValidFailsOnStaleEclassChecksum(t *testing.T) {
	raw := rawEntry{
		"_MD5_":      "abc123",
		"_ECLASSES_": "base\tstale",
	}
	eclasses := map[string]string{"base": "fresh"}
	assert.False(t, Valid(raw, "abc123", eclasses))
}

func TestValidFailsOnUnknownEclass(t *testing.T) {
	raw := rawEntry{
		"_MD5_":      "abc123",
		"_ECLASSES_": "gone\tdeadbeef",
	}
	assert.False(t, Valid(raw, "abc123", map[string]string{}))
}

func TestDecodeFullEntry(t *testing.T) {
	e := eapi.MustGet("8")
	raw := rawEntry{
		"EAPI":           "8",
		"DESCRIPTION":    "a great editor",
		"SLOT":           "0/2",
		"HOMEPAGE":       "https://example.org",
		"IUSE":           "+python -nls unstable",
		"KEYWORDS":       "amd64 ~x86",
		"LICENSE":        "GPL-2",
		"DEPEND":         ">=dev-libs/foo-1.0",
		"RDEPEND":        ">=dev-libs/foo-1.0",
		"SRC_URI":        "https://example.org/foo.tar.gz -> foo-1.0.tar.gz",
		"DEFINED_PHASES": "configure compile install",
		"INHERIT":        "base",
		"_MD5_":          "abc123",
	}
	m, err := Decode(raw, e)
	require.NoError(t, err)

	assert.Equal(t, "a great editor", m.Description)
	assert.Equal(t, "0", m.Slot.Slot)
	assert.Equal(t, "2", m.Slot.Subslot)
	assert.Equal(t, "abc123", m.Checksum)

	if diff := cmp.Diff([]string{"https://example.org"}, m.Homepage); diff != "" {
		t.Errorf("Homepage mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"amd64", "~x86"}, m.Keywords); diff != "" {
		t.Errorf("Keywords mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"configure", "compile", "install"}, m.DefinedPhases); diff != "" {
		t.Errorf("DefinedPhases mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"base"}, m.Inherit); diff != "" {
		t.Errorf("Inherit mismatch (-want +got):\n%s", diff)
	}

	require.Len(t, m.IUSE, 3)
	wantIUSE := []IUSEFlag{
		{Name: "python", Default: true, HasSign: true},
		{Name: "nls", Default: false, HasSign: true},
		{Name: "unstable"},
	}
	if diff := cmp.Diff(wantIUSE, m.IUSE); diff != "" {
		t.Errorf("IUSE mismatch (-want +got):\n%s", diff)
	}

	require.Equal(t, 1, m.Depend.Len())
	require.Equal(t, 1, m.RDepend.Len())
	require.Equal(t, 1, m.License.Len())
	require.Equal(t, 1, m.SrcURI.Len())
}

func TestDecodeDashedDefinedPhasesIsEmpty(t *testing.T) {
	e := eapi.MustGet("8")
	raw := rawEntry{"EAPI": "8", "DEFINED_PHASES": "-"}
	m, err := Decode(raw, e)
	require.NoError(t, err)
	assert.Empty(t, m.DefinedPhases)
}

func TestDecodeEAPIMismatchIsHardError(t *testing.T) {
	e := eapi.MustGet("8")
	raw := rawEntry{"EAPI": "7"}
	_, err := Decode(raw, e)
	require.Error(t, err)
}

func TestDecodeEmptyOptionalFieldsYieldEmptySets(t *testing.T) {
	e := eapi.MustGet("8")
	m, err := Decode(rawEntry{}, e)
	require.NoError(t, err)
	assert.Equal(t, 0, m.Depend.Len())
	assert.Equal(t, 0, m.License.Len())
	assert.Equal(t, 0, m.SrcURI.Len())
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	e := eapi.MustGet("8")
	raw := rawEntry{
		"EAPI":           "8",
		"DESCRIPTION":    "round trip package",
		"SLOT":           "0",
		"DEPEND":         "dev-libs/foo",
		"LICENSE":        "MIT",
		"SRC_URI":        "https://example.org/foo.tar.gz",
		"DEFINED_PHASES": "-",
		"_MD5_":          "deadbeef",
	}
	m, err := Decode(raw, e)
	require.NoError(t, err)

	eclasses := map[string]string{"base": "cafef00d"}
	encoded := Encode(m, eclasses)

	dir := t.TempDir()
	path := filepath.Join(dir, "entry")
	require.NoError(t, os.WriteFile(path, []byte(encoded), 0o644))

	reRaw, err := parseRawEntry(path)
	require.NoError(t, err)
	assert.True(t, Valid(reRaw, "deadbeef", eclasses))

	m2, err := Decode(reRaw, e)
	require.NoError(t, err)
	assert.Equal(t, m.Description, m2.Description)
	assert.Equal(t, m.Depend.String(), m2.Depend.String())
	assert.Equal(t, m.SrcURI.String(), m2.SrcURI.String())
}

func TestWriteAtomicCreatesParentDirs(t *testing.T) {
	e := eapi.MustGet("8")
	m, err := Decode(rawEntry{"EAPI": "8", "DESCRIPTION": "x", "_MD5_": "abc"}, e)
	require.NoError(t, err)

	dir := t.TempDir()
	path := filepath.Join(dir, "app-editors", "vim-9.0")
	require.NoError(t, WriteAtomic(path, m, nil))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "DESCRIPTION=x")

	entries, err := os.ReadDir(filepath.Join(dir, "app-editors"))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no leftover temp files after rename")
}

func TestPruneRemovesStaleEntriesAndEmptyDirs(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "app-editors"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "app-misc"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app-editors", "vim-9.0"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app-editors", "nano-7.0"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app-misc", "gone-1.0"), []byte("x"), 0o644))

	vim, err := atom.ParseCpv("app-editors/vim-9.0")
	require.NoError(t, err)

	require.NoError(t, Prune(dir, []atom.Cpv{vim}))

	_, err = os.Stat(filepath.Join(dir, "app-editors", "vim-9.0"))
	assert.NoError(t, err, "kept entry should survive")
	_, err = os.Stat(filepath.Join(dir, "app-editors", "nano-7.0"))
	assert.True(t, os.IsNotExist(err), "stale sibling entry should be removed")
	_, err = os.Stat(filepath.Join(dir, "app-misc"))
	assert.True(t, os.IsNotExist(err), "emptied category dir should be removed")
}

func TestPruneMissingCacheDirIsNotError(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "does-not-exist")
	require.NoError(t, Prune(dir, nil))
}
