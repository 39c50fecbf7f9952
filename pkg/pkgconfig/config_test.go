package pkgconfig

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeRepoFixture(t *testing.T, root, id string) string {
	t.Helper()
	dir := filepath.Join(root, id)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "profiles"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "profiles", "repo_name"), []byte(id+"\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "profiles", "eapi"), []byte("8\n"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "metadata"), 0o755))
	return dir
}

func writeRepoConfig(t *testing.T, configDir, id, location string, priority int) {
	t.Helper()
	reposDir := filepath.Join(configDir, "repos")
	require.NoError(t, os.MkdirAll(reposDir, 0o755))
	content := "location = " + location + "\npriority = " + strconv.Itoa(priority) + "\n"
	require.NoError(t, os.WriteFile(filepath.Join(reposDir, id), []byte(content), 0o644))
}

func TestNewLoadsAndFinalizesRepos(t *testing.T) {
	root := t.TempDir()
	dataDir := filepath.Join(root, "data")
	configDir := filepath.Join(root, "config")

	loc := writeRepoFixture(t, filepath.Join(dataDir, "repos"), "gentoo")
	writeRepoConfig(t, configDir, "gentoo", loc, 0)

	cfg, err := New(configDir, dataDir)
	require.NoError(t, err)

	r, ok := cfg.Get("gentoo")
	require.True(t, ok)
	assert.Equal(t, loc, r.Path())
	assert.Len(t, cfg.Iter(), 1)
}

func TestNewSkipsMalformedConfigAndContinues(t *testing.T) {
	root := t.TempDir()
	dataDir := filepath.Join(root, "data")
	configDir := filepath.Join(root, "config")

	loc := writeRepoFixture(t, filepath.Join(dataDir, "repos"), "good")
	writeRepoConfig(t, configDir, "good", loc, 0)

	reposDir := filepath.Join(configDir, "repos")
	require.NoError(t, os.WriteFile(filepath.Join(reposDir, "bad"), []byte("not a valid line\n"), 0o644))

	cfg, err := New(configDir, dataDir)
	require.NoError(t, err)
	assert.Len(t, cfg.Iter(), 1)
	_, ok := cfg.Get("bad")
	assert.False(t, ok)
}

func TestNewMissingConfigDirIsNotError(t *testing.T) {
	root := t.TempDir()
	cfg, err := New(filepath.Join(root, "config"), filepath.Join(root, "data"))
	require.NoError(t, err)
	assert.True(t, cfg.IsEmpty())
}

func TestAddEmptyScaffoldsAndRegisters(t *testing.T) {
	root := t.TempDir()
	cfg, err := New(filepath.Join(root, "config"), filepath.Join(root, "data"))
	require.NoError(t, err)

	r, err := cfg.AddEmpty("local", 5)
	require.NoError(t, err)
	assert.Equal(t, "local", r.ID())
	assert.Equal(t, 5, r.Priority())

	_, ok := cfg.Get("local")
	assert.True(t, ok)

	data, err := os.ReadFile(filepath.Join(root, "config", "repos", "local"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "format = ebuild")
}

func TestAddPathRejectsConflictingOverride(t *testing.T) {
	root := t.TempDir()
	dataDir := filepath.Join(root, "data")
	configDir := filepath.Join(root, "config")

	loc := writeRepoFixture(t, filepath.Join(dataDir, "repos"), "gentoo")
	writeRepoConfig(t, configDir, "gentoo", loc, 0)

	cfg, err := New(configDir, dataDir)
	require.NoError(t, err)

	otherLoc := writeRepoFixture(t, filepath.Join(dataDir, "repos"), "gentoo-other")
	_, err = cfg.AddPath("gentoo", 1, otherLoc)
	require.Error(t, err)
}

func TestRemoveDropsRepoFromConfig(t *testing.T) {
	root := t.TempDir()
	cfg, err := New(filepath.Join(root, "config"), filepath.Join(root, "data"))
	require.NoError(t, err)

	_, err = cfg.AddEmpty("local", 0)
	require.NoError(t, err)

	require.NoError(t, cfg.Remove([]string{"local"}, false))
	_, ok := cfg.Get("local")
	assert.False(t, ok)

	// clean removal deletes the underlying repo directory too
	_, err = cfg.AddEmpty("local2", 0)
	require.NoError(t, err)
	r, _ := cfg.Get("local2")
	path := r.Path()
	require.NoError(t, cfg.Remove([]string{"local2"}, true))
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestSyncAggregatesPerRepoFailures(t *testing.T) {
	root := t.TempDir()
	cfg, err := New(filepath.Join(root, "config"), filepath.Join(root, "data"))
	require.NoError(t, err)

	_, err = cfg.AddEmpty("a", 0)
	require.NoError(t, err)
	_, err = cfg.AddEmpty("b", 0)
	require.NoError(t, err)

	err = cfg.Sync(nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "a:")
	assert.Contains(t, err.Error(), "b:")
}

func TestNoConfigSkipsLoading(t *testing.T) {
	t.Setenv("PKGCRAFT_NO_CONFIG", "1")
	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.IsEmpty())
}
