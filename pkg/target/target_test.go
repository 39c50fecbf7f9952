package target

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pkgcraft/pkg/atom"
	"pkgcraft/pkg/pkgconfig"
)

func writeFixtureRepo(t *testing.T, root, id string) string {
	t.Helper()
	dir := filepath.Join(root, id)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "profiles"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "profiles", "repo_name"), []byte(id+"\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "profiles", "eapi"), []byte("8\n"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "metadata"), 0o755))
	return dir
}

func writeFixtureEbuild(t *testing.T, root, cat, pkg, ver string) {
	t.Helper()
	dir := filepath.Join(root, cat, pkg)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(
		filepath.Join(dir, pkg+"-"+ver+".ebuild"), []byte("EAPI=8\n"), 0o644))
}

func registerRepo(t *testing.T, configDir, id, location string, priority int) {
	t.Helper()
	reposDir := filepath.Join(configDir, "repos")
	require.NoError(t, os.MkdirAll(reposDir, 0o755))
	content := "location = " + location + "\npriority = " + strconv.Itoa(priority) + "\n"
	require.NoError(t, os.WriteFile(filepath.Join(reposDir, id), []byte(content), 0o644))
}

func TestResolvePathMatchesConfiguredRepo(t *testing.T) {
	root := t.TempDir()
	configDir := filepath.Join(root, "config")
	dataDir := filepath.Join(root, "data")

	repoRoot := writeFixtureRepo(t, filepath.Join(dataDir, "repos"), "gentoo")
	writeFixtureEbuild(t, repoRoot, "app-editors", "vim", "9.0")
	writeFixtureEbuild(t, repoRoot, "dev-lang", "go", "1.22")
	registerRepo(t, configDir, "gentoo", repoRoot, 0)

	cfg, err := pkgconfig.New(configDir, dataDir)
	require.NoError(t, err)

	res, err := Resolve(cfg, filepath.Join(repoRoot, "app-editors"))
	require.NoError(t, err)
	require.Equal(t, 1, res.Repos.Len())
	assert.Equal(t, "gentoo", res.Repos.Repos()[0].ID())

	vim, _ := atom.ParseCpv("app-editors/vim-9.0")
	goPkg, _ := atom.ParseCpv("dev-lang/go-1.22")
	assert.True(t, res.Restrict.Matches(vim))
	assert.False(t, res.Restrict.Matches(goPkg))
}

func TestResolvePathRegistersExternalRepoRoot(t *testing.T) {
	root := t.TempDir()
	configDir := filepath.Join(root, "config")
	dataDir := filepath.Join(root, "data")

	cfg, err := pkgconfig.New(configDir, dataDir)
	require.NoError(t, err)
	require.True(t, cfg.IsEmpty())

	externalRoot := writeFixtureRepo(t, filepath.Join(root, "external"), "myrepo")
	writeFixtureEbuild(t, externalRoot, "app-editors", "vim", "9.0")

	res, err := Resolve(cfg, externalRoot)
	require.NoError(t, err)
	require.Equal(t, 1, res.Repos.Len())
	assert.Equal(t, externalRoot, res.Repos.Repos()[0].Path())

	vim, _ := atom.ParseCpv("app-editors/vim-9.0")
	assert.True(t, res.Restrict.Matches(vim))

	// repeated resolution against the same path reuses the registered repo
	res2, err := Resolve(cfg, externalRoot)
	require.NoError(t, err)
	assert.Same(t, res.Repos.Repos()[0], res2.Repos.Repos()[0])
}

func TestResolveGlobFiltersAgainstFullRepoSet(t *testing.T) {
	root := t.TempDir()
	configDir := filepath.Join(root, "config")
	dataDir := filepath.Join(root, "data")

	repoRoot := writeFixtureRepo(t, filepath.Join(dataDir, "repos"), "gentoo")
	writeFixtureEbuild(t, repoRoot, "app-editors", "vim", "9.0")
	registerRepo(t, configDir, "gentoo", repoRoot, 0)

	cfg, err := pkgconfig.New(configDir, dataDir)
	require.NoError(t, err)

	res, err := Resolve(cfg, "app-editors/vim")
	require.NoError(t, err)
	assert.Equal(t, 1, res.Repos.Len())

	vim, _ := atom.ParseCpv("app-editors/vim-9.0")
	nano, _ := atom.ParseCpv("app-editors/nano-7.0")
	assert.True(t, res.Restrict.Matches(vim))
	assert.False(t, res.Restrict.Matches(nano))
}

func TestResolveGlobWithEmbeddedRepoPathScopesToThatRepo(t *testing.T) {
	root := t.TempDir()
	configDir := filepath.Join(root, "config")
	dataDir := filepath.Join(root, "data")

	cfg, err := pkgconfig.New(configDir, dataDir)
	require.NoError(t, err)

	externalRoot := writeFixtureRepo(t, filepath.Join(root, "external"), "myrepo")
	writeFixtureEbuild(t, externalRoot, "app-editors", "vim", "9.0")

	res, err := Resolve(cfg, "app-editors/vim::"+externalRoot)
	require.NoError(t, err)
	require.Equal(t, 1, res.Repos.Len())
	assert.Equal(t, externalRoot, res.Repos.Repos()[0].Path())

	vim, _ := atom.ParseCpv("app-editors/vim-9.0")
	assert.True(t, res.Restrict.Matches(vim))
}

func TestResolveGlobUnknownRepoIDIsError(t *testing.T) {
	root := t.TempDir()
	configDir := filepath.Join(root, "config")
	dataDir := filepath.Join(root, "data")

	cfg, err := pkgconfig.New(configDir, dataDir)
	require.NoError(t, err)

	_, err = Resolve(cfg, "app-editors/vim::nosuchrepo")
	require.Error(t, err)
}

func TestResolveBatchGroupsBySameRepoSet(t *testing.T) {
	root := t.TempDir()
	configDir := filepath.Join(root, "config")
	dataDir := filepath.Join(root, "data")

	repoRoot := writeFixtureRepo(t, filepath.Join(dataDir, "repos"), "gentoo")
	writeFixtureEbuild(t, repoRoot, "app-editors", "vim", "9.0")
	writeFixtureEbuild(t, repoRoot, "app-editors", "nano", "7.0")
	registerRepo(t, configDir, "gentoo", repoRoot, 0)

	cfg, err := pkgconfig.New(configDir, dataDir)
	require.NoError(t, err)

	batches, err := ResolveBatch(cfg, []string{"app-editors/vim", "app-editors/nano"})
	require.NoError(t, err)
	require.Len(t, batches, 1)
	assert.Len(t, batches[0].Restricts, 2)
}
