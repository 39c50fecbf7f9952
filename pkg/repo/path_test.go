package repo

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pkgcraft/pkg/atom"
)

func TestRestrictFromPathRoot(t *testing.T) {
	root := mkRepo(t, "gentoo", "8", nil)
	writeEbuild(t, root, "app-editors", "vim", "9.0")

	r, err := New("gentoo", 0, root)
	require.NoError(t, err)
	require.NoError(t, r.Finalize(map[string]*Repository{"gentoo": r}))

	rst, ok := r.RestrictFromPath(root)
	require.True(t, ok)
	cpv, err := atom.ParseCpv("app-editors/vim-9.0")
	require.NoError(t, err)
	assert.True(t, rst.Matches(cpv))
}

func TestRestrictFromPathCategory(t *testing.T) {
	root := mkRepo(t, "gentoo", "8", nil)
	writeEbuild(t, root, "app-editors", "vim", "9.0")
	writeEbuild(t, root, "app-editors", "nano", "7.0")
	writeEbuild(t, root, "dev-lang", "go", "1.22")

	r, err := New("gentoo", 0, root)
	require.NoError(t, err)
	require.NoError(t, r.Finalize(map[string]*Repository{"gentoo": r}))

	rst, ok := r.RestrictFromPath(filepath.Join(root, "app-editors"))
	require.True(t, ok)

	vim, _ := atom.ParseCpv("app-editors/vim-9.0")
	goPkg, _ := atom.ParseCpv("dev-lang/go-1.22")
	assert.True(t, rst.Matches(vim))
	assert.False(t, rst.Matches(goPkg))
}

func TestRestrictFromPathPackage(t *testing.T) {
	root := mkRepo(t, "gentoo", "8", nil)
	writeEbuild(t, root, "app-editors", "vim", "9.0")
	writeEbuild(t, root, "app-editors", "vim", "9.1")

	r, err := New("gentoo", 0, root)
	require.NoError(t, err)
	require.NoError(t, r.Finalize(map[string]*Repository{"gentoo": r}))

	rst, ok := r.RestrictFromPath(filepath.Join(root, "app-editors", "vim"))
	require.True(t, ok)

	v90, _ := atom.ParseCpv("app-editors/vim-9.0")
	v91, _ := atom.ParseCpv("app-editors/vim-9.1")
	assert.True(t, rst.Matches(v90))
	assert.True(t, rst.Matches(v91))
}

func TestRestrictFromPathEbuild(t *testing.T) {
	root := mkRepo(t, "gentoo", "8", nil)
	writeEbuild(t, root, "app-editors", "vim", "9.0")
	writeEbuild(t, root, "app-editors", "vim", "9.1")

	r, err := New("gentoo", 0, root)
	require.NoError(t, err)
	require.NoError(t, r.Finalize(map[string]*Repository{"gentoo": r}))

	path := filepath.Join(root, "app-editors", "vim", "vim-9.0.ebuild")
	rst, ok := r.RestrictFromPath(path)
	require.True(t, ok)

	v90, _ := atom.ParseCpv("app-editors/vim-9.0")
	v91, _ := atom.ParseCpv("app-editors/vim-9.1")
	assert.True(t, rst.Matches(v90))
	assert.False(t, rst.Matches(v91))
}

func TestRestrictFromPathOutsideRepo(t *testing.T) {
	root := mkRepo(t, "gentoo", "8", nil)
	other := t.TempDir()

	r, err := New("gentoo", 0, root)
	require.NoError(t, err)
	require.NoError(t, r.Finalize(map[string]*Repository{"gentoo": r}))

	_, ok := r.RestrictFromPath(other)
	assert.False(t, ok)
}
