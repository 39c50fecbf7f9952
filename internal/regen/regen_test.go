package regen

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"pkgcraft/pkg/atom"
	"pkgcraft/pkg/repo"
	"pkgcraft/pkg/shell"
)

type fakeInterp struct {
	vars map[string]shell.Value
}

func (f *fakeInterp) SourceFile(path string) error   { return nil }
func (f *fakeInterp) SourceString(text string) error { return nil }

func (f *fakeInterp) Variable(name string) (shell.Value, bool) {
	v, ok := f.vars[name]
	return v, ok
}

func (f *fakeInterp) FunctionExists(name string) bool { return false }

func (f *fakeInterp) CallFunction(name string, args []string) (shell.Status, error) {
	return shell.Status{}, shell.ErrNotExecutable
}

func newTestRepo(t *testing.T) *repo.Repository {
	t.Helper()
	dir := t.TempDir()

	require.NoError(t, os.MkdirAll(filepath.Join(dir, "profiles"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "profiles", "repo_name"), []byte("test\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "profiles", "eapi"), []byte("8\n"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "metadata"), 0o755))

	require.NoError(t, os.MkdirAll(filepath.Join(dir, "app-editors", "vim"), 0o755))
	require.NoError(t, os.WriteFile(
		filepath.Join(dir, "app-editors", "vim", "vim-9.0.ebuild"),
		[]byte("EAPI=8\nDESCRIPTION=\"a great editor\"\nSLOT=\"0\"\n"), 0o644))

	r, err := repo.New("test", 0, dir)
	require.NoError(t, err)
	require.NoError(t, r.Finalize(map[string]*repo.Repository{"test": r}))
	return r
}

func TestRunRegeneratesAndWritesCacheEntry(t *testing.T) {
	defer goleak.VerifyNone(t)

	r := newTestRepo(t)
	cpv, err := atom.ParseCpv("app-editors/vim-9.0")
	require.NoError(t, err)

	interp := &fakeInterp{vars: map[string]shell.Value{
		"EAPI":        {Scalar: "8"},
		"DESCRIPTION": {Scalar: "a great editor"},
		"SLOT":        {Scalar: "0"},
	}}

	err = Run(context.Background(), r, interp, Options{Jobs: 2, Targets: []atom.Cpv{cpv}})
	require.NoError(t, err)

	entry := filepath.Join(r.Path(), "metadata", "md5-cache", "app-editors", "vim-9.0")
	data, err := os.ReadFile(entry)
	require.NoError(t, err)
	assert.Contains(t, string(data), "DESCRIPTION=a great editor")
	assert.Contains(t, string(data), "_md5_=")

	// a second run with Force=false should find the entry already valid
	// and skip regeneration entirely -- no targets reach the interpreter.
	interp.vars = nil
	require.NoError(t, Run(context.Background(), r, interp, Options{Jobs: 2, Targets: []atom.Cpv{cpv}}))
}

func TestRunAggregatesPerTargetFailures(t *testing.T) {
	defer goleak.VerifyNone(t)

	r := newTestRepo(t)
	missing, err := atom.ParseCpv("app-editors/vim-9.9")
	require.NoError(t, err)

	interp := &fakeInterp{vars: map[string]shell.Value{}}

	err = Run(context.Background(), r, interp, Options{Jobs: 2, Targets: []atom.Cpv{missing}})
	require.Error(t, err)
}

func TestRunVerifyDoesNotWriteCacheEntry(t *testing.T) {
	defer goleak.VerifyNone(t)

	r := newTestRepo(t)
	cpv, err := atom.ParseCpv("app-editors/vim-9.0")
	require.NoError(t, err)

	interp := &fakeInterp{vars: map[string]shell.Value{
		"EAPI":        {Scalar: "8"},
		"DESCRIPTION": {Scalar: "a great editor"},
		"SLOT":        {Scalar: "0"},
	}}

	require.NoError(t, Run(context.Background(), r, interp, Options{Verify: true, Targets: []atom.Cpv{cpv}}))

	entry := filepath.Join(r.Path(), "metadata", "md5-cache", "app-editors", "vim-9.0")
	_, err = os.Stat(entry)
	assert.True(t, os.IsNotExist(err))
}

func TestRunWithoutTargetsCoversWholeRepo(t *testing.T) {
	defer goleak.VerifyNone(t)

	r := newTestRepo(t)
	interp := &fakeInterp{vars: map[string]shell.Value{
		"EAPI":        {Scalar: "8"},
		"DESCRIPTION": {Scalar: "a great editor"},
		"SLOT":        {Scalar: "0"},
	}}

	require.NoError(t, Run(context.Background(), r, interp, Options{Jobs: 2}))

	entry := filepath.Join(r.Path(), "metadata", "md5-cache", "app-editors", "vim-9.0")
	_, err := os.Stat(entry)
	require.NoError(t, err)
}
