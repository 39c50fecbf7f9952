package atom

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pkgcraft/pkg/eapi"
)

func TestParseCpn(t *testing.T) {
	c, err := ParseCpn("app-editors/vim")
	require.NoError(t, err)
	assert.Equal(t, "app-editors", c.Category)
	assert.Equal(t, "vim", c.Package)
	assert.Equal(t, "app-editors/vim", c.String())

	_, err = ParseCpn("no-slash-here")
	assert.Error(t, err)
}

func TestParseCpv(t *testing.T) {
	c, err := ParseCpv("app-editors/vim-9.0.2116-r1")
	require.NoError(t, err)
	assert.Equal(t, "app-editors", c.Category)
	assert.Equal(t, "vim", c.Package)
	assert.Equal(t, "app-editors/vim-9.0.2116-r1", c.String())
}

func TestParseCpvAmbiguousPackageName(t *testing.T) {
	// "gcc-10" is a valid package name on its own; "pkg-10-1.2" should
	// resolve to package "pkg-10", version "1.2".
	c, err := ParseCpv("sys-devel/gcc-10-10.3.0")
	require.NoError(t, err)
	assert.Equal(t, "gcc-10", c.Package)
	assert.Equal(t, "10.3.0", c.Version.String())
}

func TestParseDepBasic(t *testing.T) {
	e := eapi.MustGet("pkgcraft")
	d, err := ParseDep(">=app-editors/vim-9.0:0/1=::gentoo[nls,-X,python(+)?]", e)
	require.NoError(t, err)
	assert.Equal(t, "app-editors", d.Category)
	assert.Equal(t, "vim", d.Package)
	require.NotNil(t, d.Version)
	assert.Equal(t, "9.0", d.Version.WithoutOp().String())
	require.NotNil(t, d.Slot)
	assert.Equal(t, "0", d.Slot.Slot)
	assert.Equal(t, "1", d.Slot.Subslot)
	assert.Equal(t, "gentoo", d.Repo)
	require.Len(t, d.UseDeps, 3)

	d2, err := ParseDep(d.String(), e)
	require.NoError(t, err)
	assert.Equal(t, d.String(), d2.String())
}

func TestParseDepBlocker(t *testing.T) {
	e := eapi.MustGet("8")
	d, err := ParseDep("!!app-editors/vim", e)
	require.NoError(t, err)
	assert.Equal(t, BlockerStrong, d.Blocker)
	assert.Nil(t, d.Version)

	u := d.Unblocked()
	assert.Equal(t, BlockerNone, u.Blocker)
	assert.Equal(t, BlockerStrong, d.Blocker, "Unblocked must not mutate the receiver")
}

// TestRepoIdsGating is spec.md §8 scenario 2: "cat/pkg::overlay" parses
// under EAPI "pkgcraft" but fails under EAPI "8" with a repo-ids message.
func TestRepoIdsGating(t *testing.T) {
	pc := eapi.MustGet("pkgcraft")
	d, err := ParseDep("cat/pkg::overlay", pc)
	require.NoError(t, err)
	assert.Equal(t, "overlay", d.Repo)

	e8 := eapi.MustGet("8")
	_, err = ParseDep("cat/pkg::overlay", e8)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "repo ids")
}

func TestParseDepRequiresVersionForOperator(t *testing.T) {
	e := eapi.MustGet("8")
	_, err := ParseDep(">=cat/pkg", e)
	assert.Error(t, err)
}

func TestParseDepEqualGlob(t *testing.T) {
	e := eapi.MustGet("8")
	d, err := ParseDep("=cat/pkg-1.2*", e)
	require.NoError(t, err)
	assert.Equal(t, "1.2", d.Version.WithoutOp().String())
	assert.Equal(t, "=cat/pkg-1.2*", d.String())
}

func TestCompareDepOrdering(t *testing.T) {
	e := eapi.MustGet("8")
	a, err := ParseDep("cat/pkg-1.0", e)
	require.NoError(t, err)
	b, err := ParseDep("cat/pkg-2.0", e)
	require.NoError(t, err)
	assert.Negative(t, CompareDep(a, b))
	assert.Positive(t, CompareDep(b, a))
	assert.Zero(t, CompareDep(a, a))
}

func TestIntersects(t *testing.T) {
	e := eapi.MustGet("8")

	a, err := ParseDep(">=cat/pkg-1.0", e)
	require.NoError(t, err)
	b, err := ParseDep("<cat/pkg-2.0", e)
	require.NoError(t, err)
	assert.True(t, a.Intersects(b))

	c, err := ParseDep("<cat/pkg-1.0", e)
	require.NoError(t, err)
	assert.False(t, a.Intersects(c))
}

func TestIntersectsDisjointVersions(t *testing.T) {
	e := eapi.MustGet("8")
	a, err := ParseDep("<cat/pkg-1.0", e)
	require.NoError(t, err)
	b, err := ParseDep(">=cat/pkg-2.0", e)
	require.NoError(t, err)
	assert.False(t, a.Intersects(b))
}

func TestIntersectsDifferentPackage(t *testing.T) {
	e := eapi.MustGet("8")
	a, err := ParseDep("cat/pkg1", e)
	require.NoError(t, err)
	b, err := ParseDep("cat/pkg2", e)
	require.NoError(t, err)
	assert.False(t, a.Intersects(b))
}

func TestIntersectsUseDepContradiction(t *testing.T) {
	e := eapi.MustGet("8")
	a, err := ParseDep("cat/pkg[foo]", e)
	require.NoError(t, err)
	b, err := ParseDep("cat/pkg[-foo]", e)
	require.NoError(t, err)
	assert.False(t, a.Intersects(b))
}

func TestUseDepDefaults(t *testing.T) {
	e5 := eapi.MustGet("5")
	d, err := ParseDep("cat/pkg[foo(+)]", e5)
	require.NoError(t, err)
	assert.Equal(t, byte('+'), d.UseDeps[0].Default)
	assert.Equal(t, "cat/pkg[foo(+)]", d.String())
}
