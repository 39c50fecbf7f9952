package eapi_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"pkgcraft/pkg/eapi"
)

func TestGetUnknown(t *testing.T) {
	_, err := eapi.Get("does-not-exist")
	require.Error(t, err)
}

func TestRepoIdsGating(t *testing.T) {
	eight, err := eapi.Get("8")
	require.NoError(t, err)
	require.False(t, eight.Has(eapi.RepoIds))

	pc, err := eapi.Get("pkgcraft")
	require.NoError(t, err)
	require.True(t, pc.Has(eapi.RepoIds))
}

func TestInterning(t *testing.T) {
	a, err := eapi.Get("8")
	require.NoError(t, err)
	b, err := eapi.Get("8")
	require.NoError(t, err)
	require.Same(t, a, b)
}

func TestDepKeysGrowAcrossEAPIs(t *testing.T) {
	five, err := eapi.Get("5")
	require.NoError(t, err)
	require.False(t, five.IsDepKey("BDEPEND"))
	require.False(t, five.IsDepKey("IDEPEND"))

	seven, err := eapi.Get("7")
	require.NoError(t, err)
	require.True(t, seven.IsDepKey("BDEPEND"))
	require.False(t, seven.IsDepKey("IDEPEND"))

	eight, err := eapi.Get("8")
	require.NoError(t, err)
	require.True(t, eight.IsDepKey("IDEPEND"))
}
