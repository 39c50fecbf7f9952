package dep

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pkgcraft/pkg/atom"
	"pkgcraft/pkg/eapi"
	"pkgcraft/pkg/uri"
)

func plainCmp(a, b PlainString) int { return strings.Compare(string(a), string(b)) }

func TestParsePlainStringAllOf(t *testing.T) {
	set, err := Parse("a b c", plainCmp, PlainStringLeafParser())
	require.NoError(t, err)
	assert.Equal(t, 3, set.Len())
	assert.Equal(t, []PlainString{"a", "b", "c"}, set.IterFlatten())
}

func TestParseAnyOfGroup(t *testing.T) {
	set, err := Parse("|| ( a b ) c", plainCmp, PlainStringLeafParser())
	require.NoError(t, err)
	require.Equal(t, 2, set.Len())
	var sawAnyOf bool
	for _, r := range set.Roots() {
		if r.Kind() == KindAnyOf {
			sawAnyOf = true
			assert.Equal(t, []PlainString{"a", "b"}, r.IterFlatten())
		}
	}
	assert.True(t, sawAnyOf)
}

func TestParseConditional(t *testing.T) {
	set, err := Parse("foo? ( a !bar? ( b ) )", plainCmp, PlainStringLeafParser())
	require.NoError(t, err)
	require.Equal(t, 1, set.Len())
	root := set.Roots()[0]
	require.Equal(t, KindConditional, root.Kind())
	assert.Equal(t, "foo", root.Condition().Flag)
	assert.Equal(t, atom.UseEnabledConditional, root.Condition().Kind)

	conds := set.IterConditionals()
	require.Len(t, conds, 2)
	assert.Equal(t, "bar", conds[1].Flag)
	assert.Equal(t, atom.UseDisabledConditional, conds[1].Kind)
}

func TestRenderRoundTripDisabledConditional(t *testing.T) {
	set, err := Parse("!bar? ( b )", plainCmp, PlainStringLeafParser())
	require.NoError(t, err)
	assert.Equal(t, "!bar? ( b )", set.String())
}

func TestRenderRoundTripEnabledConditional(t *testing.T) {
	set, err := Parse("foo? ( a )", plainCmp, PlainStringLeafParser())
	require.NoError(t, err)
	assert.Equal(t, "foo? ( a )", set.String())
}

func TestRenderRoundTripCombinators(t *testing.T) {
	for _, s := range []string{
		"a b c",
		"|| ( a b )",
		"^^ ( a b )",
		"?? ( a b )",
		"foo? ( a !bar? ( b ) )",
	} {
		set, err := Parse(s, plainCmp, PlainStringLeafParser())
		require.NoError(t, err)
		assert.Equal(t, s, set.String())
	}
}

func TestEvaluateConditional(t *testing.T) {
	set, err := Parse("foo? ( a ) !foo? ( b )", plainCmp, PlainStringLeafParser())
	require.NoError(t, err)

	enabled := set.IterEvaluate(map[string]bool{"foo": true})
	assert.Equal(t, []PlainString{"a"}, enabled)

	disabled := set.IterEvaluate(map[string]bool{"foo": false})
	assert.Equal(t, []PlainString{"b"}, disabled)
}

func TestEvaluateForce(t *testing.T) {
	set, err := Parse("foo? ( a )", plainCmp, PlainStringLeafParser())
	require.NoError(t, err)
	assert.Equal(t, []PlainString{"a"}, set.IterEvaluateForce(true))
	assert.Empty(t, set.IterEvaluateForce(false))
}

func TestParseDepSet(t *testing.T) {
	e := eapi.MustGet("8")
	set, err := Parse(">=cat/pkg-1.0 || ( cat/a cat/b )", atom.CompareDep, DepLeafParser(e))
	require.NoError(t, err)
	assert.Equal(t, 2, set.Len())
}

func uriCmp(a, b uri.Uri) int { return uri.Compare(a, b) }

func TestParseUriRename(t *testing.T) {
	set, err := Parse("https://example.com/a.tar.gz -> local-a.tar.gz https://example.com/b.tar.gz", uriCmp, UriLeafParser())
	require.NoError(t, err)
	leaves := set.IterFlatten()
	require.Len(t, leaves, 2)
	assert.Equal(t, "local-a.tar.gz", leaves[0].Rename)
	assert.Equal(t, "", leaves[1].Rename)
}

func TestSetAlgebra(t *testing.T) {
	a, err := Parse("x y z", plainCmp, PlainStringLeafParser())
	require.NoError(t, err)
	b, err := Parse("y z w", plainCmp, PlainStringLeafParser())
	require.NoError(t, err)

	and := a.And(b)
	assert.Equal(t, []PlainString{"y", "z"}, and.IterFlatten())

	or := a.Or(b)
	assert.Equal(t, []PlainString{"w", "x", "y", "z"}, sortedStrings(or.IterFlatten()))

	xor := a.Xor(b)
	assert.ElementsMatch(t, []PlainString{"x", "w"}, xor.IterFlatten())

	sub := a.Sub(b)
	assert.Equal(t, []PlainString{"x"}, sub.IterFlatten())
}

func sortedStrings(in []PlainString) []PlainString {
	out := append([]PlainString(nil), in...)
	insertionSort(out, func(a, b PlainString) int { return plainCmp(a, b) })
	return out
}

func TestCompareNodesOrdering(t *testing.T) {
	a := Enabled[PlainString]("a")
	b := Enabled[PlainString]("b")
	assert.Negative(t, CompareNodes(plainCmp, a, b))
	assert.True(t, Equal(plainCmp, a, Enabled[PlainString]("a")))
}
