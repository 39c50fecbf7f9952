package shell

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTreeSitterReaderExtractsScalarAssignments(t *testing.T) {
	r := NewTreeSitterReader()
	defer r.Close()

	err := r.SourceString(`EAPI=8
DESCRIPTION="a great editor"
SLOT=0
`)
	require.NoError(t, err)

	v, ok := r.Variable("EAPI")
	require.True(t, ok)
	assert.Equal(t, "8", v.Scalar)

	v, ok = r.Variable("DESCRIPTION")
	require.True(t, ok)
	assert.Equal(t, "a great editor", v.Scalar)

	_, ok = r.Variable("MISSING")
	assert.False(t, ok)
}

func TestTreeSitterReaderExtractsArrayAssignment(t *testing.T) {
	r := NewTreeSitterReader()
	defer r.Close()

	err := r.SourceString(`IUSE=(python nls unstable)`)
	require.NoError(t, err)

	v, ok := r.Variable("IUSE")
	require.True(t, ok)
	assert.True(t, v.IsArray)
	assert.Equal(t, []string{"python", "nls", "unstable"}, v.Array)
}

func TestTreeSitterReaderExtractsFunctionDefinitions(t *testing.T) {
	r := NewTreeSitterReader()
	defer r.Close()

	err := r.SourceString(`src_compile() {
	emake
}
`)
	require.NoError(t, err)
	assert.True(t, r.FunctionExists("src_compile"))
	assert.False(t, r.FunctionExists("src_install"))
}

func TestTreeSitterReaderResetsScopeBetweenSources(t *testing.T) {
	r := NewTreeSitterReader()
	defer r.Close()

	require.NoError(t, r.SourceString(`FOO=1`))
	_, ok := r.Variable("FOO")
	require.True(t, ok)

	require.NoError(t, r.SourceString(`BAR=2`))
	_, ok = r.Variable("FOO")
	assert.False(t, ok, "scope should reset between Source calls")
	_, ok = r.Variable("BAR")
	assert.True(t, ok)
}

func TestTreeSitterReaderCallFunctionUnsupported(t *testing.T) {
	r := NewTreeSitterReader()
	defer r.Close()
	require.NoError(t, r.SourceString(`src_compile() { emake }`))

	_, err := r.CallFunction("src_compile", nil)
	require.ErrorIs(t, err, ErrNotExecutable)
}

func TestPoolRunsFunctionOverSubmittedInputs(t *testing.T) {
	p := NewPool(2, func(n int) (int, error) { return n * n, nil })
	go func() {
		for i := 1; i <= 4; i++ {
			p.Submit(i)
		}
		p.Close()
	}()

	sum := 0
	for r := range p.Results() {
		require.NoError(t, r.Err)
		sum += r.Value
	}
	assert.Equal(t, 1+4+9+16, sum)
}
