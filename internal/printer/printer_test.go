package printer

import (
	"strings"
	"testing"

	"github.com/celix-project/dynitype/internal/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrintSimple(t *testing.T) {
	n, err := parser.ParseString("I", parser.Options{})
	require.NoError(t, err)

	var buf strings.Builder
	require.NoError(t, Print(&buf, n))
	out := buf.String()
	assert.Contains(t, out, "simple")
	assert.Contains(t, out, `descriptor='I'`)
}

func TestPrintDeclaredTypeFirst(t *testing.T) {
	n, err := parser.ParseString("Tperson={ssi age weight height};Lperson;", parser.Options{})
	require.NoError(t, err)

	var buf strings.Builder
	require.NoError(t, Print(&buf, n))
	out := buf.String()

	declaredIdx := strings.Index(out, "declared person:")
	typeIdx := strings.Index(out, "type:")
	require.GreaterOrEqual(t, declaredIdx, 0)
	require.GreaterOrEqual(t, typeIdx, 0)
	assert.Less(t, declaredIdx, typeIdx)
	assert.Contains(t, out, "field[1] weight")
}

func TestPrintSequenceAndComplex(t *testing.T) {
	n, err := parser.ParseString("[{DD x y}", parser.Options{})
	require.NoError(t, err)

	var buf strings.Builder
	require.NoError(t, Print(&buf, n))
	out := buf.String()
	assert.Contains(t, out, "sequence")
	assert.Contains(t, out, "field[0] x")
	assert.Contains(t, out, "field[1] y")
}

func TestPrintDoesNotLoopOnSharedDeclaredType(t *testing.T) {
	n, err := parser.ParseString("Tx={I a};{Lx;Lx; b c}", parser.Options{})
	require.NoError(t, err)

	var buf strings.Builder
	assert.NotPanics(t, func() {
		require.NoError(t, Print(&buf, n))
	})
}
