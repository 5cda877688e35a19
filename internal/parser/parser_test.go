package parser

import (
	"strings"
	"testing"

	"github.com/celix-project/dynitype/internal/abi"
	"github.com/celix-project/dynitype/internal/errs"
	"github.com/celix-project/dynitype/internal/typetree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePrimitive(t *testing.T) {
	n, err := ParseString("I", Options{})
	require.NoError(t, err)
	assert.Equal(t, typetree.KindSimple, n.Kind)
	assert.Equal(t, uint32(4), n.Size)
	assert.Equal(t, uint32(4), n.Align)
}

func TestParseStructWithReuse(t *testing.T) {
	n, err := ParseString("Tperson={ssi age weight height};Lperson;", Options{})
	require.NoError(t, err)

	assert.True(t, n.IsTypedPointer())
	target := typetree.Strip(n.Target)
	assert.True(t, target.IsComplex())
	assert.Equal(t, 1, target.IndexForName("weight"))

	members := make([]abi.Member, len(target.Fields))
	for i, f := range target.Fields {
		members[i] = abi.Member{Size: f.Type.Size, Align: f.Type.Align}
	}
	_, _, offsets := abi.DefaultOracle{}.ComposeStruct(members)
	assert.Equal(t, uint32(2), offsets[1])
	assert.Equal(t, uint32(4), offsets[2])
	assert.Equal(t, uint32(8), target.Size)
}

func TestParseSequenceOfStructs(t *testing.T) {
	n, err := ParseStream(strings.NewReader("[{DD x y}"), Options{})
	require.NoError(t, err)
	assert.True(t, n.IsSequence())

	elem := typetree.Strip(n.Elem)
	assert.True(t, elem.IsComplex())
	assert.Len(t, elem.Fields, 2)
	assert.Equal(t, uint32(16), n.Size) // {u32,u32,ptr}
}

func TestParseSelfReferenceViaExternalScope(t *testing.T) {
	o := abi.DefaultOracle{}
	childrenField := typetree.NewPending("", nil)
	typetree.FinalizeSimple(childrenField, abi.I32, 'I', o)
	nextField := typetree.NewPending("", nil)
	typetree.FinalizeSimple(nextField, abi.Ptr, 'P', o)

	nodeType := typetree.NewPending("node", nil)
	typetree.FinalizeComplex(nodeType, []typetree.Field{
		{Name: "children", Type: childrenField},
		{Name: "next", Type: nextField},
	}, o)

	scope := scopeMap{"node": nodeType}

	ref, err := ParseString("lnode;", Options{ExtScope: scope})
	require.NoError(t, err)
	assert.True(t, ref.IsReference())
	assert.Same(t, nodeType, typetree.Strip(ref))

	ptr, err := ParseString("*lnode;", Options{ExtScope: scope})
	require.NoError(t, err)
	assert.True(t, ptr.IsTypedPointer())
	target := typetree.Strip(ptr.Target)
	assert.True(t, target.IsComplex())
	assert.Equal(t, abi.I32, target.Fields[0].Type.Primitive)
}

func TestParseTextField(t *testing.T) {
	n, err := ParseString("{t name}", Options{})
	require.NoError(t, err)
	assert.True(t, n.IsComplex())
	require.Len(t, n.Fields, 1)
	assert.Equal(t, "name", n.Fields[0].Name)
	assert.True(t, n.Fields[0].Type.IsText())
	assert.Equal(t, uint32(8), n.Size) // sizeof(ptr)
}

func TestParseMalformedMissingBrace(t *testing.T) {
	_, err := ParseString("{Ii a", Options{})
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.CodeParseError))
}

func TestParseMalformedUnknownSimple(t *testing.T) {
	_, err := ParseString("Q", Options{})
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.CodeParseError))
}

func TestParseMalformedUnresolvedReference(t *testing.T) {
	_, err := ParseString("lmissing;", Options{})
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.CodeParseError))
}

func TestParseStringRejectsTrailingGarbage(t *testing.T) {
	_, err := ParseString("Ix", Options{})
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.CodeParseError))
}

func TestParseStringAcceptsTrailingNUL(t *testing.T) {
	n, err := ParseString("I\x00", Options{})
	require.NoError(t, err)
	assert.True(t, n.IsSimple())
}

func TestParseEmptyComplex(t *testing.T) {
	n, err := ParseString("{}", Options{})
	require.NoError(t, err)
	assert.True(t, n.IsComplex())
	assert.Empty(t, n.Fields)
	assert.Equal(t, uint32(0), n.Size)
	assert.Equal(t, uint32(1), n.Align)
}

type scopeMap map[string]*typetree.Node

func (s scopeMap) Lookup(name string) (*typetree.Node, bool) {
	n, ok := s[name]
	return n, ok
}

// structuralEqual compares two independently parsed trees by shape
// (kind, name, descriptor, layout, and recursively their children)
// rather than by pointer identity, and is cycle-safe so it terminates
// on self-referential descriptors. This backs the round-trip property
// from spec.md §8: parsing the same string twice must yield
// structurally equal trees.
func structuralEqual(a, b *typetree.Node, visited map[[2]*typetree.Node]bool) bool {
	a = typetree.Strip(a)
	b = typetree.Strip(b)
	if a == nil || b == nil {
		return a == b
	}

	key := [2]*typetree.Node{a, b}
	if visited[key] {
		return true
	}
	visited[key] = true

	if a.Kind != b.Kind || a.Name != b.Name || a.Descriptor != b.Descriptor {
		return false
	}
	if a.Size != b.Size || a.Align != b.Align {
		return false
	}

	switch a.Kind {
	case typetree.KindSimple:
		return a.Primitive == b.Primitive
	case typetree.KindComplex:
		if len(a.Fields) != len(b.Fields) {
			return false
		}
		for i := range a.Fields {
			if a.Fields[i].Name != b.Fields[i].Name {
				return false
			}
			if !structuralEqual(a.Fields[i].Type, b.Fields[i].Type, visited) {
				return false
			}
		}
		return true
	case typetree.KindSequence:
		return structuralEqual(a.Elem, b.Elem, visited)
	case typetree.KindTypedPointer:
		return structuralEqual(a.Target, b.Target, visited)
	default:
		return true
	}
}

func TestParseStringRoundTripIsStructurallyStable(t *testing.T) {
	descriptors := []string{
		"I",
		"Tperson={ssi age weight height};Lperson;",
		"{t name}",
	}
	for _, d := range descriptors {
		first, err := ParseString(d, Options{})
		require.NoError(t, err)
		second, err := ParseString(d, Options{})
		require.NoError(t, err)

		assert.True(t, structuralEqual(first, second, map[[2]*typetree.Node]bool{}), "descriptor %q", d)
	}
}

func TestParseStreamRoundTripSequenceOfStructs(t *testing.T) {
	const d = "[{DD x y}"
	first, err := ParseStream(strings.NewReader(d), Options{})
	require.NoError(t, err)
	second, err := ParseStream(strings.NewReader(d), Options{})
	require.NoError(t, err)

	assert.True(t, structuralEqual(first, second, map[[2]*typetree.Node]bool{}))
}

func TestParseStringRoundTripSelfReferenceViaScope(t *testing.T) {
	o := abi.DefaultOracle{}
	nodeType := typetree.NewPending("node", nil)
	typetree.FinalizeComplex(nodeType, []typetree.Field{
		{Name: "value", Type: simpleNode(abi.I32, 'I', o)},
	}, o)
	scope := scopeMap{"node": nodeType}

	const d = "*lnode;"
	first, err := ParseString(d, Options{ExtScope: scope})
	require.NoError(t, err)
	second, err := ParseString(d, Options{ExtScope: scope})
	require.NoError(t, err)

	assert.True(t, structuralEqual(first, second, map[[2]*typetree.Node]bool{}))
}

func simpleNode(p abi.Primitive, descriptor byte, oracle abi.Oracle) *typetree.Node {
	n := typetree.NewPending("", nil)
	typetree.FinalizeSimple(n, p, descriptor, oracle)
	return n
}
