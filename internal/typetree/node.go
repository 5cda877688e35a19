// Package typetree implements the Type Node Model (component C3): a
// tagged tree of Simple, Text, Complex, Sequence, TypedPointer and
// Reference nodes, each carrying an eagerly computed ABI layout, plus
// the nested-declaration tables and parent back-edges the parser and
// name resolver need.
package typetree

import (
	"fmt"
	"sort"

	"github.com/celix-project/dynitype/internal/abi"
	"github.com/celix-project/dynitype/internal/errs"
)

// Kind tags the variant a Node carries. Reference is the only
// non-transparent kind at rest: every accessor that reports "the type
// of X" strips it before returning, per the reference-transparency
// invariant.
type Kind int

const (
	KindSimple Kind = iota
	KindText
	KindComplex
	KindSequence
	KindTypedPointer
	KindReference
)

func (k Kind) String() string {
	switch k {
	case KindSimple:
		return "simple"
	case KindText:
		return "text"
	case KindComplex:
		return "complex"
	case KindSequence:
		return "sequence"
	case KindTypedPointer:
		return "typed_pointer"
	case KindReference:
		return "reference"
	default:
		return "unknown"
	}
}

// Field is one named member of a Complex node.
type Field struct {
	Name string
	Type *Node
}

// Node is one element of the parsed type tree. Fields not relevant to
// a Node's Kind are left zero. parent is a non-owning weak link used
// only for name-scope search; ownership is strictly the tree edges
// (Fields[i].Type, Elem, Target for TypedPointer).
type Node struct {
	Kind       Kind
	Descriptor byte
	Name       string

	Primitive abi.Primitive // KindSimple
	Fields    []Field       // KindComplex
	Offsets   []uint32      // KindComplex, parallel to Fields
	Elem      *Node         // KindSequence
	Target    *Node         // KindTypedPointer (pointee) or KindReference (resolved target)

	Size  uint32
	Align uint32

	parent    *Node
	nested    map[string]*Node
	pending   bool
	destroyed bool
}

// ReferenceScope is the externally supplied, ordered name→Node table
// consulted first during resolution (spec §4.3, §6).
type ReferenceScope interface {
	Lookup(name string) (*Node, bool)
}

// NewPending allocates a placeholder node with no Kind yet assigned,
// so it can be linked into an owner's nested table (making it
// resolvable by name) before its own body is parsed. Call one of the
// Finalize functions once the body is known.
func NewPending(name string, parent *Node) *Node {
	return &Node{Name: name, parent: parent, pending: true}
}

// AddNested installs child into n's locally-declared-types table under
// name, per the "T name = body ;" production.
func (n *Node) AddNested(name string, child *Node) {
	if n.nested == nil {
		n.nested = make(map[string]*Node)
	}
	n.nested[name] = child
}

// FinalizeSimple turns a pending node into a Simple leaf.
func FinalizeSimple(n *Node, p abi.Primitive, descriptor byte, oracle abi.Oracle) {
	n.Kind = KindSimple
	n.Descriptor = descriptor
	n.Primitive = p
	n.Size = oracle.Size(p)
	n.Align = oracle.Align(p)
	n.pending = false
}

// FinalizeText turns a pending node into a Text leaf, laid out as a
// pointer.
func FinalizeText(n *Node, oracle abi.Oracle) {
	n.Kind = KindText
	n.Descriptor = 't'
	n.Size = oracle.Size(abi.Ptr)
	n.Align = oracle.Align(abi.Ptr)
	n.pending = false
}

// FinalizeComplex turns a pending node into a Complex aggregate,
// composing the layout of its fields via the ABI Oracle.
func FinalizeComplex(n *Node, fields []Field, oracle abi.Oracle) {
	n.Kind = KindComplex
	n.Descriptor = '{'
	n.Fields = fields

	members := make([]abi.Member, len(fields))
	for i, f := range fields {
		members[i] = abi.Member{Size: f.Type.Size, Align: f.Type.Align}
	}
	size, align, offsets := oracle.ComposeStruct(members)
	n.Size = size
	n.Align = align
	n.Offsets = offsets
	n.pending = false
}

// FinalizeSequence turns a pending node into a Sequence, whose own
// layout is always the fixed {u32, u32, ptr} header regardless of the
// element type (spec invariant 3).
func FinalizeSequence(n *Node, elem *Node, oracle abi.Oracle) {
	n.Kind = KindSequence
	n.Descriptor = '['
	n.Elem = elem

	size, align, _ := oracle.ComposeStruct([]abi.Member{
		{Size: oracle.Size(abi.U32), Align: oracle.Align(abi.U32)},
		{Size: oracle.Size(abi.U32), Align: oracle.Align(abi.U32)},
		{Size: oracle.Size(abi.Ptr), Align: oracle.Align(abi.Ptr)},
	})
	n.Size = size
	n.Align = align
	n.pending = false
}

// FinalizeTypedPointer turns a pending node into a TypedPointer to
// target, laid out as a pointer.
func FinalizeTypedPointer(n *Node, target *Node, oracle abi.Oracle) {
	n.Kind = KindTypedPointer
	n.Descriptor = '*'
	n.Target = target
	n.Size = oracle.Size(abi.Ptr)
	n.Align = oracle.Align(abi.Ptr)
	n.pending = false
}

// FinalizeReference turns a pending node into a non-owning Reference
// to target. A Reference carries no layout of its own; every accessor
// strips it before reporting size/align/kind.
func FinalizeReference(n *Node, target *Node) {
	n.Kind = KindReference
	n.Descriptor = 'l'
	n.Target = target
	n.pending = false
}

// Strip follows Reference edges until it reaches a non-Reference node,
// implementing the reference-transparency invariant. Strip(nil) is nil.
func Strip(n *Node) *Node {
	for n != nil && n.Kind == KindReference {
		n = n.Target
	}
	return n
}

// EffectiveKind returns n's kind after stripping References.
func (n *Node) EffectiveKind() Kind { return Strip(n).Kind }

func (n *Node) IsSimple() bool       { return Strip(n).Kind == KindSimple }
func (n *Node) IsText() bool         { return Strip(n).Kind == KindText }
func (n *Node) IsComplex() bool      { return Strip(n).Kind == KindComplex }
func (n *Node) IsSequence() bool     { return Strip(n).Kind == KindSequence }
func (n *Node) IsTypedPointer() bool { return Strip(n).Kind == KindTypedPointer }
func (n *Node) IsReference() bool    { return n != nil && n.Kind == KindReference }

// IndexForName does a linear search over a stripped Complex's fields.
// Returns -1 if n is not a Complex or the field is absent — this is a
// probe, not an error (spec §7).
func (n *Node) IndexForName(name string) int {
	c := Strip(n)
	if c == nil || c.Kind != KindComplex {
		return -1
	}
	for i, f := range c.Fields {
		if f.Name == name {
			return i
		}
	}
	return -1
}

// Resolve looks up name starting from node x, in the order spec §4.3
// mandates: the external scope first, then x's own nested
// declarations, then repeating the nested-declaration check at each
// ancestor while walking up the parent chain.
func Resolve(x *Node, name string, scope ReferenceScope) (*Node, error) {
	if scope != nil {
		if t, ok := scope.Lookup(name); ok {
			return t, nil
		}
	}
	for cur := x; cur != nil; cur = cur.parent {
		if cur.nested != nil {
			if t, ok := cur.nested[name]; ok {
				return t, nil
			}
		}
	}
	return nil, errs.New(errs.CodeParseError, "unresolved reference %q", name)
}

// Destroy recursively tears down n's owned subtree. It never follows
// Reference edges (those are non-owning back-edges) and is idempotent:
// calling it twice on the same node, or on overlapping subtrees that
// share a nested-type declaration, is safe.
func Destroy(n *Node) {
	if n == nil || n.destroyed {
		return
	}
	n.destroyed = true

	switch n.Kind {
	case KindComplex:
		for _, f := range n.Fields {
			Destroy(f.Type)
		}
	case KindSequence:
		Destroy(n.Elem)
	case KindTypedPointer:
		Destroy(n.Target)
		// KindReference: Target is non-owning, never torn down here.
	}
	for _, child := range n.nested {
		Destroy(child)
	}
}

// NestedNames returns the names n has declared locally, sorted for
// deterministic traversal (e.g. by the printer).
func (n *Node) NestedNames() []string {
	if n == nil || len(n.nested) == 0 {
		return nil
	}
	names := make([]string, 0, len(n.nested))
	for name := range n.nested {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NestedLookup returns the node n declared locally under name, or nil.
func (n *Node) NestedLookup(name string) *Node {
	if n == nil {
		return nil
	}
	return n.nested[name]
}

// String gives a compact one-line description, useful in error
// messages and debug logging.
func (n *Node) String() string {
	if n == nil {
		return "<nil>"
	}
	if n.Name != "" {
		return fmt.Sprintf("%s(%s)", n.Kind, n.Name)
	}
	return n.Kind.String()
}
