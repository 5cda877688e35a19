// Package abi supplies canonical size and alignment information for the
// primitive kinds the descriptor grammar recognizes, and composes
// aggregate layouts for the Type Engine's Complex and Sequence nodes.
//
// The default table targets the LP64 ABI (amd64, arm64): 8-byte
// pointers, 4-byte native ints. A caller embedding the engine on a
// different target supplies its own Oracle.
package abi

import "github.com/celix-project/dynitype/internal/layout"

// Primitive identifies one of the simple descriptor kinds.
type Primitive int

const (
	F32 Primitive = iota
	F64
	I8
	U8
	I16
	U16
	I32
	U32
	I64
	U64 // quirk: descriptor 'j' is stored and sized as signed 64-bit, see DescriptorFor
	ISize
	Ptr
)

// Member is the layout package's aggregate member, re-exported so
// callers of Oracle never need to import internal/layout directly.
type Member = layout.Member

// PrimitiveForDescriptor maps a grammar letter to its Primitive. The
// bool is false for any letter that isn't a recognized simple type.
func PrimitiveForDescriptor(c byte) (Primitive, bool) {
	switch c {
	case 'F':
		return F32, true
	case 'D':
		return F64, true
	case 'B':
		return I8, true
	case 'b':
		return U8, true
	case 'S':
		return I16, true
	case 's':
		return U16, true
	case 'I':
		return I32, true
	case 'i':
		return U32, true
	case 'J':
		return I64, true
	case 'j':
		// Aliased: the original treats both J and j as signed 64-bit.
		return U64, true
	case 'N':
		return ISize, true
	case 'P':
		return Ptr, true
	default:
		return 0, false
	}
}

// DescriptorFor returns the grammar letter a Primitive was parsed
// from. J maps to I64 and j to U64 on the way in; DescriptorFor
// returns 'J' for both, since the two are sized identically and the
// original treats the pair as signed.
func DescriptorFor(p Primitive) byte {
	switch p {
	case F32:
		return 'F'
	case F64:
		return 'D'
	case I8:
		return 'B'
	case U8:
		return 'b'
	case I16:
		return 'S'
	case U16:
		return 's'
	case I32:
		return 'I'
	case U32:
		return 'i'
	case I64, U64:
		return 'J'
	case ISize:
		return 'N'
	case Ptr:
		return 'P'
	default:
		return 0
	}
}

// Oracle is the injected ABI layout collaborator described in spec §6:
// size/align for primitives, and struct composition for aggregates.
type Oracle interface {
	Size(p Primitive) uint32
	Align(p Primitive) uint32
	ComposeStruct(members []Member) (size, align uint32, offsets []uint32)
}

// DefaultOracle implements Oracle for the LP64 target.
type DefaultOracle struct{}

var sizes = map[Primitive]uint32{
	F32: 4, F64: 8,
	I8: 1, U8: 1,
	I16: 2, U16: 2,
	I32: 4, U32: 4,
	I64: 8, U64: 8,
	ISize: 4, // native C `int`, not a pointer-sized integer despite the name
	Ptr:   8,
}

// Align equals Size for every primitive in this table: none of them
// have a natural alignment smaller than their size on LP64.
func (DefaultOracle) Size(p Primitive) uint32 { return sizes[p] }

func (DefaultOracle) Align(p Primitive) uint32 { return sizes[p] }

func (DefaultOracle) ComposeStruct(members []Member) (size, align uint32, offsets []uint32) {
	return layout.Compose(members)
}
