// Package accessor implements the Accessors (component C6): alloc,
// field/element addressing, sequence capacity/length management, and
// typed-pointer/text value handling over raw value blobs typed by a
// typetree.Node.
//
// "Pointer" slots (TypedPointer, Text, Sequence.buf) are 8 bytes wide
// per the ABI Oracle, matching the native ABI, but never hold a real
// Go pointer: storing one inside a []byte would hide it from the
// garbage collector. Instead each slot holds an opaque handle into a
// package-level table, which is exercised the same way a real pointer
// would be (store once, follow many times) without unsafe.Pointer.
package accessor

import (
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/celix-project/dynitype/internal/abi"
	"github.com/celix-project/dynitype/internal/dfilog"
	"github.com/celix-project/dynitype/internal/errs"
	"github.com/celix-project/dynitype/internal/typetree"
)

// Blob is a raw value buffer whose layout is described by a
// typetree.Node.
type Blob []byte

var (
	handleMu   sync.Mutex
	handles    = map[uint64]any{}
	nextHandle uint64 = 1
)

func storeHandle(v any) uint64 {
	handleMu.Lock()
	defer handleMu.Unlock()
	h := nextHandle
	nextHandle++
	handles[h] = v
	return h
}

func loadHandle(h uint64) (any, bool) {
	handleMu.Lock()
	defer handleMu.Unlock()
	v, ok := handles[h]
	return v, ok
}

func dropHandle(h uint64) {
	handleMu.Lock()
	defer handleMu.Unlock()
	delete(handles, h)
}

func putHandle(loc Blob, h uint64) { binary.LittleEndian.PutUint64(loc, h) }
func getHandleAt(loc Blob) uint64  { return binary.LittleEndian.Uint64(loc) }

// Accessor groups the ABI Oracle and logger every navigation/alloc
// primitive in this package needs.
type Accessor struct {
	oracle abi.Oracle
	log    dfilog.Logger
}

// New builds an Accessor. A nil oracle defaults to abi.DefaultOracle;
// a nil logger discards everything.
func New(oracle abi.Oracle, logger dfilog.Logger) *Accessor {
	if oracle == nil {
		oracle = abi.DefaultOracle{}
	}
	if logger == nil {
		logger = dfilog.Nop{}
	}
	return &Accessor{oracle: oracle, log: logger}
}

func mustKind(n *typetree.Node, want typetree.Kind, op string) *typetree.Node {
	s := typetree.Strip(n)
	if s == nil || s.Kind != want {
		panic(fmt.Sprintf("accessor: %s called on a %v node, want %v", op, kindOf(s), want))
	}
	return s
}

func kindOf(n *typetree.Node) string {
	if n == nil {
		return "<nil>"
	}
	return n.Kind.String()
}

// Alloc allocates size(N) zero-initialized bytes. Not permitted on a
// Reference directly — the caller must strip first, mirroring the
// original's assert() contract.
func (a *Accessor) Alloc(n *typetree.Node) (Blob, error) {
	if n.IsReference() {
		panic("accessor: alloc called on a Reference node; strip first")
	}
	return make(Blob, n.Size), nil
}

// ComplexIndexForName delegates to the Node's linear field search.
func (a *Accessor) ComplexIndexForName(n *typetree.Node, name string) int {
	return n.IndexForName(name)
}

// ComplexFieldType returns field i's type, Reference-stripped.
func (a *Accessor) ComplexFieldType(n *typetree.Node, i int) *typetree.Node {
	c := mustKind(n, typetree.KindComplex, "complex_field_type")
	return typetree.Strip(c.Fields[i].Type)
}

// ComplexFieldLoc returns the sub-slice of blob holding field i.
func (a *Accessor) ComplexFieldLoc(n *typetree.Node, blob Blob, i int) (Blob, error) {
	c := mustKind(n, typetree.KindComplex, "complex_field_loc")
	if i < 0 || i >= len(c.Fields) {
		return nil, errs.New(errs.CodeOutOfRange, "field index %d out of range [0,%d)", i, len(c.Fields))
	}
	off := c.Offsets[i]
	sz := typetree.Strip(c.Fields[i].Type).Size
	return blob[off : off+sz], nil
}

// ComplexSetField copies size(field_i) bytes from src into the field's
// location inside blob.
func (a *Accessor) ComplexSetField(n *typetree.Node, blob Blob, i int, src []byte) error {
	loc, err := a.ComplexFieldLoc(n, blob, i)
	if err != nil {
		return err
	}
	copy(loc, src)
	return nil
}

// SequenceAlloc initializes the {cap, len, buf} header in blob,
// allocating cap*size(element) zeroed bytes for buf.
func (a *Accessor) SequenceAlloc(n *typetree.Node, blob Blob, capacity uint32) error {
	s := mustKind(n, typetree.KindSequence, "sequence_alloc")
	elemSize := typetree.Strip(s.Elem).Size

	binary.LittleEndian.PutUint32(blob[0:4], capacity)
	binary.LittleEndian.PutUint32(blob[4:8], 0)

	buf := make([]byte, uint64(capacity)*uint64(elemSize))
	h := storeHandle(buf)
	putHandle(blob[8:16], h)
	return nil
}

// SequenceLen reads the len field of a sequence value.
func (a *Accessor) SequenceLen(blob Blob) uint32 { return binary.LittleEndian.Uint32(blob[4:8]) }

// SequenceCap reads the cap field of a sequence value.
func (a *Accessor) SequenceCap(blob Blob) uint32 { return binary.LittleEndian.Uint32(blob[0:4]) }

func (a *Accessor) sequenceBuf(blob Blob) ([]byte, error) {
	h := getHandleAt(blob[8:16])
	v, ok := loadHandle(h)
	if !ok {
		return nil, errs.New(errs.CodeMemoryError, "sequence buffer handle %d not found", h)
	}
	return v.([]byte), nil
}

// SequenceElemLoc returns element i's location. It fails OutOfRange
// when i >= cap; if len <= i < cap it succeeds but logs a warning,
// since the slot hasn't been written yet.
func (a *Accessor) SequenceElemLoc(n *typetree.Node, blob Blob, i uint32) (Blob, error) {
	s := mustKind(n, typetree.KindSequence, "sequence_elem_loc")
	capv := a.SequenceCap(blob)
	if i >= capv {
		return nil, errs.New(errs.CodeOutOfRange, "sequence index %d out of range [0,%d)", i, capv)
	}
	if i >= a.SequenceLen(blob) {
		a.log.Warnf("sequence_elem_loc: index %d is in-bounds but unwritten (len=%d)", i, a.SequenceLen(blob))
	}

	buf, err := a.sequenceBuf(blob)
	if err != nil {
		return nil, err
	}
	elemSize := typetree.Strip(s.Elem).Size
	off := uint64(i) * uint64(elemSize)
	return Blob(buf[off : off+uint64(elemSize)]), nil
}

// SequencePushSlot grows len by one and returns the new last
// element's location, or fails OutOfRange at full capacity without
// changing len.
func (a *Accessor) SequencePushSlot(n *typetree.Node, blob Blob) (Blob, error) {
	capv := a.SequenceCap(blob)
	lenv := a.SequenceLen(blob)
	if lenv >= capv {
		return nil, errs.New(errs.CodeOutOfRange, "sequence full: len==cap==%d", capv)
	}
	binary.LittleEndian.PutUint32(blob[4:8], lenv+1)
	return a.SequenceElemLoc(n, blob, lenv)
}

// SequenceElementType returns the Reference-stripped element type.
func (a *Accessor) SequenceElementType(n *typetree.Node) *typetree.Node {
	s := mustKind(n, typetree.KindSequence, "sequence_element_type")
	return typetree.Strip(s.Elem)
}

// TypedPointerTargetType returns the Reference-stripped pointee type.
func (a *Accessor) TypedPointerTargetType(n *typetree.Node) *typetree.Node {
	p := mustKind(n, typetree.KindTypedPointer, "typed_pointer_target_type")
	return typetree.Strip(p.Target)
}

// TypedPointerSet stores a value behind loc's pointer slot, replacing
// whatever was previously there.
func (a *Accessor) TypedPointerSet(loc Blob, value []byte) {
	cp := make([]byte, len(value))
	copy(cp, value)
	putHandle(loc, storeHandle(cp))
}

// TypedPointerGet retrieves the bytes previously stored by
// TypedPointerSet.
func (a *Accessor) TypedPointerGet(loc Blob) ([]byte, error) {
	h := getHandleAt(loc)
	v, ok := loadHandle(h)
	if !ok {
		return nil, errs.New(errs.CodeMemoryError, "typed pointer handle %d not found", h)
	}
	return v.([]byte), nil
}

// TextInit duplicates s into owned storage and stores a handle to it
// at loc.
func (a *Accessor) TextInit(n *typetree.Node, loc Blob, s string) error {
	mustKind(n, typetree.KindText, "text_init")
	cp := []byte(s)
	putHandle(loc, storeHandle(cp))
	return nil
}

// TextValue reads back the string stored by TextInit.
func (a *Accessor) TextValue(loc Blob) (string, error) {
	h := getHandleAt(loc)
	v, ok := loadHandle(h)
	if !ok {
		return "", errs.New(errs.CodeMemoryError, "text handle %d not found", h)
	}
	return string(v.([]byte)), nil
}

// SimpleSet copies size(N) bytes from src into loc.
func (a *Accessor) SimpleSet(n *typetree.Node, loc Blob, src []byte) error {
	s := mustKind(n, typetree.KindSimple, "simple_set")
	if uint32(len(src)) < s.Size {
		return errs.New(errs.CodeMemoryError, "simple_set: src shorter than size %d", s.Size)
	}
	copy(loc, src[:s.Size])
	return nil
}

// DestroyValue recursively frees everything a value typed by n owns:
// sequence buffers (down to element values, including nested
// sequences/text) and text storage. The spec mandates this be fully
// implemented rather than left as a stub.
func (a *Accessor) DestroyValue(n *typetree.Node, blob Blob) error {
	s := typetree.Strip(n)
	switch s.Kind {
	case typetree.KindText:
		h := getHandleAt(blob)
		dropHandle(h)
	case typetree.KindTypedPointer:
		h := getHandleAt(blob)
		dropHandle(h)
	case typetree.KindSequence:
		lenv := a.SequenceLen(blob)
		elem := typetree.Strip(s.Elem)
		if buf, err := a.sequenceBuf(blob); err == nil {
			elemSize := elem.Size
			for i := uint32(0); i < lenv; i++ {
				off := uint64(i) * uint64(elemSize)
				_ = a.DestroyValue(s.Elem, Blob(buf[off:off+uint64(elemSize)]))
			}
		}
		dropHandle(getHandleAt(blob[8:16]))
	case typetree.KindComplex:
		for i, f := range s.Fields {
			off := s.Offsets[i]
			sz := typetree.Strip(f.Type).Size
			_ = a.DestroyValue(f.Type, blob[off:off+sz])
		}
	}
	return nil
}
