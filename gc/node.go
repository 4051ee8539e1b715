// ABOUTME: Node header layout, node kinds, and index-based references
// ABOUTME: Defines Ref, NodeID, Header, Shape, and the object footprint rules

package gc

import "fmt"

// NodeID identifies the shape of a heap object. Only the low 7 bits are stored.
type NodeID uint8

// Built-in node kinds. Tree-node shapes use ids in [KindUser, MaxNodeID].
const (
	KindFree NodeID = iota
	KindChunk
	KindVector
	KindString
	KindUser

	MaxNodeID NodeID = 0x7f
)

func (id NodeID) String() string {
	switch id {
	case KindFree:
		return "free"
	case KindChunk:
		return "chunk"
	case KindVector:
		return "vector"
	case KindString:
		return "string"
	}
	return fmt.Sprintf("node%d", uint8(id))
}

// Header is the common word at the start of every heap object:
// mark bit, 7-bit id, 7-bit secondary id, and two flag bits.
type Header uint32

const (
	hdrMark     Header = 1 << 0
	hdrIDShift         = 1
	hdrSecShift        = 8
	hdrField    Header = 0x7f
	hdrFlag1    Header = 1 << 15
	hdrFlag2    Header = 1 << 16
)

func makeHeader(id NodeID, sec uint8) Header {
	return (Header(id)&hdrField)<<hdrIDShift | (Header(sec)&hdrField)<<hdrSecShift
}

// ID returns the node kind.
func (h Header) ID() NodeID { return NodeID((h >> hdrIDShift) & hdrField) }

// SecondaryID returns the subtype-specific discriminator.
func (h Header) SecondaryID() uint8 { return uint8((h >> hdrSecShift) & hdrField) }

// Flag1 reports the first generic flag bit.
func (h Header) Flag1() bool { return h&hdrFlag1 != 0 }

// Flag2 reports the second generic flag bit.
func (h Header) Flag2() bool { return h&hdrFlag2 != 0 }

func (h Header) marked(sense bool) bool { return (h&hdrMark != 0) == sense }

func (h *Header) setMark(sense bool) {
	if sense {
		*h |= hdrMark
	} else {
		*h &^= hdrMark
	}
}

func (h *Header) setFlag(bit Header, on bool) {
	if on {
		*h |= bit
	} else {
		*h &^= bit
	}
}

// Ref names a heap object by slot index and slot generation.
// The zero value is Nil. A Ref outlives its object only as a stale value:
// once the slot is reclaimed its generation moves on and lookups fail.
type Ref uint64

// Nil is the empty reference.
const Nil Ref = 0

func makeRef(idx, gen uint32) Ref { return Ref(uint64(gen)<<32 | (uint64(idx) + 1)) }

func (r Ref) index() uint32 { return uint32(r) - 1 }

func (r Ref) gen() uint32 { return uint32(r >> 32) }

// IsNil reports whether r is the empty reference.
func (r Ref) IsNil() bool { return r == Nil }

func (r Ref) String() string {
	if r == Nil {
		return "nil"
	}
	return fmt.Sprintf("#%d.%d", r.index(), r.gen())
}

// Shape describes an allocation request.
type Shape struct {
	ID          NodeID
	SecondaryID uint8
	// Bytes is the inline payload length. Fixed for the object's lifetime.
	Bytes int
	// Children is the number of reference fields. Fixed for the object's lifetime.
	Children int
}

const (
	wordSize   = 8
	headerSize = wordSize // header + generation
	lengthSize = wordSize
	refSize    = wordSize
)

func align(n int) int { return (n + wordSize - 1) &^ (wordSize - 1) }

// footprint is the accounted size of an object of shape s.
func footprint(s Shape) int {
	return align(headerSize + lengthSize + s.Bytes + s.Children*refSize)
}

func (s Shape) validate() error {
	switch {
	case s.ID == KindFree || s.ID > MaxNodeID:
		return fmt.Errorf("%w: id %d", ErrBadShape, s.ID)
	case s.SecondaryID > uint8(hdrField):
		return fmt.Errorf("%w: secondary id %d", ErrBadShape, s.SecondaryID)
	case s.Bytes < 0 || s.Children < 0:
		return fmt.Errorf("%w: negative size", ErrBadShape)
	case (s.ID == KindChunk || s.ID == KindString) && s.Children != 0:
		return fmt.Errorf("%w: %v cannot hold children", ErrBadShape, s.ID)
	case s.ID == KindVector && s.Bytes != 0:
		return fmt.Errorf("%w: vector cannot hold bytes", ErrBadShape)
	}
	return nil
}
