package format

import (
	"fmt"
	"math"

	"github.com/joshuapare/arenakit/internal/buf"
)

// Kind tags a decoded header as free or allocated.
type Kind uint8

const (
	KindFree Kind = iota
	KindAllocated
)

func (k Kind) String() string {
	switch k {
	case KindFree:
		return "free"
	case KindAllocated:
		return "allocated"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// MarshalText renders the kind by name in JSON and text encodings.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Header is the decoded form of the sixteen header bytes at Offset.
//
// For a free header Size is the usable payload and Next the offset of the
// following free header (NoNext at the tail). For an allocated header Size
// is the requested payload and Next is NoNext.
type Header struct {
	Offset int
	Kind   Kind
	Size   int
	Next   int
}

// Payload returns the offset of the first byte after the header.
func (h Header) Payload() int { return h.Offset + HeaderSize }

// ReadHeader decodes the header at off, taking a link word equal to Magic
// to mean allocated. A free header whose successor happens to sit at offset
// Magic decodes as allocated too; headers reached through the free list
// must be decoded with ReadFree instead. It fails only when the header does
// not fit in b or a word cannot be represented as an int offset; whether the
// header is plausible for a particular arena is up to the caller.
func ReadHeader(b []byte, off int) (Header, error) {
	if _, err := buf.CheckSpan(len(b), off, HeaderSize); err != nil {
		return Header{}, fmt.Errorf("header at %d: %w (%v)", off, ErrTruncated, err)
	}
	size := ReadU64(b, off+SizeFieldOffset)
	link := ReadU64(b, off+LinkFieldOffset)
	if size > math.MaxInt {
		return Header{}, fmt.Errorf("header at %d: size word 0x%x: %w", off, size, ErrBadHeader)
	}

	h := Header{Offset: off, Size: int(size), Next: NoNext}
	switch {
	case link == Magic:
		h.Kind = KindAllocated
	case link == NoLink:
		h.Kind = KindFree
	case link > math.MaxInt:
		return Header{}, fmt.Errorf("header at %d: link word 0x%x: %w", off, link, ErrBadHeader)
	default:
		h.Kind = KindFree
		h.Next = int(link)
	}
	return h, nil
}

// ReadFree decodes the header at off as a free header whatever its link
// word holds, so a successor at offset Magic is an ordinary link.
func ReadFree(b []byte, off int) (Header, error) {
	if _, err := buf.CheckSpan(len(b), off, HeaderSize); err != nil {
		return Header{}, fmt.Errorf("free header at %d: %w (%v)", off, ErrTruncated, err)
	}
	size := ReadU64(b, off+SizeFieldOffset)
	link := ReadU64(b, off+LinkFieldOffset)
	if size > math.MaxInt {
		return Header{}, fmt.Errorf("free header at %d: size word 0x%x: %w", off, size, ErrBadHeader)
	}
	h := Header{Offset: off, Kind: KindFree, Size: int(size), Next: NoNext}
	switch {
	case link == NoLink:
	case link > math.MaxInt:
		return Header{}, fmt.Errorf("free header at %d: link word 0x%x: %w", off, link, ErrBadHeader)
	default:
		h.Next = int(link)
	}
	return h, nil
}

// ReadLink returns the raw link word of the header at off.
func ReadLink(b []byte, off int) (uint64, error) {
	if !buf.Has(b, off, HeaderSize) {
		return 0, fmt.Errorf("header at %d: %w", off, ErrTruncated)
	}
	return ReadU64(b, off+LinkFieldOffset), nil
}

// PutFree writes a free header at off with the given payload size and
// successor (NoNext for the tail).
func PutFree(b []byte, off, size, next int) error {
	if !buf.Has(b, off, HeaderSize) {
		return fmt.Errorf("free header at %d: %w", off, ErrTruncated)
	}
	if size < 0 || next < NoNext {
		return fmt.Errorf("free header at %d: size=%d next=%d: %w", off, size, next, ErrBadHeader)
	}
	link := NoLink
	if next != NoNext {
		link = uint64(next)
	}
	PutU64(b, off+SizeFieldOffset, uint64(size))
	PutU64(b, off+LinkFieldOffset, link)
	return nil
}

// PutAllocated writes an allocated header at off recording the requested
// payload size and Magic.
func PutAllocated(b []byte, off, size int) error {
	if !buf.Has(b, off, HeaderSize) {
		return fmt.Errorf("allocated header at %d: %w", off, ErrTruncated)
	}
	if size < 0 {
		return fmt.Errorf("allocated header at %d: size=%d: %w", off, size, ErrBadHeader)
	}
	PutU64(b, off+SizeFieldOffset, uint64(size))
	PutU64(b, off+LinkFieldOffset, Magic)
	return nil
}

// PutNext rewrites only the link word of the free header at off.
func PutNext(b []byte, off, next int) error {
	if !buf.Has(b, off, HeaderSize) {
		return fmt.Errorf("free header at %d: %w", off, ErrTruncated)
	}
	if next < NoNext {
		return fmt.Errorf("free header at %d: next=%d: %w", off, next, ErrBadHeader)
	}
	link := NoLink
	if next != NoNext {
		link = uint64(next)
	}
	PutU64(b, off+LinkFieldOffset, link)
	return nil
}
