// Package format describes the in-arena layout of block headers. The goal is
// to keep header decoding focused and allocation-free so the allocator works
// purely in terms of byte offsets into the arena it owns.
//
// Header layout (little-endian):
//
//	Offset  Size  Free block                     Allocated block
//	0x00    8     usable payload bytes           requested payload bytes
//	0x08    8     offset of next free header     Magic
//	              (NoLink at the tail)
//
// The same sixteen bytes are reinterpreted as ownership changes; the link
// word equal to Magic is what marks a header as allocated.
package format

const (
	// PageSize is the granularity of arena sizes. The arena must be a
	// positive multiple of it.
	PageSize = 4096

	// HeaderSize is the number of bytes preceding every managed region,
	// free or allocated.
	HeaderSize = 16

	// SizeFieldOffset is the header-relative offset of the size word.
	SizeFieldOffset = 0x00

	// LinkFieldOffset is the header-relative offset of the link word, which
	// holds either the next free header offset or Magic.
	LinkFieldOffset = 0x08
)

const (
	// Magic marks a header as currently allocated.
	Magic uint64 = 123456789

	// NoLink is the link word of the last free header in the list.
	NoLink uint64 = ^uint64(0)

	// NoNext is the decoded form of NoLink.
	NoNext = -1
)
