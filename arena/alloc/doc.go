// Package alloc provides a first-fit free-list allocator over a single
// fixed-size arena.
//
// # Overview
//
// Every managed region is preceded by a sixteen byte header (see
// internal/format). Free headers are threaded into a singly linked list
// whose links live inside the arena itself; the list head is held by the
// Allocator. Pointers handed out are byte offsets (Ptr) into the arena.
//
//	fa, err := alloc.Init(4096, nil)
//	if err != nil {
//	    return err
//	}
//	defer fa.Close()
//
//	p, buf, err := fa.Alloc(4)
//	if err != nil {
//	    return err // alloc.ErrNoSpace when nothing fits
//	}
//	copy(buf, "abc")
//
//	err = fa.Free(p)
//
// # Allocation
//
// Alloc walks the list from the head and takes the first block whose
// capacity is at least the request. When the block can also host another
// header plus at least one byte, it is split and the remainder takes the
// block's place in the list. Otherwise the whole block is spliced out and
// the slack stays with the allocation.
//
// # Deallocation
//
// Free pushes the block onto the head of the list, so the most recently
// freed block is the first candidate for reuse. Adjacent free blocks are
// never merged; fragmentation accumulates for the life of the arena.
// Slack absorbed by an exact-fit allocation is not returned to the list
// and is reported as dead bytes.
//
// Two validation modes decide what Free accepts:
//
//   - ValidateStrict (default): the header must be recorded as live and
//     still carry format.Magic. Repeated frees are always rejected.
//   - ValidateSentinel: only format.Magic is checked. A freed header's link
//     word occupies the sentinel's bytes, so a repeated free is rejected
//     only as long as that link differs from format.Magic.
//
// # Diagnostics
//
// Dump walks the free list without mutating anything and returns a Report
// (see package printer for rendering). Blocks and Account expose the data
// package verify checks invariants against.
//
// # Thread Safety
//
// Allocator instances are not thread-safe. Callers must synchronize access
// externally.
//
// # Related Packages
//
//   - github.com/joshuapare/arenakit/arena: Region ownership and mapping
//   - github.com/joshuapare/arenakit/arena/verify: Invariant checks
//   - github.com/joshuapare/arenakit/arena/printer: Report rendering
//   - github.com/joshuapare/arenakit/internal/format: Header layout
package alloc
