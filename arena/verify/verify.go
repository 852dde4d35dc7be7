package verify

import (
	"fmt"

	"github.com/joshuapare/arenakit/arena"
	"github.com/joshuapare/arenakit/arena/alloc"
	"github.com/joshuapare/arenakit/internal/format"
)

// Inspector is the read-only view of an allocator the checks need.
// *alloc.Allocator implements it.
type Inspector interface {
	Arena() *arena.Arena
	Dump() (alloc.Report, error)
	Blocks() ([]alloc.Block, error)
	Account() (alloc.Accounting, error)
}

// ValidationError describes the first invariant a check found broken.
type ValidationError struct {
	Type    string
	Message string
	Offset  int
	Details map[string]any
}

func (e *ValidationError) Error() string {
	if e.Offset >= 0 {
		return fmt.Sprintf("%s at offset 0x%X: %s", e.Type, e.Offset, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// AllInvariants runs FreeList, Extents and Accounting in that order and
// returns the first error encountered, or nil if all checks pass.
func AllInvariants(in Inspector) error {
	if err := FreeList(in); err != nil {
		return err
	}
	if err := Extents(in); err != nil {
		return err
	}
	return Accounting(in)
}

// FreeList validates the shape of the free list.
func FreeList(in Inspector) error {
	r, err := in.Dump()
	if err != nil {
		return &ValidationError{Type: "FreeList", Message: err.Error(), Offset: -1}
	}
	size := len(in.Arena().Bytes())

	if len(r.Nodes) == 0 {
		if r.Head != format.NoNext {
			return &ValidationError{
				Type:    "FreeList",
				Message: "empty list with a head",
				Offset:  r.Head,
			}
		}
	} else if r.Head != r.Nodes[0].Offset {
		return &ValidationError{
			Type:    "FreeList",
			Message: fmt.Sprintf("head %s is not the first node %s", alloc.ID(r.Head), alloc.ID(r.Nodes[0].Offset)),
			Offset:  r.Head,
		}
	}

	seen := make(map[int]int, len(r.Nodes))
	total := 0
	for i, n := range r.Nodes {
		if n.Index != i {
			return &ValidationError{
				Type:    "FreeList",
				Message: fmt.Sprintf("node %d reports index %d", i, n.Index),
				Offset:  n.Offset,
			}
		}
		if prev, dup := seen[n.Offset]; dup {
			return &ValidationError{
				Type:    "FreeList",
				Message: fmt.Sprintf("offset listed twice (nodes %d and %d)", prev, i),
				Offset:  n.Offset,
				Details: map[string]any{"first": prev, "second": i},
			}
		}
		seen[n.Offset] = i
		if n.Offset < 0 || n.Offset+format.HeaderSize+n.Size > size {
			return &ValidationError{
				Type:    "FreeList",
				Message: fmt.Sprintf("node %d (size %d) extends past arena end %d", i, n.Size, size),
				Offset:  n.Offset,
			}
		}
		wantNext := format.NoNext
		if i+1 < len(r.Nodes) {
			wantNext = r.Nodes[i+1].Offset
		}
		if n.Next != wantNext {
			return &ValidationError{
				Type:    "FreeList",
				Message: fmt.Sprintf("node %d links to %s, next node is %s", i, alloc.ID(n.Next), alloc.ID(wantNext)),
				Offset:  n.Offset,
			}
		}
		total += n.Size
	}
	if total != r.FreeBytes {
		return &ValidationError{
			Type:    "FreeList",
			Message: fmt.Sprintf("free bytes %d, nodes sum to %d", r.FreeBytes, total),
			Offset:  -1,
			Details: map[string]any{"reported": r.FreeBytes, "sum": total},
		}
	}
	return nil
}

// Extents validates that free and live blocks are disjoint, inside the
// arena, and described by matching headers.
func Extents(in Inspector) error {
	blocks, err := in.Blocks()
	if err != nil {
		return &ValidationError{Type: "Extents", Message: err.Error(), Offset: -1}
	}
	data := in.Arena().Bytes()

	prevEnd := 0
	for i, b := range blocks {
		if b.Offset < prevEnd {
			return &ValidationError{
				Type:    "Extents",
				Message: fmt.Sprintf("%s block overlaps previous block ending at 0x%X", b.Kind, prevEnd),
				Offset:  b.Offset,
				Details: map[string]any{"index": i, "prev_end": prevEnd},
			}
		}
		if b.Capacity < b.Size || b.End() > len(data) {
			return &ValidationError{
				Type:    "Extents",
				Message: fmt.Sprintf("%s block size=%d capacity=%d does not fit arena of %d", b.Kind, b.Size, b.Capacity, len(data)),
				Offset:  b.Offset,
			}
		}
		// Free blocks come from the list, so their link word is a successor
		// even when it equals Magic.
		read := format.ReadHeader
		if b.Kind == format.KindFree {
			read = format.ReadFree
		}
		h, err := read(data, b.Offset)
		if err != nil {
			return &ValidationError{Type: "Extents", Message: err.Error(), Offset: b.Offset}
		}
		if h.Kind != b.Kind || h.Size != b.Size {
			return &ValidationError{
				Type:    "Extents",
				Message: fmt.Sprintf("header says %s/%d, allocator recorded %s/%d", h.Kind, h.Size, b.Kind, b.Size),
				Offset:  b.Offset,
			}
		}
		prevEnd = b.End()
	}
	return nil
}

// Accounting validates that every byte of the arena is attributed exactly once.
func Accounting(in Inspector) error {
	ac, err := in.Account()
	if err != nil {
		return &ValidationError{Type: "Accounting", Message: err.Error(), Offset: -1}
	}
	if !ac.Balanced() {
		return &ValidationError{
			Type:    "Accounting",
			Message: fmt.Sprintf("categories total %d bytes, arena has %d", ac.Total(), ac.ArenaSize),
			Offset:  -1,
			Details: map[string]any{
				"total":        ac.Total(),
				"arena_size":   ac.ArenaSize,
				"free_bytes":   ac.FreeBytes,
				"live_bytes":   ac.LiveBytes,
				"header_bytes": ac.HeaderBytes,
				"dead_bytes":   ac.DeadBytes,
			},
		}
	}
	return nil
}
