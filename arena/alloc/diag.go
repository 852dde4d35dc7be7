package alloc

import (
	"fmt"
	"sort"

	"github.com/joshuapare/arenakit/internal/format"
)

// Node is one free block as seen by Dump.
type Node struct {
	Index  int `json:"index"`
	Offset int `json:"offset"`
	Size   int `json:"size"`
	Next   int `json:"next"` // format.NoNext at the tail
}

// Report is a read-only snapshot of the free list in list order.
type Report struct {
	Nodes     []Node `json:"nodes"`
	Head      int    `json:"head"` // format.NoNext when the list is empty
	FreeBytes int    `json:"free_bytes"`
}

// ID renders an arena offset as an opaque identifier: 0x-prefixed hex, or
// "nil" for format.NoNext.
func ID(off int) string {
	if off == format.NoNext {
		return "nil"
	}
	return fmt.Sprintf("0x%04x", off)
}

// Dump walks the free list from the head and reports every node, the head
// and the total free payload bytes. It never mutates the allocator.
func (fa *Allocator) Dump() (Report, error) {
	if fa.closed() {
		return Report{Head: format.NoNext}, ErrClosed
	}
	r := Report{Nodes: []Node{}, Head: fa.head}
	err := fa.walk(func(i int, h format.Header) bool {
		r.Nodes = append(r.Nodes, Node{Index: i, Offset: h.Offset, Size: h.Size, Next: h.Next})
		r.FreeBytes += h.Size
		return true
	})
	return r, err
}

// FreeBytes sums the payload sizes of all free blocks.
func (fa *Allocator) FreeBytes() (int, error) {
	if fa.closed() {
		return 0, ErrClosed
	}
	total := 0
	err := fa.walk(func(_ int, h format.Header) bool {
		total += h.Size
		return true
	})
	return total, err
}

// Head returns the offset of the first free header, or format.NoNext.
func (fa *Allocator) Head() int { return fa.head }

// Block is one managed extent of the arena.
type Block struct {
	Offset   int         `json:"offset"`   // header offset
	Kind     format.Kind `json:"kind"`     // free or allocated
	Size     int         `json:"size"`     // size recorded in the header
	Capacity int         `json:"capacity"` // payload bytes the extent spans
}

// End returns the offset one past the extent.
func (b Block) End() int { return b.Offset + format.HeaderSize + b.Capacity }

// Blocks returns every free block (from the list) and every live
// allocation (from the live table), sorted by offset. Dead bytes are not
// covered by any block.
func (fa *Allocator) Blocks() ([]Block, error) {
	if fa.closed() {
		return nil, ErrClosed
	}
	blocks := make([]Block, 0, len(fa.live)+8)
	err := fa.walk(func(_ int, h format.Header) bool {
		blocks = append(blocks, Block{Offset: h.Offset, Kind: format.KindFree, Size: h.Size, Capacity: h.Size})
		return true
	})
	if err != nil {
		return nil, err
	}
	for off, lb := range fa.live {
		blocks = append(blocks, Block{Offset: off, Kind: format.KindAllocated, Size: lb.size, Capacity: lb.capacity})
	}
	sort.Slice(blocks, func(i, j int) bool { return blocks[i].Offset < blocks[j].Offset })
	return blocks, nil
}

// Accounting splits the arena into the byte categories that must add up to
// its size.
type Accounting struct {
	ArenaSize   int `json:"arena_size"`
	FreeBlocks  int `json:"free_blocks"`
	FreeBytes   int `json:"free_bytes"`
	LiveBlocks  int `json:"live_blocks"`
	LiveBytes   int `json:"live_bytes"` // capacity, including absorbed slack
	HeaderBytes int `json:"header_bytes"`
	DeadBytes   int `json:"dead_bytes"`
}

// Total returns the sum of all categories.
func (ac Accounting) Total() int {
	return ac.FreeBytes + ac.LiveBytes + ac.HeaderBytes + ac.DeadBytes
}

// Balanced reports whether the categories cover the arena exactly.
func (ac Accounting) Balanced() bool { return ac.Total() == ac.ArenaSize }

// Account tallies the current state.
func (fa *Allocator) Account() (Accounting, error) {
	if fa.closed() {
		return Accounting{}, ErrClosed
	}
	ac := Accounting{ArenaSize: len(fa.data), DeadBytes: fa.stats.DeadBytes}
	err := fa.walk(func(_ int, h format.Header) bool {
		ac.FreeBlocks++
		ac.FreeBytes += h.Size
		return true
	})
	if err != nil {
		return ac, err
	}
	for _, lb := range fa.live {
		ac.LiveBlocks++
		ac.LiveBytes += lb.capacity
	}
	ac.HeaderBytes = (ac.FreeBlocks + ac.LiveBlocks) * format.HeaderSize
	return ac, nil
}
