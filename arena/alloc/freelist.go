package alloc

import (
	"fmt"
	"log/slog"

	"github.com/joshuapare/arenakit/arena"
	"github.com/joshuapare/arenakit/internal/buf"
	"github.com/joshuapare/arenakit/internal/format"
	"github.com/joshuapare/arenakit/internal/logger"
)

// Allocator is a first-fit allocator whose free list lives inside the arena.
type Allocator struct {
	a    *arena.Arena
	data []byte
	own  bool // Close releases a

	// head is the offset of the first free header, or format.NoNext.
	head int

	// live maps the header offset of every outstanding allocation to its
	// requested size and the payload bytes it actually occupies.
	live map[int]liveBlock

	mode ValidationMode
	log  *slog.Logger

	stats Stats
}

type liveBlock struct {
	size     int
	capacity int
}

// New takes over a and installs a single free block covering all of it.
//
// The previous contents of a are not inspected: building a second
// Allocator over the same arena silently discards the first one's state,
// so construct exactly one per arena.
func New(a *arena.Arena, opts *Options) (*Allocator, error) {
	if a == nil || a.Closed() {
		return nil, ErrClosed
	}
	o := DefaultOptions()
	if opts != nil {
		o = *opts
	}
	if o.Logger == nil {
		o.Logger = logger.L
	}

	fa := &Allocator{
		a:    a,
		data: a.Bytes(),
		head: 0,
		live: make(map[int]liveBlock),
		mode: o.Validation,
		log:  o.Logger,
	}
	if err := format.PutFree(fa.data, 0, len(fa.data)-format.HeaderSize, format.NoNext); err != nil {
		return nil, fmt.Errorf("alloc: install initial block: %w", err)
	}
	fa.log.Debug("arena initialized",
		"size", len(fa.data),
		"free", len(fa.data)-format.HeaderSize,
		"mode", fa.mode.String())
	return fa, nil
}

// Init maps a fresh arena of size bytes and returns an Allocator that owns
// it; Close releases the mapping.
func Init(size int, opts *Options) (*Allocator, error) {
	a, err := arena.New(size)
	if err != nil {
		return nil, err
	}
	fa, err := New(a, opts)
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	fa.own = true
	return fa, nil
}

// Arena returns the region being managed.
func (fa *Allocator) Arena() *arena.Arena { return fa.a }

// Size returns the arena size in bytes.
func (fa *Allocator) Size() int { return fa.a.Size() }

// Mode returns the Free validation mode.
func (fa *Allocator) Mode() ValidationMode { return fa.mode }

// Close releases the arena if the Allocator created it (Init), and makes
// every later operation fail with ErrClosed.
func (fa *Allocator) Close() error {
	fa.data = nil
	fa.live = nil
	fa.head = format.NoNext
	if fa.own {
		return fa.a.Close()
	}
	return nil
}

func (fa *Allocator) closed() bool {
	return fa.data == nil || fa.a.Closed()
}

// Alloc reserves n payload bytes from the first free block that can hold
// them. When none can, it returns Nil and ErrNoSpace and nothing changes.
//
// The returned slice covers exactly n bytes; its contents are whatever the
// arena held there before.
func (fa *Allocator) Alloc(n int) (Ptr, []byte, error) {
	if fa.closed() {
		return Nil, nil, ErrClosed
	}
	fa.stats.AllocCalls++
	if n <= 0 {
		return Nil, nil, fmt.Errorf("%w: %d", ErrBadSize, n)
	}

	prev := format.NoNext
	var found format.Header
	err := fa.walk(func(_ int, h format.Header) bool {
		if h.Size >= n {
			found = h
			return false
		}
		prev = h.Offset
		return true
	})
	if err != nil {
		return Nil, nil, err
	}
	if found.Size < n {
		fa.stats.FailedAllocs++
		fa.log.Warn("no free block available", "size", n)
		return Nil, nil, fmt.Errorf("%w: size %d", ErrNoSpace, n)
	}

	off := found.Offset
	capacity := found.Size
	if found.Size > n+format.HeaderSize {
		// Carve the remainder into its own free block in the same list slot.
		rest := off + format.HeaderSize + n
		if err := format.PutFree(fa.data, rest, found.Size-n-format.HeaderSize, found.Next); err != nil {
			return Nil, nil, fmt.Errorf("alloc: split at %d: %w", rest, err)
		}
		if err := fa.relink(prev, rest); err != nil {
			return Nil, nil, err
		}
		capacity = n
		fa.stats.Splits++
	} else {
		if err := fa.relink(prev, found.Next); err != nil {
			return Nil, nil, err
		}
		fa.stats.Splices++
	}

	if err := format.PutAllocated(fa.data, off, n); err != nil {
		return Nil, nil, fmt.Errorf("alloc: mark %d allocated: %w", off, err)
	}
	fa.live[off] = liveBlock{size: n, capacity: capacity}
	fa.stats.BytesAllocated += int64(n)

	p := Ptr(off + format.HeaderSize)
	payload, _ := buf.Slice(fa.data, int(p), n)
	fa.log.Debug("alloc", "size", n, "ptr", p, "capacity", capacity)
	return p, payload, nil
}

// Free returns p's block to the head of the free list. Free(Nil) does
// nothing. A pointer that fails validation is reported with ErrInvalidFree
// and leaves the allocator unchanged.
func (fa *Allocator) Free(p Ptr) error {
	if p == Nil {
		return nil
	}
	if fa.closed() {
		return ErrClosed
	}
	fa.stats.FreeCalls++

	off := int(p) - format.HeaderSize
	if off < 0 || int(p) >= len(fa.data) || !buf.Has(fa.data, off, format.HeaderSize) {
		return fa.reject(p, fmt.Errorf("%w: %w: ptr %d", ErrInvalidFree, ErrOutOfBounds, p))
	}

	link, err := format.ReadLink(fa.data, off)
	if err != nil {
		return fa.reject(p, fmt.Errorf("%w: %w", ErrInvalidFree, err))
	}
	lb, tracked := fa.live[off]
	if link != format.Magic || (fa.mode == ValidateStrict && !tracked) {
		return fa.reject(p, fmt.Errorf("%w: ptr %s", ErrInvalidFree, ID(int(p))))
	}

	size := lb.size
	if !tracked {
		// Sentinel-only mode trusts the header's size word.
		h, err := format.ReadHeader(fa.data, off)
		if err != nil || h.Size > len(fa.data)-h.Payload() {
			return fa.reject(p, fmt.Errorf("%w: ptr %s: bad size", ErrInvalidFree, ID(int(p))))
		}
		size = h.Size
	}

	if err := format.PutFree(fa.data, off, size, fa.head); err != nil {
		return fmt.Errorf("alloc: free %d: %w", off, err)
	}
	fa.head = off
	if tracked {
		delete(fa.live, off)
		fa.stats.DeadBytes += lb.capacity - lb.size
	}
	fa.stats.BytesFreed += int64(size)
	fa.log.Debug("free", "ptr", p, "size", size)
	return nil
}

// Payload returns the bytes of the live allocation at p.
func (fa *Allocator) Payload(p Ptr) ([]byte, error) {
	if fa.closed() {
		return nil, ErrClosed
	}
	off := int(p) - format.HeaderSize
	lb, ok := fa.live[off]
	if !ok {
		return nil, fmt.Errorf("%w: ptr %s", ErrInvalidFree, ID(int(p)))
	}
	link, err := format.ReadLink(fa.data, off)
	if err != nil || link != format.Magic {
		return nil, fmt.Errorf("%w: ptr %s: header overwritten", ErrInvalidFree, ID(int(p)))
	}
	payload, _ := buf.Slice(fa.data, int(p), lb.size)
	return payload, nil
}

func (fa *Allocator) reject(p Ptr, err error) error {
	fa.stats.InvalidFrees++
	fa.log.Warn("not a pointer to an allocated block", "ptr", int(p), "err", err)
	return err
}

// relink points prev's successor (or the head, when prev is NoNext) at next.
func (fa *Allocator) relink(prev, next int) error {
	if prev == format.NoNext {
		fa.head = next
		return nil
	}
	if err := format.PutNext(fa.data, prev, next); err != nil {
		return fmt.Errorf("alloc: relink %d: %w", prev, err)
	}
	return nil
}

// walk visits free headers from the head in list order until fn returns
// false. It fails with ErrCorruptList on a header that does not fit inside
// the arena, or on a chain longer than the arena could hold.
func (fa *Allocator) walk(fn func(i int, h format.Header) bool) error {
	limit := len(fa.data)/format.HeaderSize + 1
	cur := fa.head
	for i := 0; cur != format.NoNext; i++ {
		if i >= limit {
			return fmt.Errorf("%w: chain longer than %d nodes (cycle?)", ErrCorruptList, limit)
		}
		// A node reached through the list is free whatever its link word holds.
		h, err := format.ReadFree(fa.data, cur)
		if err != nil {
			return fmt.Errorf("%w: node %d: %w", ErrCorruptList, i, err)
		}
		if h.Size > len(fa.data)-h.Payload() {
			return fmt.Errorf("%w: node %d at %s overruns the arena", ErrCorruptList, i, ID(cur))
		}
		if !fn(i, h) {
			return nil
		}
		cur = h.Next
	}
	return nil
}
