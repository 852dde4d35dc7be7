package alloc

import (
	"errors"

	"github.com/joshuapare/arenakit/arena"
)

var (
	// ErrNoSpace indicates that no free block large enough was found.
	ErrNoSpace = errors.New("alloc: no free block large enough")

	// ErrBadSize indicates a non-positive allocation request.
	ErrBadSize = errors.New("alloc: size must be positive")

	// ErrInvalidFree indicates a pointer that does not refer to a live allocation.
	ErrInvalidFree = errors.New("alloc: not a pointer to an allocated block")

	// ErrOutOfBounds indicates a pointer whose header lies outside the arena.
	ErrOutOfBounds = errors.New("alloc: pointer outside arena")

	// ErrCorruptList indicates the free list no longer describes a valid chain.
	ErrCorruptList = errors.New("alloc: free list corrupted")

	// ErrClosed indicates use of an allocator whose arena has been closed.
	ErrClosed = arena.ErrClosed
)
