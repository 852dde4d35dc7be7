package alloc

import (
	"fmt"
	"log/slog"
	"strings"
)

// Ptr is the arena offset of an allocation's first payload byte.
type Ptr int

// Nil is the null pointer. No payload starts at offset 0 because a header
// always precedes it.
const Nil Ptr = 0

// Heap is the operation surface drivers program against.
type Heap interface {
	// Alloc reserves n payload bytes and returns the pointer plus a slice
	// over exactly those bytes.
	Alloc(n int) (Ptr, []byte, error)

	// Free releases a pointer returned by Alloc. Free(Nil) is a no-op.
	Free(p Ptr) error

	// Payload returns the bytes of a live allocation.
	Payload(p Ptr) ([]byte, error)

	// Dump reports the current free list.
	Dump() (Report, error)
}

// ValidationMode selects how Free recognises a live allocation.
type ValidationMode uint8

const (
	// ValidateStrict requires the header to be recorded as live and to
	// carry the allocated sentinel.
	ValidateStrict ValidationMode = iota

	// ValidateSentinel checks the sentinel only.
	ValidateSentinel
)

func (m ValidationMode) String() string {
	switch m {
	case ValidateStrict:
		return "strict"
	case ValidateSentinel:
		return "sentinel"
	default:
		return fmt.Sprintf("ValidationMode(%d)", uint8(m))
	}
}

// ParseValidationMode accepts "strict" or "sentinel".
func ParseValidationMode(s string) (ValidationMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "strict", "":
		return ValidateStrict, nil
	case "sentinel", "legacy":
		return ValidateSentinel, nil
	default:
		return 0, fmt.Errorf("alloc: unknown validation mode %q", s)
	}
}

// Options configures an Allocator.
type Options struct {
	// Validation selects the Free validity check.
	// Default: ValidateStrict
	Validation ValidationMode

	// Logger receives warnings for failed allocations and rejected frees.
	// Default: logger.L
	Logger *slog.Logger
}

// DefaultOptions returns the options New uses when given nil.
func DefaultOptions() Options {
	return Options{Validation: ValidateStrict}
}
