package format

import "github.com/joshuapare/arenakit/internal/buf"

// Word access for the little-endian header fields.
//
// Callers are expected to have bounds-checked off; an off past the end of
// b panics like any slice expression.

// PutU64 writes a uint64 value to the buffer at the specified offset in little-endian format.
func PutU64(b []byte, off int, v uint64) {
	buf.PutU64LE(b[off:], v)
}

// ReadU64 reads a uint64 value from the buffer at the specified offset in little-endian format.
func ReadU64(b []byte, off int) uint64 {
	return buf.U64LE(b[off:])
}
