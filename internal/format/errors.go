package format

import "errors"

var (
	// ErrTruncated indicates the buffer lacked the bytes required for a header.
	ErrTruncated = errors.New("format: truncated buffer")
	// ErrBadHeader indicates a header word that cannot describe a block in any arena.
	ErrBadHeader = errors.New("format: malformed header")
)
