package arena

import (
	"fmt"
	"io"
	"os"

	"github.com/joshuapare/arenakit/internal/format"
	"github.com/joshuapare/arenakit/internal/mmfile"
)

// Test hooks for MustNew's fatal path.
var (
	exit               = os.Exit
	fatalOut io.Writer = os.Stderr
	mapAnon            = mmfile.MapAnon
)

// Arena is one fixed-size region backed by an anonymous mapping.
type Arena struct {
	data    []byte
	size    int
	release func() error
}

// New maps size zeroed bytes. size must be a positive multiple of
// format.PageSize.
func New(size int) (*Arena, error) {
	if !format.IsPageMultiple(size) {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSize, size)
	}
	data, release, err := mapAnon(size)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMapFailed, err)
	}
	return &Arena{data: data, size: size, release: release}, nil
}

// MustNew is like New but terminates the process when the region cannot
// be obtained. There is no retry or fallback.
func MustNew(size int) *Arena {
	a, err := New(size)
	if err != nil {
		fmt.Fprintf(fatalOut, "arena: %v\n", err)
		exit(ExitCode(err))
		return nil
	}
	return a
}

// Bytes returns the whole region, or nil after Close.
func (a *Arena) Bytes() []byte { return a.data }

// Size returns the region size fixed at creation.
func (a *Arena) Size() int { return a.size }

// Closed reports whether Close has been called.
func (a *Arena) Closed() bool { return a.data == nil }

// Close returns the region to the OS. Later calls are no-ops. Slices
// previously returned by Bytes must not be used afterwards.
func (a *Arena) Close() error {
	if a == nil || a.data == nil {
		return nil
	}
	a.data = nil
	if a.release == nil {
		return nil
	}
	err := a.release()
	a.release = nil
	return err
}
