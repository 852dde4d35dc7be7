package alloc

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/arenakit/internal/format"
)

const (
	testArenaSize = 4096
	hdr           = format.HeaderSize
)

// newTestAllocator maps a fresh arena and closes it when the test ends.
func newTestAllocator(t testing.TB, size int, mode ValidationMode) *Allocator {
	t.Helper()
	fa, err := Init(size, &Options{Validation: mode})
	require.NoError(t, err)
	t.Cleanup(func() { _ = fa.Close() })
	return fa
}

// newLoggedAllocator is newTestAllocator with warnings captured in a buffer.
func newLoggedAllocator(t testing.TB, mode ValidationMode) (*Allocator, *bytes.Buffer) {
	t.Helper()
	var logs bytes.Buffer
	l := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelWarn}))
	fa, err := Init(testArenaSize, &Options{Validation: mode, Logger: l})
	require.NoError(t, err)
	t.Cleanup(func() { _ = fa.Close() })
	return fa, &logs
}

// freeShape returns (offset, size) pairs of the free list in list order.
func freeShape(t testing.TB, fa *Allocator) [][2]int {
	t.Helper()
	r, err := fa.Dump()
	require.NoError(t, err)
	shape := make([][2]int, 0, len(r.Nodes))
	for _, n := range r.Nodes {
		shape = append(shape, [2]int{n.Offset, n.Size})
	}
	return shape
}

// snapshot copies the arena bytes and allocator bookkeeping so a test can
// assert that an operation changed nothing.
type snapshot struct {
	data  []byte
	head  int
	live  map[int]liveBlock
	stats Stats
}

func takeSnapshot(fa *Allocator) snapshot {
	live := make(map[int]liveBlock, len(fa.live))
	for k, v := range fa.live {
		live[k] = v
	}
	return snapshot{
		data:  bytes.Clone(fa.data),
		head:  fa.head,
		live:  live,
		stats: fa.Stats(),
	}
}

// requireUnchanged compares state against s, ignoring the call counters
// that every operation bumps.
func requireUnchanged(t testing.TB, fa *Allocator, s snapshot) {
	t.Helper()
	require.Equal(t, s.data, fa.data, "arena bytes changed")
	require.Equal(t, s.head, fa.head, "head changed")
	require.Equal(t, s.live, fa.live, "live table changed")
}

// requireBalanced asserts the accounting invariant.
func requireBalanced(t testing.TB, fa *Allocator) {
	t.Helper()
	ac, err := fa.Account()
	require.NoError(t, err)
	require.True(t, ac.Balanced(), "accounting %+v totals %d, arena %d", ac, ac.Total(), ac.ArenaSize)
}
