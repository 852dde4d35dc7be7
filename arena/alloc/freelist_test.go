package alloc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/arenakit/arena"
	"github.com/joshuapare/arenakit/internal/format"
)

func TestInitInstallsSingleFreeBlock(t *testing.T) {
	fa := newTestAllocator(t, testArenaSize, ValidateStrict)

	require.Equal(t, [][2]int{{0, testArenaSize - hdr}}, freeShape(t, fa))
	require.Equal(t, 0, fa.Head())

	h, err := format.ReadHeader(fa.Arena().Bytes(), 0)
	require.NoError(t, err)
	assert.Equal(t, format.KindFree, h.Kind)
	assert.Equal(t, format.NoNext, h.Next)
	requireBalanced(t, fa)
}

func TestInitRejectsBadArenaSize(t *testing.T) {
	_, err := Init(1000, nil)
	require.ErrorIs(t, err, arena.ErrInvalidSize)
}

func TestNewOnClosedArena(t *testing.T) {
	a, err := arena.New(testArenaSize)
	require.NoError(t, err)
	require.NoError(t, a.Close())

	_, err = New(a, nil)
	require.ErrorIs(t, err, ErrClosed)
	_, err = New(nil, nil)
	require.ErrorIs(t, err, ErrClosed)
}

func TestNewDoesNotOwnBorrowedArena(t *testing.T) {
	a, err := arena.New(testArenaSize)
	require.NoError(t, err)
	defer a.Close()

	fa, err := New(a, nil)
	require.NoError(t, err)
	require.Equal(t, ValidateStrict, fa.Mode())
	require.NoError(t, fa.Close())
	require.False(t, a.Closed(), "Close must leave a borrowed arena mapped")
}

func TestAllocSplitsFirstBlock(t *testing.T) {
	fa := newTestAllocator(t, testArenaSize, ValidateStrict)

	p, payload, err := fa.Alloc(4)
	require.NoError(t, err)
	require.Equal(t, Ptr(hdr), p)
	require.Len(t, payload, 4)
	require.Equal(t, 4, cap(payload), "payload must not expose neighbouring bytes")

	want := testArenaSize - hdr - 4 - hdr
	require.Equal(t, [][2]int{{hdr + 4, want}}, freeShape(t, fa))

	h, err := format.ReadHeader(fa.Arena().Bytes(), 0)
	require.NoError(t, err)
	assert.Equal(t, format.KindAllocated, h.Kind)
	assert.Equal(t, 4, h.Size)
	assert.Equal(t, format.Magic, format.ReadU64(fa.Arena().Bytes(), format.LinkFieldOffset))

	s := fa.Stats()
	assert.Equal(t, 1, s.Splits)
	assert.Equal(t, 1, s.LiveBlocks)
	requireBalanced(t, fa)
}

func TestPayloadWritesLandInArena(t *testing.T) {
	fa := newTestAllocator(t, testArenaSize, ValidateStrict)

	p, payload, err := fa.Alloc(4)
	require.NoError(t, err)
	copy(payload, "abc\x00")

	got, err := fa.Payload(p)
	require.NoError(t, err)
	require.Equal(t, []byte("abc\x00"), got)
	require.Equal(t, []byte("abc\x00"), fa.Arena().Bytes()[int(p):int(p)+4])
}

func TestFreePushesOntoHead(t *testing.T) {
	fa := newTestAllocator(t, testArenaSize, ValidateStrict)

	p, _, err := fa.Alloc(4)
	require.NoError(t, err)
	require.NoError(t, fa.Free(p))

	rest := testArenaSize - 2*hdr - 4
	require.Equal(t, [][2]int{{0, 4}, {hdr + 4, rest}}, freeShape(t, fa))

	free, err := fa.FreeBytes()
	require.NoError(t, err)
	require.Equal(t, 4+rest, free)
	requireBalanced(t, fa)
}

func TestFreedBlockIsReusedFirst(t *testing.T) {
	fa := newTestAllocator(t, testArenaSize, ValidateStrict)

	a, _, err := fa.Alloc(32)
	require.NoError(t, err)
	b, _, err := fa.Alloc(32)
	require.NoError(t, err)
	_, _, err = fa.Alloc(32)
	require.NoError(t, err)

	require.NoError(t, fa.Free(a))
	require.NoError(t, fa.Free(b))

	// b was freed last, so it heads the list and is reused first.
	again, _, err := fa.Alloc(32)
	require.NoError(t, err)
	require.Equal(t, b, again)

	again, _, err = fa.Alloc(32)
	require.NoError(t, err)
	require.Equal(t, a, again)
	requireBalanced(t, fa)
}

func TestAllocExhaustionChangesNothing(t *testing.T) {
	fa, logs := newLoggedAllocator(t, ValidateStrict)

	_, _, err := fa.Alloc(4000)
	require.NoError(t, err)
	before := takeSnapshot(fa)

	p, payload, err := fa.Alloc(1000)
	require.ErrorIs(t, err, ErrNoSpace)
	require.Equal(t, Nil, p)
	require.Nil(t, payload)
	requireUnchanged(t, fa, before)

	require.Equal(t, 1, fa.Stats().FailedAllocs)
	require.Contains(t, logs.String(), "no free block available")
	require.Contains(t, logs.String(), "size=1000")
}

func TestAllocWhenListEmpty(t *testing.T) {
	fa := newTestAllocator(t, testArenaSize, ValidateStrict)

	_, _, err := fa.Alloc(testArenaSize - hdr)
	require.NoError(t, err)
	require.Equal(t, format.NoNext, fa.Head())

	_, _, err = fa.Alloc(1)
	require.ErrorIs(t, err, ErrNoSpace)
	requireBalanced(t, fa)
}

func TestAllocRejectsNonPositiveSize(t *testing.T) {
	fa := newTestAllocator(t, testArenaSize, ValidateStrict)
	before := takeSnapshot(fa)

	for _, n := range []int{0, -1} {
		p, _, err := fa.Alloc(n)
		require.ErrorIs(t, err, ErrBadSize)
		require.Equal(t, Nil, p)
	}
	requireUnchanged(t, fa, before)
}

func TestFreeNilIsNoop(t *testing.T) {
	fa := newTestAllocator(t, testArenaSize, ValidateStrict)
	_, _, err := fa.Alloc(8)
	require.NoError(t, err)
	before := takeSnapshot(fa)

	require.NoError(t, fa.Free(Nil))
	requireUnchanged(t, fa, before)
	require.Equal(t, 0, fa.Stats().FreeCalls)
}

func TestFreeInteriorPointerFails(t *testing.T) {
	for _, mode := range []ValidationMode{ValidateStrict, ValidateSentinel} {
		t.Run(mode.String(), func(t *testing.T) {
			fa, logs := newLoggedAllocator(t, mode)

			_, _, err := fa.Alloc(4)
			require.NoError(t, err)
			p, payload, err := fa.Alloc(4)
			require.NoError(t, err)
			copy(payload, "bos\x00")
			before := takeSnapshot(fa)

			err = fa.Free(p + 4)
			require.ErrorIs(t, err, ErrInvalidFree)
			requireUnchanged(t, fa, before)
			require.Equal(t, 1, fa.Stats().InvalidFrees)
			require.Contains(t, logs.String(), "not a pointer to an allocated block")
		})
	}
}

func TestFreeOutOfBounds(t *testing.T) {
	fa := newTestAllocator(t, testArenaSize, ValidateStrict)
	before := takeSnapshot(fa)

	for _, p := range []Ptr{1, hdr - 1, testArenaSize, testArenaSize + 100, -8} {
		err := fa.Free(p)
		require.ErrorIs(t, err, ErrInvalidFree, "ptr %d", p)
		require.ErrorIs(t, err, ErrOutOfBounds, "ptr %d", p)
	}
	requireUnchanged(t, fa, before)
}

func TestFreeNeverAllocatedPointer(t *testing.T) {
	fa := newTestAllocator(t, testArenaSize, ValidateStrict)
	// Header of the initial free block: its link is NoLink, not Magic.
	require.ErrorIs(t, fa.Free(Ptr(hdr)), ErrInvalidFree)
}

func TestPayloadRejectsFreedPointer(t *testing.T) {
	fa := newTestAllocator(t, testArenaSize, ValidateStrict)
	p, _, err := fa.Alloc(8)
	require.NoError(t, err)
	require.NoError(t, fa.Free(p))

	_, err = fa.Payload(p)
	require.ErrorIs(t, err, ErrInvalidFree)
}

func TestPayloadDetectsOverwrittenHeader(t *testing.T) {
	fa := newTestAllocator(t, testArenaSize, ValidateStrict)
	p, _, err := fa.Alloc(8)
	require.NoError(t, err)

	format.PutU64(fa.Arena().Bytes(), int(p)-hdr+format.LinkFieldOffset, 0)
	_, err = fa.Payload(p)
	require.ErrorIs(t, err, ErrInvalidFree)
	require.ErrorIs(t, fa.Free(p), ErrInvalidFree, "strict mode also needs the sentinel")
}

func TestClosedAllocator(t *testing.T) {
	fa, err := Init(testArenaSize, nil)
	require.NoError(t, err)
	p, _, err := fa.Alloc(8)
	require.NoError(t, err)

	require.NoError(t, fa.Close())
	require.True(t, fa.Arena().Closed())
	require.NoError(t, fa.Close())

	_, _, err = fa.Alloc(8)
	require.ErrorIs(t, err, ErrClosed)
	require.ErrorIs(t, fa.Free(p), ErrClosed)
	require.NoError(t, fa.Free(Nil))
	_, err = fa.Payload(p)
	require.ErrorIs(t, err, ErrClosed)
	_, err = fa.Dump()
	require.ErrorIs(t, err, ErrClosed)
	_, err = fa.FreeBytes()
	require.ErrorIs(t, err, ErrClosed)
	_, err = fa.Blocks()
	require.ErrorIs(t, err, ErrClosed)
	_, err = fa.Account()
	require.ErrorIs(t, err, ErrClosed)

	s := fa.Stats()
	assert.Equal(t, 1, s.AllocCalls, "calls after Close are not counted")
	assert.Equal(t, 0, s.FreeCalls, "neither closed nor nil frees are counted")
}

func TestCallCountersIncludeRejectedCalls(t *testing.T) {
	fa := newTestAllocator(t, testArenaSize, ValidateStrict)

	_, _, err := fa.Alloc(0)
	require.ErrorIs(t, err, ErrBadSize)
	_, _, err = fa.Alloc(testArenaSize)
	require.ErrorIs(t, err, ErrNoSpace)
	require.ErrorIs(t, fa.Free(Ptr(3)), ErrInvalidFree)
	require.NoError(t, fa.Free(Nil))

	s := fa.Stats()
	assert.Equal(t, 2, s.AllocCalls)
	assert.Equal(t, 1, s.FreeCalls)
	assert.Equal(t, 1, s.FailedAllocs)
	assert.Equal(t, 1, s.InvalidFrees)
}

func TestCorruptListIsReported(t *testing.T) {
	fa := newTestAllocator(t, testArenaSize, ValidateStrict)
	p, _, err := fa.Alloc(8)
	require.NoError(t, err)
	require.NoError(t, fa.Free(p))

	// Point the head block back at itself.
	require.NoError(t, format.PutNext(fa.Arena().Bytes(), fa.Head(), fa.Head()))

	_, err = fa.Dump()
	require.ErrorIs(t, err, ErrCorruptList)
	_, _, err = fa.Alloc(testArenaSize)
	require.ErrorIs(t, err, ErrCorruptList)
}

// TestFreeNodeLinkingToMagicOffset covers an arena large enough for a free
// header to sit at offset Magic: a block pushed in front of it carries a
// link word equal to the allocated sentinel and must still walk as free.
func TestFreeNodeLinkingToMagicOffset(t *testing.T) {
	// Smallest page multiple with room for a header at offset Magic.
	size := 30141 * format.PageSize
	fa := newTestAllocator(t, size, ValidateStrict)
	magic := int(format.Magic)

	p, _, err := fa.Alloc(magic - hdr)
	require.NoError(t, err)
	require.Equal(t, magic, fa.Head())

	require.NoError(t, fa.Free(p))
	require.Equal(t, [][2]int{{0, magic - hdr}, {magic, size - magic - hdr}}, freeShape(t, fa))

	q, _, err := fa.Alloc(8)
	require.NoError(t, err)
	require.Equal(t, p, q)
	require.Equal(t, [][2]int{{hdr + 8, magic - 2*hdr - 8}, {magic, size - magic - hdr}}, freeShape(t, fa))

	free, err := fa.FreeBytes()
	require.NoError(t, err)
	require.Equal(t, size-3*hdr-8, free)
	requireBalanced(t, fa)

	// The sentinel check alone cannot tell this free header from a live one.
	require.ErrorIs(t, fa.Free(Ptr(hdr+8+hdr)), ErrInvalidFree)
}

func TestLargerArenaUsesWholeRegion(t *testing.T) {
	fa := newTestAllocator(t, 4*testArenaSize, ValidateStrict)
	require.Equal(t, 4*testArenaSize, fa.Size())

	_, _, err := fa.Alloc(3 * testArenaSize)
	require.NoError(t, err)
	requireBalanced(t, fa)
}

func TestParseValidationMode(t *testing.T) {
	tests := []struct {
		in   string
		want ValidationMode
		err  bool
	}{
		{"strict", ValidateStrict, false},
		{"", ValidateStrict, false},
		{"Sentinel", ValidateSentinel, false},
		{"legacy", ValidateSentinel, false},
		{"loose", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseValidationMode(tt.in)
		if tt.err {
			require.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		require.Equal(t, tt.want, got, tt.in)
	}
	require.Equal(t, "ValidationMode(9)", ValidationMode(9).String())
}
