package alloc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/arenakit/internal/format"
)

func TestDoubleFreeStrictAlwaysFails(t *testing.T) {
	fa := newTestAllocator(t, testArenaSize, ValidateStrict)

	p, _, err := fa.Alloc(24)
	require.NoError(t, err)
	require.NoError(t, fa.Free(p))

	// Even with the freed link word forged to look allocated, the live table
	// no longer knows p.
	format.PutU64(fa.Arena().Bytes(), int(p)-hdr+format.LinkFieldOffset, format.Magic)
	before := takeSnapshot(fa)
	require.ErrorIs(t, fa.Free(p), ErrInvalidFree)
	requireUnchanged(t, fa, before)
}

func TestDoubleFreeSentinelDependsOnLinkBits(t *testing.T) {
	fa := newTestAllocator(t, testArenaSize, ValidateSentinel)
	data := fa.Arena().Bytes()

	p, _, err := fa.Alloc(24)
	require.NoError(t, err)
	require.NoError(t, fa.Free(p))

	// The freed header's link now holds the old head offset, which is not
	// Magic, so the repeat is caught.
	require.ErrorIs(t, fa.Free(p), ErrInvalidFree)

	// If that link happened to equal Magic the check would pass and the
	// block would be pushed a second time.
	format.PutU64(data, int(p)-hdr+format.LinkFieldOffset, format.Magic)
	require.NoError(t, fa.Free(p))
	assert.Equal(t, int(p)-hdr, fa.Head())

	h, err := format.ReadHeader(data, int(p)-hdr)
	require.NoError(t, err)
	assert.Equal(t, 24, h.Size)
	assert.Equal(t, int(p)-hdr, h.Next, "the block now links to itself")

	_, err = fa.Dump()
	require.ErrorIs(t, err, ErrCorruptList)
}

func TestSentinelModeAcceptsForgedHeader(t *testing.T) {
	forge := func(t *testing.T, fa *Allocator) Ptr {
		t.Helper()
		p, payload, err := fa.Alloc(64)
		require.NoError(t, err)
		// A payload that happens to contain a header-shaped pattern.
		format.PutU64(payload, format.SizeFieldOffset, 8)
		format.PutU64(payload, format.LinkFieldOffset, format.Magic)
		return p + hdr
	}

	t.Run("sentinel", func(t *testing.T) {
		fa := newTestAllocator(t, testArenaSize, ValidateSentinel)
		forged := forge(t, fa)
		require.NoError(t, fa.Free(forged))
		assert.Equal(t, int(forged)-hdr, fa.Head())
	})

	t.Run("strict", func(t *testing.T) {
		fa := newTestAllocator(t, testArenaSize, ValidateStrict)
		forged := forge(t, fa)
		before := takeSnapshot(fa)
		require.ErrorIs(t, fa.Free(forged), ErrInvalidFree)
		requireUnchanged(t, fa, before)
	})
}

func TestSentinelModeRejectsOversizedForgery(t *testing.T) {
	fa := newTestAllocator(t, testArenaSize, ValidateSentinel)
	p, payload, err := fa.Alloc(64)
	require.NoError(t, err)
	format.PutU64(payload, format.SizeFieldOffset, testArenaSize)
	format.PutU64(payload, format.LinkFieldOffset, format.Magic)

	require.ErrorIs(t, fa.Free(p+hdr), ErrInvalidFree)
}

func TestSentinelModeNormalFreeMatchesStrict(t *testing.T) {
	strict := newTestAllocator(t, testArenaSize, ValidateStrict)
	legacy := newTestAllocator(t, testArenaSize, ValidateSentinel)

	for _, fa := range []*Allocator{strict, legacy} {
		a, _, err := fa.Alloc(10)
		require.NoError(t, err)
		b, _, err := fa.Alloc(20)
		require.NoError(t, err)
		require.NoError(t, fa.Free(a))
		require.NoError(t, fa.Free(b))
		_, _, err = fa.Alloc(5)
		require.NoError(t, err)
	}
	require.Equal(t, freeShape(t, strict), freeShape(t, legacy))
	require.Equal(t, strict.Arena().Bytes(), legacy.Arena().Bytes())
}
