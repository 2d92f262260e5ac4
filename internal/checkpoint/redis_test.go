package checkpoint

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	return New(mr.Addr())
}

func TestGetMissingReturnsNotFound(t *testing.T) {
	store := newTestStore(t)
	_, ok, err := store.Get(context.Background(), "ethereum", "bridge", "0xabc")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestSetThenGetRoundTrips(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	want := Point{MaxBlockStored: 13136427, TxIndex: 3}
	require.NoError(t, store.Set(ctx, "ethereum", "bridge", "0xabc", want))

	got, ok, err := store.Get(ctx, "ethereum", "bridge", "0xabc")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, want, got)
}

func TestNamespacesAreIndependent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "ethereum", "bridge", "0xabc", Point{MaxBlockStored: 100}))
	require.NoError(t, store.Set(ctx, "ethereum", "nusdpool", "0xabc", Point{MaxBlockStored: 200}))

	bridge, _, err := store.Get(ctx, "ethereum", "bridge", "0xabc")
	require.NoError(t, err)
	pool, _, err := store.Get(ctx, "ethereum", "nusdpool", "0xabc")
	require.NoError(t, err)

	require.Equal(t, uint64(100), bridge.MaxBlockStored)
	require.Equal(t, uint64(200), pool.MaxBlockStored)
}
