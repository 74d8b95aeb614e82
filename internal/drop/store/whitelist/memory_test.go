package whitelist

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInMemoryWhitelist(t *testing.T) {
	ctx := context.Background()
	wl := NewInMemory()

	ok, err := wl.Contains(ctx, "alice")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, wl.Set(ctx, "alice", true))
	ok, err = wl.Contains(ctx, "alice")
	require.NoError(t, err)
	require.True(t, ok)

	// Re-adding and removing are both idempotent.
	require.NoError(t, wl.Set(ctx, "alice", true))
	require.NoError(t, wl.Set(ctx, "alice", false))
	require.NoError(t, wl.Set(ctx, "alice", false))

	ok, err = wl.Contains(ctx, "alice")
	require.NoError(t, err)
	require.False(t, ok)
}
