package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryTokenDenylist(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2030, 1, 1, 12, 0, 0, 0, time.UTC)
	denylist := &MemoryTokenDenylist{
		revoked: make(map[string]time.Time),
		now:     func() time.Time { return now },
	}

	revoked, err := denylist.IsRevoked(ctx, "abc")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, denylist.Revoke(ctx, "abc", time.Hour))
	require.NoError(t, denylist.Revoke(ctx, "expired", 0))

	revoked, err = denylist.IsRevoked(ctx, "abc")
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = denylist.IsRevoked(ctx, "expired")
	require.NoError(t, err)
	assert.False(t, revoked)

	now = now.Add(time.Hour)
	revoked, err = denylist.IsRevoked(ctx, "abc")
	require.NoError(t, err)
	assert.False(t, revoked)
	assert.Empty(t, denylist.revoked)
}
