package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_SetGet(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	require.NoError(t, m.Set(ctx, "k", []int{1, 2}, time.Minute))

	var got []int
	require.NoError(t, m.Get(ctx, "k", &got))
	assert.Equal(t, []int{1, 2}, got)

	require.NoError(t, m.Delete(ctx, "k"))
	assert.ErrorIs(t, m.Get(ctx, "k", &got), ErrCacheMiss)
}

func TestMemory_Expiry(t *testing.T) {
	m := NewMemory()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, m.Set(ctx, "k", "v", time.Minute))
	now = now.Add(2 * time.Minute)

	var got string
	assert.ErrorIs(t, m.Get(ctx, "k", &got), ErrCacheMiss)
}

func TestKeys(t *testing.T) {
	assert.Equal(t, "stocks:AAPL:history", HistoryKey("aapl"))
	assert.Equal(t, "refresh:abc", RefreshTokenKey("abc"))
}
