package cache

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestSetThenGet(t *testing.T) {
	c := NewLocal(zerolog.Nop())
	ctx := context.Background()

	c.Set(ctx, "lol/summoner/abc", []byte(`{"puuid":"abc"}`), time.Minute)

	data, ok := c.Get(ctx, "lol/summoner/abc")
	require.True(t, ok)
	require.JSONEq(t, `{"puuid":"abc"}`, string(data))
}

func TestGetMissingKey(t *testing.T) {
	c := NewLocal(zerolog.Nop())

	_, ok := c.Get(context.Background(), "nope")
	require.False(t, ok)
}

func TestExpiredEntryIsAMiss(t *testing.T) {
	c := NewLocal(zerolog.Nop())
	ctx := context.Background()

	now := time.Now()
	c.SetClock(func() time.Time { return now })
	c.Set(ctx, "k", []byte("v"), 30*time.Second)

	c.SetClock(func() time.Time { return now.Add(29 * time.Second) })
	_, ok := c.Get(ctx, "k")
	require.True(t, ok)

	c.SetClock(func() time.Time { return now.Add(30 * time.Second) })
	_, ok = c.Get(ctx, "k")
	require.False(t, ok)
}

func TestSetOverwritesExpiredEntry(t *testing.T) {
	c := NewLocal(zerolog.Nop())
	ctx := context.Background()

	now := time.Now()
	c.SetClock(func() time.Time { return now })
	c.Set(ctx, "k", []byte("old"), time.Second)

	now = now.Add(time.Minute)
	c.Set(ctx, "k", []byte("new"), time.Minute)

	data, ok := c.Get(ctx, "k")
	require.True(t, ok)
	require.Equal(t, "new", string(data))
}

func TestZeroTTLIsNotStored(t *testing.T) {
	c := NewLocal(zerolog.Nop())
	ctx := context.Background()

	c.Set(ctx, "k", []byte("v"), 0)

	_, ok := c.Get(ctx, "k")
	require.False(t, ok)
}

func TestRedisSecondsRoundsUpWithFloor(t *testing.T) {
	require.Equal(t, int64(1), redisSeconds(100*time.Millisecond))
	require.Equal(t, int64(1), redisSeconds(time.Second))
	require.Equal(t, int64(2), redisSeconds(1100*time.Millisecond))
	require.Equal(t, int64(60), redisSeconds(time.Minute))
}
