package redis

import (
	"context"
	"testing"
	"time"

	poll_errors "pollapp/pkg/errors"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*VoteCountCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewVoteCountCache(client), mr
}

func TestVoteCountKey(t *testing.T) {
	assert.Equal(t, "poll:12:votes", VoteCountKey(12))
}

func TestVoteCountCacheRoundTrip(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := context.Background()

	ok, err := cache.Exists(ctx, 1)
	require.NoError(t, err)
	assert.False(t, ok)

	fields, err := cache.ReadCounts(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, fields)

	require.NoError(t, cache.WriteCounts(ctx, 1, map[string]string{"3": "2", "4": "1"}, time.Minute))

	ok, err = cache.Exists(ctx, 1)
	require.NoError(t, err)
	assert.True(t, ok)

	fields, err = cache.ReadCounts(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"3": "2", "4": "1"}, fields)
	assert.Equal(t, time.Minute, mr.TTL(VoteCountKey(1)))
}

func TestVoteCountCacheWriteReplacesFields(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.WriteCounts(ctx, 1, map[string]string{"3": "2", "4": "1"}, time.Minute))
	require.NoError(t, cache.WriteCounts(ctx, 1, map[string]string{"5": "7"}, time.Minute))

	fields, err := cache.ReadCounts(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"5": "7"}, fields)
}

func TestVoteCountCacheSkipsEmptyWrite(t *testing.T) {
	cache, mr := newTestCache(t)

	require.NoError(t, cache.WriteCounts(context.Background(), 1, map[string]string{}, time.Minute))

	assert.False(t, mr.Exists(VoteCountKey(1)))
}

func TestVoteCountCacheEntriesExpire(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.WriteCounts(ctx, 1, map[string]string{"1": "1"}, 60*time.Second))
	mr.FastForward(61 * time.Second)

	ok, err := cache.Exists(ctx, 1)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVoteCountCacheDelete(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.WriteCounts(ctx, 1, map[string]string{"1": "1"}, time.Minute))
	require.NoError(t, cache.WriteCounts(ctx, 2, map[string]string{"9": "1"}, time.Minute))
	require.NoError(t, cache.Delete(ctx, 1))
	require.NoError(t, cache.Delete(ctx, 404))

	assert.False(t, mr.Exists(VoteCountKey(1)))
	assert.True(t, mr.Exists(VoteCountKey(2)))
}

func TestVoteCountCacheUnavailable(t *testing.T) {
	cache, mr := newTestCache(t)
	require.NoError(t, cache.Ping(context.Background()))
	mr.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	_, err := cache.Exists(ctx, 1)
	assert.ErrorIs(t, err, poll_errors.ErrCacheUnavailable)
	_, err = cache.ReadCounts(ctx, 1)
	assert.ErrorIs(t, err, poll_errors.ErrCacheUnavailable)
	err = cache.WriteCounts(ctx, 1, map[string]string{"1": "1"}, time.Minute)
	assert.ErrorIs(t, err, poll_errors.ErrCacheUnavailable)
	assert.ErrorIs(t, cache.Delete(ctx, 1), poll_errors.ErrCacheUnavailable)
	assert.ErrorIs(t, cache.Ping(ctx), poll_errors.ErrCacheUnavailable)
}

func TestConnect(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx := context.Background()

	cfg := Config{Host: mr.Host(), Port: mr.Port()}

	client, err := Connect(ctx, cfg, time.Second)
	require.NoError(t, err)
	_ = client.Close()

	mr.Close()
	_, err = Connect(ctx, cfg, 200*time.Millisecond)
	assert.Error(t, err)
}
