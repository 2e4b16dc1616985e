package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	poll_errors "pollapp/pkg/errors"

	goredis "github.com/redis/go-redis/v9"
)

// Cache key patterns:
// - poll:{poll_id}:votes - HASH option_id -> count, results TTL

// VoteCountCache stores aggregated vote counts per poll as Redis hashes.
// Every error it returns wraps poll_errors.ErrCacheUnavailable.
type VoteCountCache struct {
	client *goredis.Client
}

// NewVoteCountCache creates a new vote count cache
func NewVoteCountCache(client *goredis.Client) *VoteCountCache {
	return &VoteCountCache{client: client}
}

// VoteCountKey is the hash key holding the counts of one poll.
func VoteCountKey(pollID int64) string {
	return fmt.Sprintf("poll:%d:votes", pollID)
}

// Exists reports whether counts are cached for the poll.
func (c *VoteCountCache) Exists(ctx context.Context, pollID int64) (bool, error) {
	n, err := c.client.Exists(ctx, VoteCountKey(pollID)).Result()
	if err != nil {
		return false, unavailable("exists", err)
	}
	return n > 0, nil
}

// ReadCounts returns every field of the poll's hash. A missing key yields
// an empty map.
func (c *VoteCountCache) ReadCounts(ctx context.Context, pollID int64) (map[string]string, error) {
	fields, err := c.client.HGetAll(ctx, VoteCountKey(pollID)).Result()
	if err != nil && !errors.Is(err, goredis.Nil) {
		return nil, unavailable("hgetall", err)
	}
	return fields, nil
}

// WriteCounts replaces the poll's hash and sets its expiry in one transaction.
func (c *VoteCountCache) WriteCounts(ctx context.Context, pollID int64, fields map[string]string, ttl time.Duration) error {
	if len(fields) == 0 {
		return nil
	}
	values := make([]interface{}, 0, 2*len(fields))
	for k, v := range fields {
		values = append(values, k, v)
	}

	key := VoteCountKey(pollID)
	_, err := c.client.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.HSet(ctx, key, values...)
		pipe.Expire(ctx, key, ttl)
		return nil
	})
	if err != nil {
		return unavailable("hset", err)
	}
	return nil
}

// Delete removes the poll's cached counts.
func (c *VoteCountCache) Delete(ctx context.Context, pollID int64) error {
	if err := c.client.Del(ctx, VoteCountKey(pollID)).Err(); err != nil {
		return unavailable("del", err)
	}
	return nil
}

// Ping checks if Redis is available
func (c *VoteCountCache) Ping(ctx context.Context) error {
	if err := c.client.Ping(ctx).Err(); err != nil {
		return unavailable("ping", err)
	}
	return nil
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", poll_errors.ErrCacheUnavailable, op, err)
}
