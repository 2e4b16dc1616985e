package services

import (
	"context"
	"strconv"
	"time"

	"pollapp/pkg/logger"
)

// CountCache is the key-value backend of the results cache. Implementations
// report every failure as an error; the service treats each one as a miss.
type CountCache interface {
	Exists(ctx context.Context, pollID int64) (bool, error)
	ReadCounts(ctx context.Context, pollID int64) (map[string]string, error)
	WriteCounts(ctx context.Context, pollID int64, fields map[string]string, ttl time.Duration) error
	Delete(ctx context.Context, pollID int64) error
}

// VoteTallier computes vote counts from the authoritative store.
type VoteTallier interface {
	TallyVotes(pollID int64) map[int64]int
}

type ResultsConfig struct {
	TTL     time.Duration // lifetime of a cached tally
	Timeout time.Duration // bound on every cache call
}

func DefaultResultsConfig() ResultsConfig {
	return ResultsConfig{
		TTL:     60 * time.Second,
		Timeout: 250 * time.Millisecond,
	}
}

// ResultsService serves per-option vote counts cache-aside. The cache is
// optional: with a nil CountCache every read is computed from the store.
type ResultsService struct {
	tallier VoteTallier
	cache   CountCache
	config  ResultsConfig
	logger  *logger.Logger
}

func NewResultsService(tallier VoteTallier, cache CountCache, config ResultsConfig, l *logger.Logger) *ResultsService {
	return &ResultsService{
		tallier: tallier,
		cache:   cache,
		config:  config,
		logger:  l,
	}
}

// GetVoteCounts returns option id -> count for a poll. Options without votes
// are absent. A fresh tally is cached only when it is non-empty.
func (s *ResultsService) GetVoteCounts(ctx context.Context, pollID int64) map[int64]int {
	if counts, ok := s.readCache(ctx, pollID); ok {
		s.logger.WithContext(ctx).Debugf("vote counts for poll %d served from cache", pollID)
		return counts
	}

	counts := s.tallier.TallyVotes(pollID)
	s.logger.WithContext(ctx).Debugf("vote counts for poll %d computed from store", pollID)

	if len(counts) > 0 {
		s.writeCache(ctx, pollID, counts)
	}
	return counts
}

// Invalidate drops the cached tally of a poll. It runs detached from ctx's
// cancellation so an aborted request cannot leave a stale entry behind.
func (s *ResultsService) Invalidate(ctx context.Context, pollID int64) {
	if s.cache == nil {
		return
	}
	cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.config.Timeout)
	defer cancel()

	if err := s.cache.Delete(cctx, pollID); err != nil {
		s.logger.WithContext(ctx).Warnf("invalidate vote counts for poll %d: %v", pollID, err)
	}
}

// CacheEnabled reports whether a cache backend is configured.
func (s *ResultsService) CacheEnabled() bool {
	return s.cache != nil
}

// CacheHealthy pings the backend when it supports it.
func (s *ResultsService) CacheHealthy(ctx context.Context) bool {
	p, ok := s.cache.(interface{ Ping(context.Context) error })
	if !ok {
		return false
	}
	cctx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()
	return p.Ping(cctx) == nil
}

func (s *ResultsService) readCache(ctx context.Context, pollID int64) (map[int64]int, bool) {
	if s.cache == nil {
		return nil, false
	}
	cctx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	exists, err := s.cache.Exists(cctx, pollID)
	if err != nil {
		s.logger.WithContext(ctx).Warnf("read vote counts for poll %d: %v", pollID, err)
		return nil, false
	}
	if !exists {
		return nil, false
	}

	fields, err := s.cache.ReadCounts(cctx, pollID)
	if err != nil {
		s.logger.WithContext(ctx).Warnf("read vote counts for poll %d: %v", pollID, err)
		return nil, false
	}
	if len(fields) == 0 {
		return nil, false
	}

	counts, err := decodeCounts(fields)
	if err != nil {
		s.logger.WithContext(ctx).Warnf("decode cached vote counts for poll %d: %v", pollID, err)
		return nil, false
	}
	return counts, true
}

func (s *ResultsService) writeCache(ctx context.Context, pollID int64, counts map[int64]int) {
	if s.cache == nil {
		return
	}
	cctx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	if err := s.cache.WriteCounts(cctx, pollID, encodeCounts(counts), s.config.TTL); err != nil {
		s.logger.WithContext(ctx).Warnf("write vote counts for poll %d: %v", pollID, err)
	}
}

func encodeCounts(counts map[int64]int) map[string]string {
	fields := make(map[string]string, len(counts))
	for optionID, n := range counts {
		fields[strconv.FormatInt(optionID, 10)] = strconv.Itoa(n)
	}
	return fields
}

func decodeCounts(fields map[string]string) (map[int64]int, error) {
	counts := make(map[int64]int, len(fields))
	for k, v := range fields {
		optionID, err := strconv.ParseInt(k, 10, 64)
		if err != nil {
			return nil, err
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, err
		}
		counts[optionID] = n
	}
	return counts, nil
}
