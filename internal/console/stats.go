package console

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"github.com/niaxtu/niaxtu-admin/internal/niaxtu"
)

const statsCacheKey = "stats:dashboard"

// StatsFetcher retrieves the dashboard aggregates from the Niaxtu API.
type StatsFetcher interface {
	GetDashboardStats(ctx context.Context, token string) (niaxtu.DashboardStats, error)
}

// StatsSource serves dashboard statistics through a short-lived Redis
// cache. Concurrent misses are collapsed into a single upstream call.
type StatsSource struct {
	fetch  StatsFetcher
	cache  *redis.Client
	ttl    time.Duration
	logger *slog.Logger
	group  singleflight.Group
}

// NewStatsSource builds a stats source. The cache client may be nil,
// in which case every read goes upstream.
func NewStatsSource(fetch StatsFetcher, cache *redis.Client, ttl time.Duration, logger *slog.Logger) *StatsSource {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &StatsSource{fetch: fetch, cache: cache, ttl: ttl, logger: logger}
}

// Get returns the dashboard statistics, preferring the cache.
func (s *StatsSource) Get(ctx context.Context, token string) (niaxtu.DashboardStats, error) {
	if stats, ok := s.fromCache(ctx); ok {
		return stats, nil
	}

	v, err, _ := s.group.Do(statsCacheKey, func() (any, error) {
		if stats, ok := s.fromCache(ctx); ok {
			return stats, nil
		}
		return s.Refresh(ctx, token)
	})
	if err != nil {
		return niaxtu.DashboardStats{}, err
	}
	return v.(niaxtu.DashboardStats), nil
}

// Refresh fetches fresh statistics and rewrites the cache entry.
func (s *StatsSource) Refresh(ctx context.Context, token string) (niaxtu.DashboardStats, error) {
	stats, err := s.fetch.GetDashboardStats(ctx, token)
	if err != nil {
		return niaxtu.DashboardStats{}, err
	}
	if s.cache != nil {
		payload, err := json.Marshal(stats)
		if err == nil {
			err = s.cache.Set(ctx, statsCacheKey, payload, s.ttl).Err()
		}
		if err != nil && s.logger != nil {
			s.logger.Warn("cache dashboard stats", slog.Any("error", err))
		}
	}
	return stats, nil
}

func (s *StatsSource) fromCache(ctx context.Context) (niaxtu.DashboardStats, bool) {
	if s.cache == nil {
		return niaxtu.DashboardStats{}, false
	}
	payload, err := s.cache.Get(ctx, statsCacheKey).Bytes()
	if err != nil {
		if err != redis.Nil && s.logger != nil {
			s.logger.Warn("read stats cache", slog.Any("error", err))
		}
		return niaxtu.DashboardStats{}, false
	}
	var stats niaxtu.DashboardStats
	if err := json.Unmarshal(payload, &stats); err != nil {
		return niaxtu.DashboardStats{}, false
	}
	return stats, true
}
