// Package dashboard serves the aggregate counters shown on the landing
// screen. The numbers are cheap but hit on every page load, so they are
// cached in Redis and recomputed through a singleflight group.
package dashboard

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

const (
	statsCacheKey = "warelog:dashboard:stats"
	statsCacheTTL = 60 * time.Second
)

// Stats is the dashboard payload.
type Stats struct {
	TotalProducts     int64     `json:"totalProducts"`
	TotalWarehouses   int64     `json:"totalWarehouses"`
	LowStockCount     int64     `json:"lowStockCount"`
	PendingReceipts   int64     `json:"pendingReceipts"`
	PendingDeliveries int64     `json:"pendingDeliveries"`
	GeneratedAt       time.Time `json:"generatedAt"`
}

// StatsSource computes the counters from storage.
type StatsSource interface {
	CollectStats(ctx context.Context) (Stats, error)
}

// Service caches stats in Redis with a singleflight guard so one recompute
// serves all concurrent misses.
type Service struct {
	source StatsSource
	cache  *redis.Client
	logger *slog.Logger
	group  singleflight.Group
}

// NewService wires the dashboard service. cache may be nil, in which case
// every call recomputes.
func NewService(source StatsSource, cache *redis.Client, logger *slog.Logger) *Service {
	return &Service{source: source, cache: cache, logger: logger}
}

// Stats returns the counters, served from cache when fresh.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	if s.cache != nil {
		raw, err := s.cache.Get(ctx, statsCacheKey).Bytes()
		if err == nil {
			var cached Stats
			if err := json.Unmarshal(raw, &cached); err == nil {
				return cached, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn("dashboard cache read failed", "error", err)
		}
	}

	v, err, _ := s.group.Do(statsCacheKey, func() (any, error) {
		stats, err := s.source.CollectStats(ctx)
		if err != nil {
			return Stats{}, fmt.Errorf("dashboard: collect stats: %w", err)
		}
		stats.GeneratedAt = time.Now().UTC()
		if s.cache != nil {
			if raw, err := json.Marshal(stats); err == nil {
				if err := s.cache.Set(ctx, statsCacheKey, raw, statsCacheTTL).Err(); err != nil {
					s.logger.Warn("dashboard cache write failed", "error", err)
				}
			}
		}
		return stats, nil
	})
	if err != nil {
		return Stats{}, err
	}
	return v.(Stats), nil
}

// Invalidate drops the cached stats. Called by jobs after bulk corrections.
func (s *Service) Invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, statsCacheKey).Err(); err != nil {
		s.logger.Warn("dashboard cache invalidate failed", "error", err)
	}
}
