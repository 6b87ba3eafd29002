// Package cache provides the best-effort redis cache for assembled region
// stats. Any redis failure is treated as a miss; the service recomputes.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/hanvote/regionvote/internal/core/domain"
	"github.com/hanvote/regionvote/internal/core/ports"
)

const statsTTL = 60 * time.Second

type statsCache struct {
	client *redis.Client
	logger *zap.Logger
}

func NewStatsCache(client *redis.Client, logger *zap.Logger) ports.StatsCache {
	return &statsCache{
		client: client,
		logger: logger,
	}
}

func statsKey(topicID uuid.UUID, level domain.RegionLevel) string {
	return fmt.Sprintf("region-stats:%s:%s", topicID, level)
}

func (c *statsCache) Get(ctx context.Context, topicID uuid.UUID, level domain.RegionLevel) (map[string]domain.RegionStat, bool) {
	raw, err := c.client.Get(ctx, statsKey(topicID, level)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Debug("stats cache unavailable", zap.Error(err))
		}
		return nil, false
	}

	var stats map[string]domain.RegionStat
	if err := json.Unmarshal(raw, &stats); err != nil {
		c.logger.Debug("stats cache entry corrupt", zap.Error(err))
		return nil, false
	}
	return stats, true
}

func (c *statsCache) Set(ctx context.Context, topicID uuid.UUID, level domain.RegionLevel, stats map[string]domain.RegionStat) {
	raw, err := json.Marshal(stats)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, statsKey(topicID, level), raw, statsTTL).Err(); err != nil {
		c.logger.Debug("failed to write stats cache", zap.Error(err))
	}
}
