package ports

import (
	"context"

	"github.com/google/uuid"
	"github.com/hanvote/regionvote/internal/core/domain"
)

type StatsRepository interface {
	// Refresh recomputes the materialized per-region tallies for a topic
	// at both levels in one server-side pass.
	Refresh(ctx context.Context, topicID uuid.UUID) error
	GetByTopicAndLevel(ctx context.Context, topicID uuid.UUID, level domain.RegionLevel) (map[string]domain.RegionStat, error)
}

// StatsCache is a best-effort read-through cache for assembled stats maps.
// Implementations must treat unavailability as a miss, never as a failure.
type StatsCache interface {
	Get(ctx context.Context, topicID uuid.UUID, level domain.RegionLevel) (map[string]domain.RegionStat, bool)
	Set(ctx context.Context, topicID uuid.UUID, level domain.RegionLevel, stats map[string]domain.RegionStat)
}

type StatsService interface {
	GetRegionStats(ctx context.Context, topicID uuid.UUID, level domain.RegionLevel) (map[string]domain.RegionStat, error)
	// RefreshAll rematerializes stats for every topic; run out-of-band.
	RefreshAll(ctx context.Context) error
}
