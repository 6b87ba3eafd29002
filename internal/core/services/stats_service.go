package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hanvote/regionvote/internal/core/domain"
	"github.com/hanvote/regionvote/internal/core/ports"
)

// statsPageSize is the fixed page size for the full-scan fallback. Pages
// are ordered by creation time then id so the scan is deterministic.
const statsPageSize = 500

type statsService struct {
	topicRepo ports.TopicRepository
	statsRepo ports.StatsRepository
	voteRepo  ports.VoteRepository
	cache     ports.StatsCache
	logger    *zap.Logger
}

func NewStatsService(
	topicRepo ports.TopicRepository,
	statsRepo ports.StatsRepository,
	voteRepo ports.VoteRepository,
	cache ports.StatsCache,
	logger *zap.Logger,
) ports.StatsService {
	return &statsService{
		topicRepo: topicRepo,
		statsRepo: statsRepo,
		voteRepo:  voteRepo,
		cache:     cache,
		logger:    logger,
	}
}

// GetRegionStats answers from the materialized table when it has rows for
// the topic, otherwise recomputes from the vote log. Both paths produce
// the same shape; an unknown topic is a typed not-found, while a known
// topic with no qualifying votes yields an empty map.
func (s *statsService) GetRegionStats(ctx context.Context, topicID uuid.UUID, level domain.RegionLevel) (map[string]domain.RegionStat, error) {
	topic, err := s.topicRepo.GetByID(ctx, topicID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if stats, ok := s.cache.Get(ctx, topicID, level); ok {
			return stats, nil
		}
	}

	stats, err := s.statsRepo.GetByTopicAndLevel(ctx, topicID, level)
	if err != nil {
		return nil, fmt.Errorf("failed to read materialized stats: %w", err)
	}

	if len(stats) == 0 {
		// Not yet materialized (or genuinely empty): fall back to the scan
		// rather than reporting nothing for a topic that has votes.
		stats, err = s.scanVotes(ctx, topic, level)
		if err != nil {
			return nil, err
		}
	}

	if s.cache != nil {
		s.cache.Set(ctx, topicID, level, stats)
	}
	return stats, nil
}

// scanVotes is the slow path: page through every vote for the topic and
// fold the tallies in memory. A row's region code is its denormalized
// value, else the linked school's; rows with neither are excluded.
func (s *statsService) scanVotes(ctx context.Context, topic *domain.Topic, level domain.RegionLevel) (map[string]domain.RegionStat, error) {
	positions := make(map[uuid.UUID]int, len(topic.Options))
	for _, opt := range topic.Options {
		positions[opt.ID] = opt.Position
	}

	stats := make(map[string]domain.RegionStat)
	for offset := 0; ; offset += statsPageSize {
		page, err := s.voteRepo.ListPageByTopic(ctx, topic.ID, statsPageSize, offset)
		if err != nil {
			return nil, fmt.Errorf("failed to scan votes: %w", err)
		}

		for _, row := range page {
			code := regionCodeFor(row, level)
			if code == "" {
				continue
			}
			stat := stats[code]
			stat.Total++
			switch positions[row.Vote.OptionID] {
			case domain.PositionA:
				stat.CountA++
			case domain.PositionB:
				stat.CountB++
			}
			stats[code] = stat
		}

		if len(page) < statsPageSize {
			break
		}
	}

	for code, stat := range stats {
		stat.Winner = domain.DecideWinner(stat.CountA, stat.CountB)
		stats[code] = stat
	}
	return stats, nil
}

func regionCodeFor(row ports.VoteWithSchoolRegion, level domain.RegionLevel) string {
	if level == domain.LevelSido {
		if row.Vote.ProvinceCode != "" {
			return row.Vote.ProvinceCode
		}
		return row.SchoolProvinceCode
	}
	if row.Vote.MunicipalityCode != "" {
		return row.Vote.MunicipalityCode
	}
	return row.SchoolMunicipalityCode
}

// RefreshAll rematerializes the per-region tallies for every topic, one
// goroutine per topic.
func (s *statsService) RefreshAll(ctx context.Context) error {
	topics, err := s.topicRepo.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch all topics: %w", err)
	}

	var wg sync.WaitGroup
	errChan := make(chan error, len(topics))

	for _, topic := range topics {
		wg.Add(1)
		go func(topicID uuid.UUID) {
			defer wg.Done()
			if err := s.statsRepo.Refresh(ctx, topicID); err != nil {
				errChan <- fmt.Errorf("failed to refresh stats for topic %s: %w", topicID, err)
			}
		}(topic.ID)
	}

	wg.Wait()
	close(errChan)

	for err := range errChan {
		if err != nil {
			return err
		}
	}

	s.logger.Info("refreshed region stats", zap.Int("topics", len(topics)))
	return nil
}
