package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/hanvote/regionvote/internal/core/domain"
	"github.com/hanvote/regionvote/internal/core/ports"
)

type statsRepository struct {
	db *sql.DB
}

func NewStatsRepository(db *sql.DB) ports.StatsRepository {
	return &statsRepository{
		db: db,
	}
}

// refreshQuery aggregates a topic's votes by region code in one pass. The
// effective code per level is the vote's denormalized value, else the
// linked school's; rows with neither are excluded.
const refreshQuery = `
	INSERT INTO region_stats (topic_id, level, region_code, count_a, count_b, total, last_updated_at)
	SELECT v.topic_id, $2,
		COALESCE(NULLIF(CASE WHEN $2 = 'sido' THEN v.province_code ELSE v.municipality_code END, ''),
			CASE WHEN $2 = 'sido' THEN s.province_code ELSE s.municipality_code END) AS region_code,
		COUNT(*) FILTER (WHERE o.position = 1),
		COUNT(*) FILTER (WHERE o.position = 2),
		COUNT(*), NOW()
	FROM votes v
	JOIN topic_options o ON o.id = v.option_id
	LEFT JOIN schools s ON s.id = v.school_id
	WHERE v.topic_id = $1
		AND COALESCE(NULLIF(CASE WHEN $2 = 'sido' THEN v.province_code ELSE v.municipality_code END, ''),
			CASE WHEN $2 = 'sido' THEN s.province_code ELSE s.municipality_code END) IS NOT NULL
	GROUP BY v.topic_id, region_code
	ON CONFLICT (topic_id, level, region_code) DO UPDATE
	SET count_a = EXCLUDED.count_a,
	    count_b = EXCLUDED.count_b,
	    total = EXCLUDED.total,
	    last_updated_at = NOW();
`

// Refresh rematerializes both levels for a topic. Stale rows are removed
// first so regions whose votes were merged away do not linger.
func (r *statsRepository) Refresh(ctx context.Context, topicID uuid.UUID) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM region_stats WHERE topic_id = $1`, topicID); err != nil {
		return fmt.Errorf("failed to clear stale stats: %w", err)
	}

	for _, level := range []domain.RegionLevel{domain.LevelSido, domain.LevelSigungu} {
		if _, err := tx.ExecContext(ctx, refreshQuery, topicID, string(level)); err != nil {
			return fmt.Errorf("failed to refresh %s stats for topic %s: %w", level, topicID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (r *statsRepository) GetByTopicAndLevel(ctx context.Context, topicID uuid.UUID, level domain.RegionLevel) (map[string]domain.RegionStat, error) {
	query := `
		SELECT region_code, count_a, count_b, total
		FROM region_stats
		WHERE topic_id = $1 AND level = $2
	`
	rows, err := r.db.QueryContext(ctx, query, topicID, string(level))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch region stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[string]domain.RegionStat)
	for rows.Next() {
		var (
			code string
			stat domain.RegionStat
		)
		if err := rows.Scan(&code, &stat.CountA, &stat.CountB, &stat.Total); err != nil {
			return nil, fmt.Errorf("failed to scan region stats: %w", err)
		}
		stat.Winner = domain.DecideWinner(stat.CountA, stat.CountB)
		stats[code] = stat
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating region stats: %w", err)
	}
	return stats, nil
}
