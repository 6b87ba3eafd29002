package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/hanvote/regionvote/internal/core/domain"
	"github.com/hanvote/regionvote/internal/core/ports"
)

type topicRepository struct {
	db *sql.DB
}

func NewTopicRepository(db *sql.DB) ports.TopicRepository {
	return &topicRepository{
		db: db,
	}
}

func (r *topicRepository) Save(ctx context.Context, topic *domain.Topic) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	queryTopic := `
		INSERT INTO topics (id, title, status)
		VALUES ($1, $2, $3)
	`
	_, err = tx.ExecContext(ctx, queryTopic, topic.ID, topic.Title, topic.Status)
	if err != nil {
		return fmt.Errorf("failed to insert topic: %w", err)
	}

	queryOption := `
		INSERT INTO topic_options (id, topic_id, label, position)
		VALUES ($1, $2, $3, $4)
	`
	stmt, err := tx.PrepareContext(ctx, queryOption)
	if err != nil {
		return fmt.Errorf("failed to prepare option statement: %w", err)
	}
	defer stmt.Close()

	for _, opt := range topic.Options {
		_, err = stmt.ExecContext(ctx, opt.ID, opt.TopicID, opt.Label, opt.Position)
		if err != nil {
			return fmt.Errorf("failed to insert option: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

func (r *topicRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Topic, error) {
	queryTopic := `
		SELECT id, title, status, created_at
		FROM topics
		WHERE id = $1
	`

	var topic domain.Topic
	err := r.db.QueryRowContext(ctx, queryTopic, id).Scan(
		&topic.ID, &topic.Title, &topic.Status, &topic.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrTopicNotFound
		}
		return nil, fmt.Errorf("failed to get topic: %w", err)
	}

	options, err := r.fetchOptions(ctx, topic.ID)
	if err != nil {
		return nil, err
	}
	topic.Options = options

	return &topic, nil
}

func (r *topicRepository) ListAll(ctx context.Context) ([]*domain.Topic, error) {
	query := `
		SELECT id, title, status, created_at
		FROM topics
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get all topics: %w", err)
	}
	defer rows.Close()

	return r.scanTopics(ctx, rows)
}

func (r *topicRepository) ListByStatus(ctx context.Context, status string) ([]*domain.Topic, error) {
	query := `
		SELECT id, title, status, created_at
		FROM topics
		WHERE status = $1
		ORDER BY created_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list topics: %w", err)
	}
	defer rows.Close()

	return r.scanTopics(ctx, rows)
}

func (r *topicRepository) scanTopics(ctx context.Context, rows *sql.Rows) ([]*domain.Topic, error) {
	var topics []*domain.Topic
	for rows.Next() {
		var topic domain.Topic
		if err := rows.Scan(&topic.ID, &topic.Title, &topic.Status, &topic.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan topic: %w", err)
		}

		options, err := r.fetchOptions(ctx, topic.ID)
		if err != nil {
			return nil, err
		}
		topic.Options = options

		topics = append(topics, &topic)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating topics: %w", err)
	}
	return topics, nil
}

func (r *topicRepository) fetchOptions(ctx context.Context, topicID uuid.UUID) ([]domain.TopicOption, error) {
	queryOptions := `
		SELECT id, topic_id, label, position, created_at
		FROM topic_options
		WHERE topic_id = $1
		ORDER BY position
	`
	rows, err := r.db.QueryContext(ctx, queryOptions, topicID)
	if err != nil {
		return nil, fmt.Errorf("failed to get topic options: %w", err)
	}
	defer rows.Close()

	var options []domain.TopicOption
	for rows.Next() {
		var opt domain.TopicOption
		if err := rows.Scan(&opt.ID, &opt.TopicID, &opt.Label, &opt.Position, &opt.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan option: %w", err)
		}
		options = append(options, opt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating options: %w", err)
	}
	return options, nil
}
