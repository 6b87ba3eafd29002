package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hanvote/regionvote/internal/core/domain"
	"github.com/hanvote/regionvote/internal/core/ports"
)

type topicService struct {
	repo ports.TopicRepository
}

func NewTopicService(repo ports.TopicRepository) ports.TopicService {
	return &topicService{
		repo: repo,
	}
}

func (s *topicService) Create(ctx context.Context, input ports.CreateTopicInput) (*domain.Topic, error) {
	if input.Title == "" {
		return nil, errors.New("title is required")
	}
	if input.OptionA == "" || input.OptionB == "" {
		return nil, errors.New("both options are required")
	}

	now := time.Now()
	topic := &domain.Topic{
		ID:        uuid.New(),
		Title:     input.Title,
		Status:    domain.TopicStatusLive,
		CreatedAt: now,
	}
	topic.Options = []domain.TopicOption{
		{ID: uuid.New(), TopicID: topic.ID, Label: input.OptionA, Position: domain.PositionA, CreatedAt: now},
		{ID: uuid.New(), TopicID: topic.ID, Label: input.OptionB, Position: domain.PositionB, CreatedAt: now},
	}

	if err := s.repo.Save(ctx, topic); err != nil {
		return nil, fmt.Errorf("failed to save topic: %w", err)
	}
	return topic, nil
}

func (s *topicService) Get(ctx context.Context, id uuid.UUID) (*domain.Topic, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *topicService) ListLive(ctx context.Context) ([]*domain.Topic, error) {
	topics, err := s.repo.ListByStatus(ctx, domain.TopicStatusLive)
	if err != nil {
		return nil, fmt.Errorf("failed to list live topics: %w", err)
	}
	return topics, nil
}
