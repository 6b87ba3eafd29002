package ports

import (
	"context"

	"github.com/google/uuid"
	"github.com/hanvote/regionvote/internal/core/domain"
)

type TopicRepository interface {
	Save(ctx context.Context, topic *domain.Topic) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Topic, error)
	ListAll(ctx context.Context) ([]*domain.Topic, error)
	ListByStatus(ctx context.Context, status string) ([]*domain.Topic, error)
}

type CreateTopicInput struct {
	Title   string
	OptionA string
	OptionB string
}

type TopicService interface {
	Create(ctx context.Context, input CreateTopicInput) (*domain.Topic, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.Topic, error)
	ListLive(ctx context.Context) ([]*domain.Topic, error)
}
