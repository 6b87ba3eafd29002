package domain

import (
	"time"

	"github.com/google/uuid"
)

const (
	TopicStatusLive  = "LIVE"
	TopicStatusDraft = "DRAFT"
	TopicStatusEnded = "ENDED"
)

const (
	PositionA = 1
	PositionB = 2
)

type Topic struct {
	ID        uuid.UUID     `json:"id"`
	Title     string        `json:"title"`
	Status    string        `json:"status"`
	Options   []TopicOption `json:"options"`
	CreatedAt time.Time     `json:"created_at"`
}

type TopicOption struct {
	ID        uuid.UUID `json:"id"`
	TopicID   uuid.UUID `json:"topic_id"`
	Label     string    `json:"label"`
	Position  int       `json:"position"`
	CreatedAt time.Time `json:"created_at"`
}

// Votable requires a live topic with options at both A/B positions; a
// half-configured topic is visible to admins but rejects votes.
func (t *Topic) Votable() bool {
	if t.Status != TopicStatusLive {
		return false
	}
	var hasA, hasB bool
	for _, opt := range t.Options {
		switch opt.Position {
		case PositionA:
			hasA = true
		case PositionB:
			hasB = true
		}
	}
	return hasA && hasB
}

// Option returns the option with the given id, if it belongs to the topic.
func (t *Topic) Option(id uuid.UUID) (TopicOption, bool) {
	for _, opt := range t.Options {
		if opt.ID == id {
			return opt, true
		}
	}
	return TopicOption{}, false
}
