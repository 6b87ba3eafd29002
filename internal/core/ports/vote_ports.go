package ports

import (
	"context"

	"github.com/google/uuid"
	"github.com/hanvote/regionvote/internal/core/domain"
)

type VoteRepository interface {
	// Insert stores a vote, returning domain.ErrDuplicateVote when the
	// partial uniqueness constraint rejects the row. The constraint, not
	// the service pre-check, is the correctness guarantee under races.
	Insert(ctx context.Context, vote *domain.Vote) error
	FindByTopicAndUser(ctx context.Context, topicID, userID uuid.UUID) (*domain.Vote, error)
	FindByTopicAndGuest(ctx context.Context, topicID uuid.UUID, guestToken string) (*domain.Vote, error)
	ListByGuest(ctx context.Context, guestToken string) ([]*domain.Vote, error)
	// Reassign moves a guest vote to a user identity in place, setting the
	// merged-from-guest flag.
	Reassign(ctx context.Context, voteID, userID uuid.UUID) error
	Delete(ctx context.Context, voteID uuid.UUID) error
	// ListPageByTopic pages through a topic's votes ordered by creation
	// time then id, with the linked school's region codes attached.
	ListPageByTopic(ctx context.Context, topicID uuid.UUID, limit, offset int) ([]VoteWithSchoolRegion, error)
}

// VoteWithSchoolRegion is a vote row joined with its school's region codes.
// The school pair is a single optional value: the join is normalized at the
// data-access boundary so aggregation never sees a collection.
type VoteWithSchoolRegion struct {
	Vote                   domain.Vote
	SchoolProvinceCode     string
	SchoolMunicipalityCode string
}

type ProfileRepository interface {
	Get(ctx context.Context, userID uuid.UUID) (*domain.Profile, error)
	Save(ctx context.Context, userID uuid.UUID, profile domain.Profile) error
}

// SubmitVoteInput carries one vote submission. Profile is optional for
// users with a stored profile; guests must always supply one. School is
// the campus candidate voted from; when absent the stored profile's
// school is reused.
type SubmitVoteInput struct {
	TopicID  uuid.UUID
	OptionID uuid.UUID
	Identity domain.Identity
	Profile  *domain.Profile
	School   *EnsureSchoolInput
}

type VoteService interface {
	Submit(ctx context.Context, input SubmitVoteInput) (*domain.Vote, error)
	MyVote(ctx context.Context, topicID uuid.UUID, identity domain.Identity) (*domain.Vote, error)
	// MergeGuestVotes folds all of a guest token's votes into the user:
	// reassigned when the user has no vote on that topic, discarded when
	// they do. Idempotent.
	MergeGuestVotes(ctx context.Context, guestToken string, userID uuid.UUID) (domain.MergeResult, error)
}
