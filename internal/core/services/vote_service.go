package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hanvote/regionvote/internal/core/domain"
	"github.com/hanvote/regionvote/internal/core/ports"
)

type voteService struct {
	topicRepo   ports.TopicRepository
	voteRepo    ports.VoteRepository
	profileRepo ports.ProfileRepository
	schools     ports.SchoolService
	unlimited   map[string]bool
	logger      *zap.Logger
}

// NewVoteService wires the vote ledger. unlimitedEmails is the configured
// allow-list of verified emails that bypass the one-vote-per-topic rule.
func NewVoteService(
	topicRepo ports.TopicRepository,
	voteRepo ports.VoteRepository,
	profileRepo ports.ProfileRepository,
	schools ports.SchoolService,
	unlimitedEmails []string,
	logger *zap.Logger,
) ports.VoteService {
	unlimited := make(map[string]bool, len(unlimitedEmails))
	for _, email := range unlimitedEmails {
		unlimited[email] = true
	}
	return &voteService{
		topicRepo:   topicRepo,
		voteRepo:    voteRepo,
		profileRepo: profileRepo,
		schools:     schools,
		unlimited:   unlimited,
		logger:      logger,
	}
}

func (s *voteService) Submit(ctx context.Context, input ports.SubmitVoteInput) (*domain.Vote, error) {
	if !input.Identity.Valid() {
		return nil, domain.ErrInvalidIdentity
	}

	topic, err := s.topicRepo.GetByID(ctx, input.TopicID)
	if err != nil {
		return nil, err
	}
	if !topic.Votable() {
		return nil, domain.ErrTopicNotVotable
	}
	if _, ok := topic.Option(input.OptionID); !ok {
		return nil, domain.ErrInvalidOption
	}

	profile, storedProfile, err := s.resolveProfile(ctx, input)
	if err != nil {
		return nil, err
	}

	school, err := s.resolveSchool(ctx, input, profile)
	if err != nil {
		return nil, err
	}

	identity := input.Identity
	bypass := identity.UserID != nil && s.unlimited[identity.Email]
	if bypass {
		// Allow-listed voters get a fresh synthetic guest token per vote so
		// every bypassed vote is a distinct valid row under the constraint.
		identity = domain.Identity{GuestToken: uuid.NewString()}
		s.logger.Info("unlimited vote bypass",
			zap.String("topic_id", input.TopicID.String()),
			zap.String("email", input.Identity.Email))
	} else {
		// Pre-check is an optimization only; the partial unique index is
		// what guarantees at-most-one under concurrent submissions.
		already, err := s.hasVoted(ctx, input.TopicID, identity)
		if err != nil {
			return nil, err
		}
		if already {
			return nil, domain.ErrDuplicateVote
		}
	}

	vote := &domain.Vote{
		ID:                uuid.New(),
		TopicID:           input.TopicID,
		OptionID:          input.OptionID,
		UserID:            identity.UserID,
		GuestToken:        identity.GuestToken,
		SchoolID:          school.ID,
		AggregateSchoolID: school.AggregateID(),
		BirthYear:         profile.BirthYear,
		Gender:            profile.Gender,
		ProvinceCode:      school.ProvinceCode,
		MunicipalityCode:  school.MunicipalityCode,
		CreatedAt:         time.Now(),
	}

	if err := s.voteRepo.Insert(ctx, vote); err != nil {
		return nil, err
	}

	if input.Identity.UserID != nil && input.Profile != nil && storedProfile == nil {
		saved := domain.Profile{BirthYear: profile.BirthYear, Gender: profile.Gender, SchoolID: school.ID}
		if err := s.profileRepo.Save(ctx, *input.Identity.UserID, saved); err != nil {
			// The vote is already stored; a failed profile save only costs
			// the next submission a re-supplied profile.
			s.logger.Warn("failed to save user profile", zap.Error(err))
		}
	}

	return vote, nil
}

// resolveProfile returns the effective profile for this submission and the
// previously stored one (nil when absent). Users fall back to their stored
// profile; guests have no stored fallback and must always supply one.
func (s *voteService) resolveProfile(ctx context.Context, input ports.SubmitVoteInput) (*domain.Profile, *domain.Profile, error) {
	if input.Identity.UserID == nil {
		if input.Profile == nil {
			return nil, nil, domain.ErrMissingProfile
		}
		return input.Profile, nil, nil
	}

	stored, err := s.profileRepo.Get(ctx, *input.Identity.UserID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load user profile: %w", err)
	}

	if input.Profile != nil {
		return input.Profile, stored, nil
	}
	if stored == nil {
		return nil, nil, domain.ErrMissingProfile
	}
	return stored, stored, nil
}

// resolveSchool picks the campus this vote is cast from: the submission's
// school candidate when present (running ensure semantics, which also
// backfills stale region codes), otherwise the stored profile's school.
func (s *voteService) resolveSchool(ctx context.Context, input ports.SubmitVoteInput, profile *domain.Profile) (*domain.School, error) {
	if input.School != nil {
		return s.schools.Ensure(ctx, *input.School)
	}
	if profile.SchoolID == uuid.Nil {
		return nil, domain.ErrMissingProfile
	}
	return s.schools.Get(ctx, profile.SchoolID)
}

func (s *voteService) hasVoted(ctx context.Context, topicID uuid.UUID, identity domain.Identity) (bool, error) {
	vote, err := s.findVote(ctx, topicID, identity)
	if err != nil {
		return false, err
	}
	return vote != nil, nil
}

func (s *voteService) findVote(ctx context.Context, topicID uuid.UUID, identity domain.Identity) (*domain.Vote, error) {
	var (
		vote *domain.Vote
		err  error
	)
	if identity.UserID != nil {
		vote, err = s.voteRepo.FindByTopicAndUser(ctx, topicID, *identity.UserID)
	} else {
		vote, err = s.voteRepo.FindByTopicAndGuest(ctx, topicID, identity.GuestToken)
	}
	if err != nil && !errors.Is(err, domain.ErrVoteNotFound) {
		return nil, fmt.Errorf("failed to check existing vote: %w", err)
	}
	return vote, nil
}

func (s *voteService) MyVote(ctx context.Context, topicID uuid.UUID, identity domain.Identity) (*domain.Vote, error) {
	if !identity.Valid() {
		return nil, domain.ErrInvalidIdentity
	}
	vote, err := s.findVote(ctx, topicID, identity)
	if err != nil {
		return nil, err
	}
	if vote == nil {
		return nil, domain.ErrVoteNotFound
	}
	return vote, nil
}

// MergeGuestVotes reassigns every vote under guestToken to the user,
// discarding guest votes on topics where the user already voted. Each vote
// is settled independently, so an interrupted run can simply be retried;
// a rerun on a fully merged token finds no guest rows and is a no-op.
func (s *voteService) MergeGuestVotes(ctx context.Context, guestToken string, userID uuid.UUID) (domain.MergeResult, error) {
	var result domain.MergeResult

	guestVotes, err := s.voteRepo.ListByGuest(ctx, guestToken)
	if err != nil {
		return result, fmt.Errorf("failed to list guest votes: %w", err)
	}

	for _, guestVote := range guestVotes {
		existing, err := s.voteRepo.FindByTopicAndUser(ctx, guestVote.TopicID, userID)
		if err != nil && !errors.Is(err, domain.ErrVoteNotFound) {
			return result, fmt.Errorf("failed to check user vote: %w", err)
		}

		if existing != nil {
			if err := s.voteRepo.Delete(ctx, guestVote.ID); err != nil {
				return result, fmt.Errorf("failed to discard guest vote: %w", err)
			}
			result.Skipped++
			continue
		}

		err = s.voteRepo.Reassign(ctx, guestVote.ID, userID)
		if errors.Is(err, domain.ErrDuplicateVote) {
			// Lost a race with a concurrent user vote on this topic; the
			// guest vote is now redundant.
			if err := s.voteRepo.Delete(ctx, guestVote.ID); err != nil {
				return result, fmt.Errorf("failed to discard guest vote: %w", err)
			}
			result.Skipped++
			continue
		}
		if err != nil {
			return result, fmt.Errorf("failed to reassign guest vote: %w", err)
		}
		result.Moved++
	}

	if result.Moved > 0 || result.Skipped > 0 {
		s.logger.Info("merged guest votes",
			zap.String("user_id", userID.String()),
			zap.Int("moved", result.Moved),
			zap.Int("skipped", result.Skipped))
	}
	return result, nil
}
