package domain

import "errors"

var (
	ErrTopicNotFound   = errors.New("topic not found")
	ErrTopicNotVotable = errors.New("topic is not open for voting")
	ErrInvalidOption   = errors.New("invalid option for this topic")
	ErrInvalidIdentity = errors.New("exactly one of user id or guest token is required")
	ErrDuplicateVote   = errors.New("identity has already voted on this topic")
	ErrMissingProfile  = errors.New("a demographic profile is required for a first vote")
	ErrVoteNotFound    = errors.New("vote not found")
	ErrSchoolNotFound  = errors.New("school not found")
	ErrInvalidLevel    = errors.New("level must be sido or sigungu")
)
