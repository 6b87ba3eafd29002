package domain

import (
	"time"

	"github.com/google/uuid"
)

type Gender string

const (
	GenderMale   Gender = "M"
	GenderFemale Gender = "F"
)

// Identity is the already-resolved caller identity: exactly one of UserID
// or GuestToken must be set. Email is only present for authenticated users
// and is used solely for the unlimited-vote allow-list.
type Identity struct {
	UserID     *uuid.UUID
	Email      string
	GuestToken string
}

func (i Identity) Valid() bool {
	return (i.UserID != nil) != (i.GuestToken != "")
}

// Profile is the demographic snapshot captured alongside a vote.
type Profile struct {
	BirthYear int       `json:"birth_year"`
	Gender    Gender    `json:"gender"`
	SchoolID  uuid.UUID `json:"school_id"`
}

type Vote struct {
	ID                uuid.UUID  `json:"id"`
	TopicID           uuid.UUID  `json:"topic_id"`
	OptionID          uuid.UUID  `json:"option_id"`
	UserID            *uuid.UUID `json:"user_id,omitempty"`
	GuestToken        string     `json:"-"`
	SchoolID          uuid.UUID  `json:"school_id"`
	AggregateSchoolID uuid.UUID  `json:"aggregate_school_id"`
	BirthYear         int        `json:"birth_year"`
	Gender            Gender     `json:"gender"`
	ProvinceCode      string     `json:"province_code,omitempty"`
	MunicipalityCode  string     `json:"municipality_code,omitempty"`
	MergedFromGuest   bool       `json:"merged_from_guest"`
	CreatedAt         time.Time  `json:"created_at"`
}

// MergeResult reports the outcome of folding a guest token's votes into a
// user identity.
type MergeResult struct {
	Moved   int `json:"moved"`
	Skipped int `json:"skipped"`
}
