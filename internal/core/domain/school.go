package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// SchoolSource identifies the origin system of a school record. The pair
// (Source, ExternalCode) is the upsert key across imports and lookups.
type SchoolSource string

const (
	SourceCareerNet SchoolSource = "careernet"
	SourceNeis      SchoolSource = "neis"
)

type SchoolLevel string

const (
	LevelMiddle   SchoolLevel = "middle"
	LevelHigh     SchoolLevel = "high"
	LevelUniv     SchoolLevel = "univ"
	LevelGraduate SchoolLevel = "grad"
)

// mainCampusMarker tags the root campus in source data; a null campus type
// also means root.
const mainCampusMarker = "본교"

// closedStatusMarker is the external status value for a school that has
// been closed. Closed schools stay in the table but are flagged inactive.
const ClosedStatusMarker = "폐교"

type School struct {
	ID               uuid.UUID    `json:"id"`
	Source           SchoolSource `json:"source"`
	ExternalCode     string       `json:"external_code"`
	Name             string       `json:"name"`
	Level            SchoolLevel  `json:"level"`
	CampusType       *string      `json:"campus_type,omitempty"`
	ParentID         *uuid.UUID   `json:"parent_id,omitempty"`
	ProvinceCode     string       `json:"province_code,omitempty"`
	MunicipalityCode string       `json:"municipality_code,omitempty"`
	Address          string       `json:"address,omitempty"`
	IsActive         bool         `json:"is_active"`
	CreatedAt        time.Time    `json:"created_at"`
}

// AggregateID is the rollup key votes count toward: the parent campus when
// one is linked, otherwise the school itself.
func (s *School) AggregateID() uuid.UUID {
	if s.ParentID != nil {
		return *s.ParentID
	}
	return s.ID
}

// IsMainCampus reports whether this record represents a root campus rather
// than a branch.
func (s *School) IsMainCampus() bool {
	return s.CampusType == nil || strings.Contains(*s.CampusType, mainCampusMarker)
}
