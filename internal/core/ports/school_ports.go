package ports

import (
	"context"

	"github.com/google/uuid"
	"github.com/hanvote/regionvote/internal/core/domain"
)

type SchoolRepository interface {
	FindBySourceCode(ctx context.Context, source domain.SchoolSource, externalCode string) (*domain.School, error)
	FindByID(ctx context.Context, id uuid.UUID) (*domain.School, error)
	Insert(ctx context.Context, school *domain.School) error
	// UpdateRegion rewrites only the two region code columns.
	UpdateRegion(ctx context.Context, id uuid.UUID, provinceCode, municipalityCode string) error
	UpdateParent(ctx context.Context, id uuid.UUID, parentID uuid.UUID) error
	ListAll(ctx context.Context) ([]*domain.School, error)
	SearchByName(ctx context.Context, query string, limit int) ([]*domain.School, error)
}

// SchoolDirectory is the external school-directory collaborator. Results
// are untrusted free text run through the same normalization pipeline as
// imported data.
type SchoolDirectory interface {
	Search(ctx context.Context, query string) ([]DirectorySchool, error)
}

type DirectorySchool struct {
	ExternalCode string
	Name         string
	Level        domain.SchoolLevel
	CampusType   string
	Address      string
	Status       string
}

// EnsureSchoolInput is the candidate record for the find-or-create path.
// Region codes are optional; missing codes are resolved from name/address.
type EnsureSchoolInput struct {
	Source           domain.SchoolSource
	ExternalCode     string
	Name             string
	Level            domain.SchoolLevel
	CampusType       *string
	ParentID         *uuid.UUID
	ProvinceCode     string
	MunicipalityCode string
	Address          string
	Status           string
}

type SchoolService interface {
	Ensure(ctx context.Context, input EnsureSchoolInput) (*domain.School, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.School, error)
	// ReconcileParents links branch campuses to their root campus across
	// the whole table. Idempotent; intended for out-of-band runs.
	ReconcileParents(ctx context.Context) (linked int, err error)
	Search(ctx context.Context, query string) ([]*domain.School, error)
}
