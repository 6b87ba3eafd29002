package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/hanvote/regionvote/internal/core/domain"
	"github.com/hanvote/regionvote/internal/core/ports"
)

type schoolRepository struct {
	db *sql.DB
}

func NewSchoolRepository(db *sql.DB) ports.SchoolRepository {
	return &schoolRepository{
		db: db,
	}
}

const schoolColumns = `
	id, source, external_code, name, level, campus_type, parent_id,
	province_code, municipality_code, address, is_active, created_at
`

func (r *schoolRepository) FindBySourceCode(ctx context.Context, source domain.SchoolSource, externalCode string) (*domain.School, error) {
	query := `
		SELECT ` + schoolColumns + `
		FROM schools
		WHERE source = $1 AND external_code = $2
	`
	school, err := scanSchool(r.db.QueryRowContext(ctx, query, source, externalCode))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrSchoolNotFound
		}
		return nil, fmt.Errorf("failed to find school: %w", err)
	}
	return school, nil
}

func (r *schoolRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.School, error) {
	query := `
		SELECT ` + schoolColumns + `
		FROM schools
		WHERE id = $1
	`
	school, err := scanSchool(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrSchoolNotFound
		}
		return nil, fmt.Errorf("failed to find school: %w", err)
	}
	return school, nil
}

func (r *schoolRepository) Insert(ctx context.Context, school *domain.School) error {
	query := `
		INSERT INTO schools (id, source, external_code, name, level, campus_type,
			parent_id, province_code, municipality_code, address, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NULLIF($8, ''), NULLIF($9, ''), NULLIF($10, ''), $11)
	`
	_, err := r.db.ExecContext(ctx, query,
		school.ID, school.Source, school.ExternalCode, school.Name, school.Level,
		school.CampusType, school.ParentID, school.ProvinceCode,
		school.MunicipalityCode, school.Address, school.IsActive,
	)
	if err != nil {
		return fmt.Errorf("failed to insert school: %w", err)
	}
	return nil
}

func (r *schoolRepository) UpdateRegion(ctx context.Context, id uuid.UUID, provinceCode, municipalityCode string) error {
	query := `
		UPDATE schools
		SET province_code = NULLIF($2, ''), municipality_code = NULLIF($3, '')
		WHERE id = $1
	`
	_, err := r.db.ExecContext(ctx, query, id, provinceCode, municipalityCode)
	if err != nil {
		return fmt.Errorf("failed to update school region: %w", err)
	}
	return nil
}

func (r *schoolRepository) UpdateParent(ctx context.Context, id uuid.UUID, parentID uuid.UUID) error {
	query := `
		UPDATE schools SET parent_id = $2 WHERE id = $1
	`
	_, err := r.db.ExecContext(ctx, query, id, parentID)
	if err != nil {
		return fmt.Errorf("failed to update school parent: %w", err)
	}
	return nil
}

func (r *schoolRepository) ListAll(ctx context.Context) ([]*domain.School, error) {
	query := `
		SELECT ` + schoolColumns + `
		FROM schools
		ORDER BY created_at
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list schools: %w", err)
	}
	defer rows.Close()

	return scanSchools(rows)
}

func (r *schoolRepository) SearchByName(ctx context.Context, query string, limit int) ([]*domain.School, error) {
	stmt := `
		SELECT ` + schoolColumns + `
		FROM schools
		WHERE name ILIKE $1 AND is_active
		ORDER BY name
		LIMIT $2
	`
	rows, err := r.db.QueryContext(ctx, stmt, "%"+query+"%", limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search schools: %w", err)
	}
	defer rows.Close()

	return scanSchools(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSchool(row rowScanner) (*domain.School, error) {
	var (
		school       domain.School
		campusType   sql.NullString
		parentID     uuid.NullUUID
		province     sql.NullString
		municipality sql.NullString
		address      sql.NullString
	)
	err := row.Scan(
		&school.ID, &school.Source, &school.ExternalCode, &school.Name,
		&school.Level, &campusType, &parentID, &province, &municipality,
		&address, &school.IsActive, &school.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if campusType.Valid {
		school.CampusType = &campusType.String
	}
	if parentID.Valid {
		school.ParentID = &parentID.UUID
	}
	school.ProvinceCode = province.String
	school.MunicipalityCode = municipality.String
	school.Address = address.String
	return &school, nil
}

func scanSchools(rows *sql.Rows) ([]*domain.School, error) {
	var schools []*domain.School
	for rows.Next() {
		school, err := scanSchool(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan school: %w", err)
		}
		schools = append(schools, school)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating schools: %w", err)
	}
	return schools, nil
}
