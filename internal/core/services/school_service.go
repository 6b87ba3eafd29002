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

const searchLimit = 20

type schoolService struct {
	repo      ports.SchoolRepository
	resolver  ports.RegionResolver
	directory ports.SchoolDirectory
	logger    *zap.Logger
}

func NewSchoolService(repo ports.SchoolRepository, resolver ports.RegionResolver, directory ports.SchoolDirectory, logger *zap.Logger) ports.SchoolService {
	return &schoolService{
		repo:      repo,
		resolver:  resolver,
		directory: directory,
		logger:    logger,
	}
}

// Ensure finds the record for (source, externalCode) or creates it. Found
// records get their region codes recomputed and, when stale, backfilled
// with a targeted update that never touches name, level or parent. Two
// callers racing on the backfill converge to the same resolved value, so
// the write order does not matter.
func (s *schoolService) Ensure(ctx context.Context, input ports.EnsureSchoolInput) (*domain.School, error) {
	existing, err := s.repo.FindBySourceCode(ctx, input.Source, input.ExternalCode)
	if err != nil && !errors.Is(err, domain.ErrSchoolNotFound) {
		return nil, fmt.Errorf("failed to look up school: %w", err)
	}

	if existing != nil {
		province, municipality := s.desiredRegion(existing.ProvinceCode, existing.MunicipalityCode, input)
		if province != existing.ProvinceCode || municipality != existing.MunicipalityCode {
			if err := s.repo.UpdateRegion(ctx, existing.ID, province, municipality); err != nil {
				return nil, fmt.Errorf("failed to backfill school region: %w", err)
			}
			existing.ProvinceCode = province
			existing.MunicipalityCode = municipality
			s.logger.Info("backfilled school region",
				zap.String("school_id", existing.ID.String()),
				zap.String("province_code", province),
				zap.String("municipality_code", municipality))
		}
		return existing, nil
	}

	province, municipality := s.desiredRegion("", "", input)
	school := &domain.School{
		ID:               uuid.New(),
		Source:           input.Source,
		ExternalCode:     input.ExternalCode,
		Name:             input.Name,
		Level:            input.Level,
		CampusType:       input.CampusType,
		ParentID:         input.ParentID,
		ProvinceCode:     province,
		MunicipalityCode: municipality,
		Address:          input.Address,
		IsActive:         input.Status != domain.ClosedStatusMarker,
		CreatedAt:        time.Now(),
	}
	if err := s.repo.Insert(ctx, school); err != nil {
		return nil, fmt.Errorf("failed to insert school: %w", err)
	}
	return school, nil
}

// desiredRegion applies the backfill precedence per field: stored codes
// win, then caller-supplied codes, then a fresh resolution from the
// address. Unresolvable fields stay empty; that is a normal outcome.
func (s *schoolService) desiredRegion(currentProvince, currentMunicipality string, input ports.EnsureSchoolInput) (string, string) {
	province := currentProvince
	if province == "" {
		province = input.ProvinceCode
	}
	municipality := currentMunicipality
	if municipality == "" {
		municipality = input.MunicipalityCode
	}

	if (province == "" || municipality == "") && input.Address != "" {
		resolvedProvince, resolution := s.resolver.ResolveFromAddress(input.Address)
		if province == "" {
			province = resolvedProvince
		}
		if municipality == "" && resolution.Resolved {
			municipality = resolution.Code
		}
	}
	return province, municipality
}

func (s *schoolService) Get(ctx context.Context, id uuid.UUID) (*domain.School, error) {
	return s.repo.FindByID(ctx, id)
}

// ReconcileParents groups schools by parenthetical-stripped base name and
// links every sibling to the group's main campus, falling back to the
// first member when no record carries the main-campus marker. A rerun
// against already-correct links performs zero writes.
func (s *schoolService) ReconcileParents(ctx context.Context) (int, error) {
	schools, err := s.repo.ListAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list schools: %w", err)
	}

	groups := make(map[string][]*domain.School)
	for _, school := range schools {
		base := NormalizeRegionName(school.Name)
		groups[base] = append(groups[base], school)
	}

	linked := 0
	for _, group := range groups {
		if len(group) < 2 {
			continue
		}

		root := group[0]
		for _, member := range group {
			if member.IsMainCampus() {
				root = member
				break
			}
		}

		for _, member := range group {
			if member.ID == root.ID {
				continue
			}
			if member.ParentID != nil && *member.ParentID == root.ID {
				continue
			}
			if err := s.repo.UpdateParent(ctx, member.ID, root.ID); err != nil {
				return linked, fmt.Errorf("failed to link campus %s: %w", member.ID, err)
			}
			linked++
		}
	}

	if linked > 0 {
		s.logger.Info("reconciled campus parents", zap.Int("linked", linked))
	}
	return linked, nil
}

// Search merges local records with the external directory. Directory
// failures degrade to zero external results; the lookup still answers
// from local data.
func (s *schoolService) Search(ctx context.Context, query string) ([]*domain.School, error) {
	local, err := s.repo.SearchByName(ctx, query, searchLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to search schools: %w", err)
	}

	seen := make(map[string]bool, len(local))
	for _, school := range local {
		seen[string(school.Source)+":"+school.ExternalCode] = true
	}

	external, err := s.directory.Search(ctx, query)
	if err != nil {
		s.logger.Warn("school directory unavailable", zap.Error(err))
		return local, nil
	}

	results := local
	for _, entry := range external {
		if seen[string(domain.SourceCareerNet)+":"+entry.ExternalCode] {
			continue
		}
		campusType := entry.CampusType
		var campus *string
		if campusType != "" {
			campus = &campusType
		}
		provinceCode, municipality := s.resolver.ResolveFromAddress(entry.Address)
		results = append(results, &domain.School{
			Source:           domain.SourceCareerNet,
			ExternalCode:     entry.ExternalCode,
			Name:             entry.Name,
			Level:            entry.Level,
			CampusType:       campus,
			ProvinceCode:     provinceCode,
			MunicipalityCode: municipality.Code,
			Address:          entry.Address,
			IsActive:         entry.Status != domain.ClosedStatusMarker,
		})
	}
	return results, nil
}
