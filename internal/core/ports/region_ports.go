package ports

import (
	"github.com/hanvote/regionvote/internal/core/domain"
)

// Gazetteer exposes the static sigungu reference data. Implementations are
// read-only after initialization and safe for concurrent use.
type Gazetteer interface {
	Municipalities() []domain.Municipality
}

// MunicipalityQuery carries whatever partial region information the caller
// has. All fields are optional; the resolver works with what is present.
type MunicipalityQuery struct {
	ProvinceCode     string
	MunicipalityName string
	Address          string
}

type RegionResolver interface {
	// ResolveProvinceCode maps a sido name in any supported variant to its
	// two-digit code. ok=false for unknown input; never an error.
	ResolveProvinceCode(name string) (code string, ok bool)

	// ResolveMunicipality finds the canonical sigungu for the query. A miss
	// returns Resolved=false with the best available display name.
	ResolveMunicipality(q MunicipalityQuery) domain.RegionResolution

	// ResolveFromAddress derives both codes from a free-text address,
	// treating the first token as the province name.
	ResolveFromAddress(address string) (provinceCode string, municipality domain.RegionResolution)
}
