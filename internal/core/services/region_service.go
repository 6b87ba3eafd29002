package services

import (
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/hanvote/regionvote/internal/core/domain"
	"github.com/hanvote/regionvote/internal/core/ports"
)

// provinceCodes maps every supported sido name variant to its fixed
// two-digit code. Keys are normalized (no whitespace, no parentheticals).
var provinceCodes = map[string]string{
	"서울": "11", "서울시": "11", "서울특별시": "11",
	"부산": "21", "부산시": "21", "부산광역시": "21",
	"대구": "22", "대구시": "22", "대구광역시": "22",
	"인천": "23", "인천시": "23", "인천광역시": "23",
	"광주": "24", "광주시": "24", "광주광역시": "24",
	"대전": "25", "대전시": "25", "대전광역시": "25",
	"울산": "26", "울산시": "26", "울산광역시": "26",
	"세종": "29", "세종시": "29", "세종특별자치시": "29",
	"경기": "31", "경기도": "31",
	"강원": "32", "강원도": "32", "강원특별자치도": "32",
	"충북": "33", "충청북도": "33",
	"충남": "34", "충청남도": "34",
	"전북": "35", "전라북도": "35", "전북특별자치도": "35",
	"전남": "36", "전라남도": "36",
	"경북": "37", "경상북도": "37",
	"경남": "38", "경상남도": "38",
	"제주": "39", "제주도": "39", "제주특별자치도": "39",
}

// municipalityAliases maps renamed or commonly ambiguous sigungu names to
// the current gazetteer names that should also be tried. Keys and values
// are normalized names.
var municipalityAliases = map[string][]string{
	"남구":  {"미추홀구"}, // Incheon Nam-gu was renamed Michuhol-gu in 2018
	"여주군": {"여주시"},
	"마산시": {"창원시"},
	"진해시": {"창원시"},
	"청원군": {"청주시"},
}

// districtSuffixes are the runes a sigungu name can end with. A 2nd+3rd
// address token concatenation is only a candidate when it ends in one of
// these, which covers multi-word names like "창원시 마산합포구".
var districtSuffixes = map[rune]bool{'구': true, '군': true, '시': true}

var parentheticalPattern = regexp.MustCompile(`\s*\([^)]*\)`)

// NormalizeRegionName strips parenthetical suffixes and all whitespace so
// that "서울 (특별시)" and "서울특별시" compare equal.
func NormalizeRegionName(name string) string {
	name = parentheticalPattern.ReplaceAllString(name, "")
	return strings.Join(strings.Fields(name), "")
}

type regionService struct {
	gazetteer ports.Gazetteer
	logger    *zap.Logger
}

func NewRegionService(gazetteer ports.Gazetteer, logger *zap.Logger) ports.RegionResolver {
	return &regionService{
		gazetteer: gazetteer,
		logger:    logger,
	}
}

func (s *regionService) ResolveProvinceCode(name string) (string, bool) {
	code, ok := provinceCodes[NormalizeRegionName(name)]
	return code, ok
}

// extractMunicipalityCandidates pulls sigungu name candidates out of a
// free-text address. The second whitespace token is always a candidate;
// the second and third concatenated are an additional candidate when the
// result ends in a district suffix. Single-token addresses yield nothing.
func extractMunicipalityCandidates(address string) []string {
	tokens := strings.Fields(address)
	if len(tokens) < 2 {
		return nil
	}

	candidates := []string{tokens[1]}
	if len(tokens) >= 3 {
		joined := tokens[1] + tokens[2]
		runes := []rune(joined)
		if len(runes) > 0 && districtSuffixes[runes[len(runes)-1]] {
			candidates = append(candidates, joined)
		}
	}
	return candidates
}

func (s *regionService) ResolveMunicipality(q ports.MunicipalityQuery) domain.RegionResolution {
	var candidates []string
	if q.MunicipalityName != "" {
		candidates = append(candidates, q.MunicipalityName)
	}
	candidates = append(candidates, extractMunicipalityCandidates(q.Address)...)

	// Aliases ride along after the candidate they expand, so the supplied
	// name always wins over a renamed equivalent when both exist.
	var expanded []string
	for _, cand := range candidates {
		norm := NormalizeRegionName(cand)
		if norm == "" {
			continue
		}
		expanded = append(expanded, norm)
		expanded = append(expanded, municipalityAliases[norm]...)
	}

	entries := s.gazetteer.Municipalities()
	if q.ProvinceCode != "" {
		filtered := make([]domain.Municipality, 0, len(entries))
		for _, entry := range entries {
			if strings.HasPrefix(entry.Code, q.ProvinceCode) {
				filtered = append(filtered, entry)
			}
		}
		entries = filtered
	}

	for _, cand := range expanded {
		for _, entry := range entries {
			if entry.NormalizedName == cand {
				return domain.RegionResolution{Code: entry.Code, Name: entry.Name, Resolved: true}
			}
		}
	}

	// Suffix containment tolerates partial names in either direction. Less
	// precise than an exact match when the province is unknown; the prefix
	// filter above is what keeps same-named districts apart.
	for _, cand := range expanded {
		for _, entry := range entries {
			if strings.HasSuffix(entry.NormalizedName, cand) || strings.HasSuffix(cand, entry.NormalizedName) {
				return domain.RegionResolution{Code: entry.Code, Name: entry.Name, Resolved: true}
			}
		}
	}

	bestEffort := q.MunicipalityName
	if bestEffort == "" && len(candidates) > 0 {
		bestEffort = candidates[0]
	}
	s.logger.Debug("municipality unresolved",
		zap.String("province_code", q.ProvinceCode),
		zap.String("best_effort", bestEffort))
	return domain.RegionResolution{Name: bestEffort, Resolved: false}
}

func (s *regionService) ResolveFromAddress(address string) (string, domain.RegionResolution) {
	tokens := strings.Fields(address)
	if len(tokens) == 0 {
		return "", domain.RegionResolution{}
	}

	provinceCode, _ := s.ResolveProvinceCode(tokens[0])
	municipality := s.ResolveMunicipality(ports.MunicipalityQuery{
		ProvinceCode: provinceCode,
		Address:      address,
	})
	return provinceCode, municipality
}
