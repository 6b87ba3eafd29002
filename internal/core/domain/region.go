package domain

// Municipality is a single sigungu entry from the gazetteer. Codes are
// five digits; the first two are the owning province (sido) code.
type Municipality struct {
	Code           string
	Name           string
	NormalizedName string
}

// ProvinceOf returns the two-digit sido prefix of a municipality code.
func (m Municipality) ProvinceOf() string {
	if len(m.Code) < 2 {
		return ""
	}
	return m.Code[:2]
}

// RegionResolution is the outcome of a municipality lookup. Resolved=false
// is a normal outcome, not an error: Name still carries the best display
// name available to the caller.
type RegionResolution struct {
	Code     string
	Name     string
	Resolved bool
}

// RegionLevel selects the grouping granularity for aggregation queries.
type RegionLevel string

const (
	LevelSido    RegionLevel = "sido"
	LevelSigungu RegionLevel = "sigungu"
)

// ParseRegionLevel validates a level string; the empty string selects the
// sido default.
func ParseRegionLevel(s string) (RegionLevel, error) {
	switch RegionLevel(s) {
	case "":
		return LevelSido, nil
	case LevelSido, LevelSigungu:
		return RegionLevel(s), nil
	default:
		return "", ErrInvalidLevel
	}
}
