package domain

type Winner string

const (
	WinnerA   Winner = "A"
	WinnerB   Winner = "B"
	WinnerTie Winner = "TIE"
)

// RegionStat is the per-region tally for a topic at one level.
type RegionStat struct {
	Total  int64  `json:"total"`
	CountA int64  `json:"count_a"`
	CountB int64  `json:"count_b"`
	Winner Winner `json:"winner"`
}

// DecideWinner applies the strict-greater rule; equal counts, including
// zero against zero, are a tie.
func DecideWinner(countA, countB int64) Winner {
	switch {
	case countA > countB:
		return WinnerA
	case countB > countA:
		return WinnerB
	default:
		return WinnerTie
	}
}
