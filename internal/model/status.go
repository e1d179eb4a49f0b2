package model

// SolveStatus is the terminal state of one search run.
type SolveStatus string

const (
	// StatusOptimal means the search proved no better assignment exists.
	StatusOptimal SolveStatus = "OPTIMAL"
	// StatusFeasible means the time budget expired with at least one
	// feasible assignment found; the best one is returned.
	StatusFeasible SolveStatus = "FEASIBLE"
	// StatusInfeasible means no assignment satisfies the hard
	// constraints (proven), or none was found before the budget expired.
	StatusInfeasible SolveStatus = "INFEASIBLE"
)

// TierScores holds the achieved integer score per objective tier, in
// scaled units (multiply raw weights by the request scale).
type TierScores struct {
	Bookmarks int64 `json:"bookmarks"`
	Degree    int64 `json:"degree"`
	Comfort   int64 `json:"comfort"`
}

func (t TierScores) Get(tier Tier) int64 {
	switch tier {
	case TierBookmarks:
		return t.Bookmarks
	case TierDegree:
		return t.Degree
	default:
		return t.Comfort
	}
}

func (t *TierScores) Add(tier Tier, v int64) {
	switch tier {
	case TierBookmarks:
		t.Bookmarks += v
	case TierDegree:
		t.Degree += v
	default:
		t.Comfort += v
	}
}
