package solver

import "github.com/campusplan/solver-api/internal/model"

// BuildConflictIndex computes, for each section in the pool, the other
// sections it cannot coexist with. Two sections conflict when they sit
// in the same semester, share a meeting day, and their half-open time
// intervals overlap. Explicit pairs are unioned in regardless of
// semester so the backend can encode administrative exclusions (a lab
// and its lecture, cross-listed sections).
//
// The result is an adjacency list aligned with the input slice. Pairs
// naming sections outside the pool are skipped: a filtered-out section
// can no longer conflict with anything.
func BuildConflictIndex(sections []model.Section, explicit [][]string) [][]int {
	adj := make([][]int, len(sections))

	bySemester := make(map[string][]int)
	for i, sec := range sections {
		bySemester[sec.SemesterID] = append(bySemester[sec.SemesterID], i)
	}

	for _, idxs := range bySemester {
		for a := 0; a < len(idxs); a++ {
			for b := a + 1; b < len(idxs); b++ {
				i, j := idxs[a], idxs[b]
				if sections[i].OverlapsTime(sections[j]) {
					adj[i] = append(adj[i], j)
					adj[j] = append(adj[j], i)
				}
			}
		}
	}

	index := make(map[string]int, len(sections))
	for i, sec := range sections {
		index[sec.ID] = i
	}
	seen := make(map[[2]int]bool)
	for i := range adj {
		for _, j := range adj[i] {
			if i < j {
				seen[[2]int{i, j}] = true
			}
		}
	}
	for _, pair := range explicit {
		if len(pair) != 2 {
			continue
		}
		i, okA := index[pair[0]]
		j, okB := index[pair[1]]
		if !okA || !okB || i == j {
			continue
		}
		key := [2]int{i, j}
		if j < i {
			key = [2]int{j, i}
		}
		if seen[key] {
			continue
		}
		seen[key] = true
		adj[i] = append(adj[i], j)
		adj[j] = append(adj[j], i)
	}

	return adj
}
