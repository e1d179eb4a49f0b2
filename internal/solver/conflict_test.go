package solver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusplan/solver-api/internal/model"
)

func days(names ...string) model.DaySet {
	set, _, _ := model.ParseDaySet(names)
	return set
}

func sec(id, course, sem string, d model.DaySet, start, end int) model.Section {
	return model.Section{ID: id, CourseID: course, SemesterID: sem, Days: d, Start: start, End: end}
}

func TestBuildConflictIndexTimeOverlap(t *testing.T) {
	sections := []model.Section{
		sec("r1", "c1", "fall", days("Mon", "Wed"), 540, 630),
		sec("r2", "c2", "fall", days("Mon"), 600, 660),
		sec("r3", "c3", "fall", days("Mon"), 630, 720), // back to back with r1
		sec("r4", "c4", "fall", days("Tue"), 540, 630),
	}

	adj := BuildConflictIndex(sections, nil)
	require.Len(t, adj, 4)
	assert.Equal(t, []int{1}, adj[0])
	assert.ElementsMatch(t, []int{0, 2}, adj[1])
	assert.Equal(t, []int{1}, adj[2])
	assert.Empty(t, adj[3])
}

func TestBuildConflictIndexDifferentSemesters(t *testing.T) {
	sections := []model.Section{
		sec("r1", "c1", "fall", days("Mon"), 540, 630),
		sec("r2", "c2", "spring", days("Mon"), 540, 630),
	}
	adj := BuildConflictIndex(sections, nil)
	assert.Empty(t, adj[0])
	assert.Empty(t, adj[1])
}

func TestBuildConflictIndexAsync(t *testing.T) {
	sections := []model.Section{
		sec("r1", "c1", "fall", days("Mon"), 540, 630),
		sec("r2", "c2", "fall", 0, 540, 630),
		sec("r3", "c3", "fall", 0, 540, 630),
	}
	adj := BuildConflictIndex(sections, nil)
	for i := range adj {
		assert.Empty(t, adj[i])
	}
}

func TestBuildConflictIndexExplicitPairs(t *testing.T) {
	sections := []model.Section{
		sec("r1", "c1", "fall", days("Mon"), 540, 630),
		sec("r2", "c2", "spring", days("Mon"), 540, 630),
		sec("r3", "c3", "fall", days("Mon"), 600, 660),
	}

	adj := BuildConflictIndex(sections, [][]string{
		{"r1", "r2"},       // cross-semester, honored
		{"r1", "r3"},       // already conflicting, not duplicated
		{"r1", "missing"},  // unknown rid, skipped
		{"r2", "r2"},       // self pair, skipped
		{"r1", "r2", "r3"}, // wrong arity, skipped
	})

	assert.ElementsMatch(t, []int{1, 2}, adj[0])
	assert.Equal(t, []int{0}, adj[1])
	assert.Equal(t, []int{0}, adj[2])
}
