package solver

import (
	"context"
	"fmt"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusplan/solver-api/internal/model"
)

func runSearch(p *Problem) (*Model, Result) {
	m := Compile(p)
	o := BuildObjective(m)
	return m, Search(context.Background(), m, o)
}

func chosenIDs(m *Model, res Result) []string {
	ids := make([]string, 0, len(res.Chosen))
	for _, si := range res.Chosen {
		ids = append(ids, m.Sections[si].ID)
	}
	sort.Strings(ids)
	return ids
}

func TestSearchDisallowedDay(t *testing.T) {
	p := problem([]model.Section{
		sec("r1", "c1", "fall", days("Mon", "Wed", "Fri"), 540, 630),
		sec("r2", "c1", "fall", days("Tue", "Thu"), 540, 630),
	}, []string{"fall"}, 5,
		hard(model.KindDisallowedDays, model.DaysPayload{Days: days("Mon")}),
	)
	m, res := runSearch(p)

	require.Equal(t, model.StatusOptimal, res.Status)
	assert.True(t, res.Proven)
	assert.Equal(t, []string{"r2"}, chosenIDs(m, res))
}

func TestSearchForcedConflictInfeasible(t *testing.T) {
	p := problem([]model.Section{
		sec("r1", "c1", "fall", days("Mon"), 540, 600),
		sec("r2", "c2", "fall", days("Mon"), 540, 600),
	}, []string{"fall"}, 5,
		hard(model.KindIncludeCourse, model.CoursePayload{CourseID: "c1"}),
		hard(model.KindIncludeCourse, model.CoursePayload{CourseID: "c2"}),
	)
	_, res := runSearch(p)

	assert.Equal(t, model.StatusInfeasible, res.Status)
	assert.True(t, res.Proven)
	assert.Empty(t, res.Chosen)
}

func TestSearchTargetCount(t *testing.T) {
	sections := make([]model.Section, 0, 6)
	for i := 0; i < 6; i++ {
		start := 480 + i*60
		sections = append(sections, sec(
			fmt.Sprintf("r%d", i+1), fmt.Sprintf("c%d", i+1), "fall",
			days("Mon"), start, start+50,
		))
	}
	p := problem(sections, []string{"fall"}, 6,
		hard(model.KindTargetCoursesPerSemester, model.CountPayload{Count: 3}),
	)
	m, res := runSearch(p)

	require.Equal(t, model.StatusOptimal, res.Status)
	assert.Len(t, res.Chosen, 3)
	assert.Len(t, chosenIDs(m, res), 3)
}

func TestSearchBookmarkBeatsComfortPair(t *testing.T) {
	sections := []model.Section{
		{ID: "rb", CourseID: "b1", SemesterID: "fall", Days: days("Mon"), Start: 540, End: 660},
		{ID: "r1", CourseID: "c1", SemesterID: "fall", Days: days("Mon"), Start: 540, End: 600, Rating: 5},
		{ID: "r2", CourseID: "c2", SemesterID: "fall", Days: days("Mon"), Start: 600, End: 660, Rating: 5},
	}
	p := problem(sections, []string{"fall"}, 5,
		soft(model.KindProfessorRatingWeight, 10, model.EmptyPayload{}),
	)
	p.Bookmarks = map[string]bool{"b1": true}

	m, res := runSearch(p)
	require.Equal(t, model.StatusOptimal, res.Status)
	assert.Equal(t, []string{"rb"}, chosenIDs(m, res))
	assert.Equal(t, int64(100), res.Scores.Bookmarks)
}

func TestSearchMinPerSemesterInfeasible(t *testing.T) {
	p := problem([]model.Section{
		sec("r1", "c1", "fall", days("Mon"), 540, 630),
	}, []string{"fall"}, 5,
		hard(model.KindMinCoursesPerSemester, model.CountPayload{Count: 2}),
	)
	_, res := runSearch(p)

	assert.Equal(t, model.StatusInfeasible, res.Status)
	assert.True(t, res.Proven)
}

func TestSearchOrdering(t *testing.T) {
	sections := []model.Section{
		sec("r1", "c1", "fall", days("Mon"), 540, 630),
		sec("r2", "c2", "fall", days("Tue"), 540, 630),
		sec("r3", "c2", "spring", days("Tue"), 540, 630),
	}

	t.Run("dependent course pushed to later semester", func(t *testing.T) {
		p := problem(sections, []string{"fall", "spring"}, 5,
			hard(model.KindEnforceOrdering, model.OrderingPayload{Before: "c1", After: "c2"}),
		)
		p.Bookmarks = map[string]bool{"c1": true, "c2": true}
		m, res := runSearch(p)

		require.Equal(t, model.StatusOptimal, res.Status)
		assert.Equal(t, []string{"r1", "r3"}, chosenIDs(m, res))
	})

	t.Run("completed prerequisite satisfies the ordering", func(t *testing.T) {
		p := problem(sections, []string{"fall", "spring"}, 5,
			hard(model.KindEnforceOrdering, model.OrderingPayload{Before: "c1", After: "c2"}),
		)
		p.Bookmarks = map[string]bool{"c2": true}
		p.Completed = map[string]bool{"c1": true}
		m, res := runSearch(p)

		require.Equal(t, model.StatusOptimal, res.Status)
		assert.Equal(t, []string{"r2"}, chosenIDs(m, res))
	})
}

func TestSearchPinnedSections(t *testing.T) {
	p := problem([]model.Section{
		sec("r1", "c1", "fall", days("Mon"), 540, 630),
		sec("r2", "c1", "fall", days("Tue"), 540, 630),
		sec("r3", "c2", "fall", days("Wed"), 540, 630),
	}, []string{"fall"}, 5,
		hard(model.KindPinSections, model.PinPayload{Sections: []string{"r2", "r3"}}),
	)
	m, res := runSearch(p)

	require.Equal(t, model.StatusOptimal, res.Status)
	assert.Equal(t, []string{"r2", "r3"}, chosenIDs(m, res))
}

func TestSearchDeterministicTieBreak(t *testing.T) {
	p := problem([]model.Section{
		sec("r2", "c1", "fall", days("Tue"), 540, 630),
		sec("r1", "c1", "fall", days("Mon"), 540, 630),
	}, []string{"fall"}, 5)

	m, res := runSearch(p)
	require.Equal(t, model.StatusOptimal, res.Status)
	// Equal-score options resolve to the lowest section id.
	assert.Equal(t, []string{"r1"}, chosenIDs(m, res))

	for i := 0; i < 5; i++ {
		again, res2 := runSearch(p)
		assert.Equal(t, chosenIDs(m, res), chosenIDs(again, res2))
		assert.Equal(t, res.Scores, res2.Scores)
	}
}

func TestSearchExpiredBeforeAnySolution(t *testing.T) {
	sections := make([]model.Section, 0, 600)
	for i := 0; i < 600; i++ {
		sections = append(sections, sec(
			fmt.Sprintf("r%03d", i), fmt.Sprintf("c%03d", i), "fall", 0, 0, 0,
		))
	}
	p := problem(sections, []string{"fall"}, 600)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	m := Compile(p)
	o := BuildObjective(m)
	res := Search(ctx, m, o)

	// The first descent is deeper than one deadline-check interval, so
	// the search expires before reaching any leaf.
	assert.Equal(t, model.StatusInfeasible, res.Status)
	assert.False(t, res.Proven)
}

func TestSearchExpiredAfterIncumbent(t *testing.T) {
	sections := make([]model.Section, 0, 600)
	for i := 0; i < 300; i++ {
		sections = append(sections,
			model.Section{ID: fmt.Sprintf("r%03da", i), CourseID: fmt.Sprintf("c%03d", i), SemesterID: "fall", Rating: 1},
			model.Section{ID: fmt.Sprintf("r%03db", i), CourseID: fmt.Sprintf("c%03d", i), SemesterID: "fall", Rating: 5},
		)
	}
	p := problem(sections, []string{"fall"}, 300,
		soft(model.KindProfessorRatingWeight, 1, model.EmptyPayload{}),
	)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	m := Compile(p)
	o := BuildObjective(m)
	res := Search(ctx, m, o)

	// An incumbent is found on the first descent; the expired budget
	// downgrades the claim from optimal to feasible.
	assert.Equal(t, model.StatusFeasible, res.Status)
	assert.False(t, res.Proven)
	assert.Len(t, res.Chosen, 300)
}

func TestMapResult(t *testing.T) {
	p := problem([]model.Section{
		sec("r2", "c2", "spring", days("Tue"), 540, 630),
		sec("r1", "c1", "fall", days("Mon"), 540, 630),
	}, []string{"fall", "spring"}, 5)
	p.Bookmarks = map[string]bool{"c1": true, "c2": true}

	m, res := runSearch(p)
	resp := MapResult(m, res)

	assert.Equal(t, model.StatusOptimal, resp.Status)
	assert.Equal(t, []string{"r1", "r2"}, resp.ChosenSections)
	assert.Equal(t, []string{"c1", "c2"}, resp.ChosenClasses)
	assert.Equal(t, map[string][]string{"fall": {"r1"}, "spring": {"r2"}}, resp.BySemester)
	assert.Equal(t, int64(200), resp.ObjectiveScores.Bookmarks)
	assert.Equal(t, 100, resp.Scale)
}

func TestMapResultInfeasible(t *testing.T) {
	p := problem([]model.Section{
		sec("r1", "c1", "fall", days("Mon"), 540, 630),
	}, []string{"fall"}, 5,
		hard(model.KindExcludeCourse, model.CoursePayload{CourseID: "c1"}),
		hard(model.KindIncludeCourse, model.CoursePayload{CourseID: "c1"}),
	)
	m, res := runSearch(p)
	resp := MapResult(m, res)

	assert.Equal(t, model.StatusInfeasible, resp.Status)
	assert.Empty(t, resp.ChosenSections)
	assert.Empty(t, resp.ChosenClasses)
	assert.Empty(t, resp.BySemester)
	assert.Equal(t, model.TierScores{}, resp.ObjectiveScores)
}
