package solver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusplan/solver-api/internal/model"
)

func hard(kind model.Kind, p model.Payload) model.Constraint {
	return model.Constraint{Kind: kind, Mode: model.ModeHard, Weight: 1, Payload: p}
}

func soft(kind model.Kind, weight float64, p model.Payload) model.Constraint {
	return model.Constraint{Kind: kind, Mode: model.ModeSoft, Weight: weight, Payload: p}
}

func problem(sections []model.Section, semesters []string, k int, constraints ...model.Constraint) *Problem {
	return &Problem{
		Sections:    sections,
		Semesters:   semesters,
		K:           k,
		Scale:       100,
		Constraints: constraints,
	}
}

func sectionIDs(m *Model) []string {
	ids := make([]string, len(m.Sections))
	for i, s := range m.Sections {
		ids[i] = s.ID
	}
	return ids
}

func TestCompileFiltersCandidates(t *testing.T) {
	sections := []model.Section{
		sec("r1", "c1", "fall", days("Mon", "Wed"), 540, 630),
		sec("r2", "c1", "fall", days("Tue", "Thu"), 540, 630),
		sec("r3", "c2", "winter", days("Mon"), 540, 630), // unknown semester
		sec("r4", "c3", "fall", days("Fri"), 480, 570),
	}
	p := problem(sections, []string{"fall"}, 5,
		hard(model.KindDisallowedDays, model.DaysPayload{Days: days("Mon")}),
	)
	p.Completed = map[string]bool{"c3": true}

	m := Compile(p)
	require.False(t, m.Infeasible)
	assert.Equal(t, []string{"r2"}, sectionIDs(m))
}

func TestCompileAsyncExemptFromTimeFilters(t *testing.T) {
	sections := []model.Section{
		sec("r1", "c1", "fall", days("Mon"), 480, 570), // before 09:00
		sec("r2", "c2", "fall", 0, 0, 0),               // async
	}
	m := Compile(problem(sections, []string{"fall"}, 5,
		hard(model.KindEarliestStart, model.TimePayload{Minutes: 540}),
	))
	require.False(t, m.Infeasible)
	assert.Equal(t, []string{"r2"}, sectionIDs(m))
}

func TestCompileSectionFilter(t *testing.T) {
	sections := []model.Section{
		{ID: "r1", CourseID: "c1", SemesterID: "fall", Days: days("Mon", "Fri"), Start: 540, End: 630, InstructorID: "p1"},
		{ID: "r2", CourseID: "c2", SemesterID: "fall", Days: days("Mon"), Start: 540, End: 630, InstructorID: "p2"},
		{ID: "r3", CourseID: "c3", SemesterID: "fall", Days: days("Mon"), Start: 540, End: 630, InstructorID: "p1"},
	}
	m := Compile(problem(sections, []string{"fall"}, 5,
		hard(model.KindSectionFilter, model.FilterPayload{
			Days: days("Mon", "Wed"), Earliest: -1, Latest: -1, ExcludeInstructors: []string{"p2"},
		}),
	))
	require.False(t, m.Infeasible)
	// r1 meets on Friday, outside the allowed days; r2 is excluded by instructor.
	assert.Equal(t, []string{"r3"}, sectionIDs(m))
}

func TestCompilePins(t *testing.T) {
	sections := []model.Section{
		sec("r1", "c1", "fall", days("Mon"), 540, 630),
		sec("r2", "c1", "fall", days("Tue"), 540, 630),
		sec("r3", "c2", "fall", days("Wed"), 540, 630),
	}

	t.Run("pool restricted and courses required", func(t *testing.T) {
		m := Compile(problem(sections, []string{"fall"}, 5,
			hard(model.KindPinSections, model.PinPayload{Sections: []string{"r2", "r3"}}),
		))
		require.False(t, m.Infeasible)
		assert.ElementsMatch(t, []string{"r2", "r3"}, sectionIDs(m))
		for _, course := range m.Courses {
			assert.True(t, course.Required, course.CourseID)
		}
	})

	t.Run("unknown pinned section fails", func(t *testing.T) {
		m := Compile(problem(sections, []string{"fall"}, 5,
			hard(model.KindPinSections, model.PinPayload{Sections: []string{"r9"}}),
		))
		assert.True(t, m.Infeasible)
	})

	t.Run("two pins on one course fail", func(t *testing.T) {
		m := Compile(problem(sections, []string{"fall"}, 5,
			hard(model.KindPinSections, model.PinPayload{Sections: []string{"r1", "r2"}}),
		))
		assert.True(t, m.Infeasible)
	})
}

func TestCompileIncludes(t *testing.T) {
	sections := []model.Section{
		sec("r1", "c1", "fall", days("Mon"), 540, 630),
		sec("r2", "c1", "fall", days("Tue"), 540, 630),
		sec("r3", "c2", "fall", days("Wed"), 540, 630),
	}

	t.Run("include_course marks required", func(t *testing.T) {
		m := Compile(problem(sections, []string{"fall"}, 5,
			hard(model.KindIncludeCourse, model.CoursePayload{CourseID: "c1"}),
		))
		require.False(t, m.Infeasible)
		require.Len(t, m.Courses, 2)
		assert.True(t, m.Courses[0].Required)
		assert.False(t, m.Courses[1].Required)
	})

	t.Run("include_course with no sections fails", func(t *testing.T) {
		m := Compile(problem(sections, []string{"fall"}, 5,
			hard(model.KindIncludeCourse, model.CoursePayload{CourseID: "c9"}),
		))
		assert.True(t, m.Infeasible)
	})

	t.Run("include_section drops siblings", func(t *testing.T) {
		m := Compile(problem(sections, []string{"fall"}, 5,
			hard(model.KindIncludeSection, model.SectionPayload{SectionID: "r2"}),
		))
		require.False(t, m.Infeasible)
		assert.ElementsMatch(t, []string{"r2", "r3"}, sectionIDs(m))
	})

	t.Run("include_section filtered out fails", func(t *testing.T) {
		m := Compile(problem(sections, []string{"fall"}, 5,
			hard(model.KindExcludeSection, model.SectionPayload{SectionID: "r2"}),
			hard(model.KindIncludeSection, model.SectionPayload{SectionID: "r2"}),
		))
		assert.True(t, m.Infeasible)
	})
}

func TestCompileCourseAndOptionOrder(t *testing.T) {
	sections := []model.Section{
		sec("r3", "beta", "spring", days("Mon"), 540, 630),
		sec("r1", "beta", "fall", days("Mon"), 540, 630),
		sec("r2", "alpha", "fall", days("Tue"), 540, 630),
	}
	m := Compile(problem(sections, []string{"fall", "spring"}, 5))
	require.False(t, m.Infeasible)
	require.Len(t, m.Courses, 2)
	assert.Equal(t, "alpha", m.Courses[0].CourseID)
	assert.Equal(t, "beta", m.Courses[1].CourseID)

	// beta's options sorted by semester index, then section id.
	beta := m.Courses[1]
	require.Len(t, beta.Options, 2)
	assert.Equal(t, "r1", m.Sections[beta.Options[0]].ID)
	assert.Equal(t, "r3", m.Sections[beta.Options[1]].ID)
}

func TestCompileCountBounds(t *testing.T) {
	sections := []model.Section{
		sec("r1", "c1", "fall", days("Mon"), 540, 630),
	}

	t.Run("target pins min and max", func(t *testing.T) {
		m := Compile(problem(sections, []string{"fall", "spring"}, 5,
			hard(model.KindTargetCoursesPerSemester, model.CountPayload{Count: 3, Semesters: []string{"fall"}}),
		))
		require.False(t, m.Infeasible)
		assert.Equal(t, []int{3, 5}, m.MaxPerSem)
		assert.Equal(t, []int{3, 0}, m.MinPerSem)
	})

	t.Run("max lowers only", func(t *testing.T) {
		m := Compile(problem(sections, []string{"fall"}, 5,
			hard(model.KindMaxCoursesPerSemester, model.CountPayload{Count: 2}),
		))
		require.False(t, m.Infeasible)
		assert.Equal(t, []int{2}, m.MaxPerSem)
	})

	t.Run("empty interval fails", func(t *testing.T) {
		m := Compile(problem(sections, []string{"fall"}, 5,
			hard(model.KindMaxCoursesPerSemester, model.CountPayload{Count: 1}),
			hard(model.KindMinCoursesPerSemester, model.CountPayload{Count: 2}),
		))
		assert.True(t, m.Infeasible)
	})

	t.Run("unknown semester warns and skips", func(t *testing.T) {
		m := Compile(problem(sections, []string{"fall"}, 5,
			hard(model.KindMaxCoursesPerSemester, model.CountPayload{Count: 1, Semesters: []string{"winter"}}),
		))
		require.False(t, m.Infeasible)
		assert.Equal(t, []int{5}, m.MaxPerSem)
		require.Len(t, m.Warnings, 1)
		assert.Contains(t, m.Warnings[0].Reason, "unknown semester")
	})
}

func TestCompileGroupBounds(t *testing.T) {
	sections := []model.Section{
		sec("r1", "c1", "fall", days("Mon"), 540, 630),
	}
	p := problem(sections, []string{"fall"}, 5,
		hard(model.KindRequireGroupCounts, model.GroupCountsPayload{Counts: map[string]int{"core": 1, "ghost": 2}}),
	)
	p.Groups = []model.RequirementGroup{{Name: "core", Courses: []string{"c1", "c2"}}}

	m := Compile(p)
	require.False(t, m.Infeasible)
	require.Len(t, m.GroupBounds, 1)
	assert.Equal(t, "core", m.GroupBounds[0].Name)
	assert.Equal(t, 1, m.GroupBounds[0].Min)
	require.Len(t, m.Warnings, 1)
	assert.Contains(t, m.Warnings[0].Reason, "unknown requirement group")
}
