package solver

import (
	"sort"

	"github.com/campusplan/solver-api/internal/dto"
	"github.com/campusplan/solver-api/internal/model"
)

// MapResult translates a raw assignment back into the caller's
// vocabulary: section ids, course ids, a per-semester grouping, and the
// achieved per-tier scores. Scores stay in scaled integer units; the
// response echoes the scale so the caller can divide back out.
func MapResult(m *Model, res Result) dto.SolveResponse {
	resp := dto.SolveResponse{
		Status:         res.Status,
		ChosenSections: []string{},
		ChosenClasses:  []string{},
		BySemester:     map[string][]string{},
		Scale:          m.Problem.Scale,
	}
	if res.Status == model.StatusInfeasible {
		return resp
	}

	classes := make(map[string]bool, len(res.Chosen))
	for _, si := range res.Chosen {
		sec := m.Sections[si]
		resp.ChosenSections = append(resp.ChosenSections, sec.ID)
		classes[sec.CourseID] = true
		resp.BySemester[sec.SemesterID] = append(resp.BySemester[sec.SemesterID], sec.ID)
	}
	sort.Strings(resp.ChosenSections)
	for _, rids := range resp.BySemester {
		sort.Strings(rids)
	}
	for classID := range classes {
		resp.ChosenClasses = append(resp.ChosenClasses, classID)
	}
	sort.Strings(resp.ChosenClasses)

	resp.ObjectiveScores = res.Scores
	return resp
}
