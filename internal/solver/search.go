package solver

import (
	"context"

	"github.com/campusplan/solver-api/internal/model"
)

// Result is the terminal outcome of one search run.
type Result struct {
	Status model.SolveStatus
	// Proven distinguishes a proven-infeasible model from "nothing
	// found before the deadline". Not part of the wire contract.
	Proven bool
	Chosen []int
	Scores model.TierScores
	Nodes  int64
}

// deadlineCheckInterval is how many nodes are expanded between context
// checks; the budget is a wall-clock cap, not an instruction cap, so a
// small slack past the deadline is acceptable.
const deadlineCheckInterval = 512

// Search runs a deterministic depth-first branch-and-bound over the
// compiled model. Courses are decided in course-id order and options in
// (semester, section-id) order with skip last, so ties between
// equal-score assignments always resolve to the first one reached in
// that fixed order. Cancellation via ctx returns the best assignment
// found so far.
func Search(ctx context.Context, m *Model, o *Objective) Result {
	if m.Infeasible {
		return Result{Status: model.StatusInfeasible, Proven: true}
	}

	s := &searcher{
		ctx:      ctx,
		m:        m,
		o:        o,
		used:     make([]bool, len(m.Sections)),
		semCount: make([]int, len(m.Problem.Semesters)),
		semOf:    make([]int, len(m.Sections)),
		chosenBy: make(map[string]int, len(m.Courses)),
	}
	for i, sec := range m.Sections {
		s.semOf[i] = m.SemIndex[sec.SemesterID]
	}

	s.dfs(0, 0)

	res := Result{Nodes: s.nodes}
	switch {
	case s.found && !s.expired:
		res.Status = model.StatusOptimal
		res.Proven = true
	case s.found:
		res.Status = model.StatusFeasible
	case !s.expired:
		res.Status = model.StatusInfeasible
		res.Proven = true
	default:
		res.Status = model.StatusInfeasible
	}
	if s.found {
		res.Chosen = s.best
		res.Scores = s.bestScores
	}
	return res
}

type searcher struct {
	ctx context.Context
	m   *Model
	o   *Objective

	used     []bool
	chosen   []int
	semCount []int
	semOf    []int
	chosenBy map[string]int // course id -> semester index

	found      bool
	best       []int
	bestScalar int64
	bestScores model.TierScores

	nodes   int64
	expired bool
}

func (s *searcher) dfs(ci int, running int64) {
	if s.expired {
		return
	}
	s.nodes++
	if s.nodes%deadlineCheckInterval == 0 && s.ctx.Err() != nil {
		s.expired = true
		return
	}

	if ci == len(s.m.Courses) {
		s.visitLeaf()
		return
	}

	if s.found && s.o.Bound(running, ci) <= s.bestScalar {
		return
	}

	course := s.m.Courses[ci]
	for _, si := range course.Options {
		if !s.canChoose(si) {
			continue
		}
		s.choose(course.CourseID, si)
		s.dfs(ci+1, running+s.o.scalarLocal(si))
		s.unchoose(course.CourseID, si)
		if s.expired {
			return
		}
	}

	if !course.Required {
		s.dfs(ci+1, running)
	}
}

func (s *searcher) canChoose(si int) bool {
	if s.semCount[s.semOf[si]]+1 > s.m.MaxPerSem[s.semOf[si]] {
		return false
	}
	for _, other := range s.m.Adj[si] {
		if s.used[other] {
			return false
		}
	}
	return true
}

func (s *searcher) choose(courseID string, si int) {
	s.used[si] = true
	s.chosen = append(s.chosen, si)
	s.semCount[s.semOf[si]]++
	s.chosenBy[courseID] = s.semOf[si]
}

func (s *searcher) unchoose(courseID string, si int) {
	s.used[si] = false
	s.chosen = s.chosen[:len(s.chosen)-1]
	s.semCount[s.semOf[si]]--
	delete(s.chosenBy, courseID)
}

func (s *searcher) visitLeaf() {
	if !s.leafFeasible() {
		return
	}
	scores := s.o.Evaluate(s.m, s.chosen)
	scalar := s.o.Scalarize(scores)
	// Strict improvement keeps the first assignment reached among
	// equal-score ones, which is what makes the solver reproducible.
	if s.found && scalar <= s.bestScalar {
		return
	}
	s.found = true
	s.bestScalar = scalar
	s.bestScores = scores
	s.best = append(s.best[:0], s.chosen...)
}

// leafFeasible checks the constraints that only a complete assignment
// can answer: per-semester minimums, group minimums, and prerequisite
// ordering.
func (s *searcher) leafFeasible() bool {
	for si, minCount := range s.m.MinPerSem {
		if s.semCount[si] < minCount {
			return false
		}
	}

	for _, bound := range s.m.GroupBounds {
		count := 0
		for courseID := range bound.Members {
			if s.m.Problem.Completed[courseID] {
				count++
				continue
			}
			if _, ok := s.chosenBy[courseID]; ok {
				count++
			}
		}
		if count < bound.Min {
			return false
		}
	}

	for _, rule := range s.m.Orderings {
		afterSem, afterChosen := s.chosenBy[rule.After]
		if !afterChosen {
			continue
		}
		if s.m.Problem.Completed[rule.Before] {
			continue
		}
		beforeSem, beforeChosen := s.chosenBy[rule.Before]
		if !beforeChosen || beforeSem >= afterSem {
			return false
		}
	}

	return true
}
