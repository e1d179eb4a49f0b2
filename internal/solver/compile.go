package solver

import (
	"fmt"
	"sort"

	"github.com/campusplan/solver-api/internal/dto"
	"github.com/campusplan/solver-api/internal/model"
)

// Problem is the fully materialized input of one solve call, already
// translated out of the wire format. The solver never mutates it.
type Problem struct {
	Sections    []model.Section
	Conflicts   [][]string
	Groups      []model.RequirementGroup
	Hubs        []model.HubRequirement
	Semesters   []string
	Bookmarks   map[string]bool
	Completed   map[string]bool
	K           int
	Constraints []model.Constraint
	Scale       int
}

// CourseVar is the decision unit: pick at most one of Options (candidate
// section indices) for the course, or skip it unless Required.
type CourseVar struct {
	CourseID string
	Options  []int
	Required bool
}

// GroupBound is a hard minimum over a requirement group: at least Min
// members must be chosen or already completed.
type GroupBound struct {
	Name    string
	Members map[string]bool
	Min     int
}

// Model is the compiled decision model consumed by the search driver.
type Model struct {
	Problem  *Problem
	Sections []model.Section // candidate pool after hard filters
	Courses  []CourseVar     // sorted by course id
	Adj      [][]int         // conflict adjacency over Sections

	SemIndex  map[string]int
	MaxPerSem []int
	MinPerSem []int

	GroupBounds []GroupBound
	Orderings   []model.OrderingPayload

	// Infeasible is set when compilation alone proves the hard
	// constraints unsatisfiable; the search is skipped entirely.
	Infeasible bool
	Reason     string

	// Warnings collects constraints that reference entities absent
	// from the request and were skipped as harmless.
	Warnings []dto.ConstraintWarning

	pinnedAll bool
}

// Compile turns a Problem into a decision model: hard filters shrink
// the candidate pool, count constraints become per-semester bounds, and
// structural constraints (includes, pins, orderings, group minimums)
// become checks for the search driver.
func Compile(p *Problem) *Model {
	m := &Model{Problem: p, SemIndex: make(map[string]int, len(p.Semesters))}
	for i, sem := range p.Semesters {
		m.SemIndex[sem] = i
	}

	m.Sections = filterCandidates(p, m.SemIndex)

	if whitelist, pinned := pinWhitelist(p.Constraints); pinned {
		m.applyPins(whitelist)
		if m.Infeasible {
			return m
		}
	}

	required := make(map[string]bool)
	if !m.applyIncludes(required) {
		return m
	}

	m.buildCourses(required)
	m.Adj = BuildConflictIndex(m.Sections, p.Conflicts)
	if !m.applyCountBounds() {
		return m
	}
	m.applyGroupBounds()
	m.collectOrderings()

	return m
}

func (m *Model) fail(format string, args ...any) {
	m.Infeasible = true
	m.Reason = fmt.Sprintf(format, args...)
}

// filterCandidates drops completed courses and every section a hard
// filter-style constraint forbids. Asynchronous sections are exempt from
// day/time filters: they have no meeting pattern to object to.
func filterCandidates(p *Problem, semIndex map[string]int) []model.Section {
	out := make([]model.Section, 0, len(p.Sections))
	for _, sec := range p.Sections {
		if _, known := semIndex[sec.SemesterID]; !known {
			continue
		}
		if p.Completed[sec.CourseID] {
			continue
		}
		if sectionForbidden(sec, p.Constraints) {
			continue
		}
		out = append(out, sec)
	}
	return out
}

func sectionForbidden(sec model.Section, constraints []model.Constraint) bool {
	for _, c := range constraints {
		if c.Mode != model.ModeHard {
			continue
		}
		switch payload := c.Payload.(type) {
		case model.DaysPayload:
			// disallowed_days, and free_day escalated to hard.
			if sec.Days.Overlaps(payload.Days) {
				return true
			}
		case model.TimePayload:
			if sec.Async() {
				continue
			}
			if c.Kind == model.KindEarliestStart && sec.Start < payload.Minutes {
				return true
			}
			if c.Kind == model.KindLatestEnd && sec.End > payload.Minutes {
				return true
			}
		case model.WindowPayload:
			if sec.OverlapsWindow(payload.Start, payload.End, payload.Days) {
				return true
			}
		case model.CoursePayload:
			if c.Kind == model.KindExcludeCourse && sec.CourseID == payload.CourseID {
				return true
			}
		case model.SectionPayload:
			if c.Kind == model.KindExcludeSection && sec.ID == payload.SectionID {
				return true
			}
		case model.InstructorsPayload:
			listed := containsString(payload.Instructors, sec.InstructorID)
			if c.Kind == model.KindExcludeInstructor && listed {
				return true
			}
			if c.Kind == model.KindIncludeInstructor && !listed {
				return true
			}
		case model.FilterPayload:
			if !passesFilter(sec, payload) {
				return true
			}
		}
	}
	return false
}

// passesFilter applies section_filter whitelist semantics: a section
// survives only if every populated field accepts it. Day restriction is
// subset-based (the section may not meet outside the allowed days).
func passesFilter(sec model.Section, f model.FilterPayload) bool {
	if !f.Days.Empty() && sec.Days&^f.Days != 0 {
		return false
	}
	if !sec.Async() {
		if f.Earliest >= 0 && sec.Start < f.Earliest {
			return false
		}
		if f.Latest >= 0 && sec.End > f.Latest {
			return false
		}
	}
	if len(f.Instructors) > 0 && !containsString(f.Instructors, sec.InstructorID) {
		return false
	}
	if len(f.ExcludeInstructors) > 0 && containsString(f.ExcludeInstructors, sec.InstructorID) {
		return false
	}
	return true
}

func pinWhitelist(constraints []model.Constraint) (map[string]bool, bool) {
	whitelist := make(map[string]bool)
	pinned := false
	for _, c := range constraints {
		if payload, ok := c.Payload.(model.PinPayload); ok {
			pinned = true
			for _, rid := range payload.Sections {
				whitelist[rid] = true
			}
		}
	}
	return whitelist, pinned
}

// applyPins restricts the pool to exactly the pinned sections and marks
// every surviving course required, so the solution is the pinned set or
// nothing.
func (m *Model) applyPins(whitelist map[string]bool) {
	kept := make([]model.Section, 0, len(whitelist))
	seen := make(map[string]bool, len(whitelist))
	perCourse := make(map[string]int)
	for _, sec := range m.Sections {
		if !whitelist[sec.ID] {
			continue
		}
		kept = append(kept, sec)
		seen[sec.ID] = true
		perCourse[sec.CourseID]++
	}
	for rid := range whitelist {
		if !seen[rid] {
			m.fail("pinned section %q is not selectable", rid)
			return
		}
	}
	for courseID, n := range perCourse {
		if n > 1 {
			m.fail("pin_sections lists %d sections of course %q", n, courseID)
			return
		}
	}
	m.Sections = kept
	m.pinnedAll = true
}

// applyIncludes resolves include_course and include_section against the
// filtered pool. Returns false when an inclusion is unsatisfiable.
func (m *Model) applyIncludes(required map[string]bool) bool {
	if m.pinnedAll {
		for _, sec := range m.Sections {
			required[sec.CourseID] = true
		}
	}
	for _, c := range m.Problem.Constraints {
		switch payload := c.Payload.(type) {
		case model.CoursePayload:
			if c.Kind != model.KindIncludeCourse {
				continue
			}
			if !m.courseSelectable(payload.CourseID) {
				m.fail("include_course %q has no selectable sections", payload.CourseID)
				return false
			}
			required[payload.CourseID] = true
		case model.SectionPayload:
			if c.Kind != model.KindIncludeSection {
				continue
			}
			courseID, ok := m.keepOnlySection(payload.SectionID)
			if !ok {
				m.fail("include_section %q is not selectable", payload.SectionID)
				return false
			}
			required[courseID] = true
		}
	}
	return true
}

func (m *Model) courseSelectable(courseID string) bool {
	for _, sec := range m.Sections {
		if sec.CourseID == courseID {
			return true
		}
	}
	return false
}

// keepOnlySection drops sibling sections of the named section's course
// so the inclusion is the only way to take that course.
func (m *Model) keepOnlySection(rid string) (string, bool) {
	courseID := ""
	for _, sec := range m.Sections {
		if sec.ID == rid {
			courseID = sec.CourseID
			break
		}
	}
	if courseID == "" {
		return "", false
	}
	kept := m.Sections[:0:0]
	for _, sec := range m.Sections {
		if sec.CourseID == courseID && sec.ID != rid {
			continue
		}
		kept = append(kept, sec)
	}
	m.Sections = kept
	return courseID, true
}

func (m *Model) buildCourses(required map[string]bool) {
	byCourse := make(map[string][]int)
	for i, sec := range m.Sections {
		byCourse[sec.CourseID] = append(byCourse[sec.CourseID], i)
	}

	courseIDs := make([]string, 0, len(byCourse))
	for id := range byCourse {
		courseIDs = append(courseIDs, id)
	}
	sort.Strings(courseIDs)

	m.Courses = make([]CourseVar, 0, len(courseIDs))
	for _, id := range courseIDs {
		options := byCourse[id]
		sort.Slice(options, func(a, b int) bool {
			sa, sb := m.Sections[options[a]], m.Sections[options[b]]
			ia, ib := m.SemIndex[sa.SemesterID], m.SemIndex[sb.SemesterID]
			if ia != ib {
				return ia < ib
			}
			return sa.ID < sb.ID
		})
		m.Courses = append(m.Courses, CourseVar{CourseID: id, Options: options, Required: required[id]})
	}

	for courseID := range required {
		if _, ok := byCourse[courseID]; !ok {
			m.fail("required course %q has no selectable sections", courseID)
			return
		}
	}
}

// applyCountBounds folds k and the per-semester count constraints into
// [min, max] bounds per semester. Returns false on an empty interval.
func (m *Model) applyCountBounds() bool {
	n := len(m.Problem.Semesters)
	m.MaxPerSem = make([]int, n)
	m.MinPerSem = make([]int, n)
	for i := range m.MaxPerSem {
		m.MaxPerSem[i] = m.Problem.K
	}

	for _, c := range m.Problem.Constraints {
		payload, ok := c.Payload.(model.CountPayload)
		if !ok {
			continue
		}
		targets, ok := m.resolveSemesters(c, payload.Semesters)
		if !ok {
			continue
		}
		for _, si := range targets {
			switch c.Kind {
			case model.KindMaxCoursesPerSemester:
				if payload.Count < m.MaxPerSem[si] {
					m.MaxPerSem[si] = payload.Count
				}
			case model.KindMinCoursesPerSemester:
				if payload.Count > m.MinPerSem[si] {
					m.MinPerSem[si] = payload.Count
				}
			case model.KindTargetCoursesPerSemester:
				if payload.Count > m.MinPerSem[si] {
					m.MinPerSem[si] = payload.Count
				}
				if payload.Count < m.MaxPerSem[si] {
					m.MaxPerSem[si] = payload.Count
				}
			}
		}
	}

	for i := range m.MaxPerSem {
		if m.MinPerSem[i] > m.MaxPerSem[i] {
			m.fail("semester %q admits no course count in [%d, %d]",
				m.Problem.Semesters[i], m.MinPerSem[i], m.MaxPerSem[i])
			return false
		}
	}
	return true
}

func (m *Model) resolveSemesters(c model.Constraint, names []string) ([]int, bool) {
	if len(names) == 0 {
		all := make([]int, len(m.Problem.Semesters))
		for i := range all {
			all[i] = i
		}
		return all, true
	}
	out := make([]int, 0, len(names))
	for _, name := range names {
		si, ok := m.SemIndex[name]
		if !ok {
			m.Warnings = append(m.Warnings, dto.ConstraintWarning{
				ID:     c.ID,
				Kind:   string(c.Kind),
				Reason: fmt.Sprintf("unknown semester %q, constraint skipped", name),
			})
			return nil, false
		}
		out = append(out, si)
	}
	return out, true
}

func (m *Model) applyGroupBounds() {
	groups := make(map[string]model.RequirementGroup, len(m.Problem.Groups))
	for _, g := range m.Problem.Groups {
		groups[g.Name] = g
	}

	for _, c := range m.Problem.Constraints {
		payload, ok := c.Payload.(model.GroupCountsPayload)
		if !ok || c.Mode != model.ModeHard {
			continue
		}
		for name, count := range payload.Counts {
			group, known := groups[name]
			if !known {
				m.Warnings = append(m.Warnings, dto.ConstraintWarning{
					ID:     c.ID,
					Kind:   string(c.Kind),
					Reason: fmt.Sprintf("unknown requirement group %q, constraint skipped", name),
				})
				continue
			}
			members := make(map[string]bool, len(group.Courses))
			for _, courseID := range group.Courses {
				members[courseID] = true
			}
			m.GroupBounds = append(m.GroupBounds, GroupBound{Name: name, Members: members, Min: count})
		}
	}

	sort.Slice(m.GroupBounds, func(a, b int) bool { return m.GroupBounds[a].Name < m.GroupBounds[b].Name })
}

func (m *Model) collectOrderings() {
	for _, c := range m.Problem.Constraints {
		if payload, ok := c.Payload.(model.OrderingPayload); ok {
			m.Orderings = append(m.Orderings, payload)
		}
	}
}

func containsString(list []string, v string) bool {
	for _, entry := range list {
		if entry == v {
			return true
		}
	}
	return false
}
