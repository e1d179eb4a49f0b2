package solver

import (
	"math"

	"github.com/campusplan/solver-api/internal/model"
)

// Objective scalarizes the three scoring tiers into a single int64 so
// the search can compare assignments with one comparison. Tier
// multipliers are sized so any gain in a higher tier beats every
// possible combination of gains in lower tiers.
type Objective struct {
	Order [3]model.Tier

	mult map[model.Tier]int64

	// local[i] holds section i's tier contributions that depend only
	// on whether i itself is chosen: bookmark bonus, rating credit,
	// time-of-day penalties.
	local [][3]int64

	// Assignment-global terms evaluated once per complete assignment.
	groups   []capCredit
	hubs     []capCredit
	freeDays []freeCredit

	suffixOpt []int64
	leafMax   int64

	scale int64
}

// capCredit rewards progress toward a counted requirement, capped at
// Cap. Base counts already-completed members so partial transcripts are
// credited consistently.
type capCredit struct {
	Members map[string]bool
	Base    int
	Cap     int
	Weight  int64
}

type freeCredit struct {
	Days   model.DaySet
	Weight int64
}

const (
	slotBookmarks = 0
	slotDegree    = 1
	slotComfort   = 2
)

func tierSlot(t model.Tier) int {
	switch t {
	case model.TierBookmarks:
		return slotBookmarks
	case model.TierDegree:
		return slotDegree
	default:
		return slotComfort
	}
}

// BuildObjective assembles the scalarized objective for a compiled
// model.
func BuildObjective(m *Model) *Objective {
	p := m.Problem
	o := &Objective{
		Order: model.DefaultTierOrder(),
		scale: int64(p.Scale),
		local: make([][3]int64, len(m.Sections)),
	}
	for _, c := range p.Constraints {
		if payload, ok := c.Payload.(model.PriorityPayload); ok {
			o.Order = payload.Order
		}
	}

	o.buildSectionTerms(m)
	o.buildLeafTerms(m)
	o.buildMultipliers(m)
	o.buildBounds(m)
	return o
}

func (o *Objective) scaled(w float64) int64 {
	return int64(math.Round(w * float64(o.scale)))
}

func (o *Objective) buildSectionTerms(m *Model) {
	p := m.Problem

	// One bookmark unit per bookmarked course chosen, plus any
	// explicit bookmarked_bonus weights on top.
	bookmarkUnit := o.scale
	var ratingWeights []int64
	for _, c := range p.Constraints {
		if c.Mode != model.ModeSoft {
			continue
		}
		switch c.Kind {
		case model.KindBookmarkedBonus:
			bookmarkUnit += o.scaled(c.Weight)
		case model.KindProfessorRatingWeight:
			ratingWeights = append(ratingWeights, o.scaled(c.Weight))
		}
	}

	groupsOf := make(map[string]int)
	for _, g := range p.Groups {
		for _, courseID := range g.Courses {
			groupsOf[courseID]++
		}
	}

	for i, sec := range m.Sections {
		if p.Bookmarks[sec.CourseID] {
			o.local[i][slotBookmarks] += bookmarkUnit
		}
		o.local[i][slotDegree] += o.scale * int64(groupsOf[sec.CourseID])
		for _, w := range ratingWeights {
			o.local[i][slotComfort] += int64(math.Round(sec.Rating * float64(w)))
		}
		o.local[i][slotComfort] += o.comfortPenalties(sec, p.Constraints)
	}
}

func (o *Objective) comfortPenalties(sec model.Section, constraints []model.Constraint) int64 {
	var penalty int64
	for _, c := range constraints {
		if c.Mode != model.ModeSoft {
			continue
		}
		switch payload := c.Payload.(type) {
		case model.TimePayload:
			if sec.Async() {
				continue
			}
			if c.Kind == model.KindEarliestStart && sec.Start < payload.Minutes {
				penalty -= o.scaled(c.Weight)
			}
			if c.Kind == model.KindLatestEnd && sec.End > payload.Minutes {
				penalty -= o.scaled(c.Weight)
			}
		case model.DaysPayload:
			if c.Kind == model.KindDisallowedDays && sec.Days.Overlaps(payload.Days) {
				penalty -= o.scaled(c.Weight)
			}
		case model.WindowPayload:
			if sec.OverlapsWindow(payload.Start, payload.End, payload.Days) {
				penalty -= o.scaled(c.Weight)
			}
		}
	}
	return penalty
}

func (o *Objective) buildLeafTerms(m *Model) {
	p := m.Problem

	// Soft require_group_counts: capped credit per satisfied member.
	groupIndex := make(map[string]model.RequirementGroup, len(p.Groups))
	for _, g := range p.Groups {
		groupIndex[g.Name] = g
	}
	for _, c := range p.Constraints {
		payload, ok := c.Payload.(model.GroupCountsPayload)
		if !ok || c.Mode != model.ModeSoft {
			continue
		}
		for name, count := range payload.Counts {
			group, known := groupIndex[name]
			if !known {
				continue
			}
			o.groups = append(o.groups, o.newCapCredit(group.Courses, count, o.scaled(c.Weight), p.Completed))
		}
	}

	// Hub coverage always scores in the degree tier; hub_targets
	// constraints raise the per-member weight.
	hubWeight := o.scale
	for _, c := range p.Constraints {
		if c.Kind == model.KindHubTargets && c.Mode == model.ModeSoft {
			hubWeight += o.scaled(c.Weight)
		}
	}
	for _, hub := range p.Hubs {
		if hub.Required <= 0 {
			continue
		}
		o.hubs = append(o.hubs, o.newCapCredit(hub.Courses, hub.Required, hubWeight, p.Completed))
	}

	for _, c := range p.Constraints {
		if c.Kind == model.KindFreeDay && c.Mode == model.ModeSoft {
			if payload, ok := c.Payload.(model.DaysPayload); ok {
				o.freeDays = append(o.freeDays, freeCredit{Days: payload.Days, Weight: o.scaled(c.Weight)})
			}
		}
	}
}

func (o *Objective) newCapCredit(courses []string, limit int, weight int64, completed map[string]bool) capCredit {
	members := make(map[string]bool, len(courses))
	base := 0
	for _, courseID := range courses {
		members[courseID] = true
		if completed[courseID] {
			base++
		}
	}
	if base > limit {
		base = limit
	}
	return capCredit{Members: members, Base: base, Cap: limit, Weight: weight}
}

// buildMultipliers sizes tier multipliers from each tier's value range
// so lexicographic dominance holds: one unit of a higher tier exceeds
// the entire span of every lower tier combined.
func (o *Objective) buildMultipliers(m *Model) {
	var pos, neg [3]int64
	for i := range o.local {
		for slot := 0; slot < 3; slot++ {
			v := o.local[i][slot]
			if v > 0 {
				pos[slot] += v
			} else {
				neg[slot] -= v
			}
		}
	}
	for _, credit := range o.groups {
		pos[slotDegree] += credit.Weight * int64(credit.Cap)
	}
	for _, credit := range o.hubs {
		pos[slotDegree] += credit.Weight * int64(credit.Cap)
	}
	for _, credit := range o.freeDays {
		pos[slotComfort] += credit.Weight * int64(len(credit.Days.Days())) * int64(len(m.Problem.Semesters))
	}

	span := func(slot int) int64 { return pos[slot] + neg[slot] + 1 }

	o.mult = make(map[model.Tier]int64, 3)
	o.mult[o.Order[2]] = 1
	o.mult[o.Order[1]] = span(tierSlot(o.Order[2]))
	o.mult[o.Order[0]] = o.mult[o.Order[1]] * span(tierSlot(o.Order[1]))
}

// buildBounds precomputes the admissible optimism used for pruning: the
// best scalarized section-local value per remaining course, plus the
// largest conceivable assignment-global credit.
func (o *Objective) buildBounds(m *Model) {
	o.suffixOpt = make([]int64, len(m.Courses)+1)
	for ci := len(m.Courses) - 1; ci >= 0; ci-- {
		var best int64
		for _, si := range m.Courses[ci].Options {
			if v := o.scalarLocal(si); v > best {
				best = v
			}
		}
		o.suffixOpt[ci] = o.suffixOpt[ci+1] + best
	}

	o.leafMax = 0
	for _, credit := range o.groups {
		o.leafMax += o.mult[model.TierDegree] * credit.Weight * int64(credit.Cap)
	}
	for _, credit := range o.hubs {
		o.leafMax += o.mult[model.TierDegree] * credit.Weight * int64(credit.Cap)
	}
	for _, credit := range o.freeDays {
		o.leafMax += o.mult[model.TierComfort] * credit.Weight * int64(len(credit.Days.Days())) * int64(len(m.Problem.Semesters))
	}
}

func (o *Objective) scalarLocal(si int) int64 {
	return o.mult[model.TierBookmarks]*o.local[si][slotBookmarks] +
		o.mult[model.TierDegree]*o.local[si][slotDegree] +
		o.mult[model.TierComfort]*o.local[si][slotComfort]
}

// Bound returns an upper bound on the scalar score of any completion of
// a partial assignment with running local score running and courses
// [next, len) still undecided.
func (o *Objective) Bound(running int64, next int) int64 {
	return running + o.suffixOpt[next] + o.leafMax
}

// Evaluate computes the exact per-tier scores of a complete assignment.
// Free-day credit is granted per semester: a Monday class in one
// semester does not spoil a free Monday in another.
func (o *Objective) Evaluate(m *Model, chosen []int) model.TierScores {
	var scores model.TierScores
	busy := make([]model.DaySet, len(m.Problem.Semesters))
	for _, si := range chosen {
		scores.Bookmarks += o.local[si][slotBookmarks]
		scores.Degree += o.local[si][slotDegree]
		scores.Comfort += o.local[si][slotComfort]
		sec := m.Sections[si]
		busy[m.SemIndex[sec.SemesterID]] |= sec.Days
	}

	for _, credit := range o.groups {
		scores.Add(model.TierDegree, credit.value(m, chosen))
	}
	for _, credit := range o.hubs {
		scores.Add(model.TierDegree, credit.value(m, chosen))
	}
	for _, credit := range o.freeDays {
		for _, day := range credit.Days.Days() {
			for _, semBusy := range busy {
				if !semBusy.Has(day) {
					scores.Add(model.TierComfort, credit.Weight)
				}
			}
		}
	}
	return scores
}

func (c capCredit) value(m *Model, chosen []int) int64 {
	count := c.Base
	for _, si := range chosen {
		if c.Members[m.Sections[si].CourseID] {
			count++
		}
	}
	if count > c.Cap {
		count = c.Cap
	}
	return c.Weight * int64(count)
}

// Scalarize folds per-tier scores into the comparison scalar.
func (o *Objective) Scalarize(scores model.TierScores) int64 {
	var total int64
	for _, tier := range o.Order {
		total += o.mult[tier] * scores.Get(tier)
	}
	return total
}
