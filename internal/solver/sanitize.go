package solver

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/campusplan/solver-api/internal/dto"
	"github.com/campusplan/solver-api/internal/model"
)

// defaultMode is the per-kind mode applied when the wire constraint
// omits one.
var defaultMode = map[model.Kind]model.Mode{
	model.KindDisallowedDays:           model.ModeHard,
	model.KindEarliestStart:            model.ModeSoft,
	model.KindLatestEnd:                model.ModeSoft,
	model.KindBlockTimeWindow:          model.ModeHard,
	model.KindFreeDay:                  model.ModeSoft,
	model.KindMaxCoursesPerSemester:    model.ModeHard,
	model.KindMinCoursesPerSemester:    model.ModeHard,
	model.KindTargetCoursesPerSemester: model.ModeHard,
	model.KindIncludeCourse:            model.ModeHard,
	model.KindExcludeCourse:            model.ModeHard,
	model.KindIncludeSection:           model.ModeHard,
	model.KindExcludeSection:           model.ModeHard,
	model.KindIncludeInstructor:        model.ModeHard,
	model.KindExcludeInstructor:        model.ModeHard,
	model.KindProfessorRatingWeight:    model.ModeSoft,
	model.KindRequireGroupCounts:       model.ModeHard,
	model.KindHubTargets:               model.ModeSoft,
	model.KindEnforceOrdering:          model.ModeHard,
	model.KindBookmarkedBonus:          model.ModeSoft,
	model.KindLexicographicPriority:    model.ModeHard,
	model.KindSectionFilter:            model.ModeHard,
	model.KindPinSections:              model.ModeHard,
}

// softOnly kinds are pure objective terms with no restriction to
// enforce; a "hard" mode on them is coerced back to soft so the
// constraint never turns into a silent no-op.
var softOnly = map[model.Kind]bool{
	model.KindProfessorRatingWeight: true,
	model.KindHubTargets:            true,
	model.KindBookmarkedBonus:       true,
}

// hardOnly kinds have no meaningful soft interpretation; a "soft" mode
// on them is coerced back to hard rather than dropped.
var hardOnly = map[model.Kind]bool{
	model.KindMaxCoursesPerSemester:    true,
	model.KindMinCoursesPerSemester:    true,
	model.KindTargetCoursesPerSemester: true,
	model.KindIncludeCourse:            true,
	model.KindExcludeCourse:            true,
	model.KindIncludeSection:           true,
	model.KindExcludeSection:           true,
	model.KindIncludeInstructor:        true,
	model.KindExcludeInstructor:        true,
	model.KindEnforceOrdering:          true,
	model.KindLexicographicPriority:    true,
	model.KindSectionFilter:            true,
	model.KindPinSections:              true,
}

// Sanitize normalizes raw constraints into their typed form. A
// constraint that fails validation is dropped and reported; it never
// fails the whole request.
func Sanitize(raw []dto.Constraint) ([]model.Constraint, []dto.ConstraintWarning) {
	out := make([]model.Constraint, 0, len(raw))
	var warnings []dto.ConstraintWarning
	for _, rc := range raw {
		c, err := sanitizeOne(rc)
		if err != nil {
			warnings = append(warnings, dto.ConstraintWarning{
				ID:     rc.ID,
				Kind:   rc.Kind,
				Reason: err.Error(),
			})
			continue
		}
		out = append(out, c)
	}
	return out, warnings
}

// Validate reports whether a single wire constraint would survive
// sanitization, with a human-readable reason when it would not.
func Validate(raw dto.Constraint) error {
	_, err := sanitizeOne(raw)
	return err
}

func sanitizeOne(raw dto.Constraint) (model.Constraint, error) {
	kind := model.Kind(strings.TrimSpace(raw.Kind))
	if _, known := defaultMode[kind]; !known {
		return model.Constraint{}, fmt.Errorf("unknown kind %q", raw.Kind)
	}

	mode := defaultMode[kind]
	switch raw.Mode {
	case "":
	case string(model.ModeHard):
		if !softOnly[kind] {
			mode = model.ModeHard
		}
	case string(model.ModeSoft):
		if !hardOnly[kind] {
			mode = model.ModeSoft
		}
	default:
		return model.Constraint{}, fmt.Errorf("mode must be %q or %q", model.ModeHard, model.ModeSoft)
	}

	weight := 1.0
	if raw.Weight != nil {
		if *raw.Weight <= 0 {
			return model.Constraint{}, fmt.Errorf("weight must be > 0, got %v", *raw.Weight)
		}
		weight = *raw.Weight
	}

	payload, err := parsePayload(kind, raw.Payload)
	if err != nil {
		return model.Constraint{}, err
	}

	return model.Constraint{
		ID:      raw.ID,
		Kind:    kind,
		Mode:    mode,
		Weight:  weight,
		Payload: payload,
	}, nil
}

func parsePayload(kind model.Kind, payload map[string]any) (model.Payload, error) {
	switch kind {
	case model.KindDisallowedDays, model.KindFreeDay:
		days, err := requireDays(payload, "days")
		if err != nil {
			return nil, err
		}
		return model.DaysPayload{Days: days}, nil

	case model.KindEarliestStart, model.KindLatestEnd:
		minutes, err := requireTime(payload, "time")
		if err != nil {
			return nil, err
		}
		return model.TimePayload{Minutes: minutes}, nil

	case model.KindBlockTimeWindow:
		start, err := requireTime(payload, "start")
		if err != nil {
			return nil, err
		}
		end, err := requireTime(payload, "end")
		if err != nil {
			return nil, err
		}
		if start >= end {
			return nil, fmt.Errorf("start %q must be before end %q", formatTime(start), formatTime(end))
		}
		days, err := optionalDays(payload, "days")
		if err != nil {
			return nil, err
		}
		return model.WindowPayload{Start: start, End: end, Days: days}, nil

	case model.KindMaxCoursesPerSemester, model.KindMinCoursesPerSemester, model.KindTargetCoursesPerSemester:
		count, err := requireCount(payload)
		if err != nil {
			return nil, err
		}
		semesters, err := optionalStringList(payload, "semesters")
		if err != nil {
			return nil, err
		}
		return model.CountPayload{Count: count, Semesters: semesters}, nil

	case model.KindIncludeCourse, model.KindExcludeCourse:
		course, err := requireFirstString(payload, "class_id", "course")
		if err != nil {
			return nil, err
		}
		return model.CoursePayload{CourseID: course}, nil

	case model.KindIncludeSection, model.KindExcludeSection:
		section, err := requireFirstString(payload, "rid", "section")
		if err != nil {
			return nil, err
		}
		return model.SectionPayload{SectionID: section}, nil

	case model.KindIncludeInstructor, model.KindExcludeInstructor:
		instructors, err := requireInstructors(payload)
		if err != nil {
			return nil, err
		}
		return model.InstructorsPayload{Instructors: instructors}, nil

	case model.KindProfessorRatingWeight, model.KindHubTargets, model.KindBookmarkedBonus:
		return model.EmptyPayload{}, nil

	case model.KindRequireGroupCounts:
		counts, err := requireGroupCounts(payload)
		if err != nil {
			return nil, err
		}
		return model.GroupCountsPayload{Counts: counts}, nil

	case model.KindEnforceOrdering:
		before, err := requireString(payload, "before")
		if err != nil {
			return nil, err
		}
		after, err := requireString(payload, "after")
		if err != nil {
			return nil, err
		}
		if before == after {
			return nil, fmt.Errorf("before and after must name different courses")
		}
		return model.OrderingPayload{Before: before, After: after}, nil

	case model.KindLexicographicPriority:
		order, err := requireTierOrder(payload)
		if err != nil {
			return nil, err
		}
		return model.PriorityPayload{Order: order}, nil

	case model.KindSectionFilter:
		return parseFilterPayload(payload)

	case model.KindPinSections:
		sections, err := requireStringList(payload, "sections")
		if err != nil {
			return nil, err
		}
		return model.PinPayload{Sections: sections}, nil
	}

	return nil, fmt.Errorf("unknown kind %q", kind)
}

func parseFilterPayload(payload map[string]any) (model.Payload, error) {
	filter := model.FilterPayload{Earliest: -1, Latest: -1}
	populated := false

	if _, ok := payload["days"]; ok {
		days, err := requireDays(payload, "days")
		if err != nil {
			return nil, err
		}
		filter.Days = days
		populated = true
	}
	if _, ok := payload["earliest"]; ok {
		minutes, err := requireTime(payload, "earliest")
		if err != nil {
			return nil, err
		}
		filter.Earliest = minutes
		populated = true
	}
	if _, ok := payload["latest"]; ok {
		minutes, err := requireTime(payload, "latest")
		if err != nil {
			return nil, err
		}
		filter.Latest = minutes
		populated = true
	}
	if _, ok := payload["instructors"]; ok {
		list, err := requireStringList(payload, "instructors")
		if err != nil {
			return nil, err
		}
		filter.Instructors = list
		populated = true
	}
	if _, ok := payload["exclude_instructors"]; ok {
		list, err := requireStringList(payload, "exclude_instructors")
		if err != nil {
			return nil, err
		}
		filter.ExcludeInstructors = list
		populated = true
	}
	if filter.Earliest >= 0 && filter.Latest >= 0 && filter.Earliest >= filter.Latest {
		return nil, fmt.Errorf("earliest %q must be before latest %q", formatTime(filter.Earliest), formatTime(filter.Latest))
	}
	if !populated {
		return nil, fmt.Errorf("section_filter payload must set at least one of days, earliest, latest, instructors, exclude_instructors")
	}
	return filter, nil
}

// --- payload field helpers ---

func requireString(payload map[string]any, key string) (string, error) {
	v, ok := payload[key]
	if !ok {
		return "", fmt.Errorf("missing payload field %q", key)
	}
	s, ok := v.(string)
	if !ok || strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("payload field %q must be a non-empty string", key)
	}
	return strings.TrimSpace(s), nil
}

// requireFirstString accepts the first present key among aliases.
func requireFirstString(payload map[string]any, keys ...string) (string, error) {
	for _, key := range keys {
		if _, ok := payload[key]; ok {
			return requireString(payload, key)
		}
	}
	return "", fmt.Errorf("missing payload field %q", keys[0])
}

func requireStringList(payload map[string]any, key string) ([]string, error) {
	v, ok := payload[key]
	if !ok {
		return nil, fmt.Errorf("missing payload field %q", key)
	}
	raw, ok := v.([]any)
	if !ok || len(raw) == 0 {
		return nil, fmt.Errorf("payload field %q must be a non-empty string array", key)
	}
	out := make([]string, 0, len(raw))
	for _, entry := range raw {
		s, ok := entry.(string)
		if !ok || strings.TrimSpace(s) == "" {
			return nil, fmt.Errorf("payload field %q must contain only non-empty strings", key)
		}
		out = append(out, strings.TrimSpace(s))
	}
	return out, nil
}

func optionalStringList(payload map[string]any, key string) ([]string, error) {
	if _, ok := payload[key]; !ok {
		return nil, nil
	}
	return requireStringList(payload, key)
}

func requireDays(payload map[string]any, key string) (model.DaySet, error) {
	list, err := requireStringList(payload, key)
	if err != nil {
		return 0, err
	}
	days, bad, ok := model.ParseDaySet(list)
	if !ok {
		return 0, fmt.Errorf("payload field %q has unrecognized day %q", key, bad)
	}
	return days, nil
}

func optionalDays(payload map[string]any, key string) (model.DaySet, error) {
	if _, ok := payload[key]; !ok {
		return 0, nil
	}
	return requireDays(payload, key)
}

// requireTime accepts "HH:MM" or a number of minutes since midnight.
func requireTime(payload map[string]any, key string) (int, error) {
	v, ok := payload[key]
	if !ok {
		return 0, fmt.Errorf("missing payload field %q", key)
	}
	switch t := v.(type) {
	case string:
		minutes, err := parseClock(t)
		if err != nil {
			return 0, fmt.Errorf("payload field %q: %v", key, err)
		}
		return minutes, nil
	case float64:
		minutes := int(t)
		if float64(minutes) != t || minutes < 0 || minutes > 24*60 {
			return 0, fmt.Errorf("payload field %q must be minutes in [0, 1440]", key)
		}
		return minutes, nil
	default:
		return 0, fmt.Errorf("payload field %q must be \"HH:MM\" or minutes since midnight", key)
	}
}

// requireCount accepts the historical aliases for the count field.
func requireCount(payload map[string]any) (int, error) {
	for _, key := range []string{"count", "k", "t"} {
		v, ok := payload[key]
		if !ok {
			continue
		}
		f, ok := v.(float64)
		if !ok || f != float64(int(f)) || int(f) <= 0 {
			return 0, fmt.Errorf("payload field %q must be an integer > 0", key)
		}
		return int(f), nil
	}
	return 0, fmt.Errorf("missing payload field %q", "count")
}

func requireInstructors(payload map[string]any) ([]string, error) {
	if _, ok := payload["instructors"]; ok {
		return requireStringList(payload, "instructors")
	}
	if _, ok := payload["instructor_id"]; ok {
		id, err := requireString(payload, "instructor_id")
		if err != nil {
			return nil, err
		}
		return []string{id}, nil
	}
	return nil, fmt.Errorf("missing payload field %q", "instructors")
}

func requireGroupCounts(payload map[string]any) (map[string]int, error) {
	if v, ok := payload["counts"]; ok {
		raw, ok := v.(map[string]any)
		if !ok || len(raw) == 0 {
			return nil, fmt.Errorf("payload field %q must be a non-empty object of group -> count", "counts")
		}
		counts := make(map[string]int, len(raw))
		for group, entry := range raw {
			f, ok := entry.(float64)
			if !ok || f != float64(int(f)) || int(f) <= 0 {
				return nil, fmt.Errorf("count for group %q must be an integer > 0", group)
			}
			counts[group] = int(f)
		}
		return counts, nil
	}

	group, err := requireString(payload, "group")
	if err != nil {
		return nil, err
	}
	count, err := requireCount(payload)
	if err != nil {
		return nil, err
	}
	return map[string]int{group: count}, nil
}

func requireTierOrder(payload map[string]any) ([3]model.Tier, error) {
	var order [3]model.Tier
	list, err := requireStringList(payload, "order")
	if err != nil {
		return order, err
	}
	if len(list) != 3 {
		return order, fmt.Errorf("payload field %q must list all three tiers", "order")
	}
	seen := make(map[model.Tier]bool, 3)
	for i, entry := range list {
		tier := model.Tier(strings.ToLower(entry))
		switch tier {
		case model.TierBookmarks, model.TierDegree, model.TierComfort:
		default:
			return order, fmt.Errorf("unknown tier %q", entry)
		}
		if seen[tier] {
			return order, fmt.Errorf("tier %q listed twice", entry)
		}
		seen[tier] = true
		order[i] = tier
	}
	return order, nil
}

func parseClock(raw string) (int, error) {
	parts := strings.SplitN(strings.TrimSpace(raw), ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("%q is not a valid HH:MM time", raw)
	}
	hour, err1 := strconv.Atoi(parts[0])
	minute, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil || hour < 0 || hour > 24 || minute < 0 || minute > 59 || (hour == 24 && minute != 0) {
		return 0, fmt.Errorf("%q is not a valid HH:MM time", raw)
	}
	return hour*60 + minute, nil
}

func formatTime(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// SupportedKinds lists the constraint kinds this service accepts.
func SupportedKinds() []string {
	kinds := model.Kinds()
	out := make([]string, len(kinds))
	for i, k := range kinds {
		out[i] = string(k)
	}
	sort.Strings(out)
	return out
}
