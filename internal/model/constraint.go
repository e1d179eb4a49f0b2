package model

// Kind enumerates the supported constraint kinds. The set is closed:
// anything else is rejected during sanitization, never silently ignored.
type Kind string

const (
	KindDisallowedDays           Kind = "disallowed_days"
	KindEarliestStart            Kind = "earliest_start"
	KindLatestEnd                Kind = "latest_end"
	KindBlockTimeWindow          Kind = "block_time_window"
	KindFreeDay                  Kind = "free_day"
	KindMaxCoursesPerSemester    Kind = "max_courses_per_semester"
	KindMinCoursesPerSemester    Kind = "min_courses_per_semester"
	KindTargetCoursesPerSemester Kind = "target_courses_per_semester"
	KindIncludeCourse            Kind = "include_course"
	KindExcludeCourse            Kind = "exclude_course"
	KindIncludeSection           Kind = "include_section"
	KindExcludeSection           Kind = "exclude_section"
	KindIncludeInstructor        Kind = "include_instructor"
	KindExcludeInstructor        Kind = "exclude_instructor"
	KindProfessorRatingWeight    Kind = "professor_rating_weight"
	KindRequireGroupCounts       Kind = "require_group_counts"
	KindHubTargets               Kind = "hub_targets"
	KindEnforceOrdering          Kind = "enforce_ordering"
	KindBookmarkedBonus          Kind = "bookmarked_bonus"
	KindLexicographicPriority    Kind = "lexicographic_priority"
	KindSectionFilter            Kind = "section_filter"
	KindPinSections              Kind = "pin_sections"
)

// Kinds lists every supported kind in a stable order, for the health
// endpoint and for exhaustive validation tables.
func Kinds() []Kind {
	return []Kind{
		KindDisallowedDays,
		KindEarliestStart,
		KindLatestEnd,
		KindBlockTimeWindow,
		KindFreeDay,
		KindMaxCoursesPerSemester,
		KindMinCoursesPerSemester,
		KindTargetCoursesPerSemester,
		KindIncludeCourse,
		KindExcludeCourse,
		KindIncludeSection,
		KindExcludeSection,
		KindIncludeInstructor,
		KindExcludeInstructor,
		KindProfessorRatingWeight,
		KindRequireGroupCounts,
		KindHubTargets,
		KindEnforceOrdering,
		KindBookmarkedBonus,
		KindLexicographicPriority,
		KindSectionFilter,
		KindPinSections,
	}
}

type Mode string

const (
	ModeHard Mode = "hard"
	ModeSoft Mode = "soft"
)

// Tier identifies one level of the lexicographic objective. Any gain in
// a higher tier outweighs any combination of gains in lower tiers.
type Tier string

const (
	TierBookmarks Tier = "bookmarks"
	TierDegree    Tier = "degree"
	TierComfort   Tier = "comfort"
)

// DefaultTierOrder is highest priority first.
func DefaultTierOrder() [3]Tier {
	return [3]Tier{TierBookmarks, TierDegree, TierComfort}
}

// Constraint is one sanitized planning constraint. After sanitization
// Mode and Weight are always populated and Payload holds the typed
// variant matching Kind.
type Constraint struct {
	ID      string
	Kind    Kind
	Mode    Mode
	Weight  float64
	Payload Payload
}

// Payload is the closed union of per-kind payload shapes.
type Payload interface {
	isPayload()
}

// DaysPayload backs disallowed_days and free_day.
type DaysPayload struct {
	Days DaySet
}

// TimePayload backs earliest_start and latest_end; Minutes is a
// time-of-day in minutes since midnight.
type TimePayload struct {
	Minutes int
}

// WindowPayload backs block_time_window. An empty day set means the
// window applies on every day.
type WindowPayload struct {
	Start int
	End   int
	Days  DaySet
}

// CountPayload backs the per-semester count kinds. An empty semester
// list applies the bound to every semester.
type CountPayload struct {
	Count     int
	Semesters []string
}

// CoursePayload backs include_course and exclude_course.
type CoursePayload struct {
	CourseID string
}

// SectionPayload backs include_section and exclude_section.
type SectionPayload struct {
	SectionID string
}

// InstructorsPayload backs include_instructor and exclude_instructor.
type InstructorsPayload struct {
	Instructors []string
}

// GroupCountsPayload backs require_group_counts: minimum chosen (or
// completed) members per named requirement group.
type GroupCountsPayload struct {
	Counts map[string]int
}

// EmptyPayload backs kinds whose whole effect is carried by mode and
// weight (professor_rating_weight, hub_targets, bookmarked_bonus).
type EmptyPayload struct{}

// OrderingPayload backs enforce_ordering: Before must complete in a
// strictly earlier semester than any chosen section of After.
type OrderingPayload struct {
	Before string
	After  string
}

// PriorityPayload backs lexicographic_priority with an explicit
// permutation of the three tiers, highest priority first.
type PriorityPayload struct {
	Order [3]Tier
}

// FilterPayload backs section_filter. Unset time bounds are -1. A
// section survives the filter only if it matches every populated field.
type FilterPayload struct {
	Days               DaySet
	Earliest           int
	Latest             int
	Instructors        []string
	ExcludeInstructors []string
}

// PinPayload backs pin_sections: the solution must consist of exactly
// the listed sections.
type PinPayload struct {
	Sections []string
}

func (DaysPayload) isPayload()        {}
func (TimePayload) isPayload()        {}
func (WindowPayload) isPayload()      {}
func (CountPayload) isPayload()       {}
func (CoursePayload) isPayload()      {}
func (SectionPayload) isPayload()     {}
func (InstructorsPayload) isPayload() {}
func (GroupCountsPayload) isPayload() {}
func (EmptyPayload) isPayload()       {}
func (OrderingPayload) isPayload()    {}
func (PriorityPayload) isPayload()    {}
func (FilterPayload) isPayload()      {}
func (PinPayload) isPayload()         {}
