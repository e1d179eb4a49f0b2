package model

// Section is one scheduled offering of a course in a semester. Start and
// End are minutes since midnight; the meeting interval is half-open
// [Start, End), so back-to-back sections do not conflict.
type Section struct {
	ID           string
	CourseID     string
	SemesterID   string
	Days         DaySet
	Start        int
	End          int
	InstructorID string
	Rating       float64
}

// Async reports whether the section has no fixed meeting pattern.
// Asynchronous sections never conflict on time.
func (s Section) Async() bool {
	return s.Days.Empty()
}

// OverlapsTime reports whether two sections collide on the clock: they
// share a meeting day and their half-open intervals intersect. Semester
// membership is not considered here.
func (s Section) OverlapsTime(o Section) bool {
	if s.Async() || o.Async() {
		return false
	}
	if !s.Days.Overlaps(o.Days) {
		return false
	}
	return s.Start < o.End && o.Start < s.End
}

// OverlapsWindow reports whether the section meets inside [start, end)
// on any of the given days. An empty day set matches every day.
func (s Section) OverlapsWindow(start, end int, days DaySet) bool {
	if s.Async() {
		return false
	}
	if !days.Empty() && !s.Days.Overlaps(days) {
		return false
	}
	return s.Start < end && start < s.End
}
