package model

// RequirementGroup is a named bucket of courses counting toward degree
// completion. Minimum member counts arrive separately as
// require_group_counts constraints.
type RequirementGroup struct {
	Name    string
	Courses []string
}

// HubRequirement is a general-education tag with a target count and the
// courses that satisfy it. Scored in the degree tier alongside groups.
type HubRequirement struct {
	Name     string
	Required int
	Courses  []string
}
