package dto

import "github.com/campusplan/solver-api/internal/model"

// Relation is one course section offering as the planning backend
// stores it. Start and End are minutes since midnight.
type Relation struct {
	RID             string   `json:"rid" validate:"required"`
	ClassID         string   `json:"class_id" validate:"required"`
	Semester        string   `json:"semester" validate:"required"`
	Days            []string `json:"days"`
	Start           int      `json:"start" validate:"min=0,max=1440"`
	End             int      `json:"end" validate:"min=0,max=1440,gtfield=Start"`
	InstructorID    string   `json:"instructor_id"`
	ProfessorRating float64  `json:"professor_rating" validate:"min=0,max=5"`
}

// HubData carries hub requirement targets and the courses satisfying
// each tag.
type HubData struct {
	Requirements map[string]int      `json:"requirements"`
	ClassesByTag map[string][]string `json:"classes_by_tag"`
}

// Constraint is the wire form of one planning constraint. Payload is
// kind-specific and validated against a per-kind schema before
// compilation; mode and weight are optional and defaulted during
// sanitization.
type Constraint struct {
	ID      string         `json:"id"`
	Kind    string         `json:"kind" validate:"required"`
	Mode    string         `json:"mode" validate:"omitempty,oneof=hard soft"`
	Weight  *float64       `json:"weight" validate:"omitempty,gt=0"`
	Payload map[string]any `json:"payload"`
}

// SolveRequest aggregates everything one solve call needs. The solver
// is a pure function of this payload: no other state is consulted.
type SolveRequest struct {
	Relations        []Relation          `json:"relations" validate:"required,min=1,dive"`
	Conflicts        [][]string          `json:"conflicts" validate:"omitempty,dive,len=2"`
	Groups           map[string][]string `json:"groups"`
	Hubs             HubData             `json:"hubs"`
	Semesters        []string            `json:"semesters" validate:"required,min=1"`
	Bookmarks        []string            `json:"bookmarks"`
	CompletedCourses []string            `json:"completed_courses"`
	K                int                 `json:"k" validate:"required,min=1"`
	Constraints      []Constraint        `json:"constraints" validate:"omitempty,dive"`
	TimeLimitSec     float64             `json:"time_limit_sec" validate:"omitempty,gt=0"`
	Scale            int                 `json:"scale" validate:"omitempty,min=1"`
}

// ConstraintWarning reports a constraint that was dropped during
// sanitization. A dropped constraint never fails the whole solve.
type ConstraintWarning struct {
	ID     string `json:"id,omitempty"`
	Kind   string `json:"kind"`
	Reason string `json:"reason"`
}

// SolveResponse is the wire contract consumed by the CRUD backend.
// Objective scores are reported in scaled integer units; divide by
// Scale to recover raw weight units.
type SolveResponse struct {
	Status          model.SolveStatus   `json:"status"`
	ChosenSections  []string            `json:"chosen_sections"`
	ChosenClasses   []string            `json:"chosen_classes"`
	BySemester      map[string][]string `json:"by_semester"`
	ObjectiveScores model.TierScores    `json:"objective_scores"`
	Scale           int                 `json:"scale"`
	Warnings        []ConstraintWarning `json:"warnings,omitempty"`
}

// ConstraintVerdict is one entry of the validate-constraints response.
type ConstraintVerdict struct {
	ID     string `json:"id,omitempty"`
	Kind   string `json:"kind"`
	Valid  bool   `json:"valid"`
	Reason string `json:"reason,omitempty"`
}

// HealthResponse advertises liveness plus the supported constraint
// kinds so the NL-to-constraint translator can stay in sync.
type HealthResponse struct {
	Status string   `json:"status"`
	Kinds  []string `json:"kinds"`
}
