package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/campusplan/solver-api/internal/dto"
	"github.com/campusplan/solver-api/internal/model"
	"github.com/campusplan/solver-api/internal/solver"
	"github.com/campusplan/solver-api/pkg/config"
	appErrors "github.com/campusplan/solver-api/pkg/errors"
)

type solveObserver interface {
	ObserveSolve(status string, duration time.Duration, poolSize int)
}

// SolveService turns one SolveRequest into one SolveResponse. It holds
// no per-request state, so a single instance serves concurrent solves.
type SolveService struct {
	validator *validator.Validate
	logger    *zap.Logger
	metrics   solveObserver
	cfg       config.SolverConfig
}

// NewSolveService wires solver dependencies.
func NewSolveService(validate *validator.Validate, logger *zap.Logger, metrics solveObserver, cfg config.SolverConfig) *SolveService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.DefaultTimeLimit <= 0 {
		cfg.DefaultTimeLimit = 5 * time.Second
	}
	if cfg.MaxTimeLimit <= 0 {
		cfg.MaxTimeLimit = 30 * time.Second
	}
	if cfg.DefaultScale <= 0 {
		cfg.DefaultScale = 100
	}
	return &SolveService{
		validator: validate,
		logger:    logger,
		metrics:   metrics,
		cfg:       cfg,
	}
}

// Solve runs the full pipeline: sanitize constraints, build the
// conflict-aware decision model, search within the time budget, and map
// the assignment back to sections and courses.
func (s *SolveService) Solve(ctx context.Context, req dto.SolveRequest) (*dto.SolveResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid solve payload")
	}
	if s.cfg.MaxSections > 0 && len(req.Relations) > s.cfg.MaxSections {
		return nil, appErrors.Clone(appErrors.ErrRequestTooLarge, fmt.Sprintf("relations exceeds limit of %d", s.cfg.MaxSections))
	}
	if s.cfg.MaxConstraints > 0 && len(req.Constraints) > s.cfg.MaxConstraints {
		return nil, appErrors.Clone(appErrors.ErrRequestTooLarge, fmt.Sprintf("constraints exceeds limit of %d", s.cfg.MaxConstraints))
	}

	sections, err := parseRelations(req.Relations)
	if err != nil {
		return nil, err
	}

	constraints, warnings := solver.Sanitize(req.Constraints)

	scale := req.Scale
	if scale <= 0 {
		scale = s.cfg.DefaultScale
	}

	problem := &solver.Problem{
		Sections:    sections,
		Conflicts:   req.Conflicts,
		Groups:      buildGroups(req.Groups),
		Hubs:        buildHubs(req.Hubs),
		Semesters:   req.Semesters,
		Bookmarks:   toSet(req.Bookmarks),
		Completed:   toSet(req.CompletedCourses),
		K:           req.K,
		Constraints: constraints,
		Scale:       scale,
	}

	start := time.Now()
	solveID := uuid.NewString()

	m := solver.Compile(problem)
	obj := solver.BuildObjective(m)

	searchCtx, cancel := context.WithTimeout(ctx, s.timeLimit(req.TimeLimitSec))
	defer cancel()
	res := solver.Search(searchCtx, m, obj)

	resp := solver.MapResult(m, res)
	resp.Warnings = append(warnings, m.Warnings...)

	duration := time.Since(start)
	s.logger.Info("solve_completed",
		zap.String("solve_id", solveID),
		zap.String("status", string(res.Status)),
		zap.Bool("proven", res.Proven),
		zap.Int64("nodes", res.Nodes),
		zap.Duration("duration", duration),
		zap.Int("sections", len(m.Sections)),
		zap.Int("courses", len(m.Courses)),
		zap.Int("constraints", len(constraints)),
		zap.Int("warnings", len(resp.Warnings)),
	)
	if s.metrics != nil {
		s.metrics.ObserveSolve(string(res.Status), duration, len(m.Sections))
	}

	return &resp, nil
}

// ValidateConstraints reports per-constraint validity without running a
// solve, so the feedback translator can sanity-check its output.
func (s *SolveService) ValidateConstraints(raw []dto.Constraint) []dto.ConstraintVerdict {
	verdicts := make([]dto.ConstraintVerdict, 0, len(raw))
	for _, rc := range raw {
		verdict := dto.ConstraintVerdict{ID: rc.ID, Kind: rc.Kind, Valid: true}
		if err := solver.Validate(rc); err != nil {
			verdict.Valid = false
			verdict.Reason = err.Error()
		}
		verdicts = append(verdicts, verdict)
	}
	return verdicts
}

// SupportedKinds lists the constraint kinds advertised by /health.
func (s *SolveService) SupportedKinds() []string {
	return solver.SupportedKinds()
}

func (s *SolveService) timeLimit(seconds float64) time.Duration {
	limit := time.Duration(seconds * float64(time.Second))
	if limit <= 0 {
		limit = s.cfg.DefaultTimeLimit
	}
	if limit > s.cfg.MaxTimeLimit {
		limit = s.cfg.MaxTimeLimit
	}
	return limit
}

func parseRelations(relations []dto.Relation) ([]model.Section, error) {
	sections := make([]model.Section, 0, len(relations))
	seen := make(map[string]bool, len(relations))
	for i, rel := range relations {
		if seen[rel.RID] {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("relations[%d].rid %q is duplicated", i, rel.RID))
		}
		seen[rel.RID] = true

		days, bad, ok := model.ParseDaySet(rel.Days)
		if !ok {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("relations[%d].days has unrecognized day %q", i, bad))
		}

		sections = append(sections, model.Section{
			ID:           rel.RID,
			CourseID:     rel.ClassID,
			SemesterID:   rel.Semester,
			Days:         days,
			Start:        rel.Start,
			End:          rel.End,
			InstructorID: rel.InstructorID,
			Rating:       rel.ProfessorRating,
		})
	}
	return sections, nil
}

func buildGroups(raw map[string][]string) []model.RequirementGroup {
	if len(raw) == 0 {
		return nil
	}
	names := make([]string, 0, len(raw))
	for name := range raw {
		names = append(names, name)
	}
	sort.Strings(names)

	groups := make([]model.RequirementGroup, 0, len(names))
	for _, name := range names {
		groups = append(groups, model.RequirementGroup{Name: name, Courses: raw[name]})
	}
	return groups
}

func buildHubs(raw dto.HubData) []model.HubRequirement {
	if len(raw.Requirements) == 0 {
		return nil
	}
	names := make([]string, 0, len(raw.Requirements))
	for name := range raw.Requirements {
		names = append(names, name)
	}
	sort.Strings(names)

	hubs := make([]model.HubRequirement, 0, len(names))
	for _, name := range names {
		hubs = append(hubs, model.HubRequirement{
			Name:     name,
			Required: raw.Requirements[name],
			Courses:  raw.ClassesByTag[name],
		})
	}
	return hubs
}

func toSet(values []string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	return set
}
