package handler

import (
	"encoding/json"
	"io"

	"github.com/gin-gonic/gin"

	"github.com/campusplan/solver-api/internal/dto"
	"github.com/campusplan/solver-api/internal/service"
	appErrors "github.com/campusplan/solver-api/pkg/errors"
	"github.com/campusplan/solver-api/pkg/response"
)

// SolveHandler exposes the solver endpoints.
type SolveHandler struct {
	solve *service.SolveService
}

// NewSolveHandler constructs the solve handler.
func NewSolveHandler(solve *service.SolveService) *SolveHandler {
	return &SolveHandler{solve: solve}
}

// Solve runs one schedule solve for the posted problem.
func (h *SolveHandler) Solve(c *gin.Context) {
	if h.solve == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	var req dto.SolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "malformed solve payload"))
		return
	}
	resp, err := h.solve.Solve(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, resp)
}

// ValidateConstraints checks each posted constraint against its
// per-kind payload schema without solving. The documented body is a
// bare constraint array; the wrapped {"constraints": [...]} form is
// also accepted.
func (h *SolveHandler) ValidateConstraints(c *gin.Context) {
	if h.solve == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "unreadable constraints payload"))
		return
	}
	var raw []dto.Constraint
	if err := json.Unmarshal(body, &raw); err != nil {
		var wrapped struct {
			Constraints []dto.Constraint `json:"constraints"`
		}
		if err := json.Unmarshal(body, &wrapped); err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "malformed constraints payload"))
			return
		}
		raw = wrapped.Constraints
	}
	response.OK(c, gin.H{"constraints": h.solve.ValidateConstraints(raw)})
}

// Health reports liveness and the supported constraint kinds.
func (h *SolveHandler) Health(c *gin.Context) {
	if h.solve == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	response.OK(c, dto.HealthResponse{Status: "ok", Kinds: h.solve.SupportedKinds()})
}
