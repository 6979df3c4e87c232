package api

import (
	"alcyxob/class-planner/internal/domain"
	"alcyxob/class-planner/internal/engine"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// PlanHandler holds the planning engine dependency.
type PlanHandler struct {
	engine engine.Engine
	log    *zap.SugaredLogger
}

// NewPlanHandler creates a new PlanHandler.
func NewPlanHandler(eng engine.Engine, log *zap.SugaredLogger) *PlanHandler {
	return &PlanHandler{engine: eng, log: log}
}

// --- DTOs for API (Data Transfer Objects) ---

// PlanSequenceRequest defines the expected JSON for planning a class sequence.
type PlanSequenceRequest struct {
	UserID          string `json:"userId" binding:"required"`
	Difficulty      string `json:"difficulty" binding:"required"`
	DurationMinutes int    `json:"durationMinutes" binding:"required,gt=0"`
	IncludeWarmup   bool   `json:"includeWarmup"`
}

// SequenceItemResponse is the DTO for one sequence entry.
type SequenceItemResponse struct {
	Type         string   `json:"type"`
	MovementID   string   `json:"movementId,omitempty"`
	Name         string   `json:"name,omitempty"`
	Family       string   `json:"family,omitempty"`
	Difficulty   string   `json:"difficulty,omitempty"`
	MuscleGroups []string `json:"muscleGroups,omitempty"`
	DurationSec  int      `json:"durationSec"`
	FromPosition string   `json:"fromPosition,omitempty"`
	ToPosition   string   `json:"toPosition,omitempty"`
	Narrative    string   `json:"narrative,omitempty"`
}

// RuleResultResponse mirrors one quality rule outcome.
type RuleResultResponse struct {
	Name   string  `json:"name"`
	Passed bool    `json:"passed"`
	Metric float64 `json:"metric"`
}

// QualityReportResponse mirrors the three golden rules plus the aggregate score.
type QualityReportResponse struct {
	MuscleRepetition   RuleResultResponse `json:"muscleRepetition"`
	FamilyBalance      RuleResultResponse `json:"familyBalance"`
	RepertoireCoverage RuleResultResponse `json:"repertoireCoverage"`
	Score              float64            `json:"score"`
}

// PlanResponse is the DTO for a planned class sequence.
type PlanResponse struct {
	PlanID           string                 `json:"planId"`
	Items            []SequenceItemResponse `json:"items"`
	TotalDurationSec int                    `json:"totalDurationSec"`
	Quality          QualityReportResponse  `json:"quality"`
}

func mapRuleToResponse(r domain.RuleResult) RuleResultResponse {
	return RuleResultResponse{Name: r.Name, Passed: r.Passed, Metric: r.Metric}
}

func mapItemToResponse(item domain.SequenceItem) SequenceItemResponse {
	resp := SequenceItemResponse{
		Type:         string(item.Type),
		DurationSec:  item.DurationSec,
		FromPosition: string(item.FromPosition),
		ToPosition:   string(item.ToPosition),
		Narrative:    item.Narrative,
	}
	if item.Movement != nil {
		resp.MovementID = item.Movement.ID.Hex()
		resp.Name = item.Movement.Name
		resp.Family = item.Movement.Family
		resp.Difficulty = string(item.Movement.Difficulty)
		resp.MuscleGroups = item.Movement.MuscleGroups
	}
	return resp
}

// MapPlanToResponse converts an engine.Plan to the PlanResponse DTO.
func MapPlanToResponse(plan *engine.Plan) PlanResponse {
	items := make([]SequenceItemResponse, len(plan.Items))
	for i, item := range plan.Items {
		items[i] = mapItemToResponse(item)
	}
	return PlanResponse{
		PlanID:           plan.ID,
		Items:            items,
		TotalDurationSec: int(plan.TotalDuration.Seconds()),
		Quality: QualityReportResponse{
			MuscleRepetition:   mapRuleToResponse(plan.Report.MuscleRepetition),
			FamilyBalance:      mapRuleToResponse(plan.Report.FamilyBalance),
			RepertoireCoverage: mapRuleToResponse(plan.Report.RepertoireCoverage),
			Score:              plan.Report.Score,
		},
	}
}

// --- Handler Methods ---

// PlanSequence handles POST /api/v1/sequences.
func (h *PlanHandler) PlanSequence(c *gin.Context) {
	var req PlanSequenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	userID, err := primitive.ObjectIDFromHex(req.UserID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid user ID format")
		return
	}

	difficulty, err := domain.ParseDifficulty(req.Difficulty)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	plan, err := h.engine.PlanSequence(c.Request.Context(), engine.PlanRequest{
		UserID:         userID,
		Difficulty:     difficulty,
		TargetDuration: time.Duration(req.DurationMinutes) * time.Minute,
		IncludeWarmUp:  req.IncludeWarmup,
	})
	if err != nil {
		switch {
		case errors.Is(err, engine.ErrDataUnavailable):
			abortWithError(c, http.StatusNotFound, "No movements available for the requested difficulty")
		case errors.Is(err, engine.ErrInvalidRequest):
			abortWithError(c, http.StatusBadRequest, err.Error())
		default:
			h.log.Errorw("sequence planning failed",
				"requestId", c.GetString(ContextRequestIDKey), "error", err)
			abortWithError(c, http.StatusInternalServerError, "Failed to plan sequence")
		}
		return
	}

	c.JSON(http.StatusOK, MapPlanToResponse(plan))
}
