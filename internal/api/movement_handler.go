package api

import (
	"alcyxob/class-planner/internal/domain"
	"alcyxob/class-planner/internal/engine"
	"alcyxob/class-planner/internal/repository"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// MovementHandler serves the read-only movement catalog.
type MovementHandler struct {
	movementRepo repository.MovementRepository
	log          *zap.SugaredLogger
}

// NewMovementHandler creates a new MovementHandler.
func NewMovementHandler(movementRepo repository.MovementRepository, log *zap.SugaredLogger) *MovementHandler {
	return &MovementHandler{movementRepo: movementRepo, log: log}
}

// MovementResponse is the DTO for returning movement details.
type MovementResponse struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description,omitempty"`
	Difficulty    string    `json:"difficulty"`
	Family        string    `json:"family"`
	MuscleGroups  []string  `json:"muscleGroups"`
	DurationSec   int       `json:"durationSec"`
	StartPosition string    `json:"startPosition"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// MapMovementToResponse converts a domain.Movement to MovementResponse DTO.
func MapMovementToResponse(m *domain.Movement) MovementResponse {
	if m == nil {
		return MovementResponse{}
	}
	return MovementResponse{
		ID:            m.ID.Hex(),
		Name:          m.Name,
		Description:   m.Description,
		Difficulty:    string(m.Difficulty),
		Family:        m.Family,
		MuscleGroups:  m.MuscleGroups,
		DurationSec:   m.DurationSec,
		StartPosition: string(m.StartPosition),
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

// ListMovements handles GET /api/v1/movements. An optional ?difficulty=
// query narrows the listing cumulatively, the same way planning does.
func (h *MovementHandler) ListMovements(c *gin.Context) {
	movements, err := h.movementRepo.GetAll(c.Request.Context())
	if err != nil {
		h.log.Errorw("listing movement catalog failed",
			"requestId", c.GetString(ContextRequestIDKey), "error", err)
		abortWithError(c, http.StatusInternalServerError, "Failed to list movements")
		return
	}

	if q := c.Query("difficulty"); q != "" {
		difficulty, err := domain.ParseDifficulty(q)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, err.Error())
			return
		}
		movements = engine.FilterByDifficulty(movements, difficulty)
	}

	responses := make([]MovementResponse, len(movements))
	for i := range movements {
		responses[i] = MapMovementToResponse(&movements[i])
	}
	c.JSON(http.StatusOK, responses)
}
