package api

import (
	"alcyxob/class-planner/internal/engine"
	"alcyxob/class-planner/internal/repository"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SetupRoutes wires the caller-facing endpoints onto the router.
func SetupRoutes(
	router *gin.Engine,
	eng engine.Engine,
	movementRepo repository.MovementRepository,
	log *zap.SugaredLogger,
) {
	planHandler := NewPlanHandler(eng, log)
	movementHandler := NewMovementHandler(movementRepo, log)

	router.Use(RequestIDMiddleware(), RequestLogger(log))

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	apiV1 := router.Group("/api/v1")
	{
		apiV1.POST("/sequences", planHandler.PlanSequence)
		apiV1.GET("/movements", movementHandler.ListMovements)
	}
}
