package main

import (
	"alcyxob/class-planner/internal/api"
	"alcyxob/class-planner/internal/config"
	"alcyxob/class-planner/internal/engine"
	"alcyxob/class-planner/internal/repository/mongo"
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	zapLogger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer func() { _ = zapLogger.Sync() }()
	log := zapLogger.Sugar()

	log.Infow("starting class planner server")

	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalw("could not load config", "error", err)
	}

	// --- Database Connection ---
	dbClient, err := mongo.ConnectDB(cfg.Database.URI)
	if err != nil {
		log.Fatalw("could not connect to MongoDB", "error", err)
	}
	defer func() {
		log.Infow("disconnecting MongoDB")
		if err := mongo.DisconnectDB(dbClient); err != nil {
			log.Errorw("failed to disconnect MongoDB", "error", err)
		}
	}()
	appDB := dbClient.Database(cfg.Database.Name)
	log.Infow("database connection established", "database", cfg.Database.Name)

	// --- Ensure Indexes ---
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
		defer cancel()
		if err := mongo.EnsureMovementIndexes(ctx, appDB.Collection("movements")); err != nil {
			log.Warnw("failed to create movement indexes", "error", err)
		}
		if err := mongo.EnsureUsageIndexes(ctx, appDB.Collection("usage_records")); err != nil {
			log.Warnw("failed to create usage indexes", "error", err)
		}
	}()

	// --- Initialize Repositories ---
	movementRepo := mongo.NewMongoMovementRepository(appDB)
	usageRepo := mongo.NewMongoUsageRepository(appDB)

	// --- Initialize Engine ---
	eng := engine.NewEngine(movementRepo, usageRepo, engine.Config{
		MaxIterations:       cfg.Planner.MaxIterations,
		DurationTolerance:   cfg.Planner.DurationTolerance,
		TransitionDuration:  cfg.Planner.TransitionDuration,
		MinAvgStalenessDays: cfg.Planner.MinAvgStalenessDays,
	}, log)

	// --- Initialize Gin Engine ---
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	api.SetupRoutes(router, eng, movementRepo, log)

	// --- Start HTTP Server ---
	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Infow("server listening", "address", cfg.Server.Address)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("listen and serve error", "error", err)
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Infow("shutting down server")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Fatalw("server forced to shutdown", "error", err)
	}

	log.Infow("server exiting")
}
