// Command seed loads a movement catalog snapshot (a JSON array of movement
// definitions) from S3 or a local file and upserts it into MongoDB. With
// -export it goes the other way and uploads the current catalog as a snapshot.
package main

import (
	"alcyxob/class-planner/internal/config"
	"alcyxob/class-planner/internal/domain"
	"alcyxob/class-planner/internal/repository"
	"alcyxob/class-planner/internal/repository/mongo"
	"alcyxob/class-planner/internal/storage"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"io"
	"os"
	"time"

	"go.uber.org/zap"
)

// movementSeed is the snapshot wire format for one catalog entry.
type movementSeed struct {
	Name          string   `json:"name"`
	Description   string   `json:"description,omitempty"`
	Difficulty    string   `json:"difficulty"`
	Family        string   `json:"family"`
	MuscleGroups  []string `json:"muscleGroups"`
	DurationSec   int      `json:"durationSec"`
	StartPosition string   `json:"startPosition"`
}

func main() {
	var (
		filePath = flag.String("file", "", "local snapshot file to seed from")
		s3Key    = flag.String("s3-key", "", "S3 object key to seed from (uses s3.* config)")
		export   = flag.Bool("export", false, "upload the current catalog to -s3-key instead of seeding")
	)
	flag.Parse()

	zapLogger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer func() { _ = zapLogger.Sync() }()
	log := zapLogger.Sugar()

	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalw("could not load config", "error", err)
	}

	dbClient, err := mongo.ConnectDB(cfg.Database.URI)
	if err != nil {
		log.Fatalw("could not connect to MongoDB", "error", err)
	}
	defer func() { _ = mongo.DisconnectDB(dbClient) }()
	appDB := dbClient.Database(cfg.Database.Name)
	movementRepo := mongo.NewMongoMovementRepository(appDB)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := mongo.EnsureMovementIndexes(ctx, appDB.Collection("movements")); err != nil {
		log.Warnw("failed to create movement indexes", "error", err)
	}

	if *export {
		if *s3Key == "" {
			log.Fatalw("-export requires -s3-key")
		}
		if err := exportCatalog(ctx, movementRepo, cfg, *s3Key, log); err != nil {
			log.Fatalw("catalog export failed", "error", err)
		}
		return
	}

	snapshot, err := openSnapshot(ctx, cfg, *filePath, *s3Key, log)
	if err != nil {
		log.Fatalw("could not open snapshot", "error", err)
	}
	defer snapshot.Close()

	count, err := seedCatalog(ctx, movementRepo, snapshot)
	if err != nil {
		log.Fatalw("catalog seeding failed", "error", err)
	}
	log.Infow("catalog seeded", "movements", count)
}

// openSnapshot resolves the snapshot source: a local file when -file is set,
// otherwise the configured S3 bucket.
func openSnapshot(ctx context.Context, cfg config.Config, filePath, s3Key string, log *zap.SugaredLogger) (io.ReadCloser, error) {
	if filePath != "" {
		log.Infow("seeding from local file", "path", filePath)
		return os.Open(filePath)
	}
	if s3Key == "" {
		return nil, errors.New("either -file or -s3-key is required")
	}

	store, err := storage.NewS3SnapshotStore(cfg.S3)
	if err != nil {
		return nil, err
	}
	log.Infow("seeding from S3", "bucket", cfg.S3.BucketName, "key", s3Key)
	return store.Download(ctx, s3Key)
}

// seedCatalog decodes the snapshot and upserts every entry by name.
func seedCatalog(ctx context.Context, movementRepo repository.MovementRepository, snapshot io.Reader) (int, error) {
	var seeds []movementSeed
	if err := json.NewDecoder(snapshot).Decode(&seeds); err != nil {
		return 0, err
	}

	for _, seed := range seeds {
		difficulty, err := domain.ParseDifficulty(seed.Difficulty)
		if err != nil {
			return 0, err
		}
		movement := &domain.Movement{
			Name:          seed.Name,
			Description:   seed.Description,
			Difficulty:    difficulty,
			Family:        seed.Family,
			MuscleGroups:  seed.MuscleGroups,
			DurationSec:   seed.DurationSec,
			StartPosition: domain.Position(seed.StartPosition),
		}
		if err := movementRepo.UpsertByName(ctx, movement); err != nil {
			return 0, err
		}
	}
	return len(seeds), nil
}

// exportCatalog uploads the current catalog as a snapshot object.
func exportCatalog(ctx context.Context, movementRepo repository.MovementRepository, cfg config.Config, s3Key string, log *zap.SugaredLogger) error {
	movements, err := movementRepo.GetAll(ctx)
	if err != nil {
		return err
	}

	seeds := make([]movementSeed, len(movements))
	for i, m := range movements {
		seeds[i] = movementSeed{
			Name:          m.Name,
			Description:   m.Description,
			Difficulty:    string(m.Difficulty),
			Family:        m.Family,
			MuscleGroups:  m.MuscleGroups,
			DurationSec:   m.DurationSec,
			StartPosition: string(m.StartPosition),
		}
	}

	payload, err := json.MarshalIndent(seeds, "", "  ")
	if err != nil {
		return err
	}

	store, err := storage.NewS3SnapshotStore(cfg.S3)
	if err != nil {
		return err
	}
	if err := store.Upload(ctx, s3Key, bytes.NewReader(payload), "application/json"); err != nil {
		return err
	}
	log.Infow("catalog exported", "bucket", cfg.S3.BucketName, "key", s3Key, "movements", len(seeds))
	return nil
}
