package main

import (
	"context"
	"log"
	"os"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/fastbreakhq/fastbreak/internal/features"
	"github.com/fastbreakhq/fastbreak/internal/identity"
	"github.com/fastbreakhq/fastbreak/internal/providers"
	"github.com/fastbreakhq/fastbreak/internal/services"
	"github.com/fastbreakhq/fastbreak/internal/storage"
	"github.com/fastbreakhq/fastbreak/internal/strength"
	"github.com/fastbreakhq/fastbreak/pkg/config"
	"github.com/fastbreakhq/fastbreak/pkg/database"
	"github.com/fastbreakhq/fastbreak/pkg/logger"
)

// One-shot batch runner. Cache documents are written straight to disk so
// a run needs nothing besides the database and the extract files.
func main() {
	if len(os.Args) < 2 {
		log.Fatal("Usage: pipeline [refresh-identity|patch-positions|build-strength|build-dataset|all]")
	}
	command := os.Args[1]

	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}
	logger.InitLogger("", cfg.IsDevelopment())
	lg := logger.GetLogger()

	db, err := database.NewConnection(cfg.DatabaseURL, cfg.IsDevelopment())
	if err != nil {
		lg.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	identityRepo := storage.NewFileStore[identity.Cache](cfg.DataPath(cfg.PlayerCacheFile))
	strengthRepo := storage.NewFileStore[strength.Cache](cfg.DataPath(cfg.StrengthCacheFile))

	reader := providers.NewExtractReader(lg)
	positionClient := providers.NewPositionClient(
		cfg.PositionAPIBaseURL, cfg.PositionAPIInterval, cfg.ExternalAPITimeout, cfg.CircuitBreakerThreshold, lg)
	identityBuilder := identity.NewBuilder(identityRepo, lg)
	patcher := identity.NewPatcher(identityRepo, positionClient, lg)
	strengthBuilder := strength.NewBuilder(strengthRepo, storage.NewSnapshotStore(db), cfg.StrengthWindow, lg)
	featurePipeline := features.NewPipeline(cfg.RecentGamesWindow, lg)

	pipeline := services.NewPipelineService(
		cfg, reader, identityBuilder, patcher, strengthBuilder, featurePipeline,
		services.PipelineStores{
			Lines:    storage.NewLineStore(db),
			Dataset:  storage.NewFeatureStore(db),
			Injuries: storage.NewInjuryStore(db),
			Schedule: storage.NewScheduleStore(db),
		}, lg)

	ctx := context.Background()
	switch command {
	case "refresh-identity":
		result, err := pipeline.RefreshIdentity(ctx)
		if err != nil {
			lg.Fatalf("Identity refresh failed: %v", err)
		}
		logger.WithStage("identity").WithFields(logrus.Fields{
			"resolved": result.Resolved,
			"skipped":  result.Skipped,
			"updated":  result.Updated,
		}).Info("Identity cache refreshed")

	case "patch-positions":
		patched, err := pipeline.PatchPositions(ctx)
		if err != nil {
			lg.Fatalf("Position backfill failed: %v", err)
		}
		logger.WithStage("identity_patch").WithField("patched", patched).Info("Position backfill complete")

	case "build-strength":
		runID := uuid.New().String()
		if _, err := pipeline.RebuildStrength(ctx, runID); err != nil {
			lg.Fatalf("Strength rebuild failed: %v", err)
		}
		logger.WithRun(runID, "strength").Info("Strength cache rebuilt")

	case "build-dataset":
		runID := uuid.New().String()
		rows, err := pipeline.BuildDataset(ctx, runID)
		if err != nil {
			lg.Fatalf("Dataset build failed: %v", err)
		}
		logger.WithRun(runID, "dataset").WithField("rows", rows).Info("Dataset build complete")

	case "all":
		if err := pipeline.RunAll(ctx); err != nil {
			lg.Fatalf("Pipeline run failed: %v", err)
		}

	default:
		log.Fatalf("Unknown command: %s", command)
	}
}
