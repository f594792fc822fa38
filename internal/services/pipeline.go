package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/fastbreakhq/fastbreak/internal/features"
	"github.com/fastbreakhq/fastbreak/internal/identity"
	"github.com/fastbreakhq/fastbreak/internal/models"
	"github.com/fastbreakhq/fastbreak/internal/providers"
	"github.com/fastbreakhq/fastbreak/internal/scoring"
	"github.com/fastbreakhq/fastbreak/internal/strength"
	"github.com/fastbreakhq/fastbreak/pkg/config"
)

// LineSink persists raw box-score lines for the serving path.
type LineSink interface {
	ReplaceAll(lines []models.BoxScoreLine) error
}

// FeatureSink persists the finished training dataset.
type FeatureSink interface {
	ReplaceAll(rows []models.FeatureRow) error
}

// InjurySink persists the injury feed snapshot.
type InjurySink interface {
	ReplaceAll(events []models.InjuryEvent) error
}

// ScheduleSink persists the league schedule.
type ScheduleSink interface {
	ReplaceAll(games []models.ScheduledGame) error
}

// PipelineStores groups the relational sinks the pipeline writes to.
type PipelineStores struct {
	Lines    LineSink
	Dataset  FeatureSink
	Injuries InjurySink
	Schedule ScheduleSink
}

// PipelineService orchestrates the batch stages: load extracts, refresh
// the player identity cache, rebuild opponent strength, and emit the
// training dataset. Stages are deterministic for a fixed set of extracts,
// so any stage can be re-run on its own.
type PipelineService struct {
	cfg      *config.Config
	reader   *providers.ExtractReader
	identity *identity.Builder
	patcher  *identity.Patcher
	strength *strength.Builder
	features *features.Pipeline
	stores   PipelineStores
	logger   *logrus.Logger
}

func NewPipelineService(
	cfg *config.Config,
	reader *providers.ExtractReader,
	identityBuilder *identity.Builder,
	patcher *identity.Patcher,
	strengthBuilder *strength.Builder,
	featurePipeline *features.Pipeline,
	stores PipelineStores,
	logger *logrus.Logger,
) *PipelineService {
	return &PipelineService{
		cfg:      cfg,
		reader:   reader,
		identity: identityBuilder,
		patcher:  patcher,
		strength: strengthBuilder,
		features: featurePipeline,
		stores:   stores,
		logger:   logger,
	}
}

// loadScoredLines reads the box-score extract and derives fantasy scores.
func (s *PipelineService) loadScoredLines() ([]scoring.ScoredLine, error) {
	cutoff, err := s.cfg.SeasonCutoffDate()
	if err != nil {
		return nil, err
	}
	lines, err := s.reader.BoxScores(s.cfg.DataPath(s.cfg.BoxScoresFile), cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to load box scores: %w", err)
	}
	return scoring.ScoreLines(lines), nil
}

// RefreshIdentity rebuilds the player identity cache from the box-score
// and master-list extracts.
func (s *PipelineService) RefreshIdentity(ctx context.Context) (*identity.BuildResult, error) {
	scored, err := s.loadScoredLines()
	if err != nil {
		return nil, err
	}
	master, err := s.reader.MasterList(s.cfg.DataPath(s.cfg.PlayersFile))
	if err != nil {
		return nil, fmt.Errorf("failed to load master list: %w", err)
	}
	return s.identity.Build(scored, master)
}

// PatchPositions backfills missing positions from the external lookup API.
func (s *PipelineService) PatchPositions(ctx context.Context) (int, error) {
	return s.patcher.Patch(ctx)
}

// RebuildStrength recomputes the opponent strength cache as of now.
func (s *PipelineService) RebuildStrength(ctx context.Context, runID string) (strength.Cache, error) {
	cutoff, err := s.cfg.SeasonCutoffDate()
	if err != nil {
		return nil, err
	}
	lines, err := s.reader.BoxScores(s.cfg.DataPath(s.cfg.BoxScoresFile), cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to load box scores: %w", err)
	}
	identities, err := s.identityCache()
	if err != nil {
		return nil, err
	}
	return s.strength.Build(runID, lines, identities, time.Now().UTC())
}

// BuildDataset assembles the training dataset and persists it to the
// database and the training CSV.
func (s *PipelineService) BuildDataset(ctx context.Context, runID string) (int, error) {
	scored, err := s.loadScoredLines()
	if err != nil {
		return 0, err
	}
	identities, err := s.identityCache()
	if err != nil {
		return 0, err
	}
	oss, err := s.strengthCache()
	if err != nil {
		return 0, err
	}
	injuries, err := s.reader.Injuries(s.cfg.DataPath(s.cfg.InjuriesFile))
	if err != nil {
		return 0, fmt.Errorf("failed to load injuries: %w", err)
	}
	schedule, err := s.reader.Schedule(s.cfg.DataPath(s.cfg.ScheduleFile))
	if err != nil {
		return 0, fmt.Errorf("failed to load schedule: %w", err)
	}

	rows := s.features.Build(scored, identities, oss, injuries)

	raw := make([]models.BoxScoreLine, len(scored))
	for i, line := range scored {
		raw[i] = line.BoxScoreLine
	}
	if err := s.stores.Lines.ReplaceAll(raw); err != nil {
		return 0, err
	}
	if err := s.stores.Dataset.ReplaceAll(rows); err != nil {
		return 0, err
	}
	if err := s.stores.Injuries.ReplaceAll(injuries); err != nil {
		return 0, err
	}
	if err := s.stores.Schedule.ReplaceAll(schedule); err != nil {
		return 0, err
	}
	if err := features.WriteCSV(s.cfg.DataPath(s.cfg.TrainingOutFile), rows); err != nil {
		return 0, err
	}

	s.logger.WithFields(logrus.Fields{
		"stage":  "dataset",
		"run_id": runID,
		"rows":   len(rows),
	}).Info("Training dataset written")
	return len(rows), nil
}

// RunAll executes the full rebuild in order. The identity refresh runs
// before the strength rebuild because strength explodes positions out of
// the identity cache; the dataset build consumes both.
func (s *PipelineService) RunAll(ctx context.Context) error {
	runID := uuid.New().String()
	log := s.logger.WithFields(logrus.Fields{"stage": "pipeline", "run_id": runID})
	started := time.Now()

	result, err := s.RefreshIdentity(ctx)
	if err != nil {
		return fmt.Errorf("identity refresh failed: %w", err)
	}
	log.WithFields(logrus.Fields{
		"resolved": result.Resolved,
		"updated":  result.Updated,
	}).Info("Identity cache refreshed")

	patched, err := s.PatchPositions(ctx)
	if err != nil {
		// A degraded position API must not block the rebuild.
		log.WithError(err).Warn("Position backfill failed, continuing with stale positions")
	} else if patched > 0 {
		log.WithField("patched", patched).Info("Positions backfilled")
	}

	if _, err := s.RebuildStrength(ctx, runID); err != nil {
		return fmt.Errorf("strength rebuild failed: %w", err)
	}

	rows, err := s.BuildDataset(ctx, runID)
	if err != nil {
		return fmt.Errorf("dataset build failed: %w", err)
	}

	log.WithFields(logrus.Fields{
		"rows":     rows,
		"duration": time.Since(started).String(),
	}).Info("Pipeline run complete")
	return nil
}

func (s *PipelineService) identityCache() (identity.Cache, error) {
	identities, err := s.identity.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load identity cache: %w", err)
	}
	return identities, nil
}

func (s *PipelineService) strengthCache() (strength.Cache, error) {
	oss, err := s.strength.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load strength cache: %w", err)
	}
	return oss, nil
}
