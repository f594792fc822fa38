package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/fastbreakhq/fastbreak/internal/identity"
	"github.com/fastbreakhq/fastbreak/internal/models"
	"github.com/fastbreakhq/fastbreak/internal/predict"
	"github.com/fastbreakhq/fastbreak/internal/providers"
	"github.com/fastbreakhq/fastbreak/internal/scoring"
	"github.com/fastbreakhq/fastbreak/internal/strength"
	"github.com/fastbreakhq/fastbreak/pkg/config"
)

// LineSource yields the persisted box-score lines for the serving path.
type LineSource interface {
	All() ([]models.BoxScoreLine, error)
}

// InjurySource yields the persisted injury feed snapshot.
type InjurySource interface {
	All() ([]models.InjuryEvent, error)
}

// ScheduleSource yields the persisted league schedule.
type ScheduleSource interface {
	All() ([]models.ScheduledGame, error)
}

// BoardService serves prediction boards. Boards are cached per target
// date; a cache miss rebuilds from the persisted game log and the current
// cache documents. Only the static team mapping is read from disk.
type BoardService struct {
	cfg       *config.Config
	reader    *providers.ExtractReader
	lines     LineSource
	injuries  InjurySource
	schedule  ScheduleSource
	identity  *identity.Builder
	strength  *strength.Builder
	predictor *predict.Service
	cache     *CacheService
	logger    *logrus.Logger
}

func NewBoardService(
	cfg *config.Config,
	reader *providers.ExtractReader,
	lines LineSource,
	injuries InjurySource,
	schedule ScheduleSource,
	identityBuilder *identity.Builder,
	strengthBuilder *strength.Builder,
	predictor *predict.Service,
	cache *CacheService,
	logger *logrus.Logger,
) *BoardService {
	return &BoardService{
		cfg:       cfg,
		reader:    reader,
		lines:     lines,
		injuries:  injuries,
		schedule:  schedule,
		identity:  identityBuilder,
		strength:  strengthBuilder,
		predictor: predictor,
		cache:     cache,
		logger:    logger,
	}
}

// BoardFor returns the prediction board for the target date, serving from
// cache when a fresh copy exists.
func (s *BoardService) BoardFor(ctx context.Context, target time.Time) (*predict.Board, error) {
	key := BoardCacheKey(target.Format("2006-01-02"))
	if s.cache != nil {
		var cached predict.Board
		err := s.cache.Get(ctx, key, &cached)
		if err == nil {
			return &cached, nil
		}
		if !errors.Is(err, ErrCacheMiss) {
			s.logger.WithError(err).Warn("Board cache lookup failed, rebuilding")
		}
	}

	board, err := s.buildBoard(target)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetWithRetry(ctx, key, board, s.cfg.PredictionCacheTTL, 3); err != nil {
			s.logger.WithError(err).Warn("Failed to cache prediction board")
		}
	}
	return board, nil
}

func (s *BoardService) buildBoard(target time.Time) (*predict.Board, error) {
	raw, err := s.lines.All()
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("no box-score lines loaded, run the pipeline first")
	}

	schedule, err := s.schedule.All()
	if err != nil {
		return nil, fmt.Errorf("failed to load schedule: %w", err)
	}
	injuries, err := s.injuries.All()
	if err != nil {
		return nil, fmt.Errorf("failed to load injuries: %w", err)
	}
	teamList, err := s.reader.Teams(s.cfg.DataPath(s.cfg.TeamsFile))
	if err != nil {
		return nil, fmt.Errorf("failed to load teams: %w", err)
	}

	identities, err := s.identity.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load identity cache: %w", err)
	}
	oss, err := s.strength.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load strength cache: %w", err)
	}

	return s.predictor.PredictDay(
		target,
		scoring.ScoreLines(raw),
		schedule,
		models.NewTeamIndex(teamList),
		identities,
		oss,
		injuries,
	)
}
