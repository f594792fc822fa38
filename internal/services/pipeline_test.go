package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastbreakhq/fastbreak/internal/features"
	"github.com/fastbreakhq/fastbreak/internal/identity"
	"github.com/fastbreakhq/fastbreak/internal/models"
	"github.com/fastbreakhq/fastbreak/internal/predict"
	"github.com/fastbreakhq/fastbreak/internal/providers"
	"github.com/fastbreakhq/fastbreak/internal/storage"
	"github.com/fastbreakhq/fastbreak/internal/strength"
	"github.com/fastbreakhq/fastbreak/pkg/config"
	"github.com/fastbreakhq/fastbreak/pkg/database"
)

const boxScoreHeader = "firstName,lastName,playerteamName,opponentteamName,gameDate,numMinutes,points,reboundsTotal,assists,steals,blocks,turnovers,fieldGoalsMade,fieldGoalsAttempted,threePointersMade,freeThrowsMade,freeThrowsAttempted\n"

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	log.SetLevel(logrus.PanicLevel)
	return log
}

// scoreRow emits a box-score line with only points filled in, so the
// fantasy score is points + made-shot terms of zero.
func scoreRow(first, last, team, opp string, date time.Time, points float64) string {
	return fmt.Sprintf("%s,%s,%s,%s,%s,30,%g,0,0,0,0,0,0,0,0,0,0\n",
		first, last, team, opp, date.Format("2006-01-02"), points)
}

func writeTestExtracts(t *testing.T, dir string) {
	t.Helper()
	now := time.Now().UTC()

	boxScores := boxScoreHeader
	for i, points := range []float64{20, 25, 30, 35} {
		date := now.AddDate(0, 0, -8+i*2)
		boxScores += scoreRow("Ano", "Guard", "lakers", "nuggets", date, points)
		boxScores += scoreRow("Beto", "Guard", "nuggets", "lakers", date, points+5)
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "PlayerStatistics.csv"), []byte(boxScores), 0o644))

	players := "firstName,lastName,personId,guard,forward,center\n" +
		"Ano,Guard,101,true,false,false\n" +
		"Beto,Guard,102,true,false,false\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Players.csv"), []byte(players), 0o644))

	injuries := "TEAM,PLAYER,STATUS,DATE\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "injury_data.csv"), []byte(injuries), 0o644))

	schedule := "hometeamId,awayteamId,gameDateTimeEst\n" +
		fmt.Sprintf("1,2,%s 19:30:00\n", now.AddDate(0, 0, 1).Format("2006-01-02"))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "LeagueSchedule.csv"), []byte(schedule), 0o644))

	teams := `[{"teamId": 1, "simpleName": "lakers"}, {"teamId": 2, "simpleName": "nuggets"}]`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "teams.json"), []byte(teams), 0o644))
}

type pipelineEnv struct {
	pipeline      *PipelineService
	cfg           *config.Config
	reader        *providers.ExtractReader
	identity      *identity.Builder
	strength      *strength.Builder
	lineStore     *storage.LineStore
	featureStore  *storage.FeatureStore
	injuryStore   *storage.InjuryStore
	scheduleStore *storage.ScheduleStore
	dir           string
}

func newTestPipeline(t *testing.T) *pipelineEnv {
	t.Helper()
	dir := t.TempDir()
	writeTestExtracts(t, dir)

	cfg := &config.Config{
		DataDir:           dir,
		BoxScoresFile:     "PlayerStatistics.csv",
		PlayersFile:       "Players.csv",
		InjuriesFile:      "injury_data.csv",
		ScheduleFile:      "LeagueSchedule.csv",
		TeamsFile:         "teams.json",
		TrainingOutFile:   "model_training_data.csv",
		PlayerCacheFile:   "player_lookup_cache.json",
		StrengthCacheFile: "opponent_strength_cache.json",
		SeasonCutoff:      "2000-01-01",
		StrengthWindow:    30,
		RecentGamesWindow: 5,
		TopPredictions:    3,
	}

	db, err := database.NewTestConnection()
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.BoxScoreLine{}, &models.FeatureRow{}, &models.InjuryEvent{},
		&models.ScheduledGame{}, &storage.StrengthSnapshot{}))
	t.Cleanup(func() { db.Close() })

	log := quietLogger()
	identityRepo := storage.NewFileStore[identity.Cache](cfg.DataPath(cfg.PlayerCacheFile))
	strengthRepo := storage.NewFileStore[strength.Cache](cfg.DataPath(cfg.StrengthCacheFile))

	reader := providers.NewExtractReader(log)
	positionClient := providers.NewPositionClient("http://127.0.0.1:0", time.Millisecond, time.Second, 3, log)
	identityBuilder := identity.NewBuilder(identityRepo, log)
	patcher := identity.NewPatcher(identityRepo, positionClient, log)
	strengthBuilder := strength.NewBuilder(strengthRepo, storage.NewSnapshotStore(db), cfg.StrengthWindow, log)
	featurePipeline := features.NewPipeline(cfg.RecentGamesWindow, log)

	env := &pipelineEnv{
		cfg:           cfg,
		reader:        reader,
		identity:      identityBuilder,
		strength:      strengthBuilder,
		lineStore:     storage.NewLineStore(db),
		featureStore:  storage.NewFeatureStore(db),
		injuryStore:   storage.NewInjuryStore(db),
		scheduleStore: storage.NewScheduleStore(db),
		dir:           dir,
	}
	env.pipeline = NewPipelineService(
		cfg, reader, identityBuilder, patcher, strengthBuilder, featurePipeline,
		PipelineStores{
			Lines:    env.lineStore,
			Dataset:  env.featureStore,
			Injuries: env.injuryStore,
			Schedule: env.scheduleStore,
		}, log)
	return env
}

func TestPipelineRunAll(t *testing.T) {
	env := newTestPipeline(t)

	require.NoError(t, env.pipeline.RunAll(context.Background()))

	// Every box-score line was persisted.
	lines, err := env.lineStore.All()
	require.NoError(t, err)
	assert.Len(t, lines, 8)

	// Each player's first game has no prior history and is dropped, the
	// rest become labeled rows.
	rows, err := env.featureStore.All()
	require.NoError(t, err)
	require.Len(t, rows, 6)
	for _, row := range rows {
		require.NotNil(t, row.FantasyScore)
		assert.Greater(t, row.OpponentOSS, 0.0)
	}

	// Cache documents and the training CSV landed on disk.
	for _, name := range []string{"player_lookup_cache.json", "opponent_strength_cache.json", "model_training_data.csv"} {
		_, err := os.Stat(filepath.Join(env.dir, name))
		assert.NoError(t, err, name)
	}
}

func TestPipelineRefreshIdentityResolvesPlayers(t *testing.T) {
	env := newTestPipeline(t)

	result, err := env.pipeline.RefreshIdentity(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, result.Resolved)
	assert.True(t, result.Updated)
	assert.Equal(t, "G", result.Cache["Ano Guard"].Positions.Code())

	// A second refresh over the same extracts changes nothing.
	again, err := env.pipeline.RefreshIdentity(context.Background())
	require.NoError(t, err)
	assert.False(t, again.Updated)
}

func TestPipelineRebuildStrengthWritesSnapshot(t *testing.T) {
	env := newTestPipeline(t)
	ctx := context.Background()

	_, err := env.pipeline.RefreshIdentity(ctx)
	require.NoError(t, err)

	cache, err := env.pipeline.RebuildStrength(ctx, "run-1")
	require.NoError(t, err)

	// nuggets conceded Ano's scores to guards.
	score, ok := cache.Score("nuggets", models.Guard)
	require.True(t, ok)
	assert.InDelta(t, 27.5, score, 1e-9)
}

func TestBoardServiceServesBoard(t *testing.T) {
	env := newTestPipeline(t)
	ctx := context.Background()

	require.NoError(t, env.pipeline.RunAll(ctx))

	scorer := &predict.LinearScorer{Weights: map[string]float64{"recent_avg_fp": 1}}
	predictor := predict.NewService(scorer, env.cfg.TopPredictions, quietLogger())
	boards := NewBoardService(
		env.cfg, env.reader, env.lineStore, env.injuryStore, env.scheduleStore,
		env.identity, env.strength, predictor, nil, quietLogger())

	board, err := boards.BoardFor(ctx, time.Now().UTC().AddDate(0, 0, 1))
	require.NoError(t, err)
	require.Len(t, board.TopProjected, 2)

	// Beto averaged five more fantasy points a game than Ano.
	top := board.TopProjected[0]
	assert.Equal(t, "Beto", top.FirstName)
	assert.Equal(t, "nuggets", top.Team)
	assert.Equal(t, "lakers", top.OpponentTeam)
	assert.InDelta(t, 32.5, top.PredictedFP, 1e-9)
	assert.Equal(t, "lakers allow 1st highest FP to Gs", top.MatchupNote)

	assert.Equal(t, "Ano", board.TopProjected[1].FirstName)
	assert.Len(t, board.BoomCandidates, 2)
}

func TestBoardServiceRequiresLoadedLines(t *testing.T) {
	env := newTestPipeline(t)

	predictor := predict.NewService(&predict.LinearScorer{Weights: map[string]float64{}}, 3, quietLogger())
	boards := NewBoardService(
		env.cfg, env.reader, env.lineStore, env.injuryStore, env.scheduleStore,
		env.identity, env.strength, predictor, nil, quietLogger())

	_, err := boards.BoardFor(context.Background(), time.Now().UTC())
	assert.ErrorContains(t, err, "run the pipeline first")
}
