package strength

import (
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastbreakhq/fastbreak/internal/identity"
	"github.com/fastbreakhq/fastbreak/internal/models"
	"github.com/fastbreakhq/fastbreak/internal/storage"
)

type memRepo struct {
	doc   Cache
	saves int
}

func (r *memRepo) Load() (Cache, error) {
	if r.doc == nil {
		return nil, storage.ErrNotFound
	}
	return r.doc, nil
}

func (r *memRepo) Save(doc Cache) error {
	r.doc = doc
	r.saves++
	return nil
}

type memArchive struct {
	runIDs []string
}

func (a *memArchive) Append(runID string, _ []byte) error {
	a.runIDs = append(a.runIDs, runID)
	return nil
}

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel)
	return log
}

func guardForward() identity.Cache {
	return identity.Cache{
		"Luka Doncic":  {PlayerID: "1", Positions: models.PositionSet{models.Guard, models.Forward}},
		"Rudy Gobert":  {PlayerID: "2", Positions: models.PositionSet{models.Center}},
		"Jamal Murray": {PlayerID: "3", Positions: models.PositionSet{models.Guard}},
	}
}

func TestBuildExplodesMultiPositionPlayers(t *testing.T) {
	asOf := time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC)
	repo := &memRepo{}
	builder := NewBuilder(repo, nil, 30, testLogger())

	lines := []models.BoxScoreLine{
		{FirstName: "Luka", LastName: "Doncic", OpponentTeam: "lakers", GameDate: asOf.AddDate(0, 0, -5), Minutes: 36, Points: 30},
	}

	cache, err := builder.Build("run-1", lines, guardForward(), asOf)
	require.NoError(t, err)

	g, ok := cache.Score("lakers", models.Guard)
	require.True(t, ok)
	f, _ := cache.Score("lakers", models.Forward)
	c, _ := cache.Score("lakers", models.Center)

	assert.Equal(t, 30.0, g, "G-F player feeds the guard aggregate")
	assert.Equal(t, 30.0, f, "G-F player feeds the forward aggregate")
	assert.Equal(t, 0.0, c, "G-F player never touches the center aggregate")
}

func TestBuildAveragesPointsPerPosition(t *testing.T) {
	asOf := time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC)
	repo := &memRepo{}
	builder := NewBuilder(repo, nil, 30, testLogger())

	lines := []models.BoxScoreLine{
		{FirstName: "Jamal", LastName: "Murray", OpponentTeam: "lakers", GameDate: asOf.AddDate(0, 0, -3), Minutes: 30, Points: 20},
		{FirstName: "Luka", LastName: "Doncic", OpponentTeam: "lakers", GameDate: asOf.AddDate(0, 0, -2), Minutes: 38, Points: 40},
		// outside the 30-day window
		{FirstName: "Jamal", LastName: "Murray", OpponentTeam: "lakers", GameDate: asOf.AddDate(0, 0, -45), Minutes: 30, Points: 100},
		// zero minutes never counts
		{FirstName: "Jamal", LastName: "Murray", OpponentTeam: "lakers", GameDate: asOf.AddDate(0, 0, -1), Minutes: 0, Points: 0},
	}

	cache, err := builder.Build("run-1", lines, guardForward(), asOf)
	require.NoError(t, err)

	g, ok := cache.Score("lakers", models.Guard)
	require.True(t, ok)
	assert.Equal(t, 30.0, g)
}

func TestBuildDropsUnknownPositions(t *testing.T) {
	asOf := time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC)
	repo := &memRepo{}
	builder := NewBuilder(repo, nil, 30, testLogger())

	lines := []models.BoxScoreLine{
		{FirstName: "Mystery", LastName: "Man", OpponentTeam: "lakers", GameDate: asOf.AddDate(0, 0, -3), Minutes: 30, Points: 50},
	}

	cache, err := builder.Build("run-1", lines, guardForward(), asOf)
	require.NoError(t, err)
	assert.Empty(t, cache)
}

func TestBuildAlwaysWritesAndArchives(t *testing.T) {
	asOf := time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC)
	repo := &memRepo{}
	archive := &memArchive{}
	builder := NewBuilder(repo, archive, 30, testLogger())

	lines := []models.BoxScoreLine{
		{FirstName: "Jamal", LastName: "Murray", OpponentTeam: "lakers", GameDate: asOf.AddDate(0, 0, -3), Minutes: 30, Points: 20},
	}

	_, err := builder.Build("run-1", lines, guardForward(), asOf)
	require.NoError(t, err)
	_, err = builder.Build("run-2", lines, guardForward(), asOf)
	require.NoError(t, err)

	assert.Equal(t, 2, repo.saves, "strength cache is rewritten every run")
	assert.Equal(t, []string{"run-1", "run-2"}, archive.runIDs)
}

func TestRankings(t *testing.T) {
	cache := Cache{
		"lakers":  {"G": 25.0, "F": 18.0, "C": 10.0},
		"nuggets": {"G": 20.0, "F": 22.0, "C": 12.0},
	}

	rankings := cache.Rankings()

	assert.Equal(t, 1, rankings[models.Guard]["lakers"])
	assert.Equal(t, 2, rankings[models.Guard]["nuggets"])
	assert.Equal(t, 1, rankings[models.Forward]["nuggets"])
}
