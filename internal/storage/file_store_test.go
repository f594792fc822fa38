package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastbreakhq/fastbreak/internal/models"
)

func TestFileStoreLoadMissing(t *testing.T) {
	store := NewFileStore[map[string]models.PlayerRecord](filepath.Join(t.TempDir(), "cache.json"))

	_, err := store.Load()

	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "player_lookup_cache.json")
	store := NewFileStore[map[string]models.PlayerRecord](path)

	avg := 31.5
	doc := map[string]models.PlayerRecord{
		"Nikola Jokic": {
			PlayerID:    "203999",
			Positions:   models.PositionSet{models.Center},
			ImageURL:    models.HeadshotURL("203999"),
			SeasonFP:    630,
			GamesPlayed: 20,
			AvgFP:       &avg,
		},
	}

	require.NoError(t, store.Save(doc))

	loaded, err := store.Load()
	require.NoError(t, err)
	require.Contains(t, loaded, "Nikola Jokic")
	assert.True(t, doc["Nikola Jokic"].Equal(loaded["Nikola Jokic"]))
}

func TestFileStorePositionSerializedAsCode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	store := NewFileStore[map[string]models.PlayerRecord](path)

	require.NoError(t, store.Save(map[string]models.PlayerRecord{
		"A B": {PlayerID: "1", Positions: models.PositionSet{models.Guard, models.Forward}},
		"C D": {PlayerID: "2"},
	}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"position": "G-F"`)
	assert.Contains(t, string(data), `"position": null`)
}

func TestFileStoreSaveLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	store := NewFileStore[map[string]float64](filepath.Join(dir, "doc.json"))

	require.NoError(t, store.Save(map[string]float64{"a": 1}))
	require.NoError(t, store.Save(map[string]float64{"a": 2}))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	doc, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, 2.0, doc["a"])
}
