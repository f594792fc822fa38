// Package identity resolves box-score names into stable player records and
// maintains the persisted identity cache.
package identity

import (
	"errors"
	"fmt"
	"math"

	"github.com/sirupsen/logrus"

	"github.com/fastbreakhq/fastbreak/internal/models"
	"github.com/fastbreakhq/fastbreak/internal/scoring"
	"github.com/fastbreakhq/fastbreak/internal/storage"
)

// Cache maps full player name to resolved record. It is built once per run
// and passed explicitly to every stage that needs it.
type Cache map[string]models.PlayerRecord

// Position returns the position set for a full name, empty when the player
// is unresolved or has no known position.
func (c Cache) Position(fullName string) models.PositionSet {
	return c[fullName].Positions
}

// BuildResult reports what a cache refresh did.
type BuildResult struct {
	Cache    Cache
	Updated  bool
	Resolved int
	Skipped  int
}

// Builder refreshes the identity cache from the current box-score extract
// and the player master list.
//
// Known limitation: two distinct players sharing a first and last name are
// not disambiguated; the first master-list match wins.
type Builder struct {
	repo   storage.DocumentRepository[Cache]
	logger *logrus.Logger
}

func NewBuilder(repo storage.DocumentRepository[Cache], logger *logrus.Logger) *Builder {
	return &Builder{repo: repo, logger: logger}
}

// Load returns the persisted cache, or an empty one if no document has
// been written yet.
func (b *Builder) Load() (Cache, error) {
	cache, err := b.repo.Load()
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return Cache{}, nil
		}
		return nil, err
	}
	return cache, nil
}

// Build refreshes records for every distinct name in the extract. The
// persisted store is rewritten only when at least one record changed by
// value, which makes the job idempotent when nothing moved.
func (b *Builder) Build(lines []scoring.ScoredLine, master []models.MasterListEntry) (*BuildResult, error) {
	cache, err := b.repo.Load()
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("failed to load identity cache: %w", err)
		}
		cache = Cache{}
	}

	masterIndex := make(map[string]models.MasterListEntry, len(master))
	for _, entry := range master {
		key := entry.FullName()
		if _, exists := masterIndex[key]; !exists {
			masterIndex[key] = entry
		}
	}

	result := &BuildResult{Cache: cache}
	for _, name := range distinctNames(lines) {
		existing, known := cache[name.full]
		if known && existing.IsComplete() {
			continue
		}

		entry, hit := masterIndex[name.full]
		if !hit {
			b.logger.WithFields(logrus.Fields{
				"stage":  "identity",
				"player": name.full,
			}).Warn("No master list match, player stays unresolved this run")
			result.Skipped++
			continue
		}

		record := b.resolve(entry, name, lines)

		// Position, once known, is never overwritten with an unknown value.
		if record.Positions.IsEmpty() && !existing.Positions.IsEmpty() {
			record.Positions = existing.Positions
		}

		if !known || !existing.Equal(record) {
			cache[name.full] = record
			result.Updated = true
		}
		result.Resolved++
	}

	if result.Updated {
		if err := b.repo.Save(cache); err != nil {
			return nil, fmt.Errorf("failed to save identity cache: %w", err)
		}
		b.logger.WithFields(logrus.Fields{
			"stage":    "identity",
			"players":  len(cache),
			"resolved": result.Resolved,
			"skipped":  result.Skipped,
		}).Info("Identity cache saved")
	} else {
		b.logger.WithField("stage", "identity").Info("Identity cache unchanged, skipping write")
	}

	return result, nil
}

// resolve computes a fresh record for one master-list hit. Season
// aggregates are recomputed wholesale from the extract, never accumulated,
// so repeated runs cannot drift.
func (b *Builder) resolve(entry models.MasterListEntry, name nameKey, lines []scoring.ScoredLine) models.PlayerRecord {
	var totalFP float64
	games := 0
	for _, line := range lines {
		if line.FirstName == name.first && line.LastName == name.last {
			totalFP += line.FP
			games++
		}
	}

	record := models.PlayerRecord{
		PlayerID:    entry.PersonID,
		Positions:   entry.Positions(),
		ImageURL:    models.HeadshotURL(entry.PersonID),
		SeasonFP:    round1(totalFP),
		GamesPlayed: games,
	}
	if games > 0 {
		avg := round1(totalFP / float64(games))
		record.AvgFP = &avg
	}
	return record
}

type nameKey struct {
	first, last, full string
}

// distinctNames keeps the extract's first-appearance order so log output is
// stable across runs.
func distinctNames(lines []scoring.ScoredLine) []nameKey {
	seen := make(map[string]bool, len(lines))
	var names []nameKey
	for _, line := range lines {
		full := line.FullName()
		if seen[full] {
			continue
		}
		seen[full] = true
		names = append(names, nameKey{first: line.FirstName, last: line.LastName, full: full})
	}
	return names
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
