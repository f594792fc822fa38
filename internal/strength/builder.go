// Package strength derives the opponent-strength cache: how many real
// points each team concedes to each position over a trailing window.
package strength

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/stat"

	"github.com/fastbreakhq/fastbreak/internal/identity"
	"github.com/fastbreakhq/fastbreak/internal/models"
	"github.com/fastbreakhq/fastbreak/internal/storage"
)

// Cache maps team -> position letter -> average points allowed. Missing
// combinations default to zero at build time, so lookups on a built cache
// always find every position for a known team.
type Cache map[string]map[string]float64

// Score returns the strength value for a team against a position. The
// second return is false only for teams absent from the window entirely.
func (c Cache) Score(team string, pos models.Position) (float64, bool) {
	positions, ok := c[team]
	if !ok {
		return 0, false
	}
	return positions[string(pos)], true
}

// SnapshotArchive records each rebuilt document; storage.SnapshotStore
// satisfies it, and a nil archive disables archiving.
type SnapshotArchive interface {
	Append(runID string, document []byte) error
}

// Builder fully rebuilds the cache each run. Unlike the identity cache this
// is a trailing statistical summary, so there is nothing to merge: the
// value moves every day even when no new categorical facts appear.
type Builder struct {
	repo       storage.DocumentRepository[Cache]
	archive    SnapshotArchive
	windowDays int
	logger     *logrus.Logger
}

func NewBuilder(repo storage.DocumentRepository[Cache], archive SnapshotArchive, windowDays int, logger *logrus.Logger) *Builder {
	return &Builder{repo: repo, archive: archive, windowDays: windowDays, logger: logger}
}

// Load returns the last persisted cache document.
func (b *Builder) Load() (Cache, error) {
	return b.repo.Load()
}

// Build aggregates the trailing window ending at asOf and persists the
// resulting document. Multi-position players contribute to every position
// they are listed at.
func (b *Builder) Build(runID string, lines []models.BoxScoreLine, identities identity.Cache, asOf time.Time) (Cache, error) {
	windowStart := asOf.AddDate(0, 0, -b.windowDays)

	// points conceded per (opponent team, position)
	conceded := make(map[string]map[string][]float64)
	used, dropped := 0, 0
	for _, line := range lines {
		if line.GameDate.Before(windowStart) || line.GameDate.After(asOf) {
			continue
		}
		if line.Minutes <= 0 {
			continue
		}
		positions := identities.Position(line.FullName())
		if positions.IsEmpty() {
			dropped++
			continue
		}
		used++
		for _, pos := range positions {
			team := line.OpponentTeam
			if conceded[team] == nil {
				conceded[team] = make(map[string][]float64)
			}
			conceded[team][string(pos)] = append(conceded[team][string(pos)], line.Points)
		}
	}

	cache := make(Cache, len(conceded))
	for team, byPosition := range conceded {
		row := map[string]float64{string(models.Guard): 0, string(models.Forward): 0, string(models.Center): 0}
		for pos, points := range byPosition {
			row[pos] = stat.Mean(points, nil)
		}
		cache[team] = row
	}

	if err := b.repo.Save(cache); err != nil {
		return nil, fmt.Errorf("failed to save opponent strength cache: %w", err)
	}

	if b.archive != nil {
		document, err := json.Marshal(cache)
		if err != nil {
			return nil, fmt.Errorf("failed to encode strength snapshot: %w", err)
		}
		if err := b.archive.Append(runID, document); err != nil {
			return nil, err
		}
	}

	b.logger.WithFields(logrus.Fields{
		"stage":        "opponent_strength",
		"run_id":       runID,
		"teams":        len(cache),
		"rows_used":    used,
		"rows_dropped": dropped,
		"window_days":  b.windowDays,
		"window_end":   asOf.Format("2006-01-02"),
	}).Info("Opponent strength cache rebuilt")

	return cache, nil
}

// Rankings orders teams per position from most to least points conceded,
// 1 being the most generous matchup. Used for the matchup messages the
// prediction API attaches to each row.
func (c Cache) Rankings() map[models.Position]map[string]int {
	rankings := make(map[models.Position]map[string]int, 3)
	for _, pos := range []models.Position{models.Guard, models.Forward, models.Center} {
		type teamValue struct {
			team  string
			value float64
		}
		values := make([]teamValue, 0, len(c))
		for team, positions := range c {
			values = append(values, teamValue{team: team, value: positions[string(pos)]})
		}
		sort.Slice(values, func(i, j int) bool {
			if values[i].value != values[j].value {
				return values[i].value > values[j].value
			}
			return values[i].team < values[j].team
		})
		ranks := make(map[string]int, len(values))
		for i, v := range values {
			ranks[v.team] = i + 1
		}
		rankings[pos] = ranks
	}
	return rankings
}
