// Package features turns scored box-score lines into model-ready rows.
// Rolling and expanding averages are lagged one game on both the training
// and prediction paths; a row's own outcome never enters its features.
package features

import (
	"math"
	"sort"
	"time"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/stat"

	"github.com/fastbreakhq/fastbreak/internal/identity"
	"github.com/fastbreakhq/fastbreak/internal/models"
	"github.com/fastbreakhq/fastbreak/internal/scoring"
	"github.com/fastbreakhq/fastbreak/internal/strength"
)

const dateKeyLayout = "2006-01-02"

// Pipeline builds one FeatureRow per surviving (player, game) pair. All
// collaborator caches are passed in explicitly; the pipeline holds no
// ambient state between runs.
type Pipeline struct {
	recentWindow int
	logger       *logrus.Logger
}

func NewPipeline(recentWindow int, logger *logrus.Logger) *Pipeline {
	return &Pipeline{recentWindow: recentWindow, logger: logger}
}

// playerHistory is one player's games in date-ascending order with the
// lagged per-game aggregates alongside.
type playerHistory struct {
	games      []scoring.ScoredLine
	recentAvg  []float64
	seasonAvg  []float64
	avgMinutes []float64
}

// Build produces the training dataset from scored lines. Rows with an
// unknown position, a missing opponent-strength value, or no prior
// qualifying game are dropped rather than imputed.
func (p *Pipeline) Build(lines []scoring.ScoredLine, identities identity.Cache, oss strength.Cache, injuries []models.InjuryEvent) []models.FeatureRow {
	histories := p.buildHistories(lines, identities)
	injuryIndex := indexInjuries(injuries)

	var rows []models.FeatureRow
	droppedPosition, droppedOSS, droppedWindow := 0, 0, 0

	for name, history := range histories {
		primary, _ := identities.Position(name).Primary()

		for i, game := range history.games {
			ossValue, ok := oss.Score(game.OpponentTeam, primary)
			if !ok {
				droppedOSS++
				continue
			}

			recent := history.recentAvg[i]
			season := history.seasonAvg[i]
			if math.IsNaN(recent) || math.IsNaN(season) {
				droppedWindow++
				continue
			}

			bfi := p.backfillImpact(game, primary, identities, histories, injuryIndex)

			fp := game.FP
			rows = append(rows, models.FeatureRow{
				FirstName:    game.FirstName,
				LastName:     game.LastName,
				Team:         game.Team,
				GameDate:     game.GameDate,
				Minutes:      game.Minutes,
				OpponentOSS:  ossValue,
				RecentAvgFP:  recent,
				SeasonAvgFP:  season,
				BFI:          bfi,
				FantasyScore: &fp,
			})
		}
	}

	for _, line := range lines {
		if identities.Position(line.FullName()).IsEmpty() && line.Minutes > 0 {
			droppedPosition++
		}
	}

	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].GameDate.Equal(rows[j].GameDate) {
			return rows[i].GameDate.Before(rows[j].GameDate)
		}
		return rows[i].FullName() < rows[j].FullName()
	})

	p.logger.WithFields(logrus.Fields{
		"stage":            "features",
		"rows":             len(rows),
		"dropped_position": droppedPosition,
		"dropped_oss":      droppedOSS,
		"dropped_window":   droppedWindow,
	}).Info("Feature dataset built")

	return rows
}

// buildHistories groups qualifying lines per player, sorts them by date and
// attaches the lagged window aggregates. Zero-minute lines and players with
// unknown positions never enter a history.
func (p *Pipeline) buildHistories(lines []scoring.ScoredLine, identities identity.Cache) map[string]*playerHistory {
	histories := make(map[string]*playerHistory)
	for _, line := range lines {
		if line.Minutes <= 0 {
			continue
		}
		if identities.Position(line.FullName()).IsEmpty() {
			continue
		}
		name := line.FullName()
		if histories[name] == nil {
			histories[name] = &playerHistory{}
		}
		histories[name].games = append(histories[name].games, line)
	}

	for _, history := range histories {
		sort.Slice(history.games, func(i, j int) bool {
			return history.games[i].GameDate.Before(history.games[j].GameDate)
		})
		fps := make([]float64, len(history.games))
		minutes := make([]float64, len(history.games))
		for i, game := range history.games {
			fps[i] = game.FP
			minutes[i] = game.Minutes
		}
		history.recentAvg = LaggedRolling(fps, p.recentWindow)
		history.seasonAvg = LaggedExpanding(fps)
		history.avgMinutes = LaggedExpanding(minutes)
	}
	return histories
}

// backfillImpact sums the lagged average minutes of same-team teammates who
// share the player's primary position and are ruled out on the game date.
// No qualifying teammate means zero extra opportunity.
func (p *Pipeline) backfillImpact(game scoring.ScoredLine, primary models.Position, identities identity.Cache, histories map[string]*playerHistory, injuryIndex map[string]map[string][]string) float64 {
	outNames := injuryIndex[game.Team][game.GameDate.Format(dateKeyLayout)]
	if len(outNames) == 0 {
		return 0
	}

	total := 0.0
	for _, name := range outNames {
		if name == game.FullName() {
			continue
		}
		if !identities.Position(name).Contains(primary) {
			continue
		}
		history, ok := histories[name]
		if !ok {
			continue
		}
		if avg, ok := history.minutesBefore(game.GameDate); ok {
			total += avg
		}
	}
	return total
}

// minutesBefore is the mean of the player's minutes over games strictly
// before the given date.
func (h *playerHistory) minutesBefore(date time.Time) (float64, bool) {
	var prior []float64
	for _, game := range h.games {
		if !game.GameDate.Before(date) {
			break
		}
		prior = append(prior, game.Minutes)
	}
	if len(prior) == 0 {
		return 0, false
	}
	return stat.Mean(prior, nil), true
}

// indexInjuries maps team -> date -> names ruled out that day.
func indexInjuries(injuries []models.InjuryEvent) map[string]map[string][]string {
	index := make(map[string]map[string][]string)
	for _, event := range injuries {
		if !event.IsOut() {
			continue
		}
		key := event.Date.Format(dateKeyLayout)
		if index[event.Team] == nil {
			index[event.Team] = make(map[string][]string)
		}
		index[event.Team][key] = append(index[event.Team][key], event.PlayerName)
	}
	return index
}
