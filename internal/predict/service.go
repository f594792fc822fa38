package predict

import (
	"fmt"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/fastbreakhq/fastbreak/internal/features"
	"github.com/fastbreakhq/fastbreak/internal/identity"
	"github.com/fastbreakhq/fastbreak/internal/models"
	"github.com/fastbreakhq/fastbreak/internal/scoring"
	"github.com/fastbreakhq/fastbreak/internal/strength"
)

const dateKeyLayout = "2006-01-02"

// recentGames is the history window predictions are built from, and
// minRecentAppearances the rotation filter: a player who logged zero
// minutes in 2 or more of their last 5 games is excluded.
const (
	recentGames          = 5
	minRecentAppearances = 4
)

// Prediction is one row of the board.
type Prediction struct {
	FirstName         string  `json:"first_name"`
	LastName          string  `json:"last_name"`
	Team              string  `json:"team"`
	OpponentTeam      string  `json:"opponent_team"`
	Position          string  `json:"position"`
	PredictedFP       float64 `json:"predicted_fp"`
	SeasonAvgFP       float64 `json:"season_avg_fp"`
	DiffFromSeasonAvg float64 `json:"diff_from_season_avg"`
	ImageURL          string  `json:"image_url"`
	MatchupNote       string  `json:"matchup_note"`
}

// Board is the ranked output for one game day: highest projected totals
// and the largest projected jumps over season average.
type Board struct {
	TargetDate     string       `json:"target_date"`
	TopProjected   []Prediction `json:"top_projected"`
	BoomCandidates []Prediction `json:"boom_candidates"`
}

// Service resolves matchups for a target day and scores every eligible
// player. Feature vectors are built with the same lagged window operators
// as the training pipeline; at a future date the whole history is strictly
// prior, so the no-lookahead contract holds by construction. Players
// missing an opponent mapping or any required feature are excluded, never
// defaulted.
type Service struct {
	scorer Scorer
	topN   int
	logger *logrus.Logger
}

func NewService(scorer Scorer, topN int, logger *logrus.Logger) *Service {
	return &Service{scorer: scorer, topN: topN, logger: logger}
}

// playerLog is one player's games, date ascending, including DNP lines.
// The rotation filter needs the DNP lines; the feature windows use only
// played games.
type playerLog struct {
	games []scoring.ScoredLine
}

func (l *playerLog) latest() scoring.ScoredLine {
	return l.games[len(l.games)-1]
}

// playedSeries returns fantasy scores and minutes of played games only.
func (l *playerLog) playedSeries() (fps, minutes []float64) {
	for _, game := range l.games {
		if game.Minutes <= 0 {
			continue
		}
		fps = append(fps, game.FP)
		minutes = append(minutes, game.Minutes)
	}
	return fps, minutes
}

// activeInRotation applies the zero-minutes filter over the last 5 games.
func (l *playerLog) activeInRotation() bool {
	games := l.games
	if len(games) > recentGames {
		games = games[len(games)-recentGames:]
	}
	played := 0
	for _, game := range games {
		if game.Minutes > 0 {
			played++
		}
	}
	return played >= minRecentAppearances
}

// PredictDay builds the board for the target date from the scored game
// log, the schedule, and the caches.
func (s *Service) PredictDay(
	target time.Time,
	lines []scoring.ScoredLine,
	schedule []models.ScheduledGame,
	teams *models.TeamIndex,
	identities identity.Cache,
	oss strength.Cache,
	injuries []models.InjuryEvent,
) (*Board, error) {
	opponents := resolveOpponents(target, schedule, teams)
	if len(opponents) == 0 {
		s.logger.WithFields(logrus.Fields{
			"stage":       "predict",
			"target_date": target.Format(dateKeyLayout),
		}).Info("No games scheduled on target date")
		return &Board{TargetDate: target.Format(dateKeyLayout)}, nil
	}

	logs := groupByPlayer(lines, opponents)
	outToday := outPlayers(injuries, target)

	var predictions []Prediction
	excluded := 0
	for name, log := range logs {
		prediction, ok := s.predictPlayer(name, log, opponents, identities, oss, outToday, logs)
		if !ok {
			excluded++
			continue
		}
		predictions = append(predictions, prediction)
	}

	s.logger.WithFields(logrus.Fields{
		"stage":       "predict",
		"target_date": target.Format(dateKeyLayout),
		"players":     len(predictions),
		"excluded":    excluded,
	}).Info("Prediction board built")

	rankings := oss.Rankings()
	for i := range predictions {
		predictions[i].MatchupNote = matchupNote(predictions[i], rankings)
	}

	return &Board{
		TargetDate:     target.Format(dateKeyLayout),
		TopProjected:   topBy(predictions, s.topN, func(p Prediction) float64 { return p.PredictedFP }),
		BoomCandidates: topBy(predictions, s.topN, func(p Prediction) float64 { return p.DiffFromSeasonAvg }),
	}, nil
}

// predictPlayer assembles and scores one player's next-game vector.
func (s *Service) predictPlayer(
	name string,
	log *playerLog,
	opponents map[string]string,
	identities identity.Cache,
	oss strength.Cache,
	outToday map[string]map[string]bool,
	logs map[string]*playerLog,
) (Prediction, bool) {
	latest := log.latest()

	opponent, ok := opponents[latest.Team]
	if !ok {
		return Prediction{}, false
	}

	record, known := identities[name]
	primary, hasPos := record.Positions.Primary()
	if !known || !hasPos {
		return Prediction{}, false
	}

	if outToday[latest.Team][name] {
		return Prediction{}, false
	}
	if !log.activeInRotation() {
		return Prediction{}, false
	}

	ossValue, ok := oss.Score(opponent, primary)
	if !ok {
		return Prediction{}, false
	}

	fps, minutes := log.playedSeries()
	if len(fps) == 0 {
		return Prediction{}, false
	}

	vector := models.FeatureVector{
		Minutes:     features.NextRolling(minutes, recentGames),
		OpponentOSS: ossValue,
		RecentAvgFP: features.NextRolling(fps, recentGames),
		SeasonAvgFP: features.NextExpanding(fps),
		BFI:         s.backfillImpact(latest.Team, name, primary, identities, outToday, logs),
	}

	predicted, err := s.scorer.Predict(vector)
	if err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"stage":  "predict",
			"player": name,
		}).Warn("Scorer failed, excluding player")
		return Prediction{}, false
	}

	return Prediction{
		FirstName:         latest.FirstName,
		LastName:          latest.LastName,
		Team:              latest.Team,
		OpponentTeam:      opponent,
		Position:          record.Positions.Code(),
		PredictedFP:       predicted,
		SeasonAvgFP:       vector.SeasonAvgFP,
		DiffFromSeasonAvg: predicted - vector.SeasonAvgFP,
		ImageURL:          record.ImageURL,
	}, true
}

// backfillImpact mirrors the training-time BFI on the prediction path: the
// summed recent average minutes of same-position teammates ruled out today.
func (s *Service) backfillImpact(
	team, name string,
	primary models.Position,
	identities identity.Cache,
	outToday map[string]map[string]bool,
	logs map[string]*playerLog,
) float64 {
	total := 0.0
	for teammate := range outToday[team] {
		if teammate == name {
			continue
		}
		if !identities.Position(teammate).Contains(primary) {
			continue
		}
		log, ok := logs[teammate]
		if !ok {
			continue
		}
		_, minutes := log.playedSeries()
		if len(minutes) == 0 {
			continue
		}
		// Same basis as the labeled rows: the expanding mean of all
		// prior games, not the recent window.
		total += features.NextExpanding(minutes)
	}
	return total
}

// resolveOpponents maps team simple name -> opponent simple name for games
// on the target date. Teams with no resolvable mapping stay absent.
func resolveOpponents(target time.Time, schedule []models.ScheduledGame, teams *models.TeamIndex) map[string]string {
	targetKey := target.Format(dateKeyLayout)
	opponents := make(map[string]string)
	for _, game := range schedule {
		if game.GameTimeEST.Format(dateKeyLayout) != targetKey {
			continue
		}
		home, homeOK := teams.NameByID(game.HomeTeamID)
		away, awayOK := teams.NameByID(game.AwayTeamID)
		if !homeOK || !awayOK {
			continue
		}
		opponents[home] = away
		opponents[away] = home
	}
	return opponents
}

// groupByPlayer keeps only players whose team has a game on the target
// date, each with their full game log date ascending.
func groupByPlayer(lines []scoring.ScoredLine, opponents map[string]string) map[string]*playerLog {
	logs := make(map[string]*playerLog)
	for _, line := range lines {
		if _, playing := opponents[line.Team]; !playing {
			continue
		}
		name := line.FullName()
		if logs[name] == nil {
			logs[name] = &playerLog{}
		}
		logs[name].games = append(logs[name].games, line)
	}
	for _, log := range logs {
		sort.Slice(log.games, func(i, j int) bool {
			return log.games[i].GameDate.Before(log.games[j].GameDate)
		})
	}
	return logs
}

// outPlayers indexes team -> player name -> ruled out on the target date.
func outPlayers(injuries []models.InjuryEvent, target time.Time) map[string]map[string]bool {
	targetKey := target.Format(dateKeyLayout)
	out := make(map[string]map[string]bool)
	for _, event := range injuries {
		if !event.IsOut() || event.Date.Format(dateKeyLayout) != targetKey {
			continue
		}
		if out[event.Team] == nil {
			out[event.Team] = make(map[string]bool)
		}
		out[event.Team][event.PlayerName] = true
	}
	return out
}

func topBy(predictions []Prediction, n int, key func(Prediction) float64) []Prediction {
	sorted := make([]Prediction, len(predictions))
	copy(sorted, predictions)
	sort.Slice(sorted, func(i, j int) bool {
		if key(sorted[i]) != key(sorted[j]) {
			return key(sorted[i]) > key(sorted[j])
		}
		return sorted[i].LastName < sorted[j].LastName
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

func matchupNote(p Prediction, rankings map[models.Position]map[string]int) string {
	set, err := models.ParsePositionSet(p.Position)
	if err != nil || set.IsEmpty() {
		return ""
	}
	primary, _ := set.Primary()
	rank, ok := rankings[primary][p.OpponentTeam]
	if !ok {
		return fmt.Sprintf("vs. %s", p.OpponentTeam)
	}
	return fmt.Sprintf("%s allow %s highest FP to %ss", p.OpponentTeam, ordinal(rank), p.Position)
}

func ordinal(n int) string {
	switch {
	case n%100 >= 11 && n%100 <= 13:
		return fmt.Sprintf("%dth", n)
	case n%10 == 1:
		return fmt.Sprintf("%dst", n)
	case n%10 == 2:
		return fmt.Sprintf("%dnd", n)
	case n%10 == 3:
		return fmt.Sprintf("%drd", n)
	default:
		return fmt.Sprintf("%dth", n)
	}
}
