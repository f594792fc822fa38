// Package providers reads the external tabular extracts the pipeline runs
// on and wraps the per-player position lookup API. Extract readers treat a
// missing expected column as fatal: proceeding would corrupt every
// downstream cache.
package providers

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/fastbreakhq/fastbreak/internal/models"
)

// ErrSchemaDrift signals that an extract no longer has an expected column.
var ErrSchemaDrift = errors.New("extract schema drift")

const (
	gameDateLayout     = "2006-01-02"
	gameDateTimeLayout = "2006-01-02 15:04:05"
)

// ExtractReader reads the box-score, master-list, injury, schedule and team
// extracts from a dataset directory.
type ExtractReader struct {
	logger *logrus.Logger
}

func NewExtractReader(logger *logrus.Logger) *ExtractReader {
	return &ExtractReader{logger: logger}
}

type columnIndex struct {
	header []string
}

func (c columnIndex) lookup(name string) int {
	for i, h := range c.header {
		if strings.EqualFold(strings.TrimSpace(h), name) {
			return i
		}
	}
	return -1
}

// require resolves each named column or fails the run with ErrSchemaDrift.
func (c columnIndex) require(names ...string) (map[string]int, error) {
	idx := make(map[string]int, len(names))
	var missing []string
	for _, name := range names {
		i := c.lookup(name)
		if i < 0 {
			missing = append(missing, name)
			continue
		}
		idx[name] = i
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing columns %s", ErrSchemaDrift, strings.Join(missing, ", "))
	}
	return idx, nil
}

func openCSV(path string) (*os.File, *csv.Reader, columnIndex, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, columnIndex{}, fmt.Errorf("failed to open extract %s: %w", path, err)
	}
	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	header, err := r.Read()
	if err != nil {
		f.Close()
		return nil, nil, columnIndex{}, fmt.Errorf("failed to read header of %s: %w", path, err)
	}
	return f, r, columnIndex{header: header}, nil
}

func parseFloat(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return v
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(gameDateTimeLayout, s); err == nil {
		return t, nil
	}
	return time.Parse(gameDateLayout, s)
}

// BoxScores reads the player statistics extract. Rows before the cutoff
// date are skipped; rows with an unparseable date are dropped with a log
// line rather than poisoning the batch.
func (e *ExtractReader) BoxScores(path string, cutoff time.Time) ([]models.BoxScoreLine, error) {
	f, r, cols, err := openCSV(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	idx, err := cols.require(
		"firstName", "lastName", "playerteamName", "opponentteamName",
		"gameDate", "numMinutes", "points", "reboundsTotal", "assists",
		"steals", "blocks", "turnovers", "fieldGoalsMade",
		"fieldGoalsAttempted", "threePointersMade", "freeThrowsMade",
		"freeThrowsAttempted",
	)
	if err != nil {
		return nil, fmt.Errorf("box scores %s: %w", path, err)
	}

	var lines []models.BoxScoreLine
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read box score row: %w", err)
		}

		gameDate, err := parseDate(rec[idx["gameDate"]])
		if err != nil {
			e.logger.WithFields(logrus.Fields{
				"stage":     "box_scores",
				"game_date": rec[idx["gameDate"]],
			}).Warn("Dropping row with unparseable game date")
			continue
		}
		if gameDate.Before(cutoff) {
			continue
		}

		lines = append(lines, models.BoxScoreLine{
			FirstName:           strings.TrimSpace(rec[idx["firstName"]]),
			LastName:            strings.TrimSpace(rec[idx["lastName"]]),
			Team:                strings.TrimSpace(rec[idx["playerteamName"]]),
			OpponentTeam:        strings.TrimSpace(rec[idx["opponentteamName"]]),
			GameDate:            gameDate,
			Minutes:             parseFloat(rec[idx["numMinutes"]]),
			Points:              parseFloat(rec[idx["points"]]),
			Rebounds:            parseFloat(rec[idx["reboundsTotal"]]),
			Assists:             parseFloat(rec[idx["assists"]]),
			Steals:              parseFloat(rec[idx["steals"]]),
			Blocks:              parseFloat(rec[idx["blocks"]]),
			Turnovers:           parseFloat(rec[idx["turnovers"]]),
			FieldGoalsMade:      parseFloat(rec[idx["fieldGoalsMade"]]),
			FieldGoalsAttempted: parseFloat(rec[idx["fieldGoalsAttempted"]]),
			ThreePointersMade:   parseFloat(rec[idx["threePointersMade"]]),
			FreeThrowsMade:      parseFloat(rec[idx["freeThrowsMade"]]),
			FreeThrowsAttempted: parseFloat(rec[idx["freeThrowsAttempted"]]),
		})
	}

	e.logger.WithFields(logrus.Fields{
		"stage":  "box_scores",
		"rows":   len(lines),
		"cutoff": cutoff.Format(gameDateLayout),
	}).Info("Loaded box score extract")

	return lines, nil
}

// MasterList reads the player master list: identifier plus role flags.
func (e *ExtractReader) MasterList(path string) ([]models.MasterListEntry, error) {
	f, r, cols, err := openCSV(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	idx, err := cols.require("firstName", "lastName", "personId", "guard", "forward", "center")
	if err != nil {
		return nil, fmt.Errorf("master list %s: %w", path, err)
	}

	parseFlag := func(s string) bool {
		switch strings.ToLower(strings.TrimSpace(s)) {
		case "true", "1", "yes":
			return true
		}
		return false
	}

	var entries []models.MasterListEntry
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read master list row: %w", err)
		}
		entries = append(entries, models.MasterListEntry{
			FirstName: strings.TrimSpace(rec[idx["firstName"]]),
			LastName:  strings.TrimSpace(rec[idx["lastName"]]),
			PersonID:  strings.TrimSpace(rec[idx["personId"]]),
			Guard:     parseFlag(rec[idx["guard"]]),
			Forward:   parseFlag(rec[idx["forward"]]),
			Center:    parseFlag(rec[idx["center"]]),
		})
	}

	e.logger.WithFields(logrus.Fields{
		"stage": "master_list",
		"rows":  len(entries),
	}).Info("Loaded player master list")

	return entries, nil
}

// Injuries reads the injury feed. Player names arrive as "Last, First" and
// are flipped to the "First Last" form the caches key on.
func (e *ExtractReader) Injuries(path string) ([]models.InjuryEvent, error) {
	f, r, cols, err := openCSV(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	idx, err := cols.require("TEAM", "PLAYER", "STATUS", "DATE")
	if err != nil {
		return nil, fmt.Errorf("injury feed %s: %w", path, err)
	}

	var events []models.InjuryEvent
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read injury row: %w", err)
		}

		date, err := parseDate(rec[idx["DATE"]])
		if err != nil {
			e.logger.WithFields(logrus.Fields{
				"stage": "injuries",
				"date":  rec[idx["DATE"]],
			}).Warn("Dropping injury row with unparseable date")
			continue
		}

		events = append(events, models.InjuryEvent{
			Team:       strings.TrimSpace(rec[idx["TEAM"]]),
			PlayerName: flipName(rec[idx["PLAYER"]]),
			Status:     strings.TrimSpace(rec[idx["STATUS"]]),
			Date:       date,
		})
	}

	e.logger.WithFields(logrus.Fields{
		"stage": "injuries",
		"rows":  len(events),
	}).Info("Loaded injury feed")

	return events, nil
}

// flipName converts "Last, First" to "First Last". Names without a comma
// pass through untouched.
func flipName(name string) string {
	parts := strings.SplitN(name, ",", 2)
	if len(parts) != 2 {
		return strings.TrimSpace(name)
	}
	return strings.TrimSpace(parts[1]) + " " + strings.TrimSpace(parts[0])
}

// Schedule reads the league schedule extract.
func (e *ExtractReader) Schedule(path string) ([]models.ScheduledGame, error) {
	f, r, cols, err := openCSV(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	idx, err := cols.require("hometeamId", "awayteamId", "gameDateTimeEst")
	if err != nil {
		return nil, fmt.Errorf("schedule %s: %w", path, err)
	}

	var games []models.ScheduledGame
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read schedule row: %w", err)
		}

		gameTime, err := parseDate(rec[idx["gameDateTimeEst"]])
		if err != nil {
			e.logger.WithFields(logrus.Fields{
				"stage": "schedule",
				"date":  rec[idx["gameDateTimeEst"]],
			}).Warn("Dropping schedule row with unparseable datetime")
			continue
		}

		homeID, _ := strconv.Atoi(strings.TrimSpace(rec[idx["hometeamId"]]))
		awayID, _ := strconv.Atoi(strings.TrimSpace(rec[idx["awayteamId"]]))
		games = append(games, models.ScheduledGame{
			HomeTeamID:  homeID,
			AwayTeamID:  awayID,
			GameTimeEST: gameTime,
		})
	}

	return games, nil
}

// Teams reads the static team id to simple name mapping.
func (e *ExtractReader) Teams(path string) ([]models.Team, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read team mapping %s: %w", path, err)
	}
	var teams []models.Team
	if err := json.Unmarshal(data, &teams); err != nil {
		return nil, fmt.Errorf("failed to decode team mapping %s: %w", path, err)
	}
	return teams, nil
}
