package models

import "fmt"

// HeadshotURLTemplate is the fixed CDN path player images are derived from.
const HeadshotURLTemplate = "https://cdn.nba.com/headshots/nba/latest/260x190/%s.png"

// PlayerRecord is the resolved identity and season aggregates for one
// player, keyed in the identity cache by full name. Numeric aggregates are
// recomputed wholesale each refresh; Positions, once known, is never
// overwritten with an unknown value.
type PlayerRecord struct {
	PlayerID    string      `json:"player_id"`
	Positions   PositionSet `json:"position"`
	ImageURL    string      `json:"image_url"`
	SeasonFP    float64     `json:"season_fp"`
	GamesPlayed int         `json:"games_played"`
	AvgFP       *float64    `json:"avg_fp"`
}

// HeadshotURL derives the image reference for a resolved player id.
func HeadshotURL(playerID string) string {
	return fmt.Sprintf(HeadshotURLTemplate, playerID)
}

// IsComplete reports whether every field a refresh would fill is populated.
// Records that pass are skipped on subsequent builder runs.
func (r PlayerRecord) IsComplete() bool {
	return r.PlayerID != "" &&
		r.ImageURL != "" &&
		!r.Positions.IsEmpty() &&
		r.GamesPlayed > 0 &&
		r.AvgFP != nil
}

// Equal compares records field for field. The diff-before-write policy of
// the identity cache depends on this being exact.
func (r PlayerRecord) Equal(other PlayerRecord) bool {
	if r.PlayerID != other.PlayerID ||
		r.ImageURL != other.ImageURL ||
		r.SeasonFP != other.SeasonFP ||
		r.GamesPlayed != other.GamesPlayed {
		return false
	}
	if !r.Positions.Equal(other.Positions) {
		return false
	}
	if (r.AvgFP == nil) != (other.AvgFP == nil) {
		return false
	}
	if r.AvgFP != nil && *r.AvgFP != *other.AvgFP {
		return false
	}
	return true
}

// MasterListEntry is one row of the external player master list: a stable
// identifier plus role flags used to derive the position set.
type MasterListEntry struct {
	FirstName string
	LastName  string
	PersonID  string
	Guard     bool
	Forward   bool
	Center    bool
}

func (e MasterListEntry) FullName() string {
	return fmt.Sprintf("%s %s", e.FirstName, e.LastName)
}

func (e MasterListEntry) Positions() PositionSet {
	return NewPositionSet(e.Guard, e.Forward, e.Center)
}
