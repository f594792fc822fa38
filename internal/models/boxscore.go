package models

import (
	"fmt"
	"time"
)

// BoxScoreLine is one player's stat line for one game. Lines are immutable
// input; everything downstream is derived from them.
type BoxScoreLine struct {
	ID                  uint      `gorm:"primaryKey" json:"id"`
	FirstName           string    `gorm:"not null;index:idx_box_player" json:"first_name"`
	LastName            string    `gorm:"not null;index:idx_box_player" json:"last_name"`
	Team                string    `gorm:"not null" json:"team"`
	OpponentTeam        string    `gorm:"not null" json:"opponent_team"`
	GameDate            time.Time `gorm:"not null;index" json:"game_date"`
	Minutes             float64   `json:"minutes"`
	Points              float64   `json:"points"`
	Rebounds            float64   `json:"rebounds"`
	Assists             float64   `json:"assists"`
	Steals              float64   `json:"steals"`
	Blocks              float64   `json:"blocks"`
	Turnovers           float64   `json:"turnovers"`
	FieldGoalsMade      float64   `json:"field_goals_made"`
	FieldGoalsAttempted float64   `json:"field_goals_attempted"`
	ThreePointersMade   float64   `json:"three_pointers_made"`
	FreeThrowsMade      float64   `json:"free_throws_made"`
	FreeThrowsAttempted float64   `json:"free_throws_attempted"`
}

func (BoxScoreLine) TableName() string {
	return "box_score_lines"
}

// FullName joins first and last name the way cache documents key players.
func (b BoxScoreLine) FullName() string {
	return fmt.Sprintf("%s %s", b.FirstName, b.LastName)
}
