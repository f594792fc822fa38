package models

import (
	"fmt"
	"time"
)

// FeatureRow is one model-ready row per (player, game). The rolling and
// expanding averages are lagged one game so the row's own outcome never
// leaks into its features.
type FeatureRow struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	FirstName    string    `gorm:"not null;index:idx_feature_player" json:"first_name"`
	LastName     string    `gorm:"not null;index:idx_feature_player" json:"last_name"`
	Team         string    `gorm:"not null" json:"team"`
	GameDate     time.Time `gorm:"not null;index" json:"game_date"`
	Minutes      float64   `json:"minutes"`
	OpponentOSS  float64   `json:"opponent_oss"`
	RecentAvgFP  float64   `json:"recent_avg_fp"`
	SeasonAvgFP  float64   `json:"season_avg_fp"`
	BFI          float64   `json:"bfi"`
	FantasyScore *float64  `json:"fp"` // label; nil for future rows
}

func (FeatureRow) TableName() string {
	return "feature_rows"
}

func (f FeatureRow) FullName() string {
	return fmt.Sprintf("%s %s", f.FirstName, f.LastName)
}

// Vector returns the feature values in the order the scorer was trained on.
func (f FeatureRow) Vector() FeatureVector {
	return FeatureVector{
		Minutes:     f.Minutes,
		OpponentOSS: f.OpponentOSS,
		RecentAvgFP: f.RecentAvgFP,
		SeasonAvgFP: f.SeasonAvgFP,
		BFI:         f.BFI,
	}
}

// FeatureVector is the model input contract shared by training output and
// live prediction.
type FeatureVector struct {
	Minutes     float64 `json:"minutes"`
	OpponentOSS float64 `json:"opponent_oss"`
	RecentAvgFP float64 `json:"recent_avg_fp"`
	SeasonAvgFP float64 `json:"season_avg_fp"`
	BFI         float64 `json:"bfi"`
}
