package models

import "time"

// Injury statuses as reported by the feed.
const (
	InjuryStatusOut          = "Out"
	InjuryStatusQuestionable = "Questionable"
	InjuryStatusDayToDay     = "Day-To-Day"
)

// InjuryEvent is one row of the read-only injury feed.
type InjuryEvent struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Team       string    `gorm:"not null;index" json:"team"`
	PlayerName string    `gorm:"not null" json:"player_name"`
	Status     string    `gorm:"not null" json:"status"`
	Date       time.Time `gorm:"not null;index" json:"date"`
}

func (InjuryEvent) TableName() string {
	return "injury_events"
}

// IsOut reports whether this event rules the player out for Date.
func (e InjuryEvent) IsOut() bool {
	return e.Status == InjuryStatusOut
}
