package models

import "time"

// ScheduledGame is one row of the league schedule extract.
type ScheduledGame struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	HomeTeamID  int       `gorm:"not null;index" json:"home_team_id"`
	AwayTeamID  int       `gorm:"not null;index" json:"away_team_id"`
	GameTimeEST time.Time `gorm:"column:game_time_est;not null;index" json:"game_time_est"`
}

func (ScheduledGame) TableName() string {
	return "scheduled_games"
}

// Team maps a numeric league team id to the simple name box scores use.
type Team struct {
	TeamID     int    `json:"teamId"`
	SimpleName string `json:"simpleName"`
}

// TeamIndex provides both directions of the static team mapping.
type TeamIndex struct {
	byID   map[int]string
	byName map[string]int
}

func NewTeamIndex(teams []Team) *TeamIndex {
	idx := &TeamIndex{
		byID:   make(map[int]string, len(teams)),
		byName: make(map[string]int, len(teams)),
	}
	for _, t := range teams {
		idx.byID[t.TeamID] = t.SimpleName
		idx.byName[t.SimpleName] = t.TeamID
	}
	return idx
}

func (idx *TeamIndex) NameByID(id int) (string, bool) {
	name, ok := idx.byID[id]
	return name, ok
}

func (idx *TeamIndex) IDByName(name string) (int, bool) {
	id, ok := idx.byName[name]
	return id, ok
}
