package storage

import (
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/fastbreakhq/fastbreak/internal/models"
	"github.com/fastbreakhq/fastbreak/pkg/database"
)

// FeatureStore persists the training dataset. ReplaceAll swaps the whole
// table inside a transaction so a failed build never half-overwrites the
// previous dataset.
type FeatureStore struct {
	db *database.DB
}

func NewFeatureStore(db *database.DB) *FeatureStore {
	return &FeatureStore{db: db}
}

func (s *FeatureStore) ReplaceAll(rows []models.FeatureRow) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&models.FeatureRow{}).Error; err != nil {
			return fmt.Errorf("failed to clear feature rows: %w", err)
		}
		if len(rows) == 0 {
			return nil
		}
		if err := tx.CreateInBatches(rows, 500).Error; err != nil {
			return fmt.Errorf("failed to insert feature rows: %w", err)
		}
		return nil
	})
}

func (s *FeatureStore) All() ([]models.FeatureRow, error) {
	var rows []models.FeatureRow
	if err := s.db.Order("game_date asc").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load feature rows: %w", err)
	}
	return rows, nil
}

// ByPlayer returns one player's feature history, date ascending.
func (s *FeatureStore) ByPlayer(firstName, lastName string) ([]models.FeatureRow, error) {
	var rows []models.FeatureRow
	err := s.db.Where("first_name = ? AND last_name = ?", firstName, lastName).
		Order("game_date asc").Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load feature rows for player: %w", err)
	}
	return rows, nil
}

// LineStore persists raw box-score lines so the serving path can rebuild
// per-player game logs without re-reading the extracts.
type LineStore struct {
	db *database.DB
}

func NewLineStore(db *database.DB) *LineStore {
	return &LineStore{db: db}
}

func (s *LineStore) ReplaceAll(lines []models.BoxScoreLine) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&models.BoxScoreLine{}).Error; err != nil {
			return fmt.Errorf("failed to clear box score lines: %w", err)
		}
		if len(lines) == 0 {
			return nil
		}
		if err := tx.CreateInBatches(lines, 500).Error; err != nil {
			return fmt.Errorf("failed to insert box score lines: %w", err)
		}
		return nil
	})
}

func (s *LineStore) All() ([]models.BoxScoreLine, error) {
	var lines []models.BoxScoreLine
	if err := s.db.Order("game_date asc").Find(&lines).Error; err != nil {
		return nil, fmt.Errorf("failed to load box score lines: %w", err)
	}
	return lines, nil
}

// InjuryStore persists the injury feed snapshot taken at pipeline time.
type InjuryStore struct {
	db *database.DB
}

func NewInjuryStore(db *database.DB) *InjuryStore {
	return &InjuryStore{db: db}
}

func (s *InjuryStore) ReplaceAll(events []models.InjuryEvent) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&models.InjuryEvent{}).Error; err != nil {
			return fmt.Errorf("failed to clear injury events: %w", err)
		}
		if len(events) == 0 {
			return nil
		}
		if err := tx.CreateInBatches(events, 500).Error; err != nil {
			return fmt.Errorf("failed to insert injury events: %w", err)
		}
		return nil
	})
}

func (s *InjuryStore) All() ([]models.InjuryEvent, error) {
	var events []models.InjuryEvent
	if err := s.db.Order("date asc").Find(&events).Error; err != nil {
		return nil, fmt.Errorf("failed to load injury events: %w", err)
	}
	return events, nil
}

// ScheduleStore persists the league schedule.
type ScheduleStore struct {
	db *database.DB
}

func NewScheduleStore(db *database.DB) *ScheduleStore {
	return &ScheduleStore{db: db}
}

func (s *ScheduleStore) ReplaceAll(games []models.ScheduledGame) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&models.ScheduledGame{}).Error; err != nil {
			return fmt.Errorf("failed to clear scheduled games: %w", err)
		}
		if len(games) == 0 {
			return nil
		}
		if err := tx.CreateInBatches(games, 500).Error; err != nil {
			return fmt.Errorf("failed to insert scheduled games: %w", err)
		}
		return nil
	})
}

func (s *ScheduleStore) All() ([]models.ScheduledGame, error) {
	var games []models.ScheduledGame
	if err := s.db.Order("game_time_est asc").Find(&games).Error; err != nil {
		return nil, fmt.Errorf("failed to load scheduled games: %w", err)
	}
	return games, nil
}

// StrengthSnapshot archives one opponent-strength rebuild. The document is
// stored as JSON so past matchup context can be compared across days.
type StrengthSnapshot struct {
	ID       uint           `gorm:"primaryKey" json:"id"`
	BuiltAt  time.Time      `gorm:"not null;index" json:"built_at"`
	RunID    string         `gorm:"not null" json:"run_id"`
	Document datatypes.JSON `gorm:"type:jsonb" json:"document"`
}

func (StrengthSnapshot) TableName() string {
	return "strength_snapshots"
}

type SnapshotStore struct {
	db *database.DB
}

func NewSnapshotStore(db *database.DB) *SnapshotStore {
	return &SnapshotStore{db: db}
}

func (s *SnapshotStore) Append(runID string, document []byte) error {
	snap := StrengthSnapshot{
		BuiltAt:  time.Now().UTC(),
		RunID:    runID,
		Document: datatypes.JSON(document),
	}
	if err := s.db.Create(&snap).Error; err != nil {
		return fmt.Errorf("failed to archive strength snapshot: %w", err)
	}
	return nil
}

func (s *SnapshotStore) Latest() (*StrengthSnapshot, error) {
	var snap StrengthSnapshot
	err := s.db.Order("built_at desc, id desc").First(&snap).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load strength snapshot: %w", err)
	}
	return &snap, nil
}
