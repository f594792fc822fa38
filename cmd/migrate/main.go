package main

import (
	"fmt"
	"log"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/fastbreakhq/fastbreak/internal/models"
	"github.com/fastbreakhq/fastbreak/internal/storage"
	"github.com/fastbreakhq/fastbreak/pkg/config"
	"github.com/fastbreakhq/fastbreak/pkg/database"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatal("Usage: migrate [up|down]")
	}

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	// Connect to database
	db, err := database.NewConnection(cfg.DatabaseURL, cfg.IsDevelopment())
	if err != nil {
		logrus.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	command := os.Args[1]

	switch command {
	case "up":
		if err := runMigrations(db); err != nil {
			logrus.Fatalf("Failed to run migrations: %v", err)
		}
		logrus.Info("Migrations completed successfully")

	case "down":
		if err := dropTables(db); err != nil {
			logrus.Fatalf("Failed to drop tables: %v", err)
		}
		logrus.Info("Tables dropped successfully")

	default:
		log.Fatalf("Unknown command: %s", command)
	}
}

func runMigrations(db *database.DB) error {
	if err := db.AutoMigrate(
		&models.BoxScoreLine{},
		&models.FeatureRow{},
		&models.InjuryEvent{},
		&models.ScheduledGame{},
		&storage.StrengthSnapshot{},
	); err != nil {
		return fmt.Errorf("failed to migrate models: %w", err)
	}

	// Create indexes
	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_box_lines_team_date ON box_score_lines(team, game_date)",
		"CREATE INDEX IF NOT EXISTS idx_feature_rows_player ON feature_rows(first_name, last_name, game_date)",
		"CREATE INDEX IF NOT EXISTS idx_feature_rows_team_date ON feature_rows(team, game_date)",
		"CREATE INDEX IF NOT EXISTS idx_injury_events_team_date ON injury_events(team, date)",
		"CREATE INDEX IF NOT EXISTS idx_strength_snapshots_built_at ON strength_snapshots(built_at DESC)",
	}

	for _, index := range indexes {
		if err := db.Exec(index).Error; err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}

	return nil
}

func dropTables(db *database.DB) error {
	tables := []string{
		"strength_snapshots",
		"feature_rows",
		"injury_events",
		"scheduled_games",
		"box_score_lines",
	}

	for _, table := range tables {
		if err := db.Exec(fmt.Sprintf("DROP TABLE IF EXISTS %s CASCADE", table)).Error; err != nil {
			return fmt.Errorf("failed to drop table %s: %w", table, err)
		}
	}

	return nil
}
