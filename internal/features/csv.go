package features

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/fastbreakhq/fastbreak/internal/models"
)

var csvHeader = []string{
	"firstName", "lastName", "playerteamName", "gameDate", "numMinutes",
	"opponent_oss", "recent_avg_fp", "season_avg_fp", "bfi", "fp",
}

// WriteCSV writes the training dataset in the flat layout model training
// consumes, one row per (player, game). Rows without a label are skipped;
// prediction-time vectors never belong in the training file.
func WriteCSV(path string, rows []models.FeatureRow) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create training dataset %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, row := range rows {
		if row.FantasyScore == nil {
			continue
		}
		record := []string{
			row.FirstName,
			row.LastName,
			row.Team,
			row.GameDate.Format(dateKeyLayout),
			formatFloat(row.Minutes),
			formatFloat(row.OpponentOSS),
			formatFloat(row.RecentAvgFP),
			formatFloat(row.SeasonAvgFP),
			formatFloat(row.BFI),
			formatFloat(*row.FantasyScore),
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("failed to write row for %s: %w", row.FullName(), err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush training dataset: %w", err)
	}
	return nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
