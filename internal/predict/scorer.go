// Package predict turns the latest per-player feature vectors into a
// ranked prediction board for a target game day.
package predict

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/fastbreakhq/fastbreak/internal/models"
)

// Scorer is the trained model contract. The pipeline treats it as opaque:
// vectors in, predicted fantasy points out.
type Scorer interface {
	Predict(v models.FeatureVector) (float64, error)
}

// LinearScorer scores with a weights-and-intercept artifact exported by the
// training job. Model choice and training are out of scope here; any
// artifact that maps the five features to a float will do.
type LinearScorer struct {
	Intercept float64            `json:"intercept"`
	Weights   map[string]float64 `json:"weights"`
}

// LoadLinearScorer reads a weights artifact from disk.
func LoadLinearScorer(path string) (*LinearScorer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read model artifact %s: %w", path, err)
	}
	var scorer LinearScorer
	if err := json.Unmarshal(data, &scorer); err != nil {
		return nil, fmt.Errorf("failed to decode model artifact %s: %w", path, err)
	}
	if len(scorer.Weights) == 0 {
		return nil, fmt.Errorf("model artifact %s has no weights", path)
	}
	return &scorer, nil
}

func (s *LinearScorer) Predict(v models.FeatureVector) (float64, error) {
	return s.Intercept +
		s.Weights["minutes"]*v.Minutes +
		s.Weights["opponent_oss"]*v.OpponentOSS +
		s.Weights["recent_avg_fp"]*v.RecentAvgFP +
		s.Weights["season_avg_fp"]*v.SeasonAvgFP +
		s.Weights["bfi"]*v.BFI, nil
}
