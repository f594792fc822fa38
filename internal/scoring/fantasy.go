// Package scoring holds the fantasy point formula. Every component that
// needs a fantasy score goes through FantasyPoints so the training label
// and any displayed value are computed identically.
package scoring

import "github.com/fastbreakhq/fastbreak/internal/models"

// FantasyPoints computes the weighted fantasy score for one stat line:
//
//	fp = pts + reb + 2*ast - 2*tov + 2*FGM - FGA + 4*blk + 4*stl - (FTA-FTM) + 3PM
func FantasyPoints(line models.BoxScoreLine) float64 {
	return line.Points +
		line.Rebounds +
		line.Assists*2 -
		line.Turnovers*2 +
		line.FieldGoalsMade*2 -
		line.FieldGoalsAttempted +
		line.Blocks*4 +
		line.Steals*4 -
		(line.FreeThrowsAttempted - line.FreeThrowsMade) +
		line.ThreePointersMade
}

// ScoredLine pairs a box-score line with its derived fantasy score.
type ScoredLine struct {
	models.BoxScoreLine
	FP float64
}

// ScoreLines derives fantasy scores for a whole extract.
func ScoreLines(lines []models.BoxScoreLine) []ScoredLine {
	scored := make([]ScoredLine, len(lines))
	for i, line := range lines {
		scored[i] = ScoredLine{BoxScoreLine: line, FP: FantasyPoints(line)}
	}
	return scored
}
