package report

import (
	"fmt"

	"mbebench/internal/evaluation"
)

// agreementNote states which questions the agreement counts include.
const agreementNote = "Counts questions where every provider answered with the same letter; questions with any failed attempt are excluded."

// formatAccuracy renders a score as "c/t (p%)".
func formatAccuracy(score ProviderScore) string {
	return fmt.Sprintf("%d/%d (%.1f%%)", score.Correct, score.Total, score.Accuracy*100)
}

func formatPercent(part, whole int) string {
	if whole == 0 {
		return "n/a"
	}
	return fmt.Sprintf("%.1f%%", float64(part)*100/float64(whole))
}

// cellLetter renders an attempt for the responses table.
func cellLetter(attempt evaluation.Attempt, ok bool) string {
	switch {
	case !ok:
		return "-"
	case attempt.Failed():
		return "ERR"
	default:
		return string(attempt.Letter)
	}
}

// statusMark renders the detailed-results marker.
func statusMark(attempt evaluation.Attempt, ok bool, correct bool) string {
	switch {
	case !ok || attempt.Failed():
		return "?"
	case correct:
		return "✓"
	default:
		return "✗"
	}
}
