package live

import (
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"mbebench/internal/evaluation"
)

// formatQuestionID returns the display id for a question row.
func formatQuestionID(row QuestionRow) string {
	if row.ID > 0 {
		return "Q" + pad2(row.ID)
	}
	return "Q" + pad2(row.Index+1)
}

// pad2 left-pads a number to two digits when needed.
func pad2(value int) string {
	if value >= 10 {
		return strconv.Itoa(value)
	}
	return "0" + strconv.Itoa(value)
}

// formatQuestionText truncates question text for display.
func formatQuestionText(text string, limit int) string {
	normalized := strings.Join(strings.Fields(text), " ")
	if normalized == "" || limit <= 3 {
		return ""
	}
	runes := []rune(normalized)
	if len(runes) <= limit {
		return normalized
	}
	return string(runes[:limit-3]) + "..."
}

// formatCell renders one pair's status.
func formatCell(cell Cell, now time.Time, noColor bool) string {
	var text string
	switch cell.Status {
	case evaluation.PairRunning:
		text = "running"
		if !cell.StartedAt.IsZero() {
			text += " " + formatDuration(now.Sub(cell.StartedAt))
		}
	case evaluation.PairAnswered:
		mark := "✗"
		if cell.Correct {
			mark = "✓"
		}
		text = string(cell.Letter) + " " + mark
	case evaluation.PairFailed:
		text = "ERR"
		if cell.ErrorKind != "" {
			text += " " + string(cell.ErrorKind)
		}
	default:
		text = "·"
	}
	return stylizeCell(text, cell, noColor)
}

// formatTally renders a provider's running accuracy.
func formatTally(tally ProviderTally) string {
	if tally.Done == 0 {
		return "0/0"
	}
	return strconv.Itoa(tally.Correct) + "/" + strconv.Itoa(tally.Done)
}

// stylizeCell applies status coloring when enabled.
func stylizeCell(text string, cell Cell, noColor bool) string {
	if noColor {
		return text
	}
	return cellStyle(cell).Render(text)
}

// cellStyle selects a style for a given cell.
func cellStyle(cell Cell) lipgloss.Style {
	color := lipgloss.Color("246")
	switch cell.Status {
	case evaluation.PairAnswered:
		color = lipgloss.Color("220")
		if cell.Correct {
			color = lipgloss.Color("42")
		}
	case evaluation.PairFailed:
		color = lipgloss.Color("196")
	case evaluation.PairRunning:
		color = lipgloss.Color("33")
	}
	return lipgloss.NewStyle().Foreground(color)
}
