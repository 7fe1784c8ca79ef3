package live

import (
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// renderHeader renders the run header line.
func renderHeader(state State, now time.Time, noColor bool) string {
	line := "Run " + state.RunID
	line += " | " + strconv.Itoa(len(state.Rows)) + " questions x " + strconv.Itoa(len(state.Providers)) + " providers"
	if !state.StartedAt.IsZero() {
		line += " | Elapsed: " + now.Sub(state.StartedAt).Round(100*time.Millisecond).String()
	}
	return stylize(line, noColor, lipgloss.Color("33"))
}

// renderSummary renders the status counts line.
func renderSummary(state State, noColor bool) string {
	counts := state.Counts
	line := "Queued: " + strconv.Itoa(counts.Queued) +
		" Running: " + strconv.Itoa(counts.Running) +
		" Done: " + strconv.Itoa(counts.Done) +
		" Correct: " + strconv.Itoa(counts.Correct) +
		" Incorrect: " + strconv.Itoa(counts.Incorrect) +
		" Error: " + strconv.Itoa(counts.Failed)
	return stylize(line, noColor, lipgloss.Color("242"))
}

// renderTallies renders per-provider running scores.
func renderTallies(state State, noColor bool) string {
	if len(state.Providers) == 0 {
		return ""
	}
	parts := make([]string, 0, len(state.Providers))
	for i, info := range state.Providers {
		label := info.ID
		if info.Model != "" {
			label += " (" + info.Model + ")"
		}
		var current ProviderTally
		if i < len(state.Tallies) {
			current = state.Tallies[i]
		}
		parts = append(parts, label+": "+formatTally(current))
	}
	return stylize(strings.Join(parts, " | "), noColor, lipgloss.Color("240"))
}

// renderFooter renders the last event line.
func renderFooter(state State, noColor bool) string {
	if state.LastEvent == "" {
		return ""
	}
	return stylize("Last event: "+state.LastEvent, noColor, lipgloss.Color("244"))
}

// stylize applies optional color styling.
func stylize(text string, noColor bool, color lipgloss.Color) string {
	if noColor {
		return text
	}
	return lipgloss.NewStyle().Foreground(color).Render(text)
}
