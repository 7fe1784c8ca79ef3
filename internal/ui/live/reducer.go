package live

import (
	"fmt"
	"time"

	"mbebench/internal/evaluation"
	"mbebench/internal/question"
)

// Begin resets the state for a new run grid.
func Begin(state State, runID string, questions []question.Question, providers []evaluation.ProviderInfo) State {
	state.RunID = runID
	state.Providers = append([]evaluation.ProviderInfo(nil), providers...)
	state.LastEvent = ""
	state.Rows = make([]QuestionRow, len(questions))
	for i, item := range questions {
		state.Rows[i] = QuestionRow{
			Index:    i,
			ID:       item.ID,
			Subject:  item.Subject,
			Expected: item.CorrectAnswer,
			Text:     item.Stem,
			Cells:    make([]Cell, len(providers)),
		}
	}
	state.Counts = recount(state.Rows)
	state.Tallies = tally(state.Rows, len(providers))
	return state
}

// Reduce applies a pair event to the UI state.
func Reduce(state State, event evaluation.PairEvent) State {
	state = ensureCell(state, event)
	state = applyPairEvent(state, event)
	state.Counts = recount(state.Rows)
	state.Tallies = tally(state.Rows, len(state.Providers))
	if message := formatLastEvent(event); message != "" {
		state.LastEvent = message
	}
	return state
}

// ensureCell grows rows and cells to include the target pair.
func ensureCell(state State, event evaluation.PairEvent) State {
	if event.QuestionIndex < 0 || event.ProviderIndex < 0 {
		return state
	}
	if event.QuestionIndex >= len(state.Rows) {
		rows := make([]QuestionRow, event.QuestionIndex+1)
		copy(rows, state.Rows)
		for i := len(state.Rows); i < len(rows); i++ {
			rows[i] = QuestionRow{Index: i}
		}
		state.Rows = rows
	}
	row := state.Rows[event.QuestionIndex]
	if row.ID == 0 {
		row.ID = event.QuestionID
	}
	if event.ProviderIndex >= len(row.Cells) {
		cells := make([]Cell, event.ProviderIndex+1)
		copy(cells, row.Cells)
		row.Cells = cells
	}
	state.Rows[event.QuestionIndex] = row
	if event.ProviderIndex >= len(state.Providers) {
		providers := make([]evaluation.ProviderInfo, event.ProviderIndex+1)
		copy(providers, state.Providers)
		state.Providers = providers
	}
	if state.Providers[event.ProviderIndex].ID == "" {
		state.Providers[event.ProviderIndex].ID = event.ProviderID
	}
	return state
}

// applyPairEvent updates a cell with the given event.
func applyPairEvent(state State, event evaluation.PairEvent) State {
	if event.QuestionIndex < 0 || event.QuestionIndex >= len(state.Rows) {
		return state
	}
	row := state.Rows[event.QuestionIndex]
	if event.ProviderIndex < 0 || event.ProviderIndex >= len(row.Cells) {
		return state
	}
	cell := row.Cells[event.ProviderIndex]
	cell.Status = event.Type
	switch event.Type {
	case evaluation.PairRunning:
		if cell.StartedAt.IsZero() {
			cell.StartedAt = event.EmittedAt
		}
	case evaluation.PairAnswered, evaluation.PairFailed:
		cell.FinishedAt = event.EmittedAt
		cell.Duration = event.Duration
		cell.Letter = event.Letter
		cell.Correct = event.Correct
		cell.ErrorKind = event.ErrorKind
		cell.Error = event.Error
	}
	row.Cells[event.ProviderIndex] = cell
	state.Rows[event.QuestionIndex] = row
	return state
}

// recount recomputes status counts for the current grid.
func recount(rows []QuestionRow) StatusCounts {
	var counts StatusCounts
	for _, row := range rows {
		for _, cell := range row.Cells {
			switch cell.Status {
			case "", evaluation.PairQueued:
				counts.Queued++
			case evaluation.PairRunning:
				counts.Running++
			case evaluation.PairAnswered:
				counts.Done++
				if cell.Correct {
					counts.Correct++
				} else {
					counts.Incorrect++
				}
			case evaluation.PairFailed:
				counts.Done++
				counts.Failed++
			}
		}
	}
	return counts
}

// tally recomputes per-provider progress.
func tally(rows []QuestionRow, providers int) []ProviderTally {
	tallies := make([]ProviderTally, providers)
	for _, row := range rows {
		for i, cell := range row.Cells {
			if i >= providers {
				break
			}
			switch cell.Status {
			case evaluation.PairAnswered:
				tallies[i].Done++
				if cell.Correct {
					tallies[i].Correct++
				}
			case evaluation.PairFailed:
				tallies[i].Done++
				tallies[i].Failed++
			}
		}
	}
	return tallies
}

// formatLastEvent creates a short footer message for the event.
func formatLastEvent(event evaluation.PairEvent) string {
	switch event.Type {
	case evaluation.PairAnswered:
		verdict := "incorrect"
		if event.Correct {
			verdict = "correct"
		}
		return fmt.Sprintf("Q%d %s answered %s (%s, %s)", event.QuestionID, event.ProviderID, event.Letter, verdict, formatDuration(event.Duration))
	case evaluation.PairFailed:
		return fmt.Sprintf("Q%d %s %s: %s", event.QuestionID, event.ProviderID, event.ErrorKind, event.Error)
	}
	return ""
}

// formatDuration renders a rounded duration for display.
func formatDuration(duration time.Duration) string {
	if duration <= 0 {
		return "0s"
	}
	return duration.Round(100 * time.Millisecond).String()
}
