package live

import (
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
)

const (
	idWidth      = 5
	subjectWidth = 20
	keyWidth     = 4
	cellWidth    = 18
	minTextWidth = 12
)

// tableStyles returns table styles for the UI.
func tableStyles(noColor bool) table.Styles {
	if noColor {
		return table.DefaultStyles()
	}
	styles := table.DefaultStyles()
	styles.Header = styles.Header.Foreground(lipgloss.Color("252"))
	return styles
}

// columnsForState lays out fixed columns, one column per provider, and gives
// the question text whatever width remains.
func columnsForState(state State, width int) []table.Column {
	textWidth := width - idWidth - subjectWidth - keyWidth - cellWidth*len(state.Providers) - 2*(4+len(state.Providers))
	if textWidth < minTextWidth {
		textWidth = minTextWidth
	}
	columns := []table.Column{
		{Title: "ID", Width: idWidth},
		{Title: "Subject", Width: subjectWidth},
		{Title: "Key", Width: keyWidth},
		{Title: "Question", Width: textWidth},
	}
	for _, info := range state.Providers {
		columns = append(columns, table.Column{Title: info.ID, Width: cellWidth})
	}
	return columns
}

// rowsForState converts UI state into table rows.
func rowsForState(state State, now time.Time, textWidth int, noColor bool) []table.Row {
	rows := make([]table.Row, 0, len(state.Rows))
	for _, row := range state.Rows {
		cells := table.Row{
			formatQuestionID(row),
			row.Subject.Title(),
			string(row.Expected),
			formatQuestionText(row.Text, textWidth),
		}
		for i := range state.Providers {
			cell := Cell{}
			if i < len(row.Cells) {
				cell = row.Cells[i]
			}
			cells = append(cells, formatCell(cell, now, noColor))
		}
		rows = append(rows, cells)
	}
	return rows
}
