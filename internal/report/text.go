package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"mbebench/internal/evaluation"
	"mbebench/internal/question"
)

const sectionRule = "============================================================"

// TextOptions tunes the terminal report.
type TextOptions struct {
	// Styled enables bold headers and coloured status marks.
	Styled bool
}

type textStyles struct {
	section lipgloss.Style
	header  lipgloss.Style
	cell    lipgloss.Style
	good    lipgloss.Style
	bad     lipgloss.Style
	unknown lipgloss.Style
}

func newTextStyles(styled bool) textStyles {
	cell := lipgloss.NewStyle().Padding(0, 1)
	if !styled {
		plain := lipgloss.NewStyle()
		return textStyles{section: plain, header: cell, cell: cell, good: plain, bad: plain, unknown: plain}
	}
	return textStyles{
		section: lipgloss.NewStyle().Bold(true),
		header:  cell.Bold(true),
		cell:    cell,
		good:    lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		bad:     lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		unknown: lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
	}
}

// RenderText writes the terminal report sections in order.
func RenderText(w io.Writer, questions []question.Question, attempts []evaluation.Attempt, summary Summary, opts TextOptions) error {
	styles := newTextStyles(opts.Styled)
	index := newAttemptIndex(questions, attempts)
	var b strings.Builder

	writeSection(&b, styles, "RESPONSES")
	headers := []string{"Question", "Correct"}
	headers = append(headers, index.providers...)
	responses := newTable(styles, headers...)
	for _, item := range questions {
		row := []string{fmt.Sprintf("Q%d", item.ID), string(item.CorrectAnswer)}
		for _, providerID := range index.providers {
			attempt, ok := index.get(item.ID, providerID)
			row = append(row, cellLetter(attempt, ok))
		}
		responses.Row(row...)
	}
	b.WriteString(responses.String())
	b.WriteString("\n")

	writeSection(&b, styles, "ACCURACY COMPARISON")
	accuracy := newTable(styles, "Provider", "Model", "Accuracy", "Correct", "Incorrect", "Errors")
	for _, score := range summary.Providers {
		accuracy.Row(
			score.ProviderID,
			score.Model,
			formatAccuracy(score),
			fmt.Sprint(score.Correct),
			fmt.Sprint(score.Incorrect),
			fmt.Sprint(score.Errors),
		)
	}
	b.WriteString(accuracy.String())
	b.WriteString("\n")

	if len(summary.Subjects) > 0 {
		writeSection(&b, styles, "SUBJECT BREAKDOWN")
		subjectHeaders := []string{"Subject", "Questions"}
		for _, score := range summary.Providers {
			subjectHeaders = append(subjectHeaders, score.ProviderID)
		}
		subjects := newTable(styles, subjectHeaders...)
		for _, entry := range summary.Subjects {
			row := []string{entry.Subject.Title(), fmt.Sprint(entry.Questions)}
			for _, score := range entry.Providers {
				row = append(row, fmt.Sprintf("%d/%d", score.Correct, score.Total))
			}
			subjects.Row(row...)
		}
		b.WriteString(subjects.String())
		b.WriteString("\n")
	}

	if len(summary.Providers) > 1 {
		writeSection(&b, styles, "AGREEMENT")
		b.WriteString(agreementNote + "\n")
		fmt.Fprintf(&b, "All providers agree: %d/%d (%s)\n", summary.Agreement, summary.Questions, formatPercent(summary.Agreement, summary.Questions))
		fmt.Fprintf(&b, "Unanimous and correct: %d/%d (%s)\n", summary.UnanimousCorrect, summary.Questions, formatPercent(summary.UnanimousCorrect, summary.Questions))
		pairs := newTable(styles, "Pair", "Agree", "Compared", "Rate")
		for _, pair := range summary.Pairwise {
			pairs.Row(pair.First+" / "+pair.Second, fmt.Sprint(pair.Agree), fmt.Sprint(pair.Compared), formatPercent(pair.Agree, pair.Compared))
		}
		b.WriteString(pairs.String())
		b.WriteString("\n")
	}

	writeSection(&b, styles, "DETAILED RESULTS")
	for _, providerID := range index.providers {
		fmt.Fprintf(&b, "\n%s:\n", strings.ToUpper(providerID))
		for _, item := range questions {
			attempt, ok := index.get(item.ID, providerID)
			correct := ok && attempt.Correct(item.CorrectAnswer)
			mark := statusMark(attempt, ok, correct)
			switch mark {
			case "✓":
				mark = styles.good.Render(mark)
			case "✗":
				mark = styles.bad.Render(mark)
			default:
				mark = styles.unknown.Render(mark)
			}
			fmt.Fprintf(&b, "  Q%d: %s Model=%s | Correct=%s", item.ID, mark, cellLetter(attempt, ok), item.CorrectAnswer)
			if ok && attempt.Failed() {
				fmt.Fprintf(&b, " (%s)", attempt.Error)
			}
			b.WriteString("\n")
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func writeSection(b *strings.Builder, styles textStyles, title string) {
	b.WriteString("\n")
	b.WriteString(sectionRule)
	b.WriteString("\n")
	b.WriteString(styles.section.Render(title))
	b.WriteString("\n")
	b.WriteString(sectionRule)
	b.WriteString("\n")
}

func newTable(styles textStyles, headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return styles.header
			}
			return styles.cell
		})
}
