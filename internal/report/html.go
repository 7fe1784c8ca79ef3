package report

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/a-h/templ"
)

// RenderHTML renders the single-run report page into a string.
func RenderHTML(ctx context.Context, results Results) (string, error) {
	var builder strings.Builder
	if err := RunReportPage(results).Render(ctx, &builder); err != nil {
		return "", err
	}
	return builder.String(), nil
}

// RunReportPage is the HTML report component for one run.
func RunReportPage(results Results) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		page := &htmlWriter{w: w}
		title := "MBE Benchmark Report"
		if results.Title != "" {
			title = results.Title
		}
		page.raw("<!doctype html>\n<html lang=\"en\"><head><meta charset=\"utf-8\"><title>")
		page.text(title)
		page.raw("</title><style>")
		page.raw(reportCSS)
		page.raw("</style></head><body>\n<h1>")
		page.text(title)
		page.raw("</h1>\n<p class=\"meta\">Run ")
		page.text(results.RunID)
		if !results.StartedAt.IsZero() {
			page.raw(" &middot; started ")
			page.text(results.StartedAt.Format("2006-01-02 15:04:05 MST"))
			if !results.FinishedAt.IsZero() {
				page.raw(" &middot; took ")
				page.text(results.FinishedAt.Sub(results.StartedAt).Round(time.Millisecond).String())
			}
		}
		if results.QuestionsFile != "" {
			page.raw(" &middot; ")
			page.text(results.QuestionsFile)
		}
		page.raw("</p>\n")

		renderAccuracySection(page, results.Summary)
		renderResponsesSection(page, results)
		renderSubjectSection(page, results.Summary)
		renderAgreementSection(page, results.Summary)

		page.raw("</body></html>\n")
		return page.err
	})
}

func renderAccuracySection(page *htmlWriter, summary Summary) {
	page.raw("<h2>Accuracy</h2>\n<table><thead><tr><th>Rank</th><th>Provider</th><th>Model</th><th>Accuracy</th><th>Correct</th><th>Incorrect</th><th>Errors</th></tr></thead><tbody>\n")
	for i, score := range sortedProviders(summary.Providers) {
		page.raw("<tr>")
		page.cell(fmt.Sprint(i + 1))
		page.cell(score.ProviderID)
		page.cell(score.Model)
		page.cell(formatAccuracy(score))
		page.cell(fmt.Sprint(score.Correct))
		page.cell(fmt.Sprint(score.Incorrect))
		page.cell(fmt.Sprint(score.Errors))
		page.raw("</tr>\n")
	}
	page.raw("</tbody></table>\n")
}

func renderResponsesSection(page *htmlWriter, results Results) {
	index := newAttemptIndex(results.Questions, results.Attempts)
	page.raw("<h2>Responses</h2>\n<table><thead><tr><th>Question</th><th>Subject</th><th>Correct</th>")
	for _, providerID := range index.providers {
		page.raw("<th>")
		page.text(providerID)
		page.raw("</th>")
	}
	page.raw("</tr></thead><tbody>\n")
	for _, item := range results.Questions {
		page.raw("<tr>")
		page.cell(fmt.Sprintf("Q%d", item.ID))
		page.cell(item.Subject.Title())
		page.raw("<td title=\"")
		page.text(item.ChoiceText(item.CorrectAnswer))
		page.raw("\">")
		page.text(string(item.CorrectAnswer))
		page.raw("</td>")
		for _, providerID := range index.providers {
			attempt, ok := index.get(item.ID, providerID)
			class := "missing"
			switch {
			case ok && attempt.Failed():
				class = "error"
			case ok && attempt.Correct(item.CorrectAnswer):
				class = "correct"
			case ok:
				class = "incorrect"
			}
			page.raw("<td class=\"" + class + "\"")
			switch {
			case ok && attempt.Failed():
				page.raw(" title=\"")
				page.text(attempt.Error)
				page.raw("\"")
			case ok:
				page.raw(" title=\"")
				page.text(item.ChoiceText(attempt.Letter))
				page.raw("\"")
			}
			page.raw(">")
			page.text(cellLetter(attempt, ok))
			page.raw("</td>")
		}
		page.raw("</tr>\n")
	}
	page.raw("</tbody></table>\n")
}

func renderSubjectSection(page *htmlWriter, summary Summary) {
	if len(summary.Subjects) == 0 {
		return
	}
	page.raw("<h2>Subjects</h2>\n<table><thead><tr><th>Subject</th><th>Questions</th>")
	for _, score := range summary.Providers {
		page.raw("<th>")
		page.text(score.ProviderID)
		page.raw("</th>")
	}
	page.raw("</tr></thead><tbody>\n")
	for _, entry := range summary.Subjects {
		page.raw("<tr>")
		page.cell(entry.Subject.Title())
		page.cell(fmt.Sprint(entry.Questions))
		for _, score := range entry.Providers {
			page.cell(fmt.Sprintf("%d/%d", score.Correct, score.Total))
		}
		page.raw("</tr>\n")
	}
	page.raw("</tbody></table>\n")
}

func renderAgreementSection(page *htmlWriter, summary Summary) {
	if len(summary.Providers) < 2 {
		return
	}
	page.raw("<h2>Agreement</h2>\n<p>")
	page.text(fmt.Sprintf("All providers agree on %d of %d questions; %d unanimous and correct.", summary.Agreement, summary.Questions, summary.UnanimousCorrect))
	page.raw("<br><small>")
	page.text(agreementNote)
	page.raw("</small>")
	page.raw("</p>\n<table><thead><tr><th>Pair</th><th>Agree</th><th>Compared</th><th>Rate</th></tr></thead><tbody>\n")
	for _, pair := range summary.Pairwise {
		page.raw("<tr>")
		page.cell(pair.First + " / " + pair.Second)
		page.cell(fmt.Sprint(pair.Agree))
		page.cell(fmt.Sprint(pair.Compared))
		page.cell(formatPercent(pair.Agree, pair.Compared))
		page.raw("</tr>\n")
	}
	page.raw("</tbody></table>\n")
}

// htmlWriter keeps the first write error so rendering code stays linear.
type htmlWriter struct {
	w   io.Writer
	err error
}

func (h *htmlWriter) raw(s string) {
	if h.err != nil {
		return
	}
	_, h.err = io.WriteString(h.w, s)
}

func (h *htmlWriter) text(s string) {
	h.raw(templ.EscapeString(s))
}

func (h *htmlWriter) cell(s string) {
	h.raw("<td>")
	h.text(s)
	h.raw("</td>")
}

const reportCSS = `body{font-family:system-ui,sans-serif;margin:2rem;color:#222}
table{border-collapse:collapse;margin-bottom:1.5rem}
th,td{border:1px solid #ccc;padding:.3rem .6rem;text-align:left}
th{background:#f3f3f3}
.meta{color:#666}
.correct{background:#e3f6e3}
.incorrect{background:#fbe3e3}
.error{background:#fff3d6}
.missing{color:#999}`
