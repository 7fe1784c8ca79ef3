package report

import (
	"time"

	"mbebench/internal/evaluation"
	"mbebench/internal/question"
)

// Results is the persisted artifact for a single run.
type Results struct {
	RunID         string                    `json:"run_id"`
	StartedAt     time.Time                 `json:"started_at"`
	FinishedAt    time.Time                 `json:"finished_at"`
	Title         string                    `json:"title,omitempty"`
	QuestionsFile string                    `json:"questions_file"`
	Providers     []evaluation.ProviderInfo `json:"providers"`
	Questions     []question.Question       `json:"questions"`
	Attempts      []evaluation.Attempt      `json:"attempts"`
	Summary       Summary                   `json:"summary"`
}

// RunMeta carries run identity for BuildResults.
type RunMeta struct {
	RunID         string
	StartedAt     time.Time
	FinishedAt    time.Time
	Title         string
	QuestionsFile string
	Providers     []evaluation.ProviderInfo
}

// BuildResults assembles the artifact and derives its summary.
func BuildResults(meta RunMeta, questions []question.Question, attempts []evaluation.Attempt) Results {
	return Results{
		RunID:         meta.RunID,
		StartedAt:     meta.StartedAt.UTC(),
		FinishedAt:    meta.FinishedAt.UTC(),
		Title:         meta.Title,
		QuestionsFile: meta.QuestionsFile,
		Providers:     meta.Providers,
		Questions:     questions,
		Attempts:      attempts,
		Summary:       Summarize(questions, attempts),
	}
}

// ProviderIDs returns provider ids in run order, falling back to attempt order
// when provider metadata is missing.
func (r Results) ProviderIDs() []string {
	if len(r.Providers) > 0 {
		ids := make([]string, 0, len(r.Providers))
		for _, info := range r.Providers {
			ids = append(ids, info.ID)
		}
		return ids
	}
	ids := make([]string, 0, len(r.Summary.Providers))
	for _, score := range r.Summary.Providers {
		ids = append(ids, score.ProviderID)
	}
	return ids
}
