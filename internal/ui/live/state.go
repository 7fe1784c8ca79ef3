package live

import (
	"time"

	"mbebench/internal/evaluation"
	"mbebench/internal/question"
)

// Cell holds UI state for one (question, provider) pair.
type Cell struct {
	Status     evaluation.PairEventType
	Letter     question.Letter
	Correct    bool
	ErrorKind  evaluation.ErrorKind
	Error      string
	StartedAt  time.Time
	FinishedAt time.Time
	Duration   time.Duration
}

// QuestionRow holds UI state for a single question across providers.
type QuestionRow struct {
	Index    int
	ID       int
	Subject  question.Subject
	Expected question.Letter
	Text     string
	Cells    []Cell
}

// ProviderTally counts finished answers for one provider.
type ProviderTally struct {
	Done    int
	Correct int
	Failed  int
}

// StatusCounts aggregates pair counts by status bucket.
type StatusCounts struct {
	Queued    int
	Running   int
	Done      int
	Correct   int
	Incorrect int
	Failed    int
}

// State captures the live UI state for a run.
type State struct {
	RunID     string
	Providers []evaluation.ProviderInfo
	StartedAt time.Time
	LastEvent string
	Rows      []QuestionRow
	Counts    StatusCounts
	Tallies   []ProviderTally
}
