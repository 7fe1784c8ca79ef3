package live

import (
	"mbebench/internal/evaluation"
	"mbebench/internal/question"
)

// EventKind identifies the type of live UI event.
type EventKind int

const (
	// EventRunStart signals the start of a run.
	EventRunStart EventKind = iota
	// EventPair delivers a (question, provider) status update.
	EventPair
	// EventRunEnd signals run completion.
	EventRunEnd
)

// Event carries a UI update payload.
type Event struct {
	Kind      EventKind
	RunID     string
	Questions []question.Question
	Providers []evaluation.ProviderInfo
	Pair      evaluation.PairEvent
}
