package evaluation

import (
	"sync"
	"time"

	"mbebench/internal/question"
)

// PairEventType identifies a (question, provider) status update.
type PairEventType string

const (
	// PairQueued marks a pair known but not yet dispatched.
	PairQueued PairEventType = "queued"
	// PairRunning marks an active provider call.
	PairRunning PairEventType = "running"
	// PairAnswered marks a call that produced a valid letter.
	PairAnswered PairEventType = "answered"
	// PairFailed marks a call recorded as an error.
	PairFailed PairEventType = "failed"
)

// PairEvent carries a single status update for a pair.
type PairEvent struct {
	QuestionIndex int
	QuestionID    int
	ProviderIndex int
	ProviderID    string
	Type          PairEventType
	Letter        question.Letter
	Correct       bool
	ErrorKind     ErrorKind
	Error         string
	Duration      time.Duration
	EmittedAt     time.Time
}

// Observer receives run lifecycle events for UI, metrics, or logging.
type Observer interface {
	// OnRunStart signals the start of a run.
	OnRunStart(runID string, questions []question.Question, providers []ProviderInfo)
	// OnPairEvent delivers a pair status update.
	OnPairEvent(event PairEvent)
	// OnRunEnd signals run completion with every attempt.
	OnRunEnd(attempts []Attempt)
}

// Observers fans events out to every non-nil observer in order.
func Observers(observers ...Observer) Observer {
	filtered := make([]Observer, 0, len(observers))
	for _, observer := range observers {
		if observer != nil {
			filtered = append(filtered, observer)
		}
	}
	switch len(filtered) {
	case 0:
		return nil
	case 1:
		return filtered[0]
	}
	return multiObserver(filtered)
}

type multiObserver []Observer

func (m multiObserver) OnRunStart(runID string, questions []question.Question, providers []ProviderInfo) {
	for _, observer := range m {
		observer.OnRunStart(runID, questions, providers)
	}
}

func (m multiObserver) OnPairEvent(event PairEvent) {
	for _, observer := range m {
		observer.OnPairEvent(event)
	}
}

func (m multiObserver) OnRunEnd(attempts []Attempt) {
	for _, observer := range m {
		observer.OnRunEnd(attempts)
	}
}

// lockedObserver serializes observer calls from parallel workers.
type lockedObserver struct {
	mu    sync.Mutex
	inner Observer
}

func (o *lockedObserver) runStart(runID string, questions []question.Question, providers []ProviderInfo) {
	if o.inner == nil {
		return
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	o.inner.OnRunStart(runID, questions, providers)
}

func (o *lockedObserver) pairEvent(event PairEvent) {
	if o.inner == nil {
		return
	}
	if event.EmittedAt.IsZero() {
		event.EmittedAt = time.Now()
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	o.inner.OnPairEvent(event)
}

func (o *lockedObserver) runEnd(attempts []Attempt) {
	if o.inner == nil {
		return
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	o.inner.OnRunEnd(attempts)
}
