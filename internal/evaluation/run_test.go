package evaluation

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"mbebench/internal/provider"
	"mbebench/internal/question"
	"mbebench/internal/testutil"
)

func makeQuestions(answers ...question.Letter) []question.Question {
	questions := make([]question.Question, 0, len(answers))
	for i, answer := range answers {
		questions = append(questions, question.Question{
			ID:          i + 1,
			Subject:     question.Contracts,
			FactPattern: fmt.Sprintf("Facts %d", i+1),
			Stem:        "Stem?",
			Choices: []question.Choice{
				{Label: question.LetterA, Text: "a"},
				{Label: question.LetterB, Text: "b"},
				{Label: question.LetterC, Text: "c"},
				{Label: question.LetterD, Text: "d"},
			},
			CorrectAnswer: answer,
		})
	}
	return questions
}

type recordingObserver struct {
	mu        sync.Mutex
	runID     string
	providers []ProviderInfo
	events    []PairEvent
	ended     int
}

func (r *recordingObserver) OnRunStart(runID string, _ []question.Question, providers []ProviderInfo) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runID = runID
	r.providers = providers
}

func (r *recordingObserver) OnPairEvent(event PairEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *recordingObserver) OnRunEnd(_ []Attempt) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ended++
}

func (r *recordingObserver) typesFor(questionID int, providerID string) []PairEventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []PairEventType
	for _, event := range r.events {
		if event.QuestionID == questionID && event.ProviderID == providerID {
			out = append(out, event.Type)
		}
	}
	return out
}

// TestRunQuestionMajorOrder verifies attempt ordering and letters.
func TestRunQuestionMajorOrder(t *testing.T) {
	questions := makeQuestions(question.LetterA, question.LetterB)
	adapters := []provider.Adapter{
		&provider.Scripted{ProviderID: "p1", ModelName: "m1", Answers: map[int]string{1: "A", 2: "B"}},
		&provider.Scripted{ProviderID: "p2", ModelName: "m2", Answers: map[int]string{1: "C", 2: "B"}},
	}
	attempts := Run(testutil.Context(t, time.Second), questions, adapters, Options{Logger: zerolog.Nop()})
	got := make([]string, 0, len(attempts))
	for _, attempt := range attempts {
		got = append(got, fmt.Sprintf("%d/%s/%s", attempt.QuestionID, attempt.ProviderID, attempt.Letter))
	}
	expected := []string{"1/p1/A", "1/p2/C", "2/p1/B", "2/p2/B"}
	if !reflect.DeepEqual(got, expected) {
		t.Fatalf("unexpected attempts %v", got)
	}
	if attempts[1].Model != "m2" {
		t.Fatalf("expected model recorded, got %q", attempts[1].Model)
	}
}

// TestRunContinuesAfterFailures verifies failures are recorded per pair.
func TestRunContinuesAfterFailures(t *testing.T) {
	questions := makeQuestions(question.LetterA, question.LetterB, question.LetterC)
	failing := &provider.Scripted{
		ProviderID: "flaky",
		Default:    "A",
		Answers:    map[int]string{3: "E"},
		Errors:     map[int]error{2: &provider.ProviderError{Provider: "flaky", StatusCode: 500, Body: "boom"}},
	}
	var logs bytes.Buffer
	attempts := Run(testutil.Context(t, time.Second), questions, []provider.Adapter{failing}, Options{
		Logger: zerolog.New(&logs),
	})
	if len(attempts) != 3 {
		t.Fatalf("expected 3 attempts, got %d", len(attempts))
	}
	if attempts[0].Failed() || attempts[0].Letter != question.LetterA {
		t.Fatalf("unexpected first attempt %+v", attempts[0])
	}
	if attempts[1].Letter != question.Unparseable || attempts[1].ErrorKind != ErrorKindProvider {
		t.Fatalf("expected provider error, got %+v", attempts[1])
	}
	if !strings.Contains(attempts[1].Error, "500") {
		t.Fatalf("expected status in error, got %q", attempts[1].Error)
	}
	if attempts[2].ErrorKind != ErrorKindUnparseable || attempts[2].RawResponse == "" {
		t.Fatalf("expected unparseable attempt with raw payload, got %+v", attempts[2])
	}
	var unparseableLine string
	for _, line := range strings.Split(logs.String(), "\n") {
		if strings.Contains(line, `"kind":"unparseable"`) {
			unparseableLine = line
		}
	}
	if !strings.Contains(unparseableLine, `"level":"error"`) {
		t.Fatalf("expected unparseable answer logged at error level: %s", logs.String())
	}
}

// TestRunTimeoutRecordedAsProviderError verifies per-call timeouts.
func TestRunTimeoutRecordedAsProviderError(t *testing.T) {
	questions := makeQuestions(question.LetterA)
	slow := &provider.Scripted{ProviderID: "slow", Default: "A", Delay: time.Second}
	attempts := Run(testutil.Context(t, 5*time.Second), questions, []provider.Adapter{slow}, Options{
		Timeout: 20 * time.Millisecond,
		Logger:  zerolog.Nop(),
	})
	if attempts[0].ErrorKind != ErrorKindTimeout {
		t.Fatalf("expected timeout, got %+v", attempts[0])
	}
}

// TestRunWrapsUnknownErrors verifies foreign errors become ProviderError.
func TestRunWrapsUnknownErrors(t *testing.T) {
	kind, err := classify("p", errors.New("socket closed"))
	var providerErr *provider.ProviderError
	if kind != ErrorKindProvider || !errors.As(err, &providerErr) {
		t.Fatalf("expected wrapped provider error, got %s %v", kind, err)
	}
}

// TestRunParallelPreservesOrder verifies parallel dispatch fills every slot.
func TestRunParallelPreservesOrder(t *testing.T) {
	letters := []question.Letter{question.LetterA, question.LetterB, question.LetterC, question.LetterD, question.LetterA, question.LetterB}
	questions := makeQuestions(letters...)
	answers := map[int]string{}
	for i, letter := range letters {
		answers[i+1] = string(letter)
	}
	adapters := []provider.Adapter{
		&provider.Scripted{ProviderID: "p1", Answers: answers, Delay: time.Millisecond},
		&provider.Scripted{ProviderID: "p2", Answers: answers},
		&provider.Scripted{ProviderID: "p3", Default: "D"},
	}
	sequential := Run(testutil.Context(t, 5*time.Second), questions, adapters, Options{Logger: zerolog.Nop()})
	parallel := Run(testutil.Context(t, 5*time.Second), questions, adapters, Options{Workers: 4, Logger: zerolog.Nop()})
	if len(parallel) != len(sequential) {
		t.Fatalf("expected %d attempts, got %d", len(sequential), len(parallel))
	}
	for i := range sequential {
		if sequential[i].QuestionID != parallel[i].QuestionID ||
			sequential[i].ProviderID != parallel[i].ProviderID ||
			sequential[i].Letter != parallel[i].Letter {
			t.Fatalf("slot %d differs: %+v vs %+v", i, sequential[i], parallel[i])
		}
	}
}

// TestRunIsIdempotent verifies repeated runs call each adapter once per question.
func TestRunIsIdempotent(t *testing.T) {
	questions := makeQuestions(question.LetterA, question.LetterB)
	adapter := &provider.Scripted{ProviderID: "p", Default: "A"}
	first := Run(testutil.Context(t, time.Second), questions, []provider.Adapter{adapter}, Options{Logger: zerolog.Nop()})
	second := Run(testutil.Context(t, time.Second), questions, []provider.Adapter{adapter}, Options{Logger: zerolog.Nop()})
	if adapter.Calls() != 4 {
		t.Fatalf("expected 4 calls, got %d", adapter.Calls())
	}
	for i := range first {
		if first[i].Letter != second[i].Letter {
			t.Fatalf("runs diverged at %d", i)
		}
	}
}

// TestRunEmitsPairLifecycle verifies observer events per pair.
func TestRunEmitsPairLifecycle(t *testing.T) {
	questions := makeQuestions(question.LetterA)
	adapters := []provider.Adapter{
		&provider.Scripted{ProviderID: "ok", Default: "A"},
		&provider.Scripted{ProviderID: "bad", Default: "Z"},
	}
	observer := &recordingObserver{}
	Run(testutil.Context(t, time.Second), questions, adapters, Options{RunID: "run-1", Observer: observer, Logger: zerolog.Nop()})

	if observer.runID != "run-1" || len(observer.providers) != 2 || observer.ended != 1 {
		t.Fatalf("unexpected run lifecycle: %+v", observer)
	}
	if got := observer.typesFor(1, "ok"); !reflect.DeepEqual(got, []PairEventType{PairQueued, PairRunning, PairAnswered}) {
		t.Fatalf("unexpected ok events %v", got)
	}
	if got := observer.typesFor(1, "bad"); !reflect.DeepEqual(got, []PairEventType{PairQueued, PairRunning, PairFailed}) {
		t.Fatalf("unexpected bad events %v", got)
	}
}

// TestRunEmptyInputs verifies empty inputs produce no attempts.
func TestRunEmptyInputs(t *testing.T) {
	if attempts := Run(context.Background(), nil, nil, Options{Logger: zerolog.Nop()}); len(attempts) != 0 {
		t.Fatalf("expected no attempts, got %d", len(attempts))
	}
}

// TestRunCancelFinishesEveryPair verifies an interrupted run still records
// one attempt per pair.
func TestRunCancelFinishesEveryPair(t *testing.T) {
	questions := makeQuestions(question.LetterA, question.LetterB, question.LetterC)
	slow := &provider.Scripted{ProviderID: "slow", Default: "A", Delay: time.Minute}
	observer := &recordingObserver{}
	ctx, cancel := context.WithCancel(testutil.Context(t, 5*time.Second))
	defer cancel()

	done := make(chan []Attempt, 1)
	go func() {
		done <- Run(ctx, questions, []provider.Adapter{slow}, Options{Observer: observer, Logger: zerolog.Nop()})
	}()
	testutil.Eventually(t, 2*time.Second, 5*time.Millisecond, func() bool {
		types := observer.typesFor(1, "slow")
		return len(types) > 0 && types[len(types)-1] == PairRunning
	}, "first pair never started")
	cancel()

	var attempts []Attempt
	select {
	case attempts = <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("run did not stop after cancel")
	}
	if len(attempts) != len(questions) {
		t.Fatalf("expected %d attempts, got %d", len(questions), len(attempts))
	}
	for _, attempt := range attempts {
		if !attempt.Failed() || attempt.ErrorKind != ErrorKindProvider {
			t.Fatalf("expected provider error after cancel, got %+v", attempt)
		}
	}
	if slow.Calls() != 1 {
		t.Fatalf("expected later pairs to skip the provider, got %d calls", slow.Calls())
	}
}
