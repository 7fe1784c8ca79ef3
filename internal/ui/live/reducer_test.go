package live

import (
	"strings"
	"testing"
	"time"

	"mbebench/internal/evaluation"
	"mbebench/internal/question"
	"mbebench/internal/testutil"
)

func sampleGrid() State {
	questions := []question.Question{
		{ID: 7, Subject: question.Torts, Stem: "Is the driver liable?", CorrectAnswer: question.LetterA},
		{ID: 11, Subject: question.Evidence, Stem: "Is it admissible?", CorrectAnswer: question.LetterB},
	}
	providers := []evaluation.ProviderInfo{{ID: "p1", Model: "m1"}, {ID: "p2", Model: "m2"}}
	return Begin(State{}, "run-1", questions, providers)
}

// TestBeginBuildsGrid verifies the grid starts fully queued.
func TestBeginBuildsGrid(t *testing.T) {
	state := sampleGrid()
	if len(state.Rows) != 2 || len(state.Rows[0].Cells) != 2 {
		t.Fatalf("unexpected grid shape: %+v", state.Rows)
	}
	if state.Counts.Queued != 4 {
		t.Fatalf("expected 4 queued pairs, got %d", state.Counts.Queued)
	}
	if state.Rows[1].ID != 11 || state.Rows[1].Expected != question.LetterB {
		t.Fatalf("unexpected row: %+v", state.Rows[1])
	}
}

// TestReducePairLifecycle verifies core status transitions are recorded.
func TestReducePairLifecycle(t *testing.T) {
	runWithTimeout(t, time.Second, func() {
		start := time.Now()
		state := sampleGrid()
		state = Reduce(state, pair(0, 1, evaluation.PairRunning, start))
		if state.Counts.Running != 1 || state.Rows[0].Cells[1].StartedAt != start {
			t.Fatalf("expected running pair, got %+v", state.Counts)
		}
		done := pair(0, 1, evaluation.PairAnswered, start.Add(150*time.Millisecond))
		done.Letter = question.LetterA
		done.Correct = true
		done.Duration = 150 * time.Millisecond
		done.QuestionID = 7
		done.ProviderID = "p2"
		state = Reduce(state, done)

		cell := state.Rows[0].Cells[1]
		if cell.Status != evaluation.PairAnswered || cell.Letter != question.LetterA || !cell.Correct {
			t.Fatalf("unexpected cell: %+v", cell)
		}
		if state.Counts.Correct != 1 || state.Counts.Done != 1 {
			t.Fatalf("unexpected counts: %+v", state.Counts)
		}
		if state.Tallies[1].Correct != 1 || state.Tallies[0].Done != 0 {
			t.Fatalf("unexpected tallies: %+v", state.Tallies)
		}
		if !strings.Contains(state.LastEvent, "Q7 p2 answered A (correct") {
			t.Fatalf("unexpected last event %q", state.LastEvent)
		}
	})
}

// TestReduceFailures verifies failed pairs carry their error kind.
func TestReduceFailures(t *testing.T) {
	runWithTimeout(t, time.Second, func() {
		state := sampleGrid()
		failed := pair(1, 0, evaluation.PairFailed, time.Now())
		failed.ErrorKind = evaluation.ErrorKindTimeout
		failed.Error = "deadline exceeded"
		failed.Letter = question.Unparseable
		state = Reduce(state, failed)
		if state.Counts.Failed != 1 || state.Tallies[0].Failed != 1 {
			t.Fatalf("expected failure counted: %+v %+v", state.Counts, state.Tallies)
		}
		if got := formatCell(state.Rows[1].Cells[0], time.Now(), true); got != "ERR timeout" {
			t.Fatalf("unexpected cell text %q", got)
		}
	})
}

// TestReduceGrowsUnknownPairs verifies events before Begin still render.
func TestReduceGrowsUnknownPairs(t *testing.T) {
	runWithTimeout(t, time.Second, func() {
		event := pair(2, 1, evaluation.PairQueued, time.Now())
		event.ProviderID = "late"
		state := Reduce(State{}, event)
		if len(state.Rows) != 3 || len(state.Rows[2].Cells) != 2 {
			t.Fatalf("expected grid to grow: %+v", state.Rows)
		}
		if len(state.Providers) != 2 || state.Providers[1].ID != "late" {
			t.Fatalf("expected provider placeholder: %+v", state.Providers)
		}
	})
}

// TestRowsForState verifies table rows follow the provider columns.
func TestRowsForState(t *testing.T) {
	state := sampleGrid()
	answered := pair(0, 0, evaluation.PairAnswered, time.Now())
	answered.Letter = question.LetterC
	state = Reduce(state, answered)
	rows := rowsForState(state, time.Now(), 40, true)
	if len(rows) != 2 || len(rows[0]) != 6 {
		t.Fatalf("unexpected rows: %v", rows)
	}
	if rows[0][0] != "Q07" || rows[0][1] != "Torts" || rows[0][4] != "C ✗" || rows[0][5] != "·" {
		t.Fatalf("unexpected row: %v", rows[0])
	}
	if columns := columnsForState(state, 200); len(columns) != 6 || columns[5].Title != "p2" {
		t.Fatalf("unexpected columns: %+v", columns)
	}
}

// TestRunningCellShowsElapsed verifies running cells tick with the clock.
func TestRunningCellShowsElapsed(t *testing.T) {
	clock := testutil.NewFakeClock(time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC))
	state := Reduce(sampleGrid(), pair(0, 1, evaluation.PairRunning, clock.Now()))
	clock.Advance(2500 * time.Millisecond)
	if got := formatCell(state.Rows[0].Cells[1], clock.Now(), true); got != "running 2.5s" {
		t.Fatalf("unexpected running cell %q", got)
	}
	clock.Advance(time.Second)
	if got := formatCell(state.Rows[0].Cells[1], clock.Now(), true); got != "running 3.5s" {
		t.Fatalf("unexpected running cell %q", got)
	}
}

// TestControllerDropsAfterClose verifies sends never block or panic.
func TestControllerDropsAfterClose(t *testing.T) {
	controller := &Controller{events: make(chan Event, 1)}
	controller.OnPairEvent(evaluation.PairEvent{})
	controller.OnPairEvent(evaluation.PairEvent{})
	controller.OnRunEnd(nil)
	controller.OnPairEvent(evaluation.PairEvent{})
	controller.Close()
	if got := len(controller.events); got != 1 {
		t.Fatalf("expected one buffered event, got %d", got)
	}
}

// pair builds a PairEvent for testing.
func pair(questionIndex, providerIndex int, kind evaluation.PairEventType, when time.Time) evaluation.PairEvent {
	return evaluation.PairEvent{
		QuestionIndex: questionIndex,
		ProviderIndex: providerIndex,
		Type:          kind,
		EmittedAt:     when,
	}
}

// runWithTimeout executes a test body with a timeout.
func runWithTimeout(t *testing.T, timeout time.Duration, fn func()) {
	t.Helper()
	ctx := testutil.Context(t, timeout)
	done := make(chan struct{})
	go func() {
		defer close(done)
		fn()
	}()
	select {
	case <-done:
	case <-ctx.Done():
		t.Fatalf("test timed out")
	}
}
