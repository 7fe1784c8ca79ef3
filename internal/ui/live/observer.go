package live

import (
	"io"
	"os"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"mbebench/internal/evaluation"
	"mbebench/internal/question"
)

// Controller runs the live UI and implements evaluation.Observer.
type Controller struct {
	events    chan Event
	program   *tea.Program
	done      chan struct{}
	mu        sync.Mutex
	closed    bool
}

// Start launches a live UI controller that writes to stdout.
func Start(stdout io.Writer, opts Options) *Controller {
	if stdout == nil {
		stdout = os.Stdout
	}
	events := make(chan Event, 1024)
	model := NewModel(events, opts)
	program := tea.NewProgram(model, tea.WithOutput(stdout), tea.WithAltScreen())
	controller := &Controller{
		events:  events,
		program: program,
		done:    make(chan struct{}),
	}
	go func() {
		_, _ = program.Run()
		close(controller.done)
	}()
	return controller
}

// Close signals the UI to stop.
func (c *Controller) Close() {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.events)
}

// Wait blocks until the UI has exited.
func (c *Controller) Wait() {
	if c == nil || c.done == nil {
		return
	}
	<-c.done
}

// OnRunStart forwards run start events to the UI.
func (c *Controller) OnRunStart(runID string, questions []question.Question, providers []evaluation.ProviderInfo) {
	c.send(Event{Kind: EventRunStart, RunID: runID, Questions: questions, Providers: providers})
}

// OnPairEvent forwards pair status updates to the UI.
func (c *Controller) OnPairEvent(event evaluation.PairEvent) {
	c.send(Event{Kind: EventPair, Pair: event})
}

// OnRunEnd forwards run completion to the UI and closes it.
func (c *Controller) OnRunEnd(_ []evaluation.Attempt) {
	c.send(Event{Kind: EventRunEnd})
	c.Close()
}

// send enqueues an event without blocking the caller. Events are dropped
// when the buffer is full or the UI has been closed.
func (c *Controller) send(event Event) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.events <- event:
	default:
	}
}
