package provider

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"mbebench/internal/question"
)

// Scripted is a deterministic in-memory adapter. Answers are raw answer
// strings keyed by question id and pass through the same schema guard as
// vendor payloads.
type Scripted struct {
	ProviderID string
	ModelName  string
	OutputMode OutputMode
	Answers    map[int]string
	Errors     map[int]error
	// Default is used for questions missing from Answers.
	Default string
	Delay   time.Duration

	calls atomic.Int64
}

// NewStub builds the scripted adapter used by the stub provider type.
func NewStub(settings Settings) *Scripted {
	answer := string(question.LetterA)
	if letter, ok := question.ParseLetter(settings.StubAnswer); ok {
		answer = string(letter)
	}
	return &Scripted{
		ProviderID: settings.ID,
		ModelName:  settings.Model,
		OutputMode: settings.Mode,
		Default:    answer,
	}
}

func (s *Scripted) ID() string    { return s.ProviderID }
func (s *Scripted) Model() string { return s.ModelName }

func (s *Scripted) Mode() OutputMode {
	if s.OutputMode == "" {
		return ModeJSONSchema
	}
	return s.OutputMode
}

// Calls returns the number of Answer invocations.
func (s *Scripted) Calls() int {
	return int(s.calls.Load())
}

// Answer returns the scripted outcome for the question.
func (s *Scripted) Answer(ctx context.Context, item question.Question) (Response, error) {
	s.calls.Add(1)
	if s.Delay > 0 {
		timer := time.NewTimer(s.Delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return Response{}, &ProviderError{Provider: s.ProviderID, Err: ctx.Err()}
		case <-timer.C:
		}
	}
	if err, ok := s.Errors[item.ID]; ok {
		return Response{}, err
	}
	answer, ok := s.Answers[item.ID]
	if !ok {
		answer = s.Default
	}
	return decodeAnswer(s.ProviderID, fmt.Sprintf(`{"answer":%q}`, answer))
}
