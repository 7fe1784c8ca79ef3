package evaluation

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"mbebench/internal/provider"
	"mbebench/internal/question"
)

// Options tunes a single evaluation pass.
type Options struct {
	RunID string
	// Workers above one enables bounded parallel dispatch.
	Workers int
	// Timeout bounds each provider call; zero disables it.
	Timeout  time.Duration
	Observer Observer
	Logger   zerolog.Logger
}

// Providers describes adapters for run metadata.
func Providers(adapters []provider.Adapter) []ProviderInfo {
	infos := make([]ProviderInfo, 0, len(adapters))
	for _, adapter := range adapters {
		infos = append(infos, ProviderInfo{ID: adapter.ID(), Model: adapter.Model(), Mode: string(adapter.Mode())})
	}
	return infos
}

// Run asks every adapter every question and returns one attempt per pair in
// question-major order. Individual failures are recorded, never returned.
func Run(ctx context.Context, questions []question.Question, adapters []provider.Adapter, opts Options) []Attempt {
	observer := &lockedObserver{inner: opts.Observer}
	logger := opts.Logger
	observer.runStart(opts.RunID, questions, Providers(adapters))

	attempts := make([]Attempt, len(questions)*len(adapters))
	for qi, item := range questions {
		for pi, adapter := range adapters {
			observer.pairEvent(PairEvent{
				QuestionIndex: qi,
				QuestionID:    item.ID,
				ProviderIndex: pi,
				ProviderID:    adapter.ID(),
				Type:          PairQueued,
			})
		}
	}

	pair := func(qi, pi int) {
		attempts[qi*len(adapters)+pi] = runPair(ctx, questions[qi], qi, adapters[pi], pi, opts.Timeout, observer, logger)
	}

	if opts.Workers <= 1 {
		for qi := range questions {
			for pi := range adapters {
				pair(qi, pi)
			}
		}
	} else {
		var group errgroup.Group
		group.SetLimit(opts.Workers)
		for qi := range questions {
			for pi := range adapters {
				group.Go(func() error {
					pair(qi, pi)
					return nil
				})
			}
		}
		_ = group.Wait()
	}

	observer.runEnd(attempts)
	return attempts
}

func runPair(
	ctx context.Context,
	item question.Question,
	questionIndex int,
	adapter provider.Adapter,
	providerIndex int,
	timeout time.Duration,
	observer *lockedObserver,
	logger zerolog.Logger,
) Attempt {
	event := PairEvent{
		QuestionIndex: questionIndex,
		QuestionID:    item.ID,
		ProviderIndex: providerIndex,
		ProviderID:    adapter.ID(),
	}
	attempt := Attempt{
		QuestionID: item.ID,
		ProviderID: adapter.ID(),
		Model:      adapter.Model(),
	}

	event.Type = PairRunning
	observer.pairEvent(event)

	callCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	start := time.Now()
	var (
		resp provider.Response
		err  error
	)
	if ctx.Err() != nil {
		err = &provider.ProviderError{Provider: adapter.ID(), Err: ctx.Err()}
	} else {
		resp, err = adapter.Answer(callCtx, item)
	}
	attempt.Duration = time.Since(start)
	if err == nil && !resp.Letter.Valid() {
		err = &provider.UnparseableResponseError{Provider: adapter.ID(), Raw: resp.Raw, Reason: "adapter returned no letter"}
	}
	event.Duration = attempt.Duration

	if err != nil {
		attempt.Letter = question.Unparseable
		attempt.ErrorKind, err = classify(adapter.ID(), err)
		attempt.Error = err.Error()
		var unparseable *provider.UnparseableResponseError
		if errors.As(err, &unparseable) {
			attempt.RawResponse = unparseable.Raw
		}
		pairLog(logger, attempt).Msg("answer failed")

		event.Type = PairFailed
		event.Letter = question.Unparseable
		event.ErrorKind = attempt.ErrorKind
		event.Error = attempt.Error
		observer.pairEvent(event)
		return attempt
	}

	attempt.Letter = resp.Letter
	attempt.RawResponse = resp.Raw
	logger.Debug().
		Int("question", item.ID).
		Str("provider", adapter.ID()).
		Str("letter", string(resp.Letter)).
		Dur("duration", attempt.Duration).
		Msg("answer received")

	event.Type = PairAnswered
	event.Letter = resp.Letter
	event.Correct = resp.Letter == item.CorrectAnswer
	observer.pairEvent(event)
	return attempt
}

// classify normalizes adapter errors so every failure is a ProviderError or
// an UnparseableResponseError.
func classify(providerID string, err error) (ErrorKind, error) {
	var unparseable *provider.UnparseableResponseError
	if errors.As(err, &unparseable) {
		return ErrorKindUnparseable, err
	}
	var providerErr *provider.ProviderError
	if !errors.As(err, &providerErr) {
		err = &provider.ProviderError{Provider: providerID, Err: err}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrorKindTimeout, err
	}
	return ErrorKindProvider, err
}

func pairLog(logger zerolog.Logger, attempt Attempt) *zerolog.Event {
	return logger.Error().
		Int("question", attempt.QuestionID).
		Str("provider", attempt.ProviderID).
		Str("kind", string(attempt.ErrorKind)).
		Str("error", attempt.Error)
}
