// Package metrics exports run outcomes as Prometheus collectors.
package metrics

import (
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"mbebench/internal/evaluation"
	"mbebench/internal/question"
	"mbebench/internal/report"
)

const (
	outcomeCorrect   = "correct"
	outcomeIncorrect = "incorrect"
)

// Recorder is an evaluation.Observer backed by its own registry.
type Recorder struct {
	registry *prometheus.Registry
	attempts *prometheus.CounterVec
	duration *prometheus.HistogramVec
	accuracy *prometheus.GaugeVec
	runs     prometheus.Counter

	mu        sync.Mutex
	questions []question.Question
}

// NewRecorder registers the run collectors on a fresh registry.
func NewRecorder() *Recorder {
	recorder := &Recorder{
		registry: prometheus.NewRegistry(),
		attempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mbebench_attempts_total",
			Help: "Provider attempts by outcome.",
		}, []string{"provider", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "mbebench_attempt_duration_seconds",
			Help:    "Latency distribution of provider calls.",
			Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 20, 30, 60},
		}, []string{"provider"}),
		accuracy: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "mbebench_accuracy_ratio",
			Help: "Share of questions answered correctly in the last run.",
		}, []string{"provider"}),
		runs: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mbebench_runs_total",
			Help: "Completed evaluation runs.",
		}),
	}
	recorder.registry.MustRegister(recorder.attempts, recorder.duration, recorder.accuracy, recorder.runs)
	return recorder
}

// Registry exposes the underlying gatherer.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// OnRunStart remembers the question set for accuracy at run end.
func (r *Recorder) OnRunStart(_ string, questions []question.Question, _ []evaluation.ProviderInfo) {
	r.mu.Lock()
	r.questions = questions
	r.mu.Unlock()
}

// OnPairEvent counts finished attempts.
func (r *Recorder) OnPairEvent(event evaluation.PairEvent) {
	var outcome string
	switch event.Type {
	case evaluation.PairAnswered:
		outcome = outcomeIncorrect
		if event.Correct {
			outcome = outcomeCorrect
		}
	case evaluation.PairFailed:
		outcome = string(event.ErrorKind)
		if outcome == "" {
			outcome = string(evaluation.ErrorKindProvider)
		}
	default:
		return
	}
	r.attempts.WithLabelValues(event.ProviderID, outcome).Inc()
	r.duration.WithLabelValues(event.ProviderID).Observe(event.Duration.Seconds())
}

// OnRunEnd publishes per-provider accuracy.
func (r *Recorder) OnRunEnd(attempts []evaluation.Attempt) {
	r.mu.Lock()
	questions := r.questions
	r.mu.Unlock()
	r.ObserveSummary(report.Summarize(questions, attempts))
	r.runs.Inc()
}

// ObserveSummary sets the accuracy gauges from a summary.
func (r *Recorder) ObserveSummary(summary report.Summary) {
	for _, score := range summary.Providers {
		r.accuracy.WithLabelValues(score.ProviderID).Set(score.Accuracy)
	}
}

// WriteTextfile writes the registry in the node_exporter textfile format.
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("write metrics: %w", err)
	}
	return nil
}
