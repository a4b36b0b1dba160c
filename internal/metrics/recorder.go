// Package metrics provides observability hooks for page composition and
// site builds. Components receive a Recorder by injection; the default
// NoopRecorder makes metrics collection strictly opt-in.
package metrics

import "time"

// OutcomeLabel enumerates per-page composition outcomes for counters.
type OutcomeLabel string

const (
	OutcomeSuccess OutcomeLabel = "success"
	OutcomeWarning OutcomeLabel = "warning"
	OutcomeFailed  OutcomeLabel = "failed"
	OutcomeSkipped OutcomeLabel = "skipped"
)

// Recorder defines observability hooks for build and page metrics.
// Implementations must tolerate nil receivers so injection stays optional.
type Recorder interface {
	ObserveComposeDuration(d time.Duration)
	ObserveBuildDuration(d time.Duration)
	IncPageOutcome(outcome OutcomeLabel)
	AddWarnings(n int)
	SetPagesTotal(n int)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveComposeDuration(time.Duration) {}
func (NoopRecorder) ObserveBuildDuration(time.Duration)   {}
func (NoopRecorder) IncPageOutcome(OutcomeLabel)          {}
func (NoopRecorder) AddWarnings(int)                      {}
func (NoopRecorder) SetPagesTotal(int)                    {}
