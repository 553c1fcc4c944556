// Package pipeline runs the three processing stages (fetch, filter,
// analyze) under per-stage pollers coordinated by a Supervisor.
package pipeline

import (
	"context"
	"errors"
)

var (
	// ErrAlreadyRunning is returned by StartAll when pollers are
	// registered from a previous start.
	ErrAlreadyRunning = errors.New("pipeline already running")

	// ErrNothingRunning is returned by StopAll when no pollers are
	// registered.
	ErrNothingRunning = errors.New("no pipeline running")
)

// Outcome classifies one stage iteration.
type Outcome int

const (
	OutcomeSuccess Outcome = iota
	OutcomeSkipped
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeSkipped:
		return "skipped"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// StageResult is the tagged outcome of a single stage iteration. A
// failed iteration never kills its poller; the result only steers the
// next delay.
type StageResult struct {
	Outcome    Outcome
	SkipReason string // set when Outcome is OutcomeSkipped
	RetryNow   bool   // the poller should go again without sleeping
	Err        error  // set when Outcome is OutcomeFailed
}

func success() StageResult {
	return StageResult{Outcome: OutcomeSuccess}
}

func skipped(reason string, retryNow bool) StageResult {
	return StageResult{Outcome: OutcomeSkipped, SkipReason: reason, RetryNow: retryNow}
}

func failed(err error) StageResult {
	return StageResult{Outcome: OutcomeFailed, Err: err}
}

// Stage is one idempotent unit of pipeline work.
type Stage interface {
	Name() string
	Run(ctx context.Context) StageResult
}
