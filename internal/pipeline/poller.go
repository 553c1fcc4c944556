package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"telanews/internal/metrics"
	"telanews/internal/store"
)

// IntervalPolicy decides how long a poller sleeps after an iteration.
// Returning zero means run the next iteration immediately.
type IntervalPolicy func(StageResult) time.Duration

// FetchPolicy sleeps a flat interval regardless of outcome.
func FetchPolicy(interval time.Duration) IntervalPolicy {
	return func(StageResult) time.Duration {
		return interval
	}
}

// FilterPolicy retries immediately after a skip on unmet editorial
// criteria, since the queue head advanced and the next candidate may
// qualify. Every other outcome sleeps the configured interval.
func FilterPolicy(interval time.Duration) IntervalPolicy {
	return func(res StageResult) time.Duration {
		if res.Outcome == OutcomeSkipped && res.RetryNow {
			return 0
		}
		return interval
	}
}

// AnalyzePolicy sleeps the short retry interval after a failure and the
// longer interval after a completed rewrite.
func AnalyzePolicy(successInterval, retryInterval time.Duration) IntervalPolicy {
	return func(res StageResult) time.Duration {
		if res.Outcome == OutcomeFailed {
			return retryInterval
		}
		return successInterval
	}
}

// Poller runs one stage on a loop until its context is cancelled.
type Poller struct {
	stage      Stage
	policy     IntervalPolicy
	log        *slog.Logger
	iterations atomic.Int64
	running    atomic.Bool
}

func NewPoller(stage Stage, policy IntervalPolicy, log *slog.Logger) *Poller {
	return &Poller{stage: stage, policy: policy, log: log}
}

func (p *Poller) Name() string { return p.stage.Name() }

// Iterations reports how many stage runs have completed.
func (p *Poller) Iterations() int64 { return p.iterations.Load() }

// IsRunning reports whether the loop is currently executing.
func (p *Poller) IsRunning() bool { return p.running.Load() }

// Run loops the stage until ctx is cancelled. Sleeps race cancellation,
// so shutdown never waits out an interval.
func (p *Poller) Run(ctx context.Context) {
	p.running.Store(true)
	defer p.running.Store(false)

	p.log.Info("poller started", "stage", p.stage.Name())
	for {
		select {
		case <-ctx.Done():
			p.log.Info("poller stopped", "stage", p.stage.Name())
			return
		default:
		}

		started := time.Now()
		res := p.stage.Run(ctx)
		p.iterations.Add(1)
		metrics.Global.RecordIterationTime(time.Since(started))

		switch res.Outcome {
		case OutcomeSuccess:
			metrics.Global.SetLastRun()
			p.log.Debug("iteration completed", "stage", p.stage.Name())
		case OutcomeSkipped:
			metrics.Global.SetLastRun()
			p.log.Debug("iteration skipped", "stage", p.stage.Name(), "reason", res.SkipReason)
		case OutcomeFailed:
			// An empty queue is idle, not unhealthy.
			if res.Err != nil && !errors.Is(res.Err, store.ErrNoWork) {
				metrics.Global.SetError(res.Err.Error())
			}
			p.log.Debug("iteration failed", "stage", p.stage.Name(), "error", res.Err)
		}

		delay := p.policy(res)
		if delay <= 0 {
			continue
		}
		select {
		case <-ctx.Done():
			p.log.Info("poller stopped", "stage", p.stage.Name())
			return
		case <-time.After(delay):
		}
	}
}
