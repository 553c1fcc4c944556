package pipeline

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

type countingStage struct {
	name string
	runs atomic.Int64
	res  StageResult
}

func (s *countingStage) Name() string { return s.name }

func (s *countingStage) Run(ctx context.Context) StageResult {
	s.runs.Add(1)
	return s.res
}

func TestFetchPolicyFlat(t *testing.T) {
	policy := FetchPolicy(180 * time.Second)
	for _, res := range []StageResult{success(), failed(context.Canceled), skipped("x", true)} {
		if got := policy(res); got != 180*time.Second {
			t.Errorf("policy(%v) = %v, want 180s", res.Outcome, got)
		}
	}
}

func TestFilterPolicyImmediateRetry(t *testing.T) {
	policy := FilterPolicy(120 * time.Second)

	if got := policy(skipped("not news content", true)); got != 0 {
		t.Errorf("criteria skip should retry immediately, got %v", got)
	}
	if got := policy(skipped("duplicate detected", false)); got != 120*time.Second {
		t.Errorf("duplicate skip should sleep, got %v", got)
	}
	if got := policy(success()); got != 120*time.Second {
		t.Errorf("success should sleep, got %v", got)
	}
	if got := policy(failed(context.Canceled)); got != 120*time.Second {
		t.Errorf("failure should sleep, got %v", got)
	}
}

func TestAnalyzePolicyIntervals(t *testing.T) {
	policy := AnalyzePolicy(180*time.Second, 60*time.Second)

	if got := policy(success()); got != 180*time.Second {
		t.Errorf("success interval = %v, want 180s", got)
	}
	if got := policy(failed(context.Canceled)); got != 60*time.Second {
		t.Errorf("retry interval = %v, want 60s", got)
	}
}

func TestPollerStopsOnCancel(t *testing.T) {
	stage := &countingStage{name: "test", res: success()}
	p := NewPoller(stage, FetchPolicy(time.Hour), discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		p.Run(ctx)
		close(done)
	}()

	// First iteration runs, then the poller parks on the interval.
	deadline := time.After(2 * time.Second)
	for stage.runs.Load() == 0 {
		select {
		case <-deadline:
			t.Fatal("stage never ran")
		default:
			time.Sleep(time.Millisecond)
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("poller did not stop after cancel")
	}

	if p.IsRunning() {
		t.Errorf("poller still reports running after return")
	}
	if p.Iterations() != stage.runs.Load() {
		t.Errorf("iterations = %d, stage runs = %d", p.Iterations(), stage.runs.Load())
	}
}

func TestPollerImmediateRetryLoops(t *testing.T) {
	stage := &countingStage{name: "test", res: skipped("not news content", true)}
	p := NewPoller(stage, FilterPolicy(time.Hour), discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		p.Run(ctx)
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for stage.runs.Load() < 5 {
		select {
		case <-deadline:
			t.Fatalf("only %d runs under immediate retry", stage.runs.Load())
		default:
			time.Sleep(time.Millisecond)
		}
	}

	cancel()
	<-done
}
