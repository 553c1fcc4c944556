package pipeline

import (
	"context"
	"log/slog"
	"sync"
)

// Supervisor owns the configured pollers and starts or stops them as a
// unit. The registry tracks which pollers were launched; StopAll
// cancels their shared context and clears the registry right away
// instead of waiting for each loop to observe cancellation.
type Supervisor struct {
	mu         sync.Mutex
	configured []*Poller
	registry   map[string]*Poller
	cancel     context.CancelFunc
	wg         sync.WaitGroup
	log        *slog.Logger
}

func NewSupervisor(pollers []*Poller, log *slog.Logger) *Supervisor {
	return &Supervisor{
		configured: pollers,
		registry:   make(map[string]*Poller),
		log:        log,
	}
}

// StartAll launches every configured poller under a context derived
// from ctx. Returns ErrAlreadyRunning when a previous StartAll has not
// been stopped.
func (s *Supervisor) StartAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.registry) > 0 {
		return ErrAlreadyRunning
	}

	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	for _, p := range s.configured {
		s.registry[p.Name()] = p
		s.wg.Add(1)
		go func(p *Poller) {
			defer s.wg.Done()
			p.Run(runCtx)
		}(p)
	}

	s.log.Info("pipeline started", "pollers", len(s.configured))
	return nil
}

// StopAll cancels the running pollers and forgets them. Loops still in
// an iteration finish it on their own time; the supervisor does not
// wait here. Returns ErrNothingRunning when nothing was started.
func (s *Supervisor) StopAll() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.registry) == 0 {
		return ErrNothingRunning
	}

	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.registry = make(map[string]*Poller)

	s.log.Info("pipeline stopped")
	return nil
}

// Wait blocks until every launched poller loop has returned. Meant for
// process shutdown, after StopAll.
func (s *Supervisor) Wait() {
	s.wg.Wait()
}

// Status reports, per configured poller, whether it is registered as
// started, whether its loop is live, and its iteration count.
func (s *Supervisor) Status() map[string]map[string]interface{} {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]map[string]interface{}, len(s.configured))
	for _, p := range s.configured {
		_, registered := s.registry[p.Name()]
		out[p.Name()] = map[string]interface{}{
			"registered": registered,
			"running":    p.IsRunning(),
			"iterations": p.Iterations(),
		}
	}
	return out
}
