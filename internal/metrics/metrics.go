package metrics

import (
	"sync"
	"time"
)

type Metrics struct {
	mu sync.RWMutex

	// Counters
	ItemsFetched      int64
	ItemsInserted     int64
	FilterAccepted    int64
	FilterSkipped     int64
	FilterFailures    int64
	RewritesCompleted int64
	RewriteFailures   int64
	PostersGenerated  int64

	// Skip reasons seen by the filter stage
	SkipReasons map[string]int64

	// Timings
	LastIterationTime    time.Duration
	AverageIterationTime time.Duration
	TotalIterationTime   time.Duration
	IterationCount       int64

	// Status
	LastRunTime   time.Time
	LastErrorTime time.Time
	LastError     string
	IsHealthy     bool
}

var Global = &Metrics{IsHealthy: true, SkipReasons: make(map[string]int64)}

func (m *Metrics) AddItemsFetched(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ItemsFetched += int64(n)
}

func (m *Metrics) AddItemsInserted(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ItemsInserted += int64(n)
}

func (m *Metrics) IncrementFilterAccepted() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FilterAccepted++
}

func (m *Metrics) IncrementFilterSkipped(reason string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FilterSkipped++
	if m.SkipReasons == nil {
		m.SkipReasons = make(map[string]int64)
	}
	m.SkipReasons[reason]++
}

func (m *Metrics) IncrementFilterFailures() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FilterFailures++
}

func (m *Metrics) IncrementRewritesCompleted() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RewritesCompleted++
}

func (m *Metrics) IncrementRewriteFailures() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RewriteFailures++
}

func (m *Metrics) IncrementPostersGenerated() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PostersGenerated++
}

func (m *Metrics) RecordIterationTime(duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.LastIterationTime = duration
	m.TotalIterationTime += duration
	m.IterationCount++

	if m.IterationCount > 0 {
		m.AverageIterationTime = m.TotalIterationTime / time.Duration(m.IterationCount)
	}
}

func (m *Metrics) SetLastRun() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastRunTime = time.Now()
	m.IsHealthy = true
}

func (m *Metrics) SetError(err string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastError = err
	m.LastErrorTime = time.Now()
	m.IsHealthy = false
}

func (m *Metrics) GetStats() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	reasons := make(map[string]int64, len(m.SkipReasons))
	for k, v := range m.SkipReasons {
		reasons[k] = v
	}

	return map[string]interface{}{
		"items_fetched":             m.ItemsFetched,
		"items_inserted":            m.ItemsInserted,
		"filter_accepted":           m.FilterAccepted,
		"filter_skipped":            m.FilterSkipped,
		"filter_failures":           m.FilterFailures,
		"skip_reasons":              reasons,
		"rewrites_completed":        m.RewritesCompleted,
		"rewrite_failures":          m.RewriteFailures,
		"posters_generated":         m.PostersGenerated,
		"last_iteration_time_ms":    m.LastIterationTime.Milliseconds(),
		"average_iteration_time_ms": m.AverageIterationTime.Milliseconds(),
		"last_run_time":             m.LastRunTime.Format(time.RFC3339),
		"last_error_time":           m.LastErrorTime.Format(time.RFC3339),
		"last_error":                m.LastError,
		"is_healthy":                m.IsHealthy,
	}
}
