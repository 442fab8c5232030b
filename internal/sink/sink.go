// Package sink receives the outcomes of a search run.
package sink

import (
	"sync"

	"github.com/standardbeagle/jsps/internal/types"
)

// Sink is the consumer of one run. OnResult is called concurrently from the
// run's workers with every failure and every reportable success.
type Sink interface {
	OnRunStart(runID string)
	OnResult(outcome types.Outcome)
	OnRunEnd(stats types.RunStats)
}

// Multi fans every event out to each sink in order
type Multi []Sink

func (m Multi) OnRunStart(runID string) {
	for _, s := range m {
		s.OnRunStart(runID)
	}
}

func (m Multi) OnResult(outcome types.Outcome) {
	for _, s := range m {
		s.OnResult(outcome)
	}
}

func (m Multi) OnRunEnd(stats types.RunStats) {
	for _, s := range m {
		s.OnRunEnd(stats)
	}
}

// Collector keeps the results of the most recent run in memory
type Collector struct {
	mu       sync.Mutex
	runID    string
	results  []types.Outcome
	failures []types.Outcome
	stats    *types.RunStats
}

// NewCollector creates an empty collector
func NewCollector() *Collector {
	return &Collector{}
}

// OnRunStart discards everything collected for a previous run
func (c *Collector) OnRunStart(runID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.runID = runID
	c.results = nil
	c.failures = nil
	c.stats = nil
}

func (c *Collector) OnResult(outcome types.Outcome) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if outcome.IsFailure() {
		c.failures = append(c.failures, outcome)
		return
	}
	c.results = append(c.results, outcome)
}

func (c *Collector) OnRunEnd(stats types.RunStats) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stats = &stats
}

// Snapshot is a point-in-time copy of a Collector
type Snapshot struct {
	RunID    string
	Results  []types.Outcome
	Failures []types.Outcome
	Stats    *types.RunStats // nil until the run ends
}

// Snapshot copies the collected state. Results arrive in completion order.
func (c *Collector) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	snap := Snapshot{
		RunID:    c.runID,
		Results:  append([]types.Outcome(nil), c.results...),
		Failures: append([]types.Outcome(nil), c.failures...),
	}
	if c.stats != nil {
		stats := *c.stats
		snap.Stats = &stats
	}
	return snap
}

// Results returns the reportable successes collected so far
func (c *Collector) Results() []types.Outcome {
	return c.Snapshot().Results
}

// Failures returns the per-file failures collected so far
func (c *Collector) Failures() []types.Outcome {
	return c.Snapshot().Failures
}
