package run

import (
	"sync/atomic"
	"time"

	"github.com/standardbeagle/jsps/internal/types"
)

// ProgressFunc receives the completed fraction of a run, in (0, 1].
// It is called from worker goroutines.
type ProgressFunc func(fraction float64)

// Progress is a snapshot of a ProgressTracker
type Progress struct {
	Total          int
	Completed      int
	Fraction       float64
	Elapsed        time.Duration
	FilesPerSecond float64
}

// ProgressTracker counts completed files and reports at evenly spaced steps
type ProgressTracker struct {
	total     int64
	step      int64
	completed atomic.Int64
	startTime time.Time
	report    ProgressFunc
}

// NewProgressTracker creates a tracker for total files. report may be nil.
// Reports fire every max(total/ProgressSteps, 1) completions.
func NewProgressTracker(total int, report ProgressFunc) *ProgressTracker {
	step := int64(total / types.ProgressSteps)
	if step < 1 {
		step = 1
	}
	return &ProgressTracker{
		total:     int64(total),
		step:      step,
		startTime: time.Now(),
		report:    report,
	}
}

// IncrementCompleted records one finished file
func (pt *ProgressTracker) IncrementCompleted() {
	done := pt.completed.Add(1)
	if pt.report == nil || pt.total == 0 {
		return
	}
	if done%pt.step == 0 {
		pt.report(float64(done) / float64(pt.total))
	}
}

// GetProgress returns the current progress
func (pt *ProgressTracker) GetProgress() Progress {
	done := pt.completed.Load()
	elapsed := time.Since(pt.startTime)

	p := Progress{
		Total:     int(pt.total),
		Completed: int(done),
		Elapsed:   elapsed,
	}
	if pt.total > 0 {
		p.Fraction = float64(done) / float64(pt.total)
	}
	if done > 0 && elapsed > 0 {
		p.FilesPerSecond = float64(done) / elapsed.Seconds()
	}
	return p
}
