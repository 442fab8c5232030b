package run

import (
	"context"

	"github.com/google/uuid"

	"github.com/standardbeagle/jsps/internal/sink"
)

// RunContext carries everything one run reports to or is controlled by.
// A new one is built per run.
type RunContext struct {
	ID        string
	Ctx       context.Context
	Sink      sink.Sink
	Progress  ProgressFunc
	Confirmer Confirmer
}

// NewRunContext creates a run context with a fresh run id.
// A nil confirmer declines every confirmation.
func NewRunContext(ctx context.Context, s sink.Sink, progress ProgressFunc, confirmer Confirmer) *RunContext {
	if confirmer == nil {
		confirmer = Static{}
	}
	if s == nil {
		s = sink.NewCollector()
	}
	return &RunContext{
		ID:        uuid.NewString(),
		Ctx:       ctx,
		Sink:      s,
		Progress:  progress,
		Confirmer: confirmer,
	}
}

// Cancelled reports whether the run's context has ended.
// It is the single cancellation check made for each file before reading it.
func (rc *RunContext) Cancelled() bool {
	return rc.Ctx.Err() != nil
}
