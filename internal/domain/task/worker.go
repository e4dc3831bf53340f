package task

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"
)

// worker runs a single admitted task's controller call to completion,
// translating its outcome into a store transition. Per spec.md §4.8, it
// always clears its own slot at exit regardless of outcome — that
// bookkeeping lives in Scheduler.runWorker's deferred cleanup, so worker
// itself only needs to concern itself with the task's own lifecycle.
type worker struct {
	store  *Store
	runner Runner
}

func (w *worker) run(ctx context.Context, t *Task) {
	onProgress := func(progress int) {
		if err := w.store.SetProgress(t.ID, progress); err != nil && !errors.Is(err, ErrTerminal) {
			log.Warn().Str("task_id", t.ID).Err(err).Msg("failed to record task progress")
		}
	}

	result, err := w.runner.Run(ctx, t, onProgress)

	switch {
	case err == nil:
		if tErr := w.store.Transition(t.ID, StatusCompleted, result, "", nil); tErr != nil {
			log.Error().Str("task_id", t.ID).Err(tErr).Msg("failed to mark task completed")
		}

	case errors.Is(err, context.Canceled):
		// Either the scheduler's context was cancelled by a user-initiated
		// cancel, or the task was already transitioned to cancelled directly
		// by the Task Store's Cancel; either way there's nothing left to do.

	case errors.Is(err, context.DeadlineExceeded):
		if tErr := w.store.Transition(t.ID, StatusFailed, nil, "timeout", nil); tErr != nil {
			log.Error().Str("task_id", t.ID).Err(tErr).Msg("failed to mark task failed on timeout")
		}

	default:
		if tErr := w.store.Transition(t.ID, StatusFailed, nil, err.Error(), nil); tErr != nil {
			log.Error().Str("task_id", t.ID).Err(tErr).Msg("failed to mark task failed")
		}
	}
}
