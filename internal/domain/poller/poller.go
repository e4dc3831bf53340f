// Package poller implements the Smart Poller state machine described in
// spec.md §4.4: it drives a caller-supplied status-fetch closure until a
// terminal state, a cancel signal, or a deadline, reporting monotone
// progress as it goes.
//
// This package is intentionally stdlib-only (time.Timer, no backoff
// library) — see DESIGN.md for why a generic retry library would add
// indirection without buying anything for a fixed, spec-mandated interval
// schedule.
package poller

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// State is the terminal/non-terminal classification upstream reports.
type State string

const (
	StateRunning   State = "running"
	StateCompleted State = "completed"
	StateFailed    State = "failed"
)

// Status is the parsed result of a single status-fetch call.
type Status struct {
	State         State
	FailCode      int
	ItemCount     int
	FinishTime    int64
	CorrelationID string
}

// isTerminal reports completion per spec.md §4.4: itemCount >= expected AND
// state indicates success, OR finishTime > 0.
func (s Status) isTerminal(expected int) bool {
	if s.FinishTime > 0 {
		return true
	}
	return s.State == StateCompleted && s.ItemCount >= expected
}

// FetchFunc is the caller-supplied status closure. data is opaque to the
// poller and returned verbatim from Run on completion.
type FetchFunc func(ctx context.Context) (Status, interface{}, error)

// ProgressFunc receives the poller's monotone progress estimate
// (0-95 until terminal, 100 on success) after each poll.
type ProgressFunc func(progress int)

// Kind selects the interval schedule: images poll frequently, video more
// slowly.
type Kind string

const (
	KindImage Kind = "image"
	KindVideo Kind = "video"
)

// Config configures a single poll run.
type Config struct {
	Kind          Kind
	ExpectedItems int
	MaxPollCount  int // 0 means use the type default (image 900, video 300)
	Deadline      time.Duration
	OnProgress    ProgressFunc
}

// Result is returned by Run on success.
type Result struct {
	Data      interface{}
	Status    Status
	Elapsed   time.Duration
	PollCount int
}

var (
	// ErrUpstreamGenerationFailed is returned when the upstream reports a
	// non-zero failCode.
	ErrUpstreamGenerationFailed = errors.New("poller: upstream generation failed")
	// ErrPollTimeout is returned when the deadline or poll-count budget is
	// exhausted before a terminal state is observed.
	ErrPollTimeout = errors.New("poller: exceeded poll budget")
	// ErrCancelled is returned when the cancel signal fires between polls.
	ErrCancelled = errors.New("poller: cancelled")
)

func defaultMaxPollCount(kind Kind) int {
	if kind == KindVideo {
		return 300
	}
	return 900
}

// Run drives fetch until a terminal state, error, cancellation (via ctx),
// or budget exhaustion.
func Run(ctx context.Context, cfg Config, fetch FetchFunc) (Result, error) {
	maxPolls := cfg.MaxPollCount
	if maxPolls <= 0 {
		maxPolls = defaultMaxPollCount(cfg.Kind)
	}

	deadlineCtx := ctx
	var cancel context.CancelFunc
	if cfg.Deadline > 0 {
		deadlineCtx, cancel = context.WithTimeout(ctx, cfg.Deadline)
		defer cancel()
	}

	start := time.Now()
	schedule := newSchedule(cfg.Kind)

	for pollCount := 1; pollCount <= maxPolls; pollCount++ {
		if err := deadlineCtx.Err(); err != nil {
			return Result{}, classifyContextErr(ctx, err)
		}

		status, data, err := fetch(deadlineCtx)
		if err != nil {
			schedule.recordFailure()
			if waitErr := sleepOrDone(deadlineCtx, schedule.next()); waitErr != nil {
				return Result{}, classifyContextErr(ctx, waitErr)
			}
			continue
		}
		schedule.recordSuccess()

		if status.FailCode != 0 {
			return Result{}, wrapUpstreamFailure(status.FailCode)
		}

		progress := estimateProgress(pollCount, maxPolls, status, cfg.ExpectedItems, status.isTerminal(cfg.ExpectedItems))
		if cfg.OnProgress != nil {
			cfg.OnProgress(progress)
		}

		if status.isTerminal(cfg.ExpectedItems) {
			return Result{Data: data, Status: status, Elapsed: time.Since(start), PollCount: pollCount}, nil
		}

		if waitErr := sleepOrDone(deadlineCtx, schedule.next()); waitErr != nil {
			return Result{}, classifyContextErr(ctx, waitErr)
		}
	}

	return Result{}, ErrPollTimeout
}

func wrapUpstreamFailure(failCode int) error {
	return &UpstreamFailureError{FailCode: failCode}
}

// UpstreamFailureError carries the upstream fail_code for the caller to
// surface in the task's error field (spec.md S5 expects "fail_code=5000"
// style messages).
type UpstreamFailureError struct {
	FailCode int
}

func (e *UpstreamFailureError) Error() string {
	return ErrUpstreamGenerationFailed.Error() + ": fail_code=" + itoa(e.FailCode)
}

func (e *UpstreamFailureError) Unwrap() error { return ErrUpstreamGenerationFailed }

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

func sleepOrDone(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// classifyContextErr distinguishes a caller-initiated cancellation (the
// original ctx was cancelled — e.g. the task store observed a user cancel)
// from our own internal deadline expiring.
func classifyContextErr(callerCtx context.Context, err error) error {
	if errors.Is(callerCtx.Err(), context.Canceled) {
		return fmt.Errorf("%w: %w", ErrCancelled, context.Canceled)
	}
	return fmt.Errorf("%w: %w", ErrPollTimeout, context.DeadlineExceeded)
}

// estimateProgress combines elapsed/estimated time and itemCount/expected,
// capped at 95% until the terminal state is observed (spec.md §4.4).
func estimateProgress(pollCount, maxPolls int, status Status, expected int, terminal bool) int {
	if terminal {
		return 100
	}

	timeProgress := 0
	if maxPolls > 0 {
		timeProgress = pollCount * 100 / maxPolls
	}

	itemProgress := 0
	if expected > 0 {
		itemProgress = status.ItemCount * 100 / expected
	}

	progress := timeProgress
	if itemProgress > progress {
		progress = itemProgress
	}
	if progress > 95 {
		progress = 95
	}
	if progress < 0 {
		progress = 0
	}
	return progress
}
