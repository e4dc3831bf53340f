package poller

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunReturnsOnTerminalState(t *testing.T) {
	calls := 0
	fetch := func(ctx context.Context) (Status, interface{}, error) {
		calls++
		if calls < 3 {
			return Status{State: StateRunning}, nil, nil
		}
		return Status{State: StateCompleted, ItemCount: 1}, "done", nil
	}

	result, err := Run(context.Background(), Config{Kind: KindImage, ExpectedItems: 1, MaxPollCount: 10}, fetch)
	require.NoError(t, err)
	assert.Equal(t, "done", result.Data)
	assert.Equal(t, 3, result.PollCount)
}

func TestRunReturnsUpstreamFailureError(t *testing.T) {
	fetch := func(ctx context.Context) (Status, interface{}, error) {
		return Status{FailCode: 5000}, nil, nil
	}

	_, err := Run(context.Background(), Config{Kind: KindImage, ExpectedItems: 1, MaxPollCount: 10}, fetch)

	var upstreamErr *UpstreamFailureError
	require.True(t, errors.As(err, &upstreamErr))
	assert.Equal(t, 5000, upstreamErr.FailCode)
	assert.ErrorIs(t, err, ErrUpstreamGenerationFailed)
}

func TestRunReturnsPollTimeoutWhenBudgetExhausted(t *testing.T) {
	fetch := func(ctx context.Context) (Status, interface{}, error) {
		return Status{State: StateRunning}, nil, nil
	}

	_, err := Run(context.Background(), Config{Kind: KindImage, ExpectedItems: 1, MaxPollCount: 2}, fetch)
	assert.ErrorIs(t, err, ErrPollTimeout)
}

func TestRunWrapsContextDeadlineExceededUnderErrPollTimeout(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 0)
	defer cancel()

	fetch := func(ctx context.Context) (Status, interface{}, error) {
		return Status{State: StateRunning}, nil, nil
	}

	_, err := Run(ctx, Config{Kind: KindImage, ExpectedItems: 1, MaxPollCount: 10}, fetch)
	assert.ErrorIs(t, err, ErrPollTimeout)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRunWrapsContextCanceledUnderErrCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	fetch := func(ctx context.Context) (Status, interface{}, error) {
		calls++
		if calls == 1 {
			cancel()
		}
		return Status{State: StateRunning}, nil, nil
	}

	_, err := Run(ctx, Config{Kind: KindImage, ExpectedItems: 1, MaxPollCount: 100}, fetch)
	assert.ErrorIs(t, err, ErrCancelled)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunReportsProgressCallback(t *testing.T) {
	var progresses []int
	calls := 0
	fetch := func(ctx context.Context) (Status, interface{}, error) {
		calls++
		if calls < 2 {
			return Status{State: StateRunning}, nil, nil
		}
		return Status{State: StateCompleted, ItemCount: 1}, nil, nil
	}

	_, err := Run(context.Background(), Config{
		Kind: KindImage, ExpectedItems: 1, MaxPollCount: 10,
		OnProgress: func(p int) { progresses = append(progresses, p) },
	}, fetch)

	require.NoError(t, err)
	require.Len(t, progresses, 2)
	assert.Equal(t, 100, progresses[1])
}

func TestEstimateProgressCapsAtNinetyFiveUntilTerminal(t *testing.T) {
	progress := estimateProgress(1000, 10, Status{ItemCount: 1000}, 1, false)
	assert.Equal(t, 95, progress)
}

func TestEstimateProgressReturnsHundredWhenTerminal(t *testing.T) {
	progress := estimateProgress(1, 10, Status{}, 1, true)
	assert.Equal(t, 100, progress)
}

func TestUpstreamFailureErrorMessageFormat(t *testing.T) {
	err := &UpstreamFailureError{FailCode: 42}
	assert.Equal(t, "poller: upstream generation failed: fail_code=42", err.Error())
}
