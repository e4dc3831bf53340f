package task

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRunner struct {
	calls  int32
	block  chan struct{}
	result interface{}
	err    error
}

func (f *fakeRunner) Run(ctx context.Context, t *Task, onProgress func(progress int)) (interface{}, error) {
	atomic.AddInt32(&f.calls, 1)
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return f.result, f.err
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not met within %s", timeout)
}

func TestSchedulerAdmitsAndCompletesPendingTask(t *testing.T) {
	store := NewStore(time.Hour)
	runner := &fakeRunner{result: []string{"url"}}
	sched := NewScheduler(store, runner, 10, 5*time.Millisecond, nil)

	created := store.Create(TypeImageGeneration, nil, 0, "owner")

	sched.Start()
	defer sched.Stop()

	waitFor(t, time.Second, func() bool {
		got, err := store.Get(created.ID)
		return err == nil && got.Status == StatusCompleted
	})

	got, err := store.Get(created.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"url"}, got.Result)
}

func TestSchedulerRespectsConcurrencyCap(t *testing.T) {
	store := NewStore(time.Hour)
	block := make(chan struct{})
	runner := &fakeRunner{block: block}
	sched := NewScheduler(store, runner, 1, 5*time.Millisecond, nil)

	first := store.Create(TypeImageGeneration, nil, 0, "owner")
	store.Create(TypeImageGeneration, nil, 0, "owner")

	sched.Start()
	defer func() {
		close(block)
		sched.Stop()
	}()

	waitFor(t, time.Second, func() bool {
		got, err := store.Get(first.ID)
		return err == nil && got.Status == StatusRunning
	})

	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int32(1), atomic.LoadInt32(&runner.calls))
}

func TestSchedulerCancelStopsRunningWorker(t *testing.T) {
	store := NewStore(time.Hour)
	block := make(chan struct{})
	runner := &fakeRunner{block: block}
	sched := NewScheduler(store, runner, 10, 5*time.Millisecond, nil)
	defer close(block)

	created := store.Create(TypeImageGeneration, nil, 0, "owner")
	sched.Start()
	defer sched.Stop()

	waitFor(t, time.Second, func() bool {
		got, err := store.Get(created.ID)
		return err == nil && got.Status == StatusRunning
	})

	changed, err := sched.Cancel(created.ID)
	require.NoError(t, err)
	assert.True(t, changed)

	got, err := store.Get(created.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, got.Status)
}

func TestSchedulerFailsTaskOnRunnerError(t *testing.T) {
	store := NewStore(time.Hour)
	runner := &fakeRunner{err: assert.AnError}
	sched := NewScheduler(store, runner, 10, 5*time.Millisecond, nil)

	created := store.Create(TypeImageGeneration, nil, 0, "owner")
	sched.Start()
	defer sched.Stop()

	waitFor(t, time.Second, func() bool {
		got, err := store.Get(created.ID)
		return err == nil && got.Status == StatusFailed
	})

	got, err := store.Get(created.ID)
	require.NoError(t, err)
	assert.Equal(t, assert.AnError.Error(), got.Error)
}
