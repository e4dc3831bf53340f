package task

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Runner executes a task's generation controller operation end to end. It
// must honor ctx cancellation at its suspension points (upload, submit,
// poll) and report progress through onProgress as it advances.
type Runner interface {
	Run(ctx context.Context, t *Task, onProgress func(progress int)) (result interface{}, err error)
}

// Timeouts maps a task Type to its per-type wall timeout.
type Timeouts map[Type]time.Duration

// DefaultTimeouts returns the spec defaults (image 15m, video 30m),
// overridable by the caller from configuration.
func DefaultTimeouts() Timeouts {
	return Timeouts{
		TypeImageGeneration:  15 * time.Minute,
		TypeImageComposition: 15 * time.Minute,
		TypeVideoGeneration:  30 * time.Minute,
	}
}

// Scheduler is the single admission fiber described in spec.md §4.7: a
// ticker loop that admits pending tasks under a concurrency cap and arms a
// per-task timeout. Grounded on the teacher's promotion.Worker ticker shape
// and cmd/image-worker's poll-loop, generalized from one fixed job to
// priority-ordered admission of N pending tasks per tick.
type Scheduler struct {
	store    *Store
	runner   Runner
	timeouts Timeouts

	maxConcurrency int
	tickInterval   time.Duration

	mu      sync.Mutex
	running map[string]context.CancelFunc

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewScheduler builds a Scheduler. maxConcurrency defaults to 10 and
// tickInterval to 1s if non-positive, matching spec defaults.
func NewScheduler(store *Store, runner Runner, maxConcurrency int, tickInterval time.Duration, timeouts Timeouts) *Scheduler {
	if maxConcurrency <= 0 {
		maxConcurrency = 10
	}
	if tickInterval <= 0 {
		tickInterval = time.Second
	}
	if timeouts == nil {
		timeouts = DefaultTimeouts()
	}
	return &Scheduler{
		store:          store,
		runner:         runner,
		timeouts:       timeouts,
		maxConcurrency: maxConcurrency,
		tickInterval:   tickInterval,
		running:        make(map[string]context.CancelFunc),
		stopCh:         make(chan struct{}),
		doneCh:         make(chan struct{}),
	}
}

// Start launches the scheduler's tick loop in a goroutine. It never blocks
// the caller.
func (s *Scheduler) Start() {
	go s.loop()
}

// Stop signals the tick loop to exit and blocks until it has. In-flight
// workers are not interrupted; they run to their own completion or timeout.
func (s *Scheduler) Stop() {
	close(s.stopCh)
	<-s.doneCh
}

func (s *Scheduler) loop() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopCh:
			return
		case <-ticker.C:
			s.tick()
		}
	}
}

func (s *Scheduler) runningCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.running)
}

func (s *Scheduler) tick() {
	free := s.maxConcurrency - s.runningCount()
	if free <= 0 {
		return
	}

	pending := s.store.Pending()
	admitted := 0
	for _, t := range pending {
		if admitted >= free {
			break
		}

		s.mu.Lock()
		_, alreadyRunning := s.running[t.ID]
		s.mu.Unlock()
		if alreadyRunning {
			continue
		}

		if err := s.store.Transition(t.ID, StatusRunning, nil, "", nil); err != nil {
			// Lost a race with a cancel; skip silently, the caller already
			// has their answer.
			continue
		}

		s.admit(t)
		admitted++
	}
}

func (s *Scheduler) admit(t *Task) {
	timeout := s.timeouts[t.Type]
	if timeout <= 0 {
		timeout = 15 * time.Minute
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)

	s.mu.Lock()
	s.running[t.ID] = cancel
	s.mu.Unlock()

	go s.runWorker(ctx, cancel, t)
}

// Cancel cancels a task: it transitions the Task Store entry to cancelled
// and, if the task is currently admitted, cancels its worker's context so
// the Smart Poller observes the signal at its next poll boundary rather
// than running to its timeout.
func (s *Scheduler) Cancel(id string) (bool, error) {
	changed, err := s.store.Cancel(id)
	if err != nil || !changed {
		return changed, err
	}

	s.mu.Lock()
	cancel, ok := s.running[id]
	s.mu.Unlock()
	if ok {
		cancel()
	}
	return true, nil
}

func (s *Scheduler) runWorker(ctx context.Context, cancel context.CancelFunc, t *Task) {
	defer func() {
		cancel()
		s.mu.Lock()
		delete(s.running, t.ID)
		s.mu.Unlock()
	}()

	w := &worker{store: s.store, runner: s.runner}
	w.run(ctx, t)
}
