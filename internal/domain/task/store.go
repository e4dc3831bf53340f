package task

import (
	"context"
	"hash/fnv"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const shardCount = 16

// shard guards a slice of the id space behind its own RWMutex. Splitting the
// registry this way (rather than one table-wide lock) is the same guarded-
// registry shape the teacher uses for its WebSocket connection table, sized
// down from per-connection channels to a plain striped map since task
// mutation here is request/response, not an event stream.
type shard struct {
	mu    sync.RWMutex
	tasks map[string]*Task
}

// Store is the in-memory task registry described in spec.md §4.6.
type Store struct {
	shards    [shardCount]*shard
	seq       uint64
	retention time.Duration

	stopReaper chan struct{}
	reaperOnce sync.Once
}

// NewStore creates a task registry. retention controls how long terminal
// tasks are kept before the reaper removes them (default 24h per spec).
func NewStore(retention time.Duration) *Store {
	if retention <= 0 {
		retention = 24 * time.Hour
	}
	s := &Store{retention: retention, stopReaper: make(chan struct{})}
	for i := range s.shards {
		s.shards[i] = &shard{tasks: make(map[string]*Task)}
	}
	return s
}

func (s *Store) shardFor(id string) *shard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(id))
	return s.shards[h.Sum32()%shardCount]
}

// Create registers a new pending task and returns it.
func (s *Store) Create(typ Type, params Params, priority int, owner string) *Task {
	now := time.Now()
	t := &Task{
		ID:        uuid.NewString(),
		Type:      typ,
		Status:    StatusPending,
		Priority:  priority,
		Owner:     owner,
		Params:    params,
		CreatedAt: now,
		UpdatedAt: now,
		seq:       atomic.AddUint64(&s.seq, 1),
	}

	sh := s.shardFor(t.ID)
	sh.mu.Lock()
	sh.tasks[t.ID] = t
	sh.mu.Unlock()

	return t.Clone()
}

// Get returns a task by id, or ErrNotFound.
func (s *Store) Get(id string) (*Task, error) {
	sh := s.shardFor(id)
	sh.mu.RLock()
	defer sh.mu.RUnlock()

	t, ok := sh.tasks[id]
	if !ok {
		return nil, ErrNotFound
	}
	return t.Clone(), nil
}

// List returns tasks optionally filtered by owner and status, newest first,
// capped at limit (0 means unbounded).
func (s *Store) List(owner string, status Status, limit int) []*Task {
	var out []*Task
	for _, sh := range s.shards {
		sh.mu.RLock()
		for _, t := range sh.tasks {
			if owner != "" && t.Owner != owner {
				continue
			}
			if status != "" && t.Status != status {
				continue
			}
			out = append(out, t.Clone())
		}
		sh.mu.RUnlock()
	}

	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Pending returns pending tasks ordered by priority descending, ties broken
// by creation order ascending.
func (s *Store) Pending() []*Task {
	var out []*Task
	for _, sh := range s.shards {
		sh.mu.RLock()
		for _, t := range sh.tasks {
			if t.Status == StatusPending {
				out = append(out, t.Clone())
			}
		}
		sh.mu.RUnlock()
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Priority != out[j].Priority {
			return out[i].Priority > out[j].Priority
		}
		return out[i].seq < out[j].seq
	})
	return out
}

// Stats returns the count of tasks per status.
func (s *Store) Stats() map[Status]int {
	stats := map[Status]int{}
	for _, sh := range s.shards {
		sh.mu.RLock()
		for _, t := range sh.tasks {
			stats[t.Status]++
		}
		sh.mu.RUnlock()
	}
	return stats
}

// Transition moves a task to newStatus, validating the transition table and
// stamping timestamps. extra fields (result/error/progress) are applied
// atomically with the status change.
func (s *Store) Transition(id string, newStatus Status, result interface{}, errMsg string, progress *int) error {
	sh := s.shardFor(id)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	t, ok := sh.tasks[id]
	if !ok {
		return ErrNotFound
	}
	if !canTransition(t.Status, newStatus) {
		return ErrInvalidTransition
	}

	now := time.Now()
	if newStatus == StatusRunning && t.StartedAt == nil {
		t.StartedAt = &now
	}
	if newStatus.IsTerminal() {
		t.CompletedAt = &now
		if newStatus == StatusCompleted {
			t.Progress = 100
		}
	}
	if progress != nil {
		t.Progress = *progress
	}
	if result != nil {
		t.Result = result
	}
	if errMsg != "" {
		t.Error = errMsg
	}

	t.Status = newStatus
	t.UpdatedAt = now
	return nil
}

// SetProgress updates a running task's progress without changing status.
func (s *Store) SetProgress(id string, progress int) error {
	sh := s.shardFor(id)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	t, ok := sh.tasks[id]
	if !ok {
		return ErrNotFound
	}
	if t.Status.IsTerminal() {
		return ErrTerminal
	}
	if progress > t.Progress {
		t.Progress = progress
	}
	t.UpdatedAt = time.Now()
	return nil
}

// Cancel transitions a pending or running task to cancelled. It is
// idempotent: cancelling an already-terminal task returns false, nil rather
// than an error.
func (s *Store) Cancel(id string) (bool, error) {
	sh := s.shardFor(id)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	t, ok := sh.tasks[id]
	if !ok {
		return false, ErrNotFound
	}
	if t.Status.IsTerminal() {
		return false, nil
	}

	now := time.Now()
	t.Status = StatusCancelled
	t.CompletedAt = &now
	t.UpdatedAt = now
	return true, nil
}

// Delete removes a terminal task from the registry.
func (s *Store) Delete(id string) error {
	sh := s.shardFor(id)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	t, ok := sh.tasks[id]
	if !ok {
		return ErrNotFound
	}
	if !t.Status.IsTerminal() {
		return ErrTerminal
	}
	delete(sh.tasks, id)
	return nil
}

// StartReaper launches the background goroutine that prunes terminal tasks
// older than the store's retention window. Grounded on the teacher's
// promotion.Worker ticker loop.
func (s *Store) StartReaper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Hour
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stopReaper:
				return
			case <-ticker.C:
				s.reapOnce()
			}
		}
	}()
}

// StopReaper stops the reaper goroutine started by StartReaper.
func (s *Store) StopReaper() {
	s.reaperOnce.Do(func() { close(s.stopReaper) })
}

func (s *Store) reapOnce() {
	cutoff := time.Now().Add(-s.retention)
	removed := 0
	for _, sh := range s.shards {
		sh.mu.Lock()
		for id, t := range sh.tasks {
			if t.Status.IsTerminal() && t.CompletedAt != nil && t.CompletedAt.Before(cutoff) {
				delete(sh.tasks, id)
				removed++
			}
		}
		sh.mu.Unlock()
	}
	if removed > 0 {
		log.Debug().Int("removed", removed).Msg("task store reaper swept terminal tasks")
	}
}
