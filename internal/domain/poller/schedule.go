package poller

import "time"

const (
	imageBaseInterval = 2 * time.Second
	videoBaseInterval = 5 * time.Second
	maxInterval       = 30 * time.Second
	failureBackoffCap = 60 * time.Second
)

// schedule tracks the adaptive interval state for one poll run: short
// intervals early, growing slowly on repeated non-terminal polls, and
// exponential backoff (capped) after a fetch error, per spec.md §4.4.
type schedule struct {
	base        time.Duration
	consecutive int // consecutive successful (non-terminal) polls
	failures    int // consecutive fetch errors
}

func newSchedule(kind Kind) *schedule {
	base := imageBaseInterval
	if kind == KindVideo {
		base = videoBaseInterval
	}
	return &schedule{base: base}
}

func (s *schedule) recordSuccess() {
	s.failures = 0
	s.consecutive++
}

func (s *schedule) recordFailure() {
	s.consecutive = 0
	s.failures++
}

// next returns the interval to wait before the following poll.
func (s *schedule) next() time.Duration {
	if s.failures > 0 {
		wait := s.base << uint(min(s.failures, 5))
		if wait > failureBackoffCap {
			wait = failureBackoffCap
		}
		return wait
	}

	// Grow slowly the longer a task stays non-terminal, capped at
	// maxInterval, so a slow render doesn't pin the poller at its fastest
	// cadence indefinitely.
	growthSteps := s.consecutive / 5
	wait := s.base + time.Duration(growthSteps)*s.base
	if wait > maxInterval {
		wait = maxInterval
	}
	return wait
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
