package poller

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewScheduleUsesKindBaseInterval(t *testing.T) {
	img := newSchedule(KindImage)
	assert.Equal(t, imageBaseInterval, img.next())

	vid := newSchedule(KindVideo)
	assert.Equal(t, videoBaseInterval, vid.next())
}

func TestScheduleGrowsAfterRepeatedSuccesses(t *testing.T) {
	s := newSchedule(KindImage)
	for i := 0; i < 5; i++ {
		s.recordSuccess()
	}
	assert.Greater(t, s.next(), imageBaseInterval)
}

func TestScheduleNeverExceedsMaxInterval(t *testing.T) {
	s := newSchedule(KindImage)
	for i := 0; i < 1000; i++ {
		s.recordSuccess()
	}
	assert.LessOrEqual(t, s.next(), maxInterval)
}

func TestScheduleBacksOffAfterFailure(t *testing.T) {
	s := newSchedule(KindImage)
	s.recordFailure()
	assert.Greater(t, s.next(), s.base)
}

func TestScheduleFailureBackoffCapped(t *testing.T) {
	s := newSchedule(KindImage)
	for i := 0; i < 20; i++ {
		s.recordFailure()
	}
	assert.LessOrEqual(t, s.next(), failureBackoffCap)
}

func TestScheduleSuccessAfterFailureResetsBackoff(t *testing.T) {
	s := newSchedule(KindImage)
	s.recordFailure()
	s.recordFailure()
	s.recordSuccess()
	assert.Equal(t, imageBaseInterval, s.next())
}

func TestMinHelper(t *testing.T) {
	assert.Equal(t, 2, min(2, 5))
	assert.Equal(t, 3, min(7, 3))
}
