package quota

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLedger(t *testing.T) *JSONLedger {
	t.Helper()
	path := filepath.Join(t.TempDir(), "session_usage.json")
	l, err := NewJSONLedger(path, Limits{ServiceImage: 2, ServiceVideo: 1, ServiceAvatar: 1})
	require.NoError(t, err)
	return l
}

func TestJSONLedgerCheckAllowsUnderLimit(t *testing.T) {
	l := newTestLedger(t)
	ctx := context.Background()

	result, err := l.Check(ctx, "session-1", ServiceImage)
	require.NoError(t, err)
	assert.True(t, result.Allowed)
	assert.Equal(t, 0, result.Current)
	assert.Equal(t, 2, result.Limit)
}

func TestJSONLedgerIncrementThenCheckReflectsUsage(t *testing.T) {
	l := newTestLedger(t)
	ctx := context.Background()

	require.NoError(t, l.Increment(ctx, "session-1", ServiceImage))

	result, err := l.Check(ctx, "session-1", ServiceImage)
	require.NoError(t, err)
	assert.True(t, result.Allowed)
	assert.Equal(t, 1, result.Current)
	assert.Equal(t, 1, result.Remaining)
}

func TestJSONLedgerIncrementAtLimitFails(t *testing.T) {
	l := newTestLedger(t)
	ctx := context.Background()

	require.NoError(t, l.Increment(ctx, "session-1", ServiceVideo))
	err := l.Increment(ctx, "session-1", ServiceVideo)
	assert.ErrorIs(t, err, ErrQuotaExceeded)
}

func TestJSONLedgerSessionsAreIsolated(t *testing.T) {
	l := newTestLedger(t)
	ctx := context.Background()

	require.NoError(t, l.Increment(ctx, "session-1", ServiceImage))

	result, err := l.Check(ctx, "session-2", ServiceImage)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Current)
}

func TestJSONLedgerConcurrentIncrementsNeverExceedLimit(t *testing.T) {
	l := newTestLedger(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	successes := make([]bool, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			successes[i] = l.Increment(ctx, "session-1", ServiceImage) == nil
		}(i)
	}
	wg.Wait()

	successCount := 0
	for _, ok := range successes {
		if ok {
			successCount++
		}
	}
	assert.Equal(t, 2, successCount)
}

func TestJSONLedgerPersistsAcrossReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session_usage.json")
	l1, err := NewJSONLedger(path, Limits{ServiceImage: 5})
	require.NoError(t, err)
	require.NoError(t, l1.Increment(context.Background(), "session-1", ServiceImage))

	l2, err := NewJSONLedger(path, Limits{ServiceImage: 5})
	require.NoError(t, err)

	result, err := l2.Check(context.Background(), "session-1", ServiceImage)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Current)
}

func TestJSONLedgerHistoryFiltersBySession(t *testing.T) {
	l := newTestLedger(t)
	ctx := context.Background()
	require.NoError(t, l.Increment(ctx, "session-1", ServiceImage))
	require.NoError(t, l.Increment(ctx, "session-2", ServiceImage))

	rows, err := l.History(ctx, "session-1", 30)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "session-1", rows[0].SessionID)
}
