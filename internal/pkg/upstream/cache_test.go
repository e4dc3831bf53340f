package upstream

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCredentialCacheNilClientAlwaysMisses(t *testing.T) {
	c := NewCredentialCache(nil)

	_, _, _, _, ok := c.Get(context.Background(), RegionCN)
	assert.False(t, ok)

	c.Set(context.Background(), RegionCN, "ak", "sk", "st", "svc", time.Minute)

	_, _, _, _, ok = c.Get(context.Background(), RegionCN)
	assert.False(t, ok)
}

func TestCredentialCacheNilReceiverDoesNotPanic(t *testing.T) {
	var c *CredentialCache

	assert.NotPanics(t, func() {
		_, _, _, _, ok := c.Get(context.Background(), RegionCN)
		assert.False(t, ok)
		c.Set(context.Background(), RegionCN, "ak", "sk", "st", "svc", time.Minute)
	})
}

func TestCacheKeyIsPerRegion(t *testing.T) {
	assert.NotEqual(t, cacheKey(RegionCN), cacheKey(RegionUS))
}
