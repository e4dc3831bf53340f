package upstream

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewHTTPClientAppliesDefaultTimeout(t *testing.T) {
	client, err := NewHTTPClient(ProxyConfig{}, 0)
	require.NoError(t, err)
	assert.Equal(t, defaultHTTPTimeout, client.Timeout)
}

func TestNewHTTPClientHonorsExplicitTimeout(t *testing.T) {
	client, err := NewHTTPClient(ProxyConfig{}, 5*time.Second)
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, client.Timeout)
}

func TestNewHTTPClientRejectsBadProxyConfig(t *testing.T) {
	_, err := NewHTTPClient(ProxyConfig{Enabled: true, Type: "bogus"}, time.Second)
	assert.Error(t, err)
}
