package upstream

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCredentialStringReturnsRawValue(t *testing.T) {
	cred := NewCredential("US:my-secret-token")
	assert.Equal(t, "US:my-secret-token", cred.String())
}

func TestCredentialRegionDerivesFromPrefix(t *testing.T) {
	assert.Equal(t, RegionUS, NewCredential("US:abc").Region())
	assert.Equal(t, RegionCN, NewCredential("abc").Region())
}

func TestCredentialSessionIDIsStableAndPrefixed(t *testing.T) {
	cred := NewCredential("same-token")
	id1 := cred.SessionID()
	id2 := cred.SessionID()

	assert.Equal(t, id1, id2)
	assert.Contains(t, id1, "session_")
}

func TestCredentialSessionIDDiffersByToken(t *testing.T) {
	a := NewCredential("token-a").SessionID()
	b := NewCredential("token-b").SessionID()
	assert.NotEqual(t, a, b)
}
