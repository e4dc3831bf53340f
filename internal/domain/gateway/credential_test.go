package gateway

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCredentialFromRequestParsesBearerToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer secret-token")

	cred, ok := credentialFromRequest(req)

	require.True(t, ok)
	assert.Equal(t, "secret-token", cred.String())
}

func TestCredentialFromRequestMissingHeader(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	_, ok := credentialFromRequest(req)

	assert.False(t, ok)
}

func TestCredentialFromRequestWrongScheme(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")

	_, ok := credentialFromRequest(req)

	assert.False(t, ok)
}

func TestCredentialFromRequestEmptyBearerValue(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer ")

	_, ok := credentialFromRequest(req)

	assert.False(t, ok)
}

func TestRequireCredentialWritesUnauthorizedWhenMissing(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()

	_, ok := requireCredential(w, req)

	assert.False(t, ok)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
