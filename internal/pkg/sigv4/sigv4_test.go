package sigv4

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCreds() Credentials {
	return Credentials{
		AccessKeyID:     "AKIDEXAMPLE",
		SecretAccessKey: "secret",
		SessionToken:    "session-token",
	}
}

func TestSignGETAddsExpectedHeaders(t *testing.T) {
	req, err := http.NewRequest(http.MethodGet, "https://imagex.bytedanceapi.com/ApplyImageUpload", nil)
	require.NoError(t, err)

	signer := NewSigner("imagex", "cn-north-1")
	require.NoError(t, signer.SignGET(context.Background(), req, testCreds()))

	assert.NotEmpty(t, req.Header.Get("Authorization"))
	assert.NotEmpty(t, req.Header.Get("X-Amz-Date"))
	assert.Equal(t, "session-token", req.Header.Get("X-Amz-Security-Token"))
}

func TestSignPOSTHashesBody(t *testing.T) {
	body := []byte(`{"key":"value"}`)
	req, err := http.NewRequest(http.MethodPost, "https://imagex.bytedanceapi.com/CommitImageUpload", nil)
	require.NoError(t, err)

	signer := NewSigner("imagex", "cn-north-1")
	require.NoError(t, signer.SignPOST(context.Background(), req, body, testCreds()))

	assert.NotEmpty(t, req.Header.Get("Authorization"))
	assert.Contains(t, req.Header.Get("Authorization"), "imagex")
}

func TestSignWithoutSessionTokenOmitsHeader(t *testing.T) {
	req, err := http.NewRequest(http.MethodGet, "https://imagex.bytedanceapi.com/ApplyImageUpload", nil)
	require.NoError(t, err)

	signer := NewSigner("imagex", "cn-north-1")
	creds := testCreds()
	creds.SessionToken = ""
	require.NoError(t, signer.SignGET(context.Background(), req, creds))

	assert.Empty(t, req.Header.Get("X-Amz-Security-Token"))
}
