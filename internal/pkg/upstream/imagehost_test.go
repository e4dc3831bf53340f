package upstream

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newHandshakeServer(t *testing.T, commitStatus int) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/mweb/v1/get_upload_token", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(acquireTokenResponse{
			AccessKeyID:     "AKID",
			SecretAccessKey: "secret",
			SessionToken:    "token",
			ServiceID:       "svc-1",
			ExpiredAt:       time.Now().Add(time.Hour).Unix(),
		})
	})

	var hostAddr string
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("Action") {
		case "ApplyImageUpload":
			resp := applyResponse{}
			resp.Result.StoreInfos = []storeInfo{{StoreURI: "tos-cn/abc123", Auth: "signed-auth"}}
			resp.Result.UploadHosts = []string{hostAddr}
			resp.Result.SessionKey = "session-key-1"
			json.NewEncoder(w).Encode(resp)
		case "CommitImageUpload":
			resp := commitResponse{}
			resp.Result.Results = []struct {
				URIStatus int    `json:"UriStatus"`
				URI       string `json:"Uri"`
			}{{URIStatus: commitStatus, URI: "tos-cn/abc123"}}
			json.NewEncoder(w).Encode(resp)
		default:
			http.NotFound(w, r)
		}
	})
	mux.HandleFunc("/upload/v1/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	srv := httptest.NewTLSServer(mux)
	hostAddr = strings.TrimPrefix(srv.URL, "https://")
	return srv
}

func newTestImageHost(t *testing.T, srv *httptest.Server) *ImageHost {
	t.Helper()
	overrides := MirrorOverrides{JimengCN: srv.URL, ImagexCN: srv.URL}
	return NewImageHost(srv.Client(), NewCredentialCache(nil), overrides, 2, 5*time.Second)
}

func TestImageHostUploadHappyPath(t *testing.T) {
	srv := newHandshakeServer(t, 2000)
	defer srv.Close()

	host := newTestImageHost(t, srv)
	uri, err := host.Upload(context.Background(), NewCredential("refresh-token"), []byte("image-bytes"))

	require.NoError(t, err)
	assert.Equal(t, "tos-cn/abc123", uri)
}

func TestImageHostUploadCommitRejectionReturnsError(t *testing.T) {
	srv := newHandshakeServer(t, 1001)
	defer srv.Close()

	host := newTestImageHost(t, srv)
	_, err := host.Upload(context.Background(), NewCredential("refresh-token"), []byte("image-bytes"))

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUploadCommitFailed)
}

func TestImageHostUploadAcquiresTokenOncePerCall(t *testing.T) {
	srv := newHandshakeServer(t, 2000)
	defer srv.Close()

	tokenRequests := 0
	srv.Config.Handler = wrapCountingTokenHandler(srv.Config.Handler, &tokenRequests)

	host := newTestImageHost(t, srv)
	_, err := host.Upload(context.Background(), NewCredential("refresh-token"), []byte("image-bytes"))

	require.NoError(t, err)
	assert.Equal(t, 1, tokenRequests)
}

func wrapCountingTokenHandler(next http.Handler, counter *int) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/mweb/v1/get_upload_token" {
			*counter++
		}
		next.ServeHTTP(w, r)
	})
}
