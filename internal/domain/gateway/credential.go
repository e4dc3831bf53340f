package gateway

import (
	"net/http"
	"strings"

	"github.com/dreamina/aigateway/internal/pkg/response"
	"github.com/dreamina/aigateway/internal/pkg/upstream"
)

// credentialFromRequest extracts the caller's refresh-token credential from
// the Authorization header (spec.md §6: "Bearer <credential>").
func credentialFromRequest(r *http.Request) (upstream.Credential, bool) {
	auth := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(auth, prefix) {
		return upstream.Credential{}, false
	}
	raw := strings.TrimSpace(strings.TrimPrefix(auth, prefix))
	if raw == "" {
		return upstream.Credential{}, false
	}
	return upstream.NewCredential(raw), true
}

func requireCredential(w http.ResponseWriter, r *http.Request) (upstream.Credential, bool) {
	cred, ok := credentialFromRequest(r)
	if !ok {
		response.Unauthorized(w, "missing or malformed Authorization header")
		return upstream.Credential{}, false
	}
	return cred, true
}
