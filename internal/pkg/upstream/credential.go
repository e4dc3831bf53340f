package upstream

import (
	"crypto/md5"
	"encoding/hex"
)

// Credential wraps the opaque refresh-token string clients supply, exposing
// the region and session-id derivations spec.md §6 mandates. Grounded on
// the teacher's habit of wrapping a bare secret string in a small typed
// value (robokassa.Config, photostudio.Client's token field) rather than
// passing raw strings between layers.
type Credential struct {
	raw string
}

// NewCredential wraps a raw credential string.
func NewCredential(raw string) Credential {
	return Credential{raw: raw}
}

// String returns the raw credential, for use as a bearer token / refresh
// token value in upstream requests.
func (c Credential) String() string {
	return c.raw
}

// Region returns the region selected by the credential's prefix marker.
func (c Credential) Region() Region {
	return ParseRegion(c.raw)
}

// SessionID derives the stable per-credential session identifier used for
// quota accounting: "session_" + first 16 hex chars of MD5(credential).
func (c Credential) SessionID() string {
	sum := md5.Sum([]byte(c.raw))
	return "session_" + hex.EncodeToString(sum[:])[:16]
}
