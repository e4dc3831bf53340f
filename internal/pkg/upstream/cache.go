package upstream

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// CredentialCache caches the temporary upload credentials returned by
// get_upload_token, keyed by region, for the lifetime the upstream issued
// them. It is optional: a nil or disconnected client degrades to "always
// re-acquire", never an error — grounded on the teacher's
// internal/pkg/database/redis.go connection setup and the posture of
// cmd/image-worker's Redis-wakeup subscription, which falls back to plain
// polling when Redis is unavailable rather than failing the process.
type CredentialCache struct {
	client *redis.Client
}

// NewCredentialCache wraps an existing redis client. client may be nil, in
// which case Get always misses and Set is a no-op.
func NewCredentialCache(client *redis.Client) *CredentialCache {
	return &CredentialCache{client: client}
}

type cachedCredentials struct {
	sigv4Credentials
	ServiceID string `json:"service_id"`
}

// sigv4Credentials mirrors sigv4.Credentials with JSON tags for the cache's
// (de)serialization.
type sigv4Credentials struct {
	AccessKeyID     string `json:"access_key_id"`
	SecretAccessKey string `json:"secret_access_key"`
	SessionToken    string `json:"session_token"`
}

func cacheKey(region Region) string {
	return "aigateway:upload_credential:" + string(region)
}

// Get returns the cached credential triple for region, if present and not
// expired.
func (c *CredentialCache) Get(ctx context.Context, region Region) (accessKeyID, secretAccessKey, sessionToken, serviceID string, ok bool) {
	if c == nil || c.client == nil {
		return "", "", "", "", false
	}

	raw, err := c.client.Get(ctx, cacheKey(region)).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Debug().Err(err).Msg("upload credential cache miss due to redis error")
		}
		return "", "", "", "", false
	}

	var cached cachedCredentials
	if err := json.Unmarshal(raw, &cached); err != nil {
		return "", "", "", "", false
	}

	return cached.AccessKeyID, cached.SecretAccessKey, cached.SessionToken, cached.ServiceID, true
}

// Set stores a credential triple for region until ttl elapses (the
// upstream-issued lifetime, minus a safety margin applied by the caller).
func (c *CredentialCache) Set(ctx context.Context, region Region, accessKeyID, secretAccessKey, sessionToken, serviceID string, ttl time.Duration) {
	if c == nil || c.client == nil || ttl <= 0 {
		return
	}

	payload, err := json.Marshal(cachedCredentials{
		sigv4Credentials: sigv4Credentials{
			AccessKeyID:     accessKeyID,
			SecretAccessKey: secretAccessKey,
			SessionToken:    sessionToken,
		},
		ServiceID: serviceID,
	})
	if err != nil {
		return
	}

	if err := c.client.Set(ctx, cacheKey(region), payload, ttl).Err(); err != nil {
		log.Debug().Err(err).Msg("failed to cache upload credential")
	}
}
