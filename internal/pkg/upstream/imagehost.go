package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"hash/crc32"
	"io"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/dreamina/aigateway/internal/pkg/sigv4"
)

// isNetworkError reports whether err represents a transport-level failure
// (connection refused, DNS, timeout) rather than an HTTP-status rejection
// from a reachable server, so the caller can pick the §4.2 backoff shape
// (attempt×3s for network errors, attempt×2s otherwise).
func isNetworkError(err error) bool {
	if errors.Is(err, ErrUploadNetwork) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

// retryableStep runs fn up to maxAttempts times, sleeping between attempts
// per the step-discretized retry/backoff shape borrowed from the graph
// upload client in the retrieval pack (acquire → apply → PUT → commit, each
// step's retries scoped to that step alone, no shared cross-step retry
// loop). The wait after attempt n is n×3s when fn reports a network error
// and n×2s otherwise, per spec.md §4.2.
func retryableStep(ctx context.Context, maxAttempts int, fn func(attempt int) (bool, error)) error {
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		isNetworkErr, err := fn(attempt)
		if err == nil {
			return nil
		}
		lastErr = err

		if attempt == maxAttempts {
			break
		}

		var wait time.Duration
		if isNetworkErr {
			wait = time.Duration(attempt) * 3 * time.Second
		} else {
			wait = time.Duration(attempt) * 2 * time.Second
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
	return lastErr
}

// ImageHost drives the upstream's three-request signed upload handshake
// described in spec.md §4.2 and §6: acquire temporary credentials, apply
// for an upload slot, PUT the bytes, commit. Grounded on
// internal/pkg/photostudio/client.go for the client-struct/tuned-transport
// shape and on the retrieval pack's onedrive-go upload client for the
// discrete-step retry shape (chunking/session-range machinery from that
// file is not used — our images upload whole).
type ImageHost struct {
	httpClient *http.Client
	cache      *CredentialCache
	overrides  MirrorOverrides
	attempts   int
	stepTimeout time.Duration
}

// NewImageHost builds an ImageHost. attempts defaults to 3 and stepTimeout
// to 30s per spec.md §4.2 if non-positive.
func NewImageHost(httpClient *http.Client, cache *CredentialCache, overrides MirrorOverrides, attempts int, stepTimeout time.Duration) *ImageHost {
	if attempts <= 0 {
		attempts = 3
	}
	if stepTimeout <= 0 {
		stepTimeout = 30 * time.Second
	}
	return &ImageHost{httpClient: httpClient, cache: cache, overrides: overrides, attempts: attempts, stepTimeout: stepTimeout}
}

type acquireTokenResponse struct {
	AccessKeyID     string `json:"access_key_id"`
	SecretAccessKey string `json:"secret_access_key"`
	SessionToken    string `json:"session_token"`
	ServiceID       string `json:"service_id"`
	ExpiredAt       int64  `json:"expired_at"`
}

type storeInfo struct {
	StoreURI string `json:"StoreUri"`
	Auth     string `json:"Auth"`
}

type applyResponse struct {
	Result struct {
		StoreInfos  []storeInfo `json:"StoreInfos"`
		UploadHosts []string    `json:"UploadHosts"`
		SessionKey  string      `json:"SessionKey"`
	} `json:"Result"`
}

type commitResponse struct {
	Result struct {
		Results []struct {
			URIStatus int    `json:"UriStatus"`
			URI       string `json:"Uri"`
		} `json:"Results"`
	} `json:"Result"`
}

// Upload runs the full handshake for a single image and returns the opaque
// store URI the upstream assigns it.
func (h *ImageHost) Upload(ctx context.Context, cred Credential, data []byte) (string, error) {
	region := cred.Region()
	ep := Resolve(region, h.overrides)

	creds, serviceID, err := h.acquireToken(ctx, ep, cred, region)
	if err != nil {
		return "", fmt.Errorf("%w: acquire token: %v", ErrUploadAuth, err)
	}

	signer := sigv4.NewSigner(serviceID, ep.AWSRegion)

	apply, err := h.apply(ctx, ep, signer, creds, serviceID, len(data))
	if err != nil {
		return "", err
	}
	if len(apply.Result.StoreInfos) == 0 || len(apply.Result.UploadHosts) == 0 {
		return "", fmt.Errorf("%w: apply response missing store info", ErrUpstreamProtocol)
	}

	store := apply.Result.StoreInfos[0]
	host := apply.Result.UploadHosts[0]

	err = retryableStep(ctx, h.attempts, func(attempt int) (bool, error) {
		putErr := h.put(ctx, host, store, data)
		if putErr == nil {
			return false, nil
		}
		log.Warn().Int("attempt", attempt).Err(putErr).Msg("upload PUT step failed, retrying")
		return isNetworkError(putErr), putErr
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUploadNetwork, err)
	}

	var commit commitResponse
	err = retryableStep(ctx, h.attempts, func(attempt int) (bool, error) {
		resp, commitErr := h.commit(ctx, ep, signer, creds, serviceID, apply.Result.SessionKey)
		if commitErr != nil {
			log.Warn().Int("attempt", attempt).Err(commitErr).Msg("upload commit step failed, retrying")
			return isNetworkError(commitErr), commitErr
		}
		commit = resp
		return false, nil
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUploadNetwork, err)
	}

	if len(commit.Result.Results) == 0 {
		return "", fmt.Errorf("%w: commit response has no results", ErrUpstreamProtocol)
	}
	result := commit.Result.Results[0]
	if result.URIStatus != 2000 {
		return "", fmt.Errorf("%w: UriStatus=%d", ErrUploadCommitFailed, result.URIStatus)
	}

	return result.URI, nil
}

func (h *ImageHost) acquireToken(ctx context.Context, ep Endpoints, cred Credential, region Region) (sigv4.Credentials, string, error) {
	if accessKey, secretKey, sessionToken, serviceID, ok := h.cache.Get(ctx, region); ok {
		return sigv4.Credentials{AccessKeyID: accessKey, SecretAccessKey: secretKey, SessionToken: sessionToken}, serviceID, nil
	}

	ctx, cancel := context.WithTimeout(ctx, h.stepTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, ep.Dreamina+"/mweb/v1/get_upload_token", bytes.NewReader([]byte(`{"scene":"aigc_image_upload"}`)))
	if err != nil {
		return sigv4.Credentials{}, "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+cred.String())
	req.Header.Set("Referer", ep.Referer)

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return sigv4.Credentials{}, "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return sigv4.Credentials{}, "", err
	}
	if resp.StatusCode != http.StatusOK {
		return sigv4.Credentials{}, "", fmt.Errorf("status=%d body=%s", resp.StatusCode, string(body))
	}

	var tok acquireTokenResponse
	if err := json.Unmarshal(body, &tok); err != nil {
		return sigv4.Credentials{}, "", err
	}

	ttl := time.Until(time.Unix(tok.ExpiredAt, 0)) - time.Minute
	h.cache.Set(ctx, region, tok.AccessKeyID, tok.SecretAccessKey, tok.SessionToken, tok.ServiceID, ttl)

	return sigv4.Credentials{
		AccessKeyID:     tok.AccessKeyID,
		SecretAccessKey: tok.SecretAccessKey,
		SessionToken:    tok.SessionToken,
	}, tok.ServiceID, nil
}

// apply is not retried (spec.md §4.2: its failure is usually credential-
// related, so retrying it would just repeat the same rejection).
func (h *ImageHost) apply(ctx context.Context, ep Endpoints, signer *sigv4.Signer, creds sigv4.Credentials, serviceID string, fileSize int) (applyResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, h.stepTimeout)
	defer cancel()

	url := fmt.Sprintf("%s/?Action=ApplyImageUpload&Version=2018-08-01&ServiceId=%s&FileSize=%d", ep.Imagex, serviceID, fileSize)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return applyResponse{}, err
	}

	if err := signer.SignGET(ctx, req, creds); err != nil {
		return applyResponse{}, fmt.Errorf("%w: sign apply request: %v", ErrUploadAuth, err)
	}

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return applyResponse{}, fmt.Errorf("%w: %v", ErrUploadNetwork, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return applyResponse{}, err
	}
	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return applyResponse{}, fmt.Errorf("%w: status=%d body=%s", ErrUploadAuth, resp.StatusCode, string(body))
	}
	if resp.StatusCode != http.StatusOK {
		return applyResponse{}, fmt.Errorf("%w: status=%d body=%s", ErrUpstreamProtocol, resp.StatusCode, string(body))
	}

	var out applyResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return applyResponse{}, fmt.Errorf("%w: %v", ErrUpstreamProtocol, err)
	}
	return out, nil
}

func (h *ImageHost) put(ctx context.Context, host string, store storeInfo, data []byte) error {
	ctx, cancel := context.WithTimeout(ctx, h.stepTimeout)
	defer cancel()

	url := fmt.Sprintf("https://%s/upload/v1/%s", host, store.StoreURI)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return err
	}

	checksum := crc32.ChecksumIEEE(data)
	req.Header.Set("Content-Type", "application/octet-stream")
	req.Header.Set("Content-CRC32", strconv.FormatUint(uint64(checksum), 16))
	req.Header.Set("Authorization", store.Auth)
	req.ContentLength = int64(len(data))

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("put status=%d", resp.StatusCode)
	}
	return nil
}

func (h *ImageHost) commit(ctx context.Context, ep Endpoints, signer *sigv4.Signer, creds sigv4.Credentials, serviceID, sessionKey string) (commitResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, h.stepTimeout)
	defer cancel()

	body, err := json.Marshal(map[string]string{"SessionKey": sessionKey})
	if err != nil {
		return commitResponse{}, err
	}

	url := fmt.Sprintf("%s/?Action=CommitImageUpload&Version=2018-08-01&ServiceId=%s", ep.Imagex, serviceID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return commitResponse{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	if err := signer.SignPOST(ctx, req, body, creds); err != nil {
		return commitResponse{}, fmt.Errorf("%w: sign commit request: %v", ErrUploadAuth, err)
	}

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return commitResponse{}, fmt.Errorf("%w: %v", ErrUploadNetwork, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return commitResponse{}, err
	}
	if resp.StatusCode != http.StatusOK {
		return commitResponse{}, fmt.Errorf("commit status=%d body=%s", resp.StatusCode, string(respBody))
	}

	var out commitResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return commitResponse{}, fmt.Errorf("%w: %v", ErrUpstreamProtocol, err)
	}
	return out, nil
}
