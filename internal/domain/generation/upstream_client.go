package generation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/dreamina/aigateway/internal/domain/payload"
	"github.com/dreamina/aigateway/internal/pkg/upstream"
)

// draftClient wraps the two upstream calls the Generation Controller drives
// directly (spec.md §6): submit and poll. Grounded on
// internal/pkg/upstream/imagehost.go's client-struct/tuned-transport shape,
// narrowed to these two plain bearer-authenticated JSON calls (no SigV4 —
// only the upload handshake is signed).
type draftClient struct {
	httpClient *http.Client
	overrides  upstream.MirrorOverrides
}

func newDraftClient(httpClient *http.Client, overrides upstream.MirrorOverrides) *draftClient {
	return &draftClient{httpClient: httpClient, overrides: overrides}
}

type generateResponse struct {
	AigcData struct {
		HistoryRecordID string `json:"history_record_id"`
	} `json:"aigc_data"`
}

// submit POSTs an envelope to aigc_draft/generate and returns the upstream
// history record id.
func (c *draftClient) submit(ctx context.Context, cred upstream.Credential, env payload.Envelope) (string, error) {
	ep := upstream.Resolve(cred.Region(), c.overrides)

	body, err := json.Marshal(env)
	if err != nil {
		return "", fmt.Errorf("%w: marshal envelope: %v", ErrUpstreamProtocol, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, ep.Dreamina+"/mweb/v1/aigc_draft/generate", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+cred.String())
	req.Header.Set("Referer", ep.Referer)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: generate status=%d body=%s", ErrUpstreamProtocol, resp.StatusCode, string(respBody))
	}

	var out generateResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpstreamProtocol, err)
	}
	if out.AigcData.HistoryRecordID == "" {
		return "", fmt.Errorf("%w: missing history_record_id", ErrUpstreamProtocol)
	}
	return out.AigcData.HistoryRecordID, nil
}

// historyItem is one entry of a history record's item_list. Upstream
// responses have been observed to place the asset URL under different
// keys depending on generation kind, so extractAssetURLs (result.go)
// checks each in turn.
type historyItem struct {
	ImageURL  string `json:"image_url"`
	VideoURL  string `json:"video_url"`
	URL       string `json:"url"`
	LargeImage struct {
		ImageURL string `json:"image_url"`
	} `json:"large_images"`
}

type historyRecord struct {
	Status     string        `json:"status"`
	FailCode   int           `json:"fail_code"`
	ItemList   []historyItem `json:"item_list"`
	Task struct {
		FinishTime int64 `json:"finish_time"`
	} `json:"task"`
}

// fetchHistory polls get_history_by_ids for a single record id and decodes
// its entry. Shaped as a poller.FetchFunc once bound to historyRecordID by
// the caller.
func (c *draftClient) fetchHistory(ctx context.Context, cred upstream.Credential, historyRecordID string) (historyRecord, error) {
	ep := upstream.Resolve(cred.Region(), c.overrides)

	body, err := json.Marshal(map[string][]string{"history_ids": {historyRecordID}})
	if err != nil {
		return historyRecord{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, ep.Dreamina+"/mweb/v1/get_history_by_ids", bytes.NewReader(body))
	if err != nil {
		return historyRecord{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+cred.String())
	req.Header.Set("Referer", ep.Referer)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return historyRecord{}, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return historyRecord{}, err
	}
	if resp.StatusCode != http.StatusOK {
		return historyRecord{}, fmt.Errorf("%w: get_history_by_ids status=%d body=%s", ErrUpstreamProtocol, resp.StatusCode, string(respBody))
	}

	var out map[string]historyRecord
	if err := json.Unmarshal(respBody, &out); err != nil {
		return historyRecord{}, fmt.Errorf("%w: %v", ErrUpstreamProtocol, err)
	}
	record, ok := out[historyRecordID]
	if !ok {
		return historyRecord{}, fmt.Errorf("%w: response missing record %s", ErrUpstreamProtocol, historyRecordID)
	}
	return record, nil
}
