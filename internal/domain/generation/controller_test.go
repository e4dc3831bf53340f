package generation

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dreamina/aigateway/internal/domain/payload"
	"github.com/dreamina/aigateway/internal/domain/quota"
	"github.com/dreamina/aigateway/internal/domain/upload"
	"github.com/dreamina/aigateway/internal/pkg/upstream"
)

func TestValidateRequiresPrompt(t *testing.T) {
	err := validate(payload.ModeText2Img, Input{})
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

func TestValidateRequiresImagesForImg2Img(t *testing.T) {
	err := validate(payload.ModeImg2Img, Input{Prompt: "a cat"})
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

func TestValidateRequiresImagesForImg2Video(t *testing.T) {
	err := validate(payload.ModeImg2Video, Input{Prompt: "a cat"})
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

func TestValidateAllowsText2ImgWithoutImages(t *testing.T) {
	err := validate(payload.ModeText2Img, Input{Prompt: "a cat"})
	assert.NoError(t, err)
}

// fakeHost is a trivial upload.Host that returns a deterministic store URI.
type fakeHost struct{}

func (fakeHost) Upload(ctx context.Context, cred upstream.Credential, data []byte) (string, error) {
	return "store://uploaded", nil
}

// fakeLedger is an in-memory quota.Ledger that always allows and records
// increments, for exercising the Controller without a real backend.
type fakeLedger struct {
	increments int
}

func (f *fakeLedger) Check(ctx context.Context, sessionID string, service quota.Service) (quota.CheckResult, error) {
	return quota.CheckResult{Allowed: true, Limit: 10}, nil
}
func (f *fakeLedger) Increment(ctx context.Context, sessionID string, service quota.Service) error {
	f.increments++
	return nil
}
func (f *fakeLedger) Stats(ctx context.Context, date string) (quota.DailyStats, error) {
	return quota.DailyStats{}, nil
}
func (f *fakeLedger) History(ctx context.Context, sessionID string, days int) ([]quota.Usage, error) {
	return nil, nil
}
func (f *fakeLedger) Cleanup(ctx context.Context, retentionDays int) (int, error) { return 0, nil }
func (f *fakeLedger) Close() error                                                { return nil }

// newTestController builds a Controller whose draftClient talks to srv
// instead of the real upstream, by overriding the Dreamina mirror for
// RegionCN (the credential used in tests resolves to CN).
func newTestController(t *testing.T, srv *httptest.Server, ledger *fakeLedger) *Controller {
	t.Helper()
	overrides := upstream.MirrorOverrides{JimengCN: srv.URL}
	return NewController(upload.NewPipeline(fakeHost{}), ledger, srv.Client(), overrides)
}

func TestGenerateImageHappyPath(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/mweb/v1/aigc_draft/generate", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"aigc_data": map[string]string{"history_record_id": "hist-1"},
		})
	})
	mux.HandleFunc("/mweb/v1/get_history_by_ids", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"hist-1": map[string]interface{}{
				"status": "completed",
				"task":   map[string]interface{}{"finish_time": 1},
				"item_list": []map[string]string{
					{"image_url": "https://example.com/1.png"},
				},
			},
		})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	ledger := &fakeLedger{}
	ctrl := newTestController(t, srv, ledger)

	cred := upstream.NewCredential("refresh-token-cn")
	urls, err := ctrl.GenerateImage(context.Background(), cred, Input{Prompt: "a cat", Count: 1}, nil)

	require.NoError(t, err)
	assert.Equal(t, []string{"https://example.com/1.png"}, urls)
	assert.Equal(t, 1, ledger.increments)
}

func TestGenerateReturnsResultExtractionFailedWhenItemsHaveNoURLs(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/mweb/v1/aigc_draft/generate", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"aigc_data": map[string]string{"history_record_id": "hist-1"},
		})
	})
	mux.HandleFunc("/mweb/v1/get_history_by_ids", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"hist-1": map[string]interface{}{
				"status":     "completed",
				"task":       map[string]interface{}{"finish_time": 1},
				"item_list":  []map[string]string{{}},
			},
		})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	ledger := &fakeLedger{}
	ctrl := newTestController(t, srv, ledger)

	cred := upstream.NewCredential("refresh-token-cn")
	_, err := ctrl.GenerateImage(context.Background(), cred, Input{Prompt: "a cat"}, nil)

	assert.ErrorIs(t, err, ErrResultExtractionFailed)
	assert.Equal(t, 0, ledger.increments)
}

func TestGenerateImageCompositionUploadsImagesFirst(t *testing.T) {
	var gotImageURIs []string
	mux := http.NewServeMux()
	mux.HandleFunc("/mweb/v1/aigc_draft/generate", func(w http.ResponseWriter, r *http.Request) {
		var env payload.Envelope
		_ = json.NewDecoder(r.Body).Decode(&env)
		gotImageURIs = env.ImageURIs
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"aigc_data": map[string]string{"history_record_id": "hist-1"},
		})
	})
	mux.HandleFunc("/mweb/v1/get_history_by_ids", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"hist-1": map[string]interface{}{
				"status":    "completed",
				"item_list": []map[string]string{{"image_url": "https://example.com/blend.png"}},
			},
		})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	ledger := &fakeLedger{}
	ctrl := newTestController(t, srv, ledger)

	cred := upstream.NewCredential("refresh-token-cn")
	urls, err := ctrl.GenerateImageComposition(context.Background(), cred, Input{
		Prompt: "blend these", Images: [][]byte{{0xFF, 0xD8, 0xFF}},
	}, nil)

	require.NoError(t, err)
	assert.Equal(t, []string{"https://example.com/blend.png"}, urls)
	assert.Equal(t, []string{"store://uploaded"}, gotImageURIs)
}
