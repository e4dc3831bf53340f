package gateway

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dreamina/aigateway/internal/domain/generation"
	"github.com/dreamina/aigateway/internal/domain/poller"
	"github.com/dreamina/aigateway/internal/domain/quota"
	"github.com/dreamina/aigateway/internal/domain/task"
)

func TestWriteErrorMapsDomainErrorsToStatusCodes(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"invalid request", generation.ErrInvalidRequest, http.StatusBadRequest},
		{"unsupported model", generation.ErrUnsupportedModel, http.StatusBadRequest},
		{"quota exceeded", quota.ErrQuotaExceeded, http.StatusTooManyRequests},
		{"quota io", quota.ErrIO, http.StatusInternalServerError},
		{"upstream generation failed", poller.ErrUpstreamGenerationFailed, http.StatusBadGateway},
		{"poll timeout", poller.ErrPollTimeout, http.StatusGatewayTimeout},
		{"cancelled", poller.ErrCancelled, http.StatusConflict},
		{"result extraction failed", generation.ErrResultExtractionFailed, http.StatusBadGateway},
		{"task not found", task.ErrNotFound, http.StatusNotFound},
		{"task not completed", task.ErrNotCompleted, http.StatusConflict},
		{"task terminal", task.ErrTerminal, http.StatusConflict},
		{"unrecognized error", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			writeError(w, tc.err)
			assert.Equal(t, tc.status, w.Code)
		})
	}
}

func TestWriteErrorMatchesWrappedErrors(t *testing.T) {
	wrapped := errors.New("model xyz: " + generation.ErrUnsupportedModel.Error())
	w := httptest.NewRecorder()

	writeError(w, errors.Join(generation.ErrUnsupportedModel, wrapped))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
