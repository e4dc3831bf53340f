package gateway

import (
	"errors"
	"net/http"

	"github.com/dreamina/aigateway/internal/domain/generation"
	"github.com/dreamina/aigateway/internal/domain/poller"
	"github.com/dreamina/aigateway/internal/domain/quota"
	"github.com/dreamina/aigateway/internal/domain/task"
	"github.com/dreamina/aigateway/internal/pkg/response"
	"github.com/dreamina/aigateway/internal/pkg/upstream"
)

// writeError maps a domain error to its HTTP status and code per spec.md
// §7's taxonomy and writes it through the shared response package. Errors
// not recognized here fall through to a generic 500.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, generation.ErrInvalidRequest):
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", err.Error())

	case errors.Is(err, generation.ErrUnsupportedModel):
		response.Error(w, http.StatusBadRequest, "UNSUPPORTED_MODEL", err.Error())

	case errors.Is(err, quota.ErrQuotaExceeded):
		response.Error(w, http.StatusTooManyRequests, "QUOTA_EXCEEDED", err.Error())

	case errors.Is(err, quota.ErrIO):
		response.Error(w, http.StatusInternalServerError, "QUOTA_IO", "quota ledger unavailable")

	case errors.Is(err, upstream.ErrUploadAuth):
		response.Error(w, http.StatusBadGateway, "UPLOAD_AUTH", err.Error())

	case errors.Is(err, upstream.ErrUploadCommitFailed):
		response.Error(w, http.StatusBadGateway, "UPLOAD_COMMIT_FAILED", err.Error())

	case errors.Is(err, upstream.ErrUploadNetwork), errors.Is(err, upstream.ErrUploadTimeout):
		response.Error(w, http.StatusBadGateway, "UPLOAD_NETWORK", err.Error())

	case errors.Is(err, generation.ErrUpstreamProtocol), errors.Is(err, upstream.ErrUpstreamProtocol):
		response.Error(w, http.StatusBadGateway, "UPSTREAM_PROTOCOL_ERROR", err.Error())

	case errors.Is(err, poller.ErrUpstreamGenerationFailed):
		response.Error(w, http.StatusBadGateway, "UPSTREAM_GENERATION_FAILED", err.Error())

	case errors.Is(err, poller.ErrPollTimeout):
		response.Error(w, http.StatusGatewayTimeout, "POLL_TIMEOUT", err.Error())

	case errors.Is(err, poller.ErrCancelled):
		response.Error(w, http.StatusConflict, "CANCELLED", "task was cancelled")

	case errors.Is(err, generation.ErrResultExtractionFailed):
		response.Error(w, http.StatusBadGateway, "RESULT_EXTRACTION_FAILED", err.Error())

	case errors.Is(err, task.ErrNotFound):
		response.NotFound(w, "task not found")

	case errors.Is(err, task.ErrNotCompleted):
		response.Conflict(w, "task has not completed yet")

	case errors.Is(err, task.ErrTerminal), errors.Is(err, task.ErrInvalidTransition):
		response.Conflict(w, err.Error())

	default:
		response.InternalErrorWithError(w, err)
	}
}
