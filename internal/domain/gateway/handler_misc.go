package gateway

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dreamina/aigateway/internal/domain/payload"
	"github.com/dreamina/aigateway/internal/pkg/response"
)

// ListModels handles GET /v1/models.
func (h *Handler) ListModels(w http.ResponseWriter, r *http.Request) {
	models := make([]ModelInfo, 0)
	for region, table := range payload.Models {
		for id := range table {
			models = append(models, ModelInfo{ID: id, Region: string(region)})
		}
	}
	response.OK(w, map[string]interface{}{"models": models})
}

// Ping handles GET /ping.
func (h *Handler) Ping(w http.ResponseWriter, r *http.Request) {
	response.OK(w, map[string]interface{}{
		"status":         "ok",
		"uptime_seconds": int(time.Since(h.startedAt).Seconds()),
	})
}

// Usage handles GET /usage/{session}.
func (h *Handler) Usage(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "session")

	days := 30
	if raw := r.URL.Query().Get("days"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			days = n
		}
	}

	rows, err := h.ledger.History(r.Context(), sessionID, days)
	if err != nil {
		writeError(w, err)
		return
	}

	history := make([]UsageDayEntry, 0, len(rows))
	for _, u := range rows {
		history = append(history, UsageDayEntry{
			Date:        u.Date,
			ImageCount:  u.ImageCount,
			VideoCount:  u.VideoCount,
			AvatarCount: u.AvatarCount,
		})
	}

	response.OK(w, UsageResponse{SessionID: sessionID, History: history})
}
