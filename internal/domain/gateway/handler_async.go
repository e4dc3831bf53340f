package gateway

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dreamina/aigateway/internal/domain/task"
	"github.com/dreamina/aigateway/internal/pkg/response"
	"github.com/dreamina/aigateway/internal/pkg/validator"
)

func taskTypeFor(s string) task.Type {
	switch s {
	case "image_composition":
		return task.TypeImageComposition
	case "video_generation":
		return task.TypeVideoGeneration
	default:
		return task.TypeImageGeneration
	}
}

// buildParams decodes req's images and assembles the opaque Params map the
// Task Store carries and the Generation Controller's Runner decodes back.
func buildParams(credRaw string, req AsyncSubmitRequest) (task.Params, error) {
	var images [][]byte
	if len(req.Images) > 0 {
		decoded, err := decodeImages(req.Images)
		if err != nil {
			return nil, err
		}
		images = decoded
	}

	return task.Params{
		"credential":       credRaw,
		"model":            req.Model,
		"prompt":           req.Prompt,
		"negative_prompt":  req.NegativePrompt,
		"ratio":            req.Ratio,
		"resolution_tier":  req.Resolution,
		"images":           images,
		"duration_seconds": req.DurationSeconds,
		"seed":             req.Seed,
		"sample_strength":  req.SampleStrength,
		"count":            req.Count,
	}, nil
}

// AsyncSubmit handles POST /v1/async/{images,videos}/... : enqueue a task
// and return its id.
func (h *Handler) AsyncSubmit(w http.ResponseWriter, r *http.Request) {
	cred, ok := requireCredential(w, r)
	if !ok {
		return
	}

	var req AsyncSubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	params, err := buildParams(cred.String(), req)
	if err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	t := h.store.Create(taskTypeFor(req.TaskType), params, req.Priority, cred.SessionID())
	response.Created(w, toTaskResponse(t))
}

// BatchSubmit handles POST /v1/async/batch/submit: enqueue several jobs in
// one call.
func (h *Handler) BatchSubmit(w http.ResponseWriter, r *http.Request) {
	cred, ok := requireCredential(w, r)
	if !ok {
		return
	}

	var req BatchSubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	tasks := make([]TaskResponse, 0, len(req.Jobs))
	for _, job := range req.Jobs {
		if errs := validator.Validate(&job); errs != nil {
			response.ValidationError(w, errs)
			return
		}
		params, err := buildParams(cred.String(), job)
		if err != nil {
			response.BadRequest(w, err.Error())
			return
		}
		t := h.store.Create(taskTypeFor(job.TaskType), params, job.Priority, cred.SessionID())
		tasks = append(tasks, toTaskResponse(t))
	}

	response.Created(w, map[string]interface{}{"tasks": tasks})
}

// TaskStatus handles GET /v1/async/tasks/{id}/status.
func (h *Handler) TaskStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	t, err := h.store.Get(id)
	if err != nil {
		writeError(w, err)
		return
	}
	response.OK(w, toTaskResponse(t))
}

// TaskResult handles GET /v1/async/tasks/{id}/result.
func (h *Handler) TaskResult(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	t, err := h.store.Get(id)
	if err != nil {
		writeError(w, err)
		return
	}
	if t.Status != task.StatusCompleted {
		writeError(w, task.ErrNotCompleted)
		return
	}
	response.OK(w, map[string]interface{}{"result": t.Result})
}

// CancelTask handles DELETE /v1/async/tasks/{id}/cancel. Idempotent: a
// second cancel on an already-terminal task returns 200 without error.
func (h *Handler) CancelTask(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	_, err := h.scheduler.Cancel(id)
	if err != nil {
		writeError(w, err)
		return
	}
	response.OK(w, map[string]string{"id": id, "status": "cancelled"})
}

// BatchCancel handles DELETE /v1/async/batch/cancel.
func (h *Handler) BatchCancel(w http.ResponseWriter, r *http.Request) {
	var req BatchCancelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	results := make(map[string]string, len(req.TaskIDs))
	for _, id := range req.TaskIDs {
		if _, err := h.scheduler.Cancel(id); err != nil {
			results[id] = err.Error()
			continue
		}
		results[id] = "cancelled"
	}
	response.OK(w, map[string]interface{}{"results": results})
}

// DeleteTask handles DELETE /v1/async/tasks/{id}.
func (h *Handler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.store.Delete(id); err != nil {
		writeError(w, err)
		return
	}
	response.NoContent(w)
}

func toTaskResponse(t *task.Task) TaskResponse {
	resp := TaskResponse{
		ID:        t.ID,
		Type:      string(t.Type),
		Status:    string(t.Status),
		Progress:  t.Progress,
		Result:    t.Result,
		Error:     t.Error,
		CreatedAt: t.CreatedAt.Format(timeLayout),
		UpdatedAt: t.UpdatedAt.Format(timeLayout),
	}
	if t.StartedAt != nil {
		s := t.StartedAt.Format(timeLayout)
		resp.StartedAt = &s
	}
	if t.CompletedAt != nil {
		c := t.CompletedAt.Format(timeLayout)
		resp.CompletedAt = &c
	}
	return resp
}

const timeLayout = "2006-01-02T15:04:05.000Z07:00"
