package gateway

import (
	"github.com/go-chi/chi/v5"
)

// Routes returns the gateway's router. Every route authenticates via the
// caller-supplied credential in the Authorization header rather than a
// session-cookie/JWT auth middleware, so unlike the teacher's domain
// routers this one takes no authMiddleware parameter.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/ping", h.Ping)
	r.Get("/v1/models", h.ListModels)
	r.Get("/usage/{session}", h.Usage)

	r.Post("/v1/images/generations", h.GenerateImage)
	r.Post("/v1/images/compositions", h.GenerateComposition)
	r.Post("/v1/videos/generations", h.GenerateVideo)
	r.Post("/v1/chat/completions", h.ChatCompletions)

	r.Route("/v1/async", func(r chi.Router) {
		r.Post("/images/generations", h.AsyncSubmit)
		r.Post("/images/compositions", h.AsyncSubmit)
		r.Post("/videos/generations", h.AsyncSubmit)

		r.Post("/batch/submit", h.BatchSubmit)
		r.Delete("/batch/cancel", h.BatchCancel)

		r.Get("/tasks/{id}/status", h.TaskStatus)
		r.Get("/tasks/{id}/result", h.TaskResult)
		r.Delete("/tasks/{id}/cancel", h.CancelTask)
		r.Delete("/tasks/{id}", h.DeleteTask)
	})

	return r
}
