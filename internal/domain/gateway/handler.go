// Package gateway is the HTTP Surface (spec.md §4.9): chi handlers/routes
// translating the sync and async generation endpoints onto the Generation
// Controller, Task Store/Scheduler, and Quota Ledger.
package gateway

import (
	"time"

	"github.com/dreamina/aigateway/internal/domain/generation"
	"github.com/dreamina/aigateway/internal/domain/quota"
	"github.com/dreamina/aigateway/internal/domain/task"
)

// Handler holds the collaborators every route needs. One instance is built
// at startup and mounted into the router.
type Handler struct {
	controller *generation.Controller
	store      *task.Store
	scheduler  *task.Scheduler
	ledger     quota.Ledger
	startedAt  time.Time
}

// NewHandler wires a Handler from its collaborators.
func NewHandler(controller *generation.Controller, store *task.Store, scheduler *task.Scheduler, ledger quota.Ledger) *Handler {
	return &Handler{
		controller: controller,
		store:      store,
		scheduler:  scheduler,
		ledger:     ledger,
		startedAt:  time.Now(),
	}
}
