package generation

import (
	"context"
	"fmt"

	"github.com/dreamina/aigateway/internal/domain/task"
	"github.com/dreamina/aigateway/internal/pkg/upstream"
)

// Runner adapts Controller to the task.Runner interface the Task Scheduler
// drives: it decodes a Task's opaque Params back into an Input and
// dispatches to the operation matching the Task's Type.
type Runner struct {
	controller *Controller
}

// NewRunner builds a task.Runner backed by controller.
func NewRunner(controller *Controller) *Runner {
	return &Runner{controller: controller}
}

// Run implements task.Runner.
func (r *Runner) Run(ctx context.Context, t *task.Task, onProgress func(progress int)) (interface{}, error) {
	credRaw := strParam(t.Params, "credential")
	cred := upstream.NewCredential(credRaw)
	in := InputFromParams(t.Params)

	switch t.Type {
	case task.TypeImageGeneration:
		return r.controller.GenerateImage(ctx, cred, in, onProgress)
	case task.TypeImageComposition:
		return r.controller.GenerateImageComposition(ctx, cred, in, onProgress)
	case task.TypeVideoGeneration:
		return r.controller.GenerateVideo(ctx, cred, in, onProgress)
	default:
		return nil, fmt.Errorf("generation: unknown task type %q", t.Type)
	}
}
