package generation

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dreamina/aigateway/internal/domain/task"
)

func TestRunnerRejectsUnknownTaskType(t *testing.T) {
	r := NewRunner(nil)
	tsk := &task.Task{Type: task.Type("unknown_type"), Params: task.Params{}}

	_, err := r.Run(context.Background(), tsk, nil)

	assert.ErrorContains(t, err, "unknown task type")
}
