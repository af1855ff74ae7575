package agent

import (
	"context"
	"fmt"

	"github.com/taskmind-ai/taskmind/types"
)

// SubtaskExecutor performs one subtask and returns its results map. The
// scheduler's job is sequencing and bookkeeping, not doing the work, so
// execution sits behind this interface and can be tested independently of
// any real work being done.
type SubtaskExecutor interface {
	ExecuteSubtask(ctx context.Context, task *types.MainTask, subtask *types.SubTask) (map[string]any, error)
}

// ExecutorFunc adapts a function to the SubtaskExecutor interface.
type ExecutorFunc func(ctx context.Context, task *types.MainTask, subtask *types.SubTask) (map[string]any, error)

// ExecuteSubtask calls the wrapped function.
func (f ExecutorFunc) ExecuteSubtask(ctx context.Context, task *types.MainTask, subtask *types.SubTask) (map[string]any, error) {
	return f(ctx, task, subtask)
}

// PlaceholderExecutor simulates execution and always succeeds. A real system
// would select an agent from the task's designated agents, dispatch the
// subtask to it and collect the results.
type PlaceholderExecutor struct{}

// ExecuteSubtask returns placeholder results for the subtask.
func (PlaceholderExecutor) ExecuteSubtask(ctx context.Context, task *types.MainTask, subtask *types.SubTask) (map[string]any, error) {
	return map[string]any{
		"mock_output":    fmt.Sprintf("Successfully completed %s", subtask.Name),
		"status_message": "Mock execution successful",
	}, nil
}

// Ensure PlaceholderExecutor implements SubtaskExecutor
var _ SubtaskExecutor = PlaceholderExecutor{}
