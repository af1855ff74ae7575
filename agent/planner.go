package agent

import (
	"context"
	"strings"

	"github.com/taskmind-ai/taskmind/types"
)

// Planner decomposes a MainTask's user query into SubTasks. A real system
// plugs in an LLM-backed planner here; the template planner covers the
// built-in decompositions.
type Planner interface {
	PlanSubtasks(ctx context.Context, task *types.MainTask, ids IDGenerator) ([]types.SubTask, error)
}

// PlannerFunc adapts a function to the Planner interface.
type PlannerFunc func(ctx context.Context, task *types.MainTask, ids IDGenerator) ([]types.SubTask, error)

// PlanSubtasks calls the wrapped function.
func (f PlannerFunc) PlanSubtasks(ctx context.Context, task *types.MainTask, ids IDGenerator) ([]types.SubTask, error) {
	return f(ctx, task, ids)
}

// TemplatePlanner decomposes queries with simple keyword templates. Each
// template produces a linear dependency chain.
type TemplatePlanner struct{}

// PlanSubtasks decomposes the task's user query into a subtask chain.
func (TemplatePlanner) PlanSubtasks(ctx context.Context, task *types.MainTask, ids IDGenerator) ([]types.SubTask, error) {
	query := strings.ToLower(task.UserQuery)

	switch {
	case strings.Contains(query, "feature x"):
		return chain(ids,
			step{"Design Feature X", "Detailed design for Feature X"},
			step{"Implement Feature X", "Write code for Feature X"},
			step{"Test Feature X", "Test Feature X"},
		), nil

	case strings.Contains(query, "report"):
		return chain(ids,
			step{"Gather Data", "Collect all necessary data for the report"},
			step{"Generate Report", "Compile and format the report"},
		), nil

	default:
		return chain(ids,
			step{"Generic Step 1", "First general step for: " + task.UserQuery},
			step{"Generic Step 2", "Second general step"},
		), nil
	}
}

type step struct {
	name        string
	description string
}

// chain builds subtasks where each step depends on the previous one.
func chain(ids IDGenerator, steps ...step) []types.SubTask {
	subtasks := make([]types.SubTask, 0, len(steps))
	for i, s := range steps {
		var deps []string
		if i > 0 {
			deps = []string{subtasks[i-1].ID}
		}
		subtasks = append(subtasks, types.NewSubTask(ids.NewID(PrefixSubTask), s.name, s.description, deps...))
	}
	return subtasks
}

// Ensure TemplatePlanner implements Planner
var _ Planner = TemplatePlanner{}
