package testutil

import (
	"fmt"

	"github.com/taskmind-ai/taskmind/types"
)

// ManagerState returns a manager agent state with predictable fields.
func ManagerState(id string) types.AgentState {
	return types.NewAgentState(id, "Test Manager "+id, types.RoleManager, "test-session")
}

// MainTask returns a pending main task with the given objective.
func MainTask(id, query string) types.MainTask {
	goal := types.NewGoal(id+"_goal", query, 1)
	return types.NewMainTask(id, query, goal, nil)
}

// ChainSubTasks returns n subtasks where each depends on its predecessor.
// IDs are "st-1" through "st-n".
func ChainSubTasks(n int) []types.SubTask {
	tasks := make([]types.SubTask, 0, n)
	for i := 1; i <= n; i++ {
		id := fmt.Sprintf("st-%d", i)
		var deps []string
		if i > 1 {
			deps = []string{fmt.Sprintf("st-%d", i-1)}
		}
		tasks = append(tasks, types.NewSubTask(id, fmt.Sprintf("Step %d", i), fmt.Sprintf("Execute step %d", i), deps...))
	}
	return tasks
}
