package agent

import (
	"context"
	"fmt"
	"testing"

	"pgregory.net/rapid"

	"github.com/taskmind-ai/taskmind/agent/store"
	"github.com/taskmind-ai/taskmind/types"
)

// Property: for any acyclic dependency graph, NextExecutableGroup never
// returns a subtask whose dependencies are not all COMPLETED, and the
// returned subtask is always PENDING.
func TestProperty_NextExecutableGroupRespectsDependencies(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		numSubtasks := rapid.IntRange(1, 12).Draw(rt, "numSubtasks")

		statuses := []types.TaskStatus{
			types.TaskStatusPending,
			types.TaskStatusInProgress,
			types.TaskStatusCompleted,
			types.TaskStatusFailed,
			types.TaskStatusCancelled,
		}

		// Dependencies only point at earlier indices, so the graph is
		// acyclic by construction.
		subtasks := make([]types.SubTask, 0, numSubtasks)
		for i := 0; i < numSubtasks; i++ {
			st := types.NewSubTask(fmt.Sprintf("subtask_%d", i), fmt.Sprintf("Step %d", i), "generated")
			st.Status = statuses[rapid.IntRange(0, len(statuses)-1).Draw(rt, fmt.Sprintf("status_%d", i))]
			if i > 0 {
				numDeps := rapid.IntRange(0, i).Draw(rt, fmt.Sprintf("numDeps_%d", i))
				seen := map[int]bool{}
				for d := 0; d < numDeps; d++ {
					dep := rapid.IntRange(0, i-1).Draw(rt, fmt.Sprintf("dep_%d_%d", i, d))
					if !seen[dep] {
						seen[dep] = true
						st.Dependencies = append(st.Dependencies, fmt.Sprintf("subtask_%d", dep))
					}
				}
			}
			subtasks = append(subtasks, st)
		}

		s := store.NewMemoryAgentStore(store.DefaultStoreConfig())
		defer s.Close()
		state := types.NewAgentState("mgr-prop", "Manager Agent", types.RoleManager, "s")
		m := NewManager(state, s, WithIDGenerator(&seqIDGenerator{}))

		ctx := context.Background()
		task, err := m.InitiateMainTask(ctx, "generated", nil, "generated goal")
		if err != nil {
			rt.Fatalf("InitiateMainTask failed: %v", err)
		}
		task.SubTasks = subtasks
		if err := m.installMainTask(task); err != nil {
			rt.Fatalf("install failed: %v", err)
		}

		group := m.NextExecutableGroup()
		if len(group) > 1 {
			rt.Fatalf("group size must be at most one, got %d", len(group))
		}
		if len(group) == 0 {
			return
		}

		chosen := group[0]
		if chosen.Status != types.TaskStatusPending {
			rt.Fatalf("chosen subtask %s is not pending: %s", chosen.ID, chosen.Status)
		}

		current := m.CurrentMainTask()
		for _, depID := range chosen.Dependencies {
			dep := current.SubTaskByID(depID)
			if dep == nil {
				rt.Fatalf("chosen subtask %s has missing dependency %s", chosen.ID, depID)
			}
			if dep.Status != types.TaskStatusCompleted {
				rt.Fatalf("chosen subtask %s has incomplete dependency %s (%s)",
					chosen.ID, depID, dep.Status)
			}
		}
	})
}
