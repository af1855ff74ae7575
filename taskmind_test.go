package taskmind

import (
	"context"
	"testing"

	"github.com/taskmind-ai/taskmind/types"
)

func TestEngineRun(t *testing.T) {
	e, err := New()
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	defer e.Close()

	result, err := e.Run(context.Background(), "build a report")
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	if result.Status != types.TaskStatusCompleted {
		t.Errorf("status = %q, want %q", result.Status, types.TaskStatusCompleted)
	}
	if len(result.SubTasks) != 2 {
		t.Errorf("subtask count = %d, want 2", len(result.SubTasks))
	}
	if result.LearnedRulesCount == 0 {
		t.Error("expected at least one learned rule")
	}
}

func TestEngineRunBoundedIterations(t *testing.T) {
	e, err := New(WithMaxIterations(1))
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	defer e.Close()

	result, err := e.Run(context.Background(), "build feature x")
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	if result.Status != types.TaskStatusFailed {
		t.Errorf("status = %q, want %q", result.Status, types.TaskStatusFailed)
	}
	if result.Iterations != 1 {
		t.Errorf("iterations = %d, want 1", result.Iterations)
	}
}

func TestEngineCustomAgent(t *testing.T) {
	e, err := New(WithAgentID("mgr-custom"), WithAgentName("Custom Manager"))
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	defer e.Close()

	if got := e.Manager().ID(); got != "mgr-custom" {
		t.Errorf("manager ID = %q, want %q", got, "mgr-custom")
	}
}
