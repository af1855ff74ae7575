package store

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/taskmind-ai/taskmind/types"
)

// newTestAgentState builds a populated agent document for round-trip checks.
func newTestAgentState(id string) *types.AgentState {
	state := types.NewAgentState(id, "Manager Agent", types.RoleManager, "session-"+id)
	state.STM.History = append(state.STM.History, types.MemoryMessage{Role: "user", Content: "build a report"})
	state.STM.Scratchpad["note"] = "scratch"
	state.LTM.KnowledgeBase["domain"] = "reporting"
	state.LTM.LearnedRules = append(state.LTM.LearnedRules, types.Rule{
		ID:                  "rule_1",
		Description:         "Review task outcomes",
		Context:             "task_review",
		ActionableGuideline: "Check outputs before shipping",
		Source:              "retrospection_maintask_x",
		ValidationCount:     2,
	})
	state.Config["planner"] = "template"
	return &state
}

// assertStatesEqual compares two agent states by their JSON encoding, which
// sidesteps numeric type differences introduced by JSON round-trips.
func assertStatesEqual(t *testing.T, want, got *types.AgentState) {
	t.Helper()
	wantJSON, err := json.Marshal(want)
	if err != nil {
		t.Fatalf("failed to marshal expected state: %v", err)
	}
	gotJSON, err := json.Marshal(got)
	if err != nil {
		t.Fatalf("failed to marshal actual state: %v", err)
	}
	if string(wantJSON) != string(gotJSON) {
		t.Errorf("state mismatch:\n got: %s\nwant: %s", gotJSON, wantJSON)
	}
}

// runAgentStoreSuite exercises the AgentStore contract against any backend.
func runAgentStoreSuite(t *testing.T, s AgentStore) {
	ctx := context.Background()

	t.Run("Ping", func(t *testing.T) {
		if err := s.Ping(ctx); err != nil {
			t.Errorf("Ping failed: %v", err)
		}
	})

	t.Run("EnsureSchemaIdempotent", func(t *testing.T) {
		if err := s.EnsureSchema(ctx); err != nil {
			t.Fatalf("EnsureSchema failed: %v", err)
		}
		if err := s.EnsureSchema(ctx); err != nil {
			t.Errorf("second EnsureSchema failed: %v", err)
		}
	})

	t.Run("SaveGetRoundTrip", func(t *testing.T) {
		state := newTestAgentState("agent-roundtrip")
		if err := s.Save(ctx, state); err != nil {
			t.Fatalf("Save failed: %v", err)
		}

		got, err := s.Get(ctx, "agent-roundtrip")
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		assertStatesEqual(t, state, got)
	})

	t.Run("SaveOverwrites", func(t *testing.T) {
		state := newTestAgentState("agent-upsert")
		if err := s.Save(ctx, state); err != nil {
			t.Fatalf("Save failed: %v", err)
		}

		state.Name = "Renamed Agent"
		state.LTM.LearnedRules[0].ValidationCount = 5
		if err := s.Save(ctx, state); err != nil {
			t.Fatalf("second Save failed: %v", err)
		}

		got, err := s.Get(ctx, "agent-upsert")
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if got.Name != "Renamed Agent" {
			t.Errorf("expected updated name, got %s", got.Name)
		}
		if got.LTM.LearnedRules[0].ValidationCount != 5 {
			t.Errorf("expected updated rule count, got %d", got.LTM.LearnedRules[0].ValidationCount)
		}
	})

	t.Run("GetMissing", func(t *testing.T) {
		if _, err := s.Get(ctx, "no-such-agent"); err != ErrNotFound {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("SaveInvalid", func(t *testing.T) {
		if err := s.Save(ctx, nil); err != ErrInvalidInput {
			t.Errorf("expected ErrInvalidInput for nil state, got %v", err)
		}
		if err := s.Save(ctx, &types.AgentState{}); err != ErrInvalidInput {
			t.Errorf("expected ErrInvalidInput for empty id, got %v", err)
		}
	})

	t.Run("List", func(t *testing.T) {
		for i := 0; i < 3; i++ {
			state := newTestAgentState(fmt.Sprintf("agent-list-%d", i))
			if err := s.Save(ctx, state); err != nil {
				t.Fatalf("Save failed: %v", err)
			}
		}

		agents, err := s.List(ctx)
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}

		found := 0
		for _, a := range agents {
			if len(a.ID) >= 10 && a.ID[:10] == "agent-list" {
				found++
			}
		}
		if found != 3 {
			t.Errorf("expected 3 listed agents, found %d", found)
		}
	})
}

func TestMemoryAgentStore(t *testing.T) {
	s := NewMemoryAgentStore(DefaultStoreConfig())
	defer s.Close()

	runAgentStoreSuite(t, s)

	t.Run("CloneIsolation", func(t *testing.T) {
		ctx := context.Background()
		state := newTestAgentState("agent-clone")
		if err := s.Save(ctx, state); err != nil {
			t.Fatalf("Save failed: %v", err)
		}

		// Mutating the caller's copy after Save must not affect the store.
		state.Name = "mutated after save"

		got, err := s.Get(ctx, "agent-clone")
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if got.Name != "Manager Agent" {
			t.Errorf("store aliased caller memory: got name %q", got.Name)
		}

		// Mutating a Get result must not affect subsequent reads.
		got.STM.Scratchpad["note"] = "changed"
		again, err := s.Get(ctx, "agent-clone")
		if err != nil {
			t.Fatalf("second Get failed: %v", err)
		}
		if again.STM.Scratchpad["note"] != "scratch" {
			t.Error("store handed out aliased state")
		}
	})

	t.Run("ClosedStore", func(t *testing.T) {
		closed := NewMemoryAgentStore(DefaultStoreConfig())
		closed.Close()

		ctx := context.Background()
		if err := closed.Save(ctx, newTestAgentState("x")); err != ErrStoreClosed {
			t.Errorf("expected ErrStoreClosed, got %v", err)
		}
		if _, err := closed.Get(ctx, "x"); err != ErrStoreClosed {
			t.Errorf("expected ErrStoreClosed, got %v", err)
		}
	})

	t.Run("ListBounded", func(t *testing.T) {
		config := DefaultStoreConfig()
		config.ListLimit = 2
		bounded := NewMemoryAgentStore(config)
		defer bounded.Close()

		ctx := context.Background()
		for i := 0; i < 5; i++ {
			if err := bounded.Save(ctx, newTestAgentState(fmt.Sprintf("a%d", i))); err != nil {
				t.Fatalf("Save failed: %v", err)
			}
		}

		agents, err := bounded.List(ctx)
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if len(agents) != 2 {
			t.Errorf("expected bounded list of 2, got %d", len(agents))
		}
	})
}

func TestFileAgentStore(t *testing.T) {
	config := DefaultStoreConfig()
	config.BaseDir = t.TempDir()

	s, err := NewFileAgentStore(config)
	if err != nil {
		t.Fatalf("NewFileAgentStore failed: %v", err)
	}
	defer s.Close()

	runAgentStoreSuite(t, s)

	t.Run("SurvivesReopen", func(t *testing.T) {
		ctx := context.Background()
		state := newTestAgentState("agent-durable")
		if err := s.Save(ctx, state); err != nil {
			t.Fatalf("Save failed: %v", err)
		}

		reopened, err := NewFileAgentStore(config)
		if err != nil {
			t.Fatalf("reopen failed: %v", err)
		}
		defer reopened.Close()

		got, err := reopened.Get(ctx, "agent-durable")
		if err != nil {
			t.Fatalf("Get after reopen failed: %v", err)
		}
		assertStatesEqual(t, state, got)
	})
}
