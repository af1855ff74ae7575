package store

import (
	"context"
	"path/filepath"
	"testing"
)

func setupTestSQLStore(t *testing.T) *SQLAgentStore {
	t.Helper()

	config := DefaultStoreConfig()
	config.Type = StoreTypeSQL
	config.SQL.Driver = "sqlite"
	config.SQL.DSN = filepath.Join(t.TempDir(), "agents.db")

	s, err := NewSQLAgentStore(config)
	if err != nil {
		t.Fatalf("NewSQLAgentStore failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	if err := s.EnsureSchema(context.Background()); err != nil {
		t.Fatalf("EnsureSchema failed: %v", err)
	}

	return s
}

func TestSQLAgentStore(t *testing.T) {
	s := setupTestSQLStore(t)
	runAgentStoreSuite(t, s)
}

func TestSQLAgentStoreListWithoutSchema(t *testing.T) {
	config := DefaultStoreConfig()
	config.Type = StoreTypeSQL
	config.SQL.Driver = "sqlite"
	config.SQL.DSN = filepath.Join(t.TempDir(), "fresh.db")

	s, err := NewSQLAgentStore(config)
	if err != nil {
		t.Fatalf("NewSQLAgentStore failed: %v", err)
	}
	defer s.Close()

	// List before EnsureSchema: missing table means empty list, not an error.
	agents, err := s.List(context.Background())
	if err != nil {
		t.Fatalf("List without schema failed: %v", err)
	}
	if len(agents) != 0 {
		t.Errorf("expected empty list, got %d agents", len(agents))
	}
}

func TestSQLAgentStoreUnsupportedDriver(t *testing.T) {
	config := DefaultStoreConfig()
	config.SQL.Driver = "oracle"

	if _, err := NewSQLAgentStore(config); err == nil {
		t.Error("expected error for unsupported driver")
	}
}
