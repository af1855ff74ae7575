package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/taskmind-ai/taskmind/types"
)

// FileAgentStore is a file-based implementation of AgentStore.
// Each agent is one JSON document under <base_dir>/agents.
// Suitable for single-node deployments.
type FileAgentStore struct {
	baseDir string
	agents  map[string]*types.AgentState // in-memory cache
	mu      sync.RWMutex
	closed  bool
	config  StoreConfig
}

// NewFileAgentStore creates a file-backed agent store rooted at config.BaseDir
func NewFileAgentStore(config StoreConfig) (*FileAgentStore, error) {
	baseDir := filepath.Join(config.BaseDir, "agents")
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create agent store directory: %w", err)
	}

	s := &FileAgentStore{
		baseDir: baseDir,
		agents:  make(map[string]*types.AgentState),
		config:  config,
	}

	if err := s.loadFromDisk(); err != nil {
		return nil, fmt.Errorf("failed to load agents from disk: %w", err)
	}

	return s, nil
}

// loadFromDisk loads all persisted agent documents into the cache
func (s *FileAgentStore) loadFromDisk() error {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.baseDir, entry.Name()))
		if err != nil {
			return err
		}
		var state types.AgentState
		if err := json.Unmarshal(data, &state); err != nil {
			return fmt.Errorf("corrupt agent document %s: %w", entry.Name(), err)
		}
		s.agents[state.ID] = &state
	}
	return nil
}

func (s *FileAgentStore) agentPath(id string) string {
	return filepath.Join(s.baseDir, id+".json")
}

// EnsureSchema verifies the backing directory exists. Idempotent.
func (s *FileAgentStore) EnsureSchema(ctx context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrStoreClosed
	}
	return os.MkdirAll(s.baseDir, 0755)
}

// Save upserts the agent state and flushes it to disk before returning
func (s *FileAgentStore) Save(ctx context.Context, state *types.AgentState) error {
	if state == nil || state.ID == "" {
		return ErrInvalidInput
	}

	clone, err := cloneState(state)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	data, err := json.MarshalIndent(clone, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode agent state: %w", err)
	}

	// Write to a temp file then rename for atomic replacement.
	tmpPath := s.agentPath(state.ID) + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write agent document: %w", err)
	}
	if err := os.Rename(tmpPath, s.agentPath(state.ID)); err != nil {
		return fmt.Errorf("failed to commit agent document: %w", err)
	}

	s.agents[state.ID] = clone
	return nil
}

// Get retrieves an agent state by id
func (s *FileAgentStore) Get(ctx context.Context, id string) (*types.AgentState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}

	state, ok := s.agents[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneState(state)
}

// List returns stored agents up to the configured limit, ordered by id
func (s *FileAgentStore) List(ctx context.Context) ([]*types.AgentState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}

	ids := make([]string, 0, len(s.agents))
	for id := range s.agents {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	limit := s.config.listLimit()
	if len(ids) > limit {
		ids = ids[:limit]
	}

	result := make([]*types.AgentState, 0, len(ids))
	for _, id := range ids {
		clone, err := cloneState(s.agents[id])
		if err != nil {
			return nil, err
		}
		result = append(result, clone)
	}
	return result, nil
}

// Ping checks if the store is healthy
func (s *FileAgentStore) Ping(ctx context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrStoreClosed
	}
	if _, err := os.Stat(s.baseDir); err != nil {
		return fmt.Errorf("agent store directory unavailable: %w", err)
	}
	return nil
}

// Close closes the store
func (s *FileAgentStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// Ensure FileAgentStore implements AgentStore
var _ AgentStore = (*FileAgentStore)(nil)
