package store

import (
	"context"
	"sort"
	"sync"

	"github.com/taskmind-ai/taskmind/types"
)

// MemoryAgentStore is an in-memory implementation of AgentStore.
// Suitable for development and testing. Data is lost on restart.
type MemoryAgentStore struct {
	agents map[string]*types.AgentState
	mu     sync.RWMutex
	closed bool
	config StoreConfig
}

// NewMemoryAgentStore creates a new in-memory agent store
func NewMemoryAgentStore(config StoreConfig) *MemoryAgentStore {
	return &MemoryAgentStore{
		agents: make(map[string]*types.AgentState),
		config: config,
	}
}

// EnsureSchema is a no-op for the in-memory store
func (s *MemoryAgentStore) EnsureSchema(ctx context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrStoreClosed
	}
	return nil
}

// Save upserts the agent state keyed by its ID
func (s *MemoryAgentStore) Save(ctx context.Context, state *types.AgentState) error {
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

	s.agents[state.ID] = clone
	return nil
}

// Get retrieves an agent state by id
func (s *MemoryAgentStore) Get(ctx context.Context, id string) (*types.AgentState, error) {
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
func (s *MemoryAgentStore) List(ctx context.Context) ([]*types.AgentState, error) {
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
func (s *MemoryAgentStore) Ping(ctx context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrStoreClosed
	}
	return nil
}

// Close closes the store
func (s *MemoryAgentStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// Ensure MemoryAgentStore implements AgentStore
var _ AgentStore = (*MemoryAgentStore)(nil)
