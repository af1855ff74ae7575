package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taskmind-ai/taskmind/types"
)

// RedisAgentStore is a Redis-based implementation of AgentStore.
// Each agent document is stored as one JSON string; a set indexes all ids.
type RedisAgentStore struct {
	client    *redis.Client
	keyPrefix string
	config    StoreConfig
}

// NewRedisAgentStore creates a Redis-backed agent store
func NewRedisAgentStore(config StoreConfig) (*RedisAgentStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     config.Redis.Addr,
		Password: config.Redis.Password,
		DB:       config.Redis.DB,
		PoolSize: config.Redis.PoolSize,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	keyPrefix := config.Redis.KeyPrefix
	if keyPrefix == "" {
		keyPrefix = "taskmind:"
	}

	return &RedisAgentStore{
		client:    client,
		keyPrefix: keyPrefix + "agent:",
		config:    config,
	}, nil
}

// agentKey returns the Redis key for an agent document
func (s *RedisAgentStore) agentKey(id string) string {
	return s.keyPrefix + "data:" + id
}

// allAgentsKey returns the Redis key for the id index set
func (s *RedisAgentStore) allAgentsKey() string {
	return s.keyPrefix + "all"
}

// EnsureSchema is a no-op for Redis. Idempotent.
func (s *RedisAgentStore) EnsureSchema(ctx context.Context) error {
	return nil
}

// Save upserts the agent document and its index entry
func (s *RedisAgentStore) Save(ctx context.Context, state *types.AgentState) error {
	if state == nil || state.ID == "" {
		return ErrInvalidInput
	}

	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to encode agent state: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.agentKey(state.ID), data, 0)
	pipe.SAdd(ctx, s.allAgentsKey(), state.ID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save agent state: %w", err)
	}
	return nil
}

// Get retrieves an agent state by id
func (s *RedisAgentStore) Get(ctx context.Context, id string) (*types.AgentState, error) {
	data, err := s.client.Get(ctx, s.agentKey(id)).Bytes()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get agent state: %w", err)
	}

	var state types.AgentState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("corrupt agent document %s: %w", id, err)
	}
	return &state, nil
}

// List returns stored agents up to the configured limit
func (s *RedisAgentStore) List(ctx context.Context) ([]*types.AgentState, error) {
	ids, err := s.client.SMembers(ctx, s.allAgentsKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list agent ids: %w", err)
	}

	limit := s.config.listLimit()
	if len(ids) > limit {
		ids = ids[:limit]
	}

	result := make([]*types.AgentState, 0, len(ids))
	for _, id := range ids {
		state, err := s.Get(ctx, id)
		if err == ErrNotFound {
			// Index entry without a document; skip rather than fail the list.
			continue
		}
		if err != nil {
			return nil, err
		}
		result = append(result, state)
	}
	return result, nil
}

// Ping checks if the store is healthy
func (s *RedisAgentStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the store
func (s *RedisAgentStore) Close() error {
	return s.client.Close()
}

// Ensure RedisAgentStore implements AgentStore
var _ AgentStore = (*RedisAgentStore)(nil)
