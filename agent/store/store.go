// Package store provides the agent store gateway: persistence of a named
// agent's full state as one document, keyed by agent id.
//
// The gateway contract is deliberately small: EnsureSchema (idempotent),
// Save (upsert with read-after-write visibility), Get, and a bounded List.
// Absence of the backing schema is equivalent to an empty list, not an error.
//
// Supported backends:
// - Memory: for development and testing (default)
// - File: for single-node deployments
// - Redis: for deployments with an existing Redis
// - SQL: PostgreSQL/MySQL/SQLite through GORM
// - Mongo: document-native storage
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/taskmind-ai/taskmind/types"
)

// Common errors
var (
	ErrNotFound     = errors.New("agent not found")
	ErrStoreClosed  = errors.New("store is closed")
	ErrInvalidInput = errors.New("invalid input")
)

// StoreType represents the type of storage backend
type StoreType string

const (
	StoreTypeMemory StoreType = "memory"
	StoreTypeFile   StoreType = "file"
	StoreTypeRedis  StoreType = "redis"
	StoreTypeSQL    StoreType = "sql"
	StoreTypeMongo  StoreType = "mongo"
)

// DefaultListLimit bounds List results when no limit is configured.
const DefaultListLimit = 100

// AgentStore is the persistence gateway for agent state documents.
//
// Save must be visible to an immediately following Get on the same id:
// read-after-write consistency is required, not eventual.
type AgentStore interface {
	// EnsureSchema prepares the backing schema. Idempotent and safe to
	// call before every operation.
	EnsureSchema(ctx context.Context) error

	// Save upserts the agent state document keyed by its ID.
	Save(ctx context.Context, state *types.AgentState) error

	// Get retrieves an agent state by id. Returns ErrNotFound if absent.
	Get(ctx context.Context, id string) (*types.AgentState, error)

	// List returns up to the configured limit of agent state documents.
	// A missing backing schema yields an empty list, not an error.
	List(ctx context.Context) ([]*types.AgentState, error)

	// Ping checks if the store is healthy.
	Ping(ctx context.Context) error

	// Close closes the store and releases resources.
	Close() error
}

// RedisStoreConfig contains Redis-specific configuration
type RedisStoreConfig struct {
	Addr      string `yaml:"addr"`
	Password  string `yaml:"password"`
	DB        int    `yaml:"db"`
	PoolSize  int    `yaml:"pool_size"`
	KeyPrefix string `yaml:"key_prefix"`
}

// SQLStoreConfig contains SQL-specific configuration
type SQLStoreConfig struct {
	// Driver is one of: sqlite, postgres, mysql
	Driver string `yaml:"driver"`
	// DSN is the driver-specific data source name
	DSN string `yaml:"dsn"`
}

// MongoStoreConfig contains MongoDB-specific configuration
type MongoStoreConfig struct {
	URI        string `yaml:"uri"`
	Database   string `yaml:"database"`
	Collection string `yaml:"collection"`
}

// StoreConfig is the configuration for all store implementations
type StoreConfig struct {
	// Type is the storage backend type
	Type StoreType `yaml:"type"`

	// BaseDir is the base directory for file-based storage
	BaseDir string `yaml:"base_dir"`

	// ListLimit bounds List results (0 means DefaultListLimit)
	ListLimit int `yaml:"list_limit"`

	Redis RedisStoreConfig `yaml:"redis"`
	SQL   SQLStoreConfig   `yaml:"sql"`
	Mongo MongoStoreConfig `yaml:"mongo"`
}

// DefaultStoreConfig returns the default store configuration
func DefaultStoreConfig() StoreConfig {
	return StoreConfig{
		Type:      StoreTypeMemory,
		BaseDir:   "./data/agents",
		ListLimit: DefaultListLimit,
		Redis: RedisStoreConfig{
			Addr:      "localhost:6379",
			DB:        0,
			PoolSize:  10,
			KeyPrefix: "taskmind:",
		},
		SQL: SQLStoreConfig{
			Driver: "sqlite",
			DSN:    "file:taskmind.db",
		},
		Mongo: MongoStoreConfig{
			URI:        "mongodb://localhost:27017",
			Database:   "taskmind",
			Collection: "agents",
		},
	}
}

func (c StoreConfig) listLimit() int {
	if c.ListLimit > 0 {
		return c.ListLimit
	}
	return DefaultListLimit
}

// cloneState returns a deep copy of the given agent state via JSON round-trip.
// Stores hand out clones so callers can never alias store-internal memory.
func cloneState(state *types.AgentState) (*types.AgentState, error) {
	data, err := json.Marshal(state)
	if err != nil {
		return nil, fmt.Errorf("failed to encode agent state: %w", err)
	}
	var out types.AgentState
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to decode agent state: %w", err)
	}
	return &out, nil
}
