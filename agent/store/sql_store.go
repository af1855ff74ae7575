package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/taskmind-ai/taskmind/types"
)

// agentRecord is the GORM row model. The full agent state is stored as one
// JSON document; name and role are denormalized for inspection with plain SQL.
type agentRecord struct {
	ID        string `gorm:"primaryKey;size:128"`
	Name      string `gorm:"size:256"`
	Role      string `gorm:"size:64"`
	Document  string `gorm:"type:text"`
	UpdatedAt time.Time
}

// TableName sets the table name for agent records
func (agentRecord) TableName() string {
	return "agent_states"
}

// SQLAgentStore is a GORM-backed implementation of AgentStore supporting
// SQLite, PostgreSQL and MySQL.
type SQLAgentStore struct {
	db     *gorm.DB
	config StoreConfig
}

// NewSQLAgentStore opens the configured SQL backend
func NewSQLAgentStore(config StoreConfig) (*SQLAgentStore, error) {
	var dialector gorm.Dialector
	switch config.SQL.Driver {
	case "sqlite", "":
		dialector = sqlite.Open(config.SQL.DSN)
	case "postgres":
		dialector = postgres.Open(config.SQL.DSN)
	case "mysql":
		dialector = mysql.Open(config.SQL.DSN)
	default:
		return nil, fmt.Errorf("unsupported sql driver: %s (supported: sqlite, postgres, mysql)", config.SQL.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}

	return &SQLAgentStore{db: db, config: config}, nil
}

// EnsureSchema migrates the agent_states table. Idempotent.
func (s *SQLAgentStore) EnsureSchema(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(&agentRecord{}); err != nil {
		return fmt.Errorf("failed to migrate agent store schema: %w", err)
	}
	return nil
}

// Save upserts the agent document keyed by its ID
func (s *SQLAgentStore) Save(ctx context.Context, state *types.AgentState) error {
	if state == nil || state.ID == "" {
		return ErrInvalidInput
	}

	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to encode agent state: %w", err)
	}

	record := agentRecord{
		ID:       state.ID,
		Name:     state.Name,
		Role:     state.Role,
		Document: string(data),
	}

	if err := s.db.WithContext(ctx).Save(&record).Error; err != nil {
		return fmt.Errorf("failed to save agent state: %w", err)
	}
	return nil
}

// Get retrieves an agent state by id
func (s *SQLAgentStore) Get(ctx context.Context, id string) (*types.AgentState, error) {
	var record agentRecord
	err := s.db.WithContext(ctx).First(&record, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get agent state: %w", err)
	}

	var state types.AgentState
	if err := json.Unmarshal([]byte(record.Document), &state); err != nil {
		return nil, fmt.Errorf("corrupt agent document %s: %w", id, err)
	}
	return &state, nil
}

// List returns stored agents up to the configured limit, ordered by id.
// A missing table is treated as an empty list.
func (s *SQLAgentStore) List(ctx context.Context) ([]*types.AgentState, error) {
	if !s.db.WithContext(ctx).Migrator().HasTable(&agentRecord{}) {
		return []*types.AgentState{}, nil
	}

	var records []agentRecord
	err := s.db.WithContext(ctx).
		Order("id").
		Limit(s.config.listLimit()).
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list agent states: %w", err)
	}

	result := make([]*types.AgentState, 0, len(records))
	for _, record := range records {
		var state types.AgentState
		if err := json.Unmarshal([]byte(record.Document), &state); err != nil {
			return nil, fmt.Errorf("corrupt agent document %s: %w", record.ID, err)
		}
		result = append(result, &state)
	}
	return result, nil
}

// Ping checks if the store is healthy
func (s *SQLAgentStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close closes the store
func (s *SQLAgentStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Ensure SQLAgentStore implements AgentStore
var _ AgentStore = (*SQLAgentStore)(nil)
