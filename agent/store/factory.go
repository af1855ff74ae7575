package store

import (
	"fmt"

	"go.uber.org/zap"
)

// NewAgentStore creates an agent store for the configured backend type.
func NewAgentStore(config StoreConfig, logger *zap.Logger) (AgentStore, error) {
	switch config.Type {
	case StoreTypeMemory, "":
		logger.Info("using in-memory agent store")
		return NewMemoryAgentStore(config), nil

	case StoreTypeFile:
		logger.Info("using file agent store", zap.String("base_dir", config.BaseDir))
		return NewFileAgentStore(config)

	case StoreTypeRedis:
		logger.Info("using Redis agent store", zap.String("addr", config.Redis.Addr))
		return NewRedisAgentStore(config)

	case StoreTypeSQL:
		logger.Info("using SQL agent store", zap.String("driver", config.SQL.Driver))
		return NewSQLAgentStore(config)

	case StoreTypeMongo:
		logger.Info("using MongoDB agent store", zap.String("database", config.Mongo.Database))
		return NewMongoAgentStore(config)

	default:
		return nil, fmt.Errorf("unknown agent store type: %s", config.Type)
	}
}
