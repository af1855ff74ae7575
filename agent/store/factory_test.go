package store

import (
	"testing"

	"go.uber.org/zap"
)

func TestNewAgentStore(t *testing.T) {
	logger := zap.NewNop()

	t.Run("DefaultsToMemory", func(t *testing.T) {
		config := DefaultStoreConfig()
		config.Type = ""

		s, err := NewAgentStore(config, logger)
		if err != nil {
			t.Fatalf("NewAgentStore failed: %v", err)
		}
		defer s.Close()

		if _, ok := s.(*MemoryAgentStore); !ok {
			t.Errorf("expected MemoryAgentStore, got %T", s)
		}
	})

	t.Run("File", func(t *testing.T) {
		config := DefaultStoreConfig()
		config.Type = StoreTypeFile
		config.BaseDir = t.TempDir()

		s, err := NewAgentStore(config, logger)
		if err != nil {
			t.Fatalf("NewAgentStore failed: %v", err)
		}
		defer s.Close()

		if _, ok := s.(*FileAgentStore); !ok {
			t.Errorf("expected FileAgentStore, got %T", s)
		}
	})

	t.Run("Unknown", func(t *testing.T) {
		config := DefaultStoreConfig()
		config.Type = "cassandra"

		if _, err := NewAgentStore(config, logger); err == nil {
			t.Error("expected error for unknown store type")
		}
	})
}
