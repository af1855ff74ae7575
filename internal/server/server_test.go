package server

import (
	"context"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestDefaultConfig_Values(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, 30*time.Second, cfg.ReadTimeout)
	assert.Equal(t, 30*time.Second, cfg.WriteTimeout)
	assert.Equal(t, 120*time.Second, cfg.IdleTimeout)
	assert.Equal(t, 1<<20, cfg.MaxHeaderBytes)
	assert.Equal(t, 15*time.Second, cfg.ShutdownTimeout)
}

func TestNew(t *testing.T) {
	s := New(http.NewServeMux(), DefaultConfig(), zap.NewNop())

	require.NotNil(t, s)
	assert.True(t, s.IsRunning())
	assert.Equal(t, ":8080", s.Addr())
}

func TestServer_StartAndShutdown(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	cfg := DefaultConfig()
	cfg.Addr = ":0"
	s := New(handler, cfg, zap.NewNop())

	require.NoError(t, s.Start())
	t.Cleanup(func() { s.Shutdown(context.Background()) })

	addr := s.listener.Addr().String()
	resp, err := http.Get("http://" + addr + "/")
	require.NoError(t, err)
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", string(body))

	require.NoError(t, s.Shutdown(context.Background()))
	assert.False(t, s.IsRunning())
}

func TestServer_DoubleStart(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Addr = ":0"
	s := New(http.NewServeMux(), cfg, zap.NewNop())

	require.NoError(t, s.Start())
	t.Cleanup(func() { s.Shutdown(context.Background()) })

	err := s.Start()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "already started")
}

func TestServer_ShutdownIdempotent(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Addr = ":0"
	s := New(http.NewServeMux(), cfg, zap.NewNop())

	require.NoError(t, s.Start())
	require.NoError(t, s.Shutdown(context.Background()))
	require.NoError(t, s.Shutdown(context.Background()))
}

func TestServer_StartAfterShutdown(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Addr = ":0"
	s := New(http.NewServeMux(), cfg, zap.NewNop())

	require.NoError(t, s.Start())
	require.NoError(t, s.Shutdown(context.Background()))

	err := s.Start()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "closed")
}

func TestServer_Errors(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Addr = ":0"
	s := New(http.NewServeMux(), cfg, zap.NewNop())

	ch := s.Errors()
	require.NotNil(t, ch)

	select {
	case <-ch:
		t.Fatal("should not have received an error")
	default:
	}
}
