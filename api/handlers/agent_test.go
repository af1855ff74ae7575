package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/taskmind-ai/taskmind/agent/store"
	"github.com/taskmind-ai/taskmind/types"
)

func newAgentTestMux(t *testing.T) (*http.ServeMux, store.AgentStore) {
	t.Helper()
	st := store.NewMemoryAgentStore(store.DefaultStoreConfig())
	t.Cleanup(func() { st.Close() })

	h := NewAgentHandler(st, zap.NewNop())
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/agents", h.HandleList)
	mux.HandleFunc("GET /api/v1/agents/{id}", h.HandleGet)
	return mux, st
}

func TestAgentHandler_Get(t *testing.T) {
	mux, st := newAgentTestMux(t)

	state := types.NewAgentState("mgr-1", "Manager One", types.RoleManager, "s")
	require.NoError(t, st.Save(context.Background(), &state))

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/agents/mgr-1", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)
	require.True(t, resp.Success)

	raw, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	var got types.AgentState
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, "mgr-1", got.ID)
	assert.Equal(t, types.RoleManager, got.Role)
}

func TestAgentHandler_GetMissing(t *testing.T) {
	mux, _ := newAgentTestMux(t)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/agents/ghost", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, string(types.ErrAgentNotFound), resp.Error.Code)
}

func TestAgentHandler_List(t *testing.T) {
	mux, st := newAgentTestMux(t)

	for _, id := range []string{"a", "b", "c"} {
		state := types.NewAgentState(id, "Agent "+id, types.RoleManager, "s")
		require.NoError(t, st.Save(context.Background(), &state))
	}

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/agents", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)
	require.True(t, resp.Success)

	data, ok := resp.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(3), data["count"])
}

func TestAgentHandler_ListEmpty(t *testing.T) {
	mux, _ := newAgentTestMux(t)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/agents", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)
	data, ok := resp.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(0), data["count"])
}
