package handlers

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/taskmind-ai/taskmind/agent/store"
	"github.com/taskmind-ai/taskmind/types"
)

// AgentHandler serves agent state documents.
type AgentHandler struct {
	store  store.AgentStore
	logger *zap.Logger
}

// NewAgentHandler creates an AgentHandler.
func NewAgentHandler(st store.AgentStore, logger *zap.Logger) *AgentHandler {
	return &AgentHandler{
		store:  st,
		logger: logger.With(zap.String("handler", "agent")),
	}
}

// HandleGet handles GET /api/v1/agents/{id}.
func (h *AgentHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		WriteErrorMessage(w, http.StatusBadRequest, types.ErrInvalidRequest, "agent id is required", h.logger)
		return
	}

	state, err := h.store.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			WriteError(w, types.NewNotFoundError("agent not found: "+id), h.logger)
			return
		}
		WriteError(w, types.NewPersistenceError("failed to load agent", err), h.logger)
		return
	}

	WriteSuccess(w, state)
}

// HandleList handles GET /api/v1/agents.
func (h *AgentHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	states, err := h.store.List(r.Context())
	if err != nil {
		WriteError(w, types.NewPersistenceError("failed to list agents", err), h.logger)
		return
	}

	WriteSuccess(w, map[string]any{
		"agents": states,
		"count":  len(states),
	})
}
