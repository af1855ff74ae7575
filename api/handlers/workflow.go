package handlers

import (
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/taskmind-ai/taskmind/agent"
	"github.com/taskmind-ai/taskmind/agent/store"
	"github.com/taskmind-ai/taskmind/internal/metrics"
	"github.com/taskmind-ai/taskmind/types"
	"github.com/taskmind-ai/taskmind/workflow"
)

// DefaultManagerAgentID identifies the manager agent used when a request
// does not name one. It is created on first use.
const DefaultManagerAgentID = "manager_agent_main"

// ExecuteWorkflowRequest is the wire shape of a workflow execution request.
type ExecuteWorkflowRequest struct {
	UserQuery          string   `json:"user_query"`
	OverallGoalDesc    string   `json:"overall_goal_desc"`
	DesignatedAgentIDs []string `json:"designated_agent_ids,omitempty"`
	ManagerAgentID     string   `json:"manager_agent_id,omitempty"`
}

// WorkflowHandler executes workflow runs over HTTP.
//
// Task-level failures (planning, stuck, iteration bound) come back inside a
// 200 response body with status "failed"; only validation, lookup and
// persistence problems produce error statuses.
type WorkflowHandler struct {
	store       store.AgentStore
	workflowCfg workflow.Config
	logger      *zap.Logger
	metrics     *metrics.Collector
}

// NewWorkflowHandler creates a WorkflowHandler. The metrics collector may be
// nil.
func NewWorkflowHandler(st store.AgentStore, cfg workflow.Config, logger *zap.Logger, collector *metrics.Collector) *WorkflowHandler {
	return &WorkflowHandler{
		store:       st,
		workflowCfg: cfg,
		logger:      logger.With(zap.String("handler", "workflow")),
		metrics:     collector,
	}
}

// HandleExecute handles POST /api/v1/workflows/execute.
func (h *WorkflowHandler) HandleExecute(w http.ResponseWriter, r *http.Request) {
	var req ExecuteWorkflowRequest
	if err := DecodeJSONBody(w, r, &req, h.logger); err != nil {
		return
	}

	if strings.TrimSpace(req.UserQuery) == "" {
		WriteErrorMessage(w, http.StatusBadRequest, types.ErrInvalidRequest, "user_query is required", h.logger)
		return
	}
	if strings.TrimSpace(req.OverallGoalDesc) == "" {
		WriteErrorMessage(w, http.StatusBadRequest, types.ErrInvalidRequest, "overall_goal_desc is required", h.logger)
		return
	}

	mgr, err := h.resolveManager(r, req.ManagerAgentID)
	if err != nil {
		var apiErr *types.Error
		if errors.As(err, &apiErr) {
			WriteError(w, apiErr, h.logger)
			return
		}
		WriteErrorMessage(w, http.StatusInternalServerError, types.ErrInternalError, err.Error(), h.logger)
		return
	}

	driver := workflow.NewDriver(mgr, h.workflowCfg,
		workflow.WithLogger(h.logger),
		workflow.WithMetrics(h.metrics),
	)

	result, err := driver.Run(r.Context(), workflow.Request{
		UserQuery:          req.UserQuery,
		OverallGoalDesc:    req.OverallGoalDesc,
		DesignatedAgentIDs: req.DesignatedAgentIDs,
	})
	if err != nil {
		var apiErr *types.Error
		if errors.As(err, &apiErr) {
			WriteError(w, apiErr, h.logger)
			return
		}
		WriteErrorMessage(w, http.StatusInternalServerError, types.ErrInternalError, err.Error(), h.logger)
		return
	}

	WriteSuccess(w, result)
}

// resolveManager loads the requested manager agent, or provisions the
// default one on first use. An explicitly named agent must exist and carry
// the Manager role.
func (h *WorkflowHandler) resolveManager(r *http.Request, id string) (*agent.Manager, error) {
	explicit := id != ""
	if !explicit {
		id = DefaultManagerAgentID
	}

	state, err := h.store.Get(r.Context(), id)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			return nil, types.NewPersistenceError("failed to load manager agent", err)
		}
		if explicit {
			return nil, types.NewNotFoundError("manager agent not found: " + id)
		}
		fresh := types.NewAgentState(id, "Main Manager Agent", types.RoleManager, "http")
		h.logger.Info("provisioning default manager agent", zap.String("agent_id", id))
		return agent.NewManager(fresh, h.store, agent.WithLogger(h.logger)), nil
	}

	if !state.IsManager() {
		return nil, types.NewNotFoundError("agent is not a manager: " + id)
	}
	return agent.NewManager(*state, h.store, agent.WithLogger(h.logger)), nil
}
