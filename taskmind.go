// Package taskmind provides a top-level convenience entry point for running
// workflows with minimal boilerplate.
//
// Usage:
//
//	import "github.com/taskmind-ai/taskmind"
//
//	e, err := taskmind.New()
//	result, err := e.Run(ctx, "build a report")
//
// For full control over the manager agent, its store and the driver, use the
// agent, agent/store and workflow packages directly.
package taskmind

import (
	"context"

	"go.uber.org/zap"

	"github.com/taskmind-ai/taskmind/agent"
	"github.com/taskmind-ai/taskmind/agent/store"
	"github.com/taskmind-ai/taskmind/types"
	"github.com/taskmind-ai/taskmind/workflow"
)

// Engine bundles a manager agent, its store and a workflow driver.
type Engine struct {
	manager   *agent.Manager
	driver    *workflow.Driver
	store     store.AgentStore
	ownsStore bool
}

// Option configures the engine created by [New].
type Option func(*options)

type options struct {
	agentID       string
	agentName     string
	store         store.AgentStore
	logger        *zap.Logger
	maxIterations int
}

// WithAgentID sets the manager agent's ID.
func WithAgentID(id string) Option {
	return func(o *options) { o.agentID = id }
}

// WithAgentName sets the manager agent's display name.
func WithAgentName(name string) Option {
	return func(o *options) { o.agentName = name }
}

// WithStore sets the agent store. The caller keeps ownership and must close
// it; without this option an in-memory store is created and owned by the
// engine.
func WithStore(st store.AgentStore) Option {
	return func(o *options) { o.store = st }
}

// WithLogger sets a custom zap logger.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithMaxIterations bounds the workflow loop.
func WithMaxIterations(n int) Option {
	return func(o *options) { o.maxIterations = n }
}

// New creates an engine with a fresh manager agent. Defaults: in-memory
// store, nop logger, and the standard iteration bound.
func New(opts ...Option) (*Engine, error) {
	o := &options{
		agentID:   "manager_agent_main",
		agentName: "Main Manager Agent",
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(o)
	}

	st := o.store
	ownsStore := false
	if st == nil {
		st = store.NewMemoryAgentStore(store.DefaultStoreConfig())
		ownsStore = true
	}

	if err := st.EnsureSchema(context.Background()); err != nil {
		if ownsStore {
			st.Close()
		}
		return nil, err
	}

	state := types.NewAgentState(o.agentID, o.agentName, types.RoleManager, "embedded")
	mgr := agent.NewManager(state, st, agent.WithLogger(o.logger))

	cfg := workflow.DefaultConfig()
	if o.maxIterations > 0 {
		cfg.MaxIterations = o.maxIterations
	}
	driver := workflow.NewDriver(mgr, cfg, workflow.WithLogger(o.logger))

	return &Engine{manager: mgr, driver: driver, store: st, ownsStore: ownsStore}, nil
}

// Run executes one workflow for the given objective and returns its result.
// The objective doubles as the overall goal description; use [RunRequest] to
// set them independently.
func (e *Engine) Run(ctx context.Context, userQuery string) (*workflow.RunResult, error) {
	return e.driver.Run(ctx, workflow.Request{
		UserQuery:       userQuery,
		OverallGoalDesc: userQuery,
	})
}

// RunRequest executes one workflow from a fully specified request.
func (e *Engine) RunRequest(ctx context.Context, req workflow.Request) (*workflow.RunResult, error) {
	return e.driver.Run(ctx, req)
}

// Manager exposes the underlying manager agent.
func (e *Engine) Manager() *agent.Manager { return e.manager }

// Close releases the engine-owned store. Stores supplied via [WithStore] are
// left open.
func (e *Engine) Close() error {
	if e.ownsStore {
		return e.store.Close()
	}
	return nil
}
