package workflow

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/taskmind-ai/taskmind/agent"
	"github.com/taskmind-ai/taskmind/internal/metrics"
	"github.com/taskmind-ai/taskmind/types"
)

const tracerName = "github.com/taskmind-ai/taskmind/workflow"

// Config holds the driver's loop settings.
type Config struct {
	// MaxIterations bounds the number of loop iterations in a single run.
	MaxIterations int `yaml:"max_iterations" json:"max_iterations"`
}

// DefaultConfig returns the default driver configuration.
func DefaultConfig() Config {
	return Config{MaxIterations: 10}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.MaxIterations <= 0 {
		return fmt.Errorf("max_iterations must be positive, got %d", c.MaxIterations)
	}
	return nil
}

// Request describes one workflow execution.
type Request struct {
	UserQuery          string   `json:"user_query"`
	OverallGoalDesc    string   `json:"overall_goal_desc"`
	DesignatedAgentIDs []string `json:"designated_agent_ids,omitempty"`
}

// Validate rejects requests with missing required fields. Validation happens
// before any manager agent interaction, so a rejected request never mutates
// or persists state.
func (r Request) Validate() error {
	if strings.TrimSpace(r.UserQuery) == "" {
		return types.NewError(types.ErrInvalidRequest, "user_query is required").WithHTTPStatus(400)
	}
	if strings.TrimSpace(r.OverallGoalDesc) == "" {
		return types.NewError(types.ErrInvalidRequest, "overall_goal_desc is required").WithHTTPStatus(400)
	}
	return nil
}

// RunResult summarizes a finished run. Task-level failures (planning, stuck,
// iteration bound) are reported through Status and FinalResults, not as
// errors; callers must inspect Status to detect them.
type RunResult struct {
	MainTaskID        string           `json:"main_task_id"`
	Status            types.TaskStatus `json:"status"`
	Iterations        int              `json:"iterations"`
	FinalResults      map[string]any   `json:"final_results"`
	SubTasks          []types.SubTask  `json:"subtasks"`
	LearnedRulesCount int              `json:"learned_rules_count"`
}

// Driver runs one workflow at a time against a single manager agent. It is
// not safe for concurrent use by two drivers against the same agent; this is
// a single-owner design.
type Driver struct {
	manager *agent.Manager
	config  Config
	logger  *zap.Logger
	metrics *metrics.Collector
	tracer  trace.Tracer
}

// Option configures a Driver.
type Option func(*Driver)

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(d *Driver) { d.logger = logger }
}

// WithMetrics sets the metrics collector.
func WithMetrics(collector *metrics.Collector) Option {
	return func(d *Driver) { d.metrics = collector }
}

// NewDriver creates a Driver around the given manager agent. A non-positive
// MaxIterations falls back to the default bound.
func NewDriver(mgr *agent.Manager, config Config, opts ...Option) *Driver {
	if config.MaxIterations <= 0 {
		config.MaxIterations = DefaultConfig().MaxIterations
	}
	d := &Driver{
		manager: mgr,
		config:  config,
		logger:  zap.NewNop(),
		tracer:  otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.logger = d.logger.With(
		zap.String("component", "workflow_driver"),
		zap.String("agent_id", mgr.ID()),
	)
	return d
}

// Run executes one workflow to a terminal state.
//
// Validation, not-found and persistence failures return an error. Planning
// failure, a stuck dependency graph and iteration-bound exhaustion are
// task-level outcomes: the MainTask is marked FAILED, persisted, and the
// run returns a normal result with that status.
func (d *Driver) Run(ctx context.Context, req Request) (*RunResult, error) {
	ctx, span := d.tracer.Start(ctx, "workflow.Run",
		trace.WithAttributes(attribute.String("agent.id", d.manager.ID())),
	)
	defer span.End()

	if err := req.Validate(); err != nil {
		return nil, err
	}

	start := time.Now()
	task, err := d.manager.InitiateMainTask(ctx, req.UserQuery, req.DesignatedAgentIDs, req.OverallGoalDesc)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.String("main_task.id", task.ID))

	// Defensive check: the manager must report the task as active
	// immediately after initiation. If not, that is an orchestrator bug,
	// not a task-content problem.
	if d.manager.CurrentMainTask() == nil {
		return nil, types.NewError(types.ErrInternalError,
			"main task missing immediately after initiation")
	}

	d.logger.Info("workflow run started",
		zap.String("main_task_id", task.ID),
		zap.String("user_query", req.UserQuery),
		zap.Int("max_iterations", d.config.MaxIterations),
	)

	iterations := 0
	for iterations < d.config.MaxIterations {
		current := d.manager.CurrentMainTask()
		if current == nil {
			return nil, types.NewError(types.ErrInternalError,
				"active main task disappeared between iterations")
		}
		if current.Status.IsTerminal() {
			break
		}
		iterations++
		d.logger.Debug("workflow iteration",
			zap.Int("iteration", iterations),
			zap.String("status", string(current.Status)),
		)

		if iterations == 1 || len(current.SubTasks) == 0 {
			subtasks, err := d.manager.PlanSubtasks(ctx)
			if err != nil {
				return nil, err
			}
			// Planning failure is terminal, not retried.
			if len(subtasks) == 0 {
				d.logger.Warn("planning produced no subtasks",
					zap.String("main_task_id", task.ID))
				if err := d.manager.FailMainTask(ctx, "Planning failed to produce subtasks."); err != nil {
					return nil, err
				}
				break
			}
		}

		group := d.manager.NextExecutableGroup()
		if len(group) == 0 {
			current = d.manager.CurrentMainTask()
			if current == nil {
				return nil, types.NewError(types.ErrInternalError,
					"active main task disappeared during dependency resolution")
			}
			if current.AllSubTasksSettled() {
				if err := d.manager.CompleteMainTask(ctx, "All subtasks completed successfully."); err != nil {
					return nil, err
				}
			} else {
				// Stuck: pending work remains but nothing is eligible,
				// e.g. a dangling or cyclic dependency.
				d.logger.Warn("workflow stuck, no executable subtasks",
					zap.String("main_task_id", task.ID))
				if err := d.manager.FailMainTask(ctx, "No executable subtasks found, workflow is stuck."); err != nil {
					return nil, err
				}
			}
			break
		}

		if err := d.manager.ExecuteSubtaskGroup(ctx, group); err != nil {
			return nil, err
		}

		current = d.manager.CurrentMainTask()
		if current == nil {
			return nil, types.NewError(types.ErrInternalError,
				"active main task disappeared after subtask execution")
		}

		// Only group members that genuinely reached COMPLETED feed the
		// learning step.
		completed := make([]types.SubTask, 0, len(group))
		for _, member := range group {
			st := current.SubTaskByID(member.ID)
			if st == nil {
				continue
			}
			if d.metrics != nil {
				d.metrics.RecordSubtaskExecution(string(st.Status))
			}
			if st.Status == types.TaskStatusCompleted {
				completed = append(completed, *st)
			}
		}

		if len(completed) > 0 {
			before := d.manager.LearnedRuleCount()
			if err := d.manager.Retrospect(ctx, completed); err != nil {
				return nil, err
			}
			if d.metrics != nil {
				if learned := d.manager.LearnedRuleCount() - before; learned > 0 {
					d.metrics.RecordRulesLearned(learned)
				}
			}
		}

		if err := d.manager.RevalidateRules(ctx); err != nil {
			return nil, err
		}
		if d.metrics != nil {
			d.metrics.RecordRuleRevalidation()
		}
	}

	final := d.manager.CurrentMainTask()
	if final == nil {
		return nil, types.NewError(types.ErrInternalError,
			"active main task disappeared before reporting")
	}
	if !final.Status.IsTerminal() {
		reason := fmt.Sprintf("Workflow did not complete within the maximum of %d iterations.", d.config.MaxIterations)
		if err := d.manager.FailMainTask(ctx, reason); err != nil {
			return nil, err
		}
		final = d.manager.CurrentMainTask()
		if final == nil {
			return nil, types.NewError(types.ErrInternalError,
				"active main task disappeared while enforcing the iteration bound")
		}
	}

	result := &RunResult{
		MainTaskID:        final.ID,
		Status:            final.Status,
		Iterations:        iterations,
		FinalResults:      final.FinalResults,
		SubTasks:          final.SubTasks,
		LearnedRulesCount: d.manager.LearnedRuleCount(),
	}

	span.SetAttributes(
		attribute.String("main_task.status", string(final.Status)),
		attribute.Int("workflow.iterations", iterations),
	)
	if d.metrics != nil {
		d.metrics.RecordWorkflowRun(string(final.Status), iterations, time.Since(start))
	}
	d.logger.Info("workflow run finished",
		zap.String("main_task_id", final.ID),
		zap.String("status", string(final.Status)),
		zap.Int("iterations", iterations),
		zap.Int("learned_rules", result.LearnedRulesCount),
	)
	return result, nil
}
