package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/taskmind-ai/taskmind/agent/store"
	"github.com/taskmind-ai/taskmind/types"
)

// Manager owns one agent's memory and exposes the task lifecycle operations.
// All mutating operations persist the agent's full state to the store before
// returning; on persistence failure the in-memory state is left as-is and
// callers must not assume the mutation was durably saved.
type Manager struct {
	state    types.AgentState
	store    store.AgentStore
	ids      IDGenerator
	planner  Planner
	executor SubtaskExecutor
	logger   *zap.Logger
	now      func() time.Time

	// currentMainTaskID tracks the installed MainTask for the defensive
	// consistency check in CurrentMainTask.
	currentMainTaskID string
}

// Option configures a Manager.
type Option func(*Manager)

// WithIDGenerator sets the id generator.
func WithIDGenerator(ids IDGenerator) Option {
	return func(m *Manager) { m.ids = ids }
}

// WithPlanner sets the subtask planner.
func WithPlanner(p Planner) Option {
	return func(m *Manager) { m.planner = p }
}

// WithExecutor sets the subtask executor.
func WithExecutor(e SubtaskExecutor) Option {
	return func(m *Manager) { m.executor = e }
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(m *Manager) { m.logger = logger }
}

// WithClock overrides the time source, for deterministic tests.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// NewManager creates a Manager around the given agent state.
func NewManager(state types.AgentState, st store.AgentStore, opts ...Option) *Manager {
	m := &Manager{
		state:    state,
		store:    st,
		ids:      UUIDGenerator{},
		planner:  TemplatePlanner{},
		executor: PlaceholderExecutor{},
		logger:   zap.NewNop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.logger = m.logger.With(
		zap.String("component", "manager_agent"),
		zap.String("agent_id", state.ID),
	)

	// Resume tracking of a previously installed MainTask, if any.
	if task := m.CurrentMainTaskAny(); task != nil {
		m.currentMainTaskID = task.ID
	}

	return m
}

// NewManagerFromStore loads a persisted agent state and wraps it in a Manager.
// Returns store.ErrNotFound if no agent with the given id exists.
func NewManagerFromStore(ctx context.Context, st store.AgentStore, id string, opts ...Option) (*Manager, error) {
	state, err := st.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return NewManager(*state, st, opts...), nil
}

// ID returns the agent's identifier.
func (m *Manager) ID() string {
	return m.state.ID
}

// State returns a copy of the agent's current state for reporting.
func (m *Manager) State() types.AgentState {
	return m.state
}

// LearnedRuleCount returns the number of rules in long-term memory.
func (m *Manager) LearnedRuleCount() int {
	return len(m.state.LTM.LearnedRules)
}

// persist flushes the agent's full state to the store.
func (m *Manager) persist(ctx context.Context) error {
	if err := m.store.Save(ctx, &m.state); err != nil {
		return types.NewPersistenceError("failed to save agent state", err)
	}
	return nil
}

// installMainTask encodes the task into STM under the well-known key.
// The JSON round trip copies on install, so callers holding references to a
// previously returned MainTask can never alias STM-internal memory.
func (m *Manager) installMainTask(task *types.MainTask) error {
	encoded, err := encodeToMap(task)
	if err != nil {
		return fmt.Errorf("failed to encode main task: %w", err)
	}
	m.state.STM.CurrentTaskData[types.STMActiveMainTaskKey] = encoded
	m.currentMainTaskID = task.ID
	return nil
}

// CurrentMainTask returns a fresh copy of the active MainTask, or nil if none
// is installed or the stored object's id does not match the tracked active id.
func (m *Manager) CurrentMainTask() *types.MainTask {
	task := m.CurrentMainTaskAny()
	if task == nil {
		return nil
	}
	if task.ID != m.currentMainTaskID {
		m.logger.Warn("active main task id mismatch",
			zap.String("stored_id", task.ID),
			zap.String("tracked_id", m.currentMainTaskID),
		)
		return nil
	}
	return task
}

// CurrentMainTaskAny decodes whatever MainTask is installed in STM without
// the id consistency check. Used during construction to resume tracking.
func (m *Manager) CurrentMainTaskAny() *types.MainTask {
	raw, ok := m.state.STM.CurrentTaskData[types.STMActiveMainTaskKey]
	if !ok {
		return nil
	}
	task, err := decodeMainTask(raw)
	if err != nil {
		m.logger.Warn("failed to decode active main task", zap.Error(err))
		return nil
	}
	return task
}

// InitiateMainTask constructs a new Goal and MainTask in PENDING status,
// snapshots the current STM, installs it as the active MainTask and persists.
// Always succeeds (no precondition) and unconditionally replaces any
// previously active MainTask.
func (m *Manager) InitiateMainTask(ctx context.Context, userQuery string, designatedAgentIDs []string, overallGoalDesc string) (*types.MainTask, error) {
	goal := types.NewGoal(m.ids.NewID(PrefixGoal), overallGoalDesc, 1)
	task := types.NewMainTask(m.ids.NewID(PrefixMainTask), userQuery, goal, designatedAgentIDs)

	snapshot, err := encodeToMap(&m.state.STM)
	if err != nil {
		return nil, fmt.Errorf("failed to snapshot STM: %w", err)
	}
	task.SessionStmSnapshot = snapshot

	if err := m.installMainTask(&task); err != nil {
		return nil, err
	}
	if err := m.persist(ctx); err != nil {
		return nil, err
	}

	m.logger.Info("initiated main task",
		zap.String("main_task_id", task.ID),
		zap.String("user_query", userQuery),
	)
	return &task, nil
}

// PlanSubtasks decomposes the active MainTask into SubTasks, sets the task
// IN_PROGRESS, installs the new subtask sequence and persists. Returns nil
// without state change when no MainTask is active. Calling this again on the
// same MainTask overwrites the subtask list: callers must not re-plan after
// execution has begun unless re-planning is intended.
func (m *Manager) PlanSubtasks(ctx context.Context) ([]types.SubTask, error) {
	task := m.CurrentMainTask()
	if task == nil {
		m.logger.Warn("no active main task to plan for")
		return nil, nil
	}

	subtasks, err := m.planner.PlanSubtasks(ctx, task, m.ids)
	if err != nil {
		return nil, fmt.Errorf("planner failed: %w", err)
	}

	task.SubTasks = subtasks
	task.Status = types.TaskStatusInProgress

	if err := m.installMainTask(task); err != nil {
		return nil, err
	}
	if err := m.persist(ctx); err != nil {
		return nil, err
	}

	names := make([]string, 0, len(subtasks))
	for _, st := range subtasks {
		names = append(names, st.Name)
	}
	m.logger.Info("planned subtasks",
		zap.String("main_task_id", task.ID),
		zap.Strings("subtasks", names),
	)
	return subtasks, nil
}

// NextExecutableGroup is a pure read-only dependency resolution. It scans
// SubTasks in their stored order and returns a one-element group containing
// the first PENDING SubTask whose every dependency id resolves to a sibling
// with status COMPLETED. A SubTask with no dependencies is immediately
// eligible. Returns an empty group when no MainTask is active or no SubTask
// is currently eligible; callers disambiguate "all done" from "stuck" via
// the overall subtask statuses.
//
// Group size is always at most one: parallel group execution is not
// implemented.
func (m *Manager) NextExecutableGroup() []types.SubTask {
	task := m.CurrentMainTask()
	if task == nil || len(task.SubTasks) == 0 {
		return []types.SubTask{}
	}

	for i := range task.SubTasks {
		st := &task.SubTasks[i]
		if st.Status != types.TaskStatusPending {
			continue
		}
		if dependenciesMet(task, st) {
			return []types.SubTask{*st}
		}
	}
	return []types.SubTask{}
}

// dependenciesMet reports whether every dependency id resolves to a sibling
// subtask with status COMPLETED. A missing dependency id is never met.
func dependenciesMet(task *types.MainTask, st *types.SubTask) bool {
	for _, depID := range st.Dependencies {
		dep := task.SubTaskByID(depID)
		if dep == nil || dep.Status != types.TaskStatusCompleted {
			return false
		}
	}
	return true
}

// ExecuteSubtaskGroup executes each group member that still exists in the
// active MainTask, marks it COMPLETED with its results, and completes the
// MainTask when every subtask is done. Group members that no longer exist in
// the MainTask are silently ignored. Persists only if at least one SubTask
// was actually updated.
func (m *Manager) ExecuteSubtaskGroup(ctx context.Context, group []types.SubTask) error {
	task := m.CurrentMainTask()
	if task == nil || len(group) == 0 {
		m.logger.Warn("no subtasks to execute or no active main task")
		return nil
	}

	updated := 0
	for _, member := range group {
		st := task.SubTaskByID(member.ID)
		if st == nil {
			m.logger.Warn("subtask not found in main task, skipping",
				zap.String("subtask_id", member.ID),
			)
			continue
		}

		m.logger.Info("executing subtask",
			zap.String("subtask_id", st.ID),
			zap.String("name", st.Name),
		)
		st.Status = types.TaskStatusInProgress

		results, err := m.executor.ExecuteSubtask(ctx, task, st)
		if err != nil {
			st.Status = types.TaskStatusFailed
			st.Results = map[string]any{"error": err.Error()}
			m.logger.Warn("subtask execution failed",
				zap.String("subtask_id", st.ID),
				zap.Error(err),
			)
		} else {
			st.Status = types.TaskStatusCompleted
			st.Results = results
		}
		updated++
	}

	if updated == 0 {
		return nil
	}

	if allCompleted(task) {
		outputs := make([]map[string]any, 0, len(task.SubTasks))
		for i := range task.SubTasks {
			outputs = append(outputs, task.SubTasks[i].Results)
		}
		task.Status = types.TaskStatusCompleted
		task.FinalResults = map[string]any{
			"summary": "All subtasks completed successfully.",
			"outputs": outputs,
		}
		m.logger.Info("main task completed", zap.String("main_task_id", task.ID))
	}

	if err := m.installMainTask(task); err != nil {
		return err
	}
	return m.persist(ctx)
}

// allCompleted reports whether every subtask is COMPLETED and at least one
// subtask exists.
func allCompleted(task *types.MainTask) bool {
	if len(task.SubTasks) == 0 {
		return false
	}
	for i := range task.SubTasks {
		if task.SubTasks[i].Status != types.TaskStatusCompleted {
			return false
		}
	}
	return true
}

// FailMainTask marks the active MainTask FAILED with the given reason in its
// final results, installs it and persists. No-op when no MainTask is active.
func (m *Manager) FailMainTask(ctx context.Context, reason string) error {
	task := m.CurrentMainTask()
	if task == nil {
		m.logger.Warn("no active main task to fail")
		return nil
	}

	task.Status = types.TaskStatusFailed
	task.FinalResults = map[string]any{"error": reason}

	if err := m.installMainTask(task); err != nil {
		return err
	}
	if err := m.persist(ctx); err != nil {
		return err
	}

	m.logger.Warn("main task failed",
		zap.String("main_task_id", task.ID),
		zap.String("reason", reason),
	)
	return nil
}

// CompleteMainTask marks the active MainTask COMPLETED. A default summary is
// attached unless final results are already present. No-op when no MainTask
// is active.
func (m *Manager) CompleteMainTask(ctx context.Context, summary string) error {
	task := m.CurrentMainTask()
	if task == nil {
		m.logger.Warn("no active main task to complete")
		return nil
	}

	task.Status = types.TaskStatusCompleted
	if len(task.FinalResults) == 0 {
		task.FinalResults = map[string]any{"summary": summary}
	}

	if err := m.installMainTask(task); err != nil {
		return err
	}
	if err := m.persist(ctx); err != nil {
		return err
	}

	m.logger.Info("main task completed", zap.String("main_task_id", task.ID))
	return nil
}

// Retrospect synthesizes one new Rule summarizing the completed group and
// appends it to both long-term memory and the MainTask's applied rules. A
// rule whose description already exists in LTM is not appended twice.
// No-op when no MainTask is active.
func (m *Manager) Retrospect(ctx context.Context, completedGroup []types.SubTask) error {
	task := m.CurrentMainTask()
	if task == nil {
		m.logger.Warn("no active main task for retrospection")
		return nil
	}

	completed := make([]*types.SubTask, 0, len(completedGroup))
	for _, member := range completedGroup {
		st := task.SubTaskByID(member.ID)
		if st != nil && st.Status == types.TaskStatusCompleted {
			completed = append(completed, st)
		}
	}
	if len(completed) == 0 {
		m.logger.Info("no completed subtasks in group, skipping retrospection")
		return nil
	}

	queryPrefix := task.UserQuery
	if len(queryPrefix) > 20 {
		queryPrefix = queryPrefix[:20]
	}
	description := fmt.Sprintf("Review task outcomes if 'mock execution' is mentioned, for MainTask type: %s", queryPrefix)

	ruleExists := false
	for i := range m.state.LTM.LearnedRules {
		if m.state.LTM.LearnedRules[i].Description == description {
			ruleExists = true
			break
		}
	}

	if !ruleExists {
		rule := types.Rule{
			ID:                  m.ids.NewID(PrefixRule),
			Description:         description,
			Context:             "task_review",
			ActionableGuideline: "Ensure mock flags are removed before final production runs.",
			Source:              fmt.Sprintf("retrospection_maintask_%s", task.ID),
		}
		m.state.LTM.LearnedRules = append(m.state.LTM.LearnedRules, rule)
		task.AppliedRules = append(task.AppliedRules, rule)
		m.logger.Info("learned new rule",
			zap.String("rule_id", rule.ID),
			zap.String("description", rule.Description),
		)
	}

	newRules := "No"
	if !ruleExists {
		newRules = "Yes"
	}
	m.state.STM.Scratchpad["last_retrospection_summary"] = fmt.Sprintf(
		"Retrospection on %d tasks. New rules proposed: %s.", len(completed), newRules)

	if err := m.installMainTask(task); err != nil {
		return err
	}
	return m.persist(ctx)
}

// RevalidateRules increments the validation count and refreshes the
// last-validated timestamp on every rule in long-term memory, then persists.
// Persists even when LTM holds zero rules, as an idempotent flush.
func (m *Manager) RevalidateRules(ctx context.Context) error {
	now := m.now().UTC().Format(time.RFC3339)
	for i := range m.state.LTM.LearnedRules {
		rule := &m.state.LTM.LearnedRules[i]
		rule.ValidationCount++
		rule.LastValidatedAt = now
	}

	m.logger.Debug("revalidated rules", zap.Int("rule_count", len(m.state.LTM.LearnedRules)))
	return m.persist(ctx)
}

// ProcessMessage records a conversational turn in short-term memory and
// persists. Returns the agent's acknowledgement.
func (m *Manager) ProcessMessage(ctx context.Context, message string) (string, error) {
	m.state.STM.History = append(m.state.STM.History, types.MemoryMessage{Role: "user", Content: message})
	response := fmt.Sprintf("Agent %s (%s) received: %s", m.state.Name, m.state.ID, message)
	m.state.STM.History = append(m.state.STM.History, types.MemoryMessage{Role: "assistant", Content: response})

	if err := m.persist(ctx); err != nil {
		return "", err
	}
	return response, nil
}

// encodeToMap converts a value to a generic map via JSON.
func encodeToMap(v any) (map[string]any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// decodeMainTask converts a generic STM value back into a MainTask.
func decodeMainTask(raw any) (*types.MainTask, error) {
	data, err := json.Marshal(raw)
	if err != nil {
		return nil, err
	}
	var task types.MainTask
	if err := json.Unmarshal(data, &task); err != nil {
		return nil, err
	}
	return &task, nil
}
