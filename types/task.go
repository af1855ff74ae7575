package types

// TaskStatus is the shared state machine for MainTask and SubTask.
//
// Transitions: PENDING → IN_PROGRESS → {COMPLETED | FAILED}, with CANCELLED
// reachable from PENDING and IN_PROGRESS. COMPLETED, FAILED and CANCELLED are
// terminal: no operation transitions out of them.
type TaskStatus string

const (
	// TaskStatusPending indicates the task has not started yet.
	TaskStatusPending TaskStatus = "pending"

	// TaskStatusInProgress indicates the task is being worked on.
	TaskStatusInProgress TaskStatus = "in_progress"

	// TaskStatusCompleted indicates the task finished successfully.
	TaskStatusCompleted TaskStatus = "completed"

	// TaskStatusFailed indicates the task finished unsuccessfully.
	TaskStatusFailed TaskStatus = "failed"

	// TaskStatusCancelled indicates the task was cancelled by a caller.
	TaskStatusCancelled TaskStatus = "cancelled"
)

// IsTerminal returns true if the status is a terminal state.
func (s TaskStatus) IsTerminal() bool {
	switch s {
	case TaskStatusCompleted, TaskStatusFailed, TaskStatusCancelled:
		return true
	default:
		return false
	}
}

// Goal describes the overall objective of a MainTask. Created once at
// initiation and immutable thereafter.
type Goal struct {
	ID          string `json:"id"`
	Description string `json:"description"`

	// Priority orders goals when several compete for attention.
	Priority int `json:"priority"`

	// AcceptanceCriteria determine whether the goal is met.
	AcceptanceCriteria []string `json:"acceptance_criteria"`

	// RelatedSubtaskIDs are subtasks that contribute to this goal.
	RelatedSubtaskIDs []string `json:"related_subtask_ids"`
}

// NewGoal creates a Goal with the given id, description and priority.
func NewGoal(id, description string, priority int) Goal {
	return Goal{
		ID:                 id,
		Description:        description,
		Priority:           priority,
		AcceptanceCriteria: []string{},
		RelatedSubtaskIDs:  []string{},
	}
}

// SubTask is one schedulable unit within a MainTask.
//
// Dependencies reference sibling SubTask ids within the same MainTask only.
// A SubTask must never depend on its own id, and the dependency graph is
// assumed acyclic; cycle detection is intentionally not performed by the
// scheduler, which discovers unschedulable graphs at runtime instead.
type SubTask struct {
	ID              string         `json:"id"`
	Name            string         `json:"name"`
	Description     string         `json:"description"`
	Status          TaskStatus     `json:"status"`
	AssignedAgentID string         `json:"assigned_agent_id,omitempty"`
	Results         map[string]any `json:"results"`

	// Dependencies lists sibling subtask ids that must be COMPLETED before
	// this subtask becomes eligible for execution.
	Dependencies []string `json:"dependencies"`

	// Effort is the estimated effort or complexity.
	Effort int `json:"effort"`
}

// NewSubTask creates a pending SubTask with the given id, name and description.
func NewSubTask(id, name, description string, dependencies ...string) SubTask {
	deps := make([]string, 0, len(dependencies))
	deps = append(deps, dependencies...)
	return SubTask{
		ID:           id,
		Name:         name,
		Description:  description,
		Status:       TaskStatusPending,
		Results:      map[string]any{},
		Dependencies: deps,
		Effort:       1,
	}
}

// Rule is a reusable guideline learned from completed work via retrospection.
// Rules are appended to long-term memory and never deleted; revalidation
// increments ValidationCount and refreshes LastValidatedAt.
type Rule struct {
	ID          string `json:"id"`
	Description string `json:"description"`

	// Context is where the rule applies, e.g. "task_review" or "planning".
	Context string `json:"context"`

	// ActionableGuideline is the action or guideline the rule suggests.
	ActionableGuideline string `json:"actionable_guideline"`

	// Source records how the rule was derived, e.g. "retrospection_maintask_<id>".
	Source string `json:"source"`

	ValidationCount int    `json:"validation_count"`
	LastValidatedAt string `json:"last_validated_at,omitempty"`
}

// MainTask is one end-to-end unit of work submitted by a user, decomposed
// into dependency-ordered SubTasks. Exactly one MainTask is active per
// manager agent at a time, held inside that agent's short-term memory.
type MainTask struct {
	ID          string    `json:"id"`
	UserQuery   string    `json:"user_query"`
	OverallGoal Goal      `json:"overall_goal"`
	SubTasks    []SubTask `json:"sub_tasks"`

	// DesignatedAgentIDs are the agents designated for this task.
	DesignatedAgentIDs []string `json:"designated_agent_ids"`

	Status TaskStatus `json:"status"`

	// SessionStmSnapshot captures the manager's short-term memory at
	// initiation time.
	SessionStmSnapshot map[string]any `json:"session_stm_snapshot"`

	// AppliedRules are rules applied or considered during this task.
	AppliedRules []Rule `json:"applied_rules"`

	FinalResults map[string]any `json:"final_results"`
}

// NewMainTask creates a pending MainTask for the given query and goal.
func NewMainTask(id, userQuery string, goal Goal, designatedAgentIDs []string) MainTask {
	agents := make([]string, 0, len(designatedAgentIDs))
	agents = append(agents, designatedAgentIDs...)
	return MainTask{
		ID:                 id,
		UserQuery:          userQuery,
		OverallGoal:        goal,
		SubTasks:           []SubTask{},
		DesignatedAgentIDs: agents,
		Status:             TaskStatusPending,
		SessionStmSnapshot: map[string]any{},
		AppliedRules:       []Rule{},
		FinalResults:       map[string]any{},
	}
}

// SubTaskByID returns a pointer to the subtask with the given id, or nil.
func (t *MainTask) SubTaskByID(id string) *SubTask {
	for i := range t.SubTasks {
		if t.SubTasks[i].ID == id {
			return &t.SubTasks[i]
		}
	}
	return nil
}

// AllSubTasksSettled reports whether every subtask is COMPLETED or CANCELLED.
// Returns false for an empty subtask list.
func (t *MainTask) AllSubTasksSettled() bool {
	if len(t.SubTasks) == 0 {
		return false
	}
	for i := range t.SubTasks {
		switch t.SubTasks[i].Status {
		case TaskStatusCompleted, TaskStatusCancelled:
		default:
			return false
		}
	}
	return true
}
