package types

// STMActiveMainTaskKey is the well-known key under which the active MainTask
// lives inside ShortTermMemory.CurrentTaskData.
const STMActiveMainTaskKey = "active_main_task"

// MemoryMessage is one conversational turn recorded in short-term memory.
type MemoryMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ShortTermMemory is per-agent session-scoped mutable state, including the
// currently active MainTask. One STM per agent; reset only by explicit
// replacement, never merged.
type ShortTermMemory struct {
	SessionID       string          `json:"session_id"`
	History         []MemoryMessage `json:"history"`
	CurrentTaskData map[string]any  `json:"current_task_data"`
	Scratchpad      map[string]any  `json:"scratchpad"`
}

// NewShortTermMemory creates an empty STM with the given session id.
func NewShortTermMemory(sessionID string) ShortTermMemory {
	return ShortTermMemory{
		SessionID:       sessionID,
		History:         []MemoryMessage{},
		CurrentTaskData: map[string]any{},
		Scratchpad:      map[string]any{},
	}
}

// LongTermMemory is per-agent durable accumulated knowledge. It grows
// monotonically: rules are appended by retrospection, never removed.
type LongTermMemory struct {
	KnowledgeBase         map[string]any   `json:"knowledge_base"`
	LearnedRules          []Rule           `json:"learned_rules"`
	PastProjectIterations []map[string]any `json:"past_project_iterations"`
}

// NewLongTermMemory creates an empty LTM.
func NewLongTermMemory() LongTermMemory {
	return LongTermMemory{
		KnowledgeBase:         map[string]any{},
		LearnedRules:          []Rule{},
		PastProjectIterations: []map[string]any{},
	}
}
