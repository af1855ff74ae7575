package types

// RoleManager is the agent role required to drive workflows.
const RoleManager = "Manager"

// AgentState is the flat document persisted to and retrieved from the agent
// store: {id, name, role, stm, ltm, config}. The store treats it as one
// opaque value keyed by ID; all business logic lives in the agent package.
type AgentState struct {
	ID     string          `json:"id"`
	Name   string          `json:"name"`
	Role   string          `json:"role"`
	STM    ShortTermMemory `json:"stm"`
	LTM    LongTermMemory  `json:"ltm"`
	Config map[string]any  `json:"config"`
}

// NewAgentState creates an agent document with fresh, empty memory.
func NewAgentState(id, name, role, sessionID string) AgentState {
	return AgentState{
		ID:     id,
		Name:   name,
		Role:   role,
		STM:    NewShortTermMemory(sessionID),
		LTM:    NewLongTermMemory(),
		Config: map[string]any{},
	}
}

// IsManager reports whether the agent may drive workflow runs.
func (a *AgentState) IsManager() bool {
	return a.Role == RoleManager
}
