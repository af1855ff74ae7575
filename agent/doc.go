// Package agent implements the manager agent: a stateful orchestrator that
// owns one agent's short-term and long-term memory and exposes the task
// lifecycle (initiate, plan, select next runnable group, execute, retrospect,
// revalidate rules).
//
// The Manager is a single concrete type composing an AgentState value with an
// injected agent store, ID generator, planner, and subtask executor. There is
// no agent hierarchy: the capability set is small and closed, so explicit
// fields beat virtual dispatch.
//
// Every state-changing operation flushes the agent's full state to the store
// before returning. A crash between mutation and flush loses only that one
// operation, not prior history. The Manager is not safe for concurrent use by
// two drivers against the same agent id: it is a single-owner design.
package agent
