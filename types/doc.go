// Package types provides unified type definitions for the TaskMind engine.
//
// It is the lowest-level package in the module and has no internal
// dependencies, so every other package can import it without creating
// circular imports. It contains pure data: the task domain model (Goal,
// SubTask, Rule, MainTask), agent memory (ShortTermMemory, LongTermMemory),
// the persisted agent document (AgentState), and the structured error type
// shared across the API boundary.
package types
