// Package workflow drives a single orchestration run to completion.
//
// The Driver owns the outer loop: it asks the manager agent to plan, picks
// the next executable subtask group, executes it, feeds completed work into
// retrospection and revalidates learned rules, bounded by a fixed maximum
// iteration count. The driver never mutates the domain model directly; all
// state changes go through the manager agent.
package workflow
