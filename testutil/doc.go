// Package testutil provides shared helpers and fixtures for tests: bounded
// test contexts, polling assertions, and canonical agent state and task
// fixtures.
//
// Usage:
//
//	ctx := testutil.Context(t)
//	state := testutil.ManagerState("mgr-1")
//	testutil.EventuallyTrue(t, func() bool { return done }, 5*time.Second)
package testutil
