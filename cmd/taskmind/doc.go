// Command taskmind runs the task orchestration service: an HTTP API that
// accepts workflow requests, drives them through the manager agent's
// plan-execute-retrospect loop and persists agent state to the configured
// store.
package main
