// Package handlers implements the HTTP handlers for workflow execution,
// agent retrieval and health checks, plus the shared response envelope.
package handlers
