package service

import "errors"

// Common service errors - sentinel errors used across service implementations.
// Callers check for these with errors.Is(); the API layer maps them to
// HTTP status codes.
var (
	// ErrTaskNotFound indicates the task does not exist within the
	// caller's company. Maps to HTTP 404 Not Found.
	ErrTaskNotFound = errors.New("task not found")

	// ErrAssigneeNotFound indicates the requested assignee does not exist.
	// Maps to HTTP 400 Bad Request.
	ErrAssigneeNotFound = errors.New("assignee not found")

	// ErrCrossCompanyAssignment indicates an attempt to assign a task to
	// a user from a different company. Maps to HTTP 400 Bad Request.
	ErrCrossCompanyAssignment = errors.New("cannot assign task to user from different company")
)
