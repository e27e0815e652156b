// Package service provides application-level services over the domain
// stores: task CRUD with tenant scoping, post-commit side effects, and
// company statistics. The API layer maps service errors to HTTP status
// codes; the service layer never touches HTTP.
package service
