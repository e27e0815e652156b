// Package api implements the HTTP handlers for the REST surface:
// registration, authentication, user profile, and task CRUD. Handlers
// decode and validate requests, delegate to the service layer, and map
// service errors to HTTP status codes.
package api
