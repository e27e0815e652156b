// Package jobs manages background job queuing, processing, and lifecycle.
// It provides mechanisms for asynchronous execution of work that must not
// block HTTP request handling — currently task-assignment email
// notifications — and recovers unfinished jobs from the database after an
// application restart.
package jobs
