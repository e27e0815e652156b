// Package events provides types and interfaces for an event-driven architecture.
//
// Services emit domain events without knowing which handlers will process
// them, keeping the mutation path decoupled from side effects such as
// notification delivery. The primary components are:
//   - Event: a typed domain event with a JSON payload
//   - EventHandler: interface for components that consume events
//   - EventEmitter: interface for components that publish events
package events
