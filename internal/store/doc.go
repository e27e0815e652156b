// Package store defines the persistence interfaces consumed by the rest of
// the application, along with the sentinel errors store implementations
// return. Concrete implementations live in internal/platform/postgres.
package store
