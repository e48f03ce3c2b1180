// Package store declares the persistence contracts for users, their session
// tokens and avatars, and tasks, together with the sentinel errors every
// implementation returns. The PostgreSQL implementations live in
// internal/platform/postgres; in-memory ones for tests live in internal/mocks.
package store
