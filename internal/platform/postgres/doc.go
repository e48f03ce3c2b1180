// Package postgres provides the PostgreSQL implementations of the store
// interfaces defined in internal/store, together with connection setup,
// the embedded goose migrations and the mapping of pgconn error codes onto
// store sentinel errors.
//
// Every task query is scoped by owner_id; a task owned by someone else is
// indistinguishable from a missing one.
package postgres
