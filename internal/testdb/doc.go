// Package testdb provides utilities for database integration tests.
//
// Tests call GetTestDBWithT to obtain a migrated connection (skipping when
// DATABASE_URL is unset) and WithTx to run inside a transaction that is
// rolled back afterwards, so tests never see each other's rows.
package testdb
