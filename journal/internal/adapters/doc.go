// Package adapters provides the database adapters behind the PostgreSQL invocation journal.
//
// Three PostgreSQL client libraries are supported: pgxpool.Pool, sql.DB and sqlx.DB.
// Each adapter implements DBAdapter, so the journal builds its SQL once and runs it
// unchanged on any of them.
package adapters
