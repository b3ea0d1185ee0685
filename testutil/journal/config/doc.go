// Package config provides PostgreSQL database configuration for journal testing.
//
// It contains factory functions for the three adapters the journal supports
// (pgx.Pool, sql.DB, sqlx.DB), all connecting to the database named by the
// JOURNAL_POSTGRES_DSN environment variable.
package config
