// Package journalwrapper creates a Journal backed by the database adapter selected via ADAPTER_TYPE.
package journalwrapper

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/dynamic-aspects-go/journal"
	"github.com/AntonStoeckl/dynamic-aspects-go/testutil/journal/config"
)

// Adapter type constants.
const (
	typePGXPool = "pgx.pool"
	typeSQLDB   = "sql.db"
	typeSQLX    = "sqlx.db"
)

// Wrapper abstracts over the different database adapters.
type Wrapper interface {
	GetJournal() *journal.Journal
	Close()
}

// PGXPoolWrapper wraps a pgxpool-backed journal.
type PGXPoolWrapper struct {
	pool *pgxpool.Pool
	j    *journal.Journal
}

func (w *PGXPoolWrapper) GetJournal() *journal.Journal {
	return w.j
}

func (w *PGXPoolWrapper) Close() {
	w.pool.Close()
}

// SQLDBWrapper wraps a sql.DB-backed journal.
type SQLDBWrapper struct {
	db *sql.DB
	j  *journal.Journal
}

func (w *SQLDBWrapper) GetJournal() *journal.Journal {
	return w.j
}

func (w *SQLDBWrapper) Close() {
	_ = w.db.Close() // ignore error
}

// SQLXWrapper wraps a sqlx.DB-backed journal.
type SQLXWrapper struct {
	db *sqlx.DB
	j  *journal.Journal
}

func (w *SQLXWrapper) GetJournal() *journal.Journal {
	return w.j
}

func (w *SQLXWrapper) Close() {
	_ = w.db.Close() // ignore error
}

// CreateWrapper creates the wrapper selected by ADAPTER_TYPE, defaulting to pgx.pool.
// The test is skipped when JOURNAL_POSTGRES_DSN is not set.
func CreateWrapper(t testing.TB, options ...journal.Option) Wrapper {
	t.Helper()

	dsn, ok := config.PostgresDSN()
	if !ok {
		t.Skipf("%s not set, e.g. %s", config.DSNEnvVar, config.ExampleDSN())
	}

	ctx := context.Background()
	adapterTypeFromEnv := strings.ToLower(os.Getenv(config.AdapterTypeEnvVar))

	switch adapterTypeFromEnv {
	case typePGXPool, "":
		poolConfig, err := config.PostgresPGXPoolConfig(dsn)
		require.NoError(t, err, "error parsing the pool config in test setup")
		pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
		require.NoError(t, err, "error connecting to DB pool in test setup")
		j, err := journal.NewJournalFromPGXPool(pool, options...)
		require.NoError(t, err)

		return &PGXPoolWrapper{pool: pool, j: j}

	case typeSQLDB:
		db, err := config.PostgresSQLDBConfig(ctx, dsn)
		require.NoError(t, err, "error connecting to DB in test setup")
		j, err := journal.NewJournalFromSQLDB(db, options...)
		require.NoError(t, err)

		return &SQLDBWrapper{db: db, j: j}

	case typeSQLX:
		db, err := config.PostgresSQLXConfig(ctx, dsn)
		require.NoError(t, err, "error connecting to DB in test setup")
		j, err := journal.NewJournalFromSQLX(db, options...)
		require.NoError(t, err)

		return &SQLXWrapper{db: db, j: j}

	default: // neither one of the known types nor empty
		panic(fmt.Sprintf("unsupported adapter type from env: %s", adapterTypeFromEnv))
	}
}

// CleanUp drops the journal table of the given wrapper.
func CleanUp(t testing.TB, wrapper Wrapper) {
	t.Helper()

	table := wrapper.GetJournal().TableName()

	switch w := wrapper.(type) {
	case *PGXPoolWrapper:
		_, err := w.pool.Exec(context.Background(), "DROP TABLE IF EXISTS "+table)
		require.NoError(t, err, "error dropping the journal table")

	case *SQLDBWrapper:
		_, err := w.db.ExecContext(context.Background(), "DROP TABLE IF EXISTS "+table)
		require.NoError(t, err, "error dropping the journal table")

	case *SQLXWrapper:
		_, err := w.db.ExecContext(context.Background(), "DROP TABLE IF EXISTS "+table)
		require.NoError(t, err, "error dropping the journal table")

	default:
		panic(fmt.Sprintf("unsupported wrapper type: %T", w))
	}
}
