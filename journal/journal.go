package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect registration
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"

	"github.com/AntonStoeckl/dynamic-aspects-go/aspect"
	"github.com/AntonStoeckl/dynamic-aspects-go/journal/internal/adapters"
)

const (
	defaultTableName      = "invocation_journal"
	dialectPostgres       = "postgres"
	colID                 = "id"
	colClass              = "class"
	colMember             = "member"
	colArgs               = "args"
	colResult             = "result"
	colError              = "error"
	colOutcome            = "outcome"
	colStartedAt          = "started_at"
	colDurationNS         = "duration_ns"
	castUUID              = "?::uuid"
	castJsonb             = "?::jsonb"
	castTimestamp         = "?::timestamp with time zone"
	castText              = "TEXT"
	logMsgSQLExecuted     = "executed sql for: "
	logMsgCloseRowsFailed = "failed to close database rows"
	logActionCreateTable  = "create table"
	logActionAppend       = "append"
	logActionQuery        = "query"
	logAttrQuery          = "query"
	logAttrDurationMS     = "duration_ms"
	logAttrError          = "error"
)

const createTableSQL = `CREATE TABLE IF NOT EXISTS %[1]s (
	id          uuid PRIMARY KEY,
	class       text NOT NULL,
	member      text NOT NULL,
	args        jsonb NOT NULL,
	result      jsonb,
	error       text NOT NULL DEFAULT '',
	outcome     text NOT NULL,
	started_at  timestamp with time zone NOT NULL,
	duration_ns bigint NOT NULL
);
CREATE INDEX IF NOT EXISTS %[1]s_target_idx ON %[1]s (class, member, started_at)`

// Journal stores intercepted invocations in a PostgreSQL table.
type Journal struct {
	db               adapters.DBAdapter
	tableName        string
	logger           aspect.Logger
	contextualLogger aspect.ContextualLogger
}

// NewJournalFromPGXPool creates a Journal using a pgx Pool with optional configuration.
func NewJournalFromPGXPool(db *pgxpool.Pool, options ...Option) (*Journal, error) {
	if db == nil {
		return nil, ErrNilDatabaseConnection
	}

	return newJournal(adapters.NewPGXAdapter(db), options...)
}

// NewJournalFromSQLDB creates a Journal using a database/sql connection with optional configuration.
func NewJournalFromSQLDB(db *sql.DB, options ...Option) (*Journal, error) {
	if db == nil {
		return nil, ErrNilDatabaseConnection
	}

	return newJournal(adapters.NewSQLAdapter(db), options...)
}

// NewJournalFromSQLX creates a Journal using a sqlx connection with optional configuration.
func NewJournalFromSQLX(db *sqlx.DB, options ...Option) (*Journal, error) {
	if db == nil {
		return nil, ErrNilDatabaseConnection
	}

	return newJournal(adapters.NewSQLXAdapter(db), options...)
}

func newJournal(db adapters.DBAdapter, options ...Option) (*Journal, error) {
	j := &Journal{
		db:        db,
		tableName: defaultTableName,
	}

	for _, option := range options {
		if err := option(j); err != nil {
			return nil, err
		}
	}

	return j, nil
}

// TableName returns the name of the journal table.
func (j *Journal) TableName() string {
	return j.tableName
}

// CreateTable creates the journal table and its index if they do not exist.
func (j *Journal) CreateTable(ctx context.Context) error {
	query := fmt.Sprintf(createTableSQL, j.tableName)

	start := time.Now()
	_, err := j.db.Exec(ctx, query)
	j.logQueryWithDuration(ctx, logActionCreateTable, query, time.Since(start))

	if err != nil {
		return errors.Join(ErrCreatingTableFailed, err)
	}

	return nil
}

// Append writes entry. A nil entry ID is replaced by a fresh UUIDv7.
func (j *Journal) Append(ctx context.Context, entry Entry) error {
	if entry.ID == uuid.Nil {
		id, err := uuid.NewV7()
		if err != nil {
			return errors.Join(ErrAppendingEntryFailed, err)
		}
		entry.ID = id
	}

	query, err := j.buildInsertQuery(entry)
	if err != nil {
		return err
	}

	start := time.Now()
	_, execErr := j.db.Exec(ctx, query)
	j.logQueryWithDuration(ctx, logActionAppend, query, time.Since(start))

	if execErr != nil {
		return errors.Join(ErrAppendingEntryFailed, execErr)
	}

	return nil
}

// Query returns the entries recorded for target, oldest first.
func (j *Journal) Query(ctx context.Context, target aspect.Target) ([]Entry, error) {
	if target.IsZero() {
		return nil, ErrInvalidTarget
	}

	query, err := j.buildSelectQuery(target)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	rows, queryErr := j.db.Query(ctx, query)
	j.logQueryWithDuration(ctx, logActionQuery, query, time.Since(start))

	if queryErr != nil {
		return nil, errors.Join(ErrQueryingEntriesFailed, queryErr)
	}

	defer j.closeRows(ctx, rows)

	entries := make([]Entry, 0)
	for rows.Next() {
		entry, scanErr := scanEntry(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		entries = append(entries, entry)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, errors.Join(ErrQueryingEntriesFailed, rowsErr)
	}

	return entries, nil
}

func (j *Journal) buildInsertQuery(entry Entry) (string, error) {
	var result any
	if len(entry.ResultJSON) > 0 {
		result = goqu.L(castJsonb, string(entry.ResultJSON))
	}

	args := entry.ArgsJSON
	if len(args) == 0 {
		args = []byte(`{"positional":[]}`)
	}

	insertStmt := goqu.Dialect(dialectPostgres).
		Insert(j.tableName).
		Rows(goqu.Record{
			colID:         goqu.L(castUUID, entry.ID.String()),
			colClass:      entry.Class,
			colMember:     entry.Member,
			colArgs:       goqu.L(castJsonb, string(args)),
			colResult:     result,
			colError:      entry.Error,
			colOutcome:    string(entry.Outcome),
			colStartedAt:  goqu.L(castTimestamp, entry.StartedAt),
			colDurationNS: entry.Duration.Nanoseconds(),
		})

	query, _, err := insertStmt.ToSQL()
	if err != nil {
		return "", errors.Join(ErrBuildingQueryFailed, err)
	}

	return query, nil
}

func (j *Journal) buildSelectQuery(target aspect.Target) (string, error) {
	selectStmt := goqu.Dialect(dialectPostgres).
		From(j.tableName).
		Select(
			goqu.Cast(goqu.C(colID), castText).As(colID),
			goqu.C(colClass),
			goqu.C(colMember),
			goqu.Cast(goqu.C(colArgs), castText).As(colArgs),
			goqu.Cast(goqu.C(colResult), castText).As(colResult),
			goqu.C(colError),
			goqu.C(colOutcome),
			goqu.C(colStartedAt),
			goqu.C(colDurationNS),
		).
		Where(goqu.Ex{
			colClass:  target.Class().Name(),
			colMember: target.Name(),
		}).
		Order(goqu.C(colStartedAt).Asc(), goqu.C(colID).Asc())

	query, _, err := selectStmt.ToSQL()
	if err != nil {
		return "", errors.Join(ErrBuildingQueryFailed, err)
	}

	return query, nil
}

func scanEntry(rows adapters.DBRows) (Entry, error) {
	var (
		id         string
		entry      Entry
		argsJSON   string
		resultJSON sql.NullString
		outcome    string
		durationNS int64
	)

	err := rows.Scan(
		&id,
		&entry.Class,
		&entry.Member,
		&argsJSON,
		&resultJSON,
		&entry.Error,
		&outcome,
		&entry.StartedAt,
		&durationNS,
	)
	if err != nil {
		return Entry{}, errors.Join(ErrScanningRowFailed, err)
	}

	parsedID, err := uuid.Parse(id)
	if err != nil {
		return Entry{}, errors.Join(ErrScanningRowFailed, err)
	}

	entry.ID = parsedID
	entry.ArgsJSON = []byte(argsJSON)
	if resultJSON.Valid {
		entry.ResultJSON = []byte(resultJSON.String)
	}
	entry.Outcome = Outcome(outcome)
	entry.Duration = time.Duration(durationNS)

	return entry, nil
}

func (j *Journal) closeRows(ctx context.Context, rows adapters.DBRows) {
	if err := rows.Close(); err != nil {
		j.logWarn(ctx, logMsgCloseRowsFailed, logAttrError, err.Error())
	}
}
