package journal

import "errors"

var (
	// ErrNilDatabaseConnection is returned when a Journal is constructed without a database connection.
	ErrNilDatabaseConnection = errors.New("database connection must not be nil")

	// ErrEmptyTableName is returned when the journal table name is set to an empty string.
	ErrEmptyTableName = errors.New("journal table name must not be empty")

	// ErrInvalidTableName is returned when the journal table name is not a plain SQL identifier.
	ErrInvalidTableName = errors.New("journal table name must be a plain sql identifier")

	// ErrInvalidTarget is returned when entries are queried for a zero aspect.Target.
	ErrInvalidTarget = errors.New("target reference is invalid")

	// ErrBuildingQueryFailed is returned when building a SQL statement fails.
	ErrBuildingQueryFailed = errors.New("building query failed")

	// ErrCreatingTableFailed is returned when the journal table cannot be created.
	ErrCreatingTableFailed = errors.New("creating journal table failed")

	// ErrAppendingEntryFailed is returned when an entry cannot be written.
	ErrAppendingEntryFailed = errors.New("appending journal entry failed")

	// ErrQueryingEntriesFailed is returned when the entry query fails.
	ErrQueryingEntriesFailed = errors.New("querying journal entries failed")

	// ErrScanningRowFailed is returned when a result row cannot be read.
	ErrScanningRowFailed = errors.New("scanning journal row failed")

	// ErrDecodingEntryFailed is returned when stored JSON cannot be decoded.
	ErrDecodingEntryFailed = errors.New("decoding journal entry failed")
)
