package journal

import (
	"regexp"

	"github.com/AntonStoeckl/dynamic-aspects-go/aspect"
)

var tableNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]{0,62}$`)

// Option defines a functional option for configuring a Journal.
type Option func(*Journal) error

// WithTableName sets the journal table name. It must be a plain, unquoted SQL identifier.
func WithTableName(tableName string) Option {
	return func(j *Journal) error {
		if tableName == "" {
			return ErrEmptyTableName
		}

		if !tableNamePattern.MatchString(tableName) {
			return ErrInvalidTableName
		}

		j.tableName = tableName

		return nil
	}
}

// WithLogger sets the logger for the Journal.
//
// Debug level: executed SQL with timing (development use)
// Warn level: entries that could not be recorded, rows that could not be closed.
func WithLogger(logger aspect.Logger) Option {
	return func(j *Journal) error {
		j.logger = logger
		return nil
	}
}

// WithContextualLogger sets a context-aware logger for the Journal, enabling trace correlation.
func WithContextualLogger(logger aspect.ContextualLogger) Option {
	return func(j *Journal) error {
		j.contextualLogger = logger
		return nil
	}
}
