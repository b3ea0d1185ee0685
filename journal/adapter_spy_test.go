package journal

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/AntonStoeckl/dynamic-aspects-go/journal/internal/adapters"
)

// dbAdapterSpy captures rendered SQL and serves canned rows.
type dbAdapterSpy struct {
	mu       sync.Mutex
	execs    []string
	queries  []string
	execErr  error
	queryErr error
	rows     [][]any
}

func (s *dbAdapterSpy) Exec(_ context.Context, query string) (adapters.DBResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.execs = append(s.execs, query)
	if s.execErr != nil {
		return nil, s.execErr
	}

	return resultStub{}, nil
}

func (s *dbAdapterSpy) Query(_ context.Context, query string) (adapters.DBRows, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.queries = append(s.queries, query)
	if s.queryErr != nil {
		return nil, s.queryErr
	}

	return &rowsStub{rows: s.rows, index: -1}, nil
}

func (s *dbAdapterSpy) getExecs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]string(nil), s.execs...)
}

type resultStub struct{}

func (resultStub) RowsAffected() (int64, error) { return 1, nil }

type rowsStub struct {
	rows   [][]any
	index  int
	closed bool
}

func (r *rowsStub) Next() bool {
	r.index++
	return r.index < len(r.rows)
}

func (r *rowsStub) Scan(dest ...any) error {
	row := r.rows[r.index]
	if len(row) != len(dest) {
		return fmt.Errorf("expected %d destinations, got %d", len(row), len(dest))
	}

	for i, d := range dest {
		switch p := d.(type) {
		case *string:
			*p = row[i].(string)
		case *sql.NullString:
			*p = sql.NullString{}
			if s, ok := row[i].(string); ok {
				*p = sql.NullString{String: s, Valid: true}
			}
		case *time.Time:
			*p = row[i].(time.Time)
		case *int64:
			*p = row[i].(int64)
		default:
			return fmt.Errorf("unsupported destination %T", d)
		}
	}

	return nil
}

func (r *rowsStub) Err() error { return nil }

func (r *rowsStub) Close() error {
	r.closed = true
	return nil
}
