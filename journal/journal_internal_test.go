package journal

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/dynamic-aspects-go/aspect"
	"github.com/AntonStoeckl/dynamic-aspects-go/testutil/observability/testdoubles"
)

var errDeclined = errors.New("declined")

func givenSpyJournal(t *testing.T, options ...Option) (*Journal, *dbAdapterSpy) {
	t.Helper()

	spy := &dbAdapterSpy{}
	j, err := newJournal(spy, options...)
	require.NoError(t, err)

	return j, spy
}

func newCardClass() *aspect.Class {
	return aspect.NewClass("Card").
		Method("Charge", func(_ context.Context, _ any, args aspect.Args) (any, error) {
			amount, err := aspect.Arg[int](args, 0)
			if err != nil {
				return nil, err
			}
			if amount <= 0 {
				return nil, errDeclined
			}
			return map[string]int{"charged": amount}, nil
		}).
		Method("Refund", func(context.Context, any, aspect.Args) (any, error) { return "refunded", nil }).
		Method("__repr__", func(context.Context, any, aspect.Args) (any, error) { return "Card", nil }).
		Value("Issuer", "ACME")
}

func Test_Journal_Options_ValidateTableName(t *testing.T) {
	_, err := newJournal(&dbAdapterSpy{}, WithTableName(""))
	assert.ErrorIs(t, err, ErrEmptyTableName)

	_, err = newJournal(&dbAdapterSpy{}, WithTableName("journal; DROP TABLE x"))
	assert.ErrorIs(t, err, ErrInvalidTableName)

	j, err := newJournal(&dbAdapterSpy{}, WithTableName("billing_journal"))
	require.NoError(t, err)
	assert.Equal(t, "billing_journal", j.TableName())
}

func Test_Journal_Constructors_RejectNilConnections(t *testing.T) {
	_, err := NewJournalFromPGXPool(nil)
	assert.ErrorIs(t, err, ErrNilDatabaseConnection)

	_, err = NewJournalFromSQLDB(nil)
	assert.ErrorIs(t, err, ErrNilDatabaseConnection)

	_, err = NewJournalFromSQLX(nil)
	assert.ErrorIs(t, err, ErrNilDatabaseConnection)
}

func Test_Journal_CreateTable_UsesConfiguredTable(t *testing.T) {
	j, spy := givenSpyJournal(t, WithTableName("billing_journal"))

	require.NoError(t, j.CreateTable(context.Background()))

	execs := spy.getExecs()
	require.Len(t, execs, 1)
	assert.Contains(t, execs[0], "CREATE TABLE IF NOT EXISTS billing_journal (")
	assert.Contains(t, execs[0], "CREATE INDEX IF NOT EXISTS billing_journal_target_idx")
}

func Test_Journal_CreateTable_WrapsExecErrors(t *testing.T) {
	j, spy := givenSpyJournal(t)
	spy.execErr = errors.New("permission denied")

	err := j.CreateTable(context.Background())

	assert.ErrorIs(t, err, ErrCreatingTableFailed)
	assert.ErrorIs(t, err, spy.execErr)
}

func Test_Journal_Append_RendersInsert(t *testing.T) {
	// setup
	testHandler := testdoubles.NewLogHandlerSpy(false)
	j, spy := givenSpyJournal(t, WithLogger(slog.New(testHandler)))
	id := uuid.MustParse("0190c5a8-1b2c-7d3e-8f40-123456789abc")

	entry := Entry{
		ID:        id,
		Class:     "Card",
		Member:    "Charge",
		ArgsJSON:  []byte(`{"positional":[5]}`),
		Error:     "it's declined",
		Outcome:   OutcomeError,
		StartedAt: time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
		Duration:  1500 * time.Microsecond,
	}

	// act
	err := j.Append(context.Background(), entry)

	// assert
	require.NoError(t, err)
	execs := spy.getExecs()
	require.Len(t, execs, 1)
	assert.Contains(t, execs[0], `INSERT INTO "invocation_journal"`)
	assert.Contains(t, execs[0], `'0190c5a8-1b2c-7d3e-8f40-123456789abc'::uuid`)
	assert.Contains(t, execs[0], `'{"positional":[5]}'::jsonb`)
	assert.Contains(t, execs[0], `'it''s declined'`)
	assert.Contains(t, execs[0], `'error'`)
	assert.Contains(t, execs[0], "1500000")
	assert.Contains(t, execs[0], "NULL")
	assert.True(t,
		testHandler.HasDebugLogWithMessage("executed sql for: append").WithDurationMS().Assert(),
		"should log the executed insert with duration",
	)
}

func Test_Journal_Append_GeneratesMissingIDs(t *testing.T) {
	j, spy := givenSpyJournal(t)

	require.NoError(t, j.Append(context.Background(), Entry{Class: "Card", Member: "Charge", Outcome: OutcomeSuccess}))

	execs := spy.getExecs()
	require.Len(t, execs, 1)
	assert.NotContains(t, execs[0], uuid.Nil.String())
	assert.Contains(t, execs[0], `'{"positional":[]}'::jsonb`)
}

func Test_Journal_Append_WrapsExecErrors(t *testing.T) {
	j, spy := givenSpyJournal(t)
	spy.execErr = errors.New("connection reset")

	err := j.Append(context.Background(), Entry{Class: "Card", Member: "Charge"})

	assert.ErrorIs(t, err, ErrAppendingEntryFailed)
	assert.ErrorIs(t, err, spy.execErr)
}

func Test_Journal_Query_ScansEntriesForTarget(t *testing.T) {
	// setup
	j, spy := givenSpyJournal(t)
	class := newCardClass()
	startedAt := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	spy.rows = [][]any{
		{"0190c5a8-1b2c-7d3e-8f40-123456789abc", "Card", "Charge", `{"positional":[5]}`, `{"charged":5}`, "", "success", startedAt, int64(2000)},
		{"0190c5a8-1b2c-7d3e-8f40-123456789abd", "Card", "Charge", `{"positional":[0]}`, nil, "declined", "error", startedAt, int64(1000)},
	}

	// act
	entries, err := j.Query(context.Background(), class.Target("Charge"))

	// assert
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, uuid.MustParse("0190c5a8-1b2c-7d3e-8f40-123456789abc"), entries[0].ID)
	assert.Equal(t, OutcomeSuccess, entries[0].Outcome)
	assert.Equal(t, 2*time.Microsecond, entries[0].Duration)
	assert.Equal(t, startedAt, entries[0].StartedAt)
	assert.JSONEq(t, `{"charged":5}`, string(entries[0].ResultJSON))
	assert.Nil(t, entries[1].ResultJSON)
	assert.Equal(t, "declined", entries[1].Error)

	require.Len(t, spy.queries, 1)
	assert.Contains(t, spy.queries[0], `FROM "invocation_journal"`)
	assert.Contains(t, spy.queries[0], `"class" = 'Card'`)
	assert.Contains(t, spy.queries[0], `"member" = 'Charge'`)
	assert.Contains(t, spy.queries[0], `ORDER BY "started_at" ASC, "id" ASC`)
}

func Test_Journal_Query_RejectsZeroTarget(t *testing.T) {
	j, _ := givenSpyJournal(t)

	_, err := j.Query(context.Background(), aspect.Target{})

	assert.ErrorIs(t, err, ErrInvalidTarget)
}

func Test_Journal_Query_ReportsMalformedRows(t *testing.T) {
	j, spy := givenSpyJournal(t)
	spy.rows = [][]any{
		{"not-a-uuid", "Card", "Charge", `{}`, nil, "", "success", time.Now(), int64(1)},
	}

	_, err := j.Query(context.Background(), newCardClass().Target("Charge"))

	assert.ErrorIs(t, err, ErrScanningRowFailed)
}

func Test_Entry_Args_DecodesStoredArguments(t *testing.T) {
	class := newCardClass()
	attr, err := class.New(nil).Attr("Charge")
	require.NoError(t, err)
	unencodable := make(chan int)

	entry := NewEntry(attr, aspect.Positional(5, unencodable).WithKeyword("note", "rent"), time.Now(), time.Millisecond)
	args, err := entry.Args()

	require.NoError(t, err)
	require.Equal(t, 2, args.Len())
	assert.Equal(t, float64(5), args.At(0))
	assert.IsType(t, "", args.At(1), "values without a JSON form are stored as strings")
	assert.Equal(t, map[string]any{"note": "rent"}, args.Keyword)
	assert.Equal(t, "Card", entry.Class)
	assert.Equal(t, "Charge", entry.Member)
	assert.Equal(t, uuid.Version(7), entry.ID.Version())
}
