// Package journal persists intercepted invocations to PostgreSQL.
//
// A Journal stores one Entry per invocation of a woven member: the class and member,
// the arguments and result as JSON, the error text, the outcome and the timing.
// Recording decorates any aspect.Aspect so that the invocations it advises are journaled
// without changing their results or errors.
//
// The Journal works with pgxpool.Pool, sql.DB or sqlx.DB:
//
//	j, err := journal.NewJournalFromPGXPool(pool, journal.WithTableName("billing_journal"))
//	if err != nil {
//		// handle error
//	}
//	if err := j.CreateTable(ctx); err != nil {
//		// handle error
//	}
//
//	mappings, err := builder.Mappings()
//	// ...
//	err = weaver.Weave(account, journal.RecordingClass(j, account, mappings[account]))
//
//	entries, err := j.Query(ctx, account.Target("Withdraw"))
package journal
