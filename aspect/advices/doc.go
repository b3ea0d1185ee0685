// Package advices provides ready-made around wrappers for use with aspect.AdviceBuilder.
//
// Retry re-runs the wrapped call with exponential backoff and jitter:
//
//	retry, err := advices.Retry(
//		advices.WithMaxAttempts(4),
//		advices.WithRetryableErrors(ErrConflict),
//	)
//	if err != nil {
//		// handle error
//	}
//
//	builder.AddAround(account.Target("Withdraw"), retry)
package advices
