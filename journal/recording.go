package journal

import (
	"context"
	"time"

	"github.com/AntonStoeckl/dynamic-aspects-go/aspect"
)

const (
	logMsgRecordFailed = "journal: failed to record invocation"
	logAttrClass       = "class"
	logAttrMember      = "member"
)

// recordingAspect journals the invocations advised by inner.
type recordingAspect struct {
	journal *Journal
	inner   aspect.Aspect
}

// Recording decorates inner so every invocation reaching its around chain is appended to j.
//
// Successful calls are recorded when the around chain returns. Failed calls are recorded once
// inner's error handlers have run, as OutcomeHandled if they suppressed the error and OutcomeError
// otherwise. Calls aborted by a prelude are not recorded. Results and errors seen by the caller
// are unchanged; journal write failures are logged at warn level and otherwise ignored.
func Recording(j *Journal, inner aspect.Aspect) aspect.Aspect {
	if advice, ok := inner.(*aspect.Advice); ok {
		inner = aspect.Identity
		if advice != nil {
			inner = advice.Freeze()
		}
	}

	if inner == nil {
		inner = aspect.Identity
	}

	if j == nil {
		return inner
	}

	return &recordingAspect{journal: j, inner: inner}
}

// RecordingMapping decorates every aspect in mapping with Recording.
func RecordingMapping(j *Journal, mapping aspect.Mapping) aspect.Mapping {
	recorded := make(aspect.Mapping, len(mapping))
	for target, a := range mapping {
		recorded[target] = Recording(j, a)
	}

	return recorded
}

// RecordingClass returns a mapping that records every callable, non-reserved member of class,
// using the aspect mapping holds for it, or aspect.Identity.
func RecordingClass(j *Journal, class *aspect.Class, mapping aspect.Mapping) aspect.Mapping {
	recorded := RecordingMapping(j, mapping)

	for _, name := range class.Members() {
		kind, _ := class.Kind(name)
		target := class.Target(name)

		if aspect.IsReserved(name) || kind == aspect.ValueAttribute {
			continue
		}

		if _, ok := recorded[target]; !ok {
			recorded[target] = Recording(j, aspect.Identity)
		}
	}

	return recorded
}

func (r *recordingAspect) Prelude(ctx context.Context, attr aspect.Attribute, self any, args aspect.Args) error {
	return r.inner.Prelude(ctx, attr, self, args)
}

func (r *recordingAspect) Encore(ctx context.Context, attr aspect.Attribute, self any, result any) error {
	return r.inner.Encore(ctx, attr, self, result)
}

func (r *recordingAspect) Around(ctx context.Context, attr aspect.Attribute, self any, args aspect.Args) (any, error) {
	startedAt := time.Now()
	result, err := r.inner.Around(ctx, attr, self, args)
	entry := NewEntry(attr, args, startedAt, time.Since(startedAt))

	if err != nil {
		return nil, &pendingError{err: err, entry: entry}
	}

	r.record(ctx, entry.withOutcome(OutcomeSuccess, result, nil))

	return result, nil
}

func (r *recordingAspect) HandleError(ctx context.Context, attr aspect.Attribute, self any, err error) error {
	pending, ok := err.(*pendingError) //nolint:errorlint // only the error this aspect's Around returned is unwrapped
	if !ok {
		return r.inner.HandleError(ctx, attr, self, err)
	}

	handledErr := r.inner.HandleError(ctx, attr, self, pending.err)

	outcome := OutcomeError
	if handledErr == nil {
		outcome = OutcomeHandled
	}
	r.record(ctx, pending.entry.withOutcome(outcome, nil, pending.err))

	return handledErr
}

func (r *recordingAspect) record(ctx context.Context, entry Entry) {
	if err := r.journal.Append(ctx, entry); err != nil {
		r.journal.logWarn(ctx, logMsgRecordFailed,
			logAttrClass, entry.Class,
			logAttrMember, entry.Member,
			logAttrError, err.Error())
	}
}

// pendingError carries a failed call from Around to HandleError, where its outcome is known.
type pendingError struct {
	err   error
	entry Entry
}

func (e *pendingError) Error() string { return e.err.Error() }
func (e *pendingError) Unwrap() error { return e.err }

var _ aspect.Aspect = (*recordingAspect)(nil)
