package aspect

import (
	"context"
	"errors"
	"time"
)

const (
	logMsgOperation        = "aspect operation: "
	logMsgInvocation       = "aspect invocation: "
	logActionWeave         = "weave"
	logActionUnweave       = "unweave"
	logActionWeaveModule   = "weave module"
	logAttrClass           = "class"
	logAttrMember          = "member"
	logAttrModule          = "module"
	logAttrTargets         = "targets"
	logAttrFirstWeave      = "first_weave"
	logAttrStatus          = "status"
	logAttrDurationMS      = "duration_ms"
	logAttrError           = "error"
	logAttrClassCount      = "class_count"
	operationWeave         = "weave"
	operationUnweave       = "unweave"
	operationInvoke        = "invoke"
	statusSuccess          = "success"
	statusError            = "error"
	statusHandled          = "handled"
	spanNameInvoke         = "aspect.invoke"
	spanAttrClass          = "class"
	spanAttrMember         = "member"
	spanAttrKind           = "kind"
	spanAttrOperation      = "operation"
	spanAttrDurationMS     = "duration_ms"
	spanAttrErrorType      = "error_type"
	metricWeaveOperations  = "aspect_weave_operations_total"
	metricWovenClasses     = "aspect_woven_classes"
	metricInvokeDuration   = "aspect_invocation_duration_seconds"
	metricInvocationErrors = "aspect_invocation_errors_total"
	errorTypePrelude       = "prelude"
	errorTypeEncore        = "encore"
	errorTypeCall          = "call"
)

// Weaver installs and removes interception on classes.
//
// Weaving a class replaces its Resolver: members resolved on any object of the class are
// wrapped so that calling them runs the advice registered for their Target around the original
// member. Unweaving reinstalls the resolver recorded in the WeavingState.
//
// Weaving is expected to happen during single-threaded setup. The Weaver keeps shared state
// memory-safe but does not order concurrent Weave/Unweave calls on the same class.
type Weaver struct {
	state            *WeavingState
	logger           Logger
	contextualLogger ContextualLogger
	metricsCollector MetricsCollector
	tracingCollector TracingCollector
}

// NewWeaver creates a Weaver recording originals in state.
func NewWeaver(state *WeavingState, options ...Option) (*Weaver, error) {
	if state == nil {
		return nil, ErrNilWeavingState
	}

	w := &Weaver{state: state}

	for _, option := range options {
		if err := option(w); err != nil {
			return nil, err
		}
	}

	return w, nil
}

// State returns the WeavingState the Weaver records originals in.
func (w *Weaver) State() *WeavingState {
	return w.state
}

// IsWoven reports whether class is currently woven.
func (w *Weaver) IsWoven(class *Class) bool {
	return class != nil && w.state.isWoven(class)
}

// Weave installs interception on class using mapping.
//
// The first Weave of a class records its current resolver as the original; later calls reuse it,
// so weaving an already woven class replaces its mapping instead of stacking interception.
// The mapping is copied and every *Advice in it frozen, so later changes to either have no effect.
func (w *Weaver) Weave(class *Class, mapping Mapping) error {
	if class == nil {
		return ErrNilClass
	}

	original, firstWeave := w.state.recordOriginal(class)
	frozen := mapping.clone()

	class.SetResolver(w.wovenResolver(original, frozen))
	w.state.markWoven(class)

	w.logOperation(logActionWeave,
		logAttrClass, class.Name(),
		logAttrTargets, len(frozen),
		logAttrFirstWeave, firstWeave)
	w.recordWeaveMetrics(operationWeave, class)

	return nil
}

// WeaveModule weaves every class of module with the same mapping.
func (w *Weaver) WeaveModule(module *Module, mapping Mapping) error {
	if module == nil {
		return ErrNilModule
	}

	var errs []error
	for _, class := range module.Classes() {
		if err := w.Weave(class, mapping); err != nil {
			errs = append(errs, err)
		}
	}

	w.logOperation(logActionWeaveModule,
		logAttrModule, module.Name(),
		logAttrClassCount, len(module.Classes()))

	return errors.Join(errs...)
}

// Unweave restores the resolver class had before it was first woven.
// It is a no-op for classes that were never woven and safe to call repeatedly.
func (w *Weaver) Unweave(class *Class) {
	if class == nil {
		return
	}

	original, ok := w.state.Original(class)
	if !ok {
		return
	}

	class.SetResolver(original)

	if w.state.isWoven(class) {
		w.state.markUnwoven(class)
		w.logOperation(logActionUnweave, logAttrClass, class.Name())
		w.recordWeaveMetrics(operationUnweave, class)
	}
}

// UnweaveAll unweaves every class recorded in the WeavingState.
func (w *Weaver) UnweaveAll() {
	for _, class := range w.state.Classes() {
		w.Unweave(class)
	}
}

// wovenResolver resolves through the recorded original and wraps callable, non-reserved members.
func (w *Weaver) wovenResolver(original Resolver, mapping Mapping) Resolver {
	if original == nil {
		original = Resolve
	}

	return func(obj *Object, name string) (Attribute, error) {
		attr, err := original(obj, name)
		if err != nil {
			return attr, err
		}

		if IsReserved(name) || !attr.IsCallable() {
			return attr, nil
		}

		return w.wrap(attr, mapping.Lookup(attr.Target())), nil
	}
}

// wrap returns a copy of attr whose calls run through aspect.
func (w *Weaver) wrap(attr Attribute, aspect Aspect) Attribute {
	original := attr.Unwrap()

	attr.woven = func(ctx context.Context, args Args) (any, error) {
		return w.invoke(ctx, original, aspect, args)
	}

	return attr
}

// invoke runs one intercepted call: prelude, around, encore, and error handling for errors escaping around.
func (w *Weaver) invoke(ctx context.Context, attr Attribute, aspect Aspect, args Args) (any, error) {
	self := attr.Self()
	observer, ctx := w.startInvocation(ctx, attr)

	if err := aspect.Prelude(ctx, attr, self, args.clone()); err != nil {
		observer.finishError(errorTypePrelude, err)
		return nil, err
	}

	result, callErr := aspect.Around(ctx, attr, self, args)
	if callErr != nil {
		if handledErr := aspect.HandleError(ctx, attr, self, callErr); handledErr != nil {
			observer.finishError(errorTypeCall, handledErr)
			return nil, handledErr
		}

		observer.finishHandled(callErr)
		return nil, nil
	}

	if err := aspect.Encore(ctx, attr, self, result); err != nil {
		observer.finishError(errorTypeEncore, err)
		return nil, err
	}

	observer.finishSuccess()

	return result, nil
}

// invocationObserver encapsulates tracing, metrics and logging for one intercepted invocation.
type invocationObserver struct {
	w     *Weaver
	ctx   context.Context
	attr  Attribute
	span  SpanContext
	start time.Time
}

func (w *Weaver) startInvocation(ctx context.Context, attr Attribute) (*invocationObserver, context.Context) {
	ctx, span := w.startInvocationSpan(ctx, attr)

	return &invocationObserver{
		w:     w,
		ctx:   ctx,
		attr:  attr,
		span:  span,
		start: time.Now(),
	}, ctx
}

func (o *invocationObserver) finishSuccess() {
	duration := time.Since(o.start)
	o.w.finishInvocationSpan(o.span, statusSuccess, duration, "")
	o.w.recordInvocationMetrics(o.ctx, o.attr, statusSuccess, duration, "")
	o.w.logInvocation(o.ctx, o.attr, statusSuccess, duration, nil)
}

func (o *invocationObserver) finishHandled(err error) {
	duration := time.Since(o.start)
	o.w.finishInvocationSpan(o.span, statusHandled, duration, "")
	o.w.recordInvocationMetrics(o.ctx, o.attr, statusHandled, duration, "")
	o.w.logInvocation(o.ctx, o.attr, statusHandled, duration, err)
}

func (o *invocationObserver) finishError(errorType string, err error) {
	duration := time.Since(o.start)
	o.w.finishInvocationSpan(o.span, statusError, duration, errorType)
	o.w.recordInvocationMetrics(o.ctx, o.attr, statusError, duration, errorType)
	o.w.logInvocation(o.ctx, o.attr, statusError, duration, err)
}
