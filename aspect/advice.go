package aspect

import (
	"context"
	"slices"
)

// PreludeFunc runs before the advised member. A returned error aborts the call and reaches the caller unchanged.
type PreludeFunc func(ctx context.Context, attr Attribute, self any, args Args) error

// EncoreFunc runs after the advised member returned successfully.
type EncoreFunc func(ctx context.Context, attr Attribute, self any, result any) error

// ErrorHandlerFunc receives errors escaping the around chain.
// Returning nil lets handling continue; returning an error stops it and hands that error to the caller.
type ErrorHandlerFunc func(ctx context.Context, attr Attribute, self any, err error) error

// NextFunc invokes the next link of an around chain.
type NextFunc func(ctx context.Context, args Args) (any, error)

// AroundFunc wraps the call. It may invoke next zero, one or many times.
type AroundFunc func(ctx context.Context, next NextFunc, self any, args Args) (any, error)

// Aspect is the advice consulted for one intercepted member.
type Aspect interface {
	Prelude(ctx context.Context, attr Attribute, self any, args Args) error
	Encore(ctx context.Context, attr Attribute, self any, result any) error
	HandleError(ctx context.Context, attr Attribute, self any, err error) error
	Around(ctx context.Context, attr Attribute, self any, args Args) (any, error)
}

type identityAspect struct{}

// Identity is the aspect used for members without advice: it calls the original member and passes errors through.
var Identity Aspect = identityAspect{}

func (identityAspect) Prelude(context.Context, Attribute, any, Args) error { return nil }

func (identityAspect) Encore(context.Context, Attribute, any, any) error { return nil }

func (identityAspect) HandleError(_ context.Context, _ Attribute, _ any, err error) error { return err }

func (identityAspect) Around(ctx context.Context, attr Attribute, _ any, args Args) (any, error) {
	return attr.invoke(ctx, args)
}

/***** Advice *****/

// Advice holds the ordered hooks registered for one Target.
//
// Advice is mutated only while it is being registered. Weaving captures a frozen copy,
// so hooks added afterwards do not affect classes that are already woven.
type Advice struct {
	target        Target
	preludes      []PreludeFunc
	encores       []EncoreFunc
	errorHandlers []ErrorHandlerFunc
	arounds       []AroundFunc
}

// NewAdvice creates empty advice for target.
func NewAdvice(target Target) *Advice {
	return &Advice{target: target}
}

// Target returns the advised member.
func (a *Advice) Target() Target {
	return a.target
}

// AddPrelude appends a prelude hook.
func (a *Advice) AddPrelude(hook PreludeFunc) *Advice {
	if hook != nil {
		a.preludes = append(a.preludes, hook)
	}

	return a
}

// AddEncore appends an encore hook.
func (a *Advice) AddEncore(hook EncoreFunc) *Advice {
	if hook != nil {
		a.encores = append(a.encores, hook)
	}

	return a
}

// AddErrorHandler appends an error handler.
func (a *Advice) AddErrorHandler(hook ErrorHandlerFunc) *Advice {
	if hook != nil {
		a.errorHandlers = append(a.errorHandlers, hook)
	}

	return a
}

// AddAround appends an around wrapper. The first wrapper added is the outermost.
func (a *Advice) AddAround(wrapper AroundFunc) *Advice {
	if wrapper != nil {
		a.arounds = append(a.arounds, wrapper)
	}

	return a
}

// IsEmpty reports whether no hooks are registered.
func (a *Advice) IsEmpty() bool {
	return len(a.preludes) == 0 && len(a.encores) == 0 && len(a.errorHandlers) == 0 && len(a.arounds) == 0
}

// Freeze returns an independent copy of the advice.
func (a *Advice) Freeze() *Advice {
	if a == nil {
		return nil
	}

	return &Advice{
		target:        a.target,
		preludes:      slices.Clone(a.preludes),
		encores:       slices.Clone(a.encores),
		errorHandlers: slices.Clone(a.errorHandlers),
		arounds:       slices.Clone(a.arounds),
	}
}

// Prelude runs all preludes in registration order, stopping at the first error.
// Every prelude receives its own copy of args, so changes made by one are seen neither by the next nor by the call.
func (a *Advice) Prelude(ctx context.Context, attr Attribute, self any, args Args) error {
	for _, prelude := range a.preludes {
		if err := prelude(ctx, attr, self, args.clone()); err != nil {
			return err
		}
	}

	return nil
}

// Encore runs all encores in registration order, stopping at the first error.
func (a *Advice) Encore(ctx context.Context, attr Attribute, self any, result any) error {
	for _, encore := range a.encores {
		if err := encore(ctx, attr, self, result); err != nil {
			return err
		}
	}

	return nil
}

// HandleError returns err unchanged when no handlers are registered.
// Otherwise every handler runs in order with err; the first non-nil error a handler returns
// is returned, and if all handlers return nil the error is suppressed.
func (a *Advice) HandleError(ctx context.Context, attr Attribute, self any, err error) error {
	if len(a.errorHandlers) == 0 {
		return err
	}

	for _, handler := range a.errorHandlers {
		if handlerErr := handler(ctx, attr, self, err); handlerErr != nil {
			return handlerErr
		}
	}

	return nil
}

// Around composes the around wrappers into one chain and invokes it.
// The chain is folded from the right: the original member is the base and the
// first registered wrapper ends up outermost.
func (a *Advice) Around(ctx context.Context, attr Attribute, self any, args Args) (any, error) {
	next := NextFunc(func(ctx context.Context, args Args) (any, error) {
		return Identity.Around(ctx, attr, self, args)
	})

	for i := len(a.arounds) - 1; i >= 0; i-- {
		wrapper, inner := a.arounds[i], next
		next = func(ctx context.Context, args Args) (any, error) {
			return wrapper(ctx, inner, self, args)
		}
	}

	return next(ctx, args)
}

// Ensure Advice implements Aspect.
var _ Aspect = (*Advice)(nil)
