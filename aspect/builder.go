package aspect

import (
	"errors"
	"fmt"
	"slices"
)

// AdviceBuilder is a registry of Advice keyed by Target with a fluent registration API.
//
// Registration errors do not break the chain; they are collected and reported by Mappings and Apply.
//
//	err := aspect.NewAdviceBuilder().
//		AddPrelude(account.Target("Withdraw"), logAmount).
//		AddAround(account.Target("Withdraw"), doubleAmount).
//		Apply(weaver)
type AdviceBuilder struct {
	advice map[Target]*Advice
	order  []Target
	errs   []error
}

// NewAdviceBuilder creates an empty AdviceBuilder.
func NewAdviceBuilder() *AdviceBuilder {
	return &AdviceBuilder{
		advice: make(map[Target]*Advice),
	}
}

// AddPrelude registers a prelude hook for target.
func (b *AdviceBuilder) AddPrelude(target Target, hook PreludeFunc) *AdviceBuilder {
	if advice := b.adviceFor(target, hook == nil); advice != nil {
		advice.AddPrelude(hook)
	}

	return b
}

// AddEncore registers an encore hook for target.
func (b *AdviceBuilder) AddEncore(target Target, hook EncoreFunc) *AdviceBuilder {
	if advice := b.adviceFor(target, hook == nil); advice != nil {
		advice.AddEncore(hook)
	}

	return b
}

// AddErrorHandler registers an error handler for target.
func (b *AdviceBuilder) AddErrorHandler(target Target, hook ErrorHandlerFunc) *AdviceBuilder {
	if advice := b.adviceFor(target, hook == nil); advice != nil {
		advice.AddErrorHandler(hook)
	}

	return b
}

// AddAround registers an around wrapper for target.
func (b *AdviceBuilder) AddAround(target Target, wrapper AroundFunc) *AdviceBuilder {
	if advice := b.adviceFor(target, wrapper == nil); advice != nil {
		advice.AddAround(wrapper)
	}

	return b
}

// adviceFor returns the advice for target, creating it lazily, or records a registration error.
func (b *AdviceBuilder) adviceFor(target Target, nilHook bool) *Advice {
	if target.IsZero() {
		b.errs = append(b.errs, fmt.Errorf("%w: %s", ErrInvalidTarget, target))
		return nil
	}

	if nilHook {
		b.errs = append(b.errs, fmt.Errorf("%w: %s", ErrNilHook, target))
		return nil
	}

	advice, ok := b.advice[target]
	if !ok {
		advice = NewAdvice(target)
		b.advice[target] = advice
		b.order = append(b.order, target)
	}

	return advice
}

// Advice returns the advice registered for target.
func (b *AdviceBuilder) Advice(target Target) (*Advice, bool) {
	advice, ok := b.advice[target]
	return advice, ok
}

// Targets returns all advised targets in first-registration order.
func (b *AdviceBuilder) Targets() []Target {
	return slices.Clone(b.order)
}

// Classes returns the owning classes of all advised targets in first-registration order.
func (b *AdviceBuilder) Classes() []*Class {
	classes := make([]*Class, 0, len(b.order))
	for _, target := range b.order {
		if !slices.Contains(classes, target.Class()) {
			classes = append(classes, target.Class())
		}
	}

	return classes
}

// Mappings groups frozen copies of the registered advice by owning class.
// It fails if any registration was invalid or any target names no callable member.
func (b *AdviceBuilder) Mappings() (map[*Class]Mapping, error) {
	errs := slices.Clone(b.errs)
	mappings := make(map[*Class]Mapping)

	for _, target := range b.order {
		kind, ok := target.Class().Kind(target.Name())
		if !ok || kind == ValueAttribute {
			errs = append(errs, fmt.Errorf("%w: %s", ErrUnknownMember, target))
			continue
		}

		mapping, ok := mappings[target.Class()]
		if !ok {
			mapping = make(Mapping)
			mappings[target.Class()] = mapping
		}
		mapping[target] = b.advice[target].Freeze()
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	return mappings, nil
}

// Apply weaves every owning class once, with one mapping merging all of its advised targets.
func (b *AdviceBuilder) Apply(weaver *Weaver) error {
	if weaver == nil {
		return ErrNilWeaver
	}

	mappings, err := b.Mappings()
	if err != nil {
		return err
	}

	for _, class := range b.Classes() {
		if weaveErr := weaver.Weave(class, mappings[class]); weaveErr != nil {
			return weaveErr
		}
	}

	return nil
}
