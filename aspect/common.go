package aspect

import (
	"errors"
)

var (
	// ErrNilClass is returned when a nil class is supplied to the Weaver.
	ErrNilClass = errors.New("class must not be nil")

	// ErrNilModule is returned when a nil module is supplied to WeaveModule.
	ErrNilModule = errors.New("module must not be nil")

	// ErrNilWeavingState is returned when a Weaver is constructed without a WeavingState.
	ErrNilWeavingState = errors.New("weaving state must not be nil")

	// ErrNilWeaver is returned when advice is applied without a Weaver.
	ErrNilWeaver = errors.New("weaver must not be nil")

	// ErrAttributeNotFound is returned when an object has no attribute with the requested name.
	ErrAttributeNotFound = errors.New("attribute not found")

	// ErrNotCallable is returned when a data attribute is called.
	ErrNotCallable = errors.New("attribute is not callable")

	// ErrInvalidTarget is returned when advice is registered against a zero Target.
	ErrInvalidTarget = errors.New("target reference is invalid")

	// ErrUnknownMember is returned when a Target names no callable member of its class.
	ErrUnknownMember = errors.New("target does not name a callable member of its class")

	// ErrNilHook is returned when a nil hook is registered with the AdviceBuilder.
	ErrNilHook = errors.New("hook must not be nil")

	// ErrArgumentIndex is returned when a positional argument is missing.
	ErrArgumentIndex = errors.New("argument index out of range")

	// ErrArgumentType is returned when an argument does not have the requested type.
	ErrArgumentType = errors.New("argument has unexpected type")

	// ErrMissingKeyword is returned when a keyword argument is missing.
	ErrMissingKeyword = errors.New("keyword argument missing")
)

// ReservedPrefix marks protocol members (constructors, representation hooks, ...) that are never intercepted.
const ReservedPrefix = "__"
