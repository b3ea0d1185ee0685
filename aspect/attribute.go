package aspect

import (
	"context"
	"fmt"
)

// AttributeKind classifies a resolved attribute.
type AttributeKind int

const (
	// ValueAttribute is a data attribute; it is never intercepted.
	ValueAttribute AttributeKind = iota

	// MethodAttribute is an instance method bound to the object it was resolved on.
	MethodAttribute

	// FunctionAttribute is a plain function reachable through the class.
	FunctionAttribute
)

// String provides a string representation of AttributeKind for logging and debugging.
func (k AttributeKind) String() string {
	switch k {
	case ValueAttribute:
		return "value"
	case MethodAttribute:
		return "method"
	case FunctionAttribute:
		return "function"
	default:
		return "unknown"
	}
}

// Callable is the signature of a woven call.
type Callable func(ctx context.Context, args Args) (any, error)

// Attribute is the result of resolving a member name on an Object.
type Attribute struct {
	name   string
	kind   AttributeKind
	class  *Class
	object *Object
	value  any
	method MethodFunc
	fn     Func
	woven  Callable
}

// Name returns the member name.
func (a Attribute) Name() string {
	return a.name
}

// Kind returns the attribute kind.
func (a Attribute) Kind() AttributeKind {
	return a.kind
}

// Class returns the class the attribute was resolved through.
func (a Attribute) Class() *Class {
	return a.class
}

// Object returns the object the attribute was resolved on.
func (a Attribute) Object() *Object {
	return a.object
}

// Self returns the receiver of the object the attribute was resolved on, or nil.
func (a Attribute) Self() any {
	if a.object == nil {
		return nil
	}

	return a.object.self
}

// Target returns the Target reference of the member.
func (a Attribute) Target() Target {
	return Target{class: a.class, name: a.name}
}

// Value returns the value of a data attribute; it is nil for methods and functions.
func (a Attribute) Value() any {
	return a.value
}

// Method returns the unbound method implementation, or nil if the attribute is not a method.
func (a Attribute) Method() MethodFunc {
	return a.method
}

// Func returns the function implementation, or nil if the attribute is not a function.
func (a Attribute) Func() Func {
	return a.fn
}

// IsCallable reports whether the attribute is a method or a function.
func (a Attribute) IsCallable() bool {
	return a.kind == MethodAttribute || a.kind == FunctionAttribute
}

// IsWoven reports whether calls to the attribute are intercepted by a Weaver.
func (a Attribute) IsWoven() bool {
	return a.woven != nil
}

// Unwrap returns the attribute without interception.
func (a Attribute) Unwrap() Attribute {
	a.woven = nil
	return a
}

// Call calls the attribute. Woven attributes run their advice around the original member.
func (a Attribute) Call(ctx context.Context, args Args) (any, error) {
	if a.woven != nil {
		return a.woven(ctx, args)
	}

	return a.invoke(ctx, args)
}

// invoke calls the original member: methods are bound to the object's receiver, functions get no receiver.
func (a Attribute) invoke(ctx context.Context, args Args) (any, error) {
	switch {
	case a.kind == MethodAttribute && a.method != nil:
		return a.method(ctx, a.Self(), args)

	case a.kind == FunctionAttribute && a.fn != nil:
		return a.fn(ctx, args)

	default:
		return nil, fmt.Errorf("%w: %s", ErrNotCallable, a.Target())
	}
}
