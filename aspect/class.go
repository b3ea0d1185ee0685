package aspect

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"
)

// MethodFunc is the unbound implementation of an instance method. The receiver is passed as self.
type MethodFunc func(ctx context.Context, self any, args Args) (any, error)

// Func is the implementation of a plain (static) function reachable through a class.
type Func func(ctx context.Context, args Args) (any, error)

// Resolver resolves a member name on an object into an Attribute.
// Installing a different Resolver on a Class changes how every object of the class resolves its members.
type Resolver func(obj *Object, name string) (Attribute, error)

type member struct {
	kind   AttributeKind
	method MethodFunc
	fn     Func
	value  any
}

// Class declares the members of a type whose attribute resolution can be intercepted.
type Class struct {
	name     string
	members  map[string]member
	order    []string
	mu       sync.RWMutex
	resolver Resolver
}

// NewClass creates an empty class with the given name.
func NewClass(name string) *Class {
	return &Class{
		name:    name,
		members: make(map[string]member),
	}
}

// Name returns the class name.
func (c *Class) Name() string {
	return c.name
}

// String returns the class name.
func (c *Class) String() string {
	return c.name
}

// Method declares an instance method.
func (c *Class) Method(name string, fn MethodFunc) *Class {
	return c.declare(name, member{kind: MethodAttribute, method: fn})
}

// Function declares a plain function reachable through the class and its objects.
func (c *Class) Function(name string, fn Func) *Class {
	return c.declare(name, member{kind: FunctionAttribute, fn: fn})
}

// Value declares a data attribute shared by all objects of the class.
func (c *Class) Value(name string, value any) *Class {
	return c.declare(name, member{kind: ValueAttribute, value: value})
}

func (c *Class) declare(name string, m member) *Class {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.members[name]; !exists {
		c.order = append(c.order, name)
	}
	c.members[name] = m

	return c
}

// Members returns the declared member names in declaration order.
func (c *Class) Members() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return slices.Clone(c.order)
}

// Kind returns the kind of the named member.
func (c *Class) Kind(name string) (AttributeKind, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	m, ok := c.members[name]
	return m.kind, ok
}

// Target returns the Target reference of the named member.
// The member does not need to be declared yet; AdviceBuilder validates targets when mappings are built.
func (c *Class) Target(name string) Target {
	return Target{class: c, name: name}
}

// New creates an object of the class. self is the receiver handed to method implementations.
func (c *Class) New(self any) *Object {
	return &Object{
		class:  c,
		self:   self,
		fields: make(map[string]any),
	}
}

// Resolver returns the currently installed resolver; nil means the default resolution.
func (c *Class) Resolver() Resolver {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.resolver
}

// SetResolver installs r as the attribute resolution of the class. A nil r restores the default resolution.
func (c *Class) SetResolver(r Resolver) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.resolver = r
}

func (c *Class) member(name string) (member, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	m, ok := c.members[name]
	return m, ok
}

// Resolve is the default attribute resolution: object fields first, then class members.
// Resolvers installed on a class usually delegate to it.
func Resolve(obj *Object, name string) (Attribute, error) {
	if v, ok := obj.field(name); ok {
		return Attribute{name: name, kind: ValueAttribute, class: obj.class, object: obj, value: v}, nil
	}

	m, ok := obj.class.member(name)
	if !ok {
		return Attribute{}, fmt.Errorf("%w: %s.%s", ErrAttributeNotFound, obj.class.name, name)
	}

	return Attribute{
		name:   name,
		kind:   m.kind,
		class:  obj.class,
		object: obj,
		value:  m.value,
		method: m.method,
		fn:     m.fn,
	}, nil
}

// IsReserved reports whether name carries the ReservedPrefix.
func IsReserved(name string) bool {
	return strings.HasPrefix(name, ReservedPrefix)
}

/***** Object *****/

// Object is an instance of a Class. All member lookups go through the class's installed Resolver.
type Object struct {
	class  *Class
	self   any
	mu     sync.RWMutex
	fields map[string]any
}

// Class returns the class of the object.
func (o *Object) Class() *Class {
	return o.class
}

// Self returns the receiver passed to method implementations.
func (o *Object) Self() any {
	return o.self
}

// Set stores a per-object data attribute. Object fields shadow class members of the same name.
func (o *Object) Set(name string, value any) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.fields[name] = value
}

// Fields returns the names of the per-object data attributes, sorted.
func (o *Object) Fields() []string {
	o.mu.RLock()
	defer o.mu.RUnlock()

	names := make([]string, 0, len(o.fields))
	for name := range o.fields {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}

func (o *Object) field(name string) (any, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()

	v, ok := o.fields[name]
	return v, ok
}

// Attr resolves the named attribute through the class's current Resolver.
func (o *Object) Attr(name string) (Attribute, error) {
	resolver := o.class.Resolver()
	if resolver == nil {
		return Resolve(o, name)
	}

	return resolver(o, name)
}

// Get returns the value of a data attribute.
func (o *Object) Get(name string) (any, error) {
	attr, err := o.Attr(name)
	if err != nil {
		return nil, err
	}

	return attr.Value(), nil
}

// Call resolves the named member and calls it with positional arguments.
func (o *Object) Call(ctx context.Context, name string, args ...any) (any, error) {
	return o.CallArgs(ctx, name, Positional(args...))
}

// CallArgs resolves the named member and calls it with args.
func (o *Object) CallArgs(ctx context.Context, name string, args Args) (any, error) {
	attr, err := o.Attr(name)
	if err != nil {
		return nil, err
	}

	return attr.Call(ctx, args)
}
