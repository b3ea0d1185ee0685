package aspect

import (
	"fmt"
	"maps"
	"slices"
)

// Args carries the positional and keyword arguments of a call to a class member.
//
// Args values are treated as immutable: the With* methods return modified copies,
// so an around wrapper can rewrite the arguments it passes to next without affecting
// what the other hooks observed.
type Args struct {
	Positional []any
	Keyword    map[string]any
}

// Positional builds Args from positional values only.
func Positional(values ...any) Args {
	return Args{Positional: values}
}

// Len returns the number of positional arguments.
func (a Args) Len() int {
	return len(a.Positional)
}

// At returns the positional argument at index i, or nil if there is none.
func (a Args) At(i int) any {
	if i < 0 || i >= len(a.Positional) {
		return nil
	}

	return a.Positional[i]
}

// Kwarg returns the keyword argument with the given name.
func (a Args) Kwarg(name string) (any, bool) {
	v, ok := a.Keyword[name]
	return v, ok
}

// WithPositional returns a copy of a with the positional arguments replaced.
func (a Args) WithPositional(values ...any) Args {
	return Args{
		Positional: values,
		Keyword:    maps.Clone(a.Keyword),
	}
}

// WithKeyword returns a copy of a with the keyword argument set.
func (a Args) WithKeyword(name string, value any) Args {
	keyword := maps.Clone(a.Keyword)
	if keyword == nil {
		keyword = make(map[string]any, 1)
	}
	keyword[name] = value

	return Args{
		Positional: slices.Clone(a.Positional),
		Keyword:    keyword,
	}
}

// clone returns a deep copy of the argument containers; the argument values themselves are shared.
func (a Args) clone() Args {
	return Args{
		Positional: slices.Clone(a.Positional),
		Keyword:    maps.Clone(a.Keyword),
	}
}

// Arg returns the positional argument at index i converted to T.
func Arg[T any](args Args, i int) (T, error) {
	var zero T

	if i < 0 || i >= len(args.Positional) {
		return zero, fmt.Errorf("%w: %d of %d", ErrArgumentIndex, i, len(args.Positional))
	}

	v, ok := args.Positional[i].(T)
	if !ok {
		return zero, fmt.Errorf("%w: argument %d is %T, want %T", ErrArgumentType, i, args.Positional[i], zero)
	}

	return v, nil
}

// Keyword returns the keyword argument with the given name converted to T.
func Keyword[T any](args Args, name string) (T, error) {
	var zero T

	raw, ok := args.Keyword[name]
	if !ok {
		return zero, fmt.Errorf("%w: %s", ErrMissingKeyword, name)
	}

	v, ok := raw.(T)
	if !ok {
		return zero, fmt.Errorf("%w: keyword %s is %T, want %T", ErrArgumentType, name, raw, zero)
	}

	return v, nil
}
