package aspect

// Target identifies a member slot of a class and is the lookup key into advice.
//
// Targets are comparable. A method target refers to the unbound member on the class,
// so every object of that class resolves the member name to the same Target and
// shares the advice registered for it.
type Target struct {
	class *Class
	name  string
}

// Class returns the class owning the member.
func (t Target) Class() *Class {
	return t.class
}

// Name returns the member name.
func (t Target) Name() string {
	return t.name
}

// IsZero reports whether t refers to no class.
func (t Target) IsZero() bool {
	return t.class == nil
}

// String returns "Class.member".
func (t Target) String() string {
	if t.class == nil {
		return "<nil>." + t.name
	}

	return t.class.name + "." + t.name
}

// Mapping maps targets to the aspect advising them.
type Mapping map[Target]Aspect

// Lookup returns the aspect registered for target, or Identity if there is none.
func (m Mapping) Lookup(target Target) Aspect {
	if a, ok := m[target]; ok && a != nil {
		return a
	}

	return Identity
}

// clone copies the mapping and freezes every *Advice in it.
func (m Mapping) clone() Mapping {
	clone := make(Mapping, len(m))
	for target, a := range m {
		if advice, ok := a.(*Advice); ok {
			if advice == nil {
				continue
			}
			a = advice.Freeze()
		}
		clone[target] = a
	}

	return clone
}
