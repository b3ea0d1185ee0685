package aspect

import (
	"slices"
	"sync"
)

// WeavingState records, per woven class, the resolver the class had before it was first woven.
//
// The owner creates one WeavingState at setup (usually one per process, one per test in tests)
// and hands it to every Weaver that may touch the same classes. The first weave of a class wins:
// later weaves never overwrite the recorded original, so unweaving always restores the
// pre-weave behaviour. Entries are never removed.
type WeavingState struct {
	mu        sync.Mutex
	originals map[*Class]Resolver
	order     []*Class
	woven     map[*Class]struct{}
}

// NewWeavingState creates an empty WeavingState.
func NewWeavingState() *WeavingState {
	return &WeavingState{
		originals: make(map[*Class]Resolver),
		woven:     make(map[*Class]struct{}),
	}
}

// recordOriginal stores the current resolver of class unless one is already recorded.
// It returns the recorded original and whether this call recorded it.
func (s *WeavingState) recordOriginal(class *Class) (Resolver, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if original, ok := s.originals[class]; ok {
		return original, false
	}

	original := class.Resolver()
	s.originals[class] = original
	s.order = append(s.order, class)

	return original, true
}

// Original returns the pre-weave resolver of class. A nil Resolver with ok == true means the default resolution.
func (s *WeavingState) Original(class *Class) (Resolver, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	original, ok := s.originals[class]
	return original, ok
}

// IsRecorded reports whether class has ever been woven.
func (s *WeavingState) IsRecorded(class *Class) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.originals[class]
	return ok
}

// Classes returns every class ever recorded, in first-weave order.
func (s *WeavingState) Classes() []*Class {
	s.mu.Lock()
	defer s.mu.Unlock()

	return slices.Clone(s.order)
}

// WovenCount returns the number of classes that are currently woven.
func (s *WeavingState) WovenCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.woven)
}

func (s *WeavingState) isWoven(class *Class) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.woven[class]
	return ok
}

func (s *WeavingState) markWoven(class *Class) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.woven[class] = struct{}{}
}

func (s *WeavingState) markUnwoven(class *Class) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.woven, class)
}
