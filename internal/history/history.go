// Package history keeps one present value plus linear undo/redo stacks of
// full snapshots.
package history

// Store is not safe for concurrent use; callers serialise access.
type Store[T any] struct {
	present T
	past    []T // oldest -> newest
	future  []T // nearest -> farthest
	equal   func(a, b T) bool
	clone   func(T) T
	limit   int
}

// Option configures a Store.
type Option[T any] func(*Store[T])

// WithClone makes the store copy values on the way in and on the way out, so
// snapshots never alias data owned by callers.
func WithClone[T any](clone func(T) T) Option[T] {
	return func(s *Store[T]) { s.clone = clone }
}

// WithLimit caps the number of past snapshots; the oldest is discarded when
// the cap is exceeded. Zero or negative means unbounded.
func WithLimit[T any](n int) Option[T] {
	return func(s *Store[T]) { s.limit = n }
}

func New[T any](initial T, equal func(a, b T) bool, opts ...Option[T]) *Store[T] {
	s := &Store[T]{equal: equal}
	for _, o := range opts {
		o(s)
	}
	s.present = s.copy(initial)
	return s
}

func (s *Store[T]) copy(v T) T {
	if s.clone == nil {
		return v
	}
	return s.clone(v)
}

// Present returns the current value.
func (s *Store[T]) Present() T { return s.copy(s.present) }

// Set adopts v as the present value. It is a no-op, returning false, when v
// equals the present; otherwise the present moves onto the past stack and the
// future stack is discarded.
func (s *Store[T]) Set(v T) bool {
	if s.equal(s.present, v) {
		return false
	}
	s.past = append(s.past, s.present)
	if s.limit > 0 && len(s.past) > s.limit {
		drop := len(s.past) - s.limit
		clear(s.past[:drop])
		s.past = s.past[drop:]
	}
	s.present = s.copy(v)
	clear(s.future)
	s.future = s.future[:0]
	return true
}

// Undo restores the most recent past value. It returns false when there is
// nothing to undo.
func (s *Store[T]) Undo() bool {
	n := len(s.past)
	if n == 0 {
		return false
	}
	prev := s.past[n-1]
	var zero T
	s.past[n-1] = zero
	s.past = s.past[:n-1]
	s.future = append([]T{s.present}, s.future...)
	s.present = prev
	return true
}

// Redo restores the nearest future value. It returns false when there is
// nothing to redo.
func (s *Store[T]) Redo() bool {
	if len(s.future) == 0 {
		return false
	}
	next := s.future[0]
	var zero T
	s.future[0] = zero
	s.future = s.future[1:]
	s.past = append(s.past, s.present)
	s.present = next
	return true
}

func (s *Store[T]) CanUndo() bool { return len(s.past) > 0 }
func (s *Store[T]) CanRedo() bool { return len(s.future) > 0 }

// Depth returns the sizes of the past and future stacks.
func (s *Store[T]) Depth() (past, future int) { return len(s.past), len(s.future) }

// Reset replaces the present and forgets all history.
func (s *Store[T]) Reset(v T) {
	s.present = s.copy(v)
	s.past = nil
	s.future = nil
}
