package pipeline

import "context"

// Stateful operators come in two forms.
//
// A handle (DropWhileFilter, DistinctFilter, Enumerator, Scanner) owns
// mutable state and exposes a per-element method that plugs into Filter or
// Map. The handle's state lives as long as the handle: passing the same
// handle to two pipelines, or consuming one pipeline twice, continues from
// where the previous traversal stopped.
//
// The stage functions (DropWhile, DistinctUntilChanged, Enumerate, Scan,
// ScanSeed) build a fresh handle for every consumption instead.

// DropWhileFilter drops values while its predicate holds. Once the predicate
// fails for the first time every later value is kept, even values the
// predicate would accept again.
type DropWhileFilter[T any] struct {
	pred     func(T) bool
	dropping bool
}

// NewDropWhileFilter creates a handle that starts in the dropping state.
func NewDropWhileFilter[T any](pred func(T) bool) *DropWhileFilter[T] {
	return &DropWhileFilter[T]{pred: pred, dropping: true}
}

// Keep reports whether v passes. Use it as a Filter predicate.
func (f *DropWhileFilter[T]) Keep(v T) bool {
	if !f.dropping {
		return true
	}
	if f.pred(v) {
		return false
	}
	f.dropping = false
	return true
}

// Dropping reports whether the handle is still dropping values.
func (f *DropWhileFilter[T]) Dropping() bool { return f.dropping }

// DistinctFilter removes consecutive duplicates. It keeps the first value
// and then every value that differs from the previously kept one.
// Values that reappear later are kept again; this is not global dedup.
type DistinctFilter[T any] struct {
	equal       func(prev, cur T) bool
	prev        T
	initialized bool
}

// NewDistinctFilter compares values with ==.
func NewDistinctFilter[T comparable]() *DistinctFilter[T] {
	return &DistinctFilter[T]{equal: func(a, b T) bool { return a == b }}
}

// NewDistinctFilterFunc compares values with equal(previousKept, current).
func NewDistinctFilterFunc[T any](equal func(prev, cur T) bool) *DistinctFilter[T] {
	return &DistinctFilter[T]{equal: equal}
}

// Keep reports whether v passes. Use it as a Filter predicate.
func (f *DistinctFilter[T]) Keep(v T) bool {
	if !f.initialized {
		f.prev = v
		f.initialized = true
		return true
	}
	if f.equal(f.prev, v) {
		return false
	}
	f.prev = v
	return true
}

// Indexed pairs a value with its position in the enumerated stream.
type Indexed[T any] struct {
	Index int
	Value T
}

// Enumerator numbers values from 0.
type Enumerator[T any] struct {
	next int
}

// NewEnumerator creates an enumerator starting at 0.
func NewEnumerator[T any]() *Enumerator[T] {
	return &Enumerator[T]{}
}

// Index returns v with the current index and advances the counter.
// Its signature matches Map's mapper.
func (e *Enumerator[T]) Index(_ context.Context, v T) (Indexed[T], error) {
	out := Indexed[T]{Index: e.next, Value: v}
	e.next++
	return out, nil
}

// Count returns how many values the enumerator has numbered.
func (e *Enumerator[T]) Count() int { return e.next }

// Scanner emits the running accumulation of the values it sees.
type Scanner[T, A any] struct {
	acc    func(A, T) A
	seed   func(T) A
	state  A
	primed bool
}

// NewScanner creates an unseeded scanner: the first value becomes the
// accumulator unchanged and accumulation starts with the second.
func NewScanner[T any](acc func(T, T) T) *Scanner[T, T] {
	return &Scanner[T, T]{acc: acc, seed: func(v T) T { return v }}
}

// NewSeededScanner creates a scanner whose accumulator starts at seed.
func NewSeededScanner[T, A any](acc func(A, T) A, seed A) *Scanner[T, A] {
	return &Scanner[T, A]{acc: acc, state: seed, primed: true}
}

// Step folds v into the accumulator and returns it.
// Its signature matches Map's mapper.
func (s *Scanner[T, A]) Step(_ context.Context, v T) (A, error) {
	if !s.primed {
		s.state = s.seed(v)
		s.primed = true
		return s.state, nil
	}
	s.state = s.acc(s.state, v)
	return s.state, nil
}

// Value returns the current accumulator.
func (s *Scanner[T, A]) Value() A { return s.state }

// --- Stages with a fresh handle per consumption ---

// DropWhile drops values until pred first returns false, then keeps the rest.
func DropWhile[T any](p *Pipeline[T], pred func(T) bool) *Pipeline[T] {
	return derive(p, func(src Iterator[T]) Iterator[T] {
		return filtering(src, NewDropWhileFilter(pred).Keep)
	})
}

// DistinctUntilChanged removes consecutive duplicates compared with ==.
func DistinctUntilChanged[T comparable](p *Pipeline[T]) *Pipeline[T] {
	return derive(p, func(src Iterator[T]) Iterator[T] {
		return filtering(src, NewDistinctFilter[T]().Keep)
	})
}

// DistinctUntilChangedFunc removes consecutive values for which
// equal(previousKept, current) holds.
func DistinctUntilChangedFunc[T any](p *Pipeline[T], equal func(prev, cur T) bool) *Pipeline[T] {
	return derive(p, func(src Iterator[T]) Iterator[T] {
		return filtering(src, NewDistinctFilterFunc(equal).Keep)
	})
}

// Enumerate pairs each value with its index, starting at 0 on every consumption.
func Enumerate[T any](p *Pipeline[T]) *Pipeline[Indexed[T]] {
	return derive(p, func(src Iterator[T]) Iterator[Indexed[T]] {
		return mapping(src, NewEnumerator[T]().Index)
	})
}

// Scan emits the running accumulation, seeded by the first value.
func Scan[T any](p *Pipeline[T], acc func(T, T) T) *Pipeline[T] {
	return derive(p, func(src Iterator[T]) Iterator[T] {
		return mapping(src, NewScanner(acc).Step)
	})
}

// ScanSeed emits the running accumulation starting from seed.
func ScanSeed[T, A any](p *Pipeline[T], acc func(A, T) A, seed A) *Pipeline[A] {
	return derive(p, func(src Iterator[T]) Iterator[A] {
		return mapping(src, NewSeededScanner(acc, seed).Step)
	})
}
