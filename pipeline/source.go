package pipeline

import (
	"cmp"
	"context"
	"iter"
	"maps"
	"slices"
)

// Entry is a key-value pair, the element type of FromMap and ToMap.
type Entry[K comparable, V any] struct {
	Key   K
	Value V
}

// FromSlice creates a pipeline from a slice of values.
func FromSlice[T any](items []T) *Pipeline[T] {
	return &Pipeline[T]{
		create: func(_ context.Context) Iterator[T] {
			return &sliceIter[T]{items: items}
		},
	}
}

// Of creates a pipeline from its arguments.
func Of[T any](items ...T) *Pipeline[T] {
	return FromSlice(items)
}

// Fail creates a pipeline whose every pull fails with err.
func Fail[T any](err error) *Pipeline[T] {
	return &Pipeline[T]{
		create: func(_ context.Context) Iterator[T] {
			return IteratorFunc[T](func(context.Context) (T, bool, error) {
				var zero T
				return zero, false, err
			})
		},
	}
}

// Range yields start, start+step, ... while the value is before end.
// A negative step counts down towards end. A zero step repeats start
// forever when start is before end; bound it with Take or TakeWhile.
// A step that would overflow N ends the range.
func Range[N Number](start, end, step N) *Pipeline[N] {
	return &Pipeline[N]{
		create: func(_ context.Context) Iterator[N] {
			return &rangeIter[N]{next: start, end: end, step: step, bounded: true}
		},
	}
}

// RangeFrom yields start, start+step, ... without end. An integer range
// stops after the last value N can hold instead of wrapping.
func RangeFrom[N Number](start, step N) *Pipeline[N] {
	return &Pipeline[N]{
		create: func(_ context.Context) Iterator[N] {
			return &rangeIter[N]{next: start, step: step}
		},
	}
}

// FromMap yields the entries of m in ascending key order.
// The keys are snapshotted when the pipeline is consumed.
func FromMap[K cmp.Ordered, V any](m map[K]V) *Pipeline[Entry[K, V]] {
	return &Pipeline[Entry[K, V]]{
		create: func(_ context.Context) Iterator[Entry[K, V]] {
			keys := slices.Sorted(maps.Keys(m))
			entries := make([]Entry[K, V], len(keys))
			for i, k := range keys {
				entries[i] = Entry[K, V]{Key: k, Value: m[k]}
			}
			return &sliceIter[Entry[K, V]]{items: entries}
		},
	}
}

// FromSeq creates a pipeline from a Go sequence.
// The sequence is driven with iter.Pull, one element per Next.
func FromSeq[T any](seq iter.Seq[T]) *Pipeline[T] {
	return &Pipeline[T]{
		create: func(_ context.Context) Iterator[T] {
			next, stop := iter.Pull(seq)
			return &seqIter[T]{next: next, stop: stop}
		},
	}
}

// FromSeq2 creates a pipeline from a sequence of value-error pairs.
// A pair with a non-nil error is reported as a failed pull; pulling again
// continues with the next pair.
func FromSeq2[T any](seq iter.Seq2[T, error]) *Pipeline[T] {
	return &Pipeline[T]{
		create: func(_ context.Context) Iterator[T] {
			next, stop := iter.Pull2(seq)
			return &seq2Iter[T]{next: next, stop: stop}
		},
	}
}

// --- Internal iterators ---

type sliceIter[T any] struct {
	items []T
	index int
}

func (it *sliceIter[T]) Next(_ context.Context) (T, bool, error) {
	if it.index >= len(it.items) {
		var zero T
		return zero, false, nil
	}
	val := it.items[it.index]
	it.index++
	return val, true, nil
}

func (it *sliceIter[T]) Close() error { return nil }

type rangeIter[N Number] struct {
	next    N
	end     N
	step    N
	bounded bool
	done    bool
}

func (it *rangeIter[N]) Next(_ context.Context) (N, bool, error) {
	if it.done {
		return 0, false, nil
	}
	if it.bounded {
		if it.step >= 0 && it.next >= it.end {
			return 0, false, nil
		}
		if it.step < 0 && it.next <= it.end {
			return 0, false, nil
		}
	}
	val := it.next
	it.next += it.step
	// An integer step past the limit of N wraps around.
	if (it.step > 0 && it.next < val) || (it.step < 0 && it.next > val) {
		it.done = true
	}
	return val, true, nil
}

func (it *rangeIter[N]) Close() error { return nil }

type seqIter[T any] struct {
	next func() (T, bool)
	stop func()
	done bool
}

func (it *seqIter[T]) Next(_ context.Context) (T, bool, error) {
	if it.done {
		var zero T
		return zero, false, nil
	}
	val, ok := it.next()
	if !ok {
		it.done = true
		it.stop()
		return val, false, nil
	}
	return val, true, nil
}

func (it *seqIter[T]) Close() error {
	it.stop()
	return nil
}

type seq2Iter[T any] struct {
	next func() (T, error, bool)
	stop func()
	done bool
}

func (it *seq2Iter[T]) Next(_ context.Context) (T, bool, error) {
	var zero T
	if it.done {
		return zero, false, nil
	}
	val, err, ok := it.next()
	if !ok {
		it.done = true
		it.stop()
		return zero, false, nil
	}
	if err != nil {
		return zero, false, err
	}
	return val, true, nil
}

func (it *seq2Iter[T]) Close() error {
	it.stop()
	return nil
}
