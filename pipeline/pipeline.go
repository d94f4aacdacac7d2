package pipeline

import (
	"context"
	"iter"
)

// Iterator provides pull-based sequential access to a stream of values.
//
// Next returns (value, true, nil) for each element, (zero, false, nil) once
// the stream is exhausted and (zero, false, err) when producing the element
// failed. After the first exhausted result every later call must report
// exhausted again; all iterators in this package honor that.
type Iterator[T any] interface {
	// Next returns the next value. Returns (zero, false, nil) when exhausted.
	Next(ctx context.Context) (T, bool, error)
	// Close releases any resources held by the iterator.
	Close() error
}

// IteratorFunc adapts a pull function to an Iterator whose Close is a no-op.
// The function itself is responsible for idempotent exhaustion.
type IteratorFunc[T any] func(ctx context.Context) (T, bool, error)

// Next calls f.
func (f IteratorFunc[T]) Next(ctx context.Context) (T, bool, error) { return f(ctx) }

// Close does nothing.
func (f IteratorFunc[T]) Close() error { return nil }

// Pipeline represents a lazy, pull-based data pipeline.
// No work happens until values are pulled via Collect, Drain, ForEach, All
// or a terminal operator. Each consumption builds a fresh iterator chain.
type Pipeline[T any] struct {
	create func(ctx context.Context) Iterator[T]
}

// Runnable is a fully-configured pipeline ready to execute.
type Runnable struct {
	run func(ctx context.Context) error
}

// Run executes the pipeline until the source is exhausted or a stage fails.
func (r *Runnable) Run(ctx context.Context) error {
	return r.run(ctx)
}

// --- Constructors ---

// From creates a pipeline from an existing Iterator.
// Every consumption pulls from the same iterator, so a second Collect on a
// pipeline built with From sees whatever the first one left behind.
func From[T any](iter Iterator[T]) *Pipeline[T] {
	return &Pipeline[T]{
		create: func(_ context.Context) Iterator[T] {
			return iter
		},
	}
}

// FromFunc creates a pipeline from a factory that produces an Iterator.
func FromFunc[T any](fn func(ctx context.Context) Iterator[T]) *Pipeline[T] {
	return &Pipeline[T]{create: fn}
}

// derive builds a pipeline whose iterators wrap a fresh upstream iterator.
// wrap runs once per consumption, so state it allocates is never shared.
func derive[I, O any](p *Pipeline[I], wrap func(Iterator[I]) Iterator[O]) *Pipeline[O] {
	return &Pipeline[O]{
		create: func(ctx context.Context) Iterator[O] {
			return wrap(p.create(ctx))
		},
	}
}

// --- Terminals ---

// consume creates a fresh iterator for p and hands each value to visit
// until the stream is exhausted, a pull fails, or visit returns false.
// The iterator is closed before consume returns.
func consume[T any](ctx context.Context, p *Pipeline[T], visit func(T) (bool, error)) error {
	it := p.create(ctx)
	defer it.Close()
	for {
		v, ok, err := it.Next(ctx)
		if err != nil || !ok {
			return err
		}
		more, err := visit(v)
		if err != nil || !more {
			return err
		}
	}
}

// Drain creates a Runnable that pulls all values and sends each to sink.
func Drain[T any](p *Pipeline[T], sink func(context.Context, T) error) *Runnable {
	return &Runnable{
		run: func(ctx context.Context) error {
			return consume(ctx, p, func(v T) (bool, error) {
				return true, sink(ctx, v)
			})
		},
	}
}

// Collect runs the pipeline and returns all values as a slice.
// On failure it returns the values collected so far together with the error.
func Collect[T any](ctx context.Context, p *Pipeline[T]) ([]T, error) {
	var out []T
	err := consume(ctx, p, func(v T) (bool, error) {
		out = append(out, v)
		return true, nil
	})
	return out, err
}

// ForEach pulls all values and calls fn for each. Convenience wrapper around Drain.
func ForEach[T any](ctx context.Context, p *Pipeline[T], fn func(context.Context, T) error) error {
	return Drain(p, fn).Run(ctx)
}

// Iter returns the raw Iterator for this pipeline. The caller must Close() it.
func (p *Pipeline[T]) Iter(ctx context.Context) Iterator[T] {
	return p.create(ctx)
}

// All returns the pipeline as a range-over-func sequence of value-error pairs.
// A failure is yielded once with the zero value and ends the sequence.
// Breaking out of the loop stops pulling and closes the iterator.
//
//	for v, err := range p.All(ctx) {
//	    if err != nil {
//	        return err
//	    }
//	    ...
//	}
func (p *Pipeline[T]) All(ctx context.Context) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		if err := consume(ctx, p, func(v T) (bool, error) {
			return yield(v, nil), nil
		}); err != nil {
			var zero T
			yield(zero, err)
		}
	}
}
