package pipeline

import (
	"context"
)

// Map transforms each value using fn.
// An error from fn is returned from that pull unchanged.
func Map[I, O any](p *Pipeline[I], fn func(context.Context, I) (O, error)) *Pipeline[O] {
	return derive(p, func(src Iterator[I]) Iterator[O] {
		return mapping(src, fn)
	})
}

// Filter keeps only values that satisfy the predicate.
func Filter[T any](p *Pipeline[T], fn func(T) bool) *Pipeline[T] {
	return derive(p, func(src Iterator[T]) Iterator[T] {
		return filtering(src, fn)
	})
}

// TakeWhile yields values until the first one that fails the predicate.
// The failing value is dropped and upstream is not pulled again.
func TakeWhile[T any](p *Pipeline[T], fn func(T) bool) *Pipeline[T] {
	return derive(p, func(src Iterator[T]) Iterator[T] {
		return &stepIter[T, T]{source: src, step: func(_ context.Context, v T) (T, verdict, error) {
			if fn(v) {
				return v, emit, nil
			}
			return v, halt, nil
		}}
	})
}

// Tap calls fn for each value and passes the value through unchanged.
// An error from fn is returned from that pull instead of the value.
func Tap[T any](p *Pipeline[T], fn func(context.Context, T) error) *Pipeline[T] {
	return derive(p, func(src Iterator[T]) Iterator[T] {
		return &stepIter[T, T]{source: src, step: func(ctx context.Context, v T) (T, verdict, error) {
			return v, emit, fn(ctx, v)
		}}
	})
}

// TapEach is Tap for slice streams such as the output of Chunk: fns[i] is
// called with element i of each slice. Extra functions or extra elements
// are ignored. The first error ends that pull.
func TapEach[T any](p *Pipeline[[]T], fns ...func(context.Context, T) error) *Pipeline[[]T] {
	return Tap(p, func(ctx context.Context, vals []T) error {
		for i := range min(len(fns), len(vals)) {
			if err := fns[i](ctx, vals[i]); err != nil {
				return err
			}
		}
		return nil
	})
}

// Take yields at most n values. It never pulls upstream more than n times,
// so it bounds infinite sources. n <= 0 yields nothing.
func Take[T any](p *Pipeline[T], n int) *Pipeline[T] {
	return derive(p, func(src Iterator[T]) Iterator[T] {
		return &takeIter[T]{source: src, left: n}
	})
}

// FlatMap maps each value to an iterator and yields that iterator's values
// before pulling the next one. Inner iterators are closed once drained.
func FlatMap[I, O any](p *Pipeline[I], fn func(context.Context, I) (Iterator[O], error)) *Pipeline[O] {
	return derive(p, func(src Iterator[I]) Iterator[O] {
		return &flatMapIter[I, O]{source: src, fn: fn}
	})
}

// Reduce yields exactly one value: init folded with every upstream value.
// Upstream is consumed on the first pull.
func Reduce[T, R any](p *Pipeline[T], init R, fn func(R, T) R) *Pipeline[R] {
	return derive(p, func(src Iterator[T]) Iterator[R] {
		return &singleIter[R]{
			closer: src,
			compute: func(ctx context.Context) (R, error) {
				acc := init
				for {
					v, ok, err := src.Next(ctx)
					if err != nil {
						var zero R
						return zero, err
					}
					if !ok {
						return acc, nil
					}
					acc = fn(acc, v)
				}
			},
		}
	})
}

// Concat yields every value of each pipeline in turn. A pipeline's
// iterator is created only when the previous one is exhausted.
func Concat[T any](pipelines ...*Pipeline[T]) *Pipeline[T] {
	return &Pipeline[T]{
		create: func(context.Context) Iterator[T] {
			return &concatIter[T]{pending: pipelines}
		},
	}
}

// DefaultIfEmpty passes values through. If upstream turns out to be empty
// it yields the value returned by def instead; an error from def is
// returned from that pull.
func DefaultIfEmpty[T any](p *Pipeline[T], def func() (T, error)) *Pipeline[T] {
	return derive(p, func(src Iterator[T]) Iterator[T] {
		return &defaultIfEmptyIter[T]{source: src, def: def}
	})
}

// OnDone passes values through and calls fn the first time upstream
// reports exhaustion. Failed pulls do not trigger it.
func OnDone[T any](p *Pipeline[T], fn func()) *Pipeline[T] {
	return derive(p, func(src Iterator[T]) Iterator[T] {
		fired := false
		return &passIter[T]{source: src, after: func(_ T, ok bool, err error) {
			if err == nil && !ok && !fired {
				fired = true
				fn()
			}
		}}
	})
}

type verdict uint8

const (
	emit verdict = iota
	skip
	halt
)

// stepIter runs step on each upstream value. After halt or upstream
// exhaustion it reports exhausted without pulling again.
type stepIter[I, O any] struct {
	source Iterator[I]
	step   func(context.Context, I) (O, verdict, error)
	done   bool
}

func mapping[I, O any](src Iterator[I], fn func(context.Context, I) (O, error)) Iterator[O] {
	return &stepIter[I, O]{source: src, step: func(ctx context.Context, v I) (O, verdict, error) {
		out, err := fn(ctx, v)
		return out, emit, err
	}}
}

func filtering[T any](src Iterator[T], keep func(T) bool) Iterator[T] {
	return &stepIter[T, T]{source: src, step: func(_ context.Context, v T) (T, verdict, error) {
		if keep(v) {
			return v, emit, nil
		}
		return v, skip, nil
	}}
}

func (it *stepIter[I, O]) Next(ctx context.Context) (O, bool, error) {
	var zero O
	for !it.done {
		in, ok, err := it.source.Next(ctx)
		if err != nil {
			return zero, false, err
		}
		if !ok {
			it.done = true
			break
		}
		out, v, err := it.step(ctx, in)
		if err != nil {
			return zero, false, err
		}
		switch v {
		case emit:
			return out, true, nil
		case halt:
			it.done = true
		}
	}
	return zero, false, nil
}

func (it *stepIter[I, O]) Close() error { return it.source.Close() }

// passIter forwards every pull and reports its result to after.
type passIter[T any] struct {
	source Iterator[T]
	after  func(v T, ok bool, err error)
}

func (it *passIter[T]) Next(ctx context.Context) (T, bool, error) {
	v, ok, err := it.source.Next(ctx)
	it.after(v, ok, err)
	return v, ok, err
}

func (it *passIter[T]) Close() error { return it.source.Close() }

type takeIter[T any] struct {
	source Iterator[T]
	left   int
}

func (it *takeIter[T]) Next(ctx context.Context) (T, bool, error) {
	var zero T
	if it.left <= 0 {
		return zero, false, nil
	}
	v, ok, err := it.source.Next(ctx)
	switch {
	case err != nil:
		return zero, false, err
	case !ok:
		it.left = 0
		return zero, false, nil
	}
	it.left--
	return v, true, nil
}

func (it *takeIter[T]) Close() error { return it.source.Close() }

type flatMapIter[I, O any] struct {
	source Iterator[I]
	fn     func(context.Context, I) (Iterator[O], error)
	inner  Iterator[O]
}

func (it *flatMapIter[I, O]) Next(ctx context.Context) (O, bool, error) {
	var zero O
	for {
		if it.inner == nil {
			v, ok, err := it.source.Next(ctx)
			if err != nil || !ok {
				return zero, false, err
			}
			if it.inner, err = it.fn(ctx, v); err != nil {
				return zero, false, err
			}
			continue
		}
		out, ok, err := it.inner.Next(ctx)
		if err != nil {
			return zero, false, err
		}
		if ok {
			return out, true, nil
		}
		_ = it.inner.Close()
		it.inner = nil
	}
}

func (it *flatMapIter[I, O]) Close() error {
	if it.inner != nil {
		_ = it.inner.Close()
	}
	return it.source.Close()
}

// singleIter yields the result of compute once, then reports exhausted.
type singleIter[T any] struct {
	closer  interface{ Close() error }
	compute func(context.Context) (T, error)
	done    bool
}

func (it *singleIter[T]) Next(ctx context.Context) (T, bool, error) {
	var zero T
	if it.done {
		return zero, false, nil
	}
	v, err := it.compute(ctx)
	if err != nil {
		return zero, false, err
	}
	it.done = true
	return v, true, nil
}

func (it *singleIter[T]) Close() error { return it.closer.Close() }

type concatIter[T any] struct {
	pending []*Pipeline[T]
	current Iterator[T]
}

func (it *concatIter[T]) Next(ctx context.Context) (T, bool, error) {
	for {
		if it.current == nil {
			if len(it.pending) == 0 {
				var zero T
				return zero, false, nil
			}
			it.current = it.pending[0].create(ctx)
			it.pending = it.pending[1:]
		}
		v, ok, err := it.current.Next(ctx)
		if err != nil || ok {
			return v, ok, err
		}
		if err := it.current.Close(); err != nil {
			var zero T
			it.current = nil
			return zero, false, err
		}
		it.current = nil
	}
}

func (it *concatIter[T]) Close() error {
	if it.current == nil {
		return nil
	}
	err := it.current.Close()
	it.current = nil
	return err
}

type defaultIfEmptyIter[T any] struct {
	source Iterator[T]
	def    func() (T, error)
	seen   bool
	done   bool
}

func (it *defaultIfEmptyIter[T]) Next(ctx context.Context) (T, bool, error) {
	var zero T
	if it.done {
		return zero, false, nil
	}
	v, ok, err := it.source.Next(ctx)
	switch {
	case err != nil:
		return zero, false, err
	case ok:
		it.seen = true
		return v, true, nil
	}
	it.done = true
	if it.seen || it.def == nil {
		return zero, false, nil
	}
	if v, err = it.def(); err != nil {
		return zero, false, err
	}
	return v, true, nil
}

func (it *defaultIfEmptyIter[T]) Close() error { return it.source.Close() }
