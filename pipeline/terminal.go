package pipeline

import (
	"context"

	"github.com/kbukum/iterkit/errors"
)

// Sentinels for matching terminal and guard failures with errors.Is.
var (
	ErrNotFound     = errors.ErrNotFound
	ErrExhausted    = errors.ErrExhausted
	ErrInvalidInput = errors.ErrInvalidInput
)

// Number is the set of types Range and Sum work with.
type Number interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uintptr |
		~float32 | ~float64
}

// FirstOrDefault returns the first value matching pred. A nil pred matches
// everything. Pulling stops at the match.
//
// When nothing matches, def decides the outcome: its value is returned, or
// its error if it fails. With a nil def the zero value is returned with a
// nil error.
func FirstOrDefault[T any](ctx context.Context, p *Pipeline[T], pred func(T) bool, def func() (T, error)) (T, error) {
	var (
		hit   T
		found bool
	)
	err := consume(ctx, p, func(v T) (bool, error) {
		if pred == nil || pred(v) {
			hit, found = v, true
		}
		return !found, nil
	})
	return pick(hit, found, err, def)
}

// First is FirstOrDefault with a default that fails with ErrNotFound.
func First[T any](ctx context.Context, p *Pipeline[T], pred func(T) bool) (T, error) {
	return FirstOrDefault(ctx, p, pred, notFound[T]("first"))
}

// LastOrDefault drains p and returns the last value matching pred.
// Defaults behave as in FirstOrDefault.
func LastOrDefault[T any](ctx context.Context, p *Pipeline[T], pred func(T) bool, def func() (T, error)) (T, error) {
	var (
		hit   T
		found bool
	)
	err := consume(ctx, p, func(v T) (bool, error) {
		if pred == nil || pred(v) {
			hit, found = v, true
		}
		return true, nil
	})
	return pick(hit, found, err, def)
}

// Last is LastOrDefault with a default that fails with ErrNotFound.
func Last[T any](ctx context.Context, p *Pipeline[T], pred func(T) bool) (T, error) {
	return LastOrDefault(ctx, p, pred, notFound[T]("last"))
}

// ToMap drains p into a map. A repeated key keeps the last value.
func ToMap[K comparable, V any](ctx context.Context, p *Pipeline[Entry[K, V]]) (map[K]V, error) {
	out := make(map[K]V)
	err := ForEach(ctx, p, func(_ context.Context, e Entry[K, V]) error {
		out[e.Key] = e.Value
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Reducer pairs a combining step with its initial accumulator so the same
// reduction can be reused across folds.
type Reducer[T, A any] struct {
	Step func(acc A, v T) A
	Init A
}

// Sum adds up selector(v) over all values.
func Sum[T any, N Number](selector func(T) N) Reducer[T, N] {
	return Reducer[T, N]{
		Step: func(acc N, v T) N { return acc + selector(v) },
	}
}

// Count counts values. It is Sum with a constant selector of 1.
func Count[T any]() Reducer[T, int] {
	return Sum(func(T) int { return 1 })
}

// Fold drains p through r and returns the final accumulator.
// An empty pipeline yields r.Init.
func Fold[T, A any](ctx context.Context, p *Pipeline[T], r Reducer[T, A]) (A, error) {
	acc := r.Init
	err := ForEach(ctx, p, func(_ context.Context, v T) error {
		acc = r.Step(acc, v)
		return nil
	})
	if err != nil {
		var zero A
		return zero, err
	}
	return acc, nil
}

// ReduceWith is the stage form of Fold: the resulting pipeline yields the
// final accumulator once.
func ReduceWith[T, A any](p *Pipeline[T], r Reducer[T, A]) *Pipeline[A] {
	return Reduce(p, r.Init, r.Step)
}

// pick resolves a search: a pull error wins, then a match, then def.
func pick[T any](hit T, found bool, err error, def func() (T, error)) (T, error) {
	var zero T
	switch {
	case err != nil:
		return zero, err
	case found:
		return hit, nil
	case def == nil:
		return zero, nil
	}
	return def()
}

func notFound[T any](op string) func() (T, error) {
	return func() (T, error) {
		var zero T
		return zero, errors.NotFound(op)
	}
}
