package pipeline

import (
	"context"

	"github.com/kbukum/iterkit/errors"
)

// Guarded wraps one iterator and records whether it is exhausted.
//
// The flag becomes true on the first exhausted pull and also on the first
// failed pull; the error itself is returned unchanged. Once exhausted, a
// guarded iterator built with Guard runs its guard action on every further
// pull instead of pulling upstream. One built with Track keeps delegating.
type Guarded[T any] struct {
	source    Iterator[T]
	action    func() error
	guarded   bool
	exhausted bool
	onExhaust func(err error)
}

// GuardOption configures a Guarded iterator.
type GuardOption func(*guardOptions)

type guardOptions struct {
	action    func() error
	onExhaust func(err error)
}

// WithGuardAction sets the function run on each pull after exhaustion.
// Its error is returned from that pull. An action returning nil reports a
// plain exhausted pull.
func WithGuardAction(fn func() error) GuardOption {
	return func(o *guardOptions) { o.action = fn }
}

// WithOnExhausted registers fn to run once when the flag flips. err is nil
// for a genuine exhausted pull and the pull error otherwise.
// Handlers from repeated options run in the order given.
func WithOnExhausted(fn func(err error)) GuardOption {
	return func(o *guardOptions) {
		prev := o.onExhaust
		if prev == nil {
			o.onExhaust = fn
			return
		}
		o.onExhaust = func(err error) {
			prev(err)
			fn(err)
		}
	}
}

// Guard wraps it so that pulling past exhaustion fails.
// The default guard action returns an error matching ErrExhausted.
func Guard[T any](it Iterator[T], opts ...GuardOption) *Guarded[T] {
	o := guardOptions{action: defaultGuardAction}
	for _, opt := range opts {
		opt(&o)
	}
	return &Guarded[T]{source: it, action: o.action, guarded: true, onExhaust: o.onExhaust}
}

// Track wraps it to expose the exhausted flag without changing behavior.
// A guard action passed in opts is ignored.
func Track[T any](it Iterator[T], opts ...GuardOption) *Guarded[T] {
	var o guardOptions
	for _, opt := range opts {
		opt(&o)
	}
	return &Guarded[T]{source: it, onExhaust: o.onExhaust}
}

// GuardPipeline creates a fresh iterator for p and guards it.
func GuardPipeline[T any](ctx context.Context, p *Pipeline[T], opts ...GuardOption) *Guarded[T] {
	return Guard(p.create(ctx), opts...)
}

// TrackPipeline creates a fresh iterator for p and tracks it.
func TrackPipeline[T any](ctx context.Context, p *Pipeline[T], opts ...GuardOption) *Guarded[T] {
	return Track(p.create(ctx), opts...)
}

func defaultGuardAction() error {
	return errors.Exhausted("guard")
}

// Exhausted reports whether the wrapped iterator has signaled exhaustion
// or failed.
func (g *Guarded[T]) Exhausted() bool { return g.exhausted }

// Next implements Iterator.
func (g *Guarded[T]) Next(ctx context.Context) (T, bool, error) {
	var zero T
	if g.exhausted && g.guarded {
		if g.action == nil {
			return zero, false, nil
		}
		if err := g.action(); err != nil {
			return zero, false, err
		}
		return zero, false, nil
	}
	val, ok, err := g.source.Next(ctx)
	if err != nil {
		g.markExhausted(err)
		return zero, false, err
	}
	if !ok {
		g.markExhausted(nil)
		return zero, false, nil
	}
	return val, true, nil
}

// Close closes the wrapped iterator.
func (g *Guarded[T]) Close() error { return g.source.Close() }

// Pipeline exposes the guarded iterator as a pipeline. Every consumption
// pulls from this same guarded instance.
func (g *Guarded[T]) Pipeline() *Pipeline[T] { return From[T](g) }

func (g *Guarded[T]) markExhausted(err error) {
	if g.exhausted {
		return
	}
	g.exhausted = true
	if g.onExhaust != nil {
		g.onExhaust(err)
	}
}
