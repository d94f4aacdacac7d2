package pipeline

import (
	"context"
	"time"

	"github.com/kbukum/iterkit/validation"
)

// Pair holds two consecutive values of a stream.
type Pair[T any] struct {
	Prev T
	Curr T
}

// Pairwise yields (previous, current) for each value after the first.
// A stream with fewer than two values yields nothing.
func Pairwise[T any](p *Pipeline[T]) *Pipeline[Pair[T]] {
	return derive(p, func(src Iterator[T]) Iterator[Pair[T]] {
		return &pairwiseIter[T]{source: src}
	})
}

// Chunk groups values into slices of exactly size elements. The final
// chunk holds the remainder and may be shorter; it is never empty.
// A chunk is emitted as soon as it fills, so Chunk works on unbounded
// sources. size must be at least 1.
func Chunk[T any](p *Pipeline[T], size int) (*Pipeline[[]T], error) {
	if err := validation.New().Positive("chunk size", size).Err(); err != nil {
		return nil, err
	}
	return derive(p, func(src Iterator[T]) Iterator[[]T] {
		return &chunkIter[T]{source: src, size: size}
	}), nil
}

// MustChunk is like Chunk but panics on an invalid size.
func MustChunk[T any](p *Pipeline[T], size int) *Pipeline[[]T] {
	c, err := Chunk(p, size)
	if err != nil {
		panic(err)
	}
	return c
}

// SlidingWindow groups values by event time. Windows are size long and
// start slide apart, the first one at the time of the first value. Each
// non-empty window [start, start+size) is emitted once; with slide < size
// a value can appear in several windows. Values must arrive in time
// order. Windows are closed by the first value at or past their end, or
// by upstream exhaustion; no clock or timer is involved.
func SlidingWindow[T any](p *Pipeline[T], timeFn func(T) time.Time, size, slide time.Duration) (*Pipeline[[]T], error) {
	err := validation.New().
		Custom(size > 0, "window size", "must be positive, got "+size.String()).
		Custom(slide > 0, "window slide", "must be positive, got "+slide.String()).
		Err()
	if err != nil {
		return nil, err
	}
	return derive(p, func(src Iterator[T]) Iterator[[]T] {
		return &slidingWindowIter[T]{source: src, timeFn: timeFn, size: size, slide: slide}
	}), nil
}

type pairwiseIter[T any] struct {
	source Iterator[T]
	prev   T
	primed bool
}

func (it *pairwiseIter[T]) Next(ctx context.Context) (Pair[T], bool, error) {
	for {
		val, ok, err := it.source.Next(ctx)
		if err != nil || !ok {
			return Pair[T]{}, false, err
		}
		if !it.primed {
			it.prev = val
			it.primed = true
			continue
		}
		out := Pair[T]{Prev: it.prev, Curr: val}
		it.prev = val
		return out, true, nil
	}
}

func (it *pairwiseIter[T]) Close() error { return it.source.Close() }

// maxChunkPrealloc caps the initial buffer so a large size grows on demand.
const maxChunkPrealloc = 64

type chunkIter[T any] struct {
	source Iterator[T]
	size   int
	buf    []T
	done   bool
}

func (it *chunkIter[T]) Next(ctx context.Context) ([]T, bool, error) {
	if it.done {
		return nil, false, nil
	}
	for {
		val, ok, err := it.source.Next(ctx)
		if err != nil {
			// Buffered values stay for the next pull.
			return nil, false, err
		}
		if !ok {
			it.done = true
			if len(it.buf) == 0 {
				return nil, false, nil
			}
			out := it.buf
			it.buf = nil
			return out, true, nil
		}
		if it.buf == nil {
			it.buf = make([]T, 0, min(it.size, maxChunkPrealloc))
		}
		it.buf = append(it.buf, val)
		if len(it.buf) == it.size {
			out := it.buf
			it.buf = nil
			return out, true, nil
		}
	}
}

func (it *chunkIter[T]) Close() error { return it.source.Close() }

type slidingWindowIter[T any] struct {
	source  Iterator[T]
	timeFn  func(T) time.Time
	size    time.Duration
	slide   time.Duration
	buf     []T
	start   time.Time
	started bool
	drained bool
}

func (it *slidingWindowIter[T]) Next(ctx context.Context) ([]T, bool, error) {
	for {
		if err := it.fill(ctx); err != nil {
			return nil, false, err
		}
		if len(it.buf) == 0 {
			return nil, false, nil
		}
		end := it.start.Add(it.size)
		var window []T
		for _, v := range it.buf {
			if ts := it.timeFn(v); !ts.Before(it.start) && ts.Before(end) {
				window = append(window, v)
			}
		}
		it.advance()
		if len(window) > 0 {
			return window, true, nil
		}
	}
}

func (it *slidingWindowIter[T]) Close() error { return it.source.Close() }

// fill pulls until the buffer holds a value at or past the current
// window's end, or upstream is exhausted.
func (it *slidingWindowIter[T]) fill(ctx context.Context) error {
	for !it.drained {
		if it.started && len(it.buf) > 0 && !it.timeFn(it.buf[len(it.buf)-1]).Before(it.start.Add(it.size)) {
			return nil
		}
		val, ok, err := it.source.Next(ctx)
		if err != nil {
			return err
		}
		if !ok {
			it.drained = true
			return nil
		}
		if !it.started {
			it.start = it.timeFn(val)
			it.started = true
		}
		it.buf = append(it.buf, val)
	}
	return nil
}

// advance moves to the next window, skipping over empty ones, and drops
// values that can no longer appear in any window.
func (it *slidingWindowIter[T]) advance() {
	it.start = it.start.Add(it.slide)
	kept := it.buf[:0]
	for _, v := range it.buf {
		if !it.timeFn(v).Before(it.start) {
			kept = append(kept, v)
		}
	}
	clear(it.buf[len(kept):])
	it.buf = kept
	if len(it.buf) == 0 {
		return
	}
	// Jump to the first window that contains the oldest buffered value.
	if gap := it.timeFn(it.buf[0]).Sub(it.start.Add(it.size)); gap >= 0 {
		it.start = it.start.Add((gap/it.slide + 1) * it.slide)
	}
}
