// Package pipeline provides composable, pull-based sequence operators.
//
// Pipelines are lazy: no work happens until values are pulled via Collect,
// Drain, ForEach, All or a terminal such as First or Fold. Each stage pulls
// from the previous stage on demand, one value per pull, on the caller's
// goroutine. Each consumption of a *Pipeline builds a fresh iterator chain.
//
// An Iterator reports exhaustion with (zero, false, nil) and keeps doing so
// on every later pull. A failed pull returns the error unchanged; the
// library never retries, wraps or logs user errors.
//
// # Operators
//
// Stateless:
//
//   - Map, FlatMap, Filter, Tap: transform, expand, keep, observe
//   - TakeWhile, Take: stop at the first failing value or after n values
//   - Concat, DefaultIfEmpty, OnDone: sequencing helpers
//
// Stateful (a fresh handle per consumption):
//
//   - DropWhile, DistinctUntilChanged, Enumerate, Scan, ScanSeed
//
// The handles behind them (DropWhileFilter, DistinctFilter, Enumerator,
// Scanner) can also be created directly and plugged into Filter or Map.
// A handle keeps its state for its whole lifetime, so sharing one across
// pipelines, or consuming the same pipeline twice, continues counting or
// accumulating where the previous traversal left off.
//
// Windowing and structure:
//
//   - Pairwise: (previous, current) pairs
//   - Chunk: fixed-size slices with a shorter trailing chunk
//   - FlattenDeep: depth-first leaves of a Node tree
//
// Terminals:
//
//   - First, FirstOrDefault, Last, LastOrDefault
//   - ToMap, Fold with Reducer values such as Sum and Count
//
// Guard and Track wrap an iterator and expose whether it is exhausted.
//
// # Usage
//
//	src := pipeline.Range(1, 100, 1)
//	chunk, err := pipeline.PipifyE(pipeline.Chunk[int])(10)
//	if err != nil {
//	    return err
//	}
//	out := pipeline.Pipe2(src,
//	    pipeline.Pipify(pipeline.Filter[int])(func(n int) bool { return n%3 == 0 }),
//	    chunk,
//	)
//	chunks, err := pipeline.Collect(ctx, out)
package pipeline
