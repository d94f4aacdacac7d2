package pipeline

// Stage transforms one pipeline into another. Stages only wire; building a
// stage chain never pulls a value.
type Stage[I, O any] func(*Pipeline[I]) *Pipeline[O]

// Pipe threads p through stages that keep the element type.
func Pipe[T any](p *Pipeline[T], stages ...Stage[T, T]) *Pipeline[T] {
	for _, s := range stages {
		p = s(p)
	}
	return p
}

// Pipe1 applies a single stage. It exists so Pipe1..Pipe6 read uniformly.
func Pipe1[A, B any](p *Pipeline[A], s1 Stage[A, B]) *Pipeline[B] {
	return s1(p)
}

// Pipe2 threads p through two stages that may change the element type.
func Pipe2[A, B, C any](p *Pipeline[A], s1 Stage[A, B], s2 Stage[B, C]) *Pipeline[C] {
	return s2(s1(p))
}

// Pipe3 threads p through three stages.
func Pipe3[A, B, C, D any](p *Pipeline[A], s1 Stage[A, B], s2 Stage[B, C], s3 Stage[C, D]) *Pipeline[D] {
	return s3(s2(s1(p)))
}

// Pipe4 threads p through four stages.
func Pipe4[A, B, C, D, E any](p *Pipeline[A], s1 Stage[A, B], s2 Stage[B, C], s3 Stage[C, D], s4 Stage[D, E]) *Pipeline[E] {
	return s4(s3(s2(s1(p))))
}

// Pipe5 threads p through five stages.
func Pipe5[A, B, C, D, E, F any](p *Pipeline[A], s1 Stage[A, B], s2 Stage[B, C], s3 Stage[C, D], s4 Stage[D, E], s5 Stage[E, F]) *Pipeline[F] {
	return s5(s4(s3(s2(s1(p)))))
}

// Pipe6 threads p through six stages. Longer chains can nest Compose.
func Pipe6[A, B, C, D, E, F, G any](p *Pipeline[A], s1 Stage[A, B], s2 Stage[B, C], s3 Stage[C, D], s4 Stage[D, E], s5 Stage[E, F], s6 Stage[F, G]) *Pipeline[G] {
	return s6(s5(s4(s3(s2(s1(p))))))
}

// Compose joins two stages into one.
func Compose[A, B, C any](first Stage[A, B], second Stage[B, C]) Stage[A, C] {
	return func(p *Pipeline[A]) *Pipeline[C] {
		return second(first(p))
	}
}

// Pipify lifts an operator taking one fixed argument into a stage factory:
//
//	take := pipeline.Pipify(pipeline.Take[int])
//	out := pipeline.Pipe(src, take(3))
func Pipify[I, O, A any](op func(*Pipeline[I], A) *Pipeline[O]) func(A) Stage[I, O] {
	return func(arg A) Stage[I, O] {
		return func(p *Pipeline[I]) *Pipeline[O] {
			return op(p, arg)
		}
	}
}

// Pipify0 lifts an operator with no fixed arguments, such as Pairwise or
// Enumerate, into a stage.
func Pipify0[I, O any](op func(*Pipeline[I]) *Pipeline[O]) Stage[I, O] {
	return op
}

// Pipify2 lifts an operator taking two fixed arguments.
func Pipify2[I, O, A, B any](op func(*Pipeline[I], A, B) *Pipeline[O]) func(A, B) Stage[I, O] {
	return func(a A, b B) Stage[I, O] {
		return func(p *Pipeline[I]) *Pipeline[O] {
			return op(p, a, b)
		}
	}
}

// PipifyE lifts an operator that validates its argument, such as Chunk.
// The argument is checked when the stage is built, by applying op to an
// empty pipeline; nothing is pulled. An operator that still fails on the
// real input yields a pipeline whose pulls return that error.
func PipifyE[I, O, A any](op func(*Pipeline[I], A) (*Pipeline[O], error)) func(A) (Stage[I, O], error) {
	return func(arg A) (Stage[I, O], error) {
		if _, err := op(Of[I](), arg); err != nil {
			return nil, err
		}
		return func(p *Pipeline[I]) *Pipeline[O] {
			out, err := op(p, arg)
			if err != nil {
				return Fail[O](err)
			}
			return out
		}, nil
	}
}
