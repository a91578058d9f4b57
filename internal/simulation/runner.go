package simulation

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
)

// ErrNoTrials is returned when a run is asked for fewer than one trial.
var ErrNoTrials = errors.New("simulation: trial count must be positive")

// checkEvery is how many trials run between context checks.
const checkEvery = 1024

// Generator draws one independent trial.
type Generator[T any] interface {
	Sample(r *rand.Rand) T
}

// GeneratorFunc adapts a plain function to Generator.
type GeneratorFunc[T any] func(r *rand.Rand) T

// Sample calls f(r).
func (f GeneratorFunc[T]) Sample(r *rand.Rand) T {
	return f(r)
}

// IndexedGenerator draws a trial that depends on its position in the run,
// e.g. a drifting stress schedule. Trials remain independent of each other.
type IndexedGenerator[T any] interface {
	SampleAt(i, n int, r *rand.Rand) T
}

type runOptions[T any] struct {
	observer func(i int, trial T)
}

// Option configures a Run.
type Option[T any] func(*runOptions[T])

// WithObserver registers a callback invoked after every trial.
func WithObserver[T any](fn func(i int, trial T)) Option[T] {
	return func(o *runOptions[T]) {
		o.observer = fn
	}
}

// Run draws n trials from gen using r.
func Run[T any](ctx context.Context, gen Generator[T], n int, r *rand.Rand, opts ...Option[T]) ([]T, error) {
	return RunIndexed(ctx, indexed[T]{gen}, n, r, opts...)
}

// RunIndexed draws n trials from gen using r, passing each trial its index.
func RunIndexed[T any](ctx context.Context, gen IndexedGenerator[T], n int, r *rand.Rand, opts ...Option[T]) ([]T, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrNoTrials, n)
	}
	if r == nil {
		return nil, errors.New("simulation: nil random source")
	}

	var o runOptions[T]
	for _, opt := range opts {
		opt(&o)
	}

	trials := make([]T, n)
	for i := 0; i < n; i++ {
		if i%checkEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, fmt.Errorf("simulation interrupted after %d trials: %w", i, err)
			}
		}
		trials[i] = gen.SampleAt(i, n, r)
		if o.observer != nil {
			o.observer(i, trials[i])
		}
	}
	return trials, nil
}

type indexed[T any] struct {
	gen Generator[T]
}

func (g indexed[T]) SampleAt(_, _ int, r *rand.Rand) T {
	return g.gen.Sample(r)
}
