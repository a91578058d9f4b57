// Package simulation is the trial generator + aggregator harness shared by
// every experiment.
//
// A Generator draws one independent trial from a seeded *rand.Rand. Run
// repeats the draw n times with no state carried between trials and hands
// the collected trials back for aggregation by the metrics package. The
// harness is single-threaded on purpose: one experiment owns one PRNG, so a
// seed fully determines the result.
//
// The Assert* helpers in assertions.go are shared by the experiment
// packages' tests.
//
// Usage:
//
//	rng := entropy.New(42)
//	trials, err := simulation.Run(ctx, profile, 3000, rng,
//	    simulation.WithObserver(func(i int, tr models.Trial) { ... }))
//	summary, err := metrics.SummarizeTrials("S1", trials, metrics.DefaultWeights())
package simulation
