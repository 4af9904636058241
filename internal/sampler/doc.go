// Package sampler runs Metropolis-Hastings single-spin-flip dynamics on an
// Ising [lattice.Lattice].
//
//   - [Chain]: the stepwise kernel (one proposal per [Chain.Step])
//   - [Sampler]: runs a chain for a fixed number of steps with metrics and observers
//   - [Ensemble]: independent chains with derived seeds, run concurrently
//
// # Example
//
//	s := sampler.New()
//	cfg := sampler.DefaultConfig()
//	cfg.Size, cfg.Steps, cfg.Beta = 32, 100_000, 0.44
//	res, err := s.Run(ctx, cfg)
//
// # Thread Safety
//
// A run is a Markov chain and is strictly sequential. Sampler and Chain
// instances are NOT thread-safe; Ensemble gives each goroutine its own chain.
package sampler
