package sampler

import (
	"context"
	"sync"

	"github.com/san-kum/isingsim/internal/lattice"
	"github.com/san-kum/isingsim/internal/rng"
)

// Ensemble runs independent chains that share a configuration but draw from
// derived seeds. Chain k uses rng.Derive(cfg.Seed, k).
type Ensemble struct {
	numRuns    int
	newMetrics func() []Metric
}

// NewEnsemble creates an ensemble of numRuns chains. newMetrics, if non-nil,
// is called once per chain so that metric state is never shared.
func NewEnsemble(numRuns int, newMetrics func() []Metric) *Ensemble {
	return &Ensemble{numRuns: numRuns, newMetrics: newMetrics}
}

func (e *Ensemble) Run(ctx context.Context, cfg Config) ([]*Result, error) {
	if e.numRuns <= 0 {
		return nil, lattice.InvalidArgument("runs", "must be positive, got %d", e.numRuns)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	results := make([]*Result, e.numRuns)
	errs := make([]error, e.numRuns)

	var wg sync.WaitGroup
	for i := 0; i < e.numRuns; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			cfgCopy := cfg
			cfgCopy.Seed = rng.Derive(cfg.Seed, idx)

			s := New()
			if e.newMetrics != nil {
				for _, m := range e.newMetrics() {
					s.AddMetric(m)
				}
			}

			results[idx], errs[idx] = s.Run(ctx, cfgCopy)
		}(i)
	}

	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	return results, nil
}

// ParallelFor executes fn over [0, n) split into at most workers chunks.
func ParallelFor(n, workers int, fn func(start, end int)) {
	if workers <= 1 || n <= 1 {
		fn(0, n)
		return
	}
	if workers > n {
		workers = n
	}

	chunkSize := (n + workers - 1) / workers

	var wg sync.WaitGroup
	for start := 0; start < n; start += chunkSize {
		end := start + chunkSize
		if end > n {
			end = n
		}
		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			fn(s, e)
		}(start, end)
	}

	wg.Wait()
}
