package sampler

import (
	"context"
	"time"

	"github.com/san-kum/isingsim/internal/lattice"
	"github.com/san-kum/isingsim/internal/rng"
)

// ctxPollInterval is the number of proposals between context checks.
const ctxPollInterval = 4096

type Sampler struct {
	metrics   []Metric
	observers []Observer
}

func New() *Sampler {
	return &Sampler{
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
	}
}

func (s *Sampler) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Sampler) AddObserver(o Observer) { s.observers = append(s.observers, o) }

// Run initializes a lattice according to cfg.Init and runs cfg.Steps steps.
func (s *Sampler) Run(ctx context.Context, cfg Config) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	src := rng.New(cfg.Seed)
	lat, err := initialLattice(cfg, src)
	if err != nil {
		return nil, err
	}
	return s.run(ctx, lat, cfg, src)
}

// RunFrom runs cfg.Steps steps starting from lat, which the run takes over and
// mutates in place. cfg.Size and cfg.Init are ignored.
func (s *Sampler) RunFrom(ctx context.Context, lat *lattice.Lattice, cfg Config) (*Result, error) {
	if lat == nil {
		return nil, lattice.InvalidArgument("lattice", "must not be nil")
	}
	cfg.Size = lat.Size()
	cfg.Init = ""
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return s.run(ctx, lat, cfg, rng.New(cfg.Seed))
}

func (s *Sampler) run(ctx context.Context, lat *lattice.Lattice, cfg Config, src rng.Source) (*Result, error) {
	for _, m := range s.metrics {
		m.Reset()
	}

	chain := NewChain(lat, cfg.Beta, cfg.Coupling, src)
	result := &Result{
		Lattice: lat,
		Energy:  make([]float64, cfg.Steps),
		Metrics: make(map[string]float64),
	}
	result.Energy[0] = chain.Energy()
	result.Steps = 1

	for step := 1; step < cfg.Steps; step++ {
		if step%ctxPollInterval == 0 {
			select {
			case <-ctx.Done():
				result.Energy = result.Energy[:step]
				s.collect(result, chain)
				return result, ctx.Err()
			default:
			}
		}

		ev := chain.Step()
		result.Energy[step] = ev.Energy
		result.Steps++

		for _, m := range s.metrics {
			m.Observe(ev, lat)
		}
		for _, obs := range s.observers {
			obs.OnStep(ev, lat)
		}
	}

	s.collect(result, chain)
	return result, nil
}

func (s *Sampler) collect(result *Result, chain *Chain) {
	result.Accepted = chain.Accepted()
	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
}

func initialLattice(cfg Config, src rng.Source) (*lattice.Lattice, error) {
	switch cfg.Init {
	case InitUp:
		return lattice.NewUniform(cfg.Size, lattice.Up)
	case InitDown:
		return lattice.NewUniform(cfg.Size, lattice.Down)
	default:
		return lattice.NewRandom(cfg.Size, src)
	}
}

// Run is the plain entry point: a random n×n lattice, J = 1, steps proposals
// at inverse temperature beta, seeded from the wall clock. It returns the
// final lattice and the running energy series.
func Run(n, steps int, beta float64) (*lattice.Lattice, []float64, error) {
	cfg := DefaultConfig()
	cfg.Size = n
	cfg.Steps = steps
	cfg.Beta = beta
	cfg.Seed = time.Now().UnixNano()

	result, err := New().Run(context.Background(), cfg)
	if err != nil {
		return nil, nil, err
	}
	return result.Lattice, result.Energy, nil
}
