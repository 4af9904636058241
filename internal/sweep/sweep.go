// Package sweep runs one Metropolis chain per inverse temperature and reduces
// each trace to thermodynamic observables.
package sweep

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"os"
	"runtime"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/isingsim/internal/analysis"
	"github.com/san-kum/isingsim/internal/lattice"
	"github.com/san-kum/isingsim/internal/logging"
	"github.com/san-kum/isingsim/internal/metrics"
	"github.com/san-kum/isingsim/internal/rng"
	"github.com/san-kum/isingsim/internal/sampler"
)

type Plan struct {
	BetaMin  float64 `yaml:"beta_min"`
	BetaMax  float64 `yaml:"beta_max"`
	Points   int     `yaml:"points"`
	Size     int     `yaml:"size"`
	Steps    int     `yaml:"steps"`
	Burn     float64 `yaml:"burn"`
	Coupling float64 `yaml:"coupling"`
	Seed     int64   `yaml:"seed"`
	Workers  int     `yaml:"workers"`
}

func DefaultPlan() Plan {
	return Plan{
		BetaMin:  0.2,
		BetaMax:  0.7,
		Points:   11,
		Size:     16,
		Steps:    200_000,
		Burn:     0.5,
		Coupling: 1.0,
		Seed:     1,
		Workers:  runtime.NumCPU(),
	}
}

// LoadPlan reads a YAML plan; missing fields keep their DefaultPlan values.
func LoadPlan(path string) (Plan, error) {
	plan := DefaultPlan()
	data, err := os.ReadFile(path)
	if err != nil {
		return plan, err
	}
	if err := yaml.Unmarshal(data, &plan); err != nil {
		return plan, fmt.Errorf("parse plan %s: %w", path, err)
	}
	if err := plan.Validate(); err != nil {
		return plan, fmt.Errorf("plan %s: %w", path, err)
	}
	return plan, nil
}

func (p Plan) Validate() error {
	if p.Points <= 0 {
		return lattice.InvalidArgument("points", "must be positive, got %d", p.Points)
	}
	if math.IsNaN(p.BetaMin) || math.IsInf(p.BetaMin, 0) || math.IsNaN(p.BetaMax) || math.IsInf(p.BetaMax, 0) {
		return lattice.InvalidArgument("beta", "bounds must be finite")
	}
	if p.BetaMax < p.BetaMin {
		return lattice.InvalidArgument("beta", "max %g below min %g", p.BetaMax, p.BetaMin)
	}
	if p.Burn < 0 || p.Burn >= 1 {
		return lattice.InvalidArgument("burn", "must be in [0, 1), got %g", p.Burn)
	}
	return p.config(p.BetaMin, p.Seed).Validate()
}

// Betas returns Points evenly spaced values from BetaMin to BetaMax inclusive.
func (p Plan) Betas() []float64 {
	if p.Points <= 0 {
		return nil
	}
	betas := make([]float64, p.Points)
	if p.Points == 1 {
		betas[0] = p.BetaMin
		return betas
	}
	step := (p.BetaMax - p.BetaMin) / float64(p.Points-1)
	for k := range betas {
		betas[k] = p.BetaMin + float64(k)*step
	}
	betas[p.Points-1] = p.BetaMax
	return betas
}

func (p Plan) config(beta float64, seed int64) sampler.Config {
	cfg := sampler.DefaultConfig()
	cfg.Size = p.Size
	cfg.Steps = p.Steps
	cfg.Beta = beta
	cfg.Coupling = p.Coupling
	cfg.Seed = seed
	return cfg
}

// Point is the outcome of the chain at one inverse temperature.
type Point struct {
	analysis.Observables `yaml:",inline"`
	Seed                 int64         `json:"seed" yaml:"seed"`
	AcceptanceRate       float64       `json:"acceptance_rate" yaml:"acceptance_rate"`
	Elapsed              time.Duration `json:"elapsed" yaml:"elapsed"`
}

// Run executes the plan on at most plan.Workers goroutines. Chain k uses
// rng.Derive(plan.Seed, k), so results do not depend on the worker count.
// Points are returned in beta order.
func Run(ctx context.Context, plan Plan, logger *slog.Logger) ([]Point, error) {
	if err := plan.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logging.Discard()
	}

	betas := plan.Betas()
	points := make([]Point, len(betas))
	errs := make([]error, len(betas))

	workers := plan.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	logger.Info("sweep started", "points", len(betas), "size", plan.Size, "steps", plan.Steps, "workers", workers)

	sampler.ParallelFor(len(betas), workers, func(start, end int) {
		for idx := start; idx < end; idx++ {
			if err := ctx.Err(); err != nil {
				errs[idx] = err
				continue
			}
			points[idx], errs[idx] = runPoint(ctx, plan, betas[idx], rng.Derive(plan.Seed, idx))
			if errs[idx] == nil {
				logger.Debug("sweep point done",
					"beta", betas[idx],
					"abs_magnetization", points[idx].AbsMagnetization,
					"elapsed", points[idx].Elapsed)
			}
		}
	})

	for k, err := range errs {
		if err != nil {
			logger.Warn("sweep aborted", "beta", betas[k], "error", err)
			return nil, fmt.Errorf("sweep point beta=%g: %w", betas[k], err)
		}
	}

	logger.Info("sweep finished", "points", len(points))
	return points, nil
}

func runPoint(ctx context.Context, plan Plan, beta float64, seed int64) (Point, error) {
	start := time.Now()

	trace := metrics.NewTrace(plan.Steps)
	s := sampler.New()
	s.AddObserver(trace)

	result, err := s.Run(ctx, plan.config(beta, seed))
	if err != nil {
		return Point{}, err
	}

	// the trace has no entry for the initial state
	energy := analysis.Burn(result.Energy[1:], plan.Burn)
	mags := analysis.Burn(trace.Values, plan.Burn)

	return Point{
		Observables:    analysis.Thermo(energy, mags, beta, plan.Size),
		Seed:           seed,
		AcceptanceRate: result.AcceptanceRate(),
		Elapsed:        time.Since(start),
	}, nil
}
