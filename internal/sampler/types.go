package sampler

import (
	"math"

	"github.com/san-kum/isingsim/internal/lattice"
)

// Init selects the initial spin configuration of a run.
type Init string

const (
	InitRandom Init = "random"
	InitUp     Init = "up"
	InitDown   Init = "down"
)

type Config struct {
	Size     int
	Steps    int
	Beta     float64
	Coupling float64
	Seed     int64
	Init     Init
}

func DefaultConfig() Config {
	return Config{
		Size:     32,
		Steps:    100_000,
		Beta:     0.44,
		Coupling: 1.0,
		Init:     InitRandom,
	}
}

// Validate reports the first precondition violation as an InvalidArgument error.
func (c Config) Validate() error {
	if c.Size <= 0 {
		return lattice.InvalidArgument("size", "must be positive, got %d", c.Size)
	}
	if c.Steps <= 0 {
		return lattice.InvalidArgument("steps", "must be positive, got %d", c.Steps)
	}
	if math.IsNaN(c.Beta) || math.IsInf(c.Beta, 0) {
		return lattice.InvalidArgument("beta", "must be finite, got %v", c.Beta)
	}
	if math.IsNaN(c.Coupling) || math.IsInf(c.Coupling, 0) {
		return lattice.InvalidArgument("coupling", "must be finite, got %v", c.Coupling)
	}
	switch c.Init {
	case "", InitRandom, InitUp, InitDown:
	default:
		return lattice.InvalidArgument("init", "unknown initial state %q", c.Init)
	}
	return nil
}

// StepEvent describes one Metropolis-Hastings proposal.
type StepEvent struct {
	Step     int
	I, J     int
	DeltaE   float64
	Accepted bool
	// Energy is the running energy after the decision.
	Energy float64
}

type Metric interface {
	Name() string
	Observe(ev StepEvent, lat *lattice.Lattice)
	Value() float64
	Reset()
}

type Observer interface {
	OnStep(ev StepEvent, lat *lattice.Lattice)
}

type Result struct {
	Lattice  *lattice.Lattice
	Energy   []float64
	Steps    int
	Accepted int
	Metrics  map[string]float64
}

// AcceptanceRate is the fraction of proposals (steps after the first) that
// flipped a spin.
func (r *Result) AcceptanceRate() float64 {
	if r.Steps <= 1 {
		return 0
	}
	return float64(r.Accepted) / float64(r.Steps-1)
}

// Magnetization returns the average magnetization of the final lattice.
func (r *Result) Magnetization() float64 {
	if r.Lattice == nil {
		return 0
	}
	return r.Lattice.AverageMagnetization()
}
