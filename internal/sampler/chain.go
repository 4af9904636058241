package sampler

import (
	"math"

	"github.com/san-kum/isingsim/internal/lattice"
	"github.com/san-kum/isingsim/internal/rng"
)

// Chain holds a lattice, its running energy and the random source that drives
// the proposals. The lattice is mutated in place.
type Chain struct {
	lat      *lattice.Lattice
	beta     float64
	coupling float64
	src      rng.Source
	energy   float64
	step     int
	accepted int
}

// NewChain starts a chain on lat with the running energy set to
// lat.TotalEnergy(coupling).
func NewChain(lat *lattice.Lattice, beta, coupling float64, src rng.Source) *Chain {
	return &Chain{
		lat:      lat,
		beta:     beta,
		coupling: coupling,
		src:      src,
		energy:   lat.TotalEnergy(coupling),
	}
}

// Step proposes flipping one uniformly chosen spin. Energy-lowering flips are
// always taken; otherwise a fresh uniform draw u is compared to exp(-β·ΔE).
func (c *Chain) Step() StepEvent {
	n := c.lat.Size()
	i := c.src.IntN(n)
	j := c.src.IntN(n)
	dE := c.lat.DeltaEnergy(i, j, c.coupling)

	accepted := dE < 0 || c.src.Float64() < math.Exp(-c.beta*dE)
	if accepted {
		c.lat.Flip(i, j)
		c.energy += dE
		c.accepted++
	}
	c.step++

	return StepEvent{
		Step:     c.step,
		I:        i,
		J:        j,
		DeltaE:   dE,
		Accepted: accepted,
		Energy:   c.energy,
	}
}

// Sweep performs N² proposals and returns how many were accepted.
func (c *Chain) Sweep() int {
	before := c.accepted
	for k := c.lat.Len(); k > 0; k-- {
		c.Step()
	}
	return c.accepted - before
}

func (c *Chain) Lattice() *lattice.Lattice { return c.lat }
func (c *Chain) Energy() float64           { return c.energy }
func (c *Chain) Beta() float64             { return c.beta }
func (c *Chain) Proposed() int             { return c.step }
func (c *Chain) Accepted() int             { return c.accepted }

// SetBeta changes the inverse temperature for subsequent proposals.
func (c *Chain) SetBeta(beta float64) { c.beta = beta }

// ChainFromConfig validates cfg and returns a chain on its initial lattice,
// seeded exactly as Sampler.Run seeds a run with the same cfg.
func ChainFromConfig(cfg Config) (*Chain, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	src := rng.New(cfg.Seed)
	lat, err := initialLattice(cfg, src)
	if err != nil {
		return nil, err
	}
	return NewChain(lat, cfg.Beta, cfg.Coupling, src), nil
}
