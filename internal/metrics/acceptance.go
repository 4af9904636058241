package metrics

import (
	"github.com/san-kum/isingsim/internal/lattice"
	"github.com/san-kum/isingsim/internal/sampler"
)

type AcceptanceRate struct {
	name     string
	accepted int
	samples  int
}

func NewAcceptanceRate() *AcceptanceRate {
	return &AcceptanceRate{name: "acceptance_rate"}
}

func (a *AcceptanceRate) Name() string { return a.name }

func (a *AcceptanceRate) Observe(ev sampler.StepEvent, lat *lattice.Lattice) {
	a.samples++
	if ev.Accepted {
		a.accepted++
	}
}

func (a *AcceptanceRate) Value() float64 {
	if a.samples == 0 {
		return 0
	}
	return float64(a.accepted) / float64(a.samples)
}

func (a *AcceptanceRate) Reset() {
	a.accepted = 0
	a.samples = 0
}

// Defaults returns a fresh set of the standard run metrics.
func Defaults() []sampler.Metric {
	return []sampler.Metric{
		NewMeanEnergy(),
		NewEnergyPerSpin(),
		NewMagnetization(),
		NewAcceptanceRate(),
	}
}
