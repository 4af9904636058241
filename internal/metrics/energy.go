package metrics

import (
	"github.com/san-kum/isingsim/internal/lattice"
	"github.com/san-kum/isingsim/internal/sampler"
)

// MeanEnergy averages the running energy over observed steps.
type MeanEnergy struct {
	name    string
	samples int
	total   float64
}

func NewMeanEnergy() *MeanEnergy {
	return &MeanEnergy{name: "mean_energy"}
}

func (e *MeanEnergy) Name() string { return e.name }

func (e *MeanEnergy) Observe(ev sampler.StepEvent, lat *lattice.Lattice) {
	e.total += ev.Energy
	e.samples++
}

func (e *MeanEnergy) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return e.total / float64(e.samples)
}

func (e *MeanEnergy) Reset() {
	e.total = 0
	e.samples = 0
}

// EnergyPerSpin reports the last running energy divided by N².
type EnergyPerSpin struct {
	name  string
	last  float64
	spins int
}

func NewEnergyPerSpin() *EnergyPerSpin {
	return &EnergyPerSpin{name: "energy_per_spin"}
}

func (e *EnergyPerSpin) Name() string { return e.name }

func (e *EnergyPerSpin) Observe(ev sampler.StepEvent, lat *lattice.Lattice) {
	e.last = ev.Energy
	e.spins = lat.Len()
}

func (e *EnergyPerSpin) Value() float64 {
	if e.spins == 0 {
		return 0
	}
	return e.last / float64(e.spins)
}

func (e *EnergyPerSpin) Reset() {
	e.last = 0
	e.spins = 0
}
