package analysis

import "math"

// CriticalBeta is the exact inverse critical temperature of the square-lattice
// Ising model with J = 1 (Onsager).
var CriticalBeta = math.Log(1+math.Sqrt2) / 2

type Observables struct {
	Beta             float64 `json:"beta" yaml:"beta"`
	EnergyPerSpin    float64 `json:"energy_per_spin" yaml:"energy_per_spin"`
	AbsMagnetization float64 `json:"abs_magnetization" yaml:"abs_magnetization"`
	SpecificHeat     float64 `json:"specific_heat" yaml:"specific_heat"`
	Susceptibility   float64 `json:"susceptibility" yaml:"susceptibility"`
}

// Thermo reduces an energy trace and a signed magnetization trace of an n×n
// lattice to per-spin observables: C = β²·Var(E)/N², χ = β·N²·Var(|m|).
func Thermo(energy, magnetization []float64, beta float64, n int) Observables {
	spins := float64(n * n)
	if spins == 0 {
		return Observables{Beta: beta}
	}

	abs := make([]float64, len(magnetization))
	for i, m := range magnetization {
		abs[i] = math.Abs(m)
	}

	return Observables{
		Beta:             beta,
		EnergyPerSpin:    Mean(energy) / spins,
		AbsMagnetization: Mean(abs),
		SpecificHeat:     beta * beta * Variance(energy) / spins,
		Susceptibility:   beta * spins * Variance(abs),
	}
}
