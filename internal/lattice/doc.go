// Package lattice provides the square spin grid of the two-dimensional Ising
// model and the energy functions defined on it.
//
// A [Lattice] stores N×N spins, each exactly [Up] or [Down], with periodic
// boundaries in both dimensions:
//
//   - [Lattice.NeighborSum]: sum of the four nearest neighbours (toroidal)
//   - [Lattice.DeltaEnergy]: energy cost of flipping one spin
//   - [Lattice.TotalEnergy]: -J Σ s·neighbours, every bond counted twice
//   - [Lattice.BondEnergy]: the same energy with every bond counted once
//   - [Lattice.AverageMagnetization]: mean spin in [-1, 1]
//
// # Energy convention
//
// TotalEnergy sums the neighbour contribution from both endpoints of a bond,
// so it is exactly twice BondEnergy. Running energy traces produced by the
// sampler start from TotalEnergy and are advanced by DeltaEnergy, which is the
// change in BondEnergy. Both values are kept as-is for comparison with
// existing reference traces.
//
// # Errors
//
// Constructors reject non-positive sizes, ragged rows and values other than
// ±1 with an [*ArgumentError] wrapping [ErrInvalidArgument].
package lattice
