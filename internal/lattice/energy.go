package lattice

// NeighborSum returns the sum of the spins above, below, left and right of
// (i, j) with periodic boundaries. On lattices smaller than 3 a neighbour may
// be counted more than once, or be the cell itself when N == 1.
func (l *Lattice) NeighborSum(i, j int) int {
	n := l.n
	i, j = l.Wrap(i), l.Wrap(j)
	up := (i - 1 + n) % n
	down := (i + 1) % n
	left := (j - 1 + n) % n
	right := (j + 1) % n
	return int(l.spins[up*n+j]) +
		int(l.spins[down*n+j]) +
		int(l.spins[i*n+left]) +
		int(l.spins[i*n+right])
}

// DeltaEnergy returns the energy cost of flipping (i, j) under coupling J:
// 2·J·s(i,j)·NeighborSum(i,j), which lies in [-8J, 8J].
func (l *Lattice) DeltaEnergy(i, j int, coupling float64) float64 {
	return 2 * coupling * float64(l.At(i, j)) * float64(l.NeighborSum(i, j))
}

// TotalEnergy returns -J Σ s(i,j)·NeighborSum(i,j). Every bond is visited
// from both of its endpoints, so the result is twice BondEnergy.
func (l *Lattice) TotalEnergy(coupling float64) float64 {
	sum := 0
	for i := 0; i < l.n; i++ {
		for j := 0; j < l.n; j++ {
			sum += int(l.spins[i*l.n+j]) * l.NeighborSum(i, j)
		}
	}
	return -coupling * float64(sum)
}

// BondEnergy returns -J Σ s(i,j)·(s(i+1,j)+s(i,j+1)), each bond once.
func (l *Lattice) BondEnergy(coupling float64) float64 {
	n := l.n
	sum := 0
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			s := int(l.spins[i*n+j])
			sum += s * (int(l.spins[((i+1)%n)*n+j]) + int(l.spins[i*n+(j+1)%n]))
		}
	}
	return -coupling * float64(sum)
}

// Sum returns the sum of all spins.
func (l *Lattice) Sum() int {
	sum := 0
	for _, s := range l.spins {
		sum += int(s)
	}
	return sum
}

// AverageMagnetization returns (1/N²) Σ s(i,j).
func (l *Lattice) AverageMagnetization() float64 {
	return float64(l.Sum()) / float64(len(l.spins))
}
