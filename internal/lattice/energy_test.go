package lattice

import (
	"math"
	"testing"

	"github.com/san-kum/isingsim/internal/rng"
)

func TestNeighborSumTwoByTwo(t *testing.T) {
	l, _ := NewUniform(2, Up)

	if got := l.NeighborSum(0, 0); got != 4 {
		t.Errorf("NeighborSum(0,0) = %d, want 4", got)
	}
	if got := l.DeltaEnergy(0, 0, 1); got != 8 {
		t.Errorf("DeltaEnergy(0,0,1) = %v, want 8", got)
	}
}

func TestNeighborSumSingleCell(t *testing.T) {
	l, _ := NewUniform(1, Down)
	if got := l.NeighborSum(0, 0); got != -4 {
		t.Errorf("NeighborSum on 1x1 = %d, want -4", got)
	}
}

func TestNeighborSumEdgesAndCorners(t *testing.T) {
	// Only (0,0) is up; its periodic neighbours are (4,0), (1,0), (0,4), (0,1).
	l, _ := NewUniform(5, Down)
	l.Set(0, 0, Up)

	tests := []struct {
		i, j int
		want int
	}{
		{4, 0, -2},
		{1, 0, -2},
		{0, 4, -2},
		{0, 1, -2},
		{4, 4, -4},
		{2, 2, -4},
		{0, 0, -4},
	}

	for _, tt := range tests {
		if got := l.NeighborSum(tt.i, tt.j); got != tt.want {
			t.Errorf("NeighborSum(%d,%d) = %d, want %d", tt.i, tt.j, got, tt.want)
		}
	}
}

func TestNeighborSumShiftInvariance(t *testing.T) {
	src := rng.New(11)
	for trial := 0; trial < 20; trial++ {
		n := 1 + src.IntN(7)
		l, _ := NewRandom(n, src)
		di, dj := src.IntN(2*n)-n, src.IntN(2*n)-n
		s := l.Shift(di, dj)
		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				if got, want := s.NeighborSum(i+di, j+dj), l.NeighborSum(i, j); got != want {
					t.Fatalf("n=%d shift=(%d,%d): NeighborSum(%d,%d)=%d, original %d",
						n, di, dj, i+di, j+dj, got, want)
				}
			}
		}
	}
}

func TestDeltaEnergyBounds(t *testing.T) {
	src := rng.New(3)
	for trial := 0; trial < 50; trial++ {
		n := 1 + src.IntN(9)
		l, _ := NewRandom(n, src)
		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				dE := l.DeltaEnergy(i, j, 1)
				if dE < -8 || dE > 8 {
					t.Fatalf("DeltaEnergy(%d,%d) = %v outside [-8,8]", i, j, dE)
				}
			}
		}
	}
}

func TestTotalEnergyAligned(t *testing.T) {
	tests := []struct {
		n        int
		coupling float64
	}{
		{1, 1}, {2, 1}, {3, 1}, {10, 1}, {4, 0.5},
	}

	for _, tt := range tests {
		for _, s := range []Spin{Up, Down} {
			l, _ := NewUniform(tt.n, s)
			want := -4 * tt.coupling * float64(tt.n*tt.n)
			if got := l.TotalEnergy(tt.coupling); got != want {
				t.Errorf("n=%d J=%v spin=%d: TotalEnergy = %v, want %v", tt.n, tt.coupling, s, got, want)
			}
		}
	}
}

func TestTotalEnergyIsTwiceBondEnergy(t *testing.T) {
	src := rng.New(5)
	for trial := 0; trial < 30; trial++ {
		n := 1 + src.IntN(8)
		l, _ := NewRandom(n, src)
		if l.TotalEnergy(1) != 2*l.BondEnergy(1) {
			t.Fatalf("n=%d: TotalEnergy %v != 2*BondEnergy %v", n, l.TotalEnergy(1), l.BondEnergy(1))
		}
	}
}

func TestDeltaEnergyMatchesBondEnergyChange(t *testing.T) {
	src := rng.New(9)
	for trial := 0; trial < 30; trial++ {
		n := 2 + src.IntN(7)
		l, _ := NewRandom(n, src)
		i, j := src.IntN(n), src.IntN(n)
		before := l.BondEnergy(1)
		dE := l.DeltaEnergy(i, j, 1)
		l.Flip(i, j)
		if got := l.BondEnergy(1) - before; got != dE {
			t.Fatalf("n=%d flip (%d,%d): bond energy changed by %v, DeltaEnergy %v", n, i, j, got, dE)
		}
	}
}

func TestAverageMagnetization(t *testing.T) {
	for _, n := range []int{1, 2, 7, 16} {
		up, _ := NewUniform(n, Up)
		down, _ := NewUniform(n, Down)
		if up.AverageMagnetization() != 1.0 {
			t.Errorf("all-up %dx%d magnetization = %v", n, n, up.AverageMagnetization())
		}
		if down.AverageMagnetization() != -1.0 {
			t.Errorf("all-down %dx%d magnetization = %v", n, n, down.AverageMagnetization())
		}
	}

	l, _ := FromRows([][]int{{1, -1}, {1, 1}})
	if got := l.AverageMagnetization(); math.Abs(got-0.5) > 1e-12 {
		t.Errorf("magnetization = %v, want 0.5", got)
	}
}
