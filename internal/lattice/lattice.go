package lattice

import (
	"strings"

	"github.com/san-kum/isingsim/internal/rng"
)

// Spin is a binary magnetic orientation.
type Spin int8

const (
	Up   Spin = 1
	Down Spin = -1
)

// Lattice is an N×N grid of spins stored in row-major order.
// Row index i and column index j both wrap around at N.
type Lattice struct {
	n     int
	spins []Spin
}

// NewRandom returns an n×n lattice with every spin drawn independently and
// uniformly from {Down, Up}.
func NewRandom(n int, src rng.Source) (*Lattice, error) {
	l, err := alloc(n)
	if err != nil {
		return nil, err
	}
	for k := range l.spins {
		if src.IntN(2) == 1 {
			l.spins[k] = Up
		} else {
			l.spins[k] = Down
		}
	}
	return l, nil
}

// NewUniform returns an n×n lattice with every spin set to s.
func NewUniform(n int, s Spin) (*Lattice, error) {
	if s != Up && s != Down {
		return nil, InvalidArgument("spin", "must be -1 or +1, got %d", s)
	}
	l, err := alloc(n)
	if err != nil {
		return nil, err
	}
	for k := range l.spins {
		l.spins[k] = s
	}
	return l, nil
}

// FromRows builds a lattice from a square grid of ±1 values.
func FromRows(rows [][]int) (*Lattice, error) {
	l, err := alloc(len(rows))
	if err != nil {
		return nil, err
	}
	for i, row := range rows {
		if len(row) != l.n {
			return nil, InvalidArgument("rows", "row %d has %d values, want %d", i, len(row), l.n)
		}
		for j, v := range row {
			if v != 1 && v != -1 {
				return nil, InvalidArgument("rows", "value at (%d,%d) is %d, want -1 or +1", i, j, v)
			}
			l.spins[i*l.n+j] = Spin(v)
		}
	}
	return l, nil
}

func alloc(n int) (*Lattice, error) {
	if n <= 0 {
		return nil, InvalidArgument("size", "must be positive, got %d", n)
	}
	return &Lattice{n: n, spins: make([]Spin, n*n)}, nil
}

// Size returns the side length N.
func (l *Lattice) Size() int { return l.n }

// Len returns the number of spins, N².
func (l *Lattice) Len() int { return len(l.spins) }

// Wrap maps any integer index onto [0, N).
func (l *Lattice) Wrap(i int) int {
	return (i%l.n + l.n) % l.n
}

// At returns the spin at (i, j) with periodic wrapping.
func (l *Lattice) At(i, j int) Spin {
	return l.spins[l.Wrap(i)*l.n+l.Wrap(j)]
}

// Set stores s at (i, j). Values other than Up and Down are ignored.
func (l *Lattice) Set(i, j int, s Spin) {
	if s != Up && s != Down {
		return
	}
	l.spins[l.Wrap(i)*l.n+l.Wrap(j)] = s
}

// Flip negates the spin at (i, j) in place.
func (l *Lattice) Flip(i, j int) {
	k := l.Wrap(i)*l.n + l.Wrap(j)
	l.spins[k] = -l.spins[k]
}

// Clone returns an independent copy.
func (l *Lattice) Clone() *Lattice {
	c := &Lattice{n: l.n, spins: make([]Spin, len(l.spins))}
	copy(c.spins, l.spins)
	return c
}

// Shift returns a new lattice whose (i+di, j+dj) cell holds this lattice's
// (i, j) spin.
func (l *Lattice) Shift(di, dj int) *Lattice {
	c := &Lattice{n: l.n, spins: make([]Spin, len(l.spins))}
	for i := 0; i < l.n; i++ {
		for j := 0; j < l.n; j++ {
			c.spins[c.Wrap(i+di)*l.n+c.Wrap(j+dj)] = l.spins[i*l.n+j]
		}
	}
	return c
}

// Rows returns a copy of the grid as ±1 integers.
func (l *Lattice) Rows() [][]int {
	rows := make([][]int, l.n)
	for i := range rows {
		rows[i] = make([]int, l.n)
		for j := range rows[i] {
			rows[i][j] = int(l.spins[i*l.n+j])
		}
	}
	return rows
}

// Equal reports whether both lattices hold the same spins.
func (l *Lattice) Equal(o *Lattice) bool {
	if o == nil || l.n != o.n {
		return false
	}
	for k := range l.spins {
		if l.spins[k] != o.spins[k] {
			return false
		}
	}
	return true
}

// String renders the lattice with '+' for Up and '-' for Down, one row per line.
func (l *Lattice) String() string {
	var b strings.Builder
	b.Grow(l.n * (l.n + 1))
	for i := 0; i < l.n; i++ {
		for j := 0; j < l.n; j++ {
			if l.spins[i*l.n+j] == Up {
				b.WriteByte('+')
			} else {
				b.WriteByte('-')
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}
