package metrics

import (
	"math"

	"github.com/san-kum/isingsim/internal/lattice"
	"github.com/san-kum/isingsim/internal/sampler"
)

// Magnetization averages |m| over observed steps. The spin sum is read from
// the lattice once and then updated from accepted flips.
type Magnetization struct {
	name    string
	sum     int
	primed  bool
	samples int
	total   float64
}

func NewMagnetization() *Magnetization {
	return &Magnetization{name: "abs_magnetization"}
}

func (m *Magnetization) Name() string { return m.name }

func (m *Magnetization) Observe(ev sampler.StepEvent, lat *lattice.Lattice) {
	switch {
	case !m.primed:
		m.sum = lat.Sum()
		m.primed = true
	case ev.Accepted:
		// the flipped spin moved the sum by twice its new value
		m.sum += 2 * int(lat.At(ev.I, ev.J))
	}
	m.total += math.Abs(float64(m.sum)) / float64(lat.Len())
	m.samples++
}

func (m *Magnetization) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return m.total / float64(m.samples)
}

func (m *Magnetization) Reset() {
	m.sum = 0
	m.primed = false
	m.samples = 0
	m.total = 0
}

// Trace records the signed magnetization after every observed step.
type Trace struct {
	inner  Magnetization
	Values []float64
}

func NewTrace(capacity int) *Trace {
	return &Trace{Values: make([]float64, 0, capacity)}
}

func (t *Trace) OnStep(ev sampler.StepEvent, lat *lattice.Lattice) {
	t.inner.Observe(ev, lat)
	t.Values = append(t.Values, float64(t.inner.sum)/float64(lat.Len()))
}
