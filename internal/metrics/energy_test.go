package metrics

import (
	"context"
	"math"
	"testing"

	"github.com/san-kum/isingsim/internal/lattice"
	"github.com/san-kum/isingsim/internal/sampler"
)

func TestMeanEnergy(t *testing.T) {
	m := NewMeanEnergy()
	lat, _ := lattice.NewUniform(2, lattice.Up)

	m.Observe(sampler.StepEvent{Energy: -16}, lat)
	m.Observe(sampler.StepEvent{Energy: -8}, lat)

	if got := m.Value(); got != -12 {
		t.Errorf("expected mean energy -12, got %f", got)
	}

	m.Reset()
	if m.Value() != 0 {
		t.Error("expected zero energy after reset")
	}
}

func TestEnergyPerSpin(t *testing.T) {
	m := NewEnergyPerSpin()
	lat, _ := lattice.NewUniform(4, lattice.Up)

	m.Observe(sampler.StepEvent{Energy: lat.TotalEnergy(1)}, lat)
	if got := m.Value(); got != -4 {
		t.Errorf("expected -4 per spin for an aligned lattice, got %f", got)
	}
}

func TestAcceptanceRate(t *testing.T) {
	a := NewAcceptanceRate()
	lat, _ := lattice.NewUniform(2, lattice.Up)

	for i := 0; i < 4; i++ {
		a.Observe(sampler.StepEvent{Accepted: i%2 == 0}, lat)
	}
	if a.Value() != 0.5 {
		t.Errorf("expected acceptance 0.5, got %f", a.Value())
	}
}

func TestMagnetizationTracksFlips(t *testing.T) {
	lat, _ := lattice.NewUniform(3, lattice.Up)
	m := NewMagnetization()

	m.Observe(sampler.StepEvent{}, lat)
	if m.Value() != 1 {
		t.Fatalf("expected |m| = 1, got %f", m.Value())
	}

	lat.Flip(1, 1)
	m.Observe(sampler.StepEvent{I: 1, J: 1, Accepted: true}, lat)

	want := (1.0 + 7.0/9.0) / 2
	if math.Abs(m.Value()-want) > 1e-12 {
		t.Errorf("expected mean |m| %f, got %f", want, m.Value())
	}
}

func TestMetricsAgainstRun(t *testing.T) {
	s := sampler.New()
	for _, m := range Defaults() {
		s.AddMetric(m)
	}
	trace := NewTrace(2000)
	s.AddObserver(trace)

	cfg := sampler.DefaultConfig()
	cfg.Size = 6
	cfg.Steps = 2000
	cfg.Seed = 3

	res, err := s.Run(context.Background(), cfg)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if got, want := res.Metrics["acceptance_rate"], res.AcceptanceRate(); math.Abs(got-want) > 1e-12 {
		t.Errorf("acceptance_rate metric %f, result %f", got, want)
	}

	last := res.Energy[len(res.Energy)-1]
	if got := res.Metrics["energy_per_spin"]; math.Abs(got-last/36) > 1e-12 {
		t.Errorf("energy_per_spin %f, want %f", got, last/36)
	}

	if len(trace.Values) != cfg.Steps-1 {
		t.Fatalf("trace has %d values, want %d", len(trace.Values), cfg.Steps-1)
	}
	if got, want := trace.Values[len(trace.Values)-1], res.Magnetization(); got != want {
		t.Errorf("trace ends at %f, final lattice magnetization %f", got, want)
	}

	absMean := 0.0
	for _, v := range trace.Values {
		absMean += math.Abs(v)
	}
	absMean /= float64(len(trace.Values))
	if got := res.Metrics["abs_magnetization"]; math.Abs(got-absMean) > 1e-9 {
		t.Errorf("abs_magnetization %f, trace mean %f", got, absMean)
	}
}
