package sweep

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/isingsim/internal/lattice"
	"github.com/san-kum/isingsim/internal/logging"
)

func smallPlan() Plan {
	return Plan{
		BetaMin:  0.1,
		BetaMax:  1.0,
		Points:   4,
		Size:     6,
		Steps:    20_000,
		Burn:     0.5,
		Coupling: 1.0,
		Seed:     7,
		Workers:  2,
	}
}

func TestBetas(t *testing.T) {
	tests := []struct {
		name string
		plan Plan
		want []float64
	}{
		{"single", Plan{BetaMin: 0.3, BetaMax: 0.9, Points: 1}, []float64{0.3}},
		{"two", Plan{BetaMin: 0.3, BetaMax: 0.9, Points: 2}, []float64{0.3, 0.9}},
		{"five", Plan{BetaMin: 0, BetaMax: 1, Points: 5}, []float64{0, 0.25, 0.5, 0.75, 1}},
		{"none", Plan{Points: 0}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.plan.Betas()
			if len(got) != len(tt.want) {
				t.Fatalf("len = %d, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if math.Abs(got[i]-tt.want[i]) > 1e-12 {
					t.Errorf("betas[%d] = %g, want %g", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestPlanValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Plan)
		field  string
	}{
		{"valid", func(p *Plan) {}, ""},
		{"no points", func(p *Plan) { p.Points = 0 }, "points"},
		{"reversed", func(p *Plan) { p.BetaMax = 0 }, "beta"},
		{"nan", func(p *Plan) { p.BetaMin = math.NaN() }, "beta"},
		{"burn", func(p *Plan) { p.Burn = 1 }, "burn"},
		{"size", func(p *Plan) { p.Size = 0 }, "size"},
		{"steps", func(p *Plan) { p.Steps = -1 }, "steps"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := smallPlan()
			tt.modify(&p)
			err := p.Validate()
			if tt.field == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, lattice.ErrInvalidArgument) {
				t.Fatalf("expected invalid argument, got %v", err)
			}
			var argErr *lattice.ArgumentError
			if !errors.As(err, &argErr) || argErr.Field != tt.field {
				t.Errorf("expected field %q, got %v", tt.field, err)
			}
		})
	}
}

func TestLoadPlan(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plan.yaml")
	data := "beta_min: 0.3\nbeta_max: 0.6\npoints: 3\nsize: 8\nsteps: 1000\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	plan, err := LoadPlan(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if plan.Points != 3 || plan.Size != 8 || plan.Steps != 1000 {
		t.Errorf("unexpected plan: %+v", plan)
	}
	if plan.Coupling != 1.0 || plan.Burn != 0.5 {
		t.Errorf("defaults not kept: %+v", plan)
	}

	if err := os.WriteFile(path, []byte("points: 0\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadPlan(path); !errors.Is(err, lattice.ErrInvalidArgument) {
		t.Errorf("expected invalid argument, got %v", err)
	}
}

func TestRun(t *testing.T) {
	plan := smallPlan()
	points, err := Run(context.Background(), plan, logging.Discard())
	if err != nil {
		t.Fatalf("sweep failed: %v", err)
	}
	if len(points) != plan.Points {
		t.Fatalf("got %d points, want %d", len(points), plan.Points)
	}

	betas := plan.Betas()
	for i, p := range points {
		if p.Beta != betas[i] {
			t.Errorf("point %d beta = %g, want %g", i, p.Beta, betas[i])
		}
		if p.AbsMagnetization < 0 || p.AbsMagnetization > 1 {
			t.Errorf("point %d |m| = %g out of range", i, p.AbsMagnetization)
		}
		if p.SpecificHeat < 0 || p.Susceptibility < 0 {
			t.Errorf("point %d negative fluctuation observable: %+v", i, p)
		}
		if p.EnergyPerSpin < -4 || p.EnergyPerSpin > 4 {
			t.Errorf("point %d energy per spin %g out of range", i, p.EnergyPerSpin)
		}
	}

	// colder chains accept fewer proposals
	if points[0].AcceptanceRate <= points[len(points)-1].AcceptanceRate {
		t.Errorf("acceptance not decreasing with beta: %g vs %g",
			points[0].AcceptanceRate, points[len(points)-1].AcceptanceRate)
	}
}

func TestRunIndependentOfWorkers(t *testing.T) {
	plan := smallPlan()
	plan.Steps = 5000

	plan.Workers = 1
	serial, err := Run(context.Background(), plan, nil)
	if err != nil {
		t.Fatal(err)
	}
	plan.Workers = 4
	parallel, err := Run(context.Background(), plan, nil)
	if err != nil {
		t.Fatal(err)
	}

	for i := range serial {
		if serial[i].Observables != parallel[i].Observables || serial[i].Seed != parallel[i].Seed {
			t.Errorf("point %d differs: %+v vs %+v", i, serial[i].Observables, parallel[i].Observables)
		}
	}
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := Run(ctx, smallPlan(), nil); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
