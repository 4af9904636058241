package sampler_test

import (
	"context"
	"errors"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/isingsim/internal/lattice"
	"github.com/san-kum/isingsim/internal/rng"
	"github.com/san-kum/isingsim/internal/sampler"
)

// transitionRecorder keeps the lattice seen before every step and checks the
// recorded decision against it.
type transitionRecorder struct {
	prev     *lattice.Lattice
	coupling float64
	events   []sampler.StepEvent
	failures []string
}

func (r *transitionRecorder) OnStep(ev sampler.StepEvent, lat *lattice.Lattice) {
	r.events = append(r.events, ev)

	if want := r.prev.DeltaEnergy(ev.I, ev.J, r.coupling); want != ev.DeltaE {
		r.failures = append(r.failures, "delta energy does not match the pre-step lattice")
	}

	expected := r.prev.Clone()
	if ev.Accepted {
		expected.Flip(ev.I, ev.J)
	}
	if !expected.Equal(lat) {
		r.failures = append(r.failures, "lattice transition does not match the decision")
	}
	r.prev = lat.Clone()
}

func config(size, steps int, beta float64, seed int64) sampler.Config {
	cfg := sampler.DefaultConfig()
	cfg.Size = size
	cfg.Steps = steps
	cfg.Beta = beta
	cfg.Seed = seed
	return cfg
}

var _ = Describe("Sampler", func() {
	var ctx context.Context

	BeforeEach(func() {
		ctx = context.Background()
	})

	Describe("argument validation", func() {
		DescribeTable("rejects invalid configurations before running",
			func(cfg sampler.Config, field string) {
				res, err := sampler.New().Run(ctx, cfg)
				Expect(res).To(BeNil())
				Expect(err).To(MatchError(lattice.ErrInvalidArgument))

				var ae *lattice.ArgumentError
				Expect(errors.As(err, &ae)).To(BeTrue())
				Expect(ae.Field).To(Equal(field))
			},
			Entry("zero size", config(0, 10, 0.4, 1), "size"),
			Entry("negative size", config(-2, 10, 0.4, 1), "size"),
			Entry("zero steps", config(4, 0, 0.4, 1), "steps"),
			Entry("negative steps", config(4, -1, 0.4, 1), "steps"),
			Entry("NaN beta", config(4, 10, math.NaN(), 1), "beta"),
			Entry("infinite beta", config(4, 10, math.Inf(1), 1), "beta"),
		)

		It("rejects a nil starting lattice", func() {
			_, err := sampler.New().RunFrom(ctx, nil, config(4, 10, 0.4, 1))
			Expect(err).To(MatchError(lattice.ErrInvalidArgument))
		})

		It("returns the same error kind from the plain entry point", func() {
			lat, series, err := sampler.Run(0, 10, 0.5)
			Expect(err).To(MatchError(lattice.ErrInvalidArgument))
			Expect(lat).To(BeNil())
			Expect(series).To(BeNil())
		})
	})

	Describe("lattice shape", func() {
		DescribeTable("returns an N×N lattice of ±1 spins",
			func(n, steps int) {
				res, err := sampler.New().Run(ctx, config(n, steps, 0.5, int64(n*31+steps)))
				Expect(err).NotTo(HaveOccurred())
				Expect(res.Lattice.Size()).To(Equal(n))

				rows := res.Lattice.Rows()
				Expect(rows).To(HaveLen(n))
				for _, row := range rows {
					Expect(row).To(HaveLen(n))
					for _, v := range row {
						Expect(v).To(Or(Equal(1), Equal(-1)))
					}
				}
				Expect(res.Energy).To(HaveLen(steps))
				Expect(res.Steps).To(Equal(steps))
			},
			Entry("single cell, single step", 1, 1),
			Entry("2x2, single step", 2, 1),
			Entry("3x3", 3, 200),
			Entry("16x16", 16, 5000),
		)

		It("works through the plain entry point", func() {
			lat, series, err := sampler.Run(5, 100, 0.3)
			Expect(err).NotTo(HaveOccurred())
			Expect(lat.Size()).To(Equal(5))
			Expect(series).To(HaveLen(100))
		})
	})

	Describe("energy series", func() {
		It("starts from the total energy of the initial lattice", func() {
			cfg := config(8, 1000, 0.4, 77)

			// The same seed reproduces the initial lattice.
			initial, err := lattice.NewRandom(cfg.Size, rng.New(cfg.Seed))
			Expect(err).NotTo(HaveOccurred())

			res, err := sampler.New().Run(ctx, cfg)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Energy[0]).To(Equal(initial.TotalEnergy(1)))
		})

		It("advances by the delta energy of accepted flips only", func() {
			start, err := lattice.NewRandom(6, rng.New(5))
			Expect(err).NotTo(HaveOccurred())

			rec := &transitionRecorder{prev: start.Clone(), coupling: 1}
			s := sampler.New()
			s.AddObserver(rec)

			res, err := s.RunFrom(ctx, start, config(6, 3000, 0.6, 99))
			Expect(err).NotTo(HaveOccurred())
			Expect(rec.failures).To(BeEmpty())
			Expect(rec.events).To(HaveLen(2999))

			accepted := 0
			for k, ev := range rec.events {
				step := k + 1
				Expect(ev.Step).To(Equal(step))
				if ev.Accepted {
					accepted++
					Expect(res.Energy[step]).To(Equal(res.Energy[step-1] + ev.DeltaE))
				} else {
					Expect(ev.DeltaE).To(BeNumerically(">=", 0))
					Expect(res.Energy[step]).To(Equal(res.Energy[step-1]))
				}
			}
			Expect(res.Accepted).To(Equal(accepted))
			Expect(accepted).To(BeNumerically(">", 0))
		})

		It("always accepts energy-lowering flips", func() {
			rec := &transitionRecorder{coupling: 1}
			start, _ := lattice.NewRandom(10, rng.New(8))
			rec.prev = start.Clone()
			s := sampler.New()
			s.AddObserver(rec)

			_, err := s.RunFrom(ctx, start, config(10, 5000, 2.0, 3))
			Expect(err).NotTo(HaveOccurred())
			for _, ev := range rec.events {
				if ev.DeltaE < 0 {
					Expect(ev.Accepted).To(BeTrue())
				}
			}
		})

		It("tracks the change in bond energy", func() {
			start, _ := lattice.NewRandom(7, rng.New(21))
			initialBond := start.BondEnergy(1)

			res, err := sampler.New().RunFrom(ctx, start, config(7, 4000, 0.5, 21))
			Expect(err).NotTo(HaveOccurred())

			last := res.Energy[len(res.Energy)-1]
			Expect(last - res.Energy[0]).To(Equal(res.Lattice.BondEnergy(1) - initialBond))
		})

		It("stays within the bounds of the delta energy per step", func() {
			res, err := sampler.New().Run(ctx, config(12, 2000, 0.2, 4))
			Expect(err).NotTo(HaveOccurred())
			for s := 1; s < len(res.Energy); s++ {
				Expect(math.Abs(res.Energy[s] - res.Energy[s-1])).To(BeNumerically("<=", 8))
			}
		})
	})

	Describe("determinism", func() {
		It("reproduces a run from its seed", func() {
			a, err := sampler.New().Run(ctx, config(9, 2000, 0.45, 1234))
			Expect(err).NotTo(HaveOccurred())
			b, err := sampler.New().Run(ctx, config(9, 2000, 0.45, 1234))
			Expect(err).NotTo(HaveOccurred())

			Expect(a.Energy).To(Equal(b.Energy))
			Expect(a.Lattice.Equal(b.Lattice)).To(BeTrue())
		})
	})

	Describe("low temperature", func() {
		DescribeTable("an aligned lattice stays frozen at beta = 100",
			func(init sampler.Init, want float64) {
				cfg := config(16, 50_000, 100, 17)
				cfg.Init = init

				res, err := sampler.New().Run(ctx, cfg)
				Expect(err).NotTo(HaveOccurred())
				Expect(res.Magnetization()).To(BeNumerically("~", want, 0.05))
				Expect(res.Energy[len(res.Energy)-1]).To(Equal(res.Energy[0]))
			},
			Entry("all up", sampler.InitUp, 1.0),
			Entry("all down", sampler.InitDown, -1.0),
		)
	})

	Describe("cancellation", func() {
		It("returns the partial trace with the context error", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()

			res, err := sampler.New().Run(cctx, config(8, 100_000, 0.4, 2))
			Expect(err).To(MatchError(context.Canceled))
			Expect(res).NotTo(BeNil())
			Expect(len(res.Energy)).To(BeNumerically("<", 100_000))
			Expect(res.Energy).To(HaveLen(res.Steps))
		})
	})
})

var _ = Describe("Chain", func() {
	It("counts proposals and accepted flips", func() {
		lat, _ := lattice.NewRandom(4, rng.New(6))
		c := sampler.NewChain(lat, 0.0, 1, rng.New(6))

		Expect(c.Energy()).To(Equal(lat.TotalEnergy(1)))

		// beta = 0 accepts every proposal.
		Expect(c.Sweep()).To(Equal(16))
		Expect(c.Proposed()).To(Equal(16))
		Expect(c.Accepted()).To(Equal(16))

		c.SetBeta(100)
		Expect(c.Beta()).To(Equal(100.0))
	})

	It("follows the same trajectory as a run built from the same config", func() {
		cfg := config(4, 1+3*16, 0.5, 11)
		res, err := sampler.New().Run(context.Background(), cfg)
		Expect(err).NotTo(HaveOccurred())

		c, err := sampler.ChainFromConfig(cfg)
		Expect(err).NotTo(HaveOccurred())
		for k := 0; k < 3; k++ {
			c.Sweep()
		}
		Expect(c.Lattice().Equal(res.Lattice)).To(BeTrue())
		Expect(c.Energy()).To(Equal(res.Energy[len(res.Energy)-1]))
		Expect(c.Accepted()).To(Equal(res.Accepted))
	})

	It("rejects an invalid config", func() {
		_, err := sampler.ChainFromConfig(config(0, 10, 0.5, 1))
		Expect(err).To(MatchError(lattice.ErrInvalidArgument))
	})
})
