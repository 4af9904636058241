package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"os/signal"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/isingsim/internal/analysis"
	"github.com/san-kum/isingsim/internal/sweep"
)

var (
	planFile  string
	sweepOut  string
	sweepPlan = sweep.DefaultPlan()
)

func addSweepFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&planFile, "plan", "", "sweep plan file (yaml)")
	cmd.Flags().StringVar(&sweepOut, "out", "", "write results to this yaml file")
	cmd.Flags().Float64Var(&sweepPlan.BetaMin, "beta-min", sweepPlan.BetaMin, "lowest beta")
	cmd.Flags().Float64Var(&sweepPlan.BetaMax, "beta-max", sweepPlan.BetaMax, "highest beta")
	cmd.Flags().IntVar(&sweepPlan.Points, "points", sweepPlan.Points, "number of beta values")
	cmd.Flags().IntVar(&sweepPlan.Size, "size", sweepPlan.Size, "lattice edge length")
	cmd.Flags().IntVar(&sweepPlan.Steps, "steps", sweepPlan.Steps, "steps per chain")
	cmd.Flags().Float64Var(&sweepPlan.Burn, "burn", sweepPlan.Burn, "fraction of each trace dropped before statistics")
	cmd.Flags().Float64Var(&sweepPlan.Coupling, "coupling", sweepPlan.Coupling, "coupling constant J")
	cmd.Flags().Int64Var(&sweepPlan.Seed, "seed", sweepPlan.Seed, "base seed")
	cmd.Flags().IntVar(&sweepPlan.Workers, "workers", sweepPlan.Workers, "concurrent chains")
}

// resolvePlan loads --plan and lets explicitly set flags override it.
func resolvePlan(cmd *cobra.Command) (sweep.Plan, error) {
	if planFile == "" {
		return sweepPlan, nil
	}

	plan, err := sweep.LoadPlan(planFile)
	if err != nil {
		return plan, err
	}

	flags := cmd.Flags()
	if flags.Changed("beta-min") {
		plan.BetaMin = sweepPlan.BetaMin
	}
	if flags.Changed("beta-max") {
		plan.BetaMax = sweepPlan.BetaMax
	}
	if flags.Changed("points") {
		plan.Points = sweepPlan.Points
	}
	if flags.Changed("size") {
		plan.Size = sweepPlan.Size
	}
	if flags.Changed("steps") {
		plan.Steps = sweepPlan.Steps
	}
	if flags.Changed("burn") {
		plan.Burn = sweepPlan.Burn
	}
	if flags.Changed("coupling") {
		plan.Coupling = sweepPlan.Coupling
	}
	if flags.Changed("seed") {
		plan.Seed = sweepPlan.Seed
	}
	if flags.Changed("workers") {
		plan.Workers = sweepPlan.Workers
	}
	return plan, plan.Validate()
}

func runSweep(cmd *cobra.Command, args []string) error {
	plan, err := resolvePlan(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("sweeping beta %g..%g over %d points (%d×%d, %d steps each)\n\n",
		plan.BetaMin, plan.BetaMax, plan.Points, plan.Size, plan.Size, plan.Steps)
	start := time.Now()

	points, err := sweep.Run(ctx, plan, logger)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "BETA\tT\tE/N\t|M|\tC\tCHI\tACCEPT")
	for _, p := range points {
		temp := math.Inf(1)
		if p.Beta != 0 {
			temp = 1 / p.Beta
		}
		fmt.Fprintf(w, "%.4f\t%.4f\t%.4f\t%.4f\t%.4f\t%.4f\t%.4f\n",
			p.Beta, temp, p.EnergyPerSpin, p.AbsMagnetization, p.SpecificHeat, p.Susceptibility, p.AcceptanceRate)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if len(points) > 1 {
		mags := make([]float64, len(points))
		for i, p := range points {
			mags[i] = p.AbsMagnetization
		}
		graph := asciigraph.Plot(mags,
			asciigraph.Height(10),
			asciigraph.Width(60),
			asciigraph.Caption(fmt.Sprintf("|m| vs beta (critical beta %.4f)", analysis.CriticalBeta)),
		)
		fmt.Println()
		fmt.Println(graph)
	}

	fmt.Printf("\ncompleted in %v\n", time.Since(start))

	if sweepOut != "" {
		data, err := yaml.Marshal(struct {
			Plan   sweep.Plan    `yaml:"plan"`
			Points []sweep.Point `yaml:"points"`
		}{plan, points})
		if err != nil {
			return err
		}
		if err := os.WriteFile(sweepOut, data, 0644); err != nil {
			return err
		}
		fmt.Printf("results written to %s\n", sweepOut)
	}

	return nil
}
