package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/san-kum/isingsim/internal/analysis"
	"github.com/san-kum/isingsim/internal/sampler"
	"github.com/san-kum/isingsim/internal/viz"
)

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	viz.SetTheme(themeName)

	m, err := viz.NewLiveModel(cfg.SamplerConfig())
	if err != nil {
		return err
	}

	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
}

func benchSampler(cmd *cobra.Command, args []string) error {
	sizes := []int{16, 32, 64, 128}
	betas := []float64{0.2, analysis.CriticalBeta, 1.0}

	fmt.Printf("benchmarking %d proposals per configuration\n\n", steps)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SIZE\tBETA\tSTEPS\tTIME\tSTEPS/SEC\tACCEPT")

	for _, n := range sizes {
		for _, b := range betas {
			cfg := sampler.DefaultConfig()
			cfg.Size = n
			cfg.Steps = steps
			cfg.Beta = b
			cfg.Seed = 42

			start := time.Now()
			result, err := sampler.New().Run(context.Background(), cfg)
			if err != nil {
				return err
			}
			elapsed := time.Since(start)

			fmt.Fprintf(w, "%d\t%.4f\t%d\t%v\t%.0f\t%.4f\n",
				n, b, result.Steps, elapsed, float64(result.Steps)/elapsed.Seconds(), result.AcceptanceRate())
		}
	}

	return w.Flush()
}
