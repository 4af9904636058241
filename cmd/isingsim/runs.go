package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/san-kum/isingsim/internal/analysis"
	"github.com/san-kum/isingsim/internal/export"
	"github.com/san-kum/isingsim/internal/storage"
	"github.com/san-kum/isingsim/internal/viz"
)

var (
	listBetaMin float64
	listBetaMax float64
	listSize    int
	listLimit   int

	plotBurn      float64
	plotSVG       string
	themeName     string
	maxCells      int
	braille       bool
	snapshotScale int
)

func listFilter(cmd *cobra.Command) storage.Filter {
	f := storage.Filter{Size: listSize, Limit: listLimit}
	if cmd.Flags().Changed("beta-min") {
		lo := listBetaMin
		f.BetaMin = &lo
	}
	if cmd.Flags().Changed("beta-max") {
		hi := listBetaMax
		f.BetaMax = &hi
	}
	return f
}

func listRuns(cmd *cobra.Command, args []string) error {
	runs, err := findRuns(listFilter(cmd))
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}
	return printRuns(os.Stdout, runs)
}

// findRuns queries the catalog, or scans the file store when no catalog has
// been written yet or the query fails.
func findRuns(f storage.Filter) ([]storage.RunMetadata, error) {
	if _, err := os.Stat(filepath.Join(dataDir, catalogFile)); err == nil {
		runs, err := queryCatalog(f)
		if err == nil {
			return runs, nil
		}
		logger.Warn("catalog query failed, scanning run directories", "error", err)
	}

	all, err := storage.New(dataDir).List()
	if err != nil {
		return nil, err
	}
	runs := make([]storage.RunMetadata, 0, len(all))
	for _, r := range all {
		if !f.Match(r) {
			continue
		}
		runs = append(runs, r)
		if f.Limit > 0 && len(runs) == f.Limit {
			break
		}
	}
	return runs, nil
}

func queryCatalog(f storage.Filter) ([]storage.RunMetadata, error) {
	cat, err := openCatalog()
	if err != nil {
		return nil, err
	}
	defer cat.Close()

	recs, err := cat.Find(f)
	if err != nil {
		return nil, err
	}
	runs := make([]storage.RunMetadata, len(recs))
	for i, r := range recs {
		runs[i] = r.Metadata()
	}
	return runs, nil
}

func printRuns(out io.Writer, runs []storage.RunMetadata) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTIME\tSIZE\tSTEPS\tBETA\tINIT\tENERGY\tMAG\tACCEPT")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%.4f\t%s\t%g\t%+.4f\t%.4f\n",
			run.ID,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Size,
			run.Steps,
			run.Beta,
			run.Init,
			run.FinalEnergy,
			run.Magnetization,
			run.AcceptanceRate,
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	energy, err := st.LoadEnergy(runID)
	if err != nil {
		return err
	}
	if len(energy) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("size: %d  beta: %g  steps: %d\n\n", meta.Size, meta.Beta, meta.Steps)

	fmt.Println(viz.EnergyPlot(energy, 80, 12, "energy vs step"))
	fmt.Println()

	if plotSVG != "" {
		svg := export.TraceToSVG(energy, 800, 300, string(viz.CurrentTheme.Primary))
		if err := os.WriteFile(plotSVG, []byte(svg), 0644); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", plotSVG)
	}

	tail := analysis.Burn(energy, plotBurn)
	spins := float64(meta.Size * meta.Size)
	fmt.Printf("mean energy per spin: %.6f\n", analysis.Mean(tail)/spins)
	fmt.Printf("energy variance: %.6f\n", analysis.Variance(tail))
	fmt.Printf("integrated autocorrelation time: %.1f steps\n",
		analysis.IntegratedAutocorrTime(tail, min(len(tail)/10, 10_000)))

	return nil
}

func showRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	lat, err := st.LoadLattice(runID)
	if err != nil {
		return err
	}

	fmt.Printf("run: %s  magnetization: %+.4f\n\n", runID, lat.AverageMagnetization())
	if braille {
		fmt.Print(viz.BrailleLattice(lat))
		return nil
	}
	fmt.Print(viz.RenderLattice(lat, viz.GetTheme(themeName), maxCells))
	return nil
}

func exportCSV(cmd *cobra.Command, args []string) error {
	energy, err := storage.New(dataDir).LoadEnergy(args[0])
	if err != nil {
		return err
	}
	return export.EnergyCSV(os.Stdout, energy)
}

type runExport struct {
	Metadata *storage.RunMetadata `json:"metadata"`
	Energy   []float64            `json:"energy"`
	Lattice  [][]int              `json:"lattice,omitempty"`
}

func exportJSON(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	energy, err := st.LoadEnergy(runID)
	if err != nil {
		return err
	}

	out := runExport{Metadata: meta, Energy: energy}
	lat, err := st.LoadLattice(runID)
	switch {
	case err == nil:
		out.Lattice = lat.Rows()
	case !errors.Is(err, storage.ErrRunNotFound):
		return err
	}

	return export.JSON(os.Stdout, out)
}

func snapshotRun(cmd *cobra.Command, args []string) error {
	lat, err := storage.New(dataDir).LoadLattice(args[0])
	if err != nil {
		return err
	}
	out := args[1]
	if strings.EqualFold(filepath.Ext(out), ".svg") {
		svg := export.LatticeToSVG(lat, snapshotScale, viz.GetTheme(themeName))
		if err := os.WriteFile(out, []byte(svg), 0644); err != nil {
			return err
		}
	} else if err := storage.SaveSnapshot(out, lat, snapshotScale); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", args[1])
	return nil
}

func deleteRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	if _, err := st.Load(runID); err != nil {
		return err
	}
	if err := os.RemoveAll(st.Dir(runID)); err != nil {
		return err
	}

	if cat, err := openCatalog(); err == nil {
		defer cat.Close()
		if err := cat.Delete(runID); err != nil && !errors.Is(err, storage.ErrRunNotFound) {
			logger.Warn("catalog delete failed", "id", runID, "error", err)
		}
	}

	fmt.Printf("deleted %s\n", runID)
	return nil
}
