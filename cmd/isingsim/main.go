package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/san-kum/isingsim/internal/config"
	"github.com/san-kum/isingsim/internal/logging"
	"github.com/san-kum/isingsim/internal/metrics"
	"github.com/san-kum/isingsim/internal/rng"
	"github.com/san-kum/isingsim/internal/sampler"
	"github.com/san-kum/isingsim/internal/storage"
)

const catalogFile = "catalog.db"

var (
	dataDir  string
	logLevel string
	logFile  string
	logger   = logging.Discard()

	size     int
	steps    int
	beta     float64
	coupling float64
	seed     int64
	initMode string

	configFile string
	preset     string
	noSave     bool
	chains     int
)

// main registers the isingsim commands and executes the root command,
// exiting with status 1 on error.
func main() {
	rootCmd := &cobra.Command{
		Use:          "isingsim",
		Short:        "2D Ising model Metropolis sampler",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.DefaultConfig().Logging
			cfg.Level = logLevel
			cfg.File = logFile
			if err := cfg.Validate(); err != nil {
				return err
			}
			logger = logging.New(cfg)
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", config.DefaultDataDir, "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "also write JSON logs to this rotated file")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a Metropolis chain and store the result",
		Args:  cobra.NoArgs,
		RunE:  runSimulation,
	}
	addChainFlags(runCmd)
	runCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	runCmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	runCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the run")
	runCmd.Flags().IntVar(&chains, "chains", 1, "independent chains with derived seeds")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}
	listCmd.Flags().Float64Var(&listBetaMin, "beta-min", 0, "minimum beta")
	listCmd.Flags().Float64Var(&listBetaMax, "beta-max", 0, "maximum beta")
	listCmd.Flags().IntVar(&listSize, "size", 0, "lattice size")
	listCmd.Flags().IntVar(&listLimit, "limit", 0, "maximum number of runs")

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot the energy trace of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().Float64Var(&plotBurn, "burn", 0.5, "fraction of the trace dropped before statistics")
	plotCmd.Flags().StringVar(&plotSVG, "svg", "", "also write the trace to this SVG file")

	showCmd := &cobra.Command{
		Use:   "show [run_id]",
		Short: "draw the final lattice of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  showRun,
	}
	showCmd.Flags().StringVar(&themeName, "theme", "classic", "colour theme")
	showCmd.Flags().IntVar(&maxCells, "max-cells", 64, "maximum cells per side before block reduction")
	showCmd.Flags().BoolVar(&braille, "braille", false, "compact braille rendering")

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export the energy trace to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export metadata, trace and lattice to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	snapshotCmd := &cobra.Command{
		Use:   "snapshot [run_id] [out.png]",
		Short: "save the final lattice as an image (png, jpg or svg)",
		Args:  cobra.ExactArgs(2),
		RunE:  snapshotRun,
	}
	snapshotCmd.Flags().IntVar(&snapshotScale, "scale", 8, "pixels per spin")
	snapshotCmd.Flags().StringVar(&themeName, "theme", "classic", "colour theme (svg output)")

	deleteCmd := &cobra.Command{
		Use:   "delete [run_id]",
		Short: "remove a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  deleteRun,
	}

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "run chains over a range of beta",
		Args:  cobra.NoArgs,
		RunE:  runSweep,
	}
	addSweepFlags(sweepCmd)

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Args:  cobra.NoArgs,
		RunE:  listPresets,
	}

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "watch a chain evolve in the terminal",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}
	addChainFlags(liveCmd)
	liveCmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	liveCmd.Flags().StringVar(&themeName, "theme", "classic", "colour theme")

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "measure proposals per second",
		Args:  cobra.NoArgs,
		RunE:  benchSampler,
	}
	benchCmd.Flags().IntVar(&steps, "steps", 1_000_000, "proposals per measurement")

	rootCmd.AddCommand(runCmd, listCmd, plotCmd, showCmd, exportCSVCmd, exportJSONCmd,
		snapshotCmd, deleteCmd, sweepCmd, presetsCmd, liveCmd, benchCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addChainFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&size, "size", config.DefaultSize, "lattice edge length")
	cmd.Flags().IntVar(&steps, "steps", config.DefaultSteps, "number of steps")
	cmd.Flags().Float64Var(&beta, "beta", config.DefaultBeta, "inverse temperature")
	cmd.Flags().Float64Var(&coupling, "coupling", config.DefaultCoupling, "coupling constant J")
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed (default: wall clock)")
	cmd.Flags().StringVar(&initMode, "init", string(sampler.InitRandom), "initial lattice (random, up, down)")
}

// resolveConfig layers a preset, then a config file, then explicitly set
// flags over the defaults. Flags the command does not define are skipped.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		p := config.GetPreset(preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
		p.DataDir = cfg.DataDir
		p.Logging = cfg.Logging
		cfg = p
	}

	if configFile != "" {
		if err := config.LoadInto(configFile, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}

	changed := func(name string) bool {
		f := cmd.Flags().Lookup(name)
		return f != nil && f.Changed
	}
	if changed("size") {
		cfg.Size = size
	}
	if changed("steps") {
		cfg.Steps = steps
	}
	if changed("beta") {
		cfg.Beta = beta
	}
	if changed("coupling") {
		cfg.Coupling = coupling
	}
	if changed("init") {
		cfg.Init = initMode
	}
	if changed("seed") {
		cfg.Seed = seed
	} else if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}
	if configFile != "" && cfg.DataDir != "" && !changed("data") {
		dataDir = cfg.DataDir
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	scfg := cfg.SamplerConfig()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if chains != 1 {
		return runEnsemble(ctx, scfg, chains)
	}

	s := sampler.New()
	for _, m := range metrics.Defaults() {
		s.AddMetric(m)
	}

	fmt.Printf("running %d×%d lattice at beta=%g for %d steps...\n", scfg.Size, scfg.Size, scfg.Beta, scfg.Steps)
	logger.Info("run started", "size", scfg.Size, "steps", scfg.Steps, "beta", scfg.Beta, "seed", scfg.Seed)
	start := time.Now()

	result, err := s.Run(ctx, scfg)
	if err != nil {
		if result == nil || !errors.Is(err, context.Canceled) {
			return err
		}
		logger.Warn("run interrupted", "completed_steps", result.Steps)
		fmt.Printf("interrupted after %d steps\n", result.Steps)
	}
	elapsed := time.Since(start)
	logger.Info("run finished", "elapsed", elapsed, "accepted", result.Accepted)

	fmt.Printf("completed in %v\n", elapsed)
	if !noSave {
		id, err := saveRun(scfg, result)
		if err != nil {
			return err
		}
		fmt.Printf("run id: %s\n", id)
	}

	fmt.Printf("steps: %d\n", result.Steps)
	fmt.Printf("acceptance: %.4f\n", result.AcceptanceRate())
	fmt.Printf("final energy: %g\n", result.Energy[len(result.Energy)-1])
	fmt.Printf("magnetization: %+.4f\n", result.Magnetization())

	names := make([]string, 0, len(result.Metrics))
	for name := range result.Metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	fmt.Println("\nmetrics:")
	for _, name := range names {
		fmt.Printf("  %s: %.6f\n", name, result.Metrics[name])
	}

	return nil
}

// runEnsemble runs k chains concurrently; member m uses rng.Derive(seed, m).
func runEnsemble(ctx context.Context, scfg sampler.Config, k int) error {
	fmt.Printf("running %d chains of %d×%d lattice at beta=%g for %d steps...\n", k, scfg.Size, scfg.Size, scfg.Beta, scfg.Steps)
	logger.Info("ensemble started", "chains", k, "size", scfg.Size, "steps", scfg.Steps, "beta", scfg.Beta, "seed", scfg.Seed)
	start := time.Now()

	results, err := sampler.NewEnsemble(k, metrics.Defaults).Run(ctx, scfg)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)
	logger.Info("ensemble finished", "chains", k, "elapsed", elapsed)
	fmt.Printf("completed in %v\n", elapsed)

	members := make([]ensembleMember, len(results))
	for m, result := range results {
		mcfg := scfg
		mcfg.Seed = rng.Derive(scfg.Seed, m)
		members[m] = ensembleMember{Seed: mcfg.Seed, Result: result}
		if noSave {
			continue
		}
		id, err := saveRun(mcfg, result)
		if err != nil {
			return err
		}
		members[m].ID = id
	}

	return printEnsemble(os.Stdout, members)
}

type ensembleMember struct {
	ID     string
	Seed   int64
	Result *sampler.Result
}

func printEnsemble(out io.Writer, members []ensembleMember) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "MEMBER\tSEED\tRUN\tACCEPT\tENERGY\tMAG")

	for m, member := range members {
		id := member.ID
		if id == "" {
			id = "-"
		}
		r := member.Result
		fmt.Fprintf(w, "%d\t%d\t%s\t%.4f\t%g\t%+.4f\n",
			m,
			member.Seed,
			id,
			r.AcceptanceRate(),
			r.Energy[len(r.Energy)-1],
			r.Magnetization(),
		)
	}

	return w.Flush()
}

// saveRun writes the run to the file store and records it in the catalog.
// A catalog failure is logged and does not fail the run.
func saveRun(cfg sampler.Config, result *sampler.Result) (string, error) {
	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return "", err
	}

	meta := storage.NewMetadata(cfg, result)
	id, err := st.Save(&meta, result)
	if err != nil {
		return "", err
	}
	logger.Debug("run stored", "id", id, "dir", st.Dir(id))

	cat, err := openCatalog()
	if err != nil {
		logger.Warn("catalog unavailable", "error", err)
		return id, nil
	}
	defer cat.Close()

	if err := cat.Record(meta); err != nil {
		logger.Warn("catalog record failed", "id", id, "error", err)
	}
	return id, nil
}

func openCatalog() (*storage.Catalog, error) {
	return storage.OpenCatalog(filepath.Join(dataDir, catalogFile))
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tSIZE\tSTEPS\tBETA\tINIT")
	for _, name := range config.ListPresets() {
		p := config.GetPreset(name)
		fmt.Fprintf(w, "%s\t%d\t%d\t%g\t%s\n", name, p.Size, p.Steps, p.Beta, p.Init)
	}
	return w.Flush()
}
