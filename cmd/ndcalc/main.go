package main

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/san-kum/ndcalc/internal/calculus"
	"github.com/san-kum/ndcalc/internal/config"
	"github.com/san-kum/ndcalc/internal/metrics"
	"github.com/san-kum/ndcalc/internal/ndarray"
	"github.com/san-kum/ndcalc/internal/optim"
	"github.com/san-kum/ndcalc/internal/storage"
	"github.com/san-kum/ndcalc/internal/viz"
	"github.com/spf13/cobra"
)

var (
	dataDir    string
	verbose    bool
	configFile string
	preset     string
	step       float64
	lower      float64
	upper      float64
	quadrature string
	parallel   bool
	samples    int
	point      []float64
	rawArgs    []string
	levels     int
	tolerance  float64

	logger   = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	registry = calculus.NewRegistry()
)

// main registers the ndcalc commands and exits with status 1 on error.
func main() {
	rootCmd := &cobra.Command{
		Use:          "ndcalc",
		Short:        "numeric differentiation and integration over n-d arrays",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelWarn
			if verbose {
				level = slog.LevelDebug
			}
			logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".ndcalc", "data directory")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging on stderr")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list built-in functions",
		RunE:  listFunctions,
	}

	evalCmd := &cobra.Command{
		Use:   "eval [function]",
		Short: "evaluate a function",
		Args:  cobra.ExactArgs(1),
		RunE:  evalFunction,
	}
	evalCmd.Flags().StringArrayVar(&rawArgs, "arg", nil, "argument value or comma-separated array (repeat per argument)")

	diffCmd := &cobra.Command{
		Use:   "diff [function]",
		Short: "forward-difference gradient",
		Args:  cobra.ExactArgs(1),
		RunE:  diffFunction,
	}
	diffCmd.Flags().StringArrayVar(&rawArgs, "arg", nil, "argument value or comma-separated array (repeat per argument)")
	addNumericFlags(diffCmd)

	integrateCmd := &cobra.Command{
		Use:   "integrate [function]",
		Short: "riemann-sum integral over [lower, upper)",
		Args:  cobra.MaximumNArgs(1),
		RunE:  integrateFunction,
	}
	addNumericFlags(integrateCmd)
	addRangeFlags(integrateCmd)

	runCmd := &cobra.Command{
		Use:   "run [function]",
		Short: "sample f, its gradient and its integral and store the run",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSampling,
	}
	addNumericFlags(runCmd)
	addRangeFlags(runCmd)
	runCmd.Flags().IntVar(&samples, "samples", config.DefaultSamples, "maximum stored rows")

	runsCmd := &cobra.Command{
		Use:   "runs",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return storage.New(dataDir).ExportJSON(os.Stdout, args[0])
		},
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run samples to CSV",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return storage.New(dataDir).ExportCSV(os.Stdout, args[0])
		},
	}

	presetsCmd := &cobra.Command{
		Use:   "presets [function]",
		Short: "list available presets",
		Args:  cobra.MaximumNArgs(1),
		RunE:  listPresets,
	}

	exploreCmd := &cobra.Command{
		Use:   "explore [function]",
		Short: "interactively tune the step size",
		Args:  cobra.MaximumNArgs(1),
		RunE:  explore,
	}
	addNumericFlags(exploreCmd)
	addRangeFlags(exploreCmd)
	exploreCmd.Flags().Float64SliceVar(&point, "point", nil, "gradient evaluation point")

	sweepCmd := &cobra.Command{
		Use:   "sweep [function]",
		Short: "integral convergence over halving step sizes",
		Args:  cobra.MaximumNArgs(1),
		RunE:  sweepSteps,
	}
	addNumericFlags(sweepCmd)
	addRangeFlags(sweepCmd)
	sweepCmd.Flags().IntVar(&levels, "levels", 6, "number of step sizes")
	sweepCmd.Flags().Float64Var(&tolerance, "tol", 1e-3, "convergence tolerance")

	rootCmd.AddCommand(listCmd, evalCmd, diffCmd, integrateCmd, runCmd, runsCmd, plotCmd, exportJSONCmd, exportCSVCmd, presetsCmd, exploreCmd, sweepCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addNumericFlags(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&step, "step", calculus.DefaultStep, "finite-difference and riemann step")
	cmd.Flags().BoolVar(&parallel, "parallel", false, "evaluate partial derivatives concurrently")
}

func addRangeFlags(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&lower, "lower", config.DefaultLower, "lower integration bound")
	cmd.Flags().Float64Var(&upper, "upper", config.DefaultUpper, "upper integration bound (exclusive)")
	cmd.Flags().StringVar(&quadrature, "quadrature", config.DefaultQuadrature, "diagonal or nested")
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
}

// resolveConfig layers defaults, preset, config file and explicitly set
// flags, in that order.
func resolveConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if len(args) > 0 {
		cfg.Function = args[0]
	}

	if preset != "" {
		p := config.GetPreset(cfg.Function, preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets(cfg.Function))
		}
		cfg = p
		logger.Debug("applied preset", "function", cfg.Function, "preset", preset)
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		if len(args) > 0 && loaded.Function != args[0] {
			logger.Warn("config function overridden by argument", "config", loaded.Function, "arg", args[0])
			loaded.Function = args[0]
		}
		cfg = loaded
		logger.Debug("loaded config", "path", configFile)
	}

	flags := cmd.Flags()
	if flags.Changed("step") {
		cfg.Step = step
	}
	if flags.Changed("parallel") {
		cfg.Parallel = parallel
	}
	if flags.Changed("lower") {
		cfg.Lower = lower
	}
	if flags.Changed("upper") {
		cfg.Upper = upper
	}
	if flags.Changed("quadrature") {
		cfg.Quadrature = quadrature
	}
	if flags.Changed("samples") {
		cfg.Samples = samples
	}
	if flags.Changed("point") {
		cfg.Point = point
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func lookup(cfg *config.Config) (*calculus.Function, error) {
	f, err := registry.Get(cfg.Function, cfg.Options()...)
	if err != nil {
		return nil, err
	}
	logger.Debug("resolved function", "name", cfg.Function, "arity", f.Arity(), "step", f.Step(), "quadrature", f.Quadrature())
	return f, nil
}

func listFunctions(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tARITY\tDESCRIPTION")
	for _, name := range registry.List() {
		arity, desc, _ := registry.Describe(name)
		fmt.Fprintf(w, "%s\t%d\t%s\n", name, arity, desc)
	}
	return w.Flush()
}

// parseOperands turns each --arg value into a Scalar or a 1-D array.
func parseOperands(raw []string) ([]ndarray.Operand, error) {
	out := make([]ndarray.Operand, 0, len(raw))
	for _, r := range raw {
		fields := strings.Split(r, ",")
		values := make([]float64, 0, len(fields))
		for _, field := range fields {
			v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
			if err != nil {
				return nil, fmt.Errorf("invalid argument %q: %w", r, err)
			}
			values = append(values, v)
		}
		if len(values) == 1 {
			out = append(out, ndarray.Scalar(values[0]))
			continue
		}
		arr, err := ndarray.FromFlat([]int{len(values)}, values)
		if err != nil {
			return nil, err
		}
		out = append(out, arr)
	}
	return out, nil
}

func evalFunction(cmd *cobra.Command, args []string) error {
	f, err := registry.Get(args[0])
	if err != nil {
		return err
	}
	operands, err := parseOperands(rawArgs)
	if err != nil {
		return err
	}

	out, err := f.Call(operands...)
	if err != nil {
		return fmt.Errorf("eval %s: %w", args[0], err)
	}
	fmt.Println(out)
	return nil
}

func diffFunction(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}
	f, err := lookup(cfg)
	if err != nil {
		return err
	}
	operands, err := parseOperands(rawArgs)
	if err != nil {
		return err
	}

	out, err := f.Differentiate().Call(operands...)
	if err != nil {
		return fmt.Errorf("diff %s: %w", cfg.Function, err)
	}
	fmt.Println(out)
	return nil
}

func integrateFunction(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}
	f, err := lookup(cfg)
	if err != nil {
		return err
	}

	out, err := f.Integrate().CallValues(cfg.Lower, cfg.Upper)
	if err != nil {
		return fmt.Errorf("integrate %s: %w", cfg.Function, err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "function\t%s\n", cfg.Function)
	fmt.Fprintf(w, "quadrature\t%s\n", cfg.Quadrature)
	fmt.Fprintf(w, "bounds\t[%g, %g)\n", cfg.Lower, cfg.Upper)
	fmt.Fprintf(w, "step\t%g\n", cfg.Step)
	fmt.Fprintf(w, "value\t%.6f\n", calculus.Final(out))
	return w.Flush()
}

func runSampling(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}
	f, err := lookup(cfg)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	table, err := calculus.Tabulate(f, cfg.Lower, cfg.Upper, cfg.Samples)
	if err != nil {
		return fmt.Errorf("sample %s: %w", cfg.Function, err)
	}

	summary := metrics.Summarize(table, metrics.Defaults()...)
	summary["rows"] = float64(len(table.Rows))
	if col, ok := table.Column("F"); ok && len(col) > 0 {
		summary["diagonal_integral"] = col[len(col)-1]
	}
	if cfg.Quadrature == calculus.Nested.String() {
		out, err := f.Integrate().CallValues(cfg.Lower, cfg.Upper)
		if err != nil {
			return fmt.Errorf("integrate %s: %w", cfg.Function, err)
		}
		summary["nested_integral"] = calculus.Final(out)
	}

	runID, err := st.Save(storage.RunMetadata{
		Function:   cfg.Function,
		Arity:      f.Arity(),
		Step:       cfg.Step,
		Lower:      cfg.Lower,
		Upper:      cfg.Upper,
		Quadrature: cfg.Quadrature,
		Parallel:   cfg.Parallel,
		Summary:    summary,
	}, table)
	if err != nil {
		return err
	}
	logger.Info("stored run", "id", runID, "rows", len(table.Rows))

	fmt.Printf("run: %s\n", runID)
	for _, k := range []string{"diagonal_integral", "nested_integral"} {
		if v, ok := summary[k]; ok {
			fmt.Printf("%s: %.6f\n", k, v)
		}
	}
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	runs, err := storage.New(dataDir).List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tFUNCTION\tTIME\tSTEP\tBOUNDS\tQUADRATURE")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%g\t[%g, %g)\t%s\n",
			run.ID,
			run.Function,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Step,
			run.Lower, run.Upper,
			run.Quadrature,
		)
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	table, err := st.LoadTable(args[0])
	if err != nil {
		return err
	}
	if len(table.Rows) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("function: %s\n", meta.Function)
	fmt.Printf("samples: %d\n\n", len(table.Rows))
	return viz.PlotTable(os.Stdout, table)
}

func listPresets(cmd *cobra.Command, args []string) error {
	names := registry.List()
	if len(args) > 0 {
		names = args
	}
	for _, name := range names {
		presets := config.ListPresets(name)
		if len(presets) == 0 {
			continue
		}
		fmt.Printf("%s:\n", name)
		for _, p := range presets {
			fmt.Printf("  %s\n", p)
		}
	}
	return nil
}

func explore(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}
	f, err := lookup(cfg)
	if err != nil {
		return err
	}

	m := viz.NewExplorer(cfg.Function, f, cfg.GetPoint(f.Arity()), cfg.Lower, cfg.Upper)
	if _, err := tea.NewProgram(m).Run(); err != nil {
		return err
	}
	return nil
}

func sweepSteps(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}
	f, err := lookup(cfg)
	if err != nil {
		return err
	}
	if levels < 1 {
		return fmt.Errorf("levels must be at least 1, got %d", levels)
	}

	integral := func(ctx context.Context, g *calculus.Function) (float64, error) {
		out, err := g.Integrate().CallValues(cfg.Lower, cfg.Upper)
		if err != nil {
			return 0, err
		}
		return calculus.Final(out), nil
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	points, err := optim.NewStepSweep(optim.Halving(cfg.Step, levels)).Run(ctx, f, integral)
	if err != nil {
		return fmt.Errorf("sweep %s: %w", cfg.Function, err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STEP\tVALUE\tCHANGE")
	for _, p := range points {
		change := "-"
		if !math.IsNaN(p.Change) {
			change = fmt.Sprintf("%.3e", p.Change)
		}
		fmt.Fprintf(w, "%g\t%.6f\t%s\n", p.Step, p.Value, change)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if p, ok := optim.Converged(points, tolerance); ok {
		fmt.Printf("converged at step %g (change %.3e <= %g)\n", p.Step, p.Change, tolerance)
	} else {
		fmt.Printf("not converged within tolerance %g\n", tolerance)
	}
	return nil
}
