// Command autotune drives the auto-tuning pairwise interaction engine from
// the shell: run a scenario to completion, benchmark it, watch it tune live,
// or inspect a past run's saved metadata. Grounded on cmd/dynsim/main.go's
// cobra command registration shape and its text/tabwriter table rendering
// in list/bench.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/cellgrid/autotune/internal/automation"
	"github.com/cellgrid/autotune/internal/config"
	"github.com/cellgrid/autotune/internal/experiment"
	"github.com/cellgrid/autotune/internal/export"
	"github.com/cellgrid/autotune/internal/optim"
	"github.com/cellgrid/autotune/internal/store"
	"github.com/cellgrid/autotune/internal/tui"
)

var (
	dataDir     string
	preset      string
	presetGrp   string
	configFile  string
	steps       int
	svgOut      string
	sweepParam  string
	sweepValues []float64
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "autotune",
		Short: "auto-tuning short-range pairwise interaction engine",
	}
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".autotune", "run metadata directory")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a scenario to completion and save its metadata",
		RunE:  runScenario,
	}
	addScenarioFlags(runCmd)
	runCmd.Flags().StringVar(&svgOut, "svg", "", "write a final particle snapshot to this SVG path")

	tuneCmd := &cobra.Command{
		Use:   "tui",
		Short: "run a scenario with the live tuning dashboard",
		RunE:  runTUI,
	}
	addScenarioFlags(tuneCmd)

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "benchmark a scenario across step counts",
		RunE:  runBench,
	}
	addScenarioFlags(benchCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list saved runs",
		RunE:  listRuns,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "print a saved run's metadata as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets [group]",
		Short: "list available presets for a scenario group (default lj-fluid)",
		Args:  cobra.MaximumNArgs(1),
		RunE:  listPresets,
	}

	scenarioCmd := &cobra.Command{
		Use:   "scenario <file.yaml>",
		Short: "run a scripted sequence of scenario steps from a YAML file",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenarioScript,
	}

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "grid-search a continuous config parameter (skin or cutoff) for lowest mean step time",
		RunE:  runSweep,
	}
	addScenarioFlags(sweepCmd)
	sweepCmd.Flags().StringVar(&sweepParam, "param", "skin", "parameter to sweep: skin or cutoff")
	sweepCmd.Flags().Float64SliceVar(&sweepValues, "values", []float64{0.1, 0.2, 0.3, 0.4, 0.5}, "values to try")

	rootCmd.AddCommand(runCmd, tuneCmd, benchCmd, listCmd, exportCmd, presetsCmd, scenarioCmd, sweepCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func addScenarioFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&preset, "preset", "dense", "preset name within the scenario group")
	cmd.Flags().StringVar(&presetGrp, "group", "lj-fluid", "scenario group the preset belongs to")
	cmd.Flags().StringVar(&configFile, "config", "", "YAML config file (overrides --preset/--group)")
	cmd.Flags().IntVar(&steps, "steps", 200, "engine iterations to run")
}

func loadScenarioConfig() (*config.Config, error) {
	if configFile != "" {
		return config.Load(configFile)
	}
	cfg := config.GetPreset(presetGrp, preset)
	if cfg == nil {
		return nil, fmt.Errorf("unknown preset %q in group %q (available: %v)", preset, presetGrp, config.ListPresets(presetGrp))
	}
	return cfg, nil
}

func runScenario(cmd *cobra.Command, args []string) error {
	cfg, err := loadScenarioConfig()
	if err != nil {
		return err
	}

	exp, err := experiment.New(cfg, true)
	if err != nil {
		return err
	}
	if err := exp.SeedUniformRandom(); err != nil {
		return err
	}

	fmt.Printf("running %d steps over %d particles (box %v, cutoff %.2f, skin %.2f)...\n",
		steps, cfg.ParticleCount, cfg.Box, cfg.Cutoff, cfg.Skin)

	start := time.Now()
	result, err := exp.Run(context.Background(), steps)
	elapsed := time.Since(start)
	if err != nil {
		return err
	}

	st := store.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	runID, err := st.Save(presetGrp+"/"+preset, cfg.Seed, cfg.Tuner.Strategy, result, exp.LogEntries())
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("steps taken: %d, errors: %d\n", result.StepsTaken, len(result.Errors))
	if tunedCfg, ok := exp.Tuner.Current(); ok {
		fmt.Printf("final configuration: %s\n", tunedCfg)
	}

	if svgOut != "" {
		doc := export.Snapshot(exp.Engine.Active(), cfg.Box.ToBox(), nil, 800, 800)
		if err := os.WriteFile(svgOut, []byte(doc), 0644); err != nil {
			return fmt.Errorf("writing snapshot: %w", err)
		}
		fmt.Printf("snapshot written to %s\n", svgOut)
	}

	return nil
}

func runTUI(cmd *cobra.Command, args []string) error {
	cfg, err := loadScenarioConfig()
	if err != nil {
		return err
	}
	exp, err := experiment.New(cfg, true)
	if err != nil {
		return err
	}
	if err := exp.SeedUniformRandom(); err != nil {
		return err
	}

	m := tui.New(exp, steps)
	p := tea.NewProgram(m)
	_, err = p.Run()
	return err
}

func runBench(cmd *cobra.Command, args []string) error {
	cfg, err := loadScenarioConfig()
	if err != nil {
		return err
	}

	stepCounts := []int{50, 200, 500}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STEPS\tPARTICLES\tTIME\tSTEPS/SEC\tFINAL_CONFIG")

	for _, n := range stepCounts {
		exp, err := experiment.New(cfg, false)
		if err != nil {
			return err
		}
		if err := exp.SeedUniformRandom(); err != nil {
			return err
		}

		start := time.Now()
		result, err := exp.Run(context.Background(), n)
		elapsed := time.Since(start)
		if err != nil {
			return err
		}

		var final string
		if len(result.Configs) > 0 {
			final = result.Configs[len(result.Configs)-1].String()
		}
		fmt.Fprintf(w, "%d\t%d\t%v\t%.1f\t%s\n",
			n, cfg.ParticleCount, elapsed, float64(n)/elapsed.Seconds(), final)
	}

	return w.Flush()
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := store.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSCENARIO\tTIME\tSTRATEGY\tSTEPS\tCONFIG\tERRORS")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\t%d\n",
			run.ID, run.Scenario, run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Strategy, run.StepsTaken, run.FinalConfig, run.ErrorCount)
	}
	return w.Flush()
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := store.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func runScenarioScript(cmd *cobra.Command, args []string) error {
	scenario, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("running scenario %q: %s\n", scenario.Name, scenario.Description)
	results, err := automation.RunScenario(context.Background(), scenario)
	if err != nil {
		return err
	}

	st := store.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STEP\tSTEPS_TAKEN\tERRORS\tRUN_ID")
	for i, r := range results {
		label := r.Step.SaveAs
		if label == "" {
			label = fmt.Sprintf("step-%d", i+1)
		}
		runID, err := st.Save(scenario.Name+"/"+label, r.Exp.Config.Seed, r.Exp.Config.Tuner.Strategy, r.Result, r.Exp.LogEntries())
		if err != nil {
			return fmt.Errorf("saving step %d: %w", i+1, err)
		}
		fmt.Fprintf(w, "%s\t%d\t%d\t%s\n", label, r.Result.StepsTaken, len(r.Result.Errors), runID)
	}
	return w.Flush()
}

func runSweep(cmd *cobra.Command, args []string) error {
	base, err := loadScenarioConfig()
	if err != nil {
		return err
	}

	if sweepParam != "cutoff" {
		sweepParam = "skin"
	}
	apply := func(cfg *config.Config, name string, v float64) {
		switch name {
		case "cutoff":
			cfg.Cutoff = v
		default:
			cfg.Skin = v
		}
	}

	search := optim.NewGridSearch([]string{sweepParam}, [][]float64{sweepValues}, apply)

	score := func(exp *experiment.Experiment, elapsed time.Duration) float64 {
		return elapsed.Seconds() / float64(steps)
	}

	start := time.Now()
	best, all, err := search.Search(context.Background(), base, steps, score)
	elapsed := time.Since(start)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tSCORE\n", sweepParam)
	for _, r := range all {
		fmt.Fprintf(w, "%v\t%.4f\n", r.Params[sweepParam], r.Score)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Printf("best %s = %v (score %.4f), search took %v\n", sweepParam, best.Params[sweepParam], best.Score, elapsed)
	return nil
}

func listPresets(cmd *cobra.Command, args []string) error {
	group := "lj-fluid"
	if len(args) > 0 {
		group = args[0]
	}
	names := config.ListPresets(group)
	if len(names) == 0 {
		fmt.Printf("no presets for group: %s\n", group)
		return nil
	}
	fmt.Printf("presets for %s:\n", group)
	for _, n := range names {
		fmt.Printf("  %s\n", n)
	}
	return nil
}
