package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/idlab-discover/mchsim-cli/internal/apperr"
	"github.com/idlab-discover/mchsim-cli/internal/config"
	"github.com/idlab-discover/mchsim-cli/internal/demographics"
	bomio "github.com/idlab-discover/mchsim-cli/internal/io"
	"github.com/idlab-discover/mchsim-cli/internal/manifest"
	"github.com/idlab-discover/mchsim-cli/internal/report"
	"github.com/idlab-discover/mchsim-cli/internal/simulation"
	"github.com/idlab-discover/mchsim-cli/internal/store"
	"github.com/idlab-discover/mchsim-cli/internal/ui"
)

var (
	runInputs    []string
	runScenarios []string
	runOutput    string
	runFormat    string
	runDB        string
	runLabel     string
	runManifest  string
	runSpec      string
	runLogLevel  string
	runForce     bool

	runWeeks    int
	runSeed     uint64
	runCoverage float64
	runWorkers  int
	runReseed   bool

	// runInteractive opens the parameter form and scenario selector
	runInteractive bool
)

// Output task names shown in the run workflow.
const (
	taskSave     = "Saving run"
	taskResults  = "Writing results"
	taskManifest = "Writing manifest"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Simulate intervention scenarios over commune population data",
	Long: "Builds the maternal, child and CHW population of every commune in the input CSV(s), runs each scenario " +
		"for the configured number of weeks and writes the monthly metric records. Without --scenario all six " +
		"built-in scenarios run. Use --interactive to pick scenarios and parameters.",
	Example: `  mchsim run -i data/communes.csv
  mchsim run -i data/communes.csv -s baseline -s sms+chw --weeks 12
  mchsim run -i data/communes.csv -o dist/results.json --manifest dist/run.cdx.json --db mchsim.db`,
	RunE: runRun,
}

func runRun(cmd *cobra.Command, args []string) error {
	level, err := logLevel("run")
	if err != nil {
		return err
	}
	quiet := level == "quiet"
	wireLoggers(level, cmd.ErrOrStderr())

	cfg, err := config.FromViper(viper.GetViper())
	if err != nil {
		return apperr.Userf("invalid configuration: %v", err)
	}

	inputs := cleanList(viper.GetStringSlice("run.inputs"))
	if len(inputs) == 0 {
		return apperr.User("at least one --input demographics CSV is required")
	}

	interactiveMode := viper.GetBool("run.interactive")
	scenarioFlagProvided := cmd.Flags().Changed("scenario")
	names := cleanList(viper.GetStringSlice("run.scenarios"))

	if interactiveMode {
		if scenarioFlagProvided {
			return apperr.User("--interactive cannot be used with --scenario")
		}
		params := ui.RunParameters{
			Weeks:    cfg.Simulation.Weeks,
			Seed:     cfg.Simulation.Seed,
			Coverage: cfg.Interventions.Coverage,
		}
		if err := ui.RunParameterForm(&params); err != nil {
			return err
		}
		cfg.Simulation.Weeks = params.Weeks
		cfg.Simulation.Seed = params.Seed
		cfg.Interventions.Coverage = params.Coverage
		if err := cfg.Validate(); err != nil {
			return apperr.Userf("invalid configuration: %v", err)
		}

		names, err = ui.RunScenarioSelector(scenarioOptions(simulation.Builtin()))
		if err != nil {
			return err
		}
		if len(names) == 0 {
			return apperr.User("no scenarios selected")
		}
	}

	scenarios, err := parseScenarios(names)
	if err != nil {
		return err
	}

	output := viper.GetString("run.output")
	format := viper.GetString("run.format")
	if format == "" {
		format = "auto"
	}
	manifestPath := viper.GetString("run.manifest")
	dbPath := viper.GetString("run.db")

	for _, p := range []string{output, manifestPath} {
		if err := checkOverwrite(p, viper.GetBool("run.force"), interactiveMode); err != nil {
			return err
		}
	}

	rows, err := demographics.Load(inputs...)
	if err != nil {
		var ie *demographics.InputError
		if errors.As(err, &ie) {
			return apperr.Userf("%w", err)
		}
		return err
	}

	var outputs []string
	if dbPath != "" {
		outputs = append(outputs, taskSave)
	}
	if output != "" {
		outputs = append(outputs, taskResults)
	}
	if manifestPath != "" {
		outputs = append(outputs, taskManifest)
	}

	scenarioNames := make([]string, len(scenarios))
	for i, sc := range scenarios {
		scenarioNames[i] = sc.Name
	}

	runUI := ui.NewRunUI(cmd.OutOrStdout(), quiet)
	runUI.StartWorkflow(scenarioNames, outputs)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var current string
	onProgress := func(evt simulation.ProgressEvent) {
		switch evt.Type {
		case simulation.EventBuildStart:
			runUI.StartBuilding(evt.Communes)
		case simulation.EventBuildComplete:
			runUI.CompleteBuilding(evt.Communes)
		case simulation.EventScenarioStart:
			current = evt.Scenario
			runUI.StartScenario(evt.Scenario, evt.Weeks)
		case simulation.EventWeekComplete:
			runUI.UpdateScenario(evt.Scenario, evt.Week, evt.Weeks)
		case simulation.EventScenarioComplete:
			runUI.CompleteScenario(evt.Scenario, evt.Message)
		}
	}

	sim, err := simulation.New(cfg, rows, simulation.Options{OnProgress: onProgress})
	if err != nil {
		runUI.FinishWorkflow()
		return err
	}

	results, err := sim.RunScenarios(ctx, scenarios, cfg.Simulation.Weeks)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			runUI.FailScenario(current, "interrupted")
			runUI.FinishWorkflow()
			return apperr.ErrCancelled
		}
		runUI.FailScenario(current, err.Error())
		runUI.FinishWorkflow()
		return err
	}

	summary := ui.RunSummary{
		Seed:      cfg.Simulation.Seed,
		Weeks:     cfg.Simulation.Weeks,
		Scenarios: len(scenarios),
		Communes:  len(sim.Communes()),
		Records:   results.Len(),
	}

	runID := ""
	if dbPath != "" {
		saved, err := saveRun(ctx, dbPath, cfg, results, store.SaveOptions{
			Label:  viper.GetString("run.label"),
			Inputs: inputs,
		})
		if err != nil {
			runUI.FailOutput(taskSave, err.Error())
			runUI.FinishWorkflow()
			return err
		}
		runID = saved.ID
		runUI.CompleteOutput(taskSave, shortID(runID))
		summary.Outputs = append(summary.Outputs, "Database: "+dbPath)
	}
	if runID == "" {
		runID = uuid.NewString()
	}
	summary.RunID = runID

	if output != "" {
		if err := ensureDir(output); err != nil {
			runUI.FailOutput(taskResults, err.Error())
			runUI.FinishWorkflow()
			return err
		}
		if err := bomio.WriteRecords(results.Records(), output, format); err != nil {
			runUI.FailOutput(taskResults, err.Error())
			runUI.FinishWorkflow()
			return err
		}
		runUI.CompleteOutput(taskResults, fmt.Sprintf("%d record(s)", results.Len()))
		summary.Outputs = append(summary.Outputs, "Results: "+output)
	}

	if manifestPath != "" {
		bom, err := manifest.Build(manifest.Run{
			ID:        runID,
			Config:    cfg,
			Scenarios: results.Scenarios(),
			Inputs:    inputs,
			Records:   results.Len(),
			Time:      time.Now(),
		})
		if err == nil {
			err = ensureDir(manifestPath)
		}
		if err == nil {
			err = bomio.WriteBOM(bom, manifestPath, "auto", viper.GetString("run.spec"))
		}
		if err != nil {
			runUI.FailOutput(taskManifest, err.Error())
			runUI.FinishWorkflow()
			return err
		}
		runUI.CompleteOutput(taskManifest, filepath.Base(manifestPath))
		summary.Outputs = append(summary.Outputs, "Manifest: "+manifestPath)
	}

	runUI.FinishWorkflow()

	if n := sim.UnresolvedMothers(); n > 0 {
		summary.Warnings = append(summary.Warnings, fmt.Sprintf("%d child care attempt(s) skipped: mother not found", n))
	}

	if !quiet {
		ui.NewSummaryUI(cmd.OutOrStdout(), false).PrintReport(toSummaryReport("run "+shortID(runID), report.Summarize(results.Records())))
	}
	runUI.PrintSummary(summary)
	return nil
}

func saveRun(ctx context.Context, path string, cfg config.Config, results *simulation.Results, opts store.SaveOptions) (store.Run, error) {
	if err := ensureDir(path); err != nil {
		return store.Run{}, err
	}
	st, err := store.Open(path)
	if err != nil {
		return store.Run{}, err
	}
	defer st.Close()
	return st.SaveRun(ctx, cfg, results, opts)
}

// parseScenarios resolves scenario names, defaulting to every built-in one.
func parseScenarios(names []string) ([]simulation.Scenario, error) {
	if len(names) == 0 {
		return simulation.Builtin(), nil
	}
	seen := make(map[string]bool, len(names))
	out := make([]simulation.Scenario, 0, len(names))
	for _, n := range names {
		sc, err := simulation.ParseScenario(n)
		if err != nil {
			return nil, apperr.Userf("%w", err)
		}
		if seen[sc.Name] {
			return nil, apperr.Userf("scenario %q given more than once", sc.Name)
		}
		seen[sc.Name] = true
		out = append(out, sc)
	}
	return out, nil
}

func scenarioOptions(scenarios []simulation.Scenario) []ui.ScenarioOption {
	out := make([]ui.ScenarioOption, len(scenarios))
	for i, sc := range scenarios {
		ivs := make([]string, len(sc.Interventions))
		for j, iv := range sc.Interventions {
			ivs[j] = string(iv)
		}
		out[i] = ui.ScenarioOption{Name: sc.Name, Interventions: ivs}
	}
	return out
}

// checkOverwrite refuses to replace an existing file unless forced or
// confirmed interactively.
func checkOverwrite(path string, force, interactive bool) error {
	if path == "" || force {
		return nil
	}
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	if !interactive {
		return apperr.Userf("%s already exists (use --force to overwrite)", path)
	}
	ok, err := ui.ConfirmOverwrite(path)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.ErrCancelled
	}
	return nil
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "" || dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

func cleanList(values []string) []string {
	var out []string
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func init() {
	defaults := config.Default()

	runCmd.Flags().StringSliceVarP(&runInputs, "input", "i", []string{}, "Demographics CSV file(s) - can be used multiple times or comma-separated")
	runCmd.Flags().StringSliceVarP(&runScenarios, "scenario", "s", []string{}, "Scenario(s) to run: "+strings.Join(simulation.BuiltinNames(), "|")+" or interventions joined with '+' (default all built-in)")
	runCmd.Flags().StringVarP(&runOutput, "output", "o", "", "Write metric records to this file")
	runCmd.Flags().StringVarP(&runFormat, "format", "f", "", "Records format: csv|json|yaml|auto")
	runCmd.Flags().StringVar(&runDB, "db", "", "Save the run to this SQLite database")
	runCmd.Flags().StringVar(&runLabel, "label", "", "Label stored with the run")
	runCmd.Flags().StringVar(&runManifest, "manifest", "", "Write a CycloneDX run manifest (json or xml by extension)")
	runCmd.Flags().StringVar(&runSpec, "spec", "", "CycloneDX spec version for the manifest (e.g., 1.4, 1.5, 1.6)")
	runCmd.Flags().BoolVar(&runForce, "force", false, "Overwrite existing output files")
	runCmd.Flags().StringVar(&runLogLevel, "log-level", "", "Log level: quiet|standard|debug")
	runCmd.Flags().BoolVar(&runInteractive, "interactive", false, "Choose parameters and scenarios interactively (cannot be used with --scenario)")

	// Simulation parameters default to the calibrated values so that an
	// unchanged flag never masks the config file.
	runCmd.Flags().IntVar(&runWeeks, "weeks", defaults.Simulation.Weeks, "Number of simulated weeks")
	runCmd.Flags().Uint64Var(&runSeed, "seed", defaults.Simulation.Seed, "Random seed")
	runCmd.Flags().Float64Var(&runCoverage, "coverage", defaults.Interventions.Coverage, "Fraction of eligible agents reached by an intervention")
	runCmd.Flags().IntVar(&runWorkers, "workers", defaults.Simulation.Workers, "Communes stepped concurrently")
	runCmd.Flags().BoolVar(&runReseed, "reseed-per-scenario", defaults.Simulation.ReseedPerScenario, "Restart the generator from the seed before every scenario")

	// Bind all flags to viper for config file support
	viper.BindPFlag("run.inputs", runCmd.Flags().Lookup("input"))
	viper.BindPFlag("run.scenarios", runCmd.Flags().Lookup("scenario"))
	viper.BindPFlag("run.output", runCmd.Flags().Lookup("output"))
	viper.BindPFlag("run.format", runCmd.Flags().Lookup("format"))
	viper.BindPFlag("run.db", runCmd.Flags().Lookup("db"))
	viper.BindPFlag("run.label", runCmd.Flags().Lookup("label"))
	viper.BindPFlag("run.manifest", runCmd.Flags().Lookup("manifest"))
	viper.BindPFlag("run.spec", runCmd.Flags().Lookup("spec"))
	viper.BindPFlag("run.force", runCmd.Flags().Lookup("force"))
	viper.BindPFlag("run.log-level", runCmd.Flags().Lookup("log-level"))
	viper.BindPFlag("run.interactive", runCmd.Flags().Lookup("interactive"))

	viper.BindPFlag("simulation.weeks", runCmd.Flags().Lookup("weeks"))
	viper.BindPFlag("simulation.seed", runCmd.Flags().Lookup("seed"))
	viper.BindPFlag("simulation.workers", runCmd.Flags().Lookup("workers"))
	viper.BindPFlag("simulation.reseed_per_scenario", runCmd.Flags().Lookup("reseed-per-scenario"))
	viper.BindPFlag("interventions.coverage", runCmd.Flags().Lookup("coverage"))
}
