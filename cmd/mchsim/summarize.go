package cmd

import (
	"encoding/json"
	"errors"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.yaml.in/yaml/v3"

	"github.com/idlab-discover/mchsim-cli/internal/apperr"
	bomio "github.com/idlab-discover/mchsim-cli/internal/io"
	"github.com/idlab-discover/mchsim-cli/internal/report"
	"github.com/idlab-discover/mchsim-cli/internal/simulation"
	"github.com/idlab-discover/mchsim-cli/internal/store"
	"github.com/idlab-discover/mchsim-cli/internal/ui"
)

var (
	summarizeRun         string
	summarizeDB          string
	summarizeInputFormat string
	summarizeFormat      string
	summarizeLogLevel    string
)

// summarizeCmd represents the summarize command
var summarizeCmd = &cobra.Command{
	Use:   "summarize [records-file]",
	Short: "Aggregate metric records per scenario and province",
	Long: "Reads metric records from a results file or a stored run and reports the mean and standard deviation of " +
		"every rate per (scenario, province), care-seeking delays, and the percent change of each intervention " +
		"scenario against the baseline.",
	Args: cobra.MaximumNArgs(1),
	RunE: runSummarize,
}

func runSummarize(cmd *cobra.Command, args []string) error {
	level, err := logLevel("summarize")
	if err != nil {
		return err
	}

	runID := strings.TrimSpace(viper.GetString("summarize.run"))
	switch {
	case len(args) == 1 && runID != "":
		return apperr.User("give either a records file or --run, not both")
	case len(args) == 0 && runID == "":
		return apperr.User("a records file or --run <id> is required")
	}

	var (
		records []simulation.Record
		source  string
	)
	if runID != "" {
		st, err := store.Open(viper.GetString("summarize.db"))
		if err != nil {
			return err
		}
		defer st.Close()
		run, err := st.GetRun(cmd.Context(), runID)
		if err != nil {
			return runLookupError(runID, err)
		}
		records, err = st.LoadRecords(cmd.Context(), run.ID)
		if err != nil {
			return err
		}
		source = "run " + shortID(run.ID)
	} else {
		records, err = bomio.ReadRecords(args[0], viper.GetString("summarize.input-format"))
		if err != nil {
			return err
		}
		source = args[0]
	}

	sum := report.Summarize(records)

	format := strings.ToLower(strings.TrimSpace(viper.GetString("summarize.format")))
	if format == "" || format == "auto" {
		format = "json"
		if ui.IsTerminal(cmd.OutOrStdout()) {
			format = "table"
		}
	}

	out := cmd.OutOrStdout()
	switch format {
	case "table":
		ui.NewSummaryUI(out, level == "quiet").PrintReport(toSummaryReport(source, sum))
	case "plain":
		ui.NewSummaryUI(out, false).PrintSimpleReport(toSummaryReport(source, sum))
	case "json", "yaml":
		return encodeSummary(out, sum, format)
	default:
		return apperr.Userf("invalid --format %q (expected auto|table|plain|json|yaml)", format)
	}
	return nil
}

func encodeSummary(w io.Writer, sum report.Summary, format string) error {
	if format == "yaml" {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(sum); err != nil {
			return err
		}
		return enc.Close()
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(sum)
}

// toSummaryReport converts the analysis into the ui's table model.
func toSummaryReport(source string, sum report.Summary) ui.SummaryReport {
	out := ui.SummaryReport{Source: source}
	for _, row := range sum.Rows {
		out.Rows = append(out.Rows, ui.SummaryRow{
			Scenario:     row.Scenario,
			Province:     row.Province,
			N:            row.N,
			ANC:          ui.Stat(row.Rates[report.ANCCoverage]),
			SBA:          ui.Stat(row.Rates[report.SkilledBirthAttendance]),
			Immunization: ui.Stat(row.Rates[report.ImmunizationCoverage]),
			Digital:      ui.Stat(row.Rates[report.DigitalEngagement]),
			DelaysMean:   row.DelaysMean,
			DelaysSum:    row.DelaysSum,
		})
	}
	for _, imp := range sum.Improvements {
		out.Improvements = append(out.Improvements, ui.ImprovementCell{
			Scenario: imp.Scenario,
			Province: imp.Province,
			Metric:   string(imp.Metric),
			Percent:  imp.Percent,
			Defined:  imp.Defined,
		})
	}
	return out
}

func runLookupError(id string, err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return apperr.Userf("run %q not found", id)
	}
	return err
}

func init() {
	summarizeCmd.Flags().StringVar(&summarizeRun, "run", "", "Summarize a stored run (id or unique prefix)")
	summarizeCmd.Flags().StringVar(&summarizeDB, "db", defaultDB, "Run database")
	summarizeCmd.Flags().StringVar(&summarizeInputFormat, "input-format", "", "Records file format: csv|json|yaml|auto")
	summarizeCmd.Flags().StringVarP(&summarizeFormat, "format", "f", "", "Output: auto|table|plain|json|yaml (auto is table on a terminal, json otherwise)")
	summarizeCmd.Flags().StringVar(&summarizeLogLevel, "log-level", "", "Log level: quiet|standard|debug")

	// Bind all flags to viper for config file support
	viper.BindPFlag("summarize.run", summarizeCmd.Flags().Lookup("run"))
	viper.BindPFlag("summarize.db", summarizeCmd.Flags().Lookup("db"))
	viper.BindPFlag("summarize.input-format", summarizeCmd.Flags().Lookup("input-format"))
	viper.BindPFlag("summarize.format", summarizeCmd.Flags().Lookup("format"))
	viper.BindPFlag("summarize.log-level", summarizeCmd.Flags().Lookup("log-level"))
}
