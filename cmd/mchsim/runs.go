package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/idlab-discover/mchsim-cli/internal/apperr"
	bomio "github.com/idlab-discover/mchsim-cli/internal/io"
	"github.com/idlab-discover/mchsim-cli/internal/store"
	"github.com/idlab-discover/mchsim-cli/internal/ui"
)

// defaultDB is the run database used when --db is not given.
const defaultDB = "mchsim.db"

var (
	runsDB           string
	runsLimit        int
	runsExportOutput string
	runsExportFormat string
	runsForce        bool
)

// runsCmd groups the run history subcommands
var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect runs saved with run --db",
	Long:  "Lists, shows, exports and deletes simulation runs stored in the SQLite run database.",
}

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored runs, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(st *store.Store) error {
			runs, err := st.ListRuns(cmd.Context(), viper.GetInt("runs.limit"))
			if err != nil {
				return err
			}
			rows := make([]ui.RunRow, len(runs))
			for i, r := range runs {
				rows[i] = toRunRow(r)
			}
			ui.NewRunsUI(cmd.OutOrStdout(), false).PrintList(rows)
			return nil
		})
	},
}

var runsShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show the parameters of a stored run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(st *store.Store) error {
			run, err := st.GetRun(cmd.Context(), args[0])
			if err != nil {
				return runLookupError(args[0], err)
			}
			var cfg [][2]string
			for _, p := range run.Config.Properties() {
				cfg = append(cfg, [2]string{p.Key, p.Value})
			}
			ui.NewRunsUI(cmd.OutOrStdout(), false).PrintRun(toRunRow(run), cfg)
			return nil
		})
	},
}

var runsDeleteCmd = &cobra.Command{
	Use:   "delete <run-id>",
	Short: "Delete a stored run and its records",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(st *store.Store) error {
			run, err := st.GetRun(cmd.Context(), args[0])
			if err != nil {
				return runLookupError(args[0], err)
			}
			if err := st.DeleteRun(cmd.Context(), run.ID); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.FormatStatus("success", "Deleted run "+ui.Highlight.Render(run.ID)))
			return nil
		})
	},
}

var runsExportCmd = &cobra.Command{
	Use:   "export <run-id>",
	Short: "Write the records of a stored run to a file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		output := viper.GetString("runs.export.output")
		if output == "" {
			return apperr.User("--output is required")
		}
		if err := checkOverwrite(output, viper.GetBool("runs.export.force"), false); err != nil {
			return err
		}
		return withStore(func(st *store.Store) error {
			run, err := st.GetRun(cmd.Context(), args[0])
			if err != nil {
				return runLookupError(args[0], err)
			}
			records, err := st.LoadRecords(cmd.Context(), run.ID)
			if err != nil {
				return err
			}
			if err := ensureDir(output); err != nil {
				return err
			}
			if err := bomio.WriteRecords(records, output, viper.GetString("runs.export.format")); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.FormatStatus("success",
				fmt.Sprintf("Exported %d record(s) of run %s to %s", len(records), shortID(run.ID), output)))
			return nil
		})
	},
}

func withStore(fn func(*store.Store) error) error {
	st, err := store.Open(viper.GetString("runs.db"))
	if err != nil {
		return err
	}
	defer st.Close()
	return fn(st)
}

func toRunRow(r store.Run) ui.RunRow {
	return ui.RunRow{
		ID:        r.ID,
		CreatedAt: r.CreatedAt,
		Label:     r.Label,
		Seed:      r.Seed,
		Weeks:     r.Weeks,
		Coverage:  r.Coverage,
		Reseed:    r.Reseed,
		Scenarios: r.Scenarios,
		Inputs:    r.Inputs,
		Records:   r.Records,
	}
}

func init() {
	runsCmd.PersistentFlags().StringVar(&runsDB, "db", defaultDB, "Run database")
	runsListCmd.Flags().IntVar(&runsLimit, "limit", 20, "Maximum number of runs listed (0 for all)")
	runsExportCmd.Flags().StringVarP(&runsExportOutput, "output", "o", "", "Output file (required)")
	runsExportCmd.Flags().StringVarP(&runsExportFormat, "format", "f", "", "Records format: csv|json|yaml|auto")
	runsExportCmd.Flags().BoolVar(&runsForce, "force", false, "Overwrite an existing output file")

	// Bind all flags to viper for config file support
	viper.BindPFlag("runs.db", runsCmd.PersistentFlags().Lookup("db"))
	viper.BindPFlag("runs.limit", runsListCmd.Flags().Lookup("limit"))
	viper.BindPFlag("runs.export.output", runsExportCmd.Flags().Lookup("output"))
	viper.BindPFlag("runs.export.format", runsExportCmd.Flags().Lookup("format"))
	viper.BindPFlag("runs.export.force", runsExportCmd.Flags().Lookup("force"))

	runsCmd.AddCommand(runsListCmd, runsShowCmd, runsDeleteCmd, runsExportCmd)
}
