package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/idlab-discover/mchsim-cli/internal/apperr"
	"github.com/idlab-discover/mchsim-cli/internal/demographics"
	bomio "github.com/idlab-discover/mchsim-cli/internal/io"
	"github.com/idlab-discover/mchsim-cli/internal/manifest"
	"github.com/idlab-discover/mchsim-cli/internal/ui"
)

var (
	validateManifest string
	validatePlain    bool
	validateLogLevel string
)

// validateCmd represents the validate command
var validateCmd = &cobra.Command{
	Use:   "validate <demographics.csv>...",
	Short: "Validate demographic population tables",
	Long: "Checks required columns, missing or non-numeric counts, negative counts and whether women 15-49 plus " +
		"children under 5 exceed the total population, then summarises provinces, districts, communes and years. " +
		"With --manifest the files are also compared with the input hashes recorded by a run.",
	Args: cobra.MinimumNArgs(1),
	RunE: runValidate,
}

func runValidate(cmd *cobra.Command, args []string) error {
	level, err := logLevel("validate")
	if err != nil {
		return err
	}

	valUI := ui.NewValidationUI(cmd.OutOrStdout(), level == "quiet")
	plain := viper.GetBool("validate.plain")

	failed := 0
	for _, path := range args {
		rep, err := demographics.ValidateFile(path)
		if err != nil {
			return err
		}
		view := toValidationReport(rep)
		if plain {
			valUI.PrintSimpleReport(view)
		} else {
			valUI.PrintReport(view)
		}
		if !rep.Valid() {
			failed++
		}
	}

	mismatched := 0
	if manifestPath := viper.GetString("validate.manifest"); manifestPath != "" {
		bom, err := bomio.ReadBOM(manifestPath, "auto")
		if err != nil {
			return err
		}
		mismatches, err := manifest.Verify(bom, args)
		if err != nil {
			return err
		}
		lines := make([]string, len(mismatches))
		for i, m := range mismatches {
			lines[i] = m.String()
		}
		valUI.PrintManifestCheck(manifestPath, lines)
		mismatched = len(mismatches)
	}

	switch {
	case failed > 0:
		return apperr.Userf("%d of %d file(s) failed validation", failed, len(args))
	case mismatched > 0:
		return apperr.Userf("%d input(s) differ from the manifest", mismatched)
	}
	return nil
}

func toValidationReport(rep demographics.Report) ui.ValidationReport {
	out := ui.ValidationReport{
		Source:        rep.Source,
		Rows:          rep.Rows,
		Provinces:     rep.Summary.Provinces,
		Districts:     rep.Summary.Districts,
		Communes:      rep.Summary.Communes,
		YearMin:       rep.Summary.YearMin,
		YearMax:       rep.Summary.YearMax,
		PopulationMin: rep.Summary.PopulationMin,
		PopulationMax: rep.Summary.PopulationMax,
	}
	for _, p := range rep.Problems {
		out.Problems = append(out.Problems, p.String())
	}
	for _, d := range rep.Summary.CommunesPerDistrict {
		out.CommunesPerDistrict = append(out.CommunesPerDistrict, ui.DistrictCount{District: d.District, Communes: d.Communes})
	}
	return out
}

func init() {
	validateCmd.Flags().StringVar(&validateManifest, "manifest", "", "Run manifest whose input hashes the files must match")
	validateCmd.Flags().BoolVar(&validatePlain, "plain", false, "Print a plain text report (no styling)")
	validateCmd.Flags().StringVar(&validateLogLevel, "log-level", "", "Log level: quiet|standard|debug")

	// Bind all flags to viper for config file support
	viper.BindPFlag("validate.manifest", validateCmd.Flags().Lookup("manifest"))
	viper.BindPFlag("validate.plain", validateCmd.Flags().Lookup("plain"))
	viper.BindPFlag("validate.log-level", validateCmd.Flags().Lookup("log-level"))
}
