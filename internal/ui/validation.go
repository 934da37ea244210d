package ui

import (
	"fmt"
	"io"
	"strings"
)

// ValidationReport mirrors the structure from internal/demographics
// to avoid circular imports
type ValidationReport struct {
	Source   string
	Rows     int
	Problems []string

	Provinces           int
	Districts           int
	Communes            int
	YearMin, YearMax    int
	PopulationMin       int
	PopulationMax       int
	CommunesPerDistrict []DistrictCount
}

// DistrictCount is the number of communes in a district.
type DistrictCount struct {
	District string
	Communes int
}

// Valid reports whether no problems were found.
func (r ValidationReport) Valid() bool { return len(r.Problems) == 0 }

// ValidationUI provides a rich UI for the validate command
type ValidationUI struct {
	writer io.Writer
	quiet  bool
}

// NewValidationUI creates a new UI handler for the validate command
func NewValidationUI(w io.Writer, quiet bool) *ValidationUI {
	return &ValidationUI{
		writer: w,
		quiet:  quiet,
	}
}

// maxListedProblems caps the problems shown per file; the count is always
// reported.
const maxListedProblems = 20

// PrintReport renders the validation result of one demographic file
func (v *ValidationUI) PrintReport(report ValidationReport) {
	if v.quiet {
		return
	}

	var output strings.Builder

	if report.Valid() {
		output.WriteString(Success.Bold(true).Render("✓ Validation Passed"))
	} else {
		output.WriteString(Error.Bold(true).Render("✗ Validation Failed"))
	}
	output.WriteString(" " + Dim.Render(report.Source))
	output.WriteString("\n\n")

	output.WriteString(v.renderSummary(report))

	if len(report.Problems) > 0 {
		output.WriteString("\n\n")
		output.WriteString(v.renderProblems(report.Problems))
	}

	if report.Valid() {
		fmt.Fprintln(v.writer, SuccessBox.Render(output.String()))
	} else {
		fmt.Fprintln(v.writer, ErrorBox.Render(output.String()))
	}
}

func (v *ValidationUI) renderSummary(r ValidationReport) string {
	var sb strings.Builder

	sb.WriteString(SectionHeader.Render("Population Table"))
	sb.WriteString("\n")
	sb.WriteString(FormatKeyValue("Rows", fmt.Sprintf("%d", r.Rows)))
	sb.WriteString("\n")
	sb.WriteString(FormatKeyValue("Provinces", fmt.Sprintf("%d", r.Provinces)))
	sb.WriteString("\n")
	sb.WriteString(FormatKeyValue("Districts", fmt.Sprintf("%d", r.Districts)))
	sb.WriteString("\n")
	sb.WriteString(FormatKeyValue("Communes", fmt.Sprintf("%d", r.Communes)))
	if r.Rows > 0 {
		sb.WriteString("\n")
		sb.WriteString(FormatKeyValue("Years", fmt.Sprintf("%d-%d", r.YearMin, r.YearMax)))
		sb.WriteString("\n")
		sb.WriteString(FormatKeyValue("Population", fmt.Sprintf("%d-%d", r.PopulationMin, r.PopulationMax)))
	}

	if len(r.CommunesPerDistrict) > 0 {
		sb.WriteString("\n\n")
		sb.WriteString(SectionHeader.Render("Communes per District"))
		for _, d := range r.CommunesPerDistrict {
			sb.WriteString("\n  ")
			sb.WriteString(GetBullet())
			sb.WriteString(" ")
			sb.WriteString(fmt.Sprintf("%s: %d", d.District, d.Communes))
		}
	}
	return sb.String()
}

func (v *ValidationUI) renderProblems(problems []string) string {
	var sb strings.Builder

	sb.WriteString(Error.Render(fmt.Sprintf("▼ Problems (%d)", len(problems))))
	for i, p := range problems {
		if i == maxListedProblems {
			sb.WriteString("\n  ")
			sb.WriteString(Dim.Render(fmt.Sprintf("… %d more", len(problems)-maxListedProblems)))
			break
		}
		sb.WriteString("\n  ")
		sb.WriteString(GetCrossMark())
		sb.WriteString(" ")
		sb.WriteString(p)
	}
	return sb.String()
}

// PrintManifestCheck reports how input files compare with a run manifest.
func (v *ValidationUI) PrintManifestCheck(manifestPath string, mismatches []string) {
	if v.quiet {
		return
	}
	if len(mismatches) == 0 {
		fmt.Fprintln(v.writer, FormatStatus("success", "Inputs match manifest "+Dim.Render(manifestPath)))
		return
	}
	fmt.Fprintln(v.writer, FormatStatus("error", fmt.Sprintf("%d input(s) differ from manifest %s", len(mismatches), Dim.Render(manifestPath))))
	for _, m := range mismatches {
		fmt.Fprintf(v.writer, "  %s %s\n", GetCrossMark(), m)
	}
}

// PrintSimpleReport prints a minimal text report
func (v *ValidationUI) PrintSimpleReport(report ValidationReport) {
	if report.Valid() {
		fmt.Fprintf(v.writer, "%s %s: valid\n", GetCheckMark(), report.Source)
	} else {
		fmt.Fprintf(v.writer, "%s %s: %d problem(s)\n", GetCrossMark(), report.Source, len(report.Problems))
	}
	fmt.Fprintf(v.writer, "Rows: %d, Provinces: %d, Districts: %d, Communes: %d\n",
		report.Rows, report.Provinces, report.Districts, report.Communes)
	for _, p := range report.Problems {
		fmt.Fprintf(v.writer, "  %s\n", p)
	}
}
