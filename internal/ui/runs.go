package ui

import (
	"fmt"
	"io"
	"strings"
	"time"
)

// RunRow mirrors the structure from internal/store
// to avoid circular imports
type RunRow struct {
	ID        string
	CreatedAt time.Time
	Label     string
	Seed      uint64
	Weeks     int
	Coverage  float64
	Reseed    bool
	Scenarios []string
	Inputs    []string
	Records   int
}

// RunsUI renders the run history.
type RunsUI struct {
	writer io.Writer
	quiet  bool
}

// NewRunsUI creates a new UI handler for the runs command
func NewRunsUI(w io.Writer, quiet bool) *RunsUI {
	return &RunsUI{writer: w, quiet: quiet}
}

const runTimeLayout = "2006-01-02 15:04"

// PrintList prints one table row per run, newest first.
func (r *RunsUI) PrintList(runs []RunRow) {
	if r.quiet {
		return
	}
	if len(runs) == 0 {
		fmt.Fprintln(r.writer, FormatStatus("info", "No runs stored yet"))
		return
	}
	t := newTable("ID", "Created", "Label", "Seed", "Weeks", "Scenarios", "Records")
	for _, run := range runs {
		t.Row(
			shortRunID(run.ID),
			run.CreatedAt.Local().Format(runTimeLayout),
			run.Label,
			fmt.Sprintf("%d", run.Seed),
			fmt.Sprintf("%d", run.Weeks),
			fmt.Sprintf("%d", len(run.Scenarios)),
			fmt.Sprintf("%d", run.Records),
		)
	}
	fmt.Fprintln(r.writer, t.String())
}

// PrintRun prints the details of one run followed by its configuration.
func (r *RunsUI) PrintRun(run RunRow, config [][2]string) {
	if r.quiet {
		return
	}

	var b strings.Builder
	b.WriteString(Highlight.Render("Run " + run.ID))
	b.WriteString("\n\n")
	b.WriteString(FormatKeyValue("Created", run.CreatedAt.Local().Format(runTimeLayout)))
	if run.Label != "" {
		b.WriteString("\n")
		b.WriteString(FormatKeyValue("Label", run.Label))
	}
	b.WriteString("\n")
	b.WriteString(FormatKeyValue("Seed", fmt.Sprintf("%d", run.Seed)))
	b.WriteString("\n")
	b.WriteString(FormatKeyValue("Weeks", fmt.Sprintf("%d", run.Weeks)))
	b.WriteString("\n")
	b.WriteString(FormatKeyValue("Coverage", fmt.Sprintf("%g", run.Coverage)))
	b.WriteString("\n")
	b.WriteString(FormatKeyValue("Reseed", fmt.Sprintf("%t", run.Reseed)))
	b.WriteString("\n")
	b.WriteString(FormatKeyValue("Scenarios", strings.Join(run.Scenarios, ", ")))
	b.WriteString("\n")
	b.WriteString(FormatKeyValue("Records", fmt.Sprintf("%d", run.Records)))
	for _, in := range run.Inputs {
		b.WriteString("\n")
		b.WriteString(FormatKeyValue("Input", in))
	}

	if len(config) > 0 {
		b.WriteString("\n\n")
		b.WriteString(SectionHeader.Render("Configuration"))
		for _, kv := range config {
			b.WriteString("\n  ")
			b.WriteString(Dim.Render(kv[0] + " = "))
			b.WriteString(kv[1])
		}
	}
	fmt.Fprintln(r.writer, HighlightBox.Render(b.String()))
}

func shortRunID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
