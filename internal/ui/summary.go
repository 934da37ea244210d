package ui

import (
	"fmt"
	"io"
	"strings"

	"charm.land/lipgloss/v2"
	"charm.land/lipgloss/v2/table"
)

// SummaryReport mirrors the structure from internal/report
// to avoid circular imports
type SummaryReport struct {
	Source       string
	Rows         []SummaryRow
	Improvements []ImprovementCell
}

// Stat is a mean with its sample standard deviation.
type Stat struct {
	Mean float64
	Std  float64
}

// SummaryRow is one (scenario, province) group.
type SummaryRow struct {
	Scenario     string
	Province     string
	N            int
	ANC          Stat
	SBA          Stat
	Immunization Stat
	Digital      Stat
	DelaysMean   float64
	DelaysSum    int
}

// ImprovementCell is the change of one metric against the baseline.
type ImprovementCell struct {
	Scenario string
	Province string
	Metric   string
	Percent  float64
	Defined  bool
}

// SummaryUI renders result summaries as tables.
type SummaryUI struct {
	writer io.Writer
	quiet  bool
}

// NewSummaryUI creates a new UI handler for the summarize command
func NewSummaryUI(w io.Writer, quiet bool) *SummaryUI {
	return &SummaryUI{writer: w, quiet: quiet}
}

// PrintReport renders the statistics table followed by the improvement table.
func (s *SummaryUI) PrintReport(r SummaryReport) {
	if s.quiet {
		return
	}

	var b strings.Builder
	b.WriteString(Success.Bold(true).Render("Scenario Summary"))
	if r.Source != "" {
		b.WriteString(" " + Dim.Render(r.Source))
	}
	b.WriteString("\n\n")

	if len(r.Rows) == 0 {
		b.WriteString(Dim.Render("no records"))
		fmt.Fprintln(s.writer, Box.Render(b.String()))
		return
	}

	b.WriteString(s.statsTable(r.Rows))
	if len(r.Improvements) > 0 {
		b.WriteString("\n\n")
		b.WriteString(SectionHeader.Render("Improvement over baseline"))
		b.WriteString("\n")
		b.WriteString(s.improvementTable(r.Improvements))
	}
	fmt.Fprintln(s.writer, b.String())
}

func (s *SummaryUI) statsTable(rows []SummaryRow) string {
	headers := []string{"Scenario", "Province", "N", "ANC", "SBA", "Immunization", "Digital", "Delays (mean)", "Delays (sum)"}
	t := newTable(headers...)
	for _, r := range rows {
		t.Row(
			r.Scenario,
			r.Province,
			fmt.Sprintf("%d", r.N),
			formatStat(r.ANC),
			formatStat(r.SBA),
			formatStat(r.Immunization),
			formatStat(r.Digital),
			fmt.Sprintf("%.2f", r.DelaysMean),
			fmt.Sprintf("%d", r.DelaysSum),
		)
	}
	return t.String()
}

// improvementTable pivots the cells to one row per (scenario, province) and
// one column per metric, both in first-seen order.
func (s *SummaryUI) improvementTable(cells []ImprovementCell) string {
	var metrics []string
	seenMetric := map[string]bool{}
	type key struct{ scenario, province string }
	var keys []key
	values := map[key]map[string]ImprovementCell{}
	for _, c := range cells {
		if !seenMetric[c.Metric] {
			seenMetric[c.Metric] = true
			metrics = append(metrics, c.Metric)
		}
		k := key{c.Scenario, c.Province}
		if values[k] == nil {
			values[k] = map[string]ImprovementCell{}
			keys = append(keys, k)
		}
		values[k][c.Metric] = c
	}

	t := newTable(append([]string{"Scenario", "Province"}, metrics...)...)
	for _, k := range keys {
		row := []string{k.scenario, k.province}
		for _, m := range metrics {
			row = append(row, FormatImprovement(values[k][m]))
		}
		t.Row(row...)
	}
	return t.String()
}

// PrintSimpleReport prints a minimal text report
func (s *SummaryUI) PrintSimpleReport(r SummaryReport) {
	for _, row := range r.Rows {
		fmt.Fprintf(s.writer, "%s/%s: anc %.3f, sba %.3f, immunization %.3f, digital %.3f, delays %.2f (n=%d)\n",
			row.Scenario, row.Province, row.ANC.Mean, row.SBA.Mean, row.Immunization.Mean, row.Digital.Mean, row.DelaysMean, row.N)
	}
	for _, c := range r.Improvements {
		fmt.Fprintf(s.writer, "%s/%s %s: %s\n", c.Scenario, c.Province, c.Metric, FormatImprovement(c))
	}
}

// FormatImprovement renders a signed percentage, or "n/a" when undefined.
func FormatImprovement(c ImprovementCell) string {
	if !c.Defined {
		return Muted.Render("n/a")
	}
	text := fmt.Sprintf("%+.1f%%", c.Percent)
	switch {
	case c.Percent > 0:
		return Success.Render(text)
	case c.Percent < 0:
		return Error.Render(text)
	}
	return text
}

func formatStat(st Stat) string {
	return fmt.Sprintf("%.3f ± %.3f", st.Mean, st.Std)
}

func newTable(headers ...string) *table.Table {
	header := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cell := lipgloss.NewStyle().Padding(0, 1)
	border := lipgloss.NewStyle()
	if colorEnabled {
		header = header.Foreground(ColorPrimary)
		border = border.Foreground(ColorMuted)
	}
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(border).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return header
			}
			return cell
		})
}
