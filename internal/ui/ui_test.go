package ui

import (
	"bytes"
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"
)

func plain(t *testing.T) {
	t.Helper()
	Init(true)
	t.Cleanup(func() { Init(false) })
}

func TestColorAppliesANSICodes(t *testing.T) {
	Init(false)
	got := Color("hello", FgGreen)
	want := FgGreen + "hello" + Reset
	if got != want {
		t.Fatalf("Color() = %q, want %q", got, want)
	}
}

func TestColorDisabled(t *testing.T) {
	plain(t)
	if got := Color("hello", FgRed); got != "hello" {
		t.Fatalf("Color() with colors off = %q", got)
	}
	if got := Success.Render("ok"); got != "ok" {
		t.Fatalf("Success.Render() with colors off = %q", got)
	}
	if ColorEnabled() {
		t.Fatal("ColorEnabled() = true after Init(true)")
	}
}

func TestProgressBarAndPercent(t *testing.T) {
	plain(t)
	tests := []struct {
		fraction float64
		width    int
		want     string
	}{
		{1.0, 4, "████"},
		{0.5, 4, "██░░"},
		{0, 4, "░░░░"},
		{-1, 2, "░░"},
		{2, 2, "██"},
	}
	for _, tt := range tests {
		if got := ProgressBar(tt.fraction, tt.width); got != tt.want {
			t.Errorf("ProgressBar(%v, %d) = %q, want %q", tt.fraction, tt.width, got, tt.want)
		}
	}
	if got := Percent(0.756); got != "75.6%" {
		t.Errorf("Percent() = %q", got)
	}
}

func TestSummaryUI_PrintReport(t *testing.T) {
	plain(t)
	report := SummaryReport{
		Source: "results.csv",
		Rows: []SummaryRow{
			{Scenario: "baseline", Province: "Dien Bien", N: 13, ANC: Stat{0.25, 0.01}, DelaysMean: 2.5, DelaysSum: 33},
			{Scenario: "combined", Province: "Dien Bien", N: 13, ANC: Stat{0.5, 0.02}, DelaysMean: 1, DelaysSum: 13},
		},
		Improvements: []ImprovementCell{
			{Scenario: "combined", Province: "Dien Bien", Metric: "anc_coverage", Percent: 100, Defined: true},
			{Scenario: "combined", Province: "Dien Bien", Metric: "skilled_birth_attendance"},
		},
	}

	var buf bytes.Buffer
	NewSummaryUI(&buf, false).PrintReport(report)
	out := buf.String()
	for _, want := range []string{"Scenario Summary", "results.csv", "baseline", "Dien Bien", "0.250 ± 0.010", "33", "Improvement over baseline", "+100.0%", "n/a", "skilled_birth_attendance"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q.\nGot:\n%s", want, out)
		}
	}
}

func TestSummaryUI_QuietAndEmpty(t *testing.T) {
	plain(t)
	var buf bytes.Buffer
	NewSummaryUI(&buf, true).PrintReport(SummaryReport{Rows: []SummaryRow{{Scenario: "x"}}})
	if buf.Len() != 0 {
		t.Fatalf("quiet mode wrote %q", buf.String())
	}
	NewSummaryUI(&buf, false).PrintReport(SummaryReport{})
	if !strings.Contains(buf.String(), "no records") {
		t.Fatalf("empty report = %q", buf.String())
	}
}

func TestSummaryUI_PrintSimpleReport(t *testing.T) {
	plain(t)
	var buf bytes.Buffer
	NewSummaryUI(&buf, false).PrintSimpleReport(SummaryReport{
		Rows:         []SummaryRow{{Scenario: "baseline", Province: "Thai Nguyen", N: 2, ANC: Stat{Mean: 0.5}}},
		Improvements: []ImprovementCell{{Scenario: "sms_outreach", Province: "Thai Nguyen", Metric: "anc_coverage", Percent: -12.5, Defined: true}},
	})
	out := buf.String()
	for _, want := range []string{"baseline/Thai Nguyen: anc 0.500", "(n=2)", "sms_outreach/Thai Nguyen anc_coverage: -12.5%"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q.\nGot:\n%s", want, out)
		}
	}
}

func TestValidationUI_PrintReport(t *testing.T) {
	plain(t)
	tests := []struct {
		name   string
		report ValidationReport
		want   []string
	}{
		{
			name: "valid table",
			report: ValidationReport{
				Source: "dien_bien.csv", Rows: 3, Provinces: 1, Districts: 2, Communes: 3,
				YearMin: 2019, YearMax: 2020, PopulationMin: 1200, PopulationMax: 5400,
				CommunesPerDistrict: []DistrictCount{{"Muong Nhe", 2}, {"Dien Bien Phu", 1}},
			},
			want: []string{"Validation Passed", "dien_bien.csv", "Rows: 3", "Years: 2019-2020", "Population: 1200-5400", "Muong Nhe: 2"},
		},
		{
			name: "problems",
			report: ValidationReport{
				Source: "bad.csv", Rows: 1, Problems: []string{"line 2: women_15_49: negative count"},
			},
			want: []string{"Validation Failed", "Problems (1)", "negative count"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			NewValidationUI(&buf, false).PrintReport(tt.report)
			for _, w := range tt.want {
				if !strings.Contains(buf.String(), w) {
					t.Errorf("output missing %q.\nGot:\n%s", w, buf.String())
				}
			}
		})
	}
}

func TestValidationUI_TruncatesProblems(t *testing.T) {
	plain(t)
	problems := make([]string, maxListedProblems+5)
	for i := range problems {
		problems[i] = "problem"
	}
	var buf bytes.Buffer
	NewValidationUI(&buf, false).PrintReport(ValidationReport{Source: "x.csv", Problems: problems})
	if !strings.Contains(buf.String(), "… 5 more") {
		t.Fatalf("expected truncation marker.\nGot:\n%s", buf.String())
	}
}

func TestValidationUI_PrintManifestCheck(t *testing.T) {
	plain(t)
	var buf bytes.Buffer
	v := NewValidationUI(&buf, false)
	v.PrintManifestCheck("run.cdx.json", nil)
	v.PrintManifestCheck("run.cdx.json", []string{"a.csv: not provided"})
	out := buf.String()
	for _, want := range []string{"Inputs match manifest", "1 input(s) differ", "a.csv: not provided"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q.\nGot:\n%s", want, out)
		}
	}
}

func TestWorkflow_NonTerminalPrintsFinishedTasksInOrder(t *testing.T) {
	plain(t)
	var buf bytes.Buffer
	wf := NewWorkflow(&buf, "")
	a := wf.AddTask("first")
	b := wf.AddTask("second")
	c := wf.AddTask("third")
	wf.Start()

	wf.StartTask(a, "")
	wf.CompleteTask(b, "early")
	if buf.Len() != 0 {
		t.Fatalf("second must wait for first, got %q", buf.String())
	}
	wf.CompleteTask(a, "done")
	wf.FailTask(c, "boom")
	wf.Stop()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	want := []string{"✓ first → done", "✓ second → early", "✗ third → boom"}
	if len(lines) != len(want) {
		t.Fatalf("got %d lines: %q", len(lines), buf.String())
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, lines[i], want[i])
		}
	}
	if wf.Status(c) != TaskFailed {
		t.Errorf("Status(c) = %v", wf.Status(c))
	}
}

func TestRunUI_Workflow(t *testing.T) {
	plain(t)
	var buf bytes.Buffer
	r := NewRunUI(&buf, false)
	r.StartWorkflow([]string{"baseline"}, []string{"Writing results"})
	r.StartBuilding(3)
	r.CompleteBuilding(3)
	r.StartBuilding(3) // later rebuilds leave the finished task alone
	r.StartScenario("baseline", 8)
	r.UpdateScenario("baseline", 3, 8)
	r.CompleteScenario("baseline", "6 records")
	r.SkipOutput("Writing results", "no --output")
	r.FinishWorkflow()
	r.PrintSummary(RunSummary{RunID: "abc", Seed: 42, Weeks: 8, Scenarios: 1, Communes: 3, Records: 6, Outputs: []string{"Results: out.csv"}})

	out := buf.String()
	for _, want := range []string{"✓ Building communes → 3 commune(s)", "✓ Scenario baseline → 6 records", "⊘ Writing results → no --output", "Simulation Complete", "Run: abc", "Results: out.csv", "Records: 6"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q.\nGot:\n%s", want, out)
		}
	}
}

func TestRunUI_Quiet(t *testing.T) {
	var buf bytes.Buffer
	r := NewRunUI(&buf, true)
	r.StartWorkflow([]string{"baseline"}, nil)
	r.StartScenario("baseline", 4)
	r.FinishWorkflow()
	r.PrintSummary(RunSummary{})
	r.LogStep("info", "hello")
	if buf.Len() != 0 {
		t.Fatalf("quiet run UI wrote %q", buf.String())
	}
}

func TestScenarioSelector(t *testing.T) {
	plain(t)
	m := NewScenarioSelector([]ScenarioOption{
		{Name: "baseline"},
		{Name: "sms_outreach", Interventions: []string{"sms_outreach"}},
		{Name: "combined", Interventions: []string{"app_based", "sms_outreach"}},
	})

	if got := m.Selected(); len(got) != 3 {
		t.Fatalf("initial selection = %v, want all", got)
	}
	m.toggle(1)
	if got := strings.Join(m.Selected(), ","); got != "baseline,combined" {
		t.Fatalf("after toggle = %q", got)
	}
	m.toggleAll()
	if len(m.Selected()) != 3 {
		t.Fatalf("toggleAll from partial should select all, got %v", m.Selected())
	}
	m.toggleAll()
	if len(m.Selected()) != 0 {
		t.Fatalf("toggleAll from full should clear, got %v", m.Selected())
	}

	_, cmd := m.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if cmd != nil || m.WasConfirmed() || m.err == nil {
		t.Fatal("enter with nothing selected must not confirm")
	}

	m.toggle(0)
	m.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if !m.WasConfirmed() {
		t.Fatal("enter with a selection should confirm")
	}
	if got := m.Selected(); len(got) != 1 || got[0] != "baseline" {
		t.Fatalf("confirmed selection = %v", got)
	}
}

func TestScenarioItem(t *testing.T) {
	plain(t)
	it := scenarioItem{option: ScenarioOption{Name: "combined", Interventions: []string{"app_based", "incentives"}}, selected: true}
	if it.Title() != "[✓] combined" {
		t.Errorf("Title() = %q", it.Title())
	}
	if it.Description() != "interventions: app_based, incentives" {
		t.Errorf("Description() = %q", it.Description())
	}
	if (scenarioItem{option: ScenarioOption{Name: "baseline"}}).Description() != "no interventions" {
		t.Error("baseline description")
	}
}

func TestParseFormValues(t *testing.T) {
	if n, err := parseWeeks(" 26 "); err != nil || n != 26 {
		t.Errorf("parseWeeks = %d, %v", n, err)
	}
	for _, bad := range []string{"0", "-3", "x", ""} {
		if _, err := parseWeeks(bad); err == nil {
			t.Errorf("parseWeeks(%q) should fail", bad)
		}
	}
	if n, err := parseSeed("18446744073709551615"); err != nil || n != 18446744073709551615 {
		t.Errorf("parseSeed max = %d, %v", n, err)
	}
	if _, err := parseSeed("-1"); err == nil {
		t.Error("parseSeed(-1) should fail")
	}
	if f, err := parseCoverage("0.35"); err != nil || f != 0.35 {
		t.Errorf("parseCoverage = %v, %v", f, err)
	}
	for _, bad := range []string{"1.5", "-0.1", "NaN", "lots"} {
		if _, err := parseCoverage(bad); err == nil {
			t.Errorf("parseCoverage(%q) should fail", bad)
		}
	}
}

func TestRunsUIListAndShow(t *testing.T) {
	plain(t)
	var buf bytes.Buffer
	u := NewRunsUI(&buf, false)

	u.PrintList(nil)
	if !strings.Contains(buf.String(), "No runs stored yet") {
		t.Fatalf("empty list output = %q", buf.String())
	}

	run := RunRow{
		ID:        "0123456789abcdef",
		CreatedAt: time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC),
		Label:     "pilot",
		Seed:      42,
		Weeks:     52,
		Coverage:  0.7,
		Scenarios: []string{"baseline", "combined"},
		Inputs:    []string{"communes.csv"},
		Records:   120,
	}
	buf.Reset()
	u.PrintList([]RunRow{run})
	out := buf.String()
	for _, want := range []string{"01234567", "pilot", "42", "120"} {
		if !strings.Contains(out, want) {
			t.Fatalf("list output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "0123456789abcdef") {
		t.Fatalf("list should show short ids:\n%s", out)
	}

	buf.Reset()
	u.PrintRun(run, [][2]string{{"simulation.weeks", "52"}})
	out = buf.String()
	for _, want := range []string{"Run 0123456789abcdef", "Label: pilot", "Scenarios: baseline, combined", "Input: communes.csv", "simulation.weeks = 52"} {
		if !strings.Contains(out, want) {
			t.Fatalf("show output missing %q:\n%s", want, out)
		}
	}

	buf.Reset()
	NewRunsUI(&buf, true).PrintRun(run, nil)
	if buf.Len() != 0 {
		t.Fatalf("quiet RunsUI wrote %q", buf.String())
	}
}
