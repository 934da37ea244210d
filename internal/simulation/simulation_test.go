package simulation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/idlab-discover/mchsim-cli/internal/agent"
	"github.com/idlab-discover/mchsim-cli/internal/config"
	"github.com/idlab-discover/mchsim-cli/internal/demographics"
)

func testRows() []demographics.Row {
	return []demographics.Row{
		{Province: config.DienBien, District: "Muong Nhe", Commune: "Sin Thau", Year: 2021, TotalPopulation: 1200, Women15to49: 60, ChildrenUnder5: 30},
		{Province: config.DienBien, District: "Muong Nhe", Commune: "Sin Thau", Year: 2019, TotalPopulation: 1100, Women15to49: 10, ChildrenUnder5: 5},
		{Province: config.ThaiNguyen, District: "Dong Hy", Commune: "Tan Long", Year: 2020, TotalPopulation: 2600, Women15to49: 80, ChildrenUnder5: 40},
		{Province: config.ThaiNguyen, District: "Dong Hy", Commune: "Hoa Binh", Year: 2020, TotalPopulation: 900, Women15to49: 40, ChildrenUnder5: 20},
	}
}

func testConfig() config.Config {
	cfg := config.Default()
	cfg.Simulation.Seed = 2024
	return cfg
}

func mustNew(t *testing.T, cfg config.Config, opts Options) *Simulation {
	t.Helper()
	s, err := New(cfg, testRows(), opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

func TestNew_UsesLatestYearPerCommune(t *testing.T) {
	s := mustNew(t, testConfig(), Options{})
	cs := s.Communes()
	if len(cs) != 3 {
		t.Fatalf("got %d communes, want 3", len(cs))
	}
	if cs[0].Name != "Sin Thau" || len(cs[0].Mothers) != 60 {
		t.Fatalf("expected the 2021 Sin Thau row, got %s with %d mothers", cs[0].Name, len(cs[0].Mothers))
	}
}

func TestNew_Errors(t *testing.T) {
	var ie *demographics.InputError
	if _, err := New(testConfig(), nil, Options{}); !errors.As(err, &ie) {
		t.Fatalf("expected *demographics.InputError for no rows, got %v", err)
	}

	cfg := testConfig()
	cfg.Interventions.Coverage = 3
	if _, err := New(cfg, testRows(), Options{}); err == nil {
		t.Fatal("expected invalid config to be rejected")
	}

	rows := testRows()
	rows[0].Women15to49 = -1
	if _, err := New(testConfig(), rows, Options{}); !errors.As(err, &ie) {
		t.Fatalf("expected *demographics.InputError for negative counts, got %v", err)
	}
}

func TestRunScenario_RecordsEveryFourthWeek(t *testing.T) {
	s := mustNew(t, testConfig(), Options{})
	recs, err := s.RunScenario(context.Background(), Scenario{Name: "trial"}, 9)
	if err != nil {
		t.Fatalf("RunScenario: %v", err)
	}
	if len(recs) != 9 {
		t.Fatalf("got %d records, want 3 checkpoints x 3 communes", len(recs))
	}
	wantWeeks := []int{0, 0, 0, 4, 4, 4, 8, 8, 8}
	wantCommunes := []string{"Sin Thau", "Tan Long", "Hoa Binh"}
	for i, r := range recs {
		if r.Week != wantWeeks[i] || r.Commune != wantCommunes[i%3] || r.Scenario != "trial" {
			t.Fatalf("record %d = %+v", i, r)
		}
		if r.DigitalEngagement != 0 {
			t.Fatalf("no app roll-out, but digital engagement = %v", r.DigitalEngagement)
		}
	}
	if got := s.Results().Series("trial"); len(got) != 9 {
		t.Fatalf("results not stored: %d", len(got))
	}
}

func TestRunScenario_InvalidArguments(t *testing.T) {
	s := mustNew(t, testConfig(), Options{})
	if _, err := s.RunScenario(context.Background(), Scenario{Name: "x"}, 0); err == nil {
		t.Fatal("expected error for zero weeks")
	}
	if _, err := s.RunScenario(context.Background(), Scenario{}, 4); err == nil {
		t.Fatal("expected error for unnamed scenario")
	}
}

func TestRunScenario_FullIncidenceEndToEnd(t *testing.T) {
	cfg := testConfig()
	cfg.Agents.PregnancyIncidence = 1
	cfg.Agents.InitialPregnancyFraction = 0
	rows := []demographics.Row{{Province: config.ThaiNguyen, District: "D", Commune: "C", Year: 2020, TotalPopulation: 1000, Women15to49: 100}}
	s, err := New(cfg, rows, Options{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	recs, err := s.RunScenario(context.Background(), Scenario{Name: Baseline}, 9)
	if err != nil {
		t.Fatalf("RunScenario: %v", err)
	}
	if len(recs) != 3 || recs[1].Week != 4 || recs[2].Week != 8 {
		t.Fatalf("expected snapshots at weeks 0, 4, 8; got %+v", recs)
	}
	if got := s.Communes()[0].PregnantCount(); got != 100 {
		t.Fatalf("pregnant = %d, want 100", got)
	}
	for _, r := range recs {
		if r.ImmunizationCoverage != 0 || r.CareSeekingDelays != 0 {
			t.Fatalf("no children, but child metrics are non-zero: %+v", r)
		}
	}
}

func TestRunAll_DeterministicAcrossRunsAndWorkers(t *testing.T) {
	run := func(workers int) []byte {
		cfg := testConfig()
		cfg.Simulation.Workers = workers
		s := mustNew(t, cfg, Options{})
		res, err := s.RunAll(context.Background(), 12)
		if err != nil {
			t.Fatalf("RunAll: %v", err)
		}
		b, err := json.Marshal(res.Records())
		if err != nil {
			t.Fatal(err)
		}
		return b
	}

	first := run(1)
	if second := run(1); !bytes.Equal(first, second) {
		t.Fatal("same seed produced different results")
	}
	if parallel := run(4); !bytes.Equal(first, parallel) {
		t.Fatal("parallel stepping changed results")
	}
}

func TestRunAll_ScenarioOrderAndShape(t *testing.T) {
	s := mustNew(t, testConfig(), Options{})
	res, err := s.RunAll(context.Background(), 8)
	if err != nil {
		t.Fatalf("RunAll: %v", err)
	}
	names := res.Scenarios()
	want := BuiltinNames()
	if len(names) != len(want) {
		t.Fatalf("scenarios = %v", names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("scenario %d = %s, want %s", i, names[i], want[i])
		}
		if n := len(res.Series(names[i])); n != 6 {
			t.Fatalf("%s has %d records, want 2 checkpoints x 3 communes", names[i], n)
		}
	}
	if res.Len() != 36 || len(s.Records()) != 36 {
		t.Fatalf("total records = %d", res.Len())
	}
}

func TestRunScenarios_ReseedGivesIdenticalPopulations(t *testing.T) {
	twins := []Scenario{{Name: "a"}, {Name: "b"}}
	metrics := func(r Record) Record { r.Scenario = ""; return r }

	cfg := testConfig()
	cfg.Simulation.ReseedPerScenario = true
	s := mustNew(t, cfg, Options{})
	res, err := s.RunScenarios(context.Background(), twins, 12)
	if err != nil {
		t.Fatalf("RunScenarios: %v", err)
	}
	a, b := res.Series("a"), res.Series("b")
	for i := range a {
		if metrics(a[i]) != metrics(b[i]) {
			t.Fatalf("reseeded scenarios diverged at record %d: %+v vs %+v", i, a[i], b[i])
		}
	}

	cfg.Simulation.ReseedPerScenario = false
	s = mustNew(t, cfg, Options{})
	res, err = s.RunScenarios(context.Background(), twins, 12)
	if err != nil {
		t.Fatalf("RunScenarios: %v", err)
	}
	a, b = res.Series("a"), res.Series("b")
	same := true
	for i := range a {
		if metrics(a[i]) != metrics(b[i]) {
			same = false
			break
		}
	}
	if same {
		t.Fatal("independent replicates produced identical results")
	}
}

func TestRunScenario_Cancelled(t *testing.T) {
	s := mustNew(t, testConfig(), Options{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := s.RunScenario(ctx, Scenario{Name: Baseline}, 8); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if _, err := s.RunAll(ctx, 8); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled from RunAll, got %v", err)
	}
}

func TestRunScenario_ProgressEvents(t *testing.T) {
	var events []ProgressEvent
	s := mustNew(t, testConfig(), Options{OnProgress: func(e ProgressEvent) { events = append(events, e) }})
	events = nil

	if _, err := s.RunScenario(context.Background(), Scenario{Name: "sms", Interventions: []agent.Intervention{agent.SMSOutreach}}, 5); err != nil {
		t.Fatalf("RunScenario: %v", err)
	}
	if events[0].Type != EventScenarioStart || events[0].Communes != 3 {
		t.Fatalf("first event = %+v", events[0])
	}
	if events[1].Type != EventInterventionsApplied {
		t.Fatalf("second event = %+v", events[1])
	}
	last := events[len(events)-1]
	if last.Type != EventScenarioComplete || last.Scenario != "sms" {
		t.Fatalf("last event = %+v", last)
	}
	weeks := 0
	for _, e := range events {
		if e.Type == EventWeekComplete {
			if e.Week != weeks || e.Weeks != 5 {
				t.Fatalf("week event out of order: %+v", e)
			}
			weeks++
		}
	}
	if weeks != 5 {
		t.Fatalf("got %d week events, want 5", weeks)
	}
}

func TestResults_NewResultsGroupsInFirstSeenOrder(t *testing.T) {
	res := NewResults([]Record{
		{Scenario: "b", Week: 0},
		{Scenario: "a", Week: 0},
		{Scenario: "b", Week: 4},
	})
	if got := res.Scenarios(); len(got) != 2 || got[0] != "b" || got[1] != "a" {
		t.Fatalf("scenarios = %v", got)
	}
	if len(res.Series("b")) != 2 {
		t.Fatalf("series b = %v", res.Series("b"))
	}
	flat := res.Records()
	if flat[0].Scenario != "b" || flat[1].Scenario != "b" || flat[2].Scenario != "a" {
		t.Fatalf("flattened order = %+v", flat)
	}
}
