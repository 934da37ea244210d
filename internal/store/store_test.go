package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/idlab-discover/mchsim-cli/internal/config"
	"github.com/idlab-discover/mchsim-cli/internal/simulation"
)

func tempStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func sampleResults() *simulation.Results {
	return simulation.NewResults([]simulation.Record{
		{Scenario: "baseline", Commune: "Sin Thau", Province: "Dien Bien", Week: 0, ANCCoverage: 0.25, CareSeekingDelays: 1},
		{Scenario: "baseline", Commune: "Sin Thau", Province: "Dien Bien", Week: 4, ANCCoverage: 0.5, CareSeekingDelays: 3},
		{Scenario: "sms_outreach", Commune: "Sin Thau", Province: "Dien Bien", Week: 0, ANCCoverage: 1.0 / 3, DigitalEngagement: 0.1},
	})
}

func TestMigrationsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.db")
	for i := 0; i < 2; i++ {
		s, err := Open(path)
		if err != nil {
			t.Fatalf("Open #%d: %v", i, err)
		}
		var latest int
		if err := s.db.QueryRow(`SELECT COALESCE(MAX(version), 0) FROM schema_version`).Scan(&latest); err != nil {
			t.Fatalf("read schema version: %v", err)
		}
		if latest != len(migrations) {
			t.Fatalf("schema version = %d, want %d", latest, len(migrations))
		}
		_ = s.Close()
	}
}

func TestSaveRun_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s := tempStore(t)

	cfg := config.Default()
	cfg.Simulation.Seed = 1<<63 + 5 // beyond int64
	cfg.Simulation.ReseedPerScenario = true

	run, err := s.SaveRun(ctx, cfg, sampleResults(), SaveOptions{Label: "pilot", Inputs: []string{"a.csv", "b.csv"}})
	if err != nil {
		t.Fatalf("SaveRun: %v", err)
	}
	if run.ID == "" || run.Records != 3 {
		t.Fatalf("unexpected run: %+v", run)
	}

	got, err := s.GetRun(ctx, run.ID)
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if got.Seed != cfg.Simulation.Seed || !got.Reseed || got.Weeks != 52 || got.Coverage != 0.7 {
		t.Fatalf("run parameters lost: %+v", got)
	}
	if got.Label != "pilot" || len(got.Inputs) != 2 || got.Inputs[1] != "b.csv" {
		t.Fatalf("run metadata lost: %+v", got)
	}
	if len(got.Scenarios) != 2 || got.Scenarios[0] != "baseline" || got.Scenarios[1] != "sms_outreach" {
		t.Fatalf("scenarios = %v", got.Scenarios)
	}
	if got.Records != 3 {
		t.Fatalf("records = %d, want 3", got.Records)
	}
	if _, _, ok := got.Config.Profile(config.DienBien); !ok {
		t.Fatalf("config not restored: %+v", got.Config)
	}

	recs, err := s.LoadRecords(ctx, run.ID)
	if err != nil {
		t.Fatalf("LoadRecords: %v", err)
	}
	want := sampleResults().Records()
	if len(recs) != len(want) {
		t.Fatalf("got %d records, want %d", len(recs), len(want))
	}
	for i := range want {
		if recs[i] != want[i] {
			t.Fatalf("record %d = %+v, want %+v", i, recs[i], want[i])
		}
	}
}

func TestListRuns_NewestFirstWithLimit(t *testing.T) {
	ctx := context.Background()
	s := tempStore(t)

	var ids []string
	for i := 0; i < 3; i++ {
		run, err := s.SaveRun(ctx, config.Default(), sampleResults(), SaveOptions{})
		if err != nil {
			t.Fatalf("SaveRun: %v", err)
		}
		ids = append(ids, run.ID)
	}

	runs, err := s.ListRuns(ctx, 0)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 3 || runs[0].ID != ids[2] || runs[2].ID != ids[0] {
		t.Fatalf("unexpected order: %v", runs)
	}
	limited, err := s.ListRuns(ctx, 2)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(limited) != 2 {
		t.Fatalf("limit ignored: %d runs", len(limited))
	}
}

func TestGetRun_PrefixAndMissing(t *testing.T) {
	ctx := context.Background()
	s := tempStore(t)

	run, err := s.SaveRun(ctx, config.Default(), sampleResults(), SaveOptions{})
	if err != nil {
		t.Fatalf("SaveRun: %v", err)
	}
	got, err := s.GetRun(ctx, run.ID[:8])
	if err != nil || got.ID != run.ID {
		t.Fatalf("prefix lookup = %v, %v", got.ID, err)
	}
	if _, err := s.GetRun(ctx, "zzzz"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := s.GetRun(ctx, "%"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("LIKE wildcards must be literal, got %v", err)
	}
}

func TestDeleteRun_CascadesToRecords(t *testing.T) {
	ctx := context.Background()
	s := tempStore(t)

	run, err := s.SaveRun(ctx, config.Default(), sampleResults(), SaveOptions{})
	if err != nil {
		t.Fatalf("SaveRun: %v", err)
	}
	if err := s.DeleteRun(ctx, run.ID); err != nil {
		t.Fatalf("DeleteRun: %v", err)
	}
	recs, err := s.LoadRecords(ctx, run.ID)
	if err != nil {
		t.Fatalf("LoadRecords: %v", err)
	}
	if len(recs) != 0 {
		t.Fatalf("records survived deletion: %d", len(recs))
	}
	if err := s.DeleteRun(ctx, run.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}
