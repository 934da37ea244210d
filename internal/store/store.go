// Package store keeps a history of simulation runs in a SQLite database.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/idlab-discover/mchsim-cli/internal/config"
	"github.com/idlab-discover/mchsim-cli/internal/simulation"
)

// timeLayout is fixed width so created_at sorts lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// ErrNotFound is returned when no run matches an id.
var ErrNotFound = errors.New("run not found")

// Store is a run history database.
type Store struct {
	db *sql.DB
}

// Run describes one stored simulation run.
type Run struct {
	ID        string        `json:"run_id" yaml:"run_id"`
	CreatedAt time.Time     `json:"created_at" yaml:"created_at"`
	Label     string        `json:"label,omitempty" yaml:"label,omitempty"`
	Seed      uint64        `json:"seed" yaml:"seed"`
	Weeks     int           `json:"weeks" yaml:"weeks"`
	Reseed    bool          `json:"reseed_per_scenario" yaml:"reseed_per_scenario"`
	Coverage  float64       `json:"coverage" yaml:"coverage"`
	Scenarios []string      `json:"scenarios" yaml:"scenarios"`
	Inputs    []string      `json:"inputs,omitempty" yaml:"inputs,omitempty"`
	Records   int           `json:"records" yaml:"records"`
	Config    config.Config `json:"-" yaml:"-"`
}

// SaveOptions carries run metadata that is not part of the configuration.
type SaveOptions struct {
	Label  string
	Inputs []string
}

// Open opens (creating if needed) the database at path and migrates it.
func Open(path string) (*Store, error) {
	database, err := openDB(path)
	if err != nil {
		return nil, err
	}
	if err := applyMigrations(database); err != nil {
		_ = database.Close()
		return nil, err
	}
	return &Store{db: database}, nil
}

// Close releases the database.
func (s *Store) Close() error { return s.db.Close() }

// SaveRun stores a run and its records in one transaction and returns it
// with a fresh id.
func (s *Store) SaveRun(ctx context.Context, cfg config.Config, results *simulation.Results, opts SaveOptions) (Run, error) {
	cfgJSON, err := json.Marshal(cfg)
	if err != nil {
		return Run{}, fmt.Errorf("encode config: %w", err)
	}
	run := Run{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
		Label:     opts.Label,
		Seed:      cfg.Simulation.Seed,
		Weeks:     cfg.Simulation.Weeks,
		Reseed:    cfg.Simulation.ReseedPerScenario,
		Coverage:  cfg.Interventions.Coverage,
		Scenarios: results.Scenarios(),
		Inputs:    opts.Inputs,
		Records:   results.Len(),
		Config:    cfg,
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Run{}, err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
INSERT INTO runs (run_id, created_at, seed, weeks, reseed, coverage, scenarios, config_json, label, inputs)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.CreatedAt.Format(timeLayout), strconv.FormatUint(run.Seed, 10),
		run.Weeks, run.Reseed, run.Coverage, strings.Join(run.Scenarios, ","), string(cfgJSON),
		run.Label, strings.Join(run.Inputs, "\n"),
	); err != nil {
		return Run{}, fmt.Errorf("insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO metric_records (run_id, seq, scenario, commune, province, week,
	anc_coverage, skilled_birth_attendance, immunization_coverage, digital_engagement, care_seeking_delays)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return Run{}, err
	}
	defer stmt.Close()

	for i, r := range results.Records() {
		if _, err := stmt.ExecContext(ctx, run.ID, i, r.Scenario, r.Commune, r.Province, r.Week,
			r.ANCCoverage, r.SkilledBirthAttendance, r.ImmunizationCoverage, r.DigitalEngagement, r.CareSeekingDelays,
		); err != nil {
			return Run{}, fmt.Errorf("insert record %d: %w", i, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return Run{}, err
	}
	return run, nil
}

const runColumns = `r.run_id, r.created_at, r.label, r.seed, r.weeks, r.reseed, r.coverage, r.scenarios, r.inputs, r.config_json,
	(SELECT COUNT(1) FROM metric_records m WHERE m.run_id = r.run_id)`

// ListRuns returns the most recent runs first. limit <= 0 means all.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	q := `SELECT ` + runColumns + ` FROM runs r ORDER BY r.created_at DESC, r.rowid DESC`
	var args []any
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, run)
	}
	return out, rows.Err()
}

// GetRun resolves a full run id or a unique prefix of one.
func (s *Store) GetRun(ctx context.Context, id string) (Run, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Run{}, ErrNotFound
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+runColumns+` FROM runs r WHERE r.run_id = ? OR r.run_id LIKE ? ESCAPE '\' LIMIT 2`,
		id, escapeLike(id)+"%")
	if err != nil {
		return Run{}, err
	}
	defer rows.Close()

	var found []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return Run{}, err
		}
		if run.ID == id {
			return run, nil
		}
		found = append(found, run)
	}
	if err := rows.Err(); err != nil {
		return Run{}, err
	}
	switch len(found) {
	case 0:
		return Run{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	case 1:
		return found[0], nil
	}
	return Run{}, fmt.Errorf("run id prefix %q is ambiguous", id)
}

// LoadRecords returns a run's records in their original order.
func (s *Store) LoadRecords(ctx context.Context, runID string) ([]simulation.Record, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT scenario, commune, province, week, anc_coverage, skilled_birth_attendance,
	immunization_coverage, digital_engagement, care_seeking_delays
FROM metric_records WHERE run_id = ? ORDER BY seq`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []simulation.Record
	for rows.Next() {
		var r simulation.Record
		if err := rows.Scan(&r.Scenario, &r.Commune, &r.Province, &r.Week, &r.ANCCoverage,
			&r.SkilledBirthAttendance, &r.ImmunizationCoverage, &r.DigitalEngagement, &r.CareSeekingDelays); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// DeleteRun removes a run and its records.
func (s *Store) DeleteRun(ctx context.Context, runID string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM runs WHERE run_id = ?`, runID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, runID)
	}
	return nil
}

type scanner interface{ Scan(dest ...any) error }

func scanRun(sc scanner) (Run, error) {
	var (
		run                      Run
		created, seed, scenarios string
		inputs, cfgJSON          string
	)
	if err := sc.Scan(&run.ID, &created, &run.Label, &seed, &run.Weeks, &run.Reseed, &run.Coverage,
		&scenarios, &inputs, &cfgJSON, &run.Records); err != nil {
		return Run{}, err
	}
	var err error
	if run.CreatedAt, err = time.Parse(timeLayout, created); err != nil {
		return Run{}, fmt.Errorf("run %s: created_at: %w", run.ID, err)
	}
	if run.Seed, err = strconv.ParseUint(seed, 10, 64); err != nil {
		return Run{}, fmt.Errorf("run %s: seed: %w", run.ID, err)
	}
	if scenarios != "" {
		run.Scenarios = strings.Split(scenarios, ",")
	}
	if inputs != "" {
		run.Inputs = strings.Split(inputs, "\n")
	}
	if err := json.Unmarshal([]byte(cfgJSON), &run.Config); err != nil {
		return Run{}, fmt.Errorf("run %s: config: %w", run.ID, err)
	}
	return run, nil
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
