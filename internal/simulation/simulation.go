// Package simulation orchestrates scenario runs over a set of communes.
//
// A Simulation owns one seeded generator. Every commune receives its own
// stream derived from it in commune order, so results do not depend on how
// many communes are stepped in parallel.
package simulation

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"

	"golang.org/x/sync/errgroup"

	"github.com/idlab-discover/mchsim-cli/internal/agent"
	"github.com/idlab-discover/mchsim-cli/internal/commune"
	"github.com/idlab-discover/mchsim-cli/internal/config"
	"github.com/idlab-discover/mchsim-cli/internal/demographics"
)

// seedStream is the fixed PCG stream selector paired with the configured seed.
const seedStream = 0x6d63_6873_696d_0001

// Options configures a Simulation.
type Options struct {
	OnProgress ProgressCallback
}

// Simulation runs scenarios over communes built from demographic rows.
type Simulation struct {
	cfg      config.Config
	rows     []demographics.Row
	master   *rand.Rand
	units    []unit
	results  *Results
	progress ProgressCallback
}

type unit struct {
	c   *commune.Commune
	rng *rand.Rand
}

// New validates cfg, keeps the latest year of every commune in rows and
// builds the initial population.
func New(cfg config.Config, rows []demographics.Row, opts Options) (*Simulation, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	latest := demographics.Latest(rows)
	if len(latest) == 0 {
		return nil, &demographics.InputError{Issues: []demographics.Issue{{Message: "no communes to simulate"}}}
	}
	progress := opts.OnProgress
	if progress == nil {
		progress = func(ProgressEvent) {} // no-op
	}
	s := &Simulation{
		cfg:      cfg,
		rows:     latest,
		master:   newMaster(cfg.Simulation.Seed),
		results:  &Results{},
		progress: progress,
	}
	if err := s.build(); err != nil {
		return nil, err
	}
	return s, nil
}

func newMaster(seed uint64) *rand.Rand { return rand.New(rand.NewPCG(seed, seedStream)) }

// Rebuild discards every commune and draws a fresh population. With
// ReseedPerScenario the generator restarts from the seed first, so the new
// population equals the initial one.
func (s *Simulation) Rebuild() error {
	if s.cfg.Simulation.ReseedPerScenario {
		s.master = newMaster(s.cfg.Simulation.Seed)
	}
	return s.build()
}

func (s *Simulation) build() error {
	s.progress(ProgressEvent{Type: EventBuildStart, Communes: len(s.rows)})
	units := make([]unit, 0, len(s.rows))
	for _, row := range s.rows {
		rng := rand.New(rand.NewPCG(s.master.Uint64(), s.master.Uint64()))
		c, err := commune.New(row, s.cfg, rng)
		if err != nil {
			return fmt.Errorf("build commune %s: %w", row.Commune, err)
		}
		units = append(units, unit{c: c, rng: rng})
	}
	s.units = units
	logf("initialised %d communes", len(units))
	s.progress(ProgressEvent{Type: EventBuildComplete, Communes: len(units)})
	return nil
}

// Communes returns the current communes in input order.
func (s *Simulation) Communes() []*commune.Commune {
	out := make([]*commune.Commune, len(s.units))
	for i, u := range s.units {
		out[i] = u.c
	}
	return out
}

// Config returns the configuration the simulation runs with.
func (s *Simulation) Config() config.Config { return s.cfg }

// Results returns every scenario run so far.
func (s *Simulation) Results() *Results { return s.results }

// Records flattens Results in scenario order.
func (s *Simulation) Records() []Record { return s.results.Records() }

// UnresolvedMothers sums skipped child care attempts across communes.
func (s *Simulation) UnresolvedMothers() int {
	n := 0
	for _, u := range s.units {
		n += u.c.UnresolvedMothers
	}
	return n
}

// RunScenario applies the scenario's interventions to the current communes
// and steps them for weeks, recording metrics every fourth week. It does not
// rebuild the population; call Rebuild first for a fresh start.
func (s *Simulation) RunScenario(ctx context.Context, sc Scenario, weeks int) ([]Record, error) {
	return s.runScenario(ctx, sc, weeks, 0, 1)
}

func (s *Simulation) runScenario(ctx context.Context, sc Scenario, weeks, index, total int) ([]Record, error) {
	if weeks <= 0 {
		return nil, fmt.Errorf("weeks must be positive (got %d)", weeks)
	}
	if sc.Name == "" {
		return nil, errors.New("scenario has no name")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	active := sc.Active()
	s.progress(ProgressEvent{Type: EventScenarioStart, Scenario: sc.Name, Index: index, Total: total, Weeks: weeks, Communes: len(s.units)})
	logf("running scenario %s (interventions: %s) for %d weeks", sc.Name, active, weeks)

	coverage := s.cfg.Interventions.Coverage
	for _, u := range s.units {
		for _, iv := range active.List() {
			if _, err := u.c.ApplyIntervention(u.rng, iv, coverage); err != nil {
				return nil, err
			}
		}
	}
	s.progress(ProgressEvent{Type: EventInterventionsApplied, Scenario: sc.Name, Index: index, Total: total, Weeks: weeks})

	records := make([]Record, 0, (weeks/commune.MonthWeeks+1)*len(s.units))
	for week := 0; week < weeks; week++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		if err := s.step(ctx, week, active); err != nil {
			return nil, err
		}
		if week%commune.MonthWeeks == 0 {
			for _, u := range s.units {
				records = append(records, newRecord(sc.Name, week, u.c, u.c.CalculateMetrics()))
			}
		}
		if week%13 == 0 {
			logf("%s: week %d/%d completed", sc.Name, week, weeks)
		}
		s.progress(ProgressEvent{Type: EventWeekComplete, Scenario: sc.Name, Index: index, Total: total, Week: week, Weeks: weeks})
	}

	s.results.Set(sc.Name, records)
	s.progress(ProgressEvent{Type: EventScenarioComplete, Scenario: sc.Name, Index: index, Total: total, Weeks: weeks, Message: fmt.Sprintf("%d records", len(records))})
	return records, nil
}

// step advances every commune one week, in parallel when Workers > 1. Each
// commune touches only its own agents and generator.
func (s *Simulation) step(ctx context.Context, week int, active agent.Active) error {
	workers := s.cfg.Simulation.Workers
	if workers <= 1 || len(s.units) < 2 {
		for _, u := range s.units {
			u.c.Step(u.rng, week, active)
		}
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, u := range s.units {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			u.c.Step(u.rng, week, active)
			return nil
		})
	}
	return g.Wait()
}

// RunScenarios rebuilds the population before each scenario and runs them in
// order. Earlier results are discarded.
func (s *Simulation) RunScenarios(ctx context.Context, scenarios []Scenario, weeks int) (*Results, error) {
	s.results = &Results{}
	for i, sc := range scenarios {
		if err := s.Rebuild(); err != nil {
			return nil, err
		}
		if _, err := s.runScenario(ctx, sc, weeks, i, len(scenarios)); err != nil {
			return nil, fmt.Errorf("scenario %s: %w", sc.Name, err)
		}
	}
	return s.results, nil
}

// RunAll runs the six built-in scenarios.
func (s *Simulation) RunAll(ctx context.Context, weeks int) (*Results, error) {
	return s.RunScenarios(ctx, Builtin(), weeks)
}
