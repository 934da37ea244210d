// Package commune models one administrative area: its agent populations, the
// intervention targeting rules and the weekly simulation step.
package commune

import (
	"fmt"
	"math/rand/v2"

	"github.com/idlab-discover/mchsim-cli/internal/agent"
	"github.com/idlab-discover/mchsim-cli/internal/config"
	"github.com/idlab-discover/mchsim-cli/internal/demographics"
)

// Metrics is a commune-level performance snapshot.
type Metrics struct {
	ANCCoverage            float64 `json:"anc_coverage" yaml:"anc_coverage"`
	SkilledBirthAttendance float64 `json:"skilled_birth_attendance" yaml:"skilled_birth_attendance"`
	ImmunizationCoverage   float64 `json:"immunization_coverage" yaml:"immunization_coverage"`
	DigitalEngagement      float64 `json:"digital_engagement" yaml:"digital_engagement"`
	CareSeekingDelays      int     `json:"care_seeking_delays" yaml:"care_seeking_delays"`
}

// Commune owns its agents. Collection sizes are fixed at construction.
type Commune struct {
	Name            string
	Province        string
	District        string
	TotalPopulation int

	Mothers    []*agent.Maternal
	Children   []*agent.Child
	CHWs       []*agent.CHW
	Facilities []*agent.Facility

	// Metrics is the most recent CalculateMetrics result.
	Metrics Metrics

	// UnresolvedMothers counts child care attempts skipped because the
	// child's mother id matched no mother in this commune.
	UnresolvedMothers int

	incidence float64
	byID      map[string]*agent.Maternal
}

// New builds a commune from one demographic row, drawing every agent
// attribute from rng in a fixed order.
func New(row demographics.Row, cfg config.Config, rng *rand.Rand) (*Commune, error) {
	if err := row.Check(); err != nil {
		return nil, err
	}
	profile, fallback, ok := cfg.Profile(row.Province)
	if !ok {
		return nil, fmt.Errorf("commune %s: no sampling profile for province %q", row.Commune, row.Province)
	}
	if fallback {
		logf(row.Commune, "no profile for province %q, using %q", row.Province, cfg.DefaultProvince)
	}

	a := cfg.Agents
	c := &Commune{
		Name:            row.Commune,
		Province:        row.Province,
		District:        row.District,
		TotalPopulation: row.TotalPopulation,
		incidence:       a.PregnancyIncidence,
		byID:            make(map[string]*agent.Maternal, row.Women15to49),
	}

	params := agent.MaternalParams{ANCTarget: a.ANCTarget, MajorityEthnicity: a.MajorityEthnicity}
	c.Mothers = make([]*agent.Maternal, 0, row.Women15to49)
	for i := 0; i < row.Women15to49; i++ {
		attrs := agent.Attributes{
			Age:            uniformInt(rng, 15, 49),
			Ethnicity:      sampleEthnicity(rng, profile),
			Literacy:       sampleUnit(rng, profile.Literacy),
			Poverty:        sampleUnit(rng, profile.Poverty),
			MobileAccess:   rng.Float64() < a.MobileAccessRate,
			InternetAccess: rng.Float64() < a.InternetAccessRate,
			DistanceKm:     sampleDistance(rng, a.MeanDistanceKm),
		}
		m := agent.NewMaternal(fmt.Sprintf("%s_M_%d", c.Name, i), c.Name, attrs, params)
		if rng.Float64() < a.InitialPregnancyFraction {
			m.BecomePregnant()
		}
		c.Mothers = append(c.Mothers, m)
		c.byID[m.ID] = m
	}

	c.Children = make([]*agent.Child, 0, row.ChildrenUnder5)
	for i := 0; i < row.ChildrenUnder5; i++ {
		motherID := fmt.Sprintf("Unknown_%d", i)
		if len(c.Mothers) > 0 {
			motherID = c.Mothers[rng.IntN(len(c.Mothers))].ID
		}
		attrs := agent.Attributes{
			Age:        uniformInt(rng, 0, 5),
			Ethnicity:  sampleEthnicity(rng, profile),
			Poverty:    sampleUnit(rng, profile.Poverty),
			DistanceKm: sampleDistance(rng, a.MeanDistanceKm),
		}
		ageMonths := uniformInt(rng, 0, 59)
		c.Children = append(c.Children, agent.NewChild(
			fmt.Sprintf("%s_C_%d", c.Name, i), c.Name, motherID, attrs, ageMonths, a.ImmunizationTarget))
	}

	numCHW := max(1, row.TotalPopulation/max(1, a.PeoplePerCHW))
	c.CHWs = make([]*agent.CHW, 0, numCHW)
	for i := 0; i < numCHW; i++ {
		c.CHWs = append(c.CHWs, agent.NewCHW(fmt.Sprintf("%s_CHW_%d", c.Name, i), c.Name, a.CHWCoverageHouseholds, a.CHWMaxVisits))
	}

	c.Facilities = []*agent.Facility{
		agent.NewFacility(c.Name+"_Clinic", c.Name, a.FacilityCapacity, agent.DefaultServices),
	}

	logf(c.Name, "initialised %d mothers, %d children, %d CHWs", len(c.Mothers), len(c.Children), len(c.CHWs))
	return c, nil
}

// Mother resolves a mother id. Children may carry ids that resolve to nothing.
func (c *Commune) Mother(id string) (*agent.Maternal, bool) {
	m, ok := c.byID[id]
	return m, ok
}

// PregnantCount returns the number of currently pregnant mothers.
func (c *Commune) PregnantCount() int {
	n := 0
	for _, m := range c.Mothers {
		if m.Pregnant {
			n++
		}
	}
	return n
}

// CHWCapacity returns the visits remaining across all CHWs this month.
func (c *Commune) CHWCapacity() int {
	n := 0
	for _, w := range c.CHWs {
		n += w.Remaining()
	}
	return n
}
