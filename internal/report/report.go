// Package report aggregates metric records into per-scenario, per-province
// statistics and compares intervention scenarios against the baseline.
package report

import (
	"math"
	"sort"

	"github.com/idlab-discover/mchsim-cli/internal/simulation"
)

// Metric names a rate column of a record.
type Metric string

const (
	ANCCoverage            Metric = "anc_coverage"
	SkilledBirthAttendance Metric = "skilled_birth_attendance"
	ImmunizationCoverage   Metric = "immunization_coverage"
	DigitalEngagement      Metric = "digital_engagement"
)

// Rates lists every rate metric in report order.
var Rates = []Metric{ANCCoverage, SkilledBirthAttendance, ImmunizationCoverage, DigitalEngagement}

// ImprovementMetrics are the outcomes compared against the baseline.
var ImprovementMetrics = []Metric{ANCCoverage, SkilledBirthAttendance, ImmunizationCoverage}

// Value extracts the metric from a record.
func (m Metric) Value(r simulation.Record) float64 {
	switch m {
	case ANCCoverage:
		return r.ANCCoverage
	case SkilledBirthAttendance:
		return r.SkilledBirthAttendance
	case ImmunizationCoverage:
		return r.ImmunizationCoverage
	case DigitalEngagement:
		return r.DigitalEngagement
	}
	return 0
}

// Stat is a sample mean and standard deviation.
type Stat struct {
	Mean float64 `json:"mean" yaml:"mean"`
	Std  float64 `json:"std" yaml:"std"`
}

// Row summarises one (scenario, province) group.
type Row struct {
	Scenario   string          `json:"scenario" yaml:"scenario"`
	Province   string          `json:"province" yaml:"province"`
	N          int             `json:"n" yaml:"n"`
	Rates      map[Metric]Stat `json:"rates" yaml:"rates"`
	DelaysMean float64         `json:"care_seeking_delays_mean" yaml:"care_seeking_delays_mean"`
	DelaysSum  int             `json:"care_seeking_delays_sum" yaml:"care_seeking_delays_sum"`
}

// Improvement is the percent change of a province mean against baseline.
// Defined is false when the baseline mean is zero or missing.
type Improvement struct {
	Scenario string  `json:"scenario" yaml:"scenario"`
	Province string  `json:"province" yaml:"province"`
	Metric   Metric  `json:"metric" yaml:"metric"`
	Percent  float64 `json:"percent" yaml:"percent"`
	Defined  bool    `json:"defined" yaml:"defined"`
}

// Summary is the complete analysis of a result set.
type Summary struct {
	Rows         []Row         `json:"rows" yaml:"rows"`
	Improvements []Improvement `json:"improvements" yaml:"improvements"`
}

type groupKey struct{ scenario, province string }

// Summarize groups records by (scenario, province). Scenarios keep the order
// in which they first appear; provinces are sorted.
func Summarize(records []simulation.Record) Summary {
	var scenarios []string
	seen := map[string]bool{}
	groups := map[groupKey][]simulation.Record{}
	for _, r := range records {
		if !seen[r.Scenario] {
			seen[r.Scenario] = true
			scenarios = append(scenarios, r.Scenario)
		}
		k := groupKey{r.Scenario, r.Province}
		groups[k] = append(groups[k], r)
	}

	provincesOf := func(scenario string) []string {
		var ps []string
		for k := range groups {
			if k.scenario == scenario {
				ps = append(ps, k.province)
			}
		}
		sort.Strings(ps)
		return ps
	}

	var s Summary
	means := map[groupKey]Row{}
	for _, sc := range scenarios {
		for _, prov := range provincesOf(sc) {
			row := summarizeGroup(sc, prov, groups[groupKey{sc, prov}])
			means[groupKey{sc, prov}] = row
			s.Rows = append(s.Rows, row)
		}
	}

	for _, sc := range scenarios {
		if sc == simulation.Baseline {
			continue
		}
		for _, prov := range provincesOf(sc) {
			base, hasBase := means[groupKey{simulation.Baseline, prov}]
			cur := means[groupKey{sc, prov}]
			for _, m := range ImprovementMetrics {
				imp := Improvement{Scenario: sc, Province: prov, Metric: m}
				if hasBase && base.Rates[m].Mean != 0 {
					b := base.Rates[m].Mean
					imp.Percent = (cur.Rates[m].Mean - b) / b * 100
					imp.Defined = true
				}
				s.Improvements = append(s.Improvements, imp)
			}
		}
	}
	return s
}

func summarizeGroup(scenario, province string, recs []simulation.Record) Row {
	row := Row{Scenario: scenario, Province: province, N: len(recs), Rates: make(map[Metric]Stat, len(Rates))}
	for _, m := range Rates {
		vals := make([]float64, len(recs))
		for i, r := range recs {
			vals[i] = m.Value(r)
		}
		row.Rates[m] = stat(vals)
	}
	for _, r := range recs {
		row.DelaysSum += r.CareSeekingDelays
	}
	if len(recs) > 0 {
		row.DelaysMean = float64(row.DelaysSum) / float64(len(recs))
	}
	return row
}

// stat returns the mean and the sample (n-1) standard deviation; the
// deviation of fewer than two values is 0.
func stat(vals []float64) Stat {
	n := len(vals)
	if n == 0 {
		return Stat{}
	}
	sum := 0.0
	for _, v := range vals {
		sum += v
	}
	mean := sum / float64(n)
	if n < 2 {
		return Stat{Mean: mean}
	}
	ss := 0.0
	for _, v := range vals {
		d := v - mean
		ss += d * d
	}
	return Stat{Mean: mean, Std: math.Sqrt(ss / float64(n-1))}
}

// Find returns the row of a (scenario, province) group.
func (s Summary) Find(scenario, province string) (Row, bool) {
	for _, r := range s.Rows {
		if r.Scenario == scenario && r.Province == province {
			return r, true
		}
	}
	return Row{}, false
}
