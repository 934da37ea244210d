package simulation

import "github.com/idlab-discover/mchsim-cli/internal/commune"

// Record is one commune's metric snapshot at a monthly checkpoint.
type Record struct {
	Scenario               string  `json:"scenario" yaml:"scenario"`
	Commune                string  `json:"commune" yaml:"commune"`
	Province               string  `json:"province" yaml:"province"`
	Week                   int     `json:"week" yaml:"week"`
	ANCCoverage            float64 `json:"anc_coverage" yaml:"anc_coverage"`
	SkilledBirthAttendance float64 `json:"skilled_birth_attendance" yaml:"skilled_birth_attendance"`
	ImmunizationCoverage   float64 `json:"immunization_coverage" yaml:"immunization_coverage"`
	DigitalEngagement      float64 `json:"digital_engagement" yaml:"digital_engagement"`
	CareSeekingDelays      int     `json:"care_seeking_delays" yaml:"care_seeking_delays"`
}

func newRecord(scenario string, week int, c *commune.Commune, m commune.Metrics) Record {
	return Record{
		Scenario:               scenario,
		Commune:                c.Name,
		Province:               c.Province,
		Week:                   week,
		ANCCoverage:            m.ANCCoverage,
		SkilledBirthAttendance: m.SkilledBirthAttendance,
		ImmunizationCoverage:   m.ImmunizationCoverage,
		DigitalEngagement:      m.DigitalEngagement,
		CareSeekingDelays:      m.CareSeekingDelays,
	}
}

// Results maps scenario names to their records, remembering run order.
type Results struct {
	order  []string
	series map[string][]Record
}

// NewResults groups records by scenario in order of first appearance.
func NewResults(records []Record) *Results {
	r := &Results{}
	for _, rec := range records {
		r.append(rec)
	}
	return r
}

// Set stores the records of one scenario, replacing any earlier run of it.
func (r *Results) Set(scenario string, records []Record) {
	if r.series == nil {
		r.series = map[string][]Record{}
	}
	if _, ok := r.series[scenario]; !ok {
		r.order = append(r.order, scenario)
	}
	r.series[scenario] = records
}

func (r *Results) append(rec Record) {
	if r.series == nil {
		r.series = map[string][]Record{}
	}
	if _, ok := r.series[rec.Scenario]; !ok {
		r.order = append(r.order, rec.Scenario)
	}
	r.series[rec.Scenario] = append(r.series[rec.Scenario], rec)
}

// Scenarios returns scenario names in run order.
func (r *Results) Scenarios() []string { return append([]string(nil), r.order...) }

// Series returns the records of one scenario.
func (r *Results) Series(scenario string) []Record { return r.series[scenario] }

// Records flattens every scenario in run order.
func (r *Results) Records() []Record {
	var out []Record
	for _, name := range r.order {
		out = append(out, r.series[name]...)
	}
	return out
}

// Len returns the total number of records.
func (r *Results) Len() int {
	n := 0
	for _, recs := range r.series {
		n += len(recs)
	}
	return n
}
