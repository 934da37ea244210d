package config

import (
	"fmt"
	"sort"
	"strconv"
)

// Property is a flattened key/value view of a scalar setting.
type Property struct {
	Key   string
	Value string
}

// Properties flattens the scalar settings into sorted key/value pairs.
// Province profiles are summarised by name only.
func (c Config) Properties() []Property {
	f := func(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }
	i := strconv.Itoa
	props := []Property{
		{"simulation.seed", strconv.FormatUint(c.Simulation.Seed, 10)},
		{"simulation.weeks", i(c.Simulation.Weeks)},
		{"simulation.reseed_per_scenario", strconv.FormatBool(c.Simulation.ReseedPerScenario)},
		{"simulation.workers", i(c.Simulation.Workers)},
		{"interventions.coverage", f(c.Interventions.Coverage)},
		{"agents.anc_target", i(c.Agents.ANCTarget)},
		{"agents.immunization_target", i(c.Agents.ImmunizationTarget)},
		{"agents.chw_max_visits", i(c.Agents.CHWMaxVisits)},
		{"agents.facility_capacity", i(c.Agents.FacilityCapacity)},
		{"agents.pregnancy_incidence", f(c.Agents.PregnancyIncidence)},
		{"agents.initial_pregnancy_fraction", f(c.Agents.InitialPregnancyFraction)},
		{"agents.mobile_access_rate", f(c.Agents.MobileAccessRate)},
		{"agents.internet_access_rate", f(c.Agents.InternetAccessRate)},
		{"agents.mean_distance_km", f(c.Agents.MeanDistanceKm)},
		{"agents.people_per_chw", i(c.Agents.PeoplePerCHW)},
		{"agents.chw_coverage_households", i(c.Agents.CHWCoverageHouseholds)},
		{"agents.majority_ethnicity", c.Agents.MajorityEthnicity},
		{"default_province", c.DefaultProvince},
	}
	names := make([]string, 0, len(c.Provinces))
	for name := range c.Provinces {
		names = append(names, name)
	}
	sort.Strings(names)
	for n, name := range names {
		props = append(props, Property{fmt.Sprintf("provinces.%d", n), name})
	}
	sort.SliceStable(props, func(a, b int) bool { return props[a].Key < props[b].Key })
	return props
}
