// Package config defines the simulation parameters and loads them from viper.
//
// Every behavioral constant the engine uses is a field here so that runs can
// be reproduced and provinces re-parameterised without code changes. Values
// come from (lowest to highest precedence) Default(), the YAML config file,
// MCHSIM_* environment variables and command-line flags.
package config

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/viper"
)

// Config is the full parameter set of a simulation run.
type Config struct {
	Simulation      SimulationConfig           `mapstructure:"simulation" json:"simulation" yaml:"simulation"`
	Interventions   InterventionConfig         `mapstructure:"interventions" json:"interventions" yaml:"interventions"`
	Agents          AgentConfig                `mapstructure:"agents" json:"agents" yaml:"agents"`
	Provinces       map[string]ProvinceProfile `mapstructure:"provinces" json:"provinces" yaml:"provinces"`
	DefaultProvince string                     `mapstructure:"default_province" json:"default_province" yaml:"default_province"`
}

// SimulationConfig controls scheduling and entropy.
type SimulationConfig struct {
	Seed  uint64 `mapstructure:"seed" json:"seed" yaml:"seed"`
	Weeks int    `mapstructure:"weeks" json:"weeks" yaml:"weeks"`
	// ReseedPerScenario resets the generator before each scenario so all
	// scenarios start from an identical population. When false every scenario
	// is an independent stochastic replicate.
	ReseedPerScenario bool `mapstructure:"reseed_per_scenario" json:"reseed_per_scenario" yaml:"reseed_per_scenario"`
	// Workers bounds how many communes are stepped concurrently within a week.
	Workers int `mapstructure:"workers" json:"workers" yaml:"workers"`
}

// InterventionConfig holds intervention roll-out parameters.
type InterventionConfig struct {
	Coverage float64 `mapstructure:"coverage" json:"coverage" yaml:"coverage"`
}

// AgentConfig holds population and behavior constants.
type AgentConfig struct {
	ANCTarget                int     `mapstructure:"anc_target" json:"anc_target" yaml:"anc_target"`
	ImmunizationTarget       int     `mapstructure:"immunization_target" json:"immunization_target" yaml:"immunization_target"`
	CHWMaxVisits             int     `mapstructure:"chw_max_visits" json:"chw_max_visits" yaml:"chw_max_visits"`
	FacilityCapacity         int     `mapstructure:"facility_capacity" json:"facility_capacity" yaml:"facility_capacity"`
	PregnancyIncidence       float64 `mapstructure:"pregnancy_incidence" json:"pregnancy_incidence" yaml:"pregnancy_incidence"`
	InitialPregnancyFraction float64 `mapstructure:"initial_pregnancy_fraction" json:"initial_pregnancy_fraction" yaml:"initial_pregnancy_fraction"`
	MobileAccessRate         float64 `mapstructure:"mobile_access_rate" json:"mobile_access_rate" yaml:"mobile_access_rate"`
	InternetAccessRate       float64 `mapstructure:"internet_access_rate" json:"internet_access_rate" yaml:"internet_access_rate"`
	MeanDistanceKm           float64 `mapstructure:"mean_distance_km" json:"mean_distance_km" yaml:"mean_distance_km"`
	PeoplePerCHW             int     `mapstructure:"people_per_chw" json:"people_per_chw" yaml:"people_per_chw"`
	CHWCoverageHouseholds    int     `mapstructure:"chw_coverage_households" json:"chw_coverage_households" yaml:"chw_coverage_households"`
	MajorityEthnicity        string  `mapstructure:"majority_ethnicity" json:"majority_ethnicity" yaml:"majority_ethnicity"`
}

// ProvinceProfile parameterises attribute sampling for one province.
type ProvinceProfile struct {
	Ethnicities []EthnicityWeight `mapstructure:"ethnicities" json:"ethnicities" yaml:"ethnicities"`
	Literacy    Normal            `mapstructure:"literacy" json:"literacy" yaml:"literacy"`
	Poverty     Normal            `mapstructure:"poverty" json:"poverty" yaml:"poverty"`
}

// EthnicityWeight is one entry of a categorical distribution.
type EthnicityWeight struct {
	Name   string  `mapstructure:"name" json:"name" yaml:"name"`
	Weight float64 `mapstructure:"weight" json:"weight" yaml:"weight"`
}

// Normal is a mean / standard deviation pair.
type Normal struct {
	Mean float64 `mapstructure:"mean" json:"mean" yaml:"mean"`
	SD   float64 `mapstructure:"sd" json:"sd" yaml:"sd"`
}

// Province names used by the default profiles.
const (
	DienBien   = "Dien Bien"
	ThaiNguyen = "Thai Nguyen"
)

// Default returns the calibrated parameter set.
func Default() Config {
	return Config{
		Simulation: SimulationConfig{
			Seed:    42,
			Weeks:   52,
			Workers: 1,
		},
		Interventions: InterventionConfig{Coverage: 0.7},
		Agents: AgentConfig{
			ANCTarget:                4,
			ImmunizationTarget:       8,
			CHWMaxVisits:             20,
			FacilityCapacity:         50,
			PregnancyIncidence:       0.002,
			InitialPregnancyFraction: 0.15,
			MobileAccessRate:         0.8,
			InternetAccessRate:       0.4,
			MeanDistanceKm:           3.0,
			PeoplePerCHW:             500,
			CHWCoverageHouseholds:    100,
			MajorityEthnicity:        "Kinh",
		},
		Provinces: map[string]ProvinceProfile{
			DienBien: {
				Ethnicities: []EthnicityWeight{
					{"Kinh", 0.3}, {"Thai", 0.25}, {"Hmong", 0.2}, {"Muong", 0.15}, {"Other", 0.1},
				},
				Literacy: Normal{Mean: 0.6, SD: 0.2},
				Poverty:  Normal{Mean: 0.7, SD: 0.2},
			},
			ThaiNguyen: {
				Ethnicities: []EthnicityWeight{
					{"Kinh", 0.6}, {"Tay", 0.15}, {"Nung", 0.1}, {"Thai", 0.1}, {"Other", 0.05},
				},
				Literacy: Normal{Mean: 0.8, SD: 0.15},
				Poverty:  Normal{Mean: 0.4, SD: 0.2},
			},
		},
		DefaultProvince: ThaiNguyen,
	}
}

// FromViper overlays every key viper knows about onto Default().
func FromViper(v *viper.Viper) (Config, error) {
	cfg := Default()
	if v == nil {
		return cfg, nil
	}
	defaults := cfg.Provinces
	cfg.Provinces = nil
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	cfg.Provinces = mergeProvinces(defaults, cfg.Provinces)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks ranges and internal consistency.
func (c Config) Validate() error {
	var problems []string
	add := func(format string, args ...any) { problems = append(problems, fmt.Sprintf(format, args...)) }

	if c.Simulation.Weeks <= 0 {
		add("simulation.weeks must be positive (got %d)", c.Simulation.Weeks)
	}
	if c.Simulation.Workers < 0 {
		add("simulation.workers must not be negative (got %d)", c.Simulation.Workers)
	}
	if !unit(c.Interventions.Coverage) {
		add("interventions.coverage must be within [0,1] (got %v)", c.Interventions.Coverage)
	}

	a := c.Agents
	for name, v := range map[string]int{
		"agents.anc_target":          a.ANCTarget,
		"agents.immunization_target": a.ImmunizationTarget,
		"agents.people_per_chw":      a.PeoplePerCHW,
	} {
		if v <= 0 {
			add("%s must be positive (got %d)", name, v)
		}
	}
	for name, v := range map[string]int{
		"agents.chw_max_visits":          a.CHWMaxVisits,
		"agents.facility_capacity":       a.FacilityCapacity,
		"agents.chw_coverage_households": a.CHWCoverageHouseholds,
	} {
		if v < 0 {
			add("%s must not be negative (got %d)", name, v)
		}
	}
	for name, v := range map[string]float64{
		"agents.pregnancy_incidence":        a.PregnancyIncidence,
		"agents.initial_pregnancy_fraction": a.InitialPregnancyFraction,
		"agents.mobile_access_rate":         a.MobileAccessRate,
		"agents.internet_access_rate":       a.InternetAccessRate,
	} {
		if !unit(v) {
			add("%s must be within [0,1] (got %v)", name, v)
		}
	}
	if a.MeanDistanceKm < 0 {
		add("agents.mean_distance_km must not be negative (got %v)", a.MeanDistanceKm)
	}

	if len(c.Provinces) == 0 {
		add("at least one province profile is required")
	}
	for name, p := range c.Provinces {
		total := 0.0
		for _, e := range p.Ethnicities {
			if e.Weight < 0 {
				add("provinces.%s: ethnicity %q has a negative weight", name, e.Name)
			}
			total += e.Weight
		}
		if total <= 0 {
			add("provinces.%s: ethnicity weights must sum to a positive value", name)
		}
		if p.Literacy.SD < 0 || p.Poverty.SD < 0 {
			add("provinces.%s: standard deviations must not be negative", name)
		}
	}
	if c.DefaultProvince != "" {
		if _, ok := c.lookup(c.DefaultProvince); !ok {
			add("default_province %q has no profile", c.DefaultProvince)
		}
	}

	if len(problems) == 0 {
		return nil
	}
	sort.Strings(problems)
	return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
}

// Profile returns the sampling profile for a province. Unknown provinces fall
// back to DefaultProvince; fallback reports whether that happened.
func (c Config) Profile(province string) (p ProvinceProfile, fallback bool, ok bool) {
	if p, ok := c.lookup(province); ok {
		return p, false, true
	}
	if c.DefaultProvince == "" {
		return ProvinceProfile{}, false, false
	}
	p, ok = c.lookup(c.DefaultProvince)
	return p, true, ok
}

// mergeProvinces combines the built-in profiles with decoded ones. viper
// lower-cases map keys, so entries are matched by normalized name; a decoded
// entry replaces the built-in one under its original spelling, and any field
// it leaves empty keeps the built-in value.
func mergeProvinces(defaults, decoded map[string]ProvinceProfile) map[string]ProvinceProfile {
	out := make(map[string]ProvinceProfile, len(defaults)+len(decoded))
	canonical := make(map[string]string, len(defaults))
	for name, p := range defaults {
		out[name] = p
		canonical[normalize(name)] = name
	}
	for name, p := range decoded {
		key := normalize(name)
		base, known := canonical[key]
		if !known {
			out[name] = p
			continue
		}
		def := defaults[base]
		if len(p.Ethnicities) == 0 {
			p.Ethnicities = def.Ethnicities
		}
		if p.Literacy == (Normal{}) {
			p.Literacy = def.Literacy
		}
		if p.Poverty == (Normal{}) {
			p.Poverty = def.Poverty
		}
		out[base] = p
	}
	return out
}

// viper lower-cases map keys, so province names are matched case-insensitively.
func (c Config) lookup(province string) (ProvinceProfile, bool) {
	if p, ok := c.Provinces[province]; ok {
		return p, true
	}
	want := normalize(province)
	for name, p := range c.Provinces {
		if normalize(name) == want {
			return p, true
		}
	}
	return ProvinceProfile{}, false
}

func normalize(s string) string { return strings.ToLower(strings.Join(strings.Fields(s), " ")) }

func unit(v float64) bool { return v >= 0 && v <= 1 }
