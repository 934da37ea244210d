// Package agent holds the behavioral units of the simulation: mothers,
// children, community health workers and health facilities.
//
// Every stochastic rule takes an explicit *rand.Rand so callers decide how
// entropy is seeded and shared. Agents never hold references back to the
// commune that owns them.
package agent

import "math/rand/v2"

// Attributes is the immutable demographic and socioeconomic profile of an agent.
type Attributes struct {
	Age            int
	Ethnicity      string
	Literacy       float64 // 0-1
	Poverty        float64 // 0-1, 1 = most deprived
	MobileAccess   bool
	InternetAccess bool
	DistanceKm     float64
}

func clamp(lo, hi, v float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func draw(rng *rand.Rand) float64 { return rng.Float64() }
