package commune

import (
	"math/rand/v2"

	"github.com/idlab-discover/mchsim-cli/internal/config"
)

// sampleEthnicity draws from the profile's categorical distribution. Weights
// need not sum to one.
func sampleEthnicity(rng *rand.Rand, p config.ProvinceProfile) string {
	total := 0.0
	for _, e := range p.Ethnicities {
		total += e.Weight
	}
	if total <= 0 {
		return "Other"
	}
	u := rng.Float64() * total
	for _, e := range p.Ethnicities {
		if u < e.Weight {
			return e.Name
		}
		u -= e.Weight
	}
	return p.Ethnicities[len(p.Ethnicities)-1].Name
}

// sampleUnit draws N(mean, sd) clamped to [0,1].
func sampleUnit(rng *rand.Rand, n config.Normal) float64 {
	v := n.Mean + n.SD*rng.NormFloat64()
	return min(1, max(0, v))
}

// sampleDistance draws an exponential distance with the given mean.
func sampleDistance(rng *rand.Rand, mean float64) float64 {
	return rng.ExpFloat64() * mean
}

// uniformInt draws from [lo, hi] inclusive.
func uniformInt(rng *rand.Rand, lo, hi int) int {
	return lo + rng.IntN(hi-lo+1)
}

// sampleK returns k distinct elements of xs chosen uniformly, using a partial
// Fisher-Yates shuffle over a copy.
func sampleK[T any](rng *rand.Rand, xs []T, k int) []T {
	k = min(max(k, 0), len(xs))
	pool := make([]T, len(xs))
	copy(pool, xs)
	for i := 0; i < k; i++ {
		j := i + rng.IntN(len(pool)-i)
		pool[i], pool[j] = pool[j], pool[i]
	}
	return pool[:k]
}
