package commune

import (
	"math/rand/v2"

	"github.com/idlab-discover/mchsim-cli/internal/agent"
)

// MonthWeeks is the number of weeks between monthly resets and child care.
const MonthWeeks = 4

// Step advances the commune by one week.
//
// On month boundaries (week%4 == 0) CHW and facility counters reset before
// mothers act and children attempt care after. Pregnant mothers progress,
// seek ANC and may give birth; the others may conceive.
func (c *Commune) Step(rng *rand.Rand, week int, active agent.Active) {
	monthly := week%MonthWeeks == 0
	if monthly {
		for _, w := range c.CHWs {
			w.ResetMonth()
		}
		for _, f := range c.Facilities {
			f.ResetMonth()
		}
	}

	for _, m := range c.Mothers {
		if m.Pregnant {
			m.ProgressPregnancy()
			m.SeekANCCare(rng, active)
			m.GiveBirth(rng)
			continue
		}
		if rng.Float64() < c.incidence {
			m.BecomePregnant()
		}
	}

	if !monthly {
		return
	}
	unresolved := 0
	for _, ch := range c.Children {
		mother, ok := c.Mother(ch.MotherID)
		if !ok {
			unresolved++
			continue
		}
		ch.ReceiveCare(rng, mother, active)
	}
	if unresolved > 0 {
		c.UnresolvedMothers += unresolved
		logf(c.Name, "week %d: %d children skipped, mother not found", week, unresolved)
	}
}
