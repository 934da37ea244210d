package commune

import (
	"fmt"
	"math/rand/v2"

	"github.com/idlab-discover/mchsim-cli/internal/agent"
)

// Targeting summarises one ApplyIntervention call.
type Targeting struct {
	Eligible int // mothers meeting the eligibility rule
	Targeted int // mothers drawn for the programme
	Reached  int // engaged, messaged or visited
}

// ApplyIntervention rolls a programme out to a random coverage share of the
// eligible mothers. Incentives have no roll-out step; they act only while
// active in Step.
func (c *Commune) ApplyIntervention(rng *rand.Rand, kind agent.Intervention, coverage float64) (Targeting, error) {
	coverage = min(1, max(0, coverage))
	var t Targeting

	switch kind {
	case agent.AppBased:
		eligible := c.filter(func(m *agent.Maternal) bool { return m.Attrs.MobileAccess && m.Attrs.InternetAccess })
		targeted := sampleK(rng, eligible, int(float64(len(eligible))*coverage))
		t.Eligible, t.Targeted = len(eligible), len(targeted)
		for _, m := range targeted {
			if rng.Float64() > m.DigitalEngagementThreshold {
				m.AppEngagement = 0.6 + 0.3*rng.Float64()
				t.Reached++
			}
		}

	case agent.SMSOutreach:
		eligible := c.filter(func(m *agent.Maternal) bool { return m.Attrs.MobileAccess })
		targeted := sampleK(rng, eligible, int(float64(len(eligible))*coverage))
		t.Eligible, t.Targeted, t.Reached = len(eligible), len(targeted), len(targeted)
		for _, m := range targeted {
			m.ReceivedSMS = true
		}

	case agent.CHWVisits:
		eligible := c.filter(func(m *agent.Maternal) bool { return m.Attrs.Poverty > 0.6 || m.Attrs.DistanceKm > 5 })
		n := min(int(float64(len(eligible))*coverage), c.CHWCapacity())
		t.Eligible = len(eligible)
		if len(eligible) == 0 {
			break
		}
		targeted := sampleK(rng, eligible, n)
		t.Targeted = len(targeted)
		for _, m := range targeted {
			available := c.availableCHWs()
			if len(available) == 0 {
				break
			}
			if available[rng.IntN(len(available))].ConductVisit(m) {
				t.Reached++
			}
		}

	case agent.Incentives:
		// acts through Step only

	default:
		return Targeting{}, fmt.Errorf("commune %s: unknown intervention %q", c.Name, kind)
	}

	logf(c.Name, "%s: eligible=%d targeted=%d reached=%d", kind, t.Eligible, t.Targeted, t.Reached)
	return t, nil
}

func (c *Commune) filter(keep func(*agent.Maternal) bool) []*agent.Maternal {
	var out []*agent.Maternal
	for _, m := range c.Mothers {
		if keep(m) {
			out = append(out, m)
		}
	}
	return out
}

func (c *Commune) availableCHWs() []*agent.CHW {
	var out []*agent.CHW
	for _, w := range c.CHWs {
		if w.Available() {
			out = append(out, w)
		}
	}
	return out
}
