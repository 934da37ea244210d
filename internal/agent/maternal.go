package agent

import "math/rand/v2"

// DefaultMajorityEthnicity is the ethnic group that carries no cultural-barrier
// penalty in the care-seeking threshold.
const DefaultMajorityEthnicity = "Kinh"

// MaternalParams carries the configurable constants a mother is created with.
type MaternalParams struct {
	ANCTarget         int
	MajorityEthnicity string
}

// Maternal is a woman of reproductive age.
type Maternal struct {
	ID      string
	Commune string
	Attrs   Attributes

	ANCVisits             int
	ANCTarget             int
	WeeksPregnant         int
	Pregnant              bool
	SkilledBirthAttendant bool // outcome of the most recent birth
	AppEngagement         float64
	ReceivedSMS           bool
	CHWContacted          bool

	// Lower means more inclined to seek care.
	CareSeekingThreshold       float64
	DigitalEngagementThreshold float64
}

// NewMaternal creates a non-pregnant mother and derives her thresholds.
func NewMaternal(id, commune string, attrs Attributes, p MaternalParams) *Maternal {
	if p.ANCTarget <= 0 {
		p.ANCTarget = 4
	}
	if p.MajorityEthnicity == "" {
		p.MajorityEthnicity = DefaultMajorityEthnicity
	}
	return &Maternal{
		ID:                         id,
		Commune:                    commune,
		Attrs:                      attrs,
		ANCTarget:                  p.ANCTarget,
		CareSeekingThreshold:       CareSeekingThreshold(attrs, p.MajorityEthnicity),
		DigitalEngagementThreshold: DigitalEngagementThreshold(attrs),
	}
}

// CareSeekingThreshold is bounded to [0.1, 0.9].
func CareSeekingThreshold(a Attributes, majority string) float64 {
	t := 0.5
	t += -0.2 * a.Literacy
	t += 0.15 * a.Poverty
	t += 0.1 * min(a.DistanceKm/10, 0.3)
	if a.Ethnicity != majority {
		t += 0.1
	}
	return clamp(0.1, 0.9, t)
}

// DigitalEngagementThreshold is 1.0 without a phone, otherwise bounded to [0.1, 0.9].
func DigitalEngagementThreshold(a Attributes) float64 {
	if !a.MobileAccess {
		return 1.0
	}
	t := 0.6 - 0.3*a.Literacy + 0.01*float64(max(0, a.Age-25))
	return clamp(0.1, 0.9, t)
}

// BecomePregnant starts a pregnancy. Calling it on a pregnant mother restarts
// the clock and clears her ANC visits.
func (m *Maternal) BecomePregnant() {
	m.Pregnant = true
	m.WeeksPregnant = 1
	m.ANCVisits = 0
}

// ProgressPregnancy advances the pregnancy by one week.
func (m *Maternal) ProgressPregnancy() {
	if m.Pregnant {
		m.WeeksPregnant++
	}
}

// SeekANCCare decides whether an antenatal visit happens this week.
// Two independent draws gate the visit: one against the intervention-boosted
// probability and one against the care-seeking threshold.
func (m *Maternal) SeekANCCare(rng *rand.Rand, active Active) bool {
	if !m.Pregnant || m.ANCVisits >= m.ANCTarget {
		return false
	}

	base := min(0.8, 0.1+0.02*float64(m.WeeksPregnant))

	boost := 0.0
	if active.App && m.AppEngagement > 0.5 {
		boost += 0.2
	}
	if active.SMS && m.ReceivedSMS {
		boost += 0.15
	}
	if active.CHW && m.CHWContacted {
		boost += 0.25
	}
	if active.Incentives && m.Attrs.Poverty > 0.6 {
		boost += 0.3
	}
	p := min(0.95, base+boost)

	if draw(rng) < p && draw(rng) > m.CareSeekingThreshold {
		m.ANCVisits++
		return true
	}
	return false
}

// BirthAttendanceProbability is the chance of a skilled attendant at term.
func (m *Maternal) BirthAttendanceProbability() float64 {
	p := 0.4 + 0.1*float64(m.ANCVisits)
	p += 0.2 * m.Attrs.Literacy
	p -= 0.15 * m.Attrs.Poverty
	p -= 0.05 * min(m.Attrs.DistanceKm/5, 0.4)
	return clamp(0.1, 0.95, p)
}

// GiveBirth delivers at 40 weeks or later and reports whether a skilled
// attendant was present. ANC visits are kept until the next pregnancy.
func (m *Maternal) GiveBirth(rng *rand.Rand) bool {
	if m.WeeksPregnant < 40 {
		return false
	}
	m.SkilledBirthAttendant = draw(rng) < m.BirthAttendanceProbability()
	m.Pregnant = false
	m.WeeksPregnant = 0
	return m.SkilledBirthAttendant
}
