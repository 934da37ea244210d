package agent

import "math/rand/v2"

// Child is a child under five. MotherID is a lookup key only and may not
// resolve to any mother in the commune.
type Child struct {
	ID       string
	Commune  string
	MotherID string
	Attrs    Attributes

	AgeMonths          int // fixed at creation
	Immunizations      int
	ImmunizationTarget int
	CareSeekingDelays  int
}

// NewChild creates a child with no immunizations.
func NewChild(id, commune, motherID string, attrs Attributes, ageMonths, target int) *Child {
	if target <= 0 {
		target = 8
	}
	return &Child{
		ID:                 id,
		Commune:            commune,
		MotherID:           motherID,
		Attrs:              attrs,
		AgeMonths:          ageMonths,
		ImmunizationTarget: target,
	}
}

// ExpectedImmunizations follows one dose roughly every two months of age.
func (c *Child) ExpectedImmunizations() int {
	return min(c.ImmunizationTarget, c.AgeMonths/2)
}

// NeedsImmunization reports whether the child is behind schedule.
func (c *Child) NeedsImmunization() bool {
	return c.Immunizations < c.ExpectedImmunizations()
}

// CareProbability is driven by the mother's profile and the active interventions.
func CareProbability(mother *Maternal, active Active) float64 {
	p := 0.3 + 0.2*mother.Attrs.Literacy - 0.1*mother.Attrs.Poverty
	if active.App && mother.AppEngagement > 0.4 {
		p += 0.15
	}
	if active.Incentives && mother.Attrs.Poverty > 0.5 {
		p += 0.25
	}
	return clamp(0.05, 0.9, p)
}

// ReceiveCare attempts one immunization. A failed attempt counts as a delay.
func (c *Child) ReceiveCare(rng *rand.Rand, mother *Maternal, active Active) bool {
	if !c.NeedsImmunization() {
		return false
	}
	if draw(rng) < CareProbability(mother, active) {
		c.Immunizations++
		return true
	}
	c.CareSeekingDelays++
	return false
}
