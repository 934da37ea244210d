package commune

// CalculateMetrics computes and stores the current snapshot. Every rate is 0
// when its denominator is empty.
//
// Mothers with at least one ANC visit stand in for "gave birth" in the skilled
// birth attendance denominator.
func (c *Commune) CalculateMetrics() Metrics {
	var (
		ancDen, ancNum int
		sbaDen, sbaNum int
		digDen         int
		digSum         float64
	)
	for _, m := range c.Mothers {
		if m.Pregnant || m.ANCVisits > 0 {
			ancDen++
			if m.ANCVisits >= m.ANCTarget {
				ancNum++
			}
		}
		if m.ANCVisits > 0 {
			sbaDen++
			if m.SkilledBirthAttendant {
				sbaNum++
			}
		}
		if m.Attrs.MobileAccess {
			digDen++
			digSum += m.AppEngagement
		}
	}

	var (
		immDen int
		immSum float64
		delays int
	)
	for _, ch := range c.Children {
		delays += ch.CareSeekingDelays
		if ch.AgeMonths >= 12 {
			immDen++
			immSum += min(1, float64(ch.Immunizations)/float64(ch.ImmunizationTarget))
		}
	}

	c.Metrics = Metrics{
		ANCCoverage:            ratio(float64(ancNum), ancDen),
		SkilledBirthAttendance: ratio(float64(sbaNum), sbaDen),
		ImmunizationCoverage:   ratio(immSum, immDen),
		DigitalEngagement:      ratio(digSum, digDen),
		CareSeekingDelays:      delays,
	}
	return c.Metrics
}

func ratio(num float64, den int) float64 {
	if den == 0 {
		return 0
	}
	return num / float64(den)
}
