package agent

// CHW is a community health worker with a monthly visit budget.
type CHW struct {
	ID                 string
	Commune            string
	CoverageHouseholds int
	VisitsThisMonth    int
	MaxVisitsPerMonth  int
}

// NewCHW creates a worker with a fresh monthly budget.
func NewCHW(id, commune string, coverage, maxVisits int) *CHW {
	return &CHW{
		ID:                 id,
		Commune:            commune,
		CoverageHouseholds: coverage,
		MaxVisitsPerMonth:  maxVisits,
	}
}

// Available reports whether the worker can still visit this month.
func (w *CHW) Available() bool { return w.VisitsThisMonth < w.MaxVisitsPerMonth }

// Remaining is the number of visits left this month.
func (w *CHW) Remaining() int { return max(0, w.MaxVisitsPerMonth-w.VisitsThisMonth) }

// ConductVisit marks the mother as contacted if capacity allows.
func (w *CHW) ConductVisit(target *Maternal) bool {
	if !w.Available() {
		return false
	}
	target.CHWContacted = true
	w.VisitsThisMonth++
	return true
}

// ResetMonth restores the full monthly budget.
func (w *CHW) ResetMonth() { w.VisitsThisMonth = 0 }
