package agent

import "slices"

// DefaultServices is the service set of a commune health station.
var DefaultServices = []string{"anc", "delivery", "immunization", "general"}

// Facility is a clinic with a monthly patient capacity.
type Facility struct {
	ID              string
	Commune         string
	Capacity        int
	Services        []string
	ServedThisMonth int
}

// NewFacility creates a facility offering the given services.
func NewFacility(id, commune string, capacity int, services []string) *Facility {
	return &Facility{
		ID:       id,
		Commune:  commune,
		Capacity: capacity,
		Services: slices.Clone(services),
	}
}

// CanServe reports whether capacity remains this month.
func (f *Facility) CanServe() bool { return f.ServedThisMonth < f.Capacity }

// Offers reports whether the facility provides the service.
func (f *Facility) Offers(service string) bool { return slices.Contains(f.Services, service) }

// Serve admits one patient for the service when offered and under capacity.
func (f *Facility) Serve(service string) bool {
	if !f.Offers(service) || !f.CanServe() {
		return false
	}
	f.ServedThisMonth++
	return true
}

// ResetMonth clears the monthly patient count.
func (f *Facility) ResetMonth() { f.ServedThisMonth = 0 }
