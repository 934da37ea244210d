package agent

import "testing"

func TestCHW_ConductVisitRespectsCapacity(t *testing.T) {
	w := NewCHW("w", "c", 100, 20)

	successes := 0
	for i := 0; i < 50; i++ {
		m := NewMaternal("m", "c", Attributes{}, MaternalParams{})
		if w.ConductVisit(m) {
			successes++
			if !m.CHWContacted {
				t.Fatal("successful visit did not mark the mother")
			}
		} else if m.CHWContacted {
			t.Fatal("refused visit marked the mother")
		}
		if w.VisitsThisMonth > w.MaxVisitsPerMonth {
			t.Fatalf("visits %d exceeded capacity %d", w.VisitsThisMonth, w.MaxVisitsPerMonth)
		}
	}
	if successes != 20 {
		t.Fatalf("expected 20 visits, got %d", successes)
	}
	if w.Available() || w.Remaining() != 0 {
		t.Fatal("expected worker to be exhausted")
	}

	w.ResetMonth()
	if !w.Available() || w.Remaining() != 20 {
		t.Fatalf("expected full capacity after reset, remaining=%d", w.Remaining())
	}
}

func TestFacility_Serve(t *testing.T) {
	f := NewFacility("f", "c", 2, DefaultServices)

	if f.Serve("surgery") {
		t.Fatal("served an unoffered service")
	}
	if !f.Serve("anc") || !f.Serve("immunization") {
		t.Fatal("expected two patients to be served")
	}
	if f.Serve("anc") {
		t.Fatal("served beyond capacity")
	}
	f.ResetMonth()
	if !f.CanServe() {
		t.Fatal("expected capacity after reset")
	}
}

func TestFacility_ServicesAreCopied(t *testing.T) {
	services := []string{"anc"}
	f := NewFacility("f", "c", 1, services)
	services[0] = "other"
	if !f.Offers("anc") {
		t.Fatal("facility services alias the caller's slice")
	}
}
