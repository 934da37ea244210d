package agent

import "testing"

func TestParseIntervention(t *testing.T) {
	tests := []struct {
		in      string
		want    Intervention
		wantErr bool
	}{
		{"app_based", AppBased, false},
		{" SMS ", SMSOutreach, false},
		{"chw", CHWVisits, false},
		{"cash", Incentives, false},
		{"vaccines", "", true},
	}
	for _, tt := range tests {
		got, err := ParseIntervention(tt.in)
		if (err != nil) != tt.wantErr {
			t.Fatalf("ParseIntervention(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Fatalf("ParseIntervention(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestActive_ListAndString(t *testing.T) {
	if s := (Active{}).String(); s != "none" {
		t.Fatalf("baseline String() = %q", s)
	}
	a := ActiveOf(Incentives, AppBased)
	list := a.List()
	if len(list) != 2 || list[0] != AppBased || list[1] != Incentives {
		t.Fatalf("List() = %v, want canonical order", list)
	}
	if a.Has(SMSOutreach) || !a.Has(Incentives) {
		t.Fatalf("Has() wrong for %+v", a)
	}
	if s := a.String(); s != "app_based,incentives" {
		t.Fatalf("String() = %q", s)
	}
}
