package simulation

import (
	"testing"

	"github.com/idlab-discover/mchsim-cli/internal/agent"
)

func TestBuiltin(t *testing.T) {
	want := []string{"baseline", "app_based", "sms_outreach", "chw_visits", "incentives", "combined"}
	got := BuiltinNames()
	if len(got) != len(want) {
		t.Fatalf("names = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("names[%d] = %s, want %s", i, got[i], want[i])
		}
	}

	b := Builtin()
	if b[0].Active() != (agent.Active{}) {
		t.Fatalf("baseline should have nothing active: %+v", b[0].Active())
	}
	if b[5].Active() != (agent.Active{App: true, SMS: true, CHW: true, Incentives: true}) {
		t.Fatalf("combined should have everything active: %+v", b[5].Active())
	}

	b[5].Interventions[0] = "mutated"
	if Builtin()[5].Interventions[0] != agent.AppBased {
		t.Fatal("Builtin shares its intervention slices")
	}
}

func TestParseScenario(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"baseline", "baseline", false},
		{" Combined ", "combined", false},
		{"sms_outreach", "sms_outreach", false},
		{"sms", "sms_outreach", false},
		{"chw+app", "app_based+chw_visits", false},
		{"cash+sms", "sms_outreach+incentives", false},
		{"radio", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			sc, err := ParseScenario(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %+v", sc)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseScenario(%q): %v", tt.in, err)
			}
			if sc.Name != tt.want {
				t.Fatalf("name = %q, want %q", sc.Name, tt.want)
			}
		})
	}
}
