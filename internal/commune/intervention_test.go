package commune

import (
	"testing"

	"github.com/idlab-discover/mchsim-cli/internal/agent"
	"github.com/idlab-discover/mchsim-cli/internal/config"
)

func TestApplyIntervention_UnknownKind(t *testing.T) {
	c := mustNew(t, testRow(10, 0, 100), config.Default(), 1)
	if _, err := c.ApplyIntervention(newRNG(1), agent.Intervention("radio"), 0.7); err == nil {
		t.Fatal("expected error for unknown intervention")
	}
}

func TestApplyIntervention_AppWithoutMobileAccess(t *testing.T) {
	cfg := config.Default()
	cfg.Agents.MobileAccessRate = 0
	c := mustNew(t, testRow(200, 0, 1000), cfg, 2)

	got, err := c.ApplyIntervention(newRNG(2), agent.AppBased, 0.7)
	if err != nil {
		t.Fatalf("ApplyIntervention: %v", err)
	}
	if got.Eligible != 0 || got.Targeted != 0 {
		t.Fatalf("expected nobody targeted, got %+v", got)
	}
	if m := c.CalculateMetrics(); m.DigitalEngagement != 0 {
		t.Fatalf("digital engagement = %v, want 0", m.DigitalEngagement)
	}
}

func TestApplyIntervention_AppEngagementRange(t *testing.T) {
	cfg := config.Default()
	cfg.Agents.MobileAccessRate = 1
	cfg.Agents.InternetAccessRate = 1
	c := mustNew(t, testRow(300, 0, 1000), cfg, 3)

	got, err := c.ApplyIntervention(newRNG(3), agent.AppBased, 0.7)
	if err != nil {
		t.Fatalf("ApplyIntervention: %v", err)
	}
	if got.Eligible != 300 || got.Targeted != 210 {
		t.Fatalf("unexpected targeting: %+v", got)
	}
	engaged := 0
	for _, m := range c.Mothers {
		if m.AppEngagement == 0 {
			continue
		}
		engaged++
		if m.AppEngagement < 0.6 || m.AppEngagement >= 0.9 {
			t.Fatalf("engagement %v outside [0.6, 0.9)", m.AppEngagement)
		}
	}
	if engaged != got.Reached || engaged > got.Targeted {
		t.Fatalf("engaged %d, reached %d, targeted %d", engaged, got.Reached, got.Targeted)
	}
}

func TestApplyIntervention_SMSCoverage(t *testing.T) {
	cfg := config.Default()
	cfg.Agents.MobileAccessRate = 1
	c := mustNew(t, testRow(100, 0, 1000), cfg, 4)

	got, err := c.ApplyIntervention(newRNG(4), agent.SMSOutreach, 0.7)
	if err != nil {
		t.Fatalf("ApplyIntervention: %v", err)
	}
	n := 0
	for _, m := range c.Mothers {
		if m.ReceivedSMS {
			n++
		}
	}
	if got.Targeted != 70 || n != 70 {
		t.Fatalf("targeted %d, flagged %d, want 70", got.Targeted, n)
	}
}

func TestApplyIntervention_CHWVisitsCappedByCapacity(t *testing.T) {
	c := mustNew(t, poorRow(500, 0, 1000), poorConfig(), 5)
	if len(c.CHWs) != 2 {
		t.Fatalf("got %d CHWs, want 2", len(c.CHWs))
	}

	got, err := c.ApplyIntervention(newRNG(5), agent.CHWVisits, 0.7)
	if err != nil {
		t.Fatalf("ApplyIntervention: %v", err)
	}
	if got.Eligible != 500 {
		t.Fatalf("eligible = %d, want 500", got.Eligible)
	}
	if got.Targeted != 40 || got.Reached != 40 {
		t.Fatalf("expected 2x20 visits, got %+v", got)
	}
	contacted := 0
	for _, m := range c.Mothers {
		if m.CHWContacted {
			contacted++
		}
	}
	if contacted != 40 {
		t.Fatalf("contacted = %d, want 40", contacted)
	}
	for _, w := range c.CHWs {
		if w.VisitsThisMonth > w.MaxVisitsPerMonth {
			t.Fatalf("CHW over capacity: %+v", w)
		}
	}

	again, err := c.ApplyIntervention(newRNG(6), agent.CHWVisits, 0.7)
	if err != nil {
		t.Fatalf("ApplyIntervention: %v", err)
	}
	if again.Targeted != 0 {
		t.Fatalf("exhausted CHWs should target nobody, got %+v", again)
	}
}

func TestApplyIntervention_EmptyEligibilityAndZeroCoverage(t *testing.T) {
	c := mustNew(t, testRow(0, 0, 100), config.Default(), 7)
	for _, kind := range agent.AllInterventions {
		got, err := c.ApplyIntervention(newRNG(7), kind, 0.7)
		if err != nil {
			t.Fatalf("%s: %v", kind, err)
		}
		if got != (Targeting{}) {
			t.Fatalf("%s: expected empty targeting, got %+v", kind, got)
		}
	}

	cfg := config.Default()
	cfg.Agents.MobileAccessRate = 1
	c = mustNew(t, testRow(50, 0, 500), cfg, 8)
	got, err := c.ApplyIntervention(newRNG(8), agent.SMSOutreach, 0)
	if err != nil {
		t.Fatalf("ApplyIntervention: %v", err)
	}
	if got.Eligible != 50 || got.Targeted != 0 {
		t.Fatalf("zero coverage should target nobody, got %+v", got)
	}
}

func TestApplyIntervention_IncentivesHaveNoRollout(t *testing.T) {
	c := mustNew(t, testRow(30, 0, 300), config.Default(), 9)
	got, err := c.ApplyIntervention(newRNG(9), agent.Incentives, 1)
	if err != nil {
		t.Fatalf("ApplyIntervention: %v", err)
	}
	if got != (Targeting{}) {
		t.Fatalf("unexpected targeting %+v", got)
	}
	for _, m := range c.Mothers {
		if m.ReceivedSMS || m.CHWContacted || m.AppEngagement != 0 {
			t.Fatalf("incentives should not touch mothers: %+v", m)
		}
	}
}
