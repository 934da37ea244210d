package simulation

import (
	"fmt"
	"strings"

	"github.com/idlab-discover/mchsim-cli/internal/agent"
)

// Scenario is a named set of interventions run together.
type Scenario struct {
	Name          string               `json:"name" yaml:"name"`
	Interventions []agent.Intervention `json:"interventions" yaml:"interventions"`
}

// Active returns the scenario's intervention flags.
func (s Scenario) Active() agent.Active { return agent.ActiveOf(s.Interventions...) }

// Baseline is the scenario name with no interventions.
const Baseline = "baseline"

// Builtin returns the six standard scenarios in run order.
func Builtin() []Scenario {
	return []Scenario{
		{Name: Baseline},
		{Name: string(agent.AppBased), Interventions: []agent.Intervention{agent.AppBased}},
		{Name: string(agent.SMSOutreach), Interventions: []agent.Intervention{agent.SMSOutreach}},
		{Name: string(agent.CHWVisits), Interventions: []agent.Intervention{agent.CHWVisits}},
		{Name: string(agent.Incentives), Interventions: []agent.Intervention{agent.Incentives}},
		{Name: "combined", Interventions: append([]agent.Intervention(nil), agent.AllInterventions...)},
	}
}

// ParseScenario resolves a built-in scenario name or a '+'-joined list of
// interventions such as "sms+chw".
func ParseScenario(s string) (Scenario, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if name == "" {
		return Scenario{}, fmt.Errorf("empty scenario name")
	}
	for _, sc := range Builtin() {
		if sc.Name == name {
			return sc, nil
		}
	}

	var active agent.Active
	for _, part := range strings.Split(name, "+") {
		iv, err := agent.ParseIntervention(part)
		if err != nil {
			return Scenario{}, fmt.Errorf("unknown scenario %q (built-in: %s)", s, strings.Join(BuiltinNames(), ", "))
		}
		active = active.With(iv)
	}
	ivs := active.List()
	parts := make([]string, len(ivs))
	for i, iv := range ivs {
		parts[i] = string(iv)
	}
	return Scenario{Name: strings.Join(parts, "+"), Interventions: ivs}, nil
}

// BuiltinNames lists the built-in scenario names in run order.
func BuiltinNames() []string {
	b := Builtin()
	names := make([]string, len(b))
	for i, sc := range b {
		names[i] = sc.Name
	}
	return names
}
