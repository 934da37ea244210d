package agent

import (
	"fmt"
	"strings"
)

// Intervention identifies one of the four intervention programmes.
type Intervention string

const (
	AppBased    Intervention = "app_based"
	SMSOutreach Intervention = "sms_outreach"
	CHWVisits   Intervention = "chw_visits"
	Incentives  Intervention = "incentives"
)

// AllInterventions lists the interventions in canonical order.
var AllInterventions = []Intervention{AppBased, SMSOutreach, CHWVisits, Incentives}

func (i Intervention) String() string { return string(i) }

// ParseIntervention accepts the canonical names plus a few short aliases.
func ParseIntervention(s string) (Intervention, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "app_based", "app":
		return AppBased, nil
	case "sms_outreach", "sms":
		return SMSOutreach, nil
	case "chw_visits", "chw":
		return CHWVisits, nil
	case "incentives", "incentive", "cash":
		return Incentives, nil
	}
	return "", fmt.Errorf("unknown intervention %q (expected app_based|sms_outreach|chw_visits|incentives)", s)
}

// Active is the set of interventions switched on for a scenario.
// The zero value is the baseline with nothing active.
type Active struct {
	App        bool `json:"app_based" yaml:"app_based"`
	SMS        bool `json:"sms_outreach" yaml:"sms_outreach"`
	CHW        bool `json:"chw_visits" yaml:"chw_visits"`
	Incentives bool `json:"incentives" yaml:"incentives"`
}

// ActiveOf builds an Active set from a list of interventions.
func ActiveOf(list ...Intervention) Active {
	var a Active
	for _, i := range list {
		a = a.With(i)
	}
	return a
}

// With returns a copy of a with i switched on.
func (a Active) With(i Intervention) Active {
	switch i {
	case AppBased:
		a.App = true
	case SMSOutreach:
		a.SMS = true
	case CHWVisits:
		a.CHW = true
	case Incentives:
		a.Incentives = true
	}
	return a
}

// Has reports whether i is active.
func (a Active) Has(i Intervention) bool {
	switch i {
	case AppBased:
		return a.App
	case SMSOutreach:
		return a.SMS
	case CHWVisits:
		return a.CHW
	case Incentives:
		return a.Incentives
	}
	return false
}

// List returns the active interventions in canonical order.
func (a Active) List() []Intervention {
	var out []Intervention
	for _, i := range AllInterventions {
		if a.Has(i) {
			out = append(out, i)
		}
	}
	return out
}

func (a Active) String() string {
	list := a.List()
	if len(list) == 0 {
		return "none"
	}
	parts := make([]string, len(list))
	for i, iv := range list {
		parts[i] = iv.String()
	}
	return strings.Join(parts, ",")
}
