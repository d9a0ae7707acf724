package convergence

import "github.com/valpere/aclarador/internal/quality"

// Analysis is a snapshot of the detector state with human-readable advice.
type Analysis struct {
	// Status is "no_data" for an empty detector and "analyzed" otherwise.
	Status   string           `json:"status" yaml:"status"`
	Current  *quality.Metrics `json:"current_metrics,omitempty" yaml:"current_metrics,omitempty"`
	Decision *Decision        `json:"convergence_analysis,omitempty" yaml:"convergence_analysis,omitempty"`
	Trend    *Trend           `json:"quality_trend,omitempty" yaml:"quality_trend,omitempty"`
	Advice   []string         `json:"recommendations,omitempty" yaml:"recommendations,omitempty"`
}

type adviceRule struct {
	when func(m quality.Metrics, d Decision) bool
	text func(d Decision) string
}

func fixed(s string) func(Decision) string {
	return func(Decision) string { return s }
}

// adviceRules are all evaluated; every match contributes a line.
var adviceRules = []adviceRule{
	{
		when: func(_ quality.Metrics, d Decision) bool { return d.Converged },
		text: func(d Decision) string { return "processing converged: " + d.Reason },
	},
	{
		when: func(m quality.Metrics, _ Decision) bool { return m.OverallQuality < 0.6 },
		text: fixed("quality below 60% - consider manual review"),
	},
	{
		when: func(m quality.Metrics, _ Decision) bool { return m.Readability < 0.6 },
		text: fixed("low readability - simplify vocabulary and sentence structure"),
	},
	{
		when: func(m quality.Metrics, _ Decision) bool { return m.GrammarAccuracy < 0.7 },
		text: fixed("grammar accuracy concerns - review corrections"),
	},
	{
		when: func(m quality.Metrics, _ Decision) bool { return m.ImprovementPotential > 0.5 },
		text: fixed("high improvement potential - continue processing"),
	},
}

// Detailed returns the current metrics, decision and trend together with
// advice derived from them.
func (d *Detector) Detailed() Analysis {
	if d.history.Len() == 0 {
		return Analysis{Status: "no_data"}
	}
	current := d.history.At(-1).Metrics
	decision := d.Decide()
	trend := d.Trend()

	var advice []string
	for _, r := range adviceRules {
		if r.when(current, decision) {
			advice = append(advice, r.text(decision))
		}
	}

	return Analysis{
		Status:   "analyzed",
		Current:  &current,
		Decision: &decision,
		Trend:    &trend,
		Advice:   advice,
	}
}
