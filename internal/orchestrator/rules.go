package orchestrator

import "github.com/valpere/aclarador/internal/config"

// Outcome is the terminal state of a run.
type Outcome string

const (
	OutcomeMaxPasses  Outcome = "MAX_PASSES"
	OutcomeQualityMet Outcome = "QUALITY_MET"
	OutcomeConverged  Outcome = "CONVERGED"
	OutcomeNoChange   Outcome = "NO_CHANGE"
)

// Stop reasons.
const (
	ReasonQualityMet = "quality threshold reached"
	ReasonNoChange   = "no changes made"
	ReasonConverged  = "convergence detected"
	ReasonMaxPasses  = "maximum passes reached"
)

type stopRule struct {
	when    func(p *Pass, cfg config.RunConfig) bool
	outcome Outcome
	reason  string
}

// stopRules are evaluated top-down after every pass; the first match ends
// the run. An unchanged text ends the run as NO_CHANGE even on the last
// pass. Otherwise the pass budget comes first, so a last pass that also
// meets the quality threshold or converges is reported as MAX_PASSES.
var stopRules = []stopRule{
	{
		when:    func(p *Pass, _ config.RunConfig) bool { return !p.Convergence.ChangesMade },
		outcome: OutcomeNoChange,
		reason:  ReasonNoChange,
	},
	{
		when:    func(p *Pass, cfg config.RunConfig) bool { return p.Number >= cfg.MaxPasses },
		outcome: OutcomeMaxPasses,
		reason:  ReasonMaxPasses,
	},
	{
		when:    func(p *Pass, cfg config.RunConfig) bool { return p.QualityScore >= cfg.MinQualityThreshold },
		outcome: OutcomeQualityMet,
		reason:  ReasonQualityMet,
	},
	{
		when: func(p *Pass, cfg config.RunConfig) bool {
			return p.Number > 1 && p.Convergence.QualityImprovement < cfg.ConvergenceThreshold
		},
		outcome: OutcomeConverged,
		reason:  ReasonConverged,
	},
}

// shouldStop returns the first matching rule.
func shouldStop(p *Pass, cfg config.RunConfig) (stopRule, bool) {
	for _, r := range stopRules {
		if r.when(p, cfg) {
			return r, true
		}
	}
	return stopRule{}, false
}
