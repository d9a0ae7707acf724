package convergence

// Recommendation is the suggested next step after a decision.
type Recommendation string

const (
	StopExcellent      Recommendation = "stop_excellent"
	StopGood           Recommendation = "stop_good"
	ContinueCautiously Recommendation = "continue_cautiously"
	ManualReview       Recommendation = "manual_review"
	StopConvergence    Recommendation = "stop_convergence"
	Continue           Recommendation = "continue"
)

// Indicators are the named boolean signals a decision is derived from.
type Indicators struct {
	QualityPlateau        bool `json:"quality_plateau" yaml:"quality_plateau"`
	MinimalImprovement    bool `json:"minimal_improvement" yaml:"minimal_improvement"`
	HighQualityReached    bool `json:"high_quality_reached" yaml:"high_quality_reached"`
	StabilityAchieved     bool `json:"stability_achieved" yaml:"stability_achieved"`
	ImprovementSaturation bool `json:"improvement_saturation" yaml:"improvement_saturation"`
}

// Count returns how many indicators are set.
func (i Indicators) Count() int {
	n := 0
	for _, v := range []bool{
		i.QualityPlateau,
		i.MinimalImprovement,
		i.HighQualityReached,
		i.StabilityAchieved,
		i.ImprovementSaturation,
	} {
		if v {
			n++
		}
	}
	return n
}

// Names returns the human-readable names of the set indicators in a fixed order.
func (i Indicators) Names() []string {
	var names []string
	for _, f := range []struct {
		set  bool
		name string
	}{
		{i.QualityPlateau, "quality plateau"},
		{i.MinimalImprovement, "minimal improvement"},
		{i.HighQualityReached, "high quality reached"},
		{i.StabilityAchieved, "stability achieved"},
		{i.ImprovementSaturation, "improvement saturation"},
	} {
		if f.set {
			names = append(names, f.name)
		}
	}
	return names
}

// state is what the rule tables look at.
type state struct {
	overall float64
	ind     Indicators
	th      Thresholds
}

type decisionRule struct {
	when       func(s state) bool
	converged  bool
	reason     string
	confidence float64
	// listIndicators appends the set indicator names to reason.
	listIndicators bool
}

// decisionRules are evaluated top-down; the first match wins. The last rule
// always matches.
var decisionRules = []decisionRule{
	{
		when:       func(s state) bool { return s.overall >= s.th.ExcellentQuality },
		converged:  true,
		reason:     "excellent quality achieved",
		confidence: 0.95,
	},
	{
		when:       func(s state) bool { return s.ind.Count() >= 3 },
		converged:  true,
		reason:     "multiple convergence indicators",
		confidence: 0.8,

		listIndicators: true,
	},
	{
		when:       func(s state) bool { return s.overall >= s.th.HighQuality && s.ind.Count() >= 2 },
		converged:  true,
		reason:     "high quality with convergence indicators",
		confidence: 0.85,
	},
	{
		when:       func(s state) bool { return s.ind.QualityPlateau && s.ind.StabilityAchieved },
		converged:  true,
		reason:     "quality plateau with stability",
		confidence: 0.75,
	},
	{
		when:       func(state) bool { return true },
		converged:  false,
		reason:     "convergence not detected",
		confidence: 0.6,
	},
}

type recommendationRule struct {
	when func(s state) bool
	rec  Recommendation
}

// recommendationRules are independent of decisionRules and also first-match.
var recommendationRules = []recommendationRule{
	{func(s state) bool { return s.overall >= s.th.ExcellentQuality }, StopExcellent},
	{func(s state) bool { return s.overall >= s.th.HighQuality && s.ind.StabilityAchieved }, StopGood},
	{func(s state) bool { return s.overall >= s.th.HighQuality }, ContinueCautiously},
	{func(s state) bool { return s.ind.ImprovementSaturation && s.overall > s.th.ManualReviewFloor }, ManualReview},
	{func(s state) bool { return s.ind.Count() >= 2 }, StopConvergence},
	{func(state) bool { return true }, Continue},
}

func decide(s state) decisionRule {
	for _, r := range decisionRules {
		if r.when(s) {
			return r
		}
	}
	return decisionRules[len(decisionRules)-1]
}

func recommend(s state) Recommendation {
	for _, r := range recommendationRules {
		if r.when(s) {
			return r.rec
		}
	}
	return Continue
}
