package orchestrator

import (
	"time"

	"github.com/valpere/aclarador/internal/config"
	"github.com/valpere/aclarador/internal/convergence"
	"github.com/valpere/aclarador/internal/pipeline"
)

// Duration marshals as a Go duration string ("1.5s") in JSON and YAML.
type Duration time.Duration

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// TaggedImprovement is an improvement with the pass that produced it.
type TaggedImprovement struct {
	PassNumber           int `json:"pass_number" yaml:"pass_number"`
	pipeline.Improvement `yaml:",inline"`
}

type OverallMetrics struct {
	TotalPasses         int      `json:"total_passes" yaml:"total_passes"`
	TotalTime           Duration `json:"total_time" yaml:"total_time"`
	InitialQuality      float64  `json:"initial_quality" yaml:"initial_quality"`
	FinalQuality        float64  `json:"final_quality" yaml:"final_quality"`
	QualityImprovement  float64  `json:"quality_improvement" yaml:"quality_improvement"`
	TotalImprovements   int      `json:"total_improvements" yaml:"total_improvements"`
	ConvergenceAchieved bool     `json:"convergence_achieved" yaml:"convergence_achieved"`
}

type PassSummary struct {
	Pass         int      `json:"pass" yaml:"pass"`
	Quality      float64  `json:"quality" yaml:"quality"`
	Improvements int      `json:"improvements" yaml:"improvements"`
	Time         Duration `json:"time" yaml:"time"`
	ChangesMade  bool     `json:"changes_made" yaml:"changes_made"`
}

// Report is the result of one run.
type Report struct {
	OriginalText    string               `json:"original_text" yaml:"original_text"`
	FinalText       string               `json:"final_text" yaml:"final_text"`
	Improvements    []TaggedImprovement  `json:"improvements" yaml:"improvements"`
	OverallMetrics  OverallMetrics       `json:"overall_metrics" yaml:"overall_metrics"`
	PassSummary     []PassSummary        `json:"pass_summary" yaml:"pass_summary"`
	Passes          []Pass               `json:"passes" yaml:"passes"`
	StopReason      string               `json:"stop_reason" yaml:"stop_reason"`
	Outcome         Outcome              `json:"outcome" yaml:"outcome"`
	Convergence     convergence.Decision `json:"convergence" yaml:"convergence"`
	Analysis        convergence.Analysis `json:"analysis" yaml:"analysis"`
	Config          config.RunConfig     `json:"config" yaml:"config"`
	Recommendations []string             `json:"recommendations" yaml:"recommendations"`
}

func buildReport(original string, passes []Pass, rule stopRule, cfg config.RunConfig, det *convergence.Detector, total Duration) *Report {
	first, last := passes[0], passes[len(passes)-1]

	r := &Report{
		OriginalText: original,
		FinalText:    last.OutputText,
		StopReason:   rule.reason,
		Outcome:      rule.outcome,
		Passes:       passes,
		Convergence:  last.Decision,
		Analysis:     det.Detailed(),
		Config:       cfg,
	}
	for _, p := range passes {
		for _, imp := range p.Improvements {
			r.Improvements = append(r.Improvements, TaggedImprovement{PassNumber: p.Number, Improvement: imp})
		}
		r.PassSummary = append(r.PassSummary, PassSummary{
			Pass:         p.Number,
			Quality:      p.QualityScore,
			Improvements: len(p.Improvements),
			Time:         p.ProcessingTime,
			ChangesMade:  p.Convergence.ChangesMade,
		})
	}
	r.OverallMetrics = OverallMetrics{
		TotalPasses:         len(passes),
		TotalTime:           total,
		InitialQuality:      first.QualityScore,
		FinalQuality:        last.QualityScore,
		QualityImprovement:  last.QualityScore - first.QualityScore,
		TotalImprovements:   len(r.Improvements),
		ConvergenceAchieved: last.QualityScore >= cfg.MinQualityThreshold,
	}
	r.Recommendations = recommendations(r.OverallMetrics, cfg)
	return r
}

type recommendationRule struct {
	when func(m OverallMetrics, cfg config.RunConfig) bool
	text string
}

// recommendationGroups are evaluated independently; within a group the
// first matching rule contributes its line.
var recommendationGroups = [][]recommendationRule{
	{
		{func(m OverallMetrics, _ config.RunConfig) bool { return m.FinalQuality < 0.7 }, "consider manual review - quality below 70%"},
		{func(m OverallMetrics, _ config.RunConfig) bool { return m.FinalQuality < 0.85 }, "good quality achieved - minor improvements possible"},
		{func(OverallMetrics, config.RunConfig) bool { return true }, "excellent quality achieved"},
	},
	{
		{func(m OverallMetrics, _ config.RunConfig) bool { return m.TotalPasses == 1 }, "single pass was sufficient - text was already clear"},
		{func(m OverallMetrics, cfg config.RunConfig) bool { return m.TotalPasses >= cfg.MaxPasses }, "maximum passes used - consider manual refinement"},
	},
	{
		{func(m OverallMetrics, _ config.RunConfig) bool { return m.TotalImprovements == 0 }, "no automatic improvements made - text may already be optimal"},
		{func(m OverallMetrics, _ config.RunConfig) bool { return m.TotalImprovements > 10 }, "many improvements applied - verify meaning preservation"},
	},
}

func recommendations(m OverallMetrics, cfg config.RunConfig) []string {
	var out []string
	for _, group := range recommendationGroups {
		for _, rule := range group {
			if rule.when(m, cfg) {
				out = append(out, rule.text)
				break
			}
		}
	}
	return out
}
