// Package orchestrator runs the refinement loop: it applies the improvement
// pipeline pass after pass, scores every result, and stops on the first
// matching stop rule.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/valpere/aclarador/internal/config"
	"github.com/valpere/aclarador/internal/convergence"
	"github.com/valpere/aclarador/internal/pipeline"
	"github.com/valpere/aclarador/internal/quality"
)

// ErrPipelineFailure wraps any error returned by the pipeline. The run is
// aborted and no report is produced.
var ErrPipelineFailure = errors.New("pipeline failure")

// ConvergenceMetrics compare the input and output of one pass. Lengths are
// counted in runes.
type ConvergenceMetrics struct {
	TextSimilarity     float64 `json:"text_similarity" yaml:"text_similarity"`
	QualityImprovement float64 `json:"quality_improvement" yaml:"quality_improvement"`
	ChangeRatio        float64 `json:"change_ratio" yaml:"change_ratio"`
	ChangesMade        bool    `json:"changes_made" yaml:"changes_made"`
}

// Pass is one pipeline invocation.
type Pass struct {
	Number         int                    `json:"pass_number" yaml:"pass_number"`
	InputText      string                 `json:"input_text" yaml:"input_text"`
	OutputText     string                 `json:"output_text" yaml:"output_text"`
	Improvements   []pipeline.Improvement `json:"improvements" yaml:"improvements"`
	QualityScore   float64                `json:"quality_score" yaml:"quality_score"`
	ProcessingTime Duration               `json:"processing_time" yaml:"processing_time"`
	Convergence    ConvergenceMetrics     `json:"convergence_metrics" yaml:"convergence_metrics"`
	Quality        quality.Metrics        `json:"quality" yaml:"quality"`
	Decision       convergence.Decision   `json:"decision" yaml:"decision"`
}

// Orchestrator drives refinement runs. One Orchestrator may serve many
// sequential runs; each run gets its own convergence detector.
type Orchestrator struct {
	pipeline     pipeline.Pipeline
	model        *quality.Model
	logger       *slog.Logger
	capabilities []string
	lang         string
	web          bool
	thresholds   convergence.Thresholds
	passTimeout  time.Duration
	now          func() time.Time
}

type Option func(*Orchestrator)

// WithQualityModel sets the model used when the pipeline reports no metrics.
// Without it the model follows the language the pipeline reports.
func WithQualityModel(m *quality.Model) Option {
	return func(o *Orchestrator) { o.model = m }
}

func WithLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) { o.logger = l }
}

// WithCapabilities selects the pipeline capabilities used on every pass.
func WithCapabilities(caps ...string) Option {
	return func(o *Orchestrator) { o.capabilities = caps }
}

// WithLanguage fixes the text language instead of detecting it each pass.
func WithLanguage(lang string) Option {
	return func(o *Orchestrator) { o.lang = lang }
}

// WithWeb marks the text as web content.
func WithWeb(web bool) Option {
	return func(o *Orchestrator) { o.web = web }
}

func WithThresholds(th convergence.Thresholds) Option {
	return func(o *Orchestrator) { o.thresholds = th }
}

// WithPassTimeout bounds each pipeline call. Zero means no bound.
func WithPassTimeout(d time.Duration) Option {
	return func(o *Orchestrator) { o.passTimeout = d }
}

func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

func New(p pipeline.Pipeline, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		pipeline:   p,
		logger:     slog.New(slog.DiscardHandler),
		thresholds: convergence.DefaultThresholds(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Run refines text until a stop rule fires. The configuration is validated
// before the first pass. Cancellation is checked between passes.
func (o *Orchestrator) Run(ctx context.Context, text string, cfg config.RunConfig) (*Report, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	det := convergence.New(o.thresholds)
	start := o.now()

	var passes []Pass
	current := text
	previous := 0.0
	for n := 1; ; n++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		passStart := o.now()
		res, err := o.improve(ctx, current)
		if err != nil {
			return nil, fmt.Errorf("%w: pass %d: %w", ErrPipelineFailure, n, err)
		}

		metrics, score := o.score(res)
		det.Record(res.CorrectedText, metrics, len(res.Improvements))

		pass := Pass{
			Number:         n,
			InputText:      current,
			OutputText:     res.CorrectedText,
			Improvements:   res.Improvements,
			QualityScore:   score,
			ProcessingTime: Duration(o.now().Sub(passStart)),
			Convergence:    measure(current, res.CorrectedText, score, previous),
			Quality:        metrics,
			Decision:       det.Decide(),
		}
		passes = append(passes, pass)

		o.logger.Info("pass complete",
			"pass", n,
			"quality", score,
			"improvements", len(pass.Improvements),
			"changes_made", pass.Convergence.ChangesMade)

		if rule, stop := shouldStop(&pass, cfg); stop {
			o.logger.Info("refinement stopped", "reason", rule.reason, "passes", n)
			return buildReport(text, passes, rule, cfg, det, Duration(o.now().Sub(start))), nil
		}

		current = res.CorrectedText
		previous = score
	}
}

func (o *Orchestrator) improve(ctx context.Context, text string) (*pipeline.Result, error) {
	if o.passTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.passTimeout)
		defer cancel()
	}
	res, err := o.pipeline.Improve(ctx, text, pipeline.Options{
		Capabilities: o.capabilities,
		Lang:         o.lang,
		Web:          o.web,
	})
	if err != nil {
		return nil, err
	}
	if res == nil {
		return nil, errors.New("pipeline returned no result")
	}
	return res, nil
}

// score returns the full metrics of the pass output and its quality score.
// The pipeline's own score wins over the model's overall quality.
func (o *Orchestrator) score(res *pipeline.Result) (quality.Metrics, float64) {
	var metrics quality.Metrics
	if res.Quality != nil {
		metrics = *res.Quality
	} else {
		model := o.model
		if model == nil {
			model = quality.New(quality.ProfileFor(res.Language))
		}
		metrics = model.Assess(res.CorrectedText, &quality.Context{Improvements: len(res.Improvements)})
	}
	if res.QualityScore != nil {
		metrics.OverallQuality = *res.QualityScore
	}
	return metrics, metrics.OverallQuality
}

// measure compares one pass's input and output. Similarity is floored at
// zero when the output more than doubles the input.
func measure(in, out string, score, previous float64) ConvergenceMetrics {
	inLen := utf8.RuneCountInString(in)
	delta := utf8.RuneCountInString(out) - inLen
	if delta < 0 {
		delta = -delta
	}

	m := ConvergenceMetrics{
		TextSimilarity:     1,
		QualityImprovement: score - previous,
		ChangesMade:        out != in,
	}
	if inLen > 0 {
		m.TextSimilarity = max(0, 1-float64(delta)/float64(inLen))
	}
	if m.ChangesMade {
		m.ChangeRatio = 1
		if inLen > 0 {
			m.ChangeRatio = min(1, float64(delta)/float64(inLen))
		}
	}
	return m
}
