// Package pipeline is the text-improvement pipeline the refinement loop
// drives: one call edits a text once and reports what changed and how good
// the result is.
//
// The default implementation chains capabilities in a fixed order:
// grammar, glossary, style, llm, seo, validator. Callers choose which of
// them run; the order never changes.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/valpere/aclarador/internal/placeholder"
	"github.com/valpere/aclarador/internal/quality"
	"github.com/valpere/aclarador/internal/validator"
)

// Capability names.
const (
	Grammar   = "grammar"
	Glossary  = "glossary"
	Style     = "style"
	LLM       = "llm"
	SEO       = "seo"
	Validator = "validator"
)

// ErrUnknownCapability is returned when Options name a capability the
// pipeline does not have.
var ErrUnknownCapability = errors.New("unknown capability")

// Improvement is one edit or suggestion reported by a capability. Applied is
// false for suggestions that did not change the text.
type Improvement struct {
	Capability string `json:"capability" yaml:"capability"`
	Type       string `json:"type" yaml:"type"`
	Change     string `json:"change" yaml:"change"`
	Reason     string `json:"reason" yaml:"reason"`
	Reference  string `json:"reference,omitempty" yaml:"reference,omitempty"`
	Applied    bool   `json:"applied" yaml:"applied"`
}

// Options select what one Improve call does.
type Options struct {
	// Capabilities to run. Empty means DefaultCapabilities.
	Capabilities []string
	// Lang is the ISO 639-1 code of the text. Empty or "auto" detects it.
	Lang string
	// Web enables the seo capability; it only applies to web content.
	Web bool
}

// Result is the outcome of one Improve call.
type Result struct {
	CorrectedText string        `json:"corrected_text"`
	Improvements  []Improvement `json:"improvements"`
	// QualityScore is set when the validator capability ran.
	QualityScore *float64        `json:"quality_score,omitempty"`
	Quality      *quality.Metrics `json:"quality,omitempty"`
	Language     string           `json:"language,omitempty"`
}

// Pipeline improves a text once.
type Pipeline interface {
	Improve(ctx context.Context, text string, opts Options) (*Result, error)
}

// DefaultCapabilities run when Options name none. llm is opt-in because it
// needs a model.
var DefaultCapabilities = []string{Grammar, Glossary, Style, SEO, Validator}

// Capabilities lists every capability in execution order.
func Capabilities() []string {
	return []string{Grammar, Glossary, Style, LLM, SEO, Validator}
}

// state is what the stages of one Improve call share.
type state struct {
	input        string
	text         string
	lang         string
	web          bool
	improvements []Improvement
	analyses     int
	corrections  int
	seoBalance   *float64
	markers      []string
	result       *Result
}

func (st *state) add(imp Improvement) {
	st.improvements = append(st.improvements, imp)
}

func (st *state) applied() int {
	n := 0
	for _, imp := range st.improvements {
		if imp.Applied {
			n++
		}
	}
	return n
}

type stage interface {
	name() string
	// protected stages see code, markup and links behind placeholders.
	protected() bool
	apply(ctx context.Context, st *state) error
}

// Default is the built-in heuristic pipeline.
type Default struct {
	stages    []stage
	validator *validator.Validator
	logger    *slog.Logger
}

// Option configures a Default pipeline.
type Option func(*Default)

// WithGlossary supplies the terms for the glossary capability.
func WithGlossary(g GlossarySource) Option {
	return func(d *Default) {
		d.replace(&glossaryStage{source: g})
	}
}

// WithRefiner enables the llm capability. See NewLLMStage for the knobs.
func WithRefiner(s *LLMStage) Option {
	return func(d *Default) {
		d.replace(s)
	}
}

// WithValidator sets the language validator. New builds a default one when
// this option is absent.
func WithValidator(v *validator.Validator) Option {
	return func(d *Default) {
		d.validator = v
	}
}

// WithLogger sets the logger for stage diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(d *Default) {
		d.logger = l
	}
}

// New builds the default pipeline. Without WithGlossary the glossary
// capability has no terms; without WithRefiner the llm capability is a no-op.
func New(opts ...Option) *Default {
	d := &Default{
		stages: []stage{
			grammarStage{},
			&glossaryStage{},
			styleStage{},
			&LLMStage{},
			seoStage{},
			&validatorStage{},
		},
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.validator == nil {
		d.validator = validator.New(nil)
	}
	for _, s := range d.stages {
		switch s := s.(type) {
		case *validatorStage:
			s.validator = d.validator
		case *LLMStage:
			s.logger = d.logger
		}
	}
	return d
}

func (d *Default) replace(s stage) {
	for i, cur := range d.stages {
		if cur.name() == s.name() {
			d.stages[i] = s
			return
		}
	}
}

// Improve runs the selected capabilities over text in pipeline order.
func (d *Default) Improve(ctx context.Context, text string, opts Options) (*Result, error) {
	selected := opts.Capabilities
	if len(selected) == 0 {
		selected = DefaultCapabilities
	}
	for _, c := range selected {
		if !slices.Contains(Capabilities(), c) {
			return nil, fmt.Errorf("%w: %q", ErrUnknownCapability, c)
		}
	}

	st := &state{
		input:  text,
		text:   text,
		lang:   d.language(text, opts.Lang),
		web:    opts.Web,
		result: &Result{},
	}
	st.text, st.markers = placeholder.Protect(text)

	for _, s := range d.stages {
		if !slices.Contains(selected, s.name()) {
			continue
		}
		if !s.protected() {
			st.unprotect()
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := s.apply(ctx, st); err != nil {
			return nil, fmt.Errorf("%s: %w", s.name(), err)
		}
		st.analyses++
		d.logger.Debug("capability applied", "capability", s.name(), "improvements", len(st.improvements))
	}
	st.unprotect()

	res := st.result
	res.CorrectedText = st.text
	res.Improvements = st.improvements
	res.Language = st.lang
	return res, nil
}

func (st *state) unprotect() {
	if st.markers == nil {
		return
	}
	st.text = placeholder.Restore(st.text, st.markers)
	st.markers = nil
}

// language resolves the working language: an explicit code wins, then
// detection, then the default quality profile.
func (d *Default) language(text, lang string) string {
	lang = strings.ToLower(strings.TrimSpace(lang))
	if lang != "" && lang != "auto" {
		return lang
	}
	if detected, ok := d.validator.Language(text); ok {
		return detected
	}
	return quality.Spanish.Lang
}
