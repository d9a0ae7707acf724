// Package quality scores a text snapshot on a fixed set of readability,
// clarity and correctness heuristics and folds them into a single
// overall_quality value.
//
// The model is deterministic and stateless: the same text and context always
// produce the same Metrics, and a Model may be shared between goroutines.
package quality

// Weights of the sub-scores that make up OverallQuality.
const (
	WeightReadability = 0.25
	WeightClarity     = 0.25
	WeightGrammar     = 0.20
	WeightStructure   = 0.15
	WeightCoherence   = 0.15
)

// Metrics is the multi-factor assessment of one text snapshot. Every field is
// in [0,1].
type Metrics struct {
	Readability          float64 `json:"readability" yaml:"readability"`
	SentenceComplexity   float64 `json:"sentence_complexity" yaml:"sentence_complexity"`
	VocabularyComplexity float64 `json:"vocabulary_complexity" yaml:"vocabulary_complexity"`
	Structure            float64 `json:"structure" yaml:"structure"`
	Clarity              float64 `json:"clarity" yaml:"clarity"`
	Coherence            float64 `json:"coherence" yaml:"coherence"`
	Precision            float64 `json:"precision" yaml:"precision"`
	GrammarAccuracy      float64 `json:"grammar_accuracy" yaml:"grammar_accuracy"`
	StyleConsistency     float64 `json:"style_consistency" yaml:"style_consistency"`
	SEOOptimization      float64 `json:"seo_optimization" yaml:"seo_optimization"`
	OverallQuality       float64 `json:"overall_quality" yaml:"overall_quality"`
	ConfidenceLevel      float64 `json:"confidence_level" yaml:"confidence_level"`
	ImprovementPotential float64 `json:"improvement_potential" yaml:"improvement_potential"`
}

// Context carries what the improvement pipeline reported about the text.
// A nil *Context means the text is assessed on its own.
type Context struct {
	// Analyses is the number of pipeline stages that inspected the text.
	// Grammar accuracy is derived from Corrections only when it is positive.
	Analyses int
	// Corrections is the number of grammar corrections the pipeline reported.
	Corrections int
	// SEOBalance is the SEO stage's clarity/optimization balance, when it ran.
	SEOBalance *float64
	// Improvements is the number of improvements already applied.
	Improvements int
}

// Model assesses text against one language Profile.
type Model struct {
	profile *Profile
}

// New returns a Model for profile. A nil profile selects Spanish.
func New(profile *Profile) *Model {
	if profile == nil {
		profile = Spanish
	}
	return &Model{profile: profile}
}

// Profile returns the language profile the model scores against.
func (m *Model) Profile() *Profile {
	return m.profile
}

// Assess computes the full Metrics for text. Text without any sentence or
// word yields the zero Metrics.
func (m *Model) Assess(text string, ctx *Context) Metrics {
	sentences := Sentences(text)
	words := Words(text)
	if len(sentences) == 0 || len(words) == 0 {
		return Metrics{}
	}

	out := Metrics{
		Readability:          m.readability(sentences, words),
		SentenceComplexity:   m.sentenceComplexity(sentences),
		VocabularyComplexity: m.vocabularyComplexity(words),
		Structure:            structure(text, sentences),
		Clarity:              m.clarity(text, sentences),
		Coherence:            coherence(sentences),
		Precision:            m.precision(text, words),
		GrammarAccuracy:      grammarAccuracy(words, ctx),
		StyleConsistency:     m.styleConsistency(sentences),
		SEOOptimization:      seo(words, ctx),
		ConfidenceLevel:      confidence(words, ctx),
	}
	out.OverallQuality = Overall(out.Readability, out.Clarity, out.GrammarAccuracy, out.Structure, out.Coherence)
	out.ImprovementPotential = improvementPotential(out.OverallQuality, ctx)
	return out
}

// Overall is the fixed weighted combination behind OverallQuality.
func Overall(readability, clarity, grammar, structure, coherence float64) float64 {
	total := WeightReadability + WeightClarity + WeightGrammar + WeightStructure + WeightCoherence
	score := readability*WeightReadability +
		clarity*WeightClarity +
		grammar*WeightGrammar +
		structure*WeightStructure +
		coherence*WeightCoherence
	return clamp(score/total, 0, 1)
}
