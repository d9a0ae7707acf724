package quality

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func inRange(t *testing.T, m Metrics) {
	t.Helper()
	fields := map[string]float64{
		"readability":           m.Readability,
		"sentence_complexity":   m.SentenceComplexity,
		"vocabulary_complexity": m.VocabularyComplexity,
		"structure":             m.Structure,
		"clarity":               m.Clarity,
		"coherence":             m.Coherence,
		"precision":             m.Precision,
		"grammar_accuracy":      m.GrammarAccuracy,
		"style_consistency":     m.StyleConsistency,
		"seo_optimization":      m.SEOOptimization,
		"overall_quality":       m.OverallQuality,
		"confidence_level":      m.ConfidenceLevel,
		"improvement_potential": m.ImprovementPotential,
	}
	for name, v := range fields {
		assert.GreaterOrEqual(t, v, 0.0, name)
		assert.LessOrEqual(t, v, 1.0, name)
	}
}

func TestAssess_DegenerateInput(t *testing.T) {
	m := New(nil)
	for _, text := range []string{"", "   ", "\n\n", "...", "?!"} {
		got := m.Assess(text, nil)
		assert.Equal(t, Metrics{}, got, "text %q", text)
	}
}

func TestAssess_ShortSentence(t *testing.T) {
	m := New(Spanish)
	got := m.Assess("Hola mundo.", nil)

	assert.InDelta(t, 1.0, got.Readability, 1e-9)
	assert.InDelta(t, 0.8, got.SentenceComplexity, 1e-9)
	assert.InDelta(t, 1.0, got.VocabularyComplexity, 1e-9)
	assert.InDelta(t, 1.0, got.Structure, 1e-9)
	assert.InDelta(t, (1.0+0.7+0.0)/3, got.Clarity, 1e-9)
	assert.InDelta(t, 1.0, got.Coherence, 1e-9)
	assert.InDelta(t, 1.0, got.Precision, 1e-9)
	assert.InDelta(t, 0.8, got.GrammarAccuracy, 1e-9)
	assert.InDelta(t, 1.0, got.StyleConsistency, 1e-9)
	assert.InDelta(t, 0.4, got.SEOOptimization, 1e-9)
	assert.InDelta(t, 0.5, got.ConfidenceLevel, 1e-9)

	wantOverall := 0.25*1.0 + 0.25*((1.0+0.7)/3) + 0.20*0.8 + 0.15*1.0 + 0.15*1.0
	assert.InDelta(t, wantOverall, got.OverallQuality, 1e-9)
	assert.InDelta(t, 1-wantOverall, got.ImprovementPotential, 1e-9)
}

func TestAssess_OverallIsWeightedCombination(t *testing.T) {
	m := New(Spanish)
	text := "El informe fue revisado por el equipo. Sin embargo, la propuesta necesita cambios. " +
		"Además, el presupuesto es muy muy alto. Finalmente, el comité tomará una decisión."
	got := m.Assess(text, nil)
	inRange(t, got)

	want := Overall(got.Readability, got.Clarity, got.GrammarAccuracy, got.Structure, got.Coherence)
	assert.InDelta(t, want, got.OverallQuality, 1e-12)
}

func TestAssess_ContextAdjustsScores(t *testing.T) {
	m := New(Spanish)
	text := "Hola mundo."
	balance := 0.65

	clean := m.Assess(text, &Context{Analyses: 2})
	assert.InDelta(t, 0.95, clean.GrammarAccuracy, 1e-9)
	assert.InDelta(t, 0.6, clean.ConfidenceLevel, 1e-9)

	corrected := m.Assess(text, &Context{Analyses: 2, Corrections: 1})
	assert.InDelta(t, 0.8, corrected.GrammarAccuracy, 1e-9)

	heavy := m.Assess(text, &Context{Analyses: 1, Corrections: 50})
	assert.InDelta(t, 0.3, heavy.GrammarAccuracy, 1e-9)

	seo := m.Assess(text, &Context{Analyses: 1, SEOBalance: &balance})
	assert.InDelta(t, 0.65, seo.SEOOptimization, 1e-9)

	saturated := m.Assess(text, &Context{Improvements: 6})
	plain := m.Assess(text, nil)
	assert.InDelta(t, plain.ImprovementPotential*0.7, saturated.ImprovementPotential, 1e-9)
}

func TestSentenceComplexity_LengthBands(t *testing.T) {
	m := New(Spanish)
	words := func(n int) string { return strings.TrimSpace(strings.Repeat("casa ", n)) }

	tests := []struct {
		name  string
		words int
		want  float64
	}{
		{"very long", 31, 0.5},
		{"long", 25, 0.7},
		{"normal", 12, 1.0},
		{"short", 4, 0.8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, m.sentenceComplexity([]string{words(tt.words)}), 1e-9)
		})
	}

	got := m.sentenceComplexity([]string{"No obstante, el proyecto mediante cuyo plan avanza bien hoy"})
	assert.InDelta(t, 0.8*0.8*0.8, got, 1e-9)
}

func TestVocabularyComplexity(t *testing.T) {
	m := New(Spanish)
	assert.InDelta(t, 1.0, m.vocabularyComplexity([]string{"casa", "perro"}), 1e-9)
	// one of two words complex: 1 - 2*0.5 = 0, floored at 0.2
	assert.InDelta(t, 0.2, m.vocabularyComplexity([]string{"casa", "información"}), 1e-9)
	assert.InDelta(t, 0.5, m.vocabularyComplexity([]string{"casa", "perro", "gato", "rápidamente"}), 1e-9)
}

func TestPrecision_PenalizesRedundancyAndFillers(t *testing.T) {
	m := New(Spanish)
	text := "Esto es realmente muy muy importante" + strings.Repeat(" casa", 44)
	words := Words(text)
	require.Len(t, words, 50)
	// one redundant phrase + one filler word over 50 words
	assert.InDelta(t, 1-2.0/50*10, m.precision(text, words), 1e-9)
	assert.InDelta(t, 0.5, m.precision("realmente realmente", Words("realmente realmente")), 1e-9)
}

func TestStyleConsistency_Tense(t *testing.T) {
	m := New(Spanish)
	mixed := m.styleConsistency([]string{"La casa es grande", "El perro fue rápido"})
	same := m.styleConsistency([]string{"La casa es grande", "El perro es rápido"})
	assert.Greater(t, same, mixed)
	assert.InDelta(t, 1.0, same, 1e-9)
}

func TestSEO_WordCountBands(t *testing.T) {
	assert.InDelta(t, 0.4, seo(make([]string, 50), nil), 1e-9)
	assert.InDelta(t, 0.6, seo(make([]string, 150), nil), 1e-9)
	assert.InDelta(t, 0.8, seo(make([]string, 300), nil), 1e-9)
	assert.InDelta(t, 0.6, seo(make([]string, 2500), nil), 1e-9)
}

func TestSyllables(t *testing.T) {
	assert.Equal(t, 2, syllables("hola", Spanish.Vowels))
	assert.Equal(t, 1, syllables("pfft", Spanish.Vowels))
	assert.Equal(t, 2, syllables("canción", Spanish.Vowels))
}

func TestProfileFor(t *testing.T) {
	assert.Same(t, English, ProfileFor("EN"))
	assert.Same(t, Spanish, ProfileFor("es"))
	assert.Same(t, Spanish, ProfileFor("xx"))
	assert.Same(t, Spanish, ProfileFor(""))
}

func TestEnglishProfile(t *testing.T) {
	m := New(English)
	got := m.Assess("The report was reviewed by the team. It is really very very long.", nil)
	inRange(t, got)
	assert.Less(t, got.Precision, 1.0)
}

func TestCountWords_AdjacentMatches(t *testing.T) {
	count := func(p *Profile, text string) int {
		n := 0
		for _, re := range p.PassiveVoice {
			n += countWords(re, text)
		}
		return n
	}

	tests := []struct {
		name    string
		profile *Profile
		text    string
		want    int
	}{
		{"spanish single space", Spanish, "fue creado fue revisado fue aprobado", 3},
		{"spanish mixed suffix", Spanish, "El plan fue creado y fue cumplido.", 2},
		{"english adjacent", English, "was written was checked was signed", 3},
		{"no passive", Spanish, "El equipo revisa el plan.", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, count(tt.profile, tt.text))
		})
	}

	tense := Spanish.PastTense
	assert.Equal(t, 3, countWords(tense, "fue fue fue"))
}

func TestAssess_ConcurrentUse(t *testing.T) {
	m := New(Spanish)
	text := "El equipo revisa el informe. Además, prepara una propuesta clara."
	want := m.Assess(text, nil)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.Equal(t, want, m.Assess(text, nil))
		}()
	}
	wg.Wait()
}
