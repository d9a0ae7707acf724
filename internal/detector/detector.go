// Package detector identifies the language of a text. The refinement loop
// uses it to pick the quality profile and to notice when an edit switched
// languages.
package detector

import (
	"strings"
	"unicode"

	lingua "github.com/pemistahl/lingua-go"
)

// DefaultLanguages are the candidates considered when New gets fewer than two.
var DefaultLanguages = []lingua.Language{
	lingua.Spanish,
	lingua.English,
	lingua.Portuguese,
	lingua.French,
	lingua.Italian,
	lingua.German,
	lingua.Catalan,
}

// SampleRunes bounds how much of a document is looked at. The opening of a
// long document identifies its language as well as the whole of it.
const SampleRunes = 2000

// Detector is safe for concurrent use.
type Detector struct {
	detector  lingua.LanguageDetector
	languages []lingua.Language
}

func New(languages ...lingua.Language) *Detector {
	if len(languages) < 2 {
		languages = DefaultLanguages
	}
	detector := lingua.NewLanguageDetectorBuilder().
		FromLanguages(languages...).
		Build()

	return &Detector{detector: detector, languages: languages}
}

func (d *Detector) Detect(text string) (lingua.Language, bool) {
	text = sample(text, SampleRunes)
	if text == "" {
		return lingua.Unknown, false
	}
	return d.detector.DetectLanguageOf(text)
}

// DetectISO returns the lowercase ISO 639-1 code of the detected language.
func (d *Detector) DetectISO(text string) (string, bool) {
	lang, ok := d.Detect(text)
	if !ok {
		return "", false
	}
	return isoCode(lang), true
}

// Confidence returns how likely text is written in the language with the
// given ISO 639-1 code, in [0, 1]. Languages the detector was not built for
// score 0.
func (d *Detector) Confidence(text, iso string) float64 {
	text = sample(text, SampleRunes)
	if text == "" {
		return 0
	}
	for _, lang := range d.languages {
		if isoCode(lang) == strings.ToLower(iso) {
			return d.detector.ComputeLanguageConfidence(text, lang)
		}
	}
	return 0
}

func isoCode(lang lingua.Language) string {
	return strings.ToLower(lang.IsoCode639_1().String())
}

// sample returns at most n runes of the trimmed text, cut at a word boundary
// when there is one.
func sample(text string, n int) string {
	text = strings.TrimSpace(text)
	count := 0
	for i := range text {
		if count == n {
			cut := strings.LastIndexFunc(text[:i], unicode.IsSpace)
			if cut <= 0 {
				return text[:i]
			}
			return strings.TrimSpace(text[:cut])
		}
		count++
	}
	return text
}
