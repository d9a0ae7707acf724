package quality

import (
	"regexp"
	"strings"
)

// Profile groups the language-specific pattern sets the quality heuristics
// match against. The formulas are the same for every language; only the
// vocabulary changes.
type Profile struct {
	Lang string

	// ComplexStructures penalize a sentence once per matching pattern.
	ComplexStructures []*regexp.Regexp
	// PassiveVoice matches are counted across the whole text.
	PassiveVoice []*regexp.Regexp
	// ComplexVocabulary is tested word by word; one hit marks the word.
	ComplexVocabulary []*regexp.Regexp

	FlowIndicators   []string
	RedundantPhrases []string
	FillerWords      map[string]bool

	PresentTense *regexp.Regexp
	PastTense    *regexp.Regexp
	FutureTense  *regexp.Regexp

	Vowels string
}

// anyWord builds a pattern matching one of alts as a whole word. RE2's \b is
// ASCII-only, which breaks on accented endings such as "está", so the word
// edges are spelled out with Unicode letter classes.
func anyWord(caseInsensitive bool, alts ...string) *regexp.Regexp {
	flags := ""
	if caseInsensitive {
		flags = "(?i)"
	}
	return regexp.MustCompile(flags + `(?:^|[^\pL\pN])(` + strings.Join(alts, "|") + `)(?:[^\pL\pN]|$)`)
}

// passive builds an auxiliary + participle pattern.
func passive(aux []string, suffix string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)(?:^|[^\pL\pN])((?:` + strings.Join(aux, "|") + `)\s+\pL+` + suffix + `)(?:[^\pL\pN]|$)`)
}

// countWords counts the matches of an anyWord or passive pattern. The edge
// classes consume the separator, so each search restarts at the end of the
// captured word rather than at the end of the whole match.
func countWords(re *regexp.Regexp, text string) int {
	n := 0
	for pos := 0; pos < len(text); {
		loc := re.FindStringSubmatchIndex(text[pos:])
		if loc == nil {
			break
		}
		n++
		pos += loc[3]
	}
	return n
}

func suffixes(alts ...string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)\pL(?:` + strings.Join(alts, "|") + `)(?:[^\pL\pN]|$)`)
}

func set(words ...string) map[string]bool {
	m := make(map[string]bool, len(words))
	for _, w := range words {
		m[w] = true
	}
	return m
}

var longWord = regexp.MustCompile(`\pL{15,}`)

// Spanish is the default profile; aclarador targets plain-language Spanish.
var Spanish = &Profile{
	Lang: "es",
	ComplexStructures: []*regexp.Regexp{
		anyWord(true, "no obstante", "sin embargo", "por consiguiente", "a pesar de que", "dado que"),
		anyWord(true, "cuyo", "cuya", "cuyos", "cuyas"),
		anyWord(true, "mediante", "respecto a", "con respecto a", "en relación con"),
	},
	PassiveVoice: []*regexp.Regexp{
		passive([]string{"fue", "fueron", "ha sido", "han sido", "será", "serán"}, "ado"),
		passive([]string{"fue", "fueron", "ha sido", "han sido", "será", "serán"}, "ido"),
	},
	ComplexVocabulary: []*regexp.Regexp{
		longWord,
		suffixes("ción", "sión", "idad", "mente", "ismo", "ística"),
	},
	FlowIndicators: []string{"primero", "segundo", "además", "por tanto", "finalmente", "en conclusión"},
	RedundantPhrases: []string{
		"muy muy", "que que", "el el", "la la", "de de",
		"completamente total", "absolutamente completo", "totalmente absoluto",
	},
	FillerWords:  set("realmente", "básicamente", "obviamente", "claramente", "simplemente"),
	PresentTense: anyWord(false, "es", "está", "tiene", "hace"),
	PastTense:    anyWord(false, "fue", "estuvo", "tuvo", "hizo"),
	FutureTense:  anyWord(false, "será", "estará", "tendrá", "hará"),
	Vowels:       "aeiouáéíóúü",
}

var English = &Profile{
	Lang: "en",
	ComplexStructures: []*regexp.Regexp{
		anyWord(true, "nevertheless", "notwithstanding", "consequently", "in spite of the fact that", "given that"),
		anyWord(true, "whose", "whereby", "wherein", "whereupon"),
		anyWord(true, "by means of", "with regard to", "with respect to", "in relation to"),
	},
	PassiveVoice: []*regexp.Regexp{
		passive([]string{"was", "were", "has been", "have been", "will be"}, "ed"),
		passive([]string{"was", "were", "has been", "have been", "will be"}, "en"),
	},
	ComplexVocabulary: []*regexp.Regexp{
		longWord,
		suffixes("tion", "sion", "ity", "ment", "ism", "istic"),
	},
	FlowIndicators: []string{"first", "second", "moreover", "therefore", "finally", "in conclusion"},
	RedundantPhrases: []string{
		"very very", "that that", "the the", "of of",
		"completely total", "absolutely complete", "end result", "past history",
	},
	FillerWords:  set("really", "basically", "obviously", "clearly", "simply"),
	PresentTense: anyWord(false, "is", "are", "has", "does"),
	PastTense:    anyWord(false, "was", "were", "had", "did"),
	FutureTense:  anyWord(false, "will", "shall"),
	Vowels:       "aeiouy",
}

var profiles = map[string]*Profile{
	Spanish.Lang: Spanish,
	English.Lang: English,
}

// ProfileFor returns the profile for an ISO 639-1 code, falling back to
// Spanish for unknown or empty codes.
func ProfileFor(lang string) *Profile {
	if p, ok := profiles[strings.ToLower(lang)]; ok {
		return p
	}
	return Spanish
}

// Languages lists the codes with a built-in profile.
func Languages() []string {
	return []string{Spanish.Lang, English.Lang}
}
