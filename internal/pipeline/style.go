package pipeline

import (
	"context"
	"fmt"
	"regexp"

	"github.com/valpere/aclarador/internal/quality"
)

// LongSentenceWords is the length above which a sentence is flagged.
const LongSentenceWords = 30

type plainPhrase struct {
	wordy, plain string
	re           *regexp.Regexp
}

func plainPhrases(pairs ...string) []plainPhrase {
	out := make([]plainPhrase, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, plainPhrase{wordy: pairs[i], plain: pairs[i+1], re: phrase(pairs[i])})
	}
	return out
}

// wordyPhrases maps a language to wordy constructions and their plain
// equivalents.
var wordyPhrases = map[string][]plainPhrase{
	"es": plainPhrases(
		"con el fin de", "para",
		"con el objeto de", "para",
		"a fin de", "para",
		"en el caso de que", "si",
		"en caso de que", "si",
		"debido al hecho de que", "porque",
		"debido a que", "porque",
		"a pesar del hecho de que", "aunque",
		"en el momento actual", "ahora",
		"en la actualidad", "hoy",
		"llevar a cabo", "hacer",
		"dar comienzo", "empezar",
		"proceder a la realización de", "realizar",
		"con posterioridad a", "después de",
		"con anterioridad a", "antes de",
		"en relación con", "sobre",
	),
	"en": plainPhrases(
		"in order to", "to",
		"due to the fact that", "because",
		"in spite of the fact that", "although",
		"at this point in time", "now",
		"in the event that", "if",
		"for the purpose of", "for",
		"with regard to", "about",
		"in relation to", "about",
		"prior to", "before",
		"subsequent to", "after",
		"a large number of", "many",
		"make a decision", "decide",
		"carry out", "do",
	),
}

type styleStage struct{}

func (styleStage) name() string    { return Style }
func (styleStage) protected() bool { return true }

func (styleStage) apply(_ context.Context, st *state) error {
	for _, p := range wordyPhrases[st.lang] {
		var replaced []string
		st.text, replaced = replaceWords(p.re, st.text, p.plain)
		if len(replaced) == 0 {
			continue
		}
		st.add(Improvement{
			Capability: Style,
			Type:       "plain_language",
			Change:     replaced[0] + " → " + matchCase(replaced[0], p.plain),
			Reason:     "shorter, everyday wording",
			Reference:  "plain language",
			Applied:    true,
		})
	}

	for _, s := range quality.Sentences(st.text) {
		if n := len(quality.Words(s)); n > LongSentenceWords {
			st.add(Improvement{
				Capability: Style,
				Type:       "sentence_length",
				Change:     excerpt(s, 8),
				Reason:     fmt.Sprintf("sentence has %d words; split it into shorter ones", n),
				Reference:  "sentence length",
			})
		}
	}

	profile := quality.ProfileFor(st.lang)
	for _, re := range profile.PassiveVoice {
		for _, m := range re.FindAllString(st.text, -1) {
			st.add(Improvement{
				Capability: Style,
				Type:       "passive_voice",
				Change:     excerpt(m, 6),
				Reason:     "prefer the active voice",
				Reference:  "active voice",
			})
		}
	}
	return nil
}
