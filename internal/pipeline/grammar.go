package pipeline

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	reRunOfSpaces   = regexp.MustCompile(`(\S)[ \t]{2,}`)
	reSpaceBefore   = regexp.MustCompile(`[ \t]+([,.;:!?])`)
	reWord          = regexp.MustCompile(`[\pL\pN]+`)
	reSentenceStart = regexp.MustCompile(`(^|[.!?]\s+)(\p{Ll})`)
)

// abbreviations never end a sentence.
var abbreviations = map[string]bool{
	"etc": true, "ej": true, "p": true, "pág": true, "págs": true, "núm": true,
	"sr": true, "sra": true, "srta": true, "dr": true, "dra": true, "ud": true,
	"uds": true, "vs": true, "aprox": true, "e.g": true, "i.e": true, "approx": true,
	"mr": true, "mrs": true, "ms": true, "fig": true,
}

type accentPair struct {
	plain, accented string
	re              *regexp.Regexp
}

// accentPairs are Spanish words whose accented form is a different word.
// Context decides which one is right, so they are only suggested.
var accentPairs = []accentPair{
	{"mas", "más", phrase("mas")},
	{"si", "sí", phrase("si")},
	{"tu", "tú", phrase("tu")},
	{"el", "él", phrase("el")},
}

type grammarStage struct{}

func (grammarStage) name() string    { return Grammar }
func (grammarStage) protected() bool { return true }

func (grammarStage) apply(_ context.Context, st *state) error {
	if n := countAndReplace(&st.text, reRunOfSpaces, "${1} "); n > 0 {
		st.corrections += n
		st.add(grammarFix("spacing", fmt.Sprintf("repeated spaces collapsed (%d)", n), "extra spaces between words", "spacing"))
	}
	if n := countAndReplace(&st.text, reSpaceBefore, "${1}"); n > 0 {
		st.corrections += n
		st.add(grammarFix("punctuation", fmt.Sprintf("space before punctuation removed (%d)", n), "punctuation follows the word without a space", "punctuation"))
	}

	var repeats []string
	st.text, repeats = collapseRepeats(st.text)
	for _, w := range repeats {
		st.corrections++
		st.add(grammarFix("repetition", w+" "+w+" → "+w, fmt.Sprintf("unnecessary repetition of %q", w), "connectors"))
	}

	var capitalized []string
	st.text, capitalized = capitalizeSentences(st.text)
	for _, w := range capitalized {
		st.corrections++
		st.add(grammarFix("capitalization", w+" → "+capitalize(w), "sentences start with a capital letter", "capitalization"))
	}

	if st.lang == "es" {
		for _, p := range accentPairs {
			if len(wholeWords(p.re, st.text)) == 0 {
				continue
			}
			st.add(Improvement{
				Capability: Grammar,
				Type:       "accent",
				Change:     p.plain + " → " + p.accented,
				Reason:     fmt.Sprintf("possible missing accent on %q", p.plain),
				Reference:  "accentuation",
			})
		}
	}
	return nil
}

func grammarFix(typ, change, reason, ref string) Improvement {
	return Improvement{Capability: Grammar, Type: typ, Change: change, Reason: reason, Reference: ref, Applied: true}
}

func countAndReplace(text *string, re *regexp.Regexp, repl string) int {
	n := len(re.FindAllStringIndex(*text, -1))
	if n > 0 {
		*text = re.ReplaceAllString(*text, repl)
	}
	return n
}

// collapseRepeats removes a word repeated immediately after itself on the
// same line ("que que" → "que"). Numbers are left alone.
func collapseRepeats(text string) (string, []string) {
	locs := reWord.FindAllStringIndex(text, -1)
	var b strings.Builder
	var removed []string
	last := 0
	for i := 1; i < len(locs); i++ {
		prev, cur := locs[i-1], locs[i]
		gap := text[prev[1]:cur[0]]
		if gap == "" || strings.Trim(gap, " \t") != "" {
			continue
		}
		w1, w2 := text[prev[0]:prev[1]], text[cur[0]:cur[1]]
		if !strings.EqualFold(w1, w2) || reNumber.MatchString(w1) {
			continue
		}
		b.WriteString(text[last:prev[1]])
		last = cur[1]
		removed = append(removed, strings.ToLower(w1))
	}
	if removed == nil {
		return text, nil
	}
	b.WriteString(text[last:])
	return b.String(), removed
}

var reNumber = regexp.MustCompile(`^\pN+$`)

// capitalizeSentences upper-cases the first letter of the text and of every
// sentence, skipping abbreviations and ellipses.
func capitalizeSentences(text string) (string, []string) {
	var b strings.Builder
	var changed []string
	last := 0
	for _, m := range reSentenceStart.FindAllStringSubmatchIndex(text, -1) {
		sepStart, letterStart, letterEnd := m[2], m[4], m[5]
		if sepStart < letterStart && !endsSentence(text[:sepStart+1]) {
			continue
		}
		b.WriteString(text[last:letterStart])
		b.WriteString(strings.ToUpper(text[letterStart:letterEnd]))
		last = letterEnd
		changed = append(changed, wordAt(text, letterStart))
	}
	if changed == nil {
		return text, nil
	}
	b.WriteString(text[last:])
	return b.String(), changed
}

// endsSentence reports whether the punctuation mark that closes prefix ends
// a sentence.
func endsSentence(prefix string) bool {
	mark, size := utf8.DecodeLastRuneInString(prefix)
	before := prefix[:len(prefix)-size]
	if mark != '.' {
		return true
	}
	if strings.HasSuffix(before, ".") || strings.HasSuffix(before, "…") {
		return false
	}
	word := before
	if i := strings.LastIndexFunc(before, func(r rune) bool { return !isWordRune(r) && r != '.' }); i >= 0 {
		_, sz := utf8.DecodeRuneInString(before[i:])
		word = before[i+sz:]
	}
	word = strings.ToLower(word)
	if utf8.RuneCountInString(word) == 1 {
		return false
	}
	return !abbreviations[word]
}

func wordAt(text string, i int) string {
	if loc := reWord.FindStringIndex(text[i:]); loc != nil && loc[0] == 0 {
		return text[i : i+loc[1]]
	}
	return text[i:]
}
