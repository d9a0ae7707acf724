package pipeline

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// phrase compiles a case-insensitive literal matcher for a word or phrase.
// Word boundaries are checked by wholeWords, since RE2's \b is ASCII-only.
func phrase(p string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)` + regexp.QuoteMeta(p))
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsNumber(r)
}

// wholeWords returns the [start,end) byte ranges of matches of re in text
// that are not glued to a letter or digit on either side.
func wholeWords(re *regexp.Regexp, text string) [][]int {
	var out [][]int
	for _, loc := range re.FindAllStringIndex(text, -1) {
		if loc[0] > 0 {
			if r, _ := utf8.DecodeLastRuneInString(text[:loc[0]]); isWordRune(r) {
				continue
			}
		}
		if loc[1] < len(text) {
			if r, _ := utf8.DecodeRuneInString(text[loc[1]:]); isWordRune(r) {
				continue
			}
		}
		out = append(out, loc)
	}
	return out
}

// replaceWords substitutes every whole-word match of re with repl, keeping
// an initial capital. It returns the new text and the replaced originals.
func replaceWords(re *regexp.Regexp, text, repl string) (string, []string) {
	locs := wholeWords(re, text)
	if len(locs) == 0 {
		return text, nil
	}
	var b strings.Builder
	var replaced []string
	last := 0
	for _, loc := range locs {
		orig := text[loc[0]:loc[1]]
		b.WriteString(text[last:loc[0]])
		b.WriteString(matchCase(orig, repl))
		replaced = append(replaced, orig)
		last = loc[1]
	}
	b.WriteString(text[last:])
	return b.String(), replaced
}

// matchCase capitalizes repl when orig starts with an upper-case letter.
func matchCase(orig, repl string) string {
	r, _ := utf8.DecodeRuneInString(orig)
	if !unicode.IsUpper(r) || repl == "" {
		return repl
	}
	return capitalize(repl)
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + s[size:]
}

// excerpt returns the first n words of s, with an ellipsis when cut.
func excerpt(s string, n int) string {
	words := strings.Fields(s)
	if len(words) <= n {
		return strings.Join(words, " ")
	}
	return strings.Join(words[:n], " ") + "..."
}
