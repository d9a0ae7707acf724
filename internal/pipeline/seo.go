package pipeline

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/valpere/aclarador/internal/quality"
)

// stopwords are ignored when looking for the dominant keyword.
var stopwords = map[string]map[string]struct{}{
	"es": setOf("para", "pero", "como", "este", "esta", "estos", "estas", "entre", "sobre", "desde",
		"cuando", "donde", "porque", "también", "tiene", "tienen", "puede", "pueden", "será", "sido",
		"muy", "más", "todo", "todos", "cada", "otro", "otra", "según", "hasta", "sin", "ese", "esa"),
	"en": setOf("about", "after", "also", "because", "been", "before", "between", "could", "each",
		"from", "have", "into", "more", "most", "other", "over", "should", "some", "such", "than",
		"that", "their", "them", "then", "there", "these", "they", "this", "those", "through",
		"very", "what", "when", "where", "which", "while", "will", "with", "would", "your"),
}

func setOf(words ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}

type seoStage struct{}

func (seoStage) name() string    { return SEO }
func (seoStage) protected() bool { return false }

func (seoStage) apply(_ context.Context, st *state) error {
	if !st.web {
		return nil
	}
	balance, recs := assessSEO(st.text, st.lang)
	st.seoBalance = &balance
	for _, r := range recs {
		st.add(r)
	}
	return nil
}

// assessSEO balances search-engine signals against clarity: length,
// paragraph size and keyword density. Keyword stuffing is penalized because
// it hurts readers.
func assessSEO(text, lang string) (float64, []Improvement) {
	words := quality.Words(text)
	n := len(words)
	var recs []Improvement
	rec := func(typ, change, reason string) {
		recs = append(recs, Improvement{Capability: SEO, Type: typ, Change: change, Reason: reason, Reference: "web writing"})
	}

	length := 0.7
	switch {
	case n < 100:
		length = 0.4
		rec("short_content", fmt.Sprintf("%d words", n), "pages under 100 words rarely rank; expand the content")
	case n >= 300 && n <= 2000:
		length = 1
	case n > 2000:
		rec("long_content", fmt.Sprintf("%d words", n), "consider splitting the page")
	}

	paragraphs := 1.0
	if ps := quality.Paragraphs(text); len(ps) > 0 {
		if avg := float64(n) / float64(len(ps)); avg > 120 {
			paragraphs = 0.6
			rec("long_paragraphs", fmt.Sprintf("%.0f words per paragraph", avg), "short paragraphs are easier to scan on screen")
		}
	}

	keyword := 0.8
	if n >= 50 {
		word, count := dominantWord(words, lang)
		density := float64(count) / float64(n)
		switch {
		case density > 0.04:
			keyword = 0.5
			rec("keyword_stuffing", fmt.Sprintf("%q is %.1f%% of the text", word, density*100), "repeat the main term less; use synonyms")
		case density < 0.005:
			keyword = 0.7
			rec("weak_focus", "no recurring topic term", "name the main topic consistently")
		default:
			keyword = 1
		}
	}

	return (length + paragraphs + keyword) / 3, recs
}

// dominantWord returns the most frequent content word (four letters or
// more, not a stopword) and its count.
func dominantWord(words []string, lang string) (string, int) {
	freq := make(map[string]int)
	for _, w := range words {
		w = strings.ToLower(strings.TrimFunc(w, func(r rune) bool { return !unicode.IsLetter(r) }))
		if len([]rune(w)) < 4 {
			continue
		}
		if _, skip := stopwords[lang][w]; skip {
			continue
		}
		freq[w]++
	}
	keys := make([]string, 0, len(freq))
	for w := range freq {
		keys = append(keys, w)
	}
	sort.Slice(keys, func(i, j int) bool {
		if freq[keys[i]] != freq[keys[j]] {
			return freq[keys[i]] > freq[keys[j]]
		}
		return keys[i] < keys[j]
	})
	if len(keys) == 0 {
		return "", 0
	}
	return keys[0], freq[keys[0]]
}
