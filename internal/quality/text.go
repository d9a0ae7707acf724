package quality

import (
	"math"
	"regexp"
	"strings"
	"unicode"
)

var sentenceBreak = regexp.MustCompile(`[.!?]+`)

// Sentences splits text on runs of terminal punctuation and drops empty
// fragments.
func Sentences(text string) []string {
	parts := sentenceBreak.Split(text, -1)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Words splits on whitespace.
func Words(text string) []string {
	return strings.Fields(text)
}

// Paragraphs splits on blank lines.
func Paragraphs(text string) []string {
	var out []string
	for _, p := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n\n") {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// syllables counts vowel groups, with a minimum of one per word.
func syllables(word, vowels string) int {
	count := 0
	prevVowel := false
	for _, r := range strings.ToLower(word) {
		if strings.ContainsRune(vowels, r) {
			if !prevVowel {
				count++
			}
			prevVowel = true
		} else {
			prevVowel = false
		}
	}
	if count < 1 {
		return 1
	}
	return count
}

func trimPunct(word string) string {
	return strings.TrimFunc(word, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}

func sentenceLengths(sentences []string) []int {
	lengths := make([]int, len(sentences))
	for i, s := range sentences {
		lengths[i] = len(Words(s))
	}
	return lengths
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

func meanInts(xs []int) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0
	for _, x := range xs {
		sum += x
	}
	return float64(sum) / float64(len(xs))
}

// stdevInts is the sample standard deviation.
func stdevInts(xs []int) float64 {
	if len(xs) < 2 {
		return 0
	}
	m := meanInts(xs)
	ss := 0.0
	for _, x := range xs {
		d := float64(x) - m
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(xs)-1))
}

func clamp(x, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, x))
}
