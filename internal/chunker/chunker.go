// Package chunker cuts long texts into pieces a language model can edit in
// one request, and rebuilds the text from the edited pieces without losing
// paragraph structure.
package chunker

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// DefaultContextWords is the context window used by ExtractContext when the
// caller passes zero.
const DefaultContextWords = 25

// Piece is one chunk of text plus the whitespace that followed it in the
// source. Join(Split(t, n)) == t for every t and n.
type Piece struct {
	Text string
	Sep  string
}

// Split cuts text into pieces of at most maxChars runes, excluding separator
// whitespace. Cut points are chosen in this order of preference:
//  1. paragraph breaks (a blank line)
//  2. sentence ends (. ! ? followed by whitespace)
//  3. any whitespace
//  4. a hard cut at maxChars
//
// maxChars <= 0 means unlimited.
func Split(text string, maxChars int) []Piece {
	if maxChars <= 0 || utf8.RuneCountInString(text) <= maxChars {
		return []Piece{{Text: text}}
	}

	var pieces []Piece
	rest := []rune(text)
	for len(rest) > maxChars {
		cut := findCut(rest, maxChars)
		body := strings.TrimRightFunc(string(rest[:cut]), unicode.IsSpace)
		sep := string(rest[:cut])[len(body):]

		rest = rest[cut:]
		ws := 0
		for ws < len(rest) && unicode.IsSpace(rest[ws]) {
			ws++
		}
		sep += string(rest[:ws])
		rest = rest[ws:]

		pieces = append(pieces, Piece{Text: body, Sep: sep})
	}
	if len(rest) > 0 {
		pieces = append(pieces, Piece{Text: string(rest)})
	}
	return pieces
}

// Join rebuilds text from pieces.
func Join(pieces []Piece) string {
	var b strings.Builder
	for _, p := range pieces {
		b.WriteString(p.Text)
		b.WriteString(p.Sep)
	}
	return b.String()
}

// Chunk is Split without separators: each chunk trimmed, blanks dropped.
func Chunk(text string, maxChars int) []string {
	var chunks []string
	for _, p := range Split(text, maxChars) {
		if c := strings.TrimSpace(p.Text); c != "" {
			chunks = append(chunks, c)
		}
	}
	return chunks
}

// findCut returns the rune index to cut r at, 0 < index <= maxChars.
func findCut(r []rune, maxChars int) int {
	if i := lastParagraphBreak(r[:maxChars]); i > 0 {
		return i
	}
	for i := maxChars - 1; i > 0; i-- {
		if (r[i] == '.' || r[i] == '!' || r[i] == '?') && i+1 < len(r) && unicode.IsSpace(r[i+1]) {
			return i + 1
		}
	}
	for i := maxChars - 1; i > 0; i-- {
		if unicode.IsSpace(r[i]) {
			return i
		}
	}
	return maxChars
}

// lastParagraphBreak returns the start of the last whitespace run in r that
// holds two or more newlines, or -1.
func lastParagraphBreak(r []rune) int {
	for end := len(r) - 1; end > 0; end-- {
		if r[end] != '\n' {
			continue
		}
		start, newlines := end, 1
		for start > 0 && unicode.IsSpace(r[start-1]) {
			start--
			if r[start] == '\n' {
				newlines++
			}
		}
		if newlines >= 2 && start > 0 {
			return start
		}
		end = start
	}
	return -1
}

// ExtractContext returns the last wordCount words of text joined by single
// spaces, or the whole trimmed text when it is shorter. A model editing the
// next chunk sees it as read-only context.
func ExtractContext(text string, wordCount int) string {
	if wordCount <= 0 {
		wordCount = DefaultContextWords
	}
	words := strings.Fields(text)
	if len(words) <= wordCount {
		return strings.TrimSpace(text)
	}
	return strings.Join(words[len(words)-wordCount:], " ")
}
