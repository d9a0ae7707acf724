// Package postprocess strips what a language model wraps around an edited
// text: reasoning blocks, lead-ins such as "Here is the revised text:", code
// fences, trailing notes about the changes, and outer quotes.
//
// Every refiner backend (Ollama, Anthropic) runs its raw output through Clean
// before the edit reaches the pipeline.
package postprocess

import (
	"regexp"
	"strings"
)

var cleaners = []func(string) string{
	stripReasoning,
	stripLeadIn,
	stripFence,
	stripChangeNotes,
	stripOuterQuotes,
}

// Clean applies every cleaner in order and returns the trimmed result.
func Clean(text string) string {
	text = strings.TrimSpace(text)
	for _, clean := range cleaners {
		text = strings.TrimSpace(clean(text))
	}
	return text
}

var reasoningTags = []string{"thinking", "think", "reasoning", "reflection"}

var (
	closedReasoningRe = regexp.MustCompile(`(?is)` + alternatives(reasoningTags, func(tag string) string {
		return "<" + tag + ">.*?</" + tag + ">"
	}))
	// A block the model never closed runs to the end of the output.
	openReasoningRe = regexp.MustCompile(`(?is)(?:` + alternatives(reasoningTags, func(tag string) string {
		return "<" + tag + ">"
	}) + `).*$`)
)

func stripReasoning(text string) string {
	text = closedReasoningRe.ReplaceAllString(text, "")
	return openReasoningRe.ReplaceAllString(text, "")
}

const (
	editedEN = `(?:edited|revised|clarified|simplified|improved|corrected|rewritten)`
	editedES = `(?:corregido|editado|revisado|simplificado|mejorado|reescrito)`
)

// leadInRe matches a colon-terminated introduction at the very start.
var leadInRe = regexp.MustCompile(`(?i)^(?:` + strings.Join([]string{
	`(?:(?:certainly|sure|of course)[,.!]?\s+)?here(?:'s| is)(?: the| your)?(?: ` + editedEN + `)? (?:text|version)`,
	`(?:the )?` + editedEN + ` (?:text|version)`,
	`(?:(?:claro|por supuesto)[,.!]?\s+)?aquí (?:está|tienes)(?: el)? texto(?: ` + editedES + `)?`,
	`(?:el )?texto ` + editedES,
}, "|") + `)\s*:`)

func stripLeadIn(text string) string {
	for {
		loc := leadInRe.FindStringIndex(text)
		if loc == nil {
			return text
		}
		text = strings.TrimSpace(text[loc[1]:])
	}
}

// fenceRe matches an output that is one fenced block and nothing else.
var fenceRe = regexp.MustCompile("(?s)^```[A-Za-z]*\\s*\n(.*?)\n\\s*```$")

func stripFence(text string) string {
	if m := fenceRe.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	return text
}

// changeNotesRe matches a trailing section, after a blank line, that lists
// what the model changed.
var changeNotesRe = regexp.MustCompile(`(?is)\n[ \t]*\n[ \t]*(?:\*\*)?(?:changes(?: made)?|notes?|explanation|cambios(?: realizados)?|notas?|explicación)(?:\*\*)?\s*:.*$`)

func stripChangeNotes(text string) string {
	return changeNotesRe.ReplaceAllString(text, "")
}

var quotePairs = map[rune]rune{
	'"':  '"',
	'\'': '\'',
	'«':  '»',
	'“':  '”',
	'‘':  '’',
}

// stripOuterQuotes removes one matching pair of quotes around the whole text.
// "A" and "B" is two quotations, not one, so text with either quote mark
// inside is left alone.
func stripOuterQuotes(text string) string {
	runes := []rune(text)
	if len(runes) < 2 {
		return text
	}
	closing, ok := quotePairs[runes[0]]
	if !ok || runes[len(runes)-1] != closing {
		return text
	}
	inner := string(runes[1 : len(runes)-1])
	if strings.ContainsRune(inner, runes[0]) || strings.ContainsRune(inner, closing) {
		return text
	}
	return inner
}

func alternatives(items []string, pattern func(string) string) string {
	parts := make([]string, len(items))
	for i, it := range items {
		parts[i] = pattern(it)
	}
	return strings.Join(parts, "|")
}
