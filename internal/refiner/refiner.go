// Package refiner rewrites text for clarity with a language model. It backs
// the llm capability of the improvement pipeline.
package refiner

import (
	"context"
	"fmt"
	"strings"

	"github.com/valpere/aclarador/internal/placeholder"
	"github.com/valpere/aclarador/internal/postprocess"
)

// Request is one piece of text to edit.
type Request struct {
	// Lang is the ISO 639-1 code of Text. Empty means unknown.
	Lang string
	Text string
	// Context is the tail of the preceding text, for continuity. Not edited.
	Context string
}

// Refiner rewrites text in plain, clear language without changing its meaning.
type Refiner interface {
	Refine(ctx context.Context, req Request) (string, error)
}

var languageNames = map[string]string{
	"es": "Spanish",
	"en": "English",
	"pt": "Portuguese",
	"fr": "French",
	"it": "Italian",
	"de": "German",
	"ca": "Catalan",
}

func languageName(code string) string {
	if name, ok := languageNames[strings.ToLower(code)]; ok {
		return name
	}
	if code == "" {
		return "the same language as the input"
	}
	return code
}

// Temperature keeps edits conservative on every backend.
const Temperature = 0.2

// instructions is the system prompt of the plain-language editor.
func instructions(lang string) string {
	name := languageName(lang)
	return fmt.Sprintf(`You are an expert %s plain-language editor.

# YOUR TASK: MAKE THE TEXT CLEAR

Rewrite the TEXT you receive so that any reader understands it on the first read.
Write in %s.

# EDITING PRINCIPLES

**Priority:**
1. Preserve meaning - Keep every fact, figure and name intact
2. Short sentences - Split sentences longer than 25 words
3. Active voice - Prefer active over passive constructions
4. Common words - Replace jargon and long words with everyday ones
5. Concision - Remove filler words and redundant phrases

**What to Preserve:**
- Proper nouns, numbers, dates and quotations
- Paragraph breaks
- %s

CRITICAL: If the text is already clear, return it unchanged.
Output ONLY the edited text. Do not include any explanation.`, name, name, placeholder.InstructionHint())
}

// message is the user turn: optional preceding context, then the text.
func message(req Request) string {
	var b strings.Builder
	if ctx := strings.TrimSpace(req.Context); ctx != "" {
		fmt.Fprintf(&b, "PRECEDING TEXT (for context only, do not output it):\n%s\n\n", ctx)
	}
	fmt.Fprintf(&b, "TEXT:\n%s", req.Text)
	return b.String()
}

// finish cleans a raw model answer. An answer with nothing left after
// cleaning keeps the original text.
func finish(raw string, req Request) string {
	if edited := postprocess.Clean(raw); edited != "" {
		return edited
	}
	return req.Text
}
