package pipeline

import (
	"context"
	"fmt"
	"sort"
	"unicode/utf8"
)

// GlossarySource supplies plain-language substitutions for a language,
// keyed by lower-case term. *store.Store implements it.
type GlossarySource interface {
	GetGlossaryTerms(ctx context.Context, lang string) (map[string]string, error)
}

// StaticGlossary is an in-memory GlossarySource keyed by language.
type StaticGlossary map[string]map[string]string

func (g StaticGlossary) GetGlossaryTerms(_ context.Context, lang string) (map[string]string, error) {
	return g[lang], nil
}

type glossaryStage struct {
	source GlossarySource
}

func (*glossaryStage) name() string    { return Glossary }
func (*glossaryStage) protected() bool { return true }

func (g *glossaryStage) apply(ctx context.Context, st *state) error {
	if g.source == nil {
		return nil
	}
	terms, err := g.source.GetGlossaryTerms(ctx, st.lang)
	if err != nil {
		return fmt.Errorf("failed to load glossary: %w", err)
	}

	// Longest terms first so a phrase wins over a word it contains.
	keys := make([]string, 0, len(terms))
	for term := range terms {
		keys = append(keys, term)
	}
	sort.Slice(keys, func(i, j int) bool {
		li, lj := utf8.RuneCountInString(keys[i]), utf8.RuneCountInString(keys[j])
		if li != lj {
			return li > lj
		}
		return keys[i] < keys[j]
	})

	for _, term := range keys {
		repl := terms[term]
		var replaced []string
		st.text, replaced = replaceWords(phrase(term), st.text, repl)
		if len(replaced) == 0 {
			continue
		}
		st.add(Improvement{
			Capability: Glossary,
			Type:       "terminology",
			Change:     replaced[0] + " → " + matchCase(replaced[0], repl),
			Reason:     fmt.Sprintf("glossary prefers %q (%d occurrences)", repl, len(replaced)),
			Reference:  "glossary",
			Applied:    true,
		})
	}
	return nil
}
