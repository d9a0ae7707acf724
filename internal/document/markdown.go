package document

import (
	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

func ToHTML(md []byte) string {
	opts := html.RendererOptions{
		Flags: html.CommonFlags,
	}
	renderer := html.NewRenderer(opts)
	ext := parser.CommonExtensions | parser.Attributes
	p := parser.NewWithExtensions(ext)
	doc := p.Parse(md)
	return string(markdown.Render(doc, renderer))
}

// ToPlainText renders md and returns its text blocks separated by blank
// lines, so every heading, paragraph and list item becomes a paragraph.
func ToPlainText(md []byte) (string, error) {
	_, text, err := blocksFromHTML(ToHTML(md))
	return text, err
}
