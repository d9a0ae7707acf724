// Package document turns input files into the plain text the refinement
// loop works on. Markdown is rendered with gomarkdown, HTML is reduced to
// its main content with go-readability, and both are flattened to
// paragraphs with goquery.
package document

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"
)

type Format string

const (
	Plain    Format = "text"
	Markdown Format = "markdown"
	HTML     Format = "html"
)

// Document is a loaded input.
type Document struct {
	Source string
	Format Format
	Title  string
	Text   string
}

// Web reports whether the document is a web page. The seo capability only
// applies to HTML; Markdown is treated as prose.
func (d *Document) Web() bool {
	return d.Format == HTML
}

// FormatOf picks the format from the file extension.
func FormatOf(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown":
		return Markdown
	case ".html", ".htm":
		return HTML
	default:
		return Plain
	}
}

// Load reads path and converts it according to its extension.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read input file: %w", err)
	}
	return Parse(data, FormatOf(path), path)
}

// Parse converts data in the given format. source is only used to resolve
// relative links in HTML and may be empty.
func Parse(data []byte, format Format, source string) (*Document, error) {
	doc := &Document{Source: source, Format: format}

	switch format {
	case Markdown:
		title, text, err := blocksFromHTML(ToHTML(data))
		if err != nil {
			return nil, fmt.Errorf("failed to parse markdown: %w", err)
		}
		doc.Title, doc.Text = title, text
	case HTML:
		title, text, err := fromHTML(string(data), source)
		if err != nil {
			return nil, fmt.Errorf("failed to parse html: %w", err)
		}
		doc.Title, doc.Text = title, text
	default:
		doc.Text = strings.TrimSpace(string(data))
	}

	return doc, nil
}

// fromHTML extracts the main article with readability and falls back to the
// whole page when readability finds nothing.
func fromHTML(page, source string) (string, string, error) {
	base, err := url.Parse("file://" + filepath.ToSlash(source))
	if err != nil {
		base = &url.URL{Scheme: "file"}
	}

	parser := readability.NewParser()
	article, err := parser.Parse(strings.NewReader(page), base)
	if err == nil && strings.TrimSpace(article.Content) != "" {
		title, text, err := blocksFromHTML(article.Content)
		if err != nil {
			return "", "", err
		}
		if t := normalizeText(article.Title); t != "" {
			title = t
		}
		if text != "" {
			return title, text, nil
		}
	}

	return blocksFromHTML(page)
}

const blockSelector = "h1,h2,h3,h4,h5,h6,p,li,blockquote,pre"

// blocksFromHTML returns the first heading and the text of every block
// element, one per paragraph. Nested blocks (a p inside an li) are emitted
// once, by the outermost element.
func blocksFromHTML(content string) (string, string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return "", "", err
	}

	var title string
	var blocks []string
	doc.Find(blockSelector).Each(func(i int, s *goquery.Selection) {
		if s.ParentsFiltered(blockSelector).Length() > 0 {
			return
		}
		text := normalizeText(s.Text())
		if text == "" {
			return
		}
		if title == "" && goquery.NodeName(s) == "h1" {
			title = text
		}
		blocks = append(blocks, text)
	})

	if len(blocks) == 0 {
		return title, normalizeText(doc.Text()), nil
	}
	return title, strings.Join(blocks, "\n\n"), nil
}

// normalizeText collapses every whitespace run, line breaks included, into
// a single space.
func normalizeText(input string) string {
	return strings.Join(strings.Fields(input), " ")
}
