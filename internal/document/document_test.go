package document

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatOf(t *testing.T) {
	assert.Equal(t, Markdown, FormatOf("notes.MD"))
	assert.Equal(t, Markdown, FormatOf("a/b.markdown"))
	assert.Equal(t, HTML, FormatOf("page.htm"))
	assert.Equal(t, HTML, FormatOf("page.html"))
	assert.Equal(t, Plain, FormatOf("plain.txt"))
	assert.Equal(t, Plain, FormatOf("README"))
}

func TestParse_Plain(t *testing.T) {
	doc, err := Parse([]byte("  Hola mundo.\n\nOtro párrafo.\n"), Plain, "")
	require.NoError(t, err)
	assert.Equal(t, "Hola mundo.\n\nOtro párrafo.", doc.Text)
	assert.False(t, doc.Web())
}

func TestParse_Markdown(t *testing.T) {
	md := "# Guía rápida\n\nEl texto tiene **negrita** y un [enlace](http://example.com).\n\n- primero\n- segundo\n"
	doc, err := Parse([]byte(md), Markdown, "guia.md")
	require.NoError(t, err)

	assert.Equal(t, "Guía rápida", doc.Title)
	assert.Equal(t, "Guía rápida\n\nEl texto tiene negrita y un enlace.\n\nprimero\n\nsegundo", doc.Text)
	assert.False(t, doc.Web())
}

func TestToPlainText(t *testing.T) {
	text, err := ToPlainText([]byte("Uno.\n\nDos."))
	require.NoError(t, err)
	assert.Equal(t, "Uno.\n\nDos.", text)
}

func TestParse_HTML(t *testing.T) {
	page := `<html><head><title>Aviso</title></head><body>
<h1>Aviso</h1>
<p>Primer   párrafo
con salto.</p>
<ul><li><p>Elemento anidado</p></li></ul>
</body></html>`

	doc, err := Parse([]byte(page), HTML, "aviso.html")
	require.NoError(t, err)
	assert.Contains(t, doc.Text, "Primer párrafo con salto.")
	assert.NotContains(t, doc.Text, "<p>")
	assert.NotEmpty(t, doc.Title)
	assert.True(t, doc.Web())
}

func TestParse_HTMLArticle(t *testing.T) {
	body := strings.Repeat("El ayuntamiento publicó hoy el calendario de obras para el próximo trimestre, con cortes de tráfico en el centro. ", 8)
	page := `<html><head><title>Obras en el centro</title></head><body>
<nav><a href="/">Inicio</a> <a href="/noticias">Noticias</a></nav>
<article>
<h1>Obras en el centro</h1>
<p>` + body + `</p>
<p>` + body + `</p>
</article>
<footer>Aviso legal</footer>
</body></html>`

	doc, err := Parse([]byte(page), HTML, "/tmp/obras.html")
	require.NoError(t, err)
	assert.Equal(t, "Obras en el centro", doc.Title)
	assert.Contains(t, doc.Text, "calendario de obras")
	assert.NotContains(t, doc.Text, "<p>")
}

func TestBlocksFromHTML_NestedOnce(t *testing.T) {
	_, text, err := blocksFromHTML(`<ul><li><p>uno</p></li><li>dos</li></ul>`)
	require.NoError(t, err)
	assert.Equal(t, "uno\n\ndos", text)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "in.md")
	require.NoError(t, os.WriteFile(path, []byte("## Título\n\nCuerpo."), 0644))

	doc, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Markdown, doc.Format)
	assert.Equal(t, path, doc.Source)
	assert.Equal(t, "Título\n\nCuerpo.", doc.Text)

	_, err = Load(filepath.Join(dir, "missing.txt"))
	assert.Error(t, err)
}
