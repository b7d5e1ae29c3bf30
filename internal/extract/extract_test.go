package extract

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExtractPlainText(t *testing.T) {
	extractor := NewTextExtractor()

	text, mime, warning := extractor.Extract([]byte("Recursion is a technique\nwhere a function calls itself."), "notes.txt")
	require.Empty(t, warning)
	require.Contains(t, mime, "text/plain")
	require.Equal(t, "Recursion is a technique where a function calls itself.", text)
}

func TestExtractHTMLStripsMarkup(t *testing.T) {
	extractor := NewTextExtractor()

	html := `<html><body><h1>Week 3</h1><p>Recursion <b>basics</b></p><script>alert(1)</script></body></html>`
	text, mime, warning := extractor.Extract([]byte(html), "slides.html")
	require.Empty(t, warning)
	require.Contains(t, mime, "text/html")
	require.Contains(t, text, "Week 3")
	require.Contains(t, text, "Recursion basics")
	require.NotContains(t, text, "<b>")
	require.NotContains(t, text, "alert")
}

func TestExtractPDFWarnsWithoutText(t *testing.T) {
	extractor := NewTextExtractor()

	pdf := append([]byte("%PDF-1.4\n"), make([]byte, 64)...)
	text, mime, warning := extractor.Extract(pdf, "handout.pdf")
	require.Empty(t, text)
	require.Contains(t, mime, "application/pdf")
	require.NotEmpty(t, warning)
}

func TestExtractUnknownBinaryWarns(t *testing.T) {
	extractor := NewTextExtractor()

	text, _, warning := extractor.Extract([]byte{0x00, 0x01, 0x02, 0xFF, 0xFE}, "blob.bin")
	require.Empty(t, text)
	require.NotEmpty(t, warning)
}
