package extract

import (
	"regexp"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/microcosm-cc/bluemonday"
)

// Extractor turns an uploaded attachment into evaluable plain text. It never
// fails: formats we cannot read yield empty text plus a warning so the upload
// still succeeds and the evaluation degrades gracefully.
type Extractor interface {
	Extract(data []byte, filename string) (text string, mime string, warning string)
}

// NewTextExtractor builds the default extractor.
func NewTextExtractor() Extractor {
	return &textExtractor{
		sanitizer:  bluemonday.StrictPolicy(),
		whitespace: regexp.MustCompile(`\s+`),
	}
}

type textExtractor struct {
	sanitizer  *bluemonday.Policy
	whitespace *regexp.Regexp
}

func (e *textExtractor) Extract(data []byte, filename string) (string, string, string) {
	detected := mimetype.Detect(data)

	switch {
	case detected.Is("text/html"):
		stripped := e.sanitizer.Sanitize(string(data))
		return e.normalize(stripped), detected.String(), ""
	case strings.HasPrefix(detected.String(), "text/"):
		return e.normalize(string(data)), detected.String(), ""
	case detected.Is("application/pdf"):
		return "", detected.String(), "PDF text extraction is not supported; upload a plain text export"
	case detected.Is("application/vnd.openxmlformats-officedocument.wordprocessingml.document"),
		detected.Is("application/vnd.openxmlformats-officedocument.presentationml.presentation"),
		detected.Is("application/msword"):
		return "", detected.String(), "binary document formats are stored but not read; upload a plain text export"
	default:
		return "", detected.String(), "unsupported file type " + detected.String()
	}
}

func (e *textExtractor) normalize(text string) string {
	return strings.TrimSpace(e.whitespace.ReplaceAllString(text, " "))
}
