// Package htmltext extracts human-readable text from HTML, dropping markup
// and non-content elements.
package htmltext

import (
	"io"
	"strings"

	"golang.org/x/net/html"
)

// skipTags are elements whose entire subtree is navigation or chrome, not
// content worth indexing.
var skipTags = map[string]bool{
	"script":   true,
	"style":    true,
	"nav":      true,
	"footer":   true,
	"header":   true,
	"form":     true,
	"aside":    true,
	"noscript": true,
}

// Extract tokenizes the HTML and returns the visible text, one line per text
// node, with whitespace trimmed.
func Extract(body io.Reader) (string, error) {
	z := html.NewTokenizer(body)
	var sb strings.Builder
	depth := 0 // nesting depth inside skipped elements

	for {
		switch z.Next() {
		case html.ErrorToken:
			if z.Err() == io.EOF {
				return strings.TrimSpace(sb.String()), nil
			}
			return "", z.Err()
		case html.StartTagToken:
			tn, _ := z.TagName()
			if skipTags[string(tn)] {
				depth++
			}
		case html.EndTagToken:
			tn, _ := z.TagName()
			if skipTags[string(tn)] && depth > 0 {
				depth--
			}
		case html.TextToken:
			if depth == 0 {
				text := strings.TrimSpace(string(z.Text()))
				if text != "" {
					sb.WriteString(text)
					sb.WriteString("\n")
				}
			}
		}
	}
}
