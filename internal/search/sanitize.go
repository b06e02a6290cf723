package search

import (
	"strings"

	"golang.org/x/net/html"
)

// stripTags removes HTML markup from a snippet, keeping only text
// content with entities decoded. Backends highlight matches with
// markup we must not render in the console.
func stripTags(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return strings.TrimSpace(s)
	}
	tok := html.NewTokenizer(strings.NewReader(s))
	var b strings.Builder
	for {
		switch tok.Next() {
		case html.ErrorToken:
			return strings.Join(strings.Fields(b.String()), " ")
		case html.TextToken:
			b.Write(tok.Text())
			b.WriteByte(' ')
		}
	}
}
