package services

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Excerpt strips markup from a description and truncates the plain text to at
// most max runes, cutting on a word boundary. Used to fill meta descriptions
// when the admin form leaves them empty.
func Excerpt(html string, max int) string {
	text := html
	if strings.Contains(html, "<") {
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
		if err == nil {
			text = doc.Text()
		}
	}
	text = strings.Join(strings.Fields(text), " ")

	runes := []rune(text)
	if len(runes) <= max {
		return text
	}

	cut := string(runes[:max])
	if idx := strings.LastIndex(cut, " "); idx > 0 {
		cut = cut[:idx]
	}
	return strings.TrimRight(cut, " ,;:.") + "…"
}
