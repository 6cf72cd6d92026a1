package research

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var (
	htmlTagRegex   = regexp.MustCompile(`(?i)<(p|div|br|li|ul|ol|h[1-6]|span|a|pre|code|table|article|section)\b[^>]*>`)
	blankRunsRegex = regexp.MustCompile(`\n{3,}`)
)

// cleanText reduces HTML snippets to text and collapses runs of blank lines.
// Plain text and Markdown pass through apart from whitespace trimming.
func cleanText(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	if htmlTagRegex.MatchString(s) {
		if doc, err := goquery.NewDocumentFromReader(strings.NewReader(s)); err == nil {
			doc.Find("script, style").Remove()
			doc.Find("br").ReplaceWithHtml("\n")
			doc.Find("p, div, li, h1, h2, h3, h4, h5, h6, pre, tr").Each(func(_ int, sel *goquery.Selection) {
				sel.AppendHtml("\n\n")
			})
			s = doc.Text()
		}
	}
	s = blankRunsRegex.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}

// normalizeText trims a server snippet and collapses runs of blank lines.
// Markup is kept as returned.
func normalizeText(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = blankRunsRegex.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return strings.TrimSpace(string(r[:n])) + "..."
}
