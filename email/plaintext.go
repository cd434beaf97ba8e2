package email

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// PlainText derives a text/plain alternative from an HTML body.
// Each heading, paragraph and list item becomes one line.
func PlainText(htmlBody string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlBody))
	if err != nil {
		return ""
	}
	doc.Find("head, style, script").Remove()

	var lines []string
	doc.Find("h1, h2, h3, h4, p, li").Each(func(_ int, sel *goquery.Selection) {
		if line := strings.Join(strings.Fields(sel.Text()), " "); line != "" {
			lines = append(lines, line)
		}
	})
	if len(lines) == 0 {
		return strings.Join(strings.Fields(doc.Text()), " ")
	}
	return strings.Join(lines, "\n\n")
}
