package normalize

import (
	"html"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const companyLabel = "Company:"

// Annotate prefixes the description with a machine-readable company line.
// The read API recovers the display name from it (see CompanyFromDescription).
func Annotate(companyName, body string) string {
	if strings.TrimSpace(body) == "" {
		body = NotProvided
	}
	return "<p><strong>" + companyLabel + "</strong> " + html.EscapeString(companyName) + "</p>" + body
}

// CompanyFromDescription extracts the name written by Annotate.
func CompanyFromDescription(desc string) (string, bool) {
	if !strings.Contains(desc, companyLabel) {
		return "", false
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(desc))
	if err != nil {
		return "", false
	}

	var name string
	doc.Find("p").EachWithBreak(func(_ int, p *goquery.Selection) bool {
		label := p.Find("strong").First()
		if strings.TrimSpace(label.Text()) != companyLabel {
			return true
		}
		name = strings.TrimSpace(strings.TrimPrefix(p.Text(), label.Text()))
		return false
	})
	return name, name != ""
}
