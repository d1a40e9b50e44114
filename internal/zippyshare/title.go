package zippyshare

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const titlePrefix = "Zippyshare.com - "

// PageTitle returns the landing page's <title> without the site prefix.
// Pages without a title yield "".
func PageTitle(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}

	title := strings.TrimSpace(doc.Find("title").First().Text())
	title = strings.TrimPrefix(title, titlePrefix)
	return strings.TrimSpace(title)
}
