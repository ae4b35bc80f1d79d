package sites

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"tender-watch/pkg/domain"
)

// gizHeading is the exact heading text that precedes the live tender list
const gizHeading = "Live Tenders"

// ExtractGIZTenders extracts tenders from the GIZ India live tenders page.
// It looks for the <h2> reading "Live Tenders", takes the first <ul> that
// follows it as a sibling and reads the first link of every <li>.
func ExtractGIZTenders(pageURL, html string) ([]domain.Tender, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	heading := doc.Find("h2").FilterFunction(func(i int, s *goquery.Selection) bool {
		return strings.TrimSpace(s.Text()) == gizHeading
	}).First()
	if heading.Length() == 0 {
		return nil, nil
	}

	list := heading.NextAllFiltered("ul").First()
	if list.Length() == 0 {
		return nil, nil
	}

	var result []domain.Tender
	list.Find("li").Each(func(i int, item *goquery.Selection) {
		link := item.Find("a").First()
		if link.Length() == 0 {
			return
		}
		if tender, ok := linkTender(link); ok {
			result = append(result, tender)
		}
	})

	return result, nil
}
