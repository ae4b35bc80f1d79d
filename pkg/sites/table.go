package sites

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"tender-watch/pkg/domain"
)

// ExtractFirstTableTenders treats every link inside the first <table> of the
// page as a tender. GEDA, MAHAURJA and HPPCL publish their lists this way.
func ExtractFirstTableTenders(pageURL, html string) ([]domain.Tender, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	table := doc.Find("table").First()
	if table.Length() == 0 {
		return nil, nil
	}

	var result []domain.Tender
	table.Find("a").Each(func(i int, link *goquery.Selection) {
		if tender, ok := linkTender(link); ok {
			result = append(result, tender)
		}
	})

	return result, nil
}
