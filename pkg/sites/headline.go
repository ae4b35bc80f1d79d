package sites

import (
	"net/url"
	"strings"

	"github.com/go-shiori/go-readability"

	"tender-watch/pkg/domain"
)

// ExtractHeadlineTender is for portals that publish a single notice page
// instead of a list. The page's main headline becomes one tender pointing at
// the page itself, so a new headline shows up as a new tender.
func ExtractHeadlineTender(pageURL, html string) ([]domain.Tender, error) {
	parsedURL, err := url.Parse(pageURL)
	if err != nil {
		parsedURL = nil
	}

	article, err := readability.FromReader(strings.NewReader(html), parsedURL)
	if err != nil {
		// readability fails on pages without readable content
		return nil, nil
	}

	title := cleanText(article.Title)
	if title == "" {
		return nil, nil
	}

	return []domain.Tender{{Title: title, URL: pageURL}}, nil
}
