package sites

import (
	"errors"
	"fmt"

	"github.com/mmcdole/gofeed"

	"tender-watch/pkg/domain"
)

// ExtractFeedTenders reads tenders from an RSS or Atom feed.
// Items without a link are skipped; content that is not a feed yields nothing.
func ExtractFeedTenders(pageURL, content string) ([]domain.Tender, error) {
	feed, err := gofeed.NewParser().ParseString(content)
	if err != nil {
		if errors.Is(err, gofeed.ErrFeedTypeNotDetected) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	result := make([]domain.Tender, 0, len(feed.Items))
	for _, item := range feed.Items {
		if item == nil || item.Link == "" {
			continue
		}
		result = append(result, domain.Tender{
			Title: cleanText(item.Title),
			URL:   item.Link,
		})
	}

	return result, nil
}
