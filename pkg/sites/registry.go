// Package sites holds the per-portal extractors that turn listing pages into
// tenders, and the registry they are resolved from.
package sites

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"tender-watch/pkg/domain"
)

// ErrUnknownExtractor is returned by Lookup for names not in the registry
var ErrUnknownExtractor = errors.New("unknown extractor")

var registry = map[string]domain.Extractor{
	"giz":         ExtractGIZTenders,
	"first-table": ExtractFirstTableTenders,
	"geda":        ExtractFirstTableTenders,
	"mahaurja":    ExtractFirstTableTenders,
	"hppcl":       ExtractFirstTableTenders,
	"feed":        ExtractFeedTenders,
	"headline":    ExtractHeadlineTender,
}

// Lookup resolves an extractor by its registry name
func Lookup(name string) (domain.Extractor, error) {
	extractor, ok := registry[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("%w %q (known: %s)", ErrUnknownExtractor, name, strings.Join(Names(), ", "))
	}
	return extractor, nil
}

// Names returns the registered extractor names in sorted order
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// linkTender builds a tender from an <a> element.
// It reports false when the link has no target.
func linkTender(link *goquery.Selection) (domain.Tender, bool) {
	href, exists := link.Attr("href")
	if !exists || href == "" {
		return domain.Tender{}, false
	}

	return domain.Tender{
		Title: strippedText(link),
		URL:   href,
	}, true
}

// strippedText trims every text node under sel and concatenates them with no
// separator, so "<b>GEDA</b> <i>RFP 12</i>" reads "GEDARFP 12". Titles in
// existing state files were produced this way.
func strippedText(sel *goquery.Selection) string {
	var b strings.Builder
	var walk func(*goquery.Selection)
	walk = func(s *goquery.Selection) {
		s.Contents().Each(func(_ int, child *goquery.Selection) {
			switch goquery.NodeName(child) {
			case "#text":
				b.WriteString(strings.TrimSpace(child.Text()))
			case "#comment":
			default:
				walk(child)
			}
		})
	}
	walk(sel)
	return b.String()
}

// cleanText trims the text and collapses inner runs of whitespace
func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
