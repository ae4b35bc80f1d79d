package filter

import (
	"context"
	"fmt"

	"tender-watch/pkg/domain"
)

// Filter defines the interface for tender filtering
type Filter interface {
	ShouldKeep(ctx context.Context, tender domain.Tender) (bool, error)
}

// FilterTenders applies all filters to a list of tenders, keeping input order
func FilterTenders(ctx context.Context, tenders []domain.Tender, filters ...Filter) ([]domain.Tender, error) {
	filtered := make([]domain.Tender, 0, len(tenders))

	for _, tender := range tenders {
		keep := true
		for _, f := range filters {
			shouldKeep, err := f.ShouldKeep(ctx, tender)
			if err != nil {
				return nil, fmt.Errorf("filter error for tender %s: %w", tender.URL, err)
			}
			if !shouldKeep {
				keep = false
				break
			}
		}
		if keep {
			filtered = append(filtered, tender)
		}
	}

	return filtered, nil
}

// AlreadySeenFilter filters out tenders that are already in the seen set
type AlreadySeenFilter struct {
	seen map[domain.Tender]struct{}
}

// NewAlreadySeenFilter creates a filter over the given seen tenders
func NewAlreadySeenFilter(seen []domain.Tender) *AlreadySeenFilter {
	set := make(map[domain.Tender]struct{}, len(seen))
	for _, tender := range seen {
		set[tender] = struct{}{}
	}
	return &AlreadySeenFilter{seen: set}
}

// ShouldKeep returns false if an identical tender (same title and URL) was seen
func (f *AlreadySeenFilter) ShouldKeep(ctx context.Context, tender domain.Tender) (bool, error) {
	_, exists := f.seen[tender]
	return !exists, nil
}

// NewTenders returns the tenders of current that are not in seen, in the
// order they appear in current. Neither input is modified.
func NewTenders(current, seen []domain.Tender) []domain.Tender {
	// AlreadySeenFilter never fails
	result, _ := FilterTenders(context.Background(), current, NewAlreadySeenFilter(seen))
	return result
}

// NewLatest reports whether the first (newest) tender of current differs by
// URL from lastURL. A title change at the same URL is not a new tender.
func NewLatest(current []domain.Tender, lastURL string) (domain.Tender, bool) {
	if len(current) == 0 {
		return domain.Tender{}, false
	}

	latest := current[0]
	return latest, latest.URL != lastURL
}
