package domain

// Tender represents a single tender listed on a procurement page.
// Two tenders are the same tender when both fields match.
type Tender struct {
	Title string `json:"title" bson:"title"`
	URL   string `json:"url" bson:"url"`
}

// Variant selects how change detection works for a site
type Variant string

const (
	// MultiVariant keeps every tender ever alerted and reports all unseen ones
	MultiVariant Variant = "multi"

	// LatestVariant only tracks the URL of the newest (first listed) tender
	LatestVariant Variant = "latest"
)

// Extractor turns the raw content of a listing page into tenders.
// A page that lacks the expected structure yields no tenders and no error.
type Extractor func(pageURL, content string) ([]Tender, error)
