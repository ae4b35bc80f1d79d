package domain

// Site describes one tender-listing page that is polled on every run.
// Sites are built once from configuration and never change afterwards.
type Site struct {
	Name string
	URL  string

	// ExtractorID is the registry name Extractor was resolved from
	ExtractorID string
	Extractor   Extractor

	// State is where the site's seen tenders (or last-seen URL) live.
	// For the file backend it is a path; other backends use it as a key.
	State string

	Variant Variant

	// ClientProfile selects the request headers used to fetch URL
	ClientProfile string
}

// IsLatest reports whether the site only tracks its newest tender
func (s Site) IsLatest() bool {
	return s.Variant == LatestVariant
}
