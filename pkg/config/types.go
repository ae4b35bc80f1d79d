package config

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"tender-watch/pkg/db"
	"tender-watch/pkg/domain"
	"tender-watch/pkg/httpclient"
	"tender-watch/pkg/logger"
	"tender-watch/pkg/notify"
	"tender-watch/pkg/sites"
)

// Config is everything a run needs, threaded explicitly into the pipeline
type Config struct {
	FetchTimeout time.Duration     `env:"FETCH_TIMEOUT" yaml:"fetch_timeout"`
	Logging      logger.Config     `yaml:"logging"`
	Mail         notify.MailConfig `yaml:"mail"`
	Storage      db.Config         `yaml:"storage"`
	Sites        []SiteConfig      `yaml:"sites"`
}

// SiteConfig is one entry of the site registry as written in YAML
type SiteConfig struct {
	Name      string `yaml:"name"`
	URL       string `yaml:"url"`
	Extractor string `yaml:"extractor"`
	// State is the state file (file backend) or key (other backends)
	State   string `yaml:"state"`
	Variant string `yaml:"variant"`
	Client  string `yaml:"client"`
}

// DefaultSites is the built-in registry used when no sites are configured
func DefaultSites() []SiteConfig {
	return []SiteConfig{
		{Name: "GIZ", URL: "https://www.giz.de/en/live-tenders-giz-india#live-tenders", Extractor: "giz", State: "giz_tenders.json"},
		{Name: "GEDA", URL: "https://geda.gujarat.gov.in/tenders.html", Extractor: "geda", State: "geda_tenders.json"},
		{Name: "MAHAURJA", URL: "https://www.mahaurja.com/tenders", Extractor: "mahaurja", State: "mahaurja_tenders.json"},
		{Name: "HPPCL", URL: "https://www.hppcl.in/page/tenders.aspx", Extractor: "hppcl", State: "hppcl_tenders.json"},
	}
}

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// SetDefaults fills the registry and every section's defaults
func (c *Config) SetDefaults() {
	if c.FetchTimeout == 0 {
		c.FetchTimeout = httpclient.DefaultTimeout
	}
	c.Logging.SetDefaults()
	c.Mail.SetDefaults()
	c.Storage.SetDefaults()

	if len(c.Sites) == 0 {
		c.Sites = DefaultSites()
	}
	for i := range c.Sites {
		c.Sites[i].SetDefaults()
	}
}

// SetDefaults normalizes the variant and derives the state location from the name
func (s *SiteConfig) SetDefaults() {
	s.Variant = strings.ToLower(strings.TrimSpace(s.Variant))
	if s.Variant == "" {
		s.Variant = string(domain.MultiVariant)
	}
	if s.State == "" {
		slug := strings.Trim(nonSlug.ReplaceAllString(strings.ToLower(s.Name), "_"), "_")
		if domain.Variant(s.Variant) == domain.LatestVariant {
			s.State = slug + "_last_tender.txt"
		} else {
			s.State = slug + "_tenders.json"
		}
	}
}

// ResolveSites turns the registry into immutable site descriptors, resolving
// each extractor by name. Unknown names are an error.
func (c *Config) ResolveSites() ([]domain.Site, error) {
	resolved := make([]domain.Site, 0, len(c.Sites))
	for _, sc := range c.Sites {
		extractor, err := sites.Lookup(sc.Extractor)
		if err != nil {
			return nil, fmt.Errorf("site %q: %w", sc.Name, err)
		}

		resolved = append(resolved, domain.Site{
			Name:          sc.Name,
			URL:           sc.URL,
			ExtractorID:   sc.Extractor,
			Extractor:     extractor,
			State:         sc.State,
			Variant:       domain.Variant(sc.Variant),
			ClientProfile: sc.Client,
		})
	}
	return resolved, nil
}
