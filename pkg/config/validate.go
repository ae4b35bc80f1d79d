package config

import (
	"errors"
	"fmt"

	"tender-watch/pkg/domain"
	"tender-watch/pkg/httpclient"
	"tender-watch/pkg/sites"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks everything except mail credentials, which only matter
// when alerts are actually sent (see ValidateMail).
func (c *Config) Validate() error {
	var errs []error

	if c.FetchTimeout < 0 {
		errs = append(errs, &ValidationError{Field: "fetch_timeout", Message: "must not be negative"})
	}
	if err := c.Logging.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := c.Storage.Validate(); err != nil {
		errs = append(errs, err)
	}
	errs = append(errs, c.validateSites()...)

	return errors.Join(errs...)
}

// ValidateMail fails fast when the credentials needed to send are missing
func (c *Config) ValidateMail() error {
	return c.Mail.Validate()
}

func (c *Config) validateSites() []error {
	if len(c.Sites) == 0 {
		return []error{&ValidationError{Field: "sites", Message: "at least one site is required"}}
	}

	var errs []error
	names := make(map[string]bool, len(c.Sites))
	states := make(map[string]bool, len(c.Sites))

	for i, s := range c.Sites {
		field := fmt.Sprintf("sites[%d]", i)

		if s.Name == "" {
			errs = append(errs, &ValidationError{Field: field + ".name", Message: "is required"})
		} else if names[s.Name] {
			errs = append(errs, &ValidationError{Field: field + ".name", Message: fmt.Sprintf("duplicate site %q", s.Name)})
		}
		names[s.Name] = true

		if s.URL == "" {
			errs = append(errs, &ValidationError{Field: field + ".url", Message: "is required"})
		}

		if _, err := sites.Lookup(s.Extractor); err != nil {
			errs = append(errs, &ValidationError{Field: field + ".extractor", Message: err.Error()})
		}

		switch domain.Variant(s.Variant) {
		case domain.MultiVariant, domain.LatestVariant:
		default:
			errs = append(errs, &ValidationError{Field: field + ".variant", Message: "must be multi or latest"})
		}

		if _, err := httpclient.ParseClientType(s.Client); err != nil {
			errs = append(errs, &ValidationError{Field: field + ".client", Message: err.Error()})
		}

		if states[s.State] {
			errs = append(errs, &ValidationError{Field: field + ".state", Message: fmt.Sprintf("state %q is shared with another site", s.State)})
		}
		states[s.State] = true
	}

	return errs
}
