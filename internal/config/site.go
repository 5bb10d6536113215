package config

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so YAML values can be written in the
// human-readable form time.ParseDuration accepts ("500ms", "2s").
// yaml.v3 has no native duration support.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// SiteConfig holds per-domain configuration overrides. Any field left at
// its zero value falls back to the defaults section, and from there to the
// global configuration.
type SiteConfig struct {
	// Patterns overrides the product URL rules for this domain.
	// Plain entries match as path substrings; "re:" entries are regular
	// expressions matched against the path.
	Patterns []string `yaml:"patterns,omitempty"`

	// Depth overrides the global crawl depth for this domain.
	Depth int `yaml:"depth,omitempty"`

	// MaxPages overrides the global page budget for this domain.
	MaxPages int `yaml:"maxPages,omitempty"`

	// Concurrency overrides the per-domain fetch concurrency.
	Concurrency int `yaml:"concurrency,omitempty"`

	// Delay overrides the politeness pause between fetches, for domains
	// known to rate-limit.
	Delay Duration `yaml:"delay,omitempty"`

	// UserAgent overrides the User-Agent header for this domain.
	UserAgent string `yaml:"userAgent,omitempty"`

	// Cookie is an HTTP cookie to send when crawling this domain.
	// Format: "name=value" or "name1=value1; name2=value2"
	Cookie string `yaml:"cookie,omitempty"`

	// Headers are custom HTTP headers to include in requests to this domain.
	Headers map[string]string `yaml:"headers,omitempty"`
}

// File represents the structure of the .shopscan configuration file.
type File struct {
	// Sites maps domains to their specific configurations.
	// Keys are bare hostnames (e.g., "books.toscrape.com").
	Sites map[string]SiteConfig `yaml:"sites,omitempty"`

	// Defaults contains default site configuration applied to all domains
	// unless overridden in the site-specific configuration.
	Defaults SiteConfig `yaml:"defaults,omitempty"`
}

// GetSiteConfig returns the configuration for a specific domain.
// It merges the site-specific configuration over the defaults section.
func (cf *File) GetSiteConfig(domain string) SiteConfig {
	// Start with defaults
	result := cf.Defaults

	// Override with site-specific configuration if present
	if siteConfig, ok := cf.Sites[domain]; ok {
		if len(siteConfig.Patterns) > 0 {
			result.Patterns = siteConfig.Patterns
		}
		if siteConfig.Depth != 0 {
			result.Depth = siteConfig.Depth
		}
		if siteConfig.MaxPages != 0 {
			result.MaxPages = siteConfig.MaxPages
		}
		if siteConfig.Concurrency != 0 {
			result.Concurrency = siteConfig.Concurrency
		}
		if siteConfig.Delay != 0 {
			result.Delay = siteConfig.Delay
		}
		if siteConfig.UserAgent != "" {
			result.UserAgent = siteConfig.UserAgent
		}
		if siteConfig.Cookie != "" {
			result.Cookie = siteConfig.Cookie
		}
		if len(siteConfig.Headers) > 0 {
			// Copy instead of writing into the defaults map, which is
			// shared across domains.
			merged := make(map[string]string, len(result.Headers)+len(siteConfig.Headers))
			for k, v := range result.Headers {
				merged[k] = v
			}
			for k, v := range siteConfig.Headers {
				merged[k] = v
			}
			result.Headers = merged
		}
	}

	return result
}
