package config

import "strings"

// SiteConfig holds per-site crawl settings.
type SiteConfig struct {
	// Cookie is sent with every request to the site.
	// Format: "name=value" or "name1=value1; name2=value2"
	Cookie string `yaml:"cookie,omitempty"`

	// Headers are extra request headers.
	Headers map[string]string `yaml:"headers,omitempty"`

	// MaxPages overrides the global page cap when non-zero.
	MaxPages int `yaml:"max_pages,omitempty"`

	// IgnorePatterns are URL path patterns never admitted to the frontier.
	// A trailing "*" matches any suffix.
	IgnorePatterns []string `yaml:"ignore_patterns,omitempty"`
}

// File represents the structure of the a11yscan configuration file.
type File struct {
	// Defaults apply to every site unless overridden in Sites.
	Defaults SiteConfig `yaml:"defaults,omitempty"`

	// Sites maps hostnames (without scheme) to their overrides.
	Sites map[string]SiteConfig `yaml:"sites,omitempty"`

	// Scoring tunes the frontier scorer. Missing fields keep their defaults.
	Scoring *ScoringPolicy `yaml:"scoring,omitempty"`
}

// GetSiteConfig returns the configuration for host merged over Defaults.
// A leading "www." is ignored when looking up the host.
func (cf *File) GetSiteConfig(host string) SiteConfig {
	result := cf.Defaults
	if len(cf.Defaults.Headers) > 0 {
		result.Headers = make(map[string]string, len(cf.Defaults.Headers))
		for k, v := range cf.Defaults.Headers {
			result.Headers[k] = v
		}
	}

	siteConfig, ok := cf.Sites[host]
	if !ok {
		siteConfig, ok = cf.Sites[strings.TrimPrefix(strings.ToLower(host), "www.")]
	}
	if !ok {
		return result
	}

	if siteConfig.Cookie != "" {
		result.Cookie = siteConfig.Cookie
	}
	if siteConfig.MaxPages != 0 {
		result.MaxPages = siteConfig.MaxPages
	}
	if len(siteConfig.Headers) > 0 {
		if result.Headers == nil {
			result.Headers = make(map[string]string)
		}
		for k, v := range siteConfig.Headers {
			result.Headers[k] = v
		}
	}
	if len(siteConfig.IgnorePatterns) > 0 {
		result.IgnorePatterns = siteConfig.IgnorePatterns
	}
	return result
}
