package config

import (
	"maps"
	"time"
)

// SiteConfig holds request settings for a single host.
type SiteConfig struct {
	// Cookie is sent as the Cookie header to this host.
	// Format: "name=value" or "name1=value1; name2=value2"
	Cookie string `yaml:"cookie,omitempty"`

	// Headers are custom HTTP headers to include in requests to this host.
	Headers map[string]string `yaml:"headers,omitempty"`
}

// Defaults holds run-wide settings from the configuration file.
// Zero values mean "not set" and leave the built-in default in place.
type Defaults struct {
	// Timeout bounds each request, for example "15s".
	Timeout time.Duration `yaml:"timeout,omitempty"`

	// Throttle is the interval between launches, for example "500ms".
	// Nil means unset; "0s" disables throttling.
	Throttle *time.Duration `yaml:"throttle,omitempty"`

	// Concurrency is the maximum number of requests in flight.
	Concurrency int `yaml:"concurrency,omitempty"`

	// UserAgent replaces the default User-Agent header.
	UserAgent string `yaml:"userAgent,omitempty"`

	// MaxBodySize limits response bodies, in bytes.
	MaxBodySize int64 `yaml:"maxBodySize,omitempty"`

	// Cookie and Headers apply to every host unless a site overrides them.
	SiteConfig `yaml:",inline"`
}

// File represents the structure of the .linkscout configuration file.
type File struct {
	// Sites maps hosts to their request settings.
	// Keys are host names with an optional port (e.g., "example.com:8080").
	Sites map[string]SiteConfig `yaml:"sites,omitempty"`

	// Defaults contains run-wide settings and the request settings applied
	// to every host.
	Defaults Defaults `yaml:"defaults,omitempty"`
}

// GetSiteConfig returns the request settings for host.
// Site values override defaults; headers are merged key by key.
func (cf *File) GetSiteConfig(host string) SiteConfig {
	result := SiteConfig{
		Cookie:  cf.Defaults.Cookie,
		Headers: maps.Clone(cf.Defaults.Headers),
	}

	siteConfig, ok := cf.Sites[host]
	if !ok {
		return result
	}
	if siteConfig.Cookie != "" {
		result.Cookie = siteConfig.Cookie
	}
	if len(siteConfig.Headers) > 0 {
		if result.Headers == nil {
			result.Headers = make(map[string]string, len(siteConfig.Headers))
		}
		maps.Copy(result.Headers, siteConfig.Headers)
	}
	return result
}

// HasRequestSettings reports whether any cookie or header is configured.
func (cf *File) HasRequestSettings() bool {
	if cf.Defaults.Cookie != "" || len(cf.Defaults.Headers) > 0 {
		return true
	}
	for _, s := range cf.Sites {
		if s.Cookie != "" || len(s.Headers) > 0 {
			return true
		}
	}
	return false
}
