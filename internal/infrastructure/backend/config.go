package backend

import (
	"errors"
	"net/url"
	"time"
)

// Config holds the settings for talking to the ERP backend
type Config struct {
	BaseURL string
	Timeout time.Duration
	// SkipBrowserWarning adds the header that suppresses the ngrok
	// interstitial page on tunnelled development backends.
	SkipBrowserWarning bool
	UserAgent          string
	MaxResponseBytes   int64
}

var (
	ErrConfigMissingBaseURL = errors.New("backend: base URL is required")
	ErrConfigInvalidBaseURL = errors.New("backend: base URL must be an absolute http(s) URL")
)

// Validate checks the configuration
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return ErrConfigMissingBaseURL
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return ErrConfigInvalidBaseURL
	}
	return nil
}

func (c *Config) withDefaults() Config {
	out := *c
	if out.Timeout <= 0 {
		out.Timeout = 30 * time.Second
	}
	if out.MaxResponseBytes <= 0 {
		out.MaxResponseBytes = 32 << 20
	}
	if out.UserAgent == "" {
		out.UserAgent = "paper-portal"
	}
	return out
}
