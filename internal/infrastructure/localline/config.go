package localline

import (
	"errors"
	"time"
)

// DefaultBaseURL is the production backoffice API root.
const DefaultBaseURL = "https://localline.ca/api/backoffice/v2"

// Config holds the backoffice API connection settings.
type Config struct {
	BaseURL  string
	Username string
	Password string

	// RequestTimeout bounds each individual HTTP call.
	RequestTimeout time.Duration
	// PollInterval is the delay between export status checks.
	PollInterval time.Duration
	// PollLimit caps how many status checks are made before giving up.
	PollLimit int
	// MaxDownloadSize caps the size of downloaded export bodies.
	MaxDownloadSize int64
}

// Validate checks the configuration for required fields
func (c *Config) Validate() error {
	if c.Username == "" {
		return errors.New("localline: username is required")
	}
	if c.Password == "" {
		return errors.New("localline: password is required")
	}
	return nil
}

// applyDefaults fills in zero-valued tunables.
func (c *Config) applyDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.RequestTimeout == 0 {
		c.RequestTimeout = 30 * time.Second
	}
	if c.PollInterval == 0 {
		c.PollInterval = 5 * time.Second
	}
	if c.PollLimit == 0 {
		c.PollLimit = 18 // 90 seconds at the default interval
	}
	if c.MaxDownloadSize == 0 {
		c.MaxDownloadSize = 10 * 1024 * 1024
	}
}
