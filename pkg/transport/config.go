package transport

import (
	"crypto/tls"
	"fmt"
	"net/http"
	"time"
)

// DefaultUserAgent is sent when Config.UserAgent is empty.
const DefaultUserAgent = "salesking-go"

// Config contains configuration for the HTTP transport.
type Config struct {
	// Timeout for a single request/response exchange.
	// Default: 30 seconds
	Timeout time.Duration `json:"timeout,omitempty"`

	// TLSVerify controls TLS certificate verification
	// Set to false only for development/testing with self-signed certs
	TLSVerify *bool `json:"tlsVerify,omitempty"`

	// UserAgent is sent with every request.
	UserAgent string `json:"userAgent,omitempty"`

	// Debug logs every exchange, including bodies, at debug level.
	Debug bool `json:"debug,omitempty"`
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	tlsVerify := true
	return &Config{
		Timeout:   30 * time.Second,
		TLSVerify: &tlsVerify,
		UserAgent: DefaultUserAgent,
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got: %v", c.Timeout)
	}
	return nil
}

// applyDefaults fills unset fields from DefaultConfig.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()
	if c.Timeout == 0 {
		c.Timeout = defaults.Timeout
	}
	if c.TLSVerify == nil {
		c.TLSVerify = defaults.TLSVerify
	}
	if c.UserAgent == "" {
		c.UserAgent = defaults.UserAgent
	}
}

// NewHTTPClient creates a configured HTTP client
func (c *Config) NewHTTPClient() *http.Client {
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
	}

	if c.TLSVerify != nil && !*c.TLSVerify {
		transport.TLSClientConfig = &tls.Config{
			InsecureSkipVerify: true,
		}
	}

	return &http.Client{
		Timeout:   c.Timeout,
		Transport: transport,
	}
}
