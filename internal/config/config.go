// Package config loads the skctl configuration file.
//
// Example configuration:
//
//	url       = "https://demo.salesking.eu"
//	log_level = "info"
//
//	basic_auth {
//	  user     = "me@example.com"
//	  password = "secret"
//	}
//
//	transport {
//	  timeout    = "30s"
//	  tls_verify = true
//	}
//
// SALESKING_URL, SALESKING_USER, SALESKING_PASSWORD and
// SALESKING_ACCESS_TOKEN override the corresponding file settings.
package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/hashicorp/hcl/v2/hclsimple"
	"github.com/spf13/afero"

	"github.com/salesking/salesking-go/pkg/salesking"
	"github.com/salesking/salesking-go/pkg/transport"
)

// Environment variables overriding file settings.
const (
	EnvURL         = "SALESKING_URL"
	EnvUser        = "SALESKING_USER"
	EnvPassword    = "SALESKING_PASSWORD"
	EnvAccessToken = "SALESKING_ACCESS_TOKEN"
)

var urlRe = regexp.MustCompile(`^https?://[^\s/]+`)

// Config is the skctl configuration.
type Config struct {
	// URL is the SalesKing account URL.
	URL string `hcl:"url,optional"`

	// SchemaDir loads schema documents from a local directory instead of the
	// bundled set.
	SchemaDir string `hcl:"schema_dir,optional"`

	// LogLevel is one of trace, debug, info, warn, error or off.
	LogLevel string `hcl:"log_level,optional"`

	BasicAuth *BasicAuth `hcl:"basic_auth,block"`
	OAuth     *OAuth     `hcl:"oauth,block"`
	Transport *Transport `hcl:"transport,block"`
}

// BasicAuth configures HTTP basic authentication.
type BasicAuth struct {
	User     string `hcl:"user,optional"`
	Password string `hcl:"password,optional"`
}

// OAuth configures an OAuth2 application.
type OAuth struct {
	AppID       string `hcl:"app_id,optional"`
	AppSecret   string `hcl:"app_secret,optional"`
	AppScope    string `hcl:"app_scope,optional"`
	RedirectURL string `hcl:"redirect_url,optional"`
	AccessToken string `hcl:"access_token,optional"`
}

// Transport configures the HTTP transport.
type Transport struct {
	// Timeout is a duration string such as "30s".
	Timeout   string `hcl:"timeout,optional"`
	TLSVerify *bool  `hcl:"tls_verify,optional"`
	UserAgent string `hcl:"user_agent,optional"`
	Debug     bool   `hcl:"debug,optional"`
}

// NewConfig loads the configuration file at filename from the local disk.
func NewConfig(filename string) (*Config, error) {
	return Load(afero.NewOsFs(), filename)
}

// Load reads and validates the configuration file at filename from fsys and
// applies environment overrides. An empty filename yields a configuration
// built from the environment alone.
func Load(fsys afero.Fs, filename string) (*Config, error) {
	cfg := &Config{}

	if filename != "" {
		src, err := afero.ReadFile(fsys, filename)
		if err != nil {
			return nil, fmt.Errorf("failed to read configuration file: %w", err)
		}
		if err := hclsimple.Decode(filename, src, nil, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse configuration file: %w", err)
		}
	}

	cfg.applyEnv(os.LookupEnv)

	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup(EnvURL); ok && v != "" {
		c.URL = v
	}

	if v, ok := lookup(EnvUser); ok && v != "" {
		if c.BasicAuth == nil {
			c.BasicAuth = &BasicAuth{}
		}
		c.BasicAuth.User = v
	}
	if v, ok := lookup(EnvPassword); ok && v != "" {
		if c.BasicAuth == nil {
			c.BasicAuth = &BasicAuth{}
		}
		c.BasicAuth.Password = v
	}

	if v, ok := lookup(EnvAccessToken); ok && v != "" {
		if c.OAuth == nil {
			c.OAuth = &OAuth{}
		}
		c.OAuth.AccessToken = v
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.URL, validation.Required, validation.Match(urlRe).Error("must be an http or https URL")),
		validation.Field(&c.LogLevel, validation.In("trace", "debug", "info", "warn", "error", "off")),
		validation.Field(&c.BasicAuth),
		validation.Field(&c.OAuth),
		validation.Field(&c.Transport),
	); err != nil {
		return err
	}

	if c.BasicAuth == nil && c.OAuth == nil {
		return errors.New("either a basic_auth or an oauth block is required")
	}
	return nil
}

// Validate checks if the basic auth settings are complete
func (b BasicAuth) Validate() error {
	return validation.ValidateStruct(&b,
		validation.Field(&b.User, validation.Required),
		validation.Field(&b.Password, validation.Required),
	)
}

// Validate checks if the OAuth2 settings are complete
func (o OAuth) Validate() error {
	return validation.ValidateStruct(&o,
		validation.Field(&o.AppID, validation.Required),
		validation.Field(&o.AppSecret, validation.Required),
		validation.Field(&o.RedirectURL, validation.Required, validation.Match(urlRe).Error("must be an http or https URL")),
	)
}

// Validate checks if the transport settings are usable
func (t Transport) Validate() error {
	return validation.ValidateStruct(&t,
		validation.Field(&t.Timeout, validation.By(func(value any) error {
			s, _ := value.(string)
			if s == "" {
				return nil
			}
			d, err := time.ParseDuration(s)
			if err != nil {
				return errors.New("must be a duration such as 30s")
			}
			if d <= 0 {
				return errors.New("must be positive")
			}
			return nil
		})),
	)
}

// ClientConfig converts the configuration into client settings.
func (c *Config) ClientConfig() salesking.Config {
	cfg := salesking.Config{BaseURL: c.URL}

	if c.BasicAuth != nil {
		cfg.User = c.BasicAuth.User
		cfg.Password = c.BasicAuth.Password
	}

	if c.OAuth != nil {
		cfg.AppID = c.OAuth.AppID
		cfg.AppSecret = c.OAuth.AppSecret
		cfg.AppScope = c.OAuth.AppScope
		cfg.RedirectURL = c.OAuth.RedirectURL
		cfg.AccessToken = c.OAuth.AccessToken
	}

	if c.Transport != nil {
		tcfg := transport.DefaultConfig()
		if d, err := time.ParseDuration(c.Transport.Timeout); err == nil {
			tcfg.Timeout = d
		}
		if c.Transport.TLSVerify != nil {
			tcfg.TLSVerify = c.Transport.TLSVerify
		}
		if c.Transport.UserAgent != "" {
			tcfg.UserAgent = c.Transport.UserAgent
		}
		tcfg.Debug = c.Transport.Debug
		cfg.Transport = tcfg
		cfg.Debug = c.Transport.Debug
	}

	return cfg
}
