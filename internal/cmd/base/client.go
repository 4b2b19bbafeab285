package base

import (
	"fmt"
	"os"

	"github.com/hashicorp/go-hclog"

	"github.com/salesking/salesking-go/internal/config"
	"github.com/salesking/salesking-go/pkg/salesking"
	"github.com/salesking/salesking-go/pkg/schema"
)

// EnvConfig names the configuration file when -config is not given.
const EnvConfig = "SKCTL_CONFIG"

// Logger returns the command logger, or a null logger when none is set.
func (c *Command) Logger() hclog.Logger {
	if c.Log == nil {
		return hclog.NewNullLogger()
	}
	return c.Log
}

// ConfigPath resolves the configuration file from the -config flag value and
// the environment.
func ConfigPath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if v, ok := os.LookupEnv(EnvConfig); ok {
		return v
	}
	return ""
}

// LoadConfig loads the configuration at path and applies its log level.
func (c *Command) LoadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(c.Filesystem(), ConfigPath(path))
	if err != nil {
		return nil, err
	}

	if lvl := hclog.LevelFromString(cfg.LogLevel); lvl != hclog.NoLevel {
		c.Logger().SetLevel(lvl)
	}

	return cfg, nil
}

// NewClient loads the configuration at path and creates a client from it.
func (c *Command) NewClient(path string) (*salesking.Client, error) {
	cfg, err := c.LoadConfig(path)
	if err != nil {
		return nil, err
	}

	logger := c.Logger()
	opts := []salesking.Option{salesking.WithLogger(logger)}
	if cfg.SchemaDir != "" {
		store := schema.NewFileStore(c.Filesystem(), cfg.SchemaDir, schema.WithLogger(logger))
		opts = append(opts, salesking.WithSchemaStore(store))
	}
	opts = append(opts, c.ClientOptions...)

	client, err := salesking.NewClient(cfg.ClientConfig(), opts...)
	if err != nil {
		return nil, fmt.Errorf("error creating client: %w", err)
	}

	logger.Debug("created client",
		"url", client.BaseURL(),
		"auth", client.AuthMode(),
	)
	return client, nil
}
