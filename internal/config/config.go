// Package config provides configuration loading for the NetSuite forms CLI.
package config

import (
	"errors"
	"time"

	configloader "github.com/GabrielNunesIT/go-libs/config-loader"
	"github.com/GabrielNunesIT/netsuite-forms/internal/netsuite"
	"github.com/GabrielNunesIT/netsuite-forms/internal/properties"
	"github.com/GabrielNunesIT/netsuite-forms/internal/schema"
)

// EnvPrefix is the prefix of environment variables read by Load.
const EnvPrefix = "NETSUITE_"

// Config holds the application configuration.
type Config struct {
	SchemaFile string `koanf:"schema_file"`

	RestAPIURL   string `koanf:"rest_api_url"`
	ClientID     string `koanf:"client_id"`
	ClientSecret string `koanf:"client_secret"`
	RefreshToken string `koanf:"refresh_token"`

	SortCollections   bool    `koanf:"sort_collections"`
	RequestsPerSecond float64 `koanf:"requests_per_second"`
	Burst             int     `koanf:"burst"`
	TimeoutSeconds    int     `koanf:"timeout_seconds"`

	// Naming of synthetic keys; empty values keep the defaults.
	ResourcePrefix   string `koanf:"resource_prefix"`
	Separator        string `koanf:"separator"`
	GenericComponent string `koanf:"generic_component"`
}

// Defaults returns the configuration used when nothing else is set.
func Defaults() Config {
	policy := schema.DefaultPolicy()

	return Config{
		SortCollections:   true,
		RequestsPerSecond: 5,
		Burst:             1,
		TimeoutSeconds:    30,
		ResourcePrefix:    policy.ResourcePrefix,
		Separator:         policy.Separator,
		GenericComponent:  policy.GenericComponent,
	}
}

// Load returns the application configuration using go-libs config-loader.
// Values come from the defaults, then the optional file, then the
// environment.
func Load(file string) (*Config, error) {
	var (
		cfg Config
		err error
	)

	if file == "" {
		cfg, err = configloader.NewConfigLoader(
			configloader.WithDefaults(Defaults()),
			configloader.WithEnv[Config](EnvPrefix),
		).Load()
	} else {
		cfg, err = configloader.NewConfigLoader(
			configloader.WithDefaults(Defaults()),
			configloader.WithFile[Config](file),
			configloader.WithEnv[Config](EnvPrefix),
		).Load()
	}
	if err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks the settings every command needs.
func (c *Config) Validate() error {
	if c.SchemaFile == "" {
		return errors.New("schema_file is required")
	}
	if c.RequestsPerSecond <= 0 {
		return errors.New("requests_per_second must be positive")
	}
	if c.Burst < 1 {
		return errors.New("burst must be at least 1")
	}
	if c.TimeoutSeconds < 1 {
		return errors.New("timeout_seconds must be at least 1")
	}
	return nil
}

// Credentials returns the NetSuite credentials.
func (c *Config) Credentials() netsuite.Credentials {
	return netsuite.Credentials{
		RestAPIURL:   c.RestAPIURL,
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
		RefreshToken: c.RefreshToken,
	}
}

// RequireCredentials checks the settings of commands that call NetSuite.
func (c *Config) RequireCredentials() error {
	return c.Credentials().Validate()
}

// Policy returns the naming policy with the configured overrides applied.
func (c *Config) Policy() schema.Policy {
	policy := schema.DefaultPolicy()
	if c.ResourcePrefix != "" {
		policy.ResourcePrefix = c.ResourcePrefix
	}
	if c.Separator != "" {
		policy.Separator = c.Separator
	}
	if c.GenericComponent != "" {
		policy.GenericComponent = c.GenericComponent
	}
	return policy
}

// CompilerConfig returns the property compiler settings.
func (c *Config) CompilerConfig() properties.Config {
	return properties.Config{SortCollections: c.SortCollections}
}

// ClientOptions returns the NetSuite client settings.
func (c *Config) ClientOptions() []netsuite.Option {
	return []netsuite.Option{
		netsuite.WithRateLimit(c.RequestsPerSecond, c.Burst),
		netsuite.WithTimeout(time.Duration(c.TimeoutSeconds) * time.Second),
	}
}
