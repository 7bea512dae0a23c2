// Package config provides Viper-based hierarchical configuration management
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"financemonkey/fm-cli/internal/logging"
)

// AppName names the config directories and the default session location.
const AppName = "fm-cli"

// Config represents the complete application configuration
type Config struct {
	Log struct {
		Level  string `mapstructure:"level" yaml:"level"`
		Format string `mapstructure:"format" yaml:"format"`
	} `mapstructure:"log" yaml:"log"`

	API struct {
		BaseURL string `mapstructure:"base_url" yaml:"base_url"`
	} `mapstructure:"api" yaml:"api"`

	HTTP struct {
		// Timeout of zero leaves the transport's own behaviour in place.
		Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`
	} `mapstructure:"http" yaml:"http"`

	Session struct {
		File string `mapstructure:"file" yaml:"file"`
	} `mapstructure:"session" yaml:"session"`

	Snapshot struct {
		Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
		File    string `mapstructure:"file" yaml:"file"`
	} `mapstructure:"snapshot" yaml:"snapshot"`

	Output struct {
		Format  string `mapstructure:"format" yaml:"format"`
		PerPage int    `mapstructure:"per_page" yaml:"per_page"`
	} `mapstructure:"output" yaml:"output"`

	CSV struct {
		Delimiter string `mapstructure:"delimiter" yaml:"delimiter"`
	} `mapstructure:"csv" yaml:"csv"`

	Google struct {
		ClientID     string `mapstructure:"client_id" yaml:"client_id"`
		ClientSecret string `mapstructure:"client_secret" yaml:"-"` // Never serialize the secret
		RedirectPort int    `mapstructure:"redirect_port" yaml:"redirect_port"`
	} `mapstructure:"google" yaml:"google"`
}

// InitializeConfig loads configuration with hierarchical precedence:
// defaults, then the config file, then FM_* environment variables.
// An explicit configFile skips the search path.
func InitializeConfig(configFile string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("$HOME/." + AppName)
		v.AddConfigPath("." + AppName)
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("FM")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			if configFile != "" {
				return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
			}
			fmt.Fprintf(os.Stderr, "Warning: error reading config file %s: %v\n", v.ConfigFileUsed(), err)
		}
	}

	// Google OAuth client credentials share the names used by other Google tooling.
	if err := v.BindEnv("google.client_id", "FM_GOOGLE_CLIENT_ID", "GOOGLE_CLIENT_ID"); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to bind GOOGLE_CLIENT_ID: %v\n", err)
	}
	if err := v.BindEnv("google.client_secret", "FM_GOOGLE_CLIENT_SECRET", "GOOGLE_CLIENT_SECRET"); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to bind GOOGLE_CLIENT_SECRET: %v\n", err)
	}
	// NEXT_PUBLIC_API_URL is honoured so an existing web client .env keeps working.
	if err := v.BindEnv("api.base_url", "FM_API_BASE_URL", "NEXT_PUBLIC_API_URL"); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to bind NEXT_PUBLIC_API_URL: %v\n", err)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := resolvePaths(&config); err != nil {
		return nil, err
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("api.base_url", "http://localhost:8080/api")
	v.SetDefault("http.timeout", 0)

	v.SetDefault("session.file", "")
	v.SetDefault("snapshot.enabled", true)
	v.SetDefault("snapshot.file", "")

	v.SetDefault("output.format", "table")
	v.SetDefault("output.per_page", 10)

	v.SetDefault("csv.delimiter", ",")

	v.SetDefault("google.client_id", "")
	v.SetDefault("google.client_secret", "")
	v.SetDefault("google.redirect_port", 8085)
}

// DataDir returns $HOME/.config/fm-cli.
func DataDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot locate home directory: %w", err)
	}
	return filepath.Join(home, ".config", AppName), nil
}

func resolvePaths(config *Config) error {
	if config.Session.File != "" && config.Snapshot.File != "" {
		return nil
	}
	dir, err := DataDir()
	if err != nil {
		return err
	}
	if config.Session.File == "" {
		config.Session.File = filepath.Join(dir, "session.yaml")
	}
	if config.Snapshot.File == "" {
		config.Snapshot.File = filepath.Join(dir, "snapshot.db")
	}
	return nil
}

func validateConfig(config *Config) error {
	if _, err := logrus.ParseLevel(config.Log.Level); err != nil {
		return fmt.Errorf("invalid log level: %s", config.Log.Level)
	}

	if config.Log.Format != "text" && config.Log.Format != "json" {
		return fmt.Errorf("invalid log format: %s (must be 'text' or 'json')", config.Log.Format)
	}

	u, err := url.Parse(config.API.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("api.base_url must be an absolute http(s) URL, got: %q", config.API.BaseURL)
	}

	if config.HTTP.Timeout < 0 {
		return fmt.Errorf("http.timeout cannot be negative, got: %s", config.HTTP.Timeout)
	}

	switch config.Output.Format {
	case "table", "json", "yaml", "csv":
	default:
		return fmt.Errorf("unsupported output format: %s (must be table, json, yaml or csv)", config.Output.Format)
	}

	if config.Output.PerPage < 1 {
		return fmt.Errorf("output.per_page must be positive, got: %d", config.Output.PerPage)
	}

	if len([]rune(config.CSV.Delimiter)) != 1 {
		return fmt.Errorf("CSV delimiter must be a single character, got: %s", config.CSV.Delimiter)
	}

	if config.Google.RedirectPort < 1 || config.Google.RedirectPort > 65535 {
		return fmt.Errorf("google.redirect_port out of range: %d", config.Google.RedirectPort)
	}

	return nil
}

// Delimiter returns the configured CSV delimiter as a rune.
func (c *Config) Delimiter() rune {
	return []rune(c.CSV.Delimiter)[0]
}

// ConfigureLoggingFromConfig applies the configured level and format to the
// global logrus logger and returns an adapter over it.
func ConfigureLoggingFromConfig(config *Config) logging.Logger {
	logger := logrus.StandardLogger()
	if level, err := logrus.ParseLevel(config.Log.Level); err == nil {
		logger.SetLevel(level)
	}
	if config.Log.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return logging.NewLogrusAdapterFromLogger(logger)
}
