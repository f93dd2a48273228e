// Package config loads boxcalc configuration.
//
// Configuration comes from three layers, each overriding the previous one:
// built-in defaults, a YAML file, and BOXCALC_* environment variables.
// Command-line flags are applied on top by the caller.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
	"src.devlab.sh/pkg/env"
	"src.devlab.sh/pkg/relay"
)

// Config is the complete configuration.
type Config struct {
	// Id of the shared calculator state.
	Session string `yaml:"session"`
	// Relay topic sessions broadcast on.
	Topic string `yaml:"topic"`
	// Directory for the client id and the default database.
	DataDir string `yaml:"data_dir"`

	Server ServerConfig `yaml:"server"`
	Remote RemoteConfig `yaml:"remote"`
	Log    LogConfig    `yaml:"log"`
}

// ServerConfig configures the -serve subprogram.
type ServerConfig struct {
	HTTPAddr  string `yaml:"http_addr"`
	RelayAddr string `yaml:"relay_addr"`
	// Defaults to boxcalc.db under DataDir.
	DBPath string `yaml:"db_path"`
}

// RemoteConfig tells the interactive front end where the server is. Leaving
// a field empty disables the corresponding feature.
type RemoteConfig struct {
	APIURL    string `yaml:"api_url"`
	RelayAddr string `yaml:"relay_addr"`
}

// LogConfig configures logging.
type LogConfig struct {
	File  string `yaml:"file"`
	Level string `yaml:"level"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Session: "default",
		Topic:   relay.DefaultTopic,
		DataDir: defaultDataDir(),
		Server: ServerConfig{
			HTTPAddr:  "localhost:8080",
			RelayAddr: "localhost:7470",
		},
		Log: LogConfig{Level: "info"},
	}
}

func defaultDataDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "boxcalc")
	}
	return ".boxcalc"
}

// DefaultPath returns the default location of the configuration file.
func DefaultPath() string {
	return filepath.Join(defaultDataDir(), "config.yaml")
}

// Load loads configuration from a YAML file. A missing file is not an error;
// the defaults are used instead.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// DBPath returns the database path, defaulting to a file under DataDir.
func (c *Config) DBPath() string {
	if c.Server.DBPath != "" {
		return c.Server.DBPath
	}
	return filepath.Join(c.DataDir, "boxcalc.db")
}

func (c *Config) applyEnvOverrides() {
	for name, p := range map[string]*string{
		env.BOXCALC_SESSION:    &c.Session,
		env.BOXCALC_TOPIC:      &c.Topic,
		env.BOXCALC_DATA_DIR:   &c.DataDir,
		env.BOXCALC_DB:         &c.Server.DBPath,
		env.BOXCALC_API_URL:    &c.Remote.APIURL,
		env.BOXCALC_RELAY_ADDR: &c.Remote.RelayAddr,
		env.BOXCALC_LOG:        &c.Log.File,
	} {
		if v := os.Getenv(name); v != "" {
			*p = v
		}
	}
}
