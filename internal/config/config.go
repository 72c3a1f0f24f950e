package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix namespaces the environment overrides, e.g. NOTEPAD_LOG_LEVEL.
const EnvPrefix = "NOTEPAD"

const (
	TransportHTTP  = "http"
	TransportStdio = "stdio"
	TransportMCP   = "mcp"
)

// appDirName is the directory created under the user config dir for the stores.
const appDirName = "notepad-core"

// Config holds all configurable values for the server.
type Config struct {
	Transport           string   `mapstructure:"transport" yaml:"transport"`
	Host                string   `mapstructure:"host" yaml:"host"`
	Port                int      `mapstructure:"port" yaml:"port"`
	AllowedOrigins      []string `mapstructure:"allowed_origins" yaml:"allowed_origins"`
	DataDir             string   `mapstructure:"data_dir" yaml:"data_dir"`
	LogLevel            string   `mapstructure:"log_level" yaml:"log_level"`
	LogFormat           string   `mapstructure:"log_format" yaml:"log_format"`
	OperationTimeoutSec int      `mapstructure:"operation_timeout_sec" yaml:"operation_timeout_sec"`
	StartupFile         string   `mapstructure:"startup_file" yaml:"startup_file,omitempty"`
}

// Default returns the configuration used when nothing else is supplied.
func Default() *Config {
	return &Config{
		Transport:           TransportHTTP,
		Host:                "127.0.0.1",
		Port:                1420,
		AllowedOrigins:      []string{"tauri://localhost", "http://localhost:1420"},
		DataDir:             defaultDataDir(),
		LogLevel:            "info",
		LogFormat:           "console",
		OperationTimeoutSec: 30,
	}
}

func defaultDataDir() string {
	base, err := os.UserConfigDir()
	if err != nil {
		return "." + appDirName
	}
	return filepath.Join(base, appDirName)
}

// NewViper returns a viper instance preloaded with defaults and NOTEPAD_* env overrides.
func NewViper() *viper.Viper {
	v := viper.New()
	d := Default()
	v.SetDefault("transport", d.Transport)
	v.SetDefault("host", d.Host)
	v.SetDefault("port", d.Port)
	v.SetDefault("allowed_origins", d.AllowedOrigins)
	v.SetDefault("data_dir", d.DataDir)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("log_format", d.LogFormat)
	v.SetDefault("operation_timeout_sec", d.OperationTimeoutSec)
	v.SetDefault("startup_file", "")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v
}

// RegisterFlags adds the server flags to fs. Flag names use dashes; config keys use underscores.
func RegisterFlags(fs *pflag.FlagSet) {
	d := Default()
	fs.String("transport", d.Transport, "Transport protocol (http, stdio or mcp)")
	fs.String("host", d.Host, "Interface the HTTP transport binds to")
	fs.Int("port", d.Port, "Port for HTTP transport")
	fs.StringSlice("allowed-origins", d.AllowedOrigins, "Origins allowed by CORS on the HTTP transport")
	fs.String("data-dir", d.DataDir, "Directory holding the recent-files and settings stores")
	fs.String("log-level", d.LogLevel, "Log level (debug, info, warn, error)")
	fs.String("log-format", d.LogFormat, "Log encoding (console or json)")
	fs.Int("timeout", d.OperationTimeoutSec, "Operation timeout in seconds")
}

// BindFlags makes explicitly set flags take precedence over env and file values.
func BindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	bindings := map[string]string{
		"transport":             "transport",
		"host":                  "host",
		"port":                  "port",
		"allowed_origins":       "allowed-origins",
		"data_dir":              "data-dir",
		"log_level":             "log-level",
		"log_format":            "log-format",
		"operation_timeout_sec": "timeout",
	}
	for key, name := range bindings {
		flag := fs.Lookup(name)
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return fmt.Errorf("bind flag %s: %w", name, err)
		}
	}
	return nil
}

// Load reads the optional YAML file and decodes everything into a Config.
func Load(v *viper.Viper, configFile string) (*Config, error) {
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", configFile, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.Transport = strings.ToLower(strings.TrimSpace(cfg.Transport))
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	cfg.LogFormat = strings.ToLower(strings.TrimSpace(cfg.LogFormat))

	if cfg.StartupFile != "" {
		abs, err := filepath.Abs(cfg.StartupFile)
		if err != nil {
			return nil, fmt.Errorf("resolve startup file: %w", err)
		}
		cfg.StartupFile = abs
	}
	return cfg, nil
}

// Validate checks if the configuration values are valid.
func (c *Config) Validate() error {
	switch c.Transport {
	case TransportHTTP, TransportStdio, TransportMCP:
	default:
		return fmt.Errorf("transport must be 'http', 'stdio' or 'mcp'")
	}

	if c.Transport == TransportHTTP {
		if c.Port < 1024 || c.Port > 65535 {
			return fmt.Errorf("port must be between 1024 and 65535")
		}
		if c.Host == "" {
			return fmt.Errorf("host is required for the http transport")
		}
	}

	if c.DataDir == "" {
		return fmt.Errorf("data directory is required")
	}
	if info, err := os.Stat(c.DataDir); err == nil && !info.IsDir() {
		return fmt.Errorf("data directory is not a directory: %s", c.DataDir)
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log level must be one of debug, info, warn, error")
	}
	if c.LogFormat != "console" && c.LogFormat != "json" {
		return fmt.Errorf("log format must be 'console' or 'json'")
	}

	if c.OperationTimeoutSec < 1 || c.OperationTimeoutSec > 300 {
		return fmt.Errorf("operation timeout must be between 1 and 300 seconds")
	}
	return nil
}

// Addr is the listen address of the HTTP transport.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// OperationTimeout is OperationTimeoutSec as a duration.
func (c *Config) OperationTimeout() time.Duration {
	return time.Duration(c.OperationTimeoutSec) * time.Second
}

// ErrConfigExists is returned by WriteDefault when the target file is already present.
var ErrConfigExists = errors.New("config file already exists")

// WriteDefault writes the default configuration as YAML to path, creating parent directories.
func WriteDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%w: %s", ErrConfigExists, path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	data, err := yaml.Marshal(Default())
	if err != nil {
		return fmt.Errorf("failed to marshal default config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write default config: %w", err)
	}
	return nil
}
