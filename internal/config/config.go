// Package config provides Viper-based configuration loading for the
// point-buy calculator server.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// TelnetConfig holds Telnet acceptor settings.
type TelnetConfig struct {
	// Host is the bind address for the Telnet listener.
	Host string `mapstructure:"host"`
	// Port is the TCP port for the Telnet listener.
	Port int `mapstructure:"port"`
	// ReadTimeout is the per-read timeout; a client idle this long is dropped.
	ReadTimeout time.Duration `mapstructure:"read_timeout"`
	// WriteTimeout is the per-write timeout for Telnet connections.
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// Addr returns the "host:port" listen address.
//
// Postcondition: Returns a non-empty string in "host:port" format.
func (t TelnetConfig) Addr() string {
	return fmt.Sprintf("%s:%d", t.Host, t.Port)
}

// WebSocketConfig holds the browser-facing WebSocket listener settings.
type WebSocketConfig struct {
	// Enabled turns the WebSocket listener on.
	Enabled bool   `mapstructure:"enabled"`
	Host    string `mapstructure:"host"`
	Port    int    `mapstructure:"port"`
	// Path is the HTTP path the upgrade is served on.
	Path string `mapstructure:"path"`
	// AllowedOrigins lists Origin header values accepted on upgrade. Empty
	// accepts every origin.
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	// WriteTimeout bounds each frame write.
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// Addr returns the "host:port" listen address.
func (w WebSocketConfig) Addr() string {
	return fmt.Sprintf("%s:%d", w.Host, w.Port)
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
	// File, when set, also writes logs to this path with rotation.
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

// CalculatorConfig holds calculator defaults and content locations.
type CalculatorConfig struct {
	// DefaultEdition is the edition new sessions start in.
	DefaultEdition string `mapstructure:"default_edition"`
	// ContentDir holds *.yaml and *.lua homebrew cost tables. Empty disables
	// content loading.
	ContentDir string `mapstructure:"content_dir"`
	// ScriptInstructionLimit caps Lua opcodes per cost script; 0 uses the
	// scripting default.
	ScriptInstructionLimit int `mapstructure:"script_instruction_limit"`
	// MaxSessions caps concurrent sessions; 0 means unlimited.
	MaxSessions int `mapstructure:"max_sessions"`
}

// Config is the top-level application configuration.
type Config struct {
	Telnet     TelnetConfig     `mapstructure:"telnet"`
	WebSocket  WebSocketConfig  `mapstructure:"websocket"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	Calculator CalculatorConfig `mapstructure:"calculator"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateTelnet(c.Telnet); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateWebSocket(c.WebSocket); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateCalculator(c.Calculator); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validPort(p int) bool {
	return p >= 1 && p <= 65535
}

func validateTelnet(t TelnetConfig) error {
	var errs []string
	if !validPort(t.Port) {
		errs = append(errs, fmt.Sprintf("telnet.port must be 1-65535, got %d", t.Port))
	}
	if t.ReadTimeout < 0 {
		errs = append(errs, "telnet.read_timeout must not be negative")
	}
	if t.WriteTimeout < 0 {
		errs = append(errs, "telnet.write_timeout must not be negative")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateWebSocket(w WebSocketConfig) error {
	if !w.Enabled {
		return nil
	}
	var errs []string
	if !validPort(w.Port) {
		errs = append(errs, fmt.Sprintf("websocket.port must be 1-65535, got %d", w.Port))
	}
	if !strings.HasPrefix(w.Path, "/") {
		errs = append(errs, fmt.Sprintf("websocket.path must start with /, got %q", w.Path))
	}
	if w.WriteTimeout < 0 {
		errs = append(errs, "websocket.write_timeout must not be negative")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	var errs []string
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		errs = append(errs, fmt.Sprintf("logging.level must be one of [debug, info, warn, error], got %q", l.Level))
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		errs = append(errs, fmt.Sprintf("logging.format must be one of [json, console], got %q", l.Format))
	}
	if l.File != "" {
		if l.MaxSizeMB < 1 {
			errs = append(errs, fmt.Sprintf("logging.max_size_mb must be >= 1, got %d", l.MaxSizeMB))
		}
		if l.MaxBackups < 0 {
			errs = append(errs, "logging.max_backups must not be negative")
		}
		if l.MaxAgeDays < 0 {
			errs = append(errs, "logging.max_age_days must not be negative")
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateCalculator(c CalculatorConfig) error {
	var errs []string
	switch strings.ToLower(c.DefaultEdition) {
	case "3.5e", "5e":
	default:
		errs = append(errs, fmt.Sprintf("calculator.default_edition must be one of [3.5e, 5e], got %q", c.DefaultEdition))
	}
	if c.ScriptInstructionLimit < 0 {
		errs = append(errs, fmt.Sprintf("calculator.script_instruction_limit must be >= 0, got %d", c.ScriptInstructionLimit))
	}
	if c.MaxSessions < 0 {
		errs = append(errs, fmt.Sprintf("calculator.max_sessions must be >= 0, got %d", c.MaxSessions))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result.
//
// Precondition: path must be a valid file path to a YAML configuration file.
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := newViper()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}
	return LoadFromViper(v)
}

// Defaults returns the configuration built from defaults and environment
// overrides alone, for running without a config file.
//
// Postcondition: Returns a valid Config or a non-nil error.
func Defaults() (Config, error) {
	return LoadFromViper(newViper())
}

// LoadFromViper builds a Config from an already-configured Viper instance.
//
// Precondition: v must be non-nil and have configuration values set.
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func newViper() *viper.Viper {
	v := viper.New()
	// Environment variable overrides with POINTBUY_ prefix
	v.SetEnvPrefix("POINTBUY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("telnet.host", "0.0.0.0")
	v.SetDefault("telnet.port", 4040)
	v.SetDefault("telnet.read_timeout", "30m")
	v.SetDefault("telnet.write_timeout", "30s")

	v.SetDefault("websocket.enabled", false)
	v.SetDefault("websocket.host", "0.0.0.0")
	v.SetDefault("websocket.port", 8040)
	v.SetDefault("websocket.path", "/ws")
	v.SetDefault("websocket.allowed_origins", []string{})
	v.SetDefault("websocket.write_timeout", "10s")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.file", "")
	v.SetDefault("logging.max_size_mb", 100)
	v.SetDefault("logging.max_backups", 3)
	v.SetDefault("logging.max_age_days", 28)

	v.SetDefault("calculator.default_edition", "5e")
	v.SetDefault("calculator.content_dir", "")
	v.SetDefault("calculator.script_instruction_limit", 0)
	v.SetDefault("calculator.max_sessions", 0)
}
