// Package config provides configuration management for oscbridge.
//
// This package handles loading configuration from multiple sources:
//   - YAML configuration files
//   - Environment variables (with OSCBRIDGE_ prefix)
//   - Command line flags
//   - Default values
//
// # Configuration Sources Priority
//
// Configuration is loaded in the following order (later sources override earlier ones):
//  1. Default values (hardcoded)
//  2. Configuration files (./config.yaml, ./configs/config.yaml, ~/.oscbridge/config.yaml, /etc/oscbridge/config.yaml)
//  3. Environment variables (OSCBRIDGE_ prefix)
//  4. Command line flags
//
// # Usage Example
//
//	cfg, err := config.Load("configs/config.yaml", cmd.Flags())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("Listening on %s\n", cfg.OSC.ListenAddr)
//
// # Environment Variables
//
// Use the OSCBRIDGE_ prefix and underscores for nested keys:
//   - OSCBRIDGE_OSC_LISTEN_ADDR=0.0.0.0:5005
//   - OSCBRIDGE_TARGETS_URLS=http://vlc1:8080,http://vlc2:8080
//   - OSCBRIDGE_TARGETS_PASSWORDS=secret
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"evalgo.org/oscbridge/internal/player"
)

// EnvPrefix is the prefix of every environment variable read by Load.
const EnvPrefix = "OSCBRIDGE"

// DefaultTargetURL is used when no target is configured.
const DefaultTargetURL = "http://localhost:8080"

// Config is the root configuration structure for oscbridge.
type Config struct {
	// OSC contains the UDP listener settings
	OSC OSCConfig `mapstructure:"osc" yaml:"osc"`

	// Targets lists the VLC instances commands are sent to
	Targets TargetsConfig `mapstructure:"targets" yaml:"targets"`

	// Admin contains the optional health and metrics HTTP server settings
	Admin AdminConfig `mapstructure:"admin" yaml:"admin"`

	// Logging contains logging settings
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
}

// OSCConfig contains the OSC listener configuration.
type OSCConfig struct {
	// ListenAddr is the UDP host:port to receive OSC messages on (default: 127.0.0.1:5005)
	ListenAddr string `mapstructure:"listen_addr" yaml:"listen_addr" validate:"required,hostname_port"`

	// ShutdownTimeout bounds how long in-flight messages may take on shutdown
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout" validate:"gt=0"`

	// RateLimit caps accepted messages per second; 0 disables the limit
	RateLimit float64 `mapstructure:"rate_limit" yaml:"rate_limit" validate:"gte=0"`

	// RateBurst is the number of messages accepted at once above RateLimit
	RateBurst int `mapstructure:"rate_burst" yaml:"rate_burst" validate:"gte=0"`
}

// TargetsConfig describes the VLC HTTP interfaces.
type TargetsConfig struct {
	// URLs are the base URLs of the VLC web interfaces, in address order (/1/..., /2/...)
	URLs []string `mapstructure:"urls" yaml:"urls" validate:"min=1,dive,url"`

	// Passwords are the VLC web interface passwords. Target i uses
	// Passwords[min(i, len(Passwords)-1)], so a single password covers all targets.
	Passwords []string `mapstructure:"passwords" yaml:"passwords"`

	// Timeout bounds each control request (default: 500ms)
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout" validate:"gt=0"`

	// MaxConcurrency bounds in-flight requests during a broadcast; 0 means one per target
	MaxConcurrency int `mapstructure:"max_concurrency" yaml:"max_concurrency" validate:"gte=0"`
}

// AdminConfig contains the admin HTTP server configuration.
type AdminConfig struct {
	// ListenAddr enables the admin server when non-empty (e.g. 127.0.0.1:9090)
	ListenAddr string `mapstructure:"listen_addr" yaml:"listen_addr" validate:"omitempty,hostname_port"`

	// ShutdownTimeout is the maximum duration for graceful shutdown
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout" validate:"gt=0"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is the log level (debug, info, warn, error)
	Level string `mapstructure:"level" yaml:"level" validate:"oneof=debug info warn warning error"`

	// Format is the log format (json, text)
	Format string `mapstructure:"format" yaml:"format" validate:"oneof=json text"`

	// Output is the log destination (stdout, stderr)
	Output string `mapstructure:"output" yaml:"output" validate:"oneof=stdout stderr"`
}

// flagBindings maps configuration keys to the command line flags that
// override them. Flags missing from the flag set are skipped.
var flagBindings = map[string]string{
	"osc.listen_addr":         "listen",
	"osc.rate_limit":          "rate-limit",
	"targets.urls":            "vlc",
	"targets.passwords":       "pwd",
	"targets.timeout":         "timeout",
	"targets.max_concurrency": "max-concurrency",
	"admin.listen_addr":       "admin",
	"logging.level":           "log-level",
	"logging.format":          "log-format",
}

var validate = validator.New()

// Load reads configuration from a file, the environment and flags.
// If cfgFile is empty, it searches for config.yaml in standard locations.
// flags may be nil.
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("$HOME/.oscbridge")
		v.AddConfigPath("/etc/oscbridge")
	}

	if err := v.ReadInConfig(); err != nil {
		if cfgFile != "" {
			// A missing explicit file falls back to defaults
			if !isFileNotFoundError(err) {
				return nil, fmt.Errorf("error reading config file: %w", err)
			}
		} else {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("error reading config file: %w", err)
			}
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for key, name := range flagBindings {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("failed to bind flag --%s: %w", name, err)
				}
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("osc.listen_addr", "127.0.0.1:5005")
	v.SetDefault("osc.shutdown_timeout", "5s")
	v.SetDefault("osc.rate_limit", 0)
	v.SetDefault("osc.rate_burst", 10)

	v.SetDefault("targets.urls", []string{DefaultTargetURL})
	v.SetDefault("targets.passwords", []string{})
	v.SetDefault("targets.timeout", "500ms")
	v.SetDefault("targets.max_concurrency", 0)

	v.SetDefault("admin.listen_addr", "")
	v.SetDefault("admin.shutdown_timeout", "5s")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output", "stderr")
}

// Validate checks cfg against its struct constraints.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
			}
			return errors.New(strings.Join(msgs, "; "))
		}
		return err
	}
	return nil
}

// Endpoints pairs every URL with its password. Target i uses password
// min(i, len(Passwords)-1); with no passwords every target is unauthenticated.
func (c TargetsConfig) Endpoints() []player.Endpoint {
	endpoints := make([]player.Endpoint, len(c.URLs))
	for i, url := range c.URLs {
		endpoints[i] = player.Endpoint{URL: url}
		if n := len(c.Passwords); n > 0 {
			endpoints[i].Password = c.Passwords[min(i, n-1)]
		}
	}
	return endpoints
}

// Redacted returns a copy of c with passwords masked, for display.
func (c Config) Redacted() Config {
	out := c
	out.Targets.Passwords = make([]string, len(c.Targets.Passwords))
	for i := range out.Targets.Passwords {
		out.Targets.Passwords[i] = "********"
	}
	out.Targets.URLs = append([]string(nil), c.Targets.URLs...)
	return out
}

// isFileNotFoundError checks if an error is a file not found error.
func isFileNotFoundError(err error) bool {
	var pathErr *os.PathError
	if errors.As(err, &pathErr) {
		return errors.Is(pathErr, os.ErrNotExist)
	}
	return false
}
