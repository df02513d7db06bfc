// Package config loads the wsdissector application configuration.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds the complete application configuration
type Config struct {
	Decoder DecoderConfig `mapstructure:"decoder" yaml:"decoder"`
	Log     LogConfig     `mapstructure:"log"     yaml:"log"`
	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics"`
}

// DecoderConfig holds external dissector process configuration
type DecoderConfig struct {
	ExecutablePath  string        `mapstructure:"executable_path"  yaml:"executable_path"  env:"DECODER_EXECUTABLE_PATH"`
	LibraryDir      string        `mapstructure:"library_dir"      yaml:"library_dir"      env:"DECODER_LIBRARY_DIR"`
	ResponseTimeout time.Duration `mapstructure:"response_timeout" yaml:"response_timeout" env:"DECODER_RESPONSE_TIMEOUT"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"  env:"LOG_LEVEL"`
	Pretty bool   `mapstructure:"pretty" yaml:"pretty" env:"LOG_PRETTY"`
}

// MetricsConfig holds metrics configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled" env:"METRICS_ENABLED"`
	Port    int    `mapstructure:"port"    yaml:"port"    env:"METRICS_PORT"`
	Path    string `mapstructure:"path"    yaml:"path"    env:"METRICS_PATH"`
}

// Load loads configuration from file and environment
func Load(configPath string) (*Config, error) {
	v := viper.New()

	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("decoder.executable_path", "")
	v.SetDefault("decoder.library_dir", "")
	v.SetDefault("decoder.response_timeout", "30s")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)

	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.port", 9091)
	v.SetDefault("metrics.path", "/metrics")
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Decoder.ExecutablePath) == "" {
		return fmt.Errorf("decoder.executable_path is required")
	}
	if c.Decoder.ResponseTimeout < 0 {
		return fmt.Errorf("decoder.response_timeout must not be negative, got %s", c.Decoder.ResponseTimeout)
	}
	if c.Metrics.Enabled && (c.Metrics.Port <= 0 || c.Metrics.Port > 65535) {
		return fmt.Errorf("metrics.port must be between 1-65535 when metrics enabled, got %d", c.Metrics.Port)
	}
	return nil
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Decoder: DecoderConfig{
			ResponseTimeout: 30 * time.Second,
		},
		Log: LogConfig{
			Level:  "info",
			Pretty: false,
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Port:    9091,
			Path:    "/metrics",
		},
	}
}
