package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Environment variables use this prefix, e.g. DOCMD_INPUT_PATH.
const EnvPrefix = "DOCMD"

// Keys recognized in the config file, environment, and flags.
const (
	KeyInputPath      = "input_path"
	KeyOutputPath     = "output_path"
	KeyVerify         = "verify"
	KeyLogLevel       = "log_level"
	KeyLogFormat      = "log_format"
	KeyPort           = "port"
	KeyAPIKey         = "api_key"
	KeyMaxUploadBytes = "max_upload_bytes"
)

const defaultMaxUploadBytes = 52428800 // 50MB

type Config struct {
	// Conversion
	InputPath  string
	OutputPath string
	Verify     bool

	// Logging
	LogLevel  string
	LogFormat string

	// HTTP service
	Port           string
	APIKey         string
	MaxUploadBytes int64
}

// SetDefaults registers defaults and environment binding on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyVerify, false)
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "json")
	v.SetDefault(KeyPort, "8090")
	v.SetDefault(KeyMaxUploadBytes, defaultMaxUploadBytes)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
}

// Load reads the effective configuration from v.
func Load(v *viper.Viper) Config {
	cfg := Config{
		InputPath:  v.GetString(KeyInputPath),
		OutputPath: v.GetString(KeyOutputPath),
		Verify:     v.GetBool(KeyVerify),

		LogLevel:  strings.ToLower(v.GetString(KeyLogLevel)),
		LogFormat: strings.ToLower(v.GetString(KeyLogFormat)),

		Port:           v.GetString(KeyPort),
		APIKey:         v.GetString(KeyAPIKey),
		MaxUploadBytes: v.GetInt64(KeyMaxUploadBytes),
	}

	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = "json"
	}
	if cfg.Port == "" {
		cfg.Port = "8090"
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = defaultMaxUploadBytes
	}

	return cfg
}

// Validate checks the settings a conversion needs.
func (c Config) Validate() error {
	if c.InputPath == "" {
		return fmt.Errorf("%s is required", KeyInputPath)
	}
	if c.OutputPath == "" {
		return fmt.Errorf("%s is required", KeyOutputPath)
	}
	return c.validateLogging()
}

// ValidateServe checks the settings the HTTP service needs.
func (c Config) ValidateServe() error {
	if c.Port == "" {
		return fmt.Errorf("%s is required", KeyPort)
	}
	return c.validateLogging()
}

func (c Config) validateLogging() error {
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid %s %q", KeyLogLevel, c.LogLevel)
	}
	switch c.LogFormat {
	case "json", "text":
	default:
		return fmt.Errorf("invalid %s %q", KeyLogFormat, c.LogFormat)
	}
	return nil
}
