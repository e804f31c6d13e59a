// Package config loads and validates the Sniff server configuration using Viper.
//
// Configuration is layered: built-in defaults < YAML config file < environment
// variables. Environment variables use the SNIFF_ prefix (e.g., SNIFF_SERVER_PORT
// overrides server.port in the YAML). This layering allows the same binary to
// run with a config.yaml in local development and with pure environment variables
// in containerized deployments, with no recompilation or different binaries needed.
//
// Channel credentials (a Google account email plus an AAS token per release
// channel) are read once at startup and are immutable for the process lifetime.
// Only the stable channel is mandatory; beta and alpha are attempted by the
// resolver only when both their fields are present.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Brand     BrandConfig     `mapstructure:"brand"`
	Device    DeviceConfig    `mapstructure:"device"`
	Channels  ChannelsConfig  `mapstructure:"channels"`
	Upstream  UpstreamConfig  `mapstructure:"upstream"`
	Security  SecurityConfig  `mapstructure:"security"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	LandingURL   string        `mapstructure:"landing_url"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// GetAddress returns the server address in host:port format
func (s *ServerConfig) GetAddress() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// BrandConfig holds the brand name prepended to suggested APK filenames.
type BrandConfig struct {
	Name string `mapstructure:"name"`
}

// DeviceConfig holds the device identity presented to the upstream protocol.
// The GSF ID must belong to a device profile that is compatible with the apps
// being requested; upstream filters visibility by device capabilities.
type DeviceConfig struct {
	GSFID     string `mapstructure:"gsf_id"`
	UserAgent string `mapstructure:"user_agent"`
}

// ChannelsConfig holds per-channel upstream credentials. Stable is required;
// beta and alpha are optional and simply skipped by the resolver when absent.
type ChannelsConfig struct {
	Stable ChannelCredential `mapstructure:"stable"`
	Beta   ChannelCredential `mapstructure:"beta"`
	Alpha  ChannelCredential `mapstructure:"alpha"`
}

// ChannelCredential is one (account, session token) pair for a release channel.
type ChannelCredential struct {
	Email    string `mapstructure:"email"`
	AASToken string `mapstructure:"aas_token"`
}

// IsConfigured reports whether both credential fields are present.
func (c ChannelCredential) IsConfigured() bool {
	return c.Email != "" && c.AASToken != ""
}

// UpstreamConfig holds settings for the Play distribution endpoint.
type UpstreamConfig struct {
	BaseURL string `mapstructure:"base_url"`
	// APITimeout bounds metadata and delivery-token calls; DownloadTimeout
	// bounds the proxied binary transfer. See playstore.NewClient for why the
	// two are deliberately different.
	APITimeout      time.Duration `mapstructure:"api_timeout"`
	DownloadTimeout time.Duration `mapstructure:"download_timeout"`
}

// SecurityConfig holds security-related configuration
type SecurityConfig struct {
	CORS         CORSConfig         `mapstructure:"cors"`
	RateLimiting RateLimitingConfig `mapstructure:"rate_limiting"`
	TLS          TLSConfig          `mapstructure:"tls"`
}

// CORSConfig holds CORS configuration
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	AllowedMethods []string `mapstructure:"allowed_methods"`
}

// RateLimitingConfig holds rate limiting configuration
type RateLimitingConfig struct {
	Enabled           bool `mapstructure:"enabled"`
	RequestsPerMinute int  `mapstructure:"requests_per_minute"`
	Burst             int  `mapstructure:"burst"`
}

// TLSConfig holds TLS/HTTPS configuration
type TLSConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	CertFile string `mapstructure:"cert_file"`
	KeyFile  string `mapstructure:"key_file"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// TelemetryConfig holds observability configuration
type TelemetryConfig struct {
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	Profiling ProfilingConfig `mapstructure:"profiling"`
}

// MetricsConfig holds Prometheus metrics configuration
type MetricsConfig struct {
	Enabled        bool `mapstructure:"enabled"`
	PrometheusPort int  `mapstructure:"prometheus_port"`
}

// ProfilingConfig holds profiling configuration
type ProfilingConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Port    int  `mapstructure:"port"`
}

// bindEnvVars explicitly binds environment variables to config keys.
// This is necessary because AutomaticEnv() doesn't work well with nested structs during Unmarshal.
// viper.BindEnv only errors when called with zero keys; since every key here is a non-empty
// hardcoded string, any error indicates a programming bug and is surfaced to the caller.
func bindEnvVars(v *viper.Viper) error {
	keys := []string{
		// Server
		"server.host",
		"server.port",
		"server.landing_url",
		"server.read_timeout",
		"server.write_timeout",

		// Brand & device
		"brand.name",
		"device.gsf_id",
		"device.user_agent",

		// Channel credentials
		"channels.stable.email",
		"channels.stable.aas_token",
		"channels.beta.email",
		"channels.beta.aas_token",
		"channels.alpha.email",
		"channels.alpha.aas_token",

		// Upstream
		"upstream.base_url",
		"upstream.api_timeout",
		"upstream.download_timeout",

		// Security
		"security.cors.allowed_origins",
		"security.cors.allowed_methods",
		"security.rate_limiting.enabled",
		"security.rate_limiting.requests_per_minute",
		"security.rate_limiting.burst",
		"security.tls.enabled",
		"security.tls.cert_file",
		"security.tls.key_file",

		// Logging
		"logging.level",
		"logging.format",

		// Telemetry
		"telemetry.metrics.enabled",
		"telemetry.metrics.prometheus_port",
		"telemetry.profiling.enabled",
		"telemetry.profiling.port",
	}
	for _, key := range keys {
		if err := v.BindEnv(key); err != nil {
			return fmt.Errorf("failed to bind env var %q: %w", key, err)
		}
	}
	return nil
}

// Load loads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set default values
	setDefaults(v)

	// Set config file path if provided
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		// Look for config.yaml in common locations
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/sniff-server")
	}

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found; use defaults and environment variables
	}

	// Enable environment variable support
	v.SetEnvPrefix("SNIFF")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Explicitly bind environment variables for nested structures
	// This is necessary because AutomaticEnv() doesn't work well with Unmarshal()
	if err := bindEnvVars(v); err != nil {
		return nil, err
	}

	// Unmarshal configuration
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	// Expand environment variables in sensitive fields
	cfg.Channels.Stable.AASToken = expandEnv(cfg.Channels.Stable.AASToken)
	cfg.Channels.Beta.AASToken = expandEnv(cfg.Channels.Beta.AASToken)
	cfg.Channels.Alpha.AASToken = expandEnv(cfg.Channels.Alpha.AASToken)

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.landing_url", "https://xhyrom.dev/docs/sniff")
	v.SetDefault("server.read_timeout", "30s")
	// Proxied APK transfers legitimately take minutes; the write timeout must
	// cover the whole relay, not just JSON responses.
	v.SetDefault("server.write_timeout", "15m")

	// Brand defaults
	v.SetDefault("brand.name", "Sniff")

	// Device defaults
	v.SetDefault("device.user_agent", "Android-Finsky/37.5.24 (api=3,versionCode=83752410)")

	// Upstream defaults
	v.SetDefault("upstream.base_url", "https://android.clients.google.com")
	v.SetDefault("upstream.api_timeout", "30s")
	v.SetDefault("upstream.download_timeout", "10m")

	// Security defaults
	v.SetDefault("security.cors.allowed_origins", []string{"*"})
	v.SetDefault("security.cors.allowed_methods", []string{"GET", "OPTIONS"})
	v.SetDefault("security.rate_limiting.enabled", true)
	v.SetDefault("security.rate_limiting.requests_per_minute", 60)
	v.SetDefault("security.rate_limiting.burst", 10)
	v.SetDefault("security.tls.enabled", false)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	// Telemetry defaults
	v.SetDefault("telemetry.metrics.enabled", true)
	v.SetDefault("telemetry.metrics.prometheus_port", 9090)
	v.SetDefault("telemetry.profiling.enabled", false)
	v.SetDefault("telemetry.profiling.port", 6060)
}

// expandEnv expands environment variables in the format ${VAR_NAME}
func expandEnv(s string) string {
	return os.ExpandEnv(s)
}

// Validate validates the configuration
func (c *Config) Validate() error {
	// Validate server
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Server.LandingURL != "" {
		if _, err := url.Parse(c.Server.LandingURL); err != nil {
			return fmt.Errorf("invalid server.landing_url: %w", err)
		}
	}

	// Validate brand
	if c.Brand.Name == "" {
		return fmt.Errorf("brand.name is required")
	}

	// Validate channel credentials. The stable channel is always attempted by
	// the resolver, so it must be fully configured. Beta/alpha may be partial
	// only in the sense of absent entirely; half-configured pairs are rejected
	// so expired or mistyped deployments fail at startup, not per request.
	if !c.Channels.Stable.IsConfigured() {
		return fmt.Errorf("channels.stable.email and channels.stable.aas_token are required")
	}
	if err := validateOptionalCredential("beta", c.Channels.Beta); err != nil {
		return err
	}
	if err := validateOptionalCredential("alpha", c.Channels.Alpha); err != nil {
		return err
	}

	// Validate upstream
	if c.Upstream.BaseURL == "" {
		return fmt.Errorf("upstream.base_url is required")
	}
	parsed, err := url.Parse(c.Upstream.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid upstream.base_url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("upstream.base_url must use http or https scheme")
	}
	if c.Upstream.APITimeout <= 0 {
		return fmt.Errorf("upstream.api_timeout must be positive")
	}
	if c.Upstream.DownloadTimeout <= 0 {
		return fmt.Errorf("upstream.download_timeout must be positive")
	}

	// Validate TLS if enabled
	if c.Security.TLS.Enabled {
		if c.Security.TLS.CertFile == "" {
			return fmt.Errorf("security.tls.cert_file is required when TLS is enabled")
		}
		if c.Security.TLS.KeyFile == "" {
			return fmt.Errorf("security.tls.key_file is required when TLS is enabled")
		}
	}

	// Validate logging level
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid logging level: %s (must be debug, info, warn, or error)", c.Logging.Level)
	}

	return nil
}

func validateOptionalCredential(name string, cred ChannelCredential) error {
	if cred.Email == "" && cred.AASToken == "" {
		return nil
	}
	if !cred.IsConfigured() {
		return fmt.Errorf("channels.%s is partially configured: both email and aas_token are required", name)
	}
	return nil
}
