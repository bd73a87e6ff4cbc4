package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	CORS      CORSConfig      `mapstructure:"cors"`
	Upstream  UpstreamConfig  `mapstructure:"upstream"`
	Cache     CacheConfig     `mapstructure:"cache"`
	NATS      NATSConfig      `mapstructure:"nats"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	Log       LogConfig       `mapstructure:"log"`
}

type ServerConfig struct {
	Port           int `mapstructure:"port"`
	ReadTimeout    int `mapstructure:"read_timeout"`
	WriteTimeout   int `mapstructure:"write_timeout"`
	RequestTimeout int `mapstructure:"request_timeout"`
	RateLimit      int `mapstructure:"rate_limit"` // requests per minute per IP, 0 disables
}

type CORSConfig struct {
	AllowOrigins string `mapstructure:"allow_origins"`
}

type UpstreamConfig struct {
	Routing   RoutingConfig   `mapstructure:"routing"`
	Stations  StationsConfig  `mapstructure:"stations"`
	Geocoding GeocodingConfig `mapstructure:"geocoding"`
}

// RoutingConfig points at an OSRM-compatible /route/v1/<profile> endpoint.
type RoutingConfig struct {
	BaseURL   string        `mapstructure:"base_url"`
	Timeout   time.Duration `mapstructure:"timeout"`
	UserAgent string        `mapstructure:"user_agent"`
}

// StationsConfig points at the OpenChargeMap POI endpoint.
type StationsConfig struct {
	BaseURL      string        `mapstructure:"base_url"`
	APIKey       string        `mapstructure:"api_key"`
	Distance     int           `mapstructure:"distance"`
	DistanceUnit string        `mapstructure:"distance_unit"`
	MaxResults   int           `mapstructure:"max_results"`
	Timeout      time.Duration `mapstructure:"timeout"`
	UserAgent    string        `mapstructure:"user_agent"`
}

// GeocodingConfig points at a Nominatim /search endpoint.
type GeocodingConfig struct {
	BaseURL   string        `mapstructure:"base_url"`
	Timeout   time.Duration `mapstructure:"timeout"`
	UserAgent string        `mapstructure:"user_agent"`
}

type CacheConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	ValkeyAddr     string `mapstructure:"valkey_addr"`
	GeocodeTTL     int    `mapstructure:"geocode_ttl"`  // seconds
	StationsTTL    int    `mapstructure:"stations_ttl"` // seconds
	MemoryFallback bool   `mapstructure:"memory_fallback"`
}

type NATSConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	URL     string `mapstructure:"url"`
}

type TelemetryConfig struct {
	ServiceName string `mapstructure:"service_name"`
	OTLPAddr    string `mapstructure:"otlp_addr"`
	Enabled     bool   `mapstructure:"enabled"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from file and environment variables.
func Load(service string) (*Config, error) {
	v := viper.New()
	setDefaults(v, service)

	// Config file (optional)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	_ = v.ReadInConfig() // OK if missing

	// Environment variables: EVROUTE_UPSTREAM_STATIONS_API_KEY → upstream.stations.api_key
	v.SetEnvPrefix("EVROUTE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper, service string) {
	v.SetDefault("server.port", 5000)
	v.SetDefault("server.read_timeout", 10)
	v.SetDefault("server.write_timeout", 30)
	v.SetDefault("server.request_timeout", 30)
	v.SetDefault("server.rate_limit", 120)

	v.SetDefault("cors.allow_origins", "*")

	v.SetDefault("upstream.routing.base_url", "https://router.project-osrm.org/route/v1/driving")
	v.SetDefault("upstream.routing.timeout", 10*time.Second)
	v.SetDefault("upstream.routing.user_agent", "EVRoutePlanner/1.0")

	v.SetDefault("upstream.stations.base_url", "https://api.openchargemap.io/v3/poi/")
	v.SetDefault("upstream.stations.api_key", "")
	v.SetDefault("upstream.stations.distance", 100)
	v.SetDefault("upstream.stations.distance_unit", "KM")
	v.SetDefault("upstream.stations.max_results", 25)
	v.SetDefault("upstream.stations.timeout", 15*time.Second)
	v.SetDefault("upstream.stations.user_agent", "EVRoutePlanner/1.0 (https://evroute.local)")

	v.SetDefault("upstream.geocoding.base_url", "https://nominatim.openstreetmap.org/search")
	v.SetDefault("upstream.geocoding.timeout", 10*time.Second)
	v.SetDefault("upstream.geocoding.user_agent", "EVRoutePlanner/1.0")

	v.SetDefault("cache.enabled", false)
	v.SetDefault("cache.valkey_addr", "localhost:6379")
	v.SetDefault("cache.geocode_ttl", 86400)
	v.SetDefault("cache.stations_ttl", 300)
	v.SetDefault("cache.memory_fallback", true)

	v.SetDefault("nats.enabled", false)
	v.SetDefault("nats.url", "nats://localhost:4222")

	v.SetDefault("telemetry.service_name", service)
	v.SetDefault("telemetry.otlp_addr", "localhost:4317")
	v.SetDefault("telemetry.enabled", false)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}

// Validate checks that required configuration fields are present and sane.
func (c *Config) Validate() error {
	var errs []string

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port must be 1-65535, got %d", c.Server.Port))
	}
	if c.Server.ReadTimeout <= 0 {
		errs = append(errs, "server.read_timeout must be positive")
	}
	if c.Server.WriteTimeout <= 0 {
		errs = append(errs, "server.write_timeout must be positive")
	}
	if c.Server.RequestTimeout <= 0 {
		errs = append(errs, "server.request_timeout must be positive")
	}
	if c.Server.RateLimit < 0 {
		errs = append(errs, "server.rate_limit must not be negative")
	}

	baseURLs := []struct{ key, raw string }{
		{"upstream.routing.base_url", c.Upstream.Routing.BaseURL},
		{"upstream.stations.base_url", c.Upstream.Stations.BaseURL},
		{"upstream.geocoding.base_url", c.Upstream.Geocoding.BaseURL},
	}
	for _, u := range baseURLs {
		if err := checkURL(u.raw); err != nil {
			errs = append(errs, fmt.Sprintf("%s %v", u.key, err))
		}
	}

	if c.Upstream.Routing.Timeout <= 0 {
		errs = append(errs, "upstream.routing.timeout must be positive")
	}
	if c.Upstream.Stations.Timeout <= 0 {
		errs = append(errs, "upstream.stations.timeout must be positive")
	}
	if c.Upstream.Geocoding.Timeout < 0 {
		errs = append(errs, "upstream.geocoding.timeout must not be negative")
	}
	if c.Upstream.Stations.Distance <= 0 {
		errs = append(errs, "upstream.stations.distance must be positive")
	}
	if c.Upstream.Stations.MaxResults <= 0 {
		errs = append(errs, "upstream.stations.max_results must be positive")
	}
	switch c.Upstream.Stations.DistanceUnit {
	case "KM", "Miles":
	default:
		errs = append(errs, fmt.Sprintf("upstream.stations.distance_unit must be KM or Miles, got %q", c.Upstream.Stations.DistanceUnit))
	}

	if c.Cache.Enabled && c.Cache.ValkeyAddr == "" && !c.Cache.MemoryFallback {
		errs = append(errs, "cache.valkey_addr is required when cache is enabled without memory fallback")
	}
	if c.NATS.Enabled && c.NATS.URL == "" {
		errs = append(errs, "nats.url is required when nats is enabled")
	}
	if c.Telemetry.Enabled && c.Telemetry.OTLPAddr == "" {
		errs = append(errs, "telemetry.otlp_addr is required when telemetry is enabled")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

func checkURL(raw string) error {
	if raw == "" {
		return fmt.Errorf("is required")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("is not a valid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("must be http or https, got %q", raw)
	}
	return nil
}
