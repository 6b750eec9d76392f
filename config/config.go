package config

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// Config holds the application configuration
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	Auth       AuthConfig       `mapstructure:"auth"`
	Business   BusinessConfig   `mapstructure:"business"`
	Signals    SignalsConfig    `mapstructure:"signals"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Changefeed ChangefeedConfig `mapstructure:"changefeed"`
	Scheduler  SchedulerConfig  `mapstructure:"scheduler"`
	Telemetry  TelemetryConfig  `mapstructure:"telemetry"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port         int           `mapstructure:"port"`
	Host         string        `mapstructure:"host"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// DatabaseConfig holds database connection configuration
type DatabaseConfig struct {
	URL             string        `mapstructure:"url"`
	MaxConnections  int           `mapstructure:"max_connections"`
	MinConnections  int           `mapstructure:"min_connections"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
	MaxConnIdleTime time.Duration `mapstructure:"max_conn_idle_time"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level   string `mapstructure:"level"`
	Format  string `mapstructure:"format"`
	NoColor bool   `mapstructure:"no_color"`
}

// AuthConfig holds the shared secret for /internal routes
type AuthConfig struct {
	InternalAPIKey string `mapstructure:"internal_api_key"`
}

// BusinessConfig describes the shop the analytics run for
type BusinessConfig struct {
	Timezone           string  `mapstructure:"timezone"`
	Latitude           float64 `mapstructure:"latitude"`
	Longitude          float64 `mapstructure:"longitude"`
	ReferenceLatitude  float64 `mapstructure:"reference_latitude"`
	ReferenceLongitude float64 `mapstructure:"reference_longitude"`
	CompetitorKeyword  string  `mapstructure:"competitor_keyword"`
	CompetitorRadiusM  int     `mapstructure:"competitor_radius_m"`
	BlockCapacity      int     `mapstructure:"block_capacity"`
	SlotMinutes        int     `mapstructure:"slot_minutes"`
	DayStartHour       int     `mapstructure:"day_start_hour"`
	DayEndHour         int     `mapstructure:"day_end_hour"`
	// SegmentLookbackDays is the purchase history read for client segments
	SegmentLookbackDays int `mapstructure:"segment_lookback_days"`
}

// SignalsConfig holds external data source settings. An empty key disables
// the live call for that source.
type SignalsConfig struct {
	WeatherAPIKey     string        `mapstructure:"weather_api_key"`
	WeatherBaseURL    string        `mapstructure:"weather_base_url"`
	MapsAPIKey        string        `mapstructure:"maps_api_key"`
	TrafficBaseURL    string        `mapstructure:"traffic_base_url"`
	PlacesBaseURL     string        `mapstructure:"places_base_url"`
	Timeout           time.Duration `mapstructure:"timeout"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
	CacheTTL          time.Duration `mapstructure:"cache_ttl"`
	BreakerFailures   uint32        `mapstructure:"breaker_failures"`
	BreakerTimeout    time.Duration `mapstructure:"breaker_timeout"`
	ReviewSaturation  int           `mapstructure:"review_saturation"`
}

// RedisConfig holds the signal cache connection
type RedisConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	URL     string `mapstructure:"url"`
}

// ChangefeedConfig selects where appointment change events come from
type ChangefeedConfig struct {
	Driver   string        `mapstructure:"driver"`
	Channel  string        `mapstructure:"channel"`
	NATSURL  string        `mapstructure:"nats_url"`
	Subject  string        `mapstructure:"subject"`
	Debounce time.Duration `mapstructure:"debounce"`
}

// SchedulerConfig holds cron expressions for background jobs
type SchedulerConfig struct {
	Enabled          bool   `mapstructure:"enabled"`
	AlertSnapshot    string `mapstructure:"alert_snapshot"`
	BackfillSchedule string `mapstructure:"backfill_schedule"`
	BackfillLimit    int    `mapstructure:"backfill_limit"`
}

// TelemetryConfig holds OpenTelemetry export settings
type TelemetryConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	Endpoint    string `mapstructure:"endpoint"`
	ServiceName string `mapstructure:"service_name"`
	Insecure    bool   `mapstructure:"insecure"`
}

// ErrInvalidConfig reports a configuration value that cannot be used.
type ErrInvalidConfig struct {
	Field  string
	Reason string
}

func (e ErrInvalidConfig) Error() string {
	return fmt.Sprintf("invalid config %s: %s", e.Field, e.Reason)
}

var globalConfig *Config

// Load loads the configuration from file, .env, and environment variables
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	if err := loadEnvFile(); err != nil {
		log.Debug().Err(err).Msg(".env file not loaded")
	}

	v.SetEnvPrefix("GROOMING_SERVICE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	bindEnvVars(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	globalConfig = &cfg
	return &cfg, nil
}

// Validate checks values the service cannot start without.
func (c *Config) Validate() error {
	if _, err := c.Location(); err != nil {
		return ErrInvalidConfig{Field: "business.timezone", Reason: err.Error()}
	}
	if c.Business.BlockCapacity < 1 {
		return ErrInvalidConfig{Field: "business.block_capacity", Reason: "must be at least 1"}
	}
	if c.Business.SlotMinutes < 1 {
		return ErrInvalidConfig{Field: "business.slot_minutes", Reason: "must be at least 1"}
	}
	if c.Business.DayEndHour <= c.Business.DayStartHour {
		return ErrInvalidConfig{Field: "business.day_end_hour", Reason: "must be after day_start_hour"}
	}
	if c.Business.SegmentLookbackDays < 1 {
		return ErrInvalidConfig{Field: "business.segment_lookback_days", Reason: "must be at least 1"}
	}
	switch c.Changefeed.Driver {
	case "postgres", "nats", "none":
	default:
		return ErrInvalidConfig{Field: "changefeed.driver", Reason: "must be one of postgres, nats, none"}
	}
	if c.Signals.Timeout <= 0 {
		return ErrInvalidConfig{Field: "signals.timeout", Reason: "must be positive"}
	}
	if c.Signals.RequestsPerSecond <= 0 {
		return ErrInvalidConfig{Field: "signals.requests_per_second", Reason: "must be positive"}
	}
	return nil
}

// Location resolves the business timezone.
func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Business.Timezone)
}

// loadEnvFile loads the first .env file found next to the binary or in ./config
func loadEnvFile() error {
	for _, path := range []string{".", "./config"} {
		envFile := fmt.Sprintf("%s/.env", path)
		if _, err := os.Stat(envFile); err == nil {
			return loadDotEnvFile(envFile)
		}
	}
	return fmt.Errorf("no .env file found")
}

// loadDotEnvFile reads KEY=VALUE lines into the process environment.
// Variables already set in the environment win.
func loadDotEnvFile(filename string) error {
	file, err := os.Open(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(strings.TrimPrefix(key, "export "))
		value = strings.Trim(strings.TrimSpace(value), "\"'")
		if _, exists := os.LookupEnv(key); !exists {
			os.Setenv(key, value)
		}
	}
	return scanner.Err()
}

// bindEnvVars binds unprefixed environment variables to config keys
func bindEnvVars(v *viper.Viper) {
	v.BindEnv("database.url", "DATABASE_URL")
	v.BindEnv("server.port", "PORT")
	v.BindEnv("logging.level", "LOG_LEVEL")
	v.BindEnv("auth.internal_api_key", "INTERNAL_API_KEY")
	v.BindEnv("signals.weather_api_key", "WEATHER_API_KEY")
	v.BindEnv("signals.maps_api_key", "MAPS_API_KEY")
	v.BindEnv("redis.url", "REDIS_URL")
	v.BindEnv("changefeed.nats_url", "NATS_URL")
	v.BindEnv("telemetry.endpoint", "OTEL_EXPORTER_OTLP_ENDPOINT")
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 3000)
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)

	v.SetDefault("database.max_connections", 10)
	v.SetDefault("database.min_connections", 2)
	v.SetDefault("database.max_conn_lifetime", 1*time.Hour)
	v.SetDefault("database.max_conn_idle_time", 30*time.Minute)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.no_color", false)

	v.SetDefault("business.timezone", "UTC")
	v.SetDefault("business.latitude", 19.4326)
	v.SetDefault("business.longitude", -99.1332)
	v.SetDefault("business.reference_latitude", 19.4270)
	v.SetDefault("business.reference_longitude", -99.1677)
	v.SetDefault("business.competitor_keyword", "pet grooming")
	v.SetDefault("business.competitor_radius_m", 3000)
	v.SetDefault("business.block_capacity", 5)
	v.SetDefault("business.slot_minutes", 15)
	v.SetDefault("business.day_start_hour", 8)
	v.SetDefault("business.day_end_hour", 20)
	v.SetDefault("business.segment_lookback_days", 365)

	v.SetDefault("signals.weather_base_url", "https://api.openweathermap.org/data/3.0/onecall")
	v.SetDefault("signals.traffic_base_url", "https://maps.googleapis.com/maps/api/distancematrix/json")
	v.SetDefault("signals.places_base_url", "https://maps.googleapis.com/maps/api/place/nearbysearch/json")
	v.SetDefault("signals.timeout", 5*time.Second)
	v.SetDefault("signals.requests_per_second", 5.0)
	v.SetDefault("signals.cache_ttl", 15*time.Minute)
	v.SetDefault("signals.breaker_failures", 3)
	v.SetDefault("signals.breaker_timeout", 60*time.Second)
	v.SetDefault("signals.review_saturation", 2000)

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.url", "redis://localhost:6379/0")

	v.SetDefault("changefeed.driver", "postgres")
	v.SetDefault("changefeed.channel", "grooming_changes")
	v.SetDefault("changefeed.nats_url", "nats://localhost:4222")
	v.SetDefault("changefeed.subject", "grooming.changes.>")
	v.SetDefault("changefeed.debounce", 250*time.Millisecond)

	v.SetDefault("scheduler.enabled", true)
	v.SetDefault("scheduler.alert_snapshot", "0 0 8 * * *")
	v.SetDefault("scheduler.backfill_schedule", "0 */30 * * * *")
	v.SetDefault("scheduler.backfill_limit", 500)

	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.endpoint", "localhost:4317")
	v.SetDefault("telemetry.service_name", "grooming-service")
	v.SetDefault("telemetry.insecure", true)
}

// Get returns the global configuration
func Get() *Config {
	return globalConfig
}

// GetDatabaseURL returns the database URL from config or environment
func GetDatabaseURL() string {
	if cfg := Get(); cfg != nil && cfg.Database.URL != "" {
		return cfg.Database.URL
	}
	return os.Getenv("DATABASE_URL")
}
