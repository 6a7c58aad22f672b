package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/sintosafreetraffic/pinterest-attribution/internal/models"
)

// Config holds all configuration for the attribution service.
type Config struct {
	Server      ServerConfig
	Database    DatabaseConfig
	Redis       RedisConfig
	ClickHouse  ClickHouseConfig
	Auth        AuthConfig
	RateLimit   RateLimitConfig
	Log         LogConfig
	Metrics     MetricsConfig
	Attribution AttributionConfig
	Discovery   DiscoveryConfig
}

type ServerConfig struct {
	Addr            string
	Env             string
	ShutdownTimeout time.Duration
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
	MaxConns int
	MinConns int
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// ClickHouseConfig configures the delivery-metrics warehouse connection.
type ClickHouseConfig struct {
	Enabled  bool
	Addr     string
	Database string
	User     string
	Password string
}

type AuthConfig struct {
	Enabled   bool
	MasterKey string
	SkipPaths []string
}

type RateLimitConfig struct {
	Enabled bool
	RPS     float64
	Burst   int
}

type LogConfig struct {
	Level  string
	Format string
}

// MetricsConfig configures Prometheus metrics.
type MetricsConfig struct {
	Enabled bool
	Path    string
}

// AttributionConfig holds the weighting-model parameters. It is read once
// at startup and never mutated afterwards; the engine treats it as
// immutable.
type AttributionConfig struct {
	// HalfLife controls time_decay: a touchpoint this much older than the
	// conversion carries half the weight.
	HalfLife time.Duration
	// PositionFirstPct / PositionLastPct are the fixed shares given to the
	// first and last touchpoints by position_based when N >= 3.
	PositionFirstPct float64
	PositionLastPct  float64
	// DataDrivenBlend is the weight on the time_decay arm of the
	// data_driven blend; the remainder goes to position_based.
	DataDrivenBlend float64
	// TargetTouchpoints is the journey length at which the confidence
	// base reaches 1.0.
	TargetTouchpoints int
	// InsightsBonus is added to confidence when trend/persona signals
	// were successfully obtained.
	InsightsBonus float64
	// Tolerance bounds the allowed deviation of score sums from 1.0.
	Tolerance float64
}

// DiscoveryConfig holds the discovery-phase re-weighting parameters.
type DiscoveryConfig struct {
	// Platform is the channel credited for early-funnel discovery.
	Platform models.Platform
	// BaseBoost multiplies the discovery platform's score before
	// renormalization.
	BaseBoost float64
	// KeywordIncrement is the per-matching-keyword boost increment.
	KeywordIncrement float64
	// PersonaIncrement is applied when persona interests overlap the
	// affinity categories.
	PersonaIncrement float64
	// KeywordGrowthThreshold is the minimum growth rate (percent) for a
	// trending keyword to count as matching.
	KeywordGrowthThreshold float64
	// AffinityCategories are the persona interest categories considered
	// discovery-affine.
	AffinityCategories []string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Addr:            getEnv("ATTR_HTTP_ADDR", ":8080"),
			Env:             getEnv("ATTR_ENV", "development"),
			ShutdownTimeout: getDurationEnv("ATTR_SHUTDOWN_TIMEOUT", 30*time.Second),
		},
		Database: DatabaseConfig{
			Host:     getEnv("ATTR_DB_HOST", "localhost"),
			Port:     getIntEnv("ATTR_DB_PORT", 5432),
			User:     getEnv("ATTR_DB_USER", "attribution"),
			Password: getEnv("ATTR_DB_PASSWORD", "attribution_secret"),
			DBName:   getEnv("ATTR_DB_NAME", "attribution"),
			SSLMode:  getEnv("ATTR_DB_SSLMODE", "disable"),
			MaxConns: getIntEnv("ATTR_DB_MAX_CONNS", 25),
			MinConns: getIntEnv("ATTR_DB_MIN_CONNS", 5),
		},
		Redis: RedisConfig{
			Addr:     getEnv("ATTR_REDIS_ADDR", "localhost:6379"),
			Password: getEnv("ATTR_REDIS_PASSWORD", ""),
			DB:       getIntEnv("ATTR_REDIS_DB", 0),
		},
		ClickHouse: ClickHouseConfig{
			Enabled:  getBoolEnv("ATTR_CLICKHOUSE_ENABLED", false),
			Addr:     getEnv("ATTR_CLICKHOUSE_ADDR", "localhost:9000"),
			Database: getEnv("ATTR_CLICKHOUSE_DB", "attribution"),
			User:     getEnv("ATTR_CLICKHOUSE_USER", "default"),
			Password: getEnv("ATTR_CLICKHOUSE_PASSWORD", ""),
		},
		Auth: AuthConfig{
			Enabled:   getBoolEnv("ATTR_AUTH_ENABLED", false),
			MasterKey: getEnv("ATTR_API_KEY_MASTER", ""),
			SkipPaths: getSliceEnv("ATTR_AUTH_SKIP_PATHS", []string{"/health", "/metrics"}),
		},
		RateLimit: RateLimitConfig{
			Enabled: getBoolEnv("ATTR_RATE_LIMIT_ENABLED", true),
			RPS:     getFloatEnv("ATTR_RATE_LIMIT_RPS", 200),
			Burst:   getIntEnv("ATTR_RATE_LIMIT_BURST", 50),
		},
		Log: LogConfig{
			Level:  getEnv("ATTR_LOG_LEVEL", "info"),
			Format: getEnv("ATTR_LOG_FORMAT", "json"),
		},
		Metrics: MetricsConfig{
			Enabled: getBoolEnv("ATTR_METRICS_ENABLED", true),
			Path:    getEnv("ATTR_METRICS_PATH", "/metrics"),
		},
		Attribution: AttributionConfig{
			HalfLife:          getDurationEnv("ATTR_TIME_DECAY_HALF_LIFE", 7*24*time.Hour),
			PositionFirstPct:  getFloatEnv("ATTR_POSITION_FIRST_PCT", 0.4),
			PositionLastPct:   getFloatEnv("ATTR_POSITION_LAST_PCT", 0.4),
			DataDrivenBlend:   getFloatEnv("ATTR_DATA_DRIVEN_BLEND", 0.6),
			TargetTouchpoints: getIntEnv("ATTR_TARGET_TOUCHPOINTS", 5),
			InsightsBonus:     getFloatEnv("ATTR_INSIGHTS_BONUS", 0.1),
			Tolerance:         getFloatEnv("ATTR_SCORE_TOLERANCE", 1e-6),
		},
		Discovery: DiscoveryConfig{
			Platform:               models.Platform(getEnv("ATTR_DISCOVERY_PLATFORM", string(models.PlatformPinterest))),
			BaseBoost:              getFloatEnv("ATTR_DISCOVERY_BASE_BOOST", 1.25),
			KeywordIncrement:       getFloatEnv("ATTR_DISCOVERY_KEYWORD_INCREMENT", 0.05),
			PersonaIncrement:       getFloatEnv("ATTR_DISCOVERY_PERSONA_INCREMENT", 0.15),
			KeywordGrowthThreshold: getFloatEnv("ATTR_DISCOVERY_KEYWORD_GROWTH_MIN", 10.0),
			AffinityCategories: getSliceEnv("ATTR_DISCOVERY_AFFINITY_CATEGORIES", []string{
				"home decor", "diy", "fashion", "beauty", "recipes", "weddings",
			}),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that required configuration is present and coherent.
func (c *Config) Validate() error {
	if c.Auth.Enabled && c.Auth.MasterKey == "" {
		return fmt.Errorf("ATTR_API_KEY_MASTER is required when auth is enabled")
	}
	if !c.Discovery.Platform.Valid() {
		return fmt.Errorf("unknown discovery platform %q", c.Discovery.Platform)
	}
	if c.Attribution.HalfLife <= 0 {
		return fmt.Errorf("time decay half-life must be positive")
	}
	if sum := c.Attribution.PositionFirstPct + c.Attribution.PositionLastPct; sum >= 1.0 {
		return fmt.Errorf("position_based end shares sum to %.2f, must be < 1", sum)
	}
	if b := c.Attribution.DataDrivenBlend; b < 0 || b > 1 {
		return fmt.Errorf("data driven blend must be in [0,1], got %.2f", b)
	}
	return nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production"
}

// DefaultAttributionConfig returns the built-in model parameters. Used by
// tests and embedded callers that bypass environment loading.
func DefaultAttributionConfig() AttributionConfig {
	return AttributionConfig{
		HalfLife:          7 * 24 * time.Hour,
		PositionFirstPct:  0.4,
		PositionLastPct:   0.4,
		DataDrivenBlend:   0.6,
		TargetTouchpoints: 5,
		InsightsBonus:     0.1,
		Tolerance:         1e-6,
	}
}

// DefaultDiscoveryConfig returns the built-in discovery-phase parameters.
func DefaultDiscoveryConfig() DiscoveryConfig {
	return DiscoveryConfig{
		Platform:               models.PlatformPinterest,
		BaseBoost:              1.25,
		KeywordIncrement:       0.05,
		PersonaIncrement:       0.15,
		KeywordGrowthThreshold: 10.0,
		AffinityCategories: []string{
			"home decor", "diy", "fashion", "beauty", "recipes", "weddings",
		},
	}
}

// Helper functions for reading environment variables

func getEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func getIntEnv(key string, def int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getFloatEnv(key string, def float64) float64 {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getBoolEnv(key string, def bool) bool {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func getDurationEnv(key string, def time.Duration) time.Duration {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func getSliceEnv(key string, def []string) []string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				result = append(result, p)
			}
		}
		return result
	}
	return def
}
