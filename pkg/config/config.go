package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database DatabaseConfig
	Redis    RedisConfig
	CORS     CORSConfig
	Log      LogConfig
	Sheets   SheetsConfig
	Cache    CacheConfig
	Warmer   WarmerConfig
	Snapshot SnapshotConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// SheetsConfig governs access to the upstream spreadsheet service.
type SheetsConfig struct {
	APIKey       string
	RateLimitRPS float64
	Timeout      time.Duration
}

// CacheConfig tunes the result cache fronting the pipeline.
type CacheConfig struct {
	Enabled    bool
	DefaultTTL time.Duration
	Retention  time.Duration
}

// WarmerConfig controls the background cache warmer.
type WarmerConfig struct {
	Enabled     bool
	Interval    time.Duration
	SourcePause time.Duration
	Retries     int
}

// SnapshotConfig toggles persistence of successful results.
type SnapshotConfig struct {
	Enabled bool
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Sheets = SheetsConfig{
		APIKey:       v.GetString("SHEETS_API_KEY"),
		RateLimitRPS: v.GetFloat64("SHEETS_RATE_LIMIT_RPS"),
		Timeout:      parseDuration(v.GetString("SHEETS_TIMEOUT"), 30*time.Second),
	}

	cfg.Cache = CacheConfig{
		Enabled:    v.GetBool("ENABLE_CACHE"),
		DefaultTTL: parseDuration(v.GetString("CACHE_DEFAULT_TTL"), 30*time.Minute),
		Retention:  parseDuration(v.GetString("CACHE_RETENTION"), 24*time.Hour),
	}

	cfg.Warmer = WarmerConfig{
		Enabled:     v.GetBool("ENABLE_WARMER"),
		Interval:    parseDuration(v.GetString("WARMER_INTERVAL"), 30*time.Minute),
		SourcePause: parseDuration(v.GetString("WARMER_SOURCE_PAUSE"), 5*time.Second),
		Retries:     v.GetInt("WARMER_RETRIES"),
	}

	cfg.Snapshot = SnapshotConfig{
		Enabled: v.GetBool("ENABLE_SNAPSHOTS"),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "exam_schedules")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("SHEETS_API_KEY", "")
	v.SetDefault("SHEETS_RATE_LIMIT_RPS", 1.0)
	v.SetDefault("SHEETS_TIMEOUT", "30s")

	v.SetDefault("ENABLE_CACHE", true)
	v.SetDefault("CACHE_DEFAULT_TTL", "30m")
	v.SetDefault("CACHE_RETENTION", "24h")

	v.SetDefault("ENABLE_WARMER", false)
	v.SetDefault("WARMER_INTERVAL", "30m")
	v.SetDefault("WARMER_SOURCE_PAUSE", "5s")
	v.SetDefault("WARMER_RETRIES", 2)

	v.SetDefault("ENABLE_SNAPSHOTS", false)
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
