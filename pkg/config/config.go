package config

import (
	"errors"
	"fmt"
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

	Database   DatabaseConfig
	Redis      RedisConfig
	JWT        JWTConfig
	CORS       CORSConfig
	Log        LogConfig
	CRM        CRMConfig
	Batch      BatchConfig
	Aggregates AggregatesConfig
	Exports    ExportsConfig
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

type JWTConfig struct {
	Secret     string
	Expiration time.Duration
	Issuer     string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// CRMConfig points the batch dispatcher at the CRM object API.
type CRMConfig struct {
	BaseURL         string
	Token           string
	Timeout         time.Duration
	SessionObjectID string
	BookingObjectID string
	MaxBatchSize    int
}

// BatchConfig bounds batch operation inputs.
type BatchConfig struct {
	MaxSelectionSize int
}

// AggregatesConfig tunes cached grouped-count refresh behaviour.
type AggregatesConfig struct {
	CacheTTL       time.Duration
	RefreshWorkers int
}

// ExportsConfig gates the session export endpoint.
type ExportsConfig struct {
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

	cfg.JWT = JWTConfig{
		Secret:     v.GetString("JWT_SECRET"),
		Expiration: parseDuration(v.GetString("JWT_EXPIRATION"), 24*time.Hour),
		Issuer:     v.GetString("JWT_ISSUER"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.CRM = CRMConfig{
		BaseURL:         strings.TrimRight(v.GetString("CRM_BASE_URL"), "/"),
		Token:           v.GetString("CRM_API_TOKEN"),
		Timeout:         parseDuration(v.GetString("CRM_TIMEOUT"), 15*time.Second),
		SessionObjectID: v.GetString("CRM_SESSION_OBJECT_ID"),
		BookingObjectID: v.GetString("CRM_BOOKING_OBJECT_ID"),
		MaxBatchSize:    v.GetInt("CRM_MAX_BATCH_SIZE"),
	}

	cfg.Batch = BatchConfig{
		MaxSelectionSize: v.GetInt("BATCH_MAX_SELECTION_SIZE"),
	}

	cfg.Aggregates = AggregatesConfig{
		CacheTTL:       parseDuration(v.GetString("AGGREGATES_CACHE_TTL"), 10*time.Minute),
		RefreshWorkers: v.GetInt("AGGREGATES_REFRESH_WORKERS"),
	}

	cfg.Exports = ExportsConfig{
		Enabled: v.GetBool("ENABLE_EXPORTS"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.CRM.BaseURL == "" {
		return fmt.Errorf("CRM_BASE_URL is required")
	}
	if c.Env == EnvProduction {
		if c.JWT.Secret == "" {
			return fmt.Errorf("JWT_SECRET is required in production")
		}
		if c.CRM.Token == "" {
			return fmt.Errorf("CRM_API_TOKEN is required in production")
		}
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "examdesk")
	v.SetDefault("DB_NAME", "examdesk_replica")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 20)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_EXPIRATION", "24h")
	v.SetDefault("JWT_ISSUER", "examdesk-api")

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("CRM_BASE_URL", "https://api.crm.example.com")
	v.SetDefault("CRM_TIMEOUT", "15s")
	v.SetDefault("CRM_SESSION_OBJECT_ID", "2-5010001")
	v.SetDefault("CRM_BOOKING_OBJECT_ID", "2-5010002")
	v.SetDefault("CRM_MAX_BATCH_SIZE", 100)

	v.SetDefault("BATCH_MAX_SELECTION_SIZE", 200)

	v.SetDefault("AGGREGATES_CACHE_TTL", "10m")
	v.SetDefault("AGGREGATES_REFRESH_WORKERS", 2)

	v.SetDefault("ENABLE_EXPORTS", true)
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
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
