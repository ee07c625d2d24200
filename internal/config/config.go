package config

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/resumeforge/resumeforge/backend/go-services/pkg/logger"
)

// Config holds application configuration
type Config struct {
	Server    ServerConfig
	Redis     RedisConfig
	RateLimit RateLimitConfig
	JWT       JWTConfig
	LLM       LLMConfig
	History   HistoryConfig
}

type ServerConfig struct {
	Port         string
	Host         string
	Environment  string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type RedisConfig struct {
	Host      string
	Port      string
	Password  string
	DB        int
	SeqPrefix string
}

type RateLimitConfig struct {
	Enabled       bool
	UseRedis      bool
	RPS           float64
	Burst         int
	WindowSeconds int
}

type JWTConfig struct {
	Secret          string
	SessionTokenTTL time.Duration
}

type LLMConfig struct {
	Provider string // gemini | openai | none
	APIKey   string
	Model    string
	Timeout  time.Duration
}

type HistoryConfig struct {
	Limit           int
	SessionTTL      time.Duration
	JanitorInterval time.Duration
}

// LoadConfig loads configuration from environment variables and .env file
func LoadConfig() (*Config, error) {
	_ = godotenv.Load(".env")

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("SERVER_PORT", "5020")
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_ENVIRONMENT", "development")
	v.SetDefault("SERVER_READ_TIMEOUT", 30)
	v.SetDefault("SERVER_WRITE_TIMEOUT", 120)
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("REDIS_SEQ_PREFIX", "rewrite:seq:")
	v.SetDefault("RATE_LIMIT_ENABLED", true)
	v.SetDefault("RATE_LIMIT_USE_REDIS", false)
	v.SetDefault("RATE_LIMIT_RPS", 0.5)
	v.SetDefault("RATE_LIMIT_BURST", 5)
	v.SetDefault("RATE_LIMIT_WINDOW_SECONDS", 60)
	v.SetDefault("SESSION_TOKEN_TTL", 1440)
	v.SetDefault("LLM_PROVIDER", "none")
	v.SetDefault("LLM_TIMEOUT", 60)
	v.SetDefault("HISTORY_LIMIT", 100)
	v.SetDefault("SESSION_TTL", 120)
	v.SetDefault("SESSION_JANITOR_INTERVAL", 60)

	cfg := &Config{
		Server: ServerConfig{
			Port:         v.GetString("SERVER_PORT"),
			Host:         v.GetString("SERVER_HOST"),
			Environment:  v.GetString("SERVER_ENVIRONMENT"),
			ReadTimeout:  time.Duration(v.GetInt("SERVER_READ_TIMEOUT")) * time.Second,
			WriteTimeout: time.Duration(v.GetInt("SERVER_WRITE_TIMEOUT")) * time.Second,
		},
		Redis: RedisConfig{
			Host:      v.GetString("REDIS_HOST"),
			Port:      v.GetString("REDIS_PORT"),
			Password:  v.GetString("REDIS_PASSWORD"),
			DB:        v.GetInt("REDIS_DB"),
			SeqPrefix: v.GetString("REDIS_SEQ_PREFIX"),
		},
		RateLimit: RateLimitConfig{
			Enabled:       v.GetBool("RATE_LIMIT_ENABLED"),
			UseRedis:      v.GetBool("RATE_LIMIT_USE_REDIS"),
			RPS:           v.GetFloat64("RATE_LIMIT_RPS"),
			Burst:         v.GetInt("RATE_LIMIT_BURST"),
			WindowSeconds: v.GetInt("RATE_LIMIT_WINDOW_SECONDS"),
		},
		JWT: JWTConfig{
			Secret:          v.GetString("JWT_SECRET"),
			SessionTokenTTL: time.Duration(v.GetInt("SESSION_TOKEN_TTL")) * time.Minute,
		},
		LLM: LLMConfig{
			Provider: strings.ToLower(v.GetString("LLM_PROVIDER")),
			APIKey:   v.GetString("LLM_API_KEY"),
			Model:    v.GetString("LLM_MODEL"),
			Timeout:  time.Duration(v.GetInt("LLM_TIMEOUT")) * time.Second,
		},
		History: HistoryConfig{
			Limit:           v.GetInt("HISTORY_LIMIT"),
			SessionTTL:      time.Duration(v.GetInt("SESSION_TTL")) * time.Minute,
			JanitorInterval: time.Duration(v.GetInt("SESSION_JANITOR_INTERVAL")) * time.Second,
		},
	}

	// Basic validation
	if cfg.JWT.Secret == "" {
		logger.Warnf("JWT_SECRET is not set; session routes are unauthenticated")
	}
	if cfg.LLM.Provider != "none" && cfg.LLM.APIKey == "" {
		logger.Warnf("LLM_PROVIDER=%s but LLM_API_KEY is empty; AI rewrites disabled", cfg.LLM.Provider)
		cfg.LLM.Provider = "none"
	}

	return cfg, nil
}
