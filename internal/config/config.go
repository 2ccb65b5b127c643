package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	Database DatabaseConfig
	Redis    RedisConfig
	Server   ServerConfig
	Engine   EngineConfig
	Scraper  ScraperConfig
	Client   ClientConfig
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string //nolint:gosec // G117: DB connection config
	DBName   string
	SSLMode  string
	MaxConns int
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Addr     string
	Password string //nolint:gosec // G117: Redis connection config
	DB       int
	TTL      time.Duration
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	CORSOrigins  []string
	RateLimit    float64
	RateBurst    int
}

// EngineConfig holds question/classification engine settings.
type EngineConfig struct {
	APIKey              string //nolint:gosec // G117: API credential config
	ContentModel        string
	QuestionModel       string
	ClassificationModel string
	MaxQuestions        int
}

// ScraperConfig holds page-fetch settings.
type ScraperConfig struct {
	Timeout      time.Duration
	MaxBodyBytes int64
}

// ClientConfig holds settings for the terminal client.
type ClientConfig struct {
	BaseURL     string
	Timeout     time.Duration
	SessionFile string
}

// Load reads configuration from environment variables. Defaults are safe
// for local development only.
func Load() (*Config, error) {
	dbPort, err := getEnvInt("VISITLENS_DB_PORT", 5432)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	dbMaxConns, err := getEnvInt("VISITLENS_DB_MAX_CONNS", 25)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	redisDB, err := getEnvInt("VISITLENS_REDIS_DB", 0)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	redisTTL, err := getEnvDuration("VISITLENS_REDIS_TTL", time.Hour)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	readTimeout, err := getEnvDuration("VISITLENS_SERVER_READ_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	writeTimeout, err := getEnvDuration("VISITLENS_SERVER_WRITE_TIMEOUT", 60*time.Second)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	rateLimit, err := getEnvFloat("VISITLENS_RATE_LIMIT", 5)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	rateBurst, err := getEnvInt("VISITLENS_RATE_BURST", 10)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	maxQuestions, err := getEnvInt("VISITLENS_ENGINE_MAX_QUESTIONS", 5)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	scrapeTimeout, err := getEnvDuration("VISITLENS_SCRAPER_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	scrapeMaxBody, err := getEnvInt("VISITLENS_SCRAPER_MAX_BODY_KB", 2048)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	clientTimeout, err := getEnvDuration("VISITLENS_CLIENT_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	cfg := &Config{
		Database: DatabaseConfig{
			Host:     getEnv("VISITLENS_DB_HOST", "localhost"),
			Port:     dbPort,
			User:     getEnv("VISITLENS_DB_USER", "visitlens"),
			Password: getEnv("VISITLENS_DB_PASSWORD", ""),
			DBName:   getEnv("VISITLENS_DB_NAME", "visitlens_dev"),
			SSLMode:  getEnv("VISITLENS_DB_SSLMODE", "disable"),
			MaxConns: dbMaxConns,
		},
		Redis: RedisConfig{
			Addr:     getEnv("VISITLENS_REDIS_ADDR", "localhost:6379"),
			Password: getEnv("VISITLENS_REDIS_PASSWORD", ""),
			DB:       redisDB,
			TTL:      redisTTL,
		},
		Server: ServerConfig{
			Addr:         getEnv("VISITLENS_SERVER_ADDR", ":8080"),
			ReadTimeout:  readTimeout,
			WriteTimeout: writeTimeout,
			CORSOrigins:  getEnvList("VISITLENS_CORS_ORIGINS", []string{"http://localhost:3000"}),
			RateLimit:    rateLimit,
			RateBurst:    rateBurst,
		},
		Engine: EngineConfig{
			APIKey:              getEnv("VISITLENS_OPENAI_API_KEY", ""),
			ContentModel:        getEnv("VISITLENS_OPENAI_CONTENT_MODEL", "gpt-4o"),
			QuestionModel:       getEnv("VISITLENS_OPENAI_QUESTION_MODEL", "gpt-4o"),
			ClassificationModel: getEnv("VISITLENS_OPENAI_CLASSIFICATION_MODEL", "gpt-4o"),
			MaxQuestions:        maxQuestions,
		},
		Scraper: ScraperConfig{
			Timeout:      scrapeTimeout,
			MaxBodyBytes: int64(scrapeMaxBody) * 1024,
		},
		Client: ClientConfig{
			BaseURL:     getEnv("VISITLENS_API_URL", "http://localhost:8080"),
			Timeout:     clientTimeout,
			SessionFile: getEnv("VISITLENS_SESSION_FILE", defaultSessionFile()),
		},
	}

	err = cfg.validate()
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	return cfg, nil
}

// validate checks required fields and value bounds.
func (c *Config) validate() error {
	if c.Engine.APIKey == "" {
		log.Warn().Msg("VISITLENS_OPENAI_API_KEY is not set; the engine will serve fallback questions only")
	}

	if c.Database.Port < 1 || c.Database.Port > 65535 {
		return fmt.Errorf("VISITLENS_DB_PORT must be 1-65535, got %d", c.Database.Port)
	}
	if c.Database.MaxConns < 1 {
		return fmt.Errorf("VISITLENS_DB_MAX_CONNS must be >= 1, got %d", c.Database.MaxConns)
	}
	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("VISITLENS_SERVER_READ_TIMEOUT must be positive, got %s", c.Server.ReadTimeout)
	}
	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("VISITLENS_SERVER_WRITE_TIMEOUT must be positive, got %s", c.Server.WriteTimeout)
	}
	if c.Server.RateLimit <= 0 {
		return fmt.Errorf("VISITLENS_RATE_LIMIT must be positive, got %v", c.Server.RateLimit)
	}
	if c.Engine.MaxQuestions < 1 {
		return fmt.Errorf("VISITLENS_ENGINE_MAX_QUESTIONS must be >= 1, got %d", c.Engine.MaxQuestions)
	}
	if c.Scraper.Timeout <= 0 {
		return fmt.Errorf("VISITLENS_SCRAPER_TIMEOUT must be positive, got %s", c.Scraper.Timeout)
	}

	return nil
}

// DSN returns the PostgreSQL connection string.
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

func defaultSessionFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".visitlens-session.json"
	}
	return filepath.Join(dir, "visitlens", "session.json")
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("parsing %s=%q as int: %w", key, v, err)
	}
	return n, nil
}

func getEnvFloat(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing %s=%q as float: %w", key, v, err)
	}
	return f, nil
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("parsing %s=%q as duration: %w", key, v, err)
	}
	return d, nil
}

func getEnvList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
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
