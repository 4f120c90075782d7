// File: internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type HTTPConfig struct {
	Port           int           `yaml:"port"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	RankRateLimit  int           `yaml:"rank_rate_limit"` // ranking triggers per recruiter per window; 0 disables
	RankRateWindow time.Duration `yaml:"rank_rate_window"`
}

type AuthConfig struct {
	JWTSecret  string        `yaml:"jwt_secret"`
	CookieName string        `yaml:"cookie_name"`
	TokenTTL   time.Duration `yaml:"token_ttl"`
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type DatabaseConfig struct {
	URL      string `yaml:"url"`
	MaxConns int32  `yaml:"max_conns"`
}

type RedisConfig struct {
	URL        string        `yaml:"url"`
	Password   string        `yaml:"password"`
	DB         int           `yaml:"db"`
	StatusTTL  time.Duration `yaml:"status_ttl"`
	ResultsTTL time.Duration `yaml:"results_ttl"`
}

type RankingConfig struct {
	Workers      int           `yaml:"workers"`       // background runs executing at once
	QueueSize    int           `yaml:"queue_size"`    // runs waiting for a worker
	Concurrency  int           `yaml:"concurrency"`   // scoring calls in flight per run
	ScoreTimeout time.Duration `yaml:"score_timeout"` // per scoring call
	LockTTL      time.Duration `yaml:"lock_ttl"`
	StaleAfter   time.Duration `yaml:"stale_after"`
	ReapInterval time.Duration `yaml:"reap_interval"`
	FreshFor     time.Duration `yaml:"fresh_for"` // reuse cached results younger than this
}

type ScoringConfig struct {
	Provider        string        `yaml:"provider"` // http|openai|gemini
	Endpoint        string        `yaml:"endpoint"`
	APIKey          string        `yaml:"api_key"`
	Model           string        `yaml:"model"`
	BaseURL         string        `yaml:"base_url"`
	ConcurrentLimit int           `yaml:"concurrent_limit"` // across all runs
	MaxRetries      int           `yaml:"max_retries"`
	BaseBackoff     time.Duration `yaml:"base_backoff"`
	MaxResumeTokens int           `yaml:"max_resume_tokens"`

	// optional second provider asked when the primary fails
	FallbackProvider string `yaml:"fallback_provider"`
	FallbackAPIKey   string `yaml:"fallback_api_key"`
	FallbackModel    string `yaml:"fallback_model"`
}

type StorageConfig struct {
	Bucket          string `yaml:"bucket"`
	Endpoint        string `yaml:"endpoint"` // R2/MinIO; empty for AWS
	Region          string `yaml:"region"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
}

type ParserConfig struct {
	Endpoint string        `yaml:"endpoint"`
	Timeout  time.Duration `yaml:"timeout"`
}

type EventsConfig struct {
	AMQPURL string `yaml:"amqp_url"`
	Queue   string `yaml:"queue"`
}

type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Auth     AuthConfig     `yaml:"auth"`
	Log      LogConfig      `yaml:"log"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Ranking  RankingConfig  `yaml:"ranking"`
	Scoring  ScoringConfig  `yaml:"scoring"`
	Storage  StorageConfig  `yaml:"storage"`
	Parser   ParserConfig   `yaml:"parser"`
	Events   EventsConfig   `yaml:"events"`

	Runtime RuntimeConfig `yaml:"-"`
}

// LoadConfig reads the YAML file at path. A .env file next to the working
// directory is loaded first so ${VAR} references in the YAML resolve.
func LoadConfig(path string, dev bool) (*Config, error) {
	_ = godotenv.Load()

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(b, dev)
}

// Parse builds a Config from raw YAML, applying defaults and validation.
func Parse(b []byte, dev bool) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(b))), &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg.Runtime.Dev = dev
	return &cfg, nil
}

func (cfg *Config) applyDefaults() {
	if cfg.HTTP.Port == 0 {
		cfg.HTTP.Port = 8080
	}
	if cfg.HTTP.RequestTimeout <= 0 {
		cfg.HTTP.RequestTimeout = 15 * time.Second
	}
	cfg.HTTP.RankRateWindow = normalizeTTL(cfg.HTTP.RankRateWindow, time.Minute)
	if cfg.Auth.CookieName == "" {
		cfg.Auth.CookieName = "hirehub_session"
	}
	if cfg.Auth.TokenTTL <= 0 {
		cfg.Auth.TokenTTL = 12 * time.Hour
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Database.MaxConns <= 0 {
		cfg.Database.MaxConns = 10
	}
	cfg.Redis.StatusTTL = normalizeTTL(cfg.Redis.StatusTTL, 24*time.Hour)
	cfg.Redis.ResultsTTL = normalizeTTL(cfg.Redis.ResultsTTL, 24*time.Hour)

	if cfg.Ranking.Workers <= 0 {
		cfg.Ranking.Workers = 4
	}
	if cfg.Ranking.QueueSize <= 0 {
		cfg.Ranking.QueueSize = cfg.Ranking.Workers * 4
	}
	if cfg.Ranking.Concurrency <= 0 {
		cfg.Ranking.Concurrency = 10
	}
	cfg.Ranking.ScoreTimeout = normalizeTTL(cfg.Ranking.ScoreTimeout, 35*time.Second)
	cfg.Ranking.LockTTL = normalizeTTL(cfg.Ranking.LockTTL, time.Minute)
	cfg.Ranking.StaleAfter = normalizeTTL(cfg.Ranking.StaleAfter, 30*time.Minute)
	cfg.Ranking.ReapInterval = normalizeTTL(cfg.Ranking.ReapInterval, 5*time.Minute)
	if cfg.Ranking.FreshFor < 0 {
		cfg.Ranking.FreshFor = 0
	} else if cfg.Ranking.FreshFor == 0 {
		cfg.Ranking.FreshFor = 6 * time.Hour
	}

	cfg.Scoring.Provider = strings.ToLower(strings.TrimSpace(cfg.Scoring.Provider))
	if cfg.Scoring.Provider == "" {
		cfg.Scoring.Provider = "http"
	}
	if cfg.Scoring.ConcurrentLimit <= 0 {
		cfg.Scoring.ConcurrentLimit = 16
	}
	if cfg.Scoring.MaxRetries <= 0 {
		cfg.Scoring.MaxRetries = 3
	}
	cfg.Scoring.FallbackProvider = strings.ToLower(strings.TrimSpace(cfg.Scoring.FallbackProvider))
	cfg.Scoring.BaseBackoff = normalizeTTL(cfg.Scoring.BaseBackoff, time.Second)
	if cfg.Scoring.MaxResumeTokens <= 0 {
		cfg.Scoring.MaxResumeTokens = 6000
	}
	if cfg.Scoring.Model == "" {
		switch cfg.Scoring.Provider {
		case "gemini":
			cfg.Scoring.Model = "gemini-2.0-flash"
		default:
			cfg.Scoring.Model = "gpt-4o-mini"
		}
	}

	if cfg.Storage.Region == "" {
		cfg.Storage.Region = "auto"
	}
	cfg.Parser.Timeout = normalizeTTL(cfg.Parser.Timeout, 60*time.Second)
	if cfg.Events.Queue == "" {
		cfg.Events.Queue = "ranking-status"
	}
}

// Minimal validation
func (cfg *Config) validate() error {
	if cfg.Database.URL == "" {
		return errors.New("database.url is required")
	}
	if cfg.Redis.URL == "" {
		return errors.New("redis.url is required")
	}
	if cfg.Auth.JWTSecret == "" {
		return errors.New("auth.jwt_secret is required")
	}
	switch cfg.Scoring.Provider {
	case "http":
		if cfg.Scoring.Endpoint == "" {
			return errors.New("scoring.endpoint is required for the http provider")
		}
	case "openai", "gemini":
		if cfg.Scoring.APIKey == "" {
			return fmt.Errorf("scoring.api_key is required for the %s provider", cfg.Scoring.Provider)
		}
	default:
		return fmt.Errorf("unknown scoring.provider %q", cfg.Scoring.Provider)
	}
	switch cfg.Scoring.FallbackProvider {
	case "", "http":
	case "openai", "gemini":
		if cfg.Scoring.FallbackAPIKey == "" {
			return errors.New("scoring.fallback_api_key is required with a fallback provider")
		}
	default:
		return fmt.Errorf("unknown scoring.fallback_provider %q", cfg.Scoring.FallbackProvider)
	}
	if cfg.Ranking.LockTTL < 3*time.Second {
		return errors.New("ranking.lock_ttl must be at least 3s")
	}
	return nil
}

func normalizeTTL(d, def time.Duration) time.Duration {
	if d <= 0 {
		return def
	}
	return d
}
