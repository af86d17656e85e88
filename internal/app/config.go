package app

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/yungbote/productforge-backend/internal/data/db"
	"github.com/yungbote/productforge-backend/internal/observability"
	"github.com/yungbote/productforge-backend/internal/platform/cache"
	"github.com/yungbote/productforge-backend/internal/platform/llm"
	"github.com/yungbote/productforge-backend/internal/platform/objectstore"
)

type Config struct {
	Env             string        `envconfig:"APP_ENV" default:"development"`
	LogMode         string        `envconfig:"LOG_MODE" default:"development"`
	Port            string        `envconfig:"PORT" default:"8080"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"15s"`
	CORSOrigins     []string      `envconfig:"CORS_ORIGINS"`

	DatabaseDriver   string `envconfig:"DATABASE_DRIVER" default:"postgres"`
	PostgresHost     string `envconfig:"POSTGRES_HOST" default:"localhost"`
	PostgresPort     string `envconfig:"POSTGRES_PORT" default:"5432"`
	PostgresUser     string `envconfig:"POSTGRES_USER" default:"postgres"`
	PostgresPassword string `envconfig:"POSTGRES_PASSWORD"`
	PostgresName     string `envconfig:"POSTGRES_NAME" default:"productforge"`
	PostgresSSLMode  string `envconfig:"POSTGRES_SSLMODE" default:"disable"`
	PostgresMaxConns int    `envconfig:"POSTGRES_MAX_CONNS" default:"20"`
	SQLitePath       string `envconfig:"SQLITE_PATH" default:"productforge.db"`

	JWTSecretKey   string        `envconfig:"JWT_SECRET_KEY" required:"true"`
	AccessTokenTTL time.Duration `envconfig:"ACCESS_TOKEN_TTL" default:"24h"`

	LLMProvider    string        `envconfig:"LLM_PROVIDER" default:"groq"`
	LLMAPIKey      string        `envconfig:"GROQ_API_KEY"`
	LLMBaseURL     string        `envconfig:"LLM_BASE_URL"`
	LLMModel       string        `envconfig:"LLM_MODEL" default:"llama-3.3-70b-versatile"`
	LLMTimeout     time.Duration `envconfig:"LLM_TIMEOUT" default:"90s"`
	LLMTemperature float32       `envconfig:"LLM_TEMPERATURE" default:"0.6"`
	LLMMaxTokens   int           `envconfig:"LLM_MAX_TOKENS" default:"4096"`
	OllamaURL      string        `envconfig:"OLLAMA_URL" default:"http://localhost:11434"`

	RedisAddr      string `envconfig:"REDIS_ADDR"`
	RedisPassword  string `envconfig:"REDIS_PASSWORD"`
	RedisDB        int    `envconfig:"REDIS_DB" default:"0"`
	RedisKeyPrefix string `envconfig:"REDIS_KEY_PREFIX" default:"productforge:"`

	GCSBucket          string `envconfig:"GCS_BUCKET"`
	GCSMode            string `envconfig:"GCS_MODE" default:"gcs"`
	GCSCredentialsFile string `envconfig:"GOOGLE_APPLICATION_CREDENTIALS"`
	GCSEmulatorHost    string `envconfig:"GCS_EMULATOR_HOST"`
	GCSPrefix          string `envconfig:"GCS_PREFIX" default:"backlogs"`

	OtelEnabled     bool              `envconfig:"OTEL_ENABLED" default:"false"`
	OtelServiceName string            `envconfig:"OTEL_SERVICE_NAME" default:"productforge-backend"`
	OtelEndpoint    string            `envconfig:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	OtelHeaders     map[string]string `envconfig:"OTEL_EXPORTER_OTLP_HEADERS"`
	OtelInsecure    bool              `envconfig:"OTEL_EXPORTER_OTLP_INSECURE" default:"false"`
	OtelSampleRatio float64           `envconfig:"OTEL_SAMPLE_RATIO" default:"1"`
	Version         string            `envconfig:"APP_VERSION" default:"dev"`
}

// LoadConfig reads .env when present, then the process environment.
func LoadConfig() (Config, error) {
	_ = godotenv.Load()
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return cfg, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.JWTSecretKey) == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	switch c.DatabaseDriver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("DATABASE_DRIVER must be postgres or sqlite, got %q", c.DatabaseDriver)
	}
	switch strings.ToLower(c.LLMProvider) {
	case "groq", "openai", "ollama":
	default:
		return fmt.Errorf("unknown LLM_PROVIDER %q", c.LLMProvider)
	}
	switch objectstore.Mode(c.GCSMode) {
	case objectstore.ModeGCS, objectstore.ModeGCSEmulator:
	default:
		return fmt.Errorf("unknown GCS_MODE %q", c.GCSMode)
	}
	if c.AccessTokenTTL <= 0 {
		return fmt.Errorf("ACCESS_TOKEN_TTL must be positive")
	}
	return nil
}

func (c Config) Database() db.Options {
	return db.Options{
		Driver:     c.DatabaseDriver,
		Host:       c.PostgresHost,
		Port:       c.PostgresPort,
		User:       c.PostgresUser,
		Password:   c.PostgresPassword,
		Name:       c.PostgresName,
		SSLMode:    c.PostgresSSLMode,
		SQLitePath: c.SQLitePath,
		MaxConns:   c.PostgresMaxConns,
	}
}

func (c Config) Provider() llm.ProviderConfig {
	return llm.ProviderConfig{
		Provider:  c.LLMProvider,
		APIKey:    c.LLMAPIKey,
		BaseURL:   c.LLMBaseURL,
		OllamaURL: c.OllamaURL,
		Timeout:   c.LLMTimeout,
	}
}

func (c Config) Gateway() llm.Options {
	return llm.Options{
		Model:       c.LLMModel,
		Timeout:     c.LLMTimeout,
		Temperature: c.LLMTemperature,
		MaxTokens:   c.LLMMaxTokens,
	}
}

func (c Config) Redis() cache.RedisConfig {
	return cache.RedisConfig{
		Addr:      c.RedisAddr,
		Password:  c.RedisPassword,
		DB:        c.RedisDB,
		KeyPrefix: c.RedisKeyPrefix,
	}
}

func (c Config) ObjectStore() objectstore.Config {
	return objectstore.Config{
		Bucket:          c.GCSBucket,
		Mode:            objectstore.Mode(c.GCSMode),
		CredentialsFile: c.GCSCredentialsFile,
		EmulatorHost:    c.GCSEmulatorHost,
		Prefix:          c.GCSPrefix,
	}
}

func (c Config) Otel() observability.OtelConfig {
	return observability.OtelConfig{
		Enabled:     c.OtelEnabled,
		ServiceName: c.OtelServiceName,
		Environment: c.Env,
		Version:     c.Version,
		SampleRatio: c.OtelSampleRatio,
		Endpoint:    c.OtelEndpoint,
		Headers:     c.OtelHeaders,
		Insecure:    c.OtelInsecure,
	}
}
