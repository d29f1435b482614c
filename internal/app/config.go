package app

import (
	"time"

	"github.com/joho/godotenv"

	"github.com/yungbote/supplesafe-backend/internal/data/db"
	"github.com/yungbote/supplesafe-backend/internal/modules/analysis"
	"github.com/yungbote/supplesafe-backend/internal/pkg/logger"
	"github.com/yungbote/supplesafe-backend/internal/platform/envutil"
)

type Config struct {
	Port    string
	LogMode string

	DB db.Config

	JWTSecretKey   string
	AccessTokenTTL time.Duration

	ExtractionAPIKey  string
	ExtractionBaseURL string
	ExtractionModel   string
	ExtractionTimeout time.Duration

	InteractionSelection string
	MaxLabelImageBytes   int

	RedisAddr           string
	RedisSessionChannel string

	LabelBucketName string

	AllowedOrigins []string

	WorkspaceIdleTimeout time.Duration

	OtelEnabled     bool
	OtelEndpoint    string
	OtelHeaders     string
	OtelInsecure    bool
	OtelSampleRatio float64
	Environment     string
	Version         string
}

// LoadDotEnv preloads variables from .env files; missing files are ignored.
func LoadDotEnv(files ...string) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		_ = godotenv.Load(f)
	}
}

func LoadConfig(log *logger.Logger) Config {
	extractionKey := envutil.String("EXTRACTION_API_KEY", "", nil)
	if extractionKey == "" {
		extractionKey = envutil.String("OPENAI_API_KEY", "", nil)
	}
	return Config{
		Port:    envutil.String("PORT", "8080", log),
		LogMode: envutil.String("LOG_MODE", "development", log),

		DB: db.Config{
			Driver:           envutil.String("DB_DRIVER", "postgres", log),
			SQLitePath:       envutil.String("SQLITE_PATH", "supplesafe.db", log),
			PostgresHost:     envutil.String("POSTGRES_HOST", "localhost", log),
			PostgresPort:     envutil.String("POSTGRES_PORT", "5432", log),
			PostgresUser:     envutil.String("POSTGRES_USER", "postgres", log),
			PostgresPassword: envutil.String("POSTGRES_PASSWORD", "", nil),
			PostgresName:     envutil.String("POSTGRES_NAME", "supplesafe", log),
		},

		JWTSecretKey:   envutil.String("JWT_SECRET_KEY", "defaultsecret", log),
		AccessTokenTTL: envutil.Seconds("ACCESS_TOKEN_TTL", 24*time.Hour, log),

		ExtractionAPIKey:  extractionKey,
		ExtractionBaseURL: envutil.String("EXTRACTION_BASE_URL", "", log),
		ExtractionModel:   envutil.String("EXTRACTION_MODEL", "gpt-4o-mini", log),
		ExtractionTimeout: envutil.Seconds("EXTRACTION_TIMEOUT_SECONDS", 60*time.Second, log),

		InteractionSelection: envutil.String("INTERACTION_SELECTION", "random", log),
		MaxLabelImageBytes:   envutil.Int("MAX_LABEL_IMAGE_BYTES", analysis.DefaultMaxImageBytes, log),

		RedisAddr:           envutil.String("REDIS_ADDR", "", log),
		RedisSessionChannel: envutil.String("REDIS_SESSION_CHANNEL", "supplesafe:session", log),

		LabelBucketName: envutil.String("LABEL_GCS_BUCKET_NAME", "", log),

		AllowedOrigins: envutil.List("CORS_ALLOWED_ORIGINS", nil),

		WorkspaceIdleTimeout: envutil.Seconds("WORKSPACE_IDLE_TIMEOUT_SECONDS", 2*time.Hour, log),

		OtelEnabled:     envutil.Bool("OTEL_ENABLED", false),
		OtelEndpoint:    envutil.String("OTEL_EXPORTER_OTLP_ENDPOINT", "", log),
		OtelHeaders:     envutil.String("OTEL_EXPORTER_OTLP_HEADERS", "", nil),
		OtelInsecure:    envutil.Bool("OTEL_EXPORTER_OTLP_INSECURE", false),
		OtelSampleRatio: float64(envutil.Int("OTEL_SAMPLER_PERCENT", 10, log)) / 100,
		Environment:     envutil.String("APP_ENV", "development", log),
		Version:         envutil.String("APP_VERSION", "dev", log),
	}
}
