package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Store backends.
const (
	StoreJSON     = "json"
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
)

// Object storage backends.
const (
	StorageLocal = "local"
	StorageMinIO = "minio"
)

// DatabaseConfig holds SQL database connection settings.
// Driver is either "sqlite" or "postgres"; SQLitePath is only used by the former.
type DatabaseConfig struct {
	Driver             string
	SQLitePath         string
	Host               string
	Port               string
	User               string
	Password           string
	Name               string
	SSLMode            string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeSec int
}

// StoreConfig selects where tickets and users are persisted.
type StoreConfig struct {
	Backend  string
	JSONPath string
}

// MinIOConfig holds object storage settings for MinIO.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// StorageConfig selects where uploaded files live.
type StorageConfig struct {
	Backend       string
	LocalDir      string
	PublicBaseURL string
	PresignExpiry time.Duration
	MinIO         MinIOConfig
}

// AIConfig holds settings for the OpenAI-compatible vendor API.
type AIConfig struct {
	APIKey           string
	BaseURL          string
	ChatModel        string
	VisionModel      string
	TTSModel         string
	TTSVoice         string
	STTModel         string
	Temperature      float64
	MaxTokens        int
	Timeout          time.Duration
	SystemPromptFile string
}

// AuthConfig holds token signing and bootstrap admin settings.
type AuthConfig struct {
	JWTSecret     string
	TokenTTL      time.Duration
	BcryptCost    int
	AdminUsername string
	AdminPassword string
}

// RedisConfig configures the optional TTS audio cache. Empty Addr disables it.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TTSTTL   time.Duration
}

// SMTPConfig configures ticket notifications. Empty Host disables them.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	To       string
}

// LoggerConfig controls application log output.
type LoggerConfig struct {
	Level  string
	Format string
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables. Sensitive values are not hardcoded.
type AppConfig struct {
	AppHost           string
	Port              string
	CORSOrigins       string
	MaxUploadMB       int
	AllowedUploadMIME []string
	Store             StoreConfig
	Database          DatabaseConfig
	Storage           StorageConfig
	AI                AIConfig
	Auth              AuthConfig
	Redis             RedisConfig
	SMTP              SMTPConfig
	Logger            LoggerConfig
}

// MaxUploadBytes returns the upload size limit in bytes.
func (c *AppConfig) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) * 1024 * 1024
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// This function does not require a .env file; real environment variables take precedence.
func Load() *AppConfig {
	backend := strings.ToLower(getEnv("STORE_BACKEND", StoreJSON))
	driver := backend
	if driver == StoreJSON {
		driver = ""
	}
	allowed := getEnvList("UPLOAD_ALLOWED_TYPES", []string{
		"image/jpeg", "image/png", "image/webp", "image/heic", "application/pdf",
	})

	return &AppConfig{
		AppHost:           getEnv("APP_HOST", "localhost:8080"),
		Port:              getEnv("PORT", "8080"),
		CORSOrigins:       getEnv("CORS_ORIGINS", "*"),
		MaxUploadMB:       getEnvInt("MAX_UPLOAD_MB", 10),
		AllowedUploadMIME: allowed,
		Store: StoreConfig{
			Backend:  backend,
			JSONPath: getEnv("STORE_JSON_PATH", "data/tickets.json"),
		},
		Database: DatabaseConfig{
			Driver:             driver,
			SQLitePath:         getEnv("SQLITE_PATH", "data/tickets.db"),
			Host:               getEnv("DB_HOST", ""),
			Port:               getEnv("DB_PORT", "5432"),
			User:               getEnv("DB_USER", ""),
			Password:           getEnv("DB_PASSWORD", ""),
			Name:               getEnv("DB_NAME", ""),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetimeSec: getEnvInt("DB_CONN_MAX_LIFETIME_SEC", 300),
		},
		Storage: StorageConfig{
			Backend:       strings.ToLower(getEnv("STORAGE_BACKEND", StorageLocal)),
			LocalDir:      getEnv("UPLOAD_DIR", "uploads"),
			PublicBaseURL: getEnv("UPLOAD_PUBLIC_URL", "/uploads"),
			PresignExpiry: getEnvDuration("UPLOAD_PRESIGN_EXPIRY", 24*time.Hour),
			MinIO: MinIOConfig{
				Endpoint:  getEnv("MINIO_ENDPOINT", ""),
				AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
				SecretKey: getEnv("MINIO_SECRET_KEY", ""),
				Bucket:    getEnv("MINIO_BUCKET", ""),
				UseSSL:    getEnvBool("MINIO_USE_SSL", false),
			},
		},
		AI: AIConfig{
			APIKey:           getEnv("AI_API_KEY", ""),
			BaseURL:          getEnv("AI_BASE_URL", ""),
			ChatModel:        getEnv("AI_CHAT_MODEL", "gpt-4o-mini"),
			VisionModel:      getEnv("AI_VISION_MODEL", "gpt-4o-mini"),
			TTSModel:         getEnv("AI_TTS_MODEL", "tts-1"),
			TTSVoice:         getEnv("AI_TTS_VOICE", "alloy"),
			STTModel:         getEnv("AI_STT_MODEL", "whisper-1"),
			Temperature:      getEnvFloat("AI_TEMPERATURE", 0.3),
			MaxTokens:        getEnvInt("AI_MAX_TOKENS", 800),
			Timeout:          getEnvDuration("AI_TIMEOUT", 60*time.Second),
			SystemPromptFile: getEnv("AI_SYSTEM_PROMPT_FILE", ""),
		},
		Auth: AuthConfig{
			JWTSecret:     getEnv("JWT_SECRET", ""),
			TokenTTL:      getEnvDuration("JWT_TTL", 12*time.Hour),
			BcryptCost:    getEnvInt("BCRYPT_COST", 10),
			AdminUsername: getEnv("ADMIN_USERNAME", "admin"),
			AdminPassword: getEnv("ADMIN_PASSWORD", ""),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
			TTSTTL:   getEnvDuration("TTS_CACHE_TTL", 24*time.Hour),
		},
		SMTP: SMTPConfig{
			Host:     getEnv("SMTP_HOST", ""),
			Port:     getEnvInt("SMTP_PORT", 587),
			Username: getEnv("SMTP_USERNAME", ""),
			Password: getEnv("SMTP_PASSWORD", ""),
			From:     getEnv("SMTP_FROM", ""),
			To:       getEnv("SMTP_TO", ""),
		},
		Logger: LoggerConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}

func getEnvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err == nil {
			return f
		}
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err == nil {
			return d
		}
	}
	return def
}

// getEnvList splits a comma separated value, dropping empty entries.
func getEnvList(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	out := make([]string, 0)
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
