package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Auth     AuthConfig
	Clerk    ClerkConfig
	Ai       AIConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	Version            string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	UserPurgeTopic     string
	OtelEnabled        bool
	OtelEndpoint       string
}

type DatabaseConfig struct {
	Driver     string // "mongo" or "postgres"
	MongoURI   string
	MongoDB    string
	Connection string // postgres DSN
}

type AuthConfig struct {
	JwtSecret         string
	JwtPublicKey      string // PEM, RS256
	AuthorizedParties []string
}

type ClerkConfig struct {
	SecretKey     string
	APIURL        string
	WebhookSecret string
}

type AIConfig struct {
	LLMProvider    string // "cloudflare", "ollama", "openai", "ark"
	LLMModel       string
	TimeoutSeconds int

	CloudflareAccountID string
	CloudflareAPIToken  string
	CloudflareEndpoint  string

	OllamaBaseURL string

	OpenAIKey     string
	OpenAIBaseURL string

	ArkAPIKey  string
	ArkBaseURL string
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, using system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", getEnv("PORT", "3000")),
			Environment:        getEnv("GO_ENV", "development"),
			Version:            getEnv("APP_VERSION", "alpha_0.0.9"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
			NatsURL:            getEnv("NATS_URL", ""),
			RedisURL:           getEnv("REDIS_URL", ""),
			UserPurgeTopic:     getEnv("USER_PURGE_TOPIC", "user.deleted"),
			OtelEnabled:        getEnvAsBool("OTEL_ENABLED", false),
			OtelEndpoint:       getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
		},
		Database: DatabaseConfig{
			Driver:     getEnv("STORE_DRIVER", "mongo"),
			MongoURI:   getEnv("MONGO_URI", "mongodb://localhost:27017"),
			MongoDB:    getEnv("MONGO_DB", "ai_chat"),
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Auth: AuthConfig{
			JwtSecret:         getEnv("JWT_SECRET", ""),
			JwtPublicKey:      getEnv("AUTH_JWT_PUBLIC_KEY", ""),
			AuthorizedParties: getEnvAsList("AUTH_AUTHORIZED_PARTIES"),
		},
		Clerk: ClerkConfig{
			SecretKey:     getEnv("CLERK_SECRET_KEY", ""),
			APIURL:        getEnv("CLERK_API_URL", "https://api.clerk.com"),
			WebhookSecret: getEnv("CLERK_WEBHOOK_SECRET", ""),
		},
		Ai: AIConfig{
			LLMProvider:    getEnv("LLM_PROVIDER", "cloudflare"),
			LLMModel:       getEnv("LLM_MODEL", ""),
			TimeoutSeconds: getEnvAsPositiveInt("LLM_TIMEOUT_SECONDS", 30),

			CloudflareAccountID: getEnv("CF_ACCOUNT_ID", ""),
			CloudflareAPIToken:  getEnv("CF_API_TOKEN", ""),
			CloudflareEndpoint:  getEnv("CF_API_ENDPOINT", "https://api.cloudflare.com/client/v4/accounts"),

			OllamaBaseURL: getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),

			OpenAIKey:     getEnv("OPENAI_API_KEY", ""),
			OpenAIBaseURL: getEnv("OPENAI_BASE_URL", ""),

			ArkAPIKey:  getEnv("ARK_API_KEY", ""),
			ArkBaseURL: getEnv("ARK_BASE_URL", "https://ark.cn-beijing.volces.com/api/v3"),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

// getEnvAsPositiveInt treats zero, negative and malformed values as unset.
func getEnvAsPositiveInt(key string, fallback int) int {
	if value := getEnvAsInt(key, fallback); value > 0 {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsList(key string) []string {
	raw := getEnv(key, "")
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
