package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Session  SessionConfig
	Speech   SpeechConfig
	Admin    AdminConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	ClientURL          string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	DefaultLanguage    string
}

type DatabaseConfig struct {
	Connection      string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

type SessionConfig struct {
	// Store selects the live session backend: "memory" or "redis".
	Store string
	TTL   time.Duration
	// TurnBudget bounds one conversation turn; past it a "still working"
	// status is pushed before the turn completes normally.
	TurnBudget time.Duration
	// SweepInterval is how often the inactivity sweeper scans for idle
	// sessions; IdleGuidance is the silence after which one guidance
	// prompt is sent.
	SweepInterval time.Duration
	IdleGuidance  time.Duration
	// RetentionDays bounds how far back a returning user's language
	// preference is looked up.
	RetentionDays int
}

type SpeechConfig struct {
	// Enabled gates the audio turn endpoint; without it only text turns
	// are served.
	Enabled      bool
	SpeakingRate float64
}

type AdminConfig struct {
	JWTSecret string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			ClientURL:          getEnv("CLIENT_URL", "http://localhost:5173"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log.csv"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
			DefaultLanguage:    getEnv("DEFAULT_LANGUAGE", ""),
		},
		Database: DatabaseConfig{
			Connection:      getEnv("DB_CONNECTION_STRING", ""),
			MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 10),
			MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 50),
			ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", time.Hour),
		},
		Session: SessionConfig{
			Store:         getEnv("SESSION_STORE", "memory"),
			TTL:           getEnvAsDuration("SESSION_TTL", 30*time.Minute),
			TurnBudget:    getEnvAsDuration("TURN_BUDGET", 5*time.Second),
			SweepInterval: getEnvAsDuration("SWEEP_INTERVAL", 30*time.Second),
			IdleGuidance:  getEnvAsDuration("IDLE_GUIDANCE_AFTER", 2*time.Minute),
			RetentionDays: getEnvAsInt("RETENTION_DAYS", 30),
		},
		Speech: SpeechConfig{
			Enabled:      getEnvAsBool("SPEECH_ENABLED", false),
			SpeakingRate: getEnvAsFloat("SPEECH_SPEAKING_RATE", 1.0),
		},
		Admin: AdminConfig{
			JWTSecret: getEnv("ADMIN_JWT_SECRET", ""),
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

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 64); err == nil {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	return fallback
}
