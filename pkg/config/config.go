package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	JWT        JWTConfig
	GigaChat   GigaChatConfig
	Classifier ClassifierConfig
	Filter     FilterConfig
	Pipeline   PipelineConfig
	Logger     LoggerConfig
}

type LoggerConfig struct {
	Level string
}

type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type JWTConfig struct {
	SecretKey  string
	Expiration time.Duration
	RefreshExp time.Duration
}

type GigaChatConfig struct {
	APIKey             string
	Scope              string
	Model              string
	InsecureSkipVerify bool
}

type ClassifierConfig struct {
	Temperature float64
	Timeout     time.Duration
}

type FilterConfig struct {
	// AllowedApps and Keywords override the built-in defaults when non-empty.
	AllowedApps []string
	Keywords    []string
}

type PipelineConfig struct {
	// RetryTransient enables a single classifier retry on transient failure.
	RetryTransient bool
	// DedupEnabled suppresses repeated delivery of the same notification
	// within DedupWindow. Off by default: upstream webhook retries are then
	// reprocessed as brand-new events.
	DedupEnabled bool
	DedupWindow  time.Duration
}

func Load() (*Config, error) {
	// Try to load .env file from current directory or project root
	envFiles := []string{".env", "../.env", "../../.env"}
	for _, envFile := range envFiles {
		if err := godotenv.Load(envFile); err == nil {
			break
		}
	}
	// No .env file is fine; plain environment variables are used directly
	// (Docker/K8s deployments).

	readTimeout, _ := strconv.Atoi(getEnv("SERVER_READ_TIMEOUT", "30"))
	writeTimeout, _ := strconv.Atoi(getEnv("SERVER_WRITE_TIMEOUT", "30"))
	jwtExp, _ := strconv.Atoi(getEnv("JWT_EXPIRATION_HOURS", "24"))
	refreshExp, _ := strconv.Atoi(getEnv("JWT_REFRESH_EXPIRATION_HOURS", "168"))
	classifierTimeout, _ := strconv.Atoi(getEnv("CLASSIFIER_TIMEOUT_SECONDS", "8"))
	temperature, _ := strconv.ParseFloat(getEnv("CLASSIFIER_TEMPERATURE", "0.1"), 64)
	dedupWindow, _ := strconv.Atoi(getEnv("PIPELINE_DEDUP_WINDOW_SECONDS", "120"))
	insecureSkipVerify := getEnv("GIGACHAT_INSECURE_SKIP_VERIFY", "true") == "true"

	return &Config{
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			ReadTimeout:  time.Duration(readTimeout) * time.Second,
			WriteTimeout: time.Duration(writeTimeout) * time.Second,
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "granaflow"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		JWT: JWTConfig{
			SecretKey:  getEnv("JWT_SECRET_KEY", "your-secret-key-change-in-production"),
			Expiration: time.Duration(jwtExp) * time.Hour,
			RefreshExp: time.Duration(refreshExp) * time.Hour,
		},
		GigaChat: GigaChatConfig{
			APIKey:             getEnv("GIGACHAT_API_KEY", ""),
			Scope:              getEnv("GIGACHAT_SCOPE", "GIGACHAT_API_PERS"),
			Model:              getEnv("GIGACHAT_MODEL", "GigaChat"),
			InsecureSkipVerify: insecureSkipVerify,
		},
		Classifier: ClassifierConfig{
			Temperature: temperature,
			Timeout:     time.Duration(classifierTimeout) * time.Second,
		},
		Filter: FilterConfig{
			AllowedApps: splitEnv("FILTER_ALLOWED_APPS"),
			Keywords:    splitEnv("FILTER_KEYWORDS"),
		},
		Pipeline: PipelineConfig{
			RetryTransient: getEnv("PIPELINE_RETRY_TRANSIENT", "false") == "true",
			DedupEnabled:   getEnv("PIPELINE_DEDUP_ENABLED", "false") == "true",
			DedupWindow:    time.Duration(dedupWindow) * time.Second,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func splitEnv(key string) []string {
	raw := os.Getenv(key)
	if raw == "" {
		return nil
	}
	var values []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			values = append(values, part)
		}
	}
	return values
}
