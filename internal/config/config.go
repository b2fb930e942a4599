package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds runtime configuration parsed from environment variables.
type Config struct {
	HTTPAddr         string
	BackendURL       string
	APIStyle         string
	StateDSN         string
	RequestTimeout   time.Duration
	ShutdownTimeout  time.Duration
	CORSOrigins      []string
	CloudinaryURL    string
	CloudinaryFolder string
	DefaultLanguage  string
	DefaultDark      bool
	DevAdminUser     string
	DevAdminPassword string
}

// EmbeddedBackend is the BACKEND_URL value that starts the in-process dev backend.
const EmbeddedBackend = "embedded"

// FromEnv builds Config with defaults, overridden by environment variables.
func FromEnv() Config {
	return Config{
		HTTPAddr:         envOrDefault("HTTP_ADDR", ":8080"),
		BackendURL:       strings.TrimRight(envOrDefault("BACKEND_URL", "http://localhost:8000"), "/"),
		APIStyle:         envOrDefault("API_STYLE", "legacy"),
		StateDSN:         envOrDefault("STATE_DSN", "sqlite://catalog-state.db"),
		RequestTimeout:   envDuration("REQUEST_TIMEOUT_SECONDS", 10*time.Second),
		ShutdownTimeout:  envDuration("SHUTDOWN_TIMEOUT_SECONDS", 10*time.Second),
		CORSOrigins:      envList("CORS_ORIGINS", []string{"http://localhost:5173"}),
		CloudinaryURL:    envOrDefault("CLOUDINARY_URL", ""),
		CloudinaryFolder: envOrDefault("CLOUDINARY_FOLDER", "affiliate-catalog"),
		DefaultLanguage:  envOrDefault("DEFAULT_LANGUAGE", "id"),
		DefaultDark:      envBool("DEFAULT_DARK", false),
		DevAdminUser:     envOrDefault("DEV_ADMIN_USER", "admin"),
		DevAdminPassword: envOrDefault("DEV_ADMIN_PASSWORD", "admin123"),
	}
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		seconds, err := strconv.Atoi(v)
		if err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return def
}

func envBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func envList(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if s := strings.TrimSpace(part); s != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
