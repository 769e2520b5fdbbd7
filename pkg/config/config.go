package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port             string
	DatabaseURL      string
	JWTSecret        string
	JWTAccessExpiry  time.Duration
	JWTRefreshExpiry time.Duration
	FrontendURL      string

	// Microsoft identity platform + Graph
	MicrosoftClientID     string
	MicrosoftClientSecret string
	MicrosoftTenant       string
	MicrosoftRedirectURI  string
	MicrosoftScopes       []string
	MicrosoftTokenURL     string
	GraphBaseURL          string
	HTTPTimeout           time.Duration

	// Calendar sync
	SyncEnabled       bool
	SyncInterval      time.Duration
	SyncMinInterval   time.Duration
	SyncWorkers       int
	SyncPageSize      int
	RefreshRateLimit  int
	RefreshRateWindow time.Duration

	// Notifications (optional)
	FirebaseCredentials string
	GoogleProjectID     string
	GooglePubSubTopic   string
	GoogleCredentials   string

	// Logging
	LogFile       string
	LogMaxSizeMB  int
	LogMaxBackups int
	LogMaxAgeDays int
}

func Load() *Config {
	// Load .env file if it exists
	_ = godotenv.Load()

	tenant := getEnv("MS_TENANT", "common")

	return &Config{
		Port:             getEnv("PORT", "8080"),
		DatabaseURL:      getEnv("DATABASE_URL", "host=localhost user=postgres password=postgres dbname=meetings port=5432 sslmode=disable"),
		JWTSecret:        getEnv("JWT_SECRET", "your-secret-key-change-in-production"),
		JWTAccessExpiry:  getDuration("JWT_ACCESS_EXPIRY", 15*time.Minute),
		JWTRefreshExpiry: getDuration("JWT_REFRESH_EXPIRY", 168*time.Hour), // 7 days
		FrontendURL:      getEnv("FRONTEND_URL", "http://localhost:5173"),

		MicrosoftClientID:     getEnv("MS_CLIENT_ID", ""),
		MicrosoftClientSecret: getEnv("MS_CLIENT_SECRET", ""),
		MicrosoftTenant:       tenant,
		MicrosoftRedirectURI:  getEnv("MS_REDIRECT_URI", "http://localhost:8080/api/calendar/callback"),
		MicrosoftScopes:       getList("MS_SCOPES", []string{"offline_access", "User.Read", "Calendars.Read"}),
		MicrosoftTokenURL:     getEnv("MS_TOKEN_URL", "https://login.microsoftonline.com/"+tenant+"/oauth2/v2.0/token"),
		GraphBaseURL:          strings.TrimRight(getEnv("GRAPH_BASE_URL", "https://graph.microsoft.com/v1.0"), "/"),
		HTTPTimeout:           getDuration("HTTP_TIMEOUT", 30*time.Second),

		SyncEnabled:       getBool("SYNC_ENABLED", true),
		SyncInterval:      getDuration("SYNC_INTERVAL", 15*time.Minute),
		SyncMinInterval:   getDuration("SYNC_MIN_INTERVAL", 5*time.Minute),
		SyncWorkers:       getInt("SYNC_WORKERS", 4),
		SyncPageSize:      getInt("SYNC_PAGE_SIZE", 50),
		RefreshRateLimit:  getInt("REFRESH_RATE_LIMIT", 10),
		RefreshRateWindow: getDuration("REFRESH_RATE_WINDOW", 5*time.Minute),

		FirebaseCredentials: getEnv("FIREBASE_CREDENTIALS", ""),
		GoogleProjectID:     getEnv("GOOGLE_PROJECT_ID", ""),
		GooglePubSubTopic:   getEnv("GOOGLE_PUBSUB_TOPIC", ""),
		GoogleCredentials:   getEnv("GOOGLE_CREDENTIALS", ""),

		LogFile:       getEnv("LOG_FILE", ""),
		LogMaxSizeMB:  getInt("LOG_MAX_SIZE_MB", 50),
		LogMaxBackups: getInt("LOG_MAX_BACKUPS", 5),
		LogMaxAgeDays: getInt("LOG_MAX_AGE_DAYS", 28),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// getList splits a comma or space separated value
func getList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	fields := strings.FieldsFunc(value, func(r rune) bool { return r == ',' || r == ' ' })
	if len(fields) == 0 {
		return defaultValue
	}
	return fields
}
