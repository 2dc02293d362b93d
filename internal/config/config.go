package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	Port     string
	Env      string
	LogLevel string

	// Backend API (sole source of truth for clinic data)
	BackendBaseURL     string
	BackendHealthURL   string
	BackendTimeout     time.Duration
	HealthCheckTimeout time.Duration
	ProfileTimeout     time.Duration

	// Session
	SessionSecret string
	SessionTTL    time.Duration
	CookieName    string
	CookieSecure  bool

	// Redis (session store + detection cache)
	RedisAddr      string
	RedisPassword  string
	RedisTLS       bool
	UseMemoryStore bool

	// Country detection
	GeoIPURL       string
	GeoCacheTTL    time.Duration
	DefaultCountry string

	// Clinic contact details surfaced in the UI
	ClinicName      string
	DoctorPhone     string
	AdminLoginEmail string

	ReviewRefreshInterval time.Duration
	MetricsEnabled        bool
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:     getEnv("PORT", "8080"),
		Env:      getEnv("ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		BackendBaseURL:     strings.TrimRight(getEnv("BACKEND_API_URL", "http://localhost:5000/api"), "/"),
		BackendHealthURL:   getEnv("BACKEND_HEALTH_URL", "http://localhost:5000/health"),
		BackendTimeout:     getEnvAsDuration("BACKEND_TIMEOUT", 10*time.Second),
		HealthCheckTimeout: getEnvAsDuration("BACKEND_HEALTH_TIMEOUT", 3*time.Second),
		ProfileTimeout:     getEnvAsDuration("BACKEND_PROFILE_TIMEOUT", 5*time.Second),

		SessionSecret: getEnv("SESSION_SECRET", ""),
		SessionTTL:    getEnvAsDuration("SESSION_TTL", 7*24*time.Hour),
		CookieName:    getEnv("SESSION_COOKIE_NAME", "clinic_session"),
		CookieSecure:  getEnvAsBool("SESSION_COOKIE_SECURE", false),

		RedisAddr:      getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:  getEnv("REDIS_PASSWORD", ""),
		RedisTLS:       getEnvAsBool("REDIS_TLS", false),
		UseMemoryStore: getEnvAsBool("USE_MEMORY_STORE", false),

		GeoIPURL:       getEnv("GEOIP_URL", "https://ipapi.co/json/"),
		GeoCacheTTL:    getEnvAsDuration("GEO_CACHE_TTL", 24*time.Hour),
		DefaultCountry: getEnv("DEFAULT_COUNTRY", "India"),

		ClinicName:      getEnv("CLINIC_NAME", "Kasam Healthcare"),
		DoctorPhone:     getEnv("DOCTOR_PHONE", "+919898440880"),
		AdminLoginEmail: getEnv("ADMIN_LOGIN_EMAIL", "admin@kasamhealthcare.com"),

		ReviewRefreshInterval: getEnvAsDuration("REVIEW_REFRESH_INTERVAL", 30*time.Minute),
		MetricsEnabled:        getEnvAsBool("METRICS_ENABLED", true),
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}
