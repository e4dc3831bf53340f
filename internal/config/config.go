package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all gateway configuration, loaded from environment variables
// (and an optional .env file) with sane defaults baked in. No YAML file is
// read.
type Config struct {
	// Server
	Port string
	Env  string

	// CORS
	AllowedOrigins []string

	// Logging
	LogLevel string

	// Task engine
	TaskMaxConcurrent int
	TaskImageTimeout  time.Duration
	TaskVideoTimeout  time.Duration
	TaskRetention     time.Duration
	TaskTickInterval  time.Duration

	// Quota ledger
	QuotaBackend       string // "json" | "postgres"
	QuotaDataPath      string
	QuotaDatabaseURL   string
	QuotaImageLimit    int
	QuotaVideoLimit    int
	QuotaAvatarLimit   int
	QuotaRetentionDays int

	// Upstream mirrors (empty means use the built-in default for the region)
	DreaminaUSMirror string
	DreaminaHKMirror string
	ImagexUSMirror   string
	ImagexHKMirror   string
	ImagexCNMirror   string
	JimengCNMirror   string
	CommerceUSMirror string
	CommerceHKMirror string

	// Optional Redis-backed upload credential cache
	RedisURL string

	// Outbound proxy
	Proxy ProxyConfig
}

// ProxyConfig describes an optional SOCKS5 proxy used for all upstream calls.
type ProxyConfig struct {
	Enabled bool
	Host    string
	Port    int
	Type    string // "socks5"
	Auth    string // "user:pass", optional
	Bypass  []string
	Timeout time.Duration
}

// Load reads configuration from the environment (and an optional .env file).
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	return &Config{
		Port: getEnv("PORT", "8080"),
		Env:  getEnv("ENV", "development"),

		AllowedOrigins: parseStringSlice(getEnv("ALLOWED_ORIGINS", "http://localhost:3000")),

		LogLevel: getEnv("LOG_LEVEL", "info"),

		TaskMaxConcurrent: parseInt(getEnv("TASK_MAX_CONCURRENT", "10"), 10),
		TaskImageTimeout:  parseDuration(getEnv("TASK_IMAGE_TIMEOUT", "15m"), 15*time.Minute),
		TaskVideoTimeout:  parseDuration(getEnv("TASK_VIDEO_TIMEOUT", "30m"), 30*time.Minute),
		TaskRetention:     parseDuration(getEnv("TASK_RETENTION", "24h"), 24*time.Hour),
		TaskTickInterval:  parseDuration(getEnv("TASK_TICK_INTERVAL", "1s"), time.Second),

		QuotaBackend:       getEnv("QUOTA_BACKEND", "json"),
		QuotaDataPath:      getEnv("QUOTA_DATA_PATH", "data/session_usage.json"),
		QuotaDatabaseURL:   getEnv("QUOTA_DATABASE_URL", ""),
		QuotaImageLimit:    parseInt(getEnv("QUOTA_IMAGE_LIMIT", "10"), 10),
		QuotaVideoLimit:    parseInt(getEnv("QUOTA_VIDEO_LIMIT", "2"), 2),
		QuotaAvatarLimit:   parseInt(getEnv("QUOTA_AVATAR_LIMIT", "1"), 1),
		QuotaRetentionDays: parseInt(getEnv("QUOTA_RETENTION_DAYS", "30"), 30),

		DreaminaUSMirror: getEnv("DREAMINA_US_MIRROR", ""),
		DreaminaHKMirror: getEnv("DREAMINA_HK_MIRROR", ""),
		ImagexUSMirror:   getEnv("IMAGEX_US_MIRROR", ""),
		ImagexHKMirror:   getEnv("IMAGEX_HK_MIRROR", ""),
		ImagexCNMirror:   getEnv("IMAGEX_CN_MIRROR", ""),
		JimengCNMirror:   getEnv("JIMENG_CN_MIRROR", ""),
		CommerceUSMirror: getEnv("COMMERCE_US_MIRROR", ""),
		CommerceHKMirror: getEnv("COMMERCE_HK_MIRROR", ""),

		RedisURL: getEnv("REDIS_URL", ""),

		Proxy: ProxyConfig{
			Enabled: parseBool(getEnv("PROXY_ENABLED", "false"), false),
			Host:    getEnv("PROXY_HOST", ""),
			Port:    parseInt(getEnv("PROXY_PORT", "0"), 0),
			Type:    getEnv("PROXY_TYPE", "socks5"),
			Auth:    getEnv("PROXY_AUTH", ""),
			Bypass:  parseStringSlice(getEnv("PROXY_BYPASS", "")),
			Timeout: parseDuration(getEnv("PROXY_TIMEOUT", "10s"), 10*time.Second),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func parseDuration(s string, defaultValue time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return defaultValue
	}
	return d
}

func parseBool(s string, defaultValue bool) bool {
	value, err := strconv.ParseBool(s)
	if err != nil {
		return defaultValue
	}
	return value
}

func parseInt(s string, defaultValue int) int {
	value, err := strconv.Atoi(s)
	if err != nil {
		return defaultValue
	}
	return value
}

func parseStringSlice(s string) []string {
	if strings.TrimSpace(s) == "" {
		return []string{}
	}
	var result []string
	start := 0
	for i := 0; i <= len(s); i++ {
		if i == len(s) || s[i] == ',' {
			if start < i {
				result = append(result, strings.TrimSpace(s[start:i]))
			}
			start = i + 1
		}
	}
	return result
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
