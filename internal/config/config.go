package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

const (
	EnvProduction  = "production"
	EnvDevelopment = "development"
)

type Config struct {
	Env      string
	HTTPAddr string
	LogLevel string
	LogFile  string

	DatabaseURL string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	JWTSecret       string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration

	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string

	TrustedProxies []*net.IPNet

	StorageDir     string
	UploadMaxBytes int64

	SessionTTL          time.Duration
	SessionCookieSecure bool

	WorkerCount int
}

var dotenvLoad = godotenv.Load

// Load reads the environment, after merging a .env file when one exists.
// Values already set in the environment win over the file.
func Load() (*Config, error) {
	if err := dotenvLoad(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("Load: .env: %w", err)
	}

	var problems []string
	proxies, err := parseCIDRs(getEnv("TRUSTED_PROXIES", ""))
	if err != nil {
		problems = append(problems, err.Error())
	}

	cfg := &Config{
		Env:      getEnv("APP_ENV", EnvDevelopment),
		HTTPAddr: getEnv("HTTP_ADDR", ":8080"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		LogFile:  getEnv("LOG_FILE", ""),

		DatabaseURL: getEnv("DATABASE_URL", ""),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0, &problems),

		JWTSecret:       getEnv("JWT_SECRET", ""),
		AccessTokenTTL:  getEnvDuration("ACCESS_TOKEN_TTL", 24*time.Hour, &problems),
		RefreshTokenTTL: getEnvDuration("REFRESH_TOKEN_TTL", 7*24*time.Hour, &problems),

		GoogleClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
		GoogleRedirectURL:  getEnv("GOOGLE_REDIRECT_URL", "http://localhost:8080/auth/google/callback"),

		TrustedProxies: proxies,

		StorageDir:     getEnv("STORAGE_DIR", "./storage"),
		UploadMaxBytes: int64(getEnvInt("UPLOAD_MAX_BYTES", 5<<20, &problems)),

		SessionTTL:          getEnvDuration("SESSION_TTL", 7*24*time.Hour, &problems),
		SessionCookieSecure: getEnvBool("SESSION_COOKIE_SECURE", false, &problems),

		WorkerCount: getEnvInt("WORKER_COUNT", 2, &problems),
	}
	if len(problems) > 0 {
		return nil, fmt.Errorf("configuration invalid:\n- %s", strings.Join(problems, "\n- "))
	}
	return cfg, nil
}

// Validate reports every missing or out of range setting at once.
func (c *Config) Validate() error {
	var problems []string
	if c.DatabaseURL == "" {
		problems = append(problems, "DATABASE_URL is required")
	}
	if c.RedisAddr == "" {
		problems = append(problems, "REDIS_ADDR is required")
	}
	if c.RedisDB < 0 {
		problems = append(problems, fmt.Sprintf("invalid REDIS_DB %d: must not be negative", c.RedisDB))
	}
	if c.JWTSecret == "" {
		problems = append(problems, "JWT_SECRET is required")
	}
	if c.GoogleClientID == "" || c.GoogleClientSecret == "" {
		problems = append(problems, "GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET are required")
	}
	if c.Env != EnvProduction && c.Env != EnvDevelopment {
		problems = append(problems, fmt.Sprintf("invalid APP_ENV '%s': must be %s or %s", c.Env, EnvDevelopment, EnvProduction))
	}
	if _, err := zap.ParseAtomicLevel(c.LogLevel); err != nil {
		problems = append(problems, fmt.Sprintf("invalid LOG_LEVEL '%s'", c.LogLevel))
	}
	if c.UploadMaxBytes <= 0 {
		problems = append(problems, fmt.Sprintf("invalid UPLOAD_MAX_BYTES %d: must be positive", c.UploadMaxBytes))
	}
	if c.WorkerCount < 1 {
		problems = append(problems, fmt.Sprintf("invalid WORKER_COUNT %d: must be at least 1", c.WorkerCount))
	}
	if c.SessionTTL < time.Minute {
		problems = append(problems, fmt.Sprintf("invalid SESSION_TTL %v: must be at least 1m", c.SessionTTL))
	}
	if c.AccessTokenTTL <= 0 || c.RefreshTokenTTL <= 0 {
		problems = append(problems, "token lifetimes must be positive")
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(problems, "\n- "))
	}
	return nil
}

func (c *Config) IsProduction() bool { return c.Env == EnvProduction }

// LogFields describes the config for the startup log line. Secrets are left out.
func (c *Config) LogFields() []zap.Field {
	return []zap.Field{
		zap.String("environment", c.Env),
		zap.String("http_addr", c.HTTPAddr),
		zap.String("redis_addr", c.RedisAddr),
		zap.Int("redis_db", c.RedisDB),
		zap.String("storage_dir", c.StorageDir),
		zap.Int64("upload_max_bytes", c.UploadMaxBytes),
		zap.Int("workers", c.WorkerCount),
		zap.Int("trusted_proxies", len(c.TrustedProxies)),
	}
}

func getEnv(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int, problems *[]string) int {
	value := getEnv(key, "")
	if value == "" {
		return defaultValue
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		*problems = append(*problems, fmt.Sprintf("invalid %s '%s': must be a number", key, value))
		return defaultValue
	}
	return i
}

func getEnvDuration(key string, defaultValue time.Duration, problems *[]string) time.Duration {
	value := getEnv(key, "")
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		*problems = append(*problems, fmt.Sprintf("invalid %s '%s': must be a duration like 24h", key, value))
		return defaultValue
	}
	return d
}

func getEnvBool(key string, defaultValue bool, problems *[]string) bool {
	value := getEnv(key, "")
	if value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		*problems = append(*problems, fmt.Sprintf("invalid %s '%s': must be true or false", key, value))
		return defaultValue
	}
	return b
}

// parseCIDRs accepts a comma separated list of CIDRs or bare IPs.
func parseCIDRs(s string) ([]*net.IPNet, error) {
	var out []*net.IPNet
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if !strings.Contains(part, "/") {
			if ip := net.ParseIP(part); ip != nil && ip.To4() != nil {
				part += "/32"
			} else {
				part += "/128"
			}
		}
		_, n, err := net.ParseCIDR(part)
		if err != nil {
			return nil, fmt.Errorf("invalid TRUSTED_PROXIES entry '%s'", part)
		}
		out = append(out, n)
	}
	return out, nil
}
