package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	DriverPostgres = "postgres"
	DriverSqlite   = "sqlite"
	DriverMemory   = "memory"
)

type Config struct {
	Port string

	StoreDriver string
	DBUser      string
	DBPassword  string
	DBHost      string
	DBPort      string
	DBName      string
	DBSSLMode   string
	SqlitePath  string

	SessionSecret []byte
	// GeneratedSecret is true when no SESSION_SECRET was set and a random one was created.
	GeneratedSecret bool
	SessionTTL      time.Duration
	MaxDrafts       int

	TinyMCEDir       string
	EditorConfigPath string
	SanitizeDisplay  bool
	CORSOrigin       string
	LogLevel         string
}

// Load reads the configuration from the process environment. Call
// godotenv.Load first if a .env file should be honoured.
func Load() (*Config, error) {
	cfg := &Config{
		Port:             getEnv("PORT", "8080"),
		StoreDriver:      strings.ToLower(getEnv("STORE_DRIVER", DriverPostgres)),
		DBUser:           getEnv("user", ""),
		DBPassword:       getEnv("password", ""),
		DBHost:           getEnv("host", "localhost"),
		DBPort:           getEnv("port", "5432"),
		DBName:           getEnv("dbname", ""),
		DBSSLMode:        getEnv("DB_SSLMODE", "require"),
		SqlitePath:       getEnv("SQLITE_PATH", "tulisan.db"),
		TinyMCEDir:       getEnv("TINYMCE_DIR", "public/assets/libs/tinymce"),
		EditorConfigPath: getEnv("EDITOR_CONFIG", ""),
		CORSOrigin:       getEnv("CORS_ORIGIN", "*"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
	}

	switch cfg.StoreDriver {
	case DriverPostgres, DriverSqlite, DriverMemory:
	default:
		return nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}

	ttl, err := time.ParseDuration(getEnv("SESSION_TTL", "24h"))
	if err != nil {
		return nil, fmt.Errorf("invalid SESSION_TTL: %w", err)
	}
	cfg.SessionTTL = ttl

	maxDrafts, err := strconv.Atoi(getEnv("MAX_DRAFTS", "200"))
	if err != nil || maxDrafts <= 0 {
		return nil, fmt.Errorf("invalid MAX_DRAFTS %q", os.Getenv("MAX_DRAFTS"))
	}
	cfg.MaxDrafts = maxDrafts

	sanitize, err := strconv.ParseBool(getEnv("DISPLAY_SANITIZE", "false"))
	if err != nil {
		return nil, fmt.Errorf("invalid DISPLAY_SANITIZE: %w", err)
	}
	cfg.SanitizeDisplay = sanitize

	if secret := getEnv("SESSION_SECRET", ""); secret != "" {
		cfg.SessionSecret = []byte(secret)
	} else {
		b := make([]byte, 32)
		if _, err := rand.Read(b); err != nil {
			return nil, fmt.Errorf("generate session secret: %w", err)
		}
		cfg.SessionSecret = []byte(hex.EncodeToString(b))
		cfg.GeneratedSecret = true
	}

	return cfg, nil
}

// PostgresDSN builds the lib/pq connection string.
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode)
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return ":" + c.Port
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}
