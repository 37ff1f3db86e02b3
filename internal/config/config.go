package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config captures the runtime configuration for the application.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Logging  LoggingConfig
	Auth     AuthConfig
	Storage  StorageConfig
	Editor   EditorConfig
}

// ServerConfig configures the HTTP server runtime behavior.
type ServerConfig struct {
	Addr string
}

// DatabaseConfig contains the database connection settings.
type DatabaseConfig struct {
	URL             string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	UseMock         bool
}

// LoggingConfig controls the global logger. File enables a rotating log file
// in addition to stdout.
type LoggingConfig struct {
	Level      string
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// AuthConfig groups authentication settings.
type AuthConfig struct {
	Session SessionConfig
}

// SessionConfig controls the session cookie.
type SessionConfig struct {
	Lifetime     time.Duration
	CookieName   string
	CookieDomain string
	CookieSecure bool
}

const (
	StorageDriverLocal = "local"
	StorageDriverS3    = "s3"
)

// StorageConfig selects and configures the object store used for images.
type StorageConfig struct {
	Driver          string
	Root            string
	PublicBaseURL   string
	Endpoint        string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	UsePathStyle    bool
	RecipeBucket    string
	BatchBucket     string
}

const (
	ChildSyncUpdateOnly = "update-only"
	ChildSyncReconcile  = "reconcile"
)

// EditorConfig tunes the batch editor.
type EditorConfig struct {
	ChildSync string
}

// Load inspects the environment and builds a Config value.
func Load() (Config, error) {
	cfg := Config{}

	cfg.Server = ServerConfig{
		Addr: firstNonEmpty(
			os.Getenv("SERVER_ADDR"),
			os.Getenv("ADDR"),
			":8080",
		),
	}

	cfg.Database = DatabaseConfig{
		URL: firstNonEmpty(
			os.Getenv("DATABASE_URL"),
			os.Getenv("DB_URL"),
			"",
		),
		MaxIdleConns:    parseIntWithDefault(os.Getenv("DATABASE_MAX_IDLE_CONNS"), 5),
		MaxOpenConns:    parseIntWithDefault(os.Getenv("DATABASE_MAX_OPEN_CONNS"), 20),
		ConnMaxLifetime: parseDurationWithDefault(os.Getenv("DATABASE_CONN_MAX_LIFETIME"), time.Hour),
		ConnMaxIdleTime: parseDurationWithDefault(os.Getenv("DATABASE_CONN_MAX_IDLE_TIME"), 15*time.Minute),
		UseMock:         parseBoolWithDefault(os.Getenv("DATABASE_USE_MOCK"), false),
	}

	cfg.Logging = LoggingConfig{
		Level:      firstNonEmpty(os.Getenv("LOG_LEVEL"), "info"),
		File:       strings.TrimSpace(os.Getenv("LOG_FILE")),
		MaxSizeMB:  parseIntWithDefault(os.Getenv("LOG_MAX_SIZE_MB"), 50),
		MaxBackups: parseIntWithDefault(os.Getenv("LOG_MAX_BACKUPS"), 3),
		MaxAgeDays: parseIntWithDefault(os.Getenv("LOG_MAX_AGE_DAYS"), 28),
	}

	cfg.Auth = AuthConfig{
		Session: SessionConfig{
			Lifetime:     parseDurationWithDefault(os.Getenv("SESSION_LIFETIME"), 12*time.Hour),
			CookieName:   firstNonEmpty(os.Getenv("SESSION_COOKIE_NAME"), "batchbook_session"),
			CookieDomain: strings.TrimSpace(os.Getenv("SESSION_COOKIE_DOMAIN")),
			CookieSecure: parseBoolWithDefault(os.Getenv("SESSION_COOKIE_SECURE"), true),
		},
	}

	cfg.Storage = StorageConfig{
		Driver:          strings.ToLower(firstNonEmpty(os.Getenv("STORAGE_DRIVER"), StorageDriverLocal)),
		Root:            firstNonEmpty(os.Getenv("STORAGE_ROOT"), "data/storage"),
		PublicBaseURL:   firstNonEmpty(os.Getenv("STORAGE_PUBLIC_URL"), "/storage"),
		Endpoint:        strings.TrimSpace(os.Getenv("STORAGE_ENDPOINT")),
		Region:          firstNonEmpty(os.Getenv("STORAGE_REGION"), os.Getenv("AWS_REGION"), "us-east-1"),
		AccessKeyID:     strings.TrimSpace(os.Getenv("STORAGE_ACCESS_KEY_ID")),
		SecretAccessKey: strings.TrimSpace(os.Getenv("STORAGE_SECRET_ACCESS_KEY")),
		UsePathStyle:    parseBoolWithDefault(os.Getenv("STORAGE_PATH_STYLE"), false),
		RecipeBucket:    firstNonEmpty(os.Getenv("STORAGE_RECIPE_BUCKET"), "recipe-images"),
		BatchBucket:     firstNonEmpty(os.Getenv("STORAGE_BATCH_BUCKET"), "batch-images"),
	}

	cfg.Editor = EditorConfig{
		ChildSync: strings.ToLower(firstNonEmpty(os.Getenv("BATCH_CHILD_SYNC"), ChildSyncUpdateOnly)),
	}

	if strings.TrimSpace(cfg.Server.Addr) == "" {
		return Config{}, fmt.Errorf("server address must not be empty")
	}

	switch cfg.Storage.Driver {
	case StorageDriverLocal, StorageDriverS3:
	default:
		return Config{}, fmt.Errorf("unknown storage driver: %s", cfg.Storage.Driver)
	}

	switch cfg.Editor.ChildSync {
	case ChildSyncUpdateOnly, ChildSyncReconcile:
	default:
		return Config{}, fmt.Errorf("unknown batch child sync mode: %s", cfg.Editor.ChildSync)
	}

	return cfg, nil
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return value
		}
	}
	return ""
}

func parseIntWithDefault(value string, def int) int {
	value = strings.TrimSpace(value)
	if value == "" {
		return def
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return def
	}
	return parsed
}

func parseDurationWithDefault(value string, def time.Duration) time.Duration {
	value = strings.TrimSpace(value)
	if value == "" {
		return def
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return def
	}
	return parsed
}

func parseBoolWithDefault(value string, def bool) bool {
	value = strings.TrimSpace(value)
	if value == "" {
		return def
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return def
	}
	return parsed
}
