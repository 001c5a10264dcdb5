package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/gosuda/seguro/internal/domain"
)

// Store drivers.
const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Audit recorder backends, selected by the scheme of SEGURO_AUDIT_URI.
const (
	AuditDisabled = "none"
	AuditMongo    = "mongodb"
	AuditRedis    = "redis"
	AuditMemory   = "memory"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	StoreDriver string
	Database    DatabaseConfig
	Audit       AuditConfig
	JWT         JWTConfig
	Admin       AdminConfig
	Server      ServerConfig
	RateLimit   RateLimitConfig
	Slack       SlackConfig
	Log         LogConfig
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host        string
	Port        int
	User        string
	Password    string //nolint:gosec // G117: DB connection config
	DBName      string
	SSLMode     string
	MaxConns    int
	AutoMigrate bool
}

// AuditConfig holds the secondary audit store settings.
type AuditConfig struct {
	URI        string
	Database   string
	Collection string // Mongo collection or Redis stream key
	Timeout    time.Duration
	MirrorOps  []domain.Operation
	MaxLen     int64 // approximate Redis stream cap, 0 = unbounded
}

// JWTConfig holds JWT authentication settings.
type JWTConfig struct {
	Secret     string //nolint:gosec // G117: JWT signing secret config
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// AdminConfig is the bootstrap admin account. Empty username disables it.
type AdminConfig struct {
	Username string
	Password string //nolint:gosec // G117: bootstrap credential config
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	CORSOrigins  []string
}

type RateLimitConfig struct {
	RPS   float64
	Burst int
}

// SlackConfig holds degraded-audit alert settings.
type SlackConfig struct {
	BotToken     string
	AlertChannel string
}

type LogConfig struct {
	Level  string
	Format string
}

// Load reads configuration from environment variables.
// Defaults are safe for local development only. In production,
// sensitive values (JWT secret, DB password) must be set explicitly.
func Load() (*Config, error) {
	dbPort, err := getEnvInt("SEGURO_DB_PORT", 5432)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	dbMaxConns, err := getEnvInt("SEGURO_DB_MAX_CONNS", 25)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	autoMigrate, err := getEnvBool("SEGURO_DB_AUTO_MIGRATE", true)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	auditTimeout, err := getEnvDuration("SEGURO_AUDIT_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	auditMaxLen, err := getEnvInt("SEGURO_AUDIT_MAX_LEN", 0)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	mirrorOps, err := parseOperations("SEGURO_AUDIT_MIRROR_OPS",
		getEnvList("SEGURO_AUDIT_MIRROR_OPS", []string{string(domain.OpCreatePolicy), string(domain.OpCancelPolicy)}))
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	accessTTL, err := getEnvDuration("SEGURO_JWT_ACCESS_TTL", 15*time.Minute)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	refreshTTL, err := getEnvDuration("SEGURO_JWT_REFRESH_TTL", 7*24*time.Hour)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	readTimeout, err := getEnvDuration("SEGURO_SERVER_READ_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	writeTimeout, err := getEnvDuration("SEGURO_SERVER_WRITE_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	rps, err := getEnvFloat("SEGURO_RATE_LIMIT_RPS", 100)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	burst, err := getEnvInt("SEGURO_RATE_LIMIT_BURST", 200)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	corsOrigins := getEnvList("SEGURO_CORS_ORIGINS", []string{"http://localhost:5173"})

	cfg := &Config{
		StoreDriver: strings.ToLower(getEnv("SEGURO_STORE_DRIVER", DriverPostgres)),
		Database: DatabaseConfig{
			Host:        getEnv("SEGURO_DB_HOST", "localhost"),
			Port:        dbPort,
			User:        getEnv("SEGURO_DB_USER", "seguro"),
			Password:    getEnv("SEGURO_DB_PASSWORD", ""),
			DBName:      getEnv("SEGURO_DB_NAME", "seguro_dev"),
			SSLMode:     getEnv("SEGURO_DB_SSLMODE", "disable"),
			MaxConns:    dbMaxConns,
			AutoMigrate: autoMigrate,
		},
		Audit: AuditConfig{
			URI:        getEnv("SEGURO_AUDIT_URI", ""),
			Database:   getEnv("SEGURO_AUDIT_DATABASE", "seguro"),
			Collection: getEnv("SEGURO_AUDIT_COLLECTION", "audit_log"),
			Timeout:    auditTimeout,
			MirrorOps:  mirrorOps,
			MaxLen:     int64(auditMaxLen),
		},
		JWT: JWTConfig{
			Secret:     getEnv("SEGURO_JWT_SECRET", ""),
			AccessTTL:  accessTTL,
			RefreshTTL: refreshTTL,
		},
		Admin: AdminConfig{
			Username: getEnv("SEGURO_ADMIN_USERNAME", ""),
			Password: getEnv("SEGURO_ADMIN_PASSWORD", ""),
		},
		Server: ServerConfig{
			Addr:         getEnv("SEGURO_SERVER_ADDR", ":8080"),
			ReadTimeout:  readTimeout,
			WriteTimeout: writeTimeout,
			CORSOrigins:  corsOrigins,
		},
		RateLimit: RateLimitConfig{
			RPS:   rps,
			Burst: burst,
		},
		Slack: SlackConfig{
			BotToken:     getEnv("SEGURO_SLACK_BOT_TOKEN", ""),
			AlertChannel: getEnv("SEGURO_SLACK_ALERT_CHANNEL", ""),
		},
		Log: LogConfig{
			Level:  strings.ToLower(getEnv("SEGURO_LOG_LEVEL", "info")),
			Format: strings.ToLower(getEnv("SEGURO_LOG_FORMAT", "json")),
		},
	}

	err = cfg.validate()
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	return cfg, nil
}

// validate checks required fields and value bounds.
func (c *Config) validate() error {
	// JWT secret is required (no insecure default).
	if c.JWT.Secret == "" {
		return errors.New("SEGURO_JWT_SECRET is required")
	}
	if len(c.JWT.Secret) < 32 {
		return errors.New("SEGURO_JWT_SECRET must be at least 32 characters")
	}

	switch c.StoreDriver {
	case DriverPostgres:
		if c.Database.SSLMode == "disable" {
			log.Warn().Msg("SEGURO_DB_SSLMODE=disable is insecure for production; set to 'require' or 'verify-full'")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("SEGURO_STORE_DRIVER must be postgres or memory, got %q", c.StoreDriver)
	}

	if _, err := c.Audit.Backend(); err != nil {
		return err
	}

	if (c.Admin.Username == "") != (c.Admin.Password == "") {
		return errors.New("SEGURO_ADMIN_USERNAME and SEGURO_ADMIN_PASSWORD must be set together")
	}

	if c.Slack.BotToken != "" && c.Slack.AlertChannel == "" {
		return errors.New("SEGURO_SLACK_ALERT_CHANNEL is required when SEGURO_SLACK_BOT_TOKEN is set")
	}

	switch c.Log.Format {
	case "json", "text":
	default:
		return fmt.Errorf("SEGURO_LOG_FORMAT must be json or text, got %q", c.Log.Format)
	}

	// Bounds checks.
	if c.Database.Port < 1 || c.Database.Port > 65535 {
		return fmt.Errorf("SEGURO_DB_PORT must be 1-65535, got %d", c.Database.Port)
	}
	if c.Database.MaxConns < 1 {
		return fmt.Errorf("SEGURO_DB_MAX_CONNS must be >= 1, got %d", c.Database.MaxConns)
	}
	if c.Audit.Timeout <= 0 {
		return fmt.Errorf("SEGURO_AUDIT_TIMEOUT must be positive, got %s", c.Audit.Timeout)
	}
	if c.Audit.MaxLen < 0 {
		return fmt.Errorf("SEGURO_AUDIT_MAX_LEN must be >= 0, got %d", c.Audit.MaxLen)
	}
	if c.JWT.AccessTTL <= 0 {
		return fmt.Errorf("SEGURO_JWT_ACCESS_TTL must be positive, got %s", c.JWT.AccessTTL)
	}
	if c.JWT.RefreshTTL <= 0 {
		return fmt.Errorf("SEGURO_JWT_REFRESH_TTL must be positive, got %s", c.JWT.RefreshTTL)
	}
	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("SEGURO_SERVER_READ_TIMEOUT must be positive, got %s", c.Server.ReadTimeout)
	}
	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("SEGURO_SERVER_WRITE_TIMEOUT must be positive, got %s", c.Server.WriteTimeout)
	}
	if c.RateLimit.RPS <= 0 {
		return fmt.Errorf("SEGURO_RATE_LIMIT_RPS must be positive, got %g", c.RateLimit.RPS)
	}
	if c.RateLimit.Burst < 1 {
		return fmt.Errorf("SEGURO_RATE_LIMIT_BURST must be >= 1, got %d", c.RateLimit.Burst)
	}

	return nil
}

// Backend returns the recorder backend named by the URI scheme.
func (a *AuditConfig) Backend() (string, error) {
	if a.URI == "" {
		return AuditDisabled, nil
	}
	u, err := url.Parse(a.URI)
	if err != nil {
		return "", fmt.Errorf("SEGURO_AUDIT_URI is not a valid URI: %w", err)
	}
	switch u.Scheme {
	case "mongodb", "mongodb+srv":
		return AuditMongo, nil
	case "redis", "rediss":
		return AuditRedis, nil
	case "memory":
		return AuditMemory, nil
	default:
		return "", fmt.Errorf("SEGURO_AUDIT_URI scheme %q is not supported", u.Scheme)
	}
}

// DSN returns the PostgreSQL connection string.
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

func parseOperations(key string, names []string) ([]domain.Operation, error) {
	ops := make([]domain.Operation, 0, len(names))
	for _, n := range names {
		op, err := domain.ParseOperation(n)
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", key, err)
		}
		ops = append(ops, op)
	}
	return ops, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("parsing %s=%q as int: %w", key, v, err)
	}
	return n, nil
}

func getEnvFloat(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing %s=%q as float: %w", key, v, err)
	}
	return f, nil
}

func getEnvBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("parsing %s=%q as bool: %w", key, v, err)
	}
	return b, nil
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("parsing %s=%q as duration: %w", key, v, err)
	}
	return d, nil
}

func getEnvList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parts := strings.Split(v, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}
