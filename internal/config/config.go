package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/templui/securedocs/internal/model"
)

type Config struct {
	// Application
	AppName string
	AppEnv  string
	AppURL  string
	Port    string

	// Database (optional driver switch via ENV, default: sqlite)
	DBDriver     string
	DBConnection string

	// Security
	JWTSecret        string
	JWTExpiry        time.Duration
	SecureLinkSecret string
	SecureLinkTTL    time.Duration

	// Sessions
	SessionStore    string // "memory" or "redis"
	SessionTTL      time.Duration
	SessionGrantTTL time.Duration
	RedisAddr       string
	RedisPassword   string
	RedisDB         int

	// Proxy (set only when a reverse proxy overwrites X-Real-IP or
	// appends to X-Forwarded-For; otherwise clients could pick their IP)
	TrustProxy bool

	// Settings (global switches owned by the document library)
	RequireLogin    bool
	SecureLinkOnly  bool
	HideFromSitemap bool

	// Delivery
	UploadsDir         string
	DownloadChunkSize  int
	RemoteProbeTimeout time.Duration
	RemoteFetchTimeout time.Duration

	// Observability (optional)
	SentryDSN string

	// Storage (S3-compatible: MinIO, AWS S3, Cloudflare R2, DigitalOcean Spaces, etc.)
	// Optional: s3:// file references are rejected when S3Bucket is empty.
	S3Region    string
	S3Bucket    string
	S3AccessKey string
	S3SecretKey string
	S3Endpoint  string
}

func Load() *Config {
	// Load .env file if it exists
	err := godotenv.Load()
	if err != nil {
		slog.Info("no .env file found, using environment variables")
	}

	cfg := &Config{
		// Application
		AppName: envString("APP_NAME", "Document Library"),
		AppEnv:  envRequired("APP_ENV"), // Required: 'development' or 'production'
		AppURL:  strings.TrimSuffix(envRequired("APP_URL"), "/"),
		Port:    envString("PORT", "8090"),

		// Database
		DBDriver:     envString("DB_DRIVER", "sqlite"),
		DBConnection: envString("DB_CONNECTION", "./data/securedocs.db?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"),

		// Security
		JWTSecret:        envRequired("JWT_SECRET"),
		JWTExpiry:        envDuration("JWT_EXPIRY", 168*time.Hour), // 7 days
		SecureLinkSecret: envRequired("SECURE_LINK_SECRET"),
		SecureLinkTTL:    envDuration("SECURE_LINK_TTL", 1*time.Hour),

		// Sessions
		SessionStore:    envString("SESSION_STORE", "memory"),
		SessionTTL:      envDuration("SESSION_TTL", 24*time.Hour),
		SessionGrantTTL: envDuration("SESSION_GRANT_TTL", 3600*time.Second),
		RedisAddr:       envString("REDIS_ADDR", "localhost:6379"),
		RedisPassword:   envString("REDIS_PASSWORD", ""),
		RedisDB:         envInt("REDIS_DB", 0),

		// Proxy
		TrustProxy: envBool("TRUST_PROXY", false),

		// Settings
		RequireLogin:    envBool("REQUIRE_LOGIN", false),
		SecureLinkOnly:  envBool("SECURE_LINK_ONLY", false),
		HideFromSitemap: envBool("HIDE_FROM_SITEMAP", true),

		// Delivery
		UploadsDir:         envString("UPLOADS_DIR", "./data/uploads"),
		DownloadChunkSize:  envInt("DOWNLOAD_CHUNK_SIZE", 1<<20), // 1 MiB
		RemoteProbeTimeout: envDuration("REMOTE_PROBE_TIMEOUT", 30*time.Second),
		RemoteFetchTimeout: envDuration("REMOTE_FETCH_TIMEOUT", 5*time.Minute),

		// Observability
		SentryDSN: envString("SENTRY_DSN", ""),

		// Storage
		S3Region:    envString("S3_REGION", "us-east-1"),
		S3Bucket:    envString("S3_BUCKET", ""),
		S3AccessKey: envString("S3_ACCESS_KEY", ""),
		S3SecretKey: envString("S3_SECRET_KEY", ""),
		S3Endpoint:  envString("S3_ENDPOINT", ""),
	}

	// Production: validate required services
	if cfg.IsProduction() {
		validateProduction(cfg)
	}

	return cfg
}

// validateProduction refuses configurations that are only acceptable for local testing.
func validateProduction(cfg *Config) {
	if cfg.SecureLinkSecret == cfg.JWTSecret {
		slog.Error("production deployment requires SECURE_LINK_SECRET to differ from JWT_SECRET")
		os.Exit(1)
	}
	if len(cfg.SecureLinkSecret) < 32 {
		slog.Error("production deployment requires SECURE_LINK_SECRET of at least 32 bytes")
		os.Exit(1)
	}
	if cfg.SessionStore == "memory" {
		slog.Warn("memory session store loses session grants on restart",
			"hint", "set SESSION_STORE=redis for multi-instance deployments")
	}
}

func envString(key, def string) string {
	value := os.Getenv(key)
	if value == "" {
		value = def
	}
	return value
}

func envBool(key string, def bool) bool {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		slog.Warn("config invalid bool, using default", "key", key, "value", v, "default", def)
		return def
	}
	return b
}

func envInt(key string, def int) int {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		slog.Warn("config invalid int, using default", "key", key, "value", v, "default", def)
		return def
	}
	return n
}

func envDuration(key string, def time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		slog.Warn("config invalid duration, using default", "key", key, "value", v, "default", def)
		return def
	}
	return d
}

func envRequired(key string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	slog.Error("config required env var missing", "key", key)
	os.Exit(1)
	return ""
}

func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// Settings returns the global access switches as an explicit value
// so the policy never reaches for ambient configuration.
func (c *Config) Settings() model.Settings {
	return model.Settings{
		RequireLogin:    c.RequireLogin,
		SecureLinkOnly:  c.SecureLinkOnly,
		HideFromSitemap: c.HideFromSitemap,
	}
}

// Sanitized returns a copy of the config with only public/safe fields.
// All secrets, credentials, and sensitive data are excluded.
func (c *Config) Sanitized() *Config {
	return &Config{
		AppName: c.AppName,
		AppEnv:  c.AppEnv,
		AppURL:  c.AppURL,
		Port:    c.Port,

		TrustProxy: c.TrustProxy,

		RequireLogin:    c.RequireLogin,
		SecureLinkOnly:  c.SecureLinkOnly,
		HideFromSitemap: c.HideFromSitemap,

		S3Endpoint: c.S3Endpoint,
	}
}
