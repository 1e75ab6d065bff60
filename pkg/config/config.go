package config

import (
	"time"

	"github.com/joho/godotenv"
)

// Config holds the runtime configuration for a scribe-adapter instance.
// It is loaded once at startup; fields are treated as read-only afterwards.
type Config struct {
	ServiceName string // e.g. "scribe-adapter"
	Env         string // e.g. "dev", "staging", "prod"
	LogLevel    string // "debug", "info", etc.
	Port        int    // inbound HTTP port

	// Upstream Scribe platform.
	// Endpoint paths are joined onto ScribeBaseURL by plain concatenation,
	// so the base must not carry a trailing slash.
	ScribeBaseURL     string
	ScribeAccount     string        // service account ID for bootstrap login ("" disables)
	HTTPClientTimeout time.Duration // outbound request timeout
	RetryMax          int           // extra attempts on 5xx/network failures (0 = single attempt)
	AuthFailClosed    bool          // reject authenticated calls instead of sending them tokenless

	// Outbound rate limiting.
	RequestsPerSecond int
	Burst             int
	RateCooldown      time.Duration

	// Post creation mode.
	StubCreatePost  bool          // route create calls through the offline stub
	CreateStubDelay time.Duration // simulated latency for stubbed creation

	// Session persistence: "memory" or "redis".
	SessionStore string

	RedisAddr string // e.g. localhost:6379
	RedisDB   int
	RedisPass string

	DatabaseURL         string // empty disables the Postgres side of the store
	PGMaxConns          int
	PGMinConns          int
	PGMaxConnLifetime   time.Duration
	PGMaxConnIdleTime   time.Duration
	PGHealthCheckPeriod time.Duration

	NATSURL         string
	OutboundSubject string // NATS subject for session/notification events
	RabbitURL       string // AMQP URL for the RabbitMQ bridge ("" disables)

	AWSRegion   string
	CacheTTL    time.Duration // TTL for the resolved-credentials cache
	CleanupFreq time.Duration // frequency of the cache cleanup goroutine

	CatalogSyncInterval    time.Duration // 0 disables the background catalog sync
	SummaryRefreshInterval time.Duration // 0 disables the catalog summary refresh job

	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
	HTTPBodyLimit    int
}

// Load loads configuration from environment variables and .env file if present.
func Load() *Config {
	// load .env silently (no error if missing)
	_ = godotenv.Load()

	cfg := &Config{
		ServiceName: GetEnv("SERVICE_NAME", "scribe-adapter"),
		Env:         GetEnv("ENV", "dev"),
		LogLevel:    GetEnv("LOG_LEVEL", "info"),
		Port:        GetEnvInt("SCRIBE_PORT", 9020),

		ScribeBaseURL:     GetEnv("SCRIBE_BASE_URL", "https://example.com/api"),
		ScribeAccount:     GetEnv("SCRIBE_ACCOUNT", ""),
		HTTPClientTimeout: GetEnvDuration("HTTP_CLIENT_TIMEOUT", 30*time.Second),
		RetryMax:          GetEnvInt("SCRIBE_RETRY_MAX", 0),
		AuthFailClosed:    GetEnvBool("AUTH_FAIL_CLOSED", false),

		RequestsPerSecond: GetEnvInt("SCRIBE_RPS", 10),
		Burst:             GetEnvInt("SCRIBE_BURST", 20),
		RateCooldown:      GetEnvDuration("SCRIBE_RATE_COOLDOWN", 1*time.Second),

		StubCreatePost:  GetEnvBool("STUB_CREATE_POST", false),
		CreateStubDelay: GetEnvDuration("STUB_CREATE_DELAY", 2*time.Second),

		SessionStore: GetEnv("SESSION_STORE", "memory"),

		RedisAddr: GetEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:   GetEnvInt("REDIS_DB", 0),
		RedisPass: GetEnv("REDIS_PASS", ""),

		DatabaseURL:         GetEnv("DATABASE_URL", ""),
		PGMaxConns:          GetEnvInt("PG_MAX_CONNS", 10),
		PGMinConns:          GetEnvInt("PG_MIN_CONNS", 2),
		PGMaxConnLifetime:   GetEnvDuration("PG_MAX_CONN_LIFETIME", 30*time.Minute),
		PGMaxConnIdleTime:   GetEnvDuration("PG_MAX_CONN_IDLE_TIME", 5*time.Minute),
		PGHealthCheckPeriod: GetEnvDuration("PG_HEALTH_CHECK_PERIOD", 1*time.Minute),

		NATSURL:         GetEnv("NATS_URL", "nats://localhost:4222"),
		OutboundSubject: GetEnv("OUTBOUND_SUBJECT", "evt.scribe.session.v1"),
		RabbitURL:       GetEnv("RABBIT_URL", ""),

		AWSRegion:   GetEnv("AWS_REGION", "us-east-2"),
		CacheTTL:    GetEnvDuration("CACHE_TTL", 24*time.Hour),
		CleanupFreq: GetEnvDuration("CACHE_CLEANUP_FREQ", 10*time.Minute),

		CatalogSyncInterval:    GetEnvDuration("CATALOG_SYNC_INTERVAL", 15*time.Minute),
		SummaryRefreshInterval: GetEnvDuration("SUMMARY_REFRESH_INTERVAL", 24*time.Hour),

		HTTPReadTimeout:  GetEnvDuration("HTTP_READ_TIMEOUT", 10*time.Second),
		HTTPWriteTimeout: GetEnvDuration("HTTP_WRITE_TIMEOUT", 10*time.Second),
		HTTPIdleTimeout:  GetEnvDuration("HTTP_IDLE_TIMEOUT", 60*time.Second),
		HTTPBodyLimit:    GetEnvInt("HTTP_BODY_LIMIT", 1*1024*1024),
	}

	return cfg
}
