package app

import "time"

// Config contains all runtime configuration loaded from environment variables.
type Config struct {
	HTTPAddr string
	LogLevel string

	ReadHeaderTimeout time.Duration
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	MaxHeaderBytes    int

	DatabaseURL string
	DBMaxConns  int32
	DBMinConns  int32

	// MigrateOnStart applies the embedded schema migrations before serving.
	MigrateOnStart bool

	// If true, /readyz returns 503 unless the DB is configured and reachable.
	ReadinessRequireDB bool

	CORSAllowedOrigins   []string
	CORSAllowCredentials bool
	CORSMaxAgeSeconds    int
}

// LoadConfig loads Config from environment variables with defaults.
func LoadConfig() Config {
	return Config{
		HTTPAddr: EnvString("CAMPUS_HTTP_ADDR", "0.0.0.0:8080"),
		LogLevel: EnvString("CAMPUS_LOG_LEVEL", "info"),

		ReadHeaderTimeout: EnvDuration("CAMPUS_HTTP_READ_HEADER_TIMEOUT", 5*time.Second),
		ReadTimeout:       EnvDuration("CAMPUS_HTTP_READ_TIMEOUT", 15*time.Second),
		WriteTimeout:      EnvDuration("CAMPUS_HTTP_WRITE_TIMEOUT", 15*time.Second),
		IdleTimeout:       EnvDuration("CAMPUS_HTTP_IDLE_TIMEOUT", 60*time.Second),

		MaxHeaderBytes: EnvInt("CAMPUS_HTTP_MAX_HEADER_BYTES", 1<<20),

		DatabaseURL: EnvString("CAMPUS_DATABASE_URL", ""),
		DBMaxConns:  EnvInt32("CAMPUS_DB_MAX_CONNS", 10),
		DBMinConns:  EnvInt32("CAMPUS_DB_MIN_CONNS", 0),

		MigrateOnStart: EnvBool("CAMPUS_DB_MIGRATE_ON_START", true),

		ReadinessRequireDB: EnvBool("CAMPUS_READINESS_REQUIRE_DB", false),

		CORSAllowedOrigins:   EnvStringSlice("CAMPUS_CORS_ALLOWED_ORIGINS", nil),
		CORSAllowCredentials: EnvBool("CAMPUS_CORS_ALLOW_CREDENTIALS", false),
		CORSMaxAgeSeconds:    EnvInt("CAMPUS_CORS_MAX_AGE_SECONDS", 600),
	}
}
