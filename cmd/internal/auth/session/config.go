package session

import (
	"os"
	"strconv"
	"time"
)

const (
	// minHandleBytes is the entropy floor for session handles: 32 bytes
	// (256 bits) before base64url encoding.
	minHandleBytes = 32

	maxHandleBytes = 64

	// maxUserAgentLen caps the stored user agent string.
	maxUserAgentLen = 255
)

// Config defines runtime configuration for the session subsystem.
type Config struct {
	// SessionTTL is the fixed lifetime of a session. Expiry is set at
	// creation and never extended.
	SessionTTL time.Duration

	// HandleBytes is the number of random bytes behind each handle.
	// Clamped to [32, 64].
	HandleBytes int

	// SweepInterval is how often the background sweeper deactivates
	// expired records. Zero disables the sweeper (lazy expiry still
	// applies at validation time).
	SweepInterval time.Duration
}

// DefaultConfig returns the production defaults: seven-day sessions,
// 256-bit handles, hourly sweep.
func DefaultConfig() Config {
	return Config{
		SessionTTL:    7 * 24 * time.Hour,
		HandleBytes:   minHandleBytes,
		SweepInterval: time.Hour,
	}
}

// LoadConfigFromEnv loads session configuration from environment variables.
//
// Optional (durations must be valid Go duration strings):
//   - CAMPUS_SESSION_TTL
//   - CAMPUS_SESSION_HANDLE_BYTES
//   - CAMPUS_SESSION_SWEEP_INTERVAL
//
// Returns ErrConfig if a set variable is invalid.
func LoadConfigFromEnv() (Config, error) {
	cfg := DefaultConfig()

	if v := os.Getenv("CAMPUS_SESSION_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return Config{}, ErrConfig
		}
		cfg.SessionTTL = d
	}

	if v := os.Getenv("CAMPUS_SESSION_HANDLE_BYTES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < minHandleBytes || n > maxHandleBytes {
			return Config{}, ErrConfig
		}
		cfg.HandleBytes = n
	}

	if v := os.Getenv("CAMPUS_SESSION_SWEEP_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d < 0 {
			return Config{}, ErrConfig
		}
		cfg.SweepInterval = d
	}

	return cfg, nil
}
