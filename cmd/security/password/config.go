package password

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
)

// Params are the Argon2id cost settings. Memory is in KiB, as argon2.IDKey
// expects.
type Params struct {
	MemoryKiB uint32
	Time      uint32
	Threads   uint8
	SaltLen   uint32
	KeyLen    uint32
}

// Config carries hashing cost and length policy for the whole service.
type Config struct {
	Params Params

	// MinLength and MaxLength bound the plaintext before hashing.
	// MaxLength is an anti-DoS limit, not a policy statement.
	MinLength int
	MaxLength int

	// RejectWeak additionally refuses trivially guessable passwords
	// (single repeated character, short all-digit PINs, a tiny denylist).
	RejectWeak bool
}

// DefaultConfig returns interactive-login defaults: 64 MiB, 3 passes,
// thread count matched to the host but capped at 4.
func DefaultConfig() Config {
	threads := runtime.NumCPU()
	if threads < 1 {
		threads = 1
	}
	if threads > 4 {
		threads = 4
	}

	return Config{
		Params: Params{
			MemoryKiB: 64 * 1024,
			Time:      3,
			Threads:   uint8(threads),
			SaltLen:   16,
			KeyLen:    32,
		},
		MinLength: 8,
		MaxLength: 128,
	}
}

// FromEnv loads the password configuration, starting from DefaultConfig.
//
// Optional:
//   - CAMPUS_PASSWORD_MIN_LEN
//   - CAMPUS_PASSWORD_MAX_LEN
//   - CAMPUS_PASSWORD_REJECT_WEAK
//   - CAMPUS_ARGON2_MEMORY_KIB
//   - CAMPUS_ARGON2_TIME
//   - CAMPUS_ARGON2_THREADS
func FromEnv() (Config, error) {
	cfg := DefaultConfig()

	if v, ok := os.LookupEnv("CAMPUS_PASSWORD_MIN_LEN"); ok {
		n, err := envInt(v, 1, 1024)
		if err != nil {
			return Config{}, fmt.Errorf("CAMPUS_PASSWORD_MIN_LEN: %w", err)
		}
		cfg.MinLength = n
	}

	if v, ok := os.LookupEnv("CAMPUS_PASSWORD_MAX_LEN"); ok {
		n, err := envInt(v, 1, 4096)
		if err != nil {
			return Config{}, fmt.Errorf("CAMPUS_PASSWORD_MAX_LEN: %w", err)
		}
		cfg.MaxLength = n
	}

	if v, ok := os.LookupEnv("CAMPUS_PASSWORD_REJECT_WEAK"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, fmt.Errorf("CAMPUS_PASSWORD_REJECT_WEAK: not a boolean: %q", v)
		}
		cfg.RejectWeak = b
	}

	if v, ok := os.LookupEnv("CAMPUS_ARGON2_MEMORY_KIB"); ok {
		n, err := envInt(v, 8*1024, 1024*1024)
		if err != nil {
			return Config{}, fmt.Errorf("CAMPUS_ARGON2_MEMORY_KIB: %w", err)
		}
		cfg.Params.MemoryKiB = uint32(n)
	}

	if v, ok := os.LookupEnv("CAMPUS_ARGON2_TIME"); ok {
		n, err := envInt(v, 1, 16)
		if err != nil {
			return Config{}, fmt.Errorf("CAMPUS_ARGON2_TIME: %w", err)
		}
		cfg.Params.Time = uint32(n)
	}

	if v, ok := os.LookupEnv("CAMPUS_ARGON2_THREADS"); ok {
		n, err := envInt(v, 1, 32)
		if err != nil {
			return Config{}, fmt.Errorf("CAMPUS_ARGON2_THREADS: %w", err)
		}
		cfg.Params.Threads = uint8(n)
	}

	if cfg.MinLength > cfg.MaxLength {
		return Config{}, fmt.Errorf("password policy: min %d exceeds max %d", cfg.MinLength, cfg.MaxLength)
	}

	return cfg, nil
}

func envInt(s string, lo, hi int) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("not an integer: %q", s)
	}
	if n < lo || n > hi {
		return 0, fmt.Errorf("%d out of range [%d, %d]", n, lo, hi)
	}
	return n, nil
}
