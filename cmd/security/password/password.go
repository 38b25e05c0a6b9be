package password

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/crypto/argon2"
)

// Check applies the length policy without hashing. Lengths are in runes so
// multi-byte passwords are not shortchanged.
func (c Config) Check(plaintext string) error {
	n := utf8.RuneCountInString(plaintext)
	if n < c.MinLength {
		return ErrPasswordTooShort
	}
	if n > c.MaxLength {
		return ErrPasswordTooLong
	}
	if c.RejectWeak && looksWeak(plaintext) {
		return ErrWeakPassword
	}
	return nil
}

// looksWeak is deliberately minimal; it is not a strength estimator.
func looksWeak(plaintext string) bool {
	s := strings.TrimSpace(plaintext)
	if s == "" {
		return true
	}

	sameChar := true
	allDigits := true
	var first rune
	for i, r := range s {
		if i == 0 {
			first = r
		} else if r != first {
			sameChar = false
		}
		if r < '0' || r > '9' {
			allDigits = false
		}
	}
	if sameChar {
		return true
	}
	if allDigits && utf8.RuneCountInString(s) < 12 {
		return true
	}

	switch strings.ToLower(s) {
	case "password", "password123", "password1234", "123456789012", "qwerty123456":
		return true
	}
	return false
}

// Hash derives an Argon2id hash of plaintext with a fresh random salt and
// returns it PHC-encoded.
func (c Config) Hash(plaintext string) (string, error) {
	if err := c.Check(plaintext); err != nil {
		return "", err
	}

	salt := make([]byte, c.Params.SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("salt: %w", err)
	}

	key := argon2.IDKey([]byte(plaintext), salt,
		c.Params.Time, c.Params.MemoryKiB, c.Params.Threads, c.Params.KeyLen)

	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		c.Params.MemoryKiB, c.Params.Time, c.Params.Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// Verify reports whether plaintext matches the stored hash.
// (false, nil) is a clean mismatch; ErrMalformedHash means the stored string
// could not be trusted. Comparison is constant-time.
func (c Config) Verify(stored, plaintext string) (bool, error) {
	p, salt, want, err := parsePHC(stored)
	if err != nil {
		return false, err
	}

	// Stored hashes normally come from our own Hash, but a hostile value
	// must not be able to request unbounded work.
	if p.MemoryKiB > 2*c.Params.MemoryKiB || p.Time > 2*c.Params.Time || p.Threads > 2*c.Params.Threads {
		return false, ErrMalformedHash
	}

	got := argon2.IDKey([]byte(plaintext), salt, p.Time, p.MemoryKiB, p.Threads, uint32(len(want)))
	return subtle.ConstantTimeCompare(got, want) == 1, nil
}

// DummyHash returns a hash of a throwaway secret. Authentication flows verify
// against it when the account does not exist, so a miss costs the same as a
// wrong password and response timing does not leak account existence.
func (c Config) DummyHash() (string, error) {
	b := make([]byte, 24)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return c.Hash(base64.RawStdEncoding.EncodeToString(b))
}

func parsePHC(stored string) (Params, []byte, []byte, error) {
	parts := strings.Split(stored, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != "argon2id" {
		return Params{}, nil, nil, ErrMalformedHash
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return Params{}, nil, nil, ErrMalformedHash
	}

	var mem, time, par uint32
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &mem, &time, &par); err != nil {
		return Params{}, nil, nil, ErrMalformedHash
	}
	if mem == 0 || time == 0 || par == 0 || par > 255 {
		return Params{}, nil, nil, ErrMalformedHash
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil || len(salt) < 8 || len(salt) > 64 {
		return Params{}, nil, nil, ErrMalformedHash
	}
	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(key) < 16 || len(key) > 128 {
		return Params{}, nil, nil, ErrMalformedHash
	}

	p := Params{
		MemoryKiB: mem,
		Time:      time,
		Threads:   uint8(par),
		SaltLen:   uint32(len(salt)),
		KeyLen:    uint32(len(key)),
	}
	return p, salt, key, nil
}
