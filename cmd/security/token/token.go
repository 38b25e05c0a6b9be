package token

import (
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const minSecretLen = 32

// Config holds the signing material and token lifetime.
type Config struct {
	Secret []byte
	Issuer string
	TTL    time.Duration
	Leeway time.Duration
}

// FromEnv loads the token configuration.
//
// Required:
//   - CAMPUS_TOKEN_SECRET (at least 32 bytes)
//
// Optional:
//   - CAMPUS_TOKEN_ISSUER (default "campusauth")
//   - CAMPUS_TOKEN_TTL (default 24h)
func FromEnv() (Config, error) {
	secret := os.Getenv("CAMPUS_TOKEN_SECRET")
	if secret == "" {
		return Config{}, ErrNoSecret
	}
	if len(secret) < minSecretLen {
		return Config{}, ErrWeakSecret
	}

	cfg := Config{
		Secret: []byte(secret),
		Issuer: "campusauth",
		TTL:    24 * time.Hour,
		Leeway: 30 * time.Second,
	}

	if v := os.Getenv("CAMPUS_TOKEN_ISSUER"); v != "" {
		cfg.Issuer = v
	}
	if v := os.Getenv("CAMPUS_TOKEN_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return Config{}, fmt.Errorf("CAMPUS_TOKEN_TTL: invalid duration %q", v)
		}
		cfg.TTL = d
	}

	return cfg, nil
}

// Identity is the claim set a token asserts about its bearer.
type Identity struct {
	SubjectID string
	Email     string
	FullName  string
	Role      string
}

type claims struct {
	Email    string `json:"email"`
	FullName string `json:"name"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// Issuer mints and verifies bearer tokens with a shared HMAC secret.
type Issuer struct {
	cfg Config
}

// NewIssuer validates the config and returns an Issuer.
func NewIssuer(cfg Config) (*Issuer, error) {
	if len(cfg.Secret) == 0 {
		return nil, ErrNoSecret
	}
	if len(cfg.Secret) < minSecretLen {
		return nil, ErrWeakSecret
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 24 * time.Hour
	}
	return &Issuer{cfg: cfg}, nil
}

// Issue signs a token for id, valid from now for the configured TTL.
// It returns the compact token string and its expiry.
func (i *Issuer) Issue(now time.Time, id Identity) (string, time.Time, error) {
	exp := now.Add(i.cfg.TTL)

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Email:    id.Email,
		FullName: id.FullName,
		Role:     id.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    i.cfg.Issuer,
			Subject:   id.SubjectID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	})

	signed, err := t.SignedString(i.cfg.Secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, exp, nil
}

// Verify parses and validates a compact token string and returns the
// identity it asserts. Any parse or validation failure, including expiry
// and a wrong signing method, comes back as ErrInvalidToken.
func (i *Issuer) Verify(now time.Time, tokenStr string) (Identity, error) {
	var c claims

	_, err := jwt.ParseWithClaims(tokenStr, &c,
		func(t *jwt.Token) (any, error) { return i.cfg.Secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(i.cfg.Issuer),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(i.cfg.Leeway),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	return Identity{
		SubjectID: c.Subject,
		Email:     c.Email,
		FullName:  c.FullName,
		Role:      c.Role,
	}, nil
}
