package token

import (
	"errors"
	"testing"
	"time"
)

func testIssuer(t *testing.T) *Issuer {
	t.Helper()
	iss, err := NewIssuer(Config{
		Secret: []byte("0123456789abcdef0123456789abcdef"),
		Issuer: "campusauth",
		TTL:    time.Hour,
	})
	if err != nil {
		t.Fatalf("NewIssuer: %v", err)
	}
	return iss
}

func TestIssueAndVerify(t *testing.T) {
	iss := testIssuer(t)
	now := time.Now().UTC()

	id := Identity{
		SubjectID: "01J0000000000000000000TEST",
		Email:     "ada@campus.edu",
		FullName:  "Ada Lovelace",
		Role:      "FACULTY",
	}

	signed, exp, err := iss.Issue(now, id)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if !exp.Equal(now.Add(time.Hour)) {
		t.Fatalf("expiry=%v want now+1h", exp)
	}

	got, err := iss.Verify(now.Add(time.Minute), signed)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if got != id {
		t.Fatalf("claims round trip: got %+v want %+v", got, id)
	}
}

func TestVerifyExpired(t *testing.T) {
	iss := testIssuer(t)
	now := time.Now().UTC()

	signed, _, err := iss.Issue(now, Identity{SubjectID: "s"})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	_, err = iss.Verify(now.Add(2*time.Hour), signed)
	if !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for expired token, got %v", err)
	}
}

func TestVerifyWrongSecret(t *testing.T) {
	iss := testIssuer(t)
	now := time.Now().UTC()

	signed, _, err := iss.Issue(now, Identity{SubjectID: "s"})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	other, err := NewIssuer(Config{
		Secret: []byte("ffffffffffffffffffffffffffffffff"),
		Issuer: "campusauth",
		TTL:    time.Hour,
	})
	if err != nil {
		t.Fatalf("NewIssuer: %v", err)
	}

	if _, err := other.Verify(now, signed); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for wrong secret, got %v", err)
	}
}

func TestVerifyWrongIssuer(t *testing.T) {
	iss := testIssuer(t)
	now := time.Now().UTC()

	foreign, err := NewIssuer(Config{
		Secret: []byte("0123456789abcdef0123456789abcdef"),
		Issuer: "someone-else",
		TTL:    time.Hour,
	})
	if err != nil {
		t.Fatalf("NewIssuer: %v", err)
	}

	signed, _, err := foreign.Issue(now, Identity{SubjectID: "s"})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	if _, err := iss.Verify(now, signed); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for wrong issuer, got %v", err)
	}
}

func TestVerifyGarbage(t *testing.T) {
	iss := testIssuer(t)

	if _, err := iss.Verify(time.Now().UTC(), "not.a.token"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestNewIssuerRejectsBadSecrets(t *testing.T) {
	if _, err := NewIssuer(Config{}); !errors.Is(err, ErrNoSecret) {
		t.Fatalf("expected ErrNoSecret, got %v", err)
	}
	if _, err := NewIssuer(Config{Secret: []byte("short")}); !errors.Is(err, ErrWeakSecret) {
		t.Fatalf("expected ErrWeakSecret, got %v", err)
	}
}

func TestFromEnv(t *testing.T) {
	t.Setenv("CAMPUS_TOKEN_SECRET", "0123456789abcdef0123456789abcdef")
	t.Setenv("CAMPUS_TOKEN_TTL", "12h")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	if cfg.TTL != 12*time.Hour {
		t.Fatalf("TTL=%v want 12h", cfg.TTL)
	}
	if cfg.Issuer != "campusauth" {
		t.Fatalf("issuer=%q want campusauth", cfg.Issuer)
	}
}

func TestFromEnvMissingSecret(t *testing.T) {
	t.Setenv("CAMPUS_TOKEN_SECRET", "")
	if _, err := FromEnv(); !errors.Is(err, ErrNoSecret) {
		t.Fatalf("expected ErrNoSecret, got %v", err)
	}
}
