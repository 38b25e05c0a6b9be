package session

import (
	"errors"
	"testing"
	"time"
)

func TestLoadConfigFromEnv_Defaults(t *testing.T) {
	cfg, err := LoadConfigFromEnv()
	if err != nil {
		t.Fatalf("LoadConfigFromEnv: %v", err)
	}
	if cfg.SessionTTL != 7*24*time.Hour {
		t.Fatalf("default TTL=%v want 168h", cfg.SessionTTL)
	}
	if cfg.HandleBytes != 32 {
		t.Fatalf("default handle bytes=%d want 32", cfg.HandleBytes)
	}
	if cfg.SweepInterval != time.Hour {
		t.Fatalf("default sweep interval=%v want 1h", cfg.SweepInterval)
	}
}

func TestLoadConfigFromEnv_Overrides(t *testing.T) {
	t.Setenv("CAMPUS_SESSION_TTL", "48h")
	t.Setenv("CAMPUS_SESSION_HANDLE_BYTES", "48")
	t.Setenv("CAMPUS_SESSION_SWEEP_INTERVAL", "10m")

	cfg, err := LoadConfigFromEnv()
	if err != nil {
		t.Fatalf("LoadConfigFromEnv: %v", err)
	}
	if cfg.SessionTTL != 48*time.Hour {
		t.Fatalf("TTL=%v want 48h", cfg.SessionTTL)
	}
	if cfg.HandleBytes != 48 {
		t.Fatalf("handle bytes=%d want 48", cfg.HandleBytes)
	}
	if cfg.SweepInterval != 10*time.Minute {
		t.Fatalf("sweep interval=%v want 10m", cfg.SweepInterval)
	}
}

func TestLoadConfigFromEnv_Invalid(t *testing.T) {
	cases := []struct {
		key, val string
	}{
		{"CAMPUS_SESSION_TTL", "not-a-duration"},
		{"CAMPUS_SESSION_TTL", "-1h"},
		{"CAMPUS_SESSION_HANDLE_BYTES", "16"},
		{"CAMPUS_SESSION_HANDLE_BYTES", "128"},
		{"CAMPUS_SESSION_HANDLE_BYTES", "forty"},
		{"CAMPUS_SESSION_SWEEP_INTERVAL", "yearly"},
	}

	for _, tc := range cases {
		t.Run(tc.key+"="+tc.val, func(t *testing.T) {
			t.Setenv(tc.key, tc.val)
			if _, err := LoadConfigFromEnv(); !errors.Is(err, ErrConfig) {
				t.Fatalf("expected ErrConfig, got %v", err)
			}
		})
	}
}
