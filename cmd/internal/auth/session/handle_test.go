package session

import (
	"strings"
	"testing"
)

func TestNewHandle_Length(t *testing.T) {
	h, err := newHandle(32)
	if err != nil {
		t.Fatalf("newHandle: %v", err)
	}
	// 32 bytes base64url without padding: ceil(32*4/3) = 43 chars.
	if len(h) != 43 {
		t.Fatalf("handle length=%d want 43", len(h))
	}
}

func TestNewHandle_ClampsBelowFloor(t *testing.T) {
	h, err := newHandle(8)
	if err != nil {
		t.Fatalf("newHandle: %v", err)
	}
	if len(h) < 43 {
		t.Fatalf("entropy floor not enforced, length=%d", len(h))
	}
}

func TestNewHandle_URLSafeAlphabet(t *testing.T) {
	const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_"

	for i := 0; i < 32; i++ {
		h, err := newHandle(32)
		if err != nil {
			t.Fatalf("newHandle: %v", err)
		}
		for _, r := range h {
			if !strings.ContainsRune(alphabet, r) {
				t.Fatalf("handle %q contains %q outside base64url alphabet", h, r)
			}
		}
	}
}

func TestNewHandle_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		h, err := newHandle(32)
		if err != nil {
			t.Fatalf("newHandle: %v", err)
		}
		if seen[h] {
			t.Fatalf("duplicate handle after %d draws", i)
		}
		seen[h] = true
	}
}
