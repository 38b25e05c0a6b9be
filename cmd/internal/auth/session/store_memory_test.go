package session

import (
	"context"
	"errors"
	"testing"
	"time"
)

func testRecord(handle, subject string, sc ContextType, now time.Time) Record {
	return Record{
		Handle:         handle,
		SubjectID:      subject,
		Context:        sc,
		BoundToken:     "token",
		CreatedAt:      now,
		LastAccessedAt: now,
		ExpiresAt:      now.Add(7 * 24 * time.Hour),
		Active:         true,
	}
}

func TestMemoryStore_InsertCollision(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()
	now := time.Now().UTC()

	if err := st.Insert(ctx, testRecord("h1", "s1", ContextStudent, now)); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	err := st.Insert(ctx, testRecord("h1", "s2", ContextStudent, now))
	if !errors.Is(err, ErrHandleCollision) {
		t.Fatalf("expected ErrHandleCollision, got %v", err)
	}

	// The original record must be untouched by the losing insert.
	rec, err := st.GetActiveByHandle(ctx, "h1")
	if err != nil {
		t.Fatalf("GetActiveByHandle: %v", err)
	}
	if rec.SubjectID != "s1" {
		t.Fatalf("collision overwrote record: subject=%q", rec.SubjectID)
	}
}

func TestMemoryStore_GetActiveByHandle(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()
	now := time.Now().UTC()

	if _, err := st.GetActiveByHandle(ctx, "missing"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound for missing handle, got %v", err)
	}

	if err := st.Insert(ctx, testRecord("h1", "s1", ContextManagement, now)); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if err := st.Deactivate(ctx, "h1"); err != nil {
		t.Fatalf("Deactivate: %v", err)
	}

	// Inactive records are invisible through the active lookup.
	if _, err := st.GetActiveByHandle(ctx, "h1"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound for inactive handle, got %v", err)
	}
}

func TestMemoryStore_TouchSkipsInactive(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()
	now := time.Now().UTC()

	if err := st.Insert(ctx, testRecord("h1", "s1", ContextStudent, now)); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if err := st.Deactivate(ctx, "h1"); err != nil {
		t.Fatalf("Deactivate: %v", err)
	}

	later := now.Add(time.Hour)
	if err := st.TouchLastAccessed(ctx, later, "h1"); err != nil {
		t.Fatalf("TouchLastAccessed: %v", err)
	}

	rec, _ := st.get("h1")
	if rec.LastAccessedAt.Equal(later) {
		t.Fatalf("touch updated an inactive record")
	}
}

func TestMemoryStore_DeactivateUnknownHandle(t *testing.T) {
	st := NewMemoryStore()

	if err := st.Deactivate(context.Background(), "missing"); err != nil {
		t.Fatalf("Deactivate on unknown handle: %v", err)
	}
}

func TestMemoryStore_SweepExpired(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()
	now := time.Now().UTC()

	live := testRecord("live", "s1", ContextStudent, now)
	dead := testRecord("dead", "s1", ContextStudent, now)
	dead.ExpiresAt = now.Add(-time.Minute)

	for _, r := range []Record{live, dead} {
		if err := st.Insert(ctx, r); err != nil {
			t.Fatalf("Insert(%s): %v", r.Handle, err)
		}
	}

	n, err := st.SweepExpired(ctx, now)
	if err != nil {
		t.Fatalf("SweepExpired: %v", err)
	}
	if n != 1 {
		t.Fatalf("swept %d want 1", n)
	}

	// Already-inactive rows are not re-counted on the next pass.
	n, err = st.SweepExpired(ctx, now)
	if err != nil {
		t.Fatalf("SweepExpired: %v", err)
	}
	if n != 0 {
		t.Fatalf("second sweep flipped %d records, want 0", n)
	}
}

func TestMemoryStore_ContextCancellation(t *testing.T) {
	st := NewMemoryStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := st.Insert(ctx, testRecord("h1", "s1", ContextStudent, time.Now().UTC())); err == nil {
		t.Fatalf("Insert ignored cancelled context")
	}
	if _, err := st.GetActiveByHandle(ctx, "h1"); err == nil {
		t.Fatalf("GetActiveByHandle ignored cancelled context")
	}
}
