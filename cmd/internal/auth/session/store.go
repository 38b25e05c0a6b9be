package session

import (
	"context"
	"net"
	"time"
)

// Record mirrors the campus.user_sessions row owned by this subsystem.
//
// ExpiresAt is fixed at creation (CreatedAt + TTL) and never extended by
// access; validation only moves LastAccessedAt, for observability.
type Record struct {
	Handle         string
	SubjectID      string
	Context        ContextType
	BoundToken     string
	CreatedAt      time.Time
	LastAccessedAt time.Time
	ExpiresAt      time.Time
	Active         bool
	IPAddress      net.IP
	UserAgent      string
}

// Store abstracts session persistence. It is a dumb ledger: expiry is
// evaluated by the Service, not here (GetActiveByHandle filters on the
// active flag only).
//
// Per-handle operations must be individually atomic, but implementations are
// not required to serialize cross-operation sequences: a validate-then-touch
// racing a concurrent deactivate may touch a record that ends up inactive,
// which is benign.
type Store interface {
	// Insert persists a fully populated record. A pre-existing handle is
	// reported as ErrHandleCollision and must never silently overwrite.
	Insert(ctx context.Context, rec Record) error

	// GetActiveByHandle returns the record only if active == true.
	// Returns ErrSessionNotFound for unknown or inactive handles.
	GetActiveByHandle(ctx context.Context, handle string) (Record, error)

	// TouchLastAccessed updates last_accessed for an active record.
	// Best-effort: callers must not fail validation on its error.
	TouchLastAccessed(ctx context.Context, now time.Time, handle string) error

	// Deactivate flips active to false. Idempotent: deactivating an
	// already-inactive or nonexistent handle is not an error.
	Deactivate(ctx context.Context, handle string) error

	// DeactivateAllForSubject deactivates every session owned by a subject.
	DeactivateAllForSubject(ctx context.Context, subjectID string) error

	// DeactivateAllForSubjectAndContext deactivates every session owned by a
	// subject within one context partition.
	DeactivateAllForSubjectAndContext(ctx context.Context, subjectID string, sc ContextType) error

	// SweepExpired deactivates every record with expires_at < now and
	// returns how many records it flipped.
	SweepExpired(ctx context.Context, now time.Time) (int64, error)
}
