package session

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is the dev/test fallback when no database is configured.
//
// Every operation takes the single lock, so per-handle operations are
// individually atomic, matching the Store contract. Records are stored by
// value; callers never observe partial updates.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]Record
}

// NewMemoryStore constructs an empty in-memory session store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]Record)}
}

// Insert persists a session record, refusing to overwrite an existing handle.
func (s *MemoryStore) Insert(ctx context.Context, rec Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.sessions[rec.Handle]; exists {
		return ErrHandleCollision
	}
	s.sessions[rec.Handle] = rec
	return nil
}

// GetActiveByHandle returns an active record by handle.
func (s *MemoryStore) GetActiveByHandle(ctx context.Context, handle string) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.sessions[handle]
	if !ok || !rec.Active {
		return Record{}, ErrSessionNotFound
	}
	return rec, nil
}

// TouchLastAccessed updates last_accessed for an active record.
func (s *MemoryStore) TouchLastAccessed(ctx context.Context, now time.Time, handle string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.sessions[handle]
	if !ok || !rec.Active {
		return nil
	}
	rec.LastAccessedAt = now
	s.sessions[handle] = rec
	return nil
}

// Deactivate flips a record to inactive (idempotent).
func (s *MemoryStore) Deactivate(ctx context.Context, handle string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.sessions[handle]
	if !ok {
		return nil
	}
	rec.Active = false
	s.sessions[handle] = rec
	return nil
}

// DeactivateAllForSubject deactivates every session a subject owns.
func (s *MemoryStore) DeactivateAllForSubject(ctx context.Context, subjectID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for h, rec := range s.sessions {
		if rec.SubjectID == subjectID {
			rec.Active = false
			s.sessions[h] = rec
		}
	}
	return nil
}

// DeactivateAllForSubjectAndContext deactivates a subject's sessions within
// one context partition.
func (s *MemoryStore) DeactivateAllForSubjectAndContext(ctx context.Context, subjectID string, sc ContextType) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for h, rec := range s.sessions {
		if rec.SubjectID == subjectID && rec.Context == sc {
			rec.Active = false
			s.sessions[h] = rec
		}
	}
	return nil
}

// SweepExpired deactivates every expired record.
func (s *MemoryStore) SweepExpired(ctx context.Context, now time.Time) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for h, rec := range s.sessions {
		if rec.Active && rec.ExpiresAt.Before(now) {
			rec.Active = false
			s.sessions[h] = rec
			n++
		}
	}
	return n, nil
}

// get returns a record regardless of active state. Test helper.
func (s *MemoryStore) get(handle string) (Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.sessions[handle]
	return rec, ok
}
