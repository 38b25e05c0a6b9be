package session

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore implements Store using PostgreSQL (campus.user_sessions).
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a Postgres-backed session store.
// The pool is owned by the caller.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Insert persists a new session row. A duplicate handle surfaces as
// ErrHandleCollision, never as a silent overwrite.
func (s *PostgresStore) Insert(ctx context.Context, rec Record) error {
	var ip any
	if rec.IPAddress != nil {
		ip = rec.IPAddress.String()
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO campus.user_sessions (
			handle, subject_id, context_type, bound_token,
			created_at, last_accessed, expires_at, active,
			ip_address, user_agent
		) VALUES (
			$1, $2, $3, $4,
			$5, $6, $7, $8,
			$9, $10
		)
	`, rec.Handle, rec.SubjectID, string(rec.Context), rec.BoundToken,
		rec.CreatedAt, rec.LastAccessedAt, rec.ExpiresAt, rec.Active,
		ip, nullIfEmpty(rec.UserAgent))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("%w: handle already present", ErrHandleCollision)
		}
		return err
	}

	return nil
}

// GetActiveByHandle loads a session row by handle, active rows only.
// Expiry is deliberately not evaluated here; the store stays a dumb ledger.
func (s *PostgresStore) GetActiveByHandle(ctx context.Context, handle string) (Record, error) {
	var (
		rec    Record
		sc     string
		ipText *string
		ua     *string
	)

	err := s.pool.QueryRow(ctx, `
		SELECT
			handle, subject_id, context_type, bound_token,
			created_at, last_accessed, expires_at, active,
			ip_address::text, user_agent
		FROM campus.user_sessions
		WHERE handle = $1 AND active
	`, handle).Scan(
		&rec.Handle, &rec.SubjectID, &sc, &rec.BoundToken,
		&rec.CreatedAt, &rec.LastAccessedAt, &rec.ExpiresAt, &rec.Active,
		&ipText, &ua,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Record{}, ErrSessionNotFound
	}
	if err != nil {
		return Record{}, err
	}

	rec.Context = ContextType(sc)
	if ipText != nil {
		rec.IPAddress = net.ParseIP(*ipText)
	}
	if ua != nil {
		rec.UserAgent = *ua
	}

	return rec, nil
}

// TouchLastAccessed updates last_accessed for an active session.
func (s *PostgresStore) TouchLastAccessed(ctx context.Context, now time.Time, handle string) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE campus.user_sessions
		SET last_accessed = $2
		WHERE handle = $1 AND active
	`, handle, now)
	return err
}

// Deactivate flips a session to inactive (idempotent).
func (s *PostgresStore) Deactivate(ctx context.Context, handle string) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE campus.user_sessions
		SET active = FALSE
		WHERE handle = $1
	`, handle)
	return err
}

// DeactivateAllForSubject deactivates every session for a subject (idempotent).
func (s *PostgresStore) DeactivateAllForSubject(ctx context.Context, subjectID string) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE campus.user_sessions
		SET active = FALSE
		WHERE subject_id = $1
	`, subjectID)
	return err
}

// DeactivateAllForSubjectAndContext deactivates a subject's sessions within
// one context partition (idempotent).
func (s *PostgresStore) DeactivateAllForSubjectAndContext(ctx context.Context, subjectID string, sc ContextType) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE campus.user_sessions
		SET active = FALSE
		WHERE subject_id = $1 AND context_type = $2
	`, subjectID, string(sc))
	return err
}

// SweepExpired deactivates every expired row and reports how many it flipped.
func (s *PostgresStore) SweepExpired(ctx context.Context, now time.Time) (int64, error) {
	ct, err := s.pool.Exec(ctx, `
		UPDATE campus.user_sessions
		SET active = FALSE
		WHERE active AND expires_at < $1
	`, now)
	if err != nil {
		return 0, err
	}
	return ct.RowsAffected(), nil
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
