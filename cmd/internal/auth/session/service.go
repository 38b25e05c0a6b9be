package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"time"

	"campusauth/cmd/directory"
)

// Service implements the high-level session operations.
//
// It creates sessions from successful authentications, validates handles with
// lazy expiry enforcement, and supports per-handle and per-subject
// revocation. Non-fatal outcomes (unknown handle, inactive, expired) are
// recovered here into a Validation result; only storage failures propagate
// as errors.
type Service struct {
	cfg   Config
	store Store
	log   *slog.Logger
}

// Validation is the result of validating a session handle.
// When Valid is false, Reason explains why; callers should not branch on it.
type Validation struct {
	Valid   bool
	Reason  string
	Session Record
}

// NewService constructs a Service with the provided configuration and store.
func NewService(cfg Config, store Store, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = DefaultConfig().SessionTTL
	}
	if cfg.HandleBytes < minHandleBytes {
		cfg.HandleBytes = minHandleBytes
	}
	return &Service{cfg: cfg, store: store, log: log}
}

// CreateSession persists a new session for an authenticated subject.
//
// The context partition is derived from the subject's role at creation time;
// expiry is now + TTL, fixed for the life of the session. Existing sessions
// for the subject are not touched: concurrent logins from multiple devices
// coexist by design.
func (s *Service) CreateSession(ctx context.Context, now time.Time, subjectID string, role directory.Role, boundToken string, ip net.IP, userAgent string) (Record, error) {
	sc, err := ContextForRole(role)
	if err != nil {
		return Record{}, err
	}

	handle, err := newHandle(s.cfg.HandleBytes)
	if err != nil {
		return Record{}, err
	}

	if len(userAgent) > maxUserAgentLen {
		userAgent = userAgent[:maxUserAgentLen]
	}

	rec := Record{
		Handle:         handle,
		SubjectID:      subjectID,
		Context:        sc,
		BoundToken:     boundToken,
		CreatedAt:      now,
		LastAccessedAt: now,
		ExpiresAt:      now.Add(s.cfg.SessionTTL),
		Active:         true,
		IPAddress:      ip,
		UserAgent:      userAgent,
	}

	if err := s.store.Insert(ctx, rec); err != nil {
		// A collision means the entropy source is broken; regenerating
		// would paper over an environment fault, so fail loudly instead.
		return Record{}, fmt.Errorf("create session: %w", err)
	}

	sessionsCreated.WithLabelValues(string(sc)).Inc()
	return rec, nil
}

// ValidateSession checks a handle and returns the validation outcome.
//
// Unknown and inactive handles are invalid with ReasonNotFoundOrInactive.
// An active but expired record is deactivated as a side effect (lazy expiry)
// and reported with ReasonExpired. A valid session gets its LastAccessedAt
// touched best-effort; a failed touch never fails the validation.
func (s *Service) ValidateSession(ctx context.Context, now time.Time, handle string) (Validation, error) {
	rec, err := s.store.GetActiveByHandle(ctx, handle)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			sessionsValidated.WithLabelValues("not_found").Inc()
			return Validation{Valid: false, Reason: ReasonNotFoundOrInactive}, nil
		}
		return Validation{}, err
	}

	if !rec.ExpiresAt.After(now) {
		if err := s.store.Deactivate(ctx, handle); err != nil {
			return Validation{}, err
		}
		sessionsValidated.WithLabelValues("expired").Inc()
		return Validation{Valid: false, Reason: ReasonExpired}, nil
	}

	// Observability only: this may race a concurrent deactivate of the same
	// handle, leaving a fresh timestamp on an inactive record. Benign.
	if err := s.store.TouchLastAccessed(ctx, now, handle); err != nil {
		s.log.Warn("session.touch.fail", "err", err)
	}
	rec.LastAccessedAt = now

	sessionsValidated.WithLabelValues("valid").Inc()
	return Validation{Valid: true, Session: rec}, nil
}

// InvalidateSession deactivates a single session (logout).
//
// Idempotent from the caller's perspective: "already gone" and "successfully
// removed" are indistinguishable and both succeed.
func (s *Service) InvalidateSession(ctx context.Context, handle string) error {
	return s.store.Deactivate(ctx, handle)
}

// InvalidateAllForSubject deactivates every session a subject owns
// (logout everywhere).
func (s *Service) InvalidateAllForSubject(ctx context.Context, subjectID string) error {
	return s.store.DeactivateAllForSubject(ctx, subjectID)
}

// InvalidateAllForSubjectAndContext deactivates every session a subject owns
// within one context partition (administrative use).
func (s *Service) InvalidateAllForSubjectAndContext(ctx context.Context, subjectID string, sc ContextType) error {
	return s.store.DeactivateAllForSubjectAndContext(ctx, subjectID, sc)
}

// SweepExpired deactivates all expired records. Secondary cleanup: lazy
// expiry at validation time is the primary enforcement path.
func (s *Service) SweepExpired(ctx context.Context, now time.Time) (int64, error) {
	n, err := s.store.SweepExpired(ctx, now)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		sessionsSwept.Add(float64(n))
	}
	return n, nil
}
