package session

import "errors"

var (
	// ErrSessionNotFound is returned by stores when a handle matches no
	// active record. The caller cannot distinguish "never existed" from
	// "already deactivated"; both are benign.
	ErrSessionNotFound = errors.New("session not found")

	// ErrHandleCollision is returned when an insert observes a pre-existing
	// handle. With 256 bits of entropy this indicates an entropy-source
	// failure, so it is fatal and never retried.
	ErrHandleCollision = errors.New("session handle collision")

	// ErrUnknownRole is returned when a session is requested for a role
	// outside the closed role set.
	ErrUnknownRole = errors.New("unknown role")

	// ErrConfig is returned for invalid session configuration.
	ErrConfig = errors.New("invalid session config")
)

// Validation reasons surfaced to callers. Expired and not-found sessions are
// both invalid; the distinct reasons exist for logs and metrics, not for
// callers to branch on.
const (
	ReasonNotFoundOrInactive = "not found or already inactive"
	ReasonExpired            = "expired"
)
