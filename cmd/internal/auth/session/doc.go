// Package session implements the campus session lifecycle.
//
// A session is created as the side effect of a successful authentication and
// identified by an opaque, high-entropy handle, the revocable half of the
// authentication pair (the bearer token issued alongside it is stateless and
// not revocable here). Sessions are partitioned into a STUDENT or MANAGEMENT
// context derived from the owner's role at creation time, expire exactly
// seven days after creation (no sliding expiry), and are soft-deactivated:
// active transitions from true to false once and is never resurrected.
//
// Expiry is enforced lazily at validation time; the Sweeper is a secondary,
// timer-driven cleanup and is not required for correctness.
package session
