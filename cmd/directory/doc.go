// Package directory is the user directory for the campus platform.
//
// It resolves an identifier (email) to a credential record and role, and owns
// the uniqueness constraints the signup flow relies on: one account per email,
// one student profile per college roll number. Password hashing is not done
// here; callers store and read opaque one-way hashes (see cmd/security/password).
package directory
