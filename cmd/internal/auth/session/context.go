package session

import "campusauth/cmd/directory"

// ContextType is the closed two-variant partition scoping a session by broad
// privilege class. It is derived from the owner's role at creation time and
// immutable for the life of the session.
type ContextType string

const (
	// ContextStudent scopes sessions owned by student accounts.
	ContextStudent ContextType = "STUDENT"
	// ContextManagement scopes sessions owned by any non-student role.
	ContextManagement ContextType = "MANAGEMENT"
)

// Valid reports whether c is one of the two known contexts.
func (c ContextType) Valid() bool {
	return c == ContextStudent || c == ContextManagement
}

// ContextForRole maps the full role enumeration onto the session context
// partition. Every role is listed explicitly; a role missing from this
// mapping surfaces as ErrUnknownRole instead of defaulting.
func ContextForRole(r directory.Role) (ContextType, error) {
	switch r {
	case directory.RoleStudent:
		return ContextStudent, nil
	case directory.RoleFaculty, directory.RoleLibrarian, directory.RoleModerator, directory.RoleAdmin:
		return ContextManagement, nil
	default:
		return "", ErrUnknownRole
	}
}
