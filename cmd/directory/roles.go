package directory

import "strings"

// Role is the closed set of account roles in the campus platform.
type Role string

const (
	RoleStudent   Role = "STUDENT"
	RoleFaculty   Role = "FACULTY"
	RoleLibrarian Role = "LIBRARIAN"
	RoleModerator Role = "MODERATOR"
	RoleAdmin     Role = "ADMIN"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleFaculty, RoleLibrarian, RoleModerator, RoleAdmin:
		return true
	default:
		return false
	}
}

// ParseRole maps a free-form role string to a Role.
// Unknown or empty input falls back to RoleStudent, matching signup behavior:
// a caller that does not declare a privileged role gets the least privileged one.
func ParseRole(s string) Role {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	if !r.Valid() {
		return RoleStudent
	}
	return r
}
