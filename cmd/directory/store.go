package directory

import (
	"context"
	"time"
)

// User is the canonical credential record.
// PasswordHash is an opaque one-way hash; the directory never sees plaintext.
type User struct {
	ID           string
	Email        string
	EmailNorm    string
	PasswordHash string
	FullName     string
	Role         Role
	Active       bool

	ProfileImageURL *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// StudentProfile holds the extended student record created alongside a
// STUDENT account. CollegeRollNumber is globally unique.
type StudentProfile struct {
	ID                string
	UserID            string
	CollegeRollNumber string
	CurrentSemester   *int
	BranchCode        *string
	BatchYear         *int
	Phone             *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// CreateUserInput describes a registration request.
// Profile must be set when Role is RoleStudent and is ignored otherwise.
type CreateUserInput struct {
	Email        string
	PasswordHash string
	FullName     string
	Role         Role
	Profile      *CreateProfileInput
	Now          time.Time
}

// CreateProfileInput describes the student profile created with the account.
type CreateProfileInput struct {
	CollegeRollNumber string
	CurrentSemester   *int
	BranchCode        *string
	BatchYear         *int
	Phone             *string
}

// CreateUserResult returns the created records.
type CreateUserResult struct {
	User    User
	Profile *StudentProfile
}

// Store is the directory persistence boundary.
//
// Uniqueness is enforced here, not by callers: two concurrent CreateUser
// calls with the same email may both pass any pre-check the caller did; the
// store's constraint decides the loser and reports it as a ConflictError.
type Store interface {
	CreateUser(ctx context.Context, in CreateUserInput) (CreateUserResult, error)

	// GetByEmail resolves a (case-insensitively normalized) email to a user.
	// Returns ErrNotFound when no account matches.
	GetByEmail(ctx context.Context, email string) (User, error)

	// GetByID loads a user by ID. Returns ErrNotFound when absent.
	GetByID(ctx context.Context, id string) (User, error)

	// GetProfileByUserID loads the student profile for a user, if any.
	GetProfileByUserID(ctx context.Context, userID string) (StudentProfile, error)

	// SetActive enables or disables an account. Disabled accounts fail
	// authentication. Returns ErrNotFound when absent.
	SetActive(ctx context.Context, userID string, active bool, now time.Time) error
}
