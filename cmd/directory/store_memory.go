package directory

import (
	"context"
	"strings"
	"sync"
	"time"
)

// MemoryStore is the dev/test fallback when no database is configured.
// It enforces the same uniqueness contract as PostgresStore: conflicts are
// decided under a single lock, so concurrent CreateUser calls with the same
// email produce exactly one winner.
type MemoryStore struct {
	mu       sync.Mutex
	byID     map[string]User
	byEmail  map[string]string         // email_norm -> user id
	profiles map[string]StudentProfile // user id -> profile
	rolls    map[string]string         // roll number -> user id
}

// NewMemoryStore constructs an empty in-memory directory.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:     make(map[string]User),
		byEmail:  make(map[string]string),
		profiles: make(map[string]StudentProfile),
		rolls:    make(map[string]string),
	}
}

// CreateUser inserts a user (and student profile) atomically.
func (s *MemoryStore) CreateUser(ctx context.Context, in CreateUserInput) (CreateUserResult, error) {
	const op = "directory.CreateUser"

	if err := ctx.Err(); err != nil {
		return CreateUserResult{}, err
	}

	email := strings.TrimSpace(in.Email)
	if email == "" {
		return CreateUserResult{}, OpError{Op: op, Kind: ErrInvalidInput, Msg: "email is required"}
	}
	if strings.TrimSpace(in.PasswordHash) == "" {
		return CreateUserResult{}, OpError{Op: op, Kind: ErrInvalidInput, Msg: "password hash is required"}
	}
	if strings.TrimSpace(in.FullName) == "" {
		return CreateUserResult{}, OpError{Op: op, Kind: ErrInvalidInput, Msg: "full name is required"}
	}
	if !in.Role.Valid() {
		return CreateUserResult{}, OpError{Op: op, Kind: ErrInvalidInput, Msg: "unknown role"}
	}
	if in.Role == RoleStudent && (in.Profile == nil || strings.TrimSpace(in.Profile.CollegeRollNumber) == "") {
		return CreateUserResult{}, OpError{Op: op, Kind: ErrInvalidInput, Msg: "student accounts require a roll number"}
	}

	now := in.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	emailNorm := NormalizeEmail(email)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byEmail[emailNorm]; exists {
		return CreateUserResult{}, ConflictError{Op: op, Field: "email"}
	}

	var roll string
	if in.Role == RoleStudent && in.Profile != nil {
		roll = NormalizeRollNumber(in.Profile.CollegeRollNumber)
		if _, exists := s.rolls[roll]; exists {
			return CreateUserResult{}, ConflictError{Op: op, Field: "roll_number"}
		}
	}

	userID, err := NewULID(now)
	if err != nil {
		return CreateUserResult{}, err
	}

	u := User{
		ID:           userID,
		Email:        email,
		EmailNorm:    emailNorm,
		PasswordHash: in.PasswordHash,
		FullName:     in.FullName,
		Role:         in.Role,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	s.byID[userID] = u
	s.byEmail[emailNorm] = userID

	out := CreateUserResult{User: u}

	if roll != "" {
		profileID, err := NewULID(now)
		if err != nil {
			return CreateUserResult{}, err
		}
		p := StudentProfile{
			ID:                profileID,
			UserID:            userID,
			CollegeRollNumber: roll,
			CurrentSemester:   in.Profile.CurrentSemester,
			BranchCode:        trimPtr(in.Profile.BranchCode),
			BatchYear:         in.Profile.BatchYear,
			Phone:             trimPtr(in.Profile.Phone),
			CreatedAt:         now,
			UpdatedAt:         now,
		}
		s.profiles[userID] = p
		s.rolls[roll] = userID
		out.Profile = &p
	}

	return out, nil
}

// GetByEmail resolves a normalized email to a user.
func (s *MemoryStore) GetByEmail(ctx context.Context, email string) (User, error) {
	if err := ctx.Err(); err != nil {
		return User{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.byEmail[NormalizeEmail(email)]
	if !ok {
		return User{}, ErrNotFound
	}
	return s.byID[id], nil
}

// GetByID loads a user by ID.
func (s *MemoryStore) GetByID(ctx context.Context, id string) (User, error) {
	if err := ctx.Err(); err != nil {
		return User{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.byID[strings.TrimSpace(id)]
	if !ok {
		return User{}, ErrNotFound
	}
	return u, nil
}

// SetActive enables or disables an account.
func (s *MemoryStore) SetActive(ctx context.Context, userID string, active bool, now time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.byID[strings.TrimSpace(userID)]
	if !ok {
		return ErrNotFound
	}
	u.Active = active
	u.UpdatedAt = now
	s.byID[u.ID] = u
	return nil
}

// GetProfileByUserID loads the student profile attached to a user.
func (s *MemoryStore) GetProfileByUserID(ctx context.Context, userID string) (StudentProfile, error) {
	if err := ctx.Err(); err != nil {
		return StudentProfile{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.profiles[strings.TrimSpace(userID)]
	if !ok {
		return StudentProfile{}, ErrNotFound
	}
	return p, nil
}
