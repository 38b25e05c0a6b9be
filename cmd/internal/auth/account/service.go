package account

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"time"

	"campusauth/cmd/directory"
	"campusauth/cmd/internal/auth/session"
	"campusauth/cmd/security/password"
	"campusauth/cmd/security/token"
)

// Service wires the directory, password hashing, token issuing and session
// creation into the two credential flows.
type Service struct {
	dir      directory.Store
	pw       password.Config
	tokens   *token.Issuer
	sessions *session.Service
	log      *slog.Logger

	// dummyHash is verified against on login when the account does not
	// exist, so both paths pay for one Argon2id computation.
	dummyHash string
}

// NewService constructs the account service. It pre-computes the dummy hash
// once so login misses do not pay for an extra random draw.
func NewService(dir directory.Store, pw password.Config, tokens *token.Issuer, sessions *session.Service, log *slog.Logger) (*Service, error) {
	if log == nil {
		log = slog.Default()
	}

	dummy, err := pw.DummyHash()
	if err != nil {
		return nil, fmt.Errorf("account: dummy hash: %w", err)
	}

	return &Service{
		dir:       dir,
		pw:        pw,
		tokens:    tokens,
		sessions:  sessions,
		log:       log,
		dummyHash: dummy,
	}, nil
}

// SignupInput is a registration request. Role defaults to STUDENT when empty
// or unrecognized; student signups must carry a roll number.
type SignupInput struct {
	Email    string
	Password string
	FullName string
	Role     string

	RollNumber string
	Semester   *int
	BranchCode *string
	BatchYear  *int
	Phone      *string

	IP        net.IP
	UserAgent string
}

// LoginInput is an authentication attempt.
type LoginInput struct {
	Email    string
	Password string

	IP        net.IP
	UserAgent string
}

// AuthResult is the successful outcome of signup or login.
type AuthResult struct {
	User    directory.User
	Profile *directory.StudentProfile

	Token          string
	TokenExpiresAt time.Time
	Session        session.Record
}

// Signup registers a new account and signs it in.
//
// Uniqueness of email and roll number is decided by the directory store, not
// by a pre-check here; a duplicate surfaces as a directory.ConflictError.
// If session creation fails after the account was stored, the error is
// returned but the account stands; the user logs in normally afterwards.
func (s *Service) Signup(ctx context.Context, now time.Time, in SignupInput) (AuthResult, error) {
	if err := s.pw.Check(in.Password); err != nil {
		return AuthResult{}, err
	}

	hash, err := s.pw.Hash(in.Password)
	if err != nil {
		return AuthResult{}, err
	}

	role := directory.ParseRole(in.Role)

	create := directory.CreateUserInput{
		Email:        in.Email,
		PasswordHash: hash,
		FullName:     in.FullName,
		Role:         role,
		Now:          now,
	}
	if role == directory.RoleStudent {
		create.Profile = &directory.CreateProfileInput{
			CollegeRollNumber: in.RollNumber,
			CurrentSemester:   in.Semester,
			BranchCode:        in.BranchCode,
			BatchYear:         in.BatchYear,
			Phone:             in.Phone,
		}
	}

	res, err := s.dir.CreateUser(ctx, create)
	if err != nil {
		return AuthResult{}, err
	}

	s.log.Info("account.signup",
		"user_id", res.User.ID,
		"role", string(res.User.Role),
	)

	return s.establish(ctx, now, res.User, res.Profile, in.IP, in.UserAgent)
}

// Login authenticates an email and password pair and signs the subject in.
func (s *Service) Login(ctx context.Context, now time.Time, in LoginInput) (AuthResult, error) {
	u, err := s.dir.GetByEmail(ctx, in.Email)
	if directory.IsNotFound(err) {
		// Burn a verification anyway so a miss is as slow as a mismatch.
		if _, verr := s.pw.Verify(s.dummyHash, in.Password); verr != nil {
			s.log.Error("account.dummy_verify.fail", "err", verr)
		}
		return AuthResult{}, ErrUnauthorized
	}
	if err != nil {
		return AuthResult{}, err
	}

	ok, err := s.pw.Verify(u.PasswordHash, in.Password)
	if err != nil {
		// A stored hash we cannot parse is an operational fault, but the
		// caller still only learns "unauthorized".
		s.log.Error("account.verify.fail", "user_id", u.ID, "err", err)
		return AuthResult{}, ErrUnauthorized
	}
	if !ok || !u.Active {
		return AuthResult{}, ErrUnauthorized
	}

	var profile *directory.StudentProfile
	if u.Role == directory.RoleStudent {
		p, err := s.dir.GetProfileByUserID(ctx, u.ID)
		if err == nil {
			profile = &p
		} else if !directory.IsNotFound(err) {
			return AuthResult{}, err
		}
	}

	s.log.Info("account.login", "user_id", u.ID)

	return s.establish(ctx, now, u, profile, in.IP, in.UserAgent)
}

// Profile loads the user and, for students, the attached profile.
func (s *Service) Profile(ctx context.Context, userID string) (directory.User, *directory.StudentProfile, error) {
	u, err := s.dir.GetByID(ctx, userID)
	if err != nil {
		return directory.User{}, nil, err
	}

	if u.Role != directory.RoleStudent {
		return u, nil, nil
	}

	p, err := s.dir.GetProfileByUserID(ctx, u.ID)
	if directory.IsNotFound(err) {
		return u, nil, nil
	}
	if err != nil {
		return directory.User{}, nil, err
	}
	return u, &p, nil
}

// establish issues a bearer token and creates the session bound to it.
func (s *Service) establish(ctx context.Context, now time.Time, u directory.User, profile *directory.StudentProfile, ip net.IP, userAgent string) (AuthResult, error) {
	signed, exp, err := s.tokens.Issue(now, token.Identity{
		SubjectID: u.ID,
		Email:     u.Email,
		FullName:  u.FullName,
		Role:      string(u.Role),
	})
	if err != nil {
		return AuthResult{}, err
	}

	rec, err := s.sessions.CreateSession(ctx, now, u.ID, u.Role, signed, ip, userAgent)
	if err != nil {
		return AuthResult{}, err
	}

	return AuthResult{
		User:           u,
		Profile:        profile,
		Token:          signed,
		TokenExpiresAt: exp,
		Session:        rec,
	}, nil
}
