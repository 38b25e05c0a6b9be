package directory

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore implements the directory over PostgreSQL.
//
// The pgx pool is owned by the caller; this store must not close it.
// Uniqueness conflicts (email, roll number) are mapped to ConflictError with
// a stable logical field name so callers never parse constraint names.
type PostgresStore struct {
	pool   *pgxpool.Pool
	schema string
}

// PostgresOption configures the store.
type PostgresOption func(*PostgresStore) error

var pgIdentRe = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// WithSchema sets the Postgres schema used by the directory (default "campus").
func WithSchema(schema string) PostgresOption {
	return func(s *PostgresStore) error {
		schema = strings.TrimSpace(schema)
		if schema == "" || !pgIdentRe.MatchString(schema) {
			return fmt.Errorf("directory: invalid schema identifier")
		}
		s.schema = schema
		return nil
	}
}

// NewPostgresStore constructs a PostgresStore.
func NewPostgresStore(pool *pgxpool.Pool, opts ...PostgresOption) (*PostgresStore, error) {
	st := &PostgresStore{pool: pool, schema: "campus"}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(st); err != nil {
			return nil, err
		}
	}
	if st.pool == nil {
		return nil, fmt.Errorf("directory: nil pool")
	}
	return st, nil
}

// CreateUser inserts the user row and, for students, the profile row in one
// transaction. The database constraints are the final arbiter of uniqueness:
// a losing concurrent signup surfaces here as ConflictError.
func (s *PostgresStore) CreateUser(ctx context.Context, in CreateUserInput) (CreateUserResult, error) {
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

	userID, err := NewULID(now)
	if err != nil {
		return CreateUserResult{}, err
	}

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{
		IsoLevel:   pgx.ReadCommitted,
		AccessMode: pgx.ReadWrite,
	})
	if err != nil {
		return CreateUserResult{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	users := pgIdent(s.schema, "users")
	profiles := pgIdent(s.schema, "student_profiles")

	emailNorm := NormalizeEmail(email)

	_, err = tx.Exec(ctx,
		`INSERT INTO `+users+` (
		     id, email, email_norm, password_hash, full_name, role, active, created_at, updated_at
		   ) VALUES ($1, $2, $3, $4, $5, $6, TRUE, $7, $7)`,
		userID, email, emailNorm, in.PasswordHash, in.FullName, string(in.Role), now,
	)
	if err != nil {
		if field, ok := classifyUniqueViolation(err); ok {
			return CreateUserResult{}, ConflictError{Op: op, Field: field}
		}
		return CreateUserResult{}, err
	}

	out := CreateUserResult{
		User: User{
			ID:           userID,
			Email:        email,
			EmailNorm:    emailNorm,
			PasswordHash: in.PasswordHash,
			FullName:     in.FullName,
			Role:         in.Role,
			Active:       true,
			CreatedAt:    now,
			UpdatedAt:    now,
		},
	}

	if in.Role == RoleStudent && in.Profile != nil {
		profileID, err := NewULID(now)
		if err != nil {
			return CreateUserResult{}, err
		}
		roll := NormalizeRollNumber(in.Profile.CollegeRollNumber)

		_, err = tx.Exec(ctx,
			`INSERT INTO `+profiles+` (
			     id, user_id, college_roll_number, current_semester, branch_code, batch_year, phone, created_at, updated_at
			   ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)`,
			profileID, userID, roll,
			in.Profile.CurrentSemester, trimPtr(in.Profile.BranchCode),
			in.Profile.BatchYear, trimPtr(in.Profile.Phone), now,
		)
		if err != nil {
			if field, ok := classifyUniqueViolation(err); ok {
				return CreateUserResult{}, ConflictError{Op: op, Field: field}
			}
			return CreateUserResult{}, err
		}

		out.Profile = &StudentProfile{
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
	}

	if err := tx.Commit(ctx); err != nil {
		return CreateUserResult{}, err
	}

	return out, nil
}

// GetByEmail resolves a normalized email to a user row.
func (s *PostgresStore) GetByEmail(ctx context.Context, email string) (User, error) {
	return s.getUser(ctx, `email_norm = $1`, NormalizeEmail(email))
}

// GetByID loads a user row by ID.
func (s *PostgresStore) GetByID(ctx context.Context, id string) (User, error) {
	return s.getUser(ctx, `id = $1`, strings.TrimSpace(id))
}

func (s *PostgresStore) getUser(ctx context.Context, where string, arg string) (User, error) {
	if err := ctx.Err(); err != nil {
		return User{}, err
	}
	if arg == "" {
		return User{}, OpError{Op: "directory.getUser", Kind: ErrInvalidInput, Msg: "empty identifier"}
	}

	users := pgIdent(s.schema, "users")

	var (
		u    User
		role string
	)
	err := s.pool.QueryRow(ctx,
		`SELECT id, email, email_norm, password_hash, full_name, role, active, profile_image_url, created_at, updated_at
		   FROM `+users+`
		  WHERE `+where,
		arg,
	).Scan(
		&u.ID, &u.Email, &u.EmailNorm, &u.PasswordHash, &u.FullName,
		&role, &u.Active, &u.ProfileImageURL, &u.CreatedAt, &u.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, err
	}

	u.Role = Role(role)
	return u, nil
}

// SetActive enables or disables an account.
func (s *PostgresStore) SetActive(ctx context.Context, userID string, active bool, now time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	users := pgIdent(s.schema, "users")

	ct, err := s.pool.Exec(ctx,
		`UPDATE `+users+` SET active = $2, updated_at = $3 WHERE id = $1`,
		strings.TrimSpace(userID), active, now,
	)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// GetProfileByUserID loads the student profile attached to a user.
func (s *PostgresStore) GetProfileByUserID(ctx context.Context, userID string) (StudentProfile, error) {
	if err := ctx.Err(); err != nil {
		return StudentProfile{}, err
	}

	profiles := pgIdent(s.schema, "student_profiles")

	var p StudentProfile
	err := s.pool.QueryRow(ctx,
		`SELECT id, user_id, college_roll_number, current_semester, branch_code, batch_year, phone, created_at, updated_at
		   FROM `+profiles+`
		  WHERE user_id = $1`,
		strings.TrimSpace(userID),
	).Scan(
		&p.ID, &p.UserID, &p.CollegeRollNumber, &p.CurrentSemester,
		&p.BranchCode, &p.BatchYear, &p.Phone, &p.CreatedAt, &p.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return StudentProfile{}, ErrNotFound
	}
	if err != nil {
		return StudentProfile{}, err
	}

	return p, nil
}

// ---- helpers ----

func trimPtr(p *string) *string {
	if p == nil {
		return nil
	}
	s := strings.TrimSpace(*p)
	if s == "" {
		return nil
	}
	return &s
}

// pgIdent safely quotes a schema-qualified identifier: "schema"."name".
func pgIdent(schema, name string) string {
	return pgx.Identifier{schema, name}.Sanitize()
}

// classifyUniqueViolation maps a Postgres unique violation (23505) to a stable
// logical field. Prefer constraint names from the schema; fall back to
// substring heuristics so renamed constraints still classify.
func classifyUniqueViolation(err error) (field string, ok bool) {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return "", false
	}
	if pgErr.Code != "23505" {
		return "", false
	}

	c := strings.ToLower(strings.TrimSpace(pgErr.ConstraintName))
	switch c {
	case "uq_users_email_norm":
		return "email", true
	case "uq_student_profiles_roll_number":
		return "roll_number", true
	default:
		switch {
		case strings.Contains(c, "email"):
			return "email", true
		case strings.Contains(c, "roll"):
			return "roll_number", true
		default:
			return "unique", true
		}
	}
}
