package authapi

import "time"

type signupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`

	RollNumber string  `json:"roll_number"`
	Semester   *int    `json:"semester"`
	BranchCode *string `json:"branch_code"`
	BatchYear  *int    `json:"batch_year"`
	Phone      *string `json:"phone"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type validateRequest struct {
	Handle string `json:"handle"`
}

type userResponse struct {
	ID              string    `json:"id"`
	Email           string    `json:"email"`
	FullName        string    `json:"full_name"`
	Role            string    `json:"role"`
	ProfileImageURL *string   `json:"profile_image_url"`
	CreatedAt       time.Time `json:"created_at"`
}

type profileResponse struct {
	CollegeRollNumber string  `json:"college_roll_number"`
	CurrentSemester   *int    `json:"current_semester"`
	BranchCode        *string `json:"branch_code"`
	BatchYear         *int    `json:"batch_year"`
	Phone             *string `json:"phone"`
}

type sessionResponse struct {
	Handle    string    `json:"handle"`
	Context   string    `json:"context"`
	ExpiresAt time.Time `json:"expires_at"`
}

type authResponse struct {
	User           userResponse     `json:"user"`
	Profile        *profileResponse `json:"profile,omitempty"`
	Token          string           `json:"token"`
	TokenExpiresAt time.Time        `json:"token_expires_at"`
	Session        sessionResponse  `json:"session"`
}

type validateResponse struct {
	Valid   bool           `json:"valid"`
	Reason  string         `json:"reason,omitempty"`
	Session *sessionDetail `json:"session,omitempty"`
}

type sessionDetail struct {
	SubjectID      string    `json:"subject_id"`
	Context        string    `json:"context"`
	Token          string    `json:"token"`
	CreatedAt      time.Time `json:"created_at"`
	LastAccessedAt time.Time `json:"last_accessed_at"`
	ExpiresAt      time.Time `json:"expires_at"`
}

type meResponse struct {
	User    userResponse     `json:"user"`
	Profile *profileResponse `json:"profile,omitempty"`
}
