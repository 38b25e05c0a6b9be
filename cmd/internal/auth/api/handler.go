package authapi

import (
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"campusauth/cmd/directory"
	"campusauth/cmd/internal/auth/account"
	"campusauth/cmd/internal/auth/session"
	"campusauth/cmd/security/password"
)

// handleHeader carries the opaque session handle on authenticated requests.
const handleHeader = "X-Session-Handle"

// Handler wires HTTP auth endpoints to the account and session services.
type Handler struct {
	log *slog.Logger
	cfg Config

	accounts *account.Service
	sessions *session.Service
}

// NewHandler constructs an auth Handler.
func NewHandler(log *slog.Logger, cfg Config, accounts *account.Service, sessions *session.Service) (*Handler, error) {
	if log == nil {
		log = slog.Default()
	}
	if accounts == nil || sessions == nil {
		return nil, errors.New("auth: nil service")
	}

	return &Handler{
		log:      log,
		cfg:      cfg,
		accounts: accounts,
		sessions: sessions,
	}, nil
}

// Register wires auth routes onto the provided mux.
func (h *Handler) Register(mux *http.ServeMux) {
	if h == nil || mux == nil {
		return
	}
	mux.HandleFunc("/auth/signup", h.handleSignup)
	mux.HandleFunc("/auth/login", h.handleLogin)
	mux.HandleFunc("/auth/validate", h.handleValidate)
	mux.HandleFunc("/auth/logout", h.handleLogout)
	mux.HandleFunc("/auth/logout_all", h.handleLogoutAll)
	mux.HandleFunc("/me", h.handleMe)
}

// ---- handlers ----

func (h *Handler) handleSignup(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req signupRequest
	if err := decodeJSON(w, r, h.cfg.MaxBodyBytes, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid request body")
		return
	}

	if strings.TrimSpace(req.Email) == "" || req.Password == "" || strings.TrimSpace(req.FullName) == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "email, password and full_name are required")
		return
	}

	ctx := r.Context()
	now := time.Now().UTC()

	res, err := h.accounts.Signup(ctx, now, account.SignupInput{
		Email:      req.Email,
		Password:   req.Password,
		FullName:   req.FullName,
		Role:       req.Role,
		RollNumber: req.RollNumber,
		Semester:   req.Semester,
		BranchCode: req.BranchCode,
		BatchYear:  req.BatchYear,
		Phone:      req.Phone,
		IP:         clientIP(r, h.cfg.TrustProxy),
		UserAgent:  strings.TrimSpace(r.UserAgent()),
	})
	if err != nil {
		h.writeSignupError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toAuthResponse(res))
}

func (h *Handler) writeSignupError(w http.ResponseWriter, err error) {
	var ce directory.ConflictError
	switch {
	case errors.As(err, &ce):
		switch ce.Field {
		case "email":
			writeError(w, http.StatusConflict, "email_taken", "email already registered")
		case "roll_number":
			writeError(w, http.StatusConflict, "roll_number_taken", "roll number already registered")
		default:
			writeError(w, http.StatusConflict, "conflict", "account already exists")
		}
	case errors.Is(err, password.ErrPasswordTooShort), errors.Is(err, password.ErrPasswordTooLong):
		writeError(w, http.StatusBadRequest, "invalid_password", "password does not meet the length policy")
	case directory.IsInvalidInput(err):
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid input")
	default:
		h.log.Error("auth.signup.fail", "err", err)
		writeError(w, http.StatusInternalServerError, "server_error", "internal error")
	}
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req loginRequest
	if err := decodeJSON(w, r, h.cfg.MaxBodyBytes, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid request body")
		return
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "email and password are required")
		return
	}

	ctx := r.Context()
	now := time.Now().UTC()

	res, err := h.accounts.Login(ctx, now, account.LoginInput{
		Email:     req.Email,
		Password:  req.Password,
		IP:        clientIP(r, h.cfg.TrustProxy),
		UserAgent: strings.TrimSpace(r.UserAgent()),
	})
	if err != nil {
		if errors.Is(err, account.ErrUnauthorized) {
			writeError(w, http.StatusUnauthorized, "invalid_credentials", "invalid credentials")
			return
		}
		h.log.Error("auth.login.fail", "err", err)
		writeError(w, http.StatusInternalServerError, "server_error", "internal error")
		return
	}

	writeJSON(w, http.StatusOK, toAuthResponse(res))
}

func (h *Handler) handleValidate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	handle := strings.TrimSpace(r.Header.Get(handleHeader))
	if handle == "" && r.ContentLength != 0 {
		var req validateRequest
		if err := decodeJSON(w, r, h.cfg.MaxBodyBytes, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_json", "invalid request body")
			return
		}
		handle = strings.TrimSpace(req.Handle)
	}
	if handle == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "session handle is required")
		return
	}

	v, err := h.sessions.ValidateSession(r.Context(), time.Now().UTC(), handle)
	if err != nil {
		h.log.Error("auth.validate.fail", "err", err)
		writeError(w, http.StatusInternalServerError, "server_error", "internal error")
		return
	}

	resp := validateResponse{Valid: v.Valid, Reason: v.Reason}
	if v.Valid {
		resp.Session = &sessionDetail{
			SubjectID:      v.Session.SubjectID,
			Context:        string(v.Session.Context),
			Token:          v.Session.BoundToken,
			CreatedAt:      v.Session.CreatedAt,
			LastAccessedAt: v.Session.LastAccessedAt,
			ExpiresAt:      v.Session.ExpiresAt,
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	handle := strings.TrimSpace(r.Header.Get(handleHeader))
	if handle == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "session handle is required")
		return
	}

	// Idempotent: logging out an unknown or inactive handle still succeeds.
	if err := h.sessions.InvalidateSession(r.Context(), handle); err != nil {
		h.log.Error("auth.logout.fail", "err", err)
		writeError(w, http.StatusInternalServerError, "server_error", "internal error")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleLogoutAll(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	rec, ok := h.requireSession(w, r)
	if !ok {
		return
	}

	if err := h.sessions.InvalidateAllForSubject(r.Context(), rec.SubjectID); err != nil {
		h.log.Error("auth.logout_all.fail", "err", err)
		writeError(w, http.StatusInternalServerError, "server_error", "internal error")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	rec, ok := h.requireSession(w, r)
	if !ok {
		return
	}

	u, p, err := h.accounts.Profile(r.Context(), rec.SubjectID)
	if err != nil {
		if directory.IsNotFound(err) {
			writeError(w, http.StatusUnauthorized, "not_found", "user not found")
			return
		}
		h.log.Error("auth.me.fail", "err", err)
		writeError(w, http.StatusInternalServerError, "server_error", "internal error")
		return
	}

	writeJSON(w, http.StatusOK, meResponse{
		User:    toUserResponse(u),
		Profile: toProfileResponse(p),
	})
}

// ---- helpers ----

func (h *Handler) requireSession(w http.ResponseWriter, r *http.Request) (session.Record, bool) {
	handle := strings.TrimSpace(r.Header.Get(handleHeader))
	if handle == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing session handle")
		return session.Record{}, false
	}

	v, err := h.sessions.ValidateSession(r.Context(), time.Now().UTC(), handle)
	if err != nil {
		h.log.Error("auth.session.validate.fail", "err", err)
		writeError(w, http.StatusInternalServerError, "server_error", "internal error")
		return session.Record{}, false
	}
	if !v.Valid {
		writeError(w, http.StatusUnauthorized, "unauthorized", "invalid session")
		return session.Record{}, false
	}
	return v.Session, true
}

func toAuthResponse(res account.AuthResult) authResponse {
	return authResponse{
		User:           toUserResponse(res.User),
		Profile:        toProfileResponse(res.Profile),
		Token:          res.Token,
		TokenExpiresAt: res.TokenExpiresAt,
		Session: sessionResponse{
			Handle:    res.Session.Handle,
			Context:   string(res.Session.Context),
			ExpiresAt: res.Session.ExpiresAt,
		},
	}
}

func toUserResponse(u directory.User) userResponse {
	return userResponse{
		ID:              u.ID,
		Email:           u.Email,
		FullName:        u.FullName,
		Role:            string(u.Role),
		ProfileImageURL: u.ProfileImageURL,
		CreatedAt:       u.CreatedAt,
	}
}

func toProfileResponse(p *directory.StudentProfile) *profileResponse {
	if p == nil {
		return nil
	}
	return &profileResponse{
		CollegeRollNumber: p.CollegeRollNumber,
		CurrentSemester:   p.CurrentSemester,
		BranchCode:        p.BranchCode,
		BatchYear:         p.BatchYear,
		Phone:             p.Phone,
	}
}

func clientIP(r *http.Request, trustProxy bool) net.IP {
	if trustProxy {
		if ip := parseForwardedIP(r.Header.Get("X-Forwarded-For")); ip != nil {
			return ip
		}
		if ip := net.ParseIP(strings.TrimSpace(r.Header.Get("X-Real-IP"))); ip != nil {
			return ip
		}
	}
	host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
	if err == nil {
		if ip := net.ParseIP(host); ip != nil {
			return ip
		}
	}
	return nil
}

func parseForwardedIP(raw string) net.IP {
	if raw == "" {
		return nil
	}
	for _, p := range strings.Split(raw, ",") {
		if ip := net.ParseIP(strings.TrimSpace(p)); ip != nil {
			return ip
		}
	}
	return nil
}
