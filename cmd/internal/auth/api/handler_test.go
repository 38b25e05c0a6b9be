package authapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"campusauth/cmd/directory"
	"campusauth/cmd/internal/auth/account"
	"campusauth/cmd/internal/auth/session"
	"campusauth/cmd/security/password"
	"campusauth/cmd/security/token"
)

func newTestMux(t *testing.T) *http.ServeMux {
	t.Helper()

	pw := password.DefaultConfig()
	pw.Params.MemoryKiB = 8 * 1024
	pw.Params.Time = 1

	iss, err := token.NewIssuer(token.Config{
		Secret: []byte("0123456789abcdef0123456789abcdef"),
		Issuer: "campusauth",
		TTL:    time.Hour,
	})
	if err != nil {
		t.Fatalf("NewIssuer: %v", err)
	}

	sessions := session.NewService(session.DefaultConfig(), session.NewMemoryStore(), nil)
	accounts, err := account.NewService(directory.NewMemoryStore(), pw, iss, sessions, nil)
	if err != nil {
		t.Fatalf("account.NewService: %v", err)
	}

	h, err := NewHandler(nil, LoadConfigFromEnv(), accounts, sessions)
	if err != nil {
		t.Fatalf("NewHandler: %v", err)
	}

	mux := http.NewServeMux()
	h.Register(mux)
	return mux
}

func doJSON(t *testing.T, mux *http.ServeMux, method, path, body string, hdr map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range hdr {
		req.Header.Set(k, v)
	}

	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	return rr
}

const signupBody = `{
	"email": "ada@campus.edu",
	"password": "correct horse battery",
	"full_name": "Ada Lovelace",
	"role": "STUDENT",
	"roll_number": "CS-2024-001"
}`

func signUp(t *testing.T, mux *http.ServeMux) authResponse {
	t.Helper()

	rr := doJSON(t, mux, http.MethodPost, "/auth/signup", signupBody, nil)
	if rr.Code != http.StatusCreated {
		t.Fatalf("signup status=%d body=%s", rr.Code, rr.Body.String())
	}

	var resp authResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode signup response: %v", err)
	}
	return resp
}

func TestSignupEndpoint(t *testing.T) {
	mux := newTestMux(t)

	resp := signUp(t, mux)
	if resp.User.Email != "ada@campus.edu" {
		t.Fatalf("email=%q", resp.User.Email)
	}
	if resp.User.Role != "STUDENT" {
		t.Fatalf("role=%q", resp.User.Role)
	}
	if resp.Profile == nil || resp.Profile.CollegeRollNumber != "CS-2024-001" {
		t.Fatalf("profile missing: %+v", resp.Profile)
	}
	if resp.Token == "" || resp.Session.Handle == "" {
		t.Fatalf("token or session handle missing")
	}
	if resp.Session.Context != "STUDENT" {
		t.Fatalf("session context=%q", resp.Session.Context)
	}
}

func TestSignupDuplicateEmail(t *testing.T) {
	mux := newTestMux(t)
	signUp(t, mux)

	dup := strings.Replace(signupBody, "CS-2024-001", "CS-2024-002", 1)
	rr := doJSON(t, mux, http.MethodPost, "/auth/signup", dup, nil)
	if rr.Code != http.StatusConflict {
		t.Fatalf("status=%d want 409, body=%s", rr.Code, rr.Body.String())
	}
	if !strings.Contains(rr.Body.String(), "email_taken") {
		t.Fatalf("expected email_taken code, got %s", rr.Body.String())
	}
}

func TestSignupShortPassword(t *testing.T) {
	mux := newTestMux(t)

	body := strings.Replace(signupBody, "correct horse battery", "short", 1)
	rr := doJSON(t, mux, http.MethodPost, "/auth/signup", body, nil)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status=%d want 400, body=%s", rr.Code, rr.Body.String())
	}
}

func TestSignupMissingRollNumber(t *testing.T) {
	mux := newTestMux(t)

	body := strings.Replace(signupBody, `"roll_number": "CS-2024-001"`, `"roll_number": ""`, 1)
	rr := doJSON(t, mux, http.MethodPost, "/auth/signup", body, nil)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status=%d want 400, body=%s", rr.Code, rr.Body.String())
	}
}

func TestLoginEndpoint(t *testing.T) {
	mux := newTestMux(t)
	signUp(t, mux)

	rr := doJSON(t, mux, http.MethodPost, "/auth/login",
		`{"email":"ada@campus.edu","password":"correct horse battery"}`, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rr.Code, rr.Body.String())
	}

	var resp authResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Session.Handle == "" {
		t.Fatalf("login did not create a session")
	}
}

func TestLoginFailuresAreUniform(t *testing.T) {
	mux := newTestMux(t)
	signUp(t, mux)

	wrongPw := doJSON(t, mux, http.MethodPost, "/auth/login",
		`{"email":"ada@campus.edu","password":"wrong password"}`, nil)
	noUser := doJSON(t, mux, http.MethodPost, "/auth/login",
		`{"email":"nobody@campus.edu","password":"wrong password"}`, nil)

	if wrongPw.Code != http.StatusUnauthorized || noUser.Code != http.StatusUnauthorized {
		t.Fatalf("statuses %d/%d want 401/401", wrongPw.Code, noUser.Code)
	}
	if wrongPw.Body.String() != noUser.Body.String() {
		t.Fatalf("login failure bodies differ:\n%s\n%s", wrongPw.Body.String(), noUser.Body.String())
	}
}

func TestValidateEndpoint(t *testing.T) {
	mux := newTestMux(t)
	signed := signUp(t, mux)

	rr := doJSON(t, mux, http.MethodPost, "/auth/validate", "",
		map[string]string{handleHeader: signed.Session.Handle})
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rr.Code, rr.Body.String())
	}

	var resp validateResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.Valid {
		t.Fatalf("fresh session invalid: %+v", resp)
	}
	if resp.Session == nil || resp.Session.SubjectID != signed.User.ID {
		t.Fatalf("session detail missing or wrong: %+v", resp.Session)
	}
	if resp.Session.Token != signed.Token {
		t.Fatalf("bound token not returned")
	}
}

func TestValidateViaBody(t *testing.T) {
	mux := newTestMux(t)
	signed := signUp(t, mux)

	rr := doJSON(t, mux, http.MethodPost, "/auth/validate",
		`{"handle":"`+signed.Session.Handle+`"}`, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rr.Code, rr.Body.String())
	}
	if !strings.Contains(rr.Body.String(), `"valid":true`) {
		t.Fatalf("expected valid=true, got %s", rr.Body.String())
	}
}

func TestValidateUnknownHandle(t *testing.T) {
	mux := newTestMux(t)

	rr := doJSON(t, mux, http.MethodPost, "/auth/validate", "",
		map[string]string{handleHeader: "bogus"})
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rr.Code, rr.Body.String())
	}

	var resp validateResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Valid || resp.Session != nil {
		t.Fatalf("unknown handle validated: %+v", resp)
	}
}

func TestLogoutEndpointIsIdempotent(t *testing.T) {
	mux := newTestMux(t)
	signed := signUp(t, mux)

	hdr := map[string]string{handleHeader: signed.Session.Handle}
	for i := 0; i < 2; i++ {
		rr := doJSON(t, mux, http.MethodPost, "/auth/logout", "", hdr)
		if rr.Code != http.StatusNoContent {
			t.Fatalf("logout #%d status=%d", i+1, rr.Code)
		}
	}

	rr := doJSON(t, mux, http.MethodPost, "/auth/validate", "", hdr)
	if !strings.Contains(rr.Body.String(), `"valid":false`) {
		t.Fatalf("session valid after logout: %s", rr.Body.String())
	}
}

func TestLogoutAllEndpoint(t *testing.T) {
	mux := newTestMux(t)
	first := signUp(t, mux)

	login := doJSON(t, mux, http.MethodPost, "/auth/login",
		`{"email":"ada@campus.edu","password":"correct horse battery"}`, nil)
	var second authResponse
	if err := json.Unmarshal(login.Body.Bytes(), &second); err != nil {
		t.Fatalf("decode login: %v", err)
	}

	rr := doJSON(t, mux, http.MethodPost, "/auth/logout_all", "",
		map[string]string{handleHeader: second.Session.Handle})
	if rr.Code != http.StatusNoContent {
		t.Fatalf("logout_all status=%d body=%s", rr.Code, rr.Body.String())
	}

	for _, handle := range []string{first.Session.Handle, second.Session.Handle} {
		v := doJSON(t, mux, http.MethodPost, "/auth/validate", "",
			map[string]string{handleHeader: handle})
		if !strings.Contains(v.Body.String(), `"valid":false`) {
			t.Fatalf("session survived logout_all: %s", v.Body.String())
		}
	}
}

func TestMeEndpoint(t *testing.T) {
	mux := newTestMux(t)
	signed := signUp(t, mux)

	rr := doJSON(t, mux, http.MethodGet, "/me", "",
		map[string]string{handleHeader: signed.Session.Handle})
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rr.Code, rr.Body.String())
	}

	var resp meResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.User.ID != signed.User.ID {
		t.Fatalf("me returned a different user")
	}
	if resp.Profile == nil {
		t.Fatalf("student profile missing from /me")
	}
}

func TestMeWithoutSession(t *testing.T) {
	mux := newTestMux(t)

	rr := doJSON(t, mux, http.MethodGet, "/me", "", nil)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("status=%d want 401", rr.Code)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	mux := newTestMux(t)

	for _, path := range []string{"/auth/signup", "/auth/login", "/auth/validate", "/auth/logout", "/auth/logout_all"} {
		rr := doJSON(t, mux, http.MethodGet, path, "", nil)
		if rr.Code != http.StatusMethodNotAllowed {
			t.Fatalf("GET %s status=%d want 405", path, rr.Code)
		}
	}
}
