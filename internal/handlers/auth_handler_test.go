package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"finplan/internal/auth"
	"finplan/internal/database"
	"finplan/internal/repository"
	"finplan/internal/service"
)

func newTestAuthHandler(t *testing.T) (*AuthHandler, *auth.Sessions) {
	t.Helper()

	db, err := database.OpenSQLite(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	// Concurrent writers queue instead of failing with SQLITE_BUSY
	db.DB.SetMaxOpenConns(1)

	if err := db.RunMigrations("../../migrations"); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	sessions := auth.NewSessions(testSecret, 7*24*time.Hour)
	userRepo := repository.NewUserRepository(db)
	authService := service.NewAuthService(userRepo, sessions, nil, time.Hour)
	return NewAuthHandler(authService, sessions), sessions
}

func postJSON(handler http.HandlerFunc, path, body string) *httptest.ResponseRecorder {
	r := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	r.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	handler(w, r)
	return w
}

func sessionCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range w.Result().Cookies() {
		if c.Name == auth.SessionCookieName {
			return c
		}
	}
	t.Fatalf("response has no %s cookie", auth.SessionCookieName)
	return nil
}

func TestRegisterHandler(t *testing.T) {
	handler, sessions := newTestAuthHandler(t)

	t.Run("creates account and session", func(t *testing.T) {
		w := postJSON(handler.Register, "/api/auth/register",
			`{"email":"new@example.com","password":"secret123","first_name":"New","last_name":"User"}`)

		if w.Code != http.StatusCreated {
			t.Fatalf("status = %d, want 201, body %s", w.Code, w.Body.String())
		}

		var resp sessionResponse
		if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if resp.User == nil || resp.User.Email != "new@example.com" {
			t.Errorf("user = %+v, want new@example.com", resp.User)
		}
		if _, err := sessions.Validate(resp.Token); err != nil {
			t.Errorf("returned token does not validate: %v", err)
		}

		cookie := sessionCookie(t, w)
		if cookie.Value != resp.Token {
			t.Error("cookie token differs from body token")
		}
		if !cookie.HttpOnly {
			t.Error("session cookie should be HttpOnly")
		}
	})

	t.Run("duplicate email", func(t *testing.T) {
		w := postJSON(handler.Register, "/api/auth/register",
			`{"email":"new@example.com","password":"secret123","first_name":"New","last_name":"User"}`)

		if w.Code != http.StatusConflict {
			t.Fatalf("status = %d, want 409", w.Code)
		}
		var body errorResponse
		json.NewDecoder(w.Body).Decode(&body)
		if body.Error != "Email already registered" {
			t.Errorf("error = %q", body.Error)
		}
	})

	t.Run("short password", func(t *testing.T) {
		w := postJSON(handler.Register, "/api/auth/register",
			`{"email":"other@example.com","password":"short","first_name":"O","last_name":"U"}`)

		if w.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", w.Code)
		}
	})

	t.Run("malformed body", func(t *testing.T) {
		w := postJSON(handler.Register, "/api/auth/register", `{not json`)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", w.Code)
		}
	})
}

func TestLoginHandler(t *testing.T) {
	handler, _ := newTestAuthHandler(t)
	postJSON(handler.Register, "/api/auth/register",
		`{"email":"user@example.com","password":"secret123","first_name":"Test","last_name":"User"}`)

	t.Run("valid credentials", func(t *testing.T) {
		w := postJSON(handler.Login, "/api/auth/login",
			`{"email":"user@example.com","password":"secret123"}`)

		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200, body %s", w.Code, w.Body.String())
		}
		cookie := sessionCookie(t, w)
		if cookie.Value == "" {
			t.Error("session cookie is empty")
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		w := postJSON(handler.Login, "/api/auth/login",
			`{"email":"user@example.com","password":"wrongpass"}`)

		if w.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d, want 401", w.Code)
		}
		var body errorResponse
		json.NewDecoder(w.Body).Decode(&body)
		if body.Error != ErrInvalidCredentials {
			t.Errorf("error = %q, want %q", body.Error, ErrInvalidCredentials)
		}
	})

	t.Run("unknown email matches wrong password", func(t *testing.T) {
		w := postJSON(handler.Login, "/api/auth/login",
			`{"email":"nobody@example.com","password":"secret123"}`)

		if w.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d, want 401", w.Code)
		}
		var body errorResponse
		json.NewDecoder(w.Body).Decode(&body)
		if body.Error != ErrInvalidCredentials {
			t.Errorf("error = %q, want %q", body.Error, ErrInvalidCredentials)
		}
	})
}

func TestSessionHandler(t *testing.T) {
	handler, sessions := newTestAuthHandler(t)
	middleware := NewMiddleware(sessions, nil)
	endpoint := middleware.RequireAuth(handler.Session)

	w := postJSON(handler.Register, "/api/auth/register",
		`{"email":"user@example.com","password":"secret123","first_name":"Test","last_name":"User"}`)
	token := sessionCookie(t, w).Value

	t.Run("valid token", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/api/auth/session", nil)
		r.Header.Set("Cookie", auth.SessionCookieName+"="+token)
		w := httptest.NewRecorder()
		endpoint(w, r)

		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200, body %s", w.Code, w.Body.String())
		}
		var resp struct {
			User struct {
				Email string `json:"email"`
			} `json:"user"`
		}
		if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if resp.User.Email != "user@example.com" {
			t.Errorf("email = %q", resp.User.Email)
		}
	})

	t.Run("no token", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/api/auth/session", nil)
		w := httptest.NewRecorder()
		endpoint(w, r)

		if w.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d, want 401", w.Code)
		}
	})
}

func TestLogoutHandler(t *testing.T) {
	handler, _ := newTestAuthHandler(t)

	w := postJSON(handler.Logout, "/api/auth/logout", `{}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	cookie := sessionCookie(t, w)
	if cookie.Value != "" || cookie.MaxAge != -1 {
		t.Errorf("cookie = %q maxage %d, want cleared", cookie.Value, cookie.MaxAge)
	}
}

func TestResetHandlers(t *testing.T) {
	handler, _ := newTestAuthHandler(t)
	postJSON(handler.Register, "/api/auth/register",
		`{"email":"user@example.com","password":"secret123","first_name":"Test","last_name":"User"}`)

	t.Run("request is uniform for unknown email", func(t *testing.T) {
		known := postJSON(handler.RequestReset, "/api/auth/reset", `{"email":"user@example.com"}`)
		unknown := postJSON(handler.RequestReset, "/api/auth/reset", `{"email":"nobody@example.com"}`)

		if known.Code != http.StatusOK || unknown.Code != http.StatusOK {
			t.Fatalf("statuses = %d, %d, want 200, 200", known.Code, unknown.Code)
		}
		if known.Body.String() != unknown.Body.String() {
			t.Errorf("responses differ: %s vs %s", known.Body.String(), unknown.Body.String())
		}
	})

	t.Run("confirm with bogus token", func(t *testing.T) {
		w := postJSON(handler.ConfirmReset, "/api/auth/reset/confirm",
			`{"token":"bogus","password":"newsecret1"}`)

		if w.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", w.Code)
		}
		var body errorResponse
		json.NewDecoder(w.Body).Decode(&body)
		if body.Error != "Invalid or expired token" {
			t.Errorf("error = %q", body.Error)
		}
	})
}
