package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"finplan/internal/auth"
	"finplan/internal/security"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func TestRequireAuth(t *testing.T) {
	sessions := auth.NewSessions(testSecret, time.Hour)
	middleware := NewMiddleware(sessions, nil)

	var seenIdentity *auth.Identity
	protected := middleware.RequireAuth(func(w http.ResponseWriter, r *http.Request) {
		seenIdentity = IdentityFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	validToken, err := sessions.Issue(42, "user@example.com")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	foreignToken, err := auth.NewSessions([]byte("wrong-secret-wrong-secret-wrong!"), time.Hour).Issue(42, "user@example.com")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	expiredToken, err := auth.NewSessions(testSecret, -time.Minute).Issue(42, "user@example.com")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	rejections := []struct {
		name    string
		cookie  string
		bearer  string
	}{
		{name: "no token"},
		{name: "garbage cookie", cookie: "not-a-token"},
		{name: "foreign signature", bearer: foreignToken},
		{name: "expired", cookie: expiredToken},
	}

	for _, tt := range rejections {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tt.cookie != "" {
				r.Header.Set("Cookie", auth.SessionCookieName+"="+tt.cookie)
			}
			if tt.bearer != "" {
				r.Header.Set("Authorization", "Bearer "+tt.bearer)
			}
			w := httptest.NewRecorder()
			protected(w, r)

			if w.Code != http.StatusUnauthorized {
				t.Fatalf("status = %d, want 401", w.Code)
			}

			// Every rejection carries the identical body
			var body errorResponse
			if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
				t.Fatalf("failed to decode body: %v", err)
			}
			if body.Error != ErrInvalidToken {
				t.Errorf("error = %q, want %q", body.Error, ErrInvalidToken)
			}
		})
	}

	t.Run("valid cookie", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/protected", nil)
		r.Header.Set("Cookie", auth.SessionCookieName+"="+validToken)
		w := httptest.NewRecorder()
		protected(w, r)

		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", w.Code)
		}
		if seenIdentity == nil || seenIdentity.UserID != 42 {
			t.Errorf("identity = %+v, want user 42", seenIdentity)
		}
	})

	t.Run("valid bearer", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/protected", nil)
		r.Header.Set("Authorization", "Bearer "+validToken)
		w := httptest.NewRecorder()
		protected(w, r)

		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", w.Code)
		}
	})
}

func TestRateLimit(t *testing.T) {
	sessions := auth.NewSessions(testSecret, time.Hour)
	middleware := NewMiddleware(sessions, security.NewRateLimiter(3, time.Minute))

	limited := middleware.RateLimit(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	for i := 0; i < 3; i++ {
		r := httptest.NewRequest(http.MethodPost, "/login", nil)
		r.RemoteAddr = "10.0.0.1:1234"
		w := httptest.NewRecorder()
		limited(w, r)
		if w.Code != http.StatusOK {
			t.Fatalf("request %d status = %d, want 200", i+1, w.Code)
		}
	}

	r := httptest.NewRequest(http.MethodPost, "/login", nil)
	r.RemoteAddr = "10.0.0.1:1234"
	w := httptest.NewRecorder()
	limited(w, r)
	if w.Code != http.StatusTooManyRequests {
		t.Errorf("status = %d, want 429", w.Code)
	}

	// A different client is unaffected
	r = httptest.NewRequest(http.MethodPost, "/login", nil)
	r.RemoteAddr = "10.0.0.2:1234"
	w = httptest.NewRecorder()
	limited(w, r)
	if w.Code != http.StatusOK {
		t.Errorf("other client status = %d, want 200", w.Code)
	}
}
