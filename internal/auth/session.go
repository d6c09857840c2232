package auth

import (
	"net/http"
	"strings"
	"time"
)

// SessionCookieName is the cookie carrying the session token.
const SessionCookieName = "auth_token"

// Identity is the authenticated identity extracted from a valid token.
type Identity struct {
	UserID    int64
	Email     string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Sessions issues and validates session tokens. It is a pure function of its
// inputs plus the immutable signing secret and the wall clock, so a single
// instance is safe for concurrent use across requests.
type Sessions struct {
	secret []byte
	ttl    time.Duration
}

// NewSessions creates a session service with the given signing secret and
// token lifetime.
func NewSessions(secret []byte, ttl time.Duration) *Sessions {
	return &Sessions{secret: secret, ttl: ttl}
}

// Issue creates a signed token for the given user.
func (s *Sessions) Issue(userID int64, email string) (string, error) {
	return EncodeToken(Claims{UserID: userID, Email: email}, s.secret, s.ttl)
}

// Validate verifies a token and returns the identity it proves. Any failure,
// whether malformed, badly signed or expired, is ErrInvalidToken.
func (s *Sessions) Validate(token string) (*Identity, error) {
	claims, err := DecodeToken(token, s.secret)
	if err != nil {
		return nil, err
	}
	return &Identity{
		UserID:    claims.UserID,
		Email:     claims.Email,
		IssuedAt:  time.Unix(claims.IssuedAt, 0),
		ExpiresAt: time.Unix(claims.ExpiresAt, 0),
	}, nil
}

// TTL returns the configured token lifetime.
func (s *Sessions) TTL() time.Duration {
	return s.ttl
}

// TokenFromRequest extracts a session token from the request, preferring the
// auth_token cookie and falling back to an Authorization bearer header.
// It returns "" when neither transport carries a token.
func TokenFromRequest(r *http.Request) string {
	if token := TokenFromCookieHeader(r.Header.Get("Cookie")); token != "" {
		return token
	}
	if header := r.Header.Get("Authorization"); strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return ""
}

// TokenFromCookieHeader parses a raw semicolon-delimited Cookie header and
// returns the first auth_token value. Values are expected to already be
// transport-safe, so no URL-decoding is performed.
func TokenFromCookieHeader(header string) string {
	for _, part := range strings.Split(header, ";") {
		part = strings.TrimSpace(part)
		if name, value, ok := strings.Cut(part, "="); ok && name == SessionCookieName {
			return value
		}
	}
	return ""
}

// IsSecureRequest determines if the request arrived over HTTPS, either
// directly or behind a reverse proxy announcing X-Forwarded-Proto.
func IsSecureRequest(r *http.Request) bool {
	if r.TLS != nil {
		return true
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto == "https" {
		return true
	}
	return r.URL.Scheme == "https"
}

// SessionCookie builds the auth_token cookie for a freshly issued token.
// The Secure flag follows HTTPS detection so the token is never sent in the
// clear on a secured deployment.
func (s *Sessions) SessionCookie(r *http.Request, token string) *http.Cookie {
	return &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(s.ttl.Seconds()),
		HttpOnly: true,
		Secure:   IsSecureRequest(r),
		SameSite: http.SameSiteLaxMode,
	}
}

// ClearSessionCookie builds the cookie that logs a client out. Logout is
// purely a client-side clear; tokens themselves are revoked only by expiry.
func ClearSessionCookie(r *http.Request) *http.Cookie {
	return &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   IsSecureRequest(r),
		SameSite: http.SameSiteLaxMode,
	}
}
