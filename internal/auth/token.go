package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
	"time"
)

// ErrInvalidToken is returned for every token rejection: malformed, bad
// signature, or expired. Callers must not learn which one it was.
var ErrInvalidToken = errors.New("invalid token")

// encodedHeader is the only header this codec ever produces or accepts
// semantics for: base64url of {"typ":"JWT","alg":"HS256"}, padding stripped.
// There is no algorithm negotiation; verification always recomputes HS256
// over the received segments regardless of what the header claims.
var encodedHeader = base64.RawURLEncoding.EncodeToString([]byte(`{"typ":"JWT","alg":"HS256"}`))

// Claims is the payload of a session token. UserID, Email, IssuedAt and
// ExpiresAt are required; anything else a token carries lands in Extra.
type Claims struct {
	UserID    int64
	Email     string
	IssuedAt  int64
	ExpiresAt int64
	Extra     map[string]any
}

// MarshalJSON flattens Extra alongside the required fields. Required fields
// win on key collision.
func (c Claims) MarshalJSON() ([]byte, error) {
	m := make(map[string]any, len(c.Extra)+4)
	for k, v := range c.Extra {
		m[k] = v
	}
	m["user_id"] = c.UserID
	m["email"] = c.Email
	m["iat"] = c.IssuedAt
	m["exp"] = c.ExpiresAt
	return json.Marshal(m)
}

// UnmarshalJSON splits the payload back into required fields plus Extra.
func (c *Claims) UnmarshalJSON(data []byte) error {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}

	take := func(key string, dst any) error {
		raw, ok := m[key]
		if !ok {
			return nil
		}
		delete(m, key)
		return json.Unmarshal(raw, dst)
	}

	if err := take("user_id", &c.UserID); err != nil {
		return err
	}
	if err := take("email", &c.Email); err != nil {
		return err
	}
	if err := take("iat", &c.IssuedAt); err != nil {
		return err
	}
	if err := take("exp", &c.ExpiresAt); err != nil {
		return err
	}

	if len(m) > 0 {
		c.Extra = make(map[string]any, len(m))
		for k, raw := range m {
			var v any
			if err := json.Unmarshal(raw, &v); err != nil {
				return err
			}
			c.Extra[k] = v
		}
	}
	return nil
}

// EncodeToken produces a signed session token:
// base64url(header).base64url(payload).base64url(HMAC-SHA256(secret, header.payload)),
// with "=" padding stripped from every segment. iat is set to the current
// Unix time and exp to iat + ttl, overwriting whatever the claims carried.
func EncodeToken(claims Claims, secret []byte, ttl time.Duration) (string, error) {
	now := time.Now().Unix()
	claims.IssuedAt = now
	claims.ExpiresAt = now + int64(ttl.Seconds())

	payload, err := json.Marshal(claims)
	if err != nil {
		return "", err
	}

	message := encodedHeader + "." + base64.RawURLEncoding.EncodeToString(payload)
	return message + "." + base64.RawURLEncoding.EncodeToString(sign(message, secret)), nil
}

// DecodeToken verifies and decodes a session token. The signature is
// recomputed over the received header and payload segments with the fixed
// algorithm and compared in constant time; exp must be strictly in the
// future. Every failure mode returns ErrInvalidToken.
func DecodeToken(token string, secret []byte) (*Claims, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return nil, ErrInvalidToken
	}

	signature, err := base64.RawURLEncoding.DecodeString(parts[2])
	if err != nil {
		return nil, ErrInvalidToken
	}
	expected := sign(parts[0]+"."+parts[1], secret)
	if !hmac.Equal(expected, signature) {
		return nil, ErrInvalidToken
	}

	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return nil, ErrInvalidToken
	}
	var claims Claims
	if err := json.Unmarshal(payload, &claims); err != nil {
		return nil, ErrInvalidToken
	}

	if claims.ExpiresAt <= time.Now().Unix() {
		return nil, ErrInvalidToken
	}
	return &claims, nil
}

func sign(message string, secret []byte) []byte {
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(message))
	return mac.Sum(nil)
}
