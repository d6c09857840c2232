package auth

import (
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func TestEncodeDecodeRoundtrip(t *testing.T) {
	claims := Claims{UserID: 42, Email: "user@example.com"}
	token, err := EncodeToken(claims, testSecret, time.Hour)
	if err != nil {
		t.Fatalf("EncodeToken() error = %v", err)
	}

	if strings.Contains(token, "=") {
		t.Error("token contains padding characters")
	}
	if parts := strings.Split(token, "."); len(parts) != 3 {
		t.Fatalf("token has %d segments, want 3", len(parts))
	}

	decoded, err := DecodeToken(token, testSecret)
	if err != nil {
		t.Fatalf("DecodeToken() error = %v", err)
	}
	if decoded.UserID != 42 {
		t.Errorf("UserID = %d, want 42", decoded.UserID)
	}
	if decoded.Email != "user@example.com" {
		t.Errorf("Email = %q, want user@example.com", decoded.Email)
	}
	if decoded.IssuedAt == 0 || decoded.ExpiresAt <= decoded.IssuedAt {
		t.Errorf("iat/exp not set: iat=%d exp=%d", decoded.IssuedAt, decoded.ExpiresAt)
	}
}

func TestDecodeTokenExtraClaims(t *testing.T) {
	claims := Claims{
		UserID: 7,
		Email:  "user@example.com",
		Extra:  map[string]any{"role": "admin"},
	}
	token, err := EncodeToken(claims, testSecret, time.Hour)
	if err != nil {
		t.Fatalf("EncodeToken() error = %v", err)
	}

	decoded, err := DecodeToken(token, testSecret)
	if err != nil {
		t.Fatalf("DecodeToken() error = %v", err)
	}
	if decoded.Extra["role"] != "admin" {
		t.Errorf("Extra[role] = %v, want admin", decoded.Extra["role"])
	}
}

func TestDecodeTokenRejections(t *testing.T) {
	valid, err := EncodeToken(Claims{UserID: 1, Email: "a@b.com"}, testSecret, time.Hour)
	if err != nil {
		t.Fatalf("EncodeToken() error = %v", err)
	}
	parts := strings.Split(valid, ".")

	// Flip one character in the payload segment while keeping the signature
	tamperedPayload := []byte(parts[1])
	if tamperedPayload[0] == 'A' {
		tamperedPayload[0] = 'B'
	} else {
		tamperedPayload[0] = 'A'
	}

	expired, err := EncodeToken(Claims{UserID: 1, Email: "a@b.com"}, testSecret, -time.Minute)
	if err != nil {
		t.Fatalf("EncodeToken() error = %v", err)
	}

	// Token signed for alg "none": empty signature segment
	noneHeader := base64.RawURLEncoding.EncodeToString([]byte(`{"typ":"JWT","alg":"none"}`))
	noneToken := noneHeader + "." + parts[1] + "."

	// Properly signed token whose payload has no exp claim
	noExpPayload := base64.RawURLEncoding.EncodeToString([]byte(`{"user_id":1,"email":"a@b.com"}`))
	noExpMessage := parts[0] + "." + noExpPayload
	noExpToken := noExpMessage + "." + base64.RawURLEncoding.EncodeToString(sign(noExpMessage, testSecret))

	tests := []struct {
		name  string
		token string
	}{
		{"empty token", ""},
		{"two segments", parts[0] + "." + parts[1]},
		{"four segments", valid + ".extra"},
		{"garbage", "not a token at all"},
		{"wrong secret", mustEncode(t, []byte("another-secret-another-secret-ab"))},
		{"tampered payload", parts[0] + "." + string(tamperedPayload) + "." + parts[2]},
		{"tampered signature", parts[0] + "." + parts[1] + "." + base64.RawURLEncoding.EncodeToString([]byte("bogus sig bytes here............"))},
		{"invalid base64 signature", parts[0] + "." + parts[1] + ".!!!"},
		{"expired", expired},
		{"alg none", noneToken},
		{"missing exp", noExpToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := DecodeToken(tt.token, testSecret)
			if err != ErrInvalidToken {
				t.Errorf("DecodeToken() error = %v, want ErrInvalidToken", err)
			}
			if claims != nil {
				t.Errorf("DecodeToken() claims = %+v, want nil", claims)
			}
		})
	}
}

func mustEncode(t *testing.T, secret []byte) string {
	t.Helper()
	token, err := EncodeToken(Claims{UserID: 1, Email: "a@b.com"}, secret, time.Hour)
	if err != nil {
		t.Fatalf("EncodeToken() error = %v", err)
	}
	return token
}

// Tokens must be readable by standard JWT tooling and vice versa.
func TestTokenInteropWithStandardJWT(t *testing.T) {
	t.Run("ours parsed by jwt library", func(t *testing.T) {
		token, err := EncodeToken(Claims{UserID: 42, Email: "user@example.com"}, testSecret, time.Hour)
		if err != nil {
			t.Fatalf("EncodeToken() error = %v", err)
		}

		parsed, err := jwt.Parse(token, func(token *jwt.Token) (interface{}, error) {
			return testSecret, nil
		}, jwt.WithValidMethods([]string{"HS256"}))
		if err != nil {
			t.Fatalf("jwt.Parse() error = %v", err)
		}
		if !parsed.Valid {
			t.Fatal("jwt.Parse() token invalid")
		}

		claims, ok := parsed.Claims.(jwt.MapClaims)
		if !ok {
			t.Fatalf("claims type = %T", parsed.Claims)
		}
		if claims["user_id"].(float64) != 42 {
			t.Errorf("user_id = %v, want 42", claims["user_id"])
		}
		if claims["email"] != "user@example.com" {
			t.Errorf("email = %v, want user@example.com", claims["email"])
		}
	})

	t.Run("jwt library token parsed by ours", func(t *testing.T) {
		now := time.Now()
		libToken := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"user_id": 42,
			"email":   "user@example.com",
			"iat":     now.Unix(),
			"exp":     now.Add(time.Hour).Unix(),
		})
		signed, err := libToken.SignedString(testSecret)
		if err != nil {
			t.Fatalf("SignedString() error = %v", err)
		}

		decoded, err := DecodeToken(signed, testSecret)
		if err != nil {
			t.Fatalf("DecodeToken() error = %v", err)
		}
		if decoded.UserID != 42 {
			t.Errorf("UserID = %d, want 42", decoded.UserID)
		}
		if decoded.Email != "user@example.com" {
			t.Errorf("Email = %q, want user@example.com", decoded.Email)
		}
	})
}
