package jwt

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

const sessionSecret = "session-secret"

func payload(t *testing.T, token string) map[string]interface{} {
	t.Helper()

	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		t.Fatalf("expected three token segments, got %d", len(parts))
	}
	raw, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		t.Fatalf("payload decode error = %v", err)
	}

	var claims map[string]interface{}
	if err := json.Unmarshal(raw, &claims); err != nil {
		t.Fatalf("payload unmarshal error = %v", err)
	}
	return claims
}

func sign(t *testing.T, method jwtlib.SigningMethod, key interface{}, claims jwtlib.Claims) string {
	t.Helper()
	signed, err := jwtlib.NewWithClaims(method, claims).SignedString(key)
	if err != nil {
		t.Fatalf("SignedString() error = %v", err)
	}
	return signed
}

func TestGenerateToken_WireClaims(t *testing.T) {
	token, err := GenerateToken("5f1c-user", DefaultSessionTTL, sessionSecret)
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}

	claims := payload(t, token)
	if claims["id"] != "5f1c-user" {
		t.Errorf("expected user id in the \"id\" claim, got %v", claims)
	}
	if claims["sub"] != "5f1c-user" {
		t.Errorf("expected subject to mirror the id, got %v", claims["sub"])
	}
	if _, ok := claims["UserID"]; ok {
		t.Error("Go field name leaked into the token payload")
	}
}

func TestGenerateToken_SessionTTL(t *testing.T) {
	if DefaultSessionTTL != 7*24*time.Hour {
		t.Fatalf("session ttl = %v, want 7 days", DefaultSessionTTL)
	}

	token, err := GenerateToken("user-1", DefaultSessionTTL, sessionSecret)
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}

	claims, err := ValidateToken(token, sessionSecret)
	if err != nil {
		t.Fatalf("ValidateToken() error = %v", err)
	}

	lifetime := claims.ExpiresAt.Sub(claims.IssuedAt.Time)
	if lifetime != DefaultSessionTTL {
		t.Errorf("token lifetime = %v, want %v", lifetime, DefaultSessionTTL)
	}
}

func TestValidateToken_SessionCookies(t *testing.T) {
	now := time.Now()
	live, err := GenerateToken("user-1", DefaultSessionTTL, sessionSecret)
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}
	lapsed, err := GenerateToken("user-1", -time.Minute, sessionSecret)
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}

	tests := []struct {
		name   string
		cookie string
		wantID string
	}{
		{
			name:   "cookie issued at login",
			cookie: live,
			wantID: "user-1",
		},
		{
			name:   "session past its seven days",
			cookie: lapsed,
		},
		{
			name:   "cookie cleared by logout",
			cookie: "",
		},
		{
			name:   "tampered payload",
			cookie: strings.Replace(live, ".", ".x", 1),
		},
		{
			name: "token without a user id",
			cookie: sign(t, jwtlib.SigningMethodHS256, []byte(sessionSecret), &Claims{
				RegisteredClaims: jwtlib.RegisteredClaims{ExpiresAt: jwtlib.NewNumericDate(now.Add(time.Hour))},
			}),
		},
		{
			name:   "unsigned token",
			cookie: sign(t, jwtlib.SigningMethodNone, jwtlib.UnsafeAllowNoneSignatureType, &Claims{UserID: "user-1"}),
		},
		{
			name: "signed by another deployment",
			cookie: sign(t, jwtlib.SigningMethodHS256, []byte("other-secret"), &Claims{
				UserID:           "user-1",
				RegisteredClaims: jwtlib.RegisteredClaims{ExpiresAt: jwtlib.NewNumericDate(now.Add(time.Hour))},
			}),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := ValidateToken(tt.cookie, sessionSecret)

			if tt.wantID == "" {
				if !errors.Is(err, ErrInvalidToken) {
					t.Errorf("ValidateToken() error = %v, want ErrInvalidToken", err)
				}
				return
			}

			if err != nil {
				t.Fatalf("ValidateToken() error = %v", err)
			}
			if claims.UserID != tt.wantID {
				t.Errorf("ValidateToken() id = %q, want %q", claims.UserID, tt.wantID)
			}
		})
	}
}
