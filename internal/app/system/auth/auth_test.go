package auth_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/ideatrack/internal/app/system/auth"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

const testSecret = "test-jwt-secret-must-be-32-chars-long"

func newTestVerifier(t *testing.T, issuer string) *auth.Verifier {
	t.Helper()
	v, err := auth.NewVerifier(testSecret, issuer, zap.NewNop())
	if err != nil {
		t.Fatalf("failed to create verifier: %v", err)
	}
	return v
}

func protected(v *auth.Verifier) (http.Handler, *bool) {
	called := false
	h := v.RequireBearer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		u, ok := auth.CurrentUser(r)
		if !ok {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(u.ID))
	}))
	return h, &called
}

func TestNewVerifier_EmptySecret(t *testing.T) {
	if _, err := auth.NewVerifier("", "", zap.NewNop()); err == nil {
		t.Error("expected error for empty secret")
	}
}

func TestRequireBearer_ValidToken(t *testing.T) {
	v := newTestVerifier(t, "")
	token, err := v.Sign(auth.User{ID: "user-1", Email: "a@example.com"}, time.Hour)
	if err != nil {
		t.Fatalf("Sign failed: %v", err)
	}

	h, called := protected(v)
	req := httptest.NewRequest("GET", "/idea-count", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	if !*called {
		t.Error("expected handler to run")
	}
	if rec.Body.String() != "user-1" {
		t.Errorf("user id: got %q, want %q", rec.Body.String(), "user-1")
	}
}

func TestRequireBearer_Rejections(t *testing.T) {
	v := newTestVerifier(t, "ideatrack")

	other, err := auth.NewVerifier("another-secret-that-is-32-chars-long!", "ideatrack", zap.NewNop())
	if err != nil {
		t.Fatalf("failed to create verifier: %v", err)
	}
	wrongSecret, _ := other.Sign(auth.User{ID: "u"}, time.Hour)
	expired, _ := v.Sign(auth.User{ID: "u"}, -time.Minute)
	noSubject, _ := v.Sign(auth.User{}, time.Hour)

	wrongIssuer, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, auth.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "u",
			Issuer:    "someone-else",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte(testSecret))

	noExpiry, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, auth.Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "u", Issuer: "ideatrack"},
	}).SignedString([]byte(testSecret))

	tests := []struct {
		name   string
		header string
	}{
		{"no header", ""},
		{"wrong scheme", "Basic dXNlcjpwYXNz"},
		{"malformed", "Bearer not-a-jwt"},
		{"wrong secret", "Bearer " + wrongSecret},
		{"expired", "Bearer " + expired},
		{"no subject", "Bearer " + noSubject},
		{"wrong issuer", "Bearer " + wrongIssuer},
		{"no expiry", "Bearer " + noExpiry},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, called := protected(v)
			req := httptest.NewRequest("GET", "/idea-count", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != http.StatusUnauthorized {
				t.Errorf("expected status %d, got %d", http.StatusUnauthorized, rec.Code)
			}
			if *called {
				t.Error("handler body must not run")
			}
			if !strings.Contains(rec.Body.String(), "Unauthorized") {
				t.Errorf("expected Unauthorized message, got %s", rec.Body.String())
			}
		})
	}
}

func TestParse_ErrorKinds(t *testing.T) {
	v := newTestVerifier(t, "")

	if _, err := v.Parse(""); !errors.Is(err, auth.ErrMissingToken) {
		t.Errorf("empty token: got %v, want ErrMissingToken", err)
	}
	if _, err := v.Parse("garbage"); !errors.Is(err, auth.ErrInvalidToken) {
		t.Errorf("garbage token: got %v, want ErrInvalidToken", err)
	}
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		want   string
	}{
		{"Bearer abc", "abc"},
		{"bearer abc", "abc"},
		{"Bearer   abc  ", "abc"},
		{"Token abc", ""},
		{"Bearer", ""},
		{"", ""},
	}
	for _, tt := range tests {
		req := httptest.NewRequest("GET", "/", nil)
		if tt.header != "" {
			req.Header.Set("Authorization", tt.header)
		}
		if got := auth.BearerToken(req); got != tt.want {
			t.Errorf("BearerToken(%q) = %q, want %q", tt.header, got, tt.want)
		}
	}
}
