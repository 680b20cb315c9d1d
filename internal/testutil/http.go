package testutil

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/ideatrack/internal/app/system/auth"
	"go.uber.org/zap"
)

// TestJWTSecret signs tokens in handler tests.
const TestJWTSecret = "ideatrack-test-secret-0123456789abcdef"

// TestUser represents the identity carried by a test token.
type TestUser struct {
	ID    string
	Name  string
	Email string
	Role  string
}

// AdminUser returns a TestUser with admin role.
func AdminUser() TestUser {
	return TestUser{
		ID:    "admin-1",
		Name:  "Test Admin",
		Email: "admin@test.com",
		Role:  "admin",
	}
}

// Verifier returns a verifier for TestJWTSecret.
func Verifier(t *testing.T) *auth.Verifier {
	t.Helper()
	v, err := auth.NewVerifier(TestJWTSecret, "", zap.NewNop())
	if err != nil {
		t.Fatalf("failed to create verifier: %v", err)
	}
	return v
}

// BearerHeader signs a one-hour token for user and returns the header value.
func BearerHeader(t *testing.T, user TestUser) string {
	t.Helper()
	token, err := Verifier(t).Sign(auth.User{
		ID:    user.ID,
		Email: user.Email,
		Name:  user.Name,
		Role:  user.Role,
	}, time.Hour)
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return "Bearer " + token
}

// NewRequest creates an HTTP request for testing.
func NewRequest(method, target string) *http.Request {
	return httptest.NewRequest(method, target, nil)
}

// NewAuthenticatedRequest creates a request carrying a valid bearer token.
func NewAuthenticatedRequest(t *testing.T, method, target string, body io.Reader, user TestUser) *http.Request {
	t.Helper()
	req := httptest.NewRequest(method, target, body)
	req.Header.Set("Authorization", BearerHeader(t, user))
	return req
}

// ResponseRecorder wraps httptest.ResponseRecorder with helper methods.
type ResponseRecorder struct {
	*httptest.ResponseRecorder
}

// NewRecorder creates a new ResponseRecorder.
func NewRecorder() *ResponseRecorder {
	return &ResponseRecorder{httptest.NewRecorder()}
}

// AssertStatus checks the response status code.
func (r *ResponseRecorder) AssertStatus(t interface{ Errorf(string, ...any) }, expected int) {
	if r.Code != expected {
		t.Errorf("status code: got %d, want %d", r.Code, expected)
	}
}

// AssertContains checks if the response body contains the expected string.
func (r *ResponseRecorder) AssertContains(t interface{ Errorf(string, ...any) }, expected string) {
	if !strings.Contains(r.Body.String(), expected) {
		t.Errorf("response body does not contain %q: %s", expected, r.Body.String())
	}
}

// Envelope is the decoded API envelope with the response left raw.
type Envelope struct {
	HasError   bool `json:"hasError"`
	StatusCode int  `json:"statusCode"`
	Message    struct {
		General []string `json:"general"`
	} `json:"message"`
	Response json.RawMessage `json:"response"`
}

// DecodeEnvelope decodes the recorded body as an API envelope.
func (r *ResponseRecorder) DecodeEnvelope(t *testing.T) Envelope {
	t.Helper()
	var env Envelope
	if err := json.Unmarshal(r.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v (body %s)", err, r.Body.String())
	}
	return env
}
