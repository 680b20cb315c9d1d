package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dalemusser/ideatrack/internal/app/system/apiresp"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

/*─────────────────────────────────────────────────────────────────────────────*
| Errors                                                                      |
*─────────────────────────────────────────────────────────────────────────────*/

var (
	ErrMissingToken = errors.New("missing bearer token")
	ErrInvalidToken = errors.New("invalid bearer token")
)

// MinSecretLength is the shortest HMAC secret NewVerifier accepts without a warning.
const MinSecretLength = 32

/*─────────────────────────────────────────────────────────────────────────────*
| Current-User helper                                                        |
*─────────────────────────────────────────────────────────────────────────────*/

// User is the identity carried by a verified token and injected into r.Context().
type User struct {
	ID    string
	Email string
	Name  string
	Role  string
}

type ctxKey string

const currentUserKey ctxKey = "currentUser"

// CurrentUser returns the user & “found?” flag.
func CurrentUser(r *http.Request) (*User, bool) {
	u, ok := r.Context().Value(currentUserKey).(*User)
	return u, ok
}

// WithUser returns r with u stored in its context. Tests use it to skip token handling.
func WithUser(r *http.Request, u *User) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), currentUserKey, u))
}

/*─────────────────────────────────────────────────────────────────────────────*
| Token verification                                                          |
*─────────────────────────────────────────────────────────────────────────────*/

// Claims is the token payload. The subject is the user id.
type Claims struct {
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
	Role  string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// Verifier checks HS256 bearer tokens issued by the account service.
type Verifier struct {
	secret []byte
	issuer string
	now    func() time.Time
	log    *zap.Logger
}

// NewVerifier builds a Verifier. issuer may be empty to accept any issuer.
func NewVerifier(secret, issuer string, logger *zap.Logger) (*Verifier, error) {
	if secret == "" {
		return nil, fmt.Errorf("jwt secret is empty; provide ≥%d random chars", MinSecretLength)
	}
	if len(secret) < MinSecretLength {
		logger.Warn("jwt secret is short; 32+ chars recommended",
			zap.Int("length", len(secret)))
	}
	return &Verifier{
		secret: []byte(secret),
		issuer: issuer,
		now:    time.Now,
		log:    logger,
	}, nil
}

// Parse validates a raw token and returns the user it names.
func (v *Verifier) Parse(raw string) (*User, error) {
	if raw == "" {
		return nil, ErrMissingToken
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(v.now),
		jwt.WithExpirationRequired(),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	var claims Claims
	tok, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
		return v.secret, nil
	}, opts...)
	if err != nil || !tok.Valid {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: no subject", ErrInvalidToken)
	}

	return &User{
		ID:    claims.Subject,
		Email: claims.Email,
		Name:  claims.Name,
		Role:  claims.Role,
	}, nil
}

// Sign issues a token for u valid for ttl. The account service owns real
// issuance; this exists for the admin tool and tests.
func (v *Verifier) Sign(u User, ttl time.Duration) (string, error) {
	now := v.now()
	claims := Claims{
		Email: u.Email,
		Name:  u.Name,
		Role:  u.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID,
			Issuer:    v.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
}

// BearerToken extracts the token from "Authorization: Bearer <token>".
func BearerToken(r *http.Request) string {
	h := strings.TrimSpace(r.Header.Get("Authorization"))
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// RequireBearer verifies the bearer token before the wrapped handler runs.
// On failure it answers 401 with the "Unauthorized" failure envelope and the
// handler body never executes.
func (v *Verifier) RequireBearer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, err := v.Parse(BearerToken(r))
		if err != nil {
			v.log.Debug("bearer auth rejected",
				zap.String("path", r.URL.Path),
				zap.Error(err))
			apiresp.Failure(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		next.ServeHTTP(w, WithUser(r, u))
	})
}
