// Package token implements the signed session token codec.
package token

import (
	"errors"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"

	"github.com/examplanner/examplanner/internal/rbac"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

// DefaultTTL is the session token validity window.
const DefaultTTL = 7 * 24 * time.Hour

var (
	// ErrMissingSecret indicates the signing secret was not configured.
	// This is a startup-time fatal condition, not a per-request error.
	ErrMissingSecret = errors.New("token: signing secret is not configured")
	// ErrInvalidToken indicates a malformed token or bad signature.
	ErrInvalidToken = errors.New("token: invalid token")
	// ErrTokenExpired indicates the token's validity window has passed.
	ErrTokenExpired = errors.New("token: token expired")
)

// Claims is the session token claim set.
type Claims struct {
	Role           string `json:"role"`
	ImpersonatedBy string `json:"impersonated_by,omitempty"`
	jwtlib.RegisteredClaims
}

// Codec signs and verifies session tokens with a process-wide HMAC secret.
type Codec struct {
	secret []byte
	ttl    time.Duration
}

// NewCodec constructs a Codec. The secret is read-only after startup; an
// empty secret fails construction so the service never accepts traffic
// without one.
func NewCodec(secret string, ttl time.Duration) (*Codec, error) {
	if secret == "" {
		return nil, ErrMissingSecret
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Codec{secret: []byte(secret), ttl: ttl}, nil
}

// TTL returns the configured token validity window.
func (c *Codec) TTL() time.Duration {
	return c.ttl
}

// Issue creates a signed session token for the given account. The role is
// embedded at issuance time; impersonatedBy carries provenance when an
// admin logs in as another account.
func (c *Codec) Issue(userID string, role rbac.Role, impersonatedBy string) (string, error) {
	now := NowTimeFunc()
	claims := Claims{
		Role:           role.String(),
		ImpersonatedBy: impersonatedBy,
		RegisteredClaims: jwtlib.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwtlib.NewNumericDate(now),
			ExpiresAt: jwtlib.NewNumericDate(now.Add(c.ttl)),
		},
	}
	signed, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", err
	}
	return signed, nil
}

// Decode verifies a raw token and returns its claims. Expired tokens are
// reported as ErrTokenExpired; anything else wrong with the token maps to
// ErrInvalidToken. Neither is ever a crash.
func (c *Codec) Decode(raw string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwtlib.ParseWithClaims(raw, claims, func(t *jwtlib.Token) (any, error) {
		if _, ok := t.Method.(*jwtlib.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return c.secret, nil
	}, jwtlib.WithTimeFunc(func() time.Time { return NowTimeFunc() }))
	if err != nil {
		if errors.Is(err, jwtlib.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}
	if !parsed.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
