// Package security issues and validates the HS512 bearer tokens used by the API.
package security

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/duynhne/yoga-service/internal/core/domain"
	pkgzerolog "github.com/duynhne/yoga-service/pkg/logger/zerolog"
)

// ErrUnsupportedMethod is returned by the key function for any non-HMAC token.
var ErrUnsupportedMethod = errors.New("unsupported signing method")

// Validation failure reasons, logged in the "reason" field.
const (
	ReasonEmpty       = "empty"
	ReasonMalformed   = "malformed"
	ReasonSignature   = "signature"
	ReasonExpired     = "expired"
	ReasonUnsupported = "unsupported"
	ReasonInvalid     = "invalid"
)

// TokenService signs and verifies bearer tokens with a shared secret.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenService creates a TokenService. ttl is the lifetime of issued tokens.
func NewTokenService(secret string, ttl time.Duration) *TokenService {
	return &TokenService{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// WithClock returns a copy of s that reads the time from now.
func (s *TokenService) WithClock(now func() time.Time) *TokenService {
	c := *s
	c.now = now
	return &c
}

// Issue returns a signed token whose subject is the principal's username.
func (s *TokenService) Issue(p domain.Principal) (string, error) {
	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   p.Username,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token for %q: %w", p.Username, err)
	}
	return token, nil
}

// Validate reports whether token is well formed, correctly signed and not
// expired. It never returns an error: each failure is logged with its reason
// and collapses to false.
func (s *TokenService) Validate(ctx context.Context, token string) bool {
	if token == "" {
		logInvalid(ctx, ReasonEmpty, errors.New("token string is empty"))
		return false
	}

	if _, err := s.parse(token); err != nil {
		logInvalid(ctx, Reason(err), err)
		return false
	}
	return true
}

// SubjectOf returns the subject claim of a token that passed Validate.
func (s *TokenService) SubjectOf(token string) (string, error) {
	claims, err := s.parse(token)
	if err != nil {
		return "", fmt.Errorf("parse token: %w", err)
	}
	return claims.Subject, nil
}

func (s *TokenService) parse(token string) (*jwt.RegisteredClaims, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(token, claims, s.key,
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, err
	}
	return claims, nil
}

func (s *TokenService) key(t *jwt.Token) (any, error) {
	if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedMethod, t.Header["alg"])
	}
	return s.secret, nil
}

// Reason classifies a parse error into one of the Reason* constants.
func Reason(err error) string {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return ReasonMalformed
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return ReasonSignature
	case errors.Is(err, jwt.ErrTokenExpired):
		return ReasonExpired
	case errors.Is(err, ErrUnsupportedMethod), errors.Is(err, jwt.ErrTokenUnverifiable):
		return ReasonUnsupported
	default:
		return ReasonInvalid
	}
}

func logInvalid(ctx context.Context, reason string, err error) {
	pkgzerolog.FromContext(ctx).Error().
		Err(err).
		Str("reason", reason).
		Msg("Invalid JWT token")
}
