package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/duynhne/yoga-service/internal/core/domain"
	pkgzerolog "github.com/duynhne/yoga-service/pkg/logger/zerolog"
)

const bearerPrefix = "Bearer "

type principalKey struct{}

// TokenValidator is the part of the token service the filter needs.
type TokenValidator interface {
	Validate(ctx context.Context, token string) bool
	SubjectOf(token string) (string, error)
}

// PrincipalLoader resolves a token subject to the caller's identity.
type PrincipalLoader interface {
	LoadPrincipal(ctx context.Context, username string) (*domain.Principal, error)
}

// WithPrincipal returns a copy of ctx carrying p.
func WithPrincipal(ctx context.Context, p domain.Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFrom returns the principal installed by Authentication, if any.
func PrincipalFrom(ctx context.Context) (domain.Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(domain.Principal)
	return p, ok
}

// Authentication resolves the bearer token of a request into a principal.
// It never rejects a request: missing or invalid credentials leave the
// request unauthenticated and RequireAuth decides downstream.
func Authentication(tokens TokenValidator, users PrincipalLoader) gin.HandlerFunc {
	return func(c *gin.Context) {
		if p, ok := authenticate(c.Request, tokens, users); ok {
			c.Request = c.Request.WithContext(WithPrincipal(c.Request.Context(), p))
		}
		c.Next()
	}
}

func authenticate(r *http.Request, tokens TokenValidator, users PrincipalLoader) (domain.Principal, bool) {
	ctx := r.Context()

	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, bearerPrefix) {
		return domain.Principal{}, false
	}
	token := header[len(bearerPrefix):]

	if !tokens.Validate(ctx, token) {
		return domain.Principal{}, false
	}

	logger := pkgzerolog.FromContext(ctx)

	username, err := tokens.SubjectOf(token)
	if err != nil {
		logger.Error().Err(err).Msg("Cannot read token subject")
		return domain.Principal{}, false
	}

	p, err := users.LoadPrincipal(ctx, username)
	if err != nil {
		logger.Error().Err(err).Str("username", username).Msg("Cannot set user authentication")
		return domain.Principal{}, false
	}
	if p == nil {
		logger.Warn().Str("username", username).Msg("Token subject has no account")
		return domain.Principal{}, false
	}

	return *p, true
}

// RequireAuth rejects requests that Authentication left unauthenticated.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := PrincipalFrom(c.Request.Context()); !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, domain.MessageResponse{Message: "Unauthorized"})
			return
		}
		c.Next()
	}
}

// RequireAdmin rejects callers that are not administrators.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := PrincipalFrom(c.Request.Context())
		if !ok || !p.Admin {
			c.AbortWithStatusJSON(http.StatusUnauthorized, domain.MessageResponse{Message: "Unauthorized"})
			return
		}
		c.Next()
	}
}
