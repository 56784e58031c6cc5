package v1

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/crypto/bcrypt"

	"github.com/duynhne/yoga-service/internal/core/domain"
	"github.com/duynhne/yoga-service/middleware"
)

// TokenIssuer signs bearer tokens for authenticated principals.
type TokenIssuer interface {
	Issue(p domain.Principal) (string, error)
}

// AuthService implements authentication business rules.
// It depends on repository interfaces (injected via constructor) and
// MUST NOT access the database or SQL directly.
type AuthService struct {
	users   domain.UserRepository
	tokens  TokenIssuer
	cost    int
	compare func(hash, password []byte) error

	// dummyHash is compared against when the email is unknown, so both
	// login failures pay one bcrypt comparison.
	dummyHash []byte
}

// NewAuthService creates a new AuthService with the given dependencies.
func NewAuthService(users domain.UserRepository, tokens TokenIssuer) *AuthService {
	s := &AuthService{
		users:   users,
		tokens:  tokens,
		compare: bcrypt.CompareHashAndPassword,
	}
	return s.WithHashCost(bcrypt.DefaultCost)
}

// WithHashCost overrides the bcrypt cost; tests use bcrypt.MinCost.
func (s *AuthService) WithHashCost(cost int) *AuthService {
	s.cost = cost
	hash, err := bcrypt.GenerateFromPassword([]byte("unknown-account"), cost)
	if err != nil {
		// Only an out-of-range cost fails; fall back to the default.
		s.cost = bcrypt.DefaultCost
		hash, _ = bcrypt.GenerateFromPassword([]byte("unknown-account"), s.cost)
	}
	s.dummyHash = hash
	return s
}

// NormalizeEmail lowercases and trims an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Login verifies credentials and issues a bearer token.
// Unknown emails and wrong passwords both return ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, req domain.LoginRequest) (*domain.AuthResponse, error) {
	email := NormalizeEmail(req.Email)

	ctx, span := middleware.StartSpan(ctx, "auth.login", trace.WithAttributes(
		attribute.String("layer", "logic"),
		attribute.String("username", email),
	))
	defer span.End()

	row, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("query user %q: %w", email, err)
	}
	if row == nil {
		_ = s.compare(s.dummyHash, []byte(req.Password))
		span.SetAttributes(attribute.Bool("auth.success", false))
		span.AddEvent("authentication.failed")
		return nil, fmt.Errorf("authenticate user %q: %w", email, ErrInvalidCredentials)
	}

	if err := s.compare([]byte(row.PasswordHash), []byte(req.Password)); err != nil {
		span.SetAttributes(attribute.Bool("auth.success", false))
		span.AddEvent("authentication.failed")
		return nil, fmt.Errorf("authenticate user %q: %w", email, ErrInvalidCredentials)
	}

	token, err := s.tokens.Issue(row.ToPrincipal())
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("issue token: %w", err)
	}

	span.SetAttributes(
		attribute.Int64("user.id", row.ID),
		attribute.Bool("auth.success", true),
	)
	span.AddEvent("user.authenticated")

	return &domain.AuthResponse{
		Token:     token,
		Type:      "Bearer",
		ID:        row.ID,
		Username:  row.Email,
		FirstName: row.FirstName,
		LastName:  row.LastName,
		Admin:     row.Admin,
	}, nil
}

// Register creates a regular (non-admin) account.
func (s *AuthService) Register(ctx context.Context, req domain.RegisterRequest) (int64, error) {
	email := NormalizeEmail(req.Email)

	ctx, span := middleware.StartSpan(ctx, "auth.register", trace.WithAttributes(
		attribute.String("layer", "logic"),
		attribute.String("email", email),
	))
	defer span.End()

	id, err := s.createUser(ctx, email, req.Password, req.FirstName, req.LastName, false)
	if err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.Bool("registration.success", false))
		return 0, err
	}

	span.SetAttributes(
		attribute.Int64("user.id", id),
		attribute.Bool("registration.success", true),
	)
	span.AddEvent("user.registered")

	return id, nil
}

// EnsureAdmin creates an administrator account unless the email is already
// registered. It reports whether an account was created.
func (s *AuthService) EnsureAdmin(ctx context.Context, email, password string) (bool, error) {
	_, err := s.createUser(ctx, NormalizeEmail(email), password, "Admin", "Admin", true)
	switch {
	case errors.Is(err, ErrEmailTaken):
		return false, nil
	case err != nil:
		return false, err
	}
	return true, nil
}

func (s *AuthService) createUser(ctx context.Context, email, password, firstName, lastName string, admin bool) (int64, error) {
	exists, err := s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return 0, fmt.Errorf("check existing user: %w", err)
	}
	if exists {
		return 0, fmt.Errorf("register user %q: %w", email, ErrEmailTaken)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return 0, fmt.Errorf("hash password: %w", err)
	}

	id, err := s.users.Create(ctx, domain.NewUser{
		Email:        email,
		FirstName:    firstName,
		LastName:     lastName,
		PasswordHash: string(hash),
		Admin:        admin,
	})
	if errors.Is(err, domain.ErrDuplicate) {
		return 0, fmt.Errorf("register user %q: %w", email, ErrEmailTaken)
	}
	if err != nil {
		return 0, fmt.Errorf("insert user: %w", err)
	}
	return id, nil
}
