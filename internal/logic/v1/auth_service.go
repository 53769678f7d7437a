package v1

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/crypto/bcrypt"

	"github.com/minhngo/wellness-sessions/internal/auth"
	"github.com/minhngo/wellness-sessions/internal/core/domain"
	"github.com/minhngo/wellness-sessions/middleware"
)

// AuthService implements account registration and login. Password hashing is
// delegated to bcrypt; comparison is constant-time inside
// bcrypt.CompareHashAndPassword. The raw secret is never stored or logged.
type AuthService struct {
	users     domain.UserRepository
	jwtSecret []byte
	tokenTTL  time.Duration
}

// NewAuthService creates an AuthService with the given repository and token
// settings.
func NewAuthService(users domain.UserRepository, jwtSecret []byte, tokenTTL time.Duration) *AuthService {
	return &AuthService{
		users:     users,
		jwtSecret: jwtSecret,
		tokenTTL:  tokenTTL,
	}
}

// HashPassword derives a bcrypt hash from a raw secret.
func HashPassword(raw string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(raw), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword reports whether the raw secret matches the stored hash.
func CheckPassword(hash, raw string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(raw)) == nil
}

// Register creates a new account and returns it with a fresh access token.
func (s *AuthService) Register(ctx context.Context, req domain.RegisterRequest) (*domain.AuthResponse, error) {
	ctx, span := middleware.StartSpan(ctx, "auth.register", trace.WithAttributes(
		attribute.String("layer", "logic"),
		attribute.String("email", req.Email),
	))
	defer span.End()

	hash, err := HashPassword(req.Password)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	exists, err := s.users.ExistsByEmail(ctx, req.Email)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("check existing user: %w", err)
	}
	if exists {
		span.SetAttributes(attribute.Bool("registration.success", false))
		return nil, fmt.Errorf("register user %q: %w", req.Email, ErrUserExists)
	}

	user, err := s.users.Create(ctx, req.Email, hash)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("insert user: %w", err)
	}

	token, err := auth.GenerateToken(user.ID, user.Email, s.jwtSecret, s.tokenTTL)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	span.SetAttributes(
		attribute.Int64("user.id", user.ID),
		attribute.Bool("registration.success", true),
	)
	span.AddEvent("user.registered")

	return &domain.AuthResponse{
		Token: token,
		User:  domain.UserInfo{ID: user.ID, Email: user.Email},
	}, nil
}

// Login verifies credentials and returns the user with a fresh access token.
func (s *AuthService) Login(ctx context.Context, req domain.LoginRequest) (*domain.AuthResponse, error) {
	ctx, span := middleware.StartSpan(ctx, "auth.login", trace.WithAttributes(
		attribute.String("layer", "logic"),
		attribute.String("email", req.Email),
	))
	defer span.End()

	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("query user %q: %w", req.Email, err)
	}
	if user == nil {
		span.SetAttributes(attribute.Bool("auth.success", false))
		span.AddEvent("authentication.failed")
		return nil, fmt.Errorf("authenticate user %q: %w", req.Email, ErrUserNotFound)
	}
	if !user.IsActive {
		span.SetAttributes(attribute.Bool("auth.success", false))
		return nil, fmt.Errorf("authenticate user %q: %w", req.Email, ErrUserInactive)
	}

	if !CheckPassword(user.PasswordHash, req.Password) {
		span.SetAttributes(attribute.Bool("auth.success", false))
		span.AddEvent("authentication.failed")
		return nil, fmt.Errorf("authenticate user %q: %w", req.Email, ErrInvalidCredentials)
	}

	token, err := auth.GenerateToken(user.ID, user.Email, s.jwtSecret, s.tokenTTL)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	span.SetAttributes(
		attribute.Int64("user.id", user.ID),
		attribute.Bool("auth.success", true),
	)
	span.AddEvent("user.authenticated")

	return &domain.AuthResponse{
		Token: token,
		User:  domain.UserInfo{ID: user.ID, Email: user.Email},
	}, nil
}

// Me returns the account behind an authenticated identity.
func (s *AuthService) Me(ctx context.Context, identity domain.Identity) (*domain.UserInfo, error) {
	ctx, span := middleware.StartSpan(ctx, "auth.me", trace.WithAttributes(
		attribute.String("layer", "logic"),
		attribute.Int64("user.id", identity.UserID),
	))
	defer span.End()

	user, err := s.users.GetByID(ctx, identity.UserID)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("query user %d: %w", identity.UserID, err)
	}
	if user == nil {
		return nil, fmt.Errorf("lookup user %d: %w", identity.UserID, ErrUserNotFound)
	}
	return &domain.UserInfo{ID: user.ID, Email: user.Email}, nil
}

// SetPassword replaces a user's password with a new bcrypt-hashed secret.
func (s *AuthService) SetPassword(ctx context.Context, identity domain.Identity, raw string) error {
	ctx, span := middleware.StartSpan(ctx, "auth.set_password", trace.WithAttributes(
		attribute.String("layer", "logic"),
		attribute.Int64("user.id", identity.UserID),
	))
	defer span.End()

	hash, err := HashPassword(raw)
	if err != nil {
		span.RecordError(err)
		return err
	}
	if err := s.users.UpdatePassword(ctx, identity.UserID, hash); err != nil {
		span.RecordError(err)
		return fmt.Errorf("update password: %w", err)
	}
	return nil
}
