package admin

import (
	"context"
	"crypto/subtle"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/quiz-kiosk-api/internal/config"
	"github.com/quiz-kiosk-api/internal/domain"
	jwtinfra "github.com/quiz-kiosk-api/internal/infrastructure/jwt"
)

const roleAdmin = "admin"

// TokenProvider signs and verifies admin tokens.
type TokenProvider interface {
	Sign(role string) (string, error)
	Verify(token string) (*jwtinfra.Claims, error)
}

type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type Service interface {
	Login(ctx context.Context, password string) (*Session, error)
	VerifyToken(ctx context.Context, token string) (*jwtinfra.Claims, error)
}

type service struct {
	password     string
	passwordHash string
	tokens       TokenProvider
	expiry       time.Duration
}

func NewService(cfg *config.Config, tokens TokenProvider) Service {
	return &service{
		password:     cfg.AdminPassword,
		passwordHash: cfg.AdminPasswordHash,
		tokens:       tokens,
		expiry:       cfg.AdminTokenExpiry,
	}
}

// Login exchanges the shared admin password for a signed token. A bcrypt hash
// takes precedence over the plaintext password when both are configured.
func (s *service) Login(ctx context.Context, password string) (*Session, error) {
	if password == "" {
		return nil, fmt.Errorf("%w: password is required", domain.ErrBadRequest)
	}
	if s.password == "" && s.passwordHash == "" {
		slog.Error("admin login attempted with no password configured")
		return nil, fmt.Errorf("admin access is not configured")
	}

	if !s.checkPassword(password) {
		slog.Warn("admin login rejected")
		return nil, fmt.Errorf("%w: invalid password", domain.ErrUnauthorized)
	}

	if s.tokens == nil {
		return nil, fmt.Errorf("admin tokens are not configured")
	}
	token, err := s.tokens.Sign(roleAdmin)
	if err != nil {
		return nil, fmt.Errorf("signing admin token: %w", err)
	}

	slog.Info("admin login succeeded")
	return &Session{Token: token, ExpiresAt: time.Now().UTC().Add(s.expiry)}, nil
}

func (s *service) checkPassword(password string) bool {
	if s.passwordHash != "" {
		return bcrypt.CompareHashAndPassword([]byte(s.passwordHash), []byte(password)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(s.password), []byte(password)) == 1
}

func (s *service) VerifyToken(ctx context.Context, token string) (*jwtinfra.Claims, error) {
	if s.tokens == nil {
		return nil, fmt.Errorf("admin tokens are not configured")
	}
	claims, err := s.tokens.Verify(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUnauthorized, err)
	}
	if claims.Role != roleAdmin {
		return nil, fmt.Errorf("%w: insufficient role", domain.ErrUnauthorized)
	}
	return claims, nil
}
