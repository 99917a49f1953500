package admin

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/quiz-kiosk-api/internal/config"
	"github.com/quiz-kiosk-api/internal/domain"
	jwtinfra "github.com/quiz-kiosk-api/internal/infrastructure/jwt"
)

type mockTokenProvider struct{ mock.Mock }

func (m *mockTokenProvider) Sign(role string) (string, error) {
	args := m.Called(role)
	return args.String(0), args.Error(1)
}
func (m *mockTokenProvider) Verify(token string) (*jwtinfra.Claims, error) {
	args := m.Called(token)
	if c, _ := args.Get(0).(*jwtinfra.Claims); c != nil {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}

func testConfig(password, hash string) *config.Config {
	return &config.Config{
		AdminPassword:     password,
		AdminPasswordHash: hash,
		AdminTokenExpiry:  24 * time.Hour,
	}
}

func TestLogin_PlaintextPassword(t *testing.T) {
	tp := &mockTokenProvider{}
	tp.On("Sign", "admin").Return("signed-token", nil)

	svc := NewService(testConfig("s3cret", ""), tp)
	sess, err := svc.Login(context.Background(), "s3cret")
	require.NoError(t, err)
	assert.Equal(t, "signed-token", sess.Token)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), sess.ExpiresAt, time.Minute)
}

func TestLogin_BcryptHashPreferred(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("hunter2"), bcrypt.MinCost)
	require.NoError(t, err)

	tp := &mockTokenProvider{}
	tp.On("Sign", "admin").Return("signed-token", nil)

	// Plaintext config is ignored once a hash is present.
	svc := NewService(testConfig("other", string(hash)), tp)

	_, err = svc.Login(context.Background(), "other")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))

	sess, err := svc.Login(context.Background(), "hunter2")
	require.NoError(t, err)
	assert.Equal(t, "signed-token", sess.Token)
}

func TestLogin_WrongPassword(t *testing.T) {
	svc := NewService(testConfig("s3cret", ""), &mockTokenProvider{})
	_, err := svc.Login(context.Background(), "nope")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
}

func TestLogin_EmptyPassword(t *testing.T) {
	svc := NewService(testConfig("s3cret", ""), &mockTokenProvider{})
	_, err := svc.Login(context.Background(), "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
}

func TestLogin_NotConfigured(t *testing.T) {
	svc := NewService(testConfig("", ""), &mockTokenProvider{})
	_, err := svc.Login(context.Background(), "anything")
	require.Error(t, err)
	assert.False(t, errors.Is(err, domain.ErrUnauthorized), "misconfiguration is not an auth failure")
}

func TestVerifyToken(t *testing.T) {
	tp := &mockTokenProvider{}
	tp.On("Verify", "good").Return(&jwtinfra.Claims{Role: "admin"}, nil)
	tp.On("Verify", "stale").Return(nil, errors.New("token is expired"))
	tp.On("Verify", "viewer").Return(&jwtinfra.Claims{Role: "viewer"}, nil)

	svc := NewService(testConfig("s3cret", ""), tp)

	claims, err := svc.VerifyToken(context.Background(), "good")
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Role)

	_, err = svc.VerifyToken(context.Background(), "stale")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))

	_, err = svc.VerifyToken(context.Background(), "viewer")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
}
