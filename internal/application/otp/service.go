package otp

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"regexp"
	"strings"
	"time"

	"github.com/quiz-kiosk-api/internal/domain"
	"github.com/quiz-kiosk-api/internal/infrastructure/smtp"
	"github.com/quiz-kiosk-api/internal/pkg/id"
)

// Throttling parameters. The issuance window and the attempt bound together
// cap brute force at 15 guesses per minute against a 9,000-code space that
// rotates every 5 minutes.
const (
	IssueLimit        = 3
	IssueWindow       = time.Minute
	MaxVerifyAttempts = 5

	codeTTL         = 5 * time.Minute
	deliveryTimeout = 10 * time.Second
	purgeTimeout    = 5 * time.Second
)

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	codePattern  = regexp.MustCompile(`^[0-9]{4}$`)
)

// IssueRequest is the send-otp payload.
type IssueRequest struct {
	Email           string `json:"email" validate:"required,max=254"`
	Name            string `json:"name" validate:"required,max=100,noscript"`
	Destination     string `json:"destination" validate:"omitempty,max=100"`
	DestinationCode string `json:"destinationCode" validate:"omitempty,max=10"`
	ReceiveUpdates  bool   `json:"receiveUpdates"`
}

// IssueResult reports the issued code and whether delivery succeeded.
// Delivery failure is not a caller-visible error: the code is durably
// stored, so the HTTP contract still reports success. The Code field is
// only ever echoed to clients in a non-production posture.
type IssueResult struct {
	Code      string
	Delivered bool
}

// VerifyRequest is the verify-otp payload.
type VerifyRequest struct {
	Email string `json:"email" validate:"required,max=254"`
	OTP   string `json:"otp" validate:"required,len=4"`
}

// ChallengeStore is the durable keyed storage for OTP challenges.
type ChallengeStore interface {
	Put(ctx context.Context, c *domain.OTPChallenge) error
	GetActive(ctx context.Context, email string) (*domain.OTPChallenge, error)
	MarkVerified(ctx context.Context, email string) error
	PurgeExpired(ctx context.Context) (int, error)
}

// SessionStore is the durable storage for participation records. Insert
// must enforce the one-record-per-email constraint atomically.
type SessionStore interface {
	Insert(ctx context.Context, s *domain.GameSession) error
	Get(ctx context.Context, email string) (*domain.GameSession, error)
}

// Limiter throttles issuance per email.
type Limiter interface {
	Allow(key string) bool
}

// AttemptGuard bounds verification attempts per email.
type AttemptGuard interface {
	Consume(key string) bool
	Reset(key string)
}

type Service interface {
	Issue(ctx context.Context, req IssueRequest) (*IssueResult, error)
	Verify(ctx context.Context, req VerifyRequest) (*domain.Profile, error)
}

type ServiceDeps struct {
	Challenges ChallengeStore
	Sessions   SessionStore
	Mailer     smtp.Mailer
	Limiter    Limiter
	Attempts   AttemptGuard
}

type service struct {
	challenges ChallengeStore
	sessions   SessionStore
	mailer     smtp.Mailer
	limiter    Limiter
	attempts   AttemptGuard
}

func NewService(d ServiceDeps) Service {
	return &service{
		challenges: d.Challenges,
		sessions:   d.Sessions,
		mailer:     d.Mailer,
		limiter:    d.Limiter,
		attempts:   d.Attempts,
	}
}

// Issue validates the request, throttles per email, stores a fresh challenge
// (replacing any prior one) and attempts delivery. Storage failure is fatal;
// delivery failure is not.
func (s *service) Issue(ctx context.Context, req IssueRequest) (*IssueResult, error) {
	email := domain.NormalizeEmail(req.Email)
	name := strings.TrimSpace(req.Name)
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if name == "" || len(name) > 100 {
		return nil, fmt.Errorf("invalid name: %w", domain.ErrBadRequest)
	}
	if strings.Contains(strings.ToLower(name), "<script") {
		return nil, fmt.Errorf("invalid name: %w", domain.ErrBadRequest)
	}

	if !s.limiter.Allow(email) {
		return nil, fmt.Errorf("too many otp requests for %s: %w", email, domain.ErrRateLimited)
	}

	code, err := generateCode()
	if err != nil {
		return nil, fmt.Errorf("generate code: %w", err)
	}

	now := time.Now().UTC()
	ch := &domain.OTPChallenge{
		Email:           email,
		Code:            code,
		Name:            name,
		Destination:     strings.TrimSpace(req.Destination),
		DestinationCode: strings.TrimSpace(req.DestinationCode),
		ReceiveUpdates:  req.ReceiveUpdates,
		Verified:        false,
		CreatedAt:       now,
		ExpiresAt:       now.Add(codeTTL).Unix(),
	}
	if err := s.challenges.Put(ctx, ch); err != nil {
		return nil, fmt.Errorf("store challenge: %w", err)
	}

	// A fresh challenge opens a fresh attempt budget.
	s.attempts.Reset(email)

	// Passive hygiene; GetActive filters on expiry and the table TTL
	// sweeps eventually. Detached from the request context.
	go func() {
		pctx, cancel := context.WithTimeout(context.Background(), purgeTimeout)
		defer cancel()
		if _, err := s.challenges.PurgeExpired(pctx); err != nil {
			slog.Debug("expired challenge purge failed", "err", err)
		}
	}()

	dctx, cancel := context.WithTimeout(ctx, deliveryTimeout)
	defer cancel()
	delivered := true
	if err := s.mailer.SendEmail(dctx, email, "Your verification code", smtp.OTPBody(code)); err != nil {
		delivered = false
		slog.Warn("otp email delivery failed", "email", email, "err", err)
	}

	return &IssueResult{Code: code, Delivered: delivered}, nil
}

// Verify matches the submitted code against the stored challenge and, on
// success, creates the participation record. The conditional insert on the
// sessions table is the authoritative one-play-per-email enforcement; the
// Get before it is only a courtesy pre-check and tolerates races.
func (s *service) Verify(ctx context.Context, req VerifyRequest) (*domain.Profile, error) {
	email := domain.NormalizeEmail(req.Email)
	code := strings.TrimSpace(req.OTP)
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if !codePattern.MatchString(code) {
		return nil, fmt.Errorf("otp must be 4 digits: %w", domain.ErrBadRequest)
	}

	if !s.attempts.Consume(email) {
		return nil, fmt.Errorf("verification attempts exhausted for %s: %w", email, domain.ErrTooManyAttempts)
	}

	ch, err := s.challenges.GetActive(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("request a new code: %w", domain.ErrCodeExpired)
		}
		return nil, fmt.Errorf("lookup challenge: %w", err)
	}

	if ch.Code != code {
		return nil, fmt.Errorf("code mismatch for %s: %w", email, domain.ErrCodeMismatch)
	}

	if _, err := s.sessions.Get(ctx, email); err == nil {
		s.markVerifiedQuiet(ctx, email)
		return nil, fmt.Errorf("one game per email: %w", domain.ErrAlreadyPlayed)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("lookup session: %w", err)
	}

	now := time.Now().UTC()
	sess := &domain.GameSession{
		SessionID:       id.New(),
		Email:           email,
		Name:            ch.Name,
		Destination:     ch.Destination,
		DestinationCode: ch.DestinationCode,
		ReceiveUpdates:  ch.ReceiveUpdates,
		OTPVerified:     true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.sessions.Insert(ctx, sess); err != nil {
		if errors.Is(err, domain.ErrAlreadyPlayed) {
			// Lost the race against a concurrent verification.
			s.markVerifiedQuiet(ctx, email)
			return nil, fmt.Errorf("one game per email: %w", domain.ErrAlreadyPlayed)
		}
		return nil, fmt.Errorf("insert session: %w", err)
	}

	// The record exists, so a replayed verification is rejected by the
	// already-played path even if this update never lands.
	s.markVerifiedQuiet(ctx, email)
	s.attempts.Reset(email)

	p := ch.Profile()
	return &p, nil
}

func (s *service) markVerifiedQuiet(ctx context.Context, email string) {
	if err := s.challenges.MarkVerified(ctx, email); err != nil {
		slog.Warn("failed to mark challenge verified", "email", email, "err", err)
	}
}

func validateEmail(email string) error {
	if email == "" || len(email) > 254 || !emailPattern.MatchString(email) {
		return fmt.Errorf("invalid email format: %w", domain.ErrBadRequest)
	}
	return nil
}

// generateCode draws a 4-digit code uniformly from [1000, 9999].
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(9000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%d", n.Int64()+1000), nil
}
