package game

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/quiz-kiosk-api/internal/domain"
)

// SessionStore is the slice of session persistence the game flow needs.
type SessionStore interface {
	SetResult(ctx context.Context, email, result string) error
}

type Service interface {
	RecordResult(ctx context.Context, email, result string) error
}

type service struct {
	sessions SessionStore
}

func NewService(sessions SessionStore) Service {
	return &service{sessions: sessions}
}

// RecordResult attaches the final outcome to a verified session. The result
// is write-once: a second write for the same email is rejected.
func (s *service) RecordResult(ctx context.Context, email, result string) error {
	email = domain.NormalizeEmail(email)
	if email == "" {
		return fmt.Errorf("%w: email is required", domain.ErrBadRequest)
	}
	if result != domain.ResultWin && result != domain.ResultLoss {
		return fmt.Errorf("%w: result must be %q or %q", domain.ErrBadRequest, domain.ResultWin, domain.ResultLoss)
	}

	if err := s.sessions.SetResult(ctx, email, result); err != nil {
		slog.Warn("record result failed", "email", email, "error", err)
		return err
	}

	slog.Info("game result recorded", "email", email, "result", result)
	return nil
}
