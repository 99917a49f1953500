package report

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/quiz-kiosk-api/internal/domain"
)

type SessionStore interface {
	List(ctx context.Context) ([]domain.GameSession, error)
}

// Archiver keeps a copy of each export in durable storage.
type Archiver interface {
	Upload(ctx context.Context, key string, body io.Reader, contentType string) (string, error)
}

type Service interface {
	Stats(ctx context.Context) (*domain.Stats, error)
	ExportCSV(ctx context.Context, w io.Writer) error
}

type service struct {
	sessions SessionStore
	archive  Archiver
}

// NewService builds the reporting service. archive may be nil, in which case
// exports are streamed to the caller only.
func NewService(sessions SessionStore, archive Archiver) Service {
	return &service{sessions: sessions, archive: archive}
}

func (s *service) Stats(ctx context.Context) (*domain.Stats, error) {
	sessions, err := s.sessions.List(ctx)
	if err != nil {
		slog.Error("stats listing failed", "error", err)
		return nil, fmt.Errorf("listing sessions: %w", err)
	}

	stats := &domain.Stats{Sessions: sessions}
	for _, sess := range sessions {
		stats.TotalParticipants++
		switch sess.GameResult {
		case domain.ResultWin:
			stats.Wins++
		case domain.ResultLoss:
			stats.Losses++
		}
	}
	return stats, nil
}

// ExportCSV writes every session as a CSV row, newest first. When an archiver
// is configured a copy of the export is uploaded as well; archive failures do
// not fail the export.
func (s *service) ExportCSV(ctx context.Context, w io.Writer) error {
	sessions, err := s.sessions.List(ctx)
	if err != nil {
		return fmt.Errorf("listing sessions: %w", err)
	}

	var buf bytes.Buffer
	out := io.Writer(w)
	if s.archive != nil {
		out = io.MultiWriter(w, &buf)
	}

	cw := csv.NewWriter(out)
	if err := cw.Write([]string{"Name", "Email", "Destination", "OTP Verified", "Game Result", "Timestamp"}); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}
	for _, sess := range sessions {
		if err := cw.Write(exportRow(sess)); err != nil {
			return fmt.Errorf("writing csv row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flushing csv: %w", err)
	}

	if s.archive != nil {
		key := fmt.Sprintf("exports/quiz-export-%s.csv", time.Now().UTC().Format("2006-01-02T15-04-05"))
		if _, err := s.archive.Upload(ctx, key, bytes.NewReader(buf.Bytes()), "text/csv"); err != nil {
			slog.Warn("export archive upload failed", "key", key, "error", err)
		} else {
			slog.Info("export archived", "key", key)
		}
	}
	return nil
}

func exportRow(sess domain.GameSession) []string {
	verified := "No"
	if sess.OTPVerified {
		verified = "Yes"
	}
	result := sess.GameResult
	if result == "" {
		result = "N/A"
	}
	return []string{
		sess.Name,
		sess.Email,
		sess.Destination,
		verified,
		result,
		sess.CreatedAt.UTC().Format(time.RFC3339),
	}
}
