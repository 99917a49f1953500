package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/quiz-kiosk-api/internal/domain"
)

// ErrorEnvelope is the generic error response wrapper.
type ErrorEnvelope struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// SendOTPEnvelope wraps issuance responses. OTP is populated only in
// development environments.
type SendOTPEnvelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	OTP     string `json:"otp,omitempty"`
}

// VerifyOTPEnvelope wraps verification responses.
type VerifyOTPEnvelope struct {
	Success  bool            `json:"success"`
	UserData *domain.Profile `json:"userData,omitempty"`
}

// ResultEnvelope wraps game-result responses.
type ResultEnvelope struct {
	Success bool `json:"success"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorEnvelope{Error: msg})
}

// writeDomainError maps domain sentinel errors to HTTP statuses. Unrecognized
// errors are logged server-side and reported as a generic 500.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrBadRequest),
		errors.Is(err, domain.ErrCodeExpired),
		errors.Is(err, domain.ErrCodeMismatch),
		errors.Is(err, domain.ErrAlreadyPlayed):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrRateLimited),
		errors.Is(err, domain.ErrTooManyAttempts):
		writeError(w, http.StatusTooManyRequests, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrConflict):
		writeError(w, http.StatusConflict, err.Error())
	default:
		slog.Error("request failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
