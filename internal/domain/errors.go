package domain

import "errors"

// Sentinel errors for domain-level error discrimination.
// Services wrap these so handlers can map to HTTP status codes without leaking infrastructure details.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrBadRequest   = errors.New("bad request")

	// OTP lifecycle rejections. All are 400-class at the boundary except the
	// two throttling errors, which map to 429.
	ErrRateLimited     = errors.New("rate limited")
	ErrTooManyAttempts = errors.New("too many attempts")
	ErrCodeExpired     = errors.New("otp not found or expired")
	ErrCodeMismatch    = errors.New("invalid otp code")
	ErrAlreadyPlayed   = errors.New("already played")
)
