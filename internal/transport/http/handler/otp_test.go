package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/quiz-kiosk-api/internal/application/otp"
	"github.com/quiz-kiosk-api/internal/domain"
)

type mockOTPService struct{ mock.Mock }

func (m *mockOTPService) Issue(ctx context.Context, req otp.IssueRequest) (*otp.IssueResult, error) {
	args := m.Called(ctx, req)
	if r, _ := args.Get(0).(*otp.IssueResult); r != nil {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockOTPService) Verify(ctx context.Context, req otp.VerifyRequest) (*domain.Profile, error) {
	args := m.Called(ctx, req)
	if p, _ := args.Get(0).(*domain.Profile); p != nil {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

func postJSON(t *testing.T, h http.HandlerFunc, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func TestSendOTP_InvalidBody(t *testing.T) {
	h := NewOTPHandler(&mockOTPService{}, false)
	rec := postJSON(t, h.SendOTP, "{not json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSendOTP_ValidationFailure(t *testing.T) {
	h := NewOTPHandler(&mockOTPService{}, false)
	rec := postJSON(t, h.SendOTP, `{"email":"a@b.com"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "name is required")
}

func TestSendOTP_ProdOmitsCode(t *testing.T) {
	svc := &mockOTPService{}
	svc.On("Issue", mock.Anything, mock.Anything).Return(&otp.IssueResult{Code: "1234", Delivered: true}, nil)

	h := NewOTPHandler(svc, false)
	rec := postJSON(t, h.SendOTP, `{"email":"a@b.com","name":"Alice"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, true, resp["success"])
	_, present := resp["otp"]
	assert.False(t, present, "code must not leak outside development")
}

func TestSendOTP_DevEchoesCode(t *testing.T) {
	svc := &mockOTPService{}
	svc.On("Issue", mock.Anything, mock.Anything).Return(&otp.IssueResult{Code: "1234", Delivered: false}, nil)

	h := NewOTPHandler(svc, true)
	rec := postJSON(t, h.SendOTP, `{"email":"a@b.com","name":"Alice"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp SendOTPEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "1234", resp.OTP)
}

func TestSendOTP_RateLimited(t *testing.T) {
	svc := &mockOTPService{}
	svc.On("Issue", mock.Anything, mock.Anything).
		Return(nil, fmt.Errorf("slow down: %w", domain.ErrRateLimited))

	h := NewOTPHandler(svc, false)
	rec := postJSON(t, h.SendOTP, `{"email":"a@b.com","name":"Alice"}`)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestSendOTP_InternalErrorIsGeneric(t *testing.T) {
	svc := &mockOTPService{}
	svc.On("Issue", mock.Anything, mock.Anything).Return(nil, fmt.Errorf("dynamo: connection refused"))

	h := NewOTPHandler(svc, false)
	rec := postJSON(t, h.SendOTP, `{"email":"a@b.com","name":"Alice"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "dynamo", "internals must not leak")
}

func TestVerifyOTP_OK(t *testing.T) {
	svc := &mockOTPService{}
	svc.On("Verify", mock.Anything, otp.VerifyRequest{Email: "a@b.com", OTP: "1234"}).
		Return(&domain.Profile{Email: "a@b.com", Name: "Alice", Destination: "Rome"}, nil)

	h := NewOTPHandler(svc, false)
	rec := postJSON(t, h.VerifyOTP, `{"email":"a@b.com","otp":"1234"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp VerifyOTPEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	require.NotNil(t, resp.UserData)
	assert.Equal(t, "a@b.com", resp.UserData.Email)
	assert.Equal(t, "Rome", resp.UserData.Destination)
}

func TestVerifyOTP_DomainErrorStatuses(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"expired", domain.ErrCodeExpired, http.StatusBadRequest},
		{"mismatch", domain.ErrCodeMismatch, http.StatusBadRequest},
		{"already played", domain.ErrAlreadyPlayed, http.StatusBadRequest},
		{"attempts exhausted", domain.ErrTooManyAttempts, http.StatusTooManyRequests},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &mockOTPService{}
			svc.On("Verify", mock.Anything, mock.Anything).Return(nil, fmt.Errorf("verify: %w", tc.err))

			h := NewOTPHandler(svc, false)
			rec := postJSON(t, h.VerifyOTP, `{"email":"a@b.com","otp":"1234"}`)
			assert.Equal(t, tc.status, rec.Code)
		})
	}
}

func TestVerifyOTP_ValidationFailure(t *testing.T) {
	h := NewOTPHandler(&mockOTPService{}, false)
	rec := postJSON(t, h.VerifyOTP, `{"email":"a@b.com","otp":"12345"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "otp must be exactly four characters")
}
