package handler

import (
	"encoding/json"
	"net/http"

	"github.com/quiz-kiosk-api/internal/application/otp"
	"github.com/quiz-kiosk-api/internal/pkg/validate"
)

// OTPHandler handles OTP issuance and verification endpoints.
type OTPHandler struct {
	svc otp.Service
	dev bool
}

// NewOTPHandler builds the handler. dev controls whether issued codes are
// echoed in the response for kiosk testing.
func NewOTPHandler(svc otp.Service, dev bool) *OTPHandler {
	return &OTPHandler{svc: svc, dev: dev}
}

func (h *OTPHandler) SendOTP(w http.ResponseWriter, r *http.Request) {
	var req otp.IssueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.svc.Issue(r.Context(), req)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	resp := SendOTPEnvelope{Success: true, Message: "OTP sent"}
	if h.dev {
		resp.OTP = result.Code
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *OTPHandler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req otp.VerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	profile, err := h.svc.Verify(r.Context(), req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, VerifyOTPEnvelope{Success: true, UserData: profile})
}
