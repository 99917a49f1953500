package handler

import (
	"encoding/json"
	"net/http"

	"github.com/quiz-kiosk-api/internal/application/game"
	"github.com/quiz-kiosk-api/internal/pkg/validate"
)

// GameHandler handles game-result endpoints.
type GameHandler struct {
	svc game.Service
}

func NewGameHandler(svc game.Service) *GameHandler {
	return &GameHandler{svc: svc}
}

type resultRequest struct {
	Email  string `json:"email" validate:"required,max=254"`
	Result string `json:"result" validate:"required"`
}

func (h *GameHandler) RecordResult(w http.ResponseWriter, r *http.Request) {
	var req resultRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.svc.RecordResult(r.Context(), req.Email, req.Result); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ResultEnvelope{Success: true})
}
