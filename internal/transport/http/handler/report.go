package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/quiz-kiosk-api/internal/application/report"
)

// ReportHandler handles admin stats and export endpoints.
type ReportHandler struct {
	svc report.Service
}

func NewReportHandler(svc report.Service) *ReportHandler {
	return &ReportHandler{svc: svc}
}

func (h *ReportHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Stats(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *ReportHandler) Export(w http.ResponseWriter, r *http.Request) {
	filename := fmt.Sprintf("quiz-export-%s.csv", time.Now().UTC().Format("2006-01-02"))
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	if err := h.svc.ExportCSV(r.Context(), w); err != nil {
		writeDomainError(w, err)
	}
}
