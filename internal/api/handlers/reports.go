package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/findash/findash/internal/api/middleware"
	"github.com/findash/findash/internal/domain"
)

// ReportService generates and dispatches financial reports.
type ReportService interface {
	Generate(ctx context.Context, userID, email string, freq domain.Frequency, reportType string) error
	Dispatch(ctx context.Context, freq domain.Frequency) (int, error)
}

// ReportsHandler exposes scheduled fan-out and manual report generation.
type ReportsHandler struct {
	service ReportService
	log     zerolog.Logger
}

// NewReportsHandler creates a new reports handler.
func NewReportsHandler(service ReportService, log zerolog.Logger) *ReportsHandler {
	return &ReportsHandler{
		service: service,
		log:     log,
	}
}

// Dispatch handles GET /api/functions/financial-report?frequency=weekly
// It enqueues a report for every profile subscribed to the frequency.
func (h *ReportsHandler) Dispatch(w http.ResponseWriter, r *http.Request) {
	freq, err := domain.ParseFrequency(r.URL.Query().Get("frequency"))
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	queued, err := h.service.Dispatch(r.Context(), freq)
	if err != nil {
		h.log.Error().Err(err).Str("frequency", string(freq)).Msg("Report dispatch failed")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to dispatch reports")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"message":   "Reports dispatched",
		"frequency": freq,
		"queued":    queued,
	})
}

// Generate handles POST /api/functions/financial-report
// It generates one user's report synchronously.
func (h *ReportsHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID    string `json:"user_id"`
		Email     string `json:"email"`
		Frequency string `json:"frequency"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.UserID == "" || req.Email == "" {
		middleware.WriteError(w, http.StatusBadRequest, "user_id and email are required")
		return
	}

	freq := domain.FrequencyMonthly
	if req.Frequency != "" {
		parsed, err := domain.ParseFrequency(req.Frequency)
		if err != nil {
			middleware.WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		freq = parsed
	}

	if err := h.service.Generate(r.Context(), req.UserID, req.Email, freq, "manual"); err != nil {
		h.log.Error().Err(err).Str("user_id", req.UserID).Msg("Report generation failed")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to generate report")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "Report generated and sent",
		"sentTo":  req.Email,
	})
}
