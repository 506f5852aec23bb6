package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/findash/findash/internal/alerts"
	"github.com/findash/findash/internal/api/middleware"
)

// AlertProcessor runs the budget alert pipeline.
type AlertProcessor interface {
	Process(ctx context.Context, alert alerts.Alert) (alerts.Result, error)
}

// BudgetNotificationsHandler exposes the alert pipeline over HTTP. It keeps
// the request and response shapes of the original edge function so existing
// callers need no changes.
type BudgetNotificationsHandler struct {
	processor AlertProcessor
	log       zerolog.Logger
}

// NewBudgetNotificationsHandler creates a new budget-notifications handler.
func NewBudgetNotificationsHandler(processor AlertProcessor, log zerolog.Logger) *BudgetNotificationsHandler {
	return &BudgetNotificationsHandler{
		processor: processor,
		log:       log,
	}
}

// Handle handles POST /api/functions/budget-notifications
func (h *BudgetNotificationsHandler) Handle(w http.ResponseWriter, r *http.Request) {
	var alert alerts.Alert
	if err := json.NewDecoder(r.Body).Decode(&alert); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.processor.Process(r.Context(), alert)
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	if result.Suppressed {
		middleware.WriteJSON(w, http.StatusOK, map[string]string{
			"message": "Skipped sending duplicate alert",
			"reason":  "Recent similar alert already sent",
		})
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"message":         "Budget alert processed successfully",
		"notification_id": result.NotificationID,
		"email_sent":      result.EmailSent,
	})
}
