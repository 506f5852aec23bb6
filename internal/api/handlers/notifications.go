package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/findash/findash/internal/api/middleware"
	"github.com/findash/findash/internal/domain"
)

// NotificationStore is the data access the notifications endpoints need.
type NotificationStore interface {
	NotificationsByUser(ctx context.Context, userID string, limit int) ([]domain.Notification, error)
	MarkNotificationsRead(ctx context.Context, userID string, ids []string) error
	UnreadNotificationCount(ctx context.Context, userID string) (int64, error)
}

// NotificationsHandler handles notification endpoints.
type NotificationsHandler struct {
	store NotificationStore
	log   zerolog.Logger
}

// NewNotificationsHandler creates a new notifications handler.
func NewNotificationsHandler(store NotificationStore, log zerolog.Logger) *NotificationsHandler {
	return &NotificationsHandler{
		store: store,
		log:   log,
	}
}

// List handles GET /api/notifications?user_id=&limit=
func (h *NotificationsHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	userID := query.Get("user_id")
	if userID == "" {
		middleware.WriteError(w, http.StatusBadRequest, "user_id is required")
		return
	}

	limit := 0
	if s := query.Get("limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			limit = n
		}
	}

	notifications, err := h.store.NotificationsByUser(r.Context(), userID, limit)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list notifications")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list notifications")
		return
	}

	if notifications == nil {
		notifications = []domain.Notification{}
	}
	middleware.WriteJSON(w, http.StatusOK, notifications)
}

// UnreadCount handles GET /api/notifications/unread-count?user_id=
// The navbar badge polls this.
func (h *NotificationsHandler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		middleware.WriteError(w, http.StatusBadRequest, "user_id is required")
		return
	}

	count, err := h.store.UnreadNotificationCount(r.Context(), userID)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to count unread notifications")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to count unread notifications")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]int64{"count": count})
}

// MarkRead handles POST /api/notifications/read
func (h *NotificationsHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID string   `json:"user_id"`
		IDs    []string `json:"ids"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.UserID == "" || len(req.IDs) == 0 {
		middleware.WriteError(w, http.StatusBadRequest, "user_id and ids are required")
		return
	}

	if err := h.store.MarkNotificationsRead(r.Context(), req.UserID, req.IDs); err != nil {
		h.log.Error().Err(err).Msg("Failed to mark notifications read")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to mark notifications read")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Notifications marked read",
		"count":   len(req.IDs),
	})
}
