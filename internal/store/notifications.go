package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/findash/findash/internal/domain"
)

// InsertNotification persists a notification row and returns it with its id.
func (s *Store) InsertNotification(ctx context.Context, n *domain.Notification) (*domain.Notification, error) {
	payload := struct {
		UserID  string `json:"user_id"`
		Title   string `json:"title"`
		Message string `json:"message"`
		Type    string `json:"type"`
		Read    bool   `json:"read"`
	}{
		UserID:  n.UserID,
		Title:   n.Title,
		Message: n.Message,
		Type:    n.Type,
		Read:    n.Read,
	}

	data, _, err := s.client.From("notifications").Insert(payload, false, "", "representation", "").Execute()
	if err != nil {
		return nil, fmt.Errorf("store: insert notification: %w", err)
	}

	var created []domain.Notification
	if err := json.Unmarshal(data, &created); err != nil {
		return nil, fmt.Errorf("store: parse created notification: %w", err)
	}
	if len(created) == 0 {
		return nil, fmt.Errorf("store: insert notification returned no rows")
	}
	return &created[0], nil
}

// NotificationsByUser returns a user's notifications, newest first.
func (s *Store) NotificationsByUser(ctx context.Context, userID string, limit int) ([]domain.Notification, error) {
	query := s.client.From("notifications").
		Select("*", "", false).
		Eq("user_id", userID).
		Order("created_at.desc", nil)
	if limit > 0 {
		query = query.Limit(limit, "")
	}

	data, _, err := query.Execute()
	if err != nil {
		return nil, fmt.Errorf("store: list notifications: %w", err)
	}

	var notifications []domain.Notification
	if err := json.Unmarshal(data, &notifications); err != nil {
		return nil, fmt.Errorf("store: parse notifications: %w", err)
	}
	return notifications, nil
}

// UnreadNotificationCount counts a user's unread notifications.
func (s *Store) UnreadNotificationCount(ctx context.Context, userID string) (int64, error) {
	_, count, err := s.client.From("notifications").
		Select("id", "exact", false).
		Eq("user_id", userID).
		Eq("read", "false").
		Execute()
	if err != nil {
		return 0, fmt.Errorf("store: count unread notifications: %w", err)
	}
	return count, nil
}

// MarkNotificationsRead flags the given notifications as read for a user.
func (s *Store) MarkNotificationsRead(ctx context.Context, userID string, ids []string) error {
	payload := struct {
		Read bool `json:"read"`
	}{Read: true}

	for _, id := range ids {
		_, _, err := s.client.From("notifications").
			Update(payload, "", "").
			Eq("id", id).
			Eq("user_id", userID).
			Execute()
		if err != nil {
			return fmt.Errorf("store: mark notification %s read: %w", id, err)
		}
	}
	return nil
}
