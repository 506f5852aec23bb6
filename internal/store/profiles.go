package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/findash/findash/internal/domain"
)

// ProfileByID returns one profile, or nil when it does not exist yet.
func (s *Store) ProfileByID(ctx context.Context, userID string) (*domain.Profile, error) {
	data, _, err := s.client.From("profiles").
		Select("*", "", false).
		Eq("id", userID).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("store: get profile: %w", err)
	}

	var profiles []domain.Profile
	if err := json.Unmarshal(data, &profiles); err != nil {
		return nil, fmt.Errorf("store: parse profile: %w", err)
	}
	if len(profiles) == 0 {
		return nil, nil
	}
	return &profiles[0], nil
}

// ProfileUpdate carries the mutable profile fields; nil fields are left
// untouched.
type ProfileUpdate struct {
	Username        *string `json:"username,omitempty"`
	AvatarURL       *string `json:"avatar_url,omitempty"`
	Currency        *string `json:"currency,omitempty"`
	ReportFrequency *string `json:"report_frequency,omitempty"`
}

// UpsertProfile creates or updates a profile row keyed by the auth user id.
func (s *Store) UpsertProfile(ctx context.Context, userID string, update ProfileUpdate) (*domain.Profile, error) {
	payload := struct {
		ID string `json:"id"`
		ProfileUpdate
	}{ID: userID, ProfileUpdate: update}

	data, _, err := s.client.From("profiles").Insert(payload, true, "id", "representation", "").Execute()
	if err != nil {
		return nil, fmt.Errorf("store: upsert profile: %w", err)
	}

	var profiles []domain.Profile
	if err := json.Unmarshal(data, &profiles); err != nil {
		return nil, fmt.Errorf("store: parse upserted profile: %w", err)
	}
	if len(profiles) == 0 {
		return nil, fmt.Errorf("store: upsert profile returned no rows")
	}
	return &profiles[0], nil
}

// ProfilesByFrequency returns every profile that opted into the given report
// frequency. The report scheduler fans out from this list.
func (s *Store) ProfilesByFrequency(ctx context.Context, frequency domain.Frequency) ([]domain.Profile, error) {
	data, _, err := s.client.From("profiles").
		Select("*", "", false).
		Eq("report_frequency", string(frequency)).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("store: profiles by frequency: %w", err)
	}

	var profiles []domain.Profile
	if err := json.Unmarshal(data, &profiles); err != nil {
		return nil, fmt.Errorf("store: parse profiles: %w", err)
	}
	return profiles, nil
}
