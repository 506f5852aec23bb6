package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	storage_go "github.com/supabase-community/storage-go"
	"github.com/supabase-community/supabase-go"

	"github.com/findash/findash/internal/api/middleware"
	"github.com/findash/findash/internal/domain"
	"github.com/findash/findash/internal/events"
	"github.com/findash/findash/internal/store"
)

// maxAvatarBytes caps avatar uploads at 2 MB.
const maxAvatarBytes = 2 << 20

// ProfileStore is the data access the profile endpoints need.
type ProfileStore interface {
	ProfileByID(ctx context.Context, userID string) (*domain.Profile, error)
	UpsertProfile(ctx context.Context, userID string, update store.ProfileUpdate) (*domain.Profile, error)
}

// ProfileHandler handles profile endpoints, including avatar upload to the
// project's storage bucket.
type ProfileHandler struct {
	store  ProfileStore
	client *supabase.Client
	bucket string
	bus    events.Publisher
	log    zerolog.Logger
}

// NewProfileHandler creates a new profile handler. client may be nil when
// avatar upload is not needed (tests).
func NewProfileHandler(store ProfileStore, client *supabase.Client, bucket string, bus events.Publisher, log zerolog.Logger) *ProfileHandler {
	return &ProfileHandler{
		store:  store,
		client: client,
		bucket: bucket,
		bus:    bus,
		log:    log,
	}
}

// Get handles GET /api/profile?user_id=
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		middleware.WriteError(w, http.StatusBadRequest, "user_id is required")
		return
	}

	profile, err := h.store.ProfileByID(r.Context(), userID)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to get profile")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to get profile")
		return
	}
	if profile == nil {
		middleware.WriteError(w, http.StatusNotFound, "Profile not found")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, profile)
}

// Upsert handles PUT /api/profile
func (h *ProfileHandler) Upsert(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID string `json:"user_id"`
		store.ProfileUpdate
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.UserID == "" {
		middleware.WriteError(w, http.StatusBadRequest, "user_id is required")
		return
	}
	if req.ReportFrequency != nil {
		if _, err := domain.ParseFrequency(*req.ReportFrequency); err != nil {
			middleware.WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	profile, err := h.store.UpsertProfile(r.Context(), req.UserID, req.ProfileUpdate)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to upsert profile")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to save profile")
		return
	}

	if h.bus != nil {
		h.bus.Publish(events.Event{Kind: events.KindProfile, UserID: req.UserID, Payload: profile})
	}

	middleware.WriteJSON(w, http.StatusOK, profile)
}

// UploadAvatar handles POST /api/profile/avatar
// The image lands in the avatars bucket and the public URL is written back to
// the profile.
func (h *ProfileHandler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	if h.client == nil {
		middleware.WriteError(w, http.StatusServiceUnavailable, "Avatar storage is not configured")
		return
	}

	if err := r.ParseMultipartForm(maxAvatarBytes); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	userID := r.FormValue("user_id")
	if userID == "" {
		middleware.WriteError(w, http.StatusBadRequest, "user_id is required")
		return
	}

	file, header, err := r.FormFile("avatar")
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "avatar file is required")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "image/png"
	}

	objectName := fmt.Sprintf("%s/%s%s", userID, uuid.New().String(), filepath.Ext(header.Filename))
	_, err = h.client.Storage.UploadFile(h.bucket, objectName, file, storage_go.FileOptions{
		ContentType: &contentType,
	})
	if err != nil {
		h.log.Error().Err(err).Str("user_id", userID).Msg("Failed to upload avatar")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to upload avatar")
		return
	}

	publicURL := h.client.Storage.GetPublicUrl(h.bucket, objectName).SignedURL

	profile, err := h.store.UpsertProfile(r.Context(), userID, store.ProfileUpdate{
		AvatarURL: &publicURL,
	})
	if err != nil {
		h.log.Error().Err(err).Str("user_id", userID).Msg("Failed to save avatar URL")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to save avatar URL")
		return
	}

	if h.bus != nil {
		h.bus.Publish(events.Event{Kind: events.KindProfile, UserID: userID, Payload: profile})
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]string{
		"avatar_url": publicURL,
	})
}
