package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/findash/findash/internal/api/middleware"
)

// Directory is the admin auth surface the signup/reset flow needs.
type Directory interface {
	CreateUser(ctx context.Context, email, password string) (string, error)
	GenerateRecoveryLink(ctx context.Context, email, redirectTo string) (string, error)
	UserByEmail(ctx context.Context, email string) (string, error)
}

// AuthMailer sends the account-lifecycle emails.
type AuthMailer interface {
	SendWelcome(ctx context.Context, to, userID string) error
	SendPasswordReset(ctx context.Context, to, userID, actionLink string) error
}

// AuthEmailsHandler drives signup provisioning and password resets.
type AuthEmailsHandler struct {
	directory    Directory
	mailer       AuthMailer
	dashboardURL string
	log          zerolog.Logger
}

// NewAuthEmailsHandler creates a new auth-emails handler.
func NewAuthEmailsHandler(directory Directory, mailer AuthMailer, dashboardURL string, log zerolog.Logger) *AuthEmailsHandler {
	return &AuthEmailsHandler{
		directory:    directory,
		mailer:       mailer,
		dashboardURL: dashboardURL,
		log:          log,
	}
}

// Handle handles POST /api/functions/auth-emails
func (h *AuthEmailsHandler) Handle(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Type        string `json:"type"`
		Email       string `json:"email"`
		Password    string `json:"password,omitempty"`
		RedirectURL string `json:"redirect_url,omitempty"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Type == "" || req.Email == "" {
		middleware.WriteJSON(w, http.StatusBadRequest, map[string]interface{}{
			"error":    "Missing required fields",
			"received": map[string]string{"type": req.Type, "email": req.Email},
		})
		return
	}

	ctx := r.Context()

	switch req.Type {
	case "signup":
		if req.Password == "" {
			middleware.WriteJSON(w, http.StatusBadRequest, map[string]interface{}{
				"error":    "Password is required for signup",
				"received": map[string]string{"type": req.Type, "email": req.Email},
			})
			return
		}

		userID, err := h.directory.CreateUser(ctx, req.Email, req.Password)
		if err != nil {
			h.log.Error().Err(err).Str("email", req.Email).Msg("Failed to create user")
			middleware.WriteError(w, http.StatusInternalServerError, "Failed to create user")
			return
		}

		// The account exists either way; a failed welcome email only gets
		// logged.
		if err := h.mailer.SendWelcome(ctx, req.Email, userID); err != nil {
			h.log.Error().Err(err).Str("email", req.Email).Msg("Welcome email failed, continuing")
		}

		middleware.WriteJSON(w, http.StatusOK, map[string]string{
			"message": "Signup processed successfully",
			"sentTo":  req.Email,
			"user_id": userID,
		})

	case "reset":
		redirect := req.RedirectURL
		if redirect == "" {
			redirect = h.dashboardURL + "/reset-password"
		}

		actionLink, err := h.directory.GenerateRecoveryLink(ctx, req.Email, redirect)
		if err != nil {
			h.log.Error().Err(err).Str("email", req.Email).Msg("Failed to generate recovery link")
			middleware.WriteError(w, http.StatusInternalServerError, "Failed to generate recovery link")
			return
		}

		userID, err := h.directory.UserByEmail(ctx, req.Email)
		if err != nil {
			h.log.Warn().Err(err).Str("email", req.Email).Msg("Could not resolve user id for reset email")
			userID = "system"
		}

		if err := h.mailer.SendPasswordReset(ctx, req.Email, userID, actionLink); err != nil {
			h.log.Error().Err(err).Str("email", req.Email).Msg("Reset email failed, continuing")
		}

		middleware.WriteJSON(w, http.StatusOK, map[string]string{
			"message": "Password reset processed successfully",
			"sentTo":  req.Email,
		})

	default:
		middleware.WriteError(w, http.StatusBadRequest, "type must be signup or reset")
	}
}
