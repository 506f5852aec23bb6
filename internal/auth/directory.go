// Package auth wraps the GoTrue admin API for the account flows the service
// drives itself: provisioning, recovery links and email lookups.
package auth

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/supabase-community/gotrue-go"
	"github.com/supabase-community/gotrue-go/types"
)

// Directory is the admin-side view of the user store. The underlying client
// does not take a context; ctx is accepted on every method so callers keep
// the usual shape.
type Directory struct {
	client gotrue.Client
	log    zerolog.Logger
}

// New creates a directory against the project's auth endpoint using the
// service role key.
func New(projectURL, serviceKey string, log zerolog.Logger) *Directory {
	client := gotrue.New(projectReference(projectURL), serviceKey).
		WithCustomGoTrueURL(strings.TrimSuffix(projectURL, "/") + "/auth/v1").
		WithToken(serviceKey)
	return &Directory{
		client: client,
		log:    log.With().Str("component", "auth").Logger(),
	}
}

// projectReference extracts the subdomain Supabase uses as the project id.
func projectReference(projectURL string) string {
	host := strings.TrimPrefix(strings.TrimPrefix(projectURL, "https://"), "http://")
	if idx := strings.Index(host, "."); idx != -1 {
		return host[:idx]
	}
	return host
}

// CreateUser provisions a confirmed user so no verification email is
// triggered; the welcome email is sent separately.
func (d *Directory) CreateUser(ctx context.Context, email, password string) (string, error) {
	_ = ctx
	resp, err := d.client.AdminCreateUser(types.AdminCreateUserRequest{
		Email:        email,
		Password:     &password,
		EmailConfirm: true,
	})
	if err != nil {
		return "", fmt.Errorf("auth: create user: %w", err)
	}
	d.log.Info().Str("user_id", resp.ID.String()).Msg("User provisioned")
	return resp.ID.String(), nil
}

// GenerateRecoveryLink returns a one-time password reset link that lands on
// redirectTo after the token is consumed.
func (d *Directory) GenerateRecoveryLink(ctx context.Context, email, redirectTo string) (string, error) {
	_ = ctx
	resp, err := d.client.AdminGenerateLink(types.AdminGenerateLinkRequest{
		Type:       types.LinkTypeRecovery,
		Email:      email,
		RedirectTo: redirectTo,
	})
	if err != nil {
		return "", fmt.Errorf("auth: generate recovery link: %w", err)
	}
	return resp.ActionLink, nil
}

// UserByEmail scans the admin user list for a matching address and returns
// the user id, or an error when no user matches.
func (d *Directory) UserByEmail(ctx context.Context, email string) (string, error) {
	_ = ctx
	resp, err := d.client.AdminListUsers()
	if err != nil {
		return "", fmt.Errorf("auth: list users: %w", err)
	}
	needle := strings.ToLower(email)
	for _, user := range resp.Users {
		if strings.ToLower(user.Email) == needle {
			return user.ID.String(), nil
		}
	}
	return "", fmt.Errorf("auth: no user with email %s", email)
}

// EmailByID resolves a user id to its email address.
func (d *Directory) EmailByID(ctx context.Context, userID string) (string, error) {
	_ = ctx
	id, err := uuid.Parse(userID)
	if err != nil {
		return "", fmt.Errorf("auth: invalid user id %q: %w", userID, err)
	}
	resp, err := d.client.AdminGetUser(types.AdminGetUserRequest{UserID: id})
	if err != nil {
		return "", fmt.Errorf("auth: get user: %w", err)
	}
	return resp.Email, nil
}
