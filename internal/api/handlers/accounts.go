package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/findash/findash/internal/api/middleware"
	"github.com/findash/findash/internal/domain"
	"github.com/findash/findash/internal/events"
)

// AccountStore is the data access the accounts endpoints need.
type AccountStore interface {
	AccountsByUser(ctx context.Context, userID string) ([]domain.Account, error)
	InsertAccount(ctx context.Context, account *domain.Account) (*domain.Account, error)
}

// AccountsHandler handles account endpoints.
type AccountsHandler struct {
	store AccountStore
	bus   events.Publisher
	log   zerolog.Logger
}

// NewAccountsHandler creates a new accounts handler.
func NewAccountsHandler(store AccountStore, bus events.Publisher, log zerolog.Logger) *AccountsHandler {
	return &AccountsHandler{
		store: store,
		bus:   bus,
		log:   log,
	}
}

// List handles GET /api/accounts?user_id=
func (h *AccountsHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		middleware.WriteError(w, http.StatusBadRequest, "user_id is required")
		return
	}

	accounts, err := h.store.AccountsByUser(r.Context(), userID)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list accounts")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list accounts")
		return
	}

	if accounts == nil {
		accounts = []domain.Account{}
	}
	middleware.WriteJSON(w, http.StatusOK, accounts)
}

// Create handles POST /api/accounts
func (h *AccountsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var account domain.Account
	if err := json.NewDecoder(r.Body).Decode(&account); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if account.UserID == "" || account.Name == "" {
		middleware.WriteError(w, http.StatusBadRequest, "user_id and name are required")
		return
	}
	if !domain.ValidAccountType(account.Type) {
		middleware.WriteError(w, http.StatusBadRequest, "type must be bank, credit, investment or loan")
		return
	}

	created, err := h.store.InsertAccount(r.Context(), &account)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to create account")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to create account")
		return
	}

	if h.bus != nil {
		h.bus.Publish(events.Event{Kind: events.KindAccount, UserID: created.UserID, Payload: created})
	}

	middleware.WriteJSON(w, http.StatusCreated, created)
}
