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

// BudgetStore is the data access the budgets endpoints need.
type BudgetStore interface {
	BudgetsByUser(ctx context.Context, userID string) ([]domain.Budget, error)
	InsertBudget(ctx context.Context, budget *domain.Budget) (*domain.Budget, error)
}

// BudgetsHandler handles budget endpoints.
type BudgetsHandler struct {
	store BudgetStore
	bus   events.Publisher
	log   zerolog.Logger
}

// NewBudgetsHandler creates a new budgets handler.
func NewBudgetsHandler(store BudgetStore, bus events.Publisher, log zerolog.Logger) *BudgetsHandler {
	return &BudgetsHandler{
		store: store,
		bus:   bus,
		log:   log,
	}
}

// List handles GET /api/budgets?user_id=
func (h *BudgetsHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		middleware.WriteError(w, http.StatusBadRequest, "user_id is required")
		return
	}

	budgets, err := h.store.BudgetsByUser(r.Context(), userID)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list budgets")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list budgets")
		return
	}

	if budgets == nil {
		budgets = []domain.Budget{}
	}
	middleware.WriteJSON(w, http.StatusOK, budgets)
}

// Create handles POST /api/budgets
func (h *BudgetsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var budget domain.Budget
	if err := json.NewDecoder(r.Body).Decode(&budget); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if budget.UserID == "" {
		middleware.WriteError(w, http.StatusBadRequest, "user_id is required")
		return
	}
	budget.Category = domain.NormalizeCategory(budget.Category)
	if !domain.ValidCategory(budget.Category) {
		middleware.WriteError(w, http.StatusBadRequest, "Unknown category")
		return
	}
	if budget.Total <= 0 {
		middleware.WriteError(w, http.StatusBadRequest, "total must be positive")
		return
	}

	created, err := h.store.InsertBudget(r.Context(), &budget)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to create budget")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to create budget")
		return
	}

	if h.bus != nil {
		h.bus.Publish(events.Event{Kind: events.KindBudget, UserID: created.UserID, Payload: created})
	}

	middleware.WriteJSON(w, http.StatusCreated, created)
}
