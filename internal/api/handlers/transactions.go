package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/findash/findash/internal/api/middleware"
	"github.com/findash/findash/internal/domain"
	"github.com/findash/findash/internal/ledger"
	"github.com/findash/findash/internal/store"
)

// TransactionStore is the read side of the transactions endpoints.
type TransactionStore interface {
	ListTransactions(ctx context.Context, userID string, filter store.TransactionFilter) ([]domain.Transaction, error)
}

// Ledger records new transactions with their follow-up effects.
type Ledger interface {
	RecordTransaction(ctx context.Context, input ledger.NewTransaction) (*domain.Transaction, error)
}

// TransactionsHandler handles transaction endpoints.
type TransactionsHandler struct {
	store  TransactionStore
	ledger Ledger
	log    zerolog.Logger
}

// NewTransactionsHandler creates a new transactions handler.
func NewTransactionsHandler(store TransactionStore, ledger Ledger, log zerolog.Logger) *TransactionsHandler {
	return &TransactionsHandler{
		store:  store,
		ledger: ledger,
		log:    log,
	}
}

// List handles GET /api/transactions?user_id=&start_date=&end_date=&limit=
func (h *TransactionsHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	userID := query.Get("user_id")
	if userID == "" {
		middleware.WriteError(w, http.StatusBadRequest, "user_id is required")
		return
	}

	var filter store.TransactionFilter

	if s := query.Get("start_date"); s != "" {
		startDate, err := time.Parse("2006-01-02", s)
		if err != nil {
			middleware.WriteError(w, http.StatusBadRequest, "Invalid start_date format")
			return
		}
		filter.StartDate = &startDate
	}
	if s := query.Get("end_date"); s != "" {
		endDate, err := time.Parse("2006-01-02", s)
		if err != nil {
			middleware.WriteError(w, http.StatusBadRequest, "Invalid end_date format")
			return
		}
		filter.EndDate = &endDate
	}
	if s := query.Get("limit"); s != "" {
		if limit, err := strconv.Atoi(s); err == nil {
			filter.Limit = limit
		}
	}

	transactions, err := h.store.ListTransactions(r.Context(), userID, filter)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list transactions")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list transactions")
		return
	}

	// Return array directly for frontend compatibility
	if transactions == nil {
		transactions = []domain.Transaction{}
	}
	middleware.WriteJSON(w, http.StatusOK, transactions)
}

// Create handles POST /api/transactions
func (h *TransactionsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID   string  `json:"user_id"`
		Name     string  `json:"name"`
		Amount   float64 `json:"amount"`
		Type     string  `json:"type"`
		Category string  `json:"category"`
		Email    string  `json:"email,omitempty"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	created, err := h.ledger.RecordTransaction(r.Context(), ledger.NewTransaction{
		UserID:   req.UserID,
		Name:     req.Name,
		Amount:   req.Amount,
		Type:     domain.TransactionType(req.Type),
		Category: req.Category,
		Email:    req.Email,
	})
	if err != nil {
		switch {
		case errors.Is(err, ledger.ErrDuplicate):
			middleware.WriteError(w, http.StatusConflict, "Duplicate transaction submitted within the last few seconds")
		case errors.Is(err, ledger.ErrInvalid):
			middleware.WriteError(w, http.StatusBadRequest, err.Error())
		default:
			h.log.Error().Err(err).Msg("Failed to record transaction")
			middleware.WriteError(w, http.StatusInternalServerError, "Failed to record transaction")
		}
		return
	}

	middleware.WriteJSON(w, http.StatusCreated, created)
}
