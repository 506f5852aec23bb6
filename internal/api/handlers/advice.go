package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/findash/findash/internal/api/middleware"
	"github.com/findash/findash/internal/receipts"
)

// Adviser answers free-form finance questions.
type Adviser interface {
	Advise(ctx context.Context, query, userID string) (string, error)
}

// AdviceHandler exposes the financial advisor.
type AdviceHandler struct {
	adviser Adviser
	log     zerolog.Logger
}

// NewAdviceHandler creates a new advice handler.
func NewAdviceHandler(adviser Adviser, log zerolog.Logger) *AdviceHandler {
	return &AdviceHandler{
		adviser: adviser,
		log:     log,
	}
}

// Handle handles POST /api/functions/financial-advice
func (h *AdviceHandler) Handle(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Query  string `json:"query"`
		UserID string `json:"userId"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Query == "" {
		middleware.WriteError(w, http.StatusBadRequest, "Query is required")
		return
	}

	advice, err := h.adviser.Advise(r.Context(), req.Query, req.UserID)
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]string{
		"advice": advice,
	})
}

// ReceiptScanner extracts structured data from receipts.
type ReceiptScanner interface {
	Scan(ctx context.Context, input receipts.ScanInput) (*receipts.Receipt, error)
}

// ReceiptHandler exposes the receipt scanner.
type ReceiptHandler struct {
	scanner ReceiptScanner
	log     zerolog.Logger
}

// NewReceiptHandler creates a new receipt handler.
func NewReceiptHandler(scanner ReceiptScanner, log zerolog.Logger) *ReceiptHandler {
	return &ReceiptHandler{
		scanner: scanner,
		log:     log,
	}
}

// Handle handles POST /api/functions/receipt-scanner
func (h *ReceiptHandler) Handle(w http.ResponseWriter, r *http.Request) {
	var input receipts.ScanInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	receipt, err := h.scanner.Scan(r.Context(), input)
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	middleware.WriteJSON(w, http.StatusOK, receipt)
}
