package rest

import (
	"net/http"

	"collectbook/internal/service"
	"collectbook/internal/transport/auth"

	"github.com/go-chi/chi/v5"
)

func (h *Handler) submitCollection(w http.ResponseWriter, r *http.Request) {
	customerID := chi.URLParam(r, "customer_id")

	req, err := ValidateSubmitCollectionRequest(r)
	if err != nil {
		if _, ok := err.(*ValidationError); ok {
			ErrorBadRequest(w, err.Error())
			return
		}
		ErrorBadRequest(w, "invalid JSON")
		return
	}

	collectorID, err := auth.GetCollectorID(r.Context())
	if err != nil {
		ErrorUnauthorized(w, "Unauthorized")
		return
	}

	result, err := h.collections.Submit(r.Context(), service.SubmitInput{
		CustomerID:  customerID,
		CollectorID: collectorID,
		Amount:      req.Amount,
		Notes:       req.Notes,
	})
	if err != nil {
		ServiceError(w, err)
		return
	}

	message := "collection recorded"
	if result.Completed {
		message = "collection recorded, loan completed"
	}

	Success(w, message, map[string]any{
		"date":        result.Date,
		"entry":       result.Entry,
		"new_balance": result.NewBalance.StringFixed(2),
		"completed":   result.Completed,
	})
}

func (h *Handler) getLedger(w http.ResponseWriter, r *http.Request) {
	customerID := chi.URLParam(r, "customer_id")

	account, err := h.collections.Ledger(r.Context(), customerID)
	if err != nil {
		ServiceError(w, err)
		return
	}

	Success(w, "", map[string]any{
		"customer_id":       account.CustomerID,
		"balance":           account.Balance.StringFixed(2),
		"status":            account.Status,
		"daily_collections": account.DailyCollections,
	})
}

func (h *Handler) generateReceipt(w http.ResponseWriter, r *http.Request) {
	customerID := chi.URLParam(r, "customer_id")
	date := r.URL.Query().Get("date")

	if _, err := auth.GetCollectorID(r.Context()); err != nil {
		ErrorUnauthorized(w, "Unauthorized")
		return
	}

	receipt, err := h.receipts.Generate(r.Context(), customerID, date)
	if err != nil {
		ServiceError(w, err)
		return
	}

	SuccessCreated(w, "receipt generated", receipt)
}
