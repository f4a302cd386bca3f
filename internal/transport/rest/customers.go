package rest

import (
	"net/http"

	"collectbook/internal/service"
	"collectbook/internal/transport/auth"

	"github.com/go-chi/chi/v5"
)

func (h *Handler) registerCustomer(w http.ResponseWriter, r *http.Request) {
	req, err := ValidateRegisterCustomerRequest(r)
	if err != nil {
		ErrorBadRequest(w, "invalid JSON")
		return
	}

	customer, err := h.customers.Register(r.Context(), service.RegisterInput{
		Name:     req.Name,
		NIC:      req.NIC,
		Contact:  req.Contact,
		Address:  req.Address,
		Area:     req.Area,
		LoanType: req.LoanType,
		Picture:  req.Picture,
	})
	if err != nil {
		ServiceError(w, err)
		return
	}

	SuccessCreated(w, "customer registered", map[string]any{
		"id":     customer.ID,
		"status": customer.Status,
	})
}

func (h *Handler) listCustomers(w http.ResponseWriter, r *http.Request) {
	area := r.URL.Query().Get("area")
	query := r.URL.Query().Get("q")

	customers, err := h.customers.List(r.Context(), area, query)
	if err != nil {
		ServiceError(w, err)
		return
	}

	Success(w, "", customers)
}

func (h *Handler) listPlans(w http.ResponseWriter, r *http.Request) {
	plans, err := h.customers.Plans(r.Context())
	if err != nil {
		ServiceError(w, err)
		return
	}

	out := make([]map[string]any, 0, len(plans))
	for _, plan := range plans {
		out = append(out, map[string]any{
			"id":           plan.ID,
			"name":         plan.Name,
			"daily_amount": plan.DailyAmount.StringFixed(2),
			"total_amount": plan.TotalAmount.StringFixed(2),
		})
	}

	Success(w, "", out)
}

func (h *Handler) approveCustomer(w http.ResponseWriter, r *http.Request) {
	if _, err := auth.GetCollectorID(r.Context()); err != nil {
		ErrorUnauthorized(w, "Unauthorized")
		return
	}

	customerID := chi.URLParam(r, "customer_id")

	account, err := h.customers.Approve(r.Context(), customerID)
	if err != nil {
		ServiceError(w, err)
		return
	}

	SuccessCreated(w, "customer approved", map[string]any{
		"account_id": account.ID,
		"balance":    account.Balance.StringFixed(2),
	})
}

func (h *Handler) rejectCustomer(w http.ResponseWriter, r *http.Request) {
	if _, err := auth.GetCollectorID(r.Context()); err != nil {
		ErrorUnauthorized(w, "Unauthorized")
		return
	}

	customerID := chi.URLParam(r, "customer_id")

	if err := h.customers.Reject(r.Context(), customerID); err != nil {
		ServiceError(w, err)
		return
	}

	Success(w, "customer rejected", nil)
}
