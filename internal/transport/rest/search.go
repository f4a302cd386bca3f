package rest

import "net/http"

func (h *Handler) searchByNIC(w http.ResponseWriter, r *http.Request) {
	nic := r.URL.Query().Get("nic")

	result, err := h.search.ByNIC(r.Context(), nic)
	if err != nil {
		ServiceError(w, err)
		return
	}

	Success(w, "", result)
}

func (h *Handler) areaSummary(w http.ResponseWriter, r *http.Request) {
	area := r.URL.Query().Get("area")

	summary, err := h.search.AreaSummary(r.Context(), area)
	if err != nil {
		ServiceError(w, err)
		return
	}

	Success(w, "", summary)
}
