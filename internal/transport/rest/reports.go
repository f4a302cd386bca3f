package rest

import (
	"log"
	"net/http"

	"collectbook/internal/transport/auth"

	"github.com/go-chi/chi/v5"
)

func (h *Handler) startCollectionsReport(w http.ResponseWriter, r *http.Request) {
	req, err := ValidateCollectionsReportRequest(r)
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

	reportID, err := h.reports.StartCollectionsReport(r.Context(), req.Fields, req.ToReportFilter(), collectorID)
	if err != nil {
		log.Printf("[HTTP] startCollectionsReport error: %v", err)
		ErrorInternal(w, "failed to start report")
		return
	}

	SuccessAccepted(w, "report queued", map[string]any{"report_id": reportID})
}

func (h *Handler) listReports(w http.ResponseWriter, r *http.Request) {
	collectorID, err := auth.GetCollectorID(r.Context())
	if err != nil {
		ErrorUnauthorized(w, "Unauthorized")
		return
	}

	reports, err := h.reportList.GetReports(r.Context(), collectorID)
	if err != nil {
		log.Printf("[HTTP] listReports error: %v", err)
		ErrorInternal(w, "failed to get reports")
		return
	}

	Success(w, "", reports)
}

func (h *Handler) getReport(w http.ResponseWriter, r *http.Request) {
	collectorID, err := auth.GetCollectorID(r.Context())
	if err != nil {
		ErrorUnauthorized(w, "Unauthorized")
		return
	}

	reportIDParam := chi.URLParam(r, "report_id")
	if reportIDParam == "" {
		ErrorBadRequest(w, "report_id is required")
		return
	}
	reportID := "reports:" + reportIDParam

	report, err := h.reportList.GetReport(r.Context(), reportID, collectorID)
	if err != nil {
		log.Printf("[HTTP] getReport error: %v", err)
		ErrorNotFound(w, "report not found")
		return
	}

	Success(w, "", report)
}
