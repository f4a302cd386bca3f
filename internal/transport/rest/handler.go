package rest

import (
	"context"
	"net/http"
	"time"

	"collectbook/internal/domain"
	"collectbook/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type CollectionSubmitter interface {
	Submit(ctx context.Context, in service.SubmitInput) (*service.SubmitResult, error)
	Ledger(ctx context.Context, customerID string) (*domain.Account, error)
}

type CustomerOnboarder interface {
	Register(ctx context.Context, in service.RegisterInput) (*domain.Customer, error)
	Approve(ctx context.Context, customerID string) (*domain.Account, error)
	Reject(ctx context.Context, customerID string) error
	List(ctx context.Context, area, query string) ([]domain.Customer, error)
	Plans(ctx context.Context) ([]domain.LoanPlan, error)
}

type ReceiptGenerator interface {
	Generate(ctx context.Context, customerID, date string) (*service.Receipt, error)
}

type ReportStarter interface {
	StartCollectionsReport(ctx context.Context, selected []string, filter service.ReportFilter, collectorID string) (string, error)
}

type ReportLister interface {
	GetReports(ctx context.Context, collectorID string) ([]any, error)
	GetReport(ctx context.Context, reportID, collectorID string) (any, error)
}

type Searcher interface {
	ByNIC(ctx context.Context, nic string) (*service.SearchResult, error)
	AreaSummary(ctx context.Context, area string) (*service.Summary, error)
}

type Handler struct {
	collections CollectionSubmitter
	customers   CustomerOnboarder
	receipts    ReceiptGenerator
	reports     ReportStarter
	reportList  ReportLister
	search      Searcher
}

func NewHandler(
	collections CollectionSubmitter,
	customers CustomerOnboarder,
	receipts ReceiptGenerator,
	reports ReportStarter,
	reportList ReportLister,
	search Searcher,
) *Handler {
	return &Handler{
		collections: collections,
		customers:   customers,
		receipts:    receipts,
		reports:     reports,
		reportList:  reportList,
		search:      search,
	}
}

func (h *Handler) InitRouter() *chi.Mux {
	return h.InitRouterWithAuth(nil)
}

func (h *Handler) InitRouterWithAuth(authMiddleware func(http.Handler) http.Handler) *chi.Mux {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Logger,
		middleware.Recoverer,
		middleware.Timeout(60*time.Second),
	)

	if authMiddleware != nil {
		r.Use(authMiddleware)
	}

	r.Route("/customers", func(r chi.Router) {
		r.Post("/", h.registerCustomer)
		r.Get("/", h.listCustomers)
		r.Post("/{customer_id}/approve", h.approveCustomer)
		r.Post("/{customer_id}/reject", h.rejectCustomer)
	})

	r.Route("/collections", func(r chi.Router) {
		r.Post("/{customer_id}", h.submitCollection)
		r.Post("/{customer_id}/receipt", h.generateReceipt)
	})

	r.Get("/plans", h.listPlans)

	r.Get("/accounts/{customer_id}", h.getLedger)

	r.Get("/search", h.searchByNIC)
	r.Get("/summary", h.areaSummary)

	r.Route("/reports", func(r chi.Router) {
		r.Get("/", h.listReports)
		r.Get("/{report_id}", h.getReport)
		r.Post("/collections", h.startCollectionsReport)
	})

	return r
}
