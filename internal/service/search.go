package service

import (
	"context"
	"errors"
	"sort"

	"collectbook/internal/domain"
	"collectbook/internal/repository"

	"github.com/shopspring/decimal"
)

type CustomerFinder interface {
	GetByNIC(ctx context.Context, nic string) (*domain.Customer, error)
}

// SearchService backs the payment-history lookups: a single customer by NIC
// with the full dated ledger, and the per-area collection summary.
type SearchService struct {
	customers CustomerFinder
	accounts  AccountLister
	ledger    AccountReader
}

func NewSearchService(customers CustomerFinder, ledger AccountReader, accounts AccountLister) *SearchService {
	return &SearchService{
		customers: customers,
		ledger:    ledger,
		accounts:  accounts,
	}
}

type DatedEntry struct {
	Date  string                 `json:"date"`
	Entry domain.CollectionEntry `json:"entry"`
}

type SearchResult struct {
	Customer    *domain.Customer `json:"customer"`
	Balance     decimal.Decimal  `json:"balance"`
	Completed   bool             `json:"completed"`
	History     []DatedEntry     `json:"history"`
	UnpaidDates []string         `json:"unpaid_dates"`
	TotalPaid   decimal.Decimal  `json:"total_paid"`
	PaidDays    int              `json:"paid_days"`
	UnpaidDays  int              `json:"unpaid_days"`
}

func (s *SearchService) ByNIC(ctx context.Context, nic string) (*SearchResult, error) {
	if nic == "" {
		return nil, validationErr("nic", "nic is required")
	}

	customer, err := s.customers.GetByNIC(ctx, nic)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, notFoundErr("no customer found with this NIC")
	}
	if err != nil {
		return nil, storeErr("failed to load customer", err)
	}

	result := &SearchResult{
		Customer:  customer,
		Balance:   decimal.Zero,
		TotalPaid: decimal.Zero,
	}

	account, err := s.ledger.GetByCustomerID(ctx, customer.ID)
	if errors.Is(err, repository.ErrNotFound) {
		// Registered but not yet approved: no ledger to show.
		return result, nil
	}
	if err != nil {
		return nil, storeErr("failed to load account", err)
	}

	result.Balance = account.Balance
	result.Completed = account.Completed()

	for date, entry := range account.DailyCollections {
		result.History = append(result.History, DatedEntry{Date: date, Entry: entry})
		switch entry.Status {
		case domain.CollectionPaid:
			result.PaidDays++
			result.TotalPaid = result.TotalPaid.Add(entry.Amount)
		case domain.CollectionUnpaid:
			result.UnpaidDays++
			result.UnpaidDates = append(result.UnpaidDates, date)
		}
	}

	// Newest first for the history view.
	sort.Slice(result.History, func(i, j int) bool {
		return result.History[i].Date > result.History[j].Date
	})
	sort.Strings(result.UnpaidDates)

	return result, nil
}

type SummaryLine struct {
	CustomerID   string          `json:"customer_id"`
	CustomerName string          `json:"customer_name"`
	NIC          string          `json:"nic"`
	TotalPaid    decimal.Decimal `json:"total_paid"`
	Balance      decimal.Decimal `json:"balance"`
}

type Summary struct {
	Lines     []SummaryLine   `json:"lines"`
	TotalPaid decimal.Decimal `json:"total_paid"`
}

// AreaSummary totals what each customer has paid so far, the Summary screen
// aggregate.
func (s *SearchService) AreaSummary(ctx context.Context, area string) (*Summary, error) {
	f := repository.AccountsFilter{}
	if area != "" {
		f.Area = &area
	}

	rows, err := s.accounts.ListWithCustomers(ctx, f)
	if err != nil {
		return nil, storeErr("failed to list accounts", err)
	}

	summary := &Summary{TotalPaid: decimal.Zero}
	for _, row := range rows {
		paid := decimal.Zero
		for _, entry := range row.Account.DailyCollections {
			if entry.Status == domain.CollectionPaid {
				paid = paid.Add(entry.Amount)
			}
		}

		summary.Lines = append(summary.Lines, SummaryLine{
			CustomerID:   row.Customer.ID,
			CustomerName: row.Customer.Name,
			NIC:          row.Customer.NIC,
			TotalPaid:    paid,
			Balance:      row.Account.Balance,
		})
		summary.TotalPaid = summary.TotalPaid.Add(paid)
	}

	return summary, nil
}
