package service

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"collectbook/internal/domain"
	"collectbook/internal/repository"

	"github.com/shopspring/decimal"
)

type AccountStore interface {
	GetByCustomerID(ctx context.Context, customerID string) (*domain.Account, error)
	CommitCollection(ctx context.Context, accountID string, version int64, newBalance decimal.Decimal, status domain.AccountStatus, date string, entry domain.CollectionEntry) error
}

type CustomerStore interface {
	GetByID(ctx context.Context, id string) (*domain.Customer, error)
}

type LoanPlanStore interface {
	GetByName(ctx context.Context, name string) (*domain.LoanPlan, error)
}

type PenaltyStore interface {
	GetDecimal(ctx context.Context, key string) (decimal.Decimal, error)
}

const maxNotesLen = 500

// DateLayout is the natural key for daily collection entries.
const DateLayout = "2006-01-02"

// DeriveStatus maps the submitted amount to a collection status: a positive
// amount means the agent collected, anything else records a missed day.
func DeriveStatus(amount *decimal.Decimal) domain.CollectionStatus {
	if amount != nil && amount.IsPositive() {
		return domain.CollectionPaid
	}
	return domain.CollectionUnpaid
}

type SubmitInput struct {
	CustomerID  string
	CollectorID string
	Amount      *decimal.Decimal // nil or zero records the day as unpaid
	Notes       string
}

type SubmitResult struct {
	Date       string
	Entry      domain.CollectionEntry
	NewBalance decimal.Decimal
	Completed  bool
}

// CollectionService owns the daily-collection ledger transition: it
// validates a submission, prices it against the loan plan or the penalty
// configuration and commits the new balance plus the dated entry in one
// atomic write.
type CollectionService struct {
	accounts  AccountStore
	customers CustomerStore
	plans     LoanPlanStore
	settings  PenaltyStore

	now func() time.Time
}

func NewCollectionService(accounts AccountStore, customers CustomerStore, plans LoanPlanStore, settings PenaltyStore) *CollectionService {
	return &CollectionService{
		accounts:  accounts,
		customers: customers,
		plans:     plans,
		settings:  settings,
		now:       time.Now,
	}
}

func (s *CollectionService) Submit(ctx context.Context, in SubmitInput) (*SubmitResult, error) {
	if err := validateSubmit(in); err != nil {
		return nil, err
	}
	status := DeriveStatus(in.Amount)

	customer, err := s.customers.GetByID(ctx, in.CustomerID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, notFoundErr("customer not found")
	}
	if err != nil {
		return nil, storeErr("failed to load customer", err)
	}

	account, err := s.accounts.GetByCustomerID(ctx, in.CustomerID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, notFoundErr("account not found for this customer")
	}
	if err != nil {
		return nil, storeErr("failed to load account", err)
	}

	if account.Completed() {
		return nil, &Error{Kind: KindAlreadyComplete, Message: "loan is already completed for this customer"}
	}

	// The penalty prices every unpaid transition; a missing configuration
	// means no transition can be priced, so it is fatal even for paid days.
	penalty, err := s.settings.GetDecimal(ctx, repository.PenaltyKey)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, notFoundErr("penalty configuration not found")
	}
	if err != nil {
		return nil, storeErr("failed to load penalty configuration", err)
	}

	var newBalance decimal.Decimal
	completed := false

	if status == domain.CollectionPaid {
		plan, err := s.plans.GetByName(ctx, customer.LoanType)
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFoundErr(fmt.Sprintf("loan plan %q not found", customer.LoanType))
		}
		if err != nil {
			return nil, storeErr("failed to load loan plan", err)
		}

		// No partial payments: the installment must match the plan exactly.
		if !in.Amount.Equal(plan.DailyAmount) {
			return nil, &Error{
				Kind:    KindAmountMismatch,
				Message: fmt.Sprintf("amount must equal the daily installment of %s", plan.DailyAmount.StringFixed(2)),
			}
		}

		newBalance = account.Balance.Sub(*in.Amount)
		if newBalance.IsNegative() {
			return nil, &Error{Kind: KindInsufficientBalance, Message: "payment exceeds the remaining balance"}
		}
		if newBalance.IsZero() {
			completed = true
		}
	} else {
		newBalance = account.Balance.Add(penalty)
	}

	now := s.now()
	date := now.Format(DateLayout)

	entry := domain.CollectionEntry{
		Status:      status,
		Notes:       in.Notes,
		Day:         now.Weekday().String(),
		CollectorID: in.CollectorID,
		RecordedAt:  now,
	}
	if status == domain.CollectionPaid {
		entry.Amount = *in.Amount
	}

	accountStatus := domain.AccountActive
	if completed {
		accountStatus = domain.AccountCompleted
	}

	err = s.accounts.CommitCollection(ctx, account.ID, account.Version, newBalance, accountStatus, date, entry)
	if errors.Is(err, repository.ErrVersionConflict) {
		return nil, &Error{Kind: KindConflict, Message: "account was updated by another submission, please retry"}
	}
	if err != nil {
		return nil, storeErr("failed to commit collection", err)
	}

	return &SubmitResult{
		Date:       date,
		Entry:      entry,
		NewBalance: newBalance,
		Completed:  completed,
	}, nil
}

func validateSubmit(in SubmitInput) error {
	if in.CollectorID == "" {
		return &Error{Kind: KindAuthentication, Message: "collector identity required"}
	}
	if in.CustomerID == "" {
		return validationErr("customer_id", "customer_id is required")
	}
	if in.Amount != nil && in.Amount.IsNegative() {
		return validationErr("amount", "amount must be a positive number")
	}

	if DeriveStatus(in.Amount) == domain.CollectionUnpaid {
		if in.Notes == "" {
			return validationErr("notes", "notes are required when no payment is collected")
		}
		// Characters, not bytes: notes are frequently Sinhala text.
		if utf8.RuneCountInString(in.Notes) > maxNotesLen {
			return validationErr("notes", fmt.Sprintf("notes must be at most %d characters", maxNotesLen))
		}
	}
	return nil
}

// Ledger returns the customer's account for the payment-history view.
func (s *CollectionService) Ledger(ctx context.Context, customerID string) (*domain.Account, error) {
	if customerID == "" {
		return nil, validationErr("customer_id", "customer_id is required")
	}

	account, err := s.accounts.GetByCustomerID(ctx, customerID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, notFoundErr("account not found for this customer")
	}
	if err != nil {
		return nil, storeErr("failed to load account", err)
	}
	return account, nil
}
