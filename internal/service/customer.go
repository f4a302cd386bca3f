package service

import (
	"context"
	"errors"
	"fmt"

	"collectbook/internal/domain"
	"collectbook/internal/repository"
)

type CustomerDirectory interface {
	Create(ctx context.Context, c *domain.Customer) error
	GetByID(ctx context.Context, id string) (*domain.Customer, error)
	List(ctx context.Context, f repository.CustomersFilter) ([]domain.Customer, error)
	UpdateStatus(ctx context.Context, id string, status domain.CustomerStatus) error
}

type AccountCreator interface {
	Create(ctx context.Context, a *domain.Account) error
}

// LoanPlanCatalog is the full plan store: lookup for pricing plus the
// listing shown on the registration screen.
type LoanPlanCatalog interface {
	LoanPlanStore
	List(ctx context.Context) ([]domain.LoanPlan, error)
}

// CustomerService covers onboarding: registration (pending), loan-officer
// approval (which opens the ledger account at the plan's total amount) and
// the area-scoped listings the riders work from.
type CustomerService struct {
	customers CustomerDirectory
	accounts  AccountCreator
	plans     LoanPlanCatalog
}

func NewCustomerService(customers CustomerDirectory, accounts AccountCreator, plans LoanPlanCatalog) *CustomerService {
	return &CustomerService{
		customers: customers,
		accounts:  accounts,
		plans:     plans,
	}
}

type RegisterInput struct {
	Name     string
	NIC      string
	Contact  string
	Address  string
	Area     string
	LoanType string
	Picture  *string
}

func (s *CustomerService) Register(ctx context.Context, in RegisterInput) (*domain.Customer, error) {
	switch {
	case in.Name == "":
		return nil, validationErr("name", "name is required")
	case in.NIC == "":
		return nil, validationErr("nic", "nic is required")
	case in.Contact == "":
		return nil, validationErr("contact", "contact is required")
	case in.Address == "":
		return nil, validationErr("address", "address is required")
	case in.Area == "":
		return nil, validationErr("area", "area is required")
	case in.LoanType == "":
		return nil, validationErr("loan_type", "loan_type is required")
	}

	if _, err := s.plans.GetByName(ctx, in.LoanType); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, validationErr("loan_type", fmt.Sprintf("unknown loan plan %q", in.LoanType))
		}
		return nil, storeErr("failed to load loan plan", err)
	}

	customer := &domain.Customer{
		Name:            in.Name,
		NIC:             in.NIC,
		Contact:         in.Contact,
		Address:         in.Address,
		Area:            in.Area,
		LoanType:        in.LoanType,
		Status:          domain.CustomerPending,
		CustomerPicture: in.Picture,
	}
	if err := s.customers.Create(ctx, customer); err != nil {
		return nil, storeErr("failed to create customer", err)
	}
	return customer, nil
}

// Approve flips a pending customer to approved and opens the ledger account
// with the plan's total amount as the opening balance.
func (s *CustomerService) Approve(ctx context.Context, customerID string) (*domain.Account, error) {
	customer, err := s.customers.GetByID(ctx, customerID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, notFoundErr("customer not found")
	}
	if err != nil {
		return nil, storeErr("failed to load customer", err)
	}

	if customer.Status != domain.CustomerPending {
		return nil, validationErr("status", fmt.Sprintf("customer is already %s", customer.Status))
	}

	plan, err := s.plans.GetByName(ctx, customer.LoanType)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, notFoundErr(fmt.Sprintf("loan plan %q not found", customer.LoanType))
	}
	if err != nil {
		return nil, storeErr("failed to load loan plan", err)
	}

	account := &domain.Account{
		CustomerID:       customer.ID,
		Balance:          plan.TotalAmount,
		Status:           domain.AccountActive,
		DailyCollections: map[string]domain.CollectionEntry{},
	}
	if err := s.accounts.Create(ctx, account); err != nil {
		return nil, storeErr("failed to create account", err)
	}

	if err := s.customers.UpdateStatus(ctx, customer.ID, domain.CustomerApproved); err != nil {
		return nil, storeErr("failed to update customer status", err)
	}

	return account, nil
}

func (s *CustomerService) Reject(ctx context.Context, customerID string) error {
	err := s.customers.UpdateStatus(ctx, customerID, domain.CustomerRejected)
	if errors.Is(err, repository.ErrNotFound) {
		return notFoundErr("customer not found")
	}
	if err != nil {
		return storeErr("failed to update customer status", err)
	}
	return nil
}

// Plans returns the loan plans on offer, shown when registering a customer.
func (s *CustomerService) Plans(ctx context.Context) ([]domain.LoanPlan, error) {
	plans, err := s.plans.List(ctx)
	if err != nil {
		return nil, storeErr("failed to list loan plans", err)
	}
	return plans, nil
}

// List returns approved customers for the rider's home screen, optionally
// narrowed to an area and a name/NIC search string.
func (s *CustomerService) List(ctx context.Context, area, query string) ([]domain.Customer, error) {
	approved := string(domain.CustomerApproved)
	f := repository.CustomersFilter{Status: &approved}
	if area != "" {
		f.Area = &area
	}
	if query != "" {
		f.Query = &query
	}

	customers, err := s.customers.List(ctx, f)
	if err != nil {
		return nil, storeErr("failed to list customers", err)
	}
	return customers, nil
}
