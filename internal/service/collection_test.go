package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"collectbook/internal/domain"
	"collectbook/internal/repository"

	"github.com/shopspring/decimal"
)

type fakeAccounts struct {
	account *domain.Account
	getErr  error

	commitErr error
	committed bool

	gotBalance decimal.Decimal
	gotStatus  domain.AccountStatus
	gotDate    string
	gotEntry   domain.CollectionEntry
	gotVersion int64
}

func (f *fakeAccounts) GetByCustomerID(ctx context.Context, customerID string) (*domain.Account, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.account, nil
}

func (f *fakeAccounts) CommitCollection(ctx context.Context, accountID string, version int64, newBalance decimal.Decimal, status domain.AccountStatus, date string, entry domain.CollectionEntry) error {
	if f.commitErr != nil {
		return f.commitErr
	}
	f.committed = true
	f.gotVersion = version
	f.gotBalance = newBalance
	f.gotStatus = status
	f.gotDate = date
	f.gotEntry = entry

	// Mirror the single-UPDATE semantics: the dated key is set (last write
	// wins), the balance and status replaced, the version bumped.
	if f.account != nil {
		f.account.Balance = newBalance
		f.account.Status = status
		f.account.DailyCollections[date] = entry
		f.account.Version++
	}
	return nil
}

type fakeCustomers struct {
	customer *domain.Customer
	err      error
}

func (f *fakeCustomers) GetByID(ctx context.Context, id string) (*domain.Customer, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.customer, nil
}

type fakePlans struct {
	plan *domain.LoanPlan
	err  error
}

func (f *fakePlans) GetByName(ctx context.Context, name string) (*domain.LoanPlan, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.plan, nil
}

func (f *fakePlans) List(ctx context.Context) ([]domain.LoanPlan, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.plan == nil {
		return nil, nil
	}
	return []domain.LoanPlan{*f.plan}, nil
}

type fakeSettings struct {
	penalty decimal.Decimal
	err     error
}

func (f *fakeSettings) GetDecimal(ctx context.Context, key string) (decimal.Decimal, error) {
	if f.err != nil {
		return decimal.Zero, f.err
	}
	return f.penalty, nil
}

var testNow = time.Date(2026, 1, 5, 10, 30, 0, 0, time.UTC) // a Monday

func newTestService(accounts *fakeAccounts, customers *fakeCustomers, plans *fakePlans, settings *fakeSettings) *CollectionService {
	s := NewCollectionService(accounts, customers, plans, settings)
	s.now = func() time.Time { return testNow }
	return s
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func activeAccount(balance string) *domain.Account {
	return &domain.Account{
		ID:               "acc-1",
		CustomerID:       "cust-1",
		Balance:          dec(balance),
		Status:           domain.AccountActive,
		DailyCollections: map[string]domain.CollectionEntry{},
		Version:          3,
	}
}

func approvedCustomer() *domain.Customer {
	return &domain.Customer{
		ID:       "cust-1",
		Name:     "Nimal Perera",
		NIC:      "990123456V",
		Area:     "Galle",
		LoanType: "standard",
		Status:   domain.CustomerApproved,
	}
}

func standardPlan() *domain.LoanPlan {
	return &domain.LoanPlan{
		ID:          "plan-1",
		Name:        "standard",
		DailyAmount: dec("500"),
		TotalAmount: dec("15000"),
	}
}

func TestSubmit_PaidDeductsInstallment(t *testing.T) {
	accounts := &fakeAccounts{account: activeAccount("5000")}
	svc := newTestService(accounts, &fakeCustomers{customer: approvedCustomer()}, &fakePlans{plan: standardPlan()}, &fakeSettings{penalty: dec("100")})

	result, err := svc.Submit(context.Background(), SubmitInput{
		CustomerID:  "cust-1",
		CollectorID: "rider-1",
		Amount:      decPtr("500"),
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	if !result.NewBalance.Equal(dec("4500")) {
		t.Errorf("expected balance 4500, got %s", result.NewBalance)
	}
	if result.Completed {
		t.Error("loan should not be completed")
	}
	if result.Date != "2026-01-05" {
		t.Errorf("expected date 2026-01-05, got %s", result.Date)
	}
	if result.Entry.Status != domain.CollectionPaid {
		t.Errorf("expected paid entry, got %s", result.Entry.Status)
	}
	if !result.Entry.Amount.Equal(dec("500")) {
		t.Errorf("expected entry amount 500, got %s", result.Entry.Amount)
	}
	if result.Entry.Day != "Monday" {
		t.Errorf("expected day Monday, got %s", result.Entry.Day)
	}
	if result.Entry.CollectorID != "rider-1" {
		t.Errorf("expected collector rider-1, got %s", result.Entry.CollectorID)
	}

	if !accounts.committed {
		t.Fatal("commit should have happened")
	}
	if accounts.gotStatus != domain.AccountActive {
		t.Errorf("account should stay active, got %s", accounts.gotStatus)
	}
	if accounts.gotVersion != 3 {
		t.Errorf("commit should carry the loaded version, got %d", accounts.gotVersion)
	}
	if accounts.gotDate != "2026-01-05" {
		t.Errorf("commit date mismatch: %s", accounts.gotDate)
	}
}

func TestSubmit_UnpaidAddsPenalty(t *testing.T) {
	accounts := &fakeAccounts{account: activeAccount("5000")}
	svc := newTestService(accounts, &fakeCustomers{customer: approvedCustomer()}, &fakePlans{plan: standardPlan()}, &fakeSettings{penalty: dec("100")})

	result, err := svc.Submit(context.Background(), SubmitInput{
		CustomerID:  "cust-1",
		CollectorID: "rider-1",
		Notes:       "customer away at the market",
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	if !result.NewBalance.Equal(dec("5100")) {
		t.Errorf("expected balance 5100, got %s", result.NewBalance)
	}
	if result.Entry.Status != domain.CollectionUnpaid {
		t.Errorf("expected unpaid entry, got %s", result.Entry.Status)
	}
	if !result.Entry.Amount.IsZero() {
		t.Errorf("unpaid entry should carry zero amount, got %s", result.Entry.Amount)
	}
	if result.Entry.Notes != "customer away at the market" {
		t.Errorf("notes not carried: %q", result.Entry.Notes)
	}
	if result.Completed {
		t.Error("unpaid day can never complete the loan")
	}
}

func TestSubmit_ZeroAmountIsUnpaid(t *testing.T) {
	accounts := &fakeAccounts{account: activeAccount("5000")}
	svc := newTestService(accounts, &fakeCustomers{customer: approvedCustomer()}, &fakePlans{plan: standardPlan()}, &fakeSettings{penalty: dec("100")})

	result, err := svc.Submit(context.Background(), SubmitInput{
		CustomerID:  "cust-1",
		CollectorID: "rider-1",
		Amount:      decPtr("0"),
		Notes:       "no cash today",
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if result.Entry.Status != domain.CollectionUnpaid {
		t.Errorf("zero amount should derive unpaid, got %s", result.Entry.Status)
	}
	if !result.NewBalance.Equal(dec("5100")) {
		t.Errorf("expected balance 5100, got %s", result.NewBalance)
	}
}

func TestSubmit_AmountMismatchRejected(t *testing.T) {
	accounts := &fakeAccounts{account: activeAccount("5000")}
	svc := newTestService(accounts, &fakeCustomers{customer: approvedCustomer()}, &fakePlans{plan: standardPlan()}, &fakeSettings{penalty: dec("100")})

	_, err := svc.Submit(context.Background(), SubmitInput{
		CustomerID:  "cust-1",
		CollectorID: "rider-1",
		Amount:      decPtr("300"),
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if KindOf(err) != KindAmountMismatch {
		t.Fatalf("expected amount_mismatch, got %s", KindOf(err))
	}
	if accounts.committed {
		t.Error("mismatched amount must not touch the ledger")
	}
}

func TestSubmit_InsufficientBalanceRejected(t *testing.T) {
	accounts := &fakeAccounts{account: activeAccount("300")}
	svc := newTestService(accounts, &fakeCustomers{customer: approvedCustomer()}, &fakePlans{plan: standardPlan()}, &fakeSettings{penalty: dec("100")})

	_, err := svc.Submit(context.Background(), SubmitInput{
		CustomerID:  "cust-1",
		CollectorID: "rider-1",
		Amount:      decPtr("500"),
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if KindOf(err) != KindInsufficientBalance {
		t.Fatalf("expected insufficient_balance, got %s", KindOf(err))
	}
	if accounts.committed {
		t.Error("overpayment must not touch the ledger")
	}
}

func TestSubmit_FinalPaymentCompletesLoan(t *testing.T) {
	accounts := &fakeAccounts{account: activeAccount("500")}
	svc := newTestService(accounts, &fakeCustomers{customer: approvedCustomer()}, &fakePlans{plan: standardPlan()}, &fakeSettings{penalty: dec("100")})

	result, err := svc.Submit(context.Background(), SubmitInput{
		CustomerID:  "cust-1",
		CollectorID: "rider-1",
		Amount:      decPtr("500"),
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	if !result.Completed {
		t.Error("expected loan completion")
	}
	if !result.NewBalance.IsZero() {
		t.Errorf("expected zero balance, got %s", result.NewBalance)
	}
	if accounts.gotStatus != domain.AccountCompleted {
		t.Errorf("account should be committed as completed, got %s", accounts.gotStatus)
	}
}

func TestSubmit_CompletedAccountRejected(t *testing.T) {
	account := activeAccount("0")
	account.Status = domain.AccountCompleted
	accounts := &fakeAccounts{account: account}
	svc := newTestService(accounts, &fakeCustomers{customer: approvedCustomer()}, &fakePlans{plan: standardPlan()}, &fakeSettings{penalty: dec("100")})

	_, err := svc.Submit(context.Background(), SubmitInput{
		CustomerID:  "cust-1",
		CollectorID: "rider-1",
		Amount:      decPtr("500"),
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if KindOf(err) != KindAlreadyComplete {
		t.Fatalf("expected already_complete, got %s", KindOf(err))
	}
	if accounts.committed {
		t.Error("completed account must not be mutated")
	}
}

func TestSubmit_ValidationFailures(t *testing.T) {
	accounts := &fakeAccounts{account: activeAccount("5000")}
	svc := newTestService(accounts, &fakeCustomers{customer: approvedCustomer()}, &fakePlans{plan: standardPlan()}, &fakeSettings{penalty: dec("100")})

	longNotes := make([]byte, maxNotesLen+1)
	for i := range longNotes {
		longNotes[i] = 'x'
	}

	cases := []struct {
		name string
		in   SubmitInput
		kind ErrorKind
	}{
		{
			name: "missing collector",
			in:   SubmitInput{CustomerID: "cust-1", Amount: decPtr("500")},
			kind: KindAuthentication,
		},
		{
			name: "missing customer id",
			in:   SubmitInput{CollectorID: "rider-1", Amount: decPtr("500")},
			kind: KindValidation,
		},
		{
			name: "negative amount",
			in:   SubmitInput{CustomerID: "cust-1", CollectorID: "rider-1", Amount: decPtr("-10")},
			kind: KindValidation,
		},
		{
			name: "unpaid without notes",
			in:   SubmitInput{CustomerID: "cust-1", CollectorID: "rider-1"},
			kind: KindValidation,
		},
		{
			name: "unpaid notes too long",
			in:   SubmitInput{CustomerID: "cust-1", CollectorID: "rider-1", Notes: string(longNotes)},
			kind: KindValidation,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Submit(context.Background(), tc.in)
			if err == nil {
				t.Fatal("expected error")
			}
			if KindOf(err) != tc.kind {
				t.Fatalf("expected %s, got %s", tc.kind, KindOf(err))
			}
			if accounts.committed {
				t.Fatal("validation failure must not touch the ledger")
			}
		})
	}
}

func TestSubmit_CustomerNotFound(t *testing.T) {
	accounts := &fakeAccounts{account: activeAccount("5000")}
	svc := newTestService(accounts, &fakeCustomers{err: repository.ErrNotFound}, &fakePlans{plan: standardPlan()}, &fakeSettings{penalty: dec("100")})

	_, err := svc.Submit(context.Background(), SubmitInput{
		CustomerID:  "missing",
		CollectorID: "rider-1",
		Amount:      decPtr("500"),
	})
	if KindOf(err) != KindNotFound {
		t.Fatalf("expected not_found, got %v", err)
	}
}

func TestSubmit_MissingPenaltyIsFatalEvenWhenPaid(t *testing.T) {
	accounts := &fakeAccounts{account: activeAccount("5000")}
	svc := newTestService(accounts, &fakeCustomers{customer: approvedCustomer()}, &fakePlans{plan: standardPlan()}, &fakeSettings{err: repository.ErrNotFound})

	_, err := svc.Submit(context.Background(), SubmitInput{
		CustomerID:  "cust-1",
		CollectorID: "rider-1",
		Amount:      decPtr("500"),
	})
	if KindOf(err) != KindNotFound {
		t.Fatalf("expected not_found, got %v", err)
	}
	if accounts.committed {
		t.Error("missing penalty config must abort before the commit")
	}
}

func TestSubmit_VersionConflictSurfacesAsConflict(t *testing.T) {
	accounts := &fakeAccounts{account: activeAccount("5000"), commitErr: repository.ErrVersionConflict}
	svc := newTestService(accounts, &fakeCustomers{customer: approvedCustomer()}, &fakePlans{plan: standardPlan()}, &fakeSettings{penalty: dec("100")})

	_, err := svc.Submit(context.Background(), SubmitInput{
		CustomerID:  "cust-1",
		CollectorID: "rider-1",
		Amount:      decPtr("500"),
	})
	if KindOf(err) != KindConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestSubmit_SameDateResubmissionOverwrites(t *testing.T) {
	accounts := &fakeAccounts{account: activeAccount("5000")}
	svc := newTestService(accounts, &fakeCustomers{customer: approvedCustomer()}, &fakePlans{plan: standardPlan()}, &fakeSettings{penalty: dec("100")})

	// First pass: the rider records the day as unpaid.
	first, err := svc.Submit(context.Background(), SubmitInput{
		CustomerID:  "cust-1",
		CollectorID: "rider-1",
		Notes:       "customer not home",
	})
	if err != nil {
		t.Fatalf("first submit: %v", err)
	}
	if !first.NewBalance.Equal(dec("5100")) {
		t.Fatalf("expected balance 5100 after unpaid, got %s", first.NewBalance)
	}

	// Second pass, same day: the customer calls back and pays. The dated
	// entry must be replaced, not appended.
	second, err := svc.Submit(context.Background(), SubmitInput{
		CustomerID:  "cust-1",
		CollectorID: "rider-1",
		Amount:      decPtr("500"),
	})
	if err != nil {
		t.Fatalf("second submit: %v", err)
	}

	if len(accounts.account.DailyCollections) != 1 {
		t.Fatalf("expected exactly 1 entry for the date, got %d", len(accounts.account.DailyCollections))
	}

	entry, ok := accounts.account.DailyCollections[second.Date]
	if !ok {
		t.Fatalf("no entry stored under %s", second.Date)
	}
	if entry.Status != domain.CollectionPaid {
		t.Errorf("second submission should win, got %s", entry.Status)
	}
	if !entry.Amount.Equal(dec("500")) {
		t.Errorf("expected stored amount 500, got %s", entry.Amount)
	}
	if entry.Notes != "" {
		t.Errorf("notes from the overwritten entry should be gone, got %q", entry.Notes)
	}

	// Balance math stacks on the current balance: 5000 + 100 − 500.
	if !second.NewBalance.Equal(dec("4600")) {
		t.Errorf("expected balance 4600, got %s", second.NewBalance)
	}
	if accounts.account.Version != 5 {
		t.Errorf("expected two version bumps from 3, got %d", accounts.account.Version)
	}
}

func TestSubmit_NotesLimitCountsCharacters(t *testing.T) {
	accounts := &fakeAccounts{account: activeAccount("5000")}
	svc := newTestService(accounts, &fakeCustomers{customer: approvedCustomer()}, &fakePlans{plan: standardPlan()}, &fakeSettings{penalty: dec("100")})

	// 500 Sinhala characters: well over 500 bytes, still within the limit.
	sinhalaNotes := strings.Repeat("ණය", 250)
	if _, err := svc.Submit(context.Background(), SubmitInput{
		CustomerID:  "cust-1",
		CollectorID: "rider-1",
		Notes:       sinhalaNotes,
	}); err != nil {
		t.Fatalf("500-character notes should pass: %v", err)
	}

	// One character over.
	_, err := svc.Submit(context.Background(), SubmitInput{
		CustomerID:  "cust-1",
		CollectorID: "rider-1",
		Notes:       sinhalaNotes + "ද",
	})
	if KindOf(err) != KindValidation {
		t.Fatalf("501-character notes should be rejected, got %v", err)
	}
}

func TestDeriveStatus(t *testing.T) {
	if DeriveStatus(decPtr("500")) != domain.CollectionPaid {
		t.Error("positive amount should derive paid")
	}
	if DeriveStatus(decPtr("0")) != domain.CollectionUnpaid {
		t.Error("zero amount should derive unpaid")
	}
	if DeriveStatus(nil) != domain.CollectionUnpaid {
		t.Error("nil amount should derive unpaid")
	}
}

func TestLedger(t *testing.T) {
	account := activeAccount("4500")
	account.DailyCollections["2026-01-04"] = domain.CollectionEntry{
		Amount: dec("500"),
		Status: domain.CollectionPaid,
	}
	accounts := &fakeAccounts{account: account}
	svc := newTestService(accounts, &fakeCustomers{customer: approvedCustomer()}, &fakePlans{plan: standardPlan()}, &fakeSettings{penalty: dec("100")})

	got, err := svc.Ledger(context.Background(), "cust-1")
	if err != nil {
		t.Fatalf("ledger: %v", err)
	}
	if len(got.DailyCollections) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(got.DailyCollections))
	}

	if _, err := svc.Ledger(context.Background(), ""); KindOf(err) != KindValidation {
		t.Fatalf("expected validation error for empty customer id, got %v", err)
	}

	accounts.getErr = repository.ErrNotFound
	if _, err := svc.Ledger(context.Background(), "cust-1"); KindOf(err) != KindNotFound {
		t.Fatalf("expected not_found, got %v", err)
	}
}
