package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CollectionStatus is the outcome recorded for one calendar day.
type CollectionStatus string

const (
	CollectionPaid   CollectionStatus = "paid"
	CollectionUnpaid CollectionStatus = "unpaid"
)

// AccountStatus tracks the lifecycle of a loan account.
type AccountStatus string

const (
	AccountActive    AccountStatus = "active"
	AccountCompleted AccountStatus = "completed"
)

// CollectionEntry is one day's collection record. Entries are keyed by
// calendar date (YYYY-MM-DD) inside Account.DailyCollections, so a
// resubmission for the same date overwrites rather than appends.
type CollectionEntry struct {
	Amount      decimal.Decimal  `json:"amount"`
	Status      CollectionStatus `json:"status"`
	Notes       string           `json:"notes,omitempty"`
	Day         string           `json:"day"`
	CollectorID string           `json:"collector_id"`
	RecordedAt  time.Time        `json:"recorded_at"`
}

// Account is the per-customer ledger: the running balance plus the map of
// dated collection entries. It is mutated only through the collection
// update procedure.
type Account struct {
	ID               string
	CustomerID       string
	Balance          decimal.Decimal
	Status           AccountStatus
	DailyCollections map[string]CollectionEntry
	Version          int64
	CreatedAt        *time.Time
	UpdatedAt        *time.Time
}

// Completed reports whether the loan has been fully collected.
func (a *Account) Completed() bool {
	return a.Status == AccountCompleted || a.Balance.LessThanOrEqual(decimal.Zero)
}
