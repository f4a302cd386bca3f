package domain

import "github.com/shopspring/decimal"

// LoanPlan maps a loan-type label to its required daily installment and the
// total amount disbursed when a customer is approved.
type LoanPlan struct {
	ID          string
	Name        string
	DailyAmount decimal.Decimal
	TotalAmount decimal.Decimal
}
