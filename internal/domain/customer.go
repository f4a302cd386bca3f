package domain

import "time"

// CustomerStatus follows the onboarding flow: customers are registered as
// pending and become approved (with a ledger account) or rejected by a
// loan officer.
type CustomerStatus string

const (
	CustomerPending  CustomerStatus = "pending"
	CustomerApproved CustomerStatus = "approved"
	CustomerRejected CustomerStatus = "rejected"
)

type Customer struct {
	ID              string
	Name            string
	NIC             string
	Contact         string
	Address         string
	Area            string
	LoanType        string
	Status          CustomerStatus
	CustomerPicture *string
	CreatedAt       *time.Time
}
