package domain

import "time"

// CollectorRole distinguishes field agents from back-office loan officers.
type CollectorRole string

const (
	RoleRider       CollectorRole = "rider"
	RoleLoanOfficer CollectorRole = "loan_officer"
)

type Collector struct {
	ID        string
	FirstName string
	LastName  string
	Role      CollectorRole
	Area      string
}

// CollectorToken is a long-lived API token issued to a collector's device.
// Only the sha256 hex of the token is stored.
type CollectorToken struct {
	ID          int64
	TokenHash   string
	CollectorID string
	ExpiresAt   *time.Time
}
