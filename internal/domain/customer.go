package domain

import "time"

// CustomerTier drives which SLA targets apply to a customer's tickets.
type CustomerTier string

const (
	CustomerTierStandard   CustomerTier = "standard"
	CustomerTierPremium    CustomerTier = "premium"
	CustomerTierEnterprise CustomerTier = "enterprise"
)

// Valid reports whether t is a known tier.
func (t CustomerTier) Valid() bool {
	switch t {
	case CustomerTierStandard, CustomerTierPremium, CustomerTierEnterprise:
		return true
	}
	return false
}

// Customer is the organization that raises tickets.
type Customer struct {
	ID                int64
	CompanyName       string
	ContactName       string
	Email             string
	Phone             string
	Tier              CustomerTier
	TotalTickets      int
	SatisfactionScore float64
	CreatedAt         time.Time
}
