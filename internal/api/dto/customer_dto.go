package dto

import (
	"time"

	"github.com/spec-kit/helpdesk-sla/internal/domain"
)

// CreateCustomerRequest payload.
type CreateCustomerRequest struct {
	CompanyName string              `json:"company_name" validate:"required,max=200"`
	ContactName string              `json:"contact_name" validate:"required,max=100"`
	Email       string              `json:"email" validate:"required,email,max=100"`
	Phone       string              `json:"phone" validate:"omitempty,max=20"`
	Tier        domain.CustomerTier `json:"tier" validate:"omitempty,oneof=standard premium enterprise"`
}

// CustomerResponse mirrors a stored customer.
type CustomerResponse struct {
	ID                int64               `json:"id"`
	CompanyName       string              `json:"company_name"`
	ContactName       string              `json:"contact_name"`
	Email             string              `json:"email"`
	Phone             string              `json:"phone"`
	Tier              domain.CustomerTier `json:"tier"`
	TotalTickets      int                 `json:"total_tickets"`
	SatisfactionScore float64             `json:"satisfaction_score"`
	CreatedAt         time.Time           `json:"created_at"`
}

// NewCustomerResponse maps the domain customer.
func NewCustomerResponse(c *domain.Customer) CustomerResponse {
	return CustomerResponse{
		ID:                c.ID,
		CompanyName:       c.CompanyName,
		ContactName:       c.ContactName,
		Email:             c.Email,
		Phone:             c.Phone,
		Tier:              c.Tier,
		TotalTickets:      c.TotalTickets,
		SatisfactionScore: c.SatisfactionScore,
		CreatedAt:         c.CreatedAt,
	}
}
