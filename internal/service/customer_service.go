package service

import (
	"context"
	"strings"

	"github.com/spec-kit/helpdesk-sla/internal/domain"
	"github.com/spec-kit/helpdesk-sla/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-sla/pkg/util/errorutil"
)

// CustomerService manages customers.
type CustomerService struct {
	customers repository.CustomerRepository
}

// CustomerCreateInput describes a new customer.
type CustomerCreateInput struct {
	CompanyName string
	ContactName string
	Email       string
	Phone       string
	Tier        domain.CustomerTier
}

// NewCustomerService constructs the service.
func NewCustomerService(customers repository.CustomerRepository) *CustomerService {
	return &CustomerService{customers: customers}
}

// CreateCustomer registers a customer; an empty tier means standard.
func (s *CustomerService) CreateCustomer(ctx context.Context, input CustomerCreateInput) (*domain.Customer, error) {
	customer := &domain.Customer{
		CompanyName: strings.TrimSpace(input.CompanyName),
		ContactName: strings.TrimSpace(input.ContactName),
		Email:       strings.ToLower(strings.TrimSpace(input.Email)),
		Phone:       strings.TrimSpace(input.Phone),
		Tier:        input.Tier,
	}
	if customer.Tier == "" {
		customer.Tier = domain.CustomerTierStandard
	}
	if !customer.Tier.Valid() {
		return nil, apperrors.NewValidationError("invalid customer tier", map[string]any{"tier": customer.Tier})
	}
	if err := s.customers.Create(ctx, customer); err != nil {
		return nil, mapError(err, "customer", nil)
	}
	return customer, nil
}

// GetCustomer fetches one customer.
func (s *CustomerService) GetCustomer(ctx context.Context, id int64) (*domain.Customer, error) {
	customer, err := s.customers.GetByID(ctx, id)
	if err != nil {
		return nil, mapError(err, "customer", map[string]any{"customer_id": id})
	}
	return customer, nil
}
