package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jellydator/ttlcache/v3"

	"github.com/spec-kit/helpdesk-sla/internal/domain"
)

// CustomerRepository persists customers and answers tier lookups.
type CustomerRepository interface {
	Create(ctx context.Context, customer *domain.Customer) error
	GetByID(ctx context.Context, id int64) (*domain.Customer, error)
	CustomerTier(ctx context.Context, id int64) (domain.CustomerTier, bool, error)
}

type customerRepository struct {
	pool *pgxpool.Pool
}

// NewCustomerRepository instantiates repository.
func NewCustomerRepository(pool *pgxpool.Pool) CustomerRepository {
	return &customerRepository{pool: pool}
}

func (r *customerRepository) Create(ctx context.Context, customer *domain.Customer) error {
	const query = `
        INSERT INTO customers (company_name, contact_name, email, phone, tier)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, total_tickets, satisfaction_score, created_at`
	return r.pool.QueryRow(ctx, query,
		customer.CompanyName,
		customer.ContactName,
		customer.Email,
		customer.Phone,
		customer.Tier,
	).Scan(&customer.ID, &customer.TotalTickets, &customer.SatisfactionScore, &customer.CreatedAt)
}

func (r *customerRepository) GetByID(ctx context.Context, id int64) (*domain.Customer, error) {
	const query = `
        SELECT id, company_name, contact_name, email, phone, tier, total_tickets, satisfaction_score, created_at
        FROM customers WHERE id=$1`
	var c domain.Customer
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&c.ID,
		&c.CompanyName,
		&c.ContactName,
		&c.Email,
		&c.Phone,
		&c.Tier,
		&c.TotalTickets,
		&c.SatisfactionScore,
		&c.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *customerRepository) CustomerTier(ctx context.Context, id int64) (domain.CustomerTier, bool, error) {
	var tier domain.CustomerTier
	err := r.pool.QueryRow(ctx, `SELECT tier FROM customers WHERE id=$1`, id).Scan(&tier)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return tier, true, nil
}

type tierEntry struct {
	tier  domain.CustomerTier
	found bool
}

// CachedCustomerRepository memoizes tier lookups for ttl. Misses are cached
// too; Create and GetByID pass through and refresh the entry.
type CachedCustomerRepository struct {
	next  CustomerRepository
	cache *ttlcache.Cache[int64, tierEntry]
}

// NewCachedCustomerRepository wraps next. Call Stop to release the cleaner.
func NewCachedCustomerRepository(next CustomerRepository, ttl time.Duration) *CachedCustomerRepository {
	cache := ttlcache.New(ttlcache.WithTTL[int64, tierEntry](ttl))
	go cache.Start()
	return &CachedCustomerRepository{next: next, cache: cache}
}

func (c *CachedCustomerRepository) Create(ctx context.Context, customer *domain.Customer) error {
	if err := c.next.Create(ctx, customer); err != nil {
		return err
	}
	c.cache.Set(customer.ID, tierEntry{tier: customer.Tier, found: true}, ttlcache.DefaultTTL)
	return nil
}

func (c *CachedCustomerRepository) GetByID(ctx context.Context, id int64) (*domain.Customer, error) {
	customer, err := c.next.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	c.cache.Set(id, tierEntry{tier: customer.Tier, found: true}, ttlcache.DefaultTTL)
	return customer, nil
}

func (c *CachedCustomerRepository) CustomerTier(ctx context.Context, id int64) (domain.CustomerTier, bool, error) {
	if item := c.cache.Get(id); item != nil {
		entry := item.Value()
		return entry.tier, entry.found, nil
	}
	tier, found, err := c.next.CustomerTier(ctx, id)
	if err != nil {
		return "", false, err
	}
	c.cache.Set(id, tierEntry{tier: tier, found: found}, ttlcache.DefaultTTL)
	return tier, found, nil
}

// Stop halts the expiry goroutine.
func (c *CachedCustomerRepository) Stop() {
	c.cache.Stop()
}
