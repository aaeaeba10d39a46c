package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk-sla/internal/domain"
)

// SLATargetRepository reads and seeds the (tier, priority) target table.
type SLATargetRepository interface {
	List(ctx context.Context) ([]domain.SLATarget, error)
	Upsert(ctx context.Context, targets []domain.SLATarget) error
}

// ErrNoPool is returned when the repository was built without a database
// connection.
var ErrNoPool = errors.New("sla targets: no database connection")

type slaTargetRepository struct {
	pool *pgxpool.Pool
}

// NewSLATargetRepository instantiates repository.
func NewSLATargetRepository(pool *pgxpool.Pool) SLATargetRepository {
	return &slaTargetRepository{pool: pool}
}

func (r *slaTargetRepository) List(ctx context.Context) ([]domain.SLATarget, error) {
	const query = `
        SELECT customer_tier, priority, first_response_hours, resolution_hours
        FROM sla_targets ORDER BY customer_tier, priority`
	if r.pool == nil {
		return nil, ErrNoPool
	}
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.SLATarget{}
	for rows.Next() {
		var t domain.SLATarget
		if err := rows.Scan(&t.CustomerTier, &t.Priority, &t.FirstResponseHours, &t.ResolutionHours); err != nil {
			return nil, err
		}
		result = append(result, t)
	}
	return result, rows.Err()
}

// Upsert writes all targets in one transaction.
func (r *slaTargetRepository) Upsert(ctx context.Context, targets []domain.SLATarget) error {
	const query = `
        INSERT INTO sla_targets (customer_tier, priority, first_response_hours, resolution_hours)
        VALUES ($1,$2,$3,$4)
        ON CONFLICT (customer_tier, priority)
        DO UPDATE SET first_response_hours=EXCLUDED.first_response_hours, resolution_hours=EXCLUDED.resolution_hours`
	if r.pool == nil {
		return ErrNoPool
	}
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for _, t := range targets {
		if _, err := tx.Exec(ctx, query, t.CustomerTier, t.Priority, t.FirstResponseHours, t.ResolutionHours); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}
