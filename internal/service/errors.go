package service

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/spec-kit/helpdesk-sla/internal/sla"
	apperrors "github.com/spec-kit/helpdesk-sla/pkg/util/errorutil"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// mapError translates engine and store errors into API errors. resource
// names the entity for not-found and conflict responses.
func mapError(err error, resource string, details map[string]any) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sla.ErrInvalidArgument):
		return apperrors.NewInvalidArgument(err)
	case errors.Is(err, sla.ErrConfigurationMissing):
		return apperrors.NewConfigurationMissing(err)
	case errors.Is(err, pgx.ErrNoRows):
		return apperrors.NewNotFound(resource, details)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return apperrors.NewConflict(resource+" already exists", map[string]any{"constraint": pgErr.ConstraintName})
		case pgForeignKeyViolation:
			return apperrors.NewValidationError("referenced record does not exist", map[string]any{"constraint": pgErr.ConstraintName})
		}
	}
	return apperrors.MapError(err)
}
