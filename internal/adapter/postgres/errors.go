package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/heartmarshall/quotediary-backend/internal/domain"
)

// constraintErrors maps integrity-violation SQLSTATE codes to domain
// sentinels. A foreign key violation means the referenced row is gone.
var constraintErrors = map[string]error{
	"23505": domain.ErrAlreadyExists, // unique_violation
	"23503": domain.ErrNotFound,      // foreign_key_violation
	"23514": domain.ErrValidation,    // check_violation
	"23502": domain.ErrValidation,    // not_null_violation
}

// MapError translates a pgx error for entity/id into the domain vocabulary.
// Missing rows and constraint violations become domain sentinels, context
// errors keep their identity, and anything else is a storage failure that
// still wraps the original cause.
func MapError(err error, entity string, id any) error {
	if err == nil {
		return nil
	}
	subject := fmt.Sprintf("%s %v", entity, id)

	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%s: %w", subject, err)
	case errors.Is(err, pgx.ErrNoRows):
		return fmt.Errorf("%s: %w", subject, domain.ErrNotFound)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if sentinel, ok := constraintErrors[pgErr.Code]; ok {
			return fmt.Errorf("%s: %w", subject, sentinel)
		}
	}

	return domain.StorageError(subject, err)
}
