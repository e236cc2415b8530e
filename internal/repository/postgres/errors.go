package postgres

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"mathblog/internal/domain"
)

const uniqueViolationCode = "23505"

// errNoRowsAffected signals an update that silently matched nothing; callers
// see it as domain.ErrNotFound.
var errNoRowsAffected = domain.ErrNotFound

func joinColumns(cols []string) string {
	return strings.Join(cols, ", ")
}

// mapError converts driver errors to domain sentinels, wrapping the original
// with the given operation name for context.
func mapError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, domain.ErrNotFound)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
		return fmt.Errorf("%s: %w", op, domain.ErrDuplicate)
	}

	return fmt.Errorf("%s: %w", op, err)
}
