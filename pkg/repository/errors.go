package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const pgDuplicateKeyCode = "23505"

// MapError translates database errors to domain errors. No-row results from
// either database/sql or native pgx become notFoundErr, and unique violations
// become duplicateErr wrapping the violated constraint. Other errors are
// returned unchanged.
func MapError(err error, notFoundErr, duplicateErr error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) || errors.Is(err, pgx.ErrNoRows) {
		return notFoundErr
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgDuplicateKeyCode {
		if pgErr.ConstraintName == "" {
			return duplicateErr
		}
		return fmt.Errorf("%w: %s", duplicateErr, pgErr.ConstraintName)
	}

	return err
}
