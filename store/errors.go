// server/store/errors.go
package store

import (
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
	"github.com/vinizap/notas/server/domain"
)

func storageFailure(op string, err error) error {
	return &domain.StorageError{Op: op, Err: err}
}

// classifyPostgres sorts a pgx error into the domain taxonomy. Rejected
// values are the client's fault, everything else is a storage failure.
func classifyPostgres(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgerrcode.IsDataException(pgErr.Code) || pgErr.Code == pgerrcode.CheckViolation || pgErr.Code == pgerrcode.NotNullViolation {
			return domain.Malformed("%s", pgErr.Message)
		}
	}
	return storageFailure(op, err)
}

func classifySQLite(op string, err error) error {
	var sqlErr sqlite3.Error
	if errors.As(err, &sqlErr) && sqlErr.Code == sqlite3.ErrConstraint {
		switch sqlErr.ExtendedCode {
		case sqlite3.ErrConstraintCheck, sqlite3.ErrConstraintNotNull:
			return domain.Malformed("%s", sqlErr.Error())
		}
	}
	return storageFailure(op, err)
}
