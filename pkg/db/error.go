package db

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var (
	// ErrUniqueViolation reports an insert or update colliding with an existing unique value.
	ErrUniqueViolation = errors.New("unique_violation")
	// ErrForeignKeyViolation reports a reference to a missing row, or a delete of a row still referenced.
	ErrForeignKeyViolation = errors.New("foreign_key_violation")
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"

	mysqlDuplicateEntry   = 1062
	mysqlRowIsReferenced  = 1451
	mysqlNoReferencedRow  = 1452
	mysqlRowIsReferenced2 = 1217
	mysqlNoReferencedRow2 = 1216
)

// TranslateError wraps constraint failures with ErrUniqueViolation or
// ErrForeignKeyViolation. Any other error is returned unchanged.
func TranslateError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrUniqueViolation), errors.Is(err, ErrForeignKeyViolation):
		return err
	case IsDuplicateKeyErr(err):
		return fmt.Errorf("%w: %w", ErrUniqueViolation, err)
	case IsForeignKeyErr(err):
		return fmt.Errorf("%w: %w", ErrForeignKeyViolation, err)
	default:
		return err
	}
}

func IsDuplicateKeyErr(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == mysqlDuplicateEntry
	}

	// PostgreSQL through a driver that does not expose pgconn errors.
	if strings.Contains(err.Error(), "duplicate key value violates unique constraint") {
		return true
	}

	// SQLite (error code 2067, 1555 for primary keys)
	msg := err.Error()
	if strings.Contains(msg, "UNIQUE constraint failed") || strings.Contains(msg, "PRIMARY KEY constraint failed") {
		return true
	}

	return false
}

func IsForeignKeyErr(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgForeignKeyViolation
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		switch myErr.Number {
		case mysqlRowIsReferenced, mysqlNoReferencedRow, mysqlRowIsReferenced2, mysqlNoReferencedRow2:
			return true
		}
		return false
	}

	msg := err.Error()
	if strings.Contains(msg, "violates foreign key constraint") {
		return true
	}

	// SQLite (error code 787)
	return strings.Contains(msg, "FOREIGN KEY constraint failed")
}

// ViolationReason names the constraint class of err for logs and metrics.
func ViolationReason(err error) string {
	switch {
	case errors.Is(err, ErrUniqueViolation):
		return "unique"
	case errors.Is(err, ErrForeignKeyViolation):
		return "foreign_key"
	default:
		return ""
	}
}
