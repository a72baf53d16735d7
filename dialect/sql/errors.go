package sql

import (
	"errors"
	"strings"

	mssql "github.com/denisenkom/go-mssqldb"
	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// constraint identifies the kind of constraint an engine error reports.
type constraint uint8

const (
	noConstraint constraint = iota
	uniqueConstraint
	foreignKeyConstraint
	checkConstraint
)

// PostgreSQL SQLSTATE codes for constraint violations (class 23).
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
)

// MySQL error numbers for constraint violations.
const (
	mysqlDuplicateEntry   = 1062
	mysqlForeignKeyParent = 1451 // Cannot delete or update a parent row
	mysqlForeignKeyChild  = 1452 // Cannot add or update a child row
	mysqlCheckViolation   = 3819
)

// SQL Server error numbers for constraint violations. 547 covers both
// foreign-key and check conflicts; the message tells them apart.
const (
	mssqlUniqueConstraint = 2627
	mssqlUniqueIndex      = 2601
	mssqlConflict         = 547
)

// IsConstraintError reports whether err resulted from a database constraint
// violation.
func IsConstraintError(err error) bool {
	return classify(err) != noConstraint
}

// IsUniqueConstraintError reports whether err resulted from a uniqueness or
// primary key violation.
func IsUniqueConstraintError(err error) bool {
	return classify(err) == uniqueConstraint
}

// IsForeignKeyConstraintError reports whether err resulted from a foreign-key
// violation.
func IsForeignKeyConstraintError(err error) bool {
	return classify(err) == foreignKeyConstraint
}

// IsCheckConstraintError reports whether err resulted from a check
// constraint violation.
func IsCheckConstraintError(err error) bool {
	return classify(err) == checkConstraint
}

func classify(err error) constraint {
	if err == nil {
		return noConstraint
	}
	var (
		pqErr     *pq.Error
		pgErr     *pgconn.PgError
		mysqlErr  *mysql.MySQLError
		sqliteErr *sqlite.Error
		mssqlErr  mssql.Error
	)
	switch {
	case errors.As(err, &pqErr):
		return pgState(string(pqErr.Code))
	case errors.As(err, &pgErr):
		return pgState(pgErr.Code)
	case errors.As(err, &mysqlErr):
		switch mysqlErr.Number {
		case mysqlDuplicateEntry:
			return uniqueConstraint
		case mysqlForeignKeyParent, mysqlForeignKeyChild:
			return foreignKeyConstraint
		case mysqlCheckViolation:
			return checkConstraint
		}
		return noConstraint
	case errors.As(err, &sqliteErr):
		switch sqliteErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return uniqueConstraint
		case sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY:
			return foreignKeyConstraint
		case sqlite3.SQLITE_CONSTRAINT_CHECK:
			return checkConstraint
		}
	case errors.As(err, &mssqlErr):
		switch mssqlErr.Number {
		case mssqlUniqueConstraint, mssqlUniqueIndex:
			return uniqueConstraint
		case mssqlConflict:
			if strings.Contains(mssqlErr.Message, "CHECK constraint") {
				return checkConstraint
			}
			return foreignKeyConstraint
		}
		return noConstraint
	}
	// Fallback to message matching for drivers without typed errors.
	msg := err.Error()
	switch {
	case containsAny(msg, "UNIQUE constraint failed", "violates unique constraint", "Error 1062"):
		return uniqueConstraint
	case containsAny(msg, "FOREIGN KEY constraint failed", "violates foreign key constraint", "Error 1451", "Error 1452"):
		return foreignKeyConstraint
	case containsAny(msg, "CHECK constraint failed", "violates check constraint", "Error 3819"):
		return checkConstraint
	}
	return noConstraint
}

func pgState(code string) constraint {
	switch code {
	case pgUniqueViolation:
		return uniqueConstraint
	case pgForeignKeyViolation:
		return foreignKeyConstraint
	case pgCheckViolation:
		return checkConstraint
	}
	return noConstraint
}

// containsAny returns true if s contains any of the substrings.
func containsAny(s string, substrings ...string) bool {
	for _, sub := range substrings {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
